// Package task models the planning task a pattern collection is generated
// for: finite-domain state variables, the causal dependencies between them,
// and the goal facts. The generator only needs variable counts, domain sizes
// and goals; the dependencies feed the reference refinement solver.
package task

import "fmt"

// Fact is a single variable assignment (variable id, value).
type Fact struct {
	Var   int
	Value int
}

// String renders the fact as "var=value".
func (f Fact) String() string {
	return fmt.Sprintf("%d=%d", f.Var, f.Value)
}

// Variable is a finite-domain state variable.
type Variable struct {
	Name      string
	Domain    int   // number of values, >= 1
	DependsOn []int // causal predecessors by variable id, ascending
}

// Task is an immutable planning task. Variable ids are indices into Variables.
type Task struct {
	Name      string
	Variables []Variable
	Goals     []Fact
}

// NumVariables returns the number of state variables.
func (t *Task) NumVariables() int {
	return len(t.Variables)
}

// VariableName returns the declared name of variable id, or "v<id>" when the
// id is out of range.
func (t *Task) VariableName(id int) string {
	if id < 0 || id >= len(t.Variables) {
		return fmt.Sprintf("v%d", id)
	}
	return t.Variables[id].Name
}

// IsGoalVariable reports whether some goal fact constrains variable id.
func (t *Task) IsGoalVariable(id int) bool {
	for _, g := range t.Goals {
		if g.Var == id {
			return true
		}
	}
	return false
}

// GoalVariables returns the ids of goal variables in goal declaration order.
func (t *Task) GoalVariables() []int {
	vars := make([]int, 0, len(t.Goals))
	for _, g := range t.Goals {
		vars = append(vars, g.Var)
	}
	return vars
}

// NonGoalVariables returns the ids of all variables not mentioned in any
// goal fact, in ascending order.
func (t *Task) NonGoalVariables() []int {
	vars := make([]int, 0, len(t.Variables))
	for id := range t.Variables {
		if !t.IsGoalVariable(id) {
			vars = append(vars, id)
		}
	}
	return vars
}

// Predecessors returns the causal predecessors of variable id. The returned
// slice must not be modified.
func (t *Task) Predecessors(id int) []int {
	if id < 0 || id >= len(t.Variables) {
		return nil
	}
	return t.Variables[id].DependsOn
}
