package task

import (
	"fmt"
	"os"
	"sort"

	toml "github.com/pelletier/go-toml/v2"
)

// file is the TOML representation of a task. Variables and goals refer to
// each other by name; ids are assigned in declaration order.
type file struct {
	Name      string         `toml:"name"`
	Variables []fileVariable `toml:"variables"`
	Goals     []fileGoal     `toml:"goals"`
}

type fileVariable struct {
	Name      string   `toml:"name"`
	Domain    int      `toml:"domain"`
	DependsOn []string `toml:"depends_on"`
}

type fileGoal struct {
	Variable string `toml:"variable"`
	Value    int    `toml:"value"`
}

// Load reads and validates the task file at path.
func Load(path string) (*Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading task file: %w", err)
	}
	t, err := Parse(data)
	if err != nil {
		if inv, ok := err.(*InvalidError); ok {
			inv.Source = path
		}
		return nil, err
	}
	return t, nil
}

// Parse decodes a TOML task description. All validation problems are
// reported together in an *InvalidError.
func Parse(data []byte) (*Task, error) {
	var f file
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing task TOML: %w", err)
	}
	if errs := f.validate(); len(errs) > 0 {
		return nil, &InvalidError{Errors: errs}
	}
	return f.build(), nil
}

func (f *file) validate() []ValidationError {
	var errs []ValidationError

	if len(f.Variables) == 0 {
		errs = append(errs, ValidationError{Field: "variables", Err: ErrNoVariables})
	}

	ids := make(map[string]int, len(f.Variables))
	for i, v := range f.Variables {
		field := fmt.Sprintf("variables[%d]", i)
		if v.Name == "" {
			errs = append(errs, ValidationError{
				Field: field + ".name",
				Err:   fmt.Errorf("%w: name", ErrMissingField),
			})
			continue
		}
		if prev, ok := ids[v.Name]; ok {
			errs = append(errs, ValidationError{
				Field: field + ".name",
				Err:   fmt.Errorf("%w: %q already declared as variables[%d]", ErrDuplicateVariable, v.Name, prev),
			})
			continue
		}
		ids[v.Name] = i
		if v.Domain < 1 {
			errs = append(errs, ValidationError{
				Field: field + ".domain",
				Err:   fmt.Errorf("%w: %q has domain %d", ErrInvalidDomain, v.Name, v.Domain),
			})
		}
	}

	for i, v := range f.Variables {
		for _, dep := range v.DependsOn {
			field := fmt.Sprintf("variables[%d].depends_on", i)
			if dep == v.Name {
				errs = append(errs, ValidationError{
					Field: field,
					Err:   fmt.Errorf("%w: %q", ErrSelfDependency, v.Name),
				})
				continue
			}
			if _, ok := ids[dep]; !ok {
				errs = append(errs, ValidationError{
					Field: field,
					Err:   fmt.Errorf("%w: %q depends on %q", ErrUnknownVariable, v.Name, dep),
				})
			}
		}
	}

	if len(f.Goals) == 0 {
		errs = append(errs, ValidationError{Field: "goals", Err: ErrNoGoals})
	}
	seenGoal := make(map[string]bool, len(f.Goals))
	for i, g := range f.Goals {
		field := fmt.Sprintf("goals[%d]", i)
		id, ok := ids[g.Variable]
		if !ok {
			errs = append(errs, ValidationError{
				Field: field + ".variable",
				Err:   fmt.Errorf("%w: %q", ErrUnknownVariable, g.Variable),
			})
			continue
		}
		if seenGoal[g.Variable] {
			errs = append(errs, ValidationError{
				Field: field + ".variable",
				Err:   fmt.Errorf("%w: %q", ErrDuplicateGoal, g.Variable),
			})
		}
		seenGoal[g.Variable] = true
		if domain := f.Variables[id].Domain; domain >= 1 && (g.Value < 0 || g.Value >= domain) {
			errs = append(errs, ValidationError{
				Field: field + ".value",
				Err:   fmt.Errorf("%w: %q=%d, domain is [0, %d)", ErrValueOutOfRange, g.Variable, g.Value, domain),
			})
		}
	}

	return errs
}

// build converts a validated file into a Task.
func (f *file) build() *Task {
	ids := make(map[string]int, len(f.Variables))
	for i, v := range f.Variables {
		ids[v.Name] = i
	}

	t := &Task{
		Name:      f.Name,
		Variables: make([]Variable, len(f.Variables)),
		Goals:     make([]Fact, len(f.Goals)),
	}
	for i, v := range f.Variables {
		deps := make([]int, 0, len(v.DependsOn))
		seen := make(map[int]bool, len(v.DependsOn))
		for _, name := range v.DependsOn {
			id := ids[name]
			if !seen[id] {
				seen[id] = true
				deps = append(deps, id)
			}
		}
		sort.Ints(deps)
		t.Variables[i] = Variable{Name: v.Name, Domain: v.Domain, DependsOn: deps}
	}
	for i, g := range f.Goals {
		t.Goals[i] = Fact{Var: ids[g.Variable], Value: g.Value}
	}
	return t
}
