package generator

import (
	"math/rand"

	"github.com/papapumpkin/mcegar/internal/task"
)

// GoalRotator cycles through the goal facts in an order fixed once by a
// random permutation.
type GoalRotator struct {
	goals  []task.Fact
	cursor int
}

// NewGoalRotator copies goals and shuffles the copy with rng.
func NewGoalRotator(goals []task.Fact, rng *rand.Rand) *GoalRotator {
	order := make([]task.Fact, len(goals))
	copy(order, goals)
	rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	return &GoalRotator{goals: order}
}

// Current returns the goal at the cursor.
func (r *GoalRotator) Current() task.Fact {
	return r.goals[r.cursor]
}

// Index returns the cursor position.
func (r *GoalRotator) Index() int {
	return r.cursor
}

// Advance moves the cursor one position, wrapping at the end.
func (r *GoalRotator) Advance() {
	r.cursor = (r.cursor + 1) % len(r.goals)
}

// Goals returns the goals in rotation order.
func (r *GoalRotator) Goals() []task.Fact {
	return r.goals
}

// Variables returns the goal variables in rotation order.
func (r *GoalRotator) Variables() []int {
	vars := make([]int, len(r.goals))
	for i, g := range r.goals {
		vars[i] = g.Var
	}
	return vars
}
