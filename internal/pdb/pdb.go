// Package pdb defines the pattern database handle exchanged between the
// refinement solver and the collection generator. A handle only carries its
// defining pattern and the number of abstract states it represents; the cost
// table itself is never materialized here.
package pdb

import (
	"fmt"
	"math"

	"github.com/papapumpkin/mcegar/internal/pattern"
	"github.com/papapumpkin/mcegar/internal/task"
)

// Database is an immutable pattern database handle. Handles are shared by
// pointer between the collection and any downstream consumer.
type Database struct {
	pattern pattern.Pattern
	size    int
}

// New creates a handle for p with the given abstract state count.
func New(p pattern.Pattern, size int) *Database {
	return &Database{pattern: p, size: size}
}

// Build creates the handle for p over t, sizing it by the product of the
// domain sizes of the pattern variables.
func Build(t *task.Task, p pattern.Pattern) (*Database, error) {
	size, err := Size(t, p)
	if err != nil {
		return nil, err
	}
	return New(p, size), nil
}

// Size returns the number of abstract states induced by p over t. The product
// saturates at math.MaxInt instead of overflowing.
func Size(t *task.Task, p pattern.Pattern) (int, error) {
	size := 1
	for _, v := range p {
		if v < 0 || v >= t.NumVariables() {
			return 0, fmt.Errorf("pdb: variable %d out of range [0, %d)", v, t.NumVariables())
		}
		size = SaturatingMul(size, t.Variables[v].Domain)
	}
	return size, nil
}

// SaturatingMul multiplies two positive sizes, clamping to math.MaxInt.
func SaturatingMul(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	if a > math.MaxInt/b {
		return math.MaxInt
	}
	return a * b
}

// Pattern returns the defining pattern.
func (d *Database) Pattern() pattern.Pattern {
	return d.pattern
}

// Size returns the number of abstract states, at least 1 for any pattern
// over valid domains.
func (d *Database) Size() int {
	return d.size
}

// String renders the handle for diagnostics.
func (d *Database) String() string {
	return fmt.Sprintf("pdb%s(size=%d)", d.pattern, d.size)
}
