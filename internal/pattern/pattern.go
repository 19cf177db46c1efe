// Package pattern provides the canonical pattern representation (a sorted,
// duplicate-free set of variable ids) and the set used to deduplicate
// patterns across sub-solver calls.
package pattern

import (
	"slices"
	"strconv"
	"strings"
)

// Pattern is a set of variable ids in canonical (ascending, duplicate-free)
// form. Construct patterns with New; a Pattern must not be modified after
// construction.
type Pattern []int

// New returns the canonical pattern over vars. The input is not modified.
func New(vars ...int) Pattern {
	p := make(Pattern, len(vars))
	copy(p, vars)
	slices.Sort(p)
	return Pattern(slices.Compact([]int(p)))
}

// Len returns the number of variables in the pattern.
func (p Pattern) Len() int {
	return len(p)
}

// Contains reports whether variable id is part of the pattern.
func (p Pattern) Contains(id int) bool {
	_, found := slices.BinarySearch([]int(p), id)
	return found
}

// Equal reports whether p and q contain the same variables.
func (p Pattern) Equal(q Pattern) bool {
	return slices.Equal(p, q)
}

// With returns a new canonical pattern extending p by id.
func (p Pattern) With(id int) Pattern {
	if p.Contains(id) {
		return p
	}
	return New(append(slices.Clone([]int(p)), id)...)
}

// Key returns a stable string usable as a map key. Equal patterns have equal
// keys.
func (p Pattern) Key() string {
	var b strings.Builder
	for i, v := range p {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(v))
	}
	return b.String()
}

// String renders the pattern as "[v1, v2, ...]".
func (p Pattern) String() string {
	return "[" + strings.ReplaceAll(p.Key(), ",", ", ") + "]"
}
