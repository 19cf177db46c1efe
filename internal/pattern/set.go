package pattern

// Set is an insertion-ordered set of patterns with structural equality.
// The zero value is not usable; create one with NewSet.
type Set struct {
	index map[string]int
	items []Pattern
}

// NewSet creates an empty Set.
func NewSet() *Set {
	return &Set{index: make(map[string]int)}
}

// Insert adds p if no equal pattern is present and reports whether it was
// added.
func (s *Set) Insert(p Pattern) bool {
	key := p.Key()
	if _, ok := s.index[key]; ok {
		return false
	}
	s.index[key] = len(s.items)
	s.items = append(s.items, p)
	return true
}

// Contains reports whether a pattern equal to p is present.
func (s *Set) Contains(p Pattern) bool {
	_, ok := s.index[p.Key()]
	return ok
}

// Len returns the number of distinct patterns.
func (s *Set) Len() int {
	return len(s.items)
}

// Patterns returns the distinct patterns in insertion order. The returned
// slice must not be modified.
func (s *Set) Patterns() []Pattern {
	return s.items
}
