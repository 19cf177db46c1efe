package generator

import "math/rand"

// Blacklister draws random non-empty subsets of the non-goal variables.
type Blacklister struct {
	candidates []int
}

// NewBlacklister creates a blacklister over a copy of the non-goal variables.
func NewBlacklister(nonGoalVars []int) *Blacklister {
	c := make([]int, len(nonGoalVars))
	copy(c, nonGoalVars)
	return &Blacklister{candidates: c}
}

// Len returns the number of candidate variables.
func (b *Blacklister) Len() int {
	return len(b.candidates)
}

// Draw picks a size uniformly in [1, Len()], shuffles the candidates in place
// and returns a fresh slice with that many leading candidates. Without
// candidates the blacklist is empty and rng is not consumed.
func (b *Blacklister) Draw(rng *rand.Rand) []int {
	if len(b.candidates) == 0 {
		return nil
	}
	size := rng.Intn(len(b.candidates)) + 1
	rng.Shuffle(len(b.candidates), func(i, j int) {
		b.candidates[i], b.candidates[j] = b.candidates[j], b.candidates[i]
	})
	out := make([]int, size)
	copy(out, b.candidates[:size])
	return out
}
