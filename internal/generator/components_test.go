package generator

import (
	"math/rand"
	"slices"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/papapumpkin/mcegar/internal/budget"
	"github.com/papapumpkin/mcegar/internal/pattern"
	"github.com/papapumpkin/mcegar/internal/pdb"
	"github.com/papapumpkin/mcegar/internal/task"
)

func TestGoalRotator(t *testing.T) {
	t.Parallel()

	goals := []task.Fact{{Var: 0, Value: 1}, {Var: 3, Value: 0}, {Var: 5, Value: 2}, {Var: 7, Value: 1}}
	r := NewGoalRotator(goals, rand.New(rand.NewSource(1)))

	got := slices.Clone(r.Goals())
	slices.SortFunc(got, func(a, b task.Fact) int { return a.Var - b.Var })
	if diff := cmp.Diff(goals, got); diff != "" {
		t.Errorf("rotation is not a permutation of the goals (-want +got):\n%s", diff)
	}

	order := r.Goals()
	for i := 0; i < 10; i++ {
		if r.Index() != i%len(goals) {
			t.Fatalf("step %d: Index = %d, want %d", i, r.Index(), i%len(goals))
		}
		if r.Current() != order[i%len(goals)] {
			t.Errorf("step %d: Current = %v, want %v", i, r.Current(), order[i%len(goals)])
		}
		r.Advance()
	}

	goals[0] = task.Fact{Var: 99}
	for _, g := range r.Goals() {
		if g.Var == 99 {
			t.Error("rotator aliases the caller's goal slice")
		}
	}
}

func TestGoalRotator_Variables(t *testing.T) {
	t.Parallel()

	r := NewGoalRotator([]task.Fact{{Var: 4, Value: 1}}, rand.New(rand.NewSource(1)))
	if diff := cmp.Diff([]int{4}, r.Variables()); diff != "" {
		t.Errorf("Variables mismatch (-want +got):\n%s", diff)
	}
	r.Advance()
	if r.Index() != 0 {
		t.Errorf("single goal rotator Index = %d, want 0", r.Index())
	}
}

func TestBlacklister_Draw(t *testing.T) {
	t.Parallel()

	nonGoal := []int{2, 4, 6, 8, 10}
	b := NewBlacklister(nonGoal)
	rng := rand.New(rand.NewSource(3))
	sizes := map[int]bool{}
	for i := 0; i < 500; i++ {
		bl := b.Draw(rng)
		if len(bl) < 1 || len(bl) > len(nonGoal) {
			t.Fatalf("draw %d: size %d outside [1, %d]", i, len(bl), len(nonGoal))
		}
		seen := map[int]bool{}
		for _, v := range bl {
			if !slices.Contains(nonGoal, v) {
				t.Fatalf("draw %d: %d is not a non-goal variable", i, v)
			}
			if seen[v] {
				t.Fatalf("draw %d: %d drawn twice", i, v)
			}
			seen[v] = true
		}
		sizes[len(bl)] = true
	}
	if len(sizes) != len(nonGoal) {
		t.Errorf("observed sizes %v, want every size in [1, %d]", sizes, len(nonGoal))
	}
	if nonGoal[0] != 2 || nonGoal[4] != 10 {
		t.Errorf("Draw shuffled the caller's slice: %v", nonGoal)
	}
}

func TestBlacklister_DrawReturnsFreshSlice(t *testing.T) {
	t.Parallel()

	b := NewBlacklister([]int{1, 2, 3})
	rng := rand.New(rand.NewSource(5))
	first := b.Draw(rng)
	snapshot := slices.Clone(first)
	for i := 0; i < 20; i++ {
		b.Draw(rng)
	}
	if diff := cmp.Diff(snapshot, first); diff != "" {
		t.Errorf("earlier blacklist changed by later draws (-want +got):\n%s", diff)
	}
}

func TestBlacklister_EmptyDoesNotConsumeRNG(t *testing.T) {
	t.Parallel()

	b := NewBlacklister(nil)
	rng := rand.New(rand.NewSource(11))
	if bl := b.Draw(rng); len(bl) != 0 {
		t.Errorf("Draw = %v, want empty", bl)
	}
	if got, want := rng.Int63(), rand.New(rand.NewSource(11)).Int63(); got != want {
		t.Errorf("rng advanced by empty draw: got %d, want %d", got, want)
	}
}

func TestStagnationMonitor(t *testing.T) {
	t.Parallel()

	var m StagnationMonitor
	if m.Active() || m.Exceeded(time.Hour, time.Second) {
		t.Fatal("zero monitor should not be stagnating")
	}
	if !m.MarkDuplicate(2 * time.Second) {
		t.Error("first duplicate should start a streak")
	}
	if m.MarkDuplicate(5 * time.Second) {
		t.Error("later duplicate should not restart the streak")
	}
	if m.Start() != 2*time.Second {
		t.Errorf("Start = %v, want 2s", m.Start())
	}

	tests := []struct {
		elapsed time.Duration
		want    bool
	}{
		{4 * time.Second, false},
		{5 * time.Second, false},
		{5*time.Second + time.Nanosecond, true},
	}
	for _, tt := range tests {
		if got := m.Exceeded(tt.elapsed, 3*time.Second); got != tt.want {
			t.Errorf("Exceeded(%v, 3s) = %v, want %v", tt.elapsed, got, tt.want)
		}
	}

	m.Reset()
	if m.Active() {
		t.Error("Reset should clear the streak")
	}
}

func TestDecideOnStagnation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                  string
		blacklistOnStagnation bool
		blacklisting          bool
		wantAction            stagnationAction
		wantReason            StopReason
	}{
		{"disabled escalation", false, false, stagnationTerminate, StopReasonStagnation},
		{"disabled escalation while blacklisting", false, true, stagnationTerminate, StopReasonStagnation},
		{"escalate", true, false, stagnationEnableBlacklisting, StopReasonNone},
		{"already blacklisting", true, true, stagnationTerminate, StopReasonStagnationBlacklisted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			action, reason := decideOnStagnation(tt.blacklistOnStagnation, tt.blacklisting)
			if action != tt.wantAction || reason != tt.wantReason {
				t.Errorf("got (%v, %q), want (%v, %q)", action, reason, tt.wantAction, tt.wantReason)
			}
		})
	}
}

func TestBudgets_Derivations(t *testing.T) {
	t.Parallel()

	b := DefaultBudgets()
	if got := b.blacklistStartTime(); got != 75*time.Second {
		t.Errorf("blacklistStartTime = %v, want 75s", got)
	}
	b.TotalMaxTime = budget.Unlimited
	if got := b.blacklistStartTime(); got != budget.Unlimited {
		t.Errorf("unlimited blacklistStartTime = %v", got)
	}

	b = DefaultBudgets()
	b.PerCallMaxTime = 3 * time.Second
	if got := b.callTimeLimit(10 * time.Second); got != 3*time.Second {
		t.Errorf("callTimeLimit(10s) = %v, want 3s", got)
	}
	if got := b.callTimeLimit(time.Second); got != time.Second {
		t.Errorf("callTimeLimit(1s) = %v, want 1s", got)
	}

	b.MaxPDBSize = 5
	tests := []struct{ remaining, want int }{
		{10, 5},
		{4, 4},
		{0, 0},
		{-3, -3},
	}
	for _, tt := range tests {
		if got := b.callPDBSizeLimit(tt.remaining); got != tt.want {
			t.Errorf("callPDBSizeLimit(%d) = %d, want %d", tt.remaining, got, tt.want)
		}
	}
}

func TestAssembler(t *testing.T) {
	t.Parallel()

	a := NewAssembler(20)
	first := pdb.New(pattern.New(0, 2), 6)
	second := pdb.New(pattern.New(1), 3)
	if got := a.Add(first); got != 14 {
		t.Errorf("Add = %d, want 14", got)
	}
	if got := a.Add(second); got != 11 {
		t.Errorf("Add = %d, want 11", got)
	}
	if a.CollectionSize() != 9 || a.Remaining() != 11 || a.Len() != 2 {
		t.Errorf("CollectionSize = %d, Remaining = %d, Len = %d", a.CollectionSize(), a.Remaining(), a.Len())
	}
	want := []pattern.Pattern{{0, 2}, {1}}
	if diff := cmp.Diff(want, a.Patterns()); diff != "" {
		t.Errorf("Patterns mismatch (-want +got):\n%s", diff)
	}
	if meanIterationTime(10*time.Second, 4) != 2500*time.Millisecond {
		t.Error("meanIterationTime(10s, 4) != 2.5s")
	}
	if meanIterationTime(time.Second, 0) != 0 {
		t.Error("meanIterationTime with zero iterations should be 0")
	}
}

func TestStopReason_String(t *testing.T) {
	t.Parallel()

	for _, r := range []StopReason{StopReasonCollectionSize, StopReasonTimeLimit, StopReasonStagnation, StopReasonStagnationBlacklisted} {
		if r.String() == "" || r.String() == string(r) {
			t.Errorf("StopReason(%q).String() = %q", string(r), r.String())
		}
	}
	if got := EventBlacklistingEnabled.String(); got != "blacklisting_enabled" {
		t.Errorf("EventBlacklistingEnabled.String() = %q", got)
	}
}
