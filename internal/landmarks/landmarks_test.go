package landmarks

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/romainf28/pddl-solver/internal/model"
	"github.com/romainf28/pddl-solver/internal/task"
)

func blocksTask(t *testing.T) *task.Task {
	t.Helper()
	onTableA := model.NewFact("on-table", "a")
	clearA := model.NewFact("clear", "a")
	handEmpty := model.NewFact("hand-empty")
	holdingA := model.NewFact("holding", "a")
	clearB := model.NewFact("clear", "b")
	onAB := model.NewFact("on", "a", "b")

	pickup, err := model.NewOperator("(pickup a)",
		[]model.Fact{onTableA, clearA, handEmpty}, nil,
		[]model.Fact{holdingA},
		[]model.Fact{onTableA, clearA, handEmpty})
	require.NoError(t, err)

	stack, err := model.NewOperator("(stack a b)",
		[]model.Fact{holdingA, clearB}, nil,
		[]model.Fact{onAB, clearA, handEmpty},
		[]model.Fact{holdingA, clearB})
	require.NoError(t, err)

	facts := []model.Fact{onTableA, clearA, handEmpty, holdingA, clearB, onAB}
	init := model.NewState(onTableA, clearA, handEmpty, clearB)
	goals := []model.Fact{onAB}

	tsk, err := task.New("blocks", facts, init, goals, []model.Operator{pickup, stack})
	require.NoError(t, err)
	return tsk
}

// Both the goal fact and the fact only stack's precondition can supply
// (holding a) must be identified as landmarks: every plan to on(a,b) passes
// through holding(a).
func TestAnalyzeFindsGoalAndIntermediateLandmarks(t *testing.T) {
	tsk := blocksTask(t)
	g := Analyze(tsk)

	onAB := model.NewFact("on", "a", "b")
	holdingA := model.NewFact("holding", "a")

	var names []model.Fact
	names = append(names, g.Landmarks...)
	assert.Contains(t, names, onAB)
	assert.Contains(t, names, holdingA)
}

// clear(b) is true in the initial state and is never deleted then
// re-required as a landmark dependency chain bottleneck the way holding(a)
// is; it must not incorrectly show up with an infinite cost.
func TestCostPartitioningFiniteForSolvableTask(t *testing.T) {
	tsk := blocksTask(t)
	g := Analyze(tsk)
	for _, lm := range g.Landmarks {
		c := g.Cost[lm]
		assert.False(t, math.IsInf(c, 1), "landmark %s has infinite cost in a solvable task", lm)
	}
}

// Cost-partitioning admissibility (spec.md §8 testable property 4): the sum
// of landmark costs at the initial state must never exceed the length of a
// known valid plan.
func TestCostPartitioningAdmissible(t *testing.T) {
	tsk := blocksTask(t)
	g := Analyze(tsk)

	notReached := g.NotReached(tsk.Init)
	h := g.Evaluate(notReached, tsk.Init, tsk.Goals)

	knownPlanLength := 2.0 // pickup(a) then stack(a,b)
	assert.LessOrEqual(t, h, knownPlanLength)
}

func TestEvaluateZeroAtGoal(t *testing.T) {
	tsk := blocksTask(t)
	g := Analyze(tsk)

	goalState := tsk.Init.With([]model.Fact{model.NewFact("on", "a", "b")})
	notReached := g.NotReached(tsk.Init)
	// Simulate having reached the goal: not_reached loses every landmark the
	// two actions add along the way.
	notReached = Advance(notReached, []model.Fact{model.NewFact("holding", "a")})
	notReached = Advance(notReached, []model.Fact{model.NewFact("on", "a", "b")})

	h := g.Evaluate(notReached, goalState, tsk.Goals)
	assert.Equal(t, 0.0, h)
}

func TestAdvanceRemovesAddedFacts(t *testing.T) {
	holdingA := model.NewFact("holding", "a")
	onAB := model.NewFact("on", "a", "b")
	parent := map[model.Fact]struct{}{holdingA: {}, onAB: {}}

	child := Advance(parent, []model.Fact{holdingA})
	_, stillThere := child[holdingA]
	assert.False(t, stillThere)
	_, onABThere := child[onAB]
	assert.True(t, onABThere)

	// Parent map must be untouched (Advance must not mutate its input).
	_, parentStill := parent[holdingA]
	assert.True(t, parentStill)
}

// A goal fact that already holds in the initial state must still be
// reported as a landmark, even when some other operator chain can reach
// the rest of the goal without ever "producing" it: monotoneReachable never
// forgets a fact that started out true (delete-relaxation ignores deletes),
// so the producibility test alone would wrongly call it dispensable. The
// fix seeds every goal fact into the landmark set unconditionally.
func TestGoalFactTrueInInitIsAlwaysALandmark(t *testing.T) {
	f := model.NewFact("f")
	h := model.NewFact("h")
	mid := model.NewFact("mid")
	g := model.NewFact("g")

	clobber, err := model.NewOperator("clobber",
		[]model.Fact{f}, nil,
		[]model.Fact{mid},
		[]model.Fact{f})
	require.NoError(t, err)

	restore, err := model.NewOperator("restore",
		[]model.Fact{mid}, nil,
		[]model.Fact{f, g},
		[]model.Fact{mid})
	require.NoError(t, err)

	gDirect, err := model.NewOperator("g_direct",
		[]model.Fact{h}, nil,
		[]model.Fact{g},
		nil)
	require.NoError(t, err)

	facts := []model.Fact{f, h, mid, g}
	init := model.NewState(f, h)
	goals := []model.Fact{f, g}

	tsk, err := task.New("clobber-restore", facts, init, goals, []model.Operator{clobber, restore, gDirect})
	require.NoError(t, err)

	graph := Analyze(tsk)
	assert.Contains(t, graph.Landmarks, f, "goal fact true in the initial state must still be a landmark")

	cost, ok := graph.Cost[f]
	require.True(t, ok, "a seeded goal landmark must still get a cost-partitioned cost")
	assert.False(t, math.IsInf(cost, 1))

	// Once a plan clobbers f, the heuristic must charge for re-achieving it
	// rather than silently contributing 0 because f was never in the
	// landmark map to begin with.
	afterClobber := init.Without([]model.Fact{f}).With(clobber.Add)
	notReached := graph.NotReached(init)
	notReached = Advance(notReached, clobber.Add)
	hVal := graph.Evaluate(notReached, afterClobber, tsk.Goals)
	assert.Equal(t, graph.Cost[f]+graph.Cost[g], hVal)
}

// An unsolvable task (goal fact no operator ever adds) must yield an
// infinite-cost landmark.
func TestUnsolvableTaskYieldsInfiniteCostLandmark(t *testing.T) {
	onTableA := model.NewFact("on-table", "a")
	clearA := model.NewFact("clear", "a")
	handEmpty := model.NewFact("hand-empty")
	holdingA := model.NewFact("holding", "a")
	unreachableGoal := model.NewFact("holding", "b")

	pickup, err := model.NewOperator("(pickup a)",
		[]model.Fact{onTableA, clearA, handEmpty}, nil,
		[]model.Fact{holdingA},
		[]model.Fact{onTableA, clearA, handEmpty})
	require.NoError(t, err)

	facts := []model.Fact{onTableA, clearA, handEmpty, holdingA, unreachableGoal}
	init := model.NewState(onTableA, clearA, handEmpty)
	goals := []model.Fact{unreachableGoal}

	tsk, err := task.New("blocks", facts, init, goals, []model.Operator{pickup})
	require.NoError(t, err)

	g := Analyze(tsk)
	c, ok := g.Cost[unreachableGoal]
	require.True(t, ok)
	assert.True(t, math.IsInf(c, 1))
}
