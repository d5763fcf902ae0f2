package search

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

// zeroHeuristic makes weighted-A* degenerate to uniform-cost search, useful
// for isolating the search loop's correctness from any particular
// heuristic's.
type zeroHeuristic struct{}

func (zeroHeuristic) Evaluate(model.State, interface{}) float64       { return 0 }
func (zeroHeuristic) Advance(interface{}, []model.Fact) interface{} { return nil }
func (zeroHeuristic) Root(model.State) interface{}                  { return nil }

func TestRunFindsShortestPlan(t *testing.T) {
	tsk := blocksTask(t)
	res := Run(tsk, zeroHeuristic{}, 1)
	require.True(t, res.Solvable)
	require.Len(t, res.Plan, 2)
	assert.Equal(t, "(pickup a)", res.Plan[0].Name)
	assert.Equal(t, "(stack a b)", res.Plan[1].Name)

	_, err := task.ValidatePlan(tsk, res.Plan)
	assert.NoError(t, err)
}

func TestRunUnsolvableReportsFailure(t *testing.T) {
	onTableA := model.NewFact("on-table", "a")
	clearA := model.NewFact("clear", "a")
	handEmpty := model.NewFact("hand-empty")
	holdingA := model.NewFact("holding", "a")
	unreachable := model.NewFact("holding", "b")

	pickup, err := model.NewOperator("(pickup a)",
		[]model.Fact{onTableA, clearA, handEmpty}, nil,
		[]model.Fact{holdingA},
		[]model.Fact{onTableA, clearA, handEmpty})
	require.NoError(t, err)

	facts := []model.Fact{onTableA, clearA, handEmpty, holdingA, unreachable}
	init := model.NewState(onTableA, clearA, handEmpty)
	goals := []model.Fact{unreachable}
	tsk, err := task.New("blocks", facts, init, goals, []model.Operator{pickup})
	require.NoError(t, err)

	res := Run(tsk, zeroHeuristic{}, 1)
	assert.False(t, res.Solvable)
	assert.Nil(t, res.Plan)
}

// A heuristic that reports +Inf everywhere except the goal must prune every
// expansion, so the search still terminates (rather than looping) and
// reports unsolvable when the goal itself is unreachable via that
// heuristic's own estimate, exercising the math.Inf skip path.
type infUnlessGoalHeuristic struct{ goals []model.Fact }

func (h infUnlessGoalHeuristic) Evaluate(s model.State, _ interface{}) float64 {
	if s.Subset(h.goals) {
		return 0
	}
	return math.Inf(1)
}
func (infUnlessGoalHeuristic) Advance(interface{}, []model.Fact) interface{} { return nil }
func (infUnlessGoalHeuristic) Root(model.State) interface{}                 { return nil }

func TestRunSkipsInfiniteHeuristicChildren(t *testing.T) {
	tsk := blocksTask(t)
	res := Run(tsk, infUnlessGoalHeuristic{goals: tsk.Goals}, 1)
	assert.False(t, res.Solvable)
}

func TestRunRespectsWeightDefault(t *testing.T) {
	tsk := blocksTask(t)
	res := Run(tsk, zeroHeuristic{}, 0) // 0 triggers DefaultWeight
	assert.True(t, res.Solvable)
}
