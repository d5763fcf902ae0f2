package plandriver

import (
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

// clobberRestoreTask builds a task where the goal fact f holds in the
// initial state but the only way to reach the other goal fact g forces an
// operator sequence that deletes f and must restore it before the end.
func clobberRestoreTask(t *testing.T) *task.Task {
	t.Helper()
	f := model.NewFact("f")
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

	facts := []model.Fact{f, mid, g}
	init := model.NewState(f)
	goals := []model.Fact{f, g}

	tsk, err := task.New("clobber-restore", facts, init, goals, []model.Operator{clobber, restore})
	require.NoError(t, err)
	return tsk
}

// Regression test for a landmark-analysis bug where a goal fact already
// true in the initial state could be dropped from the landmark set,
// under-informing the heuristic once it was clobbered mid-plan. The search
// must still find the (only) valid plan: clobber then restore.
func TestRunHeuristicRestoresClobberedGoalFact(t *testing.T) {
	tsk := clobberRestoreTask(t)
	res := RunHeuristic(tsk, HeuristicLandmarks, 1)
	require.True(t, res.Solvable)
	final, err := task.ValidatePlan(tsk, res.Plan)
	require.NoError(t, err)
	assert.True(t, tsk.GoalSatisfied(final))
}

func TestRunHeuristicLandmarksFindsPlan(t *testing.T) {
	tsk := blocksTask(t)
	res := RunHeuristic(tsk, HeuristicLandmarks, 1)
	require.True(t, res.Solvable)
	_, err := task.ValidatePlan(tsk, res.Plan)
	assert.NoError(t, err)
}

func TestRunHeuristicFFFindsPlan(t *testing.T) {
	tsk := blocksTask(t)
	res := RunHeuristic(tsk, HeuristicFF, 1)
	require.True(t, res.Solvable)
	_, err := task.ValidatePlan(tsk, res.Plan)
	assert.NoError(t, err)
}

func TestRunHeuristicDefaultsToLandmarks(t *testing.T) {
	tsk := blocksTask(t)
	res := RunHeuristic(tsk, "", 5)
	assert.True(t, res.Solvable)
}
