package rpg

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

func TestFFHeuristicTwoStepGoal(t *testing.T) {
	tsk := blocksTask(t)
	h := FFHeuristic(tsk, tsk.Init)
	assert.Equal(t, 2.0, h)
}

func TestFFHeuristicZeroAtGoal(t *testing.T) {
	tsk := blocksTask(t)
	goalState := tsk.Init.With([]model.Fact{model.NewFact("on", "a", "b")})
	h := FFHeuristic(tsk, goalState)
	assert.Equal(t, 0.0, h)
}

func TestFFHeuristicUnreachableIsInfinite(t *testing.T) {
	tsk := blocksTask(t)
	empty := model.NewState()
	h := FFHeuristic(tsk, empty)
	assert.True(t, math.IsInf(h, 1))
}

// FF monotonicity (spec.md §8 testable property 5): a superset state's
// heuristic must not exceed the subset state's.
func TestFFMonotonicity(t *testing.T) {
	tsk := blocksTask(t)
	sub := model.NewState(model.NewFact("on-table", "a"), model.NewFact("clear", "a"), model.NewFact("hand-empty"))
	super := sub.With([]model.Fact{model.NewFact("clear", "b")})

	hSub := FFHeuristic(tsk, sub)
	hSuper := FFHeuristic(tsk, super)
	assert.LessOrEqual(t, hSuper, hSub)
}
