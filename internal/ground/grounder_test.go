package ground

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/romainf28/pddl-solver/internal/model"
	"github.com/romainf28/pddl-solver/internal/pddl"
)

func mustParse(t *testing.T, domSrc, probSrc string) (*pddl.Domain, *pddl.Problem) {
	t.Helper()
	dom, err := pddl.ParseDomain(domSrc)
	require.NoError(t, err)
	prob, err := pddl.ParseProblem(probSrc)
	require.NoError(t, err)
	return dom, prob
}

const oneBlockDomain = `
(define (domain blocks)
  (:types block)
  (:predicates (on-table ?b - block) (clear ?b - block) (hand-empty) (holding ?b - block))
  (:action pickup
    :parameters (?b - block)
    :precondition (and (on-table ?b) (clear ?b) (hand-empty))
    :effect (and (holding ?b) (not (on-table ?b)) (not (clear ?b)) (not (hand-empty)))))
`

// S1 — blocks-world, one block.
func TestGroundS1SingleOperator(t *testing.T) {
	prob := `
(define (problem s1)
  (:domain blocks)
  (:objects a - block)
  (:init (on-table a) (clear a) (hand-empty))
  (:goal (and (holding a))))
`
	dom, p := mustParse(t, oneBlockDomain, prob)
	g := New(dom, p)
	tsk, warns, err := g.Ground()
	require.NoError(t, err)
	assert.Empty(t, warns)
	require.Len(t, tsk.Operators, 1)
	op := tsk.Operators[0]
	assert.Equal(t, "(pickup a)", op.Name)
	assert.True(t, op.Applicable(tsk.Init))

	next := op.Apply(tsk.Init)
	assert.True(t, tsk.GoalSatisfied(next))
}

// S3 — unsolvable: the goal names an object that does not exist, so no
// operator can ever produce it.
func TestGroundS3Unsolvable(t *testing.T) {
	prob := `
(define (problem s3)
  (:domain blocks)
  (:objects a - block)
  (:init (on-table a) (clear a) (hand-empty))
  (:goal (and (holding b))))
`
	dom, p := mustParse(t, oneBlockDomain, prob)
	g := New(dom, p)
	tsk, _, err := g.Ground()
	require.NoError(t, err)
	// holding(b) can never be produced: no operator adds it.
	for _, op := range tsk.Operators {
		for _, f := range op.Add {
			assert.NotEqual(t, model.NewFact("holding", "b"), f)
		}
	}
}

const stackDomain = `
(define (domain blocks)
  (:types block)
  (:predicates (on-table ?b - block) (clear ?b - block) (hand-empty) (holding ?b - block) (on ?x - block ?y - block))
  (:action pickup
    :parameters (?b - block)
    :precondition (and (on-table ?b) (clear ?b) (hand-empty))
    :effect (and (holding ?b) (not (on-table ?b)) (not (clear ?b)) (not (hand-empty))))
  (:action stack
    :parameters (?x - block ?y - block)
    :precondition (and (holding ?x) (clear ?y))
    :effect (and (on ?x ?y) (clear ?x) (hand-empty) (not (holding ?x)) (not (clear ?y)))))
`

// S4 — two-step goal: pickup(A) then stack(A,B).
func TestGroundS4TwoStepPlanApplies(t *testing.T) {
	prob := `
(define (problem s4)
  (:domain blocks)
  (:objects a b - block)
  (:init (on-table a) (on-table b) (clear a) (clear b) (hand-empty))
  (:goal (and (on a b))))
`
	dom, p := mustParse(t, stackDomain, prob)
	g := New(dom, p)
	tsk, _, err := g.Ground()
	require.NoError(t, err)

	var pickupA, stackAB model.Operator
	for _, op := range tsk.Operators {
		switch op.Name {
		case "(pickup a)":
			pickupA = op
		case "(stack a b)":
			stackAB = op
		}
	}
	require.NotEmpty(t, pickupA.Name)
	require.NotEmpty(t, stackAB.Name)

	require.True(t, pickupA.Applicable(tsk.Init))
	s1 := pickupA.Apply(tsk.Init)
	require.True(t, stackAB.Applicable(s1))
	s2 := stackAB.Apply(s1)
	assert.True(t, tsk.GoalSatisfied(s2))
}

const adjacencyDomain = `
(define (domain nav)
  (:types room)
  (:predicates (adjacent ?x - room ?y - room) (at ?r - room))
  (:action move
    :parameters (?from - room ?to - room)
    :precondition (and (at ?from) (adjacent ?from ?to))
    :effect (and (at ?to) (not (at ?from)))))
`

// S5 — static filtering: adjacency is static, so the grounder must only
// produce move operators for pairs that actually appear in the initial
// adjacency facts, not the full room x room Cartesian product.
func TestGroundS5StaticFiltering(t *testing.T) {
	prob := `
(define (problem s5)
  (:domain nav)
  (:objects r1 r2 r3 - room)
  (:init (at r1) (adjacent r1 r2) (adjacent r2 r3))
  (:goal (and (at r3))))
`
	dom, p := mustParse(t, adjacencyDomain, prob)
	g := New(dom, p)
	tsk, _, err := g.Ground()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, op := range tsk.Operators {
		names[op.Name] = true
	}
	assert.True(t, names["(move r1 r2)"])
	assert.True(t, names["(move r2 r3)"])
	assert.False(t, names["(move r1 r3)"])
	assert.False(t, names["(move r3 r1)"])
	assert.Len(t, tsk.Operators, 2)
}

// Operator disjointness invariants (spec.md §8 universal invariant 1).
func TestGroundOperatorInvariants(t *testing.T) {
	prob := `
(define (problem s1)
  (:domain blocks)
  (:objects a - block)
  (:init (on-table a) (clear a) (hand-empty))
  (:goal (and (holding a))))
`
	dom, p := mustParse(t, oneBlockDomain, prob)
	g := New(dom, p)
	tsk, _, err := g.Ground()
	require.NoError(t, err)
	for _, op := range tsk.Operators {
		addSet := map[model.Fact]bool{}
		for _, f := range op.Add {
			addSet[f] = true
		}
		for _, f := range op.Del {
			assert.False(t, addSet[f], "add/del overlap for %s", op.Name)
		}
		for _, f := range op.PosPre {
			assert.False(t, addSet[f], "add/pos_pre overlap for %s", op.Name)
		}
	}
}

const forallDomain = `
(define (domain lights)
  (:types room)
  (:predicates (lit ?r - room) (switched) (connected ?r - room))
  (:action flip-all
    :parameters ()
    :precondition (switched)
    :effect (forall (?r - room) (when (lit ?r) (not (lit ?r))))))
`

// flip-all has no ordinary parameters, so the forall's quantified variable
// becomes its effective grounding parameter (spec.md §4.1 step 3): one
// operator per room, each conditioned on that room's own "lit" fact.
func TestGroundForallWhenEffectiveParams(t *testing.T) {
	prob := `
(define (problem lights1)
  (:domain lights)
  (:objects r1 r2 - room)
  (:init (switched) (lit r1) (lit r2))
  (:goal (and (lit r1) (lit r2))))
`
	dom, p := mustParse(t, forallDomain, prob)
	g := New(dom, p)
	tsk, _, err := g.Ground()
	require.NoError(t, err)
	require.Len(t, tsk.Operators, 2)

	byName := map[string]model.Operator{}
	for _, op := range tsk.Operators {
		byName[op.Name] = op
	}
	r1Op, ok := byName["(flip-all r1)"]
	require.True(t, ok)
	assert.Contains(t, r1Op.PosPre, model.NewFact("lit", "r1"))
	assert.Contains(t, r1Op.Del, model.NewFact("lit", "r1"))
	assert.NotContains(t, r1Op.Del, model.NewFact("lit", "r2"))
	assert.True(t, r1Op.Applicable(tsk.Init))
}

// A forall effect nested inside a normally-parameterized action instead
// expands within a single operator: every matching binding's condition
// becomes a precondition of that one operator, and its effect is folded in.
func TestGroundForallWhenSingleOperatorExpansion(t *testing.T) {
	dom := `
(define (domain lights2)
  (:types room)
  (:predicates (lit ?r - room) (master ?s - room))
  (:action flip-from
    :parameters (?s - room)
    :precondition (master ?s)
    :effect (forall (?r - room) (when (lit ?r) (not (lit ?r))))))
`
	prob := `
(define (problem lights2p)
  (:domain lights2)
  (:objects r1 r2 - room)
  (:init (master r1) (lit r1) (lit r2))
  (:goal (and (lit r1))))
`
	d, p := mustParse(t, dom, prob)
	g := New(d, p)
	tsk, _, err := g.Ground()
	require.NoError(t, err)
	require.Len(t, tsk.Operators, 1)
	op := tsk.Operators[0]
	assert.Equal(t, "(flip-from r1)", op.Name)
	assert.Contains(t, op.PosPre, model.NewFact("lit", "r1"))
	assert.Contains(t, op.PosPre, model.NewFact("lit", "r2"))
	assert.Contains(t, op.Del, model.NewFact("lit", "r1"))
	assert.Contains(t, op.Del, model.NewFact("lit", "r2"))
}
