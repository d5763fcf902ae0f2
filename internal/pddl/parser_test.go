package pddl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const blocksDomain = `
(define (domain blocks)
  (:types block)
  (:predicates
    (on-table ?b - block)
    (clear ?b - block)
    (hand-empty)
    (holding ?b - block)
    (on ?x - block ?y - block))

  (:action pickup
    :parameters (?b - block)
    :precondition (and (on-table ?b) (clear ?b) (hand-empty))
    :effect (and (holding ?b) (not (on-table ?b)) (not (clear ?b)) (not (hand-empty))))

  (:action stack
    :parameters (?x - block ?y - block)
    :precondition (and (holding ?x) (clear ?y))
    :effect (and (on ?x ?y) (clear ?x) (hand-empty) (not (holding ?x)) (not (clear ?y)))))
`

const blocksProblem = `
(define (problem two-blocks)
  (:domain blocks)
  (:objects a b - block)
  (:init (on-table a) (on-table b) (clear a) (clear b) (hand-empty))
  (:goal (and (on a b))))
`

func TestParseDomain(t *testing.T) {
	dom, err := ParseDomain(blocksDomain)
	require.NoError(t, err)
	assert.Equal(t, "blocks", dom.Name)
	assert.Len(t, dom.Predicates, 5)
	require.Len(t, dom.Actions, 2)

	pickup := dom.Actions[0]
	assert.Equal(t, "pickup", pickup.Name)
	require.Len(t, pickup.Params, 1)
	assert.Equal(t, "block", pickup.Params[0].Type)
	assert.Len(t, pickup.Precond, 3)
	assert.Len(t, pickup.EffLiterals, 4)

	negated := 0
	for _, lit := range pickup.EffLiterals {
		if !lit.Positive() {
			negated++
		}
	}
	assert.Equal(t, 3, negated)
}

func TestParseProblem(t *testing.T) {
	prob, err := ParseProblem(blocksProblem)
	require.NoError(t, err)
	assert.Equal(t, "two-blocks", prob.Name)
	assert.Equal(t, "blocks", prob.DomainName)
	assert.Len(t, prob.Objects, 2)
	assert.Len(t, prob.InitAtoms, 5)
	require.Len(t, prob.GoalAtoms, 1)
	assert.Equal(t, "on", prob.GoalAtoms[0].Predicate)
}

func TestParseRejectsDisjunction(t *testing.T) {
	dom := `
(define (domain d)
  (:predicates (p))
  (:action a
    :parameters ()
    :precondition (or (p) (p))
    :effect (p)))
`
	_, err := ParseDomain(dom)
	require.Error(t, err)
}

func TestForallWhenEffect(t *testing.T) {
	dom := `
(define (domain lights)
  (:types room)
  (:predicates (lit ?r - room) (switched))
  (:action flip-all
    :parameters ()
    :precondition (switched)
    :effect (forall (?r - room) (when (lit ?r) (not (lit ?r))))))
`
	d, err := ParseDomain(dom)
	require.NoError(t, err)
	require.Len(t, d.Actions, 1)
	require.Len(t, d.Actions[0].EffForall, 1)
	fa := d.Actions[0].EffForall[0]
	assert.Equal(t, "room", fa.Vars[0].Type)
	assert.Equal(t, "lit", fa.Cond.Predicate)
	require.Len(t, fa.Effects, 1)
	assert.False(t, fa.Effects[0].Positive())
}
