// Package task holds the immutable Task type produced by the grounder and
// consumed by both planners, plus successor generation for the heuristic
// search.
package task

import (
	"fmt"

	"github.com/romainf28/pddl-solver/internal/model"
	"github.com/romainf28/pddl-solver/internal/planerr"
)

// Task is the immutable tuple (Name, Facts, Init, Goals, Operators) of
// spec.md §3. It owns its facts, goals, initial state, and operators for
// its lifetime.
type Task struct {
	Name      string
	Facts     []model.Fact
	Init      model.State
	Goals     []model.Fact
	Operators []model.Operator
}

// New validates and constructs a Task, enforcing the invariants of
// spec.md §3: Init ⊆ Facts, Goals ⊆ Facts, and every operator's four fact
// sets ⊆ Facts.
func New(name string, facts []model.Fact, init model.State, goals []model.Fact, ops []model.Operator) (*Task, error) {
	universe := make(map[model.Fact]struct{}, len(facts))
	for _, f := range facts {
		universe[f] = struct{}{}
	}

	for _, f := range init.Facts() {
		if _, ok := universe[f]; !ok {
			return nil, fmt.Errorf("task %q: initial fact %s not in fact universe: %w", name, f, planerr.ErrInvariantViolation)
		}
	}
	for _, f := range goals {
		if _, ok := universe[f]; !ok {
			return nil, fmt.Errorf("task %q: goal fact %s not in fact universe: %w", name, f, planerr.ErrInvariantViolation)
		}
	}
	for _, op := range ops {
		for _, group := range [][]model.Fact{op.PosPre, op.NegPre, op.Add, op.Del} {
			for _, f := range group {
				if _, ok := universe[f]; !ok {
					return nil, fmt.Errorf("task %q: operator %s references fact %s outside fact universe: %w", name, op.Name, f, planerr.ErrInvariantViolation)
				}
			}
		}
	}

	return &Task{
		Name:      name,
		Facts:     facts,
		Init:      init,
		Goals:     goals,
		Operators: ops,
	}, nil
}

// GoalSatisfied reports whether s satisfies every goal fact.
func (t *Task) GoalSatisfied(s model.State) bool {
	return s.Subset(t.Goals)
}

// ApplicableOperators returns, in declared enumeration order, every operator
// in t whose preconditions hold in s — the successor generator used by the
// weighted-A* search (C6) and by plan validation.
func (t *Task) ApplicableOperators(s model.State) []model.Operator {
	var out []model.Operator
	for _, op := range t.Operators {
		if op.Applicable(s) {
			out = append(out, op)
		}
	}
	return out
}

// ValidatePlan re-applies plan from t.Init and reports whether the
// resulting state satisfies the goal, implementing the end-to-end validator
// of testable property 3 in spec.md §8. It fails closed: an inapplicable
// step is reported as an error rather than silently skipped, matching the
// "abort, never silently skip" rule of spec.md §7.
func ValidatePlan(t *Task, plan []model.Operator) (model.State, error) {
	s := t.Init
	for i, op := range plan {
		if !op.Applicable(s) {
			return s, fmt.Errorf("plan step %d (%s) not applicable in state reached so far: %w", i, op.Name, planerr.ErrInvariantViolation)
		}
		s = op.Apply(s)
	}
	if !t.GoalSatisfied(s) {
		return s, fmt.Errorf("plan does not reach the goal: %w", planerr.ErrInvariantViolation)
	}
	return s, nil
}
