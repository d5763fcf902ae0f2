package sat

import (
	"fmt"

	"github.com/romainf28/pddl-solver/internal/model"
	"github.com/romainf28/pddl-solver/internal/task"
)

// Encoder builds the bounded-horizon plan encoding of spec.md §4.5
// incrementally: action semantics and frame axioms accumulate permanently
// in the underlying CNF as the horizon grows, while the goal clause is
// recomputed fresh for every horizon rather than accumulated, matching
// §4.6's "maintains the last-emitted formula excluding the goal clause, so
// extending the horizon only appends one new action-disjunction and a
// fresh goal clause."
type Encoder struct {
	t              *task.Task
	m              *Manager
	cnf            *CNF
	horizonBuilt   int // steps [0, horizonBuilt) are fully encoded
	atLeastOneStep bool
}

// NewEncoder builds the step-0 initial-state clauses and returns an encoder
// ready to grow to any horizon via EncodeUpTo.
func NewEncoder(t *task.Task, assertAtLeastOneAction bool) *Encoder {
	m := NewManager()
	e := &Encoder{t: t, m: m, cnf: NewCNF(m), atLeastOneStep: assertAtLeastOneAction}
	e.encodeInitialState()
	return e
}

func (e *Encoder) factVar(f model.Fact, step int) Formula {
	return e.m.Var(fmt.Sprintf("f:%d:%s", step, string(f)))
}

func (e *Encoder) opVar(op model.Operator, step int) Formula {
	return e.m.Var(fmt.Sprintf("op:%d:%s", step, op.Key()))
}

func (e *Encoder) encodeInitialState() {
	for _, f := range e.t.Facts {
		v := e.factVar(f, 0)
		if e.t.Init.Contains(f) {
			e.cnf.Assert(v)
		} else {
			e.cnf.Assert(e.m.Not(v))
		}
	}
}

// EncodeUpTo extends the permanent encoding (action semantics, frame
// axioms, at-most-one / optional at-least-one) to cover every step in
// [0, horizon), doing nothing for steps already built when called again
// with a smaller or equal horizon.
func (e *Encoder) EncodeUpTo(horizon int) {
	for t := e.horizonBuilt; t < horizon; t++ {
		e.encodeStep(t)
	}
	if horizon > e.horizonBuilt {
		e.horizonBuilt = horizon
	}
}

func (e *Encoder) encodeStep(t int) {
	for _, op := range e.t.Operators {
		opLit := e.opVar(op, t)
		for _, f := range op.PosPre {
			e.cnf.assertImplies(opLit, e.factVar(f, t))
		}
		for _, f := range op.NegPre {
			e.cnf.assertImplies(opLit, e.m.Not(e.factVar(f, t)))
		}
		for _, f := range op.Add {
			e.cnf.assertImplies(opLit, e.factVar(f, t+1))
		}
		for _, f := range op.Del {
			e.cnf.assertImplies(opLit, e.m.Not(e.factVar(f, t+1)))
		}
	}

	addersOf := make(map[model.Fact][]model.Operator)
	delersOf := make(map[model.Fact][]model.Operator)
	for _, op := range e.t.Operators {
		for _, f := range op.Add {
			addersOf[f] = append(addersOf[f], op)
		}
		for _, f := range op.Del {
			delersOf[f] = append(delersOf[f], op)
		}
	}

	for _, f := range e.t.Facts {
		fT := e.cnf.Emit(e.factVar(f, t))
		fT1 := e.cnf.Emit(e.factVar(f, t+1))

		addClause := []int{fT, -fT1}
		for _, op := range addersOf[f] {
			addClause = append(addClause, e.cnf.Emit(e.opVar(op, t)))
		}
		e.cnf.addClause(addClause...)

		delClause := []int{-fT, fT1}
		for _, op := range delersOf[f] {
			delClause = append(delClause, e.cnf.Emit(e.opVar(op, t)))
		}
		e.cnf.addClause(delClause...)
	}

	for i := 0; i < len(e.t.Operators); i++ {
		li := e.cnf.Emit(e.opVar(e.t.Operators[i], t))
		for j := i + 1; j < len(e.t.Operators); j++ {
			lj := e.cnf.Emit(e.opVar(e.t.Operators[j], t))
			e.cnf.addClause(-li, -lj)
		}
	}

	if e.atLeastOneStep {
		lits := make([]int, len(e.t.Operators))
		for i, op := range e.t.Operators {
			lits[i] = e.cnf.Emit(e.opVar(op, t))
		}
		if len(lits) > 0 {
			e.cnf.addClause(lits...)
		}
	}
}

// GoalClauses returns the fresh unit clauses asserting every goal fact at
// step horizon, without mutating the permanent accumulator — callers
// append these to Clauses() for a single solve and discard them when the
// horizon is extended.
func (e *Encoder) GoalClauses(horizon int) [][]int {
	out := make([][]int, 0, len(e.t.Goals))
	for _, f := range e.t.Goals {
		lit := e.cnf.Emit(e.factVar(f, horizon))
		out = append(out, []int{lit})
	}
	return out
}

// Clauses returns the permanent clauses built so far (initial state,
// action semantics, frame axioms, at-most/least-one), excluding the goal.
func (e *Encoder) Clauses() [][]int { return e.cnf.Clauses() }

// NumVars returns the number of distinct DIMACS variables allocated so far.
func (e *Encoder) NumVars() int { return e.cnf.NumVars() }

// Manager exposes the underlying formula manager, used by the extractor to
// map a satisfying assignment's variable indices back to fact/operator
// identities.
func (e *Encoder) Manager() *Manager { return e.m }

// Task exposes the task being encoded.
func (e *Encoder) Task() *task.Task { return e.t }
