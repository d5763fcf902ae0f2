package sat

import (
	"context"
	"fmt"

	"github.com/romainf28/pddl-solver/internal/logging"
	"github.com/romainf28/pddl-solver/internal/model"
	"github.com/romainf28/pddl-solver/internal/planerr"
	"github.com/romainf28/pddl-solver/internal/task"
)

// ErrNoPlanWithinHorizon is returned when max_horizon is reached without a
// satisfying assignment (spec.md §4.7).
var ErrNoPlanWithinHorizon = fmt.Errorf("no plan found within the configured horizon cap: %w", planerr.ErrUnsolvable)

// DriverResult is the outcome of a horizon-extension run.
type DriverResult struct {
	Plan     []model.Operator
	Horizon  int
	Warnings []string
}

// Run builds the encoding at minHorizon, invokes solver, and — on
// UNSAT — extends the horizon by one and re-solves using the cached
// pre-goal formula, reusing the same Encoder throughout so action-semantics
// and frame-axiom clauses are never re-derived (spec.md §4.6, §4.7).
// Cancellation is cooperative between solves, checked at the top of each
// horizon iteration as spec.md §5 allows.
func Run(ctx context.Context, t *task.Task, minHorizon, maxHorizon int, solver Solver, assertAtLeastOneAction bool) (DriverResult, error) {
	log := logging.Get(logging.CategorySAT)
	enc := NewEncoder(t, assertAtLeastOneAction)

	for horizon := minHorizon; horizon <= maxHorizon; horizon++ {
		select {
		case <-ctx.Done():
			return DriverResult{}, fmt.Errorf("sat driver cancelled at horizon %d: %w", horizon, ctx.Err())
		default:
		}

		enc.EncodeUpTo(horizon)
		clauses := append(append([][]int{}, enc.Clauses()...), enc.GoalClauses(horizon)...)

		log.Info("solving at horizon %d (%d vars, %d clauses)", horizon, enc.NumVars(), len(clauses))
		sat, assignment, err := solver.Solve(ctx, enc.NumVars(), clauses)
		if err != nil {
			return DriverResult{}, err
		}
		if !sat {
			log.Debug("horizon %d unsatisfiable, extending", horizon)
			continue
		}

		plan, warnings, err := Extract(enc, assignment, horizon)
		if err != nil {
			return DriverResult{}, err
		}
		log.Info("plan found at horizon %d (%d steps)", horizon, len(plan))
		return DriverResult{Plan: plan, Horizon: horizon, Warnings: warnings}, nil
	}

	return DriverResult{}, ErrNoPlanWithinHorizon
}
