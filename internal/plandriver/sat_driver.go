package plandriver

import (
	"context"

	"github.com/romainf28/pddl-solver/internal/config"
	"github.com/romainf28/pddl-solver/internal/model"
	"github.com/romainf28/pddl-solver/internal/sat"
	"github.com/romainf28/pddl-solver/internal/task"
)

// SATResult is the outcome of a bounded-horizon SAT planning run.
type SATResult struct {
	Plan     []model.Operator
	Horizon  int
	Warnings []string
}

// RunSAT resolves the external solver named in cfg, then runs the
// horizon-extension driver of spec.md §4.7 (component C9) between
// minHorizon and maxHorizon.
func RunSAT(ctx context.Context, t *task.Task, cfg *config.Config, minHorizon, maxHorizon int, assertAtLeastOneAction bool) (SATResult, error) {
	solver, err := sat.NewExternalSolver(cfg.SAT.Solver.Command, cfg.SAT.Solver.Args, cfg.SolverTimeout())
	if err != nil {
		return SATResult{}, err
	}

	res, err := sat.Run(ctx, t, minHorizon, maxHorizon, solver, assertAtLeastOneAction)
	if err != nil {
		return SATResult{}, err
	}
	return SATResult{Plan: res.Plan, Horizon: res.Horizon, Warnings: res.Warnings}, nil
}
