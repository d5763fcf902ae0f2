// Package plandriver wires the grounder's output to one of the two
// planning paths (weighted-A* heuristic search or bounded-horizon SAT) and
// reports a plan, matching the two independent paths spec.md §1 describes
// (components C9 and C10).
package plandriver

import (
	"github.com/romainf28/pddl-solver/internal/landmarks"
	"github.com/romainf28/pddl-solver/internal/logging"
	"github.com/romainf28/pddl-solver/internal/model"
	"github.com/romainf28/pddl-solver/internal/rpg"
	"github.com/romainf28/pddl-solver/internal/search"
	"github.com/romainf28/pddl-solver/internal/task"
)

// HeuristicKind selects which heuristic backs the weighted-A* search.
type HeuristicKind string

const (
	// HeuristicLandmarks uses the cost-partitioned landmark heuristic of
	// spec.md §4.3 (stateful, carries not_reached along the search path).
	HeuristicLandmarks HeuristicKind = "landmarks"
	// HeuristicFF uses the Fast-Forward relaxed-plan-graph heuristic of
	// spec.md §4.2 (stateless, rebuilt from scratch at every node).
	HeuristicFF HeuristicKind = "ff"
)

// landmarkHeuristic adapts *landmarks.Graph to search.Heuristic. Its
// auxiliary state is the node's not_reached set.
type landmarkHeuristic struct {
	t *task.Task
	g *landmarks.Graph
}

func (h landmarkHeuristic) Root(init model.State) interface{} {
	return h.g.NotReached(init)
}

func (h landmarkHeuristic) Advance(aux interface{}, added []model.Fact) interface{} {
	return landmarks.Advance(aux.(map[model.Fact]struct{}), added)
}

func (h landmarkHeuristic) Evaluate(state model.State, aux interface{}) float64 {
	return h.g.Evaluate(aux.(map[model.Fact]struct{}), state, h.t.Goals)
}

// ffHeuristic adapts rpg.FFHeuristic to search.Heuristic. It carries no
// auxiliary state: every evaluation rebuilds the relaxed planning graph
// from the given state.
type ffHeuristic struct {
	t *task.Task
}

func (h ffHeuristic) Root(model.State) interface{}                  { return nil }
func (ffHeuristic) Advance(interface{}, []model.Fact) interface{} { return nil }
func (h ffHeuristic) Evaluate(state model.State, _ interface{}) float64 {
	return rpg.FFHeuristic(h.t, state)
}

// HeuristicResult reports the outcome of a heuristic planning run.
type HeuristicResult struct {
	Plan     []model.Operator
	Expanded int
	Solvable bool
}

// RunHeuristic constructs the requested heuristic for t and runs
// weighted-A* search with the given weight, matching C10's role: "construct
// heuristic, run search, report plan."
func RunHeuristic(t *task.Task, kind HeuristicKind, weight float64) HeuristicResult {
	log := logging.Get(logging.CategorySearch)

	var h search.Heuristic
	switch kind {
	case HeuristicFF:
		h = ffHeuristic{t: t}
	default:
		log.Info("building landmark graph")
		h = landmarkHeuristic{t: t, g: landmarks.Analyze(t)}
	}

	res := search.Run(t, h, weight)
	return HeuristicResult{Plan: res.Plan, Expanded: res.Expanded, Solvable: res.Solvable}
}
