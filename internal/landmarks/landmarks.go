// Package landmarks implements fact-landmark identification and cost
// partitioning (spec.md §4.3): the heuristic used by the weighted-A* search
// (internal/search) alongside the FF heuristic (internal/rpg).
package landmarks

import (
	"math"

	"github.com/romainf28/pddl-solver/internal/logging"
	"github.com/romainf28/pddl-solver/internal/model"
	"github.com/romainf28/pddl-solver/internal/task"
)

// Graph holds the landmark set and per-landmark cost for one task. Its
// lifecycle is bounded by the planning run that built it (spec.md §3).
type Graph struct {
	Landmarks []model.Fact
	Cost      map[model.Fact]float64 // ∞ (math.Inf(1)) marks an unsolvable task
}

// Analyze computes the landmark set and cost partitioning for t
// (spec.md §4.3). Every goal fact is a landmark by definition; additional
// candidates are every fact mentioned in some operator's add effect.
func Analyze(t *task.Task) *Graph {
	log := logging.Get(logging.CategoryLandmarks)

	goalSet := make(map[model.Fact]struct{}, len(t.Goals))
	landmarkSet := make(map[model.Fact]struct{}, len(t.Goals))
	for _, f := range t.Goals {
		goalSet[f] = struct{}{}
		landmarkSet[f] = struct{}{}
	}

	candidateSet := make(map[model.Fact]struct{})
	for _, op := range t.Operators {
		for _, f := range op.Add {
			if _, isGoal := goalSet[f]; isGoal {
				continue
			}
			candidateSet[f] = struct{}{}
		}
	}

	for f := range candidateSet {
		if isLandmark(t, f) {
			landmarkSet[f] = struct{}{}
		}
	}

	landmarks := make([]model.Fact, 0, len(landmarkSet))
	for f := range landmarkSet {
		landmarks = append(landmarks, f)
	}
	landmarks = model.SortedFacts(landmarks)

	cost := partitionCosts(t, landmarks)
	log.Info("identified %d landmarks", len(landmarks))
	return &Graph{Landmarks: landmarks, Cost: cost}
}

// isLandmark reports whether f is a landmark: the delete-relaxation with
// every operator that adds f excluded cannot reach the goal from
// t.Init (spec.md §4.3).
func isLandmark(t *task.Task, f model.Fact) bool {
	var excluded []model.Operator
	for _, op := range t.Operators {
		if containsFact(op.Add, f) {
			continue
		}
		excluded = append(excluded, op)
	}
	return !monotoneReachable(t.Init, excluded, t.Goals)
}

// monotoneReachable runs delete-free forward expansion using only ops and
// reports whether every goal fact becomes true.
func monotoneReachable(start model.State, ops []model.Operator, goals []model.Fact) bool {
	reached := start
	for {
		if reached.Subset(goals) {
			return true
		}
		var newFacts []model.Fact
		for _, op := range ops {
			if op.Applicable(reached) {
				newFacts = append(newFacts, op.Add...)
			}
		}
		next := reached.With(newFacts)
		if next.Len() == reached.Len() {
			return reached.Subset(goals)
		}
		reached = next
	}
}

// partitionCosts implements spec.md §4.3's cost partitioning: for each
// landmark ℓ, cost(ℓ) = min over operators adding ℓ of 1/|A(op)|, where
// A(op) is the set of landmarks op adds. A landmark added by no operator
// gets cost +Inf (the task is unsolvable).
func partitionCosts(t *task.Task, landmarks []model.Fact) map[model.Fact]float64 {
	landmarkSet := make(map[model.Fact]struct{}, len(landmarks))
	for _, f := range landmarks {
		landmarkSet[f] = struct{}{}
	}

	addCounts := make(map[string]int) // operator key -> |A(op)|
	for _, op := range t.Operators {
		count := 0
		for _, f := range op.Add {
			if _, ok := landmarkSet[f]; ok {
				count++
			}
		}
		addCounts[op.Key()] = count
	}

	cost := make(map[model.Fact]float64, len(landmarks))
	for _, lm := range landmarks {
		best := math.Inf(1)
		for _, op := range t.Operators {
			if !containsFact(op.Add, lm) {
				continue
			}
			n := addCounts[op.Key()]
			if n <= 0 {
				continue
			}
			c := 1.0 / float64(n)
			if c < best {
				best = c
			}
		}
		cost[lm] = best
	}
	return cost
}

func containsFact(facts []model.Fact, f model.Fact) bool {
	for _, x := range facts {
		if x == f {
			return true
		}
	}
	return false
}

// NotReached computes the root's not_reached set: landmarks not already
// true in init (spec.md §4.3).
func (g *Graph) NotReached(init model.State) map[model.Fact]struct{} {
	out := make(map[model.Fact]struct{})
	for _, f := range g.Landmarks {
		if !init.Contains(f) {
			out[f] = struct{}{}
		}
	}
	return out
}

// Advance derives a child's not_reached set from its parent's by removing
// every fact the applied action added (spec.md §4.3).
func Advance(parentNotReached map[model.Fact]struct{}, added []model.Fact) map[model.Fact]struct{} {
	out := make(map[model.Fact]struct{}, len(parentNotReached))
	for f := range parentNotReached {
		out[f] = struct{}{}
	}
	for _, f := range added {
		delete(out, f)
	}
	return out
}

// Evaluate computes the heuristic value at a node: the sum of landmark
// costs over not_reached ∪ (goals \ state) — goal facts that are currently
// false count even if they were produced earlier along the path, which
// preserves admissibility while staying goal-sensitive (spec.md §4.3).
func (g *Graph) Evaluate(notReached map[model.Fact]struct{}, state model.State, goals []model.Fact) float64 {
	counted := make(map[model.Fact]struct{}, len(notReached))
	for f := range notReached {
		counted[f] = struct{}{}
	}
	for _, f := range goals {
		if !state.Contains(f) {
			counted[f] = struct{}{}
		}
	}

	total := 0.0
	for f := range counted {
		c, ok := g.Cost[f]
		if !ok {
			continue // no cost recorded for f, so it contributes nothing
		}
		if math.IsInf(c, 1) {
			return math.Inf(1)
		}
		total += c
	}
	return total
}
