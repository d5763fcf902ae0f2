// Package search implements the weighted-A* forward search of spec.md §4.4,
// driven by any heuristic satisfying the Heuristic interface (landmarks or
// FF/RPG).
package search

import (
	"container/heap"
	"math"

	"github.com/romainf28/pddl-solver/internal/logging"
	"github.com/romainf28/pddl-solver/internal/model"
	"github.com/romainf28/pddl-solver/internal/task"
)

// DefaultWeight is the configuration default named in spec.md §4.4: weight 1
// is admissible A*, weight > 1 trades optimality for speed. The search is
// complete for any w >= 1 on a finite state space.
const DefaultWeight = 5.0

// Heuristic exposes the single capability spec.md §9 asks for: evaluate a
// search node and return a cost in [0, +Inf]. Both the landmark heuristic
// (stateful, carries a not_reached set forward) and the FF/RPG heuristic
// (stateless, recomputed from scratch) implement it, and the search treats
// them uniformly.
type Heuristic interface {
	// Evaluate returns the heuristic cost at state, given the extra
	// heuristic state (if any) the parent handed down via Advance.
	Evaluate(state model.State, aux interface{}) float64
	// Advance derives the child's heuristic auxiliary state from the
	// parent's aux and the facts the applied operator added. Stateless
	// heuristics can return nil.
	Advance(aux interface{}, added []model.Fact) interface{}
	// Root returns the auxiliary heuristic state for the search's start
	// node.
	Root(init model.State) interface{}
}

// Result is the outcome of a Run call.
type Result struct {
	Plan      []model.Operator
	Expanded  int
	Solvable  bool
}

type node struct {
	state   model.State
	g       float64
	h       float64
	aux     interface{}
	parent  *node
	via     model.Operator // the operator applied to reach this node from its parent
	index   int             // insertion order, the tie-break of spec.md §4.4
	heapIdx int
}

type priority struct {
	f float64
	h float64
	i int
}

func (p priority) less(o priority) bool {
	if p.f != o.f {
		return p.f < o.f
	}
	if p.h != o.h {
		return p.h < o.h
	}
	return p.i < o.i
}

// nodeHeap is a binary min-heap over (g + w*h, h, insertion_index), the
// exact ordering tuple of spec.md §4.4. weight is fixed for the lifetime of
// one search.
type nodeHeap struct {
	nodes  []*node
	weight float64
}

func (h nodeHeap) Len() int { return len(h.nodes) }
func (h nodeHeap) Less(i, j int) bool {
	return h.nodes[i].priorityKey(h.weight).less(h.nodes[j].priorityKey(h.weight))
}
func (h nodeHeap) Swap(i, j int) {
	h.nodes[i], h.nodes[j] = h.nodes[j], h.nodes[i]
	h.nodes[i].heapIdx, h.nodes[j].heapIdx = i, j
}
func (h *nodeHeap) Push(x interface{}) {
	n := x.(*node)
	n.heapIdx = len(h.nodes)
	h.nodes = append(h.nodes, n)
}
func (h *nodeHeap) Pop() interface{} {
	old := h.nodes
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	h.nodes = old[:n-1]
	return item
}

func (n *node) priorityKey(weight float64) priority {
	return priority{f: n.g + weight*n.h, h: n.h, i: n.index}
}

// Run performs the weighted-A* loop of spec.md §4.4: pop the least node; if
// its g no longer matches the best recorded g for its state, discard
// (reopening already superseded it); if the state satisfies the goal,
// extract and return the plan; otherwise expand every applicable operator,
// compute each child's h, skip +Inf children, and push/ update the
// best-known-g table whenever a child improves on it.
func Run(t *task.Task, h Heuristic, weight float64) Result {
	log := logging.Get(logging.CategorySearch)
	if weight <= 0 {
		weight = DefaultWeight
	}

	bestG := make(map[string]float64)
	counter := 0

	root := &node{
		state: t.Init,
		g:     0,
		aux:   h.Root(t.Init),
		index: counter,
	}
	counter++
	root.h = h.Evaluate(root.state, root.aux)
	bestG[root.state.Key()] = root.g

	pq := &nodeHeap{weight: weight}
	heap.Init(pq)
	heap.Push(pq, root)

	expanded := 0
	for pq.Len() > 0 {
		n := heap.Pop(pq).(*node)

		if g, ok := bestG[n.state.Key()]; ok && n.g > g {
			continue // superseded by a cheaper path found since this was pushed
		}

		if t.GoalSatisfied(n.state) {
			log.Info("plan found: %d steps, %d nodes expanded", planLength(n), expanded)
			return Result{Plan: extractPlan(n), Expanded: expanded, Solvable: true}
		}

		expanded++
		for _, op := range t.ApplicableOperators(n.state) {
			childState := op.Apply(n.state)
			childAux := h.Advance(n.aux, op.Add)
			childH := h.Evaluate(childState, childAux)
			if math.IsInf(childH, 1) {
				continue
			}
			childG := n.g + 1

			key := childState.Key()
			if existing, ok := bestG[key]; ok && childG >= existing {
				continue
			}
			bestG[key] = childG

			child := &node{
				state:  childState,
				g:      childG,
				h:      childH,
				aux:    childAux,
				parent: n,
				via:    op,
				index:  counter,
			}
			counter++
			heap.Push(pq, child)
		}
	}

	log.Info("no plan found: %d nodes expanded", expanded)
	return Result{Solvable: false, Expanded: expanded}
}

func planLength(n *node) int {
	count := 0
	for p := n; p.parent != nil; p = p.parent {
		count++
	}
	return count
}

// extractPlan walks the parent chain from n back to the root and reverses
// it into root-to-goal order.
func extractPlan(n *node) []model.Operator {
	var rev []model.Operator
	for p := n; p.parent != nil; p = p.parent {
		rev = append(rev, p.via)
	}
	plan := make([]model.Operator, len(rev))
	for i, op := range rev {
		plan[len(rev)-1-i] = op
	}
	return plan
}
