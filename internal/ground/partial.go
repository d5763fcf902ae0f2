package ground

import (
	"sort"
	"strings"

	"github.com/romainf28/pddl-solver/internal/model"
	"github.com/romainf28/pddl-solver/internal/pddl"
	"github.com/romainf28/pddl-solver/internal/task"
)

// maxPartialExpansions bounds the goal-regression search of GroundPartial so
// a domain that never terminates naturally (spec.md §4.1's partial-grounding
// path has no general termination proof) still returns in bounded time; when
// the cap is hit, partial grounding degrades to whatever operators it found
// rather than looping forever.
const maxPartialExpansions = 20000

// GroundPartial builds the operator set by backward expansion from the goal
// (spec.md §4.1, "Optional partial grounding (goal-regression)"): rather
// than grounding every action against every object, it only discovers the
// operator instantiations that unify with a fact actually needed along some
// backward chain from the goal to the initial state. Used when full
// grounding would explode (e.g. large combinatorial domains).
func (g *Grounder) GroundPartial() (*task.Task, []Warning, error) {
	static := staticPredicates(g.dom)
	initIdx := buildInitIndex(g.prob.InitAtoms)
	objects := buildObjectIndex(g.dom, g.prob)
	goals := g.goalFacts()

	init := model.NewState(canonicalFacts(g.prob.InitAtoms)...)

	discovered := make(map[string]model.Operator) // operator key -> operator
	visited := make(map[string]struct{})

	type target struct{ facts []model.Fact }
	frontier := []target{{facts: goals}}
	visited[targetKey(goals)] = struct{}{}

	expansions := 0
	for len(frontier) > 0 && expansions < maxPartialExpansions {
		t := frontier[0]
		frontier = frontier[1:]

		if init.Subset(t.facts) {
			continue // this chain already bottoms out at the initial state
		}

		for _, act := range g.dom.Actions {
			newTargets := g.regressAction(act, t.facts, static, initIdx, objects, discovered)
			for _, nt := range newTargets {
				expansions++
				key := targetKey(nt)
				if _, ok := visited[key]; ok {
					continue
				}
				visited[key] = struct{}{}
				frontier = append(frontier, target{facts: nt})
			}
		}
	}

	var ops []model.Operator
	for _, op := range discovered {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i].Name < ops[j].Name })

	relevantOps := pruneIrrelevant(ops, goals)
	universe := factUniverse(relevantOps, goals)
	finalInit := model.NewState(intersectFacts(init.Facts(), universe)...)

	t, err := task.New(g.dom.Name, toSlice(universe), finalInit, goals, relevantOps)
	if err != nil {
		return nil, nil, err
	}
	return t, nil, nil
}

func canonicalFacts(atoms []pddl.Literal) []model.Fact {
	out := make([]model.Fact, 0, len(atoms))
	for _, a := range atoms {
		out = append(out, model.NewFact(a.Predicate, a.Args...))
	}
	return out
}

func targetKey(facts []model.Fact) string {
	sorted := model.SortedFacts(facts)
	strs := make([]string, len(sorted))
	for i, f := range sorted {
		strs[i] = string(f)
	}
	return strings.Join(strs, "|")
}

// regressAction finds every way act's add effects can unify with a fact in
// target, completes the remaining free variables with every object of the
// parameter's type (buildOperator then rejects assignments whose static
// preconditions fail), builds the resulting operator (deduping by key into
// discovered), and returns the regression target for each new operator
// found: (target \ op.Add) ∪ op.PosPre, restricted away from facts the
// operator itself produces.
func (g *Grounder) regressAction(act pddl.Action, target []model.Fact, static map[string]bool, initIdx *initIndex, objects *objectIndex, discovered map[string]model.Operator) [][]model.Fact {
	params := act.Params
	if len(params) == 0 && len(act.EffForall) > 0 {
		params = act.EffForall[0].Vars
	}

	var newTargets [][]model.Fact
	for _, lit := range act.EffLiterals {
		if !lit.Positive() {
			continue
		}
		for _, goalFact := range target {
			if goalFact.Predicate() != lit.Predicate {
				continue
			}
			partial := unify(lit, goalFact, params)
			if partial == nil {
				continue
			}
			g.completeBindings(params, partial, objects, func(b binding) {
				op, ok, err := g.buildOperator(act, params, b, static, initIdx, objects, len(act.Params) == 0 && len(act.EffForall) > 0)
				if err != nil || !ok {
					return
				}
				if _, seen := discovered[op.Key()]; seen {
					return
				}
				discovered[op.Key()] = op

				remaining := make(map[model.Fact]struct{})
				for _, f := range target {
					remaining[f] = struct{}{}
				}
				for _, f := range op.Add {
					delete(remaining, f)
				}
				for _, f := range op.PosPre {
					remaining[f] = struct{}{}
				}
				next := make([]model.Fact, 0, len(remaining))
				for f := range remaining {
					next = append(next, f)
				}
				newTargets = append(newTargets, next)
			})
		}
	}
	return newTargets
}

// unify attempts to bind lit's variable arguments against fact's grounded
// arguments (same predicate assumed already checked). Returns nil if a
// variable would need two different values, or a variable repeats with
// conflicting positions, or a constant argument mismatches.
func unify(lit pddl.Literal, fact model.Fact, params []pddl.TypedParam) binding {
	factArgs := fact.Args()
	if len(lit.Args) != len(factArgs) {
		return nil
	}
	isParam := make(map[string]bool, len(params))
	for _, p := range params {
		isParam["?"+p.Name] = true
	}

	b := binding{}
	for i, a := range lit.Args {
		if isParam[a] {
			if existing, ok := b[a]; ok && existing != factArgs[i] {
				return nil
			}
			b[a] = factArgs[i]
		} else if a != factArgs[i] {
			return nil // constant mismatch
		}
	}
	return b
}

// completeBindings enumerates every object assignment for params not
// already bound in partial, calling visit once per complete binding.
func (g *Grounder) completeBindings(params []pddl.TypedParam, partial binding, objects *objectIndex, visit func(b binding)) {
	var free []pddl.TypedParam
	for _, p := range params {
		if _, ok := partial["?"+p.Name]; !ok {
			free = append(free, p)
		}
	}
	candidates := make([][]string, len(free))
	for i, p := range free {
		candidates[i] = objects.ObjectsOfType(p.Type)
	}
	assign(candidates, func(choice []string) {
		b := binding{}
		for k, v := range partial {
			b[k] = v
		}
		for i, p := range free {
			b["?"+p.Name] = choice[i]
		}
		visit(b)
	})
}
