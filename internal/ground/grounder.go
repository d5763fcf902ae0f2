// Package ground implements the grounder (spec.md §4.1): the lifted-to-
// propositional translation from a typed PDDL domain+problem into a
// task.Task, with static-predicate filtering and irrelevance pruning.
package ground

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/romainf28/pddl-solver/internal/logging"
	"github.com/romainf28/pddl-solver/internal/model"
	"github.com/romainf28/pddl-solver/internal/pddl"
	"github.com/romainf28/pddl-solver/internal/planerr"
	"github.com/romainf28/pddl-solver/internal/task"
)

// Warning describes a non-fatal grounding event (spec.md §7,
// planerr.ErrUngroundableDomain): an action schema that could not be
// grounded is dropped rather than aborting the whole run.
type Warning struct {
	Action string
	Reason string
}

// Error renders w as planerr.ErrUngroundableDomain wrapped with context, for
// callers that want to log or collect warnings as errors.
func (w Warning) Error() string {
	return fmt.Sprintf("action %q: %s: %v", w.Action, w.Reason, planerr.ErrUngroundableDomain)
}

// Grounder translates a lifted domain+problem into a task.Task.
type Grounder struct {
	dom  *pddl.Domain
	prob *pddl.Problem
	log  *logging.Logger
}

// New constructs a Grounder for dom/prob.
func New(dom *pddl.Domain, prob *pddl.Problem) *Grounder {
	return &Grounder{dom: dom, prob: prob, log: logging.Get(logging.CategoryGrounder)}
}

// Ground runs the full grounding pipeline of spec.md §4.1 steps 1-7 and
// returns the resulting task plus any non-fatal warnings. It fails with
// planerr.ErrUnsupportedFeature only when the domain uses constructs
// outside the supported fragment (surfaced earlier, at parse time, by
// internal/pddl); grounding itself never returns that error directly.
func (g *Grounder) Ground() (*task.Task, []Warning, error) {
	static := staticPredicates(g.dom)
	initIdx := buildInitIndex(g.prob.InitAtoms)
	objects := buildObjectIndex(g.dom, g.prob)

	g.log.Info("static predicates: %v", keys(static))

	var allOps []model.Operator
	var warnings []Warning

	for _, act := range g.dom.Actions {
		ops, warn, err := g.groundAction(act, static, initIdx, objects)
		if err != nil {
			return nil, nil, err
		}
		if warn != nil {
			warnings = append(warnings, *warn)
		}
		allOps = append(allOps, ops...)
	}

	universe := factUniverse(allOps, g.goalFacts())
	init := g.canonicalInit(static, initIdx, universe)

	relevantOps := pruneIrrelevant(allOps, g.goalFacts())

	// Recompute the universe after pruning: an operator's precondition
	// facts may have become dead once its effects were trimmed to the
	// relevant set (spec.md §4.1 step 7).
	finalUniverse := factUniverse(relevantOps, g.goalFacts())
	finalInit := model.NewState(intersectFacts(init.Facts(), finalUniverse)...)

	t, err := task.New(g.dom.Name, toSlice(finalUniverse), finalInit, g.goalFacts(), relevantOps)
	if err != nil {
		return nil, nil, err
	}

	g.log.Info("grounded %d operators over %d facts (from %d raw operators)", len(relevantOps), len(finalUniverse), len(allOps))
	return t, warnings, nil
}

// goalFacts canonicalizes the problem's goal atoms. Negative goals never
// reach this point: pddl.ParseProblem rejects them with
// planerr.ErrUnsupportedFeature, so this core only sees positive goals.
func (g *Grounder) goalFacts() []model.Fact {
	facts := make([]model.Fact, 0, len(g.prob.GoalAtoms))
	for _, a := range g.prob.GoalAtoms {
		facts = append(facts, model.NewFact(a.Predicate, a.Args...))
	}
	return facts
}

// canonicalInit renders the initial state as canonical facts and restricts
// it to the fact universe (spec.md §4.1 steps 2 and 6): static-true facts
// not referenced by any dynamic precondition are implicit and dropped.
func (g *Grounder) canonicalInit(static map[string]bool, initIdx *initIndex, universe map[model.Fact]struct{}) model.State {
	var facts []model.Fact
	for _, a := range g.prob.InitAtoms {
		f := model.NewFact(a.Predicate, a.Args...)
		if _, ok := universe[f]; ok {
			facts = append(facts, f)
		}
	}
	return model.NewState(facts...)
}

func factUniverse(ops []model.Operator, goals []model.Fact) map[model.Fact]struct{} {
	universe := make(map[model.Fact]struct{})
	for _, op := range ops {
		for _, group := range [][]model.Fact{op.PosPre, op.NegPre, op.Add, op.Del} {
			for _, f := range group {
				universe[f] = struct{}{}
			}
		}
	}
	for _, f := range goals {
		universe[f] = struct{}{}
	}
	return universe
}

func toSlice(set map[model.Fact]struct{}) []model.Fact {
	out := make([]model.Fact, 0, len(set))
	for f := range set {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func intersectFacts(facts []model.Fact, universe map[model.Fact]struct{}) []model.Fact {
	var out []model.Fact
	for _, f := range facts {
		if _, ok := universe[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// binding maps a schema variable ("?x") to a grounded object name.
type binding map[string]string

func substitute(lit pddl.Literal, b binding) pddl.Literal {
	args := make([]string, len(lit.Args))
	for i, a := range lit.Args {
		if strings.HasPrefix(a, "?") {
			args[i] = b[a]
		} else {
			args[i] = a
		}
	}
	return pddl.Literal{Sign: lit.Sign, Predicate: lit.Predicate, Args: args}
}

func literalFact(lit pddl.Literal) model.Fact {
	return model.NewFact(lit.Predicate, lit.Args...)
}

// groundAction produces every operator instantiating act, per spec.md
// §4.1 steps 3-4.
func (g *Grounder) groundAction(act pddl.Action, static map[string]bool, initIdx *initIndex, objects *objectIndex) ([]model.Operator, *Warning, error) {
	params := act.Params
	// Per spec.md §4.1 step 3: a schema with no ordinary parameters but a
	// forall effect is grounded per-binding of that effect's quantified
	// variables, one operator per combination (not a universal expansion
	// within a single operator). Only the first forall block is treated
	// this way, matching the single-nested-forall assumption of §9.c.
	effectiveParamsFromForall := len(act.Params) == 0 && len(act.EffForall) > 0
	if effectiveParamsFromForall {
		params = act.EffForall[0].Vars
	}

	// Start from the type-filtered candidate set per parameter, then apply
	// the static filter for each static precondition mentioning that
	// parameter (spec.md §4.1 step 3).
	candidates := make([][]string, len(params))
	for i, p := range params {
		candidates[i] = objects.ObjectsOfType(p.Type)
	}
	paramPos := make(map[string]int, len(params))
	for i, p := range params {
		paramPos["?"+p.Name] = i
	}

	for _, lit := range act.Precond {
		if !static[lit.Predicate] {
			continue
		}
		for pos, arg := range lit.Args {
			pi, ok := paramPos[arg]
			if !ok {
				continue
			}
			seen := initIdx.ObjectsAtPosition(lit.Predicate, pos)
			candidates[pi] = filterCandidates(candidates[pi], seen, lit.Positive())
		}
	}

	for i, c := range candidates {
		if len(c) == 0 && len(params) > 0 {
			return nil, &Warning{Action: act.Name, Reason: fmt.Sprintf("parameter %s has no matching object after static filtering", params[i].Name)}, nil
		}
	}

	var ops []model.Operator
	var firstErr error
	assign(candidates, func(choice []string) {
		if firstErr != nil {
			return
		}
		b := make(binding, len(params))
		for i, p := range params {
			b["?"+p.Name] = choice[i]
		}
		op, ok, err := g.buildOperator(act, params, b, static, initIdx, objects, effectiveParamsFromForall)
		if err != nil {
			firstErr = err
			return
		}
		if ok {
			ops = append(ops, op)
		}
	})
	if firstErr != nil {
		return nil, nil, firstErr
	}

	if len(ops) == 0 && len(params) > 0 {
		return nil, &Warning{Action: act.Name, Reason: "all parameter assignments were rejected by static preconditions"}, nil
	}
	return ops, nil, nil
}

func filterCandidates(candidates []string, seen map[string]struct{}, positive bool) []string {
	var out []string
	for _, c := range candidates {
		_, inSeen := seen[c]
		if inSeen == positive {
			out = append(out, c)
		}
	}
	return out
}

// assign enumerates the Cartesian product of candidates (already sorted by
// name per objectIndex), calling visit once per assignment in deterministic
// order (spec.md §4.1 tie-break rule).
func assign(candidates [][]string, visit func(choice []string)) {
	choice := make([]string, len(candidates))
	var rec func(i int)
	rec = func(i int) {
		if i == len(candidates) {
			visit(append([]string(nil), choice...))
			return
		}
		for _, c := range candidates[i] {
			choice[i] = c
			rec(i + 1)
		}
	}
	rec(0)
}

// buildOperator instantiates act under binding b, implementing spec.md
// §4.1 step 4. ok is false when the assignment is rejected (an
// unsatisfiable static precondition); err is non-nil only for an internal
// invariant violation.
func (g *Grounder) buildOperator(act pddl.Action, params []pddl.TypedParam, b binding, static map[string]bool, initIdx *initIndex, objects *objectIndex, effectiveParamsFromForall bool) (model.Operator, bool, error) {
	var posPre, negPre []model.Fact

	for _, lit := range act.Precond {
		inst := substitute(lit, b)
		if static[lit.Predicate] {
			holds := initIdx.Holds(inst.Predicate, inst.Args)
			if lit.Positive() && !holds {
				return model.Operator{}, false, nil
			}
			if !lit.Positive() && holds {
				return model.Operator{}, false, nil
			}
			continue // static preconditions are dropped, not kept as facts
		}
		f := literalFact(inst)
		if lit.Positive() {
			posPre = append(posPre, f)
		} else {
			negPre = append(negPre, f)
		}
	}

	var add, del []model.Fact
	for _, lit := range act.EffLiterals {
		inst := substitute(lit, b)
		f := literalFact(inst)
		if lit.Positive() {
			add = append(add, f)
		} else {
			del = append(del, f)
		}
	}

	applyForallBinding := func(fa pddl.Forall, fb binding) (ok bool) {
		cond := substitute(fa.Cond, fb)
		condFact := literalFact(cond)
		if static[fa.Cond.Predicate] {
			holds := initIdx.Holds(cond.Predicate, cond.Args)
			if cond.Positive() != holds {
				return false
			}
		} else if cond.Positive() {
			posPre = append(posPre, condFact)
		} else {
			negPre = append(negPre, condFact)
		}
		for _, eff := range fa.Effects {
			instEff := substitute(eff, fb)
			f := literalFact(instEff)
			if eff.Positive() {
				add = append(add, f)
			} else {
				del = append(del, f)
			}
		}
		return true
	}

	for i, fa := range act.EffForall {
		if i == 0 && effectiveParamsFromForall {
			// The forall's variables are this action's own grounding
			// parameters (spec.md §4.1 step 3): b already binds them to a
			// single object tuple, so apply the when/then body once rather
			// than re-enumerating all bindings within this one operator.
			// A static condition that fails to hold rejects the whole
			// assignment, mirroring an unsatisfiable static precondition.
			if !applyForallBinding(fa, b) {
				return model.Operator{}, false, nil
			}
			continue
		}
		forallObjs := make([][]string, len(fa.Vars))
		for i, v := range fa.Vars {
			forallObjs[i] = objects.ObjectsOfType(v.Type)
		}
		assign(forallObjs, func(choice []string) {
			fb := binding{}
			for k, v := range b {
				fb[k] = v
			}
			for i, v := range fa.Vars {
				fb["?"+v.Name] = choice[i]
			}
			applyForallBinding(fa, fb)
		})
	}

	// Apply the disjointness invariants: a delete that is also added or is a
	// negative precondition is dropped (add wins), and an add that is already
	// a positive precondition is dropped.
	var keptAdd, keptDel []model.Fact
	for _, f := range del {
		if !slices.Contains(add, f) && !slices.Contains(negPre, f) {
			keptDel = append(keptDel, f)
		}
	}
	for _, f := range add {
		if !slices.Contains(posPre, f) {
			keptAdd = append(keptAdd, f)
		}
	}
	add, del = keptAdd, keptDel

	name := groundedName(act.Name, params, b)
	op, err := model.NewOperator(name, posPre, negPre, add, del)
	if err != nil {
		return model.Operator{}, false, err
	}
	return op, true, nil
}

func groundedName(actionName string, params []pddl.TypedParam, b binding) string {
	var sb strings.Builder
	sb.WriteByte('(')
	sb.WriteString(actionName)
	for _, p := range params {
		sb.WriteByte(' ')
		sb.WriteString(b["?"+p.Name])
	}
	sb.WriteByte(')')
	return sb.String()
}

// pruneIrrelevant implements the irrelevance analysis of spec.md §4.1
// step 7: compute the least fixed point of relevant facts starting from the
// goals, then restrict every operator's add/delete to relevant facts and
// drop operators left with no effect.
func pruneIrrelevant(ops []model.Operator, goals []model.Fact) []model.Operator {
	relevant := make(map[model.Fact]struct{}, len(goals))
	for _, f := range goals {
		relevant[f] = struct{}{}
	}

	changed := true
	for changed {
		changed = false
		for _, op := range ops {
			touches := false
			for _, f := range append(append([]model.Fact{}, op.Add...), op.Del...) {
				if _, ok := relevant[f]; ok {
					touches = true
					break
				}
			}
			if !touches {
				continue
			}
			for _, f := range append(append([]model.Fact{}, op.PosPre...), op.NegPre...) {
				if _, ok := relevant[f]; !ok {
					relevant[f] = struct{}{}
					changed = true
				}
			}
		}
	}

	var out []model.Operator
	for _, op := range ops {
		var add, del []model.Fact
		for _, f := range op.Add {
			if _, ok := relevant[f]; ok {
				add = append(add, f)
			}
		}
		for _, f := range op.Del {
			if _, ok := relevant[f]; ok {
				del = append(del, f)
			}
		}
		if len(add) == 0 && len(del) == 0 {
			continue
		}
		pruned, err := model.NewOperator(op.Name, op.PosPre, op.NegPre, add, del)
		if err != nil {
			// Pruning can only shrink add/del, which cannot reintroduce a
			// disjointness violation the original construction didn't have.
			continue
		}
		out = append(out, pruned)
	}
	return out
}
