package model

import (
	"fmt"
	"sort"
	"strings"

	"github.com/romainf28/pddl-solver/internal/planerr"
)

// Operator is a named grounded action with four fact sets: positive and
// negative preconditions, and add and delete effects. Equality is
// structural over (Name, the four sets); Operators are used as map keys via
// Key() wherever the SAT encoder or plan extractor needs stable identity.
type Operator struct {
	Name string

	PosPre []Fact
	NegPre []Fact
	Add    []Fact
	Del    []Fact
}

// NewOperator constructs an Operator and enforces the three disjointness
// invariants of spec.md §3:
//
//   - Del ∩ Add = ∅ (on conflict, Add wins: any fact present in both the
//     caller's add and delete sets is kept only in Add).
//   - Add ∩ PosPre = ∅ (an operator never re-asserts a precondition it
//     already required).
//   - Del ∩ NegPre = ∅ (symmetric rule for the negative side).
//
// Violations after these adjustments indicate a grounder bug and are
// reported as planerr.ErrInvariantViolation rather than silently fixed.
func NewOperator(name string, posPre, negPre, add, del []Fact) (Operator, error) {
	addSet := toSet(add)
	delSet := toSet(del)

	// STRIPS disambiguation: add wins on an add/delete conflict.
	cleanDel := make([]Fact, 0, len(del))
	for _, f := range del {
		if _, inAdd := addSet[f]; !inAdd {
			cleanDel = append(cleanDel, f)
		}
	}
	delSet = toSet(cleanDel)

	posSet := toSet(posPre)
	negSet := toSet(negPre)

	op := Operator{
		Name:   name,
		PosPre: dedupSorted(posPre),
		NegPre: dedupSorted(negPre),
		Add:    dedupSorted(add),
		Del:    dedupSorted(cleanDel),
	}

	for f := range addSet {
		if _, ok := posSet[f]; ok {
			return Operator{}, fmt.Errorf("operator %q: add effect %s also a positive precondition: %w", name, f, planerr.ErrInvariantViolation)
		}
	}
	for f := range delSet {
		if _, ok := negSet[f]; ok {
			return Operator{}, fmt.Errorf("operator %q: delete effect %s also a negative precondition: %w", name, f, planerr.ErrInvariantViolation)
		}
	}
	for f := range addSet {
		if _, ok := delSet[f]; ok {
			return Operator{}, fmt.Errorf("operator %q: fact %s in both add and delete after resolution: %w", name, f, planerr.ErrInvariantViolation)
		}
	}

	return op, nil
}

// Applicable reports whether op can be applied to s: positive ⊆ s and
// negative ∩ s = ∅.
func (op Operator) Applicable(s State) bool {
	return s.Subset(op.PosPre) && s.Disjoint(op.NegPre)
}

// Apply returns (s \ Del) ∪ Add. The caller must ensure Applicable(s); Apply
// does not re-check it (a precondition-violating application is a
// programmer error per spec.md §7 and must not be silently tolerated).
func (op Operator) Apply(s State) State {
	return s.Without(op.Del).With(op.Add)
}

// Key returns a stable structural identity string for op, used as a map key
// by the SAT encoder and plan extractor.
func (op Operator) Key() string {
	var b strings.Builder
	b.WriteString(op.Name)
	b.WriteString("|pos:")
	writeFacts(&b, op.PosPre)
	b.WriteString("|neg:")
	writeFacts(&b, op.NegPre)
	b.WriteString("|add:")
	writeFacts(&b, op.Add)
	b.WriteString("|del:")
	writeFacts(&b, op.Del)
	return b.String()
}

func writeFacts(b *strings.Builder, facts []Fact) {
	sorted := SortedFacts(facts)
	for i, f := range sorted {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(string(f))
	}
}

func toSet(facts []Fact) map[Fact]struct{} {
	m := make(map[Fact]struct{}, len(facts))
	for _, f := range facts {
		m[f] = struct{}{}
	}
	return m
}

func dedupSorted(facts []Fact) []Fact {
	set := toSet(facts)
	out := make([]Fact, 0, len(set))
	for f := range set {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
