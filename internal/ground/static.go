package ground

import "github.com/romainf28/pddl-solver/internal/pddl"

// staticPredicates computes the set of static predicates of dom: those that
// appear in no action's add or delete effect, including effects nested
// inside forall-when blocks (spec.md §4.1 step 1). Every other declared
// predicate is dynamic.
func staticPredicates(dom *pddl.Domain) map[string]bool {
	dynamic := make(map[string]bool)
	for _, act := range dom.Actions {
		for _, lit := range act.EffLiterals {
			dynamic[lit.Predicate] = true
		}
		for _, fa := range act.EffForall {
			for _, lit := range fa.Effects {
				dynamic[lit.Predicate] = true
			}
		}
	}

	static := make(map[string]bool)
	for _, p := range dom.Predicates {
		if !dynamic[p.Name] {
			static[p.Name] = true
		}
	}
	return static
}

// initIndex answers "which objects appear at argument position p of some
// initial-state instance of predicate pred" queries, used by the static
// filter of spec.md §4.1 step 3.
type initIndex struct {
	// byPredicate[pred][pos] is the set of object names seen at that
	// position in some initial atom of pred.
	byPredicate map[string][]map[string]struct{}
	holds       map[string]bool // canonicalKey(pred, args) -> true
}

func buildInitIndex(initAtoms []pddl.Literal) *initIndex {
	idx := &initIndex{
		byPredicate: make(map[string][]map[string]struct{}),
		holds:       make(map[string]bool),
	}
	for _, atom := range initAtoms {
		idx.holds[canonicalKey(atom.Predicate, atom.Args)] = true
		positions := idx.byPredicate[atom.Predicate]
		for len(positions) < len(atom.Args) {
			positions = append(positions, make(map[string]struct{}))
		}
		for i, a := range atom.Args {
			positions[i][a] = struct{}{}
		}
		idx.byPredicate[atom.Predicate] = positions
	}
	return idx
}

func canonicalKey(pred string, args []string) string {
	s := pred
	for _, a := range args {
		s += "\x00" + a
	}
	return s
}

// Holds reports whether pred(args...) is an initial-state atom.
func (idx *initIndex) Holds(pred string, args []string) bool {
	return idx.holds[canonicalKey(pred, args)]
}

// ObjectsAtPosition returns the set of objects seen at position pos of
// predicate pred in the initial state.
func (idx *initIndex) ObjectsAtPosition(pred string, pos int) map[string]struct{} {
	positions := idx.byPredicate[pred]
	if pos < 0 || pos >= len(positions) {
		return nil
	}
	return positions[pos]
}
