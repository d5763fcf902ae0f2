package ground

import (
	"sort"

	"github.com/romainf28/pddl-solver/internal/pddl"
)

// objectIndex answers "which objects have type T (including subtypes)"
// queries in sorted order, as required by the grounder's tie-break rule
// (spec.md §4.1: "iterate objects in sorted order by name").
type objectIndex struct {
	byType map[string][]string // type -> sorted object names (incl. subtypes)
	all    []string
}

func buildObjectIndex(dom *pddl.Domain, prob *pddl.Problem) *objectIndex {
	declared := make(map[string]string) // object name -> declared type
	var names []string
	for _, o := range prob.Objects {
		declared[o.Name] = o.Type
		names = append(names, o.Name)
	}
	for _, c := range dom.Constants {
		if _, ok := declared[c.Name]; !ok {
			declared[c.Name] = c.Type
			names = append(names, c.Name)
		}
	}
	sort.Strings(names)

	byType := make(map[string][]string)
	for _, typ := range allTypes(dom, declared) {
		var matching []string
		subtypes := dom.Subtypes(typ)
		subset := make(map[string]struct{}, len(subtypes))
		for _, t := range subtypes {
			subset[t] = struct{}{}
		}
		for _, n := range names {
			if _, ok := subset[declared[n]]; ok {
				matching = append(matching, n)
			}
		}
		byType[typ] = matching
	}
	return &objectIndex{byType: byType, all: names}
}

func allTypes(dom *pddl.Domain, declared map[string]string) []string {
	seen := map[string]struct{}{"object": {}}
	for t := range dom.Types {
		seen[t] = struct{}{}
	}
	for _, t := range declared {
		seen[t] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// ObjectsOfType returns every object (sorted by name) whose declared type is
// typ or a descendant of typ.
func (idx *objectIndex) ObjectsOfType(typ string) []string {
	if objs, ok := idx.byType[typ]; ok {
		return objs
	}
	return nil
}
