package query

import (
	"strings"

	"github.com/romainf28/pddl-solver/internal/landmarks"
	"github.com/romainf28/pddl-solver/internal/model"
	"github.com/romainf28/pddl-solver/internal/task"
)

// sanitize turns a Fact or Operator's canonical string ("(on a b)") into a
// Mangle name-safe identifier ("on_a_b"). Predicate/operator symbols are
// already lower-cased by model.NewFact, so the only remaining work is
// stripping the parens and punctuation PDDL allows in symbols (notably
// '-') that Mangle identifiers do not.
func sanitize(s string) string {
	s = strings.Trim(s, "()")
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := b.String()
	if out == "" {
		return "empty"
	}
	if out[0] >= '0' && out[0] <= '9' {
		return "n" + out
	}
	return out
}

func factName(f model.Fact) string    { return sanitize(string(f)) }
func opName(op model.Operator) string { return sanitize(op.Name) }

// Load asserts t's grounded facts and operators, plus lm's landmark set, as
// Datalog facts and evaluates the fixed rule set in schema.go to a fixpoint.
// lm may be nil, in which case landmark-dependent relations
// (necessary_for_goal, landmark_producer) simply stay empty.
func Load(e *Engine, t *task.Task, lm *landmarks.Graph) error {
	var facts []Fact

	initSet := make(map[model.Fact]struct{}, len(t.Init.Facts()))
	for _, f := range t.Init.Facts() {
		initSet[f] = struct{}{}
	}
	goalSet := make(map[model.Fact]struct{}, len(t.Goals))
	for _, f := range t.Goals {
		goalSet[f] = struct{}{}
	}

	for _, f := range t.Facts {
		name := factName(f)
		facts = append(facts, Fact{Predicate: "fact", Args: []string{name}})
		if _, ok := initSet[f]; ok {
			facts = append(facts, Fact{Predicate: "init", Args: []string{name}})
		}
		if _, ok := goalSet[f]; ok {
			facts = append(facts, Fact{Predicate: "goal", Args: []string{name}})
		}
		if lm != nil {
			if _, ok := lm.Cost[f]; ok {
				facts = append(facts, Fact{Predicate: "landmark", Args: []string{name}})
			}
		}
	}

	for _, op := range t.Operators {
		opN := opName(op)
		facts = append(facts, Fact{Predicate: "op", Args: []string{opN}})
		for _, f := range op.PosPre {
			facts = append(facts, Fact{Predicate: "op_pre", Args: []string{opN, factName(f)}})
		}
		for _, f := range op.Add {
			facts = append(facts, Fact{Predicate: "op_add", Args: []string{opN, factName(f)}})
		}
		for _, f := range op.Del {
			facts = append(facts, Fact{Predicate: "op_del", Args: []string{opN, factName(f)}})
		}
	}

	if err := e.AddFacts(facts); err != nil {
		return err
	}
	return e.Eval()
}
