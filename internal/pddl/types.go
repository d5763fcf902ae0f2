// Package pddl is the external-collaborator PDDL lexer/parser: it turns
// domain and problem text into the lifted Domain/Problem types the grounder
// (internal/ground) consumes. It supports exactly the STRIPS fragment named
// in spec.md §1: typed parameters, negative preconditions, and a single
// level of universally quantified conditional effects.
package pddl

// Literal is a precondition or effect atom: [sign, predicate, args...].
// Sign is -1 for a negated atom, +1 otherwise.
type Literal struct {
	Sign      int
	Predicate string
	Args      []string
}

// Positive reports whether the literal is unnegated.
func (l Literal) Positive() bool { return l.Sign >= 0 }

// Forall is a universally quantified conditional effect:
// forall(Vars). when(Cond) then(Effects). Only a single positive or
// negative `when` condition is supported (spec.md §4.1 step 4, §9.c).
type Forall struct {
	Vars    []TypedParam
	Cond    Literal
	Effects []Literal
}

// TypedParam is one parameter of an action schema or forall binder.
type TypedParam struct {
	Name string
	Type string
}

// PredicateSig is a predicate's declared signature: name plus the type of
// each argument position, used by the grounder's static-predicate filter.
type PredicateSig struct {
	Name      string
	ArgTypes  []string
}

// Action is a lifted action schema.
type Action struct {
	Name       string
	Params     []TypedParam
	Precond    []Literal
	EffLiterals []Literal
	EffForall  []Forall
}

// TypeHierarchy maps a type name to its declared parent type ("" for a
// root type, conventionally "object").
type TypeHierarchy map[string]string

// Domain is a parsed PDDL domain.
type Domain struct {
	Name       string
	Types      TypeHierarchy
	Predicates []PredicateSig
	Constants  []TypedParam
	Actions    []Action
}

// Subtypes returns every type name that is typ or a descendant of typ
// (inclusive), per the type hierarchy's inheritance rule (spec.md §4.1.3).
func (d Domain) Subtypes(typ string) []string {
	out := []string{typ}
	changed := true
	for changed {
		changed = false
		for t, parent := range d.Types {
			if parent == "" {
				continue
			}
			for _, known := range out {
				if parent == known && !contains(out, t) {
					out = append(out, t)
					changed = true
				}
			}
		}
	}
	return out
}

func contains(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}

// TypedObject is a problem object with its declared type.
type TypedObject struct {
	Name string
	Type string
}

// Problem is a parsed PDDL problem.
type Problem struct {
	Name         string
	DomainName   string
	Objects      []TypedObject
	InitAtoms    []Literal
	GoalAtoms    []Literal
}
