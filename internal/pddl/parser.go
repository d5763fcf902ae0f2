package pddl

import (
	"fmt"
	"strings"

	"github.com/romainf28/pddl-solver/internal/planerr"
)

// ParseDomain parses PDDL domain text into a Domain.
func ParseDomain(src string) (*Domain, error) {
	exprs, err := parseSexprs(src)
	if err != nil {
		return nil, err
	}
	if len(exprs) != 1 {
		return nil, fmt.Errorf("pddl: expected a single top-level define form")
	}
	top := exprs[0]
	if !matchesHead(top, "define") {
		return nil, fmt.Errorf("pddl: domain file must start with (define ...)")
	}

	dom := &Domain{Types: TypeHierarchy{}}
	for i, child := range top.Children {
		if i == 0 {
			continue // the "define" symbol itself
		}
		if matchesHead(child, "domain") && len(child.Children) == 2 {
			dom.Name = child.Children[1].Sym
			continue
		}
		if child.isAtom() || len(child.Children) == 0 {
			continue
		}
		head := child.Children[0].Sym
		switch head {
		case ":requirements":
			// Requirements are advisory; unsupported requirements beyond
			// the STRIPS+typing+negative-preconditions+forall fragment are
			// rejected explicitly when they manifest as actual constructs
			// (numeric fluents, derived predicates, etc.), not by name here.
		case ":types":
			parseTypeList(child.Children[1:], dom.Types)
		case ":constants":
			dom.Constants = append(dom.Constants, parseTypedParams(child.Children[1:])...)
		case ":predicates":
			for _, p := range child.Children[1:] {
				sig, err := parsePredicateSig(p)
				if err != nil {
					return nil, err
				}
				dom.Predicates = append(dom.Predicates, sig)
			}
		case ":action":
			act, err := parseAction(child)
			if err != nil {
				return nil, err
			}
			dom.Actions = append(dom.Actions, act)
		default:
			return nil, fmt.Errorf("pddl: domain construct %q outside the supported fragment: %w", head, planerr.ErrUnsupportedFeature)
		}
	}
	return dom, nil
}

// ParseProblem parses PDDL problem text into a Problem.
func ParseProblem(src string) (*Problem, error) {
	exprs, err := parseSexprs(src)
	if err != nil {
		return nil, err
	}
	if len(exprs) != 1 {
		return nil, fmt.Errorf("pddl: expected a single top-level define form")
	}
	top := exprs[0]
	if !matchesHead(top, "define") {
		return nil, fmt.Errorf("pddl: problem file must start with (define ...)")
	}

	prob := &Problem{}
	for i, child := range top.Children {
		if i == 0 {
			continue
		}
		if matchesHead(child, "problem") && len(child.Children) == 2 {
			prob.Name = child.Children[1].Sym
			continue
		}
		if matchesHead(child, ":domain") && len(child.Children) == 2 {
			prob.DomainName = child.Children[1].Sym
			continue
		}
		if child.isAtom() || len(child.Children) == 0 {
			continue
		}
		head := child.Children[0].Sym
		switch head {
		case ":objects":
			for _, o := range parseTypedParams(child.Children[1:]) {
				prob.Objects = append(prob.Objects, TypedObject{Name: o.Name, Type: o.Type})
			}
		case ":init":
			for _, a := range child.Children[1:] {
				lit, err := parseLiteral(a)
				if err != nil {
					return nil, err
				}
				prob.InitAtoms = append(prob.InitAtoms, lit)
			}
		case ":goal":
			lits, err := parseConjunction(child.Children[1])
			if err != nil {
				return nil, err
			}
			for _, lit := range lits {
				if !lit.Positive() {
					return nil, fmt.Errorf("pddl: negative goal %s is unsupported: %w", lit.Predicate, planerr.ErrUnsupportedFeature)
				}
			}
			prob.GoalAtoms = lits
		default:
			return nil, fmt.Errorf("pddl: problem construct %q outside the supported fragment: %w", head, planerr.ErrUnsupportedFeature)
		}
	}
	return prob, nil
}

func matchesHead(n *sexpr, head string) bool {
	return n != nil && !n.isAtom() && len(n.Children) > 0 && n.Children[0].Sym == head
}

// parseTypeList parses a (possibly typed) list such as:
//
//	block1 block2 - block
//	block1 - block  location - object
//
// into the hierarchy map: every name preceding " - parent" maps to parent;
// a trailing run with no "- parent" maps to "" (root type).
func parseTypeList(nodes []*sexpr, into TypeHierarchy) {
	var pending []string
	i := 0
	for i < len(nodes) {
		if nodes[i].Sym == "-" {
			parent := ""
			if i+1 < len(nodes) {
				parent = nodes[i+1].Sym
			}
			for _, n := range pending {
				into[n] = parent
			}
			pending = nil
			i += 2
			continue
		}
		pending = append(pending, nodes[i].Sym)
		i++
	}
	for _, n := range pending {
		if _, ok := into[n]; !ok {
			into[n] = ""
		}
	}
}

// parseTypedParams parses a flat "?x ?y - type ?z - type2" or
// "a b - type c - type2" list into TypedParam entries, defaulting to type
// "object" when no "- type" group is given. Variable names are stored
// without their leading "?".
func parseTypedParams(nodes []*sexpr) []TypedParam {
	var out []TypedParam
	var pending []string
	flush := func(typ string) {
		for _, n := range pending {
			out = append(out, TypedParam{Name: strings.TrimPrefix(n, "?"), Type: typ})
		}
		pending = nil
	}
	i := 0
	for i < len(nodes) {
		if nodes[i].Sym == "-" {
			typ := "object"
			if i+1 < len(nodes) {
				typ = nodes[i+1].Sym
			}
			flush(typ)
			i += 2
			continue
		}
		pending = append(pending, nodes[i].Sym)
		i++
	}
	flush("object")
	return out
}

func parsePredicateSig(n *sexpr) (PredicateSig, error) {
	if n.isAtom() || len(n.Children) == 0 {
		return PredicateSig{}, fmt.Errorf("pddl: malformed predicate declaration %s", n.String())
	}
	sig := PredicateSig{Name: n.Children[0].Sym}
	for _, p := range parseTypedParams(n.Children[1:]) {
		sig.ArgTypes = append(sig.ArgTypes, p.Type)
	}
	return sig, nil
}

func parseLiteral(n *sexpr) (Literal, error) {
	if n.isAtom() {
		return Literal{}, fmt.Errorf("pddl: expected a literal, got atom %q", n.Sym)
	}
	if len(n.Children) == 0 {
		return Literal{}, fmt.Errorf("pddl: empty literal")
	}
	if n.Children[0].Sym == "not" {
		if len(n.Children) != 2 {
			return Literal{}, fmt.Errorf("pddl: malformed negation %s", n.String())
		}
		inner, err := parseLiteral(n.Children[1])
		if err != nil {
			return Literal{}, err
		}
		inner.Sign = -1
		return inner, nil
	}
	lit := Literal{Sign: 1, Predicate: n.Children[0].Sym}
	for _, a := range n.Children[1:] {
		lit.Args = append(lit.Args, a.Sym)
	}
	return lit, nil
}

// parseConjunction parses a precondition/effect body that is either a bare
// literal, an (and lit...) form, or (not lit). Nested "and" is flattened.
func parseConjunction(n *sexpr) ([]Literal, error) {
	if matchesHead(n, "and") {
		var out []Literal
		for _, c := range n.Children[1:] {
			sub, err := parseConjunction(c)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
		}
		return out, nil
	}
	if matchesHead(n, "or") {
		return nil, fmt.Errorf("pddl: disjunctive conditions are unsupported: %w", planerr.ErrUnsupportedFeature)
	}
	lit, err := parseLiteral(n)
	if err != nil {
		return nil, err
	}
	return []Literal{lit}, nil
}

// parseEffectBody parses an effect body into its plain literals and any
// top-level forall(...)-when(...)-then(...) blocks. Only one `when`
// condition per forall is supported (spec.md §9.c).
func parseEffectBody(n *sexpr) ([]Literal, []Forall, error) {
	if matchesHead(n, "and") {
		var lits []Literal
		var foralls []Forall
		for _, c := range n.Children[1:] {
			subLits, subForalls, err := parseEffectBody(c)
			if err != nil {
				return nil, nil, err
			}
			lits = append(lits, subLits...)
			foralls = append(foralls, subForalls...)
		}
		return lits, foralls, nil
	}
	if matchesHead(n, "forall") {
		if len(n.Children) != 3 {
			return nil, nil, fmt.Errorf("pddl: forall must have a variable list and a body: %w", planerr.ErrUnsupportedFeature)
		}
		vars := parseTypedParams(n.Children[1].Children)
		body := n.Children[2]
		if !matchesHead(body, "when") || len(body.Children) != 3 {
			return nil, nil, fmt.Errorf("pddl: only forall(vars).when(cond).then(effects) is supported: %w", planerr.ErrUnsupportedFeature)
		}
		cond, err := parseLiteral(body.Children[1])
		if err != nil {
			return nil, nil, err
		}
		effLits, nestedForalls, err := parseEffectBody(body.Children[2])
		if err != nil {
			return nil, nil, err
		}
		if len(nestedForalls) > 0 {
			return nil, nil, fmt.Errorf("pddl: nested forall effects are unsupported: %w", planerr.ErrUnsupportedFeature)
		}
		return nil, []Forall{{Vars: vars, Cond: cond, Effects: effLits}}, nil
	}
	lit, err := parseLiteral(n)
	if err != nil {
		return nil, nil, err
	}
	return []Literal{lit}, nil, nil
}

func parseAction(n *sexpr) (Action, error) {
	// (:action name :parameters (...) :precondition (...) :effect (...))
	if len(n.Children) < 2 {
		return Action{}, fmt.Errorf("pddl: malformed :action form")
	}
	act := Action{Name: n.Children[1].Sym}

	fields := n.Children[2:]
	for i := 0; i+1 < len(fields); i += 2 {
		key := fields[i].Sym
		val := fields[i+1]
		switch key {
		case ":parameters":
			act.Params = parseTypedParams(val.Children)
		case ":precondition":
			lits, err := parseConjunction(val)
			if err != nil {
				return Action{}, err
			}
			act.Precond = lits
		case ":effect":
			lits, foralls, err := parseEffectBody(val)
			if err != nil {
				return Action{}, err
			}
			act.EffLiterals = lits
			act.EffForall = foralls
		default:
			return Action{}, fmt.Errorf("pddl: action field %q outside the supported fragment: %w", key, planerr.ErrUnsupportedFeature)
		}
	}
	return act, nil
}

// ParseFile is a convenience wrapper dispatching on file contents: a file
// whose top-level form is "(define (domain ...) ...)" parses as a Domain,
// "(define (problem ...) ...)" as a Problem.
func ParseFile(contents string) (dom *Domain, prob *Problem, err error) {
	trimmed := strings.TrimSpace(contents)
	exprs, err := parseSexprs(trimmed)
	if err != nil {
		return nil, nil, err
	}
	if len(exprs) != 1 || !matchesHead(exprs[0], "define") {
		return nil, nil, fmt.Errorf("pddl: expected a single (define ...) form")
	}
	for _, c := range exprs[0].Children {
		if matchesHead(c, "domain") {
			d, err := ParseDomain(trimmed)
			return d, nil, err
		}
		if matchesHead(c, "problem") {
			p, err := ParseProblem(trimmed)
			return nil, p, err
		}
	}
	return nil, nil, fmt.Errorf("pddl: could not determine whether input is a domain or problem")
}
