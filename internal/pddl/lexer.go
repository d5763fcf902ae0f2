package pddl

import (
	"fmt"
	"strings"
)

// tokenKind distinguishes the handful of token shapes PDDL's s-expression
// syntax needs.
type tokenKind int

const (
	tokLParen tokenKind = iota
	tokRParen
	tokSymbol
	tokEOF
)

type token struct {
	kind tokenKind
	text string
	line int
}

// lexer turns raw PDDL text into a flat token stream. Comments start with
// ';' and run to end of line; everything else is either parenthesis or an
// unquoted symbol (identifiers, keywords like :parameters, variables like
// ?x, and the literal hyphen used in type lists).
type lexer struct {
	src  []rune
	pos  int
	line int
}

func newLexer(src string) *lexer {
	return &lexer{src: []rune(src), line: 1}
}

func (l *lexer) tokenize() ([]token, error) {
	var toks []token
	for {
		l.skipSpaceAndComments()
		if l.pos >= len(l.src) {
			toks = append(toks, token{kind: tokEOF, line: l.line})
			return toks, nil
		}
		c := l.src[l.pos]
		switch {
		case c == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", line: l.line})
			l.pos++
		case c == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", line: l.line})
			l.pos++
		default:
			start := l.pos
			for l.pos < len(l.src) && !isDelim(l.src[l.pos]) {
				l.pos++
			}
			if l.pos == start {
				return nil, fmt.Errorf("pddl: unexpected character %q at line %d", string(c), l.line)
			}
			toks = append(toks, token{kind: tokSymbol, text: string(l.src[start:l.pos]), line: l.line})
		}
	}
}

func (l *lexer) skipSpaceAndComments() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\n':
			l.line++
			l.pos++
		case c == ' ' || c == '\t' || c == '\r':
			l.pos++
		case c == ';':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		default:
			return
		}
	}
}

func isDelim(r rune) bool {
	return r == '(' || r == ')' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// sexpr is a parsed s-expression node: either an atom (leaf, Sym != "") or a
// list of child nodes.
type sexpr struct {
	Sym      string
	Children []*sexpr
}

func (s *sexpr) isAtom() bool { return s != nil && s.Sym != "" }

func (s *sexpr) String() string {
	if s.isAtom() {
		return s.Sym
	}
	parts := make([]string, len(s.Children))
	for i, c := range s.Children {
		parts[i] = c.String()
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// parseSexprs reads every top-level s-expression in src.
func parseSexprs(src string) ([]*sexpr, error) {
	l := newLexer(src)
	toks, err := l.tokenize()
	if err != nil {
		return nil, err
	}
	p := &sexprParser{toks: toks}
	var out []*sexpr
	for p.peek().kind != tokEOF {
		n, err := p.parseOne()
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

type sexprParser struct {
	toks []token
	pos  int
}

func (p *sexprParser) peek() token { return p.toks[p.pos] }

func (p *sexprParser) next() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *sexprParser) parseOne() (*sexpr, error) {
	t := p.next()
	switch t.kind {
	case tokSymbol:
		return &sexpr{Sym: t.text}, nil
	case tokLParen:
		node := &sexpr{}
		for p.peek().kind != tokRParen {
			if p.peek().kind == tokEOF {
				return nil, fmt.Errorf("pddl: unterminated list starting at line %d", t.line)
			}
			child, err := p.parseOne()
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, child)
		}
		p.next() // consume ')'
		return node, nil
	default:
		return nil, fmt.Errorf("pddl: unexpected %q at line %d", t.text, t.line)
	}
}
