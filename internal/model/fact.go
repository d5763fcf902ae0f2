// Package model holds the canonical fact/state/operator representation
// shared by the grounder, both planners, and the plan validator.
package model

import (
	"sort"
	"strings"
)

// Fact is a grounded predicate instance: a canonical textual identifier
// formed from a predicate symbol and its argument tuple, e.g. "(on a b)".
// Facts are immutable, comparable by value, and usable as map keys.
type Fact string

// NewFact canonicalizes a predicate and its grounded arguments into a Fact.
// Canonicalization is purely syntactic: the predicate and every argument
// are lower-cased and joined with single spaces inside parentheses, so two
// calls with the same (predicate, args) in the same order always produce
// the same Fact.
func NewFact(predicate string, args ...string) Fact {
	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(strings.ToLower(predicate))
	for _, a := range args {
		b.WriteByte(' ')
		b.WriteString(strings.ToLower(a))
	}
	b.WriteByte(')')
	return Fact(b.String())
}

// Predicate returns the predicate symbol of the fact.
func (f Fact) Predicate() string {
	inner := strings.TrimSuffix(strings.TrimPrefix(string(f), "("), ")")
	if i := strings.IndexByte(inner, ' '); i >= 0 {
		return inner[:i]
	}
	return inner
}

// Args returns the fact's grounded argument tuple.
func (f Fact) Args() []string {
	inner := strings.TrimSuffix(strings.TrimPrefix(string(f), "("), ")")
	parts := strings.Split(inner, " ")
	if len(parts) <= 1 {
		return nil
	}
	return parts[1:]
}

// SortedFacts returns facts sorted lexicographically, used wherever
// deterministic enumeration order matters (§3, tie-break rules in §4.1).
func SortedFacts(facts []Fact) []Fact {
	out := make([]Fact, len(facts))
	copy(out, facts)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
