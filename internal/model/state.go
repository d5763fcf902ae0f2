package model

import (
	"sort"
	"strings"
)

// State is an unordered, immutable set of facts. Values of State are safe to
// share: every operation below returns a new State rather than mutating the
// receiver, so a State can be used as a map key (via its Key method) and
// passed freely between search nodes.
type State struct {
	facts map[Fact]struct{}
}

// NewState builds a State from a slice of facts.
func NewState(facts ...Fact) State {
	m := make(map[Fact]struct{}, len(facts))
	for _, f := range facts {
		m[f] = struct{}{}
	}
	return State{facts: m}
}

// Contains reports whether f is a member of s.
func (s State) Contains(f Fact) bool {
	_, ok := s.facts[f]
	return ok
}

// Subset reports whether every fact in sub is also in s.
func (s State) Subset(sub []Fact) bool {
	for _, f := range sub {
		if !s.Contains(f) {
			return false
		}
	}
	return true
}

// Disjoint reports whether s shares no fact with other.
func (s State) Disjoint(other []Fact) bool {
	for _, f := range other {
		if s.Contains(f) {
			return false
		}
	}
	return true
}

// Len returns the number of facts in s.
func (s State) Len() int { return len(s.facts) }

// Facts returns the state's facts in sorted order, a deterministic
// enumeration used by hashing and logging.
func (s State) Facts() []Fact {
	out := make([]Fact, 0, len(s.facts))
	for f := range s.facts {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// With returns a new State equal to s with add added.
func (s State) With(add []Fact) State {
	m := make(map[Fact]struct{}, len(s.facts)+len(add))
	for f := range s.facts {
		m[f] = struct{}{}
	}
	for _, f := range add {
		m[f] = struct{}{}
	}
	return State{facts: m}
}

// Without returns a new State equal to s with del removed.
func (s State) Without(del []Fact) State {
	if len(del) == 0 {
		return s
	}
	drop := make(map[Fact]struct{}, len(del))
	for _, f := range del {
		drop[f] = struct{}{}
	}
	m := make(map[Fact]struct{}, len(s.facts))
	for f := range s.facts {
		if _, d := drop[f]; !d {
			m[f] = struct{}{}
		}
	}
	return State{facts: m}
}

// Union returns the union of s and other.
func (s State) Union(other State) State {
	m := make(map[Fact]struct{}, len(s.facts)+len(other.facts))
	for f := range s.facts {
		m[f] = struct{}{}
	}
	for f := range other.facts {
		m[f] = struct{}{}
	}
	return State{facts: m}
}

// Intersect returns the intersection of s and other.
func (s State) Intersect(other State) State {
	small, big := s, other
	if len(big.facts) < len(small.facts) {
		small, big = big, small
	}
	m := make(map[Fact]struct{})
	for f := range small.facts {
		if big.Contains(f) {
			m[f] = struct{}{}
		}
	}
	return State{facts: m}
}

// Equal reports whether s and other contain exactly the same facts.
func (s State) Equal(other State) bool {
	if len(s.facts) != len(other.facts) {
		return false
	}
	for f := range s.facts {
		if !other.Contains(f) {
			return false
		}
	}
	return true
}

// Key returns a deterministic string encoding of s suitable for use as a
// hash map key (the "deeply hashable" requirement of spec.md §3).
func (s State) Key() string {
	facts := s.Facts()
	strs := make([]string, len(facts))
	for i, f := range facts {
		strs[i] = string(f)
	}
	return strings.Join(strs, "|")
}
