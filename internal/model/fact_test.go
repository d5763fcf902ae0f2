package model

import "testing"

func TestNewFactCanonicalizesCaseAndArgs(t *testing.T) {
	f := NewFact("ON", "A", "B")
	if f != Fact("(on a b)") {
		t.Fatalf("got %q, want (on a b)", f)
	}
}

func TestNewFactNoArgs(t *testing.T) {
	f := NewFact("hand-empty")
	if f != Fact("(hand-empty)") {
		t.Fatalf("got %q, want (hand-empty)", f)
	}
}

func TestFactPredicateAndArgs(t *testing.T) {
	f := NewFact("on", "a", "b")
	if got := f.Predicate(); got != "on" {
		t.Fatalf("Predicate() = %q, want on", got)
	}
	args := f.Args()
	if len(args) != 2 || args[0] != "a" || args[1] != "b" {
		t.Fatalf("Args() = %v, want [a b]", args)
	}
}

func TestFactArgsEmptyForNullaryPredicate(t *testing.T) {
	f := NewFact("hand-empty")
	if args := f.Args(); len(args) != 0 {
		t.Fatalf("Args() = %v, want none", args)
	}
}

func TestSortedFactsDeterministic(t *testing.T) {
	a := NewFact("clear", "b")
	b := NewFact("clear", "a")
	c := NewFact("on", "a", "b")

	got := SortedFacts([]Fact{a, b, c})
	want := []Fact{Fact("(clear a)"), Fact("(clear b)"), Fact("(on a b)")}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("SortedFacts()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSortedFactsDoesNotMutateInput(t *testing.T) {
	in := []Fact{NewFact("b"), NewFact("a")}
	_ = SortedFacts(in)
	if in[0] != NewFact("b") || in[1] != NewFact("a") {
		t.Fatalf("SortedFacts mutated its input: %v", in)
	}
}
