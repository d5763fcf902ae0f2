package model

import "testing"

func TestStateContainsAndLen(t *testing.T) {
	a, b := NewFact("a"), NewFact("b")
	s := NewState(a, b)
	if !s.Contains(a) || !s.Contains(b) {
		t.Fatalf("expected state to contain both facts")
	}
	if s.Contains(NewFact("c")) {
		t.Fatalf("state should not contain an unrelated fact")
	}
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
}

func TestStateSubsetAndDisjoint(t *testing.T) {
	a, b, c := NewFact("a"), NewFact("b"), NewFact("c")
	s := NewState(a, b)

	if !s.Subset([]Fact{a}) {
		t.Fatalf("{a} should be a subset")
	}
	if s.Subset([]Fact{a, c}) {
		t.Fatalf("{a, c} should not be a subset")
	}
	if !s.Disjoint([]Fact{c}) {
		t.Fatalf("{c} should be disjoint from s")
	}
	if s.Disjoint([]Fact{a, c}) {
		t.Fatalf("{a, c} should not be disjoint from s (a is a member)")
	}
}

func TestStateWithAndWithoutAreImmutable(t *testing.T) {
	a, b, c := NewFact("a"), NewFact("b"), NewFact("c")
	s := NewState(a, b)

	withC := s.With([]Fact{c})
	if s.Contains(c) {
		t.Fatalf("With must not mutate the receiver")
	}
	if !withC.Contains(a) || !withC.Contains(b) || !withC.Contains(c) {
		t.Fatalf("With result missing a fact: %v", withC.Facts())
	}

	withoutA := s.Without([]Fact{a})
	if !s.Contains(a) {
		t.Fatalf("Without must not mutate the receiver")
	}
	if withoutA.Contains(a) || !withoutA.Contains(b) {
		t.Fatalf("Without result wrong: %v", withoutA.Facts())
	}
}

func TestStateWithoutEmptyReturnsSameFacts(t *testing.T) {
	s := NewState(NewFact("a"))
	out := s.Without(nil)
	if !out.Equal(s) {
		t.Fatalf("Without(nil) should be a no-op")
	}
}

func TestStateUnionAndIntersect(t *testing.T) {
	a, b, c := NewFact("a"), NewFact("b"), NewFact("c")
	s1 := NewState(a, b)
	s2 := NewState(b, c)

	union := s1.Union(s2)
	if !union.Contains(a) || !union.Contains(b) || !union.Contains(c) {
		t.Fatalf("Union missing a fact: %v", union.Facts())
	}

	inter := s1.Intersect(s2)
	if inter.Len() != 1 || !inter.Contains(b) {
		t.Fatalf("Intersect() = %v, want {b}", inter.Facts())
	}
}

func TestStateEqual(t *testing.T) {
	a, b := NewFact("a"), NewFact("b")
	s1 := NewState(a, b)
	s2 := NewState(b, a)
	s3 := NewState(a)

	if !s1.Equal(s2) {
		t.Fatalf("states with the same facts in different construction order should be equal")
	}
	if s1.Equal(s3) {
		t.Fatalf("states with different facts should not be equal")
	}
}

func TestStateKeyIsOrderIndependentAndStable(t *testing.T) {
	a, b := NewFact("a"), NewFact("b")
	s1 := NewState(a, b)
	s2 := NewState(b, a)

	if s1.Key() != s2.Key() {
		t.Fatalf("Key() should not depend on construction order: %q vs %q", s1.Key(), s2.Key())
	}

	s3 := NewState(a)
	if s1.Key() == s3.Key() {
		t.Fatalf("distinct states should not share a Key()")
	}
}
