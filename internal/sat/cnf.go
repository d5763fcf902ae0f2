package sat

// CNF accumulates the Tseitin clausification of a Manager's formula DAG.
// Because Manager hash-conses nodes, clausifying the same subformula twice
// returns the same literal without re-emitting clauses — the "introduces
// Tseitin auxiliary variables for conjunctions that appear as literals of a
// disjunction" requirement of spec.md §4.5, generalized to every compound
// node rather than only AND-under-OR.
type CNF struct {
	m        *Manager
	clauses  [][]int
	litCache map[Formula]int
	trueUnit bool // whether the $true pinning unit clause has been emitted
}

// NewCNF returns an empty clause accumulator over m.
func NewCNF(m *Manager) *CNF {
	return &CNF{m: m, litCache: make(map[Formula]int)}
}

// Clauses returns the accumulated clauses in DIMACS literal form (no
// trailing 0 terminators; the DIMACS writer in solver.go adds those).
func (c *CNF) Clauses() [][]int { return c.clauses }

// NumVars returns the number of distinct boolean variables referenced,
// which is also the Manager's next unassigned DIMACS index minus one.
func (c *CNF) NumVars() int { return c.m.nextVar - 1 }

func (c *CNF) addClause(lits ...int) {
	clause := make([]int, len(lits))
	copy(clause, lits)
	c.clauses = append(c.clauses, clause)
}

// Emit returns the DIMACS literal equivalent to f, clausifying any
// not-yet-seen compound subformula along the way.
func (c *CNF) Emit(f Formula) int {
	if lit, ok := c.litCache[f]; ok {
		return lit
	}

	n := c.m.nodes[f]
	var lit int
	switch n.kind {
	case kindVar:
		lit = n.varIndex
		if n.name == "$true" && !c.trueUnit {
			c.addClause(lit)
			c.trueUnit = true
		}
	case kindNot:
		lit = -c.Emit(n.left)
	case kindAnd:
		la := c.Emit(n.left)
		lb := c.Emit(n.right)
		x := c.m.nextVar
		c.m.nextVar++
		c.addClause(-x, la)
		c.addClause(-x, lb)
		c.addClause(x, -la, -lb)
		lit = x
	case kindOr:
		la := c.Emit(n.left)
		lb := c.Emit(n.right)
		x := c.m.nextVar
		c.m.nextVar++
		c.addClause(-x, la, lb)
		c.addClause(x, -la)
		c.addClause(x, -lb)
		lit = x
	}

	c.litCache[f] = lit
	return lit
}

// Assert adds a unit clause pinning f true.
func (c *CNF) Assert(f Formula) {
	c.addClause(c.Emit(f))
}

// assertImplies adds the clause (¬a ∨ b) directly, without allocating a
// Tseitin auxiliary variable for the Implies node itself — used by the
// encoder for the per-literal preconditions/effects of spec.md §4.5's
// action-semantics axiom, which would otherwise need one throwaway aux var
// per precondition/effect literal.
func (c *CNF) assertImplies(a, b Formula) {
	c.addClause(-c.Emit(a), c.Emit(b))
}
