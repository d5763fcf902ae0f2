package sat

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/romainf28/pddl-solver/internal/model"
	"github.com/romainf28/pddl-solver/internal/planerr"
)

// Assignment maps a DIMACS variable index to its truth value in a
// satisfying model.
type Assignment map[int]bool

// ParseAssignment parses a solver's "v" line(s) (space-separated signed
// literals, terminated by a 0) into an Assignment.
func ParseAssignment(line string) Assignment {
	a := make(Assignment)
	for _, tok := range strings.Fields(line) {
		n, err := strconv.Atoi(tok)
		if err != nil || n == 0 {
			continue
		}
		if n > 0 {
			a[n] = true
		} else {
			a[-n] = false
		}
	}
	return a
}

// Extract decodes a satisfying assignment for e's encoding at the given
// horizon into an ordered operator sequence (spec.md §4.6). Steps whose
// opVar is true for no operator are treated as no-ops (tolerated whenever
// at-least-one-action was not asserted) and are skipped in the output.
// Ambiguity — more than one operator's var true at the same step, which
// at-most-one-action should preclude — is resolved by choosing the first
// by enumeration order and surfacing a warning rather than failing.
func Extract(e *Encoder, a Assignment, horizon int) ([]model.Operator, []string, error) {
	var plan []model.Operator
	var warnings []string

	for t := 0; t < horizon; t++ {
		var chosen []model.Operator
		for _, op := range e.t.Operators {
			idx := e.m.VarIndex(e.opVar(op, t))
			if a[idx] {
				chosen = append(chosen, op)
			}
		}
		switch len(chosen) {
		case 0:
			continue // no-op step
		case 1:
			plan = append(plan, chosen[0])
		default:
			warnings = append(warnings, fmt.Sprintf("step %d: more than one operator true (%d candidates), choosing %q by enumeration order", t, len(chosen), chosen[0].Name))
			plan = append(plan, chosen[0])
		}
	}

	state := e.t.Init
	for i, op := range plan {
		if !op.Applicable(state) {
			return nil, warnings, fmt.Errorf("extracted plan step %d (%s) not applicable: %w", i, op.Name, planerr.ErrInvariantViolation)
		}
		state = op.Apply(state)
	}
	if !e.t.GoalSatisfied(state) {
		return nil, warnings, fmt.Errorf("extracted plan does not satisfy the goal: %w", planerr.ErrInvariantViolation)
	}

	return plan, warnings, nil
}
