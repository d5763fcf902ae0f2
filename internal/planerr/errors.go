// Package planerr defines the sentinel error kinds shared across the
// grounder, planners, and CLI drivers.
package planerr

import "errors"

// Sentinel error kinds. Call sites wrap these with fmt.Errorf("...: %w", ErrX)
// so that errors.Is keeps working after context is attached.
var (
	// ErrUnsupportedFeature marks a PDDL construct outside the supported
	// fragment (numeric fluents, disjunctive preconditions, nested
	// quantifiers beyond the supported forall-when form). Fatal at grounding.
	ErrUnsupportedFeature = errors.New("unsupported PDDL feature")

	// ErrUngroundableDomain marks a parameter type with no matching object,
	// or an action whose assignments were all eliminated by static
	// filtering. Non-fatal: the offending action is dropped and a warning
	// is surfaced.
	ErrUngroundableDomain = errors.New("action schema could not be grounded")

	// ErrUnsolvable marks a goal unreachable in the delete-relaxation, or a
	// SAT search that exhausted its horizon cap without a model.
	ErrUnsolvable = errors.New("no plan exists")

	// ErrSolverFailure marks a missing, crashing, or malformed-output
	// external SAT solver invocation.
	ErrSolverFailure = errors.New("external SAT solver failed")

	// ErrInvariantViolation marks a grounder or encoder bug: an operator's
	// fact sets violate the disjointness invariants, or an extracted plan
	// fails apply-and-check validation against the goal.
	ErrInvariantViolation = errors.New("internal invariant violated")
)
