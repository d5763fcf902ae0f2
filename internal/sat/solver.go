package sat

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/romainf28/pddl-solver/internal/planerr"
)

// Solver is the external SAT solver collaborator: a single process call per
// spec.md §5 ("No operation is expected to suspend or block on I/O except
// the SAT solver invocation ... the driver blocks until the solver
// returns").
type Solver interface {
	Solve(ctx context.Context, numVars int, clauses [][]int) (sat bool, assignment Assignment, err error)
}

// ExternalSolver drives a DIMACS-compatible SAT solver binary (minisat,
// kissat, cadical, ...) over stdin/stdout, following the teacher's
// exec.LookPath availability check plus exec.CommandContext invocation
// pattern (internal/tactile/docker.go's DockerExecutor).
type ExternalSolver struct {
	Command string
	Args    []string
	Timeout time.Duration
}

// NewExternalSolver resolves command on PATH, returning
// planerr.ErrSolverFailure if it cannot be found.
func NewExternalSolver(command string, args []string, timeout time.Duration) (*ExternalSolver, error) {
	if _, err := exec.LookPath(command); err != nil {
		return nil, fmt.Errorf("sat solver %q not found on PATH: %w", command, planerr.ErrSolverFailure)
	}
	return &ExternalSolver{Command: command, Args: args, Timeout: timeout}, nil
}

// Solve writes the DIMACS CNF for the given clauses to the solver's stdin
// and parses its stdout. A timeout, output without a parseable SAT/UNSAT
// status, or a failure to run the process at all surfaces as
// planerr.ErrSolverFailure; a non-zero exit status is accepted whenever the
// output carries a verdict, whatever the exit code.
func (s *ExternalSolver) Solve(ctx context.Context, numVars int, clauses [][]int) (bool, Assignment, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, s.Command, s.Args...)
	cmd.Stdin = bytes.NewReader(WriteDIMACS(numVars, clauses))

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return false, nil, fmt.Errorf("sat solver %q timed out after %s: %w", s.Command, s.Timeout, planerr.ErrSolverFailure)
	}

	sat, assignment, parseErr := ParseDIMACSOutput(stdout.String())
	if parseErr != nil {
		return false, nil, fmt.Errorf("sat solver %q produced unparseable output: %w: %w", s.Command, parseErr, planerr.ErrSolverFailure)
	}
	if runErr != nil {
		// Most DIMACS solvers exit non-zero on UNSAT (code 20); only treat
		// a non-zero exit as a real failure if we could not recover a
		// definite SAT/UNSAT verdict from the output.
		if _, ok := runErr.(*exec.ExitError); !ok {
			return false, nil, fmt.Errorf("sat solver %q: %w: %w", s.Command, runErr, planerr.ErrSolverFailure)
		}
	}

	return sat, assignment, nil
}

// WriteDIMACS renders clauses in the standard DIMACS CNF text format.
func WriteDIMACS(numVars int, clauses [][]int) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "p cnf %d %d\n", numVars, len(clauses))
	for _, cl := range clauses {
		for _, lit := range cl {
			fmt.Fprintf(&b, "%d ", lit)
		}
		b.WriteString("0\n")
	}
	return b.Bytes()
}

// ParseDIMACSOutput parses a SAT-competition-style solver transcript: a
// line beginning "s SATISFIABLE" or "s UNSATISFIABLE", optionally followed
// by one or more "v ..." lines carrying the model.
func ParseDIMACSOutput(out string) (bool, Assignment, error) {
	scanner := bufio.NewScanner(strings.NewReader(out))
	var sat bool
	var sawStatus bool
	var modelLines []string

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "s SATISFIABLE"):
			sat, sawStatus = true, true
		case strings.HasPrefix(line, "s UNSATISFIABLE"):
			sat, sawStatus = false, true
		case strings.HasPrefix(line, "v "):
			modelLines = append(modelLines, strings.TrimPrefix(line, "v "))
		}
	}
	if !sawStatus {
		return false, nil, fmt.Errorf("no 's SATISFIABLE'/'s UNSATISFIABLE' status line found")
	}
	if !sat {
		return false, nil, nil
	}
	a := ParseAssignment(strings.Join(modelLines, " "))
	return true, a, nil
}
