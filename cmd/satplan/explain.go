package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/romainf28/pddl-solver/internal/landmarks"
	"github.com/romainf28/pddl-solver/internal/model"
	"github.com/romainf28/pddl-solver/internal/query"
)

var (
	explainOperator string
	explainFact     string
)

// explainCmd mirrors hplan's explain subcommand: it grounds the same
// domain/problem pair and answers ad hoc "why" questions via
// internal/query, without running the SAT encoder or invoking a solver.
var explainCmd = &cobra.Command{
	Use:   "explain",
	Short: "Explain why a grounded fact or operator matters",
	Long: `Explain answers ad hoc questions over a grounded task using a small
Datalog rule set: which facts an operator requires or threatens, which
operators it enables or conflicts with, and whether a fact is a landmark.

Examples:
  satplan explain --operator "(stack a b)" --domain_file d.pddl --problem_file p.pddl
  satplan explain --fact "(on a b)" --domain_file d.pddl --problem_file p.pddl`,
	RunE: runExplain,
}

func init() {
	explainCmd.Flags().StringVar(&explainOperator, "operator", "", "grounded operator name to explain, e.g. \"(stack a b)\"")
	explainCmd.Flags().StringVar(&explainFact, "fact", "", "grounded fact to explain, e.g. \"(on a b)\"")
}

func runExplain(cmd *cobra.Command, args []string) error {
	if domainFile == "" || problemFile == "" {
		return fmt.Errorf("--domain_file and --problem_file are required")
	}
	if explainOperator == "" && explainFact == "" {
		return fmt.Errorf("one of --operator or --fact is required")
	}

	tsk, _, err := loadTask()
	if err != nil {
		return fmt.Errorf("grounding: %w", err)
	}

	lm := landmarks.Analyze(tsk)
	eng, err := query.NewEngine(query.DefaultConfig())
	if err != nil {
		return fmt.Errorf("explain: %w", err)
	}
	if err := query.Load(eng, tsk, lm); err != nil {
		return fmt.Errorf("explain: loading facts: %w", err)
	}

	ctx := cmd.Context()

	if explainOperator != "" {
		op, ok := findOperator(tsk.Operators, explainOperator)
		if !ok {
			return fmt.Errorf("no grounded operator named %q", explainOperator)
		}
		exp, err := query.ExplainOperator(ctx, eng, op)
		if err != nil {
			return err
		}
		fmt.Print(exp.String())
	}

	if explainFact != "" {
		f := model.Fact(normalizeFactName(explainFact))
		exp, err := query.ExplainFact(ctx, eng, f)
		if err != nil {
			return err
		}
		fmt.Print(exp.String())
	}

	return nil
}

func findOperator(ops []model.Operator, name string) (model.Operator, bool) {
	for _, op := range ops {
		if op.Name == name {
			return op, true
		}
	}
	return model.Operator{}, false
}

func normalizeFactName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
