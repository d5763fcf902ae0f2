package query

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/romainf28/pddl-solver/internal/model"
)

// Explanation is the rendered answer to one why/explain question.
type Explanation struct {
	Subject string
	Lines   []string
}

// ExplainOperator answers "why is this operator relevant": which
// preconditions it requires, which landmarks it produces, which other
// operators it enables or conflicts with, and whether it threatens a goal
// fact by deleting it.
func ExplainOperator(ctx context.Context, e *Engine, op model.Operator) (*Explanation, error) {
	name := "/" + opName(op)
	exp := &Explanation{Subject: fmt.Sprintf("operator %s", op.Name)}

	if res, err := e.Query(ctx, fmt.Sprintf("requires(%s, F)", name)); err == nil {
		for _, f := range sortedValues(res, "F") {
			exp.Lines = append(exp.Lines, fmt.Sprintf("requires %s", f))
		}
	}
	if res, err := e.Query(ctx, fmt.Sprintf("landmark_producer(%s, F)", name)); err == nil {
		for _, f := range sortedValues(res, "F") {
			exp.Lines = append(exp.Lines, fmt.Sprintf("produces landmark %s", f))
		}
	}
	if res, err := e.Query(ctx, fmt.Sprintf("enables(%s, Op2)", name)); err == nil {
		for _, o := range sortedValues(res, "Op2") {
			exp.Lines = append(exp.Lines, fmt.Sprintf("enables %s", o))
		}
	}
	if res, err := e.Query(ctx, fmt.Sprintf("conflicts(%s, Op2)", name)); err == nil {
		for _, o := range sortedValues(res, "Op2") {
			exp.Lines = append(exp.Lines, fmt.Sprintf("conflicts with %s (deletes a fact it adds)", o))
		}
	}
	if res, err := e.Query(ctx, fmt.Sprintf("threatens(%s, F)", name)); err == nil {
		for _, f := range sortedValues(res, "F") {
			exp.Lines = append(exp.Lines, fmt.Sprintf("threatens goal fact %s (deletes it)", f))
		}
	}

	if len(exp.Lines) == 0 {
		exp.Lines = []string{"no recorded relation to any fact or other operator"}
	}
	return exp, nil
}

// ExplainFact answers "why is this fact a landmark / goal": whether it is a
// goal, holds initially or is a landmark, and which operators produce or
// delete it. Landmark costs are not reported.
func ExplainFact(ctx context.Context, e *Engine, f model.Fact) (*Explanation, error) {
	name := "/" + factName(f)
	exp := &Explanation{Subject: fmt.Sprintf("fact %s", f)}

	if res, err := e.Query(ctx, fmt.Sprintf("goal(%s)", name)); err == nil && len(res.Bindings) > 0 {
		exp.Lines = append(exp.Lines, "is a stated goal fact")
	}
	if res, err := e.Query(ctx, fmt.Sprintf("init(%s)", name)); err == nil && len(res.Bindings) > 0 {
		exp.Lines = append(exp.Lines, "holds in the initial state")
	}
	if res, err := e.Query(ctx, fmt.Sprintf("landmark(%s)", name)); err == nil && len(res.Bindings) > 0 {
		exp.Lines = append(exp.Lines, "is a landmark (every plan must make it true at some point)")
	}
	if res, err := e.Query(ctx, fmt.Sprintf("produces(Op, %s)", name)); err == nil {
		for _, op := range sortedValues(res, "Op") {
			exp.Lines = append(exp.Lines, fmt.Sprintf("produced by %s", op))
		}
	}
	if res, err := e.Query(ctx, fmt.Sprintf("destroys(Op, %s)", name)); err == nil {
		for _, op := range sortedValues(res, "Op") {
			exp.Lines = append(exp.Lines, fmt.Sprintf("deleted by %s", op))
		}
	}

	if len(exp.Lines) == 0 {
		exp.Lines = []string{"no recorded relation; fact never appears in an operator's add or delete effects"}
	}
	return exp, nil
}

func sortedValues(res *QueryResult, variable string) []string {
	if res == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(res.Bindings))
	var out []string
	for _, row := range res.Bindings {
		v, ok := row[variable]
		if !ok {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// String renders an Explanation as indented plain text for CLI output.
func (e *Explanation) String() string {
	var b strings.Builder
	b.WriteString(e.Subject)
	b.WriteString(":\n")
	for _, line := range e.Lines {
		b.WriteString("  - ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
