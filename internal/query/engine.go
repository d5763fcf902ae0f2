// Package query is the "why" explainer: it asserts a grounded task.Task's
// facts and operators into a Google Mangle Datalog engine and answers ad
// hoc questions ("why is this operator in the plan", "what does this
// operator threaten") via the fixed rule set in schema.go. It sits beside
// the grounder, planners and SAT encoder as additive tooling — nothing on
// the grounding or search hot path imports it.
//
// The wrapper pattern (Config, Engine, Fact, NewEngine, LoadSchemaString,
// AddFacts, Query) is adapted from the teacher's internal/mangle/engine.go,
// trimmed to this module's needs: no file-scoped fact replacement, no
// persistence layer and no fact-limit back-pressure warnings, since a
// query.Engine here is built fresh from one already-grounded task rather
// than incrementally fed by a long-running watcher.
package query

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/mangle/analysis"
	"github.com/google/mangle/ast"
	_ "github.com/google/mangle/builtin"
	mengine "github.com/google/mangle/engine"
	"github.com/google/mangle/factstore"
	_ "github.com/google/mangle/packages"
	"github.com/google/mangle/parse"
	"github.com/google/mangle/unionfind"

	"github.com/romainf28/pddl-solver/internal/logging"
)

// Config holds Mangle engine configuration for the explain feature.
type Config struct {
	FactLimit    int
	QueryTimeout time.Duration
}

// DefaultConfig returns production defaults. FactLimit is generous because a
// grounded task's fact/operator universe is already bounded by the
// grounder, not by an open-ended watcher feed.
func DefaultConfig() Config {
	return Config{FactLimit: 2_000_000, QueryTimeout: 10 * time.Second}
}

// Fact is a single Datalog fact: a predicate applied to a tuple of already
// Mangle-safe argument names (see sanitize in load.go).
type Fact struct {
	Predicate string
	Args      []string
}

// Engine wraps a Mangle engine scoped to one grounded task.
type Engine struct {
	config Config

	mu             sync.RWMutex
	store          factstore.ConcurrentFactStore
	baseStore      factstore.FactStoreWithRemove
	programInfo    *analysis.ProgramInfo
	queryContext   *mengine.QueryContext
	predicateIndex map[string]ast.PredicateSym
	factCount      int
}

// NewEngine builds an Engine and loads the fixed schema of schema.go.
func NewEngine(cfg Config) (*Engine, error) {
	base := factstore.NewSimpleInMemoryStore()
	e := &Engine{
		config:         cfg,
		baseStore:      base,
		store:          factstore.NewConcurrentFactStore(base),
		predicateIndex: make(map[string]ast.PredicateSym),
	}
	if err := e.loadSchemaLocked(schema); err != nil {
		return nil, fmt.Errorf("query: loading fixed schema: %w", err)
	}
	return e, nil
}

func (e *Engine) loadSchemaLocked(src string) error {
	unit, err := parse.Unit(bytes.NewReader([]byte(src)))
	if err != nil {
		return fmt.Errorf("parse schema: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	programInfo, err := analysis.AnalyzeOneUnit(unit, nil)
	if err != nil {
		return fmt.Errorf("analyze schema: %w", err)
	}

	e.programInfo = programInfo
	e.predicateIndex = make(map[string]ast.PredicateSym, len(programInfo.Decls))
	predToDecl := make(map[ast.PredicateSym]*ast.Decl, len(programInfo.Decls))
	for sym, decl := range programInfo.Decls {
		e.predicateIndex[sym.Symbol] = sym
		predToDecl[sym] = decl
	}

	predToRules := make(map[ast.PredicateSym][]ast.Clause)
	for _, clause := range programInfo.Rules {
		predToRules[clause.Head.Predicate] = append(predToRules[clause.Head.Predicate], clause)
	}

	e.queryContext = &mengine.QueryContext{
		PredToRules: predToRules,
		PredToDecl:  predToDecl,
		Store:       e.store,
	}
	return nil
}

// AddFact inserts a single fact, given already-sanitized argument names.
func (e *Engine) AddFact(predicate string, args ...string) error {
	return e.AddFacts([]Fact{{Predicate: predicate, Args: args}})
}

// AddFacts inserts facts without re-evaluating rules; call Eval once after
// a batch load, mirroring the teacher's auto-eval-off bulk insertion path.
func (e *Engine) AddFacts(facts []Fact) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.programInfo == nil {
		return fmt.Errorf("query: no schema loaded")
	}

	for _, f := range facts {
		if e.config.FactLimit > 0 && e.factCount >= e.config.FactLimit {
			return fmt.Errorf("query: fact limit exceeded: %d", e.config.FactLimit)
		}
		atom, err := e.factToAtomLocked(f)
		if err != nil {
			return err
		}
		if e.store.Add(atom) {
			e.factCount++
		}
	}
	return nil
}

// Eval runs the fixed rule set to a fixpoint over the asserted facts.
func (e *Engine) Eval() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.programInfo == nil {
		return fmt.Errorf("query: no schema loaded")
	}
	log := logging.Get(logging.CategoryQuery)
	log.Debug("evaluating explain program over %d base facts", e.factCount)
	_, err := mengine.EvalProgramWithStats(e.programInfo, e.store)
	return err
}

func (e *Engine) factToAtomLocked(f Fact) (ast.Atom, error) {
	sym, ok := e.predicateIndex[f.Predicate]
	if !ok {
		return ast.Atom{}, fmt.Errorf("query: predicate %s is not declared", f.Predicate)
	}
	if len(f.Args) != sym.Arity {
		return ast.Atom{}, fmt.Errorf("query: predicate %s expects %d args, got %d", f.Predicate, sym.Arity, len(f.Args))
	}

	args := make([]ast.BaseTerm, len(f.Args))
	for i, raw := range f.Args {
		name, err := ast.Name("/" + raw)
		if err != nil {
			return ast.Atom{}, fmt.Errorf("query: predicate %s arg %d (%q): %w", f.Predicate, i, raw, err)
		}
		args[i] = name
	}
	return ast.Atom{Predicate: sym, Args: args}, nil
}

// QueryResult is the outcome of an ad hoc Mangle query.
type QueryResult struct {
	Bindings []map[string]string
	Duration time.Duration
}

// Query evaluates a query in Mangle notation, e.g. "enables(Op1, Op2)".
func (e *Engine) Query(ctx context.Context, q string) (*QueryResult, error) {
	shape, err := parseQueryShape(q)
	if err != nil {
		return nil, err
	}

	e.mu.RLock()
	queryContext := e.queryContext
	if queryContext == nil {
		e.mu.RUnlock()
		return nil, fmt.Errorf("query: no schema loaded")
	}
	decl, ok := queryContext.PredToDecl[shape.atom.Predicate]
	if !ok {
		e.mu.RUnlock()
		return nil, fmt.Errorf("query: predicate %s is not declared", shape.atom.Predicate.Symbol)
	}
	if len(decl.Modes()) == 0 {
		e.mu.RUnlock()
		return nil, fmt.Errorf("query: predicate %s has no modes declared", shape.atom.Predicate.Symbol)
	}
	mode := decl.Modes()[0]
	e.mu.RUnlock()

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.QueryTimeout)
		defer cancel()
	}

	start := time.Now()
	var results []map[string]string
	err = queryContext.EvalQuery(shape.atom, mode, unionfind.New(), func(fact ast.Atom) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		row := make(map[string]string, len(shape.variables))
		for _, v := range shape.variables {
			if v.Index >= len(fact.Args) {
				continue
			}
			row[v.Name] = termToString(fact.Args[v.Index])
		}
		results = append(results, row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &QueryResult{Bindings: results, Duration: time.Since(start)}, nil
}

type queryVariable struct {
	Name  string
	Index int
}

type queryShape struct {
	atom      ast.Atom
	variables []queryVariable
}

func parseQueryShape(query string) (*queryShape, error) {
	clean := strings.TrimSpace(query)
	if clean == "" {
		return nil, fmt.Errorf("query: empty query")
	}
	if strings.HasSuffix(clean, ".") {
		clean = strings.TrimSpace(clean[:len(clean)-1])
	}

	atom, err := parse.Atom(clean)
	if err != nil {
		return nil, fmt.Errorf("query: parse %q: %w", query, err)
	}

	var vars []queryVariable
	for idx, arg := range atom.Args {
		if v, ok := arg.(ast.Variable); ok {
			vars = append(vars, queryVariable{Name: v.Symbol, Index: idx})
		}
	}
	return &queryShape{atom: atom, variables: vars}, nil
}

func termToString(term ast.BaseTerm) string {
	if c, ok := term.(ast.Constant); ok {
		return strings.TrimPrefix(c.Symbol, "/")
	}
	return fmt.Sprintf("%v", term)
}
