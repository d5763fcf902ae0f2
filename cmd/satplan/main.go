// Command satplan runs the bounded-horizon SAT-based planner (spec.md
// §4.5-§4.7) over a PDDL domain/problem pair.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/romainf28/pddl-solver/internal/config"
	"github.com/romainf28/pddl-solver/internal/ground"
	"github.com/romainf28/pddl-solver/internal/logging"
	"github.com/romainf28/pddl-solver/internal/model"
	"github.com/romainf28/pddl-solver/internal/pddl"
	"github.com/romainf28/pddl-solver/internal/plandriver"
	"github.com/romainf28/pddl-solver/internal/sat"
	"github.com/romainf28/pddl-solver/internal/task"
)

var (
	verbose       bool
	workspace     string
	configPath    string
	domainFile    string
	problemFile   string
	partialGround bool
	minHorizon    int
	maxHorizon    int
	outputFile    string
	outputFormat  string
	validatePlan  bool
	assertOneStep bool

	logger *zap.Logger
	runID  string
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "satplan",
	Short: "Bounded-horizon SAT planner for STRIPS/PDDL tasks",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		runID = uuid.NewString()

		ws := workspace
		if ws == "" {
			ws, _ = os.Getwd()
		}
		if err := logging.Initialize(ws, verbose, runID); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to initialize file logging: %v\n", err)
		}

		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
	RunE: runSatplan,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&workspace, "workspace", "", "workspace directory for logs (default: cwd)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to planner.yaml")
	rootCmd.PersistentFlags().StringVar(&domainFile, "domain_file", "", "path to the PDDL domain file (required)")
	rootCmd.PersistentFlags().StringVar(&problemFile, "problem_file", "", "path to the PDDL problem file (required)")

	rootCmd.Flags().BoolVar(&partialGround, "partial_grounding", false, "use goal-regression partial grounding instead of full grounding")
	rootCmd.Flags().IntVar(&minHorizon, "min_horizon", 0, "smallest horizon to try (default: from config)")
	rootCmd.Flags().IntVar(&maxHorizon, "max_horizon", 0, "largest horizon to try before giving up (default: from config)")
	rootCmd.Flags().StringVar(&outputFile, "output_file", "", "write the plan (or DIMACS dump) to this file instead of stdout")
	rootCmd.Flags().StringVar(&outputFormat, "format", "plan", "output format: plan or dimacs (dimacs dumps the CNF at max_horizon instead of solving)")
	rootCmd.Flags().BoolVar(&validatePlan, "validate", false, "re-apply the emitted plan against the initial state before reporting success")
	rootCmd.Flags().BoolVar(&assertOneStep, "assert_one_action_per_step", false, "require exactly one action per time step instead of allowing no-ops")

	rootCmd.AddCommand(explainCmd)
}

func loadTask() (*task.Task, []ground.Warning, error) {
	domSrc, err := os.ReadFile(domainFile)
	if err != nil {
		return nil, nil, fmt.Errorf("reading domain file: %w", err)
	}
	probSrc, err := os.ReadFile(problemFile)
	if err != nil {
		return nil, nil, fmt.Errorf("reading problem file: %w", err)
	}

	dom, err := pddl.ParseDomain(string(domSrc))
	if err != nil {
		return nil, nil, fmt.Errorf("parsing domain: %w", err)
	}
	prob, err := pddl.ParseProblem(string(probSrc))
	if err != nil {
		return nil, nil, fmt.Errorf("parsing problem: %w", err)
	}

	g := ground.New(dom, prob)
	if partialGround || cfg.Heuristic.PartialGrounding {
		return g.GroundPartial()
	}
	return g.Ground()
}

func runSatplan(cmd *cobra.Command, args []string) error {
	log := logging.Get(logging.CategoryCLI)

	if domainFile == "" || problemFile == "" {
		return fmt.Errorf("--domain_file and --problem_file are required")
	}

	tsk, warns, err := loadTask()
	if err != nil {
		return fmt.Errorf("grounding: %w", err)
	}
	for _, w := range warns {
		log.Warn("grounder: %s", w.Error())
	}

	min := minHorizon
	if min <= 0 {
		min = cfg.SAT.MinHorizon
	}
	max := maxHorizon
	if max <= 0 {
		max = cfg.SAT.MaxHorizon
	}

	if outputFormat == "dimacs" {
		return dumpDIMACS(tsk, max)
	}

	log.Info("solving at horizons %d..%d", min, max)
	res, err := plandriver.RunSAT(cmd.Context(), tsk, cfg, min, max, assertOneStep)
	if err != nil {
		return fmt.Errorf("sat planning: %w", err)
	}
	for _, w := range res.Warnings {
		log.Warn("extractor: %s", w)
	}

	if validatePlan {
		if _, err := task.ValidatePlan(tsk, res.Plan); err != nil {
			return fmt.Errorf("plan validation: %w", err)
		}
	}

	return writePlan(res.Plan, outputFile)
}

// dumpDIMACS writes the CNF encoding at horizon (no goal-search loop, no
// solver invocation) for offline inspection or use with an external solver
// the driver itself doesn't know how to call.
func dumpDIMACS(t *task.Task, horizon int) error {
	enc := sat.NewEncoder(t, assertOneStep)
	enc.EncodeUpTo(horizon)
	clauses := append(append([][]int{}, enc.Clauses()...), enc.GoalClauses(horizon)...)
	raw := sat.WriteDIMACS(enc.NumVars(), clauses)

	if outputFile == "" {
		_, err := os.Stdout.Write(raw)
		return err
	}
	return os.WriteFile(outputFile, raw, 0o644)
}

func writePlan(plan []model.Operator, path string) error {
	var b strings.Builder
	for _, op := range plan {
		b.WriteString(op.Name)
		b.WriteByte('\n')
	}

	if path == "" {
		fmt.Print(b.String())
		return nil
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

func main() {
	ctx := context.Background()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
