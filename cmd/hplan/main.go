// Command hplan runs the weighted-A* heuristic planner (spec.md §4.3, §4.4)
// over a PDDL domain/problem pair.
package main

import (
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
	"github.com/romainf28/pddl-solver/internal/task"
)

var (
	verbose       bool
	workspace     string
	configPath    string
	domainFile    string
	problemFile   string
	partialGround bool
	weight        float64
	heuristicName string
	outputFile    string
	validatePlan  bool

	logger *zap.Logger
	runID  string
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "hplan",
	Short: "Weighted-A* heuristic planner for STRIPS/PDDL tasks",
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
	RunE: runHplan,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&workspace, "workspace", "", "workspace directory for logs (default: cwd)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to planner.yaml")
	rootCmd.PersistentFlags().StringVar(&domainFile, "domain_file", "", "path to the PDDL domain file (required)")
	rootCmd.PersistentFlags().StringVar(&problemFile, "problem_file", "", "path to the PDDL problem file (required)")

	rootCmd.Flags().BoolVar(&partialGround, "partial_grounding", false, "use goal-regression partial grounding instead of full grounding")
	rootCmd.Flags().Float64Var(&weight, "weight", 0, "weighted-A* weight (default: from config, normally 5)")
	rootCmd.Flags().StringVar(&heuristicName, "heuristic", "landmarks", "heuristic to use: landmarks or ff")
	rootCmd.Flags().StringVar(&outputFile, "output_file", "", "write the plan to this file instead of stdout")
	rootCmd.Flags().BoolVar(&validatePlan, "validate", false, "re-apply the emitted plan against the initial state before reporting success")

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

func runHplan(cmd *cobra.Command, args []string) error {
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

	effectiveWeight := weight
	if effectiveWeight <= 0 {
		effectiveWeight = cfg.Heuristic.Weight
	}

	kind := plandriver.HeuristicLandmarks
	if heuristicName == "ff" {
		kind = plandriver.HeuristicFF
	}

	log.Info("searching with heuristic=%s weight=%.1f", kind, effectiveWeight)
	res := plandriver.RunHeuristic(tsk, kind, effectiveWeight)
	if !res.Solvable {
		fmt.Fprintln(os.Stderr, "no plan found")
		os.Exit(1)
	}

	if validatePlan {
		if _, err := task.ValidatePlan(tsk, res.Plan); err != nil {
			return fmt.Errorf("plan validation: %w", err)
		}
	}

	return writePlan(res.Plan, outputFile)
}

// writePlan renders plan one action name per line, matching the SAT
// planner's output format so downstream tooling can treat either CLI's
// output uniformly.
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
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
