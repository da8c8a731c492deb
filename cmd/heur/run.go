package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/copyleftdev/heuristics/internal/experiment"
	"github.com/copyleftdev/heuristics/internal/optimization"
	"github.com/copyleftdev/heuristics/internal/optimization/objective"
	"github.com/copyleftdev/heuristics/internal/plan"
	"github.com/copyleftdev/heuristics/internal/store"
)

var (
	planPath  string
	tracePath string
	workers   int
	trials    int
	seed      uint64

	objectiveKind string
	grid          string
	dim           int
	eps           float64
	step          float64

	heuristicKind string
	maxEval       int
	hmax          int
	randomDescent bool
	t0            float64
	n0            float64
	alpha         float64
	popN          int
	popM          int
	tsel1         float64
	tsel2         float64
	population    int
	mutR          float64
	correctionStr string
	crossoverKind string
	cuts          int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the trials of one search plan",
	Long: `Runs one plan, read from a JSON or YAML file with --plan or assembled
from flags, and prints its summary as JSON. With --trace every trial's
convergence trace is written to a JSON lines file.`,
	RunE: runPlan,
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&planPath, "plan", "", "Plan file (.json, .yaml or .yml)")
	f.StringVar(&tracePath, "trace", "", "Write trial traces to this JSONL file")
	f.IntVar(&workers, "workers", 1, "Trials run concurrently")
	f.IntVar(&trials, "trials", 1, "Number of independent trials")
	f.Uint64Var(&seed, "seed", 1, "Seed of the first trial")

	f.StringVar(&objectiveKind, "objective", plan.ObjectiveTSPGrid, "Objective: tsp_grid, dejong1")
	f.StringVar(&grid, "grid", "3x2", "TSP grid dimensions AxB")
	f.IntVar(&dim, "dim", 5, "De Jong dimension")
	f.Float64Var(&eps, "eps", 0.01, "De Jong success tolerance: a value of at most eps counts as the optimum")
	f.Float64Var(&step, "step", objective.DefaultDeJongStep, "De Jong neighborhood step")

	f.StringVar(&heuristicKind, "heuristic", plan.HeuristicShootAndGo, "Heuristic: shoot_and_go, fsa, go, mayfly")
	f.IntVar(&maxEval, "maxeval", 1000, "Evaluation budget per trial")
	f.IntVar(&hmax, "hmax", 0, "Shoot-and-go descent depth")
	f.BoolVar(&randomDescent, "random-descent", false, "Shoot-and-go takes the first improving neighbour in random order")
	f.Float64Var(&t0, "t0", 1, "Annealing initial temperature")
	f.Float64Var(&n0, "n0", 1, "Annealing cooling time scale")
	f.Float64Var(&alpha, "alpha", 1, "Annealing cooling exponent")
	f.IntVar(&popN, "pop", 30, "Genetic population size")
	f.IntVar(&popM, "offspring", 30, "Genetic offspring per generation")
	f.Float64Var(&tsel1, "tsel1", 0.5, "Genetic parent selection temperature")
	f.Float64Var(&tsel2, "tsel2", 0.1, "Genetic survivor selection temperature")
	f.IntVar(&population, "population", 20, "Mayfly population size")
	f.Float64Var(&mutR, "r", 1, "Cauchy mutation scale")
	f.StringVar(&correctionStr, "correction", "sticky", "Bound correction: sticky, mirror, extension, periodic")
	f.StringVar(&crossoverKind, "crossover", "uniform", "Crossover: copy, uniform, random")
	f.IntVar(&cuts, "cuts", 1, "Cut points of the uniform multipoint crossover")

	rootCmd.AddCommand(runCmd)
}

func runPlan(cmd *cobra.Command, args []string) (err error) {
	var p plan.Plan
	if planPath != "" {
		p, err = loadPlan(planPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("seed") {
			p.Seed = seed
		}
		if cmd.Flags().Changed("trials") {
			p.Trials = trials
		}
	} else {
		p, err = planFromFlags()
		if err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := []experiment.Option{experiment.WithResults(true)}
	if tracePath != "" {
		tw, terr := store.CreateTraceFile(tracePath)
		if terr != nil {
			return terr
		}
		defer closeTrace(tw, &err)
		opts = append(opts, experiment.WithSink(tw.WriteRun))
	}

	logger.Info("Starting plan", map[string]interface{}{
		"plan":   p.Label(),
		"trials": p.Trials,
		"seed":   p.Seed,
	})

	summary, err := experiment.NewRunner(workers, engineLogger, opts...).Run(ctx, p)
	if err != nil {
		return err
	}
	return printSummary(cmd.OutOrStdout(), summary)
}

// planFromFlags assembles a plan from the run flags.
func planFromFlags() (plan.Plan, error) {
	p := plan.Plan{
		Seed:   seed,
		Trials: trials,
		Objective: plan.ObjectiveSpec{
			Kind: objectiveKind,
			N:    dim,
			Eps:  eps,
			Step: step,
		},
		Heuristic: plan.HeuristicSpec{
			Kind:          heuristicKind,
			MaxEval:       maxEval,
			HMax:          hmax,
			RandomDescent: randomDescent,
			T0:            t0,
			N0:            n0,
			Alpha:         alpha,
			N:             popN,
			M:             popM,
			Tsel1:         tsel1,
			Tsel2:         tsel2,
			Population:    population,
		},
	}
	p.Normalize()

	if p.Objective.Kind == plan.ObjectiveTSPGrid {
		a, b, err := parseGrid(grid)
		if err != nil {
			return plan.Plan{}, err
		}
		p.Objective.A, p.Objective.B = a, b
	}
	switch p.Heuristic.Kind {
	case plan.HeuristicGenetic:
		p.Heuristic.Crossover = &plan.CrossoverSpec{Kind: crossoverKind, K: cuts}
		fallthrough
	case plan.HeuristicAnnealing:
		p.Heuristic.Mutation = &plan.MutationSpec{R: mutR, Correction: correctionStr}
	}
	p.Normalize()

	if err := p.Validate(); err != nil {
		return plan.Plan{}, err
	}
	return p, nil
}

// loadPlan reads a plan file, choosing the decoder by extension.
func loadPlan(path string) (plan.Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return plan.Plan{}, fmt.Errorf("failed to read plan: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return plan.ParseYAML(data)
	default:
		return plan.Parse(data)
	}
}

// parseGrid reads grid dimensions written as AxB.
func parseGrid(s string) (int, int, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "x")
	if len(parts) != 2 {
		return 0, 0, optimization.NewConfigError("grid", "want AxB, got %q", s)
	}
	a, errA := strconv.Atoi(strings.TrimSpace(parts[0]))
	b, errB := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errA != nil || errB != nil {
		return 0, 0, optimization.NewConfigError("grid", "want AxB, got %q", s)
	}
	return a, b, nil
}

// closeTrace closes c and reports its error through err unless err already
// holds one. Closing flushes the buffered trace lines.
func closeTrace(c io.Closer, err *error) {
	if cerr := c.Close(); cerr != nil && *err == nil {
		*err = fmt.Errorf("failed to write trace: %w", cerr)
	}
}

// printSummary writes the summary as indented JSON. Per-trial traces are left
// to the trace file.
func printSummary(w io.Writer, s *experiment.Summary) error {
	out := *s
	out.Results = make([]*optimization.Result, len(s.Results))
	for i, res := range s.Results {
		r := *res
		r.Trace = nil
		out.Results[i] = &r
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(&out)
}
