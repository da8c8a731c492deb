package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/copyleftdev/heuristics/internal/experiment"
	"github.com/copyleftdev/heuristics/internal/plan"
	"github.com/copyleftdev/heuristics/internal/store"
)

var (
	suitePath    string
	benchWorkers int
	traceDir     string
	outFormat    string
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Run every plan of a benchmark suite",
	Long: `Runs the plans listed in a YAML suite file and reports, per plan,
the reliability (REL), the mean evaluation count of the successful trials
and the expected number of evaluations to the optimum (FEO).`,
	RunE: runBench,
}

func init() {
	f := benchCmd.Flags()
	f.StringVar(&suitePath, "plan", "", "Suite file (YAML, required)")
	f.IntVar(&benchWorkers, "workers", 4, "Trials run concurrently")
	f.StringVar(&traceDir, "trace-dir", "", "Write one JSONL trace file per plan into this directory")
	f.StringVar(&outFormat, "format", "table", "Output format: table, json")

	benchCmd.MarkFlagRequired("plan")
	rootCmd.AddCommand(benchCmd)
}

func runBench(cmd *cobra.Command, args []string) error {
	if outFormat != "table" && outFormat != "json" {
		return fmt.Errorf("unknown format %q (want table or json)", outFormat)
	}
	data, err := os.ReadFile(suitePath)
	if err != nil {
		return fmt.Errorf("failed to read suite: %w", err)
	}
	suite, err := plan.ParseSuiteYAML(data)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	summaries := make([]*experiment.Summary, 0, len(suite.Plans))
	for _, p := range suite.Plans {
		s, err := benchPlan(ctx, p)
		if err != nil {
			return fmt.Errorf("plan %s: %w", p.Label(), err)
		}
		logger.Info("Plan finished", map[string]interface{}{
			"plan": s.Plan,
			"rel":  float64(s.Reliability),
			"feo":  float64(s.FEO),
		})
		summaries = append(summaries, s)
	}

	if outFormat == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	}
	return writeTable(cmd.OutOrStdout(), summaries)
}

func benchPlan(ctx context.Context, p plan.Plan) (s *experiment.Summary, err error) {
	var opts []experiment.Option
	if traceDir != "" {
		tw, terr := store.CreateTraceFile(filepath.Join(traceDir, traceFileName(p.Label())))
		if terr != nil {
			return nil, terr
		}
		defer closeTrace(tw, &err)
		opts = append(opts, experiment.WithSink(tw.WriteRun))
	}
	return experiment.NewRunner(benchWorkers, engineLogger, opts...).Run(ctx, p)
}

// traceFileName turns a plan label into a file name.
func traceFileName(label string) string {
	r := strings.NewReplacer("/", "_", " ", "_", string(filepath.Separator), "_")
	return r.Replace(label) + ".jsonl"
}

func writeTable(w io.Writer, summaries []*experiment.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PLAN\tALGORITHM\tTRIALS\tREL\tMEAN_NEVAL\tFEO\tBEST_MEAN\tBEST_STD")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.3f\t%.1f\t%.1f\t%.6g\t%.3g\n",
			s.Plan, s.Algorithm, s.Trials,
			float64(s.Reliability), float64(s.MeanEvaluations), float64(s.FEO),
			float64(s.BestValue.Mean), float64(s.BestValue.StdDev))
	}
	return tw.Flush()
}
