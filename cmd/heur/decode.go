package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/copyleftdev/heuristics/internal/optimization"
	"github.com/copyleftdev/heuristics/internal/optimization/objective"
)

var decodeGrid string

var decodeCmd = &cobra.Command{
	Use:   "decode v1,v2,...",
	Short: "Decode a TSP grid point into its tour",
	Long: `Decodes an integer point of the TSP grid objective into the sequence
of visited cities and prints the tour with its closed length.`,
	Args: cobra.ExactArgs(1),
	RunE: runDecode,
}

func init() {
	decodeCmd.Flags().StringVar(&decodeGrid, "grid", "3x2", "TSP grid dimensions AxB")
	rootCmd.AddCommand(decodeCmd)
}

func runDecode(cmd *cobra.Command, args []string) error {
	a, b, err := parseGrid(decodeGrid)
	if err != nil {
		return err
	}
	tsp, err := objective.NewTSPGrid(a, b)
	if err != nil {
		return err
	}
	xs, err := parseVector(args[0])
	if err != nil {
		return err
	}
	tour, err := tsp.Tour(optimization.IntPoint(xs...))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "tour:   %v\n", tour)
	for _, c := range tour {
		x, y := tsp.City(c)
		fmt.Fprintf(out, "  city %d at (%g, %g)\n", c, x, y)
	}
	fstar, _ := tsp.FStar()
	fmt.Fprintf(out, "length: %.6f (optimum %.6f)\n", tsp.Length(tour), fstar)
	return nil
}

// parseVector reads comma separated integers.
func parseVector(s string) ([]int, error) {
	s = strings.Trim(strings.TrimSpace(s), "[]()")
	if s == "" {
		return nil, optimization.NewConfigError("decode", "empty point")
	}
	parts := strings.Split(s, ",")
	xs := make([]int, len(parts))
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, optimization.NewConfigError("decode", "coordinate %d: %q is not an integer", i, part)
		}
		xs[i] = v
	}
	return xs, nil
}
