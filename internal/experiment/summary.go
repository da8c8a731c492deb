package experiment

import (
	"encoding/json"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/copyleftdev/heuristics/internal/optimization"
)

// Metric is a float64 that encodes non-finite values as JSON null.
type Metric float64

// MarshalJSON implements json.Marshaler.
func (m Metric) MarshalJSON() ([]byte, error) {
	f := float64(m)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

// Stats summarizes a sample of best values.
type Stats struct {
	Mean   Metric `json:"mean"`
	StdDev Metric `json:"std_dev"`
	Min    Metric `json:"min"`
	Q1     Metric `json:"q1"`
	Median Metric `json:"median"`
	Q3     Metric `json:"q3"`
	Max    Metric `json:"max"`
}

// Summary aggregates the trials of one plan.
type Summary struct {
	Plan      string `json:"plan"`
	Algorithm string `json:"algorithm"`
	Trials    int    `json:"trials"`
	Successes int    `json:"successes"`
	// Reliability is the fraction of trials that reached the known optimum.
	Reliability Metric `json:"rel"`
	// MeanEvaluations is the mean evaluation count of the successful trials.
	MeanEvaluations Metric `json:"mean_neval"`
	// FEO is MeanEvaluations / Reliability: the expected number of
	// evaluations needed to reach the optimum. It is infinite when no trial
	// succeeded.
	FEO       Metric `json:"feo"`
	BestValue Stats  `json:"best_value"`

	Results []*optimization.Result `json:"results,omitempty"`
}

// Summarize aggregates results in trial order.
func Summarize(label string, results []*optimization.Result) *Summary {
	s := &Summary{Plan: label, Trials: len(results)}
	if len(results) == 0 {
		s.Reliability = Metric(math.NaN())
		s.MeanEvaluations = Metric(math.NaN())
		s.FEO = Metric(math.Inf(1))
		s.BestValue = describe(nil)
		return s
	}
	s.Algorithm = results[0].Algorithm

	best := make([]float64, len(results))
	var solvedEvals []float64
	for i, r := range results {
		best[i] = r.BestValue
		if r.Solved() {
			solvedEvals = append(solvedEvals, float64(r.Evaluations))
		}
	}

	s.Successes = len(solvedEvals)
	rel := float64(s.Successes) / float64(s.Trials)
	s.Reliability = Metric(rel)
	if s.Successes == 0 {
		s.MeanEvaluations = Metric(math.NaN())
		s.FEO = Metric(math.Inf(1))
	} else {
		mean := stat.Mean(solvedEvals, nil)
		s.MeanEvaluations = Metric(mean)
		s.FEO = Metric(mean / rel)
	}
	s.BestValue = describe(best)
	s.Results = results
	return s
}

// describe computes Stats of x. x is sorted in place.
func describe(x []float64) Stats {
	if len(x) == 0 {
		nan := Metric(math.NaN())
		return Stats{nan, nan, nan, nan, nan, nan, nan}
	}
	sort.Float64s(x)
	mean, std := stat.MeanStdDev(x, nil)
	if len(x) == 1 {
		std = 0
	}
	return Stats{
		Mean:   Metric(mean),
		StdDev: Metric(std),
		Min:    Metric(x[0]),
		Q1:     Metric(stat.Quantile(0.25, stat.Empirical, x, nil)),
		Median: Metric(stat.Quantile(0.5, stat.Empirical, x, nil)),
		Q3:     Metric(stat.Quantile(0.75, stat.Empirical, x, nil)),
		Max:    Metric(x[len(x)-1]),
	}
}
