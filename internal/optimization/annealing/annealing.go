// Package annealing implements Fast Simulated Annealing with a Cauchy-style
// cooling schedule and the 1/(1+Δ/T) acceptance rule.
package annealing

import (
	"math"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/copyleftdev/heuristics/internal/optimization"
	"github.com/copyleftdev/heuristics/internal/optimization/mutation"
)

// Config holds the annealing parameters.
type Config struct {
	// MaxEval is the evaluation budget.
	MaxEval int
	// T0 is the initial temperature.
	T0 float64
	// N0 scales the iteration counter in the cooling schedule.
	N0 float64
	// Alpha is the cooling exponent. Non-negative values give the
	// polynomial schedule T0/(1+(k/N0)^Alpha); negative values give the
	// exponential schedule T0*exp(-(k/N0)^-Alpha).
	Alpha float64
}

// FSA is a configured Fast Simulated Annealing search.
type FSA struct {
	obj      optimization.Objective
	cfg      Config
	mutation mutation.Operator
	rng      *rand.Rand
	logger   *zap.Logger
}

var _ optimization.Heuristic = (*FSA)(nil)

// New validates cfg and returns the search.
func New(obj optimization.Objective, cfg Config, mut mutation.Operator, rng *rand.Rand, logger *zap.Logger) (*FSA, error) {
	const component = "fast simulated annealing"
	if err := optimization.CheckSetup(component, obj, cfg.MaxEval, rng); err != nil {
		return nil, err
	}
	if !(cfg.T0 > 0) || math.IsInf(cfg.T0, 0) {
		return nil, optimization.NewConfigError(component, "initial temperature must be positive and finite, got %v", cfg.T0)
	}
	if !(cfg.N0 > 0) || math.IsInf(cfg.N0, 0) {
		return nil, optimization.NewConfigError(component, "n0 must be positive and finite, got %v", cfg.N0)
	}
	if math.IsNaN(cfg.Alpha) || math.IsInf(cfg.Alpha, 0) {
		return nil, optimization.NewConfigError(component, "alpha must be finite, got %v", cfg.Alpha)
	}
	if mut == nil {
		return nil, optimization.NewConfigError(component, "a mutation operator is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FSA{obj: obj, cfg: cfg, mutation: mut, rng: rng, logger: logger}, nil
}

// Name implements optimization.Heuristic.
func (f *FSA) Name() string { return "fast_simulated_annealing" }

// Temperature returns the temperature of iteration k, counted from zero.
func (f *FSA) Temperature(k int) float64 {
	return Temperature(f.cfg.T0, f.cfg.N0, f.cfg.Alpha, k)
}

// Temperature evaluates the cooling schedule.
func Temperature(t0, n0, alpha float64, k int) float64 {
	r := float64(k) / n0
	if alpha >= 0 {
		return t0 / (1 + math.Pow(r, alpha))
	}
	return t0 * math.Exp(-math.Pow(r, -alpha))
}

// AcceptanceProbability is the probability of moving to a candidate that is
// worse than the current point by delta at temperature t.
func AcceptanceProbability(delta, t float64) float64 {
	switch {
	case delta <= 0:
		return 1
	case !(t > 0):
		return 0
	default:
		return 1 / (1 + delta/t)
	}
}

// Search implements optimization.Heuristic. The first trace entry is the
// starting point; every further entry is one mutation step.
func (f *FSA) Search() (*optimization.Result, error) {
	f.logger.Info("search started",
		zap.String("algorithm", f.Name()),
		zap.Int("maxeval", f.cfg.MaxEval),
		zap.Float64("t0", f.cfg.T0),
		zap.Float64("n0", f.cfg.N0),
		zap.Float64("alpha", f.cfg.Alpha),
	)
	run := optimization.NewRun(f.Name(), f.obj, f.cfg.MaxEval, f.logger)

	x := f.obj.GeneratePoint(f.rng)
	fx, err := run.Evaluate(x)
	if err != nil {
		return nil, err
	}
	run.Record(fx, optimization.WithTemperature(f.cfg.T0), optimization.WithAccepted(true))

	for !run.Done() {
		t := f.Temperature(run.Evaluations() - 1)
		y, err := f.mutation.Mutate(x, f.rng)
		if err != nil {
			return nil, err
		}
		fy, err := run.Evaluate(y)
		if err != nil {
			return nil, err
		}

		accepted := fy <= fx
		if !accepted {
			accepted = f.rng.Float64() < AcceptanceProbability(fy-fx, t)
		}
		if accepted {
			x, fx = y, fy
		}
		run.Record(fx, optimization.WithTemperature(t), optimization.WithAccepted(accepted))
	}
	return run.Result(), nil
}
