// Package baseline wraps the Mayfly swarm optimizer as a reference heuristic
// that the experiment runner can compare the native heuristics against.
package baseline

import (
	"math"
	mathrand "math/rand"

	"github.com/cwbudde/mayfly"
	"go.uber.org/zap"

	"github.com/copyleftdev/heuristics/internal/optimization"
)

// MinPopulation is the smallest swarm the Mayfly library accepts.
const MinPopulation = 20

// Config holds the Mayfly parameters.
type Config struct {
	// MaxEval is the evaluation budget.
	MaxEval int
	// Population is the size of both the male and the female swarm.
	Population int
	// Seed seeds the swarm's random source.
	Seed int64
}

// Mayfly searches the unit hypercube with the Mayfly algorithm and maps each
// candidate onto the objective bounds. Integer coordinates are rounded.
type Mayfly struct {
	obj    optimization.Objective
	cfg    Config
	logger *zap.Logger
}

var _ optimization.Heuristic = (*Mayfly)(nil)

// New validates cfg and returns the baseline.
func New(obj optimization.Objective, cfg Config, logger *zap.Logger) (*Mayfly, error) {
	const component = "mayfly"
	if obj == nil {
		return nil, optimization.NewConfigError(component, "an objective is required")
	}
	if cfg.MaxEval < 1 {
		return nil, optimization.NewConfigError(component, "evaluation budget must be at least 1, got %d", cfg.MaxEval)
	}
	if cfg.Population == 0 {
		cfg.Population = MinPopulation
	}
	if cfg.Population < MinPopulation {
		return nil, optimization.NewConfigError(component, "population must be at least %d, got %d", MinPopulation, cfg.Population)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mayfly{obj: obj, cfg: cfg, logger: logger}, nil
}

// Name implements optimization.Heuristic.
func (m *Mayfly) Name() string { return "mayfly" }

// Search implements optimization.Heuristic. The swarm keeps iterating until
// the shared run stops it; calls made after that are answered with +Inf.
func (m *Mayfly) Search() (*optimization.Result, error) {
	run := optimization.NewRun(m.Name(), m.obj, m.cfg.MaxEval, m.logger)
	bounds := m.obj.Bounds()

	var evalErr error
	objective := func(u []float64) float64 {
		if run.Done() || evalErr != nil {
			return math.Inf(1)
		}
		y, err := run.Evaluate(m.fromUnit(bounds, u))
		if err != nil {
			evalErr = err
			return math.Inf(1)
		}
		run.Record(y)
		return y
	}

	config := mayfly.NewDefaultConfig()
	config.ObjectiveFunc = objective
	config.ProblemSize = bounds.Dim()
	config.NPop = m.cfg.Population
	config.NPopF = m.cfg.Population
	// Each iteration evaluates both swarms at least once, so this many
	// iterations spend the whole budget.
	config.MaxIterations = m.cfg.MaxEval/(2*m.cfg.Population) + 1
	config.LowerBound = 0
	config.UpperBound = 1
	config.Rand = mathrand.New(mathrand.NewSource(m.cfg.Seed))

	m.logger.Info("search started",
		zap.String("algorithm", m.Name()),
		zap.Int("maxeval", m.cfg.MaxEval),
		zap.Int("population", m.cfg.Population),
		zap.Int("iterations", config.MaxIterations),
	)
	// A swarm that converges early is restarted from the current random
	// state until the run stops.
	for !run.Done() && evalErr == nil {
		if _, err := mayfly.Optimize(config); err != nil {
			return nil, optimization.WrapError(err, "mayfly optimization failed").WithComponent(m.Name())
		}
	}
	if evalErr != nil {
		return nil, evalErr
	}
	return run.Result(), nil
}

// fromUnit maps u from the unit hypercube onto b.
func (m *Mayfly) fromUnit(b optimization.Bounds, u []float64) optimization.Point {
	p := optimization.Point{Domain: b.Domain(), X: make([]float64, b.Dim())}
	for i := range p.X {
		t := u[i]
		if math.IsNaN(t) {
			t = 0
		}
		t = math.Max(0, math.Min(1, t))
		v := b.Lower.X[i] + t*b.Width(i)
		if p.IsInteger() {
			v = math.Round(v)
		}
		p.X[i] = math.Max(b.Lower.X[i], math.Min(b.Upper.X[i], v))
	}
	return p
}
