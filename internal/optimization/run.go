package optimization

import (
	"errors"
	"math"
	"math/rand/v2"

	"go.uber.org/zap"
)

// ErrStopped is returned by Run.Evaluate once the search has terminated.
var ErrStopped = errors.New("search already terminated")

// Run is the state of one search: evaluation counter, iteration counter,
// global best and trace. Heuristics create one per Search call and route
// every evaluation through it so that budget and optimum checks are shared.
type Run struct {
	algorithm string
	obj       Objective
	bounds    Bounds
	maxEval   int
	fstar     float64
	hasFStar  bool
	logger    *zap.Logger

	evaluations int
	iterations  int
	best        Point
	bestValue   float64
	reason      Reason
	trace       []TraceEntry
}

// NewRun starts the state of a search of obj limited to maxEval evaluations.
func NewRun(algorithm string, obj Objective, maxEval int, logger *zap.Logger) *Run {
	if logger == nil {
		logger = zap.NewNop()
	}
	fstar, ok := obj.FStar()
	return &Run{
		algorithm: algorithm,
		obj:       obj,
		bounds:    obj.Bounds(),
		maxEval:   maxEval,
		fstar:     fstar,
		hasFStar:  ok,
		logger:    logger,
		bestValue: math.Inf(1),
	}
}

// Evaluate evaluates p, updates the best point and the termination reason.
// Points outside the bounds are rejected with an ErrDomain error.
func (r *Run) Evaluate(p Point) (float64, error) {
	if r.reason != ReasonNone {
		return math.Inf(1), ErrStopped
	}
	if err := r.bounds.CheckWithin("evaluate", p); err != nil {
		return math.Inf(1), err
	}
	y, err := r.obj.Evaluate(p)
	if err != nil {
		return math.Inf(1), err
	}
	r.evaluations++

	if y < r.bestValue {
		r.best = p.Clone()
		r.bestValue = y
	}

	switch {
	case r.hasFStar && reachesOptimum(y, r.fstar):
		r.reason = ReasonOptimumFound
	case r.evaluations >= r.maxEval:
		r.reason = ReasonBudgetExhausted
	}
	return y, nil
}

// Done reports whether the search must stop.
func (r *Run) Done() bool { return r.reason != ReasonNone }

// Evaluations returns the number of evaluations consumed so far.
func (r *Run) Evaluations() int { return r.evaluations }

// Remaining returns the number of evaluations left in the budget.
func (r *Run) Remaining() int { return r.maxEval - r.evaluations }

// Iterations returns the number of completed iterations.
func (r *Run) Iterations() int { return r.iterations }

// Best returns the best point evaluated so far and its value.
func (r *Run) Best() (Point, float64) { return r.best, r.bestValue }

// Logger returns the logger of the run.
func (r *Run) Logger() *zap.Logger { return r.logger }

// Record closes an iteration: it appends a trace entry carrying the current
// value and the global best.
func (r *Run) Record(value float64, opts ...TraceOption) {
	entry := TraceEntry{
		Iteration:   r.iterations,
		Evaluations: r.evaluations,
		Value:       value,
		Best:        r.bestValue,
	}
	for _, opt := range opts {
		opt(&entry)
	}
	r.trace = append(r.trace, entry)
	r.iterations++
	r.logger.Debug("iteration",
		zap.Int("iteration", entry.Iteration),
		zap.Int("evaluations", entry.Evaluations),
		zap.Float64("value", entry.Value),
		zap.Float64("best", entry.Best),
	)
}

// TraceOption decorates a trace entry.
type TraceOption func(*TraceEntry)

// WithTemperature stores the temperature of an annealing step.
func WithTemperature(t float64) TraceOption {
	return func(e *TraceEntry) { e.Temperature = t }
}

// WithAccepted stores whether the candidate of the step was accepted.
func WithAccepted(accepted bool) TraceOption {
	return func(e *TraceEntry) { e.Accepted = accepted }
}

// Result extracts the immutable result of the run.
func (r *Run) Result() *Result {
	res := &Result{
		Algorithm:   r.algorithm,
		BestPoint:   r.best.Clone(),
		BestValue:   r.bestValue,
		Evaluations: r.evaluations,
		Iterations:  r.iterations,
		Reason:      r.reason,
		Trace:       append([]TraceEntry(nil), r.trace...),
	}
	r.logger.Info("search finished",
		zap.String("algorithm", r.algorithm),
		zap.Float64("best_value", res.BestValue),
		zap.Int("evaluations", res.Evaluations),
		zap.Stringer("reason", res.Reason),
	)
	return res
}

// CheckSetup validates the parameters every heuristic shares.
func CheckSetup(component string, obj Objective, maxEval int, rng *rand.Rand) error {
	if obj == nil {
		return NewConfigError(component, "an objective is required")
	}
	if maxEval < 1 {
		return NewConfigError(component, "evaluation budget must be at least 1, got %d", maxEval)
	}
	if rng == nil {
		return NewConfigError(component, "a random source is required")
	}
	return nil
}
