// Package experiment runs repeated independent trials of a plan and
// aggregates them into reliability and efficiency statistics.
package experiment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/copyleftdev/heuristics/internal/optimization"
	"github.com/copyleftdev/heuristics/internal/plan"
)

// Observer is notified after every finished trial.
type Observer interface {
	ObserveRun(res *optimization.Result, elapsed time.Duration)
}

// TrialSink receives the result of every finished trial, for example to
// persist its trace. Calls are serialized.
type TrialSink func(trial int, seed uint64, res *optimization.Result) error

// Runner executes the trials of a plan on a bounded pool of workers.
type Runner struct {
	workers  int
	logger   *zap.Logger
	observer Observer
	sink     TrialSink
	keep     bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithObserver reports every trial to o.
func WithObserver(o Observer) Option {
	return func(r *Runner) { r.observer = o }
}

// WithSink passes every trial result to sink.
func WithSink(sink TrialSink) Option {
	return func(r *Runner) { r.sink = sink }
}

// WithResults keeps the per-trial results in the summary.
func WithResults(keep bool) Option {
	return func(r *Runner) { r.keep = keep }
}

// NewRunner returns a runner using at most workers goroutines.
func NewRunner(workers int, logger *zap.Logger, opts ...Option) *Runner {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Runner{workers: workers, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// TrialSeed returns the seed of trial i of a plan seeded with seed.
func TrialSeed(seed uint64, i int) uint64 {
	return seed + uint64(i)
}

// Run executes p.Trials independent searches, trial i on seed p.Seed+i, and
// summarizes them in trial order. Cancelling ctx stops scheduling new trials;
// running trials finish and Run returns the context error.
func (r *Runner) Run(ctx context.Context, p plan.Plan) (*Summary, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	// Construct one instance up front so that parameter errors surface
	// before any trial is scheduled.
	if _, _, err := plan.Build(p, p.Seed, nil); err != nil {
		return nil, err
	}

	r.logger.Info("experiment started",
		zap.String("plan", p.Label()),
		zap.Int("trials", p.Trials),
		zap.Int("workers", r.workers),
	)

	results := make([]*optimization.Result, p.Trials)
	errs := make([]error, p.Trials)
	trials := make(chan int)
	var (
		wg     sync.WaitGroup
		sinkMu sync.Mutex
	)

	for w := 0; w < min(r.workers, p.Trials); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range trials {
				res, err := r.trial(p, i)
				if err == nil && r.sink != nil {
					sinkMu.Lock()
					err = r.sink(i, TrialSeed(p.Seed, i), res)
					sinkMu.Unlock()
				}
				results[i], errs[i] = res, err
			}
		}()
	}

	var ctxErr error
schedule:
	for i := 0; i < p.Trials; i++ {
		if ctxErr = ctx.Err(); ctxErr != nil {
			break
		}
		select {
		case trials <- i:
		case <-ctx.Done():
			ctxErr = ctx.Err()
			break schedule
		}
	}
	close(trials)
	wg.Wait()

	if ctxErr != nil {
		return nil, ctxErr
	}
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("trial %d: %w", i, err)
		}
	}

	summary := Summarize(p.Label(), results)
	if !r.keep {
		summary.Results = nil
	}
	r.logger.Info("experiment finished",
		zap.String("plan", p.Label()),
		zap.Int("successes", summary.Successes),
		zap.Float64("rel", float64(summary.Reliability)),
		zap.Float64("feo", float64(summary.FEO)),
	)
	return summary, nil
}

func (r *Runner) trial(p plan.Plan, i int) (*optimization.Result, error) {
	seed := TrialSeed(p.Seed, i)
	h, _, err := plan.Build(p, seed, r.logger.With(zap.Int("trial", i)))
	if err != nil {
		return nil, err
	}
	start := time.Now()
	res, err := h.Search()
	if err != nil {
		return nil, err
	}
	if r.observer != nil {
		r.observer.ObserveRun(res, time.Since(start))
	}
	return res, nil
}
