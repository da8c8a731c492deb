// Package metrics exposes search activity as Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/copyleftdev/heuristics/internal/optimization"
)

const namespace = "heur"

// Recorder holds the collectors of the search service.
type Recorder struct {
	runs        *prometheus.CounterVec
	evaluations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	bestValue   *prometheus.GaugeVec
	jobsActive  prometheus.Gauge
}

// NewRecorder creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Completed searches by algorithm and termination reason.",
		}, []string{"algorithm", "reason"}),
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Objective evaluations consumed by completed searches.",
		}, []string{"algorithm"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of a search.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"algorithm"}),
		bestValue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "best_value",
			Help:      "Best objective value of the most recent search.",
		}, []string{"algorithm"}),
		jobsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "jobs_active",
			Help:      "Search jobs currently running.",
		}),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{r.runs, r.evaluations, r.duration, r.bestValue, r.jobsActive} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return r, nil
}

// ObserveRun records a finished search.
func (r *Recorder) ObserveRun(res *optimization.Result, elapsed time.Duration) {
	r.runs.WithLabelValues(res.Algorithm, res.Reason.String()).Inc()
	r.evaluations.WithLabelValues(res.Algorithm).Add(float64(res.Evaluations))
	r.duration.WithLabelValues(res.Algorithm).Observe(elapsed.Seconds())
	r.bestValue.WithLabelValues(res.Algorithm).Set(res.BestValue)
}

// JobStarted increments the active job gauge.
func (r *Recorder) JobStarted() { r.jobsActive.Inc() }

// JobFinished decrements the active job gauge.
func (r *Recorder) JobFinished() { r.jobsActive.Dec() }
