package server

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/copyleftdev/heuristics/internal/experiment"
	"github.com/copyleftdev/heuristics/internal/optimization"
	"github.com/copyleftdev/heuristics/internal/plan"
)

// JobState is the lifecycle state of a search job.
type JobState string

const (
	StatePending   JobState = "pending"
	StateRunning   JobState = "running"
	StateCompleted JobState = "completed"
	StateFailed    JobState = "failed"
	StateCancelled JobState = "cancelled"
)

// Terminal reports whether the job can no longer change state.
func (s JobState) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

// job is the server-side record of a submitted plan.
type job struct {
	id        string
	plan      plan.Plan
	state     JobState
	startTime time.Time
	endTime   *time.Time
	err       string
	summary   *experiment.Summary
	cancel    context.CancelFunc
}

// Status is the externally visible snapshot of a job.
type Status struct {
	ID        string              `json:"search_id"`
	State     JobState            `json:"status"`
	Plan      plan.Plan           `json:"plan"`
	StartTime time.Time           `json:"start_time"`
	EndTime   *time.Time          `json:"end_time,omitempty"`
	Error     string              `json:"error,omitempty"`
	Summary   *experiment.Summary `json:"summary,omitempty"`
	// Result is the first trial; its trace holds at most the configured
	// number of trailing entries.
	Result *optimization.Result `json:"result,omitempty"`
}

// jobStore holds every job of the server.
type jobStore struct {
	mu   sync.RWMutex
	jobs map[string]*job
}

func newJobStore() *jobStore {
	return &jobStore{jobs: make(map[string]*job)}
}

func (js *jobStore) create(p plan.Plan, cancel context.CancelFunc) *job {
	js.mu.Lock()
	defer js.mu.Unlock()

	j := &job{
		id:        uuid.New().String(),
		plan:      p,
		state:     StatePending,
		startTime: time.Now(),
		cancel:    cancel,
	}
	js.jobs[j.id] = j
	return j
}

// transition moves a non-terminal job to state. It reports false when the
// job is unknown or already terminal.
func (js *jobStore) transition(id string, state JobState, update func(*job)) bool {
	js.mu.Lock()
	defer js.mu.Unlock()

	j, ok := js.jobs[id]
	if !ok || j.state.Terminal() {
		return false
	}
	j.state = state
	if state.Terminal() {
		now := time.Now()
		j.endTime = &now
	}
	if update != nil {
		update(j)
	}
	return true
}

func (js *jobStore) status(id string, traceLimit int) (Status, bool) {
	js.mu.RLock()
	defer js.mu.RUnlock()

	j, ok := js.jobs[id]
	if !ok {
		return Status{}, false
	}
	st := Status{
		ID:        j.id,
		State:     j.state,
		Plan:      j.plan,
		StartTime: j.startTime,
		EndTime:   j.endTime,
		Error:     j.err,
	}
	if j.summary != nil {
		summary := *j.summary
		summary.Results = nil
		st.Summary = &summary
		if len(j.summary.Results) > 0 {
			res := *j.summary.Results[0]
			if len(res.Trace) > traceLimit {
				res.Trace = res.Trace[len(res.Trace)-traceLimit:]
			}
			st.Result = &res
		}
	}
	return st, true
}

func (js *jobStore) cancelAll() {
	js.mu.Lock()
	defer js.mu.Unlock()
	for _, j := range js.jobs {
		if j.cancel != nil {
			j.cancel()
		}
	}
}
