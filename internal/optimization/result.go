package optimization

import (
	"encoding/json"
	"fmt"
	"math"
)

// Reason records why a search terminated.
type Reason uint8

const (
	// ReasonNone marks a search that has not terminated yet.
	ReasonNone Reason = iota
	// ReasonBudgetExhausted means the evaluation budget was consumed.
	ReasonBudgetExhausted
	// ReasonOptimumFound means a value matching the known optimum was evaluated.
	ReasonOptimumFound
)

// String returns the snake_case name of r.
func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "running"
	case ReasonBudgetExhausted:
		return "budget_exhausted"
	case ReasonOptimumFound:
		return "optimum_found"
	default:
		return fmt.Sprintf("reason(%d)", uint8(r))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Reason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Reason) UnmarshalText(text []byte) error {
	switch string(text) {
	case "running":
		*r = ReasonNone
	case "budget_exhausted":
		*r = ReasonBudgetExhausted
	case "optimum_found":
		*r = ReasonOptimumFound
	default:
		return fmt.Errorf("unknown termination reason %q", text)
	}
	return nil
}

// TraceEntry is one line of the per-iteration log of a search.
type TraceEntry struct {
	Iteration   int     `json:"iteration"`
	Evaluations int     `json:"evaluations"`
	Value       float64 `json:"value"`
	Best        float64 `json:"best"`
	Temperature float64 `json:"temperature,omitempty"`
	Accepted    bool    `json:"accepted,omitempty"`
}

// Result is the immutable outcome of one search.
type Result struct {
	Algorithm   string       `json:"algorithm"`
	BestPoint   Point        `json:"best_point"`
	BestValue   float64      `json:"best_value"`
	Evaluations int          `json:"evaluations"`
	Iterations  int          `json:"iterations"`
	Reason      Reason       `json:"reason"`
	Trace       []TraceEntry `json:"trace,omitempty"`
}

// MarshalJSON adds the domain of the best point, which its array encoding
// drops.
func (r Result) MarshalJSON() ([]byte, error) {
	type plain Result
	return json.Marshal(struct {
		plain
		Domain Domain `json:"domain"`
	}{plain(r), r.BestPoint.Domain})
}

// UnmarshalJSON restores the domain of the best point when it is present.
func (r *Result) UnmarshalJSON(data []byte) error {
	type plain Result
	aux := struct {
		*plain
		Domain *Domain `json:"domain"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Domain != nil {
		r.BestPoint.Domain = *aux.Domain
	}
	return nil
}

// Solved reports whether the search stopped on the known optimum.
func (r *Result) Solved() bool {
	return r.Reason == ReasonOptimumFound
}

// BestTrace returns the best-so-far value of every trace entry.
func (r *Result) BestTrace() []float64 {
	out := make([]float64, len(r.Trace))
	for i, e := range r.Trace {
		out[i] = e.Best
	}
	return out
}

// reachesOptimum reports whether y matches fstar. A relative slack absorbs
// the rounding of sums such as tour lengths.
func reachesOptimum(y, fstar float64) bool {
	return y <= fstar+1e-9*math.Max(1, math.Abs(fstar))
}
