package optimization

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunBudget(t *testing.T) {
	obj := newLineObjective(t, 3, 0, 5, 2)
	run := NewRun("test", obj, 3, nil)

	for i := 0; i < 3; i++ {
		require.False(t, run.Done())
		_, err := run.Evaluate(IntPoint(5, 5, 5))
		require.NoError(t, err)
	}
	assert.True(t, run.Done())
	assert.Equal(t, 0, run.Remaining())

	_, err := run.Evaluate(IntPoint(2, 2, 2))
	assert.ErrorIs(t, err, ErrStopped)

	res := run.Result()
	assert.Equal(t, ReasonBudgetExhausted, res.Reason)
	assert.Equal(t, 3, res.Evaluations)
	assert.Equal(t, 9.0, res.BestValue)
}

func TestRunOptimumFound(t *testing.T) {
	obj := newLineObjective(t, 2, 0, 5, 2)
	zero := 0.0
	obj.fstar = &zero
	run := NewRun("test", obj, 100, nil)

	_, err := run.Evaluate(IntPoint(0, 0))
	require.NoError(t, err)
	assert.False(t, run.Done())

	y, err := run.Evaluate(IntPoint(2, 2))
	require.NoError(t, err)
	assert.Equal(t, 0.0, y)
	assert.True(t, run.Done())

	res := run.Result()
	assert.Equal(t, ReasonOptimumFound, res.Reason)
	assert.True(t, res.Solved())
	assert.Equal(t, 2, res.Evaluations)
	assert.Equal(t, []int{2, 2}, res.BestPoint.Ints())
}

func TestRunRejectsPointsOutsideBounds(t *testing.T) {
	obj := newLineObjective(t, 2, 0, 5, 2)
	run := NewRun("test", obj, 10, nil)

	_, err := run.Evaluate(IntPoint(6, 0))
	require.Error(t, err)
	assert.True(t, IsDomainError(err))

	_, err = run.Evaluate(RealPoint(1, 1))
	assert.True(t, IsDomainError(err))
	assert.Equal(t, 0, run.Evaluations(), "rejected points consume no budget")
}

func TestRunBestIsCopied(t *testing.T) {
	obj := newLineObjective(t, 1, 0, 5, 0)
	run := NewRun("test", obj, 10, nil)

	p := IntPoint(1)
	_, err := run.Evaluate(p)
	require.NoError(t, err)
	p.X[0] = 4

	best, value := run.Best()
	assert.Equal(t, []int{1}, best.Ints())
	assert.Equal(t, 1.0, value)
}

func TestRunTrace(t *testing.T) {
	obj := newLineObjective(t, 1, 0, 5, 0)
	run := NewRun("test", obj, 10, nil)

	for _, v := range []int{3, 4, 1, 2} {
		y, err := run.Evaluate(IntPoint(v))
		require.NoError(t, err)
		run.Record(y, WithTemperature(1.5), WithAccepted(true))
	}

	res := run.Result()
	assert.Equal(t, 4, res.Iterations)
	assert.Equal(t, []float64{3, 3, 1, 1}, res.BestTrace())
	assert.Equal(t, 1.5, res.Trace[0].Temperature)
	assert.True(t, res.Trace[0].Accepted)
	assert.Equal(t, 3, res.Trace[2].Evaluations)

	data, err := json.Marshal(res)
	require.NoError(t, err)
	var decoded struct {
		Reason    Reason `json:"reason"`
		BestPoint []int  `json:"best_point"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, ReasonNone, decoded.Reason)
	assert.Equal(t, []int{1}, decoded.BestPoint)
}

func TestResultJSONKeepsRealDomain(t *testing.T) {
	res := &Result{
		Algorithm:   "test",
		BestPoint:   RealPoint(0, 0),
		BestValue:   0,
		Evaluations: 7,
		Reason:      ReasonOptimumFound,
	}
	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"domain":"real"`)
	assert.Contains(t, string(data), `"best_point":[0,0]`)

	var back Result
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.BestPoint.Equal(RealPoint(0, 0)))
	assert.Equal(t, ReasonOptimumFound, back.Reason)
	assert.Equal(t, 7, back.Evaluations)

	b, err := NewBounds(RealPoint(-1, -1), RealPoint(1, 1))
	require.NoError(t, err)
	assert.NoError(t, b.Check("decoded", back.BestPoint))

	require.NoError(t, json.Unmarshal([]byte(`{"best_point":[1,2]}`), &back))
	assert.Equal(t, Integer, back.BestPoint.Domain)
}

func TestErrors(t *testing.T) {
	err := NewDomainError("evaluate", "point has %d coordinates", 3)
	assert.True(t, errors.Is(err, ErrDomain))
	assert.Equal(t, "evaluate: point has 3 coordinates: domain mismatch", err.Error())

	cfg := NewConfigError("genetic", "population size %d < 2", 1)
	assert.True(t, IsConfigError(cfg))
	assert.False(t, IsDomainError(cfg))
	assert.Equal(t, "genetic: population size 1 < 2: invalid configuration", cfg.Error())

	wrapped := WrapError(cfg, "building heuristic")
	e, ok := IsOptimizationError(wrapped)
	require.True(t, ok)
	assert.Equal(t, "building heuristic", e.Message)
	assert.True(t, IsConfigError(wrapped))

	assert.Nil(t, WrapError(nil, "ignored"))
	var nilErr *Error
	assert.Equal(t, "<nil>", nilErr.Error())
}
