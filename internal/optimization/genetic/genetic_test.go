package genetic

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/heuristics/internal/optimization"
	"github.com/copyleftdev/heuristics/internal/optimization/correction"
	"github.com/copyleftdev/heuristics/internal/optimization/crossover"
	"github.com/copyleftdev/heuristics/internal/optimization/mutation"
	"github.com/copyleftdev/heuristics/internal/optimization/objective"
)

func newRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, 3))
}

// noOptimum hides the known optimum so that only the budget stops a run.
type noOptimum struct{ optimization.Objective }

func (noOptimum) FStar() (float64, bool) { return 0, false }

func operators(t *testing.T, obj optimization.Objective, k int) (mutation.Operator, crossover.Operator) {
	t.Helper()
	mut, err := mutation.NewCauchy(1, correction.NewMirror(obj.Bounds()))
	require.NoError(t, err)
	cross, err := crossover.NewUniformMultipoint(k)
	require.NoError(t, err)
	return mut, cross
}

func newTSP(t *testing.T, a, b int) *objective.TSPGrid {
	t.Helper()
	tsp, err := objective.NewTSPGrid(a, b)
	require.NoError(t, err)
	return tsp
}

func TestRankWeights(t *testing.T) {
	w := RankWeights(4, 0.5)
	require.Len(t, w, 4)
	assert.Equal(t, 1.0, w[0])
	for r := 1; r < len(w); r++ {
		assert.InDelta(t, math.Exp(-float64(r)/2), w[r], 1e-12)
		assert.Less(t, w[r], w[r-1])
	}
}

func TestNew_Validation(t *testing.T) {
	tsp := newTSP(t, 3, 2)
	mut, cross := operators(t, tsp, 1)
	valid := Config{MaxEval: 100, N: 10, M: 5, Tsel1: 1, Tsel2: 1}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"tiny population", func(c *Config) { c.N = 1 }},
		{"no offspring", func(c *Config) { c.M = 0 }},
		{"zero tsel1", func(c *Config) { c.Tsel1 = 0 }},
		{"negative tsel2", func(c *Config) { c.Tsel2 = -1 }},
		{"zero budget", func(c *Config) { c.MaxEval = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			_, err := New(tsp, cfg, mut, cross, newRNG(1), nil)
			require.Error(t, err)
			assert.True(t, optimization.IsConfigError(err))
		})
	}

	_, err := New(tsp, valid, nil, cross, newRNG(1), nil)
	assert.True(t, optimization.IsConfigError(err))
	_, err = New(tsp, valid, mut, nil, newRNG(1), nil)
	assert.True(t, optimization.IsConfigError(err))
}

func TestNew_CrossoverTooManyCuts(t *testing.T) {
	tsp := newTSP(t, 3, 2) // dimension 5
	mut, _ := operators(t, tsp, 1)

	cross, err := crossover.NewUniformMultipoint(5)
	require.NoError(t, err)
	_, err = New(tsp, Config{MaxEval: 100, N: 4, M: 2, Tsel1: 1, Tsel2: 1}, mut, cross, newRNG(1), nil)
	require.Error(t, err)
	assert.True(t, optimization.IsConfigError(err))

	cross, err = crossover.NewUniformMultipoint(4)
	require.NoError(t, err)
	_, err = New(tsp, Config{MaxEval: 100, N: 4, M: 2, Tsel1: 1, Tsel2: 1}, mut, cross, newRNG(1), nil)
	assert.NoError(t, err)
}

func TestSearch_EvaluationAccounting(t *testing.T) {
	obj := noOptimum{newTSP(t, 4, 4)}
	mut, cross := operators(t, obj, 2)
	const n, m, generations = 12, 5, 20
	g, err := New(obj, Config{MaxEval: n + generations*m, N: n, M: m, Tsel1: 0.5, Tsel2: 0.1}, mut, cross, newRNG(8), nil)
	require.NoError(t, err)

	res, err := g.Search()
	require.NoError(t, err)
	assert.Equal(t, n+generations*m, res.Evaluations)
	assert.Equal(t, optimization.ReasonBudgetExhausted, res.Reason)
	require.Len(t, res.Trace, generations+1)
	for i, e := range res.Trace {
		assert.Equal(t, n+i*m, e.Evaluations, "generation %d", i)
	}
}

func TestSearch_TruncatedLastGeneration(t *testing.T) {
	obj := noOptimum{newTSP(t, 4, 3)}
	mut, cross := operators(t, obj, 1)
	g, err := New(obj, Config{MaxEval: 33, N: 10, M: 10, Tsel1: 1, Tsel2: 1}, mut, cross, newRNG(2), nil)
	require.NoError(t, err)

	res, err := g.Search()
	require.NoError(t, err)
	assert.Equal(t, 33, res.Evaluations)
	require.Len(t, res.Trace, 4)
	assert.Equal(t, 33, res.Trace[3].Evaluations)
}

func TestSearch_BudgetSmallerThanPopulation(t *testing.T) {
	obj := noOptimum{newTSP(t, 3, 3)}
	mut, cross := operators(t, obj, 1)
	g, err := New(obj, Config{MaxEval: 3, N: 10, M: 4, Tsel1: 1, Tsel2: 1}, mut, cross, newRNG(2), nil)
	require.NoError(t, err)

	res, err := g.Search()
	require.NoError(t, err)
	assert.Equal(t, 3, res.Evaluations)
	assert.Len(t, res.Trace, 1)
}

func TestSearch_BestNeverWorsens(t *testing.T) {
	obj := newTSP(t, 5, 4)
	mut, cross := operators(t, obj, 3)
	g, err := New(obj, Config{MaxEval: 3000, N: 30, M: 30, Tsel1: 0.5, Tsel2: 0.1}, mut, cross, newRNG(13), nil)
	require.NoError(t, err)

	res, err := g.Search()
	require.NoError(t, err)
	best := res.BestTrace()
	for i := 1; i < len(best); i++ {
		assert.LessOrEqual(t, best[i], best[i-1])
	}
	for _, e := range res.Trace {
		assert.GreaterOrEqual(t, e.Value, e.Best)
	}
}

func TestSearch_FindsSmallTourOptimum(t *testing.T) {
	obj := newTSP(t, 3, 2)
	mut, cross := operators(t, obj, 1)
	g, err := New(obj, Config{MaxEval: 5000, N: 20, M: 20, Tsel1: 1, Tsel2: 0.5}, mut, cross, newRNG(6), nil)
	require.NoError(t, err)

	res, err := g.Search()
	require.NoError(t, err)
	assert.Equal(t, optimization.ReasonOptimumFound, res.Reason)
	assert.InDelta(t, 6.0, res.BestValue, 1e-9)
}

func TestSearch_Reproducible(t *testing.T) {
	run := func() *optimization.Result {
		obj := newTSP(t, 4, 4)
		mut, _ := operators(t, obj, 2)
		g, err := New(obj, Config{MaxEval: 600, N: 10, M: 10, Tsel1: 1, Tsel2: 0.5}, mut, crossover.RandomCombination{}, newRNG(77), nil)
		require.NoError(t, err)
		res, err := g.Search()
		require.NoError(t, err)
		return res
	}
	a, b := run(), run()
	assert.Equal(t, a.BestValue, b.BestValue)
	assert.True(t, a.BestPoint.Equal(b.BestPoint))
	assert.Equal(t, a.Trace, b.Trace)
}
