package annealing

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/heuristics/internal/optimization"
	"github.com/copyleftdev/heuristics/internal/optimization/correction"
	"github.com/copyleftdev/heuristics/internal/optimization/mutation"
	"github.com/copyleftdev/heuristics/internal/optimization/objective"
)

func newRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, 2))
}

func newTSPSetup(t *testing.T, a, b int, r float64) (*objective.TSPGrid, mutation.Operator) {
	t.Helper()
	tsp, err := objective.NewTSPGrid(a, b)
	require.NoError(t, err)
	mut, err := mutation.NewCauchy(r, correction.NewMirror(tsp.Bounds()))
	require.NoError(t, err)
	return tsp, mut
}

func TestTemperature(t *testing.T) {
	tests := []struct {
		name  string
		alpha float64
		k     int
		want  float64
	}{
		{"start polynomial", 1, 0, 10},
		{"k equals n0", 1, 100, 5},
		{"quadratic", 2, 200, 2},
		{"alpha zero halves", 0, 0, 5},
		{"exponential start", -1, 0, 10},
		{"exponential at n0", -1, 100, 10 * math.Exp(-1)},
		{"exponential squared", -2, 200, 10 * math.Exp(-4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Temperature(10, 100, tt.alpha, tt.k), 1e-12)
		})
	}
}

func TestTemperature_Decreasing(t *testing.T) {
	for _, alpha := range []float64{0.5, 1, 2, -0.5, -1} {
		prev := math.Inf(1)
		for k := 0; k < 1000; k += 10 {
			cur := Temperature(1, 50, alpha, k)
			assert.LessOrEqual(t, cur, prev, "alpha=%v k=%d", alpha, k)
			prev = cur
		}
	}
}

func TestAcceptanceProbability(t *testing.T) {
	assert.Equal(t, 1.0, AcceptanceProbability(-3, 1))
	assert.Equal(t, 1.0, AcceptanceProbability(0, 0))
	assert.InDelta(t, 0.5, AcceptanceProbability(2, 2), 1e-12)
	assert.InDelta(t, 0.2, AcceptanceProbability(4, 1), 1e-12)
	assert.Equal(t, 0.0, AcceptanceProbability(1, 0))
	assert.Equal(t, 0.0, AcceptanceProbability(1, -1))
	assert.Equal(t, 0.0, AcceptanceProbability(1, math.NaN()))
}

func TestNew_Validation(t *testing.T) {
	tsp, mut := newTSPSetup(t, 3, 2, 1)
	valid := Config{MaxEval: 100, T0: 1, N0: 1, Alpha: 1}

	tests := []struct {
		name   string
		mutate func(*Config)
		mut    mutation.Operator
	}{
		{"zero budget", func(c *Config) { c.MaxEval = 0 }, mut},
		{"zero t0", func(c *Config) { c.T0 = 0 }, mut},
		{"nan t0", func(c *Config) { c.T0 = math.NaN() }, mut},
		{"negative n0", func(c *Config) { c.N0 = -1 }, mut},
		{"infinite alpha", func(c *Config) { c.Alpha = math.Inf(1) }, mut},
		{"nil mutation", func(c *Config) {}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			_, err := New(tsp, cfg, tt.mut, newRNG(1), nil)
			require.Error(t, err)
			assert.True(t, optimization.IsConfigError(err))
		})
	}

	_, err := New(tsp, valid, mut, newRNG(1), nil)
	assert.NoError(t, err)
}

func TestSearch_Trace(t *testing.T) {
	tsp, mut := newTSPSetup(t, 5, 5, 0.5)
	fsa, err := New(tsp, Config{MaxEval: 2000, T0: 1, N0: 1, Alpha: 1}, mut, newRNG(9), nil)
	require.NoError(t, err)

	res, err := fsa.Search()
	require.NoError(t, err)
	assert.LessOrEqual(t, res.Evaluations, 2000)
	require.NotEmpty(t, res.Trace)
	assert.Len(t, res.Trace, res.Evaluations)
	assert.Equal(t, 1.0, res.Trace[0].Temperature)

	best := res.BestTrace()
	for i := 1; i < len(best); i++ {
		assert.LessOrEqual(t, best[i], best[i-1])
	}
	for i, e := range res.Trace {
		assert.GreaterOrEqual(t, e.Value, e.Best, "entry %d", i)
		assert.Equal(t, i+1, e.Evaluations)
		if i > 1 {
			assert.LessOrEqual(t, e.Temperature, res.Trace[i-1].Temperature)
		}
	}
	assert.InDelta(t, res.Trace[len(res.Trace)-1].Best, res.BestValue, 0)
}

func TestSearch_RejectsWorseningMovesWhenFrozen(t *testing.T) {
	// With alpha strongly negative the temperature collapses to zero after
	// the first step, so the current value can never rise.
	tsp, mut := newTSPSetup(t, 4, 4, 1)
	fsa, err := New(tsp, Config{MaxEval: 1500, T0: 1e-300, N0: 1e-3, Alpha: -4}, mut, newRNG(21), nil)
	require.NoError(t, err)

	res, err := fsa.Search()
	require.NoError(t, err)
	for i := 2; i < len(res.Trace); i++ {
		assert.LessOrEqual(t, res.Trace[i].Value, res.Trace[i-1].Value)
	}
}

func TestSearch_FindsSmallTourOptimum(t *testing.T) {
	tsp, mut := newTSPSetup(t, 3, 2, 1)
	fsa, err := New(tsp, Config{MaxEval: 10000, T0: 1, N0: 10, Alpha: 0.5}, mut, newRNG(4), nil)
	require.NoError(t, err)

	res, err := fsa.Search()
	require.NoError(t, err)
	assert.Equal(t, optimization.ReasonOptimumFound, res.Reason)
	assert.InDelta(t, 6.0, res.BestValue, 1e-9)
}

func TestSearch_Reproducible(t *testing.T) {
	run := func(seed uint64) *optimization.Result {
		tsp, mut := newTSPSetup(t, 4, 4, 2)
		fsa, err := New(tsp, Config{MaxEval: 800, T0: 5, N0: 20, Alpha: 2}, mut, newRNG(seed), nil)
		require.NoError(t, err)
		res, err := fsa.Search()
		require.NoError(t, err)
		return res
	}
	a, b := run(3), run(3)
	assert.Equal(t, a.BestValue, b.BestValue)
	assert.True(t, a.BestPoint.Equal(b.BestPoint))
	assert.Equal(t, a.Trace, b.Trace)
}

func TestSearch_DeJongReachesTolerance(t *testing.T) {
	dj, err := objective.NewDeJong1(3, 0.1, objective.DefaultDeJongStep)
	require.NoError(t, err)
	mut, err := mutation.NewCauchy(0.1, correction.NewMirror(dj.Bounds()))
	require.NoError(t, err)

	for seed := uint64(1); seed <= 5; seed++ {
		fsa, err := New(dj, Config{MaxEval: 10000, T0: 10, N0: 10, Alpha: 2}, mut, newRNG(seed), nil)
		require.NoError(t, err)

		res, err := fsa.Search()
		require.NoError(t, err)
		assert.Equal(t, optimization.ReasonOptimumFound, res.Reason, "seed %d", seed)
		assert.LessOrEqual(t, res.BestValue, 0.1+1e-9, "seed %d", seed)
		assert.LessOrEqual(t, res.Evaluations, 10000)
	}
}
