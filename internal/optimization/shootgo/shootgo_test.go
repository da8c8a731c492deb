package shootgo

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/heuristics/internal/optimization"
	"github.com/copyleftdev/heuristics/internal/optimization/objective"
)

func newRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, 1))
}

// spyObjective records how the search uses the wrapped objective.
type spyObjective struct {
	optimization.Objective
	hideFStar bool

	restarts int
	// centers[i] holds the values of the points whose neighborhood was
	// expanded during restart i.
	centers [][]float64
}

func (s *spyObjective) FStar() (float64, bool) {
	if s.hideFStar {
		return 0, false
	}
	return s.Objective.FStar()
}

func (s *spyObjective) GeneratePoint(rng *rand.Rand) optimization.Point {
	s.restarts++
	s.centers = append(s.centers, nil)
	return s.Objective.GeneratePoint(rng)
}

func (s *spyObjective) Neighborhood(p optimization.Point, distance int) ([]optimization.Point, error) {
	y, err := s.Objective.Evaluate(p)
	if err != nil {
		return nil, err
	}
	last := len(s.centers) - 1
	s.centers[last] = append(s.centers[last], y)
	return s.Objective.Neighborhood(p, distance)
}

func (s *spyObjective) neighborhoodCalls() int {
	n := 0
	for _, c := range s.centers {
		n += len(c)
	}
	return n
}

func newTSP(t *testing.T, a, b int) *objective.TSPGrid {
	t.Helper()
	tsp, err := objective.NewTSPGrid(a, b)
	require.NoError(t, err)
	return tsp
}

func TestNew_Validation(t *testing.T) {
	tsp := newTSP(t, 3, 2)
	rng := newRNG(1)

	tests := []struct {
		name string
		obj  optimization.Objective
		cfg  Config
		rng  *rand.Rand
	}{
		{"nil objective", nil, Config{MaxEval: 10}, rng},
		{"zero budget", tsp, Config{MaxEval: 0}, rng},
		{"negative hmax", tsp, Config{MaxEval: 10, HMax: -1}, rng},
		{"nil rng", tsp, Config{MaxEval: 10}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.obj, tt.cfg, tt.rng, nil)
			require.Error(t, err)
			assert.True(t, optimization.IsConfigError(err))
		})
	}
}

func TestSearch_RandomShootingNeverDescends(t *testing.T) {
	spy := &spyObjective{Objective: newTSP(t, 4, 4), hideFStar: true}
	sg, err := New(spy, Config{MaxEval: 300, HMax: 0}, newRNG(7), nil)
	require.NoError(t, err)

	res, err := sg.Search()
	require.NoError(t, err)

	assert.Equal(t, 0, spy.neighborhoodCalls())
	assert.Equal(t, 300, res.Evaluations)
	assert.Equal(t, 300, spy.restarts)
	assert.Equal(t, optimization.ReasonBudgetExhausted, res.Reason)
	assert.Len(t, res.Trace, 300)
}

func TestSearch_DescentNeverIncreasesValue(t *testing.T) {
	for _, random := range []bool{false, true} {
		spy := &spyObjective{Objective: newTSP(t, 4, 4), hideFStar: true}
		sg, err := New(spy, Config{MaxEval: 3000, HMax: Unlimited, RandomDescent: random}, newRNG(11), nil)
		require.NoError(t, err)

		res, err := sg.Search()
		require.NoError(t, err)
		require.Positive(t, spy.neighborhoodCalls())
		assert.LessOrEqual(t, res.Evaluations, 3000)

		for r, values := range spy.centers {
			for i := 1; i < len(values); i++ {
				assert.Less(t, values[i], values[i-1], "restart %d step %d (random=%v)", r, i, random)
			}
		}
	}
}

func TestSearch_DepthIsBounded(t *testing.T) {
	spy := &spyObjective{Objective: newTSP(t, 5, 4), hideFStar: true}
	sg, err := New(spy, Config{MaxEval: 2000, HMax: 2}, newRNG(3), nil)
	require.NoError(t, err)

	_, err = sg.Search()
	require.NoError(t, err)
	for _, values := range spy.centers {
		assert.LessOrEqual(t, len(values), 2)
	}
}

func TestSearch_FindsSmallTourOptimum(t *testing.T) {
	for _, hmax := range []int{0, 1, Unlimited} {
		sg, err := New(newTSP(t, 3, 2), Config{MaxEval: 2000, HMax: hmax}, newRNG(5), nil)
		require.NoError(t, err)

		res, err := sg.Search()
		require.NoError(t, err)
		assert.Equal(t, optimization.ReasonOptimumFound, res.Reason, "hmax=%d", hmax)
		assert.InDelta(t, 6.0, res.BestValue, 1e-9)
		assert.True(t, res.Solved())
	}
}

func TestSearch_Reproducible(t *testing.T) {
	run := func() *optimization.Result {
		sg, err := New(newTSP(t, 4, 3), Config{MaxEval: 500, HMax: 3}, newRNG(42), nil)
		require.NoError(t, err)
		res, err := sg.Search()
		require.NoError(t, err)
		return res
	}
	a, b := run(), run()
	assert.Equal(t, a.BestValue, b.BestValue)
	assert.True(t, a.BestPoint.Equal(b.BestPoint))
	assert.Equal(t, a.Evaluations, b.Evaluations)
	assert.Equal(t, a.BestTrace(), b.BestTrace())
}
