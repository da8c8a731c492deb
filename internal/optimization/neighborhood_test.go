package optimization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepNeighbors(t *testing.T) {
	b, err := NewBounds(IntPoint(0, 0), IntPoint(2, 0))
	require.NoError(t, err)

	got := StepNeighbors(b, IntPoint(0, 0), 1)
	require.Len(t, got, 1)
	assert.Equal(t, []int{1, 0}, got[0].Ints())

	got = StepNeighbors(b, IntPoint(1, 0), 1)
	require.Len(t, got, 2)
	assert.Equal(t, []int{0, 0}, got[0].Ints(), "minus move comes first")
	assert.Equal(t, []int{2, 0}, got[1].Ints())
}

func TestStepNeighborsClipsRealSteps(t *testing.T) {
	b, err := NewBounds(RealPoint(0), RealPoint(1))
	require.NoError(t, err)

	got := StepNeighbors(b, RealPoint(0.95), 0.1)
	require.Len(t, got, 2)
	assert.InDelta(t, 0.85, got[0].X[0], 1e-12)
	assert.Equal(t, 1.0, got[1].X[0])
}

func TestExpandNeighborhood(t *testing.T) {
	obj := newLineObjective(t, 2, 0, 4, 0)
	p := IntPoint(2, 2)

	d1, err := obj.Neighborhood(p, 1)
	require.NoError(t, err)
	assert.Len(t, d1, 4)

	d2, err := obj.Neighborhood(p, 2)
	require.NoError(t, err)
	// Manhattan ball of radius 2 in 2D holds 13 points, minus the center.
	assert.Len(t, d2, 12)

	keys := map[string]bool{}
	for _, q := range d2 {
		assert.False(t, q.Equal(p), "center must be excluded")
		assert.False(t, keys[q.Key()], "duplicate %s", q)
		keys[q.Key()] = true
	}

	again, err := obj.Neighborhood(p, 2)
	require.NoError(t, err)
	assert.Equal(t, d2, again, "order must be reproducible")

	assert.Empty(t, ExpandNeighborhood(p, 0, nil))
}
