package optimization

import (
	"math"
	"math/rand/v2"
	"testing"
)

// lineObjective is f(x) = sum |x_i - target| over an integer box.
type lineObjective struct {
	bounds Bounds
	target float64
	fstar  *float64
}

func newLineObjective(t *testing.T, n int, lo, hi, target int) *lineObjective {
	t.Helper()
	lower := make([]int, n)
	upper := make([]int, n)
	for i := range lower {
		lower[i], upper[i] = lo, hi
	}
	b, err := NewBounds(IntPoint(lower...), IntPoint(upper...))
	if err != nil {
		t.Fatalf("bounds: %v", err)
	}
	return &lineObjective{bounds: b, target: float64(target)}
}

func (o *lineObjective) Bounds() Bounds { return o.bounds }

func (o *lineObjective) FStar() (float64, bool) {
	if o.fstar == nil {
		return 0, false
	}
	return *o.fstar, true
}

func (o *lineObjective) GeneratePoint(rng *rand.Rand) Point { return RandomPoint(o.bounds, rng) }

func (o *lineObjective) Evaluate(p Point) (float64, error) {
	if err := o.bounds.Check("evaluate", p); err != nil {
		return 0, err
	}
	sum := 0.0
	for _, v := range p.X {
		sum += math.Abs(v - o.target)
	}
	return sum, nil
}

func (o *lineObjective) Neighborhood(p Point, distance int) ([]Point, error) {
	if err := o.bounds.Check("neighborhood", p); err != nil {
		return nil, err
	}
	return ExpandNeighborhood(p, distance, func(q Point) []Point {
		return StepNeighbors(o.bounds, q, 1)
	}), nil
}

func testRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
