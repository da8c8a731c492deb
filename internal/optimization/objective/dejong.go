package objective

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"

	"github.com/copyleftdev/heuristics/internal/optimization"
)

// DeJongLimit bounds every coordinate of DeJong1 to [-DeJongLimit, DeJongLimit].
const DeJongLimit = 5.12

// DefaultDeJongStep is the neighborhood step used when none is given.
const DefaultDeJongStep = 0.1

// DeJong1 is the sphere f(x) = sum x_i^2 over [-5.12, 5.12]^n with its
// minimum 0 at the origin. A search reaches the optimum once it evaluates a
// value of at most eps, so FStar reports eps. The neighborhood moves one
// coordinate by +-step.
type DeJong1 struct {
	n      int
	eps    float64
	step   float64
	bounds optimization.Bounds
}

var _ optimization.Objective = (*DeJong1)(nil)

// NewDeJong1 builds the n-dimensional instance with success tolerance eps
// and neighborhood step step.
func NewDeJong1(n int, eps, step float64) (*DeJong1, error) {
	if n < 1 {
		return nil, optimization.NewConfigError("dejong1", "dimension must be positive, got %d", n)
	}
	if !(eps > 0) {
		return nil, optimization.NewConfigError("dejong1", "eps must be positive, got %v", eps)
	}
	if !(step > 0) {
		return nil, optimization.NewConfigError("dejong1", "step must be positive, got %v", step)
	}
	lower := make([]float64, n)
	upper := make([]float64, n)
	for i := range lower {
		lower[i], upper[i] = -DeJongLimit, DeJongLimit
	}
	bounds, err := optimization.NewBounds(optimization.RealPoint(lower...), optimization.RealPoint(upper...))
	if err != nil {
		return nil, err
	}
	return &DeJong1{n: n, eps: eps, step: step, bounds: bounds}, nil
}

// Step returns the neighborhood step.
func (d *DeJong1) Step() float64 { return d.step }

// Bounds implements optimization.Objective.
func (d *DeJong1) Bounds() optimization.Bounds { return d.bounds }

// FStar implements optimization.Objective. It is the success tolerance eps.
func (d *DeJong1) FStar() (float64, bool) { return d.eps, true }

// GeneratePoint implements optimization.Objective.
func (d *DeJong1) GeneratePoint(rng *rand.Rand) optimization.Point {
	return optimization.RandomPoint(d.bounds, rng)
}

// Evaluate implements optimization.Objective.
func (d *DeJong1) Evaluate(p optimization.Point) (float64, error) {
	if err := d.bounds.Check("dejong1 evaluate", p); err != nil {
		return 0, err
	}
	return floats.Dot(p.X, p.X), nil
}

// Neighborhood implements optimization.Objective.
func (d *DeJong1) Neighborhood(p optimization.Point, distance int) ([]optimization.Point, error) {
	if err := d.bounds.Check("dejong1 neighborhood", p); err != nil {
		return nil, err
	}
	return optimization.ExpandNeighborhood(p, distance, func(q optimization.Point) []optimization.Point {
		return optimization.StepNeighbors(d.bounds, q, d.step)
	}), nil
}
