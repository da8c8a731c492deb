// Package mutation perturbs points into neighboring candidates.
package mutation

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/copyleftdev/heuristics/internal/optimization"
	"github.com/copyleftdev/heuristics/internal/optimization/correction"
)

// Operator returns a perturbed copy of p that lies within the bounds of the
// objective p belongs to.
type Operator interface {
	Mutate(p optimization.Point, rng *rand.Rand) (optimization.Point, error)
}

// Cauchy adds an independent Cauchy-distributed step of scale R to every
// coordinate, then repairs the result with its correction strategy. Integer
// points receive steps rounded to the nearest integer.
type Cauchy struct {
	r          float64
	correction correction.Strategy
}

var _ Operator = (*Cauchy)(nil)

// NewCauchy returns a Cauchy mutation with step scale r.
func NewCauchy(r float64, corr correction.Strategy) (*Cauchy, error) {
	if !(r > 0) || math.IsInf(r, 1) {
		return nil, optimization.NewConfigError("cauchy mutation", "step scale r must be positive and finite, got %v", r)
	}
	if corr == nil {
		return nil, optimization.NewConfigError("cauchy mutation", "a correction strategy is required")
	}
	return &Cauchy{r: r, correction: corr}, nil
}

// R returns the step scale.
func (c *Cauchy) R() float64 { return c.r }

// Mutate implements Operator.
func (c *Cauchy) Mutate(p optimization.Point, rng *rand.Rand) (optimization.Point, error) {
	// Student's t with one degree of freedom is the Cauchy distribution.
	step := distuv.StudentsT{Mu: 0, Sigma: c.r, Nu: 1, Src: rng}
	out := p.Clone()
	for i := range out.X {
		d := step.Rand()
		if p.IsInteger() {
			d = math.Round(d)
		}
		out.X[i] += d
	}
	return c.correction.Correct(out)
}
