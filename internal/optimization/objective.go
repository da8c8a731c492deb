package optimization

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Objective defines the search space and the function to minimize for one
// problem instance. Implementations are immutable after construction and
// may be shared by any number of sequential searches.
type Objective interface {
	// Bounds returns the search space. Every point passed to Evaluate must
	// lie within it.
	Bounds() Bounds

	// FStar returns the known optimum, if any.
	FStar() (float64, bool)

	// GeneratePoint samples a point uniformly from Bounds using rng.
	GeneratePoint(rng *rand.Rand) Point

	// Evaluate returns the objective value of p, lower is better. It fails
	// with an ErrDomain error if p does not match the bounds.
	Evaluate(p Point) (float64, error)

	// Neighborhood returns every point reachable from p by up to distance
	// unit perturbations, without duplicates and without p itself. The order
	// is deterministic for identical inputs.
	Neighborhood(p Point, distance int) ([]Point, error)
}

// Decoder is implemented by objectives whose encoded points differ from the
// natural representation of a solution.
type Decoder interface {
	Decode(p Point) (interface{}, error)
}

// Decode maps p to the natural solution representation of obj. Objectives
// without a Decoder decode to a copy of p.
func Decode(obj Objective, p Point) (interface{}, error) {
	if d, ok := obj.(Decoder); ok {
		return d.Decode(p)
	}
	if err := obj.Bounds().Check("decode", p); err != nil {
		return nil, err
	}
	return p.Clone(), nil
}

// RandomPoint draws a point uniformly from b. Integer coordinates are drawn
// over the discrete range, real coordinates over the continuous interval.
func RandomPoint(b Bounds, rng *rand.Rand) Point {
	p := Point{Domain: b.Domain(), X: make([]float64, b.Dim())}
	for i := range p.X {
		lo, hi := b.Lower.X[i], b.Upper.X[i]
		if p.Domain == Integer {
			p.X[i] = lo + float64(rng.IntN(int(hi-lo)+1))
			continue
		}
		u := distuv.Uniform{Min: lo, Max: hi, Src: rng}
		p.X[i] = u.Rand()
	}
	return p
}

// Heuristic is a configured search algorithm bound to one objective.
type Heuristic interface {
	// Name identifies the algorithm in logs, metrics and results.
	Name() string

	// Search runs one complete search and returns its result.
	Search() (*Result, error)
}
