// Package crossover combines two parent points into one offspring. Every
// coordinate of an offspring is taken from, or lies between, the parents'
// coordinates, so offspring of in-bounds parents never need correction.
package crossover

import (
	"math"
	"math/rand/v2"
	"sort"

	"github.com/copyleftdev/heuristics/internal/optimization"
)

// Operator produces one offspring from parents x and y.
type Operator interface {
	Crossover(x, y optimization.Point, rng *rand.Rand) (optimization.Point, error)
}

// DimensionValidator is implemented by operators that only work for some
// point lengths. Heuristics call it at construction time.
type DimensionValidator interface {
	ValidateDimension(n int) error
}

// Copy returns a copy of the first parent. It turns genetic optimization
// into a mutation-only search and serves as a baseline.
type Copy struct{}

// Crossover implements Operator.
func (Copy) Crossover(x, y optimization.Point, _ *rand.Rand) (optimization.Point, error) {
	if err := checkParents(x, y); err != nil {
		return optimization.Point{}, err
	}
	return x.Clone(), nil
}

// UniformMultipoint cuts the parents at k distinct positions drawn uniformly
// and alternates segments between them, starting with x. With k = 1 it is
// classic single-point crossover.
type UniformMultipoint struct {
	k int
}

// NewUniformMultipoint returns a k-point crossover.
func NewUniformMultipoint(k int) (*UniformMultipoint, error) {
	if k < 1 {
		return nil, optimization.NewConfigError("uniform multipoint", "number of cuts must be at least 1, got %d", k)
	}
	return &UniformMultipoint{k: k}, nil
}

// K returns the number of cuts.
func (u *UniformMultipoint) K() int { return u.k }

// ValidateDimension requires 1 <= k <= n-1.
func (u *UniformMultipoint) ValidateDimension(n int) error {
	if u.k > n-1 {
		return optimization.NewConfigError("uniform multipoint", "%d cuts do not fit %d coordinates (at most %d)", u.k, n, n-1)
	}
	return nil
}

// Crossover implements Operator.
func (u *UniformMultipoint) Crossover(x, y optimization.Point, rng *rand.Rand) (optimization.Point, error) {
	if err := checkParents(x, y); err != nil {
		return optimization.Point{}, err
	}
	n := x.Len()
	if err := u.ValidateDimension(n); err != nil {
		return optimization.Point{}, err
	}

	cuts := rng.Perm(n - 1)[:u.k]
	for i := range cuts {
		cuts[i]++
	}
	sort.Ints(cuts)

	out := x.Clone()
	fromY := false
	next := 0
	for i := 0; i < n; i++ {
		for next < len(cuts) && cuts[next] == i {
			fromY = !fromY
			next++
		}
		if fromY {
			out.X[i] = y.X[i]
		}
	}
	return out, nil
}

// RandomCombination draws every offspring coordinate independently: a
// uniform convex combination of the parents for reals, a fair pick between
// them for integers.
type RandomCombination struct{}

// Crossover implements Operator.
func (RandomCombination) Crossover(x, y optimization.Point, rng *rand.Rand) (optimization.Point, error) {
	if err := checkParents(x, y); err != nil {
		return optimization.Point{}, err
	}
	out := x.Clone()
	for i := range out.X {
		xi, yi := x.X[i], y.X[i]
		if x.IsInteger() {
			if rng.IntN(2) == 1 {
				out.X[i] = yi
			}
			continue
		}
		v := yi + rng.Float64()*(xi-yi)
		out.X[i] = math.Max(math.Min(xi, yi), math.Min(math.Max(xi, yi), v))
	}
	return out, nil
}

func checkParents(x, y optimization.Point) error {
	if x.Domain != y.Domain {
		return optimization.NewDomainError("crossover", "parents are %s and %s", x.Domain, y.Domain)
	}
	if x.Len() != y.Len() {
		return optimization.NewDomainError("crossover", "parents have %d and %d coordinates", x.Len(), y.Len())
	}
	return nil
}
