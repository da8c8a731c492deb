// Package correction repairs points that fell outside the bounds of an
// objective, typically after a mutation step.
package correction

import (
	"math"

	"github.com/copyleftdev/heuristics/internal/optimization"
)

// Strategy maps any point of the right length and domain into the bounds it
// was built for. Points already in bounds are returned unchanged.
type Strategy interface {
	Correct(p optimization.Point) (optimization.Point, error)
}

// coordinateFunc repairs one out-of-range coordinate v of [lo, hi].
// It is never called with lo == hi or with a non-finite v.
type coordinateFunc func(v, lo, hi float64, integer bool) float64

type strategy struct {
	name   string
	bounds optimization.Bounds
	fix    coordinateFunc
}

func (s *strategy) Correct(p optimization.Point) (optimization.Point, error) {
	if err := s.bounds.Check(s.name+" correct", p); err != nil {
		return optimization.Point{}, err
	}
	out := p.Clone()
	integer := p.IsInteger()
	for i, v := range out.X {
		lo, hi := s.bounds.Lower.X[i], s.bounds.Upper.X[i]
		switch {
		case v >= lo && v <= hi:
			continue
		case lo == hi || math.IsNaN(v) || math.IsInf(v, -1):
			out.X[i] = lo
		case math.IsInf(v, 1):
			out.X[i] = hi
		default:
			out.X[i] = clamp(s.fix(v, lo, hi, integer), lo, hi)
		}
	}
	return out, nil
}

// NewSticky clamps every out-of-range coordinate to the violated bound.
func NewSticky(b optimization.Bounds) Strategy {
	return &strategy{name: "sticky", bounds: b, fix: func(v, lo, hi float64, _ bool) float64 {
		return v
	}}
}

// NewMirror reflects out-of-range coordinates off the bounds until they fall
// in range, which is a fold of v modulo twice the range width.
func NewMirror(b optimization.Bounds) Strategy {
	return &strategy{name: "mirror", bounds: b, fix: mirror}
}

// NewExtension folds an out-of-range coordinate back across the violated
// bound at half its overshoot, repeating until it lands in range. Points
// near a bound therefore stay near it instead of piling up on it.
func NewExtension(b optimization.Bounds) Strategy {
	return &strategy{name: "extension", bounds: b, fix: extension}
}

// NewPeriodic wraps out-of-range coordinates around the bounds as if the
// range were a circle: modulo b-a+1 for integers, b-a for reals.
func NewPeriodic(b optimization.Bounds) Strategy {
	return &strategy{name: "periodic", bounds: b, fix: periodic}
}

func mirror(v, lo, hi float64, _ bool) float64 {
	w := hi - lo
	de := positiveMod(v-lo, 2*w)
	de = math.Min(de, 2*w-de)
	return lo + de
}

func extension(v, lo, hi float64, integer bool) float64 {
	half := func(d float64) float64 {
		if integer {
			return math.Floor(d / 2)
		}
		return d / 2
	}
	for v < lo || v > hi {
		if v > hi {
			v = hi - half(v-hi)
		} else {
			v = lo + half(lo-v)
		}
	}
	return v
}

func periodic(v, lo, hi float64, integer bool) float64 {
	w := hi - lo
	if integer {
		w++
	}
	return lo + positiveMod(v-lo, w)
}

func positiveMod(x, m float64) float64 {
	r := math.Mod(x, m)
	if r < 0 {
		r += m
	}
	return r
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
