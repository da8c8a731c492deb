package optimization

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Domain tells whether the coordinates of a point are integers or reals.
type Domain uint8

const (
	// Real points hold arbitrary float64 coordinates.
	Real Domain = iota
	// Integer points hold whole-number coordinates.
	Integer
)

// String returns the domain name.
func (d Domain) String() string {
	switch d {
	case Real:
		return "real"
	case Integer:
		return "integer"
	default:
		return fmt.Sprintf("domain(%d)", uint8(d))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (d Domain) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Domain) UnmarshalText(text []byte) error {
	switch string(text) {
	case "real":
		*d = Real
	case "integer":
		*d = Integer
	default:
		return fmt.Errorf("unknown domain %q", text)
	}
	return nil
}

// Point is an encoded candidate solution. Integer points store their
// coordinates as whole float64 values so that every operator shares one
// representation.
type Point struct {
	Domain Domain
	X      []float64
}

// IntPoint builds an integer point.
func IntPoint(xs ...int) Point {
	p := Point{Domain: Integer, X: make([]float64, len(xs))}
	for i, v := range xs {
		p.X[i] = float64(v)
	}
	return p
}

// RealPoint builds a real point. The slice is copied.
func RealPoint(xs ...float64) Point {
	return Point{Domain: Real, X: append([]float64(nil), xs...)}
}

// Len returns the number of coordinates.
func (p Point) Len() int { return len(p.X) }

// IsInteger reports whether p belongs to the integer domain.
func (p Point) IsInteger() bool { return p.Domain == Integer }

// Clone returns a deep copy of p.
func (p Point) Clone() Point {
	return Point{Domain: p.Domain, X: append([]float64(nil), p.X...)}
}

// Ints returns the coordinates as ints. It is meaningful for integer points only.
func (p Point) Ints() []int {
	out := make([]int, len(p.X))
	for i, v := range p.X {
		out[i] = int(v)
	}
	return out
}

// Equal reports whether p and q have the same domain and coordinates.
func (p Point) Equal(q Point) bool {
	if p.Domain != q.Domain || len(p.X) != len(q.X) {
		return false
	}
	for i := range p.X {
		if p.X[i] != q.X[i] {
			return false
		}
	}
	return true
}

// Key returns a string usable as a map key for deduplication.
func (p Point) Key() string {
	var b strings.Builder
	b.WriteString(p.Domain.String())
	for _, v := range p.X {
		b.WriteByte(':')
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	return b.String()
}

// String formats p like a vector literal.
func (p Point) String() string {
	parts := make([]string, len(p.X))
	for i, v := range p.X {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// MarshalJSON encodes p as a plain array of numbers.
func (p Point) MarshalJSON() ([]byte, error) {
	if p.X == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(p.X)
}

// UnmarshalJSON decodes a plain array of numbers. The array carries no
// domain, so a point whose coordinates are all whole is read as Integer.
// Containers that know the domain, such as Result, restore it after decoding.
func (p *Point) UnmarshalJSON(data []byte) error {
	var xs []float64
	if err := json.Unmarshal(data, &xs); err != nil {
		return err
	}
	p.X = xs
	p.Domain = Integer
	for _, v := range xs {
		if !isWhole(v) {
			p.Domain = Real
			break
		}
	}
	return nil
}

// Bounds holds the componentwise lower and upper limits of a search space.
type Bounds struct {
	Lower Point
	Upper Point
}

// NewBounds validates and returns bounds. Both points must share length and
// domain and satisfy lower[i] <= upper[i].
func NewBounds(lower, upper Point) (Bounds, error) {
	if lower.Domain != upper.Domain {
		return Bounds{}, NewConfigError("bounds", "lower is %s but upper is %s", lower.Domain, upper.Domain)
	}
	if lower.Len() != upper.Len() {
		return Bounds{}, NewConfigError("bounds", "lower has %d coordinates but upper has %d", lower.Len(), upper.Len())
	}
	if lower.Len() == 0 {
		return Bounds{}, NewConfigError("bounds", "bounds must have at least one coordinate")
	}
	for i := range lower.X {
		if math.IsNaN(lower.X[i]) || math.IsNaN(upper.X[i]) || lower.X[i] > upper.X[i] {
			return Bounds{}, NewConfigError("bounds", "coordinate %d: lower %v exceeds upper %v", i, lower.X[i], upper.X[i])
		}
		if lower.Domain == Integer && (!isWhole(lower.X[i]) || !isWhole(upper.X[i])) {
			return Bounds{}, NewConfigError("bounds", "coordinate %d: integer bounds must be whole numbers", i)
		}
	}
	return Bounds{Lower: lower.Clone(), Upper: upper.Clone()}, nil
}

// Dim returns the dimension of the search space.
func (b Bounds) Dim() int { return b.Lower.Len() }

// Domain returns the domain shared by every point of the space.
func (b Bounds) Domain() Domain { return b.Lower.Domain }

// Width returns upper[i] - lower[i].
func (b Bounds) Width(i int) float64 { return b.Upper.X[i] - b.Lower.X[i] }

// Check returns a domain error when p does not have the length and domain of b.
func (b Bounds) Check(op string, p Point) error {
	if p.Domain != b.Domain() {
		return NewDomainError(op, "point is %s, bounds are %s", p.Domain, b.Domain())
	}
	if p.Len() != b.Dim() {
		return NewDomainError(op, "point has %d coordinates, bounds have %d", p.Len(), b.Dim())
	}
	if p.Domain == Integer {
		for i, v := range p.X {
			if !isWhole(v) {
				return NewDomainError(op, "coordinate %d of integer point is %v", i, v)
			}
		}
	}
	return nil
}

// Contains reports whether every coordinate of p lies within b.
// It assumes p already passed Check.
func (b Bounds) Contains(p Point) bool {
	for i, v := range p.X {
		if v < b.Lower.X[i] || v > b.Upper.X[i] {
			return false
		}
	}
	return true
}

// CheckWithin is Check followed by a containment test.
func (b Bounds) CheckWithin(op string, p Point) error {
	if err := b.Check(op, p); err != nil {
		return err
	}
	if !b.Contains(p) {
		return NewDomainError(op, "point %s lies outside bounds [%s, %s]", p, b.Lower, b.Upper)
	}
	return nil
}

func isWhole(v float64) bool {
	return !math.IsInf(v, 0) && v == math.Trunc(v)
}
