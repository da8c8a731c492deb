package objective

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/copyleftdev/heuristics/internal/optimization"
)

// TSPGrid is a travelling salesman instance whose n = A*B cities sit on a
// rectangular A x B grid with unit spacing; city i is at (i mod A, i div A).
//
// A tour is encoded as an integer vector x of length n-1 with
// 0 <= x[i] <= n-2-i. Decoding starts at city 0 and, for every coordinate,
// visits the x[i]-th city (by increasing label) among those still unvisited.
// The (n-1)! encodings map one to one onto the tours anchored at city 0.
type TSPGrid struct {
	a, b   int
	n      int
	bounds optimization.Bounds
	cities [][]float64
	dist   *mat.SymDense
	fstar  float64
}

var _ optimization.Objective = (*TSPGrid)(nil)
var _ optimization.Decoder = (*TSPGrid)(nil)

// NewTSPGrid builds the A x B grid instance. Both dimensions must be at least 2.
func NewTSPGrid(a, b int) (*TSPGrid, error) {
	if a < 2 || b < 2 {
		return nil, optimization.NewConfigError("tsp", "grid dimensions must be at least 2, got %dx%d", a, b)
	}
	n := a * b

	lower := make([]int, n-1)
	upper := make([]int, n-1)
	for i := range upper {
		upper[i] = n - 2 - i
	}
	bounds, err := optimization.NewBounds(optimization.IntPoint(lower...), optimization.IntPoint(upper...))
	if err != nil {
		return nil, err
	}

	cities := make([][]float64, n)
	for i := range cities {
		cities[i] = []float64{float64(i % a), float64(i / a)}
	}
	dist := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dist.SetSym(i, j, floats.Distance(cities[i], cities[j], 2))
		}
	}

	fstar := float64(n)
	if n%2 == 1 {
		fstar += math.Sqrt2 - 1
	}

	return &TSPGrid{
		a:      a,
		b:      b,
		n:      n,
		bounds: bounds,
		cities: cities,
		dist:   dist,
		fstar:  fstar,
	}, nil
}

// Cities returns the number of cities.
func (t *TSPGrid) Cities() int { return t.n }

// City returns the grid coordinates of city i.
func (t *TSPGrid) City(i int) (x, y float64) {
	return t.cities[i][0], t.cities[i][1]
}

// Bounds implements optimization.Objective.
func (t *TSPGrid) Bounds() optimization.Bounds { return t.bounds }

// FStar returns the optimal tour length. An even number of cities admits a
// tour of unit edges only (length A*B); an odd grid needs one diagonal
// (A*B + sqrt(2) - 1).
func (t *TSPGrid) FStar() (float64, bool) { return t.fstar, true }

// GeneratePoint implements optimization.Objective.
func (t *TSPGrid) GeneratePoint(rng *rand.Rand) optimization.Point {
	return optimization.RandomPoint(t.bounds, rng)
}

// Decode returns the tour encoded by p as a []int.
func (t *TSPGrid) Decode(p optimization.Point) (interface{}, error) {
	return t.Tour(p)
}

// Tour decodes p into the sequence of visited cities, starting with city 0.
// The closing edge back to city 0 is implied.
func (t *TSPGrid) Tour(p optimization.Point) ([]int, error) {
	if err := t.bounds.CheckWithin("tsp decode", p); err != nil {
		return nil, err
	}
	unvisited := make([]int, t.n-1)
	for i := range unvisited {
		unvisited[i] = i + 1
	}
	tour := make([]int, 1, t.n)
	for _, v := range p.X {
		k := int(v)
		tour = append(tour, unvisited[k])
		unvisited = append(unvisited[:k], unvisited[k+1:]...)
	}
	return tour, nil
}

// Encode is the inverse of Tour. The tour must be a permutation of all
// cities that starts with city 0.
func (t *TSPGrid) Encode(tour []int) (optimization.Point, error) {
	if len(tour) != t.n {
		return optimization.Point{}, optimization.NewDomainError("tsp encode", "tour visits %d cities, grid has %d", len(tour), t.n)
	}
	if tour[0] != 0 {
		return optimization.Point{}, optimization.NewDomainError("tsp encode", "tour starts at city %d instead of 0", tour[0])
	}
	unvisited := make([]int, t.n-1)
	for i := range unvisited {
		unvisited[i] = i + 1
	}
	code := make([]int, 0, t.n-1)
	for _, c := range tour[1:] {
		k := indexOf(unvisited, c)
		if k < 0 {
			return optimization.Point{}, optimization.NewDomainError("tsp encode", "city %d is repeated or unknown", c)
		}
		code = append(code, k)
		unvisited = append(unvisited[:k], unvisited[k+1:]...)
	}
	return optimization.IntPoint(code...), nil
}

// Length returns the length of the closed tour.
func (t *TSPGrid) Length(tour []int) float64 {
	total := 0.0
	for i := range tour {
		total += t.dist.At(tour[i], tour[(i+1)%len(tour)])
	}
	return total
}

// Evaluate returns the length of the closed tour encoded by p.
func (t *TSPGrid) Evaluate(p optimization.Point) (float64, error) {
	tour, err := t.Tour(p)
	if err != nil {
		return math.Inf(1), err
	}
	return t.Length(tour), nil
}

// Neighborhood returns the encodings that differ from p by one in a single
// coordinate, repeated up to distance times. Moves past a bound are dropped.
func (t *TSPGrid) Neighborhood(p optimization.Point, distance int) ([]optimization.Point, error) {
	if err := t.bounds.CheckWithin("tsp neighborhood", p); err != nil {
		return nil, err
	}
	return optimization.ExpandNeighborhood(p, distance, func(q optimization.Point) []optimization.Point {
		return optimization.StepNeighbors(t.bounds, q, 1)
	}), nil
}

func indexOf(xs []int, v int) int {
	for i, x := range xs {
		if x == v {
			return i
		}
	}
	return -1
}
