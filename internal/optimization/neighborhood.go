package optimization

// ExpandNeighborhood applies unit up to distance times, breadth first, and
// returns every distinct point discovered except p itself. Points keep the
// order in which they were first discovered, so identical inputs always give
// identical output.
func ExpandNeighborhood(p Point, distance int, unit func(Point) []Point) []Point {
	if distance < 1 {
		return nil
	}
	seen := map[string]struct{}{p.Key(): {}}
	var out []Point
	frontier := []Point{p}
	for d := 0; d < distance && len(frontier) > 0; d++ {
		var next []Point
		for _, q := range frontier {
			for _, n := range unit(q) {
				k := n.Key()
				if _, ok := seen[k]; ok {
					continue
				}
				seen[k] = struct{}{}
				out = append(out, n)
				next = append(next, n)
			}
		}
		frontier = next
	}
	return out
}

// StepNeighbors returns the points that differ from p by +-step in exactly one
// coordinate, minus first, skipping moves that would leave b. Moves smaller
// than step are clipped to the bound.
func StepNeighbors(b Bounds, p Point, step float64) []Point {
	out := make([]Point, 0, 2*p.Len())
	for i, v := range p.X {
		if v > b.Lower.X[i] {
			q := p.Clone()
			q.X[i] = max(v-step, b.Lower.X[i])
			out = append(out, q)
		}
		if v < b.Upper.X[i] {
			q := p.Clone()
			q.X[i] = min(v+step, b.Upper.X[i])
			out = append(out, q)
		}
	}
	return out
}
