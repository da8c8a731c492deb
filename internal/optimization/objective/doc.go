// Package objective holds the concrete problem instances used to exercise
// the heuristics: a travelling salesman tour over a rectangular grid, encoded
// as a bounded integer vector, and the De Jong 1 sphere over the reals.
package objective
