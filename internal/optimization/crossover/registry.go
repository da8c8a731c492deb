package crossover

import (
	"strings"

	"github.com/copyleftdev/heuristics/internal/optimization"
)

// ByName builds a crossover operator: "copy", "uniform" (k cuts) or "random".
func ByName(name string, k int) (Operator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "copy", "identity":
		return Copy{}, nil
	case "uniform", "multipoint", "uniform_multipoint":
		u, err := NewUniformMultipoint(k)
		if err != nil {
			return nil, err
		}
		return u, nil
	case "random", "random_combination":
		return RandomCombination{}, nil
	default:
		return nil, optimization.NewConfigError("crossover", "unknown operator %q (want copy, uniform or random)", name)
	}
}
