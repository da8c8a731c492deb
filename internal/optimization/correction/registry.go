package correction

import (
	"sort"
	"strings"

	"github.com/copyleftdev/heuristics/internal/optimization"
)

var constructors = map[string]func(optimization.Bounds) Strategy{
	"sticky":    NewSticky,
	"mirror":    NewMirror,
	"extension": NewExtension,
	"periodic":  NewPeriodic,
}

// Names lists the strategies accepted by ByName.
func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ByName builds the named strategy for b.
func ByName(name string, b optimization.Bounds) (Strategy, error) {
	ctor, ok := constructors[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, optimization.NewConfigError("correction", "unknown strategy %q (want one of %s)",
			name, strings.Join(Names(), ", "))
	}
	return ctor(b), nil
}
