// Package plan describes a search declaratively: which objective, which
// heuristic with which parameters, how many trials and which seed. Plans are
// read from JSON request bodies or YAML benchmark files and turned into
// ready-to-run heuristics by Build.
package plan

import (
	"strings"

	"github.com/copyleftdev/heuristics/internal/optimization"
	"github.com/copyleftdev/heuristics/internal/optimization/objective"
)

// Objective kinds.
const (
	ObjectiveTSPGrid = "tsp_grid"
	ObjectiveDeJong1 = "dejong1"
)

// Heuristic kinds.
const (
	HeuristicShootAndGo = "shoot_and_go"
	HeuristicAnnealing  = "fsa"
	HeuristicGenetic    = "go"
	HeuristicMayfly     = "mayfly"
)

var objectiveAliases = map[string]string{
	"tsp_grid": ObjectiveTSPGrid,
	"tsp":      ObjectiveTSPGrid,
	"tspgrid":  ObjectiveTSPGrid,
	"dejong1":  ObjectiveDeJong1,
	"dejong":   ObjectiveDeJong1,
}

var heuristicAliases = map[string]string{
	"shoot_and_go":             HeuristicShootAndGo,
	"sg":                       HeuristicShootAndGo,
	"fsa":                      HeuristicAnnealing,
	"annealing":                HeuristicAnnealing,
	"fast_simulated_annealing": HeuristicAnnealing,
	"go":                       HeuristicGenetic,
	"genetic":                  HeuristicGenetic,
	"genetic_optimization":     HeuristicGenetic,
	"mayfly":                   HeuristicMayfly,
}

// Plan is one search configuration.
type Plan struct {
	Name      string        `json:"name,omitempty" yaml:"name,omitempty"`
	Seed      uint64        `json:"seed" yaml:"seed"`
	Trials    int           `json:"trials,omitempty" yaml:"trials,omitempty"`
	Objective ObjectiveSpec `json:"objective" yaml:"objective"`
	Heuristic HeuristicSpec `json:"heuristic" yaml:"heuristic"`
}

// ObjectiveSpec selects and parameterizes an objective.
type ObjectiveSpec struct {
	Kind string `json:"kind" yaml:"kind"`
	// A and B are the grid dimensions of tsp_grid.
	A int `json:"a,omitempty" yaml:"a,omitempty"`
	B int `json:"b,omitempty" yaml:"b,omitempty"`
	// N, Eps and Step parameterize dejong1: dimension, success tolerance
	// and neighborhood step.
	N    int     `json:"n,omitempty" yaml:"n,omitempty"`
	Eps  float64 `json:"eps,omitempty" yaml:"eps,omitempty"`
	Step float64 `json:"step,omitempty" yaml:"step,omitempty"`
}

// HeuristicSpec selects and parameterizes a heuristic. Fields that do not
// apply to Kind are ignored.
type HeuristicSpec struct {
	Kind    string `json:"kind" yaml:"kind"`
	MaxEval int    `json:"maxeval" yaml:"maxeval"`

	HMax          int  `json:"hmax,omitempty" yaml:"hmax,omitempty"`
	RandomDescent bool `json:"random_descent,omitempty" yaml:"random_descent,omitempty"`

	T0    float64 `json:"t0,omitempty" yaml:"t0,omitempty"`
	N0    float64 `json:"n0,omitempty" yaml:"n0,omitempty"`
	Alpha float64 `json:"alpha,omitempty" yaml:"alpha,omitempty"`

	N     int     `json:"n,omitempty" yaml:"n,omitempty"`
	M     int     `json:"m,omitempty" yaml:"m,omitempty"`
	Tsel1 float64 `json:"tsel1,omitempty" yaml:"tsel1,omitempty"`
	Tsel2 float64 `json:"tsel2,omitempty" yaml:"tsel2,omitempty"`

	Population int `json:"population,omitempty" yaml:"population,omitempty"`

	Mutation  *MutationSpec  `json:"mutation,omitempty" yaml:"mutation,omitempty"`
	Crossover *CrossoverSpec `json:"crossover,omitempty" yaml:"crossover,omitempty"`
}

// MutationSpec parameterizes the Cauchy mutation.
type MutationSpec struct {
	R          float64 `json:"r" yaml:"r"`
	Correction string  `json:"correction" yaml:"correction"`
}

// CrossoverSpec selects a crossover operator.
type CrossoverSpec struct {
	Kind string `json:"kind" yaml:"kind"`
	K    int    `json:"k,omitempty" yaml:"k,omitempty"`
}

// Normalize resolves kind aliases and fills defaults in place.
func (p *Plan) Normalize() {
	p.Objective.Kind = resolve(objectiveAliases, p.Objective.Kind)
	p.Heuristic.Kind = resolve(heuristicAliases, p.Heuristic.Kind)
	if p.Trials == 0 {
		p.Trials = 1
	}
	if p.Objective.Kind == ObjectiveDeJong1 && p.Objective.Step == 0 {
		p.Objective.Step = objective.DefaultDeJongStep
	}
	if c := p.Heuristic.Crossover; c != nil {
		if c.Kind == "" {
			c.Kind = "uniform"
		}
		if c.K == 0 {
			c.K = 1
		}
	}
	if m := p.Heuristic.Mutation; m != nil && m.Correction == "" {
		m.Correction = "sticky"
	}
}

// Validate checks the structure of the plan. Parameter ranges are checked by
// the constructors Build calls.
func (p *Plan) Validate() error {
	switch p.Objective.Kind {
	case ObjectiveTSPGrid, ObjectiveDeJong1:
	case "":
		return optimization.NewConfigError("plan", "objective kind is required")
	default:
		return optimization.NewConfigError("plan", "unknown objective %q", p.Objective.Kind)
	}

	h := p.Heuristic
	switch h.Kind {
	case HeuristicShootAndGo, HeuristicMayfly:
	case HeuristicAnnealing:
		if h.Mutation == nil {
			return optimization.NewConfigError("plan", "%s requires a mutation", h.Kind)
		}
	case HeuristicGenetic:
		if h.Mutation == nil || h.Crossover == nil {
			return optimization.NewConfigError("plan", "%s requires a mutation and a crossover", h.Kind)
		}
	case "":
		return optimization.NewConfigError("plan", "heuristic kind is required")
	default:
		return optimization.NewConfigError("plan", "unknown heuristic %q", h.Kind)
	}

	if h.MaxEval < 1 {
		return optimization.NewConfigError("plan", "maxeval must be at least 1, got %d", h.MaxEval)
	}
	if p.Trials < 1 {
		return optimization.NewConfigError("plan", "trials must be at least 1, got %d", p.Trials)
	}
	return nil
}

// Label names the plan in reports.
func (p *Plan) Label() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Heuristic.Kind + "/" + p.Objective.Kind
}

func resolve(aliases map[string]string, kind string) string {
	k := strings.ToLower(strings.TrimSpace(kind))
	if canonical, ok := aliases[k]; ok {
		return canonical
	}
	return k
}
