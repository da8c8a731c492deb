package plan

import (
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/copyleftdev/heuristics/internal/optimization"
	"github.com/copyleftdev/heuristics/internal/optimization/annealing"
	"github.com/copyleftdev/heuristics/internal/optimization/baseline"
	"github.com/copyleftdev/heuristics/internal/optimization/correction"
	"github.com/copyleftdev/heuristics/internal/optimization/crossover"
	"github.com/copyleftdev/heuristics/internal/optimization/genetic"
	"github.com/copyleftdev/heuristics/internal/optimization/mutation"
	"github.com/copyleftdev/heuristics/internal/optimization/objective"
	"github.com/copyleftdev/heuristics/internal/optimization/shootgo"
)

// NewRNG returns the random source a search seeded with seed runs on.
func NewRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// BuildObjective constructs the objective described by spec.
func BuildObjective(spec ObjectiveSpec) (optimization.Objective, error) {
	var (
		obj optimization.Objective
		err error
	)
	switch spec.Kind {
	case ObjectiveTSPGrid:
		obj, err = objective.NewTSPGrid(spec.A, spec.B)
	case ObjectiveDeJong1:
		step := spec.Step
		if step == 0 {
			step = objective.DefaultDeJongStep
		}
		obj, err = objective.NewDeJong1(spec.N, spec.Eps, step)
	default:
		err = optimization.NewConfigError("plan", "unknown objective %q", spec.Kind)
	}
	if err != nil {
		return nil, err
	}
	return obj, nil
}

// Build constructs the objective and a heuristic of p running on a random
// source seeded with seed. The plan's own Seed is not consulted so that
// callers can derive per-trial seeds.
func Build(p Plan, seed uint64, logger *zap.Logger) (optimization.Heuristic, optimization.Objective, error) {
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}
	obj, err := BuildObjective(p.Objective)
	if err != nil {
		return nil, nil, err
	}
	h, err := buildHeuristic(p.Heuristic, obj, seed, logger)
	if err != nil {
		return nil, nil, err
	}
	return h, obj, nil
}

func buildHeuristic(spec HeuristicSpec, obj optimization.Objective, seed uint64, logger *zap.Logger) (optimization.Heuristic, error) {
	rng := NewRNG(seed)
	switch spec.Kind {
	case HeuristicShootAndGo:
		return shootgo.New(obj, shootgo.Config{
			MaxEval:       spec.MaxEval,
			HMax:          spec.HMax,
			RandomDescent: spec.RandomDescent,
		}, rng, logger)

	case HeuristicAnnealing:
		mut, err := buildMutation(spec.Mutation, obj.Bounds())
		if err != nil {
			return nil, err
		}
		return annealing.New(obj, annealing.Config{
			MaxEval: spec.MaxEval,
			T0:      spec.T0,
			N0:      spec.N0,
			Alpha:   spec.Alpha,
		}, mut, rng, logger)

	case HeuristicGenetic:
		mut, err := buildMutation(spec.Mutation, obj.Bounds())
		if err != nil {
			return nil, err
		}
		cross, err := crossover.ByName(spec.Crossover.Kind, spec.Crossover.K)
		if err != nil {
			return nil, err
		}
		return genetic.New(obj, genetic.Config{
			MaxEval: spec.MaxEval,
			N:       spec.N,
			M:       spec.M,
			Tsel1:   spec.Tsel1,
			Tsel2:   spec.Tsel2,
		}, mut, cross, rng, logger)

	case HeuristicMayfly:
		return baseline.New(obj, baseline.Config{
			MaxEval:    spec.MaxEval,
			Population: spec.Population,
			Seed:       int64(seed),
		}, logger)

	default:
		return nil, optimization.NewConfigError("plan", "unknown heuristic %q", spec.Kind)
	}
}

func buildMutation(spec *MutationSpec, b optimization.Bounds) (mutation.Operator, error) {
	if spec == nil {
		return nil, optimization.NewConfigError("plan", "mutation is required")
	}
	corr, err := correction.ByName(spec.Correction, b)
	if err != nil {
		return nil, err
	}
	return mutation.NewCauchy(spec.R, corr)
}
