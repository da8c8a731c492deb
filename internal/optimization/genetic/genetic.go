// Package genetic implements a generational genetic optimizer with
// rank-based exponential selection of parents and survivors.
package genetic

import (
	"math"
	"math/rand/v2"
	"sort"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat/sampleuv"

	"github.com/copyleftdev/heuristics/internal/optimization"
	"github.com/copyleftdev/heuristics/internal/optimization/crossover"
	"github.com/copyleftdev/heuristics/internal/optimization/mutation"
)

// Config holds the genetic optimizer parameters.
type Config struct {
	// MaxEval is the evaluation budget.
	MaxEval int
	// N is the population size.
	N int
	// M is the number of offspring per generation.
	M int
	// Tsel1 is the selection temperature for parents.
	Tsel1 float64
	// Tsel2 is the selection temperature for survivors.
	Tsel2 float64
}

// GO is a configured genetic optimizer.
type GO struct {
	obj       optimization.Objective
	cfg       Config
	mutation  mutation.Operator
	crossover crossover.Operator
	rng       *rand.Rand
	logger    *zap.Logger
}

var _ optimization.Heuristic = (*GO)(nil)

type member struct {
	x optimization.Point
	y float64
}

// New validates cfg and the operators against the objective dimension.
func New(obj optimization.Objective, cfg Config, mut mutation.Operator, cross crossover.Operator, rng *rand.Rand, logger *zap.Logger) (*GO, error) {
	const component = "genetic optimization"
	if err := optimization.CheckSetup(component, obj, cfg.MaxEval, rng); err != nil {
		return nil, err
	}
	switch {
	case cfg.N < 2:
		return nil, optimization.NewConfigError(component, "population size must be at least 2, got %d", cfg.N)
	case cfg.M < 1:
		return nil, optimization.NewConfigError(component, "offspring count must be at least 1, got %d", cfg.M)
	case !(cfg.Tsel1 > 0) || math.IsInf(cfg.Tsel1, 0):
		return nil, optimization.NewConfigError(component, "parent selection temperature must be positive, got %v", cfg.Tsel1)
	case !(cfg.Tsel2 > 0) || math.IsInf(cfg.Tsel2, 0):
		return nil, optimization.NewConfigError(component, "survivor selection temperature must be positive, got %v", cfg.Tsel2)
	case mut == nil:
		return nil, optimization.NewConfigError(component, "a mutation operator is required")
	case cross == nil:
		return nil, optimization.NewConfigError(component, "a crossover operator is required")
	}
	if v, ok := cross.(crossover.DimensionValidator); ok {
		if err := v.ValidateDimension(obj.Bounds().Dim()); err != nil {
			return nil, err
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GO{obj: obj, cfg: cfg, mutation: mut, crossover: cross, rng: rng, logger: logger}, nil
}

// Name implements optimization.Heuristic.
func (g *GO) Name() string { return "genetic_optimization" }

// RankWeights returns the selection weights exp(-r/(n*t)) of ranks 0..n-1.
func RankWeights(n int, t float64) []float64 {
	w := make([]float64, n)
	for r := range w {
		w[r] = math.Exp(-float64(r) / (float64(n) * t))
	}
	return w
}

// Search implements optimization.Heuristic. Each generation is one trace
// entry holding the best value of the surviving population.
func (g *GO) Search() (*optimization.Result, error) {
	g.logger.Info("search started",
		zap.String("algorithm", g.Name()),
		zap.Int("maxeval", g.cfg.MaxEval),
		zap.Int("n", g.cfg.N),
		zap.Int("m", g.cfg.M),
		zap.Float64("tsel1", g.cfg.Tsel1),
		zap.Float64("tsel2", g.cfg.Tsel2),
	)
	run := optimization.NewRun(g.Name(), g.obj, g.cfg.MaxEval, g.logger)

	pop := make([]member, 0, g.cfg.N)
	for len(pop) < g.cfg.N && !run.Done() {
		x := g.obj.GeneratePoint(g.rng)
		y, err := run.Evaluate(x)
		if err != nil {
			return nil, err
		}
		pop = append(pop, member{x: x, y: y})
	}
	sortMembers(pop)
	run.Record(pop[0].y)

	parentWeights := RankWeights(g.cfg.N, g.cfg.Tsel1)
	for !run.Done() {
		parents := sampleuv.NewWeighted(parentWeights, g.rng)
		offspring := make([]member, 0, g.cfg.M)
		for len(offspring) < g.cfg.M && !run.Done() {
			a := pickWithReplacement(parents, parentWeights)
			b := pickWithReplacement(parents, parentWeights)
			child, err := g.crossover.Crossover(pop[a].x, pop[b].x, g.rng)
			if err != nil {
				return nil, err
			}
			if child, err = g.mutation.Mutate(child, g.rng); err != nil {
				return nil, err
			}
			y, err := run.Evaluate(child)
			if err != nil {
				return nil, err
			}
			offspring = append(offspring, member{x: child, y: y})
		}

		joint := append(pop, offspring...)
		sortMembers(joint)
		pop = g.survivors(joint)
		run.Record(pop[0].y)
	}
	return run.Result(), nil
}

// survivors draws N distinct members of the ranked joint population. Ranks
// whose weight underflows are filled in rank order.
func (g *GO) survivors(joint []member) []member {
	weights := RankWeights(len(joint), g.cfg.Tsel2)
	sampler := sampleuv.NewWeighted(weights, g.rng)
	taken := make([]bool, len(joint))
	next := make([]member, 0, g.cfg.N)
	for len(next) < g.cfg.N {
		i, ok := sampler.Take()
		if !ok {
			break
		}
		taken[i] = true
		next = append(next, joint[i])
	}
	for i := 0; len(next) < g.cfg.N && i < len(joint); i++ {
		if !taken[i] {
			next = append(next, joint[i])
		}
	}
	sortMembers(next)
	return next
}

func pickWithReplacement(s sampleuv.Weighted, weights []float64) int {
	i, _ := s.Take()
	s.Reweight(i, weights[i])
	return i
}

func sortMembers(ms []member) {
	sort.SliceStable(ms, func(i, j int) bool { return ms[i].y < ms[j].y })
}
