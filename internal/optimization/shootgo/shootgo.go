// Package shootgo implements Shoot-and-Go: random restarts, each optionally
// refined by a bounded steepest descent over the objective's neighborhood.
package shootgo

import (
	"math"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/copyleftdev/heuristics/internal/optimization"
)

// Unlimited lets the descent run until no neighbor improves.
const Unlimited = math.MaxInt

// Config holds the Shoot-and-Go parameters.
type Config struct {
	// MaxEval is the evaluation budget.
	MaxEval int
	// HMax is the maximum number of descent steps after each restart.
	// Zero turns the search into pure random shooting.
	HMax int
	// RandomDescent shuffles each neighborhood and moves to the first
	// improving neighbor instead of the best one.
	RandomDescent bool
}

// ShootAndGo is a configured Shoot-and-Go search.
type ShootAndGo struct {
	obj    optimization.Objective
	cfg    Config
	rng    *rand.Rand
	logger *zap.Logger
}

var _ optimization.Heuristic = (*ShootAndGo)(nil)

// New validates cfg and returns the search. A nil logger disables logging.
func New(obj optimization.Objective, cfg Config, rng *rand.Rand, logger *zap.Logger) (*ShootAndGo, error) {
	if err := optimization.CheckSetup("shoot and go", obj, cfg.MaxEval, rng); err != nil {
		return nil, err
	}
	if cfg.HMax < 0 {
		return nil, optimization.NewConfigError("shoot and go", "descent depth hmax must not be negative, got %d", cfg.HMax)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShootAndGo{obj: obj, cfg: cfg, rng: rng, logger: logger}, nil
}

// Name implements optimization.Heuristic.
func (s *ShootAndGo) Name() string { return "shoot_and_go" }

// Search implements optimization.Heuristic. Every restart is one iteration
// of the trace; its value is the point the descent settled on.
func (s *ShootAndGo) Search() (*optimization.Result, error) {
	s.logger.Info("search started",
		zap.String("algorithm", s.Name()),
		zap.Int("maxeval", s.cfg.MaxEval),
		zap.Int("hmax", s.cfg.HMax),
		zap.Bool("random_descent", s.cfg.RandomDescent),
	)
	run := optimization.NewRun(s.Name(), s.obj, s.cfg.MaxEval, s.logger)
	for !run.Done() {
		x := s.obj.GeneratePoint(s.rng)
		y, err := run.Evaluate(x)
		if err != nil {
			return nil, err
		}
		if s.cfg.HMax > 0 && !run.Done() {
			if _, y, err = s.descend(run, x, y); err != nil {
				return nil, err
			}
		}
		run.Record(y)
	}
	return run.Result(), nil
}

// descend moves from x to its best neighbor while that neighbor improves on
// the current value, for at most HMax steps.
func (s *ShootAndGo) descend(run *optimization.Run, x optimization.Point, y float64) (optimization.Point, float64, error) {
	for h := 0; h < s.cfg.HMax && !run.Done(); h++ {
		neighbors, err := s.obj.Neighborhood(x, 1)
		if err != nil {
			return x, y, err
		}
		if s.cfg.RandomDescent {
			s.rng.Shuffle(len(neighbors), func(i, j int) {
				neighbors[i], neighbors[j] = neighbors[j], neighbors[i]
			})
		}

		bestX, bestY := x, y
		for _, n := range neighbors {
			yn, err := run.Evaluate(n)
			if err != nil {
				return x, y, err
			}
			if yn < bestY {
				bestX, bestY = n, yn
				if s.cfg.RandomDescent {
					break
				}
			}
			if run.Done() {
				break
			}
		}
		if bestY >= y {
			break
		}
		x, y = bestX, bestY
	}
	return x, y, nil
}
