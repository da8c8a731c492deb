package plan

import (
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/copyleftdev/heuristics/internal/optimization"
)

// Suite is a benchmark file: a list of plans sharing default trials and seed.
type Suite struct {
	Name   string `yaml:"name,omitempty"`
	Trials int    `yaml:"trials,omitempty"`
	Seed   uint64 `yaml:"seed,omitempty"`
	Plans  []Plan `yaml:"plans"`
}

// Parse decodes, normalizes and validates a JSON plan.
func Parse(data []byte) (Plan, error) {
	if !gjson.ValidBytes(data) {
		return Plan{}, optimization.NewConfigError("plan", "plan is not valid JSON")
	}
	p := FromJSON(gjson.ParseBytes(data))
	if err := p.Validate(); err != nil {
		return Plan{}, err
	}
	return p, nil
}

// FromJSON reads a normalized plan from an already parsed JSON object.
// It does not validate.
func FromJSON(r gjson.Result) Plan {
	obj := r.Get("objective")
	h := r.Get("heuristic")

	p := Plan{
		Name:   r.Get("name").String(),
		Seed:   r.Get("seed").Uint(),
		Trials: int(r.Get("trials").Int()),
		Objective: ObjectiveSpec{
			Kind: obj.Get("kind").String(),
			A:    int(obj.Get("a").Int()),
			B:    int(obj.Get("b").Int()),
			N:    int(obj.Get("n").Int()),
			Eps:  obj.Get("eps").Float(),
			Step: obj.Get("step").Float(),
		},
		Heuristic: HeuristicSpec{
			Kind:          h.Get("kind").String(),
			MaxEval:       int(h.Get("maxeval").Int()),
			HMax:          int(h.Get("hmax").Int()),
			RandomDescent: h.Get("random_descent").Bool(),
			T0:            h.Get("t0").Float(),
			N0:            h.Get("n0").Float(),
			Alpha:         h.Get("alpha").Float(),
			N:             int(h.Get("n").Int()),
			M:             int(h.Get("m").Int()),
			Tsel1:         h.Get("tsel1").Float(),
			Tsel2:         h.Get("tsel2").Float(),
			Population:    int(h.Get("population").Int()),
		},
	}
	if m := h.Get("mutation"); m.IsObject() {
		p.Heuristic.Mutation = &MutationSpec{
			R:          m.Get("r").Float(),
			Correction: m.Get("correction").String(),
		}
	}
	if c := h.Get("crossover"); c.IsObject() {
		p.Heuristic.Crossover = &CrossoverSpec{
			Kind: c.Get("kind").String(),
			K:    int(c.Get("k").Int()),
		}
	}
	p.Normalize()
	return p
}

// ParseYAML decodes, normalizes and validates a YAML plan.
func ParseYAML(data []byte) (Plan, error) {
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Plan{}, optimization.WrapError(err, "plan is not valid YAML").WithComponent("plan")
	}
	p.Normalize()
	if err := p.Validate(); err != nil {
		return Plan{}, err
	}
	return p, nil
}

// ParseSuiteYAML decodes a benchmark file. Plans without their own trials
// or seed inherit the suite's.
func ParseSuiteYAML(data []byte) (Suite, error) {
	var s Suite
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Suite{}, optimization.WrapError(err, "suite is not valid YAML").WithComponent("plan")
	}
	if len(s.Plans) == 0 {
		return Suite{}, optimization.NewConfigError("plan", "suite has no plans")
	}
	for i := range s.Plans {
		p := &s.Plans[i]
		if p.Trials == 0 {
			p.Trials = s.Trials
		}
		if p.Seed == 0 {
			p.Seed = s.Seed
		}
		p.Normalize()
		if err := p.Validate(); err != nil {
			return Suite{}, optimization.WrapError(err, "plan "+p.Label()).WithComponent("plan")
		}
	}
	return s, nil
}
