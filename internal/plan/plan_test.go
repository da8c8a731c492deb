package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/heuristics/internal/optimization"
)

const fsaJSON = `{
	"name": "fsa-tsp",
	"seed": 42,
	"trials": 5,
	"objective": {"kind": "TSP", "a": 3, "b": 2},
	"heuristic": {
		"kind": "annealing",
		"maxeval": 2000,
		"t0": 1, "n0": 10, "alpha": 0.5,
		"mutation": {"r": 1, "correction": "mirror"}
	}
}`

func TestParse(t *testing.T) {
	p, err := Parse([]byte(fsaJSON))
	require.NoError(t, err)

	assert.Equal(t, "fsa-tsp", p.Name)
	assert.Equal(t, uint64(42), p.Seed)
	assert.Equal(t, 5, p.Trials)
	assert.Equal(t, ObjectiveSpec{Kind: ObjectiveTSPGrid, A: 3, B: 2}, p.Objective)
	assert.Equal(t, HeuristicAnnealing, p.Heuristic.Kind)
	assert.Equal(t, 2000, p.Heuristic.MaxEval)
	assert.Equal(t, 0.5, p.Heuristic.Alpha)
	require.NotNil(t, p.Heuristic.Mutation)
	assert.Equal(t, MutationSpec{R: 1, Correction: "mirror"}, *p.Heuristic.Mutation)
	assert.Nil(t, p.Heuristic.Crossover)
}

func TestParse_Defaults(t *testing.T) {
	p, err := Parse([]byte(`{"objective":{"kind":"dejong","n":2,"eps":0.1},"heuristic":{"kind":"go","maxeval":10,"mutation":{"r":1},"crossover":{}}}`))
	require.NoError(t, err)
	assert.Equal(t, 1, p.Trials)
	assert.Equal(t, "sticky", p.Heuristic.Mutation.Correction)
	assert.Equal(t, "uniform", p.Heuristic.Crossover.Kind)
	assert.Equal(t, 1, p.Heuristic.Crossover.K)
	assert.Equal(t, 0.1, p.Objective.Step)
	assert.Equal(t, "go/dejong1", p.Label())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{"objective":`},
		{"no objective", `{"heuristic":{"kind":"sg","maxeval":10}}`},
		{"unknown objective", `{"objective":{"kind":"rastrigin"},"heuristic":{"kind":"sg","maxeval":10}}`},
		{"unknown heuristic", `{"objective":{"kind":"tsp","a":3,"b":2},"heuristic":{"kind":"pso","maxeval":10}}`},
		{"zero budget", `{"objective":{"kind":"tsp","a":3,"b":2},"heuristic":{"kind":"sg"}}`},
		{"fsa without mutation", `{"objective":{"kind":"tsp","a":3,"b":2},"heuristic":{"kind":"fsa","maxeval":10,"t0":1,"n0":1}}`},
		{"go without crossover", `{"objective":{"kind":"tsp","a":3,"b":2},"heuristic":{"kind":"go","maxeval":10,"mutation":{"r":1}}}`},
		{"negative trials", `{"trials":-2,"objective":{"kind":"tsp","a":3,"b":2},"heuristic":{"kind":"sg","maxeval":10}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.body))
			require.Error(t, err)
			assert.True(t, optimization.IsConfigError(err))
		})
	}
}

func TestParseYAML(t *testing.T) {
	doc := `
name: sg
seed: 7
objective:
  kind: tsp_grid
  a: 4
  b: 3
heuristic:
  kind: sg
  maxeval: 500
  hmax: 3
  random_descent: true
`
	p, err := ParseYAML([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, HeuristicShootAndGo, p.Heuristic.Kind)
	assert.Equal(t, 3, p.Heuristic.HMax)
	assert.True(t, p.Heuristic.RandomDescent)
	assert.Equal(t, 1, p.Trials)

	_, err = ParseYAML([]byte("objective: [unterminated"))
	assert.Error(t, err)
}

func TestParseSuiteYAML(t *testing.T) {
	doc := `
name: small
trials: 4
seed: 100
plans:
  - objective: {kind: tsp, a: 3, b: 2}
    heuristic: {kind: sg, maxeval: 200}
  - name: tuned
    trials: 2
    seed: 5
    objective: {kind: tsp, a: 3, b: 2}
    heuristic:
      kind: go
      maxeval: 300
      n: 10
      m: 10
      tsel1: 1
      tsel2: 0.5
      mutation: {r: 1, correction: periodic}
      crossover: {kind: uniform, k: 2}
`
	s, err := ParseSuiteYAML([]byte(doc))
	require.NoError(t, err)
	require.Len(t, s.Plans, 2)
	assert.Equal(t, 4, s.Plans[0].Trials)
	assert.Equal(t, uint64(100), s.Plans[0].Seed)
	assert.Equal(t, 2, s.Plans[1].Trials)
	assert.Equal(t, uint64(5), s.Plans[1].Seed)
	assert.Equal(t, 2, s.Plans[1].Heuristic.Crossover.K)

	_, err = ParseSuiteYAML([]byte("name: empty\n"))
	assert.True(t, optimization.IsConfigError(err))

	_, err = ParseSuiteYAML([]byte("plans:\n  - objective: {kind: tsp, a: 3, b: 2}\n    heuristic: {kind: nope, maxeval: 1}\n"))
	assert.True(t, optimization.IsConfigError(err))
}
