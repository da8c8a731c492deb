package store

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/heuristics/internal/optimization"
	"github.com/copyleftdev/heuristics/internal/optimization/objective"
)

func sampleResult() *optimization.Result {
	return &optimization.Result{
		Algorithm:   "shoot_and_go",
		BestPoint:   optimization.IntPoint(0, 0, 2, 1, 0),
		BestValue:   6,
		Evaluations: 3,
		Iterations:  2,
		Reason:      optimization.ReasonOptimumFound,
		Trace: []optimization.TraceEntry{
			{Iteration: 0, Evaluations: 1, Value: 8, Best: 8},
			{Iteration: 1, Evaluations: 3, Value: 6, Best: 6, Temperature: 0.5, Accepted: true},
		},
	}
}

func TestTraceWriter_WriteRun(t *testing.T) {
	var buf bytes.Buffer
	tw := NewTraceWriter(&buf)
	require.NoError(t, tw.WriteRun(4, 14, sampleResult()))
	require.NoError(t, tw.Close())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.JSONEq(t, `{"kind":"trace","trial":4,"seed":14,"entry":{"iteration":0,"evaluations":1,"value":8,"best":8}}`, lines[0])

	records, err := ReadRecords(&buf)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, KindTrace, records[1].Kind)
	assert.Equal(t, 0.5, records[1].Entry.Temperature)
	assert.True(t, records[1].Entry.Accepted)

	last := records[2]
	assert.Equal(t, KindResult, last.Kind)
	require.NotNil(t, last.Result)
	assert.Equal(t, optimization.ReasonOptimumFound, last.Result.Reason)
	assert.Equal(t, 6.0, last.Result.BestValue)
	assert.Empty(t, last.Result.Trace)
}

func TestTraceWriter_RealResultKeepsDomain(t *testing.T) {
	dj, err := objective.NewDeJong1(2, 0.1, objective.DefaultDeJongStep)
	require.NoError(t, err)
	res := &optimization.Result{
		Algorithm:   "fast_simulated_annealing",
		BestPoint:   optimization.RealPoint(0, 0),
		Evaluations: 12,
		Reason:      optimization.ReasonOptimumFound,
	}

	var buf bytes.Buffer
	tw := NewTraceWriter(&buf)
	require.NoError(t, tw.WriteRun(0, 1, res))
	require.NoError(t, tw.Close())

	records, err := ReadRecords(&buf)
	require.NoError(t, err)
	require.Len(t, records, 1)
	best := records[0].Result.BestPoint
	assert.Equal(t, optimization.Real, best.Domain)
	assert.NoError(t, dj.Bounds().Check("reload", best))
	_, err = dj.Evaluate(best)
	assert.NoError(t, err)
}

func TestCreateTraceFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs", "trace.jsonl")
	tw, err := CreateTraceFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, tw.Path())

	res := sampleResult()
	require.NoError(t, tw.WriteRun(0, 1, res))
	require.NoError(t, tw.WriteRun(1, 2, res))
	require.NoError(t, tw.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := ReadRecords(f)
	require.NoError(t, err)
	assert.Len(t, records, 6)
	assert.Equal(t, 1, records[5].Trial)

	// the caller's result keeps its trace
	assert.Len(t, res.Trace, 2)
}

func TestReadRecords_Malformed(t *testing.T) {
	_, err := ReadRecords(strings.NewReader("{\"kind\":\"trace\"}\nnot json\n"))
	assert.ErrorContains(t, err, "record 2")
}
