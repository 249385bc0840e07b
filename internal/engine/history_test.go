package engine_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"agentops/internal/engine"
)

func TestSummarizeTracesGroupsByVersion(t *testing.T) {
	entries := []map[string]any{
		{"version_id": "v1", "eval_score": 3.0, "latency_ms": 100.0, "tool_calls": []any{"a", "b"}},
		{"version_id": "v1", "eval_score": 5.0, "latency_ms": 200.0, "tool_calls": []any{}},
		{"version_id": "v2", "eval_score": 4.0, "latency_ms": 150.0, "tool_calls": []any{"a"}},
	}
	summaries := engine.SummarizeTraces(entries)
	require.Len(t, summaries, 2)

	v1 := summaries[0]
	require.Equal(t, "v1", v1.VersionID)
	require.Equal(t, 2, v1.NumTraces)
	require.Equal(t, 4.0, *v1.EvalScoreAvg)
	require.Equal(t, 3.0, *v1.EvalScoreP95)
	require.Equal(t, 100.0, *v1.LatencyMSP95)
	require.Equal(t, 2, v1.ToolCalls)

	v2 := summaries[1]
	require.Equal(t, "v2", v2.VersionID)
	require.Equal(t, 1, v2.NumTraces)
	require.Equal(t, 4.0, *v2.EvalScoreAvg)
	require.Equal(t, 1, v2.ToolCalls)
}

func TestSummarizeTracesMissingFields(t *testing.T) {
	entries := []map[string]any{
		{"eval_score": 2.0},
		{"version_id": "v1"},
	}
	summaries := engine.SummarizeTraces(entries)
	require.Len(t, summaries, 2)

	// Ascending sort puts "unknown" ahead of "v1".
	unknown := summaries[0]
	require.Equal(t, "unknown", unknown.VersionID, "entries without a version group under unknown")
	require.Equal(t, 2.0, *unknown.EvalScoreAvg)

	v1 := summaries[1]
	require.Equal(t, "v1", v1.VersionID)
	require.Nil(t, v1.EvalScoreAvg, "no scores means nil aggregate")
	require.Nil(t, v1.LatencyMSP95)
	require.Zero(t, v1.ToolCalls)
}

func TestSummarizeTracesEmpty(t *testing.T) {
	require.Empty(t, engine.SummarizeTraces(nil))
}
