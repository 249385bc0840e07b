package engine

import "sort"

// VersionSummary aggregates the trace log for one subject version so runs
// before and after an applied changeset can be compared side by side.
type VersionSummary struct {
	VersionID    string   `json:"version_id"`
	NumTraces    int      `json:"num_traces"`
	EvalScoreAvg *float64 `json:"eval_score_avg"`
	EvalScoreP95 *float64 `json:"eval_score_p95"`
	LatencyMSP95 *float64 `json:"latency_ms_p95"`
	ToolCalls    int      `json:"tool_calls"`
}

// SummarizeTraces groups trace entries by version_id and aggregates judge
// scores, latencies and tool-call counts per version. Entries lacking a
// version_id are grouped under "unknown". Versions come back in ascending
// order so successive runs line up for comparison.
func SummarizeTraces(entries []map[string]any) []VersionSummary {
	type bucket struct {
		scores    []float64
		latencies []float64
		toolCalls int
		count     int
	}
	buckets := map[string]*bucket{}
	for _, e := range entries {
		version, _ := e["version_id"].(string)
		if version == "" {
			version = "unknown"
		}
		b := buckets[version]
		if b == nil {
			b = &bucket{}
			buckets[version] = b
		}
		b.count++
		if score, ok := e["eval_score"].(float64); ok {
			b.scores = append(b.scores, score)
		}
		if latency, ok := e["latency_ms"].(float64); ok && latency > 0 {
			b.latencies = append(b.latencies, latency)
		}
		if calls, ok := e["tool_calls"].([]any); ok {
			b.toolCalls += len(calls)
		}
	}

	versions := make([]string, 0, len(buckets))
	for v := range buckets {
		versions = append(versions, v)
	}
	sort.Strings(versions)

	summaries := make([]VersionSummary, 0, len(versions))
	for _, v := range versions {
		b := buckets[v]
		summaries = append(summaries, VersionSummary{
			VersionID:    v,
			NumTraces:    b.count,
			EvalScoreAvg: meanPtr(b.scores),
			EvalScoreP95: p95Ptr(b.scores),
			LatencyMSP95: p95Ptr(b.latencies),
			ToolCalls:    b.toolCalls,
		})
	}
	return summaries
}
