package store

import "github.com/rs/zerolog"

// TraceStore is the per-invocation evaluation trace log. Each entry is a
// flattened projection of one eval case, tagged with a generated "trace_id".
type TraceStore struct {
	*Store
}

// NewTraceStore creates a trace store at path.
func NewTraceStore(path string, logger zerolog.Logger) *TraceStore {
	return &TraceStore{Store: New(path, "trace_id", logger)}
}

// LogTrace appends one trace event, normalizing the tool_calls and
// session_graph fields so every entry carries them in a uniform shape.
func (t *TraceStore) LogTrace(event map[string]any) (string, error) {
	out := make(map[string]any, len(event)+2)
	for k, v := range event {
		out[k] = v
	}
	if _, ok := out["tool_calls"]; !ok || out["tool_calls"] == nil {
		out["tool_calls"] = []any{}
	}
	if _, ok := out["session_graph"]; !ok || out["session_graph"] == nil {
		out["session_graph"] = map[string]any{}
	}
	return t.Append(out)
}
