// Package subject defines the contract with the system under evaluation.
// The engine only ever sees the normalized Response shape; anything
// subject-specific lives behind the Client interface.
package subject

import "context"

// ToolCall is one tool invocation reported by the subject.
type ToolCall struct {
	Name   string         `json:"name"`
	Input  map[string]any `json:"input,omitempty"`
	Output map[string]any `json:"output,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// Response is the normalized subject output. Absent fields default to
// empty/neutral values at this boundary, not at every call site.
type Response struct {
	Answer       string         `json:"answer"`
	LatencyMS    float64        `json:"latency_ms,omitempty"`
	ToolCalls    []ToolCall     `json:"tool_calls"`
	SessionGraph map[string]any `json:"session_graph"`
}

// Normalize fills neutral defaults for absent collection fields.
func (r *Response) Normalize() {
	if r.ToolCalls == nil {
		r.ToolCalls = []ToolCall{}
	}
	if r.SessionGraph == nil {
		r.SessionGraph = map[string]any{}
	}
}

// Client is implemented per subject. RunQuery blocks for the duration of
// one subject invocation; callers needing bounded latency wrap the context.
// The request is an opaque JSON-serializable value, not necessarily an
// object.
type Client interface {
	SubjectID() string
	RunQuery(ctx context.Context, request any, callContext map[string]any) (*Response, error)
}
