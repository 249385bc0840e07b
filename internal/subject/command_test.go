package subject_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"agentops/internal/subject"
)

func newClient(t *testing.T, command string) *subject.CommandClient {
	t.Helper()
	c, err := subject.NewCommandClient(subject.CommandClientConfig{
		SubjectID: "support-bot",
		Command:   command,
		Logger:    zerolog.Nop(),
	})
	require.NoError(t, err)
	return c
}

func TestNewCommandClientValidation(t *testing.T) {
	_, err := subject.NewCommandClient(subject.CommandClientConfig{SubjectID: "x", Command: "   "})
	require.Error(t, err)

	_, err = subject.NewCommandClient(subject.CommandClientConfig{Command: "echo hi"})
	require.Error(t, err)

	c := newClient(t, `sh -c "echo hi"`)
	require.Equal(t, "support-bot", c.SubjectID())
}

func TestRunQueryParsesJSONResponse(t *testing.T) {
	c := newClient(t, `sh -c "cat >/dev/null; echo '{\"answer\":\"within 14 days\",\"latency_ms\":42}'"`)
	resp, err := c.RunQuery(context.Background(), map[string]any{"q": "refund"}, nil)
	require.NoError(t, err)
	require.Equal(t, "within 14 days", resp.Answer)
	require.Equal(t, 42.0, resp.LatencyMS, "subject-reported latency wins")
	require.NotNil(t, resp.ToolCalls)
	require.NotNil(t, resp.SessionGraph)
}

func TestRunQueryTreatsPlainTextAsAnswer(t *testing.T) {
	c := newClient(t, `sh -c 'cat >/dev/null; echo "just plain text"'`)
	resp, err := c.RunQuery(context.Background(), map[string]any{}, nil)
	require.NoError(t, err)
	require.Equal(t, "just plain text", resp.Answer)
	require.GreaterOrEqual(t, resp.LatencyMS, 0.0, "latency measured locally when unreported")
}

func TestRunQuerySendsRequestOnStdin(t *testing.T) {
	// The subject echoes its stdin back, so the answer is the request payload.
	c := newClient(t, "cat")
	resp, err := c.RunQuery(context.Background(), map[string]any{"q": "hours"}, map[string]any{"caller": "test"})
	require.NoError(t, err)
	require.Contains(t, resp.Answer, `"q":"hours"`)
	require.Contains(t, resp.Answer, `"caller":"test"`)
}

func TestRunQuerySendsNonObjectRequest(t *testing.T) {
	c := newClient(t, "cat")
	resp, err := c.RunQuery(context.Background(), []any{1.0, 2.0, 3.0}, nil)
	require.NoError(t, err)
	require.Contains(t, resp.Answer, `"request":[1,2,3]`)
}

func TestRunQuerySurfacesStderrOnFailure(t *testing.T) {
	c := newClient(t, `sh -c 'echo "boom" >&2; exit 3'`)
	_, err := c.RunQuery(context.Background(), map[string]any{}, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "boom")
}

func TestResponseNormalize(t *testing.T) {
	r := &subject.Response{Answer: "x"}
	r.Normalize()
	require.Equal(t, []subject.ToolCall{}, r.ToolCalls)
	require.Equal(t, map[string]any{}, r.SessionGraph)
}
