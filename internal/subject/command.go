package subject

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	shellwords "github.com/mattn/go-shellwords"
	"github.com/rs/zerolog"
)

// CommandClient runs an external command once per query. The request is
// written to the command's stdin as JSON; stdout is parsed as a Response
// object, or treated as the raw answer text when it is not JSON.
type CommandClient struct {
	subjectID string
	argv      []string
	dir       string
	logger    zerolog.Logger
}

// CommandClientConfig configures a CommandClient.
type CommandClientConfig struct {
	SubjectID string
	// Command is a single shell-style line, split with shellwords at
	// construction time.
	Command string
	Dir     string
	Logger  zerolog.Logger
}

// NewCommandClient parses the configured command line and fails at
// construction if it is empty or malformed.
func NewCommandClient(cfg CommandClientConfig) (*CommandClient, error) {
	if strings.TrimSpace(cfg.SubjectID) == "" {
		return nil, errors.New("subject id is required")
	}
	argv, err := shellwords.Parse(cfg.Command)
	if err != nil {
		return nil, fmt.Errorf("parse subject command %q: %w", cfg.Command, err)
	}
	if len(argv) == 0 {
		return nil, errors.New("subject command is empty")
	}
	return &CommandClient{
		subjectID: cfg.SubjectID,
		argv:      argv,
		dir:       cfg.Dir,
		logger:    cfg.Logger,
	}, nil
}

func (c *CommandClient) SubjectID() string { return c.subjectID }

// RunQuery invokes the subject command synchronously. Latency is measured
// here when the subject does not report its own latency_ms.
func (c *CommandClient) RunQuery(ctx context.Context, request any, callContext map[string]any) (*Response, error) {
	payload := map[string]any{"request": request}
	if len(callContext) > 0 {
		payload["context"] = callContext
	}
	input, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal subject request: %w", err)
	}

	cmd := exec.CommandContext(ctx, c.argv[0], c.argv[1:]...)
	cmd.Dir = c.dir
	cmd.Stdin = bytes.NewReader(input)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	started := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(started)

	if runErr != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = runErr.Error()
		}
		return nil, fmt.Errorf("subject command failed: %s", msg)
	}

	resp := parseResponse(stdout.Bytes())
	if resp.LatencyMS == 0 {
		resp.LatencyMS = float64(elapsed.Milliseconds())
	}
	resp.Normalize()
	return resp, nil
}

func parseResponse(out []byte) *Response {
	trimmed := strings.TrimSpace(string(out))
	var resp Response
	if err := json.Unmarshal([]byte(trimmed), &resp); err == nil && resp.Answer != "" {
		return &resp
	}
	// Non-JSON subjects just print their answer.
	return &Response{Answer: trimmed}
}
