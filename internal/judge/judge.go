// Package judge wraps the external LLM scoring collaborator. The judge is
// unreliable by nature, so verdict parsing is a strict pipeline with an
// explicit fallback chain and never fails: strict JSON parse, fenced-block
// strip and reparse, standalone digit extraction, zero-score default.
package judge

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
)

// Request carries everything the judge needs for one 1-5 quality score.
type Request struct {
	Question         string
	ExpectedBehavior string
	Answer           string
	RubricID         string
}

// Verdict is the resolved judge output. Score is 0 when the judge output
// could not be interpreted at all.
type Verdict struct {
	Score     float64
	Rationale string
	Raw       string
}

// Client issues one blocking judge call per Score invocation.
type Client interface {
	Model() string
	Score(ctx context.Context, req Request) (Verdict, error)
}

var digitPattern = regexp.MustCompile(`\b([1-5])\b`)

// ParseVerdict resolves raw judge output text into a Verdict. It never
// fails: unparseable output degrades to a digit search over the raw text
// and finally to score zero with the raw text as rationale.
func ParseVerdict(raw string) Verdict {
	trimmed := strings.TrimSpace(raw)

	if v, ok := parseJSONVerdict(trimmed); ok {
		v.Raw = trimmed
		return v
	}
	if v, ok := parseJSONVerdict(stripCodeFences(trimmed)); ok {
		v.Raw = trimmed
		return v
	}
	if m := digitPattern.FindStringSubmatch(trimmed); m != nil {
		score := float64(m[1][0] - '0')
		return Verdict{Score: score, Rationale: trimmed, Raw: trimmed}
	}
	return Verdict{Score: 0, Rationale: trimmed, Raw: trimmed}
}

func parseJSONVerdict(text string) (Verdict, bool) {
	var parsed struct {
		Score     *float64 `json:"score"`
		Rationale string   `json:"rationale"`
		Reasoning string   `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(text), &parsed); err != nil || parsed.Score == nil {
		return Verdict{}, false
	}
	rationale := parsed.Rationale
	if rationale == "" {
		rationale = parsed.Reasoning
	}
	if rationale == "" {
		rationale = text
	}
	return Verdict{Score: *parsed.Score, Rationale: rationale}, true
}

// stripCodeFences removes a leading and trailing ``` fence line when the
// judge wrapped its JSON in a code block.
func stripCodeFences(text string) string {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	lines := strings.Split(t, "\n")
	if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[0]), "```") {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[len(lines)-1]), "```") {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
