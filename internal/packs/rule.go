package packs

import (
	"context"
	"strings"

	"agentops/internal/golden"
	"agentops/internal/metric"
	"agentops/internal/spec"
	"agentops/internal/subject"
)

// RulePack computes deterministic metrics with no I/O. Its only metric
// today is task_success: true when the subject produced a non-empty answer.
type RulePack struct {
	metrics []string
}

// NewRulePack creates a rule pack honoring the configured metric list.
func NewRulePack(metrics []string) *RulePack {
	return &RulePack{metrics: metrics}
}

func (p *RulePack) Name() string { return "rule" }

func (p *RulePack) Evaluate(_ context.Context, _ golden.Testcase, resp *subject.Response, _ *spec.SubjectSpec) ([]metric.Result, error) {
	if !wantsMetric(p.metrics, MetricTaskSuccess) {
		return nil, nil
	}
	answer := ""
	if resp != nil {
		answer = strings.TrimSpace(resp.Answer)
	}
	success := answer != ""
	reason := "non_empty_answer"
	if !success {
		reason = "empty_answer"
	}
	return []metric.Result{{
		Name:  MetricTaskSuccess,
		Value: success,
		Details: map[string]any{
			"kind":   metric.KindRule,
			"reason": reason,
		},
	}}, nil
}
