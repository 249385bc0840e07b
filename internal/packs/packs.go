// Package packs holds the pluggable scoring units run against each
// (testcase, response) pair. Packs are isolated from each other: the engine
// catches a failing pack and keeps the rest of the case's metrics.
package packs

import (
	"context"
	"strings"

	"agentops/internal/golden"
	"agentops/internal/metric"
	"agentops/internal/spec"
	"agentops/internal/subject"
)

// Metric names produced by the built-in packs.
const (
	MetricTaskSuccess = "task_success"
	MetricJudgeScore  = "judge_score"
)

// ScoringPack computes zero or more named metrics for one evaluation case.
type ScoringPack interface {
	Name() string
	Evaluate(ctx context.Context, tc golden.Testcase, resp *subject.Response, sp *spec.SubjectSpec) ([]metric.Result, error)
}

// JudgeMetricsEnabled reports whether the configured metric list turns on
// judge metrics, under the same selection rules the packs apply. Callers use
// it to avoid constructing a judge client that could never be called.
func JudgeMetricsEnabled(configured []string) bool {
	return wantsMetric(configured, MetricJudgeScore)
}

// wantsMetric decides whether a metric should be computed given the
// configured metric list. An empty or omitted list means everything is on;
// an explicit list enables only what it names. Aggregate names like
// "judge_score_p95" enable the underlying judge_score metric.
func wantsMetric(configured []string, name string) bool {
	if len(configured) == 0 {
		return true
	}
	for _, m := range configured {
		if m == name {
			return true
		}
		if name == MetricJudgeScore && strings.HasPrefix(m, MetricJudgeScore) {
			return true
		}
	}
	return false
}
