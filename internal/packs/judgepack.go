package packs

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"agentops/internal/golden"
	"agentops/internal/judge"
	"agentops/internal/metric"
	"agentops/internal/spec"
	"agentops/internal/subject"
)

// JudgePack delegates scoring judgment to the external judge collaborator.
// One judge call per case, fixed 1-5 scale. Parse unreliability is absorbed
// by the judge package; only transport failures surface as errors, which
// the engine isolates per case.
type JudgePack struct {
	client   judge.Client
	metrics  []string
	rubricID string
	disabled bool
	logger   zerolog.Logger
}

// JudgePackConfig configures a JudgePack.
type JudgePackConfig struct {
	Client   judge.Client
	Metrics  []string
	RubricID string
	// Disabled is the kill switch: when set the pack contributes no judge
	// metrics and logs that it was skipped.
	Disabled bool
	Logger   zerolog.Logger
}

// NewJudgePack creates a judge pack. A nil client is only valid when the
// pack is disabled or the configured metrics exclude judge_score.
func NewJudgePack(cfg JudgePackConfig) *JudgePack {
	return &JudgePack{
		client:   cfg.Client,
		metrics:  cfg.Metrics,
		rubricID: cfg.RubricID,
		disabled: cfg.Disabled,
		logger:   cfg.Logger,
	}
}

func (p *JudgePack) Name() string { return "judge" }

func (p *JudgePack) Evaluate(ctx context.Context, tc golden.Testcase, resp *subject.Response, _ *spec.SubjectSpec) ([]metric.Result, error) {
	if !wantsMetric(p.metrics, MetricJudgeScore) {
		return nil, nil
	}
	if p.disabled {
		p.logger.Info().Str("testcase_id", tc.ID()).Msg("judge disabled; skipping judge metrics")
		return nil, nil
	}
	if p.client == nil {
		return nil, fmt.Errorf("judge pack has no client")
	}

	answer := ""
	if resp != nil {
		answer = resp.Answer
	}
	verdict, err := p.client.Score(ctx, judge.Request{
		Question:         tc.JudgeQuestion(),
		ExpectedBehavior: tc.ExpectedBehavior(),
		Answer:           answer,
		RubricID:         p.rubricID,
	})
	if err != nil {
		return nil, err
	}

	return []metric.Result{{
		Name:  MetricJudgeScore,
		Value: verdict.Score,
		Details: map[string]any{
			"kind":      metric.KindJudge,
			"reasoning": verdict.Rationale,
			"model":     p.client.Model(),
			"rubric_id": p.rubricID,
		},
	}}, nil
}
