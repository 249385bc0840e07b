package planner_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"agentops/internal/planner"
	"agentops/internal/spec"
)

func TestNewLLMPlannerValidation(t *testing.T) {
	sp := &spec.SubjectSpec{SubjectID: "support-bot"}

	_, err := planner.NewLLMPlanner(planner.LLMPlannerConfig{Spec: sp, Logger: zerolog.Nop()})
	require.Error(t, err, "api key is required")

	_, err = planner.NewLLMPlanner(planner.LLMPlannerConfig{APIKey: "sk-test", Logger: zerolog.Nop()})
	require.Error(t, err, "spec is required")

	p, err := planner.NewLLMPlanner(planner.LLMPlannerConfig{APIKey: "sk-test", Spec: sp, Logger: zerolog.Nop()})
	require.NoError(t, err)
	require.NotNil(t, p)
}
