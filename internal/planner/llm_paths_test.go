package planner

import (
	"testing"

	"github.com/stretchr/testify/require"

	"agentops/internal/changeset"
)

func TestFillProposalPathsBeforeValidation(t *testing.T) {
	// A proposal with no path fields at all must survive boundary validation
	// once the spec's paths are filled in.
	proposal := []byte(`{
		"config_patches": [{"path": "llm.temperature", "value": 0.2}],
		"new_testcases": [{"input_json": "{}", "judge_question": "q", "expected_behavior": "e"}]
	}`)

	filled, err := fillProposalPaths(proposal, "configs/app_v1.json", "golden/set.csv", "v1")
	require.NoError(t, err)

	cs, err := changeset.FromJSON(filled)
	require.NoError(t, err)
	require.Equal(t, "configs/app_v1.json", cs.BaseConfigPath)
	require.Equal(t, "configs/app_v2.json", cs.NewConfigPath)
	require.Equal(t, "golden/set.csv", cs.GoldenSetPath)
	require.Len(t, cs.ConfigPatches, 1)
}

func TestFillProposalPathsOverridesModelBasePath(t *testing.T) {
	proposal := []byte(`{
		"base_config_path": "/made/up/by/model.json",
		"new_config_path": "configs/custom_v9.json",
		"golden_set_path": "golden/other.csv"
	}`)

	filled, err := fillProposalPaths(proposal, "configs/app_v1.json", "golden/set.csv", "v1")
	require.NoError(t, err)

	cs, err := changeset.FromJSON(filled)
	require.NoError(t, err)
	require.Equal(t, "configs/app_v1.json", cs.BaseConfigPath, "base path always comes from the spec")
	require.Equal(t, "configs/custom_v9.json", cs.NewConfigPath, "explicit distinct new path is kept")
	require.Equal(t, "golden/other.csv", cs.GoldenSetPath)
}

func TestFillProposalPathsDerivesWhenNewEqualsBase(t *testing.T) {
	proposal := []byte(`{"new_config_path": "configs/app_v1.json"}`)
	filled, err := fillProposalPaths(proposal, "configs/app_v1.json", "golden/set.csv", "v1")
	require.NoError(t, err)

	cs, err := changeset.FromJSON(filled)
	require.NoError(t, err)
	require.Equal(t, "configs/app_v2.json", cs.NewConfigPath)
}

func TestFillProposalPathsRejectsNonObject(t *testing.T) {
	_, err := fillProposalPaths([]byte(`[1,2,3]`), "a.json", "g.csv", "v1")
	require.Error(t, err)
}
