package changeset_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"agentops/internal/changeset"
)

func TestFromJSONValid(t *testing.T) {
	data := []byte(`{
		"base_config_path": "configs/app_v1.json",
		"new_config_path": "configs/app_v2.json",
		"golden_set_path": "golden/set.csv",
		"config_patches": [
			{"path": "llm.temperature", "value": 0.2},
			{"path": "llm.model", "op": "set", "value": "gpt-4o"}
		],
		"new_testcases": [
			{"input_json": "{\"q\":1}", "judge_question": "Is it right?", "expected_behavior": "yes", "priority": 3, "flaky": false}
		]
	}`)

	cs, err := changeset.FromJSON(data)
	require.NoError(t, err)
	require.Equal(t, "configs/app_v1.json", cs.BaseConfigPath)
	require.Equal(t, "configs/app_v2.json", cs.NewConfigPath)
	require.Len(t, cs.ConfigPatches, 2)
	require.Equal(t, changeset.OpSet, cs.ConfigPatches[0].Op, "op defaults to set")
	require.Equal(t, 0.2, cs.ConfigPatches[0].Value)

	require.Len(t, cs.NewTestcases, 1)
	tc := cs.NewTestcases[0]
	require.Equal(t, "3", tc["priority"], "numeric scalars become CSV cells")
	require.Equal(t, "false", tc["flaky"])
}

func TestFromJSONValidation(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr string
	}{
		{
			name:    "not json",
			payload: `{"base_config_path": `,
			wantErr: "parse changeset",
		},
		{
			name:    "missing base config path",
			payload: `{"new_config_path": "x.json"}`,
			wantErr: `missing required key "base_config_path"`,
		},
		{
			name:    "missing new config path",
			payload: `{"base_config_path": "x.json"}`,
			wantErr: `missing required key "new_config_path"`,
		},
		{
			name: "testcases without golden set path",
			payload: `{"base_config_path": "a.json", "new_config_path": "b.json",
				"new_testcases": [{"input_json": "{}", "judge_question": "q", "expected_behavior": "e"}]}`,
			wantErr: `missing required key "golden_set_path"`,
		},
		{
			name: "patch without path",
			payload: `{"base_config_path": "a.json", "new_config_path": "b.json",
				"config_patches": [{"value": 1}]}`,
			wantErr: "config patch 0 missing path",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := changeset.FromJSON([]byte(tt.payload))
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFromJSONNoTestcasesAllowsEmptyGoldenPath(t *testing.T) {
	cs, err := changeset.FromJSON([]byte(`{"base_config_path": "a.json", "new_config_path": "b.json"}`))
	require.NoError(t, err)
	require.Empty(t, cs.GoldenSetPath)
	require.Empty(t, cs.NewTestcases)
}
