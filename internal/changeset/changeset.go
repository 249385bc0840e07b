// Package changeset applies versioned configuration upgrades: deep-merging
// dot-path patches into a new config artifact and growing the golden set.
// Schema violations are all-or-nothing; nothing is written until the whole
// changeset validates and merges in memory.
package changeset

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// OpSet is the only supported patch operation.
const OpSet = "set"

// ConfigPatch sets the leaf named by a dot-separated path inside a nested
// JSON config. It never removes keys off its path.
type ConfigPatch struct {
	Path  string `json:"path"`
	Op    string `json:"op"`
	Value any    `json:"value"`
}

// Changeset is a proposed version upgrade: config patches plus new golden
// testcases. It is ephemeral until Apply writes the derived artifacts.
type Changeset struct {
	BaseConfigPath string              `json:"base_config_path"`
	NewConfigPath  string              `json:"new_config_path"`
	GoldenSetPath  string              `json:"golden_set_path"`
	ConfigPatches  []ConfigPatch       `json:"config_patches"`
	NewTestcases   []map[string]string `json:"new_testcases"`
}

type rawChangeset struct {
	BaseConfigPath string           `json:"base_config_path"`
	NewConfigPath  string           `json:"new_config_path"`
	GoldenSetPath  string           `json:"golden_set_path"`
	ConfigPatches  []map[string]any `json:"config_patches"`
	NewTestcases   []map[string]any `json:"new_testcases"`
}

// FromJSON parses and validates a changeset proposal at the boundary,
// failing fast with descriptive errors instead of letting missing keys
// propagate into file-writing code.
func FromJSON(data []byte) (*Changeset, error) {
	var raw rawChangeset
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse changeset: %w", err)
	}
	if strings.TrimSpace(raw.BaseConfigPath) == "" {
		return nil, fmt.Errorf("changeset missing required key %q", "base_config_path")
	}
	if strings.TrimSpace(raw.NewConfigPath) == "" {
		return nil, fmt.Errorf("changeset missing required key %q", "new_config_path")
	}
	if strings.TrimSpace(raw.GoldenSetPath) == "" && len(raw.NewTestcases) > 0 {
		return nil, fmt.Errorf("changeset missing required key %q", "golden_set_path")
	}

	cs := &Changeset{
		BaseConfigPath: raw.BaseConfigPath,
		NewConfigPath:  raw.NewConfigPath,
		GoldenSetPath:  raw.GoldenSetPath,
	}
	for i, p := range raw.ConfigPatches {
		path, _ := p["path"].(string)
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("config patch %d missing path", i)
		}
		op, ok := p["op"].(string)
		if !ok || op == "" {
			op = OpSet
		}
		cs.ConfigPatches = append(cs.ConfigPatches, ConfigPatch{
			Path:  path,
			Op:    op,
			Value: p["value"],
		})
	}
	for _, tc := range raw.NewTestcases {
		row := make(map[string]string, len(tc))
		for k, v := range tc {
			row[k] = stringValue(v)
		}
		cs.NewTestcases = append(cs.NewTestcases, row)
	}
	return cs, nil
}

// LoadFile reads a changeset proposal from a JSON file.
func LoadFile(path string) (*Changeset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromJSON(data)
}

// stringValue renders a JSON scalar as the CSV cell it will become.
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	}
}
