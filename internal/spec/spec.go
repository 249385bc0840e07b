package spec

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// SubjectSpec describes one subject under evaluation: identity, how to
// reach it, and how to evaluate it. Loaded from a subject.yml file.
type SubjectSpec struct {
	SubjectID   string           `yaml:"subject_id" json:"subject_id"`
	Name        string           `yaml:"name" json:"name"`
	Version     string           `yaml:"version" json:"version"`
	Description string           `yaml:"description,omitempty" json:"description,omitempty"`
	Runtime     RuntimeConfig    `yaml:"runtime" json:"runtime"`
	Evaluation  EvaluationConfig `yaml:"evaluation" json:"evaluation"`
}

// RuntimeConfig describes how the subject is invoked.
type RuntimeConfig struct {
	// Type selects the client implementation. "command" runs an external
	// process per query.
	Type    string `yaml:"type" json:"type"`
	Command string `yaml:"command,omitempty" json:"command,omitempty"`
	// ConfigFile is the subject's own versioned configuration artifact,
	// the target of changeset patches.
	ConfigFile string `yaml:"config_file,omitempty" json:"config_file,omitempty"`
}

// EvaluationConfig declares what to measure and where the golden set lives.
type EvaluationConfig struct {
	// GoldenPath points at the tabular golden set, relative to the working
	// directory unless absolute.
	GoldenPath string `yaml:"golden_path" json:"golden_path"`
	// Metrics lists desired metric names. Omitted or empty means compute
	// every available metric.
	Metrics []string    `yaml:"metrics,omitempty" json:"metrics,omitempty"`
	Judge   JudgeConfig `yaml:"judge,omitempty" json:"judge,omitempty"`
}

// JudgeConfig configures the external judge collaborator.
type JudgeConfig struct {
	Model    string `yaml:"model,omitempty" json:"model,omitempty"`
	RubricID string `yaml:"rubric_id,omitempty" json:"rubric_id,omitempty"`
}

// Load reads a SubjectSpec from a YAML path.
func Load(path string) (*SubjectSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sp SubjectSpec
	if err := yaml.Unmarshal(data, &sp); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if sp.Version == "" {
		sp.Version = "v1"
	}
	return &sp, nil
}

// Validate checks required fields.
func Validate(sp *SubjectSpec) error {
	if strings.TrimSpace(sp.SubjectID) == "" {
		return errors.New("subject_id is required")
	}
	if strings.TrimSpace(sp.Runtime.Type) == "" {
		return errors.New("runtime.type is required")
	}
	if sp.Runtime.Type == "command" && strings.TrimSpace(sp.Runtime.Command) == "" {
		return errors.New("runtime.command is required for command runtimes")
	}
	if strings.TrimSpace(sp.Evaluation.GoldenPath) == "" {
		return errors.New("evaluation.golden_path is required")
	}
	return nil
}
