package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"agentops/internal/changeset"
	"agentops/internal/spec"
	"agentops/internal/store"
)

const historyWindow = 20

// LLMPlannerConfig configures the chat-completion planner.
type LLMPlannerConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Spec    *spec.SubjectSpec
	Memory  *store.MemoryStore
	Traces  *store.TraceStore
	Logger  zerolog.Logger
}

// LLMPlanner asks a chat model for config patches and new testcases, given
// recent traces and memory entries for the subject. Its output is validated
// through changeset.FromJSON before anyone acts on it.
type LLMPlanner struct {
	client *openai.Client
	model  string
	spec   *spec.SubjectSpec
	memory *store.MemoryStore
	traces *store.TraceStore
	logger zerolog.Logger
}

// NewLLMPlanner builds the planner; construction fails without an API key.
func NewLLMPlanner(cfg LLMPlannerConfig) (*LLMPlanner, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("planner api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
	}
	if cfg.Spec == nil {
		return nil, errors.New("planner requires a subject spec")
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &LLMPlanner{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		spec:   cfg.Spec,
		memory: cfg.Memory,
		traces: cfg.Traces,
		logger: cfg.Logger,
	}, nil
}

// ProposeChangeset gathers recent history, asks the model for a changeset
// JSON, and validates it. Missing paths are filled from the subject spec.
func (p *LLMPlanner) ProposeChangeset(ctx context.Context, versionID string) (*changeset.Changeset, error) {
	baseConfig := p.spec.Runtime.ConfigFile
	if baseConfig == "" {
		return nil, errors.New("subject spec has no runtime.config_file to patch")
	}

	history, err := p.historyBlock()
	if err != nil {
		return nil, err
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: plannerSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: p.buildPrompt(versionID, baseConfig, history)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	if err != nil {
		return nil, fmt.Errorf("planner call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("planner returned no choices")
	}

	raw := strings.TrimSpace(resp.Choices[0].Message.Content)
	filled, err := fillProposalPaths([]byte(stripFences(raw)), baseConfig, p.spec.Evaluation.GoldenPath, versionID)
	if err != nil {
		return nil, fmt.Errorf("planner proposal rejected: %w", err)
	}
	cs, err := changeset.FromJSON(filled)
	if err != nil {
		return nil, fmt.Errorf("planner proposal rejected: %w", err)
	}
	p.logger.Info().
		Int("patches", len(cs.ConfigPatches)).
		Int("new_testcases", len(cs.NewTestcases)).
		Msg("planner proposed changeset")
	return cs, nil
}

// fillProposalPaths overwrites the model's path fields with authoritative
// values before boundary validation, so a proposal is never rejected over
// paths the spec decides anyway. base_config_path always comes from the
// spec; the others are derived when the model omits or mirrors them.
func fillProposalPaths(data []byte, baseConfig, goldenPath, versionID string) ([]byte, error) {
	var proposal map[string]any
	if err := json.Unmarshal(data, &proposal); err != nil {
		return nil, fmt.Errorf("proposal is not a JSON object: %w", err)
	}
	proposal["base_config_path"] = baseConfig
	if s, _ := proposal["new_config_path"].(string); strings.TrimSpace(s) == "" || s == baseConfig {
		proposal["new_config_path"] = DeriveNewConfigPath(baseConfig, versionID)
	}
	if s, _ := proposal["golden_set_path"].(string); strings.TrimSpace(s) == "" {
		proposal["golden_set_path"] = goldenPath
	}
	return json.Marshal(proposal)
}

func (p *LLMPlanner) historyBlock() (string, error) {
	var b strings.Builder
	if p.memory != nil {
		entries, err := p.memory.Load(
			store.WithSubjectID(p.spec.SubjectID),
			store.WithLimit(historyWindow),
		)
		if err != nil {
			return "", fmt.Errorf("load memory history: %w", err)
		}
		writeJSONLines(&b, "Recent memory entries:", entries)
	}
	if p.traces != nil {
		entries, err := p.traces.Load(
			store.WithSubjectID(p.spec.SubjectID),
			store.WithLimit(historyWindow),
		)
		if err != nil {
			return "", fmt.Errorf("load trace history: %w", err)
		}
		writeJSONLines(&b, "Recent eval traces:", entries)
	}
	return b.String(), nil
}

func writeJSONLines(b *strings.Builder, header string, entries []map[string]any) {
	if len(entries) == 0 {
		return
	}
	b.WriteString(header)
	b.WriteString("\n")
	for _, e := range entries {
		line, err := json.Marshal(e)
		if err != nil {
			continue
		}
		b.Write(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

const plannerSystemPrompt = `You improve an agent's configuration based on its evaluation history. ` +
	`Respond ONLY with a JSON object shaped as: {"base_config_path": string, "new_config_path": string, ` +
	`"golden_set_path": string, "config_patches": [{"path": dot-separated string, "op": "set", "value": any}], ` +
	`"new_testcases": [{"input_json": string, "judge_question": string, "expected_behavior": string}]}.`

func (p *LLMPlanner) buildPrompt(versionID, baseConfig, history string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Subject: %s (version %s)\n", p.spec.SubjectID, versionID)
	fmt.Fprintf(&b, "Base config path: %s\n", baseConfig)
	fmt.Fprintf(&b, "Golden set path: %s\n\n", p.spec.Evaluation.GoldenPath)
	if history != "" {
		b.WriteString(history)
	}
	b.WriteString("Propose config patches that address observed weaknesses and new golden testcases that cover them.")
	return b.String()
}

func stripFences(text string) string {
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
