package judge

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

const defaultModel = "gpt-4o-mini"

// OpenAIClientConfig configures the chat-completion judge.
type OpenAIClientConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Logger  zerolog.Logger
}

// OpenAIClient scores answers through the OpenAI chat completion API.
type OpenAIClient struct {
	client *openai.Client
	model  string
	logger zerolog.Logger
}

// NewOpenAIClient builds the judge client. Construction fails when the API
// key is absent so misconfiguration surfaces before any evaluation starts.
func NewOpenAIClient(cfg OpenAIClientConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("judge api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		logger: cfg.Logger,
	}, nil
}

func (c *OpenAIClient) Model() string { return c.model }

// Score issues one judge call and resolves the output through ParseVerdict.
// Only transport-level failures return an error; unparseable judge output
// always resolves to a Verdict.
func (c *OpenAIClient) Score(ctx context.Context, req Request) (Verdict, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(req)},
		},
	})
	if err != nil {
		return Verdict{}, fmt.Errorf("judge call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Verdict{}, errors.New("judge returned no choices")
	}
	raw := resp.Choices[0].Message.Content
	verdict := ParseVerdict(raw)
	c.logger.Debug().Float64("score", verdict.Score).Str("model", c.model).Msg("judge verdict")
	return verdict, nil
}

const systemPrompt = `You are an expert evaluator of agent answers. ` +
	`Score the answer on a scale of 1 to 5, where 1 is very poor and 5 is excellent. ` +
	`Return ONLY a JSON object with "score" (number 1-5) and "rationale" (short explanation).`

func buildPrompt(req Request) string {
	var b strings.Builder
	if req.RubricID != "" {
		fmt.Fprintf(&b, "Rubric ID: %s\n\n", req.RubricID)
	}
	fmt.Fprintf(&b, "Judge question:\n%s\n\n", req.Question)
	fmt.Fprintf(&b, "Expected behavior:\n%s\n\n", req.ExpectedBehavior)
	fmt.Fprintf(&b, "Answer to evaluate:\n%s\n", req.Answer)
	return b.String()
}
