package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"TrendsAgent/internal/config"
	"TrendsAgent/internal/domain"
	"TrendsAgent/internal/ports"
)

// OpenAIClient implements ports.CompletionService against OpenAI-compatible
// chat endpoints such as OpenRouter.
type OpenAIClient struct {
	client openai.Client
	model  string
}

var _ ports.CompletionService = (*OpenAIClient)(nil)

// NewOpenAIClient builds a client from configuration. SDK retries are
// disabled; backoff is owned by the caller's retry policy.
func NewOpenAIClient(cfg config.LLMConfig) *OpenAIClient {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	// OpenRouter attribution headers.
	if cfg.AppURL != "" {
		opts = append(opts, option.WithHeader("HTTP-Referer", cfg.AppURL))
	}
	if cfg.AppName != "" {
		opts = append(opts, option.WithHeader("X-Title", cfg.AppName))
	}

	return &OpenAIClient{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
	}
}

// Complete sends a system + user message pair and returns the first choice.
func (c *OpenAIClient) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if strings.TrimSpace(req.System) != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    messages,
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai completion: empty choices: %w", domain.ErrService)
	}
	return resp.Choices[0].Message.Content, nil
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return classifyStatus("openai completion", apiErr.StatusCode, err)
	}
	return classifyMessage("openai completion", err)
}
