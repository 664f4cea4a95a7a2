package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"TrendsAgent/internal/config"
	"TrendsAgent/internal/domain"
	"TrendsAgent/internal/ports"
)

const defaultAnthropicMaxTokens = 1024

// AnthropicClient implements ports.CompletionService with the Messages API.
type AnthropicClient struct {
	client anthropic.Client
	model  string
}

var _ ports.CompletionService = (*AnthropicClient)(nil)

// NewAnthropicClient builds a client from configuration.
func NewAnthropicClient(cfg config.LLMConfig) *AnthropicClient {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &AnthropicClient{
		client: anthropic.NewClient(opts...),
		model:  cfg.Model,
	}
}

// Complete joins the text blocks of the reply.
func (c *AnthropicClient) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	maxTokens := int64(req.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(req.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if strings.TrimSpace(req.System) != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", classifyStatus("anthropic completion", apiErr.StatusCode, err)
		}
		return "", classifyMessage("anthropic completion", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("anthropic completion: no text content: %w", domain.ErrService)
	}
	return b.String(), nil
}
