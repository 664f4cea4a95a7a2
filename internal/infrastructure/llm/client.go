package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"TrendsAgent/internal/config"
	"TrendsAgent/internal/domain"
	"TrendsAgent/internal/ports"
)

// New selects the provider adapter. A missing API key yields a nil service,
// which callers treat as "fallbacks only".
func New(cfg config.LLMConfig) (ports.CompletionService, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, nil
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("llm model is not configured")
	}
	switch strings.ToLower(cfg.Provider) {
	case "", config.ProviderOpenAI:
		return NewOpenAIClient(cfg), nil
	case config.ProviderAnthropic:
		return NewAnthropicClient(cfg), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

func classifyStatus(op string, status int, err error) error {
	switch {
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%s: %w: %v", op, domain.ErrRateLimited, err)
	case status == 0:
		return classifyMessage(op, err)
	default:
		return fmt.Errorf("%s: %w: status %d: %v", op, domain.ErrService, status, err)
	}
}

func classifyMessage(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrService, err)
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "rate limit") || strings.Contains(msg, "429") {
		return fmt.Errorf("%s: %w: %v", op, domain.ErrRateLimited, err)
	}
	return fmt.Errorf("%s: %w: %v", op, domain.ErrService, err)
}
