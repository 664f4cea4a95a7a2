// Package classifier labels trend text as a government-job update or not.
//
// A completion call does the labelling; rate-limited calls are retried with
// backoff and any other failure falls back to a keyword classifier, so
// Classify always returns one of domain.Labels.
package classifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"TrendsAgent/internal/domain"
	"TrendsAgent/internal/logging"
	"TrendsAgent/internal/ports"
	"TrendsAgent/internal/retry"
	"TrendsAgent/internal/textutil"
)

const (
	DefaultMaxTokens   = 50
	DefaultTemperature = 0.1
)

// Config holds the completion parameters used for labelling.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns a near-deterministic, short-answer configuration.
func DefaultConfig() Config {
	return Config{MaxTokens: DefaultMaxTokens, Temperature: DefaultTemperature}
}

// Classifier implements ports.Classifier.
type Classifier struct {
	service ports.CompletionService
	cfg     Config
	policy  retry.Policy
	logger  *slog.Logger
}

var _ ports.Classifier = (*Classifier)(nil)

// New wires a classifier; a nil service makes every call use the fallback.
func New(service ports.CompletionService, cfg Config, policy retry.Policy, logger *slog.Logger) *Classifier {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Classifier{service: service, cfg: cfg, policy: policy, logger: logger}
}

// Classify returns exactly one label for text.
func (c *Classifier) Classify(ctx context.Context, text string) domain.Label {
	if strings.TrimSpace(text) == "" {
		return domain.LabelNotRelevant
	}
	if c.service == nil {
		return FallbackLabel(text)
	}

	req := domain.CompletionRequest{
		Prompt:      BuildPrompt(text),
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	}

	policy := c.policy
	policy.Notify = func(attempt int, delay time.Duration, err error) {
		c.logger.Warn("classification rate limited", "attempt", attempt, "backoff", delay, "error", err)
	}

	answer, err := retry.Do(ctx, policy, func(ctx context.Context) (string, error) {
		return c.service.Complete(ctx, req)
	})
	if err != nil {
		label := FallbackLabel(text)
		c.logger.Warn("classification fell back to keywords",
			"trend", textutil.Truncate(text, 50), "label", label, "error", err)
		return label
	}

	cleaned := textutil.StripReasoning(answer)
	label := LabelFromResponse(cleaned)
	c.logger.Debug("classified trend", "trend", textutil.Truncate(text, 50), "answer", cleaned, "label", label)
	return label
}

// BuildPrompt renders the deterministic labelling prompt.
func BuildPrompt(text string) string {
	return fmt.Sprintf(`You are an AI content categorizer for job-related trends.
Categorize this trend into exactly one of: [%s, %s, %s, %s]

DEFINITIONS:
- %s: Hall tickets, admit cards, exam dates, download links, hall ticket release
- %s: New job vacancies, recruitment notifications, application forms, vacancy announcements
- %s: Exam results, merit lists, scorecards, final results, selection lists
- %s: Anything not related to government jobs, exams, or recruitment

TREND TO CATEGORIZE: %q

IMPORTANT: Return ONLY the category name. No explanations, no additional text.`,
		domain.LabelAdmitCard, domain.LabelJobNotification, domain.LabelResult, domain.LabelNotRelevant,
		domain.LabelAdmitCard, domain.LabelJobNotification, domain.LabelResult, domain.LabelNotRelevant,
		text)
}
