// Package synthesizer turns a labelled trend into four social-media drafts.
package synthesizer

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
	DefaultMaxTokens   = 1000
	DefaultTemperature = 0.7
	DefaultBrand       = "JobYaari"
	DefaultBrandURL    = "https://jobyaari.com"
)

// Config holds generation parameters and the brand used in prompts and templates.
type Config struct {
	MaxTokens   int
	Temperature float64
	Brand       string
	BrandURL    string
}

// DefaultConfig mirrors the production settings.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
		Brand:       DefaultBrand,
		BrandURL:    DefaultBrandURL,
	}
}

// Synthesizer implements ports.Synthesizer.
type Synthesizer struct {
	service ports.CompletionService
	cfg     Config
	policy  retry.Policy
	logger  *slog.Logger
}

var _ ports.Synthesizer = (*Synthesizer)(nil)

// New wires a synthesizer; a nil service always yields fallback drafts.
func New(service ports.CompletionService, cfg Config, policy retry.Policy, logger *slog.Logger) *Synthesizer {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Synthesizer{service: service, cfg: cfg, policy: policy, logger: logger}
}

// Generate returns drafts for text; it never returns an empty bundle.
func (s *Synthesizer) Generate(ctx context.Context, text string, label domain.Label) domain.ContentBundle {
	if strings.TrimSpace(text) == "" || !label.Relevant() || s.service == nil {
		return s.Fallback(text, label)
	}

	req := domain.CompletionRequest{
		System:      s.systemPrompt(),
		Prompt:      BuildPrompt(text, label),
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	}

	policy := s.policy
	policy.Notify = func(attempt int, delay time.Duration, err error) {
		s.logger.Warn("content generation rate limited", "attempt", attempt, "backoff", delay, "error", err)
	}

	bundle, err := retry.Do(ctx, policy, func(ctx context.Context) (domain.ContentBundle, error) {
		answer, err := s.service.Complete(ctx, req)
		if err != nil {
			return domain.ContentBundle{}, err
		}
		parsed := ParseContent(textutil.StripReasoning(answer))
		if parsed.Empty() {
			return domain.ContentBundle{}, fmt.Errorf("parse content: %w", domain.ErrParseFailure)
		}
		return parsed, nil
	})
	if err != nil {
		s.logger.Warn("content generation fell back to templates",
			"trend", textutil.Truncate(text, 50), "label", label, "error", err)
		return s.Fallback(text, label)
	}

	if issues := Validate(bundle); len(issues) > 0 {
		s.logger.Info("generated content below quality bar",
			"trend", textutil.Truncate(text, 50), "issues", strings.Join(issues, "; "))
	}
	return bundle
}

func (s *Synthesizer) systemPrompt() string {
	brand := s.cfg.Brand
	if brand == "" {
		brand = "a government job portal"
	}
	return fmt.Sprintf("You are a social media content creator for %s, specializing in Indian government job updates.", brand)
}

// BuildPrompt renders the four-section generation prompt.
func BuildPrompt(text string, label domain.Label) string {
	return fmt.Sprintf(`Create engaging social media content for this Indian government job update.

TREND: %s
CATEGORY: %s

Generate content in this EXACT format with clear labels:

INSTAGRAM_POST:
[Create a 2-3 line Instagram caption with emojis and 3-5 hashtags. Make it engaging for Indian job seekers aged 18-30. Include urgency if applicable.]

BLOG_DRAFT:
[Write a 120-150 word blog post with: Opening hook, key details (dates/eligibility/links), benefits, and call-to-action. Use short paragraphs.]

YOUTUBE_SCRIPT:
[Create a 30-second script with: Hook (5 sec), Main content (20 sec), Call-to-action (5 sec). Include visual cues in brackets.]

THUMBNAIL_IDEA:
[Describe an eye-catching YouTube thumbnail: Main text, background color, visual elements, text placement. Keep it bold and readable.]

Use simple Hindi-English mix where appropriate. Make content shareable and actionable.`, text, label)
}

// Validate lists quality problems of a bundle; an empty result means it passed.
func Validate(b domain.ContentBundle) []string {
	var issues []string
	if len(b.ShortPost) < 20 {
		issues = append(issues, "short post too short")
	}
	if len(textutil.ExtractHashtags(b.ShortPost)) == 0 {
		issues = append(issues, "short post has no hashtags")
	}
	if len(b.ArticleDraft) < 50 {
		issues = append(issues, "article draft too short")
	}
	if len(b.Script) < 30 {
		issues = append(issues, "script too short")
	}
	return issues
}
