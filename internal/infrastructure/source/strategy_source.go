package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"TrendsAgent/internal/config"
	"TrendsAgent/internal/ports"
	"TrendsAgent/internal/textutil"
	"TrendsAgent/internal/trends"
)

// jobKeywords keeps a trend when filtering is enabled for its source.
var jobKeywords = []string{
	"job notification", "admit card", "result", "recruitment", "vacancy", "vacancies",
	"government job", "bank job", "sbi", "upsc", "ssc", "rrb", "ibps", "lic",
	"aiims", "isro", "drdo", "ongc", "railway", "notification",
}

// StrategySource implements ports.TrendSource via registered fetcher strategies.
type StrategySource struct {
	registry *trends.Registry
	sources  []config.SourceConfig
	logger   *slog.Logger
}

var _ ports.TrendSource = (*StrategySource)(nil)

// NewStrategySource wires the fetcher registry with config-defined sources.
func NewStrategySource(reg *trends.Registry, sources []config.SourceConfig, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		sources:  sources,
		logger:   log,
	}
}

// NewDefaultRegistry registers the static, RSS and HTML strategies.
func NewDefaultRegistry(client *http.Client) *trends.Registry {
	return trends.NewRegistry(
		StaticFetcher{},
		NewRSSFetcher(client),
		NewHTMLFetcher(client),
	)
}

// Trends iterates over configured sources in order and returns normalised,
// de-duplicated trend texts. A failing source is skipped unless every source fails.
func (s *StrategySource) Trends(ctx context.Context) ([]string, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("trend registry is not configured")
	}
	if len(s.sources) == 0 {
		return nil, fmt.Errorf("no trend sources configured")
	}

	s.debug("fetch trends", "sources", len(s.sources))

	var (
		aggregated []string
		failures   []error
		seen       = map[string]struct{}{}
	)
	for _, src := range s.sources {
		items, err := s.fetch(ctx, src)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("source %s: %w", src.Name, err)
			}
			failures = append(failures, err)
			s.warn("trend source failed", "source", src.Name, "error", err)
			continue
		}

		kept := 0
		for _, raw := range items {
			trend, ok := textutil.NormalizeTrend(raw)
			if !ok {
				continue
			}
			if src.Filter && !IsJobRelated(trend) {
				continue
			}
			key := strings.ToLower(trend)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			aggregated = append(aggregated, trend)
			kept++
		}
		s.debug("source produced trends", "source", src.Name, "fetched", len(items), "kept", kept)
	}

	if len(failures) == len(s.sources) {
		return nil, fmt.Errorf("all trend sources failed: %w", errors.Join(failures...))
	}

	s.debug("strategy source done", "total_trends", len(aggregated))
	return aggregated, nil
}

func (s *StrategySource) fetch(ctx context.Context, src config.SourceConfig) ([]string, error) {
	strategy, err := s.registry.Resolve(src.Kind)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", src.Name, err)
	}

	items, err := strategy.Fetch(ctx, trends.Request{
		SourceName: src.Name,
		URL:        src.URL,
		Selector:   src.Selector,
		Items:      src.Items,
		Limit:      src.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch source %s: %w", src.Name, err)
	}
	return items, nil
}

// IsJobRelated reports whether text mentions any job keyword.
func IsJobRelated(text string) bool {
	lowered := strings.ToLower(text)
	for _, kw := range jobKeywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *StrategySource) warn(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
