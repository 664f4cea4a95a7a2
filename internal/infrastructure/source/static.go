package source

import (
	"context"

	"TrendsAgent/internal/trends"
)

// StaticFetcher returns the configured item list verbatim.
type StaticFetcher struct{}

var _ trends.Fetcher = StaticFetcher{}

// Name identifies the strategy inside the registry.
func (StaticFetcher) Name() string {
	return "static"
}

// Fetch copies the request items so callers may mutate the result.
func (StaticFetcher) Fetch(_ context.Context, req trends.Request) ([]string, error) {
	out := make([]string, len(req.Items))
	copy(out, req.Items)
	return out, nil
}
