package source

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"TrendsAgent/internal/trends"
)

// RSSFetcher reads item titles from an RSS or Atom feed.
type RSSFetcher struct {
	parser *gofeed.Parser
}

var _ trends.Fetcher = (*RSSFetcher)(nil)

// NewRSSFetcher wires an HTTP client into the feed parser.
func NewRSSFetcher(client *http.Client) *RSSFetcher {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = userAgent
	return &RSSFetcher{parser: parser}
}

// Name identifies the strategy inside the registry.
func (f *RSSFetcher) Name() string {
	return "rss"
}

// Fetch returns feed item titles in feed order.
func (f *RSSFetcher) Fetch(ctx context.Context, req trends.Request) ([]string, error) {
	if req.URL == "" {
		return nil, fmt.Errorf("no feed url provided for source %s", req.SourceName)
	}

	feed, err := f.parser.ParseURLWithContext(req.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", req.URL, err)
	}

	titles := make([]string, 0, len(feed.Items))
	for _, item := range feed.Items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		titles = append(titles, title)
		if req.Limit > 0 && len(titles) >= req.Limit {
			break
		}
	}
	return titles, nil
}
