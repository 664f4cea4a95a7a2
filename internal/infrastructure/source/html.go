package source

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"TrendsAgent/internal/trends"
)

const (
	userAgent       = "TrendsAgent/1.0"
	defaultSelector = "h2 a, h3 a"
)

// HTMLFetcher scrapes headline text from a listing page with a CSS selector.
type HTMLFetcher struct {
	client *http.Client
}

var _ trends.Fetcher = (*HTMLFetcher)(nil)

// NewHTMLFetcher wires an HTTP client; a nil client gets a 20s timeout.
func NewHTMLFetcher(client *http.Client) *HTMLFetcher {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &HTMLFetcher{client: client}
}

// Name identifies the strategy inside the registry.
func (h *HTMLFetcher) Name() string {
	return "html"
}

// Fetch loads the page and collects the text of every selector match.
func (h *HTMLFetcher) Fetch(ctx context.Context, req trends.Request) ([]string, error) {
	if req.URL == "" {
		return nil, fmt.Errorf("no page url provided for source %s", req.SourceName)
	}

	doc, err := h.fetchDocument(ctx, req.URL)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", req.SourceName, err)
	}

	selector := strings.TrimSpace(req.Selector)
	if selector == "" {
		selector = defaultSelector
	}
	return extractHeadlines(doc, selector, req.Limit), nil
}

func (h *HTMLFetcher) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

func extractHeadlines(doc *goquery.Document, selector string, limit int) []string {
	var headlines []string
	doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.Join(strings.Fields(sel.Text()), " ")
		if text != "" {
			headlines = append(headlines, text)
		}
		return limit <= 0 || len(headlines) < limit
	})
	return headlines
}
