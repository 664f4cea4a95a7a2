package trends

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Request carries all parameters required to read one configured source.
type Request struct {
	SourceName string
	URL        string
	Selector   string
	Items      []string
	Limit      int
}

// Fetcher captures a single strategy implementation (static list, RSS, HTML, etc.).
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, req Request) ([]string, error)
}

// Registry keeps a mapping from strategy names to their implementations.
type Registry struct {
	fetchers map[string]Fetcher
}

// NewRegistry builds a registry pre-populated with the given fetchers.
func NewRegistry(fetchers ...Fetcher) *Registry {
	r := &Registry{fetchers: map[string]Fetcher{}}
	for _, f := range fetchers {
		r.Register(f)
	}
	return r
}

// Register adds or replaces a fetcher implementation.
func (r *Registry) Register(fetcher Fetcher) {
	if r.fetchers == nil {
		r.fetchers = map[string]Fetcher{}
	}
	r.fetchers[fetcher.Name()] = fetcher
}

// Resolve returns a fetcher by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Fetcher, error) {
	if fetcher, ok := r.fetchers[name]; ok {
		return fetcher, nil
	}
	return nil, fmt.Errorf("trend fetcher %s is not registered (available: %s)", name, strings.Join(r.Names(), ", "))
}

// Names lists registered strategies in lexical order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.fetchers))
	for name := range r.fetchers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
