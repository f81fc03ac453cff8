package search

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/recon/internal/metrics"
	"github.com/JaimeStill/recon/pkg/faults"
)

// Aggregator routes queries to registered providers and joins concurrent
// result sets.
type Aggregator struct {
	providers  map[string]Provider
	fallback   string
	limit      int
	maxResults int
	logger     *slog.Logger
}

// New builds an Aggregator from configuration. The keyless DuckDuckGo
// provider is always registered; Exa is registered when a token is set.
func New(cfg *Config, logger *slog.Logger) (*Aggregator, error) {
	client := &http.Client{Timeout: cfg.TimeoutDuration()}

	providers := []Provider{NewDuckDuckGo(client, "")}
	if cfg.Token != "" {
		providers = append(providers, NewExa(client, cfg.BaseURL, cfg.Token))
	}

	return NewAggregator(cfg, logger, providers...)
}

// NewAggregator builds an Aggregator over explicit providers.
func NewAggregator(cfg *Config, logger *slog.Logger, providers ...Provider) (*Aggregator, error) {
	a := &Aggregator{
		providers:  make(map[string]Provider, len(providers)),
		fallback:   cfg.Provider,
		limit:      cfg.MaxConcurrency,
		maxResults: cfg.MaxResults,
		logger:     logger.With("system", "search"),
	}

	for _, p := range providers {
		a.providers[p.Name()] = p
	}

	if _, ok := a.providers[a.fallback]; !ok {
		return nil, faults.Configuration("search provider %q is not available", a.fallback)
	}

	return a, nil
}

// Search runs every query concurrently and returns one result set per
// query, aligned by position. The join is all-or-nothing: if any query
// fails, Search returns that error and no results.
func (a *Aggregator) Search(ctx context.Context, queries []Query) ([][]Result, error) {
	resolved := make([]Provider, len(queries))
	for i, q := range queries {
		p, err := a.resolve(q)
		if err != nil {
			return nil, fmt.Errorf("query %d: %w", i, err)
		}
		resolved[i] = p
	}

	results := make([][]Result, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	if a.limit > 0 {
		g.SetLimit(a.limit)
	}

	for i, q := range queries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			set, err := a.run(gctx, resolved[i], a.clamp(q))
			if err != nil {
				return err
			}

			results[i] = set
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// SearchOne runs a single query.
func (a *Aggregator) SearchOne(ctx context.Context, q Query) ([]Result, error) {
	sets, err := a.Search(ctx, []Query{q})
	if err != nil {
		return nil, err
	}
	return sets[0], nil
}

func (a *Aggregator) run(ctx context.Context, p Provider, q Query) ([]Result, error) {
	start := time.Now()
	set, err := p.Search(ctx, q)
	elapsed := time.Since(start)

	if err != nil {
		err = faults.Provider(p.Name(), "search", err)
		metrics.ObserveProviderCall(p.Name(), string(faults.KindOf(err)), elapsed)
		a.logger.WarnContext(ctx, "search failed",
			"provider", p.Name(),
			"query", q.Text,
			"error", err,
		)
		return nil, err
	}

	metrics.ObserveProviderCall(p.Name(), "", elapsed)
	a.logger.DebugContext(ctx, "search completed",
		"provider", p.Name(),
		"query", q.Text,
		"results", len(set),
		"duration", elapsed,
	)

	if set == nil {
		set = []Result{}
	}
	return set, nil
}

func (a *Aggregator) resolve(q Query) (Provider, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, faults.Configuration("query text is empty")
	}
	if q.Count < 1 {
		return nil, faults.Configuration("result count must be positive, got %d", q.Count)
	}

	name := q.Provider
	if name == "" {
		name = a.fallback
	}

	p, ok := a.providers[name]
	if !ok {
		return nil, faults.Configuration("unknown search provider %q", name)
	}
	return p, nil
}

func (a *Aggregator) clamp(q Query) Query {
	if q.Count > a.maxResults {
		q.Count = a.maxResults
	}
	return q
}
