package memory

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/JaimeStill/recon/internal/metrics"
	"github.com/JaimeStill/recon/pkg/faults"
)

const provider = "memory"

// Retriever queries a Store and returns passages in the order the store
// ranked them. It never re-ranks, and a query with no matches yields an
// empty slice rather than an error.
type Retriever struct {
	store  Store
	topK   int
	logger *slog.Logger
}

// NewRetriever creates a Retriever returning at most topK passages.
func NewRetriever(store Store, topK int, logger *slog.Logger) *Retriever {
	return &Retriever{
		store:  store,
		topK:   topK,
		logger: logger.With("system", "memory"),
	}
}

// Retrieve ranks passages from the named memories against query.
func (r *Retriever) Retrieve(ctx context.Context, query string, memories ...string) ([]Passage, error) {
	if strings.TrimSpace(query) == "" {
		return nil, faults.Configuration("memory query is empty")
	}
	if len(memories) == 0 {
		return nil, faults.Configuration("memory query names no memories")
	}
	for _, name := range memories {
		if err := ValidateName(name); err != nil {
			return nil, faults.Configuration("%v: %q", err, name)
		}
	}

	start := time.Now()
	passages, err := r.store.Retrieve(ctx, query, memories, r.topK)
	elapsed := time.Since(start)

	if err != nil {
		err = faults.Provider(provider, "retrieve", err)
		metrics.ObserveProviderCall(provider, string(faults.KindOf(err)), elapsed)
		return nil, err
	}
	metrics.ObserveProviderCall(provider, "", elapsed)

	if passages == nil {
		passages = []Passage{}
	}

	r.logger.DebugContext(ctx, "memory retrieved",
		"memories", memories,
		"passages", len(passages),
		"duration", elapsed,
	)

	return passages, nil
}
