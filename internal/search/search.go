// Package search runs web search queries against pluggable providers and
// joins concurrent queries into position-aligned result sets.
package search

import (
	"context"
	"encoding/json"
)

// Query is a single search request. Text construction is the caller's
// concern; the aggregator only routes it to Provider.
type Query struct {
	Text       string `json:"text"`
	Provider   string `json:"provider,omitempty"`
	Count      int    `json:"count"`
	Credential string `json:"-"`
}

// Result is one hit returned by a provider, in provider ranking order.
type Result struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Content string `json:"content,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

// Provider executes a single query against an external search service.
type Provider interface {
	Name() string
	Search(ctx context.Context, q Query) ([]Result, error)
}

// Flatten concatenates result sets in order without deduplication.
func Flatten(sets ...[]Result) []Result {
	size := 0
	for _, s := range sets {
		size += len(s)
	}

	out := make([]Result, 0, size)
	for _, s := range sets {
		out = append(out, s...)
	}
	return out
}

// Indent renders results as indented JSON for inclusion in model input.
func Indent(results []Result) string {
	if results == nil {
		results = []Result{}
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(data)
}
