// Package memory implements the semantic memory domain: named collections
// of embedded passages that research workflows query for prior context.
package memory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Passage is a ranked text fragment returned from a memory query.
type Passage struct {
	Text   string  `json:"text"`
	Score  float64 `json:"score"`
	Source string  `json:"source,omitempty"`
	Memory string  `json:"memory,omitempty"`
}

// Memory summarizes a named collection.
type Memory struct {
	Name      string    `json:"name"`
	Documents int       `json:"documents"`
	Passages  int       `json:"passages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Document is a source ingested into a memory.
type Document struct {
	ID          uuid.UUID `json:"id"`
	Memory      string    `json:"memory"`
	Source      string    `json:"source"`
	ContentType string    `json:"content_type"`
	PageCount   *int      `json:"page_count"`
	Passages    int       `json:"passages"`
	CreatedAt   time.Time `json:"created_at"`
}

// IngestCommand carries extracted text to split, embed, and store.
type IngestCommand struct {
	Memory      string
	Source      string
	ContentType string
	Text        string
	PageCount   *int
}

// Store ranks passages from the named memories by relevance to query.
// Implementations return at most topK passages, best first.
type Store interface {
	Retrieve(ctx context.Context, query string, memories []string, topK int) ([]Passage, error)
}

// Embedder converts text into embedding vectors. Task distinguishes
// document embeddings from query embeddings for models that support it.
type Embedder interface {
	Embed(ctx context.Context, texts []string, task Task) ([][]float32, error)
}

// Task identifies the intended use of an embedding.
type Task string

const (
	TaskDocument Task = "RETRIEVAL_DOCUMENT"
	TaskQuery    Task = "RETRIEVAL_QUERY"
)

// Join concatenates passage text in ranking order.
func Join(passages []Passage, sep string) string {
	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Text
	}
	return strings.Join(texts, sep)
}
