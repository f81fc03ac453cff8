package memory

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/recon/pkg/repository"
)

var dbErrors = repository.Errors{NotFound: ErrNotFound, Duplicate: ErrDuplicate}

// System defines the public contract for memory domain operations.
type System interface {
	Store

	Handler(maxUploadSize int64) *Handler

	Memories(ctx context.Context) ([]Memory, error)
	Ingest(ctx context.Context, cmd IngestCommand) (*Document, error)
	Delete(ctx context.Context, name string) error
}

type repo struct {
	db       *sql.DB
	embedder Embedder
	chunk    func(string) []string
	logger   *slog.Logger
}

// New creates a PostgreSQL and pgvector backed memory repository.
func New(db *sql.DB, embedder Embedder, cfg *Config, logger *slog.Logger) System {
	return &repo{
		db:       db,
		embedder: embedder,
		chunk: func(text string) []string {
			return Chunk(text, cfg.ChunkSize, cfg.ChunkOverlap)
		},
		logger: logger.With("system", "memory"),
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, maxUploadSize)
}

const retrieveQuery = `
	SELECT p.content, d.source, m.name, 1 - (p.embedding <=> $1::vector) AS score
	FROM memory_passages p
	JOIN memory_documents d ON d.id = p.document_id
	JOIN memories m ON m.id = d.memory_id
	WHERE m.name = ANY($2)
	ORDER BY p.embedding <=> $1::vector, p.id
	LIMIT $3`

func (r *repo) Retrieve(ctx context.Context, query string, memories []string, topK int) ([]Passage, error) {
	vectors, err := r.embedder.Embed(ctx, []string{query}, TaskQuery)
	if err != nil {
		return nil, err
	}

	args := []any{FormatVector(vectors[0]), memories, topK}
	passages, err := repository.QueryMany(ctx, r.db, retrieveQuery, args, scanPassage)
	if err != nil {
		return nil, fmt.Errorf("query passages: %w", err)
	}
	return passages, nil
}

const memoriesQuery = `
	SELECT m.name, m.created_at, m.updated_at,
		COUNT(DISTINCT d.id) AS documents,
		COUNT(p.id) AS passages
	FROM memories m
	LEFT JOIN memory_documents d ON d.memory_id = m.id
	LEFT JOIN memory_passages p ON p.document_id = d.id
	GROUP BY m.id
	ORDER BY m.name`

func (r *repo) Memories(ctx context.Context) ([]Memory, error) {
	list, err := repository.QueryMany(ctx, r.db, memoriesQuery, nil, scanMemory)
	if err != nil {
		return nil, fmt.Errorf("query memories: %w", err)
	}
	return list, nil
}

func (r *repo) Ingest(ctx context.Context, cmd IngestCommand) (*Document, error) {
	if err := ValidateName(cmd.Memory); err != nil {
		return nil, err
	}

	chunks := r.chunk(cmd.Text)
	if len(chunks) == 0 {
		return nil, ErrEmptyDocument
	}

	vectors, err := r.embedder.Embed(ctx, chunks, TaskDocument)
	if err != nil {
		return nil, err
	}

	source := strings.TrimSpace(cmd.Source)
	if source == "" {
		source = "untitled"
	}

	doc, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Document, error) {
		var memoryID uuid.UUID
		if err := tx.QueryRowContext(ctx, `
			INSERT INTO memories(name) VALUES ($1)
			ON CONFLICT (name) DO UPDATE SET updated_at = now()
			RETURNING id`,
			cmd.Memory,
		).Scan(&memoryID); err != nil {
			return Document{}, fmt.Errorf("upsert memory: %w", err)
		}

		d := Document{
			ID:          uuid.New(),
			Memory:      cmd.Memory,
			Source:      source,
			ContentType: cmd.ContentType,
			PageCount:   cmd.PageCount,
			Passages:    len(chunks),
		}

		if err := tx.QueryRowContext(ctx, `
			INSERT INTO memory_documents(id, memory_id, source, content_type, page_count)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING created_at`,
			d.ID, memoryID, d.Source, d.ContentType, d.PageCount,
		).Scan(&d.CreatedAt); err != nil {
			return Document{}, fmt.Errorf("insert document: %w", err)
		}

		for i, chunk := range chunks {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO memory_passages(document_id, position, content, embedding)
				VALUES ($1, $2, $3, $4::vector)`,
				d.ID, i, chunk, FormatVector(vectors[i]),
			); err != nil {
				return Document{}, fmt.Errorf("insert passage %d: %w", i, err)
			}
		}

		return d, nil
	})

	if err != nil {
		return nil, dbErrors.Map(err)
	}

	r.logger.Info("document ingested",
		"memory", doc.Memory,
		"source", doc.Source,
		"passages", doc.Passages,
	)
	return &doc, nil
}

func (r *repo) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(ctx, tx, "DELETE FROM memories WHERE name = $1", name)
	})
	if err != nil {
		return dbErrors.Map(err)
	}

	r.logger.Info("memory deleted", "memory", name)
	return nil
}

func scanPassage(s repository.Scanner) (Passage, error) {
	var p Passage
	err := s.Scan(&p.Text, &p.Source, &p.Memory, &p.Score)
	return p, err
}

func scanMemory(s repository.Scanner) (Memory, error) {
	var m Memory
	err := s.Scan(&m.Name, &m.CreatedAt, &m.UpdatedAt, &m.Documents, &m.Passages)
	return m, err
}
