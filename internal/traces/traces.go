// Package traces delivers finished workflow run traces to a log or to blob
// storage, and reads archived traces back.
package traces

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/recon/internal/workflow"
	"github.com/JaimeStill/recon/pkg/storage"
)

// Key returns the blob key of an archived trace.
func Key(agent string, runID uuid.UUID) string {
	return path.Join("traces", agent, runID.String()+".json")
}

// New returns the sink named by kind. TraceNone yields a nil sink.
func New(kind string, store storage.System, logger *slog.Logger) (workflow.Sink, error) {
	switch kind {
	case workflow.TraceNone, "":
		return nil, nil
	case workflow.TraceLog:
		return NewLogSink(logger), nil
	case workflow.TraceStorage:
		if store == nil {
			return nil, fmt.Errorf("storage trace sink requires storage configuration")
		}
		return NewStorageSink(store), nil
	default:
		return nil, fmt.Errorf("unknown trace sink %q", kind)
	}
}

type logSink struct {
	logger *slog.Logger
}

// NewLogSink writes a one-line summary of each trace.
func NewLogSink(logger *slog.Logger) workflow.Sink {
	return &logSink{logger: logger.With("system", "traces")}
}

func (s *logSink) Flush(ctx context.Context, t *workflow.Trace) error {
	s.logger.InfoContext(ctx, "workflow trace",
		"agent", t.Agent,
		"run_id", t.RunID,
		"status", t.Status,
		"steps", strings.Join(t.Steps, ","),
		"events", len(t.Events),
		"failed_step", t.FailedStep,
		"duration", t.FinishedAt.Sub(t.StartedAt),
	)
	return nil
}

type storageSink struct {
	store storage.System
}

// NewStorageSink archives each trace as a JSON document.
func NewStorageSink(store storage.System) workflow.Sink {
	return &storageSink{store: store}
}

func (s *storageSink) Flush(ctx context.Context, t *workflow.Trace) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal trace: %w", err)
	}
	return s.store.Upload(ctx, Key(t.Agent, t.RunID), bytes.NewReader(data), "application/json")
}

// Load reads an archived trace.
func Load(ctx context.Context, store storage.System, agent string, runID uuid.UUID) (*workflow.Trace, error) {
	rc, err := store.Download(ctx, Key(agent, runID))
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var t workflow.Trace
	if err := json.NewDecoder(rc).Decode(&t); err != nil {
		return nil, fmt.Errorf("decode trace: %w", err)
	}
	return &t, nil
}

// List returns the run ids archived for agent in storage listing order.
func List(ctx context.Context, store storage.System, agent string) ([]uuid.UUID, error) {
	keys, err := store.List(ctx, path.Join("traces", agent)+"/")
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(keys))
	for _, key := range keys {
		id, err := uuid.Parse(strings.TrimSuffix(path.Base(key), ".json"))
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
