package workflow

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType names a trace event.
type EventType string

const (
	EventStepStarted   EventType = "step.started"
	EventStepCompleted EventType = "step.completed"
	EventStepFailed    EventType = "step.failed"
	EventRunFinished   EventType = "run.finished"
)

// Event is one entry in a run trace.
type Event struct {
	Type     EventType     `json:"type"`
	Step     string        `json:"step,omitempty"`
	Time     time.Time     `json:"time"`
	Duration time.Duration `json:"duration,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// Trace is the record of a finished run handed to a Sink.
type Trace struct {
	RunID      uuid.UUID `json:"run_id"`
	Agent      string    `json:"agent"`
	Input      string    `json:"input"`
	Status     Status    `json:"status"`
	Error      string    `json:"error,omitempty"`
	FailedStep string    `json:"failed_step,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Steps      []string  `json:"steps"`
	Events     []Event   `json:"events"`
}

// Sink receives the trace of every finished run.
type Sink interface {
	Flush(ctx context.Context, trace *Trace) error
}

// Trace snapshots the run's trace.
func (r *Run) Trace() *Trace {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t := &Trace{
		RunID:      r.ID,
		Agent:      r.Agent,
		Input:      r.Input,
		Status:     r.status,
		FailedStep: r.failedStep,
		StartedAt:  r.startedAt,
		FinishedAt: r.finishedAt,
		Steps:      make([]string, len(r.results)),
		Events:     make([]Event, len(r.events)),
	}
	if r.err != nil {
		t.Error = r.err.Error()
	}
	for i, res := range r.results {
		t.Steps[i] = res.ID
	}
	copy(t.Events, r.events)
	return t
}
