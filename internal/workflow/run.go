package workflow

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// StepResult is the completed value of one step.
type StepResult struct {
	ID       string        `json:"id"`
	Value    any           `json:"value"`
	Duration time.Duration `json:"duration"`
}

// Run is a single execution of a Definition. Only the engine mutates it;
// step functions read prior results through Result and Value.
type Run struct {
	ID    uuid.UUID
	Agent string
	Input string

	mu         sync.RWMutex
	status     Status
	err        error
	failedStep string
	startedAt  time.Time
	finishedAt time.Time
	results    []StepResult
	index      map[string]int
	hooks      []func(context.Context) error
	events     []Event
}

func newRun(agent, input string) *Run {
	return &Run{
		ID:     uuid.New(),
		Agent:  agent,
		Input:  input,
		status: StatusPending,
		index:  make(map[string]int),
	}
}

// Status returns the current lifecycle state.
func (r *Run) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}

// Err returns the failure cause of a failed run.
func (r *Run) Err() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.err
}

// FailedStep returns the id of the step that failed the run, if any.
func (r *Run) FailedStep() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.failedStep
}

// StartedAt returns when the run began executing.
func (r *Run) StartedAt() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.startedAt
}

// FinishedAt returns when teardown completed.
func (r *Run) FinishedAt() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.finishedAt
}

// Result returns the value recorded for step id.
func (r *Run) Result(id string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[id]
	if !ok {
		return nil, false
	}
	return r.results[i].Value, true
}

// Results returns completed step results in execution order.
func (r *Run) Results() []StepResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]StepResult, len(r.results))
	copy(out, r.results)
	return out
}

// Output returns the last completed step's value.
func (r *Run) Output() any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.results) == 0 {
		return nil
	}
	return r.results[len(r.results)-1].Value
}

// OnTeardown registers fn to run when the run finishes. Hooks run in
// reverse registration order on a context that is never canceled.
func (r *Run) OnTeardown(fn func(ctx context.Context) error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks = append(r.hooks, fn)
}

func (r *Run) start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = StatusRunning
	r.startedAt = time.Now()
}

func (r *Run) complete(id string, value any, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.index[id] = len(r.results)
	r.results = append(r.results, StepResult{ID: id, Value: value, Duration: d})
}

func (r *Run) fail(step string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = StatusFailed
	r.failedStep = step
	r.err = err
}

func (r *Run) succeed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status == StatusRunning {
		r.status = StatusSucceeded
	}
}

func (r *Run) finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finishedAt = time.Now()
}

func (r *Run) takeHooks() []func(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	hooks := r.hooks
	r.hooks = nil
	return hooks
}

func (r *Run) record(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	r.events = append(r.events, e)
}
