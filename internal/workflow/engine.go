package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/JaimeStill/recon/internal/metrics"
	"github.com/JaimeStill/recon/pkg/faults"
)

// Recorder observes step and run outcomes.
type Recorder interface {
	StepFinished(agent, step string, status Status, d time.Duration)
	RunFinished(agent string, status Status)
}

type metricsRecorder struct{}

// MetricsRecorder reports outcomes to the Prometheus collectors.
func MetricsRecorder() Recorder { return metricsRecorder{} }

func (metricsRecorder) StepFinished(agent, step string, status Status, d time.Duration) {
	metrics.IncStep(agent, step, string(status))
	metrics.ObserveStep(agent, step, d)
}

func (metricsRecorder) RunFinished(agent string, status Status) {
	metrics.IncRun(agent, string(status))
}

// Options configure an Engine. A nil Sink discards traces and a nil
// Recorder reports to metrics.
type Options struct {
	Timeout  time.Duration
	Sink     Sink
	Recorder Recorder
}

// Engine executes workflow definitions.
type Engine struct {
	timeout  time.Duration
	sink     Sink
	recorder Recorder
	logger   *slog.Logger
}

// NewEngine creates an Engine.
func NewEngine(opts Options, logger *slog.Logger) *Engine {
	recorder := opts.Recorder
	if recorder == nil {
		recorder = MetricsRecorder()
	}
	return &Engine{
		timeout:  opts.Timeout,
		sink:     opts.Sink,
		recorder: recorder,
		logger:   logger.With("system", "workflow"),
	}
}

// Execute runs def against input and returns the finished run.
//
// Steps execute in declaration order on the calling goroutine. The first
// step error fails the run, skips the remaining steps, and is returned
// unchanged. Teardown runs exactly once whether the run succeeds, fails,
// panics, or is canceled. An invalid definition returns a configuration
// error and no run.
func (e *Engine) Execute(ctx context.Context, def Definition, input string) (*Run, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	run := newRun(def.Name, input)
	s := e.scope(run)
	defer s.close(ctx)

	run.start()
	e.logger.InfoContext(ctx, "workflow run started",
		"agent", run.Agent,
		"run_id", run.ID,
		"steps", len(def.Steps),
	)

	for _, step := range def.Steps {
		// a step reached after cancellation fails without starting
		if err := ctx.Err(); err != nil {
			e.failStep(ctx, run, step, err, 0)
			return run, err
		}

		if err := e.step(ctx, run, step); err != nil {
			return run, err
		}
	}

	run.succeed()
	return run, nil
}

func (e *Engine) step(ctx context.Context, run *Run, step Step) error {
	run.record(Event{Type: EventStepStarted, Step: step.ID})
	start := time.Now()

	value, err := e.invoke(ctx, run, step)
	elapsed := time.Since(start)

	if err != nil {
		e.failStep(ctx, run, step, err, elapsed)
		return err
	}

	run.complete(step.ID, value, elapsed)
	run.record(Event{Type: EventStepCompleted, Step: step.ID, Duration: elapsed})
	e.recorder.StepFinished(run.Agent, step.ID, StatusSucceeded, elapsed)

	e.logger.DebugContext(ctx, "workflow step completed",
		"agent", run.Agent,
		"run_id", run.ID,
		"step", step.ID,
		"duration", elapsed,
	)
	return nil
}

func (e *Engine) failStep(ctx context.Context, run *Run, step Step, err error, elapsed time.Duration) {
	run.fail(step.ID, err)
	run.record(Event{Type: EventStepFailed, Step: step.ID, Duration: elapsed, Error: err.Error()})
	e.recorder.StepFinished(run.Agent, step.ID, StatusFailed, elapsed)

	e.logger.WarnContext(ctx, "workflow step failed",
		"agent", run.Agent,
		"run_id", run.ID,
		"step", step.ID,
		"kind", faults.KindOf(err),
		"error", err,
	)
}

func (e *Engine) invoke(ctx context.Context, run *Run, step Step) (value any, err error) {
	defer func() {
		if p := recover(); p != nil {
			e.logger.ErrorContext(ctx, "workflow step panicked",
				"agent", run.Agent,
				"run_id", run.ID,
				"step", step.ID,
				"panic", p,
				"stack", string(debug.Stack()),
			)
			err = fmt.Errorf("%w: %s: %v", ErrStepPanic, step.ID, p)
		}
	}()
	return step.Run(ctx, run)
}

func runHook(ctx context.Context, hook func(context.Context) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("teardown hook panicked: %v", p)
		}
	}()
	return hook(ctx)
}

type scope struct {
	engine *Engine
	run    *Run
	once   sync.Once
}

func (e *Engine) scope(run *Run) *scope {
	return &scope{engine: e, run: run}
}

func (s *scope) close(ctx context.Context) {
	s.once.Do(func() {
		s.engine.teardown(context.WithoutCancel(ctx), s.run)
	})
}

func (e *Engine) teardown(ctx context.Context, run *Run) {
	hooks := run.takeHooks()
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := runHook(ctx, hooks[i]); err != nil {
			e.logger.WarnContext(ctx, "teardown hook failed",
				"agent", run.Agent,
				"run_id", run.ID,
				"error", err,
			)
		}
	}

	run.finish()
	run.record(Event{Type: EventRunFinished})

	status := run.Status()
	e.recorder.RunFinished(run.Agent, status)

	if e.sink != nil {
		if err := e.sink.Flush(ctx, run.Trace()); err != nil {
			e.logger.WarnContext(ctx, "trace flush failed",
				"agent", run.Agent,
				"run_id", run.ID,
				"error", err,
			)
		}
	}

	attrs := []any{
		"agent", run.Agent,
		"run_id", run.ID,
		"status", status,
		"duration", run.FinishedAt().Sub(run.StartedAt()),
	}
	if status == StatusFailed {
		attrs = append(attrs, "failed_step", run.FailedStep(), "error", run.Err())
	}
	e.logger.InfoContext(ctx, "workflow run finished", attrs...)
}
