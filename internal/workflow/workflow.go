// Package workflow runs research workflows: named steps executed strictly in
// declaration order, where each step may read the results of the steps
// before it. A run fails on the first step error, skips the remaining steps,
// and always tears down exactly once.
package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/JaimeStill/recon/pkg/faults"
)

// Sentinel errors for workflow operations.
var (
	ErrStepPanic   = errors.New("step panicked")
	ErrUnknownStep = errors.New("no result for step")
	ErrResultType  = errors.New("unexpected result type")
)

// Status is the lifecycle state of a run.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// StepFunc performs one step. It may read earlier results from run and
// register teardown hooks, but must not modify recorded results.
type StepFunc func(ctx context.Context, run *Run) (any, error)

// Step is a named unit of work within a Definition.
type Step struct {
	ID  string
	Run StepFunc
}

// Definition is an ordered list of steps executed under a workflow name.
type Definition struct {
	Name  string
	Steps []Step
}

// Validate reports a configuration error for an unnamed definition, an
// empty step list, a blank or duplicate step id, or a nil step function.
func (d Definition) Validate() error {
	if d.Name == "" {
		return faults.Configuration("workflow name is required")
	}
	if len(d.Steps) == 0 {
		return faults.Configuration("workflow %s has no steps", d.Name)
	}

	seen := make(map[string]bool, len(d.Steps))
	for i, s := range d.Steps {
		if s.ID == "" {
			return faults.Configuration("workflow %s: step %d has no id", d.Name, i)
		}
		if seen[s.ID] {
			return faults.Configuration("workflow %s: duplicate step id %q", d.Name, s.ID)
		}
		if s.Run == nil {
			return faults.Configuration("workflow %s: step %q has no function", d.Name, s.ID)
		}
		seen[s.ID] = true
	}
	return nil
}

// Value returns the result recorded for step id as a T.
func Value[T any](run *Run, id string) (T, error) {
	var zero T
	v, ok := run.Result(id)
	if !ok {
		return zero, fmt.Errorf("%w %q", ErrUnknownStep, id)
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: step %q produced %T", ErrResultType, id, v)
	}
	return t, nil
}
