// Package agents defines the research agents: fixed step sequences that
// gather evidence through web search and semantic memory and hand it to a
// language model.
package agents

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/recon/internal/generation"
	"github.com/JaimeStill/recon/internal/memory"
	"github.com/JaimeStill/recon/internal/prompts"
	"github.com/JaimeStill/recon/internal/search"
	"github.com/JaimeStill/recon/internal/workflow"
	"github.com/JaimeStill/recon/pkg/faults"
)

// Searcher joins concurrent web searches into position-aligned result sets.
type Searcher interface {
	Search(ctx context.Context, queries []search.Query) ([][]search.Result, error)
}

// Retriever ranks memory passages against a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, memories ...string) ([]memory.Passage, error)
}

// Generator performs one generation.
type Generator interface {
	Generate(ctx context.Context, req generation.Request) (generation.Result, error)
}

// Runtime bundles the collaborators agent steps call.
type Runtime struct {
	Search       Searcher
	Memory       Retriever
	Generator    Generator
	Instructions prompts.Source
	Engine       *workflow.Engine
	Now          func() time.Time
	Logger       *slog.Logger
}

func (rt *Runtime) validate() error {
	switch {
	case rt == nil:
		return faults.Configuration("agent runtime is nil")
	case rt.Search == nil:
		return faults.Configuration("agent runtime has no searcher")
	case rt.Memory == nil:
		return faults.Configuration("agent runtime has no memory retriever")
	case rt.Generator == nil:
		return faults.Configuration("agent runtime has no generator")
	case rt.Engine == nil:
		return faults.Configuration("agent runtime has no workflow engine")
	}
	if rt.Instructions == nil {
		rt.Instructions = prompts.Defaults()
	}
	if rt.Now == nil {
		rt.Now = time.Now
	}
	if rt.Logger == nil {
		rt.Logger = slog.Default()
	}
	return nil
}

// Agent is a named research workflow.
type Agent interface {
	Name() string
	Description() string
	Kind() generation.Kind
	Definition() workflow.Definition
	Run(ctx context.Context, input string) (*Output, error)
}

// StepSummary reports a completed step.
type StepSummary struct {
	ID         string `json:"id"`
	DurationMS int64  `json:"duration_ms"`
}

// Output is what a caller receives from a successful run. Text is set for
// text agents and Value for structured agents.
type Output struct {
	RunID uuid.UUID       `json:"run_id"`
	Agent string          `json:"agent"`
	Kind  generation.Kind `json:"kind"`
	Text  string          `json:"text,omitempty"`
	Value any             `json:"value,omitempty"`
	Steps []StepSummary   `json:"steps"`
}

// Info describes an agent for listings.
type Info struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Kind        generation.Kind `json:"kind"`
	Steps       []string        `json:"steps"`
}

// Describe summarizes a.
func Describe(a Agent) Info {
	def := a.Definition()
	steps := make([]string, len(def.Steps))
	for i, s := range def.Steps {
		steps[i] = s.ID
	}
	return Info{
		Name:        a.Name(),
		Description: a.Description(),
		Kind:        a.Kind(),
		Steps:       steps,
	}
}

// execute trims and checks input, runs the agent's definition, and shapes
// the finished run into an Output. Step errors come back unchanged.
func execute(ctx context.Context, rt *Runtime, a Agent, input string) (*Output, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrInvalidInput
	}

	run, err := rt.Engine.Execute(ctx, a.Definition(), input)
	if err != nil {
		return nil, err
	}

	out := &Output{
		RunID: run.ID,
		Agent: run.Agent,
		Kind:  a.Kind(),
	}
	for _, r := range run.Results() {
		out.Steps = append(out.Steps, StepSummary{ID: r.ID, DurationMS: r.Duration.Milliseconds()})
	}

	switch v := run.Output().(type) {
	case string:
		out.Text = v
	default:
		out.Value = v
	}
	return out, nil
}

// searchStep runs a single query built from the run input.
func searchStep(rt *Runtime, provider string, count int, build func(input string) string) workflow.StepFunc {
	return func(ctx context.Context, run *workflow.Run) (any, error) {
		sets, err := rt.Search.Search(ctx, []search.Query{{
			Text:     build(run.Input),
			Provider: provider,
			Count:    count,
		}})
		if err != nil {
			return nil, err
		}
		return sets[0], nil
	}
}

// retrieveStep queries one memory.
func retrieveStep(rt *Runtime, memoryName string, build func(input string) string) workflow.StepFunc {
	return func(ctx context.Context, run *workflow.Run) (any, error) {
		return rt.Memory.Retrieve(ctx, build(run.Input), memoryName)
	}
}
