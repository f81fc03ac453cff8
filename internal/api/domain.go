package api

import (
	"context"
	"fmt"

	"github.com/JaimeStill/recon/internal/agents"
	"github.com/JaimeStill/recon/internal/config"
	"github.com/JaimeStill/recon/internal/generation"
	"github.com/JaimeStill/recon/internal/memory"
	"github.com/JaimeStill/recon/internal/prompts"
	"github.com/JaimeStill/recon/internal/search"
	"github.com/JaimeStill/recon/internal/traces"
	"github.com/JaimeStill/recon/internal/workflow"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Agents  *agents.Registry
	Memory  memory.System
	Prompts prompts.System
}

// NewDomain creates all domain systems from the API runtime. ctx bounds
// provider client construction only.
func NewDomain(ctx context.Context, cfg *config.Config, runtime *Runtime) (*Domain, error) {
	db := runtime.Database.Connection()

	embedder, err := memory.NewEmbedder(ctx, &cfg.Memory)
	if err != nil {
		return nil, fmt.Errorf("memory embedder: %w", err)
	}
	memorySystem := memory.New(db, embedder, &cfg.Memory, runtime.Logger)

	promptsSystem := prompts.New(db, runtime.Logger, runtime.Pagination)

	invoker, err := generation.New(ctx, &cfg.Generation, runtime.Logger)
	if err != nil {
		return nil, fmt.Errorf("generation: %w", err)
	}

	aggregator, err := search.New(&cfg.Search, runtime.Logger)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	sink, err := traces.New(cfg.Workflow.Trace, runtime.Storage, runtime.Logger)
	if err != nil {
		return nil, fmt.Errorf("traces: %w", err)
	}

	engine := workflow.NewEngine(workflow.Options{
		Timeout: cfg.Workflow.TimeoutDuration(),
		Sink:    sink,
	}, runtime.Logger)

	registry, err := agents.New(&agents.Runtime{
		Search:       aggregator,
		Memory:       memory.NewRetriever(memorySystem, cfg.Memory.TopK, runtime.Logger),
		Generator:    invoker,
		Instructions: promptsSystem,
		Engine:       engine,
		Logger:       runtime.Logger,
	}, &cfg.Agents)
	if err != nil {
		return nil, fmt.Errorf("agents: %w", err)
	}

	return &Domain{
		Agents:  registry,
		Memory:  memorySystem,
		Prompts: promptsSystem,
	}, nil
}
