package agents

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/recon/pkg/faults"
)

// Registry resolves agents by name.
type Registry struct {
	agents map[string]Agent
	order  []string
	logger *slog.Logger
}

// New builds the registry of research agents over rt.
func New(rt *Runtime, cfg *Config) (*Registry, error) {
	if err := rt.validate(); err != nil {
		return nil, err
	}
	return NewRegistry(rt.Logger,
		NewInitiatives(rt, cfg.Initiatives),
		NewDossier(rt, cfg.Dossier),
		NewDocuments(rt, cfg.Documents),
	)
}

// NewRegistry builds a registry over explicit agents. Names must be unique.
func NewRegistry(logger *slog.Logger, agents ...Agent) (*Registry, error) {
	r := &Registry{
		agents: make(map[string]Agent, len(agents)),
		logger: logger.With("system", "agents"),
	}
	for _, a := range agents {
		if _, ok := r.agents[a.Name()]; ok {
			return nil, faults.Configuration("duplicate agent %q", a.Name())
		}
		if err := a.Definition().Validate(); err != nil {
			return nil, err
		}
		r.agents[a.Name()] = a
		r.order = append(r.order, a.Name())
	}
	return r, nil
}

// Get returns the named agent.
func (r *Registry) Get(name string) (Agent, error) {
	a, ok := r.agents[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAgent, name)
	}
	return a, nil
}

// List describes every agent in registration order.
func (r *Registry) List() []Info {
	infos := make([]Info, len(r.order))
	for i, name := range r.order {
		infos[i] = Describe(r.agents[name])
	}
	return infos
}

// Run executes the named agent against input.
func (r *Registry) Run(ctx context.Context, name, input string) (*Output, error) {
	a, err := r.Get(name)
	if err != nil {
		return nil, err
	}

	out, err := a.Run(ctx, input)
	if err != nil {
		r.logger.WarnContext(ctx, "agent run failed", "agent", name, "error", err)
		return nil, err
	}
	return out, nil
}

// Handler returns the HTTP handler for agent endpoints.
func (r *Registry) Handler() *Handler {
	return NewHandler(r, r.logger)
}
