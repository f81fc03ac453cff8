package generation

import (
	"context"
	"log/slog"
	"time"

	"github.com/JaimeStill/recon/internal/metrics"
	"github.com/JaimeStill/recon/pkg/faults"
	"github.com/JaimeStill/recon/pkg/formatting"
	"github.com/JaimeStill/recon/pkg/schema"
)

// Invoker validates generation requests, forwards them to a Provider, and
// checks structured output against the requested schema. It never retries.
type Invoker struct {
	provider Provider
	model    string
	logger   *slog.Logger
}

// NewInvoker creates an Invoker that uses model unless a request overrides it.
func NewInvoker(provider Provider, model string, logger *slog.Logger) *Invoker {
	return &Invoker{
		provider: provider,
		model:    model,
		logger:   logger.With("system", "generation", "provider", provider.Name()),
	}
}

// Generate performs req and returns a text or structured Result.
// Structured output that does not conform returns a *schema.ValidationError.
func (i *Invoker) Generate(ctx context.Context, req Request) (Result, error) {
	call, err := i.prepare(req)
	if err != nil {
		return Result{}, err
	}

	start := time.Now()
	text, err := i.provider.Generate(ctx, call)
	elapsed := time.Since(start)

	if err != nil {
		if faults.KindOf(err) != faults.KindConfiguration {
			err = faults.Provider(i.provider.Name(), "generate", err)
		}
		metrics.ObserveProviderCall(i.provider.Name(), string(faults.KindOf(err)), elapsed)
		return Result{}, err
	}
	metrics.ObserveProviderCall(i.provider.Name(), "", elapsed)

	i.logger.DebugContext(ctx, "generation complete",
		"model", call.Model,
		"structured", req.Schema != nil,
		"duration", elapsed,
	)

	if req.Schema == nil {
		return Text(text), nil
	}

	raw, perr := formatting.JSON(text)
	if perr != nil {
		raw = []byte(text)
	}

	value, err := schema.Decode(req.Schema, raw)
	if err != nil {
		i.logger.WarnContext(ctx, "structured output rejected",
			"schema", req.Schema.Name,
			"error", err,
		)
		return Result{}, err
	}

	return Structured(value), nil
}

func (i *Invoker) prepare(req Request) (Call, error) {
	if req.Stream {
		return Call{}, faults.Configuration("streaming generation is not supported")
	}
	if len(req.Turns) == 0 {
		return Call{}, faults.Configuration("generation request has no turns")
	}
	if req.Schema != nil && req.Schema.Name == "" {
		return Call{}, faults.Configuration("output schema requires a name")
	}

	model := req.Model
	if model == "" {
		model = i.model
	}
	if model == "" {
		return Call{}, faults.Configuration("generation model is not configured")
	}

	call := Call{
		Model:        model,
		Instructions: req.Instructions,
		Turns:        req.Turns,
	}
	if req.Schema != nil {
		call.Constraint = &Constraint{
			Name:   req.Schema.Name,
			Schema: req.Schema,
			Strict: true,
		}
	}
	return call, nil
}
