// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"context"
	"net/http"

	"github.com/JaimeStill/recon/internal/config"
	"github.com/JaimeStill/recon/internal/infrastructure"
	"github.com/JaimeStill/recon/pkg/middleware"
	"github.com/JaimeStill/recon/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
func NewModule(ctx context.Context, cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)

	domain, err := NewDomain(ctx, cfg, runtime)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	if err := registerRoutes(mux, domain, runtime, cfg.API.BasePath, cfg.Version); err != nil {
		return nil, err
	}

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))

	return m, nil
}
