package main

import (
	"context"
	"net/http"

	"github.com/JaimeStill/recon/internal/api"
	"github.com/JaimeStill/recon/internal/config"
	"github.com/JaimeStill/recon/internal/infrastructure"
	"github.com/JaimeStill/recon/internal/metrics"
	"github.com/JaimeStill/recon/pkg/handlers"
	"github.com/JaimeStill/recon/pkg/module"
)

type Modules struct {
	API *module.Module
}

func NewModules(ctx context.Context, infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(ctx, cfg, infra)
	if err != nil {
		return nil, err
	}
	return &Modules{API: apiModule}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
}

type readiness struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Database bool   `json:"database"`
	Storage  string `json:"storage"`
}

func buildRouter(infra *infrastructure.Infrastructure, version string) *module.Router {
	router := module.NewRouter()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		body := readiness{
			Status:   "ready",
			Version:  version,
			Database: infra.Database.Ready(),
			Storage:  "disabled",
		}
		if infra.Storage != nil {
			body.Storage = "enabled"
		}

		status := http.StatusOK
		if !infra.Lifecycle.Ready() {
			body.Status = "not ready"
			status = http.StatusServiceUnavailable
		}
		handlers.RespondJSON(w, status, body)
	})

	router.Handle("GET /metrics", metrics.Handler())

	return router
}
