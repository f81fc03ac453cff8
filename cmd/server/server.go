package main

import (
	"context"
	"time"

	"github.com/JaimeStill/recon/internal/config"
	"github.com/JaimeStill/recon/internal/infrastructure"
	"github.com/JaimeStill/recon/pkg/formatting"
)

// Server owns the infrastructure, the mounted modules, and the listener.
type Server struct {
	infra *infrastructure.Infrastructure
	http  *httpServer
}

func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	modules, err := NewModules(ctx, infra, cfg)
	if err != nil {
		return nil, err
	}

	router := buildRouter(infra, cfg.Version)
	modules.Mount(router)

	infra.Logger.Info(
		"server initialized",
		"addr", cfg.Server.Addr(),
		"version", cfg.Version,
		"env", cfg.Env(),
		"generation", cfg.Generation.Provider,
		"search", cfg.Search.Provider,
		"trace", cfg.Workflow.Trace,
		"max_upload", formatting.FormatBytes(cfg.API.MaxUploadSizeBytes(), 0),
	)

	return &Server{
		infra: infra,
		http:  newHTTPServer(&cfg.Server, router, infra.Logger),
	}, nil
}

// Run starts every subsystem, blocks until ctx is done, then shuts down
// within timeout.
func (s *Server) Run(ctx context.Context, timeout time.Duration) error {
	if err := s.start(); err != nil {
		s.infra.Lifecycle.Shutdown(timeout)
		return err
	}

	<-ctx.Done()
	s.infra.Logger.Info("shutdown signal received")
	return s.infra.Lifecycle.Shutdown(timeout)
}

func (s *Server) start() error {
	s.infra.Logger.Info("starting service")

	if err := s.infra.Start(); err != nil {
		return err
	}
	if err := s.http.Start(s.infra.Lifecycle); err != nil {
		return err
	}

	go func() {
		s.infra.Lifecycle.WaitForStartup()
		if s.infra.Lifecycle.Ready() {
			s.infra.Logger.Info("all subsystems ready")
			return
		}
		s.infra.Logger.Warn("startup finished with subsystems not ready")
	}()
	return nil
}
