package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/recon/internal/api"
	"github.com/JaimeStill/recon/internal/config"
	"github.com/JaimeStill/recon/internal/infrastructure"
	"github.com/JaimeStill/recon/pkg/database"
)

type options struct {
	configPath string
	timeout    time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "recon",
		Short: "Agentic research workflows over web search, memory, and language models",
		Long: `recon runs fixed research workflows (competitive intelligence,
person dossiers, document chat) that combine web search, semantic memory
retrieval, and language model generation.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", config.BaseConfigFile, "path to config.toml")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 0, "overall command timeout (0 for none)")

	root.AddCommand(
		newAgentsCmd(opts),
		newRunCmd(opts),
		newMemoryCmd(opts),
	)
	return root
}

// session is a started infrastructure plus the domain systems built on it.
type session struct {
	cfg    *config.Config
	infra  *infrastructure.Infrastructure
	domain *api.Domain
}

func open(ctx context.Context, opts *options) (*session, error) {
	cfg, err := config.LoadFile(opts.configPath)
	if err != nil {
		return nil, err
	}

	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	runtime := api.NewRuntime(cfg, infra)
	domain, err := api.NewDomain(ctx, cfg, runtime)
	if err != nil {
		return nil, err
	}

	if err := infra.Start(); err != nil {
		return nil, err
	}
	infra.Lifecycle.WaitForStartup()

	if !infra.Database.Ready() {
		infra.Lifecycle.Shutdown(cfg.ShutdownTimeoutDuration())
		return nil, fmt.Errorf("%w: %s:%d", database.ErrNotReady, cfg.Database.Host, cfg.Database.Port)
	}

	return &session{cfg: cfg, infra: infra, domain: domain}, nil
}

func (s *session) close() {
	if err := s.infra.Lifecycle.Shutdown(s.cfg.ShutdownTimeoutDuration()); err != nil {
		s.infra.Logger.Error("shutdown failed", "error", err)
	}
}

// withSession opens a session bounded by the --timeout flag and runs fn.
func withSession(cmd *cobra.Command, opts *options, fn func(ctx context.Context, s *session) error) error {
	ctx := cmd.Context()
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	s, err := open(ctx, opts)
	if err != nil {
		return err
	}
	defer s.close()

	return fn(ctx, s)
}
