// Command server runs the recon HTTP service.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/JaimeStill/recon/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	srv, err := NewServer(ctx, cfg)
	if err != nil {
		log.Fatalf("init server: %v", err)
	}

	if err := srv.Run(ctx, cfg.ShutdownTimeoutDuration()); err != nil {
		log.Fatalf("server: %v", err)
	}
}
