package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"pgcluster/cmd"
	"pgcluster/internal/config"
	"pgcluster/internal/logger"
)

// Build information, set by ldflags.
var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := config.New()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	if err := cmd.Execute(ctx, cfg, log); err != nil {
		log.Error("pgcluster failed", "error", err, "version", version)
		os.Exit(1)
	}
}
