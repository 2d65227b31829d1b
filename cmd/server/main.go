package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/zwehtet-dev/talent2income-rating/internal/app"
	"github.com/zwehtet-dev/talent2income-rating/internal/config"
	"github.com/zwehtet-dev/talent2income-rating/pkg/logger"
)

// Build information, set with -ldflags "-X main.version=...".
var (
	version   = "dev"
	gitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version":
			fmt.Printf("rating-service %s (%s)\n", version, gitCommit)
			return
		default:
			fmt.Fprintf(os.Stderr, "unknown command %q\nusage: %s [version]\n", os.Args[1], os.Args[0])
			os.Exit(2)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	cfg.Version = version

	log := logger.NewWithFormat("rating-service", cfg.LogLevel, cfg.LogFormat, os.Stdout)
	slog.SetDefault(log)
	log.Info("starting rating service",
		slog.String("version", version),
		slog.String("commit", gitCommit),
		slog.String("environment", cfg.Environment),
		slog.Int("http_port", cfg.HTTPPort),
	)

	application, err := app.NewApp(cfg, log)
	if err != nil {
		log.Error("failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := application.Run(ctx); err != nil {
		log.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("rating service stopped")
}
