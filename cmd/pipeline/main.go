package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"mfspulse/internal/app"
	"mfspulse/internal/config"
	"mfspulse/internal/infrastructure"
)

func main() {
	refresh := flag.Bool("refresh", false, "ignore any cached result and re-run the source chain")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall run timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger, using default: %v\n", err)
		logger = slog.Default()
	}

	if err := cfg.EnsureDirectories(); err != nil {
		logger.Error("failed to ensure directories", slog.String("error", err.Error()))
		os.Exit(1)
	}

	shutdownTracing, err := infrastructure.InitTracing(context.Background())
	if err != nil {
		logger.Warn("tracing unavailable", slog.String("error", err.Error()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	service := app.BuildDataService(cfg, logger)

	run := service.Result
	if *refresh {
		run = service.Refresh
	}

	result, err := run(ctx)
	if err != nil {
		logger.Error("pipeline failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	artifact, err := service.WriteArtifact(ctx)
	if err != nil {
		logger.Error("failed to write artifact", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("pipeline complete",
		slog.String("run_id", result.RunID),
		slog.String("provenance", string(result.Provenance)),
		slog.Int("observations", result.Series.Len()),
		slog.String("artifact", artifact))

	if shutdownTracing != nil {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer flushCancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("trace flush failed", slog.String("error", err.Error()))
		}
	}
	infrastructure.CloseLogFile()
}
