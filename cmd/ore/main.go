package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"ore/internal/backend"
	"ore/internal/cli"
	"ore/internal/console"
	"ore/internal/core"
	"ore/internal/log"
	"ore/internal/services"
)

func main() {
	cli.LoadEnvFile()

	// Prompts own stdout, logs go to stderr.
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Stderr, log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend).Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, log.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", log.FieldError, err)
			}
		}
	}()

	logger.Info("Starting ore",
		log.FieldBackend, cfg.DataBackend,
		log.FieldLocation, result.Backend.Location(),
		"standard_day", cfg.StandardMinutes().String())

	agg := services.NewAggregator(core.NewCalculator(cfg.StandardMinutes()))
	err = console.New(os.Stdin, os.Stdout, agg, result.Backend).Run(ctx)

	var corrupt *core.CorruptHistoryError
	var persist *core.PersistenceError
	switch {
	case err == nil:
	case errors.As(err, &corrupt):
		logger.Error("Aborted on corrupt history", log.FieldLocation, corrupt.Source, log.FieldError, corrupt.Err)
		exit(result, 2)
	case errors.As(err, &persist):
		logger.Error("History not saved", log.FieldLocation, persist.Path, log.FieldError, persist.Err)
		exit(result, 3)
	default:
		logger.Error("Session failed", log.FieldError, err)
		exit(result, 1)
	}
}

// exit runs the backend cleanup before leaving, since os.Exit skips defers.
func exit(result *backend.BackendResult, code int) {
	if result.Cleanup != nil {
		_ = result.Cleanup()
	}
	os.Exit(code)
}
