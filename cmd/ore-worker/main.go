package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"ore/internal/amqp"
	"ore/internal/backend"
	"ore/internal/cli"
	"ore/internal/log"
	gsheet "ore/internal/sheets/google"
	"ore/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Stdout, log.ComponentWorker)
	logger.Info("Starting ore-worker")

	cfg := cli.LoadAndValidateWorkerConfig(logger)

	sqliteRepo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer sqliteRepo.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		if err := amqpClient.Close(); err != nil {
			logger.Warn("AMQP close failed", log.FieldError, err)
		}
	})

	sheetsClient, err := gsheet.NewClient(ctx, backend.GoogleConfig(cfg))
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", log.FieldLocation, sheetsClient.Location())

	syncWorker := worker.NewSheetsSyncWorker(sqliteRepo, sheetsClient, sheetsClient, cfg.SyncBatchSize)

	// Pick up months saved while the worker was down.
	logger.Info("Performing startup sync check...")
	if err := syncWorker.StartupSyncCheck(ctx); err != nil {
		logger.Error("Failed startup sync check", log.FieldError, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeMonthSync(gctx, syncWorker.HandleMonthSync)
	})
	g.Go(func() error {
		return syncWorker.Run(gctx, cfg.SyncInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", log.FieldError, err)
		_ = amqpClient.Close()
		sqliteRepo.Close()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
}
