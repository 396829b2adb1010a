package main

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"kesef/internal/amqp"
	"kesef/internal/cli"
	"kesef/internal/log"
	gsheet "kesef/internal/sheets/google"
	"kesef/internal/storage"
	"kesef/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg, err := cli.LoadAndValidateConfig()
	if err == nil {
		err = cfg.ValidateLedger()
	}
	if err != nil {
		cli.Fatal(cli.SetupLogger(log.ComponentWorker, "info"), "Configuration validation failed", err)
	}
	logger := cli.SetupLogger(log.ComponentWorker, cfg.LogLevel)
	logger.Info("Starting kesef-worker")

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize SQLite repository", err)
	}
	defer repo.Close()

	ledger, err := gsheet.New(context.Background(), gsheet.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		cli.Fatal(logger, "Failed to initialize Google Sheets client", err)
	}
	logger.Info("Google Sheets ledger ready", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize AMQP client", err)
	}
	defer client.Close()

	ledgerWorker := worker.NewLedgerWorker(repo, ledger, logger)

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, nil)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.Consume(gctx, ledgerWorker.HandleEvent)
	})
	g.Go(func() error {
		return watchStore(gctx, logger, repo)
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		cli.Fatal(logger, "Event consumption failed", err)
	}

	<-done
	logger.Info("Worker stopped")
}

const storeCheckInterval = time.Minute

type pinger interface {
	Ping(ctx context.Context) error
}

// watchStore logs while the database is unreachable. Events keep being
// retried by the broker in the meantime.
func watchStore(ctx context.Context, logger *log.Logger, store pinger) error {
	ticker := time.NewTicker(storeCheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := store.Ping(ctx); err != nil && ctx.Err() == nil {
				logger.ErrorContext(ctx, "SQLite store unreachable", log.FieldError, err.Error())
			}
		}
	}
}
