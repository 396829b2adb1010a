package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"kesef/internal/backend"
	"kesef/internal/cache"
	"kesef/internal/cli"
	"kesef/internal/core"
	apphttp "kesef/internal/http"
	"kesef/internal/log"
	"kesef/internal/services"
)

const cacheCleanupInterval = time.Minute

func main() {
	cli.LoadEnvFile()
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.Fatal(cli.SetupLogger(log.ComponentApp, "info"), "Configuration validation failed", err)
	}
	logger := cli.SetupLogger(log.ComponentApp, cfg.LogLevel)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		cli.Fatal(logger, "Invalid backend configuration", err)
	}
	res, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize backend", err)
	}

	userCache := cache.NewLRUCache[core.User](cfg.UserCacheSize, cfg.UserCacheTTL)
	caches := cache.NewManager()
	caches.Register(userCache)
	caches.StartCleanup(cacheCleanupInterval)

	svc := apphttp.Services{
		Users:        services.NewUserService(res.Store, cfg.AdminEmails, userCache),
		Transactions: services.NewTransactionService(res.Store, res.Publisher, cfg.TransactionListLimit),
		Budget:       services.NewBudgetService(res.Store),
	}
	srv := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Options{
		Logger:             logger,
		Store:              res.Store,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	_, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(ctx context.Context) error {
		err := srv.Shutdown(ctx)
		caches.Stop()
		return errors.Join(err, res.Cleanup())
	})

	logger.Info("Starting kesef server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"events", res.Publisher != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		cli.Fatal(logger, "Server error", err)
	}

	<-done
	logger.Info("Server stopped gracefully")
}
