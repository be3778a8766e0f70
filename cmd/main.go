package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/juliatong/AI-bee-Meta/internal/adapter/bolt"
	httpadapter "github.com/juliatong/AI-bee-Meta/internal/adapter/http"
	"github.com/juliatong/AI-bee-Meta/internal/adapter/meta"
	"github.com/juliatong/AI-bee-Meta/internal/adapter/postgres"
	"github.com/juliatong/AI-bee-Meta/internal/adapter/scheduler"
	"github.com/juliatong/AI-bee-Meta/internal/adapter/usecase"
	"github.com/juliatong/AI-bee-Meta/internal/config"
	"github.com/juliatong/AI-bee-Meta/internal/db"
)

// main is the entry point of the provisioning service. It loads
// configuration, optionally runs database migrations, opens the record
// store and the job table, wires the gateway, use case and scheduler, then
// starts the HTTP server. On receiving a termination signal it stops the
// scheduler and gracefully shuts down the server.
func main() {
	exitCode := 1
	defer func() {
		if r := recover(); r != nil {
			panic(r)
		} else {
			os.Exit(exitCode)
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(cfg.Log.Handler(os.Stdout))

	if cfg.Psql.RunMigrations {
		if err = db.Migrate(cfg.Psql.Addr.String()); err != nil {
			logger.Error("migration error", slog.Any("error", err))
		} else {
			logger.Info("migrations applied successfully")
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.Psql)
	if err != nil {
		logger.Error("database connection error", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	store, err := bolt.Open(cfg.Store.Path)
	if err != nil {
		logger.Error("state store error", slog.Any("error", err))
		os.Exit(1)
	}
	defer store.Close()

	gateway := meta.NewClient(cfg.Meta, logger)
	svc := usecase.NewCampaignService(gateway, store, logger)

	jobs := postgres.NewJobRepository(pool)
	sched := scheduler.New(cfg.Scheduler, jobs, store, svc, logger)
	svc.AttachScheduler(sched)

	// reloads pending jobs; past-due ones fire immediately
	if err = sched.Start(ctx); err != nil {
		logger.Error("scheduler start error", slog.Any("error", err))
		os.Exit(1)
	}
	defer sched.Stop()

	handler := httpadapter.NewHandler(svc, logger)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler: handler.Router(),
	}

	go func() {
		logger.Info("server listening", slog.Int("port", int(cfg.HTTP.Port)))
		if err = srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	value := <-quit
	exitCode = 128 + int(value.(syscall.Signal))

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()
	if err = srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
	} else {
		logger.Info("server gracefully stopped")
	}
}
