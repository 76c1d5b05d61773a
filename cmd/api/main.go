package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/sempreviva/dashboard/internal/classifier"
	"github.com/sempreviva/dashboard/internal/config"
	"github.com/sempreviva/dashboard/internal/dashboard"
	"github.com/sempreviva/dashboard/internal/database"
	apiHttp "github.com/sempreviva/dashboard/internal/http"
	dashboardHandler "github.com/sempreviva/dashboard/internal/http/dashboard"
	txHandler "github.com/sempreviva/dashboard/internal/http/transaction"
	uploadHandler "github.com/sempreviva/dashboard/internal/http/upload"
	"github.com/sempreviva/dashboard/internal/importer"
	"github.com/sempreviva/dashboard/internal/insight"
	"github.com/sempreviva/dashboard/internal/transaction"
	txStore "github.com/sempreviva/dashboard/internal/transaction/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	if err := run(cfg); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dialect, err := cfg.Dialect()
	if err != nil {
		return err
	}

	dsn, err := cfg.ConnectionString()
	if err != nil {
		return err
	}

	if err := database.Migrate(dialect, dsn); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	db, err := database.New(dialect, dsn)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	generator, err := insight.New(ctx, cfg.Insight.APIKey, cfg.Insight.Model)
	if err != nil {
		slog.Warn("insights disabled", "error", err)

		generator = insight.Noop{}
	}

	var (
		transactionService = transaction.NewService(txStore.New(db, dialect))
		importService      = importer.NewService(classifier.DefaultIncome(), classifier.DefaultExpense())
		insightService     = insight.NewService(generator, insight.Options{
			Timeout:  cfg.Insight.Timeout,
			CacheTTL: cfg.Insight.CacheTTL,
			Every:    cfg.Insight.Every,
		})
		dashboardService = dashboard.NewService(transactionService, insightService, dashboard.Options{
			SwapReversedRange: cfg.Dashboard.SwapReversedRange,
		})
	)

	var (
		dashboardH   = dashboardHandler.NewHandler(dashboardService)
		transactionH = txHandler.NewHandler(transactionService, insightService)
		uploadH      = uploadHandler.NewHandler(importService, transactionService, insightService, cfg.Server.UploadMaxBytes)
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           apiHttp.New(cfg.Server.AllowedOrigins, dashboardH, transactionH, uploadH),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout + cfg.Insight.Timeout,
	}

	errCh := make(chan error, 1)

	go func() {
		slog.Info("starting server", "addr", server.Addr, "driver", dialect)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
