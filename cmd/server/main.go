package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"biblios/internal/catalog"
	"biblios/internal/circulation"
	"biblios/internal/membership"
	"biblios/internal/platform/config"
	"biblios/internal/platform/telemetry"
	"biblios/internal/statistics"
	"biblios/internal/storage/postgres"
)

const serviceName = "biblios"

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, serviceName, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("tracing shutdown failed", "error", err)
		}
	}()

	store, err := postgres.Open(cfg.DatabaseDriver, cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.Migrate(ctx); err != nil {
		return err
	}
	logger.Info("database ready", "driver", cfg.DatabaseDriver)

	var catalogOpts []catalog.Option
	if cfg.MeiliHost != "" {
		catalogOpts = append(catalogOpts, catalog.WithSearcher(
			catalog.NewMeiliSearcher(cfg.MeiliHost, cfg.MeiliAPIKey)))
		logger.Info("search index enabled", "host", cfg.MeiliHost)
	}

	catalogService := catalog.NewService(store, logger, catalogOpts...)
	membershipService := membership.NewService(store, logger,
		membership.WithDefaultMaxBooks(cfg.DefaultMaxBooks))
	circulationService := circulation.NewService(store, logger,
		circulation.WithLoanDays(cfg.LoanDays),
		circulation.WithExpiryDays(cfg.ReservationDays),
	)
	statisticsService := statistics.NewService(store)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(telemetry.Middleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		catalog.NewHandler(catalogService).Register(r)
		membership.NewHandler(membershipService).Register(r)
		circulation.NewHandler(circulationService).Register(r)
		statistics.NewHandler(statisticsService).Register(r)
	})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.ShutdownTimeoutSec)*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
