// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/ansuz/internal/api"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/render"
	"github.com/starford/ansuz/internal/site"
	"github.com/starford/ansuz/internal/sse"
)

// Run starts serve mode with the given options: initial build, SQLite index
// sync, file watcher with debounced rebuilds, and the HTTP server for the
// rendered site plus the query API.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	logger := newLogger(cfg.App.LogLevel)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("site_root", cfg.Site.Root),
		slog.String("output", cfg.Site.Output),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	builder, err := newBuilder(cfg, logger)
	if err != nil {
		return fmt.Errorf("init builder: %w", err)
	}
	renderer := render.New(cfg.Site.Output, cfg.Site.BaseURL)

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	broker := sse.NewBroker()
	defer broker.Close()

	// rebuild runs the full pipeline, refreshes the index, and notifies SSE
	// clients. A mutex serializes watcher- and API-triggered rebuilds.
	var buildMu sync.Mutex
	rebuild := func() {
		buildMu.Lock()
		defer buildMu.Unlock()

		g, rep, buildErr := builder.BuildAndWrite(ctx, renderer)
		if buildErr != nil {
			logger.Error("rebuild failed", slog.String("error", buildErr.Error()))
			broker.PublishBuildEvent(sse.EventBuildFailed, 0)
			return
		}
		if syncErr := db.ReplaceAll(g, rep); syncErr != nil {
			logger.Warn("index sync failed", slog.String("error", syncErr.Error()))
		}
		broker.PublishBuildEvent(sse.EventRebuilt, len(rep.Lines()))
	}

	// Initial build: fatal on IO error, so serve never starts with no site.
	g, rep, err := builder.BuildAndWrite(ctx, renderer)
	if err != nil {
		return fmt.Errorf("initial build: %w", err)
	}
	if err := db.ReplaceAll(g, rep); err != nil {
		logger.Warn("initial index sync failed", slog.String("error", err.Error()))
	}
	for _, line := range rep.Lines() {
		logger.Warn("diagnostic", slog.String("detail", line))
	}

	// Build API service and router.
	svc := api.NewService(db, rebuild)
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", apiRouter)

	// The rendered site itself.
	r.Handle("/*", http.FileServer(http.Dir(cfg.Site.Output)))

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	eg, egCtx := errgroup.WithContext(ctx)

	// Watch the source tree and rebuild on change.
	eg.Go(func() error {
		return site.Watch(egCtx, builder.Root(), 200*time.Millisecond, logger, rebuild)
	})

	// Start HTTP server.
	eg.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	eg.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-egCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := eg.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
