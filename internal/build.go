package internal

import (
	"context"
	"log/slog"
	"os"

	"github.com/starford/ansuz/internal/loader"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/render"
	"github.com/starford/ansuz/internal/site"
)

// newLogger builds the structured JSON logger and installs it as default.
func newLogger(level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}

// newBuilder wires a Builder from configuration. A missing or unreadable
// root fails here, before anything is written.
func newBuilder(cfg *Config, logger *slog.Logger) (*site.Builder, error) {
	store, err := loader.NewFS(cfg.Site.Root)
	if err != nil {
		return nil, err
	}
	return site.NewBuilder(store, cfg.Site.Index, cfg.Site.Match(), logger), nil
}

// Build runs the full pipeline once and writes the output site. The report
// is returned even when it contains failures; the caller decides the exit
// code. An IO error aborts with no output written.
func Build(ctx context.Context, cfg *Config) (*models.Report, error) {
	logger := newLogger(cfg.App.LogLevel)
	builder, err := newBuilder(cfg, logger)
	if err != nil {
		return nil, err
	}
	renderer := render.New(cfg.Site.Output, cfg.Site.BaseURL)
	_, rep, err := builder.BuildAndWrite(ctx, renderer)
	if err != nil {
		return nil, err
	}
	return rep, nil
}

// Check runs the pipeline without rendering, for CI-style validation.
func Check(ctx context.Context, cfg *Config) (*models.Report, error) {
	_, rep, err := Snapshot(ctx, cfg)
	return rep, err
}

// Snapshot runs the pipeline without rendering and returns both the graph
// and its report, for consumers that index the build (serve, mcp).
func Snapshot(ctx context.Context, cfg *Config) (*models.Graph, *models.Report, error) {
	logger := newLogger(cfg.App.LogLevel)
	builder, err := newBuilder(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return builder.Build(ctx)
}
