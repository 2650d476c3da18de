// Package site orchestrates the build pipeline: load, extract, resolve,
// check, render. Per-document loading and extraction run in parallel; link
// resolution waits for the full document set because it needs global
// knowledge of valid paths and anchors.
package site

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/starford/ansuz/internal/check"
	"github.com/starford/ansuz/internal/checksum"
	"github.com/starford/ansuz/internal/extract"
	"github.com/starford/ansuz/internal/graph"
	"github.com/starford/ansuz/internal/loader"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/render"
)

// Builder runs builds over one site root.
type Builder struct {
	store  loader.Provider
	index  string
	match  graph.PathMatch
	logger *slog.Logger
}

// NewBuilder creates a Builder. index is the root-relative path of the
// traversal root (conventionally README.md).
func NewBuilder(store loader.Provider, index string, match graph.PathMatch, logger *slog.Logger) *Builder {
	return &Builder{store: store, index: index, match: match, logger: logger}
}

// Root returns the absolute path of the site root being built.
func (b *Builder) Root() string {
	return b.store.Root()
}

// Build runs the pipeline up to the consistency check. Any unreadable file
// aborts the whole build with no partial result: a graph built from
// incomplete input would report nonsense.
func (b *Builder) Build(ctx context.Context) (*models.Graph, *models.Report, error) {
	paths, err := b.store.List("")
	if err != nil {
		return nil, nil, err
	}

	docs := make([]*models.Document, len(paths))
	results := make([]*extract.Result, len(paths))

	eg, _ := errgroup.WithContext(ctx)
	for i, p := range paths {
		eg.Go(func() error {
			data, err := b.store.Read(p)
			if err != nil {
				return fmt.Errorf("site: load %s: %w", p, err)
			}
			res := extract.Parse(p, data)
			docs[i] = &models.Document{
				Path:     p,
				Content:  data,
				Title:    res.Title,
				Headings: res.Headings,
				Checksum: checksum.Sum(data),
			}
			results[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}

	var links []models.Link
	for _, res := range results {
		links = append(links, res.Links...)
	}

	g := graph.Build(docs, links, b.match)
	rep := check.Run(g, b.index)

	b.logger.Info("site built",
		slog.Int("documents", len(g.Paths)),
		slog.Int("links", len(g.Links)),
		slog.Int("unresolved", len(rep.Unresolved)),
		slog.Int("orphans", len(rep.Orphans)))

	return g, rep, nil
}

// BuildAndWrite runs the full pipeline and regenerates the output site.
// Nothing is written when the build itself fails.
func (b *Builder) BuildAndWrite(ctx context.Context, r *render.Renderer) (*models.Graph, *models.Report, error) {
	g, rep, err := b.Build(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := r.WriteSite(g, rep); err != nil {
		return nil, nil, err
	}
	return g, rep, nil
}
