package site

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/ansuz/internal/graph"
	"github.com/starford/ansuz/internal/loader"
	"github.com/starford/ansuz/internal/render"
)

func testBuilder(t *testing.T, sources map[string]string) *Builder {
	t.Helper()
	root := t.TempDir()
	for rel, content := range sources {
		abs := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	store, err := loader.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewBuilder(store, "README.md", graph.MatchSensitive, logger)
}

func TestBuildPipeline(t *testing.T) {
	b := testBuilder(t, map[string]string{
		"README.md":       "# Home\n\n[guide](topics/guide.md)\n",
		"topics/guide.md": "# Guide\n\n## Setup\n\n[home](../README.md)\n",
		"Extra.md":        "# Floating\n",
	})

	g, rep, err := b.Build(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(g.Paths) != 3 {
		t.Fatalf("paths = %v", g.Paths)
	}
	if doc := g.Documents["topics/guide.md"]; doc == nil || doc.Title != "Guide" {
		t.Errorf("guide document = %+v", doc)
	}
	if doc := g.Documents["README.md"]; doc.Checksum == "" {
		t.Error("checksum not populated")
	}
	if rep.Failed() {
		t.Errorf("unexpected failure: %v", rep.Lines())
	}
	if len(rep.Orphans) != 1 || rep.Orphans[0] != "Extra.md" {
		t.Errorf("orphans = %v", rep.Orphans)
	}
}

func TestBuildUnreadableRootFails(t *testing.T) {
	b := testBuilder(t, map[string]string{"README.md": "# Home\n"})

	// Remove the root after the provider was created: List must surface
	// the IO error and the build must abort with no partial result.
	if err := os.RemoveAll(b.Root()); err != nil {
		t.Fatal(err)
	}
	if _, _, err := b.Build(context.Background()); err == nil {
		t.Fatal("expected IO error")
	}
}

func TestBuildAndWriteIdempotent(t *testing.T) {
	b := testBuilder(t, map[string]string{
		"README.md":       "# Home\n\n[guide](topics/guide.md) [gone](Missing.md)\n",
		"topics/guide.md": "# Guide\n",
	})
	out := t.TempDir()
	r := render.New(out, "")

	if _, _, err := b.BuildAndWrite(context.Background(), r); err != nil {
		t.Fatal(err)
	}
	first := snapshot(t, out)

	if _, rep, err := b.BuildAndWrite(context.Background(), r); err != nil {
		t.Fatal(err)
	} else if !rep.Failed() {
		t.Error("Missing.md link should keep the report failing")
	}
	second := snapshot(t, out)

	if len(first) != len(second) {
		t.Fatalf("file sets differ: %d vs %d files", len(first), len(second))
	}
	for rel, content := range first {
		if second[rel] != content {
			t.Errorf("%s not byte-identical across rebuilds", rel)
		}
	}
}

func snapshot(t *testing.T, dir string) map[string]string {
	t.Helper()
	out := make(map[string]string)
	err := filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		out[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return out
}
