package check

import (
	"strings"
	"testing"

	"github.com/starford/ansuz/internal/extract"
	"github.com/starford/ansuz/internal/graph"
	"github.com/starford/ansuz/internal/models"
)

func buildGraph(t *testing.T, sources map[string]string) *models.Graph {
	t.Helper()
	var docs []*models.Document
	var links []models.Link
	for path, content := range sources {
		res := extract.Parse(path, []byte(content))
		docs = append(docs, &models.Document{
			Path:     path,
			Content:  []byte(content),
			Title:    res.Title,
			Headings: res.Headings,
		})
		links = append(links, res.Links...)
	}
	return graph.Build(docs, links, graph.MatchSensitive)
}

func TestRunCleanSite(t *testing.T) {
	g := buildGraph(t, map[string]string{
		"README.md": "# Home\n\nSee the [Guide](Guide.md) and [details](Guide.md#section-one).\n",
		"Guide.md":  "# Guide\n\n## Section One\n\nBack to [home](README.md).\n",
	})
	rep := Run(g, "README.md")

	if rep.Failed() {
		t.Fatalf("clean site must not fail: %v", rep.Lines())
	}
	if len(rep.Unresolved) != 0 || len(rep.Orphans) != 0 || len(rep.DuplicateSlugs) != 0 || len(rep.Warnings) != 0 {
		t.Errorf("expected empty report, got %v", rep.Lines())
	}
}

func TestRunUnresolvedLinkFails(t *testing.T) {
	g := buildGraph(t, map[string]string{
		"README.md": "# Home\n\nSee [missing](Missing.md).\n",
	})
	rep := Run(g, "README.md")

	if !rep.Failed() {
		t.Fatal("unresolved link must fail the build")
	}
	if len(rep.Unresolved) != 1 {
		t.Fatalf("unresolved = %v", rep.Unresolved)
	}
	d := rep.Unresolved[0]
	if d.Path != "README.md" || d.Line != 3 {
		t.Errorf("diagnostic location = %s:%d", d.Path, d.Line)
	}
	if !strings.Contains(d.Message, `"Missing.md"`) {
		t.Errorf("message = %q", d.Message)
	}
}

func TestRunBrokenAnchorMessage(t *testing.T) {
	g := buildGraph(t, map[string]string{
		"README.md": "[jump](Guide.md#nope)",
		"Guide.md":  "# Guide\n\n## Section One\n",
	})
	rep := Run(g, "README.md")

	if len(rep.Unresolved) != 1 {
		t.Fatalf("unresolved = %v", rep.Unresolved)
	}
	msg := rep.Unresolved[0].Message
	if !strings.Contains(msg, `"#nope"`) || !strings.Contains(msg, `"Guide.md"`) {
		t.Errorf("broken anchor message should name the anchor and document, got %q", msg)
	}
}

func TestRunOrphanDoesNotFail(t *testing.T) {
	g := buildGraph(t, map[string]string{
		"README.md": "# Home\n\n[guide](Guide.md)\n",
		"Guide.md":  "# Guide\n",
		"Extra.md":  "# Floating\n",
	})
	rep := Run(g, "README.md")

	if rep.Failed() {
		t.Fatal("orphans alone must not fail the build")
	}
	if len(rep.Orphans) != 1 || rep.Orphans[0] != "Extra.md" {
		t.Errorf("orphans = %v", rep.Orphans)
	}
}

func TestRunCycleTerminates(t *testing.T) {
	g := buildGraph(t, map[string]string{
		"README.md": "[a](a.md)",
		"a.md":      "[b](b.md)",
		"b.md":      "[a](a.md) [home](README.md)",
	})
	rep := Run(g, "README.md")

	if len(rep.Orphans) != 0 {
		t.Errorf("cyclic sites must still be fully reachable, orphans = %v", rep.Orphans)
	}
}

func TestRunLinkFreeSite(t *testing.T) {
	g := buildGraph(t, map[string]string{
		"README.md": "# Home\n",
		"a.md":      "# A\n",
		"b.md":      "# B\n",
	})
	rep := Run(g, "README.md")

	if rep.Failed() {
		t.Fatal("a link-free site must not fail")
	}
	if len(rep.Orphans) != 2 {
		t.Errorf("orphans = %v, want a.md and b.md", rep.Orphans)
	}
}

func TestRunMissingIndex(t *testing.T) {
	g := buildGraph(t, map[string]string{
		"a.md": "# A\n",
		"b.md": "# B\n",
	})
	rep := Run(g, "README.md")

	if rep.Failed() {
		t.Fatal("a missing index is a warning, not a failure")
	}
	if len(rep.Warnings) != 1 {
		t.Fatalf("warnings = %v", rep.Warnings)
	}
	if len(rep.Orphans) != 2 {
		t.Errorf("every document must be an orphan without an index, got %v", rep.Orphans)
	}
}

func TestRunDuplicateSlugs(t *testing.T) {
	g := buildGraph(t, map[string]string{
		"README.md": "# Home\n\n## Setup\n\n## Setup\n",
	})
	rep := Run(g, "README.md")

	if rep.Failed() {
		t.Fatal("duplicate slugs are warnings, not failures")
	}
	if len(rep.DuplicateSlugs) != 1 {
		t.Fatalf("duplicate slugs = %v", rep.DuplicateSlugs)
	}
	d := rep.DuplicateSlugs[0]
	if d.Line != 5 {
		t.Errorf("duplicate reported at line %d, want the later occurrence", d.Line)
	}
	if !strings.Contains(d.Message, `"setup"`) || !strings.Contains(d.Message, "line 3") {
		t.Errorf("message = %q", d.Message)
	}
}

func TestRunAnchorLinkReachability(t *testing.T) {
	// Anchor links are edges too: a document reachable only via an
	// anchor link is not an orphan.
	g := buildGraph(t, map[string]string{
		"README.md": "[deep](Guide.md#section-one)",
		"Guide.md":  "# Guide\n\n## Section One\n",
	})
	rep := Run(g, "README.md")

	if len(rep.Orphans) != 0 {
		t.Errorf("orphans = %v", rep.Orphans)
	}
}

func TestRunDiagnosticOrdering(t *testing.T) {
	g := buildGraph(t, map[string]string{
		"README.md": "[z](z.md)\n\n[a](a.md)\n",
	})
	rep := Run(g, "README.md")

	if len(rep.Unresolved) != 2 {
		t.Fatalf("unresolved = %v", rep.Unresolved)
	}
	if rep.Unresolved[0].Line != 1 || rep.Unresolved[1].Line != 3 {
		t.Errorf("diagnostics not sorted by line: %v", rep.Unresolved)
	}
}
