package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/ansuz/internal/check"
	"github.com/starford/ansuz/internal/extract"
	"github.com/starford/ansuz/internal/graph"
	"github.com/starford/ansuz/internal/models"
)

func buildSite(t *testing.T, sources map[string]string) (*models.Graph, *models.Report) {
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
	g := graph.Build(docs, links, graph.MatchSensitive)
	return g, check.Run(g, "README.md")
}

func readOut(t *testing.T, dir, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("read %s: %v", rel, err)
	}
	return string(data)
}

func TestWriteSiteRewritesLinks(t *testing.T) {
	g, rep := buildSite(t, map[string]string{
		"README.md": "# Home\n\nSee the [Guide](Guide.md) and [details](Guide.md#section-one).\n",
		"Guide.md":  "# Guide\n\n## Section One\n\nBack to [home](README.md).\n",
	})
	out := t.TempDir()
	if err := New(out, "").WriteSite(g, rep); err != nil {
		t.Fatal(err)
	}

	home := readOut(t, out, "README.html")
	if !strings.Contains(home, `href="Guide.html"`) {
		t.Errorf("document link not rewritten to .html:\n%s", home)
	}
	if !strings.Contains(home, `href="Guide.html#section-one"`) {
		t.Errorf("anchor link not rewritten:\n%s", home)
	}
	if !strings.Contains(home, `<h1 id="home">`) {
		t.Errorf("heading id missing:\n%s", home)
	}

	guide := readOut(t, out, "Guide.html")
	if !strings.Contains(guide, `<h2 id="section-one">`) {
		t.Errorf("anchor target id missing:\n%s", guide)
	}
}

func TestWriteSiteNavigation(t *testing.T) {
	g, rep := buildSite(t, map[string]string{
		"README.md": "# Home\n\n[guide](Guide.md)\n",
		"Guide.md":  "# Guide\n",
	})
	out := t.TempDir()
	if err := New(out, "").WriteSite(g, rep); err != nil {
		t.Fatal(err)
	}

	home := readOut(t, out, "README.html")
	if !strings.Contains(home, "Links from this page") {
		t.Error("README.html missing outgoing section")
	}
	guide := readOut(t, out, "Guide.html")
	if !strings.Contains(guide, "What links here") || !strings.Contains(guide, `href="README.html"`) {
		t.Errorf("Guide.html missing backref to README:\n%s", guide)
	}
}

func TestWriteSiteNestedPaths(t *testing.T) {
	g, rep := buildSite(t, map[string]string{
		"README.md":          "# Home\n\n[deep](topics/deep/a.md)\n",
		"topics/deep/a.md":   "# A\n\n[home](../../README.md) [sibling](../other.md)\n",
		"topics/other.md":    "# Other\n",
		"topics/untouch.md":  "# U\n\n[a](deep/a.md)\n",
	})
	out := t.TempDir()
	if err := New(out, "").WriteSite(g, rep); err != nil {
		t.Fatal(err)
	}

	home := readOut(t, out, "README.html")
	if !strings.Contains(home, `href="topics/deep/a.html"`) {
		t.Errorf("nested target href wrong:\n%s", home)
	}
	a := readOut(t, out, "topics/deep/a.html")
	if !strings.Contains(a, `href="../../README.html"`) {
		t.Errorf("upward href wrong:\n%s", a)
	}
	if !strings.Contains(a, `href="../other.html"`) {
		t.Errorf("sibling-dir href wrong:\n%s", a)
	}
}

func TestWriteSiteUnresolvedLeftAsWritten(t *testing.T) {
	g, rep := buildSite(t, map[string]string{
		"README.md": "# Home\n\n[gone](Missing.md) [ext](https://example.com)\n",
	})
	out := t.TempDir()
	if err := New(out, "").WriteSite(g, rep); err != nil {
		t.Fatal(err)
	}

	home := readOut(t, out, "README.html")
	if !strings.Contains(home, `href="Missing.md"`) {
		t.Errorf("unresolved target must stay as written:\n%s", home)
	}
	if !strings.Contains(home, `href="https://example.com"`) {
		t.Errorf("external target must stay as written:\n%s", home)
	}
}

func TestWriteSiteSitemap(t *testing.T) {
	g, rep := buildSite(t, map[string]string{
		"README.md": "# Home\n\n[g](Guide.md)\n",
		"Guide.md":  "# Guide\n",
	})
	out := t.TempDir()
	if err := New(out, "https://docs.example.com/").WriteSite(g, rep); err != nil {
		t.Fatal(err)
	}

	sm := readOut(t, out, "sitemap.xml")
	if !strings.Contains(sm, "<loc>https://docs.example.com/Guide.html</loc>") {
		t.Errorf("sitemap:\n%s", sm)
	}
	if strings.Contains(sm, "lastmod") {
		t.Error("sitemap must not carry time-dependent fields")
	}
}

func TestWriteSiteReport(t *testing.T) {
	g, rep := buildSite(t, map[string]string{
		"README.md": "# Home\n\n[gone](Missing.md)\n",
	})
	out := t.TempDir()
	if err := New(out, "").WriteSite(g, rep); err != nil {
		t.Fatal(err)
	}

	report := readOut(t, out, ReportFile)
	if !strings.HasPrefix(report, "README.md:3: ") {
		t.Errorf("report line format wrong:\n%s", report)
	}
	if !strings.HasSuffix(report, "\n") {
		t.Error("non-empty report must end with a newline")
	}
}

func TestWriteSiteEmptyReport(t *testing.T) {
	g, rep := buildSite(t, map[string]string{
		"README.md": "# Home\n",
	})
	out := t.TempDir()
	if err := New(out, "").WriteSite(g, rep); err != nil {
		t.Fatal(err)
	}

	if report := readOut(t, out, ReportFile); report != "" {
		t.Errorf("clean build must write an empty report, got %q", report)
	}
}

func TestWriteSiteIdempotent(t *testing.T) {
	g, rep := buildSite(t, map[string]string{
		"README.md":      "# Home\n\n[g](topics/g.md)\n",
		"topics/g.md":    "# G\n\n[home](../README.md)\n",
		"topics/solo.md": "# Solo\n",
	})
	out := t.TempDir()
	r := New(out, "")

	if err := r.WriteSite(g, rep); err != nil {
		t.Fatal(err)
	}
	first := snapshotDir(t, out)

	if err := r.WriteSite(g, rep); err != nil {
		t.Fatal(err)
	}
	second := snapshotDir(t, out)

	if len(first) != len(second) {
		t.Fatalf("file sets differ: %d vs %d", len(first), len(second))
	}
	for rel, content := range first {
		if second[rel] != content {
			t.Errorf("%s differs between identical builds", rel)
		}
	}
}

func snapshotDir(t *testing.T, dir string) map[string]string {
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

func TestHTMLPath(t *testing.T) {
	if got := HTMLPath("topics/a.md"); got != "topics/a.html" {
		t.Errorf("HTMLPath = %q", got)
	}
}

func TestRelRef(t *testing.T) {
	cases := []struct {
		from, target, want string
	}{
		{"README.md", "Guide.html", "Guide.html"},
		{"README.md", "topics/a.html", "topics/a.html"},
		{"topics/a.md", "topics/b.html", "b.html"},
		{"topics/a.md", "README.html", "../README.html"},
		{"topics/deep/a.md", "other.html", "../../other.html"},
		{"topics/deep/a.md", "topics/other.html", "../other.html"},
	}
	for _, tc := range cases {
		if got := relRef(tc.from, tc.target); got != tc.want {
			t.Errorf("relRef(%q, %q) = %q, want %q", tc.from, tc.target, got, tc.want)
		}
	}
}
