// Package render emits the static HTML site from a validated graph.
//
// Output is fully deterministic: documents are rendered in sorted path
// order, navigation lists are sorted, and nothing time-dependent is
// embedded, so repeated builds over unchanged input are byte-identical.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/util"

	"github.com/starford/ansuz/internal/models"
)

// ReportFile is the machine-readable diagnostics file written alongside the site.
const ReportFile = "report.txt"

// Renderer writes the HTML site for one build.
type Renderer struct {
	out     string
	baseURL string
}

// New creates a Renderer targeting outDir. baseURL, when non-empty, prefixes
// sitemap locations.
func New(outDir, baseURL string) *Renderer {
	return &Renderer{out: outDir, baseURL: strings.TrimSuffix(baseURL, "/")}
}

// WriteSite regenerates the output directory from scratch: every document as
// HTML, the sitemap, and the flat diagnostics report. The previous output is
// removed first; the site is never incrementally patched.
func (r *Renderer) WriteSite(g *models.Graph, rep *models.Report) error {
	if err := os.RemoveAll(r.out); err != nil {
		return fmt.Errorf("render: clear output dir: %w", err)
	}
	if err := os.MkdirAll(r.out, 0o755); err != nil {
		return fmt.Errorf("render: create output dir: %w", err)
	}

	backrefs := g.Backrefs()

	for _, p := range g.Paths {
		html, err := r.Document(g, p, backrefs[p])
		if err != nil {
			return fmt.Errorf("render: %s: %w", p, err)
		}
		if err := r.writeFile(HTMLPath(p), html); err != nil {
			return err
		}
	}

	sitemap, err := r.sitemap(g)
	if err != nil {
		return err
	}
	if err := r.writeFile("sitemap.xml", sitemap); err != nil {
		return err
	}

	report := strings.Join(rep.Lines(), "\n")
	if report != "" {
		report += "\n"
	}
	return r.writeFile(ReportFile, []byte(report))
}

// Document renders one document to a full HTML page: the converted body
// followed by navigation (outgoing links and back-references).
func (r *Renderer) Document(g *models.Graph, docPath string, backrefs []string) ([]byte, error) {
	doc, ok := g.Documents[docPath]
	if !ok {
		return nil, fmt.Errorf("unknown document %q", docPath)
	}

	engine := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithASTTransformers(
				util.Prioritized(&headingIDs{}, 500),
				util.Prioritized(&linkRewriter{rewrites: rewrites(g, docPath)}, 600),
			),
		),
	)

	var body bytes.Buffer
	if err := engine.Convert(doc.Content, &body); err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}

	data := pageData{
		Title: pageTitle(doc),
		Body:  template.HTML(body.String()),
	}
	for _, target := range g.Outgoing(docPath) {
		data.Outgoing = append(data.Outgoing, navEntry{
			Path: target,
			Href: relRef(docPath, HTMLPath(target)),
		})
	}
	for _, source := range backrefs {
		data.Backrefs = append(data.Backrefs, navEntry{
			Path: source,
			Href: relRef(docPath, HTMLPath(source)),
		})
	}

	var page bytes.Buffer
	if err := pageTmpl.Execute(&page, data); err != nil {
		return nil, fmt.Errorf("execute template: %w", err)
	}
	return page.Bytes(), nil
}

// rewrites maps each resolved internal raw target of docPath to its output
// addressing. External targets and unresolved links are left as written;
// self-anchors ("#slug") already address the output correctly.
func rewrites(g *models.Graph, docPath string) map[string]string {
	out := make(map[string]string)
	for _, l := range g.Links {
		if l.Source != docPath || !l.Internal() {
			continue
		}
		if strings.HasPrefix(l.RawTarget, "#") {
			continue
		}
		href := relRef(docPath, HTMLPath(l.TargetPath))
		if l.TargetSlug != "" {
			href += "#" + l.TargetSlug
		}
		out[l.RawTarget] = href
	}
	return out
}

// HTMLPath maps a source document path to its output path.
func HTMLPath(p string) string {
	return strings.TrimSuffix(p, ".md") + ".html"
}

// relRef computes the relative reference from the document at `from` (a
// root-relative slash path) to the output file `target`.
func relRef(from, target string) string {
	fromDir := path.Dir(from)
	var fromSegs []string
	if fromDir != "." {
		fromSegs = strings.Split(fromDir, "/")
	}
	targetSegs := strings.Split(target, "/")

	common := 0
	for common < len(fromSegs) && common < len(targetSegs)-1 && fromSegs[common] == targetSegs[common] {
		common++
	}

	var parts []string
	for range fromSegs[common:] {
		parts = append(parts, "..")
	}
	parts = append(parts, targetSegs[common:]...)
	return strings.Join(parts, "/")
}

func pageTitle(doc *models.Document) string {
	if doc.Title != "" {
		return doc.Title
	}
	return doc.Path
}

// writeFile atomically writes content under the output dir: tmp file, fsync, rename.
func (r *Renderer) writeFile(rel string, content []byte) error {
	abs := filepath.Join(r.out, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("render: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(abs), ".ansuz-tmp-*")
	if err != nil {
		return fmt.Errorf("render: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("render: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("render: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("render: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("render: rename: %w", err)
	}
	success = true
	return nil
}

type navEntry struct {
	Path string
	Href string
}

type pageData struct {
	Title    string
	Body     template.HTML
	Outgoing []navEntry
	Backrefs []navEntry
}

var pageTmpl = template.Must(template.New("page").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<main>
{{.Body}}</main>
<nav>
{{- if .Outgoing}}
<section>
<h2>Links from this page</h2>
<ul>
{{- range .Outgoing}}
<li><a href="{{.Href}}">{{.Path}}</a></li>
{{- end}}
</ul>
</section>
{{- end}}
{{- if .Backrefs}}
<section>
<h2>What links here</h2>
<ul>
{{- range .Backrefs}}
<li><a href="{{.Href}}">{{.Path}}</a></li>
{{- end}}
</ul>
</section>
{{- end}}
</nav>
</body>
</html>
`))
