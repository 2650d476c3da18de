// Package check validates a built graph and assembles the report.
package check

import (
	"fmt"
	"sort"

	"github.com/starford/ansuz/internal/models"
)

// Run computes reachability from the index document and collects every
// diagnostic in one pass, so all problems surface in a single run.
func Run(g *models.Graph, index string) *models.Report {
	rep := &models.Report{}

	rep.Unresolved = unresolved(g)
	rep.DuplicateSlugs = duplicateSlugs(g)

	if _, ok := g.Documents[index]; !ok {
		rep.Warnings = append(rep.Warnings, models.Diagnostic{
			Path:    index,
			Message: "index document not found; every document is an orphan",
		})
		rep.Orphans = append(rep.Orphans, g.Paths...)
		return rep
	}

	visited := traverse(g, index)
	for _, p := range g.Paths {
		if _, ok := visited[p]; !ok {
			rep.Orphans = append(rep.Orphans, p)
		}
	}
	return rep
}

// traverse is a breadth-first walk over resolved internal links. The visited
// set is keyed by document path, so cycles terminate and no document is
// processed twice.
func traverse(g *models.Graph, start string) map[string]struct{} {
	adj := make(map[string][]string)
	for _, l := range g.Links {
		if l.Internal() {
			adj[l.Source] = append(adj[l.Source], l.TargetPath)
		}
	}

	visited := map[string]struct{}{start: {}}
	queue := []string{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adj[cur] {
			if _, ok := visited[next]; ok {
				continue
			}
			visited[next] = struct{}{}
			queue = append(queue, next)
		}
	}
	return visited
}

func unresolved(g *models.Graph) []models.Diagnostic {
	var out []models.Diagnostic
	for _, l := range g.Links {
		if l.Kind != models.LinkUnresolved {
			continue
		}
		msg := fmt.Sprintf("unresolved link %q: no document at %q", l.RawTarget, l.TargetPath)
		if l.TargetSlug != "" {
			if _, ok := g.Documents[l.TargetPath]; ok {
				msg = fmt.Sprintf("unresolved link %q: no anchor %q in %q", l.RawTarget, "#"+l.TargetSlug, l.TargetPath)
			}
		}
		out = append(out, models.Diagnostic{Path: l.Source, Line: l.Line, Message: msg})
	}
	sortDiagnostics(out)
	return out
}

// duplicateSlugs reports headings whose slug collides with an earlier
// heading in the same document. Later occurrences still resolve to the same
// anchor, which mirrors how most renderers silently collide IDs.
func duplicateSlugs(g *models.Graph) []models.Diagnostic {
	var out []models.Diagnostic
	for _, p := range g.Paths {
		first := make(map[string]int)
		for _, h := range g.Documents[p].Headings {
			if h.Slug == "" {
				continue
			}
			if line, ok := first[h.Slug]; ok {
				out = append(out, models.Diagnostic{
					Path:    p,
					Line:    h.Line,
					Message: fmt.Sprintf("duplicate heading anchor %q (first defined at line %d)", h.Slug, line),
				})
				continue
			}
			first[h.Slug] = h.Line
		}
	}
	sortDiagnostics(out)
	return out
}

func sortDiagnostics(ds []models.Diagnostic) {
	sort.Slice(ds, func(i, j int) bool {
		if ds[i].Path != ds[j].Path {
			return ds[i].Path < ds[j].Path
		}
		return ds[i].Line < ds[j].Line
	})
}
