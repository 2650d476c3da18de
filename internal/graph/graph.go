// Package graph resolves extracted links against the full document set.
//
// Resolution is two-stage: the path component must name a known document,
// and, when an anchor is present, the slug must exist among the target
// document's headings. Both stages must pass; a broken anchor is a broken
// link even when the path resolves.
package graph

import (
	"sort"
	"strings"

	"github.com/starford/ansuz/internal/models"
)

// PathMatch controls how link targets are compared against document paths.
// The comparison policy is explicit configuration rather than whatever the
// host file system happens to do.
type PathMatch int

const (
	// MatchSensitive compares paths byte-for-byte (the default).
	MatchSensitive PathMatch = iota
	// MatchInsensitive folds case for lookups only; stored paths keep
	// their original spelling.
	MatchInsensitive
)

// Build constructs the cross-reference graph from the loaded documents and
// their extracted links. It requires the complete document set: resolution
// depends on global knowledge of valid paths and anchors.
func Build(docs []*models.Document, links []models.Link, match PathMatch) *models.Graph {
	canonical := func(p string) string { return p }
	if match == MatchInsensitive {
		canonical = strings.ToLower
	}

	byPath := make(map[string]*models.Document, len(docs))
	byKey := make(map[string]string, len(docs))
	slugs := make(map[string]map[string]struct{}, len(docs))
	paths := make([]string, 0, len(docs))

	for _, d := range docs {
		byPath[d.Path] = d
		byKey[canonical(d.Path)] = d.Path
		paths = append(paths, d.Path)

		set := make(map[string]struct{}, len(d.Headings))
		for _, h := range d.Headings {
			set[h.Slug] = struct{}{}
		}
		slugs[d.Path] = set
	}
	sort.Strings(paths)

	resolved := make([]models.Link, len(links))
	for i, l := range links {
		resolved[i] = resolve(l, byKey, slugs, canonical)
	}

	return &models.Graph{
		Documents: byPath,
		Links:     resolved,
		Paths:     paths,
	}
}

func resolve(l models.Link, byKey map[string]string, slugs map[string]map[string]struct{}, canonical func(string) string) models.Link {
	if l.Kind == models.LinkExternal {
		return l
	}

	actual, ok := byKey[canonical(l.TargetPath)]
	if !ok {
		l.Kind = models.LinkUnresolved
		return l
	}
	l.TargetPath = actual

	if l.TargetSlug == "" {
		l.Kind = models.LinkDocument
		return l
	}
	if _, ok := slugs[actual][l.TargetSlug]; !ok {
		l.Kind = models.LinkUnresolved
		return l
	}
	l.Kind = models.LinkAnchor
	return l
}
