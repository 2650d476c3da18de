// Package models defines the domain types for Ansuz.
package models

import "sort"

// Heading is one #-prefixed heading extracted from a document.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	Slug  string `json:"slug"`
	Line  int    `json:"line"`
}

// Document represents one Markdown file under the site root.
// Documents are created by the loader and never mutated within a build.
type Document struct {
	Path     string    `json:"path"`
	Content  []byte    `json:"-"`
	Title    string    `json:"title,omitempty"`
	Headings []Heading `json:"headings,omitempty"`
	Checksum string    `json:"checksum"`
}

// LinkKind classifies a link after resolution.
type LinkKind string

const (
	// LinkExternal is a target with a URI scheme (http, https, mailto).
	LinkExternal LinkKind = "external"
	// LinkDocument is a resolved internal link without an anchor.
	LinkDocument LinkKind = "document"
	// LinkAnchor is a resolved internal link whose anchor also exists.
	LinkAnchor LinkKind = "anchor"
	// LinkUnresolved is a link whose target path or anchor does not exist.
	LinkUnresolved LinkKind = "unresolved"
)

// Link is one inline link extracted from a source document.
// RawTarget is the target exactly as written; TargetPath and TargetSlug
// hold the normalized (and, after graph resolution, canonical) target.
type Link struct {
	Source     string   `json:"source"`
	Label      string   `json:"label"`
	RawTarget  string   `json:"raw_target"`
	Line       int      `json:"line"`
	Kind       LinkKind `json:"kind"`
	TargetPath string   `json:"target_path,omitempty"`
	TargetSlug string   `json:"target_slug,omitempty"`
}

// Internal reports whether the link resolved to a document in the graph.
func (l Link) Internal() bool {
	return l.Kind == LinkDocument || l.Kind == LinkAnchor
}

// Graph is the full cross-reference graph of one build. It is rebuilt from
// scratch on every run, so it can never carry stale edges.
type Graph struct {
	Documents map[string]*Document
	Links     []Link
	// Paths holds every document path in sorted order for deterministic output.
	Paths []string
}

// Backrefs inverts the edge set once: target path to sorted unique source paths.
func (g *Graph) Backrefs() map[string][]string {
	seen := make(map[string]map[string]struct{})
	for _, l := range g.Links {
		if !l.Internal() || l.TargetPath == l.Source {
			continue
		}
		if seen[l.TargetPath] == nil {
			seen[l.TargetPath] = make(map[string]struct{})
		}
		seen[l.TargetPath][l.Source] = struct{}{}
	}
	out := make(map[string][]string, len(seen))
	for target, sources := range seen {
		for s := range sources {
			out[target] = append(out[target], s)
		}
		sort.Strings(out[target])
	}
	return out
}

// Outgoing returns the sorted unique internal targets linked from path,
// excluding self-references.
func (g *Graph) Outgoing(path string) []string {
	set := make(map[string]struct{})
	for _, l := range g.Links {
		if l.Source != path || !l.Internal() || l.TargetPath == path {
			continue
		}
		set[l.TargetPath] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
