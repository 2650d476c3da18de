package models

import "fmt"

// Diagnostic is one reportable finding with its source location.
// Line is 0 when the finding has no meaningful line (orphans, run-level
// warnings).
type Diagnostic struct {
	Path    string `json:"path"`
	Line    int    `json:"line"`
	Message string `json:"message"`
}

func (d Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", d.Path, d.Line, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Path, d.Message)
}

// Report is the outcome of consistency-checking one Graph. It is assembled
// once by the checker and read-only afterwards.
type Report struct {
	Orphans        []string     `json:"orphans"`
	Unresolved     []Diagnostic `json:"unresolved"`
	DuplicateSlugs []Diagnostic `json:"duplicate_slugs"`
	Warnings       []Diagnostic `json:"warnings"`
}

// Failed reports whether the build must exit non-zero. Orphans and
// duplicate slugs are warnings, never failures.
func (r *Report) Failed() bool {
	return len(r.Unresolved) > 0
}

// Lines renders the whole report as flat "path:line: message" diagnostics,
// errors first, in a stable order.
func (r *Report) Lines() []string {
	out := make([]string, 0, len(r.Unresolved)+len(r.DuplicateSlugs)+len(r.Warnings)+len(r.Orphans))
	for _, d := range r.Unresolved {
		out = append(out, d.String())
	}
	for _, d := range r.DuplicateSlugs {
		out = append(out, d.String())
	}
	for _, d := range r.Warnings {
		out = append(out, d.String())
	}
	for _, p := range r.Orphans {
		out = append(out, Diagnostic{Path: p, Message: "orphan: not reachable from the index document"}.String())
	}
	return out
}
