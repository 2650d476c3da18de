package index

import (
	"database/sql"
	"fmt"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
)

// Diagnostic kinds stored in the diagnostics table.
const (
	DiagUnresolved    = "unresolved"
	DiagDuplicateSlug = "duplicate-slug"
	DiagOrphan        = "orphan"
	DiagWarning       = "warning"
)

// DocRow represents a row in the documents table.
type DocRow struct {
	Path     string `json:"path"`
	Title    string `json:"title"`
	Checksum string `json:"checksum"`
}

// DiagRow represents a row in the diagnostics table.
type DiagRow struct {
	Path    string `json:"path"`
	Line    int    `json:"line"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// ReplaceAll replaces the entire index with the given build inside one
// transaction, mirroring the rebuild-fully invariant of the in-memory graph:
// no stale rows can survive a sync.
func (db *DB) ReplaceAll(g *models.Graph, rep *models.Report) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	for _, table := range []string{"documents", "links", "diagnostics"} {
		if _, err := tx.Exec(`DELETE FROM ` + table); err != nil {
			return fmt.Errorf("index: clear %s: %w", table, err)
		}
	}
	if err := ftsClear(tx); err != nil {
		return err
	}

	docStmt, err := tx.Prepare(`INSERT INTO documents (path, title, checksum, body) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("index: prepare document insert: %w", err)
	}
	defer docStmt.Close()
	for _, p := range g.Paths {
		d := g.Documents[p]
		if _, err := docStmt.Exec(d.Path, d.Title, d.Checksum, string(d.Content)); err != nil {
			return fmt.Errorf("index: insert document: %w", err)
		}
		if err := ftsInsert(tx, d.Path, d.Title, string(d.Content)); err != nil {
			return err
		}
	}

	linkStmt, err := tx.Prepare(`INSERT INTO links (source, target, kind, line) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("index: prepare link insert: %w", err)
	}
	defer linkStmt.Close()
	for _, l := range g.Links {
		target := l.TargetPath
		if l.Kind == models.LinkExternal {
			target = l.RawTarget
		}
		if _, err := linkStmt.Exec(l.Source, target, string(l.Kind), l.Line); err != nil {
			return fmt.Errorf("index: insert link: %w", err)
		}
	}

	diagStmt, err := tx.Prepare(`INSERT INTO diagnostics (path, line, kind, message) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("index: prepare diagnostic insert: %w", err)
	}
	defer diagStmt.Close()
	insertDiags := func(kind string, ds []models.Diagnostic) error {
		for _, d := range ds {
			if _, err := diagStmt.Exec(d.Path, d.Line, kind, d.Message); err != nil {
				return fmt.Errorf("index: insert diagnostic: %w", err)
			}
		}
		return nil
	}
	if err := insertDiags(DiagUnresolved, rep.Unresolved); err != nil {
		return err
	}
	if err := insertDiags(DiagDuplicateSlug, rep.DuplicateSlugs); err != nil {
		return err
	}
	if err := insertDiags(DiagWarning, rep.Warnings); err != nil {
		return err
	}
	for _, p := range rep.Orphans {
		if _, err := diagStmt.Exec(p, 0, DiagOrphan, "not reachable from the index document"); err != nil {
			return fmt.Errorf("index: insert diagnostic: %w", err)
		}
	}

	return tx.Commit()
}

// ListDocuments returns every indexed document in path order.
func (db *DB) ListDocuments() ([]DocRow, error) {
	rows, err := db.conn.Query(`SELECT path, title, checksum FROM documents ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("index: list documents: %w", err)
	}
	defer rows.Close()

	var out []DocRow
	for rows.Next() {
		var r DocRow
		if err := rows.Scan(&r.Path, &r.Title, &r.Checksum); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetDocument returns one document row, or apperr.ErrNotFound.
func (db *DB) GetDocument(path string) (*DocRow, string, error) {
	var r DocRow
	var body string
	err := db.conn.QueryRow(`SELECT path, title, checksum, body FROM documents WHERE path = ?`, path).
		Scan(&r.Path, &r.Title, &r.Checksum, &body)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, "", apperr.ErrNotFound
		}
		return nil, "", fmt.Errorf("index: get document: %w", err)
	}
	return &r, body, nil
}

// Backlinks returns all document paths that link to the given target.
func (db *DB) Backlinks(target string) ([]string, error) {
	rows, err := db.conn.Query(`
		SELECT DISTINCT source FROM links
		WHERE target = ? AND kind IN (?, ?)
		ORDER BY source
	`, target, string(models.LinkDocument), string(models.LinkAnchor))
	if err != nil {
		return nil, fmt.Errorf("index: backlinks: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GraphData returns every node and internal edge for graph views.
func (db *DB) GraphData() ([]GraphNode, []GraphEdge, error) {
	nodeRows, err := db.conn.Query(`SELECT path, title FROM documents ORDER BY path`)
	if err != nil {
		return nil, nil, fmt.Errorf("index: graph nodes: %w", err)
	}
	defer nodeRows.Close()

	var nodes []GraphNode
	for nodeRows.Next() {
		var n GraphNode
		if err := nodeRows.Scan(&n.ID, &n.Title); err != nil {
			return nil, nil, err
		}
		nodes = append(nodes, n)
	}
	if err := nodeRows.Err(); err != nil {
		return nil, nil, err
	}

	edgeRows, err := db.conn.Query(`
		SELECT DISTINCT source, target FROM links
		WHERE kind IN (?, ?)
		ORDER BY source, target
	`, string(models.LinkDocument), string(models.LinkAnchor))
	if err != nil {
		return nil, nil, fmt.Errorf("index: graph edges: %w", err)
	}
	defer edgeRows.Close()

	var edges []GraphEdge
	for edgeRows.Next() {
		var e GraphEdge
		if err := edgeRows.Scan(&e.Source, &e.Target); err != nil {
			return nil, nil, err
		}
		edges = append(edges, e)
	}
	return nodes, edges, edgeRows.Err()
}

// Diagnostics returns all stored diagnostics, errors first.
func (db *DB) Diagnostics() ([]DiagRow, error) {
	rows, err := db.conn.Query(`
		SELECT path, line, kind, message FROM diagnostics
		ORDER BY kind = ? DESC, path, line
	`, DiagUnresolved)
	if err != nil {
		return nil, fmt.Errorf("index: diagnostics: %w", err)
	}
	defer rows.Close()

	var out []DiagRow
	for rows.Next() {
		var d DiagRow
		if err := rows.Scan(&d.Path, &d.Line, &d.Kind, &d.Message); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// GraphNode is a node in the site graph.
type GraphNode struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
}

// GraphEdge is a resolved internal edge in the site graph.
type GraphEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}
