package index

import (
	"github.com/starford/ansuz/internal/models"
)

// SiteIndex defines the interface for site index queries. Consumers should
// depend on this interface rather than the concrete *DB type to facilitate
// testing with mocks.
type SiteIndex interface {
	ReplaceAll(g *models.Graph, rep *models.Report) error
	ListDocuments() ([]DocRow, error)
	GetDocument(path string) (*DocRow, string, error)
	Backlinks(target string) ([]string, error)
	GraphData() ([]GraphNode, []GraphEdge, error)
	Diagnostics() ([]DiagRow, error)
	Search(query string, limit int) ([]SearchResult, error)
	Close() error
}

// Verify *DB satisfies SiteIndex at compile time.
var _ SiteIndex = (*DB)(nil)
