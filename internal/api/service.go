package api

import (
	"github.com/starford/ansuz/internal/index"
)

// Service answers API queries from the site index and exposes the rebuild
// trigger. It never touches the source tree directly: everything it returns
// reflects the last completed build.
type Service struct {
	db      index.SiteIndex
	rebuild func()
}

// NewService creates a new API service. rebuild may be nil when manual
// rebuilds are not exposed.
func NewService(db index.SiteIndex, rebuild func()) *Service {
	return &Service{db: db, rebuild: rebuild}
}

// DocumentDetail is the response payload for a single document.
type DocumentDetail struct {
	Path      string   `json:"path"`
	Title     string   `json:"title"`
	Checksum  string   `json:"checksum"`
	Content   string   `json:"content"`
	Backlinks []string `json:"backlinks"`
}

// ListDocuments returns every indexed document.
func (s *Service) ListDocuments() ([]index.DocRow, error) {
	return s.db.ListDocuments()
}

// GetDocument returns one document enriched with its backlinks.
func (s *Service) GetDocument(path string) (*DocumentDetail, error) {
	row, body, err := s.db.GetDocument(path)
	if err != nil {
		return nil, err
	}
	bl, err := s.db.Backlinks(path)
	if err != nil {
		return nil, err
	}
	if bl == nil {
		bl = []string{}
	}
	return &DocumentDetail{
		Path:      row.Path,
		Title:     row.Title,
		Checksum:  row.Checksum,
		Content:   body,
		Backlinks: bl,
	}, nil
}

// Backlinks returns the documents linking to target.
func (s *Service) Backlinks(target string) ([]string, error) {
	return s.db.Backlinks(target)
}

// Graph returns the site graph.
func (s *Service) Graph() ([]index.GraphNode, []index.GraphEdge, error) {
	return s.db.GraphData()
}

// Diagnostics returns the last build's diagnostics.
func (s *Service) Diagnostics() ([]index.DiagRow, error) {
	return s.db.Diagnostics()
}

// Search delegates to the index.
func (s *Service) Search(query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// TriggerRebuild schedules a rebuild; returns false when rebuilds are not exposed.
func (s *Service) TriggerRebuild() bool {
	if s.rebuild == nil {
		return false
	}
	s.rebuild()
	return true
}
