package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/starford/ansuz/internal/check"
	"github.com/starford/ansuz/internal/extract"
	"github.com/starford/ansuz/internal/graph"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/models"
)

func testIndex(t *testing.T, sources map[string]string) *index.DB {
	t.Helper()
	f, err := os.CreateTemp("", "ansuz-api-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := index.Open(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

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
	if err := db.ReplaceAll(g, check.Run(g, "README.md")); err != nil {
		t.Fatal(err)
	}
	return db
}

func testRouter(t *testing.T, rebuild func()) http.Handler {
	t.Helper()
	db := testIndex(t, map[string]string{
		"README.md": "# Home\n\n[guide](topics/guide.md) [gone](Missing.md)\n",
		"topics/guide.md": "# Guide\n\n[home](../README.md)\n",
	})
	return NewRouter(NewService(db, rebuild), false, "", nil)
}

func get(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var body map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid JSON from %s: %v", path, err)
		}
	}
	return rec, body
}

func TestListDocuments(t *testing.T) {
	h := testRouter(t, nil)
	rec, body := get(t, h, "/documents")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["total"].(float64) != 2 {
		t.Errorf("total = %v", body["total"])
	}
}

func TestGetDocument(t *testing.T) {
	h := testRouter(t, nil)
	rec, body := get(t, h, "/documents/topics/guide.md")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %v", rec.Code, body)
	}
	if body["title"] != "Guide" {
		t.Errorf("title = %v", body["title"])
	}
	backlinks := body["backlinks"].([]any)
	if len(backlinks) != 1 || backlinks[0] != "README.md" {
		t.Errorf("backlinks = %v", backlinks)
	}
}

func TestGetDocumentNotFound(t *testing.T) {
	h := testRouter(t, nil)
	rec, _ := get(t, h, "/documents/nope.md")

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestBacklinksRequiresTarget(t *testing.T) {
	h := testRouter(t, nil)
	rec, _ := get(t, h, "/backlinks")

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestBacklinks(t *testing.T) {
	h := testRouter(t, nil)
	rec, body := get(t, h, "/backlinks?target=README.md")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	bl := body["backlinks"].([]any)
	if len(bl) != 1 || bl[0] != "topics/guide.md" {
		t.Errorf("backlinks = %v", bl)
	}
}

func TestGraph(t *testing.T) {
	h := testRouter(t, nil)
	rec, body := get(t, h, "/graph")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if nodes := body["nodes"].([]any); len(nodes) != 2 {
		t.Errorf("nodes = %v", nodes)
	}
	if links := body["links"].([]any); len(links) != 2 {
		t.Errorf("links = %v", links)
	}
}

func TestDiagnostics(t *testing.T) {
	h := testRouter(t, nil)
	rec, body := get(t, h, "/diagnostics")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	diags := body["diagnostics"].([]any)
	if len(diags) != 1 {
		t.Fatalf("diagnostics = %v", diags)
	}
	first := diags[0].(map[string]any)
	if first["kind"] != "unresolved" || first["path"] != "README.md" {
		t.Errorf("diagnostic = %v", first)
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	h := testRouter(t, nil)
	rec, _ := get(t, h, "/search")

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestRebuild(t *testing.T) {
	called := false
	h := testRouter(t, func() { called = true })

	req := httptest.NewRequest(http.MethodPost, "/rebuild", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d", rec.Code)
	}
	if !called {
		t.Error("rebuild trigger not invoked")
	}
}

func TestRebuildUnavailable(t *testing.T) {
	h := testRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/rebuild", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	db := testIndex(t, map[string]string{"README.md": "# Home\n"})
	h := NewRouter(NewService(db, nil), true, "secret", nil)

	req := httptest.NewRequest(http.MethodGet, "/documents", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("missing token: status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/documents", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong token: status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/documents", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("valid token: status = %d", rec.Code)
	}
}
