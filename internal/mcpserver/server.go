// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the built documentation site to LLM agents via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/ansuz/internal/index"
)

// Server wraps the MCP server with Ansuz tools.
type Server struct {
	mcp *server.MCPServer
	db  index.SiteIndex
}

// New creates a new MCP server with all Ansuz tools registered.
func New(db index.SiteIndex) *Server {
	s := &Server{db: db}

	s.mcp = server.NewMCPServer(
		"Ansuz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("read_document",
		mcp.WithDescription("Read the full Markdown source of one documentation page."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the document (e.g. topics/aggregates.md)")),
	), s.readDocument)

	s.mcp.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List every document in the site with its title."),
	), s.listDocuments)

	s.mcp.AddTool(mcp.NewTool("get_backlinks",
		mcp.WithDescription("Find all documents that link to the specified document."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path of the document to find backlinks for")),
	), s.getBacklinks)

	s.mcp.AddTool(mcp.NewTool("get_diagnostics",
		mcp.WithDescription("Return the link-integrity diagnostics of the last build: "+
			"unresolved links, duplicate heading anchors, and orphaned documents."),
	), s.getDiagnostics)

	s.mcp.AddTool(mcp.NewTool("search_docs",
		mcp.WithDescription("Search documentation content and titles."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchDocs)

	// Resource: authoring conventions the link checker enforces.
	s.mcp.AddResource(
		mcp.NewResource("ansuz://authoring-guide", "Authoring Guide",
			mcp.WithResourceDescription("Link and anchor conventions validated by the site builder."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readAuthoringGuideResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) readDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	_, body, err := s.db.GetDocument(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(body), nil
}

func (s *Server) listDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docs, err := s.db.ListDocuments()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var lines []string
	for _, d := range docs {
		if d.Title != "" {
			lines = append(lines, fmt.Sprintf("%s\t%s", d.Path, d.Title))
		} else {
			lines = append(lines, d.Path)
		}
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) getBacklinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	bl, err := s.db.Backlinks(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(bl) == 0 {
		return mcp.NewToolResultText("no backlinks found"), nil
	}
	return mcp.NewToolResultText(strings.Join(bl, "\n")), nil
}

func (s *Server) getDiagnostics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	diags, err := s.db.Diagnostics()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(diags) == 0 {
		return mcp.NewToolResultText("no diagnostics; the site is fully consistent"), nil
	}
	out, _ := json.MarshalIndent(diags, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchDocs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.db.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readAuthoringGuideResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "ansuz://authoring-guide",
			MIMEType: "text/markdown",
			Text:     AuthoringGuide,
		},
	}, nil
}
