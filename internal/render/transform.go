package render

import (
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/starford/ansuz/internal/extract"
)

// headingIDs sets each heading's id attribute using the same slug rule the
// extractor uses, so verified anchors keep working in the rendered site.
// Colliding slugs are emitted as-is: the checker already reported them as
// duplicate-slug warnings, and suffixing here would break verified links.
type headingIDs struct{}

func (t *headingIDs) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}

		var raw []byte
		for i := 0; i < heading.Lines().Len(); i++ {
			line := heading.Lines().At(i)
			raw = append(raw, line.Value(reader.Source())...)
		}

		id := extract.Slugify(string(raw))
		if id == "" {
			id = "heading"
		}
		heading.SetAttribute([]byte("id"), []byte(id))

		return ast.WalkContinue, nil
	})
}

// linkRewriter swaps link destinations for their output-site addressing.
// The rewrite map is keyed by the raw target as written in the source, so
// only targets the graph actually resolved are touched.
type linkRewriter struct {
	rewrites map[string]string
}

func (t *linkRewriter) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	if len(t.rewrites) == 0 {
		return
	}
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		link, ok := n.(*ast.Link)
		if !ok {
			return ast.WalkContinue, nil
		}
		if repl, ok := t.rewrites[string(link.Destination)]; ok {
			link.Destination = []byte(repl)
		}
		return ast.WalkContinue, nil
	})
}
