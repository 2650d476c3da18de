// Package extract scans Markdown content for inline links and heading anchors.
//
// Extraction is pure and restartable: parsing the same content twice yields
// identical results. Targets are classified here (external, anchor, relative
// document path); whether they actually resolve is decided later by the
// graph builder, which has global knowledge of the document set.
package extract

import (
	"path"
	"regexp"
	"strings"
	"unicode"

	"github.com/starford/ansuz/internal/models"
)

var (
	// Inline links: [label](target) with an optional quoted title.
	// The leading capture distinguishes image syntax, which is skipped.
	inlineLinkRe = regexp.MustCompile(`(!?)\[([^\]]*)\]\(([^)\s]+)(?:\s+"[^"]*")?\)`)
	headingRe    = regexp.MustCompile(`^(#{1,6})\s+(.+?)\s*$`)
)

// Schemes treated as external targets.
var externalSchemes = []string{"http://", "https://", "mailto:"}

// Result holds everything extracted from one document.
type Result struct {
	Title    string
	Headings []models.Heading
	Links    []models.Link
}

// Parse scans content line by line, tracking 1-based line numbers for
// diagnostics. Lines inside fenced code blocks are ignored.
func Parse(source string, content []byte) *Result {
	res := &Result{}
	inFence := false

	for i, line := range strings.Split(string(content), "\n") {
		lineNo := i + 1

		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}

		if m := headingRe.FindStringSubmatch(line); m != nil {
			h := models.Heading{
				Level: len(m[1]),
				Text:  m[2],
				Slug:  Slugify(m[2]),
				Line:  lineNo,
			}
			res.Headings = append(res.Headings, h)
			if res.Title == "" && h.Level == 1 {
				res.Title = h.Text
			}
			continue
		}

		for _, m := range inlineLinkRe.FindAllStringSubmatch(line, -1) {
			if m[1] == "!" {
				continue // image, target is an asset, not a document
			}
			l := models.Link{
				Source:    source,
				Label:     m[2],
				RawTarget: m[3],
				Line:      lineNo,
			}
			l.Kind, l.TargetPath, l.TargetSlug = classify(source, m[3])
			res.Links = append(res.Links, l)
		}
	}

	return res
}

// classify splits a raw target into its resolution inputs. External targets
// are resolved trivially; everything else starts out unresolved until the
// graph builder checks it against the document set.
func classify(source, raw string) (models.LinkKind, string, string) {
	for _, scheme := range externalSchemes {
		if strings.HasPrefix(raw, scheme) {
			return models.LinkExternal, "", ""
		}
	}

	target := raw
	slug := ""
	if i := strings.Index(raw, "#"); i >= 0 {
		target, slug = raw[:i], raw[i+1:]
	}

	// An empty path component means the anchor refers to the current document.
	if target == "" {
		return models.LinkUnresolved, source, slug
	}

	return models.LinkUnresolved, normalize(source, target), slug
}

// normalize resolves a document target against the source document's
// directory. Targets starting with "/" are taken relative to the site root.
func normalize(source, target string) string {
	target = strings.ReplaceAll(target, "\\", "/")
	if strings.HasPrefix(target, "/") {
		return path.Clean(strings.TrimPrefix(target, "/"))
	}
	return path.Clean(path.Join(path.Dir(source), target))
}

// Slugify converts heading text to its anchor slug: lowercase, strip
// everything that is not alphanumeric, hyphen, or space, then collapse
// space runs into single hyphens. Deterministic and pure.
func Slugify(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), "-")
}
