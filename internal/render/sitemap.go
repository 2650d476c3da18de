package render

import (
	"encoding/xml"
	"fmt"

	"github.com/starford/ansuz/internal/models"
)

type xmlURLSet struct {
	XMLName xml.Name `xml:"urlset"`
	XMLNS   string   `xml:"xmlns,attr"`
	URLs    []xmlURL `xml:"url"`
}

type xmlURL struct {
	Loc string `xml:"loc"`
}

// sitemap builds sitemap.xml for the rendered site. No lastmod values are
// emitted: they would break byte-idempotent rebuilds.
func (r *Renderer) sitemap(g *models.Graph) ([]byte, error) {
	set := xmlURLSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, p := range g.Paths {
		loc := HTMLPath(p)
		if r.baseURL != "" {
			loc = r.baseURL + "/" + loc
		}
		set.URLs = append(set.URLs, xmlURL{Loc: loc})
	}

	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render: marshal sitemap: %w", err)
	}
	return append([]byte(xml.Header), append(body, '\n')...), nil
}
