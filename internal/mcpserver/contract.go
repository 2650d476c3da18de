package mcpserver

// AuthoringGuide describes the link and anchor conventions the site builder
// validates. LLM consumers should follow it when proposing edits so their
// output passes the consistency check.
const AuthoringGuide = `# Ansuz Authoring Guide

Every Markdown article in the site MUST follow these linking conventions.
The builder validates them on every run; violations become diagnostics.

## Cross-references

` + "```" + `markdown
See [the aggregates article](aggregates.md) for details.
Deep link: [invariants](aggregates.md#invariants).
Same-page link: [summary](#summary).
External: [Evans' book](https://www.domainlanguage.com/ddd/).
` + "```" + `

## Rules

1. **Inline links only.** Use ` + "`" + `[label](target)` + "`" + `; reference-style link
   definitions are not resolved.
2. **Relative targets.** Document targets are resolved against the linking
   article's directory; a leading ` + "`" + `/` + "`" + ` addresses the site root.
   Always include the ` + "`" + `.md` + "`" + ` extension.
3. **Anchors must exist.** ` + "`" + `target.md#slug` + "`" + ` is valid only when the target
   document has a heading whose slug is ` + "`" + `slug` + "`" + `. Slugs are the heading
   text lowercased, stripped of punctuation, spaces collapsed to hyphens:
   ` + "`" + `## Section One` + "`" + ` becomes ` + "`" + `#section-one` + "`" + `.
4. **Unique headings.** Two headings with the same slug in one document
   collide; the builder reports a duplicate-anchor warning.
5. **Reachability.** Every article should be reachable from the index
   document (README.md) through resolved links; unreachable articles are
   reported as orphans.
6. **Encoding** is UTF-8 with a trailing newline.
`
