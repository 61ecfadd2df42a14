package content

import (
	"cmp"
	"strings"

	"ftlnomad/internal/parser"
)

const defaultLoreCategory = "general"

type LoreEntry struct {
	Meta
	Title    string `json:"title"`
	Category string `json:"category"`
	Summary  string `json:"summary"`
}

func LoreDefinition() Definition[LoreEntry] {
	return Definition[LoreEntry]{
		Kind:       KindLore,
		Extensions: markdownExtensions,
		Decode: func(doc *parser.Document, meta Meta) (LoreEntry, error) {
			f := fields(doc.Frontmatter)
			title := f.String(meta.Slug, "title", "name")
			meta.Title = title
			return LoreEntry{
				Meta:     meta,
				Title:    title,
				Category: strings.ToLower(f.String(defaultLoreCategory, "category")),
				Summary:  f.String(Excerpt(doc.Body, LoreExcerptLength), "summary"),
			}, nil
		},
		Compare: func(a, b LoreEntry) int {
			return cmp.Or(
				strings.Compare(a.Category, b.Category),
				strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)),
				strings.Compare(a.Slug, b.Slug),
			)
		},
	}
}
