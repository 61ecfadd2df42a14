package content

import (
	"cmp"
	"strings"

	"ftlnomad/internal/parser"
)

var (
	NPCStatuses  = []string{"alive", "deceased", "missing", "unknown"}
	ThreatLevels = []string{"none", "low", "medium", "high", "extreme", "unknown"}
)

type NPC struct {
	Meta
	Name        string `json:"name"`
	Role        string `json:"role"`
	Faction     string `json:"faction"`
	Location    string `json:"location"`
	Status      string `json:"status"`
	Threat      string `json:"threat"`
	Description string `json:"description"`
}

func NPCDefinition() Definition[NPC] {
	return Definition[NPC]{
		Kind:       KindNPC,
		Extensions: markdownExtensions,
		Decode: func(doc *parser.Document, meta Meta) (NPC, error) {
			f := fields(doc.Frontmatter)
			name := f.String(meta.Slug, "name")
			meta.Title = name
			return NPC{
				Meta:        meta,
				Name:        name,
				Role:        f.String("Unknown", "role", "occupation"),
				Faction:     f.String("Independent", "faction", "affiliation"),
				Location:    f.String("Unknown", "location", "lastSeen", "last_seen"),
				Status:      strings.ToLower(f.String("alive", "status")),
				Threat:      strings.ToLower(f.String("unknown", "threat", "threatLevel", "threat_level")),
				Description: f.String(Excerpt(doc.Body, NPCExcerptLength), "description"),
			}, nil
		},
		Compare: func(a, b NPC) int {
			return cmp.Or(
				strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)),
				strings.Compare(a.Slug, b.Slug),
			)
		},
	}
}
