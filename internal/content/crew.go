package content

import (
	"cmp"
	"strings"

	"ftlnomad/internal/parser"
)

const (
	CrewStatusActive = "active"
	defaultCrewRole  = "Crew"
)

// CrewStatuses are the statuses validate accepts.
var CrewStatuses = []string{"active", "inactive", "deceased", "missing"}

type CrewMember struct {
	Meta
	Name      string `json:"name"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	Species   string `json:"species,omitempty"`
	Rank      string `json:"rank,omitempty"`
	Origin    string `json:"origin,omitempty"`
	Image     string `json:"image"`
	Backstory string `json:"backstory"`
}

func CrewDefinition(images *ImageResolver) Definition[CrewMember] {
	return Definition[CrewMember]{
		Kind:       KindCrew,
		Extensions: markdownExtensions,
		Decode: func(doc *parser.Document, meta Meta) (CrewMember, error) {
			f := fields(doc.Frontmatter)
			name := f.String(meta.Slug, "name")
			meta.Title = name

			image := f.String("", "image")
			if image == "" {
				image = images.CrewImage(name)
			}
			return CrewMember{
				Meta:      meta,
				Name:      name,
				Role:      f.String(defaultCrewRole, "role"),
				Status:    strings.ToLower(f.String(CrewStatusActive, "status")),
				Species:   f.String("", "species"),
				Rank:      f.String("", "rank"),
				Origin:    f.String("", "origin", "homeworld"),
				Image:     image,
				Backstory: Excerpt(doc.Body, CrewExcerptLength),
			}, nil
		},
		Compare: compareCrew,
	}
}

// Active crew first, then by name and slug.
func compareCrew(a, b CrewMember) int {
	aActive, bActive := a.Status == CrewStatusActive, b.Status == CrewStatusActive
	if aActive != bActive {
		if aActive {
			return -1
		}
		return 1
	}
	return cmp.Or(
		strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)),
		strings.Compare(a.Slug, b.Slug),
	)
}
