package content

import (
	"strings"
	"time"

	"ftlnomad/internal/parser"
)

type MissionLog struct {
	Meta
	Title     string `json:"title"`
	EarthDate string `json:"earthDate"`
	ShipDate  string `json:"shipDate,omitempty"`
	Author    string `json:"author,omitempty"`
	Location  string `json:"location,omitempty"`
	Mission   string `json:"mission,omitempty"`
	Summary   string `json:"summary"`

	// Date is EarthDate parsed; zero when it could not be parsed.
	Date time.Time `json:"-"`
}

var earthDateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"01/02/2006",
	"2006/01/02",
}

// ParseEarthDate accepts the date layouts authors use in log frontmatter.
func ParseEarthDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range earthDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func LogDefinition() Definition[MissionLog] {
	return Definition[MissionLog]{
		Kind:       KindLog,
		Extensions: markdownExtensions,
		Decode: func(doc *parser.Document, meta Meta) (MissionLog, error) {
			f := fields(doc.Frontmatter)
			title := f.String(meta.Slug, "title", "name")
			meta.Title = title

			earthDate := f.String("", "earthDate", "earth_date", "date")
			date, _ := ParseEarthDate(earthDate)
			return MissionLog{
				Meta:      meta,
				Title:     title,
				EarthDate: earthDate,
				ShipDate:  f.String("", "shipDate", "ship_date", "stardate"),
				Author:    f.String("", "author"),
				Location:  f.String("", "location"),
				Mission:   f.String("", "mission"),
				Summary:   f.String(Excerpt(doc.Body, LogExcerptLength), "summary"),
				Date:      date,
			}, nil
		},
		Compare: compareLogs,
	}
}

// Newest first. Undated logs sort after dated ones.
func compareLogs(a, b MissionLog) int {
	aDated, bDated := !a.Date.IsZero(), !b.Date.IsZero()
	switch {
	case aDated && !bDated:
		return -1
	case !aDated && bDated:
		return 1
	case aDated && bDated && !a.Date.Equal(b.Date):
		if a.Date.After(b.Date) {
			return -1
		}
		return 1
	}
	return strings.Compare(a.Slug, b.Slug)
}
