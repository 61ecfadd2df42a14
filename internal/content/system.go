package content

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"

	"ftlnomad/internal/hex"
	"ftlnomad/internal/parser"
)

var (
	SystemTypes   = []string{"core", "colony", "frontier", "military", "research", "derelict"}
	SystemThreats = []string{"Low", "Medium", "High", "Unknown"}
	POITypes      = []string{"station", "anomaly", "wreckage", "outpost", "beacon", "other"}
)

type StarSystem struct {
	Meta
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Coordinates      hex.Axial         `json:"coordinates"`
	Type             string            `json:"type"`
	Planets          int               `json:"planets"`
	Faction          string            `json:"faction"`
	Description      string            `json:"description"`
	Threats          string            `json:"threats"`
	Resources        []string          `json:"resources"`
	Visited          bool              `json:"visited"`
	LastVisit        string            `json:"lastVisit,omitempty"`
	Population       string            `json:"population,omitempty"`
	Government       string            `json:"government,omitempty"`
	Economy          string            `json:"economy,omitempty"`
	StarType         string            `json:"starType,omitempty"`
	Climate          string            `json:"climate,omitempty"`
	Gravity          string            `json:"gravity,omitempty"`
	Atmosphere       string            `json:"atmosphere,omitempty"`
	PointsOfInterest []PointOfInterest `json:"pointsOfInterest"`
	TradingPosts     []string          `json:"tradingPosts"`
	JumpGates        []string          `json:"jumpGates"`
	IsEmpty          bool              `json:"isEmpty"`
}

// PointOfInterest belongs to exactly one system.
type PointOfInterest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Coordinates string `json:"coordinates,omitempty"`
	Discovered  bool   `json:"discovered"`
	Threat      string `json:"threat,omitempty"`
}

func SystemDefinition() Definition[StarSystem] {
	return Definition[StarSystem]{
		Kind:       KindSystem,
		Extensions: []string{".md", ".markdown", ".json"},
		Decode:     decodeSystem,
		Compare: CompareSystems,
	}
}

// CompareSystems is the listing order of systems: name ignoring case, then
// slug. The grid keeps the first system listed on a shared coordinate.
func CompareSystems(a, b StarSystem) int {
	return cmp.Or(
		strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)),
		strings.Compare(a.Slug, b.Slug),
	)
}

func decodeSystem(doc *parser.Document, meta Meta) (StarSystem, error) {
	f := fields(doc.Frontmatter)

	coords, err := systemCoordinates(f)
	if err != nil {
		return StarSystem{}, err
	}
	planets, err := f.Int(0, "planets")
	if err != nil {
		return StarSystem{}, err
	}

	id := f.String(meta.Slug, "id")
	name := f.String(id, "name")
	meta.Title = name

	pois, err := pointsOfInterest(id, f.List("pointsOfInterest", "points_of_interest"))
	if err != nil {
		return StarSystem{}, err
	}

	return StarSystem{
		Meta:             meta,
		ID:               id,
		Name:             name,
		Coordinates:      coords,
		Type:             strings.ToLower(f.String("frontier", "type")),
		Planets:          planets,
		Faction:          f.String("", "faction"),
		Description:      f.String(Excerpt(doc.Body, SystemExcerptLength), "description"),
		Threats:          f.String("Unknown", "threats", "threat"),
		Resources:        f.Strings("resources"),
		Visited:          f.Bool(false, "visited"),
		LastVisit:        f.String("", "lastVisit", "last_visit"),
		Population:       f.String("", "population"),
		Government:       f.String("", "government"),
		Economy:          f.String("", "economy"),
		StarType:         f.String("", "starType", "star_type"),
		Climate:          f.String("", "climate"),
		Gravity:          f.String("", "gravity"),
		Atmosphere:       f.String("", "atmosphere"),
		PointsOfInterest: pois,
		TradingPosts:     f.Strings("tradingPosts", "trading_posts"),
		JumpGates:        f.Strings("jumpGates", "jump_gates"),
	}, nil
}

// systemCoordinates accepts {q, r, s}, [q, r, s], "q,r,s" or top-level q and
// r. A missing s is derived; an authored s is kept as written so that
// validate can report a broken invariant.
func systemCoordinates(f fields) (hex.Axial, error) {
	if m, ok := f.Map("coordinates", "coords"); ok {
		return axialFrom(m)
	}
	if list := f.List("coordinates", "coords"); list != nil {
		m := fields{}
		for i, key := range []string{"q", "r", "s"} {
			if i < len(list) {
				m[key] = list[i]
			}
		}
		return axialFrom(m)
	}
	if s := f.String("", "coordinates", "coords"); s != "" {
		m := fields{}
		parts := strings.Split(strings.Trim(s, "()"), ",")
		for i, key := range []string{"q", "r", "s"} {
			if i < len(parts) {
				m[key] = strings.TrimSpace(parts[i])
			}
		}
		return axialFrom(m)
	}
	if _, ok := f.lookup("q"); ok {
		return axialFrom(f)
	}
	return hex.Axial{}, fmt.Errorf("%w: coordinates", ErrMissingField)
}

func axialFrom(m fields) (hex.Axial, error) {
	if _, ok := m.lookup("q"); !ok {
		return hex.Axial{}, fmt.Errorf("%w: coordinates.q", ErrMissingField)
	}
	if _, ok := m.lookup("r"); !ok {
		return hex.Axial{}, fmt.Errorf("%w: coordinates.r", ErrMissingField)
	}
	q, err := m.Int(0, "q")
	if err != nil {
		return hex.Axial{}, err
	}
	r, err := m.Int(0, "r")
	if err != nil {
		return hex.Axial{}, err
	}
	axial := hex.NewAxial(q, r)
	if _, ok := m.lookup("s"); ok {
		s, err := m.Int(axial.S, "s")
		if err != nil {
			return hex.Axial{}, err
		}
		axial.S = s
	}
	return axial, nil
}

func pointsOfInterest(systemID string, list []any) ([]PointOfInterest, error) {
	pois := make([]PointOfInterest, 0, len(list))
	for i, item := range list {
		var f fields
		switch v := item.(type) {
		case map[string]any:
			f = fields(v)
		case string:
			f = fields{"name": v}
		default:
			return nil, fmt.Errorf("%w: pointsOfInterest[%d]", ErrInvalidField, i)
		}
		id := f.String(systemID+"-poi-"+strconv.Itoa(i+1), "id")
		pois = append(pois, PointOfInterest{
			ID:          id,
			Name:        f.String(id, "name"),
			Type:        strings.ToLower(f.String("other", "type")),
			Description: f.String("", "description"),
			Coordinates: f.String("", "coordinates"),
			Discovered:  f.Bool(false, "discovered"),
			Threat:      f.String("", "threat"),
		})
	}
	return pois, nil
}
