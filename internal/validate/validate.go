// Package validate checks the content tree for problems that listing and
// rendering would otherwise hide.
package validate

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"ftlnomad/internal/content"
	"ftlnomad/internal/hex"
)

type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warning"
)

const (
	codeMissingDirectory     = "missing_directory"
	codeInvalidSource        = "invalid_source"
	codeSlugCollision        = "slug_collision"
	codeEnumInvalid          = "enum_value_invalid"
	codeCubeInvariant        = "cube_invariant"
	codeDuplicateCoordinates = "duplicate_coordinates"
)

type Issue struct {
	Severity Severity     `json:"severity"`
	Code     string       `json:"code"`
	Message  string       `json:"message"`
	Kind     content.Kind `json:"kind"`
	Slug     string       `json:"slug,omitempty"`
	FilePath string       `json:"filePath,omitempty"`
}

type Report struct {
	Issues []Issue `json:"issues"`
}

// HasErrors reports whether any issue has error severity.
func (r *Report) HasErrors() bool {
	return slices.ContainsFunc(r.Issues, func(i Issue) bool { return i.Severity == SeverityError })
}

type Options struct {
	// Kinds limits the run. Empty means every kind.
	Kinds []content.Kind
}

type Library interface {
	Collections() []content.Collection
}

func Run(ctx context.Context, lib Library, options Options) (*Report, error) {
	if lib == nil {
		return nil, fmt.Errorf("library is required")
	}

	issues := make([]Issue, 0)
	for _, coll := range lib.Collections() {
		if len(options.Kinds) > 0 && !slices.Contains(options.Kinds, coll.Kind()) {
			continue
		}
		found, err := checkCollection(ctx, coll)
		if err != nil {
			return nil, err
		}
		issues = append(issues, found...)
	}
	return &Report{Issues: issues}, nil
}

func checkCollection(ctx context.Context, coll content.Collection) ([]Issue, error) {
	kind := coll.Kind()

	files, err := coll.Sources(ctx)
	if errors.Is(err, content.ErrRootMissing) {
		return []Issue{{
			Severity: SeverityWarn,
			Code:     codeMissingDirectory,
			Message:  "content directory does not exist",
			Kind:     kind,
		}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list %s sources: %w", kind, err)
	}

	var issues []Issue
	var entries []content.Entry
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entry, err := coll.LoadEntry(name)
		if err != nil {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     codeInvalidSource,
				Message:  sourceMessage(err),
				Kind:     kind,
				FilePath: name,
			})
			continue
		}
		entries = append(entries, entry)
	}

	if coll.SlugStrategy() == content.SlugFilename {
		issues = append(issues, slugCollisions(kind, entries)...)
	}
	for _, entry := range entries {
		issues = append(issues, checkEntry(entry)...)
	}
	if kind == content.KindSystem {
		issues = append(issues, duplicateCoordinates(entries)...)
	}
	return issues, nil
}

func sourceMessage(err error) string {
	var srcErr *content.SourceError
	if errors.As(err, &srcErr) {
		return srcErr.Err.Error()
	}
	return err.Error()
}

// slugCollisions reports every slug shared by more than one file, naming the
// file that wins resolution.
func slugCollisions(kind content.Kind, entries []content.Entry) []Issue {
	sources := make(map[string][]string)
	var order []string
	for _, entry := range entries {
		meta := entry.EntryMeta()
		if _, seen := sources[meta.Slug]; !seen {
			order = append(order, meta.Slug)
		}
		sources[meta.Slug] = append(sources[meta.Slug], meta.Source)
	}

	var issues []Issue
	for _, slug := range order {
		files := sources[slug]
		if len(files) < 2 {
			continue
		}
		issues = append(issues, Issue{
			Severity: SeverityWarn,
			Code:     codeSlugCollision,
			Message:  fmt.Sprintf("slug shared by %s; %s wins", strings.Join(files, ", "), files[len(files)-1]),
			Kind:     kind,
			Slug:     slug,
		})
	}
	return issues
}

func checkEntry(entry content.Entry) []Issue {
	meta := entry.EntryMeta()
	issue := func(severity Severity, code, message string) Issue {
		return Issue{Severity: severity, Code: code, Message: message, Kind: meta.Kind, Slug: meta.Slug, FilePath: meta.Source}
	}

	var issues []Issue
	switch e := entry.(type) {
	case content.CrewMember:
		if !containsFold(content.CrewStatuses, e.Status) {
			issues = append(issues, issue(SeverityWarn, codeEnumInvalid, fmt.Sprintf("unknown crew status: %s", e.Status)))
		}
	case content.NPC:
		if !containsFold(content.NPCStatuses, e.Status) {
			issues = append(issues, issue(SeverityWarn, codeEnumInvalid, fmt.Sprintf("unknown npc status: %s", e.Status)))
		}
		if !containsFold(content.ThreatLevels, e.Threat) {
			issues = append(issues, issue(SeverityWarn, codeEnumInvalid, fmt.Sprintf("unknown threat level: %s", e.Threat)))
		}
	case content.StarSystem:
		if !slices.Contains(content.SystemTypes, e.Type) {
			issues = append(issues, issue(SeverityError, codeEnumInvalid, fmt.Sprintf("invalid system type: %s", e.Type)))
		}
		if !slices.Contains(content.SystemThreats, e.Threats) {
			issues = append(issues, issue(SeverityError, codeEnumInvalid, fmt.Sprintf("invalid threats value: %s", e.Threats)))
		}
		for _, poi := range e.PointsOfInterest {
			if !slices.Contains(content.POITypes, poi.Type) {
				issues = append(issues, issue(SeverityError, codeEnumInvalid, fmt.Sprintf("invalid point of interest type for %s: %s", poi.ID, poi.Type)))
			}
		}
		if !e.Coordinates.Valid() {
			c := e.Coordinates
			issues = append(issues, issue(SeverityError, codeCubeInvariant, fmt.Sprintf("coordinates q=%d r=%d s=%d do not sum to zero", c.Q, c.R, c.S)))
		}
	}
	return issues
}

// duplicateCoordinates reports each system placed on a cell already taken by
// a system earlier in listing order. The grid shows only the first.
func duplicateCoordinates(entries []content.Entry) []Issue {
	var systems []content.StarSystem
	for _, entry := range entries {
		if sys, ok := entry.(content.StarSystem); ok {
			systems = append(systems, sys)
		}
	}
	slices.SortStableFunc(systems, content.CompareSystems)

	first := make(map[hex.Key]string)
	var issues []Issue
	for _, sys := range systems {
		key := sys.Coordinates.Key()
		owner, taken := first[key]
		if !taken {
			first[key] = sys.ID
			continue
		}
		issues = append(issues, Issue{
			Severity: SeverityError,
			Code:     codeDuplicateCoordinates,
			Message:  fmt.Sprintf("coordinates %d,%d already used by %s", key.Q, key.R, owner),
			Kind:     content.KindSystem,
			Slug:     sys.Slug,
			FilePath: sys.Source,
		})
	}
	return issues
}

func containsFold(values []string, target string) bool {
	return slices.ContainsFunc(values, func(v string) bool { return strings.EqualFold(v, target) })
}
