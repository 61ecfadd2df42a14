package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"ftlnomad/internal/content"
	"ftlnomad/internal/hex"
	"ftlnomad/internal/starmap"
)

const defaultHexSize = 40

type ListEntriesInput struct {
	Kind string `json:"kind" jsonschema:"content kind: crew, npc, log, lore or system"`
}

type GetEntryInput struct {
	Kind string `json:"kind" jsonschema:"content kind: crew, npc, log, lore or system"`
	Slug string `json:"slug" jsonschema:"entry slug as listed"`
}

type SearchSystemsInput struct {
	Query string `json:"query" jsonschema:"substring matched against system names and factions"`
}

type GetGridInput struct {
	CenterQ int `json:"centerQ,omitempty" jsonschema:"axial q of the centre cell"`
	CenterR int `json:"centerR,omitempty" jsonschema:"axial r of the centre cell"`
	Radius  int `json:"radius,omitempty" jsonschema:"rings around the centre, clamped to the server maximum"`
}

type PixelToHexInput struct {
	X       float64 `json:"x" jsonschema:"pixels right of the centre cell"`
	Y       float64 `json:"y" jsonschema:"pixels below the centre cell"`
	CenterQ int     `json:"centerQ,omitempty" jsonschema:"axial q of the centre cell"`
	CenterR int     `json:"centerR,omitempty" jsonschema:"axial r of the centre cell"`
	HexSize float64 `json:"hexSize,omitempty" jsonschema:"hex radius in pixels, default 40"`
	Zoom    float64 `json:"zoom,omitempty" jsonschema:"zoom factor, default 1"`
}

type SearchContentInput struct {
	Query string `json:"query" jsonschema:"web-search style query"`
	Kind  string `json:"kind,omitempty" jsonschema:"restrict to one content kind"`
}

type ListEntriesOutput struct {
	Kind      string           `json:"kind"`
	Available bool             `json:"available"`
	Entries   []map[string]any `json:"entries"`
}

type EntryOutput struct {
	Kind  string         `json:"kind"`
	Slug  string         `json:"slug"`
	Entry map[string]any `json:"entry"`
}

// SystemSummary is the compact system view used in grid and search results.
type SystemSummary struct {
	ID      string `json:"id"`
	Slug    string `json:"slug"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Faction string `json:"faction,omitempty"`
	Threats string `json:"threats"`
	Planets int    `json:"planets"`
	Visited bool   `json:"visited"`
}

type SearchSystemsOutput struct {
	Systems []SystemSummary `json:"systems"`
}

type CellOutput struct {
	Coordinates hex.Axial      `json:"coordinates"`
	IsEmpty     bool           `json:"isEmpty"`
	System      *SystemSummary `json:"system,omitempty"`
}

type GridOutput struct {
	Center hex.Axial    `json:"center"`
	Radius int          `json:"radius"`
	Cells  []CellOutput `json:"cells"`
}

type SearchResultOutput struct {
	Kind    string   `json:"kind"`
	Slug    string   `json:"slug"`
	Title   string   `json:"title"`
	Tags    []string `json:"tags"`
	Score   float64  `json:"score"`
	Snippet string   `json:"snippet,omitempty"`
}

type SearchContentOutput struct {
	Results []SearchResultOutput `json:"results"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_entries",
		Description: "List every entry of a content kind in display order",
	}, s.handleListEntries)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_entry",
		Description: "Retrieve one content entry by kind and slug",
	}, s.handleGetEntry)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "search_systems",
		Description: "Find star systems by name or faction",
	}, s.handleSearchSystems)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_grid",
		Description: "Return the hex cells within a radius of a centre cell",
	}, s.handleGetGrid)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "pixel_to_hex",
		Description: "Resolve a pixel offset from the centre cell to the hex under it",
	}, s.handlePixelToHex)

	if s.index != nil {
		sdk.AddTool(s.mcp, &sdk.Tool{
			Name:        "search_content",
			Description: "Full-text search across indexed entries",
		}, s.handleSearchContent)
	}
}

func (s *Server) collection(kind string) (content.Collection, error) {
	if strings.TrimSpace(kind) == "" {
		return nil, fmt.Errorf("kind is required")
	}
	k, err := content.ParseKind(kind)
	if err != nil {
		return nil, err
	}
	return s.lib.Collection(k)
}

func (s *Server) handleListEntries(ctx context.Context, req *sdk.CallToolRequest, input ListEntriesInput) (*sdk.CallToolResult, ListEntriesOutput, error) {
	coll, err := s.collection(input.Kind)
	if err != nil {
		return nil, ListEntriesOutput{}, err
	}
	output := ListEntriesOutput{Kind: string(coll.Kind()), Available: true, Entries: []map[string]any{}}

	entries, err := coll.ListEntries(ctx)
	if errors.Is(err, content.ErrRootMissing) {
		output.Available = false
		return nil, output, nil
	}
	if err != nil {
		return nil, ListEntriesOutput{}, err
	}
	for _, entry := range entries {
		encoded, err := entryMap(entry)
		if err != nil {
			return nil, ListEntriesOutput{}, err
		}
		output.Entries = append(output.Entries, encoded)
	}
	return nil, output, nil
}

func (s *Server) handleGetEntry(ctx context.Context, req *sdk.CallToolRequest, input GetEntryInput) (*sdk.CallToolResult, EntryOutput, error) {
	if input.Slug == "" {
		return nil, EntryOutput{}, fmt.Errorf("slug is required")
	}
	coll, err := s.collection(input.Kind)
	if err != nil {
		return nil, EntryOutput{}, err
	}
	entry, err := coll.GetEntry(ctx, input.Slug)
	if errors.Is(err, content.ErrNotFound) || errors.Is(err, content.ErrRootMissing) {
		return nil, EntryOutput{}, fmt.Errorf("entry not found: %s/%s", coll.Kind(), input.Slug)
	}
	if err != nil {
		return nil, EntryOutput{}, err
	}
	encoded, err := entryMap(entry)
	if err != nil {
		return nil, EntryOutput{}, err
	}
	meta := entry.EntryMeta()
	return nil, EntryOutput{Kind: string(meta.Kind), Slug: meta.Slug, Entry: encoded}, nil
}

func (s *Server) handleSearchSystems(ctx context.Context, req *sdk.CallToolRequest, input SearchSystemsInput) (*sdk.CallToolResult, SearchSystemsOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, SearchSystemsOutput{}, fmt.Errorf("query is required")
	}
	systems, err := s.engine.Search(ctx, input.Query)
	if err != nil {
		return nil, SearchSystemsOutput{}, err
	}
	output := SearchSystemsOutput{Systems: make([]SystemSummary, 0, len(systems))}
	for _, sys := range systems {
		output.Systems = append(output.Systems, systemSummary(&sys))
	}
	return nil, output, nil
}

func (s *Server) handleGetGrid(ctx context.Context, req *sdk.CallToolRequest, input GetGridInput) (*sdk.CallToolResult, GridOutput, error) {
	radius := input.Radius
	if radius == 0 {
		radius = 3
	}
	radius = min(radius, s.engine.MaxRadius())
	center := hex.NewAxial(input.CenterQ, input.CenterR)

	cells, err := s.engine.GridAt(ctx, center, radius)
	if err != nil {
		return nil, GridOutput{}, err
	}
	output := GridOutput{Center: center, Radius: radius, Cells: make([]CellOutput, 0, len(cells))}
	for _, cell := range cells {
		output.Cells = append(output.Cells, cellOutput(cell))
	}
	return nil, output, nil
}

func (s *Server) handlePixelToHex(ctx context.Context, req *sdk.CallToolRequest, input PixelToHexInput) (*sdk.CallToolResult, CellOutput, error) {
	vp := starmap.Viewport{
		CenterQ: input.CenterQ,
		CenterR: input.CenterR,
		Zoom:    input.Zoom,
		HexSize: input.HexSize,
	}
	if vp.Zoom == 0 {
		vp.Zoom = 1
	}
	if vp.HexSize == 0 {
		vp.HexSize = defaultHexSize
	}
	cell, err := s.engine.Locate(ctx, input.X, input.Y, vp)
	if err != nil {
		return nil, CellOutput{}, err
	}
	return nil, cellOutput(cell), nil
}

func (s *Server) handleSearchContent(ctx context.Context, req *sdk.CallToolRequest, input SearchContentInput) (*sdk.CallToolResult, SearchContentOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, SearchContentOutput{}, fmt.Errorf("query is required")
	}
	kind := ""
	if input.Kind != "" {
		k, err := content.ParseKind(input.Kind)
		if err != nil {
			return nil, SearchContentOutput{}, err
		}
		kind = string(k)
	}
	results, err := s.index.Search(ctx, input.Query, kind)
	if err != nil {
		return nil, SearchContentOutput{}, err
	}
	output := SearchContentOutput{Results: make([]SearchResultOutput, 0, len(results))}
	for _, r := range results {
		output.Results = append(output.Results, SearchResultOutput{
			Kind:    r.Kind,
			Slug:    r.Slug,
			Title:   r.Title,
			Tags:    append([]string{}, r.Tags...),
			Score:   r.Score,
			Snippet: r.Snippet,
		})
	}
	return nil, output, nil
}

// entryMap round-trips an entry through JSON so tool output carries the same
// field names as the HTTP API.
func entryMap(entry content.Entry) (map[string]any, error) {
	data, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("encoding entry: %w", err)
	}
	out := map[string]any{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decoding entry: %w", err)
	}
	return out, nil
}

func cellOutput(cell starmap.Cell) CellOutput {
	out := CellOutput{Coordinates: cell.Coordinates, IsEmpty: cell.IsEmpty}
	if cell.StarSystem != nil {
		summary := systemSummary(cell.StarSystem)
		out.System = &summary
	}
	return out
}

func systemSummary(sys *content.StarSystem) SystemSummary {
	return SystemSummary{
		ID:      sys.ID,
		Slug:    sys.Slug,
		Name:    sys.Name,
		Type:    sys.Type,
		Faction: sys.Faction,
		Threats: sys.Threats,
		Planets: sys.Planets,
		Visited: sys.Visited,
	}
}
