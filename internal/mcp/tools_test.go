package mcp

import (
	"context"
	"testing"
	"testing/fstest"

	"ftlnomad/internal/config"
	"ftlnomad/internal/content"
	"ftlnomad/internal/hex"
	"ftlnomad/internal/starmap"
	"ftlnomad/internal/store"
)

type mockSearcher struct {
	results   []store.SearchResult
	lastQuery string
	lastKind  string
}

func (m *mockSearcher) Search(ctx context.Context, query, kind string) ([]store.SearchResult, error) {
	m.lastQuery = query
	m.lastKind = kind
	return m.results, nil
}

func file(s string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(s)}
}

func testServer(t *testing.T, index Searcher) *Server {
	t.Helper()
	root := fstest.MapFS{
		"crew/rho.md":       file("---\nname: Rho\nrole: Pilot\n---\nFlies the ship.\n"),
		"crew/zeta.md":      file("---\nname: Zeta\nstatus: inactive\n---\n"),
		"systems/kepler.md": file("---\nname: Kepler Reach\nfaction: Free Traders\ncoordinates: {q: 1, r: 0}\nplanets: 4\n---\n"),
		"systems/tau.md":    file("---\nname: Tau Ceti\ncoordinates: {q: -2, r: 1}\n---\n"),
	}
	lib, err := content.NewLibraryFS(root, nil, config.Default("content").Content)
	if err != nil {
		t.Fatalf("building library: %v", err)
	}
	engine := starmap.NewEngine(lib.Systems, starmap.Options{MaxRadius: 5})
	return NewServer(lib, engine, index, "test")
}

func TestListEntries(t *testing.T) {
	server := testServer(t, nil)

	_, output, err := server.handleListEntries(context.Background(), nil, ListEntriesInput{Kind: "crew"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !output.Available || len(output.Entries) != 2 {
		t.Fatalf("unexpected list output: %+v", output)
	}
	if output.Entries[0]["name"] != "Rho" || output.Entries[0]["role"] != "Pilot" {
		t.Fatalf("expected Rho first, got %v", output.Entries[0])
	}

	_, output, err = server.handleListEntries(context.Background(), nil, ListEntriesInput{Kind: "lore"})
	if err != nil {
		t.Fatalf("missing directory must not fail: %v", err)
	}
	if output.Available || len(output.Entries) != 0 {
		t.Fatalf("expected unavailable empty listing, got %+v", output)
	}

	if _, _, err := server.handleListEntries(context.Background(), nil, ListEntriesInput{Kind: "starships"}); err == nil {
		t.Fatalf("expected unknown kind error")
	}
}

func TestGetEntry(t *testing.T) {
	server := testServer(t, nil)

	_, output, err := server.handleGetEntry(context.Background(), nil, GetEntryInput{Kind: "systems", Slug: "kepler"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Kind != "system" || output.Slug != "kepler" || output.Entry["name"] != "Kepler Reach" {
		t.Fatalf("unexpected entry output: %+v", output)
	}

	if _, _, err := server.handleGetEntry(context.Background(), nil, GetEntryInput{Kind: "crew", Slug: "missing"}); err == nil {
		t.Fatalf("expected not found error")
	}
	if _, _, err := server.handleGetEntry(context.Background(), nil, GetEntryInput{Kind: "crew"}); err == nil {
		t.Fatalf("expected slug required error")
	}
}

func TestSearchSystems(t *testing.T) {
	server := testServer(t, nil)

	_, output, err := server.handleSearchSystems(context.Background(), nil, SearchSystemsInput{Query: "traders"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(output.Systems) != 1 || output.Systems[0].ID != "kepler" || output.Systems[0].Planets != 4 {
		t.Fatalf("unexpected search output: %+v", output)
	}
	if _, _, err := server.handleSearchSystems(context.Background(), nil, SearchSystemsInput{}); err == nil {
		t.Fatalf("expected query required error")
	}
}

func TestGetGrid(t *testing.T) {
	server := testServer(t, nil)

	_, output, err := server.handleGetGrid(context.Background(), nil, GetGridInput{Radius: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(output.Cells) != hex.CellCount(2) {
		t.Fatalf("expected %d cells, got %d", hex.CellCount(2), len(output.Cells))
	}
	occupied := 0
	for _, cell := range output.Cells {
		if cell.System != nil {
			occupied++
			if cell.IsEmpty {
				t.Fatalf("occupied cell marked empty: %+v", cell)
			}
		}
	}
	if occupied != 2 {
		t.Fatalf("expected both systems in range, got %d", occupied)
	}

	_, output, err = server.handleGetGrid(context.Background(), nil, GetGridInput{Radius: 50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Radius != 5 {
		t.Fatalf("expected radius clamped to 5, got %d", output.Radius)
	}
}

func TestPixelToHex(t *testing.T) {
	server := testServer(t, nil)

	x, y := hex.HexToPixel(1, 0, defaultHexSize)
	_, output, err := server.handlePixelToHex(context.Background(), nil, PixelToHexInput{X: x, Y: y})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Coordinates != hex.NewAxial(1, 0) || output.System == nil || output.System.Name != "Kepler Reach" {
		t.Fatalf("unexpected cell: %+v", output)
	}

	_, output, err = server.handlePixelToHex(context.Background(), nil, PixelToHexInput{CenterQ: 4, CenterR: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Coordinates != hex.NewAxial(4, 4) || !output.IsEmpty {
		t.Fatalf("expected empty centre cell, got %+v", output)
	}

	if _, _, err := server.handlePixelToHex(context.Background(), nil, PixelToHexInput{Zoom: -1}); err == nil {
		t.Fatalf("expected invalid viewport error")
	}
}

func TestSearchContent(t *testing.T) {
	searcher := &mockSearcher{results: []store.SearchResult{
		{Kind: "lore", Slug: "drift", Title: "Drift Stations", Tags: []string{"stations"}, Score: 2.5},
	}}
	server := testServer(t, searcher)

	_, output, err := server.handleSearchContent(context.Background(), nil, SearchContentInput{Query: "drift", Kind: "lore"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(output.Results) != 1 || output.Results[0].Slug != "drift" {
		t.Fatalf("unexpected search output: %+v", output)
	}
	if searcher.lastQuery != "drift" || searcher.lastKind != "lore" {
		t.Fatalf("unexpected search params %q %q", searcher.lastQuery, searcher.lastKind)
	}

	if _, _, err := server.handleSearchContent(context.Background(), nil, SearchContentInput{Query: "x", Kind: "ships"}); err == nil {
		t.Fatalf("expected unknown kind error")
	}
}
