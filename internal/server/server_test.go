package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ftlnomad/internal/config"
	"ftlnomad/internal/content"
)

func mapFile(s string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(s)}
}

var testContent = fstest.MapFS{
	"crew/rho.md":              mapFile("---\nname: Rho\nstatus: active\n---\nPilot of the Nomad.\n"),
	"crew/sub/zeta.md":         mapFile("---\nname: Zeta\n---\n"),
	"logs/season 1/arrival.md": mapFile("---\ntitle: Arrival\nearthDate: 2024-03-09\n---\nWe made it.\n"),
	"systems/kepler.md":        mapFile("---\nname: Kepler\nfaction: Free Traders\ncoordinates: {q: 2, r: -1, s: -1}\n---\n"),
	"systems/tau.md":           mapFile("---\nname: Tau Ceti\nfaction: Concord\ncoordinates: {q: -1, r: 0}\n---\n"),
}

var testAssets = fstest.MapFS{
	"images/crew/rho.png": mapFile("png"),
}

func newTestServer(t *testing.T, root fstest.MapFS) http.Handler {
	t.Helper()
	cfg := config.Default("content")
	lib, err := content.NewLibraryFS(root, testAssets, cfg.Content)
	require.NoError(t, err)

	srv := New(Options{
		Config:  cfg,
		Library: lib,
		Assets:  testAssets,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Version: "test",
	})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return srv.Handler(ctx)
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out), rec.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, testContent)
	rec := do(t, h, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	body := decode[HealthResponse](t, rec)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "test", body.Version)

	rec = do(t, h, http.MethodPut, "/api/health", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

type gridBody struct {
	Center map[string]int   `json:"center"`
	Radius int              `json:"radius"`
	Cells  []map[string]any `json:"cells"`
}

func TestGrid(t *testing.T) {
	h := newTestServer(t, testContent)

	rec := do(t, h, http.MethodPost, "/api/starmap/grid", `{"centerQ":0,"centerR":0,"zoom":1,"mapWidth":200,"mapHeight":100,"hexSize":40}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode[gridBody](t, rec)
	// 200/(3*40) = 1.67 so two rings plus one of margin.
	assert.Equal(t, 3, body.Radius)
	require.Len(t, body.Cells, 37)

	occupied := map[string]bool{}
	for _, cell := range body.Cells {
		coords := cell["coordinates"].(map[string]any)
		q, r, s := coords["q"].(float64), coords["r"].(float64), coords["s"].(float64)
		require.Zero(t, q+r+s)
		if cell["isEmpty"] == false {
			occupied[cell["name"].(string)] = true
			continue
		}
		assert.Nil(t, cell["name"])
	}
	assert.Equal(t, map[string]bool{"Kepler": true, "Tau Ceti": true}, occupied)
}

func TestStarmap_WithoutSystems(t *testing.T) {
	cases := map[string]fstest.MapFS{
		"missing directory": {"crew/rho.md": mapFile("---\nname: Rho\n---\n")},
		"malformed system": {
			"systems/ok.md":  mapFile("---\nname: Kepler\ncoordinates: {q: 0, r: 0}\n---\n"),
			"systems/bad.md": mapFile("---\nname: Nowhere\n---\n"),
		},
	}
	for name, root := range cases {
		t.Run(name, func(t *testing.T) {
			h := newTestServer(t, root)

			rec := do(t, h, http.MethodPost, "/api/starmap/grid", `{"mapWidth":100,"mapHeight":100}`)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			body := decode[gridBody](t, rec)
			require.NotEmpty(t, body.Cells)
			for _, cell := range body.Cells {
				assert.Equal(t, true, cell["isEmpty"], "cell %v", cell["coordinates"])
			}

			rec = do(t, h, http.MethodPost, "/api/starmap/search", `{"query":"kepler"}`)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.JSONEq(t, `{"results":[]}`, rec.Body.String())

			rec = do(t, h, http.MethodPost, "/api/starmap/locate", `{"x":0,"y":0}`)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, true, decode[map[string]any](t, rec)["isEmpty"])

			rec = do(t, h, http.MethodGet, "/api/content/system/bad", "")
			assert.Equal(t, http.StatusNotFound, rec.Code)
		})
	}
}

func TestGrid_RejectsExtremeCentre(t *testing.T) {
	h := newTestServer(t, testContent)

	rec := do(t, h, http.MethodPost, "/api/starmap/grid", `{"centerQ":9223372036854775807,"centerR":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGrid_Defaults(t *testing.T) {
	h := newTestServer(t, testContent)

	rec := do(t, h, http.MethodPost, "/api/starmap/grid", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[gridBody](t, rec)
	assert.Equal(t, 1, body.Radius)
	assert.Len(t, body.Cells, 7)
}

func TestGrid_BadRequests(t *testing.T) {
	h := newTestServer(t, testContent)

	rec := do(t, h, http.MethodPost, "/api/starmap/grid", `{"zoom":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/starmap/grid", `{"zoom":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/starmap/grid", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSearch(t *testing.T) {
	h := newTestServer(t, testContent)

	rec := do(t, h, http.MethodPost, "/api/starmap/search", `{"query":"free"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		Results []content.StarSystem `json:"results"`
	}](t, rec)
	require.Len(t, body.Results, 1)
	assert.Equal(t, "Kepler", body.Results[0].Name)

	rec = do(t, h, http.MethodGet, "/api/starmap/search?q=TAU", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Tau Ceti")

	rec = do(t, h, http.MethodGet, "/api/starmap/search", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"results":[]}`, rec.Body.String())
}

func TestLocate(t *testing.T) {
	h := newTestServer(t, testContent)

	// Centre of (2,-1) relative to the origin at hexSize 40: x=120, y=0.
	rec := do(t, h, http.MethodPost, "/api/starmap/locate", `{"x":120,"y":0,"viewport":{"zoom":1,"hexSize":40}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cell := decode[map[string]any](t, rec)
	assert.Equal(t, "Kepler", cell["name"])
	assert.Equal(t, false, cell["isEmpty"])
}

func TestListContent(t *testing.T) {
	h := newTestServer(t, testContent)

	rec := do(t, h, http.MethodGet, "/api/content/crew", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		Kind      string           `json:"kind"`
		Available bool             `json:"available"`
		Entries   []map[string]any `json:"entries"`
	}](t, rec)
	assert.Equal(t, "crew", body.Kind)
	assert.True(t, body.Available)
	require.Len(t, body.Entries, 2)
	assert.Equal(t, "Rho", body.Entries[0]["name"])
	assert.Equal(t, "/images/crew/rho.png", body.Entries[0]["image"])
	assert.Equal(t, content.PlaceholderCrewImage, body.Entries[1]["image"])
	assert.Equal(t, "active", body.Entries[1]["status"])
}

func TestListContent_MissingDirectory(t *testing.T) {
	h := newTestServer(t, testContent)

	rec := do(t, h, http.MethodGet, "/api/content/lore", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"kind":"lore","available":false,"reason":"missing_directory","entries":[]}`, rec.Body.String())
}

func TestListContent_MalformedSource(t *testing.T) {
	root := fstest.MapFS{
		"npcs/ok.md":  mapFile("---\nname: Vex\n---\n"),
		"npcs/bad.md": mapFile("---\nname: [\n---\n"),
	}
	h := newTestServer(t, root)

	rec := do(t, h, http.MethodGet, "/api/content/npc", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"kind":"npc","available":false,"reason":"unreadable_source","entries":[]}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "bad.md")

	rec = do(t, h, http.MethodGet, "/api/content/npc/bad", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotContains(t, rec.Body.String(), "bad.md")

	rec = do(t, h, http.MethodGet, "/api/content/npc/ok", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListContent_ReportsCollisions(t *testing.T) {
	root := fstest.MapFS{
		"crew/zeta.md":     mapFile("---\nname: Zeta\n---\n"),
		"crew/old/zeta.md": mapFile("---\nname: Old Zeta\n---\n"),
	}
	h := newTestServer(t, root)

	rec := do(t, h, http.MethodGet, "/api/content/crew", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		Collisions []content.Collision `json:"collisions"`
	}](t, rec)
	require.Len(t, body.Collisions, 1)
	assert.Equal(t, "zeta", body.Collisions[0].Slug)
	assert.Len(t, body.Collisions[0].Sources, 2)

	rec = do(t, h, http.MethodGet, "/api/content/crew/zeta", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Zeta", decode[map[string]any](t, rec)["name"])
}

func TestGetContent(t *testing.T) {
	h := newTestServer(t, testContent)

	rec := do(t, h, http.MethodGet, "/api/content/crew/zeta", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Zeta", decode[map[string]any](t, rec)["name"])

	rec = do(t, h, http.MethodGet, "/api/content/log/season%201/arrival", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	entry := decode[map[string]any](t, rec)
	assert.Equal(t, "Arrival", entry["title"])
	assert.Equal(t, "season%201/arrival", entry["slug"])

	rec = do(t, h, http.MethodGet, "/api/content/logs/season%201/arrival", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	for _, target := range []string{
		"/api/content/crew/nobody",
		"/api/content/lore/anything",
		"/api/content/ships/x",
		"/api/content/log/hidden/x",
	} {
		rec = do(t, h, http.MethodGet, target, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
	}
}

func TestIntroFlag(t *testing.T) {
	h := newTestServer(t, testContent)

	rec := do(t, h, http.MethodGet, "/api/session/intro", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"played":false}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/session/intro", "")
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	req := httptest.NewRequest(http.MethodGet, "/api/session/intro", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.JSONEq(t, `{"played":true}`, rec.Body.String())

	rec = do(t, h, http.MethodDelete, "/api/session/intro", "")
	assert.JSONEq(t, `{"played":false}`, rec.Body.String())
}

func TestAssets(t *testing.T) {
	h := newTestServer(t, testContent)
	rec := do(t, h, http.MethodGet, "/images/crew/rho.png", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png", rec.Body.String())
}

func TestServe_GracefulShutdown(t *testing.T) {
	cfg := config.Default("content")
	lib, err := content.NewLibraryFS(testContent, nil, cfg.Content)
	require.NoError(t, err)
	srv := New(Options{Config: cfg, Library: lib, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Post("http://"+ln.Addr().String()+"/api/starmap/search", "application/json", bytes.NewBufferString(`{"query":"kep"}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
