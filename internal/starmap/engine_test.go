package starmap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ftlnomad/internal/content"
	"ftlnomad/internal/hex"
)

type fakeSource struct {
	systems []content.StarSystem
	err     error
	calls   int
}

func (f *fakeSource) List(ctx context.Context) ([]content.StarSystem, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]content.StarSystem, len(f.systems))
	copy(out, f.systems)
	return out, nil
}

func system(id, name, faction string, q, r int) content.StarSystem {
	return content.StarSystem{
		Meta:        content.Meta{Kind: content.KindSystem, Slug: id, Tags: []string{}},
		ID:          id,
		Name:        name,
		Faction:     faction,
		Coordinates: hex.NewAxial(q, r),
		Type:        "frontier",
		Threats:     "Unknown",
	}
}

func TestGridAt_CoverageAndInvariant(t *testing.T) {
	engine := NewEngine(&fakeSource{}, Options{})
	const radius = 5

	cells, err := engine.GridAt(context.Background(), hex.NewAxial(0, 0), radius)
	require.NoError(t, err)
	require.Len(t, cells, hex.CellCount(radius))

	seen := make(map[hex.Key]bool)
	for _, c := range cells {
		require.Equal(t, 0, c.Coordinates.Q+c.Coordinates.R+c.Coordinates.S)
		require.LessOrEqual(t, hex.Distance(hex.NewAxial(0, 0), c.Coordinates), radius)
		require.True(t, c.IsEmpty)
		require.Nil(t, c.StarSystem)
		seen[c.Coordinates.Key()] = true
	}
	for q := -radius; q <= radius; q++ {
		for r := -radius; r <= radius; r++ {
			want := hex.Distance(hex.NewAxial(0, 0), hex.NewAxial(q, r)) <= radius
			assert.Equal(t, want, seen[hex.Key{Q: q, R: r}], "q=%d r=%d", q, r)
		}
	}
}

func TestGridAt_SparseMerge(t *testing.T) {
	kepler := system("kepler", "Kepler", "Free Traders", 2, -1)
	kepler.Planets = 4
	source := &fakeSource{systems: []content.StarSystem{
		kepler,
		system("far", "Far Away", "", 40, 0),
	}}
	engine := NewEngine(source, Options{})

	cells, err := engine.GridAt(context.Background(), hex.NewAxial(0, 0), 3)
	require.NoError(t, err)

	occupied := 0
	for _, c := range cells {
		if c.Coordinates == hex.NewAxial(2, -1) {
			occupied++
			require.False(t, c.IsEmpty)
			require.NotNil(t, c.StarSystem)
			assert.Equal(t, kepler, *c.StarSystem)
			continue
		}
		assert.True(t, c.IsEmpty, "cell %v", c.Coordinates)
	}
	assert.Equal(t, 1, occupied)
}

func TestGridAt_FirstSystemWinsSharedCoordinate(t *testing.T) {
	source := &fakeSource{systems: []content.StarSystem{
		system("a", "Alpha", "", 0, 0),
		system("b", "Beta", "", 0, 0),
	}}
	engine := NewEngine(source, Options{})

	cells, err := engine.GridAt(context.Background(), hex.NewAxial(0, 0), 0)
	require.NoError(t, err)
	require.Len(t, cells, 1)
	assert.Equal(t, "Alpha", cells[0].Name)
}

func TestGridAt_ClampsRadius(t *testing.T) {
	engine := NewEngine(&fakeSource{}, Options{MaxRadius: 2})

	cells, err := engine.GridAt(context.Background(), hex.NewAxial(10, -4), 50)
	require.NoError(t, err)
	assert.Len(t, cells, hex.CellCount(2))

	_, err = engine.GridAt(context.Background(), hex.NewAxial(0, 0), -1)
	assert.True(t, errors.Is(err, ErrInvalidViewport))
}

func TestGridAt_UnreadableSystemsLeaveMapEmpty(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"missing directory", fmt.Errorf("systems: %w", content.ErrRootMissing)},
		{"malformed file", &content.SourceError{Kind: content.KindSystem, Path: "bad.md", Err: errors.New("required field missing: coordinates")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			engine := NewEngine(&fakeSource{err: tc.err}, Options{})

			cells, err := engine.GridAt(context.Background(), hex.NewAxial(0, 0), 1)
			require.NoError(t, err)
			require.Len(t, cells, hex.CellCount(1))
			for _, c := range cells {
				assert.True(t, c.IsEmpty, "cell %v", c.Coordinates)
			}

			results, err := engine.Search(context.Background(), "kepler")
			require.NoError(t, err)
			assert.NotNil(t, results)
			assert.Empty(t, results)

			cell, err := engine.Locate(context.Background(), 0, 0, Viewport{Zoom: 1, HexSize: 40})
			require.NoError(t, err)
			assert.True(t, cell.IsEmpty)
		})
	}
}

func TestGridAt_SourceError(t *testing.T) {
	engine := NewEngine(&fakeSource{err: errors.New("walking system: permission denied")}, Options{})

	_, err := engine.GridAt(context.Background(), hex.NewAxial(0, 0), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading systems")

	_, err = engine.Search(context.Background(), "kepler")
	assert.Error(t, err)
}

func TestGrid_UsesViewport(t *testing.T) {
	engine := NewEngine(&fakeSource{}, Options{MaxRadius: 30})
	vp := Viewport{CenterQ: 3, CenterR: -1, Zoom: 1, Width: 800, Height: 600, HexSize: 40}

	cells, radius, err := engine.Grid(context.Background(), vp)
	require.NoError(t, err)
	// 800/(2*1.5*40) = 6.67 and 600/(2*sqrt3*40) = 4.33, so ceil(6.67)+1.
	assert.Equal(t, 8, radius)
	assert.Len(t, cells, hex.CellCount(8))
	for _, c := range cells {
		require.LessOrEqual(t, hex.Distance(vp.Center(), c.Coordinates), radius)
	}

	_, _, err = engine.Grid(context.Background(), Viewport{Zoom: 0, HexSize: 40})
	assert.ErrorIs(t, err, ErrInvalidViewport)
}

func TestViewport_Radius(t *testing.T) {
	cases := []struct {
		name string
		vp   Viewport
		max  int
		want int
	}{
		{"empty viewport keeps one ring", Viewport{Zoom: 1, HexSize: 40}, 30, 1},
		{"zoom in shrinks radius", Viewport{Zoom: 2, Width: 800, Height: 600, HexSize: 40}, 30, 5},
		{"zoom out grows radius", Viewport{Zoom: 0.5, Width: 800, Height: 600, HexSize: 40}, 30, 15},
		{"clamped to max", Viewport{Zoom: 0.01, Width: 4000, Height: 4000, HexSize: 10}, 30, 30},
		{"tall viewport", Viewport{Zoom: 1, Width: 10, Height: 2000, HexSize: 10}, 100, 59},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.vp.Radius(tc.max))
		})
	}
}

func TestViewport_Validate(t *testing.T) {
	assert.NoError(t, Viewport{Zoom: 1, HexSize: 40}.Validate())
	assert.Error(t, Viewport{Zoom: -1, HexSize: 40}.Validate())
	assert.Error(t, Viewport{Zoom: 1, HexSize: 0}.Validate())
	assert.Error(t, Viewport{Zoom: 1, HexSize: 40, Width: -5}.Validate())
	assert.Error(t, Viewport{Zoom: 1, HexSize: 40, Height: -5}.Validate())
	assert.NoError(t, Viewport{CenterQ: MaxCoordinate, CenterR: -MaxCoordinate, Zoom: 1, HexSize: 40}.Validate())
	assert.ErrorIs(t, Viewport{CenterQ: math.MaxInt, Zoom: 1, HexSize: 40}.Validate(), ErrInvalidViewport)
	assert.ErrorIs(t, Viewport{CenterR: math.MinInt, Zoom: 1, HexSize: 40}.Validate(), ErrInvalidViewport)
}

func TestExtremeCoordinatesRejected(t *testing.T) {
	engine := NewEngine(&fakeSource{}, Options{})
	ctx := context.Background()

	_, err := engine.GridAt(ctx, hex.NewAxial(math.MaxInt, 0), 3)
	assert.ErrorIs(t, err, ErrInvalidViewport)

	_, _, err = engine.Grid(ctx, Viewport{CenterQ: math.MinInt, CenterR: 5, Zoom: 1, HexSize: 40})
	assert.ErrorIs(t, err, ErrInvalidViewport)

	vp := Viewport{Zoom: 1, HexSize: 40}
	_, err = engine.Locate(ctx, 1e300, 0, vp)
	assert.ErrorIs(t, err, ErrInvalidViewport)
	_, err = engine.Locate(ctx, 0, math.Inf(-1), vp)
	assert.ErrorIs(t, err, ErrInvalidViewport)
	_, err = engine.Locate(ctx, math.NaN(), 0, vp)
	assert.ErrorIs(t, err, ErrInvalidViewport)
}

func TestSearch(t *testing.T) {
	source := &fakeSource{systems: []content.StarSystem{
		system("kepler", "Kepler Reach", "Free Traders", 1, 0),
		system("tau", "Tau Ceti", "Concord Navy", 2, 0),
		system("ross", "Ross 128", "free traders guild", 3, 0),
		system("vega", "Vega", "Independent", 4, 0),
	}}
	engine := NewEngine(source, Options{SearchLimit: 2})
	ctx := context.Background()

	t.Run("matches name and faction, case folded, in order", func(t *testing.T) {
		results, err := engine.Search(ctx, "TRADERS")
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "kepler", results[0].ID)
		assert.Equal(t, "ross", results[1].ID)
	})

	t.Run("caps results", func(t *testing.T) {
		results, err := engine.Search(ctx, "e")
		require.NoError(t, err)
		assert.Len(t, results, 2)
	})

	t.Run("blank query returns nothing without loading", func(t *testing.T) {
		before := source.calls
		results, err := engine.Search(ctx, "   ")
		require.NoError(t, err)
		assert.NotNil(t, results)
		assert.Empty(t, results)
		assert.Equal(t, before, source.calls)
	})

	t.Run("no match", func(t *testing.T) {
		results, err := engine.Search(ctx, "zzz")
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestLocate(t *testing.T) {
	source := &fakeSource{systems: []content.StarSystem{system("kepler", "Kepler", "", 3, -1)}}
	engine := NewEngine(source, Options{})
	vp := Viewport{CenterQ: 2, CenterR: -1, Zoom: 2, Width: 800, Height: 600, HexSize: 20}

	x, y := hex.HexToPixel(1, 0, vp.ScaledSize())
	cell, err := engine.Locate(context.Background(), x, y, vp)
	require.NoError(t, err)
	assert.Equal(t, hex.NewAxial(3, -1), cell.Coordinates)
	require.NotNil(t, cell.StarSystem)
	assert.Equal(t, "Kepler", cell.Name)

	cell, err = engine.Locate(context.Background(), 0, 0, vp)
	require.NoError(t, err)
	assert.Equal(t, hex.NewAxial(2, -1), cell.Coordinates)
	assert.True(t, cell.IsEmpty)
}

func TestCell_JSON(t *testing.T) {
	kepler := system("kepler", "Kepler", "Free Traders", 2, -1)
	occupied, err := json.Marshal(Cell{Coordinates: kepler.Coordinates, StarSystem: &kepler})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(occupied, &decoded))
	assert.Equal(t, "Kepler", decoded["name"])
	assert.Equal(t, false, decoded["isEmpty"])
	assert.Equal(t, map[string]any{"q": 2.0, "r": -1.0, "s": -1.0}, decoded["coordinates"])

	empty, err := json.Marshal(Cell{Coordinates: hex.NewAxial(1, 0), IsEmpty: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"coordinates":{"q":1,"r":0,"s":-1},"isEmpty":true}`, string(empty))
}
