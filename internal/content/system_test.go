package content

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"testing/fstest"

	"ftlnomad/internal/hex"
)

func TestSystem_Decode(t *testing.T) {
	root := fstest.MapFS{
		"systems/kepler.md": file(`---
name: Kepler Reach
coordinates:
  q: 2
  r: -1
  s: -1
type: colony
planets: 4
faction: Free Traders
threats: Medium
resources: [water, ore]
visited: true
lastVisit: 2024-02-11
pointsOfInterest:
  - name: Drift Station
    type: station
    discovered: true
  - id: wreck-7
    name: The Hulk
    type: wreckage
tradingPosts: [Kepler Market]
---
A busy colony at the edge of charted space.
`),
	}
	lib := newTestLibrary(t, root, nil)

	got, err := lib.Systems.Get(context.Background(), "kepler")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.ID != "kepler" || got.Name != "Kepler Reach" {
		t.Fatalf("unexpected identity %q %q", got.ID, got.Name)
	}
	if got.Coordinates != hex.NewAxial(2, -1) {
		t.Fatalf("unexpected coordinates %v", got.Coordinates)
	}
	if got.Type != "colony" || got.Planets != 4 || got.Threats != "Medium" || !got.Visited {
		t.Fatalf("unexpected fields %#v", got)
	}
	if got.LastVisit != "2024-02-11" {
		t.Fatalf("unexpected last visit %q", got.LastVisit)
	}
	if !reflect.DeepEqual(got.Resources, []string{"water", "ore"}) {
		t.Fatalf("unexpected resources %v", got.Resources)
	}
	if got.Description != "A busy colony at the edge of charted space...." {
		t.Fatalf("unexpected description %q", got.Description)
	}
	want := []PointOfInterest{
		{ID: "kepler-poi-1", Name: "Drift Station", Type: "station", Discovered: true},
		{ID: "wreck-7", Name: "The Hulk", Type: "wreckage"},
	}
	if !reflect.DeepEqual(got.PointsOfInterest, want) {
		t.Fatalf("unexpected points of interest %#v", got.PointsOfInterest)
	}
	if len(got.JumpGates) != 0 || got.JumpGates == nil {
		t.Fatalf("expected empty jump gates, got %#v", got.JumpGates)
	}
	if got.IsEmpty {
		t.Fatalf("a stored system is never empty")
	}
}

func TestSystem_Defaults(t *testing.T) {
	root := fstest.MapFS{
		"systems/void.md": file("---\ncoordinates: [3, -3]\n---\n"),
	}
	lib := newTestLibrary(t, root, nil)

	got, err := lib.Systems.Get(context.Background(), "void")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.ID != "void" || got.Name != "void" || got.Type != "frontier" || got.Threats != "Unknown" {
		t.Fatalf("unexpected defaults %#v", got)
	}
	if got.Visited || got.Planets != 0 {
		t.Fatalf("unexpected defaults %#v", got)
	}
	if got.Coordinates != hex.NewAxial(3, -3) {
		t.Fatalf("expected derived s, got %v", got.Coordinates)
	}
}

func TestSystem_CoordinateForms(t *testing.T) {
	cases := map[string]struct {
		src  string
		want hex.Axial
	}{
		"map without s": {src: "---\ncoordinates: {q: 1, r: 2}\n---\n", want: hex.NewAxial(1, 2)},
		"list":          {src: "---\ncoordinates: [-2, 1, 1]\n---\n", want: hex.NewAxial(-2, 1)},
		"string":        {src: "---\ncoordinates: \"4,-1\"\n---\n", want: hex.NewAxial(4, -1)},
		"top level":     {src: "---\nq: 0\nr: 5\n---\n", want: hex.NewAxial(0, 5)},
		"authored s":    {src: "---\ncoordinates: {q: 1, r: 1, s: 1}\n---\n", want: hex.Axial{Q: 1, R: 1, S: 1}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			lib := newTestLibrary(t, fstest.MapFS{"systems/x.md": file(tc.src)}, nil)
			got, err := lib.Systems.Get(context.Background(), "x")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got.Coordinates != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got.Coordinates)
			}
		})
	}
}

func TestSystem_MissingCoordinates(t *testing.T) {
	lib := newTestLibrary(t, fstest.MapFS{"systems/lost.md": file("---\nname: Lost\n---\n")}, nil)

	_, err := lib.Systems.List(context.Background())
	if !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
	var srcErr *SourceError
	if !errors.As(err, &srcErr) || srcErr.Path != "lost.md" {
		t.Fatalf("expected SourceError for lost.md, got %v", err)
	}
}

func TestSystem_JSONSource(t *testing.T) {
	root := fstest.MapFS{
		"systems/tau.json": file(`{
  "id": "tau-ceti",
  "name": "Tau Ceti",
  "coordinates": {"q": -1, "r": 0, "s": 1},
  "type": "research",
  "planets": 2,
  "visited": false,
  "pointsOfInterest": [{"name": "Listening Post", "type": "beacon"}],
  "description": "Quiet science outpost."
}`),
		"systems/a-first.md": file("---\nname: Alderaan\ncoordinates: {q: 0, r: 0}\n---\n"),
	}
	lib := newTestLibrary(t, root, nil)

	systems, err := lib.Systems.List(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(systems) != 2 || systems[0].Name != "Alderaan" || systems[1].Name != "Tau Ceti" {
		t.Fatalf("unexpected systems %#v", systems)
	}
	tau := systems[1]
	if tau.Slug != "tau" || tau.ID != "tau-ceti" || tau.Planets != 2 {
		t.Fatalf("unexpected tau %#v", tau)
	}
	if tau.PointsOfInterest[0].ID != "tau-ceti-poi-1" {
		t.Fatalf("unexpected poi id %q", tau.PointsOfInterest[0].ID)
	}
}
