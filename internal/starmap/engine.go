// Package starmap builds windowed views of the star-system hex grid.
package starmap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"golang.org/x/text/cases"

	"ftlnomad/internal/content"
	"ftlnomad/internal/hex"
)

const (
	DefaultMaxRadius   = 30
	DefaultSearchLimit = 10
)

// SystemSource supplies the persisted star systems.
type SystemSource interface {
	List(ctx context.Context) ([]content.StarSystem, error)
}

// Cell is one grid position. The outer fields shadow the embedded system's
// coordinates and isEmpty when encoded.
type Cell struct {
	Coordinates hex.Axial `json:"coordinates"`
	IsEmpty     bool      `json:"isEmpty"`
	*content.StarSystem
}

type Options struct {
	MaxRadius   int
	SearchLimit int
	Logger      *slog.Logger
}

// Engine is stateless between calls; systems are loaded from the source on
// every request.
type Engine struct {
	source      SystemSource
	maxRadius   int
	searchLimit int
	logger      *slog.Logger
}

func NewEngine(source SystemSource, opts Options) *Engine {
	if opts.MaxRadius <= 0 {
		opts.MaxRadius = DefaultMaxRadius
	}
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = DefaultSearchLimit
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		source:      source,
		maxRadius:   opts.MaxRadius,
		searchLimit: opts.SearchLimit,
		logger:      opts.Logger,
	}
}

func (e *Engine) MaxRadius() int {
	return e.maxRadius
}

// Grid returns every cell visible in vp together with the radius used.
func (e *Engine) Grid(ctx context.Context, vp Viewport) ([]Cell, int, error) {
	if err := vp.Validate(); err != nil {
		return nil, 0, err
	}
	radius := vp.Radius(e.maxRadius)
	cells, err := e.GridAt(ctx, vp.Center(), radius)
	if err != nil {
		return nil, 0, err
	}
	return cells, radius, nil
}

// GridAt returns one cell per coordinate within radius of center, clamped to
// the engine's maximum. Coordinates holding a system carry it in full.
func (e *Engine) GridAt(ctx context.Context, center hex.Axial, radius int) ([]Cell, error) {
	if radius < 0 {
		return nil, fmt.Errorf("%w: radius must not be negative", ErrInvalidViewport)
	}
	if err := checkCoordinate(center); err != nil {
		return nil, err
	}
	radius = min(radius, e.maxRadius)

	index, err := e.index(ctx)
	if err != nil {
		return nil, err
	}

	coords := hex.Range(hex.NewAxial(center.Q, center.R), radius)
	cells := make([]Cell, 0, len(coords))
	for _, c := range coords {
		if sys, ok := index[c.Key()]; ok {
			cells = append(cells, Cell{Coordinates: c, StarSystem: sys})
			continue
		}
		cells = append(cells, Cell{Coordinates: c, IsEmpty: true})
	}
	return cells, nil
}

// index keys systems by (q, r). When two systems share a coordinate the one
// listed first is kept.
func (e *Engine) index(ctx context.Context) (map[hex.Key]*content.StarSystem, error) {
	systems, err := e.systems(ctx)
	if err != nil {
		return nil, err
	}
	index := make(map[hex.Key]*content.StarSystem, len(systems))
	for i := range systems {
		key := systems[i].Coordinates.Key()
		if _, taken := index[key]; taken {
			continue
		}
		index[key] = &systems[i]
	}
	return index, nil
}

// systems loads the persisted systems. A missing systems directory or an
// unreadable system file leaves the map without systems instead of failing it;
// only walk and context errors are returned.
func (e *Engine) systems(ctx context.Context) ([]content.StarSystem, error) {
	systems, err := e.source.List(ctx)
	var srcErr *content.SourceError
	switch {
	case err == nil:
	case errors.Is(err, content.ErrRootMissing):
		e.logger.Debug("Systems directory missing, map is empty")
	case errors.As(err, &srcErr):
		e.logger.Warn("Unreadable system file, map is empty", "path", srcErr.Path, "error", srcErr.Err)
	default:
		return nil, fmt.Errorf("loading systems: %w", err)
	}
	return content.Lenient(systems, err), nil
}

// Search matches query against system names and factions, ignoring case.
// Results keep the source order and are capped at the search limit.
func (e *Engine) Search(ctx context.Context, query string) ([]content.StarSystem, error) {
	// A Caser holds state and must not be shared across goroutines.
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(query))
	if needle == "" {
		return []content.StarSystem{}, nil
	}

	systems, err := e.systems(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]content.StarSystem, 0, min(len(systems), e.searchLimit))
	for _, sys := range systems {
		if len(results) == e.searchLimit {
			break
		}
		if strings.Contains(fold.String(sys.Name), needle) || strings.Contains(fold.String(sys.Faction), needle) {
			results = append(results, sys)
		}
	}
	return results, nil
}

// Locate resolves a point in viewport pixels, measured from the viewport
// centre, to the cell under it.
func (e *Engine) Locate(ctx context.Context, x, y float64, vp Viewport) (Cell, error) {
	if err := vp.Validate(); err != nil {
		return Cell{}, err
	}
	// Beyond this bound the offset alone would exceed MaxCoordinate.
	limit := float64(MaxCoordinate) * vp.ScaledSize()
	if math.IsNaN(x) || math.IsNaN(y) || math.Abs(x) > limit || math.Abs(y) > limit {
		return Cell{}, fmt.Errorf("%w: point (%g, %g) out of range", ErrInvalidViewport, x, y)
	}
	offset := hex.PixelToHex(x, y, vp.ScaledSize())
	target := vp.Center().Add(offset)

	index, err := e.index(ctx)
	if err != nil {
		return Cell{}, err
	}
	if sys, ok := index[target.Key()]; ok {
		return Cell{Coordinates: target, StarSystem: sys}, nil
	}
	return Cell{Coordinates: target, IsEmpty: true}, nil
}
