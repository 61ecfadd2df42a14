package starmap

import (
	"errors"
	"fmt"
	"math"

	"ftlnomad/internal/hex"
)

var ErrInvalidViewport = errors.New("invalid viewport")

// MaxCoordinate bounds |q| and |r| of a centre or located cell, keeping the
// offsets and cube distances computed around it well inside int.
const MaxCoordinate = 1 << 30

// Viewport is the visible window of the map in screen pixels.
type Viewport struct {
	CenterQ int     `json:"centerQ"`
	CenterR int     `json:"centerR"`
	Zoom    float64 `json:"zoom"`
	Width   float64 `json:"mapWidth"`
	Height  float64 `json:"mapHeight"`
	HexSize float64 `json:"hexSize"`
}

func (v Viewport) Validate() error {
	switch {
	case math.IsNaN(v.Zoom) || math.IsInf(v.Zoom, 0) || v.Zoom <= 0:
		return fmt.Errorf("%w: zoom must be positive", ErrInvalidViewport)
	case math.IsNaN(v.HexSize) || math.IsInf(v.HexSize, 0) || v.HexSize <= 0:
		return fmt.Errorf("%w: hexSize must be positive", ErrInvalidViewport)
	case math.IsNaN(v.Width) || math.IsInf(v.Width, 0) || v.Width < 0:
		return fmt.Errorf("%w: mapWidth must not be negative", ErrInvalidViewport)
	case math.IsNaN(v.Height) || math.IsInf(v.Height, 0) || v.Height < 0:
		return fmt.Errorf("%w: mapHeight must not be negative", ErrInvalidViewport)
	}
	return checkCoordinate(v.Center())
}

func checkCoordinate(c hex.Axial) error {
	if c.Q < -MaxCoordinate || c.Q > MaxCoordinate || c.R < -MaxCoordinate || c.R > MaxCoordinate {
		return fmt.Errorf("%w: coordinate %s out of range", ErrInvalidViewport, c)
	}
	return nil
}

func (v Viewport) Center() hex.Axial {
	return hex.NewAxial(v.CenterQ, v.CenterR)
}

// ScaledSize is the on-screen hex size after zoom.
func (v Viewport) ScaledSize() float64 {
	return v.HexSize * v.Zoom
}

// Radius is the number of rings needed to cover the viewport, plus one ring of
// margin, clamped to [1, maxRadius].
func (v Viewport) Radius(maxRadius int) int {
	size := v.ScaledSize()
	if size <= 0 {
		return clamp(maxRadius, 1, maxRadius)
	}
	across := v.Width / (2 * 1.5 * size)
	down := v.Height / (2 * math.Sqrt(3) * size)
	radius := int(math.Ceil(math.Max(across, down))) + 1
	return clamp(radius, 1, maxRadius)
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	return min(max(v, lo), hi)
}
