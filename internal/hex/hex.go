// Package hex implements axial coordinates for a flat-top hex grid.
// The third cube coordinate S is carried explicitly and always equals -Q-R
// for coordinates built through this package.
package hex

import (
	"fmt"
	"math"
)

type Axial struct {
	Q int `json:"q"`
	R int `json:"r"`
	S int `json:"s"`
}

// Key is the comparable (q, r) pair used to index cells.
type Key struct {
	Q, R int
}

var sqrt3 = math.Sqrt(3)

// NewAxial derives S from q and r.
func NewAxial(q, r int) Axial {
	return Axial{Q: q, R: r, S: -q - r}
}

func (a Axial) Valid() bool {
	return a.Q+a.R+a.S == 0
}

func (a Axial) Key() Key {
	return Key{Q: a.Q, R: a.R}
}

func (a Axial) Add(b Axial) Axial {
	return NewAxial(a.Q+b.Q, a.R+b.R)
}

func (a Axial) String() string {
	return fmt.Sprintf("(%d,%d,%d)", a.Q, a.R, a.S)
}

// Directions are the six neighbour offsets.
var Directions = [6]Axial{
	NewAxial(1, 0),
	NewAxial(1, -1),
	NewAxial(0, -1),
	NewAxial(-1, 0),
	NewAxial(-1, 1),
	NewAxial(0, 1),
}

func (a Axial) Neighbors() [6]Axial {
	var result [6]Axial
	for i, dir := range Directions {
		result[i] = a.Add(dir)
	}
	return result
}

// Distance is the cube distance between a and b, computed from Q and R only.
func Distance(a, b Axial) int {
	dq := abs(a.Q - b.Q)
	dr := abs(a.R - b.R)
	ds := abs((-a.Q - a.R) - (-b.Q - b.R))
	return max(dq, dr, ds)
}

// Range returns every coordinate within radius of center, ordered by q then r.
// A negative radius yields nothing.
func Range(center Axial, radius int) []Axial {
	if radius < 0 {
		return nil
	}
	cells := make([]Axial, 0, CellCount(radius))
	for dq := -radius; dq <= radius; dq++ {
		lo := max(-radius, -dq-radius)
		hi := min(radius, -dq+radius)
		for dr := lo; dr <= hi; dr++ {
			cells = append(cells, NewAxial(center.Q+dq, center.R+dr))
		}
	}
	return cells
}

// CellCount is the number of cells Range(c, radius) returns.
func CellCount(radius int) int {
	if radius < 0 {
		return 0
	}
	return 3*radius*(radius+1) + 1
}

// HexToPixel converts a cell to the Cartesian position of its centre.
func HexToPixel(q, r int, size float64) (float64, float64) {
	x := size * 1.5 * float64(q)
	y := size * (sqrt3/2*float64(q) + sqrt3*float64(r))
	return x, y
}

// PixelToHex resolves a Cartesian point to the cell containing it.
func PixelToHex(x, y, size float64) Axial {
	fq := (2.0 / 3.0 * x) / size
	fr := (-1.0/3.0*x + sqrt3/3.0*y) / size
	return Round(fq, fr)
}

// Round converts fractional axial coordinates to the nearest cell. All three
// cube components are rounded and the one with the largest rounding error is
// recomputed from the other two, so the result satisfies q+r+s == 0.
func Round(fq, fr float64) Axial {
	fs := -fq - fr
	q := math.Round(fq)
	r := math.Round(fr)
	s := math.Round(fs)

	dq := math.Abs(q - fq)
	dr := math.Abs(r - fr)
	ds := math.Abs(s - fs)

	switch {
	case dq > dr && dq > ds:
		q = -r - s
	case dr > ds:
		r = -q - s
	}
	return NewAxial(int(q), int(r))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
