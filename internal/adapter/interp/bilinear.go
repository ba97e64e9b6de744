// Package interp samples gridded container fields at arbitrary positions.
package interp

import (
	"fmt"
	"math"
	"sort"
)

// Cell is one rectangle of a grid with the values at its four corners.
type Cell struct {
	// Corner coordinates.
	X0, X1 float64
	Y0, Y1 float64

	// V00 is the value at (X0, Y0), V10 at (X1, Y0), V01 at (X0, Y1) and V11 at (X1, Y1).
	V00, V10, V01, V11 float64
}

// Bilinear interpolates within a cell:
//
//	f(x,y) ≈ (1-t)(1-u)f(x0,y0) + t(1-u)f(x1,y0) + (1-t)u*f(x0,y1) + tu*f(x1,y1)
//
// with t = (x - x0) / (x1 - x0) and u = (y - y0) / (y1 - y0). The corners may
// be given in either order along each axis.
func Bilinear(cell Cell, x, y float64) (float64, error) {
	if cell.X1 == cell.X0 {
		return 0, fmt.Errorf("invalid grid cell: X0 and X1 are both %g", cell.X0)
	}
	if cell.Y1 == cell.Y0 {
		return 0, fmt.Errorf("invalid grid cell: Y0 and Y1 are both %g", cell.Y0)
	}

	t := (x - cell.X0) / (cell.X1 - cell.X0)
	u := (y - cell.Y0) / (cell.Y1 - cell.Y0)

	// Tolerance for floating point.
	const epsilon = 1e-9
	if t < -epsilon || t > 1+epsilon {
		return 0, fmt.Errorf("x coordinate %.6f is outside grid cell [%.6f, %.6f]", x, cell.X0, cell.X1)
	}
	if u < -epsilon || u > 1+epsilon {
		return 0, fmt.Errorf("y coordinate %.6f is outside grid cell [%.6f, %.6f]", y, cell.Y0, cell.Y1)
	}
	t = math.Max(0, math.Min(1, t))
	u = math.Max(0, math.Min(1, u))

	return (1-t)*(1-u)*cell.V00 +
		t*(1-u)*cell.V10 +
		(1-t)*u*cell.V01 +
		t*u*cell.V11, nil
}

// Grid is a rectilinear grid with y-major values: Values[iy*len(X)+ix] is
// the value at (X[ix], Y[iy]). Axes may be ascending or descending.
type Grid struct {
	X      []float64
	Y      []float64
	Values []float64
}

// Validate checks the grid is at least 2x2, strictly monotonic and fully populated.
func (g *Grid) Validate() error {
	if len(g.X) < 2 {
		return fmt.Errorf("grid must have at least 2 x coordinates")
	}
	if len(g.Y) < 2 {
		return fmt.Errorf("grid must have at least 2 y coordinates")
	}
	if len(g.Values) != len(g.X)*len(g.Y) {
		return fmt.Errorf("grid has %d values, expected %d", len(g.Values), len(g.X)*len(g.Y))
	}
	if !monotonic(g.X) {
		return fmt.Errorf("x coordinates must be strictly monotonic")
	}
	if !monotonic(g.Y) {
		return fmt.Errorf("y coordinates must be strictly monotonic")
	}
	return nil
}

func monotonic(v []float64) bool {
	up := v[1] > v[0]
	for i := 1; i < len(v); i++ {
		if (up && v[i] <= v[i-1]) || (!up && v[i] >= v[i-1]) {
			return false
		}
	}
	return true
}

// cellIndex returns i such that v lies between axis[i] and axis[i+1].
func cellIndex(axis []float64, v float64) int {
	n := len(axis)
	up := axis[n-1] > axis[0]
	lo, hi := axis[0], axis[n-1]
	if !up {
		lo, hi = hi, lo
	}
	if v < lo || v > hi {
		return -1
	}
	var i int
	if up {
		i = sort.Search(n, func(k int) bool { return axis[k] > v }) - 1
	} else {
		i = sort.Search(n, func(k int) bool { return axis[k] < v }) - 1
	}
	if i >= n-1 {
		i = n - 2
	}
	if i < 0 {
		i = 0
	}
	return i
}

// At interpolates the grid at (x, y). A NaN corner makes the result NaN.
func (g *Grid) At(x, y float64) (float64, error) {
	if err := g.Validate(); err != nil {
		return 0, fmt.Errorf("invalid grid: %w", err)
	}
	ix := cellIndex(g.X, x)
	if ix < 0 {
		return 0, fmt.Errorf("x coordinate %.6f is outside grid range [%.6f, %.6f]", x, g.X[0], g.X[len(g.X)-1])
	}
	iy := cellIndex(g.Y, y)
	if iy < 0 {
		return 0, fmt.Errorf("y coordinate %.6f is outside grid range [%.6f, %.6f]", y, g.Y[0], g.Y[len(g.Y)-1])
	}

	nx := len(g.X)
	cell := Cell{
		X0:  g.X[ix],
		X1:  g.X[ix+1],
		Y0:  g.Y[iy],
		Y1:  g.Y[iy+1],
		V00: g.Values[iy*nx+ix],
		V10: g.Values[iy*nx+ix+1],
		V01: g.Values[(iy+1)*nx+ix],
		V11: g.Values[(iy+1)*nx+ix+1],
	}
	return Bilinear(cell, x, y)
}

// AtAll interpolates two grids sharing coordinates (e.g. u and v) at one point.
func AtAll(x, y float64, grids ...*Grid) ([]float64, error) {
	out := make([]float64, len(grids))
	for i, g := range grids {
		if i > 0 && (len(g.X) != len(grids[0].X) || len(g.Y) != len(grids[0].Y)) {
			return nil, fmt.Errorf("grids must have the same dimensions")
		}
		v, err := g.At(x, y)
		if err != nil {
			return nil, fmt.Errorf("failed to interpolate grid %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}
