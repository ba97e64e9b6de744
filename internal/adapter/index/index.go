// Package index finds the stored point nearest to a query position.
package index

import (
	"fmt"
	"math"

	"github.com/dhconnelly/rtreego"
)

// EarthRadiusKm is the mean earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0

// point is one stored position in the R-tree.
type point struct {
	i   int
	pos rtreego.Point
}

// Bounds implements rtreego.Spatial interface.
func (p *point) Bounds() rtreego.Rect {
	return p.pos.ToRect(0)
}

// Points is an R-tree over cartesian positions.
type Points struct {
	tree *rtreego.Rtree
	x, y []float64
}

// NewPoints indexes the positions (x[i], y[i]).
func NewPoints(x, y []float64) (*Points, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("x and y must have the same length, got %d and %d", len(x), len(y))
	}
	objs := make([]rtreego.Spatial, len(x))
	for i := range x {
		objs[i] = &point{i: i, pos: rtreego.Point{x[i], y[i]}}
	}
	return &Points{
		tree: rtreego.NewTree(2, 25, 50, objs...),
		x:    x,
		y:    y,
	}, nil
}

// Len is the number of indexed points.
func (p *Points) Len() int { return len(p.x) }

// Nearest returns the index of the point closest to (x, y) and the
// euclidean distance to it. It returns -1 if the index is empty.
func (p *Points) Nearest(x, y float64) (int, float64) {
	if len(p.x) == 0 {
		return -1, math.NaN()
	}
	hit, ok := p.tree.NearestNeighbor(rtreego.Point{x, y}).(*point)
	if !ok {
		return -1, math.NaN()
	}
	return hit.i, math.Hypot(p.x[hit.i]-x, p.y[hit.i]-y)
}

// Within returns the indices of all points inside the box [x0, x1] x [y0, y1].
func (p *Points) Within(x0, y0, x1, y1 float64) ([]int, error) {
	rect, err := rtreego.NewRect(rtreego.Point{x0, y0}, []float64{math.Max(x1-x0, 1e-12), math.Max(y1-y0, 1e-12)})
	if err != nil {
		return nil, fmt.Errorf("failed to build search box: %w", err)
	}
	var out []int
	for _, s := range p.tree.SearchIntersect(rect) {
		out = append(out, s.(*point).i)
	}
	return out, nil
}

// Haversine returns the great-circle distance in km between two points.
func Haversine(lon1, lat1, lon2, lat2 float64) float64 {
	const rad = math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadiusKm * math.Asin(math.Min(1, math.Sqrt(a)))
}

// NearestGreatCircle scans all points and returns the index of the one
// closest to (lon, lat) and its distance in km.
func NearestGreatCircle(lon, lat float64, lons, lats []float64) (int, float64) {
	best, bestDist := -1, math.Inf(1)
	for i := range lons {
		d := Haversine(lon, lat, lons[i], lats[i])
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return -1, math.NaN()
	}
	return best, bestDist
}
