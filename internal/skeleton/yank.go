package skeleton

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"go.ngs.io/geo-skeletons/internal/adapter/geo"
	"go.ngs.io/geo-skeletons/internal/adapter/index"
	"go.ngs.io/geo-skeletons/internal/domain"
)

// Query lists positions to look up, as lon/lat or x/y pairs.
type Query struct {
	Lon, Lat []float64
	X, Y     []float64
	Unique   bool // Drop repeated indices.
	Fast     bool // Search in projected metres instead of great-circle distance.
}

// YankResult holds the nearest stored point of each query position. Points
// fill Inds; grids fill IndsX and IndsY.
type YankResult struct {
	Inds       []int
	IndsX      []int
	IndsY      []int
	DistanceKm []float64
}

// polarLatitude is where the fast search falls back to great-circle distances.
const polarLatitude = 84.0

// YankPoint finds the stored points nearest to the query positions.
// Cartesian containers always use the fast search. Query points beyond ±84°
// latitude always use great-circle distances.
func (s *Skeleton) YankPoint(q Query) (YankResult, error) {
	var res YankResult
	fast := q.Fast || s.Cartesian()
	hasLL := len(q.Lon) > 0 || len(q.Lat) > 0
	hasXY := len(q.X) > 0 || len(q.Y) > 0
	switch {
	case hasLL == hasXY:
		return res, errors.New("give either an x-y pair or a lon-lat pair")
	case hasLL && len(q.Lon) != len(q.Lat):
		return res, &domain.LengthMismatchError{First: "lon", Second: "lat", LenA: len(q.Lon), LenB: len(q.Lat)}
	case hasXY && len(q.X) != len(q.Y):
		return res, &domain.LengthMismatchError{First: "x", Second: "y", LenA: len(q.X), LenB: len(q.Y)}
	}

	proj := s.proj
	x, y, lon, lat := q.X, q.Y, q.Lon, q.Lat
	var err error
	if hasLL {
		if s.Spherical() {
			// Search in the zone of the query rather than the container.
			proj = geo.NewProjection(s.logger)
			z := geo.ZoneOf(floats.Sum(lat)/float64(len(lat)), geo.MeanLongitude(lon))
			if err := proj.SetZone(z); err != nil {
				return res, err
			}
		}
		if x, y, err = proj.ToProjected(lon, lat); err != nil {
			return res, err
		}
	} else if proj.IsSet() {
		if lon, lat, err = proj.ToGeographic(x, y); err != nil {
			return res, err
		}
	}
	if lat == nil {
		fast = true
	}

	candLon, candLat, err := s.LonLat()
	if err != nil {
		candLon, candLat = nil, nil
	}
	var tree *index.Points
	cartesian := func(xx, yy float64) (int, float64, error) {
		if tree == nil {
			cx, cy, err := s.candidatesXY(proj, candLon, candLat)
			if err != nil {
				return 0, 0, err
			}
			if tree, err = index.NewPoints(cx, cy); err != nil {
				return 0, 0, err
			}
		}
		i, d := tree.Nearest(xx, yy)
		return i, d / 1000, nil
	}

	var inds []int
	var dists []float64
	for n := range x {
		var (
			i  = -1
			dk float64
		)
		switch {
		case lat == nil || (fast && math.Abs(lat[n]) <= polarLatitude):
			if i, dk, err = cartesian(x[n], y[n]); err != nil {
				return res, err
			}
		case candLon != nil:
			i, dk = index.NearestGreatCircle(lon[n], lat[n], candLon, candLat)
		}
		if i >= 0 {
			inds = append(inds, i)
			dists = append(dists, dk)
		}
	}
	if q.Unique {
		inds, dists = uniqueInds(inds, dists)
	}

	res.DistanceKm = dists
	if !s.Gridded() {
		res.Inds = inds
		return res, nil
	}
	nx := s.NX()
	res.IndsX = make([]int, len(inds))
	res.IndsY = make([]int, len(inds))
	for k, i := range inds {
		res.IndsY[k], res.IndsX[k] = i/nx, i%nx
	}
	return res, nil
}

// candidatesXY returns the stored points in the coordinates of proj.
func (s *Skeleton) candidatesXY(proj *geo.Projection, lon, lat []float64) ([]float64, []float64, error) {
	if s.Cartesian() && proj == s.proj {
		return s.nativePoints()
	}
	if lon == nil {
		return nil, nil, &domain.NoProjectionSetError{Operation: "searching for nearest points"}
	}
	return proj.ToProjected(lon, lat)
}

// uniqueInds sorts and deduplicates indices, keeping the distance of the
// first occurrence.
func uniqueInds(inds []int, dists []float64) ([]int, []float64) {
	first := make(map[int]float64, len(inds))
	for k, i := range inds {
		if _, ok := first[i]; !ok {
			first[i] = dists[k]
		}
	}
	out := make([]int, 0, len(first))
	for i := range first {
		out = append(out, i)
	}
	sort.Ints(out)
	d := make([]float64, len(out))
	for k, i := range out {
		d[k] = first[i]
	}
	return out, d
}
