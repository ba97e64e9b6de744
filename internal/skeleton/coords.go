package skeleton

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"go.ngs.io/geo-skeletons/internal/adapter/array"
	"go.ngs.io/geo-skeletons/internal/adapter/geo"
	"go.ngs.io/geo-skeletons/internal/schema"
)

type coordConfig struct {
	native    bool
	strict    bool
	normalize bool
	zone      *geo.Zone
}

// CoordOption modifies coordinate access.
type CoordOption func(*coordConfig)

// Native returns the native coordinates instead of converting, e.g. lon for
// X() of a spherical container.
func Native() CoordOption { return func(c *coordConfig) { c.native = true } }

// Strict returns nil instead of converting from the other system.
func Strict() CoordOption { return func(c *coordConfig) { c.strict = true } }

// Normalize subtracts the minimum from projected coordinates.
func Normalize() CoordOption { return func(c *coordConfig) { c.normalize = true } }

// InZone returns projected coordinates in zone z instead of the container zone.
func InZone(z geo.Zone) CoordOption { return func(c *coordConfig) { c.zone = &z } }

var errNativeAndStrict = errors.New("can't request both native and strict coordinates")

func newCoordConfig(opts []CoordOption) (coordConfig, error) {
	var c coordConfig
	for _, o := range opts {
		o(&c)
	}
	if c.native && c.strict {
		return c, errNativeAndStrict
	}
	return c, nil
}

// X returns the x coordinate: the grid axis for grids, one value per point
// for points.
func (s *Skeleton) X(opts ...CoordOption) ([]float64, error) {
	if s.Gridded() {
		return s.gridAxis("x", opts)
	}
	x, _, err := s.XY(opts...)
	return x, err
}

// Y returns the y coordinate.
func (s *Skeleton) Y(opts ...CoordOption) ([]float64, error) {
	if s.Gridded() {
		return s.gridAxis("y", opts)
	}
	_, y, err := s.XY(opts...)
	return y, err
}

// Lon returns the longitude.
func (s *Skeleton) Lon(opts ...CoordOption) ([]float64, error) {
	if s.Gridded() {
		return s.gridAxis("lon", opts)
	}
	lon, _, err := s.LonLat(opts...)
	return lon, err
}

// Lat returns the latitude.
func (s *Skeleton) Lat(opts ...CoordOption) ([]float64, error) {
	if s.Gridded() {
		return s.gridAxis("lat", opts)
	}
	_, lat, err := s.LonLat(opts...)
	return lat, err
}

// XY returns the projected coordinates of every point. Grids are raveled
// with y as the slow axis.
func (s *Skeleton) XY(opts ...CoordOption) ([]float64, []float64, error) {
	c, err := newCoordConfig(opts)
	if err != nil {
		return nil, nil, err
	}
	if s.Spherical() && c.strict {
		return nil, nil, nil
	}
	a, b, err := s.nativePoints()
	if err != nil {
		return nil, nil, err
	}

	var x, y []float64
	switch {
	case s.Spherical() && c.native, s.Cartesian() && s.sameZone(c.zone):
		x, y = a, b
	case s.Spherical():
		x, y, err = s.project(a, b, c.zone)
	default:
		var lon, lat []float64
		if lon, lat, err = s.proj.ToGeographic(a, b); err == nil {
			x, y, err = s.project(lon, lat, c.zone)
		}
	}
	if err != nil {
		return nil, nil, err
	}
	if c.normalize && !(s.Spherical() && c.native) {
		x, y = shiftToZero(x), shiftToZero(y)
	}
	return x, y, nil
}

// LonLat returns the geographic coordinates of every point.
func (s *Skeleton) LonLat(opts ...CoordOption) ([]float64, []float64, error) {
	c, err := newCoordConfig(opts)
	if err != nil {
		return nil, nil, err
	}
	if s.Cartesian() && c.strict {
		return nil, nil, nil
	}
	a, b, err := s.nativePoints()
	if err != nil {
		return nil, nil, err
	}
	if s.Spherical() || c.native {
		return a, b, nil
	}
	return s.proj.ToGeographic(a, b)
}

// gridAxis returns one axis of a grid. Converting an axis between the two
// systems uses the median of the other axis.
func (s *Skeleton) gridAxis(name string, opts []CoordOption) ([]float64, error) {
	c, err := newCoordConfig(opts)
	if err != nil {
		return nil, err
	}
	projected := name == "x" || name == "y"
	first := name == "x" || name == "lon"
	vals := s.ds.coords[s.nativeName(first)]
	nativeSystem := projected == s.Cartesian()

	var out []float64
	switch {
	case nativeSystem && (!projected || s.sameZone(c.zone)):
		out = append([]float64(nil), vals...)
	case !nativeSystem && c.native:
		out = append([]float64(nil), vals...)
	case !nativeSystem && c.strict:
		return nil, nil
	default:
		out, err = s.convertAxis(name, first, projected, vals, c.zone)
		if err != nil {
			return nil, err
		}
	}
	if c.normalize && projected {
		out = shiftToZero(out)
	}
	return out, nil
}

func (s *Skeleton) convertAxis(name string, first, projected bool, vals []float64, zone *geo.Zone) ([]float64, error) {
	if len(vals) == 0 {
		return []float64{}, nil
	}
	s.logger.Warn("converting a single grid axis rotates the grid, use XY or LonLat for all points", "axis", name)
	mid := repeat(median(s.ds.coords[s.nativeName(!first)]), len(vals))
	a, b := vals, mid
	if !first {
		a, b = mid, vals
	}

	var err error
	if projected {
		if s.Cartesian() {
			if a, b, err = s.proj.ToGeographic(a, b); err != nil {
				return nil, err
			}
		}
		a, b, err = s.project(a, b, zone)
	} else {
		a, b, err = s.proj.ToGeographic(a, b)
	}
	if err != nil {
		return nil, err
	}
	if first {
		return a, nil
	}
	return b, nil
}

func (s *Skeleton) nativeName(first bool) string {
	switch {
	case s.Spherical() && first:
		return "lon"
	case s.Spherical():
		return "lat"
	case first:
		return "x"
	default:
		return "y"
	}
}

// nativePoints returns copies of the native coordinates of every point.
func (s *Skeleton) nativePoints() ([]float64, []float64, error) {
	if s.Gridded() {
		a := s.ds.coords[s.nativeName(true)]
		b := s.ds.coords[s.nativeName(false)]
		xs := make([]float64, 0, len(a)*len(b))
		ys := make([]float64, 0, len(a)*len(b))
		for _, bv := range b {
			for _, av := range a {
				xs = append(xs, av)
				ys = append(ys, bv)
			}
		}
		return xs, ys, nil
	}
	names := s.reg.PositionFields()
	a, err := array.Values(s.ds.get(names[0]).data)
	if err != nil {
		return nil, nil, err
	}
	b, err := array.Values(s.ds.get(names[1]).data)
	if err != nil {
		return nil, nil, err
	}
	return append([]float64(nil), a...), append([]float64(nil), b...), nil
}

func (s *Skeleton) sameZone(z *geo.Zone) bool {
	if z == nil {
		return true
	}
	current, ok := s.proj.Zone()
	return ok && current.Number == z.Number && current.Letter == z.Letter
}

// project converts lon/lat into zone, or into the container projection when
// zone is nil.
func (s *Skeleton) project(lon, lat []float64, zone *geo.Zone) ([]float64, []float64, error) {
	if s.sameZone(zone) {
		return s.proj.ToProjected(lon, lat)
	}
	p := geo.NewProjection(s.logger)
	if err := p.SetZone(*zone); err != nil {
		return nil, nil, err
	}
	return p.ToProjected(lon, lat)
}

// meshgrid expands two axes into ny×nx matrices.
func meshgrid(x, y []float64) ([][]float64, [][]float64) {
	X := make([][]float64, len(y))
	Y := make([][]float64, len(y))
	for j, yv := range y {
		X[j] = append([]float64(nil), x...)
		Y[j] = repeat(yv, len(x))
	}
	return X, Y
}

func (s *Skeleton) grids(xf, yf func(...CoordOption) ([]float64, error), opts []CoordOption) ([][]float64, [][]float64, error) {
	if !s.Gridded() {
		return nil, nil, errors.New("meshgrids are only defined for gridded containers")
	}
	x, err := xf(opts...)
	if err != nil || x == nil {
		return nil, nil, err
	}
	y, err := yf(opts...)
	if err != nil || y == nil {
		return nil, nil, err
	}
	X, Y := meshgrid(x, y)
	return X, Y, nil
}

// XGrid returns the x meshgrid (ny rows of nx values).
func (s *Skeleton) XGrid(opts ...CoordOption) ([][]float64, error) {
	X, _, err := s.grids(s.X, s.Y, opts)
	return X, err
}

// YGrid returns the y meshgrid.
func (s *Skeleton) YGrid(opts ...CoordOption) ([][]float64, error) {
	_, Y, err := s.grids(s.X, s.Y, opts)
	return Y, err
}

// LonGrid returns the longitude meshgrid.
func (s *Skeleton) LonGrid(opts ...CoordOption) ([][]float64, error) {
	X, _, err := s.grids(s.Lon, s.Lat, opts)
	return X, err
}

// LatGrid returns the latitude meshgrid.
func (s *Skeleton) LatGrid(opts ...CoordOption) ([][]float64, error) {
	_, Y, err := s.grids(s.Lon, s.Lat, opts)
	return Y, err
}

// Edges returns the minimum and maximum of x, y, lon or lat over all points.
// Both are NaN when the coordinate is unavailable.
func (s *Skeleton) Edges(coord string, opts ...CoordOption) (float64, float64, error) {
	var a, b []float64
	var err error
	switch coord {
	case "x", "y":
		a, b, err = s.XY(opts...)
	case "lon", "lat":
		a, b, err = s.LonLat(opts...)
	default:
		return math.NaN(), math.NaN(), errors.New("coord needs to be x, y, lon or lat")
	}
	if err != nil {
		return math.NaN(), math.NaN(), err
	}
	v := a
	if coord == "y" || coord == "lat" {
		v = b
	}
	if len(v) == 0 {
		return math.NaN(), math.NaN(), nil
	}
	return floats.Min(v), floats.Max(v), nil
}

// NX is the length of the x (or lon) axis; for points the number of points.
func (s *Skeleton) NX() int {
	if s.Gridded() {
		return len(s.ds.coords[s.nativeName(true)])
	}
	return len(s.ds.coords[schema.IndexCoordinate])
}

// NY is the length of the y (or lat) axis; for points the number of points.
func (s *Skeleton) NY() int {
	if s.Gridded() {
		return len(s.ds.coords[s.nativeName(false)])
	}
	return len(s.ds.coords[schema.IndexCoordinate])
}

// DX is the mean spacing of the x values.
func (s *Skeleton) DX(opts ...CoordOption) (float64, error) { return s.spacing(s.X, s.NX(), opts) }

// DY is the mean spacing of the y values.
func (s *Skeleton) DY(opts ...CoordOption) (float64, error) { return s.spacing(s.Y, s.NY(), opts) }

// DLon is the mean spacing of the longitudes.
func (s *Skeleton) DLon(opts ...CoordOption) (float64, error) { return s.spacing(s.Lon, s.NX(), opts) }

// DLat is the mean spacing of the latitudes.
func (s *Skeleton) DLat(opts ...CoordOption) (float64, error) { return s.spacing(s.Lat, s.NY(), opts) }

func (s *Skeleton) spacing(f func(...CoordOption) ([]float64, error), n int, opts []CoordOption) (float64, error) {
	v, err := f(opts...)
	if err != nil {
		return math.NaN(), err
	}
	if v == nil || n == 0 {
		return math.NaN(), nil
	}
	if n == 1 {
		return 0, nil
	}
	return (floats.Max(v) - floats.Min(v)) / float64(n-1), nil
}

// Size returns the shape of a coordinate group.
func (s *Skeleton) Size(g schema.Group) []int {
	shape, err := s.reg.ShapeOf(g, s.ds.lengths())
	if err != nil {
		return nil
	}
	return shape
}

// Shape returns the shape of a coordinate, field, mask or derived field.
func (s *Skeleton) Shape(name string) ([]int, error) {
	if d, ok := s.reg.Lookup(name); ok && d.Kind() == schema.KindCoordinate {
		v, ok := s.ds.coord(name)
		if !ok {
			return nil, errors.New("coordinate " + name + " has no values")
		}
		return []int{len(v)}, nil
	}
	return s.shapeOf(name)
}

// Inds returns the point index, or nil for grids.
func (s *Skeleton) Inds() []int {
	if s.Gridded() {
		return nil
	}
	idx := s.ds.coords[schema.IndexCoordinate]
	out := make([]int, len(idx))
	for i, v := range idx {
		out[i] = int(v)
	}
	return out
}

func median(v []float64) float64 {
	if len(v) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), v...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func shiftToZero(v []float64) []float64 {
	if len(v) == 0 {
		return v
	}
	lo := floats.Min(v)
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x - lo
	}
	return out
}
