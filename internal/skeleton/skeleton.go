package skeleton

import (
	"fmt"
	"log/slog"
	"time"

	"go.ngs.io/geo-skeletons/internal/adapter/array"
	"go.ngs.io/geo-skeletons/internal/adapter/geo"
	"go.ngs.io/geo-skeletons/internal/domain"
	"go.ngs.io/geo-skeletons/internal/schema"
)

// Coords holds the coordinate values of a container. Give either X/Y or
// Lon/Lat. Extra holds the values of registered non-spatial coordinates; the
// time coordinate can be given as Time instead.
type Coords struct {
	X, Y     []float64
	Lon, Lat []float64
	Time     []time.Time
	Extra    map[string][]float64
}

// Skeleton is a container instance.
type Skeleton struct {
	class  *Class
	name   string
	reg    *schema.Registry
	ds     *dataset
	proj   *geo.Projection
	mode   *array.Manager
	logger *slog.Logger
}

// New builds a container of class c.
func (c *Class) New(coords Coords, opts ...Option) (*Skeleton, error) {
	cfg := config{name: c.name}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	logger := cfg.logger.With("skeleton", cfg.name)
	s := &Skeleton{
		class:  c,
		name:   cfg.name,
		reg:    c.reg,
		proj:   geo.NewProjection(logger),
		mode:   array.NewManager(cfg.mode),
		logger: logger,
	}
	if err := s.initStructure(coords, nil); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", c.name, err)
	}

	var err error
	switch {
	case cfg.zone != nil:
		err = s.SetUTM(*cfg.zone)
	case cfg.crs != nil:
		err = s.SetCRS(cfg.crs)
	case s.Spherical():
		err = s.detectZone()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to set projection of %s: %w", c.name, err)
	}
	return s, nil
}

// initStructure replaces the dataset with one built from coords. Non-spatial
// coordinates missing from coords are taken from prev when given.
func (s *Skeleton) initStructure(c Coords, prev *dataset) error {
	hasXY := len(c.X) > 0 || len(c.Y) > 0
	hasLL := len(c.Lon) > 0 || len(c.Lat) > 0
	if hasXY && hasLL {
		return &domain.AmbiguousGridError{}
	}
	an, bn, a, b := "x", "y", c.X, c.Y
	if hasLL {
		an, bn, a, b = "lon", "lat", cleanLons(c.Lon), c.Lat
	}
	if len(a) == 0 && len(b) > 0 {
		return &domain.MissingCoordinateError{Name: an}
	}
	if len(b) == 0 && len(a) > 0 {
		return &domain.MissingCoordinateError{Name: bn}
	}

	reg := s.reg.WithSpherical(hasLL)
	ds := newDataset()
	if prev != nil {
		ds.attrs = prev.attrs
	}

	switch reg.Topology() {
	case schema.TopologyGrid:
		ds.coords[an] = collapsePair(a)
		ds.coords[bn] = collapsePair(b)
	case schema.TopologyPoint:
		var err error
		a, b, err = matchLengths(an, bn, a, b)
		if err != nil {
			return err
		}
		ds.coords[schema.IndexCoordinate] = arange(len(a))
		for name, v := range map[string][]float64{an: a, bn: b} {
			e, err := array.NewEager([]int{len(v)}, v)
			if err != nil {
				return err
			}
			ds.set(name, &variable{dims: []string{schema.IndexCoordinate}, data: e})
		}
	}

	for name := range c.Extra {
		d, ok := reg.Lookup(name)
		if coord, isCoord := d.(schema.Coordinate); !ok || !isCoord || coord.Tag == schema.TagSpatial {
			return &domain.UnknownNameError{Name: name, What: "coordinate"}
		}
	}
	timeName, hasTime := reg.TimeCoordinate()
	for _, name := range reg.Coordinates(schema.GroupNonSpatial) {
		if v, ok := c.Extra[name]; ok {
			ds.coords[name] = append([]float64(nil), v...)
			continue
		}
		if hasTime && name == timeName && c.Time != nil {
			ds.coords[name] = unixSeconds(c.Time)
			continue
		}
		if prev != nil {
			if v, ok := prev.coord(name); ok {
				ds.coords[name] = v
				continue
			}
		}
		return &domain.MissingCoordinateError{Name: name}
	}

	s.reg = reg
	s.ds = ds
	s.annotate()
	return nil
}

// annotate writes parameter metadata of coordinates and position fields.
func (s *Skeleton) annotate() {
	names := append(s.reg.Coordinates(schema.GroupAll), s.reg.PositionFields()...)
	for _, name := range names {
		if p, err := s.reg.Parameter(name); err == nil && p != nil {
			s.ds.addMissingAttrs(name, p.Metadata())
		}
	}
	s.syncProjectionMetadata()
}

// Restructure rebuilds the container on new coordinates. Stored data fields
// are dropped. Non-spatial coordinates not given are kept.
func (s *Skeleton) Restructure(c Coords) error {
	wasSpherical := s.Spherical()
	if err := s.initStructure(c, s.ds); err != nil {
		return fmt.Errorf("failed to restructure %s: %w", s.name, err)
	}
	s.logger.Debug("restructured", "spatial", s.reg.SpatialCoordinates(), "size", s.Size(schema.GroupSpatial))
	if s.Spherical() && (!wasSpherical || !s.proj.IsSet()) {
		return s.detectZone()
	}
	return nil
}

func (s *Skeleton) detectZone() error {
	lon, lat, err := s.LonLat()
	if err != nil || len(lon) == 0 {
		return err
	}
	if _, err := s.proj.AutoDetect(lon, lat); err != nil {
		return err
	}
	s.syncProjectionMetadata()
	return nil
}

// SetUTM sets the UTM zone used for lon/lat <-> x/y conversions.
func (s *Skeleton) SetUTM(z geo.Zone) error {
	if err := s.proj.SetZone(z); err != nil {
		return err
	}
	s.syncProjectionMetadata()
	return nil
}

// SetCRS sets the projection from any definition accepted by geo.Projection.Set.
func (s *Skeleton) SetCRS(def any) error {
	if err := s.proj.Set(def); err != nil {
		return err
	}
	s.syncProjectionMetadata()
	return nil
}

// Projection returns a copy of the projection state.
func (s *Skeleton) Projection() *geo.Projection { return s.proj.Clone() }

// syncProjectionMetadata records the projection of cartesian data in the
// global attributes.
func (s *Skeleton) syncProjectionMetadata() {
	global := s.ds.attrs[""]
	for _, k := range []string{"utm_zone", "crs", "proj4"} {
		delete(global, k)
	}
	if s.Spherical() {
		return
	}
	s.ds.setAttrs("", s.proj.Metadata(), true)
}

func (s *Skeleton) Name() string        { return s.name }
func (s *Skeleton) SetName(name string) { s.name = name }

// Class returns the class the container was built from.
func (s *Skeleton) Class() *Class { return s.class }

// Registry returns the schema of this container, including instance-level additions.
func (s *Skeleton) Registry() *schema.Registry { return s.reg }

// Spherical reports whether the native coordinates are lon/lat.
func (s *Skeleton) Spherical() bool { return s.reg.Spherical() }

// Cartesian reports whether the native coordinates are x/y.
func (s *Skeleton) Cartesian() bool { return !s.reg.Spherical() }

// Gridded reports whether the container has the grid topology.
func (s *Skeleton) Gridded() bool { return s.reg.Topology() == schema.TopologyGrid }

// Mode returns the array mode manager of the container.
func (s *Skeleton) Mode() *array.Manager { return s.mode }

// Coordinates returns the coordinate names of a group in canonical order.
func (s *Skeleton) Coordinates(g schema.Group) []string { return s.reg.Coordinates(g) }

// Times returns the time coordinate values, or nil if there is none.
func (s *Skeleton) Times() []time.Time {
	name, ok := s.reg.TimeCoordinate()
	if !ok {
		return nil
	}
	secs := s.ds.coords[name]
	out := make([]time.Time, len(secs))
	for i, v := range secs {
		out[i] = time.Unix(int64(v), 0).UTC()
	}
	return out
}

// AddField registers a data field on this container only.
func (s *Skeleton) AddField(f schema.Field) error {
	f.Param = withParameter(f.ID, f.Param)
	reg, err := s.reg.RegisterField(f)
	if err != nil {
		return err
	}
	s.reg = reg
	return nil
}

// AddMask registers a mask on this container only.
func (s *Skeleton) AddMask(m schema.Mask) error {
	reg, err := s.reg.RegisterMask(m)
	if err != nil {
		return err
	}
	s.reg = reg
	return nil
}

// AddMagnitude registers a magnitude (and optional direction) on this container only.
func (s *Skeleton) AddMagnitude(m schema.Magnitude, dir *schema.Direction) error {
	reg, err := registerMagnitude(s.reg, m, dir)
	if err != nil {
		return err
	}
	s.reg = reg
	return nil
}

// cleanLons moves longitudes below -180 or above 180 by one turn. Both -180
// and 180 are kept as given, so the result lies in [-180, 180] and a global
// edge pair [-180, 180] stays two longitudes.
func cleanLons(lon []float64) []float64 {
	out := make([]float64, len(lon))
	for i, v := range lon {
		switch {
		case v < -180:
			v += 360
		case v > 180:
			v -= 360
		}
		out[i] = v
	}
	return out
}

// collapsePair turns [a, a] into [a].
func collapsePair(v []float64) []float64 {
	if len(v) == 2 && v[0] == v[1] {
		return []float64{v[0]}
	}
	return append([]float64(nil), v...)
}

// matchLengths repeats a length-1 vector to the length of the other.
func matchLengths(an, bn string, a, b []float64) ([]float64, []float64, error) {
	switch {
	case len(a) == len(b):
		return append([]float64(nil), a...), append([]float64(nil), b...), nil
	case len(a) == 1:
		return repeat(a[0], len(b)), append([]float64(nil), b...), nil
	case len(b) == 1:
		return append([]float64(nil), a...), repeat(b[0], len(a)), nil
	default:
		return nil, nil, &domain.LengthMismatchError{First: an, Second: bn, LenA: len(a), LenB: len(b)}
	}
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func arange(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}

func unixSeconds(times []time.Time) []float64 {
	out := make([]float64, len(times))
	for i, t := range times {
		out[i] = float64(t.Unix())
	}
	return out
}
