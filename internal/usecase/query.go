package usecase

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"

	"gonum.org/v1/gonum/floats"

	"go.ngs.io/geo-skeletons/internal/adapter/array"
	"go.ngs.io/geo-skeletons/internal/adapter/geo"
	"go.ngs.io/geo-skeletons/internal/adapter/interp"
	"go.ngs.io/geo-skeletons/internal/domain"
	"go.ngs.io/geo-skeletons/internal/schema"
	"go.ngs.io/geo-skeletons/internal/skeleton"
)

var (
	// ErrEmptyField is returned when a registered field has no values.
	ErrEmptyField = errors.New("field has not been set")
	// ErrNotGridded is returned by operations that need a grid.
	ErrNotGridded = errors.New("dataset is not gridded")
)

// DatasetSummary is the short description of a dataset.
type DatasetSummary struct {
	Name        string   `json:"name"`
	Source      string   `json:"source"`
	Topology    string   `json:"topology"`
	Coordinates string   `json:"coordinates"`
	Projection  string   `json:"projection"`
	Mode        string   `json:"mode"`
	Size        []int    `json:"size"`
	Fields      []string `json:"fields"`
	Masks       []string `json:"masks"`
}

// CoordinateInfo describes one coordinate axis.
type CoordinateInfo struct {
	Name   string  `json:"name"`
	Length int     `json:"length"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// VariableInfo describes one stored array.
type VariableInfo struct {
	Name  string   `json:"name"`
	Dims  []string `json:"dims"`
	Shape []int    `json:"shape"`
	Mask  bool     `json:"mask"`
}

// DatasetInfo is the full description of a dataset.
type DatasetInfo struct {
	DatasetSummary
	CoordinateAxes []CoordinateInfo             `json:"coordinate_axes"`
	Variables      []VariableInfo               `json:"variables"`
	Magnitudes     []string                     `json:"magnitudes"`
	Directions     []string                     `json:"directions"`
	EmptyFields    []string                     `json:"empty_fields"`
	Metadata       map[string]string            `json:"metadata"`
	VariableMeta   map[string]map[string]string `json:"variable_metadata"`
	Summary        string                       `json:"summary"`
}

// FieldResponse holds the values of one field.
type FieldResponse struct {
	Dataset    string            `json:"dataset"`
	Field      string            `json:"field"`
	Dims       []string          `json:"dims"`
	Shape      []int             `json:"shape"`
	Convention string            `json:"convention,omitempty"`
	Metadata   map[string]string `json:"metadata"`
	Values     Values            `json:"values"`
}

// NearestRequest asks for the stored point closest to a position.
type NearestRequest struct {
	Lon  float64
	Lat  float64
	Fast bool
}

// NearestResponse is the stored point closest to the requested position.
type NearestResponse struct {
	Dataset    string   `json:"dataset"`
	Index      *int     `json:"index,omitempty"`
	IndexX     *int     `json:"index_x,omitempty"`
	IndexY     *int     `json:"index_y,omitempty"`
	Lon        *float64 `json:"lon,omitempty"`
	Lat        *float64 `json:"lat,omitempty"`
	DistanceKm float64  `json:"distance_km"`
}

// SampleRequest asks for a field value at a position.
type SampleRequest struct {
	Lon   float64
	Lat   float64
	Field string
}

// SampleResponse holds a bilinearly interpolated field value for every
// combination of the non-spatial coordinates in Dims.
type SampleResponse struct {
	Dataset string   `json:"dataset"`
	Field   string   `json:"field"`
	Lon     float64  `json:"lon"`
	Lat     float64  `json:"lat"`
	Dims    []string `json:"dims"`
	Values  Values   `json:"values"`
}

// XYResponse holds the projected coordinates of every point.
type XYResponse struct {
	Dataset string `json:"dataset"`
	Zone    string `json:"zone"`
	X       Values `json:"x"`
	Y       Values `json:"y"`
}

// validatePosition checks lat/lon ranges.
func validatePosition(lon, lat float64) error {
	if math.IsNaN(lon) || math.IsNaN(lat) {
		return fmt.Errorf("lon and lat must be numbers")
	}
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude must be between -90 and 90")
	}
	if lon < -180 || lon > 360 {
		return fmt.Errorf("longitude must be between -180 and 360")
	}
	return nil
}

// Validate checks if the request is valid.
func (r NearestRequest) Validate() error {
	return validatePosition(r.Lon, r.Lat)
}

// Validate checks if the request is valid.
func (r SampleRequest) Validate() error {
	if r.Field == "" {
		return fmt.Errorf("field is required")
	}
	return validatePosition(r.Lon, r.Lat)
}

// List summarizes every dataset.
func (c *Catalog) List() []DatasetSummary {
	names := c.Names()
	out := make([]DatasetSummary, 0, len(names))
	for _, name := range names {
		_ = c.with(name, func(e *entry) error {
			out = append(out, summarize(name, e))
			return nil
		})
	}
	return out
}

func summarize(name string, e *entry) DatasetSummary {
	s := e.s
	reg := s.Registry()
	coords := "cartesian"
	if s.Spherical() {
		coords = "spherical"
	}
	var fields []string
	for _, f := range reg.Fields(schema.GroupAll) {
		if !reg.IsPositionField(f) {
			fields = append(fields, f)
		}
	}
	return DatasetSummary{
		Name:        name,
		Source:      filepath.Base(e.source),
		Topology:    reg.Topology().String(),
		Coordinates: coords,
		Projection:  s.Projection().String(),
		Mode:        s.Mode().Mode().String(),
		Size:        s.Size(schema.GroupAll),
		Fields:      fields,
		Masks:       reg.Masks(schema.GroupAll),
	}
}

// Describe returns the full description of a dataset.
func (c *Catalog) Describe(name string) (*DatasetInfo, error) {
	var info *DatasetInfo
	err := c.with(name, func(e *entry) error {
		s := e.s
		reg := s.Registry()
		info = &DatasetInfo{
			DatasetSummary: summarize(name, e),
			Magnitudes:     reg.Magnitudes(),
			Directions:     reg.Directions(),
			EmptyFields:    s.EmptyFields(),
			Metadata:       s.Metadata(""),
			VariableMeta:   map[string]map[string]string{},
			Summary:        s.Summary(),
		}
		for _, coord := range s.Coordinates(schema.GroupAll) {
			vals, ok := s.CoordinateValues(coord)
			if !ok || len(vals) == 0 {
				continue
			}
			info.CoordinateAxes = append(info.CoordinateAxes, CoordinateInfo{
				Name:   coord,
				Length: len(vals),
				Min:    floats.Min(vals),
				Max:    floats.Max(vals),
			})
		}
		for _, v := range s.Variables() {
			info.Variables = append(info.Variables, VariableInfo{Name: v.Name, Dims: v.Dims, Shape: v.Shape, Mask: v.Mask})
			if md := s.Metadata(v.Name); len(md) > 0 {
				info.VariableMeta[v.Name] = md
			}
		}
		return nil
	})
	return info, err
}

// Field returns the values of a field, mask or derived field. A directional
// field is converted to convention when one is given.
func (c *Catalog) Field(name, field, convention string) (*FieldResponse, error) {
	var opts []skeleton.AccessOption
	conv := domain.ConventionNone
	if convention != "" {
		var err error
		if conv, err = domain.ParseConvention(convention); err != nil {
			return nil, err
		}
		opts = append(opts, skeleton.InConvention(conv))
	}

	var resp *FieldResponse
	err := c.with(name, func(e *entry) error {
		s := e.s
		arr, err := s.Get(field, opts...)
		if err != nil {
			return err
		}
		if arr == nil {
			return fmt.Errorf("%w: %s", ErrEmptyField, field)
		}
		vals, err := array.Values(arr)
		if err != nil {
			return err
		}
		dims, err := s.Registry().DimsOf(field)
		if err != nil {
			return err
		}
		resp = &FieldResponse{
			Dataset:  name,
			Field:    field,
			Dims:     dims,
			Shape:    arr.Shape(),
			Metadata: s.Metadata(field),
			Values:   vals,
		}
		if conv.Directional() {
			resp.Convention = conv.String()
		}
		return nil
	})
	return resp, err
}

// Nearest finds the stored point closest to a position.
func (c *Catalog) Nearest(name string, req NearestRequest) (*NearestResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	var resp *NearestResponse
	err := c.with(name, func(e *entry) error {
		s := e.s
		res, err := s.YankPoint(skeleton.Query{
			Lon:  []float64{geo.NormalizeLon(req.Lon)},
			Lat:  []float64{req.Lat},
			Fast: req.Fast,
		})
		if err != nil {
			return err
		}
		if len(res.DistanceKm) == 0 {
			return errors.New("no point found")
		}
		resp = &NearestResponse{Dataset: name, DistanceKm: roundToDecimal(res.DistanceKm[0], 3)}
		flat := 0
		if s.Gridded() {
			ix, iy := res.IndsX[0], res.IndsY[0]
			resp.IndexX, resp.IndexY = &ix, &iy
			flat = iy*s.NX() + ix
		} else {
			i := res.Inds[0]
			resp.Index = &i
			flat = i
		}
		// Cartesian data without a projection has no lon/lat to report.
		if lon, lat, err := s.LonLat(); err == nil && flat < len(lon) {
			resp.Lon, resp.Lat = &lon[flat], &lat[flat]
		}
		return nil
	})
	return resp, err
}

// Sample interpolates a grid field bilinearly at a position. Positions are
// projected into the grid's own coordinates for cartesian grids.
func (c *Catalog) Sample(name string, req SampleRequest) (*SampleResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	var resp *SampleResponse
	err := c.with(name, func(e *entry) error {
		s := e.s
		if !s.Gridded() {
			return fmt.Errorf("%w: %s", ErrNotGridded, name)
		}
		arr, err := s.Get(req.Field)
		if err != nil {
			return err
		}
		if arr == nil {
			return fmt.Errorf("%w: %s", ErrEmptyField, req.Field)
		}
		dims, err := s.Registry().DimsOf(req.Field)
		if err != nil {
			return err
		}
		yName, xName := spatialNames(s)
		perm, rest := spatialLast(dims, yName, xName)
		if arr, err = arr.Transpose(perm); err != nil {
			return err
		}
		vals, err := array.Values(arr)
		if err != nil {
			return err
		}

		px, py := geo.NormalizeLon(req.Lon), req.Lat
		var xs, ys []float64
		if s.Spherical() {
			xs, _ = s.CoordinateValues("lon")
			ys, _ = s.CoordinateValues("lat")
		} else {
			xs, _ = s.CoordinateValues("x")
			ys, _ = s.CoordinateValues("y")
			x, y, err := s.Projection().ToProjected([]float64{req.Lon}, []float64{req.Lat})
			if err != nil {
				return err
			}
			px, py = x[0], y[0]
		}

		n := len(xs) * len(ys)
		out := make(Values, 0, len(vals)/n)
		for start := 0; start+n <= len(vals); start += n {
			g := &interp.Grid{X: xs, Y: ys, Values: vals[start : start+n]}
			v, err := g.At(px, py)
			if err != nil {
				return fmt.Errorf("failed to sample %s: %w", req.Field, err)
			}
			out = append(out, v)
		}
		resp = &SampleResponse{
			Dataset: name,
			Field:   req.Field,
			Lon:     req.Lon,
			Lat:     req.Lat,
			Dims:    rest,
			Values:  out,
		}
		return nil
	})
	return resp, err
}

func spatialNames(s *skeleton.Skeleton) (string, string) {
	if s.Spherical() {
		return "lat", "lon"
	}
	return "y", "x"
}

// spatialLast returns the permutation moving y and x to the end of dims, and
// the remaining dims in order.
func spatialLast(dims []string, y, x string) ([]int, []string) {
	perm := make([]int, 0, len(dims))
	rest := []string{}
	iy, ix := -1, -1
	for i, d := range dims {
		switch d {
		case y:
			iy = i
		case x:
			ix = i
		default:
			perm = append(perm, i)
			rest = append(rest, d)
		}
	}
	return append(perm, iy, ix), rest
}

// XY returns the projected coordinates of every point, in zone when given
// and otherwise in the dataset's own projection.
func (c *Catalog) XY(name, zone string) (*XYResponse, error) {
	var opts []skeleton.CoordOption
	var z geo.Zone
	if zone != "" {
		var err error
		if z, err = geo.ParseZone(zone); err != nil {
			return nil, err
		}
		opts = append(opts, skeleton.InZone(z))
	}
	var resp *XYResponse
	err := c.with(name, func(e *entry) error {
		s := e.s
		x, y, err := s.XY(opts...)
		if err != nil {
			return err
		}
		resp = &XYResponse{Dataset: name, Zone: zone, X: x, Y: y}
		if zone == "" {
			resp.Zone = s.Projection().String()
		} else {
			resp.Zone = z.String()
		}
		return nil
	})
	return resp, err
}
