package decode

import (
	"errors"
	"fmt"
	"maps"

	"go.ngs.io/geo-skeletons/internal/domain"
	"go.ngs.io/geo-skeletons/internal/schema"
	"go.ngs.io/geo-skeletons/internal/skeleton"
)

// Options controls how dataset variables are matched to container names.
type Options struct {
	// Mapping maps container names to dataset variable names and is tried first.
	Mapping map[string]string
	// Aliases resolves external spellings. Defaults to domain.DefaultAliases().
	Aliases *domain.AliasTable
	// Coords supplies non-spatial coordinates, overriding the dataset.
	Coords map[string][]float64
	// Skeleton options are applied after the projection read from the dataset.
	Skeleton []skeleton.Option
}

// FromDataset builds a container of class c from ds. All coordinates of the
// class must be found in ds or given in opts.Coords; data fields and masks
// are set when a matching variable exists. Components missing from ds are
// filled from a matching magnitude and direction pair.
func FromDataset(c *skeleton.Class, ds *Dataset, opts Options) (*skeleton.Skeleton, error) {
	r := newResolver(ds, opts)
	reg := c.Registry()

	coords, dimMap, spherical, err := r.spatial(reg.Topology())
	if err != nil {
		return nil, err
	}

	coords.Extra = make(map[string][]float64)
	timeName, hasTime := reg.TimeCoordinate()
	for _, name := range reg.Coordinates(schema.GroupNonSpatial) {
		dsName, found := r.find(name, parameterOf(reg, name))
		if found {
			if v := ds.Vars[dsName]; len(v.Dims) == 1 {
				dimMap[v.Dims[0]] = name
			}
		}
		if v, ok := opts.Coords[name]; ok {
			coords.Extra[name] = v
			continue
		}
		if !found {
			return nil, &domain.MissingCoordinateError{Name: name}
		}
		v := ds.Vars[dsName]
		if len(v.Dims) != 1 {
			return nil, fmt.Errorf("coordinate %s (%s) must be one-dimensional, has dims %v", name, dsName, v.Dims)
		}
		vals := v.Values
		if hasTime && name == timeName {
			if vals, err = decodeTime(vals, v.Attrs["units"]); err != nil {
				return nil, fmt.Errorf("failed to decode %s: %w", dsName, err)
			}
		}
		coords.Extra[name] = vals
	}

	var skOpts []skeleton.Option
	if !spherical {
		if md := projectionAttrs(ds.Attrs); md != nil {
			skOpts = append(skOpts, skeleton.WithCRS(md))
		}
	}
	skOpts = append(skOpts, opts.Skeleton...)
	s, err := c.New(coords, skOpts...)
	if err != nil {
		return nil, err
	}

	set := map[string]bool{}
	sreg := s.Registry()
	for _, name := range append(sreg.Fields(schema.GroupAll), sreg.StoredMasks(schema.GroupAll)...) {
		if sreg.IsPositionField(name) {
			continue
		}
		ok, err := r.setVariable(s, name, dimMap)
		if err != nil {
			return nil, err
		}
		set[name] = ok
	}
	if err := r.setDerived(s, set, dimMap); err != nil {
		return nil, err
	}

	if err := s.SetMetadata(ds.Attrs, "", true); err != nil {
		return nil, err
	}
	return s, nil
}

// setVariable sets name from its matching dataset variable, if any.
func (r *resolver) setVariable(s *skeleton.Skeleton, name string, dimMap map[string]string) (bool, error) {
	dsName, ok := r.find(name, parameterOf(s.Registry(), name))
	if !ok {
		return false, nil
	}
	v := r.ds.Vars[dsName]
	dims, err := r.remapDims(s, v, dimMap)
	if err != nil {
		return false, fmt.Errorf("failed to match dimensions of %s: %w", dsName, err)
	}
	arr, err := r.array(dsName)
	if err != nil {
		return false, err
	}
	setOpts := []skeleton.AccessOption{skeleton.Dims(dims...)}
	attrs := maps.Clone(v.Attrs)
	if conv, ok := storedConvention(s.Registry(), name, attrs); ok {
		setOpts = append(setOpts, skeleton.InConvention(conv))
		delete(attrs, "direction_convention")
	}
	if err := s.Set(name, arr, setOpts...); err != nil {
		return false, err
	}
	if err := s.SetMetadata(attrs, name, true); err != nil {
		return false, err
	}
	return true, nil
}

// setDerived fills unset x/y components from a magnitude and direction found
// in the dataset.
func (r *resolver) setDerived(s *skeleton.Skeleton, set map[string]bool, dimMap map[string]string) error {
	reg := s.Registry()
	for _, mName := range reg.Magnitudes() {
		d, _ := reg.Lookup(mName)
		m := d.(schema.Magnitude)
		if set[m.X] || set[m.Y] {
			continue
		}
		dd, ok := reg.Lookup(m.Direction)
		if !ok {
			continue
		}
		dir := dd.(schema.Direction)
		_, hasMag := r.find(m.ID, m.Param)
		_, hasDir := r.find(dir.ID, dir.Param)
		if !hasMag || !hasDir {
			continue
		}
		if _, err := r.setVariable(s, m.ID, dimMap); err != nil {
			return err
		}
		if _, err := r.setVariable(s, dir.ID, dimMap); err != nil {
			return err
		}
	}
	return nil
}

// remapDims renames the dimensions of v to container coordinates. Unknown
// dimensions of length one are kept for the reshape engine to drop; an
// unknown longer dimension is matched to the single unused coordinate of the
// same length.
func (r *resolver) remapDims(s *skeleton.Skeleton, v *Variable, dimMap map[string]string) ([]string, error) {
	used := map[string]bool{}
	for _, d := range v.Dims {
		if c, ok := dimMap[d]; ok {
			used[c] = true
		}
	}
	out := make([]string, len(v.Dims))
	for i, d := range v.Dims {
		if c, ok := dimMap[d]; ok {
			out[i] = c
			continue
		}
		n := r.ds.DimLens[d]
		if n <= 1 {
			out[i] = d
			continue
		}
		var match []string
		for _, c := range s.Coordinates(schema.GroupAll) {
			if used[c] {
				continue
			}
			if vals, ok := s.CoordinateValues(c); ok && len(vals) == n {
				match = append(match, c)
			}
		}
		if len(match) != 1 {
			return nil, fmt.Errorf("can't identify dimension %s of length %d", d, n)
		}
		out[i] = match[0]
		used[match[0]] = true
	}
	return out, nil
}

// spatial finds the lon/lat or x/y pair and maps their dataset dimensions.
func (r *resolver) spatial(topo schema.Topology) (skeleton.Coords, map[string]string, bool, error) {
	var coords skeleton.Coords
	dimMap := map[string]string{}
	for _, pair := range [][2]string{{"lon", "lat"}, {"x", "y"}} {
		a, okA := r.find(pair[0], parameterFor(pair[0]))
		b, okB := r.find(pair[1], parameterFor(pair[1]))
		if !okA || !okB {
			continue
		}
		va, vb := r.ds.Vars[a], r.ds.Vars[b]
		if len(va.Dims) != 1 || len(vb.Dims) != 1 {
			return coords, nil, false, fmt.Errorf("%s and %s must be one-dimensional", a, b)
		}
		spherical := pair[0] == "lon"
		if spherical {
			coords.Lon, coords.Lat = va.Values, vb.Values
		} else {
			coords.X, coords.Y = va.Values, vb.Values
		}
		if topo == schema.TopologyPoint {
			dimMap[va.Dims[0]] = schema.IndexCoordinate
			dimMap[vb.Dims[0]] = schema.IndexCoordinate
		} else {
			dimMap[va.Dims[0]] = pair[0]
			dimMap[vb.Dims[0]] = pair[1]
		}
		return coords, dimMap, spherical, nil
	}
	return coords, nil, false, errors.New("can't find an x-y or lon-lat pair in the dataset")
}

// storedConvention reads the direction_convention attribute of a directional
// variable.
func storedConvention(reg *schema.Registry, name string, attrs map[string]string) (domain.Convention, bool) {
	d, ok := reg.Lookup(name)
	if !ok {
		return domain.ConventionNone, false
	}
	switch v := d.(type) {
	case schema.Field:
		if !v.Convention.Directional() {
			return domain.ConventionNone, false
		}
	case schema.Direction:
	default:
		return domain.ConventionNone, false
	}
	conv, err := domain.ParseConvention(attrs["direction_convention"])
	if err != nil || !conv.Directional() {
		return domain.ConventionNone, false
	}
	return conv, true
}

// projectionAttrs picks the projection keys written with cartesian data.
func projectionAttrs(attrs map[string]string) map[string]string {
	md := map[string]string{}
	for _, k := range []string{"utm_zone", "proj4", "crs"} {
		if v, ok := attrs[k]; ok && v != "" {
			md[k] = v
		}
	}
	if len(md) == 0 {
		return nil
	}
	return md
}

func parameterOf(reg *schema.Registry, name string) *domain.Parameter {
	p, err := reg.Parameter(name)
	if err != nil {
		return nil
	}
	return p
}

func parameterFor(name string) *domain.Parameter {
	p, ok := domain.GetParameter(name)
	if !ok {
		return nil
	}
	return &p
}
