package skeleton

import (
	"fmt"
	"slices"

	"go.ngs.io/geo-skeletons/internal/adapter/array"
	"go.ngs.io/geo-skeletons/internal/domain"
	"go.ngs.io/geo-skeletons/internal/schema"
)

// Metadata returns a copy of the attributes of name, or of the whole
// container when name is empty. Registered but unset names report the
// attributes of their parameter.
func (s *Skeleton) Metadata(name string) map[string]string {
	if md := s.ds.attr(name); md != nil {
		return md
	}
	if name == "" {
		return map[string]string{}
	}
	if p, err := s.reg.Parameter(name); err == nil && p != nil {
		return p.Metadata()
	}
	if s.reg.Has(name) {
		return map[string]string{}
	}
	return nil
}

// SetMetadata writes attributes of name ("" for the container). With
// appendMode, existing keys not in md are kept.
func (s *Skeleton) SetMetadata(md map[string]string, name string, appendMode bool) error {
	if name != "" {
		d, ok := s.reg.Lookup(name)
		if !ok {
			return &domain.UnknownNameError{Name: name}
		}
		if s.isEmpty(d) {
			return fmt.Errorf("can't set metadata of %q before it has been set", name)
		}
	}
	s.ds.setAttrs(name, md, appendMode)
	return nil
}

func (s *Skeleton) isEmpty(d schema.Descriptor) bool {
	switch v := d.(type) {
	case schema.Field:
		return s.ds.get(v.ID) == nil
	case schema.Mask:
		if !v.Primary {
			return s.ds.get(v.Of) == nil
		}
		return s.ds.get(v.ID) == nil
	}
	return false
}

// EmptyFields lists the registered data fields that have not been set.
func (s *Skeleton) EmptyFields() []string {
	var out []string
	for _, name := range s.reg.Fields(schema.GroupAll) {
		if s.ds.get(name) == nil {
			out = append(out, name)
		}
	}
	return out
}

// EmptyMasks lists the stored masks that have not been set or derived.
func (s *Skeleton) EmptyMasks() []string {
	var out []string
	for _, name := range s.reg.StoredMasks(schema.GroupAll) {
		if s.ds.get(name) == nil {
			out = append(out, name)
		}
	}
	return out
}

// MaskedPoints returns the coordinates of the points where a spatial mask is
// true, as lon/lat or x/y.
func (s *Skeleton) MaskedPoints(mask string, lonlat bool) ([]float64, []float64, error) {
	name := schema.MaskName(mask)
	d, ok := s.reg.Lookup(name)
	if !ok || d.Kind() != schema.KindMask {
		return nil, nil, &domain.UnknownNameError{Name: name, What: "mask"}
	}
	dims, err := s.reg.DimsOf(name)
	if err != nil {
		return nil, nil, err
	}
	if !slices.Equal(dims, s.reg.SpatialCoordinates()) {
		return nil, nil, fmt.Errorf("%s is defined over %v, need a mask over the spatial coordinates only", name, dims)
	}
	arr, err := s.Get(name, Realize(true))
	if err != nil {
		return nil, nil, err
	}
	keep, err := array.Bools(arr)
	if err != nil {
		return nil, nil, err
	}

	var a, b []float64
	if lonlat {
		a, b, err = s.LonLat()
	} else {
		a, b, err = s.XY()
	}
	if err != nil {
		return nil, nil, err
	}
	outA := make([]float64, 0, len(a))
	outB := make([]float64, 0, len(b))
	for i, k := range keep {
		if k {
			outA = append(outA, a[i])
			outB = append(outB, b[i])
		}
	}
	return outA, outB, nil
}
