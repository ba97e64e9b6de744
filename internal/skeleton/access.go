package skeleton

import (
	"fmt"
	"math"

	"go.ngs.io/geo-skeletons/internal/adapter/array"
	"go.ngs.io/geo-skeletons/internal/adapter/reshape"
	"go.ngs.io/geo-skeletons/internal/domain"
	"go.ngs.io/geo-skeletons/internal/schema"
)

// Get returns the values of a coordinate, field, mask, magnitude or direction
// in canonical dimension order.
//
// An unset field returns nil unless AllowDefault is given. A magnitude or
// direction is nil when either component is unset. Masks are never nil: an
// unset mask reads as its default.
func (s *Skeleton) Get(name string, opts ...AccessOption) (array.NumericArray, error) {
	a := newAccess(opts)
	d, ok := s.reg.Lookup(name)
	if !ok {
		return nil, &domain.UnknownNameError{Name: name}
	}
	if a.convention.Directional() && !directional(d) {
		return nil, &domain.NotDirectionalError{Name: name}
	}

	var (
		out array.NumericArray
		err error
	)
	switch v := d.(type) {
	case schema.Coordinate:
		vals, ok := s.ds.coord(name)
		if !ok {
			return nil, &domain.MissingCoordinateError{Name: name}
		}
		out, err = array.NewEager([]int{len(vals)}, vals)
	case schema.Field:
		out, err = s.getField(v, a)
	case schema.Mask:
		out, err = s.getMask(v)
	case schema.Magnitude:
		out, err = s.getMagnitude(v, a.allowDefault)
	case schema.Direction:
		out, err = s.getDirection(v, a)
	}
	if err != nil || out == nil {
		return nil, err
	}
	if a.squeeze {
		if out, err = reshape.Squeeze(out); err != nil {
			return nil, err
		}
	}
	return s.mode.Prepare(out, a.realize)
}

// Values is Get followed by realization into a flat row-major slice.
func (s *Skeleton) Values(name string, opts ...AccessOption) ([]float64, error) {
	arr, err := s.Get(name, opts...)
	if err != nil || arr == nil {
		return nil, err
	}
	return array.Values(arr)
}

func directional(d schema.Descriptor) bool {
	switch v := d.(type) {
	case schema.Field:
		return v.Convention.Directional()
	case schema.Direction:
		return true
	}
	return false
}

func (s *Skeleton) getField(f schema.Field, a access) (array.NumericArray, error) {
	var data array.NumericArray
	if v := s.ds.get(f.ID); v != nil {
		data = v.data
	} else if a.allowDefault {
		var err error
		if data, err = s.defaults(f.ID); err != nil {
			return nil, err
		}
	} else {
		return nil, nil
	}
	if a.convention.Directional() && a.convention != f.Convention {
		data = data.Apply(domain.DirectionFunc(f.Convention, a.convention))
	}
	return data, nil
}

func (s *Skeleton) getMask(m schema.Mask) (array.NumericArray, error) {
	if !m.Primary {
		primary, ok := s.reg.Lookup(m.Of)
		if !ok {
			return nil, &domain.UnknownNameError{Name: m.Of, What: "mask"}
		}
		data, err := s.getMask(primary.(schema.Mask))
		if err != nil {
			return nil, err
		}
		return array.Not(data), nil
	}
	if v := s.ds.get(m.ID); v != nil {
		return v.data, nil
	}
	if m.TriggeredBy != "" {
		def, err := s.reg.DefaultValue(m.TriggeredBy)
		if err != nil {
			return nil, err
		}
		shape, err := s.shapeOf(m.ID)
		if err != nil {
			return nil, err
		}
		return array.Full(shape, boolValue(m.Range.Contains(def))), nil
	}
	return s.defaults(m.ID)
}

// components returns the stored x and y components. ok is false if either is
// unset and defaults are not allowed.
func (s *Skeleton) components(x, y string, allowDefault bool) (xa, ya array.NumericArray, ok bool, err error) {
	opts := access{allowDefault: allowDefault}
	xf, _ := s.reg.Lookup(x)
	yf, _ := s.reg.Lookup(y)
	if xa, err = s.getField(xf.(schema.Field), opts); err != nil || xa == nil {
		return nil, nil, false, err
	}
	if ya, err = s.getField(yf.(schema.Field), opts); err != nil || ya == nil {
		return nil, nil, false, err
	}
	return xa, ya, true, nil
}

func (s *Skeleton) getMagnitude(m schema.Magnitude, allowDefault bool) (array.NumericArray, error) {
	x, y, ok, err := s.components(m.X, m.Y, allowDefault)
	if !ok {
		return nil, err
	}
	return x.Zip(y, math.Hypot)
}

func (s *Skeleton) getDirection(d schema.Direction, a access) (array.NumericArray, error) {
	x, y, ok, err := s.components(d.X, d.Y, a.allowDefault)
	if !ok {
		return nil, err
	}
	out := d.Convention
	if a.convention.Directional() {
		out = a.convention
	}
	return y.Zip(x, func(yv, xv float64) float64 {
		return domain.FromMath(math.Atan2(yv, xv), out)
	})
}

// Set writes a field, mask, magnitude or direction. value can be anything
// accepted by array.From; nil writes the default. The value is aligned to
// the canonical shape, and a scalar fills the whole field.
func (s *Skeleton) Set(name string, value any, opts ...AccessOption) error {
	a := newAccess(opts)
	d, ok := s.reg.Lookup(name)
	if !ok {
		return &domain.UnknownNameError{Name: name}
	}
	if a.convention.Directional() && !directional(d) {
		return &domain.NotDirectionalError{Name: name}
	}

	var err error
	switch v := d.(type) {
	case schema.Coordinate:
		return fmt.Errorf("%q is a coordinate, use Restructure to change it", name)
	case schema.Field:
		if s.reg.IsPositionField(name) {
			return fmt.Errorf("%q is a point position, use Restructure to change it", name)
		}
		err = s.setField(v, value, a)
	case schema.Mask:
		err = s.setMask(v, value, a)
	case schema.Magnitude:
		err = s.setMagnitude(v, value, a)
	case schema.Direction:
		err = s.setDirection(v, value, a)
	}
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", name, err)
	}
	return nil
}

// align converts value to an array in the canonical shape of name.
func (s *Skeleton) align(name string, value any, dims []string) (array.NumericArray, error) {
	if value == nil {
		return s.defaults(name)
	}
	arr, err := array.From(value)
	if err != nil {
		return nil, err
	}
	return s.alignArray(name, arr, dims)
}

func (s *Skeleton) alignArray(name string, arr array.NumericArray, dims []string) (array.NumericArray, error) {
	target, err := s.target(name)
	if err != nil {
		return nil, err
	}
	return reshape.Align(arr, target, dims)
}

func (s *Skeleton) target(name string) (reshape.Target, error) {
	dims, err := s.reg.DimsOf(name)
	if err != nil {
		return reshape.Target{}, err
	}
	shape, err := schema.Shape(dims, s.ds.lengths())
	if err != nil {
		return reshape.Target{}, err
	}
	return reshape.Target{Name: name, Dims: dims, Shape: shape}, nil
}

func (s *Skeleton) shapeOf(name string) ([]int, error) {
	t, err := s.target(name)
	return t.Shape, err
}

// defaults returns the canonical default-filled array of a field or mask.
func (s *Skeleton) defaults(name string) (array.NumericArray, error) {
	shape, err := s.shapeOf(name)
	if err != nil {
		return nil, err
	}
	def, err := s.reg.DefaultValue(name)
	if err != nil {
		return nil, err
	}
	return array.Full(shape, def), nil
}

func (s *Skeleton) setField(f schema.Field, value any, a access) error {
	arr, err := s.align(f.ID, value, a.dims)
	if err != nil {
		return err
	}
	if a.convention.Directional() && a.convention != f.Convention {
		arr = arr.Apply(domain.DirectionFunc(a.convention, f.Convention))
	}
	return s.storeField(f.ID, arr, a.realize)
}

// storeField writes an aligned field and re-derives the masks it triggers.
func (s *Skeleton) storeField(name string, arr array.NumericArray, realize *bool) error {
	if err := s.store(name, arr, false, realize); err != nil {
		return err
	}
	for _, m := range s.reg.TriggeredMasks(name) {
		r := m.Range
		mask := arr.Apply(func(v float64) float64 { return boolValue(r.Contains(v)) })
		mask, err := s.alignArray(m.ID, mask, nil)
		if err != nil {
			return fmt.Errorf("failed to derive %s: %w", m.ID, err)
		}
		if err := s.store(m.ID, mask, true, realize); err != nil {
			return err
		}
		s.logger.Debug("mask derived from field", "mask", m.ID, "field", name)
	}
	return nil
}

func (s *Skeleton) store(name string, arr array.NumericArray, mask bool, realize *bool) error {
	data, err := s.mode.Prepare(arr, realize)
	if err != nil {
		return err
	}
	dims, err := s.reg.DimsOf(name)
	if err != nil {
		return err
	}
	s.ds.set(name, &variable{dims: dims, data: data, mask: mask})
	if p, err := s.reg.Parameter(name); err == nil && p != nil {
		s.ds.addMissingAttrs(name, p.Metadata())
	}
	return nil
}

func (s *Skeleton) setMask(m schema.Mask, value any, a access) error {
	target := m
	if !m.Primary {
		d, ok := s.reg.Lookup(m.Of)
		if !ok {
			return &domain.UnknownNameError{Name: m.Of, What: "mask"}
		}
		target = d.(schema.Mask)
	}
	arr, err := s.align(m.ID, value, a.dims)
	if err != nil {
		return err
	}
	arr = array.AsMask(arr)
	if !m.Primary {
		arr = array.Not(arr)
	}
	return s.store(target.ID, arr, true, a.realize)
}

// setMagnitude keeps the current direction and rescales the components.
func (s *Skeleton) setMagnitude(m schema.Magnitude, value any, a access) error {
	mag, err := s.align(m.ID, value, a.dims)
	if err != nil {
		return err
	}
	x, y, _, err := s.components(m.X, m.Y, true)
	if err != nil {
		return err
	}
	dir, err := y.Zip(x, math.Atan2)
	if err != nil {
		return err
	}
	return s.decompose(m.X, m.Y, mag, dir, a.realize)
}

// setDirection keeps the current magnitude and rotates the components.
func (s *Skeleton) setDirection(d schema.Direction, value any, a access) error {
	in := d.Convention
	if a.convention.Directional() {
		in = a.convention
	}
	dir, err := s.align(d.ID, value, a.dims)
	if err != nil {
		return err
	}
	dir = dir.Apply(func(v float64) float64 { return domain.ToMath(v, in) })
	x, y, _, err := s.components(d.X, d.Y, true)
	if err != nil {
		return err
	}
	mag, err := x.Zip(y, math.Hypot)
	if err != nil {
		return err
	}
	return s.decompose(d.X, d.Y, mag, dir, a.realize)
}

// decompose writes x = mag·cos(dir) and y = mag·sin(dir), dir in radians.
func (s *Skeleton) decompose(xName, yName string, mag, dir array.NumericArray, realize *bool) error {
	x, err := mag.Zip(dir, func(m, d float64) float64 { return m * math.Cos(d) })
	if err != nil {
		return err
	}
	y, err := mag.Zip(dir, func(m, d float64) float64 { return m * math.Sin(d) })
	if err != nil {
		return err
	}
	if err := s.storeField(xName, x, realize); err != nil {
		return err
	}
	return s.storeField(yName, y, realize)
}

// Insert writes one slice of a stored field: the values at index of
// coordinate coord. The field is default-filled first if unset.
func (s *Skeleton) Insert(name, coord string, index int, value any) error {
	d, ok := s.reg.Lookup(name)
	if !ok {
		return &domain.UnknownNameError{Name: name}
	}
	f, ok := d.(schema.Field)
	if !ok || s.reg.IsPositionField(name) {
		return fmt.Errorf("can only insert into data fields, %q is a %s", name, d.Kind())
	}
	target, err := s.target(name)
	if err != nil {
		return err
	}
	axis := -1
	for i, dim := range target.Dims {
		if dim == coord {
			axis = i
		}
	}
	if axis < 0 {
		return &domain.UnknownNameError{Name: coord, What: "dimension of " + name}
	}
	if index < 0 || index >= target.Shape[axis] {
		return fmt.Errorf("index %d out of range for %s of length %d", index, coord, target.Shape[axis])
	}

	current, err := s.getField(f, access{allowDefault: true})
	if err != nil {
		return err
	}
	full, err := current.Realize()
	if err != nil {
		return err
	}
	full = full.Copy()

	sliceDims := append(append([]string(nil), target.Dims[:axis]...), target.Dims[axis+1:]...)
	sliceShape := append(append([]int(nil), target.Shape[:axis]...), target.Shape[axis+1:]...)
	arr, err := array.From(value)
	if err != nil {
		return err
	}
	arr, err = reshape.Align(arr, reshape.Target{Name: name, Dims: sliceDims, Shape: sliceShape}, nil)
	if err != nil {
		return err
	}
	vals, err := array.Values(arr)
	if err != nil {
		return err
	}

	// Row-major strides of the full array.
	outer, inner := 1, 1
	for _, n := range target.Shape[:axis] {
		outer *= n
	}
	for _, n := range target.Shape[axis+1:] {
		inner *= n
	}
	dst := full.Values()
	for o := 0; o < outer; o++ {
		for i := 0; i < inner; i++ {
			dst[(o*target.Shape[axis]+index)*inner+i] = vals[o*inner+i]
		}
	}
	return s.storeField(name, full, nil)
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
