package skeleton

import (
	"slices"

	"go.ngs.io/geo-skeletons/internal/adapter/array"
	"go.ngs.io/geo-skeletons/internal/domain"
)

// Variable describes one stored array.
type Variable struct {
	Name  string
	Dims  []string
	Shape []int
	Mask  bool
}

// Variables lists the stored arrays, sorted by name. Point positions are
// included; derived fields and opposite masks are not.
func (s *Skeleton) Variables() []Variable {
	names := s.ds.varNames()
	out := make([]Variable, 0, len(names))
	for _, name := range names {
		v := s.ds.get(name)
		out = append(out, Variable{
			Name:  name,
			Dims:  slices.Clone(v.dims),
			Shape: v.data.Shape(),
			Mask:  v.mask,
		})
	}
	return out
}

// StoredValues returns the stored values of a variable in row-major order.
func (s *Skeleton) StoredValues(name string) ([]float64, error) {
	v := s.ds.get(name)
	if v == nil {
		return nil, &domain.UnknownNameError{Name: name, What: "stored variable"}
	}
	return array.Values(v.data)
}

// CoordinateValues returns a copy of the values of a coordinate.
func (s *Skeleton) CoordinateValues(name string) ([]float64, bool) {
	v, ok := s.ds.coord(name)
	if !ok {
		return nil, false
	}
	return slices.Clone(v), true
}
