package schema

import "go.ngs.io/geo-skeletons/internal/domain"

// ShapeOf returns the array shape of a coordinate group given the current
// coordinate lengths, in canonical order.
func (r *Registry) ShapeOf(g Group, lengths map[string]int) ([]int, error) {
	return Shape(r.Coordinates(g), lengths)
}

// DimsOf returns the canonical dimension names of a field, mask or derived field.
func (r *Registry) DimsOf(name string) ([]string, error) {
	g, err := r.CoordinateGroup(name)
	if err != nil {
		return nil, err
	}
	return r.Coordinates(g), nil
}

// Shape looks up the length of each dimension.
func Shape(dims []string, lengths map[string]int) ([]int, error) {
	shape := make([]int, len(dims))
	for i, d := range dims {
		n, ok := lengths[d]
		if !ok {
			return nil, &domain.MissingCoordinateError{Name: d}
		}
		shape[i] = n
	}
	return shape, nil
}

// Size is the product of a shape. The empty shape has size 1.
func Size(shape []int) int {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return n
}
