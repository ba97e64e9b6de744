// Package reshape aligns caller-supplied arrays to the canonical shape of a
// container field.
package reshape

import (
	"go.ngs.io/geo-skeletons/internal/adapter/array"
	"go.ngs.io/geo-skeletons/internal/domain"
)

// Target describes the canonical layout of a field.
type Target struct {
	Name  string   // Field name, used in errors.
	Dims  []string // Coordinate names in canonical order.
	Shape []int    // Length of each dimension.
}

// Trivial reports whether a target dimension has length 1.
func (t Target) Trivial(dim string) bool {
	for i, d := range t.Dims {
		if d == dim {
			return t.Shape[i] == 1
		}
	}
	return false
}

func (t Target) length(dim string) (int, bool) {
	for i, d := range t.Dims {
		if d == dim {
			return t.Shape[i], true
		}
	}
	return 0, false
}

func (t Target) size() int {
	n := 1
	for _, s := range t.Shape {
		n *= s
	}
	return n
}

// Align returns arr reshaped to t.Shape.
//
// explicitDims names the axes of arr in order. Listed dimensions that are
// trivial or unknown to the target are dropped, and the rest are permuted into
// canonical order. Without explicit dims (or if they don't resolve the shape)
// length-1 axes are squeezed out and re-expanded, and a pure 2-D transpose is
// tried. Size-1 input is broadcast.
func Align(arr array.NumericArray, t Target, explicitDims []string) (array.NumericArray, error) {
	if arr.Size() == 1 && t.size() != 1 {
		return arr.Broadcast(t.Shape)
	}

	var err error
	if explicitDims != nil {
		arr, err = alignExplicit(arr, t, explicitDims)
		if err != nil {
			return nil, err
		}
	}
	if equal(arr.Shape(), t.Shape) {
		return arr, nil
	}

	original := arr.Shape()
	got := squeeze(original)
	want := squeeze(t.Shape)
	switch {
	case equal(got, want):
		return arr.Reshape(t.Shape)
	case len(got) == 2 && len(want) == 2 && got[0] == want[1] && got[1] == want[0]:
		flat, err := arr.Reshape(got)
		if err != nil {
			return nil, err
		}
		tr, err := flat.Transpose([]int{1, 0})
		if err != nil {
			return nil, err
		}
		return tr.Reshape(t.Shape)
	}
	return nil, &domain.IrreconcilableShapeError{Name: t.Name, Original: original, Expected: t.Shape}
}

// alignExplicit squeezes arr, keeps the listed dims that are non-trivial in
// the target, and permutes them into canonical order before re-expanding.
func alignExplicit(arr array.NumericArray, t Target, dims []string) (array.NumericArray, error) {
	original := arr.Shape()
	if len(dims) != len(original) {
		return nil, &domain.IrreconcilableShapeError{Name: t.Name, Original: original, Expected: t.Shape}
	}
	var kept []string
	var keptShape []int
	for i, d := range dims {
		if original[i] == 1 {
			continue
		}
		if n, ok := t.length(d); !ok || n != original[i] {
			return nil, &domain.IrreconcilableShapeError{Name: t.Name, Original: original, Expected: t.Shape}
		}
		kept = append(kept, d)
		keptShape = append(keptShape, original[i])
	}

	var order []string
	for _, d := range t.Dims {
		if contains(kept, d) {
			order = append(order, d)
		}
	}
	if len(order) != len(kept) {
		// A dimension was listed twice.
		return nil, &domain.IrreconcilableShapeError{Name: t.Name, Original: original, Expected: t.Shape}
	}

	squeezed, err := arr.Reshape(keptShape)
	if err != nil {
		return nil, err
	}
	perm := make([]int, len(order))
	identity := true
	for i, d := range order {
		perm[i] = indexOf(kept, d)
		if perm[i] != i {
			identity = false
		}
	}
	if !identity {
		squeezed, err = squeezed.Transpose(perm)
		if err != nil {
			return nil, err
		}
	}
	if squeezed.Size() != t.size() {
		return nil, &domain.IrreconcilableShapeError{Name: t.Name, Original: original, Expected: t.Shape}
	}
	if identity && equal(original, t.Shape) {
		return arr, nil
	}
	return squeezed.Reshape(t.Shape)
}

// Squeeze removes every length-1 axis of arr.
func Squeeze(arr array.NumericArray) (array.NumericArray, error) {
	shape := arr.Shape()
	s := squeeze(shape)
	if len(s) == len(shape) {
		return arr, nil
	}
	return arr.Reshape(s)
}

func squeeze(shape []int) []int {
	out := make([]int, 0, len(shape))
	for _, s := range shape {
		if s != 1 {
			out = append(out, s)
		}
	}
	return out
}

func equal(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func contains(list []string, s string) bool {
	return indexOf(list, s) >= 0
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
