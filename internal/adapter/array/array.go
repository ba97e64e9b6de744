// Package array provides the numeric array representation used by containers:
// eager arrays backed by a dense store and lazy arrays that defer their
// computation until realized.
package array

import (
	"fmt"
	"math"

	"github.com/ctessum/sparse"
)

// NextData produces the dense data of a deferred computation.
type NextData func() (*sparse.DenseArray, error)

// NumericArray is an n-dimensional float64 array in row-major order.
// Operations on a lazy array build up a deferred computation; operations on
// an eager array execute immediately.
type NumericArray interface {
	Shape() []int
	Size() int
	Lazy() bool
	// Realize evaluates any pending computation.
	Realize() (*Eager, error)
	Apply(f func(float64) float64) NumericArray
	Zip(other NumericArray, f func(a, b float64) float64) (NumericArray, error)
	Transpose(perm []int) (NumericArray, error)
	Reshape(shape []int) (NumericArray, error)
	// Broadcast repeats a size-1 array to shape; other arrays must already match.
	Broadcast(shape []int) (NumericArray, error)
}

// sizeOf is the product of a shape. The empty shape has size 1.
func sizeOf(shape []int) int {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return n
}

func sameShape(a, b []int) bool {
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

// newDense allocates a dense array; rank-0 shapes get one element.
func newDense(shape []int) *sparse.DenseArray {
	if len(shape) == 0 {
		return sparse.ZerosDense(1)
	}
	return sparse.ZerosDense(append([]int(nil), shape...)...)
}

func checkPerm(shape, perm []int) error {
	if len(perm) != len(shape) {
		return fmt.Errorf("permutation %v doesn't match rank %d", perm, len(shape))
	}
	seen := make([]bool, len(perm))
	for _, p := range perm {
		if p < 0 || p >= len(perm) || seen[p] {
			return fmt.Errorf("invalid permutation %v", perm)
		}
		seen[p] = true
	}
	return nil
}

// transposeDense permutes the axes of src: output axis i is input axis perm[i].
func transposeDense(src []float64, shape, perm []int) ([]int, []float64) {
	rank := len(shape)
	outShape := make([]int, rank)
	for i, p := range perm {
		outShape[i] = shape[p]
	}
	inStrides := make([]int, rank)
	stride := 1
	for i := rank - 1; i >= 0; i-- {
		inStrides[i] = stride
		stride *= shape[i]
	}
	out := make([]float64, len(src))
	idx := make([]int, rank)
	for n := range out {
		off := 0
		for i := 0; i < rank; i++ {
			off += idx[i] * inStrides[perm[i]]
		}
		out[n] = src[off]
		for i := rank - 1; i >= 0; i-- {
			idx[i]++
			if idx[i] < outShape[i] {
				break
			}
			idx[i] = 0
		}
	}
	return outShape, out
}

// From converts common Go values to an eager array. Accepted: float64, int,
// bool, []float64, []int, []bool, [][]float64, [][]bool, *sparse.DenseArray
// and NumericArray (returned as is).
func From(value any) (NumericArray, error) {
	switch v := value.(type) {
	case NumericArray:
		return v, nil
	case *sparse.DenseArray:
		return FromDense(v), nil
	case float64:
		return NewEager([]int{1}, []float64{v})
	case float32:
		return NewEager([]int{1}, []float64{float64(v)})
	case int:
		return NewEager([]int{1}, []float64{float64(v)})
	case bool:
		return NewEager([]int{1}, []float64{boolToFloat(v)})
	case []float64:
		return NewEager([]int{len(v)}, v)
	case []float32:
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return NewEager([]int{len(v)}, out)
	case []int:
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return NewEager([]int{len(v)}, out)
	case []bool:
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = boolToFloat(x)
		}
		return NewEager([]int{len(v)}, out)
	case [][]float64:
		return from2D(len(v), func(i int) []float64 { return v[i] })
	case [][]bool:
		rows := make([][]float64, len(v))
		for i, row := range v {
			rows[i] = make([]float64, len(row))
			for j, x := range row {
				rows[i][j] = boolToFloat(x)
			}
		}
		return from2D(len(rows), func(i int) []float64 { return rows[i] })
	case nil:
		return nil, fmt.Errorf("no data given")
	default:
		return nil, fmt.Errorf("unsupported array value of type %T", value)
	}
}

func from2D(nRows int, row func(int) []float64) (NumericArray, error) {
	if nRows == 0 {
		return NewEager([]int{0, 0}, nil)
	}
	nCols := len(row(0))
	flat := make([]float64, 0, nRows*nCols)
	for i := 0; i < nRows; i++ {
		r := row(i)
		if len(r) != nCols {
			return nil, fmt.Errorf("row %d has %d values, expected %d", i, len(r), nCols)
		}
		flat = append(flat, r...)
	}
	return NewEager([]int{nRows, nCols}, flat)
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Values realizes a and returns its row-major elements.
func Values(a NumericArray) ([]float64, error) {
	e, err := a.Realize()
	if err != nil {
		return nil, err
	}
	return e.Values(), nil
}

// Bools realizes a and maps non-zero values to true.
func Bools(a NumericArray) ([]bool, error) {
	vals, err := Values(a)
	if err != nil {
		return nil, err
	}
	out := make([]bool, len(vals))
	for i, v := range vals {
		out[i] = v != 0 && !math.IsNaN(v)
	}
	return out, nil
}

// AsMask maps values to the 0/1 integer encoding of a boolean.
func AsMask(a NumericArray) NumericArray {
	return a.Apply(func(v float64) float64 {
		if v != 0 && !math.IsNaN(v) {
			return 1
		}
		return 0
	})
}

// Not negates a 0/1 mask.
func Not(a NumericArray) NumericArray {
	return a.Apply(func(v float64) float64 {
		if v != 0 && !math.IsNaN(v) {
			return 0
		}
		return 1
	})
}
