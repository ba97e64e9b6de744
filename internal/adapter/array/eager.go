package array

import (
	"fmt"

	"github.com/ctessum/sparse"
)

// Eager is a materialized array backed by a dense store.
type Eager struct {
	shape []int
	data  *sparse.DenseArray
}

var _ NumericArray = (*Eager)(nil)

// NewEager copies values into a new array of the given shape.
func NewEager(shape []int, values []float64) (*Eager, error) {
	if len(values) != sizeOf(shape) {
		return nil, fmt.Errorf("%d values can't fill shape %v", len(values), shape)
	}
	e := &Eager{shape: append([]int(nil), shape...), data: newDense(shape)}
	copy(e.data.Elements, values)
	return e, nil
}

// Zeros returns a zero-filled array.
func Zeros(shape ...int) *Eager {
	return &Eager{shape: append([]int(nil), shape...), data: newDense(shape)}
}

// Full returns an array filled with v.
func Full(shape []int, v float64) *Eager {
	e := Zeros(shape...)
	for i := range e.data.Elements {
		e.data.Elements[i] = v
	}
	return e
}

// FromDense wraps an existing dense array without copying.
func FromDense(d *sparse.DenseArray) *Eager {
	return &Eager{shape: append([]int(nil), d.Shape...), data: d}
}

// Shape returns a copy of the array dimensions.
func (e *Eager) Shape() []int { return append([]int(nil), e.shape...) }

// Size is the number of elements.
func (e *Eager) Size() int { return sizeOf(e.shape) }

// Lazy is always false.
func (e *Eager) Lazy() bool { return false }

// Realize returns e.
func (e *Eager) Realize() (*Eager, error) { return e, nil }

// Dense exposes the backing store.
func (e *Eager) Dense() *sparse.DenseArray { return e.data }

// Values returns the row-major elements. The slice aliases the array.
func (e *Eager) Values() []float64 {
	return e.data.Elements[:e.Size()]
}

// At returns the element at a multi-dimensional index.
func (e *Eager) At(index ...int) float64 {
	if len(e.shape) == 0 {
		return e.data.Elements[0]
	}
	return e.data.Get(index...)
}

// SetAt sets the element at a multi-dimensional index.
func (e *Eager) SetAt(v float64, index ...int) {
	if len(e.shape) == 0 {
		e.data.Elements[0] = v
		return
	}
	e.data.Set(v, index...)
}

// Copy returns a deep copy.
func (e *Eager) Copy() *Eager {
	c := Zeros(e.shape...)
	copy(c.data.Elements, e.data.Elements)
	return c
}

// Apply maps f over every element into a new array.
func (e *Eager) Apply(f func(float64) float64) NumericArray {
	out := Zeros(e.shape...)
	for i, v := range e.Values() {
		out.data.Elements[i] = f(v)
	}
	return out
}

// Zip combines two arrays of equal shape elementwise. A lazy operand makes the result lazy.
func (e *Eager) Zip(other NumericArray, f func(a, b float64) float64) (NumericArray, error) {
	if other.Lazy() {
		return Defer(e).Zip(other, f)
	}
	if !sameShape(e.shape, other.Shape()) {
		return nil, fmt.Errorf("can't combine shapes %v and %v", e.shape, other.Shape())
	}
	o, err := other.Realize()
	if err != nil {
		return nil, err
	}
	out := Zeros(e.shape...)
	ov := o.Values()
	for i, v := range e.Values() {
		out.data.Elements[i] = f(v, ov[i])
	}
	return out, nil
}

// Transpose permutes the axes: output axis i is input axis perm[i].
func (e *Eager) Transpose(perm []int) (NumericArray, error) {
	if err := checkPerm(e.shape, perm); err != nil {
		return nil, err
	}
	shape, vals := transposeDense(e.Values(), e.shape, perm)
	return NewEager(shape, vals)
}

// Reshape reinterprets the elements with a new shape of the same size.
func (e *Eager) Reshape(shape []int) (NumericArray, error) {
	if sizeOf(shape) != e.Size() {
		return nil, fmt.Errorf("can't reshape %v to %v", e.shape, shape)
	}
	return NewEager(shape, e.Values())
}

// Broadcast repeats a single element to fill shape.
func (e *Eager) Broadcast(shape []int) (NumericArray, error) {
	if sameShape(e.shape, shape) {
		return e, nil
	}
	if e.Size() == 1 {
		return Full(shape, e.Values()[0]), nil
	}
	return nil, fmt.Errorf("can't broadcast %v to %v", e.shape, shape)
}
