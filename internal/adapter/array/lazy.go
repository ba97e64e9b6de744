package array

import (
	"fmt"
	"sync"

	"github.com/ctessum/sparse"
)

// LazyArray is a deferred computation. Each operation wraps the previous
// NextData in a new one; nothing runs until Realize. The first Realize
// result is kept, so arrays that share an upstream array run it once.
type LazyArray struct {
	shape []int
	next  NextData

	once sync.Once
	out  *Eager
	err  error
}

var _ NumericArray = (*LazyArray)(nil)

// NewLazy creates a deferred array of a known shape.
func NewLazy(shape []int, next NextData) *LazyArray {
	return &LazyArray{shape: append([]int(nil), shape...), next: next}
}

// Defer wraps any array as a lazy one. A lazy array is returned as is.
func Defer(a NumericArray) *LazyArray {
	if l, ok := a.(*LazyArray); ok {
		return l
	}
	shape := a.Shape()
	return NewLazy(shape, func() (*sparse.DenseArray, error) {
		e, err := a.Realize()
		if err != nil {
			return nil, err
		}
		return e.Dense(), nil
	})
}

// Shape returns a copy of the array dimensions.
func (l *LazyArray) Shape() []int { return append([]int(nil), l.shape...) }

// Size is the number of elements.
func (l *LazyArray) Size() int { return sizeOf(l.shape) }

// Lazy is always true.
func (l *LazyArray) Lazy() bool { return true }

// Realize runs the deferred computation once and returns its result on
// every call.
func (l *LazyArray) Realize() (*Eager, error) {
	l.once.Do(func() {
		l.out, l.err = l.realize()
		l.next = nil
	})
	return l.out, l.err
}

func (l *LazyArray) realize() (*Eager, error) {
	d, err := l.next()
	if err != nil {
		return nil, fmt.Errorf("failed to realize array: %w", err)
	}
	if len(d.Elements) < l.Size() {
		return nil, fmt.Errorf("deferred computation produced %d values, expected %d", len(d.Elements), l.Size())
	}
	return NewEager(l.shape, d.Elements[:l.Size()])
}

// conv wraps the computation with a transform of the realized values.
func (l *LazyArray) conv(shape []int, f func(in *Eager) (*Eager, error)) *LazyArray {
	return NewLazy(shape, func() (*sparse.DenseArray, error) {
		in, err := l.Realize()
		if err != nil {
			return nil, err
		}
		out, err := f(in)
		if err != nil {
			return nil, err
		}
		return out.Dense(), nil
	})
}

// Apply defers mapping f over every element.
func (l *LazyArray) Apply(f func(float64) float64) NumericArray {
	return l.conv(l.shape, func(in *Eager) (*Eager, error) {
		return in.Apply(f).(*Eager), nil
	})
}

// Zip defers combining two arrays of equal shape.
func (l *LazyArray) Zip(other NumericArray, f func(a, b float64) float64) (NumericArray, error) {
	if !sameShape(l.shape, other.Shape()) {
		return nil, fmt.Errorf("can't combine shapes %v and %v", l.shape, other.Shape())
	}
	return l.conv(l.shape, func(in *Eager) (*Eager, error) {
		o, err := other.Realize()
		if err != nil {
			return nil, err
		}
		out, err := in.Zip(o, f)
		if err != nil {
			return nil, err
		}
		return out.(*Eager), nil
	}), nil
}

// Transpose defers an axis permutation.
func (l *LazyArray) Transpose(perm []int) (NumericArray, error) {
	if err := checkPerm(l.shape, perm); err != nil {
		return nil, err
	}
	shape := make([]int, len(perm))
	for i, p := range perm {
		shape[i] = l.shape[p]
	}
	return l.conv(shape, func(in *Eager) (*Eager, error) {
		out, err := in.Transpose(perm)
		if err != nil {
			return nil, err
		}
		return out.(*Eager), nil
	}), nil
}

// Reshape defers a reinterpretation of the shape.
func (l *LazyArray) Reshape(shape []int) (NumericArray, error) {
	if sizeOf(shape) != l.Size() {
		return nil, fmt.Errorf("can't reshape %v to %v", l.shape, shape)
	}
	return l.conv(shape, func(in *Eager) (*Eager, error) {
		out, err := in.Reshape(shape)
		if err != nil {
			return nil, err
		}
		return out.(*Eager), nil
	}), nil
}

// Broadcast defers repeating a single element to fill shape.
func (l *LazyArray) Broadcast(shape []int) (NumericArray, error) {
	if sameShape(l.shape, shape) {
		return l, nil
	}
	if l.Size() != 1 {
		return nil, fmt.Errorf("can't broadcast %v to %v", l.shape, shape)
	}
	return l.conv(shape, func(in *Eager) (*Eager, error) {
		return Full(shape, in.Values()[0]), nil
	}), nil
}
