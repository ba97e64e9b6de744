// Package decode builds containers from named-array collections such as the
// contents of a NetCDF file.
package decode

import (
	"fmt"
	"sort"
)

// Variable is one named array. Values are row-major over Dims.
type Variable struct {
	Dims   []string
	Values []float64
	Attrs  map[string]string
}

// Dataset is a collection of named arrays with their dimension lengths and
// global attributes.
type Dataset struct {
	DimLens map[string]int
	Vars    map[string]*Variable
	Attrs   map[string]string
}

// NewDataset returns an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{
		DimLens: make(map[string]int),
		Vars:    make(map[string]*Variable),
		Attrs:   make(map[string]string),
	}
}

// Add stores a variable, recording the lengths of its dimensions. The number
// of values must match the dimension lengths.
func (d *Dataset) Add(name string, dims []string, shape []int, values []float64, attrs map[string]string) error {
	if len(dims) != len(shape) {
		return fmt.Errorf("variable %s has %d dimensions but shape %v", name, len(dims), shape)
	}
	n := 1
	for i, dim := range dims {
		if l, ok := d.DimLens[dim]; ok && l != shape[i] {
			return fmt.Errorf("dimension %s of %s has length %d, already defined with length %d", dim, name, shape[i], l)
		}
		n *= shape[i]
	}
	if n != len(values) {
		return fmt.Errorf("variable %s has %d values, shape %v needs %d", name, len(values), shape, n)
	}
	for i, dim := range dims {
		d.DimLens[dim] = shape[i]
	}
	if attrs == nil {
		attrs = map[string]string{}
	}
	d.Vars[name] = &Variable{Dims: append([]string(nil), dims...), Values: values, Attrs: attrs}
	return nil
}

// Shape returns the lengths of the dimensions of a variable.
func (d *Dataset) Shape(name string) []int {
	v, ok := d.Vars[name]
	if !ok {
		return nil
	}
	shape := make([]int, len(v.Dims))
	for i, dim := range v.Dims {
		shape[i] = d.DimLens[dim]
	}
	return shape
}

// Names returns the variable names, sorted.
func (d *Dataset) Names() []string {
	names := make([]string, 0, len(d.Vars))
	for k := range d.Vars {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
