package skeleton

import (
	"maps"
	"sort"

	"go.ngs.io/geo-skeletons/internal/adapter/array"
)

// variable is one stored array with its dimension names.
type variable struct {
	dims []string
	data array.NumericArray
	mask bool // stored as 0/1
}

// dataset is the backing named-array collection of a container. Attributes are
// keyed by variable name; the empty key holds the global attributes.
type dataset struct {
	coords map[string][]float64
	vars   map[string]*variable
	attrs  map[string]map[string]string
}

func newDataset() *dataset {
	return &dataset{
		coords: make(map[string][]float64),
		vars:   make(map[string]*variable),
		attrs:  map[string]map[string]string{"": {}},
	}
}

func (d *dataset) lengths() map[string]int {
	out := make(map[string]int, len(d.coords))
	for k, v := range d.coords {
		out[k] = len(v)
	}
	return out
}

func (d *dataset) coord(name string) ([]float64, bool) {
	v, ok := d.coords[name]
	return v, ok
}

func (d *dataset) set(name string, v *variable) {
	d.vars[name] = v
}

func (d *dataset) get(name string) *variable {
	return d.vars[name]
}

// varNames returns the stored variable names, sorted.
func (d *dataset) varNames() []string {
	names := make([]string, 0, len(d.vars))
	for k := range d.vars {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// attr returns a copy of the attributes of name.
func (d *dataset) attr(name string) map[string]string {
	return maps.Clone(d.attrs[name])
}

// setAttrs writes attributes. With merge, existing keys not in md are kept.
func (d *dataset) setAttrs(name string, md map[string]string, merge bool) {
	if !merge || d.attrs[name] == nil {
		d.attrs[name] = make(map[string]string, len(md))
	}
	maps.Copy(d.attrs[name], md)
}

// addMissingAttrs writes only the keys not already present.
func (d *dataset) addMissingAttrs(name string, md map[string]string) {
	if d.attrs[name] == nil {
		d.attrs[name] = make(map[string]string, len(md))
	}
	for k, v := range md {
		if _, ok := d.attrs[name][k]; !ok {
			d.attrs[name][k] = v
		}
	}
}
