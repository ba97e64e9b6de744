package decode

import (
	"errors"
	"fmt"
	"maps"
	"strings"

	"go.ngs.io/geo-skeletons/internal/schema"
	"go.ngs.io/geo-skeletons/internal/skeleton"
)

// componentPair is a pair of stored components with the names of the
// magnitude and direction derived from them.
type componentPair struct {
	X, Y, Magnitude, Direction string
}

var componentPairs = []componentPair{
	{X: "u", Y: "v", Magnitude: "wind", Direction: "winddir"},
}

// InferClass builds a class describing ds. Spatial coordinates sharing one
// dimension make a point class, otherwise a grid class. One-dimensional
// variables named after their dimension become coordinates, and every other
// variable spanning the spatial dimensions (and either all or none of the
// other coordinates) becomes a field, or a mask when its name ends in
// "_mask". Known names are taken from the alias table. Variables that fit
// none of these are left out.
//
// The returned options map every registered name to its dataset variable.
func InferClass(name string, ds *Dataset, opts Options) (*skeleton.Class, Options, error) {
	r := newResolver(ds, opts)
	mapping := map[string]string{}

	var spatialDims []string
	used := map[string]bool{}
	for _, pair := range [][2]string{{"lon", "lat"}, {"x", "y"}} {
		a, okA := r.find(pair[0], parameterFor(pair[0]))
		b, okB := r.find(pair[1], parameterFor(pair[1]))
		if !okA || !okB {
			continue
		}
		va, vb := ds.Vars[a], ds.Vars[b]
		if len(va.Dims) != 1 || len(vb.Dims) != 1 {
			return nil, opts, fmt.Errorf("%s and %s must be one-dimensional", a, b)
		}
		spatialDims = []string{va.Dims[0], vb.Dims[0]}
		used[a], used[b] = true, true
		break
	}
	if spatialDims == nil {
		return nil, opts, errors.New("can't find an x-y or lon-lat pair in the dataset")
	}

	c := skeleton.NewGridClass(name)
	if spatialDims[0] == spatialDims[1] {
		c = skeleton.NewPointClass(name)
		spatialDims = spatialDims[:1]
	}
	isSpatial := func(d string) bool {
		for _, s := range spatialDims {
			if d == s {
				return true
			}
		}
		return false
	}

	var err error
	coordDims := map[string]string{}
	for _, v := range ds.Names() {
		dims := ds.Vars[v].Dims
		if used[v] || len(dims) != 1 || dims[0] != v {
			continue
		}
		if isSpatial(v) {
			used[v] = true
			continue
		}
		id := r.canonical(v, c)
		if id == "time" {
			c, err = c.AddTime(id, schema.TagGrid)
		} else {
			c, err = c.AddCoordinate(schema.Coordinate{ID: id, Tag: schema.TagGrid})
		}
		if err != nil {
			return nil, opts, fmt.Errorf("failed to add coordinate %s: %w", v, err)
		}
		coordDims[v] = id
		mapping[id] = v
		used[v] = true
	}

	for _, v := range ds.Names() {
		if used[v] {
			continue
		}
		group, ok := r.groupOf(ds.Vars[v].Dims, spatialDims, coordDims)
		if !ok {
			continue
		}
		if strings.HasSuffix(v, "_mask") {
			if c, err = c.AddMask(schema.Mask{ID: v, Group: group}); err != nil {
				return nil, opts, fmt.Errorf("failed to add mask %s: %w", v, err)
			}
			mapping[v] = v
			continue
		}
		id := r.canonical(v, c)
		if c, err = c.AddField(schema.Field{ID: id, Group: group}); err != nil {
			return nil, opts, fmt.Errorf("failed to add field %s: %w", v, err)
		}
		mapping[id] = v
	}

	reg := c.Registry()
	for _, p := range componentPairs {
		if _, ok := mapping[p.X]; !ok || reg.Has(p.Magnitude) || reg.Has(p.Direction) {
			continue
		}
		if _, ok := mapping[p.Y]; !ok {
			continue
		}
		c, err = c.AddMagnitude(schema.Magnitude{ID: p.Magnitude, X: p.X, Y: p.Y},
			&schema.Direction{ID: p.Direction})
		if err != nil {
			return nil, opts, fmt.Errorf("failed to add %s: %w", p.Magnitude, err)
		}
	}

	out := opts
	out.Mapping = maps.Clone(opts.Mapping)
	if out.Mapping == nil {
		out.Mapping = map[string]string{}
	}
	for k, v := range mapping {
		if _, ok := out.Mapping[k]; !ok {
			out.Mapping[k] = v
		}
	}
	return c, out, nil
}

// canonical returns the alias-table name of v, or v itself when that name
// is unknown or already taken in c.
func (r *resolver) canonical(v string, c *skeleton.Class) string {
	if id, ok := r.aliases.Resolve(v); ok && !c.Registry().Has(id) {
		return id
	}
	return v
}

// groupOf picks the field group spanned by dims. Dimensions of length one
// are ignored.
func (r *resolver) groupOf(dims, spatialDims []string, coordDims map[string]string) (schema.Group, bool) {
	spatial, other := 0, 0
	for _, d := range dims {
		switch {
		case d == spatialDims[0] || d == spatialDims[len(spatialDims)-1]:
			spatial++
		case coordDims[d] != "":
			other++
		case r.ds.DimLens[d] <= 1:
		default:
			return "", false
		}
	}
	if spatial != len(spatialDims) {
		return "", false
	}
	switch other {
	case len(coordDims):
		return schema.GroupAll, true
	case 0:
		return schema.GroupSpatial, true
	}
	return "", false
}
