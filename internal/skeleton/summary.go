package skeleton

import (
	"fmt"
	"strings"

	"go.ngs.io/geo-skeletons/internal/schema"
)

// Iterate calls fn for every combination of indices of the given
// coordinates, last coordinate fastest. Without coordinates the grid group is
// used. Iteration stops at the first error.
func (s *Skeleton) Iterate(coords []string, fn func(index map[string]int) error) error {
	if coords == nil {
		coords = s.reg.Coordinates(schema.GroupGrid)
	}
	lengths := s.ds.lengths()
	shape, err := schema.Shape(coords, lengths)
	if err != nil {
		return err
	}
	if schema.Size(shape) == 0 {
		return nil
	}
	idx := make([]int, len(coords))
	for {
		pos := make(map[string]int, len(coords))
		for i, c := range coords {
			pos[c] = idx[i]
		}
		if err := fn(pos); err != nil {
			return err
		}
		i := len(idx) - 1
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < shape[i] {
				break
			}
			idx[i] = 0
		}
		if i < 0 {
			return nil
		}
	}
}

// Summary describes the coordinate groups, stored variables, empty fields and
// derived fields of the container.
func (s *Skeleton) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "<%s (%s)>\n", s.name, s.reg.Topology())
	b.WriteString(banner(" Coordinate groups "))
	for _, g := range []struct {
		label string
		group schema.Group
	}{
		{"Spatial:", schema.GroupSpatial},
		{"Grid:", schema.GroupGrid},
		{"Gridpoint:", schema.GroupGridpoint},
		{"All:", schema.GroupAll},
	} {
		fmt.Fprintf(&b, "%-12s%s\n", g.label, tuple(s.reg.Coordinates(g.group)))
	}

	b.WriteString(banner(" Data "))
	lengths := s.ds.lengths()
	for _, c := range s.reg.Coordinates(schema.GroupAll) {
		fmt.Fprintf(&b, "  * %-10s(%d)\n", c, lengths[c])
	}
	for _, name := range s.ds.varNames() {
		v := s.ds.get(name)
		kind := "float64"
		if v.mask {
			kind = "int (mask)"
		}
		lazy := ""
		if v.data.Lazy() {
			lazy = " lazy"
		}
		fmt.Fprintf(&b, "    %-10s%s %v %s%s\n", name, tuple(v.dims), v.data.Shape(), kind, lazy)
	}
	fmt.Fprintf(&b, "  projection: %s\n", s.proj)

	emptyFields, emptyMasks := s.EmptyFields(), s.EmptyMasks()
	if len(emptyFields) > 0 || len(emptyMasks) > 0 {
		b.WriteString(banner(" Empty data "))
	}
	if len(emptyFields) > 0 {
		b.WriteString("Empty variables:\n")
		for _, name := range emptyFields {
			def, _ := s.reg.DefaultValue(name)
			fmt.Fprintf(&b, "    %-12s%s:  %g%s\n", name, s.groupTuple(name), def, paramSuffix(s, name))
		}
	}
	if len(emptyMasks) > 0 {
		b.WriteString("Empty masks:\n")
		for _, name := range emptyMasks {
			def, _ := s.reg.DefaultValue(name)
			fmt.Fprintf(&b, "    %-12s%s:  %t\n", name, s.groupTuple(name), def != 0)
		}
	}

	mags, dirs := s.reg.Magnitudes(), s.reg.Directions()
	if len(mags) > 0 || len(dirs) > 0 {
		b.WriteString(banner(" Magnitudes and directions "))
	}
	for _, name := range mags {
		d, _ := s.reg.Lookup(name)
		m := d.(schema.Magnitude)
		fmt.Fprintf(&b, "  %s: magnitude of (%s,%s)%s\n", name, m.X, m.Y, paramSuffix(s, name))
	}
	for _, name := range dirs {
		d, _ := s.reg.Lookup(name)
		dir := d.(schema.Direction)
		fmt.Fprintf(&b, "  %s: direction of (%s,%s) %s%s\n", name, dir.X, dir.Y, dir.Convention, paramSuffix(s, name))
	}
	b.WriteString(strings.Repeat("-", 80))
	return b.String()
}

func (s *Skeleton) groupTuple(name string) string {
	dims, err := s.reg.DimsOf(name)
	if err != nil {
		return ""
	}
	return tuple(dims)
}

func paramSuffix(s *Skeleton, name string) string {
	p, err := s.reg.Parameter(name)
	if err != nil || p == nil {
		return ""
	}
	return fmt.Sprintf(" [%s] %s", p.Unit, p.StandardName)
}

func banner(title string) string {
	pad := 80 - len(title)
	left := pad / 2
	return strings.Repeat("-", left) + title + strings.Repeat("-", pad-left) + "\n"
}

func tuple(names []string) string {
	if len(names) == 0 {
		return "*empty*"
	}
	return "(" + strings.Join(names, ", ") + ")"
}
