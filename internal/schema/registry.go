package schema

import (
	"fmt"

	"go.ngs.io/geo-skeletons/internal/domain"
)

// Topology selects how the spatial coordinates of a container are laid out.
type Topology int

const (
	// TopologyGrid has independent x and y axes; the grid is their outer product.
	TopologyGrid Topology = iota
	// TopologyPoint has a single index axis with x/y (or lon/lat) stored over it.
	TopologyPoint
)

func (t Topology) String() string {
	if t == TopologyPoint {
		return "point"
	}
	return "grid"
}

// IndexCoordinate is the synthetic spatial coordinate of the point topology.
const IndexCoordinate = "index"

// reserved names can never be registered since the topology owns them.
var reserved = map[string]bool{"x": true, "y": true, "lon": true, "lat": true, IndexCoordinate: true, "inds": true}

// Registry tracks the coordinates and fields of a container class.
//
// Registration methods follow append semantics: they return the registry that
// holds the change. A shared (class-level) registry is cloned on its first
// mutation and the clone is returned, so the shared value is never modified.
type Registry struct {
	topology  Topology
	spherical bool
	shared    bool
	order     []string // Registration order of all names.
	entries   map[string]Descriptor
}

// New creates an empty, private registry for a topology. It starts cartesian.
func New(topology Topology) *Registry {
	return &Registry{
		topology: topology,
		entries:  make(map[string]Descriptor),
	}
}

// Topology returns the spatial layout of the registry.
func (r *Registry) Topology() Topology { return r.topology }

// Spherical reports whether the spatial coordinates are lon/lat.
func (r *Registry) Spherical() bool { return r.spherical }

// Shared reports whether the registry is a class-level default.
func (r *Registry) Shared() bool { return r.shared }

// Share marks the registry as a class-level default and returns it.
func (r *Registry) Share() *Registry {
	r.shared = true
	return r
}

// Clone returns a deep, private copy.
func (r *Registry) Clone() *Registry {
	c := &Registry{
		topology:  r.topology,
		spherical: r.spherical,
		order:     append([]string(nil), r.order...),
		entries:   make(map[string]Descriptor, len(r.entries)),
	}
	for k, v := range r.entries {
		c.entries[k] = v
	}
	return c
}

// writable returns r if private, otherwise a private clone.
func (r *Registry) writable() *Registry {
	if r.shared {
		return r.Clone()
	}
	return r
}

// WithSpherical returns a registry whose spatial coordinates are lon/lat (true)
// or x/y (false). The receiver is returned unchanged when it already matches.
func (r *Registry) WithSpherical(spherical bool) *Registry {
	if r.spherical == spherical {
		return r
	}
	c := r.Clone()
	c.spherical = spherical
	return c
}

// SpatialCoordinates returns the spatial coordinate names in canonical order.
func (r *Registry) SpatialCoordinates() []string {
	switch {
	case r.topology == TopologyPoint:
		return []string{IndexCoordinate}
	case r.spherical:
		return []string{"lat", "lon"}
	default:
		return []string{"y", "x"}
	}
}

// PositionFields returns the names of the x/y (or lon/lat) data fields of the
// point topology, or nil for grids.
func (r *Registry) PositionFields() []string {
	if r.topology != TopologyPoint {
		return nil
	}
	if r.spherical {
		return []string{"lon", "lat"}
	}
	return []string{"x", "y"}
}

// IsPositionField reports whether name is a point position field.
func (r *Registry) IsPositionField(name string) bool {
	for _, p := range r.PositionFields() {
		if p == name {
			return true
		}
	}
	return false
}

func (r *Registry) isSpatial(name string) bool {
	for _, s := range r.SpatialCoordinates() {
		if s == name {
			return true
		}
	}
	return false
}

func (r *Registry) checkFree(name string) error {
	if name == "" {
		return fmt.Errorf("name can't be empty")
	}
	if reserved[name] {
		return &domain.NameCollisionError{Name: name, Existing: "spatial coordinate"}
	}
	if d, ok := r.entries[name]; ok {
		return &domain.NameCollisionError{Name: name, Existing: d.Kind().String()}
	}
	return nil
}

func (r *Registry) add(d Descriptor) {
	r.order = append(r.order, d.Name())
	r.entries[d.Name()] = d
}

// RegisterCoordinate adds a non-spatial coordinate. An empty tag means grid.
func (r *Registry) RegisterCoordinate(c Coordinate) (*Registry, error) {
	if err := r.checkFree(c.ID); err != nil {
		return r, err
	}
	switch c.Tag {
	case "":
		c.Tag = TagGrid
	case TagGrid, TagGridpoint:
	default:
		return r, fmt.Errorf("coordinate %q: tag must be grid or gridpoint, got %q", c.ID, c.Tag)
	}
	w := r.writable()
	w.add(c)
	return w, nil
}

// RegisterField adds a stored data field. An empty group means all.
func (r *Registry) RegisterField(f Field) (*Registry, error) {
	if err := r.checkFree(f.ID); err != nil {
		return r, err
	}
	g, err := fieldGroup(f.ID, f.Group)
	if err != nil {
		return r, err
	}
	f.Group = g
	if f.Convention == domain.ConventionNone && f.Param != nil {
		f.Convention = f.Param.Convention
	}
	w := r.writable()
	w.add(f)
	return w, nil
}

// RegisterMask adds a primary mask and, if named, its opposite. Names get the
// "_mask" suffix.
func (r *Registry) RegisterMask(m Mask) (*Registry, error) {
	m.ID = MaskName(m.ID)
	if err := r.checkFree(m.ID); err != nil {
		return r, err
	}
	var opposite string
	if m.Opposite != "" {
		opposite = MaskName(m.Opposite)
		if opposite == m.ID {
			return r, &domain.NameCollisionError{Name: opposite, Existing: "mask"}
		}
		if err := r.checkFree(opposite); err != nil {
			return r, err
		}
	}
	if m.TriggeredBy != "" {
		if _, ok := r.entries[m.TriggeredBy].(Field); !ok {
			return r, &domain.UnknownNameError{Name: m.TriggeredBy, What: "trigger field"}
		}
	}
	if m.Range.Set && !(m.Range.Lo < m.Range.Hi) {
		return r, &domain.InvalidRangeError{Name: m.ID, Lo: m.Range.Lo, Hi: m.Range.Hi}
	}
	g, err := fieldGroup(m.ID, m.Group)
	if err != nil {
		return r, err
	}
	m.Group = g
	m.Primary = true
	m.Of = ""
	m.Opposite = opposite

	w := r.writable()
	w.add(m)
	if opposite != "" {
		w.add(Mask{
			ID:      opposite,
			Param:   m.Param,
			Group:   g,
			Default: !m.Default,
			Of:      m.ID,
		})
	}
	return w, nil
}

// RegisterMagnitude adds a magnitude derived from the stored fields x and y.
func (r *Registry) RegisterMagnitude(m Magnitude) (*Registry, error) {
	if err := r.checkFree(m.ID); err != nil {
		return r, err
	}
	if err := r.checkComponents(m.X, m.Y); err != nil {
		return r, err
	}
	w := r.writable()
	if d, ok := w.directionFor(m.X, m.Y); ok && m.Direction == "" {
		m.Direction = d.ID
	}
	w.add(m)
	if m.Direction != "" {
		if d, ok := w.entries[m.Direction].(Direction); ok {
			d.Magnitude = m.ID
			w.entries[d.ID] = d
		}
	}
	return w, nil
}

// RegisterDirection adds a direction derived from the stored fields x and y.
// A missing convention defaults to from.
func (r *Registry) RegisterDirection(d Direction) (*Registry, error) {
	if err := r.checkFree(d.ID); err != nil {
		return r, err
	}
	if err := r.checkComponents(d.X, d.Y); err != nil {
		return r, err
	}
	if d.Convention == domain.ConventionNone {
		d.Convention = domain.ConventionFrom
		if d.Param != nil && d.Param.Convention.Directional() {
			d.Convention = d.Param.Convention
		}
	}
	w := r.writable()
	if m, ok := w.magnitudeFor(d.X, d.Y); ok {
		d.Magnitude = m.ID
		m.Direction = d.ID
		w.entries[m.ID] = m
	}
	w.add(d)
	return w, nil
}

func (r *Registry) checkComponents(x, y string) error {
	for _, c := range []string{x, y} {
		if _, ok := r.entries[c].(Field); !ok {
			return &domain.UnknownNameError{Name: c, What: "component field"}
		}
	}
	if x == y {
		return fmt.Errorf("x and y components must differ, both are %q", x)
	}
	return nil
}

func (r *Registry) magnitudeFor(x, y string) (Magnitude, bool) {
	for _, name := range r.order {
		if m, ok := r.entries[name].(Magnitude); ok && m.X == x && m.Y == y {
			return m, true
		}
	}
	return Magnitude{}, false
}

func (r *Registry) directionFor(x, y string) (Direction, bool) {
	for _, name := range r.order {
		if d, ok := r.entries[name].(Direction); ok && d.X == x && d.Y == y {
			return d, true
		}
	}
	return Direction{}, false
}

func fieldGroup(name string, g Group) (Group, error) {
	switch g {
	case "":
		return GroupAll, nil
	case GroupAll, GroupSpatial, GroupGrid, GroupGridpoint:
		return g, nil
	default:
		return "", fmt.Errorf("%q: fields can be defined over all, spatial, grid or gridpoint, not %q", name, g)
	}
}

// Lookup returns the descriptor of a registered name. Spatial coordinates and
// point position fields are synthesized.
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	if d, ok := r.entries[name]; ok {
		return d, true
	}
	if r.isSpatial(name) {
		p, _ := domain.GetParameter(name)
		return Coordinate{ID: name, Param: &p, Tag: TagSpatial}, true
	}
	if r.IsPositionField(name) {
		p, _ := domain.GetParameter(name)
		return Field{ID: name, Param: &p, Group: GroupSpatial}, true
	}
	return nil, false
}

// Has reports whether name is known to the registry.
func (r *Registry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Names returns every registered name in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

func (r *Registry) userCoordinates() []Coordinate {
	var out []Coordinate
	for _, name := range r.order {
		if c, ok := r.entries[name].(Coordinate); ok {
			out = append(out, c)
		}
	}
	return out
}

// Coordinates returns the coordinate names of a group in canonical order:
// time first, then the spatial coordinates, then the rest in registration order.
func (r *Registry) Coordinates(g Group) []string {
	includeSpatial := false
	keep := func(Coordinate) bool { return false }
	switch g {
	case GroupAll:
		includeSpatial = true
		keep = func(Coordinate) bool { return true }
	case GroupSpatial:
		includeSpatial = true
	case GroupNonSpatial:
		keep = func(Coordinate) bool { return true }
	case GroupGrid:
		includeSpatial = true
		keep = func(c Coordinate) bool { return c.Tag == TagGrid }
	case GroupGridpoint:
		keep = func(c Coordinate) bool { return c.Tag == TagGridpoint }
	default:
		return nil
	}

	var times, rest []string
	for _, c := range r.userCoordinates() {
		if !keep(c) {
			continue
		}
		if c.Time {
			times = append(times, c.ID)
		} else {
			rest = append(rest, c.ID)
		}
	}
	out := make([]string, 0, len(times)+2+len(rest))
	out = append(out, times...)
	if includeSpatial {
		out = append(out, r.SpatialCoordinates()...)
	}
	return append(out, rest...)
}

// TimeCoordinate returns the name of the time coordinate, if any.
func (r *Registry) TimeCoordinate() (string, bool) {
	for _, c := range r.userCoordinates() {
		if c.Time {
			return c.ID, true
		}
	}
	return "", false
}

// inGroup reports whether an item registered with group has to be listed for
// the requested group g. Nonspatial is everything but spatial, and grid
// includes spatial.
func inGroup(group, g Group) bool {
	switch g {
	case GroupAll:
		return true
	case GroupNonSpatial:
		return group != GroupSpatial
	case GroupGrid:
		return group == GroupGrid || group == GroupSpatial
	default:
		return group == g
	}
}

// Fields returns the stored data fields of a group in registration order.
func (r *Registry) Fields(g Group) []string {
	var out []string
	for _, name := range r.order {
		if f, ok := r.entries[name].(Field); ok && inGroup(f.Group, g) {
			out = append(out, name)
		}
	}
	return out
}

// Masks returns primary and opposite masks of a group in registration order.
func (r *Registry) Masks(g Group) []string {
	var out []string
	for _, name := range r.order {
		if m, ok := r.entries[name].(Mask); ok && inGroup(m.Group, g) {
			out = append(out, name)
		}
	}
	return out
}

// StoredMasks returns only the primary masks of a group.
func (r *Registry) StoredMasks(g Group) []string {
	var out []string
	for _, name := range r.Masks(g) {
		if r.entries[name].(Mask).Primary {
			out = append(out, name)
		}
	}
	return out
}

// Magnitudes returns the derived magnitude names.
func (r *Registry) Magnitudes() []string {
	var out []string
	for _, name := range r.order {
		if _, ok := r.entries[name].(Magnitude); ok {
			out = append(out, name)
		}
	}
	return out
}

// Directions returns the derived direction names.
func (r *Registry) Directions() []string {
	var out []string
	for _, name := range r.order {
		if _, ok := r.entries[name].(Direction); ok {
			out = append(out, name)
		}
	}
	return out
}

// TriggeredMasks returns the primary masks re-derived when field is written.
func (r *Registry) TriggeredMasks(field string) []Mask {
	var out []Mask
	for _, name := range r.order {
		if m, ok := r.entries[name].(Mask); ok && m.Primary && m.TriggeredBy == field {
			out = append(out, m)
		}
	}
	return out
}

// CoordinateGroup returns the group a field, mask or derived field is defined over.
func (r *Registry) CoordinateGroup(name string) (Group, error) {
	d, ok := r.Lookup(name)
	if !ok {
		return "", &domain.UnknownNameError{Name: name}
	}
	switch v := d.(type) {
	case Field:
		return v.Group, nil
	case Mask:
		return v.Group, nil
	case Magnitude:
		return r.CoordinateGroup(v.X)
	case Direction:
		return r.CoordinateGroup(v.X)
	default:
		return "", fmt.Errorf("%q is a coordinate and has no coordinate group", name)
	}
}

// Parameter returns the physical parameter of a name, or nil if none is attached.
func (r *Registry) Parameter(name string) (*domain.Parameter, error) {
	d, ok := r.Lookup(name)
	if !ok {
		return nil, &domain.UnknownNameError{Name: name}
	}
	return d.Parameter(), nil
}

// DefaultValue returns the fill value of a stored field or mask (1 or 0).
func (r *Registry) DefaultValue(name string) (float64, error) {
	d, ok := r.Lookup(name)
	if !ok {
		return 0, &domain.UnknownNameError{Name: name}
	}
	switch v := d.(type) {
	case Field:
		return v.Default, nil
	case Mask:
		if v.Default {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("%q is a %s and has no default value", name, d.Kind())
	}
}
