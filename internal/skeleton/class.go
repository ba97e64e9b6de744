// Package skeleton implements schema-driven containers for gridded and
// point-based geophysical data.
//
// A Class is an immutable schema: the topology (grid or point) plus the
// coordinates, fields, masks and derived fields registered on it. A Skeleton
// is one container built from a class with concrete coordinate values.
package skeleton

import (
	"fmt"

	"go.ngs.io/geo-skeletons/internal/domain"
	"go.ngs.io/geo-skeletons/internal/schema"
)

// Class is a container schema. Every Add method returns a new class and leaves
// the receiver, its siblings and existing containers untouched.
type Class struct {
	name string
	reg  *schema.Registry
}

// NewGridClass creates a class with independent x/y (or lon/lat) axes.
func NewGridClass(name string) *Class {
	return &Class{name: name, reg: schema.New(schema.TopologyGrid).Share()}
}

// NewPointClass creates a class of unstructured points over an index axis.
func NewPointClass(name string) *Class {
	return &Class{name: name, reg: schema.New(schema.TopologyPoint).Share()}
}

// Must panics if err is non-nil. Intended for package-level class definitions.
func Must(c *Class, err error) *Class {
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Class) Name() string { return c.name }

// Registry returns the class registry. It is shared and must not be mutated.
func (c *Class) Registry() *schema.Registry { return c.reg }

// Topology returns the spatial layout of the class.
func (c *Class) Topology() schema.Topology { return c.reg.Topology() }

// Extend derives a named subclass with the same schema.
func (c *Class) Extend(name string) *Class {
	return &Class{name: name, reg: c.reg}
}

func (c *Class) derive(reg *schema.Registry, err error) (*Class, error) {
	if err != nil {
		return nil, fmt.Errorf("class %s: %w", c.name, err)
	}
	return &Class{name: c.name, reg: reg.Share()}, nil
}

// AddCoordinate registers a non-spatial coordinate.
func (c *Class) AddCoordinate(coord schema.Coordinate) (*Class, error) {
	coord.Param = withParameter(coord.ID, coord.Param)
	return c.derive(c.reg.RegisterCoordinate(coord))
}

// AddTime registers the time coordinate. Its values are stored as unix seconds.
func (c *Class) AddTime(name string, tag schema.Tag) (*Class, error) {
	return c.AddCoordinate(schema.Coordinate{ID: name, Tag: tag, Time: true})
}

// AddField registers a data field.
func (c *Class) AddField(f schema.Field) (*Class, error) {
	f.Param = withParameter(f.ID, f.Param)
	return c.derive(c.reg.RegisterField(f))
}

// AddMask registers a mask and its optional opposite.
func (c *Class) AddMask(m schema.Mask) (*Class, error) {
	return c.derive(c.reg.RegisterMask(m))
}

// AddMagnitude registers a magnitude and, if dir is non-nil, the direction
// derived from the same components.
func (c *Class) AddMagnitude(m schema.Magnitude, dir *schema.Direction) (*Class, error) {
	reg, err := registerMagnitude(c.reg, m, dir)
	return c.derive(reg, err)
}

func registerMagnitude(reg *schema.Registry, m schema.Magnitude, dir *schema.Direction) (*schema.Registry, error) {
	m.Param = withParameter(m.ID, m.Param)
	reg, err := reg.RegisterMagnitude(m)
	if err != nil {
		return nil, err
	}
	if dir == nil {
		return reg, nil
	}
	d := *dir
	if d.X == "" && d.Y == "" {
		d.X, d.Y = m.X, m.Y
	}
	d.Param = withParameter(d.ID, d.Param)
	return reg.RegisterDirection(d)
}

// withParameter falls back to the standard parameter of the same name.
func withParameter(name string, p *domain.Parameter) *domain.Parameter {
	if p != nil {
		return p
	}
	if std, ok := domain.GetParameter(name); ok {
		return &std
	}
	return nil
}
