// Package schema holds the coordinate and field registry of a container class
// and resolves coordinate groups into concrete shapes.
package schema

import (
	"math"

	"go.ngs.io/geo-skeletons/internal/domain"
)

// Kind tags the variant of a registered descriptor.
type Kind int

const (
	KindCoordinate Kind = iota
	KindField
	KindMask
	KindMagnitude
	KindDirection
)

func (k Kind) String() string {
	switch k {
	case KindCoordinate:
		return "coordinate"
	case KindField:
		return "field"
	case KindMask:
		return "mask"
	case KindMagnitude:
		return "magnitude"
	case KindDirection:
		return "direction"
	default:
		return "unknown"
	}
}

// Group names a set of coordinates a field's array is indexed by.
type Group string

const (
	GroupAll        Group = "all"
	GroupSpatial    Group = "spatial"
	GroupNonSpatial Group = "nonspatial"
	GroupGrid       Group = "grid"
	GroupGridpoint  Group = "gridpoint"
)

// Valid reports whether g is one of the known groups.
func (g Group) Valid() bool {
	switch g {
	case GroupAll, GroupSpatial, GroupNonSpatial, GroupGrid, GroupGridpoint:
		return true
	}
	return false
}

// Tag is the group membership of a non-spatial coordinate.
type Tag string

const (
	TagSpatial   Tag = "spatial"
	TagGrid      Tag = "grid"
	TagGridpoint Tag = "gridpoint"
)

// Descriptor is one registry entry. Implemented by Coordinate, Field, Mask,
// Magnitude and Direction only.
type Descriptor interface {
	Name() string
	Kind() Kind
	Parameter() *domain.Parameter
	descriptor()
}

// Coordinate describes a named coordinate axis.
type Coordinate struct {
	ID    string
	Param *domain.Parameter
	Tag   Tag  // Grid or gridpoint for user coordinates.
	Time  bool // Sorted first in canonical order.
}

func (c Coordinate) Name() string                 { return c.ID }
func (c Coordinate) Kind() Kind                   { return KindCoordinate }
func (c Coordinate) Parameter() *domain.Parameter { return c.Param }
func (Coordinate) descriptor()                    {}

// Field describes a stored data field.
type Field struct {
	ID         string
	Param      *domain.Parameter
	Group      Group
	Default    float64
	Convention domain.Convention // Stored convention of a directional field.
}

func (f Field) Name() string                 { return f.ID }
func (f Field) Kind() Kind                   { return KindField }
func (f Field) Parameter() *domain.Parameter { return f.Param }
func (Field) descriptor()                    {}

// ValidRange bounds the values of a trigger field that switch a mask on.
type ValidRange struct {
	Lo, Hi      float64 // Use math.Inf for an open bound.
	LoInclusive bool
	HiInclusive bool
	Set         bool
}

// NewValidRange builds a range where nil bounds are unbounded. Both bounds are inclusive.
func NewValidRange(lo, hi *float64) ValidRange {
	r := ValidRange{Lo: math.Inf(-1), Hi: math.Inf(1), LoInclusive: true, HiInclusive: true, Set: true}
	if lo != nil {
		r.Lo = *lo
	}
	if hi != nil {
		r.Hi = *hi
	}
	return r
}

// Contains reports whether v lies inside the range.
func (r ValidRange) Contains(v float64) bool {
	if math.IsNaN(v) {
		return false
	}
	lower := v > r.Lo || (r.LoInclusive && v == r.Lo)
	upper := v < r.Hi || (r.HiInclusive && v == r.Hi)
	return lower && upper
}

// Mask describes a boolean field stored as 0/1. An opposite mask (Primary=false)
// is the negation of the mask named by Of and is never stored.
type Mask struct {
	ID          string // Always ends in "_mask".
	Param       *domain.Parameter
	Group       Group
	Default     bool
	Primary     bool
	Opposite    string // Name of the opposite mask for a primary.
	Of          string // Name of the primary for an opposite.
	TriggeredBy string
	Range       ValidRange
}

func (m Mask) Name() string                 { return m.ID }
func (m Mask) Kind() Kind                   { return KindMask }
func (m Mask) Parameter() *domain.Parameter { return m.Param }
func (Mask) descriptor()                    {}

// Magnitude is derived from two stored components as sqrt(x²+y²).
type Magnitude struct {
	ID        string
	Param     *domain.Parameter
	X, Y      string
	Direction string
}

func (m Magnitude) Name() string                 { return m.ID }
func (m Magnitude) Kind() Kind                   { return KindMagnitude }
func (m Magnitude) Parameter() *domain.Parameter { return m.Param }
func (Magnitude) descriptor()                    {}

// Direction is derived from two stored components as atan2(y, x).
type Direction struct {
	ID         string
	Param      *domain.Parameter
	X, Y       string
	Convention domain.Convention
	Magnitude  string
}

func (d Direction) Name() string                 { return d.ID }
func (d Direction) Kind() Kind                   { return KindDirection }
func (d Direction) Parameter() *domain.Parameter { return d.Param }
func (Direction) descriptor()                    {}

// MaskName appends the "_mask" suffix unless present.
func MaskName(name string) string {
	if len(name) >= 5 && name[len(name)-5:] == "_mask" {
		return name
	}
	return name + "_mask"
}
