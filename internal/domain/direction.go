package domain

import (
	"fmt"
	"math"
	"strings"
)

// Convention defines how a numeric angle maps to a compass or trigonometric direction.
type Convention int

const (
	// ConventionNone marks a non-directional quantity.
	ConventionNone Convention = iota
	// ConventionFrom is the compass direction the quantity comes from (degrees).
	ConventionFrom
	// ConventionTo is the compass direction the quantity points toward (degrees).
	ConventionTo
	// ConventionMath is the counter-clockwise angle from the positive x-axis (radians, (-π, π]).
	ConventionMath
)

// String returns the convention name as used in metadata and query strings.
func (c Convention) String() string {
	switch c {
	case ConventionFrom:
		return "from"
	case ConventionTo:
		return "to"
	case ConventionMath:
		return "math"
	default:
		return ""
	}
}

// Directional reports whether c is one of from/to/math.
func (c Convention) Directional() bool {
	return c != ConventionNone
}

// ParseConvention maps "from", "to" or "math" to a Convention. The empty string is ConventionNone.
func ParseConvention(s string) (Convention, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return ConventionNone, nil
	case "from":
		return ConventionFrom, nil
	case "to":
		return ConventionTo, nil
	case "math", "angular":
		return ConventionMath, nil
	default:
		return ConventionNone, fmt.Errorf("unknown directional convention %q (use from, to or math)", s)
	}
}

// offset returns the compass offset in degrees for from/to.
func (c Convention) offset() float64 {
	if c == ConventionFrom {
		return 180.0
	}
	return 0.0
}

// Deg2Rad converts degrees to radians.
func Deg2Rad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// Rad2Deg converts radians to degrees.
func Rad2Deg(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

// Mod360 wraps a value into [0, 360).
func Mod360(v float64) float64 {
	v = math.Mod(v, 360.0)
	if v < 0 {
		v += 360.0
	}
	if v >= 360.0 {
		v -= 360.0
	}
	return v
}

// ToMath converts a directional value to the mathematical convention.
//
//	math = ((90 - value + offset) mod 360) * π/180, wrapped into (-π, π]
func ToMath(value float64, c Convention) float64 {
	if c == ConventionMath || c == ConventionNone {
		return value
	}
	m := Deg2Rad(Mod360(90.0 - value + c.offset()))
	if m > math.Pi {
		m -= 2 * math.Pi
	}
	return m
}

// FromMath converts a mathematical angle to the given convention.
//
//	out = (90 - value*180/π + offset) mod 360
func FromMath(value float64, c Convention) float64 {
	if c == ConventionMath || c == ConventionNone {
		return value
	}
	return Mod360(90.0 - Rad2Deg(value) + c.offset())
}

// ConvertDirection converts a directional value between two conventions.
func ConvertDirection(value float64, in, out Convention) float64 {
	return FromMath(ToMath(value, in), out)
}

// DirectionFunc returns an elementwise conversion from in to out, for use with array mapping.
func DirectionFunc(in, out Convention) func(float64) float64 {
	return func(v float64) float64 {
		return ConvertDirection(v, in, out)
	}
}
