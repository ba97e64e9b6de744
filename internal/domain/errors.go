package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors. Every typed error below unwraps to exactly one of these so
// callers can match with errors.Is and inspect details with errors.As.
var (
	ErrNameCollision       = errors.New("name collision")
	ErrAmbiguousGrid       = errors.New("ambiguous grid")
	ErrMissingCoordinate   = errors.New("missing coordinate")
	ErrLengthMismatch      = errors.New("length mismatch")
	ErrIrreconcilableShape = errors.New("irreconcilable shape")
	ErrNoProjectionSet     = errors.New("no projection set")
	ErrInvalidRange        = errors.New("invalid range")
	ErrUnknownName         = errors.New("unknown name")
	ErrNotDirectional      = errors.New("not a directional quantity")
	ErrInvalidZone         = errors.New("invalid UTM zone")
)

// NameCollisionError is returned when a coordinate or field name is registered twice.
type NameCollisionError struct {
	Name     string
	Existing string // Kind of the already registered entry.
}

func (e *NameCollisionError) Error() string {
	return fmt.Sprintf("name %q is already registered as a %s", e.Name, e.Existing)
}

func (e *NameCollisionError) Unwrap() error { return ErrNameCollision }

// AmbiguousGridError is returned when both x/y and lon/lat are given at construction.
type AmbiguousGridError struct{}

func (e *AmbiguousGridError) Error() string {
	return "can't set both lon/lat and x/y"
}

func (e *AmbiguousGridError) Unwrap() error { return ErrAmbiguousGrid }

// MissingCoordinateError is returned when a registered coordinate has no values.
type MissingCoordinateError struct {
	Name string
}

func (e *MissingCoordinateError) Error() string {
	return fmt.Sprintf("coordinate %q must be given", e.Name)
}

func (e *MissingCoordinateError) Unwrap() error { return ErrMissingCoordinate }

// LengthMismatchError is returned when point x and y vectors can't be paired.
type LengthMismatchError struct {
	First, Second string
	LenA, LenB    int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("%s (%d) and %s (%d) must have the same length", e.First, e.LenA, e.Second, e.LenB)
}

func (e *LengthMismatchError) Unwrap() error { return ErrLengthMismatch }

// IrreconcilableShapeError is returned when an input array can't be aligned to a field.
type IrreconcilableShapeError struct {
	Name     string
	Original []int
	Expected []int
}

func (e *IrreconcilableShapeError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("data has shape %v, but expected %v", e.Original, e.Expected)
	}
	return fmt.Sprintf("data for %q has shape %v, but expected %v", e.Name, e.Original, e.Expected)
}

func (e *IrreconcilableShapeError) Unwrap() error { return ErrIrreconcilableShape }

// NoProjectionSetError is returned by transforms before a UTM zone or CRS is known.
type NoProjectionSetError struct {
	Operation string
}

func (e *NoProjectionSetError) Error() string {
	return fmt.Sprintf("need to set a UTM zone or CRS before %s", e.Operation)
}

func (e *NoProjectionSetError) Unwrap() error { return ErrNoProjectionSet }

// InvalidRangeError is returned for a mask valid range with a non-increasing bound.
type InvalidRangeError struct {
	Name   string
	Lo, Hi float64
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("valid range of %q must be increasing, got (%g, %g)", e.Name, e.Lo, e.Hi)
}

func (e *InvalidRangeError) Unwrap() error { return ErrInvalidRange }

// UnknownNameError is returned when a name isn't registered.
type UnknownNameError struct {
	Name string
	What string // E.g., "field", "coordinate".
}

func (e *UnknownNameError) Error() string {
	what := e.What
	if what == "" {
		what = "name"
	}
	return fmt.Sprintf("%s %q is not defined", what, e.Name)
}

func (e *UnknownNameError) Unwrap() error { return ErrUnknownName }

// NotDirectionalError is returned when a convention is requested for a non-directional field.
type NotDirectionalError struct {
	Name string
}

func (e *NotDirectionalError) Error() string {
	return fmt.Sprintf("%q is not a directional quantity, can't apply a directional convention", e.Name)
}

func (e *NotDirectionalError) Unwrap() error { return ErrNotDirectional }

// InvalidZoneError is returned for a UTM zone outside 1..60 / C..X.
type InvalidZoneError struct {
	Number int
	Letter string
}

func (e *InvalidZoneError) Error() string {
	return fmt.Sprintf("(%d, %s) is not a valid UTM zone", e.Number, e.Letter)
}

func (e *InvalidZoneError) Unwrap() error { return ErrInvalidZone }
