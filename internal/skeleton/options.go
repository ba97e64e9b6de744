package skeleton

import (
	"log/slog"
	"strings"

	"go.ngs.io/geo-skeletons/internal/adapter/array"
	"go.ngs.io/geo-skeletons/internal/adapter/geo"
	"go.ngs.io/geo-skeletons/internal/domain"
)

type config struct {
	crs    any
	zone   *geo.Zone
	name   string
	logger *slog.Logger
	mode   array.Mode
}

// Option configures a container at construction.
type Option func(*config)

// WithCRS sets the projection from an EPSG code, proj string or descriptor map.
func WithCRS(def any) Option {
	return func(c *config) { c.crs = def }
}

// WithUTM sets the UTM zone, e.g. WithUTM(33, "W").
func WithUTM(number int, letter string) Option {
	return func(c *config) { c.zone = &geo.Zone{Number: number, Letter: strings.ToUpper(letter)} }
}

// WithName names the container. Defaults to the class name.
func WithName(name string) Option {
	return func(c *config) { c.name = name }
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithMode selects eager or lazy arrays.
func WithMode(m array.Mode) Option {
	return func(c *config) { c.mode = m }
}

type access struct {
	allowDefault bool
	convention   domain.Convention
	realize      *bool
	squeeze      bool
	dims         []string
}

// AccessOption modifies a single Get or Set.
type AccessOption func(*access)

// AllowDefault makes Get return a default-filled array for unset fields.
func AllowDefault() AccessOption {
	return func(a *access) { a.allowDefault = true }
}

// InConvention reads or writes a directional field in convention c.
func InConvention(c domain.Convention) AccessOption {
	return func(a *access) { a.convention = c }
}

// Realize overrides the container mode: true returns (or stores) an eager
// array, false a lazy one.
func Realize(b bool) AccessOption {
	return func(a *access) { a.realize = array.Bool(b) }
}

// Squeeze drops length-1 axes from the result of Get.
func Squeeze() AccessOption {
	return func(a *access) { a.squeeze = true }
}

// Dims names the axes of the value given to Set, in order.
func Dims(dims ...string) AccessOption {
	return func(a *access) { a.dims = dims }
}

func newAccess(opts []AccessOption) access {
	var a access
	for _, o := range opts {
		o(&a)
	}
	return a
}
