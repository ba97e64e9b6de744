package domain

import (
	"sort"
	"strings"
	"sync"
)

// Parameter describes a physical quantity attached to a coordinate or field.
type Parameter struct {
	Name         string     // Short name, e.g., "hs".
	LongName     string     // E.g., "significant wave height".
	StandardName string     // CF standard name.
	Unit         string     // E.g., "m", "deg", "m/s".
	Convention   Convention // Fixed convention for directional quantities.
}

// Metadata returns the attribute-like annotations carried by the parameter.
func (p Parameter) Metadata() map[string]string {
	md := make(map[string]string, 4)
	if p.Unit != "" {
		md["units"] = p.Unit
	}
	if p.StandardName != "" {
		md["standard_name"] = p.StandardName
	}
	if p.LongName != "" {
		md["long_name"] = p.LongName
	}
	if p.Convention.Directional() {
		md["direction_convention"] = p.Convention.String()
	}
	return md
}

// WithName returns a copy of p renamed, keeping units and conventions.
func (p Parameter) WithName(name string) Parameter {
	p.Name = name
	return p
}

// StandardParameters contains well-known ocean, wave and wind quantities.
var StandardParameters = map[string]Parameter{
	// Waves.
	"hs":   {Name: "hs", LongName: "significant wave height", StandardName: "sea_surface_wave_significant_height", Unit: "m"},
	"tp":   {Name: "tp", LongName: "peak period", StandardName: "sea_surface_wave_period_at_variance_spectral_density_maximum", Unit: "s"},
	"tm01": {Name: "tm01", LongName: "mean period", StandardName: "sea_surface_wave_mean_period_from_variance_spectral_density_first_frequency_moment", Unit: "s"},
	"dirp": {Name: "dirp", LongName: "peak direction", StandardName: "sea_surface_wave_from_direction_at_variance_spectral_density_maximum", Unit: "deg", Convention: ConventionFrom},
	"dirm": {Name: "dirm", LongName: "mean direction", StandardName: "sea_surface_wave_from_direction", Unit: "deg", Convention: ConventionFrom},

	// Stokes drift.
	"stokes":     {Name: "stokes", LongName: "stokes drift speed", StandardName: "sea_surface_wave_stokes_drift_speed", Unit: "m/s"},
	"stokes_dir": {Name: "stokes_dir", LongName: "stokes drift direction", StandardName: "sea_surface_wave_stokes_drift_to_direction", Unit: "deg", Convention: ConventionTo},

	// Wind.
	"u":       {Name: "u", LongName: "eastward wind", StandardName: "x_wind", Unit: "m/s"},
	"v":       {Name: "v", LongName: "northward wind", StandardName: "y_wind", Unit: "m/s"},
	"wind":    {Name: "wind", LongName: "wind speed", StandardName: "wind_speed", Unit: "m/s"},
	"winddir": {Name: "winddir", LongName: "wind direction", StandardName: "wind_from_direction", Unit: "deg", Convention: ConventionFrom},

	// Ocean.
	"depth":   {Name: "depth", LongName: "sea floor depth", StandardName: "sea_floor_depth_below_sea_surface", Unit: "m"},
	"current": {Name: "current", LongName: "current speed", StandardName: "sea_water_speed", Unit: "m/s"},
	"curdir":  {Name: "curdir", LongName: "current direction", StandardName: "direction_of_sea_water_velocity", Unit: "deg", Convention: ConventionTo},

	// Coordinates.
	"lon":  {Name: "lon", LongName: "longitude", StandardName: "longitude", Unit: "degrees_east"},
	"lat":  {Name: "lat", LongName: "latitude", StandardName: "latitude", Unit: "degrees_north"},
	"x":    {Name: "x", LongName: "x coordinate", StandardName: "projection_x_coordinate", Unit: "m"},
	"y":    {Name: "y", LongName: "y coordinate", StandardName: "projection_y_coordinate", Unit: "m"},
	"time": {Name: "time", LongName: "time", StandardName: "time"},
	"freq": {Name: "freq", LongName: "frequency", StandardName: "wave_frequency", Unit: "Hz"},
	"dirs": {Name: "dirs", LongName: "directions", StandardName: "sea_surface_wave_from_direction", Unit: "deg", Convention: ConventionFrom},
}

// GetParameter returns the standard parameter with the given short name.
func GetParameter(name string) (Parameter, bool) {
	p, ok := StandardParameters[name]
	return p, ok
}

// ParameterByStandardName finds a standard parameter by its CF standard name.
func ParameterByStandardName(standardName string) (Parameter, bool) {
	for _, p := range StandardParameters {
		if p.StandardName == standardName {
			return p, true
		}
	}
	return Parameter{}, false
}

// standardAliases lists the external spellings commonly found in files for each quantity.
var standardAliases = map[string][]string{
	"hs":      {"hs", "hsig", "swh", "hm0", "vhm0"},
	"tp":      {"tp"},
	"tm01":    {"tm01", "t01", "tm1"},
	"dirp":    {"dirp", "pdir"},
	"dirm":    {"dirm", "mdir"},
	"wind":    {"ff", "wind", "wind_speed", "windspeed"},
	"winddir": {"dd", "windir", "wind_dir", "winddir", "wind_direction"},
	"u":       {"u", "u10", "x_wind", "eastward_wind"},
	"v":       {"v", "v10", "y_wind", "northward_wind"},
	"depth":   {"depth", "topo", "bathymetry"},
	"lon":     {"lon", "longitude"},
	"lat":     {"lat", "latitude"},
	"x":       {"x", "rlon"},
	"y":       {"y", "rlat"},
	"time":    {"time", "valid_time"},
	"freq":    {"freq", "frequency"},
	"dirs":    {"dirs", "directions", "direction", "theta"},
}

// AliasTable resolves external variable names to canonical short names.
// It is immutable once built.
type AliasTable struct {
	byAlias map[string]string
	byName  map[string][]string
}

// NewAliasTable builds an alias table from canonical name -> aliases.
// Lookups are case-insensitive.
func NewAliasTable(families map[string][]string) *AliasTable {
	t := &AliasTable{
		byAlias: make(map[string]string),
		byName:  make(map[string][]string, len(families)),
	}
	for name, aliases := range families {
		list := append([]string(nil), aliases...)
		sort.Strings(list)
		t.byName[name] = list
		for _, a := range aliases {
			t.byAlias[strings.ToLower(a)] = name
		}
	}
	return t
}

var defaultAliases = sync.OnceValue(func() *AliasTable {
	return NewAliasTable(standardAliases)
})

// DefaultAliases returns the shared table of well-known aliases.
func DefaultAliases() *AliasTable {
	return defaultAliases()
}

// Resolve maps an external name to its canonical short name.
func (t *AliasTable) Resolve(alias string) (string, bool) {
	name, ok := t.byAlias[strings.ToLower(alias)]
	return name, ok
}

// Aliases returns the known spellings of a canonical name, sorted.
func (t *AliasTable) Aliases(name string) []string {
	return append([]string(nil), t.byName[name]...)
}
