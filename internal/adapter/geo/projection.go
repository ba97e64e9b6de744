package geo

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"

	"go.ngs.io/geo-skeletons/internal/domain"
)

// State is the projection identity of a container.
type State int

const (
	StateUnset State = iota
	StateUTM
	StateCRS
)

func (s State) String() string {
	switch s {
	case StateUTM:
		return "utm"
	case StateCRS:
		return "crs"
	default:
		return "unset"
	}
}

// Projection converts between lon/lat and x/y once a UTM zone or CRS is known.
type Projection struct {
	state  State
	zone   Zone
	crs    *CRS
	logger *slog.Logger
}

// NewProjection returns an unset projection.
func NewProjection(logger *slog.Logger) *Projection {
	if logger == nil {
		logger = slog.Default()
	}
	return &Projection{logger: logger}
}

// Clone copies the projection state.
func (p *Projection) Clone() *Projection {
	c := *p
	return &c
}

// State returns the current state.
func (p *Projection) State() State { return p.state }

// IsSet reports whether a zone or CRS is known.
func (p *Projection) IsSet() bool { return p.state != StateUnset }

// Zone returns the UTM zone, if that is what is set.
func (p *Projection) Zone() (Zone, bool) {
	return p.zone, p.state == StateUTM
}

// CRS returns the CRS, if that is what is set.
func (p *Projection) CRS() (*CRS, bool) {
	return p.crs, p.state == StateCRS
}

// Reset returns the projection to the unset state.
func (p *Projection) Reset() {
	p.state = StateUnset
	p.zone = Zone{}
	p.crs = nil
}

// SetZone sets a UTM zone.
func (p *Projection) SetZone(z Zone) error {
	z.Letter = strings.ToUpper(z.Letter)
	if err := z.Validate(); err != nil {
		return err
	}
	p.state = StateUTM
	p.zone = z
	p.crs = nil
	p.logger.Debug("setting UTM zone", "zone", z.String())
	return nil
}

// SetCRS sets an arbitrary CRS.
func (p *Projection) SetCRS(c *CRS) {
	p.state = StateCRS
	p.zone = Zone{}
	p.crs = c
	p.logger.Debug("setting CRS", "crs", c.Name)
}

// Set accepts an EPSG code (int or "EPSG:xxxx"), a proj string, a Zone, a
// zone string such as "33W", or a descriptor map with one of the keys
// "epsg", "proj4", "utm_zone" or "zone_number"/"zone_letter". nil resets.
func (p *Projection) Set(def any) error {
	switch v := def.(type) {
	case nil:
		p.Reset()
		return nil
	case Zone:
		return p.SetZone(v)
	case *CRS:
		p.SetCRS(v)
		return nil
	case int:
		c, err := NewEPSG(v)
		if err != nil {
			return err
		}
		p.SetCRS(c)
		return nil
	case string:
		if z, err := ParseZone(v); err == nil {
			return p.SetZone(z)
		}
		c, err := ParseCRS(v)
		if err != nil {
			return err
		}
		p.SetCRS(c)
		return nil
	case map[string]any:
		return p.setDescriptor(v)
	case map[string]string:
		m := make(map[string]any, len(v))
		for k, s := range v {
			m[k] = s
		}
		return p.setDescriptor(m)
	default:
		return fmt.Errorf("can't set projection from %T", def)
	}
}

func (p *Projection) setDescriptor(m map[string]any) error {
	if v, ok := m["epsg"]; ok {
		switch code := v.(type) {
		case int:
			return p.Set(code)
		case float64:
			return p.Set(int(code))
		case string:
			return p.Set("EPSG:" + strings.TrimPrefix(strings.ToUpper(code), "EPSG:"))
		}
		return fmt.Errorf("invalid epsg entry %v", v)
	}
	for _, key := range []string{"proj4", "proj", "crs"} {
		if v, ok := m[key].(string); ok {
			return p.Set(v)
		}
	}
	if v, ok := m["utm_zone"].(string); ok {
		z, err := ParseZone(v)
		if err != nil {
			return err
		}
		return p.SetZone(z)
	}
	if n, ok := m["zone_number"]; ok {
		letter, _ := m["zone_letter"].(string)
		switch num := n.(type) {
		case int:
			return p.SetZone(Zone{Number: num, Letter: letter})
		case float64:
			return p.SetZone(Zone{Number: int(num), Letter: letter})
		}
		return fmt.Errorf("invalid zone_number entry %v", n)
	}
	return fmt.Errorf("CRS descriptor needs epsg, proj4, utm_zone or zone_number")
}

// AutoDetect picks a UTM zone for lon/lat points and sets it. Points outside
// the UTM latitude range are ignored, and only the hemisphere holding most
// points is used. If no point is in range, the capped mean is used.
func (p *Projection) AutoDetect(lon, lat []float64) (Zone, error) {
	if len(lon) == 0 || len(lon) != len(lat) {
		return Zone{}, fmt.Errorf("need equally long lon/lat to detect a UTM zone, got %d and %d", len(lon), len(lat))
	}
	var north, south []int
	for i, la := range lat {
		if la <= MinLatitude || la >= MaxLatitude {
			continue
		}
		if la >= 0 {
			north = append(north, i)
		} else {
			south = append(south, i)
		}
	}
	keep := south
	if len(north) > len(south) {
		keep = north
	}

	var meanLon, meanLat float64
	if len(keep) == 0 {
		meanLon = MeanLongitude(lon)
		meanLat, _ = capLatitude(floats.Sum(lat) / float64(len(lat)))
	} else {
		ln := make([]float64, len(keep))
		lt := make([]float64, len(keep))
		for i, k := range keep {
			ln[i], lt[i] = lon[k], lat[k]
		}
		meanLon = MeanLongitude(ln)
		meanLat = floats.Sum(lt) / float64(len(lt))
	}

	z := ZoneOf(meanLat, meanLon)
	if err := p.SetZone(z); err != nil {
		return Zone{}, err
	}
	p.logger.Info("setting UTM zone from data", "zone", z.String(), "lon", meanLon, "lat", meanLat)
	return z, nil
}

// MeanLongitude averages longitudes, shifting to [0, 360) first when the
// points straddle the antimeridian. The result is in (-180, 180].
func MeanLongitude(lon []float64) float64 {
	if len(lon) == 0 {
		return math.NaN()
	}
	if floats.Max(lon)-floats.Min(lon) <= 180 {
		return floats.Sum(lon) / float64(len(lon))
	}
	shifted := make([]float64, len(lon))
	for i, v := range lon {
		shifted[i] = math.Mod(v+360, 360)
	}
	return NormalizeLon(floats.Sum(shifted) / float64(len(shifted)))
}

// NormalizeLon wraps a longitude into (-180, 180].
func NormalizeLon(lon float64) float64 {
	for lon > 180 {
		lon -= 360
	}
	for lon <= -180 {
		lon += 360
	}
	return lon
}

// CapLatitudes clamps latitudes into the UTM range and logs a warning when
// anything was changed. The input is not modified.
func CapLatitudes(lat []float64, logger *slog.Logger) []float64 {
	out := make([]float64, len(lat))
	capped := 0
	for i, v := range lat {
		var c bool
		out[i], c = capLatitude(v)
		if c {
			capped++
		}
	}
	if capped > 0 && logger != nil {
		logger.Warn("latitudes outside UTM range capped", "count", capped, "min", MinLatitude, "max", MaxLatitude)
	}
	return out
}

// ToProjected converts lon/lat to x/y in the current zone or CRS.
func (p *Projection) ToProjected(lon, lat []float64) ([]float64, []float64, error) {
	if len(lon) != len(lat) {
		return nil, nil, &domain.LengthMismatchError{First: "lon", Second: "lat", LenA: len(lon), LenB: len(lat)}
	}
	switch p.state {
	case StateUTM:
		x, y := ProjectUTM(lon, CapLatitudes(lat, p.logger), p.zone.Number)
		return x, y, nil
	case StateCRS:
		return p.crs.Forward(lon, lat)
	default:
		return nil, nil, &domain.NoProjectionSetError{Operation: "converting lon/lat to x/y"}
	}
}

// ToGeographic converts x/y in the current zone or CRS to lon/lat.
func (p *Projection) ToGeographic(x, y []float64) ([]float64, []float64, error) {
	if len(x) != len(y) {
		return nil, nil, &domain.LengthMismatchError{First: "x", Second: "y", LenA: len(x), LenB: len(y)}
	}
	switch p.state {
	case StateUTM:
		lon, lat := UnprojectUTM(x, y, p.zone.Number)
		return lon, lat, nil
	case StateCRS:
		return p.crs.Inverse(x, y)
	default:
		return nil, nil, &domain.NoProjectionSetError{Operation: "converting x/y to lon/lat"}
	}
}

// Metadata returns the attributes describing the projection.
func (p *Projection) Metadata() map[string]string {
	switch p.state {
	case StateUTM:
		return map[string]string{"utm_zone": p.zone.String()}
	case StateCRS:
		return map[string]string{"crs": p.crs.Name, "proj4": p.crs.Definition}
	default:
		return nil
	}
}

// String describes the projection, e.g. "UTM 33W".
func (p *Projection) String() string {
	switch p.state {
	case StateUTM:
		return "UTM " + p.zone.String()
	case StateCRS:
		return p.crs.Name
	default:
		return "unset"
	}
}

// ProjectUTM projects points into a zone, batching them by hemisphere.
func ProjectUTM(lon, lat []float64, number int) ([]float64, []float64) {
	x := make([]float64, len(lon))
	y := make([]float64, len(lon))
	north, south := splitHemispheres(lat)
	for _, i := range north {
		x[i], y[i] = forward(lat[i], lon[i], number)
	}
	for _, i := range south {
		x[i], y[i] = forward(-lat[i], lon[i], number)
		y[i] = -y[i]
	}
	return x, y
}

// UnprojectUTM is the inverse of ProjectUTM.
func UnprojectUTM(x, y []float64, number int) ([]float64, []float64) {
	lon := make([]float64, len(x))
	lat := make([]float64, len(x))
	north, south := splitHemispheres(y)
	for _, i := range north {
		lat[i], lon[i] = inverse(x[i], y[i], number)
	}
	for _, i := range south {
		lat[i], lon[i] = inverse(x[i], -y[i], number)
		lat[i] = -lat[i]
	}
	return lon, lat
}

func splitHemispheres(v []float64) (north, south []int) {
	for i, s := range v {
		if s < 0 {
			south = append(south, i)
		} else {
			north = append(north, i)
		}
	}
	return north, south
}
