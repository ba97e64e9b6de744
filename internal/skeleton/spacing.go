package skeleton

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"

	"go.ngs.io/geo-skeletons/internal/adapter/index"
)

// metresPerNauticalMile is the rounded value used for grid spacing.
const metresPerNauticalMile = 1850.0

// Spacing requests a new grid resolution. The first non-zero option wins, in
// the order NX/NY, DNmi, DLon/DLat, DM, DX/DY. With FloatingEdge the upper
// edge moves to honour the spacing exactly.
type Spacing struct {
	NX, NY       int
	DNmi         float64 // nautical miles
	DLon, DLat   float64 // degrees
	DM           float64 // metres, both axes
	DX, DY       float64 // metres
	FloatingEdge bool
}

// SetSpacing regrids a gridded container between its current edges. Data
// fields are dropped; non-spatial coordinates are kept.
func (s *Skeleton) SetSpacing(sp Spacing) error {
	if !s.Gridded() {
		return errors.New("spacing can only be set for gridded containers")
	}
	if s.NX() == 0 || s.NY() == 0 {
		return errors.New("can't set spacing of an empty grid")
	}
	nx, xEnd, err := s.axisCount(true, sp.NX, sp.DX, sp.DLon, sp)
	if err != nil {
		return err
	}
	ny, yEnd, err := s.axisCount(false, sp.NY, sp.DY, sp.DLat, sp)
	if err != nil {
		return err
	}

	a := uniqueSorted(linspace(s.ds.coords[s.nativeName(true)][0], xEnd, nx))
	b := uniqueSorted(linspace(s.ds.coords[s.nativeName(false)][0], yEnd, ny))
	c := Coords{X: a, Y: b}
	if s.Spherical() {
		c = Coords{Lon: a, Lat: b}
	}
	s.logger.Info("setting grid spacing", "nx", len(a), "ny", len(b))
	return s.Restructure(c)
}

// axisCount returns the number of points along one axis and the native end value.
func (s *Skeleton) axisCount(first bool, n int, dx, dlon float64, sp Spacing) (int, float64, error) {
	native := s.ds.coords[s.nativeName(first)]
	end := floats.Max(native)
	if n > 0 {
		return n, end, nil
	}

	cartName, geoName := "x", "lon"
	if !first {
		cartName, geoName = "y", "lat"
	}
	dm := sp.DM
	if sp.DNmi > 0 {
		if s.Cartesian() {
			dm = sp.DNmi * metresPerNauticalMile
		} else {
			dlat := sp.DNmi / 60
			dlon = dlat
			if first {
				lat, err := s.Lat()
				if err != nil {
					return 0, 0, err
				}
				dlon = dlat * latKm() / lonKm(median(lat))
			}
		}
	}

	if dlon > 0 {
		lo, hi, err := s.Edges(geoName)
		if err != nil {
			return 0, 0, err
		}
		count := int(math.Round((hi-lo)/dlon)) + 1
		if sp.FloatingEdge {
			if s.Cartesian() {
				return 0, 0, errors.New("grid is cartesian, can't set an exact dlon/dlat with a floating edge")
			}
			end = lo + float64(count-1)*dlon
		}
		return count, end, nil
	}

	if dm > 0 {
		dx = dm
	}
	if dx > 0 {
		lo, hi, err := s.Edges(cartName)
		if err != nil {
			return 0, 0, err
		}
		count := int(math.Round((hi-lo)/dx)) + 1
		if sp.FloatingEdge {
			if s.Spherical() {
				return 0, 0, errors.New("grid is spherical, can't set an exact dx/dy with a floating edge")
			}
			end = lo + float64(count-1)*dx
		}
		return count, end, nil
	}
	return len(native), end, nil
}

func latKm() float64 { return index.EarthRadiusKm * math.Pi / 180 }

func lonKm(lat float64) float64 { return latKm() * math.Cos(lat*math.Pi/180) }

func linspace(start, end float64, n int) []float64 {
	if n <= 1 {
		return []float64{start}
	}
	out := make([]float64, n)
	floats.Span(out, start, end)
	return out
}

// uniqueSorted removes exact repeats from an ordered slice.
func uniqueSorted(v []float64) []float64 {
	out := v[:0:0]
	for i, x := range v {
		if i == 0 || x != v[i-1] {
			out = append(out, x)
		}
	}
	return out
}
