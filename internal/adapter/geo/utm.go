// Package geo converts between geographic and projected coordinates: UTM
// zones computed in-process and arbitrary CRS definitions through proj.
package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.ngs.io/geo-skeletons/internal/domain"
)

// UTM constants for the WGS84 ellipsoid.
const (
	k0 = 0.9996
	e  = 0.00669438
	r  = 6378137.0

	falseEasting = 500000.0

	// MinLatitude and MaxLatitude bound the latitudes UTM is defined for.
	MinLatitude = -80.0
	MaxLatitude = 84.0
)

var (
	e2  = e * e
	e3  = e2 * e
	eP2 = e / (1 - e)

	sqrtE = math.Sqrt(1 - e)
	ep    = (1 - sqrtE) / (1 + sqrtE)
	ep2   = ep * ep
	ep3   = ep2 * ep
	ep4   = ep3 * ep
	ep5   = ep4 * ep

	m1 = 1 - e/4 - 3*e2/64 - 5*e3/256
	m2 = 3*e/8 + 3*e2/32 + 45*e3/1024
	m3 = 15*e2/256 + 45*e3/1024
	m4 = 35 * e3 / 3072

	p2 = 3.0/2*ep - 27.0/32*ep3 + 269.0/512*ep5
	p3 = 21.0/16*ep2 - 55.0/32*ep4
	p4 = 151.0/96*ep3 - 417.0/128*ep5
	p5 = 1097.0 / 512 * ep4
)

// zoneLetters indexes latitude bands of 8 degrees from -80. X covers 72-84.
const zoneLetters = "CDEFGHJKLMNPQRSTUVWXX"

// Zone is a UTM zone such as 33W.
type Zone struct {
	Number int
	Letter string
}

// Validate checks the number is 1-60 and the letter is a band C-X (no I or O).
func (z Zone) Validate() error {
	if z.Number < 1 || z.Number > 60 || len(z.Letter) != 1 || !strings.Contains(zoneLetters, z.Letter) {
		return &domain.InvalidZoneError{Number: z.Number, Letter: z.Letter}
	}
	return nil
}

// String formats the zone as in the utm_zone metadata entry, e.g. "33W".
func (z Zone) String() string {
	return fmt.Sprintf("%02d%s", z.Number, z.Letter)
}

// Northern reports whether the latitude band is north of the equator.
func (z Zone) Northern() bool {
	return z.Letter >= "N"
}

// ParseZone parses "33W", "33 W" or "33w".
func ParseZone(s string) (Zone, error) {
	s = strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	if len(s) < 2 {
		return Zone{}, fmt.Errorf("invalid UTM zone %q", s)
	}
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil {
		return Zone{}, fmt.Errorf("invalid UTM zone %q: %w", s, err)
	}
	z := Zone{Number: n, Letter: s[len(s)-1:]}
	return z, z.Validate()
}

// ZoneLetter returns the latitude band of lat, or "" outside [-80, 84].
func ZoneLetter(lat float64) string {
	if lat < MinLatitude || lat > MaxLatitude {
		return ""
	}
	return string(zoneLetters[int(lat+80)>>3])
}

// ZoneNumber returns the zone number of a point, including the Norway and
// Svalbard exceptions.
func ZoneNumber(lat, lon float64) int {
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	lon -= 180

	if lat >= 56 && lat < 64 && lon >= 3 && lon < 12 {
		return 32
	}
	if lat >= 72 && lat <= 84 && lon >= 0 {
		switch {
		case lon < 9:
			return 31
		case lon < 21:
			return 33
		case lon < 33:
			return 35
		case lon < 42:
			return 37
		}
	}
	return int((lon+180)/6) + 1
}

// ZoneOf returns the zone containing a point. Latitude is capped first.
func ZoneOf(lat, lon float64) Zone {
	lat, _ = capLatitude(lat)
	return Zone{Number: ZoneNumber(lat, lon), Letter: ZoneLetter(lat)}
}

// CentralLongitude of a zone number in degrees.
func CentralLongitude(number int) float64 {
	return float64((number-1)*6 - 180 + 3)
}

// modAngle wraps radians into [-pi, pi).
func modAngle(v float64) float64 {
	v = math.Mod(v+math.Pi, 2*math.Pi)
	if v < 0 {
		v += 2 * math.Pi
	}
	return v - math.Pi
}

func capLatitude(lat float64) (float64, bool) {
	switch {
	case lat > MaxLatitude:
		return MaxLatitude, true
	case lat < MinLatitude:
		return MinLatitude, true
	default:
		return lat, false
	}
}

// forward projects a northern-hemisphere latitude. The northing has no
// false northing applied.
func forward(lat, lon float64, number int) (float64, float64) {
	latRad := domain.Deg2Rad(lat)
	latSin, latCos := math.Sin(latRad), math.Cos(latRad)
	latTan := latSin / latCos
	latTan2 := latTan * latTan
	latTan4 := latTan2 * latTan2

	lonRad := domain.Deg2Rad(lon)
	centralRad := domain.Deg2Rad(CentralLongitude(number))

	n := r / math.Sqrt(1-e*latSin*latSin)
	c := eP2 * latCos * latCos

	a := latCos * modAngle(lonRad-centralRad)
	a2 := a * a
	a3 := a2 * a
	a4 := a3 * a
	a5 := a4 * a
	a6 := a5 * a

	m := r * (m1*latRad - m2*math.Sin(2*latRad) + m3*math.Sin(4*latRad) - m4*math.Sin(6*latRad))

	easting := k0*n*(a+a3/6*(1-latTan2+c)+a5/120*(5-18*latTan2+latTan4+72*c-58*eP2)) + falseEasting
	northing := k0 * (m + n*latTan*(a2/2+a4/24*(5-latTan2+9*c+4*c*c)+a6/720*(61-58*latTan2+latTan4+600*c-330*eP2)))
	return easting, northing
}

// inverse is the inverse of forward for a non-negative northing.
func inverse(easting, northing float64, number int) (float64, float64) {
	x := easting - falseEasting
	m := northing / k0
	mu := m / (r * m1)

	pRad := mu + p2*math.Sin(2*mu) + p3*math.Sin(4*mu) + p4*math.Sin(6*mu) + p5*math.Sin(8*mu)
	pSin, pCos := math.Sin(pRad), math.Cos(pRad)
	pSin2 := pSin * pSin
	pTan := pSin / pCos
	pTan2 := pTan * pTan
	pTan4 := pTan2 * pTan2

	epSin := 1 - e*pSin2
	n := r / math.Sqrt(epSin)
	rr := (1 - e) / epSin

	c := eP2 * pCos * pCos
	c2 := c * c

	d := x / (n * k0)
	d2 := d * d
	d3 := d2 * d
	d4 := d3 * d
	d5 := d4 * d
	d6 := d5 * d

	lat := pRad - (pTan/rr)*(d2/2-d4/24*(5+3*pTan2+10*c-4*c2-9*eP2)+d6/720*(61+90*pTan2+298*c+45*pTan4-252*eP2-3*c2))
	lon := (d - d3/6*(1+2*pTan2+c) + d5/120*(5-2*c+28*pTan2-3*c2+8*eP2+24*pTan4)) / pCos
	lon = modAngle(lon + domain.Deg2Rad(CentralLongitude(number)))

	return domain.Rad2Deg(lat), domain.Rad2Deg(lon)
}

// ToUTM projects one point into a zone. Southern latitudes are projected as
// their northern mirror and the northing is negated, so y < 0 south of the
// equator. Latitudes are not capped here.
func ToUTM(lat, lon float64, number int) (x, y float64) {
	if lat < 0 {
		x, y = forward(-lat, lon, number)
		return x, -y
	}
	return forward(lat, lon, number)
}

// FromUTM is the inverse of ToUTM.
func FromUTM(x, y float64, number int) (lat, lon float64) {
	if y < 0 {
		lat, lon = inverse(x, -y, number)
		return -lat, lon
	}
	return inverse(x, y, number)
}
