package geo

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ctessum/geom/proj"
)

// wgs84 is the geographic reference all CRS transforms go through.
const wgs84 = "+proj=longlat +ellps=WGS84 +datum=WGS84 +no_defs"

// CRS is a coordinate reference system parsed from a proj definition.
type CRS struct {
	Name       string // e.g. "EPSG:25833", or the proj string itself.
	Definition string // proj string.

	sr     *proj.SR
	toProj proj.Transformer
	toGeo  proj.Transformer
}

// EPSGDefinition returns the proj string of the EPSG codes known here:
// 4326, 4258, 3857, WGS84 / UTM (326zz, 327zz) and ETRS89 / UTM (258zz).
func EPSGDefinition(code int) (string, bool) {
	switch {
	case code == 4326:
		return wgs84, true
	case code == 4258:
		return "+proj=longlat +ellps=GRS80 +towgs84=0,0,0,0,0,0,0 +no_defs", true
	case code == 3857:
		return "+proj=merc +a=6378137 +b=6378137 +lat_ts=0.0 +lon_0=0.0 +x_0=0.0 +y_0=0 +k=1.0 +units=m +nadgrids=@null +no_defs", true
	case code >= 32601 && code <= 32660:
		return fmt.Sprintf("+proj=utm +zone=%d +ellps=WGS84 +datum=WGS84 +units=m +no_defs", code-32600), true
	case code >= 32701 && code <= 32760:
		return fmt.Sprintf("+proj=utm +zone=%d +south +ellps=WGS84 +datum=WGS84 +units=m +no_defs", code-32700), true
	case code >= 25828 && code <= 25838:
		return fmt.Sprintf("+proj=utm +zone=%d +ellps=GRS80 +towgs84=0,0,0,0,0,0,0 +units=m +no_defs", code-25800), true
	}
	return "", false
}

// ParseCRS accepts "EPSG:25833", "25833" or a proj string.
func ParseCRS(def string) (*CRS, error) {
	def = strings.TrimSpace(def)
	upper := strings.ToUpper(def)
	code := strings.TrimPrefix(upper, "EPSG:")
	if n, err := strconv.Atoi(code); err == nil {
		return NewEPSG(n)
	}
	if !strings.HasPrefix(def, "+") {
		return nil, fmt.Errorf("unrecognized CRS %q", def)
	}
	return newCRS(def, def)
}

// NewEPSG creates a CRS from an EPSG code.
func NewEPSG(code int) (*CRS, error) {
	def, ok := EPSGDefinition(code)
	if !ok {
		return nil, fmt.Errorf("unsupported EPSG code %d", code)
	}
	return newCRS(fmt.Sprintf("EPSG:%d", code), def)
}

func newCRS(name, def string) (*CRS, error) {
	sr, err := proj.Parse(def)
	if err != nil {
		return nil, fmt.Errorf("failed to parse CRS %q: %w", name, err)
	}
	geoSR, err := proj.Parse(wgs84)
	if err != nil {
		return nil, fmt.Errorf("failed to parse WGS84: %w", err)
	}
	toProj, err := geoSR.NewTransform(sr)
	if err != nil {
		return nil, fmt.Errorf("failed to create transform to %s: %w", name, err)
	}
	toGeo, err := sr.NewTransform(geoSR)
	if err != nil {
		return nil, fmt.Errorf("failed to create transform from %s: %w", name, err)
	}
	return &CRS{Name: name, Definition: def, sr: sr, toProj: toProj, toGeo: toGeo}, nil
}

// Geographic reports whether the CRS is itself in longitude/latitude.
func (c *CRS) Geographic() bool {
	return c.sr.Name == "longlat"
}

// Forward converts lon/lat to CRS coordinates.
func (c *CRS) Forward(lon, lat []float64) ([]float64, []float64, error) {
	return apply(c.toProj, lon, lat)
}

// Inverse converts CRS coordinates to lon/lat.
func (c *CRS) Inverse(x, y []float64) ([]float64, []float64, error) {
	return apply(c.toGeo, x, y)
}

func apply(t proj.Transformer, a, b []float64) ([]float64, []float64, error) {
	outA := make([]float64, len(a))
	outB := make([]float64, len(b))
	for i := range a {
		var err error
		outA[i], outB[i], err = t(a[i], b[i])
		if err != nil {
			return nil, nil, fmt.Errorf("failed to transform point %d (%g, %g): %w", i, a[i], b[i], err)
		}
	}
	return outA, outB, nil
}
