package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/geo-skeletons/internal/domain"
)

func TestZoneOf(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		want     Zone
	}{
		{"north atlantic", 53, -31, Zone{25, "U"}},
		{"bergen", 60.4, 5.3, Zone{32, "V"}},
		{"svalbard", 78, 15, Zone{33, "X"}},
		{"oslo", 59.9, 10.7, Zone{32, "V"}},
		{"cape town", -33.9, 18.4, Zone{34, "H"}},
		{"capped north", 89, 10, Zone{33, "X"}},
		{"antimeridian", 0, 180, Zone{1, "N"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ZoneOf(tt.lat, tt.lon))
		})
	}
}

func TestZoneValidateAndParse(t *testing.T) {
	assert.NoError(t, Zone{33, "W"}.Validate())
	assert.ErrorIs(t, Zone{61, "W"}.Validate(), domain.ErrInvalidZone)
	assert.ErrorIs(t, Zone{33, "I"}.Validate(), domain.ErrInvalidZone)
	assert.ErrorIs(t, Zone{33, ""}.Validate(), domain.ErrInvalidZone)

	z, err := ParseZone("33w")
	require.NoError(t, err)
	assert.Equal(t, Zone{33, "W"}, z)
	assert.Equal(t, "33W", z.String())
	assert.Equal(t, "05V", Zone{5, "V"}.String())
	assert.True(t, z.Northern())
	assert.False(t, Zone{33, "M"}.Northern())

	_, err = ParseZone("W")
	assert.Error(t, err)
}

func TestToUTM_KnownPoint(t *testing.T) {
	x, y := ToUTM(60.0, 5.0, 32)
	assert.InDelta(t, 276979.9, x, 1)
	assert.InDelta(t, 6658157.2, y, 1)

	x, y = ToUTM(-60.0, 5.0, 32)
	assert.InDelta(t, 276979.9, x, 1)
	assert.InDelta(t, -6658157.2, y, 1)
}

func TestUTM_RoundTrip(t *testing.T) {
	points := []struct{ lat, lon float64 }{
		{60, 5}, {-33.9, 18.4}, {0.5, 14}, {-0.5, 16}, {78, 15}, {-75, 170},
	}
	for _, p := range points {
		z := ZoneOf(p.lat, p.lon)
		x, y := ToUTM(p.lat, p.lon, z.Number)
		lat, lon := FromUTM(x, y, z.Number)
		if math.Abs(lat-p.lat) > 1e-6 || math.Abs(lon-p.lon) > 1e-6 {
			t.Errorf("round trip (%g, %g) -> (%g, %g)", p.lat, p.lon, lat, lon)
		}
	}
}

func TestProjection_Unset(t *testing.T) {
	p := NewProjection(nil)
	assert.Equal(t, StateUnset, p.State())
	_, _, err := p.ToProjected([]float64{5}, []float64{60})
	assert.ErrorIs(t, err, domain.ErrNoProjectionSet)
	_, _, err = p.ToGeographic([]float64{5}, []float64{60})
	assert.ErrorIs(t, err, domain.ErrNoProjectionSet)
	assert.Nil(t, p.Metadata())
}

func TestProjection_BothHemispheres(t *testing.T) {
	p := NewProjection(nil)
	require.NoError(t, p.Set(Zone{33, "N"}))

	lon := []float64{14, 15, 16}
	lat := []float64{-1, 0, 1}
	x, y, err := p.ToProjected(lon, lat)
	require.NoError(t, err)
	assert.Less(t, y[0], 0.0)
	assert.InDelta(t, 0.0, y[1], 1e-6)
	assert.InDelta(t, -y[0], y[2], 1e-6*math.Abs(y[2])+1e-3)

	lon2, lat2, err := p.ToGeographic(x, y)
	require.NoError(t, err)
	for i := range lon {
		assert.InDelta(t, lon[i], lon2[i], 1e-6)
		assert.InDelta(t, lat[i], lat2[i], 1e-6)
	}
}

func TestProjection_CapsLatitude(t *testing.T) {
	p := NewProjection(nil)
	require.NoError(t, p.Set("33X"))
	_, y1, err := p.ToProjected([]float64{15}, []float64{88})
	require.NoError(t, err)
	_, y2, err := p.ToProjected([]float64{15}, []float64{84})
	require.NoError(t, err)
	assert.InDelta(t, y2[0], y1[0], 1e-9)
}

func TestProjection_AutoDetect(t *testing.T) {
	p := NewProjection(nil)
	z, err := p.AutoDetect([]float64{4, 5, 6, 170}, []float64{60, 61, 59, -89})
	require.NoError(t, err)
	assert.Equal(t, Zone{32, "V"}, z)
	assert.Equal(t, map[string]string{"utm_zone": "32V"}, p.Metadata())

	// Majority in the south.
	z, err = p.AutoDetect([]float64{18, 19, 5}, []float64{-34, -33, 10})
	require.NoError(t, err)
	assert.Equal(t, "H", z.Letter)

	// Only polar points: capped mean.
	z, err = p.AutoDetect([]float64{10, 10}, []float64{88, 89})
	require.NoError(t, err)
	assert.Equal(t, "X", z.Letter)

	_, err = p.AutoDetect(nil, nil)
	assert.Error(t, err)
}

func TestMeanLongitude(t *testing.T) {
	assert.InDelta(t, 5.0, MeanLongitude([]float64{4, 6}), 1e-12)
	assert.InDelta(t, 180.0, MeanLongitude([]float64{179, -179}), 1e-12)
	assert.InDelta(t, -179.0, MeanLongitude([]float64{179, -177}), 1e-12)
	assert.Equal(t, 180.0, NormalizeLon(-180))
	assert.Equal(t, -170.0, NormalizeLon(190))
}

func TestProjection_SetVariants(t *testing.T) {
	tests := []struct {
		name  string
		def   any
		state State
	}{
		{"zone", Zone{33, "w"}, StateUTM},
		{"zone string", "33W", StateUTM},
		{"epsg int", 32633, StateCRS},
		{"epsg string", "EPSG:25833", StateCRS},
		{"proj string", "+proj=utm +zone=33 +ellps=WGS84 +datum=WGS84 +units=m +no_defs", StateCRS},
		{"descriptor zone", map[string]any{"zone_number": 33, "zone_letter": "W"}, StateUTM},
		{"descriptor epsg", map[string]any{"epsg": 4326}, StateCRS},
		{"descriptor utm_zone", map[string]string{"utm_zone": "32V"}, StateUTM},
		{"reset", nil, StateUnset},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProjection(nil)
			require.NoError(t, p.Set(tt.def))
			assert.Equal(t, tt.state, p.State())
		})
	}

	p := NewProjection(nil)
	assert.Error(t, p.Set(12345))
	assert.Error(t, p.Set("not a crs"))
	assert.Error(t, p.Set(map[string]any{"foo": 1}))
	assert.ErrorIs(t, p.Set(Zone{0, "W"}), domain.ErrInvalidZone)
	assert.Error(t, p.Set(3.5))
}

func TestCRS_MatchesInternalUTM(t *testing.T) {
	c, err := NewEPSG(32633)
	require.NoError(t, err)
	x, y, err := c.Forward([]float64{15.5}, []float64{60.2})
	require.NoError(t, err)

	ux, uy := ToUTM(60.2, 15.5, 33)
	assert.InDelta(t, ux, x[0], 1)
	assert.InDelta(t, uy, y[0], 1)

	lon, lat, err := c.Inverse(x, y)
	require.NoError(t, err)
	assert.InDelta(t, 15.5, lon[0], 1e-5)
	assert.InDelta(t, 60.2, lat[0], 1e-5)
}
