package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMath(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		conv  Convention
		want  float64
	}{
		{"from north", 0, ConventionFrom, -math.Pi / 2},
		{"to north", 0, ConventionTo, math.Pi / 2},
		{"from east", 90, ConventionFrom, math.Pi},
		{"to east", 90, ConventionTo, 0},
		{"from south west", 225, ConventionFrom, math.Pi / 4},
		{"math identity", 1.234, ConventionMath, 1.234},
		{"wraps above 360", 450, ConventionTo, 0},
		{"negative compass", -90, ConventionTo, math.Pi},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToMath(tt.value, tt.conv)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ToMath(%v, %v) = %.10f, want %.10f", tt.value, tt.conv, got, tt.want)
			}
		})
	}
}

func TestToMath_RangeIsHalfOpen(t *testing.T) {
	for v := -720.0; v <= 720.0; v += 0.5 {
		for _, c := range []Convention{ConventionFrom, ConventionTo} {
			m := ToMath(v, c)
			assert.Greater(t, m, -math.Pi-1e-12, "value %v conv %v", v, c)
			assert.LessOrEqual(t, m, math.Pi+1e-12, "value %v conv %v", v, c)
		}
	}
}

func TestFromMath(t *testing.T) {
	// u=1, v=-1 points south-east; the wind comes from the north-west.
	m := math.Atan2(-1, 1)
	assert.InDelta(t, 315.0, FromMath(m, ConventionFrom), 1e-9)
	assert.InDelta(t, 135.0, FromMath(m, ConventionTo), 1e-9)
	assert.InDelta(t, m, FromMath(m, ConventionMath), 1e-12)
}

func TestConvertDirection_RoundTrip(t *testing.T) {
	conventions := []Convention{ConventionFrom, ConventionTo}
	for v := -400.0; v <= 400.0; v += 7.5 {
		for _, c1 := range conventions {
			for _, c2 := range append(conventions, ConventionMath) {
				back := ConvertDirection(ConvertDirection(v, c1, c2), c2, c1)
				diff := math.Abs(back - Mod360(v))
				if diff > 1e-9 && math.Abs(diff-360) > 1e-9 {
					t.Fatalf("round trip %v %v->%v gave %v, want %v", v, c1, c2, back, Mod360(v))
				}
			}
		}
	}
}

func TestConvertDirection_FromToIsHalfTurn(t *testing.T) {
	assert.InDelta(t, 180.0, ConvertDirection(0, ConventionFrom, ConventionTo), 1e-9)
	assert.InDelta(t, 90.0, ConvertDirection(270, ConventionTo, ConventionFrom), 1e-9)
}

func TestParseConvention(t *testing.T) {
	c, err := ParseConvention("FROM")
	require.NoError(t, err)
	assert.Equal(t, ConventionFrom, c)

	c, err = ParseConvention("")
	require.NoError(t, err)
	assert.Equal(t, ConventionNone, c)

	_, err = ParseConvention("sideways")
	assert.Error(t, err)
}

func TestMod360(t *testing.T) {
	assert.Equal(t, 0.0, Mod360(360))
	assert.Equal(t, 350.0, Mod360(-10))
	assert.Equal(t, 10.0, Mod360(730))
}

func TestTypedErrorsUnwrap(t *testing.T) {
	var err error = &IrreconcilableShapeError{Name: "hs", Original: []int{5, 5}, Expected: []int{2, 3}}
	assert.True(t, errors.Is(err, ErrIrreconcilableShape))

	var shapeErr *IrreconcilableShapeError
	require.True(t, errors.As(err, &shapeErr))
	assert.Equal(t, []int{5, 5}, shapeErr.Original)

	assert.True(t, errors.Is(&NameCollisionError{Name: "hs"}, ErrNameCollision))
	assert.False(t, errors.Is(&NameCollisionError{Name: "hs"}, ErrInvalidRange))
}

func TestAliasTable(t *testing.T) {
	table := DefaultAliases()
	name, ok := table.Resolve("SWH")
	require.True(t, ok)
	assert.Equal(t, "hs", name)

	_, ok = table.Resolve("not_a_variable")
	assert.False(t, ok)

	assert.Contains(t, table.Aliases("winddir"), "wind_direction")
	assert.Same(t, table, DefaultAliases())
}

func TestParameterMetadata(t *testing.T) {
	p, ok := GetParameter("dirp")
	require.True(t, ok)
	md := p.Metadata()
	assert.Equal(t, "deg", md["units"])
	assert.Equal(t, "from", md["direction_convention"])

	byStd, ok := ParameterByStandardName("sea_surface_wave_significant_height")
	require.True(t, ok)
	assert.Equal(t, "hs", byStd.Name)
}
