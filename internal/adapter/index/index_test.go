package index

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoints_Nearest(t *testing.T) {
	p, err := NewPoints([]float64{0, 10, 20, 30}, []float64{0, 0, 5, 5})
	require.NoError(t, err)
	assert.Equal(t, 4, p.Len())

	tests := []struct {
		name     string
		x, y     float64
		wantIdx  int
		wantDist float64
	}{
		{"exact", 10, 0, 1, 0},
		{"between", 18, 4, 2, math.Hypot(2, 1)},
		{"far away", 100, 100, 3, math.Hypot(70, 95)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i, d := p.Nearest(tt.x, tt.y)
			assert.Equal(t, tt.wantIdx, i)
			assert.InDelta(t, tt.wantDist, d, 1e-9)
		})
	}
}

func TestPoints_Empty(t *testing.T) {
	p, err := NewPoints(nil, nil)
	require.NoError(t, err)
	i, d := p.Nearest(1, 1)
	assert.Equal(t, -1, i)
	assert.True(t, math.IsNaN(d))

	_, err = NewPoints([]float64{1}, nil)
	assert.Error(t, err)
}

func TestPoints_Within(t *testing.T) {
	p, err := NewPoints([]float64{0, 10, 20, 30}, []float64{0, 0, 5, 5})
	require.NoError(t, err)
	got, err := p.Within(5, -1, 25, 6)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{1, 2}, got)
}

func TestHaversine(t *testing.T) {
	// One degree of latitude.
	assert.InDelta(t, 111.195, Haversine(5, 60, 5, 61), 1e-3)
	assert.InDelta(t, 0.0, Haversine(5, 60, 5, 60), 1e-12)
	// Across the antimeridian.
	assert.InDelta(t, Haversine(-0.5, 0, 0.5, 0), Haversine(179.5, 0, -179.5, 0), 1e-9)
}

func TestNearestGreatCircle(t *testing.T) {
	i, d := NearestGreatCircle(179.9, 0, []float64{-179.9, 170}, []float64{0, 0})
	assert.Equal(t, 0, i)
	assert.InDelta(t, Haversine(179.9, 0, -179.9, 0), d, 1e-12)

	i, _ = NearestGreatCircle(0, 0, nil, nil)
	assert.Equal(t, -1, i)
}
