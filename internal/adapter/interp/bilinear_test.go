package interp

import (
	"math"
	"testing"
)

// TestBilinear_CenterPoint tests interpolation at the center of a cell
func TestBilinear_CenterPoint(t *testing.T) {
	cell := Cell{
		X0: 0.0, X1: 2.0,
		Y0: 0.0, Y1: 2.0,
		V00: 1.0, V10: 3.0,
		V01: 5.0, V11: 7.0,
	}

	// t=0.5, u=0.5 averages the corners: (1+3+5+7)/4 = 4
	result, err := Bilinear(cell, 1.0, 1.0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if math.Abs(result-4.0) > 1e-9 {
		t.Errorf("Center point: expected 4.0, got %.10f", result)
	}
}

// TestBilinear_DescendingCell tests a cell whose corners are given high to low
func TestBilinear_DescendingCell(t *testing.T) {
	cell := Cell{
		X0: 0.0, X1: 10.0,
		Y0: 10.0, Y1: 0.0,
		V00: 0.0, V10: 10.0,
		V01: 0.0, V11: 10.0,
	}

	tests := []struct {
		x, y     float64
		expected float64
	}{
		{5.0, 0.0, 5.0},
		{5.0, 5.0, 5.0},
		{2.5, 7.0, 2.5},
	}

	for _, tt := range tests {
		result, err := Bilinear(cell, tt.x, tt.y)
		if err != nil {
			t.Fatalf("Unexpected error at (%.1f, %.1f): %v", tt.x, tt.y, err)
		}
		if math.Abs(result-tt.expected) > 1e-9 {
			t.Errorf("At (%.1f, %.1f): expected %.10f, got %.10f", tt.x, tt.y, tt.expected, result)
		}
	}
}

// TestBilinear_OutOfBounds tests error handling for points outside the cell
func TestBilinear_OutOfBounds(t *testing.T) {
	cell := Cell{
		X0: 0.0, X1: 10.0,
		Y0: 0.0, Y1: 10.0,
		V00: 1.0, V10: 2.0,
		V01: 3.0, V11: 4.0,
	}

	tests := []struct {
		x, y float64
		name string
	}{
		{-1.0, 5.0, "x too small"},
		{11.0, 5.0, "x too large"},
		{5.0, -1.0, "y too small"},
		{5.0, 11.0, "y too large"},
	}

	for _, tt := range tests {
		if _, err := Bilinear(cell, tt.x, tt.y); err == nil {
			t.Errorf("%s: expected error for point (%.1f, %.1f), got nil", tt.name, tt.x, tt.y)
		}
	}

	if _, err := Bilinear(Cell{X0: 1, X1: 1, Y0: 0, Y1: 1}, 1, 0.5); err == nil {
		t.Errorf("Expected error for degenerate cell")
	}
}

// TestGrid_At tests interpolation on a y-major grid
func TestGrid_At(t *testing.T) {
	grid := &Grid{
		X: []float64{0.0, 1.0, 2.0},
		Y: []float64{0.0, 1.0, 2.0},
		Values: []float64{
			1.0, 2.0, 3.0, // y=0
			4.0, 5.0, 6.0, // y=1
			7.0, 8.0, 9.0, // y=2
		},
	}

	tests := []struct {
		x, y     float64
		expected float64
	}{
		{0.0, 0.0, 1.0},
		{1.0, 0.0, 2.0},
		{2.0, 0.0, 3.0},
		{0.0, 1.0, 4.0},
		{1.0, 1.0, 5.0},
		{2.0, 2.0, 9.0},
		{0.5, 0.5, 3.0},
	}

	for _, tt := range tests {
		result, err := grid.At(tt.x, tt.y)
		if err != nil {
			t.Fatalf("Unexpected error at (%.1f, %.1f): %v", tt.x, tt.y, err)
		}
		if math.Abs(result-tt.expected) > 1e-9 {
			t.Errorf("At (%.1f, %.1f): expected %.10f, got %.10f", tt.x, tt.y, tt.expected, result)
		}
	}

	if _, err := grid.At(3.0, 1.0); err == nil {
		t.Errorf("Expected error outside the grid")
	}
}

// TestGrid_DescendingLatitude tests a grid stored north to south
func TestGrid_DescendingLatitude(t *testing.T) {
	grid := &Grid{
		X:      []float64{5.0, 6.0},
		Y:      []float64{61.0, 60.0},
		Values: []float64{10, 10, 0, 0},
	}

	result, err := grid.At(5.5, 60.25)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if math.Abs(result-2.5) > 1e-9 {
		t.Errorf("Expected 2.5, got %.10f", result)
	}
}

// TestGrid_Validate tests grid validation
func TestGrid_Validate(t *testing.T) {
	tests := []struct {
		name    string
		grid    *Grid
		wantErr bool
	}{
		{
			name:    "valid grid",
			grid:    &Grid{X: []float64{0, 1, 2}, Y: []float64{0, 1}, Values: []float64{1, 2, 3, 4, 5, 6}},
			wantErr: false,
		},
		{
			name:    "too few x coords",
			grid:    &Grid{X: []float64{0}, Y: []float64{0, 1}, Values: []float64{1, 2}},
			wantErr: true,
		},
		{
			name:    "wrong value count",
			grid:    &Grid{X: []float64{0, 1}, Y: []float64{0, 1}, Values: []float64{1, 2}},
			wantErr: true,
		},
		{
			name:    "non-monotonic x",
			grid:    &Grid{X: []float64{0, 2, 1}, Y: []float64{0, 1}, Values: []float64{1, 2, 3, 4, 5, 6}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.grid.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestAtAll tests sampling two components at the same point
func TestAtAll(t *testing.T) {
	u := &Grid{X: []float64{0, 1}, Y: []float64{0, 1}, Values: []float64{1, 1, 1, 1}}
	v := &Grid{X: []float64{0, 1}, Y: []float64{0, 1}, Values: []float64{0, 2, 0, 2}}

	got, err := AtAll(0.5, 0.5, u, v)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if math.Abs(got[0]-1) > 1e-9 || math.Abs(got[1]-1) > 1e-9 {
		t.Errorf("Expected [1 1], got %v", got)
	}
}
