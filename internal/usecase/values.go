package usecase

import (
	"math"
	"strconv"
)

// Values is a float slice that encodes NaN and infinities as JSON null.
type Values []float64

// MarshalJSON implements json.Marshaler.
func (v Values) MarshalJSON() ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	buf := make([]byte, 0, 2+8*len(v))
	buf = append(buf, '[')
	for i, f := range v {
		if i > 0 {
			buf = append(buf, ',')
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			buf = append(buf, "null"...)
			continue
		}
		buf = strconv.AppendFloat(buf, roundToDecimal(f, 6), 'g', -1, 64)
	}
	return append(buf, ']'), nil
}

// roundToDecimal rounds a float to n decimal places.
func roundToDecimal(val float64, n int) float64 {
	pow := math.Pow(10, float64(n))
	return math.Round(val*pow) / pow
}
