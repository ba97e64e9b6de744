package netcdf

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	native "github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"

	"go.ngs.io/geo-skeletons/internal/adapter/decode"
	"go.ngs.io/geo-skeletons/internal/skeleton"
)

// OpenNative is Open using the pure-Go reader, for builds without the C
// NetCDF library.
func OpenNative(path string, c *skeleton.Class, opts decode.Options) (*skeleton.Skeleton, error) {
	ds, err := ReadNative(path)
	if err != nil {
		return nil, err
	}
	s, err := decode.FromDataset(c, ds, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return s, nil
}

// ReadNative loads every numeric variable of a NetCDF classic or NetCDF-4
// file without cgo. Missing values become NaN.
func ReadNative(path string) (*decode.Dataset, error) {
	nc, err := native.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open NetCDF file: %w", err)
	}
	defer nc.Close()

	ds := decode.NewDataset()
	for _, name := range nc.ListVariables() {
		v, err := nc.GetVariable(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		vals, shape, ok := flatten(v.Values)
		if !ok {
			continue
		}
		if len(v.Dimensions) == 0 {
			shape = nil
		}
		if fv, ok := nativeFillValue(v.Attributes); ok {
			for j := range vals {
				if vals[j] == fv {
					vals[j] = math.NaN()
				}
			}
		}
		if err := ds.Add(name, v.Dimensions, shape, vals, nativeAttrs(v.Attributes)); err != nil {
			return nil, err
		}
	}
	ds.Attrs = nativeAttrs(nc.Attributes())
	return ds, nil
}

func nativeFillValue(attrs api.AttributeMap) (float64, bool) {
	if attrs == nil {
		return 0, false
	}
	for _, name := range fillAttrs {
		raw, ok := attrs.Get(name)
		if !ok {
			continue
		}
		if vals, _, ok := flatten(raw); ok && len(vals) > 0 {
			return vals[0], true
		}
	}
	return 0, false
}

func nativeAttrs(attrs api.AttributeMap) map[string]string {
	out := map[string]string{}
	if attrs == nil {
		return out
	}
	for _, k := range attrs.Keys() {
		if isFillAttr(k) {
			continue
		}
		raw, _ := attrs.Get(k)
		if s, ok := raw.(string); ok {
			out[k] = s
			continue
		}
		vals, _, ok := flatten(raw)
		if !ok {
			continue
		}
		parts := make([]string, len(vals))
		for i, v := range vals {
			parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		out[k] = strings.Join(parts, ",")
	}
	return out
}

// flatten converts a numeric scalar or (nested) slice to row-major float64
// values and its shape. Non-numeric values report false.
func flatten(v any) ([]float64, []int, bool) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, nil, false
	}
	var shape []int
	for t := rv; t.Kind() == reflect.Slice; {
		shape = append(shape, t.Len())
		if t.Len() == 0 {
			break
		}
		t = t.Index(0)
	}
	var out []float64
	var walk func(reflect.Value) bool
	walk = func(x reflect.Value) bool {
		switch x.Kind() {
		case reflect.Slice:
			for i := 0; i < x.Len(); i++ {
				if !walk(x.Index(i)) {
					return false
				}
			}
			return true
		case reflect.Float32, reflect.Float64:
			out = append(out, x.Float())
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			out = append(out, float64(x.Int()))
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			out = append(out, float64(x.Uint()))
		default:
			return false
		}
		return true
	}
	if !walk(rv) {
		return nil, nil, false
	}
	return out, shape, true
}
