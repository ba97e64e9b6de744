package netcdf

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	cdf "github.com/fhs/go-netcdf/netcdf"

	"go.ngs.io/geo-skeletons/internal/adapter/decode"
	"go.ngs.io/geo-skeletons/internal/skeleton"
)

// fillAttrs name the attributes marking missing values. They are applied
// while reading and not carried into the metadata.
var fillAttrs = []string{"_FillValue", "missing_value"}

// Open reads a NetCDF file and decodes it into a container of class c.
func Open(path string, c *skeleton.Class, opts decode.Options) (*skeleton.Skeleton, error) {
	ds, err := Read(path)
	if err != nil {
		return nil, err
	}
	s, err := decode.FromDataset(c, ds, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return s, nil
}

// Read loads every numeric variable of a NetCDF file. Missing values become
// NaN. Text and other non-numeric variables are skipped.
func Read(path string) (*decode.Dataset, error) {
	nc, err := cdf.OpenFile(path, cdf.NOWRITE)
	if err != nil {
		return nil, fmt.Errorf("failed to open NetCDF file: %w", err)
	}
	defer func() { _ = nc.Close() }()

	n, err := nc.NVars()
	if err != nil {
		return nil, fmt.Errorf("failed to count variables: %w", err)
	}
	ds := decode.NewDataset()
	for i := 0; i < n; i++ {
		v := nc.VarN(i)
		name, err := v.Name()
		if err != nil {
			return nil, fmt.Errorf("failed to get variable name: %w", err)
		}
		dims, shape, err := varDims(v)
		if err != nil {
			return nil, fmt.Errorf("failed to get dimensions of %s: %w", name, err)
		}
		total := 1
		for _, l := range shape {
			total *= l
		}
		vals, err := readFloat64s(v, total)
		if errors.Is(err, errUnsupported) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		if fv, ok := getFillValue(v); ok {
			for j := range vals {
				if vals[j] == fv {
					vals[j] = math.NaN()
				}
			}
		}
		attrs, err := readAttrs(v.NAttrs, v.AttrN)
		if err != nil {
			return nil, fmt.Errorf("failed to read attributes of %s: %w", name, err)
		}
		if err := ds.Add(name, dims, shape, vals, attrs); err != nil {
			return nil, err
		}
	}

	if ds.Attrs, err = readAttrs(nc.NAttrs, nc.AttrN); err != nil {
		return nil, fmt.Errorf("failed to read global attributes: %w", err)
	}
	return ds, nil
}

func varDims(v cdf.Var) ([]string, []int, error) {
	dims, err := v.Dims()
	if err != nil {
		return nil, nil, err
	}
	names := make([]string, len(dims))
	shape := make([]int, len(dims))
	for i, d := range dims {
		if names[i], err = d.Name(); err != nil {
			return nil, nil, err
		}
		l, err := d.Len()
		if err != nil {
			return nil, nil, err
		}
		shape[i] = int(l)
	}
	return names, shape, nil
}

var errUnsupported = errors.New("unsupported type")

// readFloat64s reads all n values of a numeric variable as float64.
func readFloat64s(v cdf.Var, n int) ([]float64, error) {
	t, err := v.Type()
	if err != nil {
		return nil, fmt.Errorf("failed to get var type: %w", err)
	}
	out := make([]float64, n)
	switch t {
	case cdf.DOUBLE:
		if err := v.ReadFloat64s(out); err != nil {
			return nil, err
		}
	case cdf.FLOAT:
		tmp := make([]float32, n)
		if err := v.ReadFloat32s(tmp); err != nil {
			return nil, err
		}
		for i, val := range tmp {
			out[i] = float64(val)
		}
	case cdf.INT:
		tmp := make([]int32, n)
		if err := v.ReadInt32s(tmp); err != nil {
			return nil, err
		}
		for i, val := range tmp {
			out[i] = float64(val)
		}
	case cdf.SHORT:
		tmp := make([]int16, n)
		if err := v.ReadInt16s(tmp); err != nil {
			return nil, err
		}
		for i, val := range tmp {
			out[i] = float64(val)
		}
	default:
		return nil, errUnsupported
	}
	return out, nil
}

// getFillValue returns the first fill attribute of v as float64.
func getFillValue(v cdf.Var) (float64, bool) {
	for _, name := range fillAttrs {
		a := v.Attr(name)
		n, err := a.Len()
		if err != nil || n == 0 {
			continue
		}
		if vals, err := attrFloats(a, int(n)); err == nil {
			return vals[0], true
		}
	}
	return 0, false
}

// readAttrs reads text and numeric attributes as strings. Numeric lists are
// comma separated.
func readAttrs(count func() (int, error), nth func(int) (cdf.Attr, error)) (map[string]string, error) {
	n, err := count()
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, n)
	for i := 0; i < n; i++ {
		a, err := nth(i)
		if err != nil {
			return nil, err
		}
		name := a.Name()
		if isFillAttr(name) {
			continue
		}
		l, err := a.Len()
		if err != nil {
			return nil, err
		}
		t, err := a.Type()
		if err != nil {
			return nil, err
		}
		if t == cdf.CHAR {
			buf := make([]byte, l)
			if err := a.ReadBytes(buf); err != nil {
				return nil, err
			}
			out[name] = strings.TrimRight(string(buf), "\x00")
			continue
		}
		vals, err := attrFloats(a, int(l))
		if err != nil {
			continue
		}
		parts := make([]string, len(vals))
		for j, v := range vals {
			parts[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		out[name] = strings.Join(parts, ",")
	}
	return out, nil
}

func attrFloats(a cdf.Attr, n int) ([]float64, error) {
	t, err := a.Type()
	if err != nil {
		return nil, err
	}
	out := make([]float64, n)
	switch t {
	case cdf.DOUBLE:
		err = a.ReadFloat64s(out)
	case cdf.FLOAT:
		tmp := make([]float32, n)
		err = a.ReadFloat32s(tmp)
		for i, v := range tmp {
			out[i] = float64(v)
		}
	case cdf.INT:
		tmp := make([]int32, n)
		err = a.ReadInt32s(tmp)
		for i, v := range tmp {
			out[i] = float64(v)
		}
	case cdf.SHORT:
		tmp := make([]int16, n)
		err = a.ReadInt16s(tmp)
		for i, v := range tmp {
			out[i] = float64(v)
		}
	default:
		return nil, errUnsupported
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func isFillAttr(name string) bool {
	for _, f := range fillAttrs {
		if name == f {
			return true
		}
	}
	return false
}

// Loader reads NetCDF files, with the pure-Go reader when Native is set.
type Loader struct {
	Native bool
}

// Load reads all numeric variables of path.
func (l Loader) Load(path string) (*decode.Dataset, error) {
	if l.Native {
		return ReadNative(path)
	}
	return Read(path)
}
