// Package netcdf reads and writes containers as NetCDF files.
package netcdf

import (
	"fmt"
	"sort"

	cdf "github.com/fhs/go-netcdf/netcdf"

	"go.ngs.io/geo-skeletons/internal/schema"
	"go.ngs.io/geo-skeletons/internal/skeleton"
)

// TimeUnits is written on the time coordinate, stored as unix seconds.
const TimeUnits = "seconds since 1970-01-01 00:00:00"

// Write stores the coordinates, stored variables and attributes of s in a new
// NetCDF file, replacing any existing file. Masks are written as INT 0/1.
func Write(path string, s *skeleton.Skeleton) (err error) {
	nc, err := cdf.CreateFile(path, cdf.CLOBBER)
	if err != nil {
		return fmt.Errorf("failed to create NetCDF file: %w", err)
	}
	defer func() {
		if cerr := nc.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close NetCDF file: %w", cerr)
		}
	}()

	var writes []func() error
	dims := make(map[string]cdf.Dim)
	timeName, hasTime := s.Registry().TimeCoordinate()
	for _, name := range s.Coordinates(schema.GroupAll) {
		vals, ok := s.CoordinateValues(name)
		if !ok {
			return fmt.Errorf("coordinate %s has no values", name)
		}
		d, err := nc.AddDim(name, uint64(len(vals)))
		if err != nil {
			return fmt.Errorf("failed to add dimension %s: %w", name, err)
		}
		dims[name] = d
		v, err := nc.AddVar(name, cdf.DOUBLE, []cdf.Dim{d})
		if err != nil {
			return fmt.Errorf("failed to add coordinate %s: %w", name, err)
		}
		md := s.Metadata(name)
		if hasTime && name == timeName {
			md["units"] = TimeUnits
		}
		if err := writeAttrs(v.Attr, md); err != nil {
			return fmt.Errorf("failed to write attributes of %s: %w", name, err)
		}
		writes = append(writes, func() error { return v.WriteFloat64s(vals) })
	}

	for _, sv := range s.Variables() {
		vd := make([]cdf.Dim, len(sv.Dims))
		for i, name := range sv.Dims {
			d, ok := dims[name]
			if !ok {
				return fmt.Errorf("variable %s uses unknown dimension %s", sv.Name, name)
			}
			vd[i] = d
		}
		vals, err := s.StoredValues(sv.Name)
		if err != nil {
			return err
		}
		typ := cdf.DOUBLE
		if sv.Mask {
			typ = cdf.INT
		}
		v, err := nc.AddVar(sv.Name, typ, vd)
		if err != nil {
			return fmt.Errorf("failed to add variable %s: %w", sv.Name, err)
		}
		if err := writeAttrs(v.Attr, s.Metadata(sv.Name)); err != nil {
			return fmt.Errorf("failed to write attributes of %s: %w", sv.Name, err)
		}
		if sv.Mask {
			writes = append(writes, func() error { return v.WriteInt32s(toInt32(vals)) })
		} else {
			writes = append(writes, func() error { return v.WriteFloat64s(vals) })
		}
	}

	if err := writeAttrs(nc.Attr, s.Metadata("")); err != nil {
		return fmt.Errorf("failed to write global attributes: %w", err)
	}
	if err := nc.EndDef(); err != nil {
		return fmt.Errorf("failed to end define mode: %w", err)
	}
	for _, w := range writes {
		if err := w(); err != nil {
			return fmt.Errorf("failed to write data: %w", err)
		}
	}
	return nil
}

// writeAttrs writes text attributes in key order.
func writeAttrs(attr func(string) cdf.Attr, md map[string]string) error {
	keys := make([]string, 0, len(md))
	for k := range md {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if md[k] == "" {
			continue
		}
		if err := attr(k).WriteBytes([]byte(md[k])); err != nil {
			return fmt.Errorf("attribute %s: %w", k, err)
		}
	}
	return nil
}

func toInt32(vals []float64) []int32 {
	out := make([]int32, len(vals))
	for i, v := range vals {
		if v != 0 {
			out[i] = 1
		}
	}
	return out
}
