// Package store picks the file reader for a dataset.
package store

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.ngs.io/geo-skeletons/internal/adapter/decode"
	"go.ngs.io/geo-skeletons/internal/adapter/store/csv"
	"go.ngs.io/geo-skeletons/internal/adapter/store/netcdf"
)

// Loader reads a file into a named-array dataset.
type Loader interface {
	Load(path string) (*decode.Dataset, error)
}

// ForPath returns the loader for the file extension of path. NetCDF files
// use the pure-Go reader when native is set.
func ForPath(path string, native bool) (Loader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".nc", ".nc4", ".cdf":
		return netcdf.Loader{Native: native}, nil
	case ".csv":
		return csv.Loader{}, nil
	default:
		return nil, fmt.Errorf("no loader for %s", filepath.Base(path))
	}
}

// Supported reports whether path has a known extension.
func Supported(path string) bool {
	_, err := ForPath(path, false)
	return err == nil
}
