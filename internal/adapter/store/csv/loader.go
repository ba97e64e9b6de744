// Package csv loads point containers from CSV station lists.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"go.ngs.io/geo-skeletons/internal/adapter/decode"
	"go.ngs.io/geo-skeletons/internal/schema"
	"go.ngs.io/geo-skeletons/internal/skeleton"
)

const (
	// StationDim is the dimension of every column variable.
	StationDim = "station"
	// StationNamesAttr holds the comma separated station names.
	StationNamesAttr = "station_names"
)

// nameColumns are accepted as the header of the first column.
var nameColumns = []string{"name", "station", "station_id"}

// Loader reads station list files.
type Loader struct{}

// Load reads a station list file.
func (Loader) Load(path string) (*decode.Dataset, error) {
	//nolint:gosec // G304: path comes from the configured data directory.
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer func() { _ = file.Close() }()

	ds, err := Read(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ds, nil
}

// Open reads a station list into a point container of class c.
func Open(path string, c *skeleton.Class, opts decode.Options) (*skeleton.Skeleton, error) {
	if c.Topology() != schema.TopologyPoint {
		return nil, fmt.Errorf("station lists can only be read into point containers, %s is %s", c.Name(), c.Topology())
	}
	ds, err := Loader{}.Load(path)
	if err != nil {
		return nil, err
	}
	return decode.FromDataset(c, ds, opts)
}

// Read parses a station list. The first column holds station names and every
// other column must be numeric; each becomes a variable over StationDim.
// Empty cells are NaN. Lines starting with '#' are skipped.
func Read(r io.Reader) (*decode.Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if len(header) < 3 {
		return nil, fmt.Errorf("invalid CSV header: need a name column and at least two coordinates, got %v", header)
	}
	first := strings.ToLower(strings.TrimSpace(header[0]))
	valid := false
	for _, n := range nameColumns {
		if first == n {
			valid = true
		}
	}
	if !valid {
		return nil, fmt.Errorf("invalid CSV header: expected column 0 to be one of %v, got %s", nameColumns, header[0])
	}
	columns := make([]string, len(header)-1)
	seen := make(map[string]bool, len(columns))
	for i, h := range header[1:] {
		h = strings.TrimSpace(h)
		if h == "" || seen[h] {
			return nil, fmt.Errorf("invalid CSV header: column %d is empty or repeated", i+1)
		}
		seen[h] = true
		columns[i] = h
	}

	var names []string
	values := make([][]float64, len(columns))
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		if len(record) != len(header) {
			return nil, fmt.Errorf("invalid CSV record: expected %d columns, got %d", len(header), len(record))
		}

		name := strings.TrimSpace(record[0])
		for i, cell := range record[1:] {
			cell = strings.TrimSpace(cell)
			v := math.NaN()
			if cell != "" {
				if v, err = strconv.ParseFloat(cell, 64); err != nil {
					return nil, fmt.Errorf("invalid %s for station %s: %w", columns[i], name, err)
				}
			}
			values[i] = append(values[i], v)
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil, errors.New("no stations found in CSV")
	}

	ds := decode.NewDataset()
	for i, col := range columns {
		if err := ds.Add(col, []string{StationDim}, []int{len(names)}, values[i], nil); err != nil {
			return nil, err
		}
	}
	ds.Attrs[StationNamesAttr] = strings.Join(names, ",")
	return ds, nil
}
