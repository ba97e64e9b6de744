package decode

import (
	"fmt"
	"math"
	"strings"
	"time"

	"go.ngs.io/geo-skeletons/internal/adapter/array"
	"go.ngs.io/geo-skeletons/internal/domain"
)

// resolver matches container names to dataset variables.
type resolver struct {
	ds      *Dataset
	mapping map[string]string
	aliases *domain.AliasTable
	names   []string
}

func newResolver(ds *Dataset, opts Options) *resolver {
	aliases := opts.Aliases
	if aliases == nil {
		aliases = domain.DefaultAliases()
	}
	return &resolver{ds: ds, mapping: opts.Mapping, aliases: aliases, names: ds.Names()}
}

// find returns the dataset variable holding name. It tries, in order, the
// explicit mapping, the alias table, a unique CF standard_name match and
// finally the name itself.
func (r *resolver) find(name string, p *domain.Parameter) (string, bool) {
	if v, ok := r.mapping[name]; ok {
		if _, exists := r.ds.Vars[v]; exists {
			return v, true
		}
	}
	for _, v := range r.names {
		if canon, ok := r.aliases.Resolve(v); ok && canon == name {
			return v, true
		}
	}
	if p != nil && p.StandardName != "" {
		var match []string
		for _, v := range r.names {
			if r.ds.Vars[v].Attrs["standard_name"] == p.StandardName {
				match = append(match, v)
			}
		}
		if len(match) == 1 {
			return match[0], true
		}
	}
	if _, ok := r.ds.Vars[name]; ok {
		return name, true
	}
	return "", false
}

// array wraps a dataset variable in its own shape.
func (r *resolver) array(name string) (array.NumericArray, error) {
	shape := r.ds.Shape(name)
	if len(shape) == 0 {
		shape = []int{1}
	}
	arr, err := array.NewEager(shape, r.ds.Vars[name].Values)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return arr, nil
}

var timeUnits = map[string]float64{
	"seconds": 1, "second": 1, "secs": 1, "s": 1,
	"minutes": 60, "minute": 60, "mins": 60,
	"hours": 3600, "hour": 3600, "hrs": 3600, "h": 3600,
	"days": 86400, "day": 86400, "d": 86400,
}

var epochLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006-1-2 15:4:5",
	"2006-1-2",
}

// decodeTime converts CF time values ("<unit> since <epoch>") to unix
// seconds. Without units the values are taken as unix seconds.
func decodeTime(vals []float64, units string) ([]float64, error) {
	units = strings.TrimSpace(units)
	if units == "" {
		return vals, nil
	}
	unit, since, ok := strings.Cut(units, " since ")
	if !ok {
		return nil, fmt.Errorf("unsupported time units %q", units)
	}
	scale, ok := timeUnits[strings.ToLower(strings.TrimSpace(unit))]
	if !ok {
		return nil, fmt.Errorf("unsupported time unit %q", unit)
	}
	since = strings.TrimSuffix(strings.TrimSpace(since), " UTC")
	var epoch time.Time
	var err error
	for _, layout := range epochLayouts {
		if epoch, err = time.Parse(layout, since); err == nil {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("unsupported time epoch %q", since)
	}
	offset := float64(epoch.Unix())
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = math.Round(offset + v*scale)
	}
	return out, nil
}
