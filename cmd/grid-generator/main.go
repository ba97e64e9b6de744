// Package main generates a synthetic wind and wave forecast grid as NetCDF.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	"go.ngs.io/geo-skeletons/internal/adapter/array"
	"go.ngs.io/geo-skeletons/internal/adapter/index"
	"go.ngs.io/geo-skeletons/internal/adapter/store/netcdf"
	"go.ngs.io/geo-skeletons/internal/schema"
	"go.ngs.io/geo-skeletons/internal/skeleton"
)

// RegionalGrid defines the geographic bounds and resolution.
type RegionalGrid struct {
	LatMin     float64
	LatMax     float64
	LonMin     float64
	LonMax     float64
	Resolution float64 // degrees
}

// Storm is a moving cyclone driving the synthetic fields.
type Storm struct {
	Lon, Lat     float64 // start position
	DLon, DLat   float64 // degrees per hour
	MaxWind      float64 // m/s
	RadiusKm     float64 // radius of maximum wind
	IslandLon    float64
	IslandLat    float64
	IslandRadius float64 // km
}

func main() {
	out := flag.String("out", "./data/forecast.nc", "Output NetCDF file")
	region := flag.String("region", "northsea", "Region: northsea, norwegian, or custom")
	latMin := flag.Float64("lat-min", 54.0, "Minimum latitude (custom region)")
	latMax := flag.Float64("lat-max", 62.0, "Maximum latitude (custom region)")
	lonMin := flag.Float64("lon-min", -2.0, "Minimum longitude (custom region)")
	lonMax := flag.Float64("lon-max", 10.0, "Maximum longitude (custom region)")
	resolution := flag.Float64("resolution", 0.25, "Grid resolution in degrees")
	hours := flag.Int("hours", 24, "Number of hourly time steps")
	start := flag.String("start", "2024-01-01T00:00:00Z", "Start time (RFC3339)")
	maxWind := flag.Float64("max-wind", 30.0, "Maximum storm wind speed in m/s")
	flag.Parse()

	var grid RegionalGrid
	switch *region {
	case "northsea":
		grid = RegionalGrid{LatMin: 54, LatMax: 62, LonMin: -2, LonMax: 10, Resolution: *resolution}
	case "norwegian":
		grid = RegionalGrid{LatMin: 62, LatMax: 72, LonMin: 0, LonMax: 16, Resolution: *resolution}
	case "custom":
		grid = RegionalGrid{LatMin: *latMin, LatMax: *latMax, LonMin: *lonMin, LonMax: *lonMax, Resolution: *resolution}
	default:
		log.Fatalf("Unknown region: %s (use northsea, norwegian, or custom)", *region)
	}
	if *hours < 1 {
		log.Fatalf("hours must be at least 1")
	}

	t0, err := time.Parse(time.RFC3339, *start)
	if err != nil {
		log.Fatalf("Invalid start time: %v", err)
	}

	midLon := (grid.LonMin + grid.LonMax) / 2
	midLat := (grid.LatMin + grid.LatMax) / 2
	storm := Storm{
		Lon:          grid.LonMin,
		Lat:          midLat - (grid.LatMax-grid.LatMin)/4,
		DLon:         (grid.LonMax - grid.LonMin) / float64(*hours),
		DLat:         (grid.LatMax - grid.LatMin) / (2 * float64(*hours)),
		MaxWind:      *maxWind,
		RadiusKm:     150,
		IslandLon:    midLon,
		IslandLat:    midLat,
		IslandRadius: 60,
	}

	log.Printf("Generating forecast grid for region: %s", *region)
	log.Printf("Grid: %.1f°-%.1f°N, %.1f°-%.1f°E, resolution: %.2f°",
		grid.LatMin, grid.LatMax, grid.LonMin, grid.LonMax, grid.Resolution)

	s, err := generate(grid, storm, t0, *hours)
	if err != nil {
		log.Fatalf("Failed to generate grid: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}
	if err := netcdf.Write(*out, s); err != nil {
		log.Fatalf("Failed to write NetCDF: %v", err)
	}

	log.Printf("\n%s", s.Summary())
	log.Printf("=== Generation Complete ===")
	log.Printf("File created: %s", *out)
	log.Printf("Grid size: %d × %d points, %d time steps", s.NY(), s.NX(), *hours)
}

// forecastClass is the schema of the generated file.
func forecastClass() (*skeleton.Class, error) {
	c, err := skeleton.NewGridClass("Forecast").AddTime("time", schema.TagGrid)
	if err != nil {
		return nil, err
	}
	for _, f := range []schema.Field{
		{ID: "hs"},
		{ID: "tp"},
		{ID: "u"},
		{ID: "v"},
		{ID: "depth", Group: schema.GroupSpatial},
	} {
		if c, err = c.AddField(f); err != nil {
			return nil, err
		}
	}
	if c, err = c.AddMagnitude(schema.Magnitude{ID: "wind", X: "u", Y: "v"}, &schema.Direction{ID: "winddir"}); err != nil {
		return nil, err
	}
	zero := 0.0
	return c.AddMask(schema.Mask{
		ID:          "sea",
		Group:       schema.GroupSpatial,
		Default:     true,
		Opposite:    "land",
		TriggeredBy: "depth",
		Range:       schema.NewValidRange(&zero, nil),
	})
}

// generate builds the container: a storm moving across the grid with
// cyclonic winds and a wind sea growing with wind speed, around an island.
func generate(grid RegionalGrid, storm Storm, t0 time.Time, hours int) (*skeleton.Skeleton, error) {
	c, err := forecastClass()
	if err != nil {
		return nil, err
	}

	times := make([]time.Time, hours)
	for i := range times {
		times[i] = t0.Add(time.Duration(i) * time.Hour)
	}
	s, err := c.New(skeleton.Coords{
		Lon:  []float64{grid.LonMin, grid.LonMax},
		Lat:  []float64{grid.LatMin, grid.LatMax},
		Time: times,
	}, skeleton.WithName("forecast"))
	if err != nil {
		return nil, err
	}
	if err := s.SetSpacing(skeleton.Spacing{DLon: grid.Resolution, DLat: grid.Resolution}); err != nil {
		return nil, fmt.Errorf("failed to set spacing: %w", err)
	}

	lon, err := s.Lon()
	if err != nil {
		return nil, err
	}
	lat, err := s.Lat()
	if err != nil {
		return nil, err
	}
	nx, ny := len(lon), len(lat)

	depth := make([]float64, nx*ny)
	for i := 0; i < ny; i++ {
		for j := 0; j < nx; j++ {
			d := index.Haversine(lon[j], lat[i], storm.IslandLon, storm.IslandLat)
			// Shelf sea deepening away from the island, land inside it.
			depth[i*nx+j] = 4 * (d - storm.IslandRadius)
		}
	}
	if err := s.Set("depth", depth); err != nil {
		return nil, err
	}

	n := hours * nx * ny
	hs, tp, u, v := make([]float64, n), make([]float64, n), make([]float64, n), make([]float64, n)
	for k := 0; k < hours; k++ {
		cLon := storm.Lon + float64(k)*storm.DLon
		cLat := storm.Lat + float64(k)*storm.DLat
		for i := 0; i < ny; i++ {
			for j := 0; j < nx; j++ {
				idx := (k*ny+i)*nx + j
				r := index.Haversine(lon[j], lat[i], cLon, cLat)
				speed := rankine(r, storm.RadiusKm, storm.MaxWind)

				// Counter-clockwise flow around the centre, turned 20° inwards.
				east := (lon[j] - cLon) * math.Cos(lat[i]*math.Pi/180)
				north := lat[i] - cLat
				theta := math.Atan2(north, east) + math.Pi/2 + 20*math.Pi/180
				u[idx] = speed * math.Cos(theta)
				v[idx] = speed * math.Sin(theta)

				if depth[i*nx+j] < 0 {
					hs[idx], tp[idx] = math.NaN(), math.NaN()
					continue
				}
				hs[idx] = 0.3 + 0.0246*speed*speed
				tp[idx] = 3 + 3.3*math.Sqrt(hs[idx])
			}
		}
	}

	shape := []int{hours, ny, nx}
	for name, vals := range map[string][]float64{"hs": hs, "tp": tp, "u": u, "v": v} {
		arr, err := array.NewEager(shape, vals)
		if err != nil {
			return nil, err
		}
		if err := s.Set(name, arr); err != nil {
			return nil, fmt.Errorf("failed to set %s: %w", name, err)
		}
	}

	if err := s.SetMetadata(map[string]string{
		"title":       "Synthetic storm forecast",
		"institution": "geo-skeletons grid-generator",
		"history":     fmt.Sprintf("generated %s", time.Now().UTC().Format(time.RFC3339)),
	}, "", true); err != nil {
		return nil, err
	}
	return s, nil
}

// rankine is a Rankine vortex wind profile: linear inside the radius of
// maximum wind, decaying as 1/r outside it.
func rankine(r, radius, maxWind float64) float64 {
	if r <= radius {
		return maxWind * r / radius
	}
	return maxWind * radius / r
}
