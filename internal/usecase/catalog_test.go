package usecase

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/geo-skeletons/internal/adapter/array"
	"go.ngs.io/geo-skeletons/internal/adapter/store/netcdf"
	"go.ngs.io/geo-skeletons/internal/domain"
	"go.ngs.io/geo-skeletons/internal/schema"
	"go.ngs.io/geo-skeletons/internal/skeleton"
)

const buoys = `name,lon,lat,hs
ekofisk,3.2,56.5,2.5
draugen,7.8,64.3,3.0
`

func fullArray(t *testing.T, vals []float64) array.NumericArray {
	t.Helper()
	arr, err := array.NewEager([]int{1, 2, 3}, vals)
	require.NoError(t, err)
	return arr
}

// writeDataDir writes a wind/wave grid, a station list, a broken station
// list and an unrelated file.
func writeDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	c := skeleton.Must(skeleton.NewGridClass("Forecast").AddTime("time", schema.TagGrid))
	for _, f := range []string{"hs", "u", "v"} {
		c = skeleton.Must(c.AddField(schema.Field{ID: f}))
	}
	s, err := c.New(skeleton.Coords{
		Lon:  []float64{0, 1, 2},
		Lat:  []float64{60, 61},
		Time: []time.Time{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	})
	require.NoError(t, err)
	require.NoError(t, s.Set("hs", fullArray(t, []float64{1, 2, 3, 4, 5, 6})))
	require.NoError(t, s.Set("u", fullArray(t, []float64{-10, -10, -10, -10, -10, -10})))
	require.NoError(t, s.Set("v", fullArray(t, []float64{0, 0, 0, 0, 0, 0})))
	require.NoError(t, s.SetMetadata(map[string]string{"title": "forecast"}, "", true))
	require.NoError(t, netcdf.Write(filepath.Join(dir, "forecast.nc"), s))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "buoys.csv"), []byte(buoys), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.csv"), []byte("lon,lat\n1,2\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.txt"), []byte("notes"), 0o644))
	return dir
}

func loadedCatalog(t *testing.T) *Catalog {
	t.Helper()
	cat := NewCatalog(Config{DataDir: writeDataDir(t), Mode: array.ModeLazy})
	n, err := cat.LoadDir()
	require.NoError(t, err)
	require.Equal(t, 2, n)
	return cat
}

func TestCatalog_LoadAndList(t *testing.T) {
	cat := loadedCatalog(t)
	assert.Equal(t, []string{"buoys", "forecast"}, cat.Names())

	list := cat.List()
	require.Len(t, list, 2)
	assert.Equal(t, "point", list[0].Topology)
	assert.Equal(t, []string{"hs"}, list[0].Fields)
	assert.Equal(t, "grid", list[1].Topology)
	assert.Equal(t, "spherical", list[1].Coordinates)
	assert.Equal(t, "lazy", list[1].Mode)
	assert.Equal(t, "forecast.nc", list[1].Source)
	assert.ElementsMatch(t, []string{"hs", "u", "v"}, list[1].Fields)

	_, err := NewCatalog(Config{}).LoadDir()
	assert.Error(t, err)
}

func TestCatalog_Describe(t *testing.T) {
	cat := loadedCatalog(t)
	info, err := cat.Describe("forecast")
	require.NoError(t, err)
	assert.Equal(t, []string{"wind"}, info.Magnitudes)
	assert.Equal(t, []string{"winddir"}, info.Directions)
	assert.Equal(t, "forecast", info.Metadata["title"])
	assert.Contains(t, info.Summary, "forecast")

	var lon *CoordinateInfo
	for i := range info.CoordinateAxes {
		if info.CoordinateAxes[i].Name == "lon" {
			lon = &info.CoordinateAxes[i]
		}
	}
	require.NotNil(t, lon)
	assert.Equal(t, 3, lon.Length)
	assert.Equal(t, 0.0, lon.Min)
	assert.Equal(t, 2.0, lon.Max)

	_, err = cat.Describe("missing")
	assert.ErrorIs(t, err, ErrDatasetNotFound)
}

func TestCatalog_Field(t *testing.T) {
	cat := loadedCatalog(t)

	hs, err := cat.Field("forecast", "hs", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"time", "lat", "lon"}, hs.Dims)
	assert.Equal(t, []int{1, 2, 3}, hs.Shape)
	assert.Equal(t, Values{1, 2, 3, 4, 5, 6}, hs.Values)

	wind, err := cat.Field("forecast", "wind", "")
	require.NoError(t, err)
	assert.InDelta(t, 10, wind.Values[0], 1e-6)

	dir, err := cat.Field("forecast", "winddir", "to")
	require.NoError(t, err)
	assert.Equal(t, "to", dir.Convention)
	assert.InDelta(t, 270, dir.Values[0], 1e-6)

	dir, err = cat.Field("forecast", "winddir", "")
	require.NoError(t, err)
	assert.InDelta(t, 90, dir.Values[0], 1e-6)

	_, err = cat.Field("forecast", "hs", "to")
	assert.ErrorIs(t, err, domain.ErrNotDirectional)

	_, err = cat.Field("forecast", "sst", "")
	assert.ErrorIs(t, err, domain.ErrUnknownName)

	_, err = cat.Field("forecast", "hs", "sideways")
	assert.Error(t, err)
}

func TestCatalog_Nearest(t *testing.T) {
	cat := loadedCatalog(t)

	res, err := cat.Nearest("forecast", NearestRequest{Lon: 1.1, Lat: 60.9})
	require.NoError(t, err)
	require.NotNil(t, res.IndexX)
	require.NotNil(t, res.IndexY)
	assert.Equal(t, 1, *res.IndexX)
	assert.Equal(t, 1, *res.IndexY)
	require.NotNil(t, res.Lat)
	assert.Equal(t, 61.0, *res.Lat)
	assert.Greater(t, res.DistanceKm, 0.0)
	assert.Less(t, res.DistanceKm, 20.0)

	res, err = cat.Nearest("buoys", NearestRequest{Lon: 7.7, Lat: 64.2, Fast: true})
	require.NoError(t, err)
	require.NotNil(t, res.Index)
	assert.Equal(t, 1, *res.Index)

	_, err = cat.Nearest("buoys", NearestRequest{Lon: 7.7, Lat: 95})
	assert.Error(t, err)
}

func TestCatalog_Sample(t *testing.T) {
	cat := loadedCatalog(t)

	res, err := cat.Sample("forecast", SampleRequest{Lon: 0.5, Lat: 60.5, Field: "hs"})
	require.NoError(t, err)
	assert.Equal(t, []string{"time"}, res.Dims)
	require.Len(t, res.Values, 1)
	assert.InDelta(t, 3, res.Values[0], 1e-9)

	_, err = cat.Sample("forecast", SampleRequest{Lon: 5, Lat: 60.5, Field: "hs"})
	assert.Error(t, err)

	_, err = cat.Sample("buoys", SampleRequest{Lon: 5, Lat: 60, Field: "hs"})
	assert.ErrorIs(t, err, ErrNotGridded)

	_, err = cat.Sample("forecast", SampleRequest{Lon: 0.5, Lat: 60.5})
	assert.Error(t, err)
}

func TestCatalog_XY(t *testing.T) {
	cat := loadedCatalog(t)

	res, err := cat.XY("forecast", "31V")
	require.NoError(t, err)
	assert.Equal(t, "31V", res.Zone)
	assert.Len(t, res.X, 6)
	assert.Len(t, res.Y, 6)

	res, err = cat.XY("buoys", "")
	require.NoError(t, err)
	assert.Len(t, res.X, 2)

	_, err = cat.XY("forecast", "99Z")
	assert.Error(t, err)
}

func TestValues_MarshalJSON(t *testing.T) {
	nan := Values{1.5, 0, 0}
	nan[1] = nan[1] / nan[2]
	b, err := json.Marshal(struct {
		V Values `json:"v"`
	}{V: nan})
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":[1.5,null,0]}`, string(b))

	b, err = json.Marshal(Values(nil))
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))
}

func TestCatalog_DefaultCRS(t *testing.T) {
	dir := t.TempDir()
	c := skeleton.Must(skeleton.NewPointClass("Rig").AddField(schema.Field{ID: "depth"}))
	s, err := c.New(skeleton.Coords{X: []float64{500000}, Y: []float64{6500000}})
	require.NoError(t, err)
	require.NoError(t, s.Set("depth", []float64{70}))
	path := filepath.Join(dir, "rig.nc")
	require.NoError(t, netcdf.Write(path, s))

	cat := NewCatalog(Config{DataDir: dir, DefaultCRS: "32N"})
	name, err := cat.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "rig", name)
	list := cat.List()
	require.Len(t, list, 1)
	assert.Equal(t, "UTM 32N", list[0].Projection)

	err = cat.with("rig", func(*entry) error { return errors.New("boom") })
	assert.EqualError(t, err, "boom")
}
