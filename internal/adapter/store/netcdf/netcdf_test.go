package netcdf

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	cdf "github.com/fhs/go-netcdf/netcdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/geo-skeletons/internal/adapter/array"
	"go.ngs.io/geo-skeletons/internal/adapter/decode"
	"go.ngs.io/geo-skeletons/internal/schema"
	"go.ngs.io/geo-skeletons/internal/skeleton"
)

func waveClass(t *testing.T) *skeleton.Class {
	t.Helper()
	c := skeleton.Must(skeleton.NewGridClass("Waves").AddTime("time", schema.TagGrid))
	c = skeleton.Must(c.AddField(schema.Field{ID: "hs"}))
	return skeleton.Must(c.AddMask(schema.Mask{ID: "sea", Group: schema.GroupSpatial}))
}

// createSwhNC writes a lon-major FLOAT variable with a fill value, the way
// some model output is laid out.
func createSwhNC(t *testing.T, path string) {
	t.Helper()
	f, err := cdf.CreateFile(path, cdf.CLOBBER)
	if err != nil {
		t.Fatalf("create nc: %v", err)
	}
	defer f.Close()

	lonDim, _ := f.AddDim("longitude", 3)
	latDim, _ := f.AddDim("latitude", 2)
	vlon, _ := f.AddVar("longitude", cdf.DOUBLE, []cdf.Dim{lonDim})
	vlat, _ := f.AddVar("latitude", cdf.DOUBLE, []cdf.Dim{latDim})
	vswh, _ := f.AddVar("swh", cdf.FLOAT, []cdf.Dim{lonDim, latDim})
	if err := vswh.Attr("_FillValue").WriteFloat32s([]float32{-999}); err != nil {
		t.Fatalf("write fill: %v", err)
	}
	if err := vswh.Attr("units").WriteBytes([]byte("m")); err != nil {
		t.Fatalf("write units: %v", err)
	}
	if err := f.Attr("institution").WriteBytes([]byte("test")); err != nil {
		t.Fatalf("write global: %v", err)
	}
	if err := f.EndDef(); err != nil {
		t.Fatalf("enddef: %v", err)
	}

	if err := vlon.WriteFloat64s([]float64{5, 6, 7}); err != nil {
		t.Fatalf("write lon: %v", err)
	}
	if err := vlat.WriteFloat64s([]float64{60, 61}); err != nil {
		t.Fatalf("write lat: %v", err)
	}
	if err := vswh.WriteFloat32s([]float32{1, 2, 3, -999, 5, 6}); err != nil {
		t.Fatalf("write swh: %v", err)
	}
}

func TestWriteOpen_RoundTrip(t *testing.T) {
	c := waveClass(t)
	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s, err := c.New(skeleton.Coords{
		Lon:  []float64{5, 6, 7},
		Lat:  []float64{60, 61},
		Time: []time.Time{t0, t0.Add(time.Hour)},
	})
	require.NoError(t, err)
	hs := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	arr, err := array.NewEager([]int{2, 2, 3}, hs)
	require.NoError(t, err)
	require.NoError(t, s.Set("hs", arr))
	require.NoError(t, s.Set("sea_mask", [][]bool{{true, false, true}, {true, true, false}}))
	require.NoError(t, s.SetMetadata(map[string]string{"title": "round trip"}, "", true))

	path := filepath.Join(t.TempDir(), "waves.nc")
	require.NoError(t, Write(path, s))

	got, err := Open(path, c, decode.Options{})
	require.NoError(t, err)

	vals, err := got.Values("hs")
	require.NoError(t, err)
	assert.Equal(t, hs, vals)

	mask, err := got.Values("sea_mask")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0, 1, 1, 1, 0}, mask)

	times := got.Times()
	require.Len(t, times, 2)
	assert.True(t, times[0].Equal(t0))
	assert.True(t, times[1].Equal(t0.Add(time.Hour)))

	assert.Equal(t, "m", got.Metadata("hs")["units"])
	assert.Equal(t, "round trip", got.Metadata("")["title"])

	// The pure-Go reader sees the same variables.
	ds, err := ReadNative(path)
	require.NoError(t, err)
	require.Contains(t, ds.Vars, "hs")
	assert.Equal(t, []string{"time", "lat", "lon"}, ds.Vars["hs"].Dims)
	assert.Equal(t, hs, ds.Vars["hs"].Values)
	assert.Equal(t, []float64{1, 0, 1, 1, 1, 0}, ds.Vars["sea_mask"].Values)
	assert.Equal(t, TimeUnits, ds.Vars["time"].Attrs["units"])
	assert.Equal(t, "round trip", ds.Attrs["title"])

	pure, err := OpenNative(path, c, decode.Options{})
	require.NoError(t, err)
	vals, err = pure.Values("hs")
	require.NoError(t, err)
	assert.Equal(t, hs, vals)
}

func TestRead_FillValueAndLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swh.nc")
	createSwhNC(t, path)

	ds, err := Read(path)
	require.NoError(t, err)
	require.Contains(t, ds.Vars, "swh")
	assert.True(t, math.IsNaN(ds.Vars["swh"].Values[3]))
	assert.NotContains(t, ds.Vars["swh"].Attrs, "_FillValue")
	assert.Equal(t, "m", ds.Vars["swh"].Attrs["units"])
	assert.Equal(t, "test", ds.Attrs["institution"])

	c := skeleton.Must(skeleton.NewGridClass("Waves").AddField(schema.Field{ID: "hs"}))
	s, err := Open(path, c, decode.Options{})
	require.NoError(t, err)
	vals, err := s.Values("hs")
	require.NoError(t, err)
	// lon-major (lon, lat) becomes (lat, lon).
	assert.Equal(t, []float64{1, 3, 5, 2}, vals[:4])
	assert.True(t, math.IsNaN(vals[4]))
	assert.Equal(t, 6.0, vals[5])

	nat, err := ReadNative(path)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(nat.Vars["swh"].Values[3]))
	assert.Equal(t, []int{3, 2}, nat.Shape("swh"))
}

func TestWriteOpen_CartesianPointsKeepZone(t *testing.T) {
	c := skeleton.Must(skeleton.NewPointClass("Stations").AddField(schema.Field{ID: "depth"}))
	s, err := c.New(skeleton.Coords{X: []float64{500000, 510000}, Y: []float64{7000000, 7010000}},
		skeleton.WithUTM(33, "W"))
	require.NoError(t, err)
	require.NoError(t, s.Set("depth", []float64{100, 200}))

	path := filepath.Join(t.TempDir(), "stations.nc")
	require.NoError(t, Write(path, s))

	got, err := Open(path, c, decode.Options{})
	require.NoError(t, err)
	assert.False(t, got.Gridded())
	z, ok := got.Projection().Zone()
	require.True(t, ok)
	assert.Equal(t, "33W", z.String())

	x, y, err := got.XY()
	require.NoError(t, err)
	assert.Equal(t, []float64{500000, 510000}, x)
	assert.Equal(t, []float64{7000000, 7010000}, y)

	depth, err := got.Values("depth")
	require.NoError(t, err)
	assert.Equal(t, []float64{100, 200}, depth)
}

func TestFlatten(t *testing.T) {
	vals, shape, ok := flatten([][]int16{{1, 2}, {3, 4}, {5, 6}})
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, vals)
	assert.Equal(t, []int{3, 2}, shape)

	vals, shape, ok = flatten(float32(2.5))
	require.True(t, ok)
	assert.Equal(t, []float64{2.5}, vals)
	assert.Nil(t, shape)

	_, _, ok = flatten([]string{"a"})
	assert.False(t, ok)
}
