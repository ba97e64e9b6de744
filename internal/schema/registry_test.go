package schema

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/geo-skeletons/internal/domain"
)

func mustRegister(t *testing.T) func(*Registry, error) *Registry {
	return func(r *Registry, err error) *Registry {
		t.Helper()
		require.NoError(t, err)
		return r
	}
}

func TestRegisterField_NameCollision(t *testing.T) {
	r := New(TopologyGrid)
	r = mustRegister(t)(r.RegisterField(Field{ID: "hs"}))

	tests := []struct {
		name string
		call func() error
	}{
		{"field twice", func() error { _, err := r.RegisterField(Field{ID: "hs"}); return err }},
		{"coordinate over field", func() error { _, err := r.RegisterCoordinate(Coordinate{ID: "hs"}); return err }},
		{"mask over field", func() error { _, err := r.RegisterMask(Mask{ID: "hs_mask", Opposite: "hs"}); return err }},
		{"reserved x", func() error { _, err := r.RegisterField(Field{ID: "x"}); return err }},
		{"reserved index", func() error { _, err := r.RegisterCoordinate(Coordinate{ID: "index"}); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrNameCollision), "got %v", err)
		})
	}
}

func TestRegister_CopyOnFirstWrite(t *testing.T) {
	base := mustRegister(t)(New(TopologyPoint).RegisterField(Field{ID: "hs"})).Share()

	child, err := base.RegisterField(Field{ID: "tp"})
	require.NoError(t, err)
	assert.NotSame(t, base, child)
	assert.False(t, child.Shared())
	assert.Equal(t, []string{"hs"}, base.Fields(GroupAll))
	assert.Equal(t, []string{"hs", "tp"}, child.Fields(GroupAll))

	// A private registry is mutated in place.
	again, err := child.RegisterField(Field{ID: "dirp"})
	require.NoError(t, err)
	assert.Same(t, child, again)

	sibling, err := base.RegisterField(Field{ID: "wind"})
	require.NoError(t, err)
	assert.Equal(t, []string{"hs", "wind"}, sibling.Fields(GroupAll))
	assert.Equal(t, []string{"hs", "tp", "dirp"}, child.Fields(GroupAll))
}

func TestCoordinates_CanonicalOrder(t *testing.T) {
	r := New(TopologyGrid)
	r = mustRegister(t)(r.RegisterCoordinate(Coordinate{ID: "freq", Tag: TagGrid}))
	r = mustRegister(t)(r.RegisterCoordinate(Coordinate{ID: "time", Tag: TagGridpoint, Time: true}))
	r = mustRegister(t)(r.RegisterCoordinate(Coordinate{ID: "z", Tag: TagGridpoint}))

	tests := []struct {
		group Group
		want  []string
	}{
		{GroupAll, []string{"time", "y", "x", "freq", "z"}},
		{GroupSpatial, []string{"y", "x"}},
		{GroupNonSpatial, []string{"time", "freq", "z"}},
		{GroupGrid, []string{"y", "x", "freq"}},
		{GroupGridpoint, []string{"time", "z"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.group), func(t *testing.T) {
			assert.Equal(t, tt.want, r.Coordinates(tt.group))
		})
	}

	sph := r.WithSpherical(true)
	assert.Equal(t, []string{"time", "lat", "lon", "freq", "z"}, sph.Coordinates(GroupAll))
	assert.Equal(t, []string{"time", "y", "x", "freq", "z"}, r.Coordinates(GroupAll), "original untouched")
	assert.Same(t, sph, sph.WithSpherical(true))
}

func TestCoordinates_PointTopology(t *testing.T) {
	r := mustRegister(t)(New(TopologyPoint).RegisterCoordinate(Coordinate{ID: "time", Tag: TagGridpoint, Time: true}))
	assert.Equal(t, []string{"time", "index"}, r.Coordinates(GroupAll))
	assert.Equal(t, []string{"x", "y"}, r.PositionFields())
	assert.Equal(t, []string{"lon", "lat"}, r.WithSpherical(true).PositionFields())

	g, err := r.CoordinateGroup("x")
	require.NoError(t, err)
	assert.Equal(t, GroupSpatial, g)
}

func TestShapeOf(t *testing.T) {
	r := mustRegister(t)(New(TopologyGrid).RegisterField(Field{ID: "hs", Group: GroupSpatial}))
	shape, err := r.ShapeOf(GroupSpatial, map[string]int{"x": 3, "y": 2})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, shape)

	_, err = r.ShapeOf(GroupSpatial, map[string]int{"x": 3})
	assert.True(t, errors.Is(err, domain.ErrMissingCoordinate))

	dims, err := r.DimsOf("hs")
	require.NoError(t, err)
	assert.Equal(t, []string{"y", "x"}, dims)
	assert.Equal(t, 6, Size(shape))
	assert.Equal(t, 1, Size(nil))
}

func TestRegisterMask(t *testing.T) {
	r := mustRegister(t)(New(TopologyGrid).RegisterField(Field{ID: "hs"}))
	lo := 0.0
	r = mustRegister(t)(r.RegisterMask(Mask{
		ID:          "sea",
		Opposite:    "land",
		Default:     true,
		TriggeredBy: "hs",
		Range:       NewValidRange(&lo, nil),
	}))

	assert.Equal(t, []string{"sea_mask", "land_mask"}, r.Masks(GroupAll))
	assert.Equal(t, []string{"sea_mask"}, r.StoredMasks(GroupAll))

	d, ok := r.Lookup("land_mask")
	require.True(t, ok)
	opp := d.(Mask)
	assert.False(t, opp.Primary)
	assert.Equal(t, "sea_mask", opp.Of)
	assert.False(t, opp.Default)

	def, err := r.DefaultValue("sea_mask")
	require.NoError(t, err)
	assert.Equal(t, 1.0, def)

	triggered := r.TriggeredMasks("hs")
	require.Len(t, triggered, 1)
	assert.Equal(t, "sea_mask", triggered[0].ID)
}

func TestRegisterMask_InvalidRange(t *testing.T) {
	lo, hi := 5.0, 5.0
	_, err := New(TopologyGrid).RegisterMask(Mask{ID: "ok", Range: NewValidRange(&lo, &hi)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidRange))

	var rangeErr *domain.InvalidRangeError
	require.True(t, errors.As(err, &rangeErr))
	assert.Equal(t, "ok_mask", rangeErr.Name)
}

func TestValidRange_Contains(t *testing.T) {
	lo, hi := 0.0, 10.0
	r := NewValidRange(&lo, &hi)
	assert.True(t, r.Contains(0))
	assert.True(t, r.Contains(10))
	r.LoInclusive = false
	r.HiInclusive = false
	assert.False(t, r.Contains(0))
	assert.False(t, r.Contains(10))
	assert.True(t, r.Contains(5))
	assert.False(t, r.Contains(math.NaN()))

	open := NewValidRange(nil, nil)
	assert.True(t, open.Contains(-1e300))
}

func TestRegisterMagnitudeAndDirection(t *testing.T) {
	r := New(TopologyPoint)
	r = mustRegister(t)(r.RegisterField(Field{ID: "u", Default: 1}))
	r = mustRegister(t)(r.RegisterField(Field{ID: "v", Default: -1}))

	_, err := r.RegisterMagnitude(Magnitude{ID: "wind", X: "u", Y: "w"})
	assert.True(t, errors.Is(err, domain.ErrUnknownName))

	r = mustRegister(t)(r.RegisterMagnitude(Magnitude{ID: "wind", X: "u", Y: "v"}))
	r = mustRegister(t)(r.RegisterDirection(Direction{ID: "wdir", X: "u", Y: "v"}))

	d, _ := r.Lookup("wdir")
	assert.Equal(t, domain.ConventionFrom, d.(Direction).Convention)
	assert.Equal(t, "wind", d.(Direction).Magnitude)
	m, _ := r.Lookup("wind")
	assert.Equal(t, "wdir", m.(Magnitude).Direction)

	g, err := r.CoordinateGroup("wdir")
	require.NoError(t, err)
	assert.Equal(t, GroupAll, g)
	assert.Equal(t, []string{"wind"}, r.Magnitudes())
	assert.Equal(t, []string{"wdir"}, r.Directions())
}

func TestRegisterField_DirectionalParameter(t *testing.T) {
	p, _ := domain.GetParameter("dirp")
	r := mustRegister(t)(New(TopologyGrid).RegisterField(Field{ID: "wdir", Param: &p}))
	d, _ := r.Lookup("wdir")
	assert.Equal(t, domain.ConventionFrom, d.(Field).Convention)

	param, err := r.Parameter("wdir")
	require.NoError(t, err)
	assert.Equal(t, "deg", param.Unit)
}

func TestRegisterField_InvalidGroup(t *testing.T) {
	_, err := New(TopologyGrid).RegisterField(Field{ID: "hs", Group: GroupNonSpatial})
	assert.Error(t, err)
}

func TestFieldsAndMasks_Groups(t *testing.T) {
	r := New(TopologyGrid)
	r = mustRegister(t)(r.RegisterField(Field{ID: "hs", Group: GroupSpatial}))
	r = mustRegister(t)(r.RegisterField(Field{ID: "tp", Group: GroupGrid}))
	r = mustRegister(t)(r.RegisterField(Field{ID: "efth"}))
	r = mustRegister(t)(r.RegisterField(Field{ID: "ef", Group: GroupGridpoint}))
	r = mustRegister(t)(r.RegisterMask(Mask{ID: "sea", Group: GroupSpatial, Opposite: "land"}))
	r = mustRegister(t)(r.RegisterMask(Mask{ID: "ice", Group: GroupGrid}))
	r = mustRegister(t)(r.RegisterMask(Mask{ID: "output"}))

	tests := []struct {
		group  Group
		fields []string
		masks  []string
	}{
		{GroupAll, []string{"hs", "tp", "efth", "ef"}, []string{"sea_mask", "land_mask", "ice_mask", "output_mask"}},
		{GroupSpatial, []string{"hs"}, []string{"sea_mask", "land_mask"}},
		{GroupNonSpatial, []string{"tp", "efth", "ef"}, []string{"ice_mask", "output_mask"}},
		{GroupGrid, []string{"hs", "tp"}, []string{"sea_mask", "land_mask", "ice_mask"}},
		{GroupGridpoint, []string{"ef"}, nil},
	}
	for _, tt := range tests {
		t.Run(string(tt.group), func(t *testing.T) {
			assert.Equal(t, tt.fields, r.Fields(tt.group))
			assert.Equal(t, tt.masks, r.Masks(tt.group))
		})
	}
	assert.Equal(t, []string{"sea_mask", "ice_mask"}, r.StoredMasks(GroupGrid))
}

func TestRegisterMask_UnknownTrigger(t *testing.T) {
	r := mustRegister(t)(New(TopologyGrid).RegisterField(Field{ID: "u"}))
	r = mustRegister(t)(r.RegisterField(Field{ID: "v"}))
	r = mustRegister(t)(r.RegisterMagnitude(Magnitude{ID: "wind", X: "u", Y: "v"}))

	for _, trigger := range []string{"depth", "wind"} {
		t.Run(trigger, func(t *testing.T) {
			next, err := r.RegisterMask(Mask{ID: "sea", TriggeredBy: trigger})
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrUnknownName), "got %v", err)
			assert.Same(t, r, next)
			_, ok := r.Lookup("sea_mask")
			assert.False(t, ok)
		})
	}
}
