package spatial_test

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grid-planner/grid"
	"grid-planner/spatial"
)

func volume(t *testing.T) *spatial.Index {
	t.Helper()
	ix, err := spatial.New(spatial.Box{
		Min: mgl64.Vec3{-5, -5, 0},
		Max: mgl64.Vec3{5, 5, 4},
	}, 1, false)
	require.NoError(t, err)
	return ix
}

func TestNew_Validation(t *testing.T) {
	_, err := spatial.New(spatial.Box{Min: mgl64.Vec3{1, 0, 0}}, 1, true)
	assert.ErrorIs(t, err, spatial.ErrInvalidBounds)

	for _, cs := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err = spatial.New(spatial.Box{Max: mgl64.Vec3{1, 1, 1}}, cs, true)
		assert.ErrorIs(t, err, spatial.ErrInvalidCellSize, "cell size %v", cs)
	}
}

func TestNew_RoundsBoundsUp(t *testing.T) {
	ix, err := spatial.New(spatial.Box{Max: mgl64.Vec3{10, 7, 3}}, 3, true)
	require.NoError(t, err)

	assert.Equal(t, grid.Dims{X: 4, Y: 3, Z: 1}, ix.Dims())
	assert.Equal(t, mgl64.Vec3{12, 9, 3}, ix.Bounds().Max)
}

func TestToCell_RoundTrip(t *testing.T) {
	for _, planar := range []bool{true, false} {
		ix, err := spatial.New(spatial.Box{
			Min: mgl64.Vec3{-3.5, 2, -1},
			Max: mgl64.Vec3{4, 9, 5},
		}, 0.75, planar)
		require.NoError(t, err)

		ix.Dims().Full().Each(func(c grid.Coord) bool {
			got, err := ix.ToCell(ix.ToWorld(c))
			require.NoError(t, err)
			assert.Equal(t, c, got)
			return true
		})
	}
}

func TestToCell_Edges(t *testing.T) {
	ix := volume(t)

	c, err := ix.ToCell(mgl64.Vec3{5, 5, 4})
	require.NoError(t, err)
	assert.Equal(t, grid.Coord{X: 9, Y: 9, Z: 3}, c, "max edge maps to the last cell")

	c, err = ix.ToCell(mgl64.Vec3{-5, -5, 0})
	require.NoError(t, err)
	assert.Equal(t, grid.Coord{}, c)

	for _, p := range []mgl64.Vec3{{5.01, 0, 0}, {0, -5.01, 0}, {0, 0, 4.5}, {math.NaN(), 0, 0}} {
		_, err = ix.ToCell(p)
		assert.ErrorIs(t, err, grid.ErrOutOfBounds, "position %v", p)
	}
}

func TestToCell_PlanarIgnoresZ(t *testing.T) {
	ix, err := spatial.New(spatial.Box{Max: mgl64.Vec3{4, 4, 10}}, 1, true)
	require.NoError(t, err)

	c, err := ix.ToCell(mgl64.Vec3{1.5, 2.5, 500})
	require.NoError(t, err)
	assert.Equal(t, grid.Coord{X: 1, Y: 2}, c)
}

func TestStepFactor(t *testing.T) {
	ix := volume(t)
	o := grid.Coord{X: 1, Y: 1, Z: 1}

	assert.Equal(t, 1.0, ix.StepFactor(o, grid.Coord{X: 2, Y: 1, Z: 1}))
	assert.InDelta(t, math.Sqrt2, ix.StepFactor(o, grid.Coord{X: 2, Y: 2, Z: 1}), 1e-12)
	assert.InDelta(t, math.Sqrt(3), ix.StepFactor(o, grid.Coord{X: 2, Y: 2, Z: 2}), 1e-12)

	custom, err := spatial.New(ix.Bounds(), 1, false, spatial.WithDiagonalCost(1.5), spatial.WithCornerCost(-2))
	require.NoError(t, err)
	assert.Equal(t, 1.5, custom.StepFactor(o, grid.Coord{X: 0, Y: 0, Z: 1}))
	assert.InDelta(t, math.Sqrt(3), custom.CornerCost(), 1e-12, "invalid factors keep the default")
}

func TestBoxRegion(t *testing.T) {
	ix := volume(t)

	r, ok := ix.BoxRegion(spatial.Box{Min: mgl64.Vec3{-0.5, -0.5, 0.5}, Max: mgl64.Vec3{0.5, 1.5, 1.5}})
	require.True(t, ok)
	assert.Equal(t, grid.Region{
		Min: grid.Coord{X: 4, Y: 4, Z: 0},
		Max: grid.Coord{X: 5, Y: 6, Z: 1},
	}, r)

	r, ok = ix.BoxRegion(spatial.Box{Min: mgl64.Vec3{-50, -50, -50}, Max: mgl64.Vec3{50, 50, 50}})
	require.True(t, ok)
	assert.Equal(t, ix.Dims().Full(), r)

	_, ok = ix.BoxRegion(spatial.Box{Min: mgl64.Vec3{20, 20, 0}, Max: mgl64.Vec3{30, 30, 1}})
	assert.False(t, ok)

	box := ix.RegionBox(grid.Region{Min: grid.Coord{X: 1}, Max: grid.Coord{X: 2, Y: 1}})
	assert.Equal(t, mgl64.Vec3{-4, -5, 0}, box.Min)
	assert.Equal(t, mgl64.Vec3{-2, -3, 1}, box.Max)
}

func TestClamp(t *testing.T) {
	ix := volume(t)
	assert.Equal(t, mgl64.Vec3{5, -5, 2}, ix.Clamp(mgl64.Vec3{9, -9, 2}))
}

func TestBoxAround(t *testing.T) {
	box := spatial.BoxAround(mgl64.Vec3{3, 0, 1}, mgl64.Vec3{1, 2, 1}, 1)
	assert.Equal(t, mgl64.Vec3{0, -1, 0}, box.Min)
	assert.Equal(t, mgl64.Vec3{4, 3, 2}, box.Max)
	assert.True(t, box.Contains(mgl64.Vec3{2, 2, 2}))
	assert.False(t, box.Contains(mgl64.Vec3{2, 2, 2.1}))
}
