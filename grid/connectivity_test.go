package grid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"grid-planner/grid"
)

func TestNeighbors_Counts(t *testing.T) {
	plane := grid.Dims{X: 5, Y: 5, Z: 1}
	volume := grid.Dims{X: 5, Y: 5, Z: 5}
	center := grid.Coord{X: 2, Y: 2}

	cases := []struct {
		conn grid.Connectivity
		dims grid.Dims
		at   grid.Coord
		want int
	}{
		{grid.Conn4, plane, center, 4},
		{grid.Conn8, plane, center, 8},
		{grid.Conn4, plane, grid.Coord{}, 2},
		{grid.Conn8, plane, grid.Coord{}, 3},
		{grid.Conn6, volume, grid.Coord{X: 2, Y: 2, Z: 2}, 6},
		{grid.Conn26, volume, grid.Coord{X: 2, Y: 2, Z: 2}, 26},
		{grid.Conn26, volume, grid.Coord{}, 7},
	}
	for _, tc := range cases {
		t.Run(tc.conn.String(), func(t *testing.T) {
			got := grid.AppendNeighbors(nil, tc.dims, tc.at, tc.conn)
			assert.Len(t, got, tc.want)
			for _, n := range got {
				assert.True(t, tc.dims.Contains(n))
				assert.Equal(t, 1, grid.Chebyshev(tc.at, n))
			}
		})
	}
}

func TestConnectivity_AxisMovesFirst(t *testing.T) {
	offs := grid.Conn8.Offsets()
	for i, o := range offs[:4] {
		assert.Equal(t, 1, grid.AxesChanged(grid.Coord{}, o), "offset %d", i)
	}
	for _, o := range offs[4:] {
		assert.Equal(t, 2, grid.AxesChanged(grid.Coord{}, o))
	}
	assert.False(t, grid.Connectivity(5).Valid())
	assert.Nil(t, grid.Connectivity(5).Offsets())
}

func TestRegion_ExpandClamp(t *testing.T) {
	d := grid.Dims{X: 10, Y: 10, Z: 1}
	r := grid.Region{Min: grid.Coord{X: 1, Y: 1}, Max: grid.Coord{X: 2, Y: 2}}

	got, ok := r.Expand(3, true).Clamp(d)
	assert.True(t, ok)
	assert.Equal(t, grid.Region{Max: grid.Coord{X: 5, Y: 5}}, got)

	_, ok = grid.Region{Min: grid.Coord{X: 20}, Max: grid.Coord{X: 30}}.Clamp(d)
	assert.False(t, ok)

	assert.Equal(t, 100, d.Full().Len())
	assert.Equal(t, grid.Coord{X: 3, Y: 7}, d.Coord(d.Index(grid.Coord{X: 3, Y: 7})))
}
