package search_test

import (
	"context"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grid-planner/costfield"
	"grid-planner/grid"
	"grid-planner/obstacle"
	"grid-planner/search"
	"grid-planner/spatial"
	"grid-planner/terrain"
)

func openCell(cost float64) grid.Cell {
	return grid.Cell{Walkable: true, Cost: cost, Clearance: math.MaxUint8}
}

// uniform returns a fully walkable grid of the given size with unit cells
func uniform(t *testing.T, x, y, z int, planar bool, block ...grid.Coord) (*grid.Grid, *spatial.Index) {
	t.Helper()
	ix, err := spatial.New(spatial.Box{Max: mgl64.Vec3{float64(x), float64(y), float64(z)}}, 1, planar)
	require.NoError(t, err)
	g, err := grid.New(ix.Dims())
	require.NoError(t, err)
	_, err = g.Update(func(tx *grid.Tx) error {
		var werr error
		ix.Dims().Full().Each(func(c grid.Coord) bool {
			werr = tx.SetCell(c, openCell(1))
			return werr == nil
		})
		if werr != nil {
			return werr
		}
		for _, c := range block {
			if err := tx.SetCell(c, grid.Cell{}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
	return g, ix
}

// wallWithGap blocks column 5 of a 10x10 grid except row 3
func wallWithGap() []grid.Coord {
	var wall []grid.Coord
	for y := 0; y < 10; y++ {
		if y != 3 {
			wall = append(wall, grid.Coord{X: 5, Y: y})
		}
	}
	return wall
}

func TestRun_DiagonalScenario(t *testing.T) {
	g, ix := uniform(t, 10, 10, 1, true)

	out := search.Run(context.Background(), g.Snapshot(), ix, search.Params{
		Start:        grid.Coord{},
		Goal:         grid.Coord{X: 9, Y: 9},
		Connectivity: grid.Conn8,
	})
	require.NoError(t, out.Err)
	assert.Equal(t, search.Succeeded, out.State())
	require.Len(t, out.Path, 10, "nine diagonal steps")
	for i, c := range out.Path {
		assert.Equal(t, grid.Coord{X: i, Y: i}, c)
	}
	assert.InDelta(t, 9*math.Sqrt2, out.Cost, 1e-9)
	assert.Equal(t, uint64(1), out.Version)
}

func TestRun_WallWithGap(t *testing.T) {
	g, ix := uniform(t, 10, 10, 1, true, wallWithGap()...)

	out := search.Run(context.Background(), g.Snapshot(), ix, search.Params{
		Start:        grid.Coord{},
		Goal:         grid.Coord{X: 9, Y: 9},
		Connectivity: grid.Conn8,
	})
	require.NoError(t, out.Err)
	assert.Contains(t, out.Path, grid.Coord{X: 5, Y: 3})
	for _, c := range out.Path {
		assert.False(t, c.X == 5 && c.Y != 3, "path crosses the wall at %v", c)
	}
	assert.InDelta(t, search.PathCost(g.Snapshot(), ix, out.Path, 0), out.Cost, 1e-9)
}

func TestRun_ClearanceLargerThanGap(t *testing.T) {
	ix, err := spatial.New(spatial.Box{Max: mgl64.Vec3{10, 10, 1}}, 1, true)
	require.NoError(t, err)
	g, err := grid.New(ix.Dims())
	require.NoError(t, err)
	store := obstacle.NewStore()
	require.NoError(t, store.Add(
		obstacle.Rect("south", obstacle.KindStatic, mgl64.Vec3{5, 0, 0}, mgl64.Vec3{6, 3, 1}),
		obstacle.Rect("north", obstacle.KindStatic, mgl64.Vec3{5, 4, 0}, mgl64.Vec3{6, 10, 1}),
	))
	b, err := costfield.New(g, ix, terrain.Flat{}, store,
		costfield.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)
	_, err = b.RebuildAll(context.Background())
	require.NoError(t, err)

	params := search.Params{
		Start:        grid.Coord{X: 2, Y: 2},
		Goal:         grid.Coord{X: 7, Y: 7},
		Connectivity: grid.Conn8,
	}
	out := search.Run(context.Background(), g.Snapshot(), ix, params)
	require.NoError(t, out.Err)
	assert.Contains(t, out.Path, grid.Coord{X: 5, Y: 3})

	params.Clearance = 1
	out = search.Run(context.Background(), g.Snapshot(), ix, params)
	assert.ErrorIs(t, out.Err, search.ErrNoPathFound)
	assert.Equal(t, search.Failed, out.State())
	assert.Nil(t, out.Path, "no partial paths")
	assert.Positive(t, out.Expansions)
}

func TestRun_CostMatchesEdges(t *testing.T) {
	ix, err := spatial.New(spatial.Box{Max: mgl64.Vec3{24, 24, 10}}, 1, true)
	require.NoError(t, err)
	g, err := grid.New(ix.Dims())
	require.NoError(t, err)
	hills, err := terrain.NewNoise(21, terrain.DefaultNoiseParams())
	require.NoError(t, err)
	b, err := costfield.New(g, ix, hills, nil, costfield.WithMaxSlope(89),
		costfield.WithSurfaces(costfield.SurfaceTable{grid.SurfaceWater: {Multiplier: 3}}),
		costfield.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)
	_, err = b.RebuildAll(context.Background())
	require.NoError(t, err)

	snap := g.Snapshot()
	out := search.Run(context.Background(), snap, ix, search.Params{
		Start:        grid.Coord{X: 1, Y: 1},
		Goal:         grid.Coord{X: 22, Y: 20},
		Connectivity: grid.Conn8,
		ClimbWeight:  0.5,
	})
	require.NoError(t, out.Err)
	assert.InDelta(t, search.PathCost(snap, ix, out.Path, 0.5), out.Cost, 1e-9)

	for i := 1; i < len(out.Path); i++ {
		assert.Equal(t, 1, grid.Chebyshev(out.Path[i-1], out.Path[i]))
	}
}

func TestRun_ConnectivityMetrics(t *testing.T) {
	g, ix := uniform(t, 6, 6, 1, true)
	out := search.Run(context.Background(), g.Snapshot(), ix, search.Params{
		Goal:         grid.Coord{X: 5, Y: 3},
		Connectivity: grid.Conn4,
	})
	require.NoError(t, out.Err)
	assert.Equal(t, 8.0, out.Cost)
	assert.Len(t, out.Path, 9)

	vg, vix := uniform(t, 5, 5, 5, false)
	out = search.Run(context.Background(), vg.Snapshot(), vix, search.Params{
		Goal:         grid.Coord{X: 4, Y: 4, Z: 4},
		Connectivity: grid.Conn26,
	})
	require.NoError(t, out.Err)
	assert.Len(t, out.Path, 5)
	assert.InDelta(t, 4*math.Sqrt(3), out.Cost, 1e-9)
}

func TestRun_StartIsGoal(t *testing.T) {
	g, ix := uniform(t, 4, 4, 1, true)
	c := grid.Coord{X: 2, Y: 1}
	out := search.Run(context.Background(), g.Snapshot(), ix, search.Params{Start: c, Goal: c, Connectivity: grid.Conn8})
	require.NoError(t, out.Err)
	assert.Equal(t, []grid.Coord{c}, out.Path)
	assert.Zero(t, out.Cost)
}

func TestRun_Validation(t *testing.T) {
	g, ix := uniform(t, 4, 4, 1, true, grid.Coord{X: 3, Y: 3})
	snap := g.Snapshot()

	out := search.Run(context.Background(), snap, ix, search.Params{Goal: grid.Coord{X: 1}, Connectivity: 5})
	assert.ErrorIs(t, out.Err, search.ErrInvalidParams)

	out = search.Run(context.Background(), snap, ix, search.Params{Goal: grid.Coord{X: 4}, Connectivity: grid.Conn8})
	assert.ErrorIs(t, out.Err, grid.ErrOutOfBounds)

	out = search.Run(context.Background(), snap, ix, search.Params{Goal: grid.Coord{X: 3, Y: 3}, Connectivity: grid.Conn8})
	assert.ErrorIs(t, out.Err, search.ErrNoPathFound)
	assert.Zero(t, out.Expansions)
}

func TestRun_Enclosed(t *testing.T) {
	ring := []grid.Coord{
		{X: 3, Y: 3}, {X: 4, Y: 3}, {X: 5, Y: 3},
		{X: 3, Y: 4}, {X: 5, Y: 4},
		{X: 3, Y: 5}, {X: 4, Y: 5}, {X: 5, Y: 5},
	}
	g, ix := uniform(t, 8, 8, 1, true, ring...)
	out := search.Run(context.Background(), g.Snapshot(), ix, search.Params{
		Goal:         grid.Coord{X: 4, Y: 4},
		Connectivity: grid.Conn8,
	})
	assert.ErrorIs(t, out.Err, search.ErrNoPathFound)
	assert.Equal(t, 64-len(ring)-1, out.Expansions, "every reachable cell expanded once")
}

func TestRun_CancelledBeforeStart(t *testing.T) {
	g, ix := uniform(t, 10, 10, 1, true)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := search.Run(ctx, g.Snapshot(), ix, search.Params{Goal: grid.Coord{X: 9, Y: 9}, Connectivity: grid.Conn8})
	assert.ErrorIs(t, out.Err, search.ErrCancelled)
	assert.Equal(t, search.Cancelled, out.State())
	assert.Zero(t, out.Expansions)
}

func TestRun_Budgets(t *testing.T) {
	g, ix := uniform(t, 30, 30, 1, true, wallWithGap()...)
	params := search.Params{
		Goal:          grid.Coord{X: 29, Y: 29},
		Connectivity:  grid.Conn8,
		MaxExpansions: 5,
	}
	out := search.Run(context.Background(), g.Snapshot(), ix, params)
	assert.ErrorIs(t, out.Err, search.ErrTimeout)
	assert.Equal(t, search.Failed, out.State())
	assert.Equal(t, 5, out.Expansions)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()
	params.MaxExpansions = 0
	out = search.Run(ctx, g.Snapshot(), ix, params)
	assert.ErrorIs(t, out.Err, search.ErrTimeout)
}

func TestRun_SnapshotIsolation(t *testing.T) {
	g, ix := uniform(t, 10, 1, 1, true)
	old := g.Snapshot()
	require.NoError(t, g.SetCell(grid.Coord{X: 5}, grid.Cell{}))

	params := search.Params{Goal: grid.Coord{X: 9}, Connectivity: grid.Conn4}
	out := search.Run(context.Background(), old, ix, params)
	require.NoError(t, out.Err, "old snapshots keep the old field")
	assert.Equal(t, old.Version(), out.Version)

	out = search.Run(context.Background(), g.Snapshot(), ix, params)
	assert.ErrorIs(t, out.Err, search.ErrNoPathFound)
}

func TestRun_Deterministic(t *testing.T) {
	g, ix := uniform(t, 16, 16, 1, true, wallWithGap()...)
	params := search.Params{Start: grid.Coord{X: 1, Y: 8}, Goal: grid.Coord{X: 14, Y: 9}, Connectivity: grid.Conn8}

	first := search.Run(context.Background(), g.Snapshot(), ix, params)
	require.NoError(t, first.Err)
	for i := 0; i < 5; i++ {
		again := search.Run(context.Background(), g.Snapshot(), ix, params)
		assert.Equal(t, first.Path, again.Path)
		assert.Equal(t, first.Expansions, again.Expansions)
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "cancelled", search.Cancelled.String())
	assert.True(t, search.Failed.Terminal())
	assert.False(t, search.Running.Terminal())
	assert.Equal(t, search.Cancelled, search.StateOf(search.ErrCancelled))
	assert.Equal(t, search.Failed, search.StateOf(search.ErrTimeout))
}

func TestRun_Heuristics(t *testing.T) {
	g, ix := uniform(t, 10, 10, 1, true, wallWithGap()...)
	snap := g.Snapshot()
	run := func(kind search.Heuristic, conn grid.Connectivity) search.Outcome {
		t.Helper()
		out := search.Run(context.Background(), snap, ix, search.Params{
			Goal:         grid.Coord{X: 9, Y: 9},
			Connectivity: conn,
			Heuristic:    kind,
		})
		require.NoError(t, out.Err, kind.String())
		return out
	}

	octile := run(search.HeuristicOctile, grid.Conn8)
	assert.Equal(t, octile, run(0, grid.Conn8), "zero value is octile")
	for _, kind := range []search.Heuristic{search.HeuristicEuclidean, search.HeuristicNone} {
		assert.InDelta(t, octile.Cost, run(kind, grid.Conn8).Cost, 1e-9, "%v is admissible", kind)
	}
	assert.GreaterOrEqual(t, run(search.HeuristicManhattan, grid.Conn8).Cost, octile.Cost-1e-9)

	// Without diagonal moves Manhattan distance is exact.
	assert.InDelta(t, run(search.HeuristicOctile, grid.Conn4).Cost, run(search.HeuristicManhattan, grid.Conn4).Cost, 1e-9)

	// A guided search expands fewer cells than an unguided one.
	open, oix := uniform(t, 10, 10, 1, true)
	expansions := func(kind search.Heuristic) int {
		out := search.Run(context.Background(), open.Snapshot(), oix, search.Params{
			Goal:         grid.Coord{X: 9, Y: 9},
			Connectivity: grid.Conn8,
			Heuristic:    kind,
		})
		require.NoError(t, out.Err)
		return out.Expansions
	}
	assert.Less(t, expansions(search.HeuristicOctile), expansions(search.HeuristicNone))

	out := search.Run(context.Background(), snap, ix, search.Params{
		Goal:         grid.Coord{X: 9, Y: 9},
		Connectivity: grid.Conn8,
		Heuristic:    search.Heuristic(42),
	})
	assert.ErrorIs(t, out.Err, search.ErrInvalidParams)
}

func TestParseHeuristic(t *testing.T) {
	h, err := search.ParseHeuristic("Euclidean")
	require.NoError(t, err)
	assert.Equal(t, search.HeuristicEuclidean, h)

	h, err = search.ParseHeuristic("")
	require.NoError(t, err)
	assert.Equal(t, search.HeuristicOctile, h)

	_, err = search.ParseHeuristic("hexagonal")
	assert.ErrorIs(t, err, search.ErrInvalidParams)

	text, err := search.HeuristicManhattan.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "manhattan", string(text))
	require.NoError(t, h.UnmarshalText([]byte("none")))
	assert.Equal(t, search.HeuristicNone, h)
	assert.False(t, search.Heuristic(0).Valid())
}
