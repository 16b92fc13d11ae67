package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grid-planner/config"
	"grid-planner/costfield"
	"grid-planner/grid"
	"grid-planner/planner"
	"grid-planner/search"
	"grid-planner/terrain"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.Planar())
}

func TestParse_OverridesKeepDefaults(t *testing.T) {
	cfg, err := config.Parse([]byte(`
# small volumetric test world
{
  cellSize: 0.5
  bounds: { min: [0, 0, 0], max: [8, 8, 4] }
  connectivity: 26
  maxSlope: 40
  timeout: "750ms"
  surfaces: {
    water: { multiplier: 3 }
  }
  terrain: {
    kind: "areas"
    seed: 7
    heightAreas: { coreCount: 2, areaRadius: 4 }
  }
  log: { level: "debug", format: "json" }
}
`))
	require.NoError(t, err)

	assert.Equal(t, 0.5, cfg.CellSize)
	assert.Equal(t, [3]float64{8, 8, 4}, cfg.Bounds.Max)
	assert.False(t, cfg.Planar())
	assert.Equal(t, 750*time.Millisecond, cfg.Timeout.Std())
	assert.Equal(t, 2, cfg.Terrain.HeightAreas.CoreCount)
	assert.Equal(t, terrain.DefaultAreaParams().MaxRadius, cfg.Terrain.HeightAreas.MaxRadius, "nested defaults survive")
	assert.Equal(t, config.Default().Workers, cfg.Workers)
	assert.Equal(t, 2.0, cfg.ObstacleWeight)

	table := cfg.SurfaceTable()
	assert.Equal(t, costfield.Surface{Multiplier: 3}, table[grid.SurfaceWater])
	assert.True(t, table[grid.SurfaceVoid].Blocking)
}

func TestParse_Empty(t *testing.T) {
	cfg, err := config.Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]string{
		"syntax":          `{ cellSize: [ }`,
		"zero cell":       `{ cellSize: 0 }`,
		"flat bounds":     `{ bounds: { min: [0, 0, 0], max: [10, 10, 0] } }`,
		"connectivity":    `{ connectivity: 5 }`,
		"diagonal":        `{ diagonalCost: 0.5 }`,
		"negative weight": `{ slopeWeight: -1 }`,
		"slope":           `{ maxSlope: 120 }`,
		"heuristic":       `{ heuristicWeight: 0.2 }`,
		"heuristic kind":  `{ heuristic: "dijkstra" }`,
		"simplify":        `{ obstacles: { simplify: -1 } }`,
		"random range":    `{ terrain: { kind: "random", random: { minCost: 4, maxCost: 2 } } }`,
		"surface name":    `{ surfaces: { lava: { multiplier: 1 } } }`,
		"workers":         `{ workers: 0 }`,
		"terrain":         `{ terrain: { kind: "voronoi" } }`,
		"flat surface":    `{ terrain: { kind: "flat", surface: "mud" } }`,
		"log level":       `{ log: { level: "loud" } }`,
		"duration":        `{ timeout: "soon" }`,
	}
	for name, src := range cases {
		_, err := config.Parse([]byte(src))
		assert.ErrorIs(t, err, config.ErrInvalidConfig, name)
	}
}

func TestParse_HeuristicAndRandomTerrain(t *testing.T) {
	cfg, err := config.Parse([]byte(`{
  heuristic: "Euclidean"
  terrain: { kind: "random", seed: 3, random: { maxCost: 9, blockWeight: 0 } }
}`))
	require.NoError(t, err)
	assert.Equal(t, search.HeuristicEuclidean, cfg.Heuristic)
	assert.Equal(t, 9.0, cfg.Terrain.Random.MaxCost)
	assert.True(t, cfg.Terrain.Random.Discrete, "nested defaults survive")

	src, err := cfg.TerrainSource()
	require.NoError(t, err)
	st, err := src.SampleSurfaceType(mgl64.Vec3{2.5, 7.5, 0})
	require.NoError(t, err)
	assert.Equal(t, grid.SurfaceGround, st)

	cs, ok := src.(costfield.CostSource)
	require.True(t, ok)
	c, err := cs.SampleCost(mgl64.Vec3{2.5, 7.5, 0})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, c, 1.0)
	assert.LessOrEqual(t, c, 9.0)

	cfg, err = config.Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, search.HeuristicOctile, cfg.Heuristic)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "planner.hjson")
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte(`{ workers: 2, terrain: { kind: "flat", height: 3 } }`)...)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Workers)

	src, err := cfg.TerrainSource()
	require.NoError(t, err)
	h, err := src.SampleHeight(mgl64.Vec3{1, 1, 0})
	require.NoError(t, err)
	assert.Equal(t, 3.0, h)

	_, err = config.Load(filepath.Join(dir, "missing.hjson"))
	assert.Error(t, err)
}

func TestBuildComponents(t *testing.T) {
	cfg := config.Default()
	cfg.Bounds = config.Bounds{Max: [3]float64{12, 12, 4}}
	cfg.Terrain.Kind = "noise"

	ix, err := cfg.Index()
	require.NoError(t, err)
	assert.Equal(t, grid.Dims{X: 12, Y: 12, Z: 1}, ix.Dims())

	src, err := cfg.TerrainSource()
	require.NoError(t, err)

	var logs bytes.Buffer
	logger := cfg.Logger(&logs)

	g, err := grid.New(ix.Dims())
	require.NoError(t, err)
	b, err := costfield.New(g, ix, src, nil, cfg.BuilderOptions(logger)...)
	require.NoError(t, err)
	assert.Equal(t, cfg.MaxClearance, b.MaxClearance())

	e, err := planner.New(g, ix, b, cfg.PlannerOptions(logger)...)
	require.NoError(t, err)
	require.NoError(t, e.Close())
	assert.Equal(t, grid.Conn8, e.Connectivity())
	assert.True(t, strings.Contains(logs.String(), "planner_started"))
}
