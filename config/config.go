// Package config loads the construction-time configuration of a planner
// from an hjson file and turns it into the options of each component.
package config

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/hjson/hjson-go/v4"

	"grid-planner/grid"
	"grid-planner/planner"
	"grid-planner/search"
	"grid-planner/terrain"
)

// Bounds is the world-space extent of the grid
type Bounds struct {
	Min [3]float64 `json:"min"`
	Max [3]float64 `json:"max"`
}

// SurfaceConfig overrides the movement profile of one surface type
type SurfaceConfig struct {
	Multiplier float64 `json:"multiplier"`
	Blocking   bool    `json:"blocking"`
}

// TerrainConfig selects and parameterizes the terrain source
type TerrainConfig struct {
	Kind        string               `json:"kind"` // flat, noise, areas or random
	Seed        int64                `json:"seed"`
	Height      float64              `json:"height"`  // flat only
	Surface     string               `json:"surface"` // flat only
	Noise       terrain.NoiseParams  `json:"noise"`
	HeightAreas terrain.AreaParams   `json:"heightAreas"`
	Random      terrain.RandomParams `json:"random"`
}

// ObstaclesConfig points at the static obstacles loaded at startup
type ObstaclesConfig struct {
	Dir      string  `json:"dir"`      // directory of .geojson files; empty loads none
	Simplify float64 `json:"simplify"` // Douglas-Peucker tolerance in world units; 0 keeps every vertex
}

// ServerConfig configures the HTTP façade
type ServerConfig struct {
	Addr string `json:"addr"`
}

// LogConfig configures the process logger
type LogConfig struct {
	Level  string `json:"level"`  // debug, info, warn or error
	Format string `json:"format"` // text or json
}

// Config is the full construction-time configuration
type Config struct {
	CellSize     float64 `json:"cellSize"`
	Bounds       Bounds  `json:"bounds"`
	Connectivity int     `json:"connectivity"` // 4 or 8 for planar grids, 6 or 26 for volumes
	DiagonalCost float64 `json:"diagonalCost"`
	CornerCost   float64 `json:"cornerCost"`

	BaseCost          float64                  `json:"baseCost"`
	SlopeWeight       float64                  `json:"slopeWeight"`
	ObstacleWeight    float64                  `json:"obstacleWeight"`
	MaxSlope          float64                  `json:"maxSlope"`
	ObstacleInfluence int                      `json:"obstacleInfluence"`
	MaxClearance      int                      `json:"maxClearance"`
	Surfaces          map[string]SurfaceConfig `json:"surfaces"`

	DefaultAgentRadius float64          `json:"defaultAgentRadius"`
	Heuristic          search.Heuristic `json:"heuristic"` // octile, euclidean, manhattan or none
	HeuristicWeight    float64          `json:"heuristicWeight"`
	ClimbWeight        float64          `json:"climbWeight"`
	Workers            int              `json:"workers"`
	QueueSize          int              `json:"queueSize"`
	CheckInterval      int              `json:"checkInterval"`
	MaxExpansions      int              `json:"maxExpansions"`
	Timeout            Duration         `json:"timeout"`
	WaitForRebuild     Duration         `json:"waitForRebuild"`
	SlowSearch         Duration         `json:"slowSearch"`
	RetainVersions     int              `json:"retainVersions"`
	SnapRadius         int              `json:"snapRadius"`

	Terrain   TerrainConfig   `json:"terrain"`
	Obstacles ObstaclesConfig `json:"obstacles"`
	Server    ServerConfig    `json:"server"`
	Log       LogConfig       `json:"log"`
}

// Default returns a 256x256 planar grid over noise terrain
func Default() Config {
	return Config{
		CellSize:     1,
		Bounds:       Bounds{Max: [3]float64{256, 256, 16}},
		Connectivity: int(grid.Conn8),
		DiagonalCost: math.Sqrt2,
		CornerCost:   math.Sqrt(3),

		BaseCost:          1,
		SlopeWeight:       1,
		ObstacleWeight:    2,
		MaxSlope:          35,
		ObstacleInfluence: 2,
		MaxClearance:      4,

		Heuristic:       search.HeuristicOctile,
		HeuristicWeight: 1,
		Workers:         planner.DefaultWorkers,
		QueueSize:       planner.DefaultQueueSize,
		CheckInterval:   search.DefaultCheckInterval,
		MaxExpansions:   planner.DefaultMaxExpansions,
		Timeout:         Duration(planner.DefaultTimeout),
		SlowSearch:      Duration(planner.DefaultSlowSearch),
		RetainVersions:  planner.DefaultRetainVersions,
		SnapRadius:      planner.DefaultSnapRadius,

		Terrain: TerrainConfig{
			Kind:        "noise",
			Seed:        1,
			Surface:     grid.SurfaceGround.String(),
			Noise:       terrain.DefaultNoiseParams(),
			HeightAreas: terrain.DefaultAreaParams(),
			Random:      terrain.DefaultRandomParams(),
		},
		Server: ServerConfig{Addr: ":8080"},
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads an hjson file over the defaults and validates the result
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes hjson over the defaults and validates the result. Keys
// missing from data keep their default values.
func Parse(data []byte) (Config, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	cfg := Default()
	if len(bytes.TrimSpace(data)) > 0 {
		if err := hjson.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Planar reports whether the configured connectivity describes a 2.5D grid
func (c Config) Planar() bool {
	return grid.Connectivity(c.Connectivity).Planar()
}

// Validate checks every value that the components would otherwise reject
// later, so a bad file fails at load time
func (c Config) Validate() error {
	bad := func(format string, args ...any) error {
		return fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...)
	}

	if !(c.CellSize > 0) || math.IsInf(c.CellSize, 0) {
		return bad("cellSize %v must be positive", c.CellSize)
	}
	for i := range 3 {
		if !(c.Bounds.Max[i] > c.Bounds.Min[i]) {
			return bad("bounds max %v must exceed min %v on every axis", c.Bounds.Max, c.Bounds.Min)
		}
	}
	if !grid.Connectivity(c.Connectivity).Valid() {
		return bad("connectivity %d must be 4, 6, 8 or 26", c.Connectivity)
	}
	if c.DiagonalCost < 1 || c.CornerCost < c.DiagonalCost {
		return bad("step costs must satisfy 1 <= diagonalCost (%v) <= cornerCost (%v)", c.DiagonalCost, c.CornerCost)
	}

	for name, v := range map[string]float64{
		"baseCost":           c.BaseCost,
		"slopeWeight":        c.SlopeWeight,
		"obstacleWeight":     c.ObstacleWeight,
		"climbWeight":        c.ClimbWeight,
		"defaultAgentRadius": c.DefaultAgentRadius,
		"obstacles.simplify": c.Obstacles.Simplify,
	} {
		if !(v >= 0) || math.IsInf(v, 0) {
			return bad("%s %v must be finite and non-negative", name, v)
		}
	}
	if !(c.MaxSlope > 0) || c.MaxSlope > 90 {
		return bad("maxSlope %v must be in (0, 90]", c.MaxSlope)
	}
	if !c.Heuristic.Valid() {
		return bad("heuristic %v", c.Heuristic)
	}
	if !(c.HeuristicWeight >= 1) || math.IsInf(c.HeuristicWeight, 0) {
		return bad("heuristicWeight %v must be at least 1", c.HeuristicWeight)
	}
	if c.ObstacleInfluence < 0 || c.MaxClearance < 0 || c.MaxClearance > math.MaxUint8 {
		return bad("obstacleInfluence %d and maxClearance %d must be in range", c.ObstacleInfluence, c.MaxClearance)
	}
	for name, s := range c.Surfaces {
		if _, err := grid.ParseSurfaceType(name); err != nil {
			return bad("surfaces: %v", err)
		}
		if !s.Blocking && (!(s.Multiplier >= 0) || math.IsInf(s.Multiplier, 0)) {
			return bad("surface %s multiplier %v", name, s.Multiplier)
		}
	}

	if c.Workers < 1 || c.QueueSize < 1 || c.CheckInterval < 1 || c.RetainVersions < 1 {
		return bad("workers, queueSize, checkInterval and retainVersions must be positive")
	}
	if c.MaxExpansions < 0 || c.SnapRadius < 0 {
		return bad("maxExpansions %d and snapRadius %d must not be negative", c.MaxExpansions, c.SnapRadius)
	}
	if c.Timeout < 0 || c.WaitForRebuild < 0 || c.SlowSearch < 0 {
		return bad("durations must not be negative")
	}

	switch strings.ToLower(c.Terrain.Kind) {
	case "flat":
		if _, err := grid.ParseSurfaceType(c.Terrain.Surface); err != nil {
			return bad("terrain.surface: %v", err)
		}
	case "noise", "areas", "random":
		if _, err := c.TerrainSource(); err != nil {
			return bad("terrain: %v", err)
		}
	default:
		return bad("terrain.kind %q must be flat, noise, areas or random", c.Terrain.Kind)
	}

	if _, err := parseLevel(c.Log.Level); err != nil {
		return bad("log.level: %v", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return bad("log.format %q must be text or json", c.Log.Format)
	}
	return nil
}
