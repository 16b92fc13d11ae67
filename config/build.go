package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"grid-planner/costfield"
	"grid-planner/grid"
	"grid-planner/planner"
	"grid-planner/spatial"
	"grid-planner/terrain"
)

// Index builds the spatial index over the configured bounds
func (c Config) Index() (*spatial.Index, error) {
	box := spatial.Box{Min: mgl64.Vec3(c.Bounds.Min), Max: mgl64.Vec3(c.Bounds.Max)}
	return spatial.New(box, c.CellSize, c.Planar(),
		spatial.WithDiagonalCost(c.DiagonalCost),
		spatial.WithCornerCost(c.CornerCost),
	)
}

// TerrainSource builds the configured terrain
func (c Config) TerrainSource() (costfield.TerrainSource, error) {
	t := c.Terrain
	switch strings.ToLower(t.Kind) {
	case "flat":
		surface, err := grid.ParseSurfaceType(t.Surface)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		return terrain.Flat{Height: t.Height, Surface: surface}, nil
	case "noise":
		n, err := terrain.NewNoise(t.Seed, t.Noise)
		if err != nil {
			return nil, err
		}
		return n, nil
	case "areas":
		a, err := terrain.NewHeightAreas(uint64(t.Seed), t.HeightAreas)
		if err != nil {
			return nil, err
		}
		return a, nil
	case "random":
		r, err := terrain.NewRandom(uint64(t.Seed), t.Random)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
	return nil, fmt.Errorf("%w: terrain kind %q", ErrInvalidConfig, t.Kind)
}

// SurfaceTable returns the default surface table with the configured overrides applied
func (c Config) SurfaceTable() costfield.SurfaceTable {
	table := costfield.DefaultSurfaces()
	for name, s := range c.Surfaces {
		st, err := grid.ParseSurfaceType(name)
		if err != nil {
			continue
		}
		table[st] = costfield.Surface{Multiplier: s.Multiplier, Blocking: s.Blocking}
	}
	return table
}

// BuilderOptions returns the cost field options of c
func (c Config) BuilderOptions(logger *slog.Logger) []costfield.Option {
	return []costfield.Option{
		costfield.WithWeights(costfield.Weights{
			Base:     c.BaseCost,
			Slope:    c.SlopeWeight,
			Obstacle: c.ObstacleWeight,
		}),
		costfield.WithMaxSlope(c.MaxSlope),
		costfield.WithInfluence(c.ObstacleInfluence),
		costfield.WithMaxClearance(c.MaxClearance),
		costfield.WithSurfaces(c.SurfaceTable()),
		costfield.WithLogger(logger),
	}
}

// PlannerOptions returns the engine options of c
func (c Config) PlannerOptions(logger *slog.Logger) []planner.Option {
	return []planner.Option{
		planner.WithConnectivity(grid.Connectivity(c.Connectivity)),
		planner.WithWorkers(c.Workers),
		planner.WithQueueSize(c.QueueSize),
		planner.WithCheckInterval(c.CheckInterval),
		planner.WithMaxExpansions(c.MaxExpansions),
		planner.WithTimeout(c.Timeout.Std()),
		planner.WithWaitForRebuild(c.WaitForRebuild.Std()),
		planner.WithSlowSearchThreshold(c.SlowSearch.Std()),
		planner.WithRetainVersions(c.RetainVersions),
		planner.WithSnapRadius(c.SnapRadius),
		planner.WithDefaultAgentRadius(c.DefaultAgentRadius),
		planner.WithWeights(planner.Weights{Heuristic: c.HeuristicWeight, Climb: c.ClimbWeight}),
		planner.WithHeuristic(c.Heuristic),
		planner.WithLogger(logger),
	}
}

// Logger builds the process logger writing to w
func (c Config) Logger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, err
	}
	return level, nil
}
