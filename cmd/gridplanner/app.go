package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"grid-planner/config"
	"grid-planner/costfield"
	"grid-planner/grid"
	"grid-planner/obstacle"
	"grid-planner/planner"
)

// loadConfig reads path, or returns the defaults when path is empty
func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// buildEngine wires every component of cfg together and computes the
// initial cost field
func buildEngine(ctx context.Context, cfg config.Config, logger *slog.Logger, opts ...planner.Option) (*planner.Engine, *obstacle.Store, error) {
	idx, err := cfg.Index()
	if err != nil {
		return nil, nil, err
	}
	g, err := grid.New(idx.Dims())
	if err != nil {
		return nil, nil, err
	}
	src, err := cfg.TerrainSource()
	if err != nil {
		return nil, nil, err
	}

	store := obstacle.NewStore()
	if cfg.Obstacles.Dir != "" {
		if _, err := os.Stat(cfg.Obstacles.Dir); err != nil {
			return nil, nil, fmt.Errorf("obstacle dir: %w", err)
		}
		obstacles, err := obstacle.LoadDir(cfg.Obstacles.Dir, logger)
		if err != nil {
			return nil, nil, err
		}
		if eps := cfg.Obstacles.Simplify; eps > 0 {
			before := obstacle.VertexCount(obstacles)
			obstacles = obstacle.SimplifyFootprints(obstacles, eps)
			logger.Info("footprints_simplified",
				slog.Float64("epsilon", eps),
				slog.Int("vertices_before", before),
				slog.Int("vertices_after", obstacle.VertexCount(obstacles)),
			)
		}
		if err := store.Add(obstacles...); err != nil {
			return nil, nil, err
		}
	}

	builder, err := costfield.New(g, idx, src, store, cfg.BuilderOptions(logger)...)
	if err != nil {
		return nil, nil, err
	}
	report, err := builder.RebuildAll(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("initial rebuild: %w", err)
	}
	logger.Info("cost_field_ready",
		slog.Any("dims", idx.Dims()),
		slog.Int("obstacles", store.Len()),
		slog.Int("blocked", report.Blocked),
		slog.Bool("partial", report.Partial),
		slog.Duration("duration", report.Elapsed),
	)

	engine, err := planner.New(g, idx, builder, append(cfg.PlannerOptions(logger), opts...)...)
	if err != nil {
		return nil, nil, err
	}
	return engine, store, nil
}
