package costfield

import (
	"context"

	"github.com/go-gl/mathgl/mgl64"

	"grid-planner/grid"
	"grid-planner/spatial"
)

// TerrainSource answers height, slope (degrees) and surface queries at world positions
type TerrainSource interface {
	SampleHeight(p mgl64.Vec3) (float64, error)
	SampleSlope(p mgl64.Vec3) (float64, error)
	SampleSurfaceType(p mgl64.Vec3) (grid.SurfaceType, error)
}

// CostSource is implemented by terrains that carry their own traversal cost.
// The sampled value scales the base cost of a cell; NaN, infinite or negative
// values fail the cell.
type CostSource interface {
	SampleCost(p mgl64.Vec3) (float64, error)
}

// ObstacleSource reports the occupied cells of a region
type ObstacleSource interface {
	QueryOccupancy(ctx context.Context, region grid.Region, idx *spatial.Index) (map[grid.Coord]grid.Occupancy, error)
}

// NoObstacles is an ObstacleSource with nothing in it
type NoObstacles struct{}

func (NoObstacles) QueryOccupancy(context.Context, grid.Region, *spatial.Index) (map[grid.Coord]grid.Occupancy, error) {
	return nil, nil
}
