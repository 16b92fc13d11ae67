package obstacle_test

import (
	"github.com/go-gl/mathgl/mgl64"

	"grid-planner/obstacle"
)

// mustRect builds a square footprint spanning [lo, hi] on both X and Y
func mustRect(id string, kind obstacle.Kind, lo, hi, minZ, maxZ float64) obstacle.Obstacle {
	return obstacle.Rect(id, kind, mgl64.Vec3{lo, lo, minZ}, mgl64.Vec3{hi, hi, maxZ})
}
