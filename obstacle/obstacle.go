package obstacle

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/paulmach/orb"

	"grid-planner/grid"
	"grid-planner/spatial"
)

// Unbounded is the height used for obstacles without an explicit vertical extent
const Unbounded = 1e6

// Kind tells static scenery apart from moving obstacles
type Kind uint8

const (
	KindStatic Kind = iota
	KindDynamic
)

func (k Kind) String() string {
	if k == KindDynamic {
		return "dynamic"
	}
	return "static"
}

// ParseKind maps "static" or "dynamic" to a Kind. Empty means static.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "", "static":
		return KindStatic, nil
	case "dynamic":
		return KindDynamic, nil
	}
	return 0, fmt.Errorf("%w: unknown kind %q", ErrInvalidObstacle, s)
}

// Occupancy returns the occupancy flag cells covered by this kind carry
func (k Kind) Occupancy() grid.Occupancy {
	if k == KindDynamic {
		return grid.OccupiedDynamic
	}
	return grid.OccupiedStatic
}

// Obstacle is a vertical prism: a planar footprint extruded from MinZ to MaxZ
type Obstacle struct {
	ID        string
	Footprint orb.Polygon
	MinZ      float64
	MaxZ      float64
	Kind      Kind
}

// Validate checks the obstacle can be indexed
func (o Obstacle) Validate() error {
	if o.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidObstacle)
	}
	if len(o.Footprint) == 0 || len(o.Footprint[0]) < 3 {
		return fmt.Errorf("%w: %s: footprint needs an outer ring of at least 3 points", ErrInvalidObstacle, o.ID)
	}
	if math.IsNaN(o.MinZ) || math.IsNaN(o.MaxZ) || o.MaxZ < o.MinZ {
		return fmt.Errorf("%w: %s: height range [%g, %g]", ErrInvalidObstacle, o.ID, o.MinZ, o.MaxZ)
	}
	return nil
}

// Box returns the world-space bounding box of the prism
func (o Obstacle) Box() spatial.Box {
	b := o.Footprint.Bound()
	return spatial.Box{
		Min: mgl64.Vec3{b.Min[0], b.Min[1], o.MinZ},
		Max: mgl64.Vec3{b.Max[0], b.Max[1], o.MaxZ},
	}
}

// Rect returns an axis-aligned rectangular prism obstacle
func Rect(id string, kind Kind, lo, hi mgl64.Vec3) Obstacle {
	ring := orb.Ring{
		{lo[0], lo[1]},
		{hi[0], lo[1]},
		{hi[0], hi[1]},
		{lo[0], hi[1]},
		{lo[0], lo[1]},
	}
	return Obstacle{ID: id, Footprint: orb.Polygon{ring}, MinZ: lo[2], MaxZ: hi[2], Kind: kind}
}
