package grid

import (
	"fmt"
	"math"
	"strings"
)

// Impassable is the cost sentinel carried by non-walkable cells
var Impassable = math.Inf(1)

// SurfaceType classifies the ground a cell sits on
type SurfaceType uint8

const (
	SurfaceGround SurfaceType = iota
	SurfaceGrass
	SurfaceSand
	SurfaceRock
	SurfaceWater
	SurfaceVoid
)

var surfaceNames = [...]string{
	SurfaceGround: "ground",
	SurfaceGrass:  "grass",
	SurfaceSand:   "sand",
	SurfaceRock:   "rock",
	SurfaceWater:  "water",
	SurfaceVoid:   "void",
}

func (s SurfaceType) String() string {
	if int(s) < len(surfaceNames) {
		return surfaceNames[s]
	}
	return fmt.Sprintf("surface(%d)", uint8(s))
}

// ParseSurfaceType maps a surface name back to its type
func ParseSurfaceType(name string) (SurfaceType, error) {
	for i, n := range surfaceNames {
		if strings.EqualFold(n, name) {
			return SurfaceType(i), nil
		}
	}
	return 0, fmt.Errorf("grid: unknown surface type %q", name)
}

// Occupancy is a bitset of dynamic and static obstacle flags
type Occupancy uint8

const (
	OccupiedStatic Occupancy = 1 << iota
	OccupiedDynamic
)

// Cell holds the per-cell attributes of the cost field
type Cell struct {
	Walkable  bool
	Cost      float64 // finite and >= 0 when Walkable, Impassable otherwise
	Height    float64 // terrain elevation under the cell
	Surface   SurfaceType
	Occupancy Occupancy
	Clearance uint8 // free radius in cells around this cell
}

// normalize enforces the cost invariant and validates walkable costs
func (c Cell) normalize() (Cell, error) {
	if !c.Walkable {
		c.Cost = Impassable
		c.Clearance = 0
		return c, nil
	}
	if math.IsNaN(c.Cost) || math.IsInf(c.Cost, 0) || c.Cost < 0 {
		return c, fmt.Errorf("%w: %v", ErrInvalidCost, c.Cost)
	}
	return c, nil
}

// Blocked reports whether the cell can never be entered
func (c Cell) Blocked() bool {
	return !c.Walkable || c.Occupancy != 0
}
