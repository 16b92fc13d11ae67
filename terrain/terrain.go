package terrain

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"grid-planner/grid"
)

// ErrInvalidParams indicates sampler parameters that cannot produce a height field.
var ErrInvalidParams = errors.New("terrain: invalid parameters")

// slopeStep is the central-difference half step, in world units, used for slope sampling
const slopeStep = 0.5

// slopeDegrees estimates the steepest slope of height around p
func slopeDegrees(height func(x, y float64) float64, p mgl64.Vec3, h float64) float64 {
	gx := (height(p[0]+h, p[1]) - height(p[0]-h, p[1])) / (2 * h)
	gy := (height(p[0], p[1]+h) - height(p[0], p[1]-h)) / (2 * h)
	return mgl64.RadToDeg(math.Atan(math.Hypot(gx, gy)))
}

// Flat is a level plane with a single surface type
type Flat struct {
	Height  float64
	Surface grid.SurfaceType
}

func (f Flat) SampleHeight(mgl64.Vec3) (float64, error) { return f.Height, nil }

func (f Flat) SampleSlope(mgl64.Vec3) (float64, error) { return 0, nil }

func (f Flat) SampleSurfaceType(mgl64.Vec3) (grid.SurfaceType, error) { return f.Surface, nil }
