package costfield

import (
	"fmt"
	"log/slog"
	"math"

	"grid-planner/grid"
)

// Weights scale the terms of the cell cost
type Weights struct {
	Base     float64 // multiplied by the surface multiplier
	Slope    float64 // applied to slope/maxSlope
	Obstacle float64 // applied to obstacle proximity in [0,1]
}

// DefaultWeights returns a cost of 1 on level, open ground
func DefaultWeights() Weights {
	return Weights{Base: 1, Slope: 1, Obstacle: 2}
}

// Surface is the movement profile of one surface type
type Surface struct {
	Multiplier float64
	Blocking   bool
}

// SurfaceTable maps surface types to their movement profile. Missing types
// behave like ground.
type SurfaceTable map[grid.SurfaceType]Surface

// DefaultSurfaces returns the built-in surface profiles
func DefaultSurfaces() SurfaceTable {
	return SurfaceTable{
		grid.SurfaceGround: {Multiplier: 1},
		grid.SurfaceGrass:  {Multiplier: 1.2},
		grid.SurfaceSand:   {Multiplier: 1.5},
		grid.SurfaceRock:   {Multiplier: 2},
		grid.SurfaceWater:  {Blocking: true},
		grid.SurfaceVoid:   {Blocking: true},
	}
}

func (t SurfaceTable) lookup(s grid.SurfaceType) Surface {
	if p, ok := t[s]; ok {
		return p
	}
	return Surface{Multiplier: 1}
}

type options struct {
	weights      Weights
	maxSlope     float64
	influence    int
	maxClearance int
	surfaces     SurfaceTable
	logger       *slog.Logger
}

func defaultOptions() options {
	return options{
		weights:      DefaultWeights(),
		maxSlope:     35,
		influence:    2,
		maxClearance: 4,
		surfaces:     DefaultSurfaces(),
		logger:       slog.Default(),
	}
}

func (o options) validate() error {
	w := o.weights
	for _, v := range []float64{w.Base, w.Slope, w.Obstacle} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: weights %+v", ErrInvalidOptions, w)
		}
	}
	if !(o.maxSlope > 0) || o.maxSlope > 90 {
		return fmt.Errorf("%w: max slope %v outside (0, 90]", ErrInvalidOptions, o.maxSlope)
	}
	if o.influence < 0 || o.maxClearance < 0 || o.maxClearance > math.MaxUint8 {
		return fmt.Errorf("%w: influence %d, max clearance %d", ErrInvalidOptions, o.influence, o.maxClearance)
	}
	for s, p := range o.surfaces {
		if !p.Blocking && (p.Multiplier < 0 || math.IsNaN(p.Multiplier) || math.IsInf(p.Multiplier, 0)) {
			return fmt.Errorf("%w: surface %v multiplier %v", ErrInvalidOptions, s, p.Multiplier)
		}
	}
	return nil
}

// Option configures a Builder
type Option func(*options)

// WithWeights sets the cost weights
func WithWeights(w Weights) Option {
	return func(o *options) { o.weights = w }
}

// WithMaxSlope sets the steepest walkable slope in degrees
func WithMaxSlope(deg float64) Option {
	return func(o *options) { o.maxSlope = deg }
}

// WithInfluence sets how many cells the obstacle proximity halo reaches
func WithInfluence(cells int) Option {
	return func(o *options) { o.influence = cells }
}

// WithMaxClearance caps the clearance computed per cell
func WithMaxClearance(cells int) Option {
	return func(o *options) { o.maxClearance = cells }
}

// WithSurfaces replaces the surface table
func WithSurfaces(t SurfaceTable) Option {
	return func(o *options) { o.surfaces = t }
}

// WithLogger sets the logger used for rebuild reports
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
