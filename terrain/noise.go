package terrain

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/ojrac/opensimplex-go"

	"grid-planner/grid"
)

// NoiseParams holds the fractal noise parameters for a Noise terrain
type NoiseParams struct {
	Octaves     int     `json:"octaves"`
	Frequency   float64 `json:"frequency"`
	Amplitude   float64 `json:"amplitude"`
	Persistence float64 `json:"persistence"`
	Lacunarity  float64 `json:"lacunarity"`

	// Heights at or below SeaLevel are water; up to SandLevel sand, up to
	// RockLevel grass, rock above.
	SeaLevel  float64 `json:"seaLevel"`
	SandLevel float64 `json:"sandLevel"`
	RockLevel float64 `json:"rockLevel"`

	// With MaxCost > 0 the noise also sets a cost scale, rising linearly
	// from MinCost in the lowest ground to MaxCost on the highest.
	MinCost      float64 `json:"minCost"`
	MaxCost      float64 `json:"maxCost"`
	DiscreteCost bool    `json:"discreteCost"` // round the cost scale to a whole number
}

// DefaultNoiseParams returns rolling hills with shallow lakes
func DefaultNoiseParams() NoiseParams {
	return NoiseParams{
		Octaves:     4,
		Frequency:   0.02,
		Amplitude:   8,
		Persistence: 0.5,
		Lacunarity:  2,
		SeaLevel:    -4,
		SandLevel:   -3,
		RockLevel:   5,
	}
}

// Noise is a fractal simplex height field
type Noise struct {
	params NoiseParams
	noise  opensimplex.Noise
	norm   float64
}

// NewNoise seeds a fractal noise terrain
func NewNoise(seed int64, params NoiseParams) (*Noise, error) {
	if params.Octaves < 1 || params.Frequency <= 0 || params.Lacunarity <= 0 || params.Persistence <= 0 {
		return nil, fmt.Errorf("%w: noise %+v", ErrInvalidParams, params)
	}
	if params.SeaLevel > params.SandLevel || params.SandLevel > params.RockLevel {
		return nil, fmt.Errorf("%w: surface levels must ascend", ErrInvalidParams)
	}
	if params.MaxCost > 0 && (!(params.MinCost >= 0) || params.MinCost > params.MaxCost || math.IsInf(params.MaxCost, 0)) {
		return nil, fmt.Errorf("%w: noise cost range [%v, %v]", ErrInvalidParams, params.MinCost, params.MaxCost)
	}

	// Normalize so the octave sum stays within [-1, 1].
	norm, amp := 0.0, 1.0
	for i := 0; i < params.Octaves; i++ {
		norm += amp
		amp *= params.Persistence
	}

	return &Noise{
		params: params,
		noise:  opensimplex.New(seed),
		norm:   norm,
	}, nil
}

// fractal sums the octaves into [-1, 1]
func (n *Noise) fractal(x, y float64) float64 {
	p := n.params
	sum, amp, freq := 0.0, 1.0, p.Frequency
	for i := 0; i < p.Octaves; i++ {
		sum += amp * mgl64.Clamp(n.noise.Eval2(x*freq, y*freq), -1, 1)
		amp *= p.Persistence
		freq *= p.Lacunarity
	}
	return sum / n.norm
}

func (n *Noise) height(x, y float64) float64 {
	return n.params.Amplitude * n.fractal(x, y)
}

// SampleCost maps the noise onto the configured cost range. Without a range
// every position scales by 1.
func (n *Noise) SampleCost(pos mgl64.Vec3) (float64, error) {
	p := n.params
	if p.MaxCost <= 0 {
		return 1, nil
	}
	t := (n.fractal(pos[0], pos[1]) + 1) / 2
	cost := p.MinCost + t*(p.MaxCost-p.MinCost)
	if p.DiscreteCost {
		cost = mgl64.Clamp(math.Round(cost), p.MinCost, p.MaxCost)
	}
	return cost, nil
}

func (n *Noise) SampleHeight(pos mgl64.Vec3) (float64, error) {
	return n.height(pos[0], pos[1]), nil
}

func (n *Noise) SampleSlope(pos mgl64.Vec3) (float64, error) {
	return slopeDegrees(n.height, pos, slopeStep), nil
}

func (n *Noise) SampleSurfaceType(pos mgl64.Vec3) (grid.SurfaceType, error) {
	h := n.height(pos[0], pos[1])
	switch {
	case h <= n.params.SeaLevel:
		return grid.SurfaceWater, nil
	case h <= n.params.SandLevel:
		return grid.SurfaceSand, nil
	case h <= n.params.RockLevel:
		return grid.SurfaceGrass, nil
	}
	return grid.SurfaceRock, nil
}
