package terrain

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"

	"grid-planner/grid"
)

// RandomParams configures flat ground with an independent random cost per tile
type RandomParams struct {
	MinCost     float64 `json:"minCost"`
	MaxCost     float64 `json:"maxCost"`
	Discrete    bool    `json:"discrete"`    // draw whole costs from [ceil(MinCost), floor(MaxCost)]
	BlockWeight float64 `json:"blockWeight"` // chance in [0,1) that a tile is impassable
	Height      float64 `json:"height"`
	Spacing     float64 `json:"spacing"` // tile size, usually the grid cell size
}

// DefaultRandomParams returns whole costs from 1 to 5 with one tile in ten blocked
func DefaultRandomParams() RandomParams {
	return RandomParams{
		MinCost:     1,
		MaxCost:     5,
		Discrete:    true,
		BlockWeight: 0.1,
		Spacing:     1,
	}
}

// Random is level ground whose cost and passability are drawn per tile.
// Every tile draws from its own generator, so a sample depends only on the
// seed and the tile, never on sampling order. Blocked tiles only stop
// movement on planar grids, where the surface type is consulted.
type Random struct {
	params RandomParams
	seed   uint64
	lo, hi float64
}

// NewRandom seeds a random cost terrain
func NewRandom(seed uint64, params RandomParams) (*Random, error) {
	if !(params.Spacing > 0) || math.IsInf(params.Spacing, 0) ||
		!(params.MinCost >= 0) || !(params.MaxCost >= params.MinCost) || math.IsInf(params.MaxCost, 0) ||
		!(params.BlockWeight >= 0) || params.BlockWeight >= 1 {
		return nil, fmt.Errorf("%w: random %+v", ErrInvalidParams, params)
	}
	lo, hi := params.MinCost, params.MaxCost
	if params.Discrete {
		lo, hi = math.Ceil(lo), math.Floor(hi)
		if lo > hi || hi-lo >= math.MaxInt32 {
			return nil, fmt.Errorf("%w: whole costs in [%v, %v]", ErrInvalidParams, params.MinCost, params.MaxCost)
		}
	}
	return &Random{params: params, seed: seed, lo: lo, hi: hi}, nil
}

type tile struct {
	blocked bool
	cost    float64
}

func (r *Random) tileAt(p mgl64.Vec3) tile {
	x := int64(math.Floor(p[0] / r.params.Spacing))
	y := int64(math.Floor(p[1] / r.params.Spacing))
	rng := rand.New(rand.NewPCG(r.seed, uint64(uint32(x))<<32|uint64(uint32(y))))

	t := tile{blocked: rng.Float64() < r.params.BlockWeight}
	if r.params.Discrete {
		t.cost = r.lo + float64(rng.IntN(int(r.hi-r.lo)+1))
	} else {
		t.cost = r.lo + rng.Float64()*(r.hi-r.lo)
	}
	return t
}

func (r *Random) SampleHeight(mgl64.Vec3) (float64, error) { return r.params.Height, nil }

func (r *Random) SampleSlope(mgl64.Vec3) (float64, error) { return 0, nil }

// SampleSurfaceType reports blocked tiles as void
func (r *Random) SampleSurfaceType(p mgl64.Vec3) (grid.SurfaceType, error) {
	if r.tileAt(p).blocked {
		return grid.SurfaceVoid, nil
	}
	return grid.SurfaceGround, nil
}

// SampleCost returns the cost scale of the tile holding p
func (r *Random) SampleCost(p mgl64.Vec3) (float64, error) {
	return r.tileAt(p).cost, nil
}
