package terrain

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"

	"grid-planner/grid"
)

// maxCoreTries bounds the attempts to place one core away from the others
const maxCoreTries = 100

// AreaParams configures randomly placed raised areas
type AreaParams struct {
	Center          mgl64.Vec2 `json:"center"` // cores are picked within AreaRadius of Center
	AreaRadius      float64    `json:"areaRadius"`
	CoreCount       int        `json:"coreCount"`
	CoreMinDistance float64    `json:"coreMinDistance"`
	MinRadius       float64    `json:"minRadius"`
	MaxRadius       float64    `json:"maxRadius"`
	EmptyWeight     float64    `json:"emptyWeight"` // chance in [0,1) that a lattice point inside an area stays low
	Height          float64    `json:"height"`      // height of raised points
	Spacing         float64    `json:"spacing"`     // lattice spacing, usually the grid cell size
}

// DefaultAreaParams returns a handful of medium sized plateaus
func DefaultAreaParams() AreaParams {
	return AreaParams{
		AreaRadius:      40,
		CoreCount:       5,
		CoreMinDistance: 12,
		MinRadius:       3,
		MaxRadius:       8,
		EmptyWeight:     0.1,
		Height:          1,
		Spacing:         1,
	}
}

type lattice struct{ x, y int }

// HeightAreas is flat ground with raised rocky plateaus scattered around seeded cores
type HeightAreas struct {
	params AreaParams
	raised map[lattice]struct{}
	cores  []mgl64.Vec2
}

// NewHeightAreas places the areas. The same seed always yields the same layout.
func NewHeightAreas(seed uint64, params AreaParams) (*HeightAreas, error) {
	if params.Spacing <= 0 || params.AreaRadius < 0 || params.CoreCount < 0 ||
		params.MinRadius < 0 || params.MaxRadius < params.MinRadius ||
		params.EmptyWeight < 0 || params.EmptyWeight >= 1 {
		return nil, fmt.Errorf("%w: height areas %+v", ErrInvalidParams, params)
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	ha := &HeightAreas{params: params, raised: make(map[lattice]struct{})}

	for i := 0; i < params.CoreCount; i++ {
		for try := 0; try < maxCoreTries; try++ {
			core := ha.randomCore(rng)
			if ha.farFromCores(core) {
				ha.cores = append(ha.cores, core)
				break
			}
		}
	}

	for _, core := range ha.cores {
		radius := params.MinRadius + rng.Float64()*(params.MaxRadius-params.MinRadius)
		lo := ha.latticeOf(core[0]-radius, core[1]-radius)
		hi := ha.latticeOf(core[0]+radius, core[1]+radius)
		for y := lo.y; y <= hi.y; y++ {
			for x := lo.x; x <= hi.x; x++ {
				p := ha.center(lattice{x, y})
				if p.Sub(core).Len() > radius {
					continue
				}
				if rng.Float64() < params.EmptyWeight {
					continue
				}
				ha.raised[lattice{x, y}] = struct{}{}
			}
		}
	}
	return ha, nil
}

// Cores returns the placed area centers
func (ha *HeightAreas) Cores() []mgl64.Vec2 {
	return append([]mgl64.Vec2(nil), ha.cores...)
}

func (ha *HeightAreas) randomCore(rng *rand.Rand) mgl64.Vec2 {
	// Uniform over the disc.
	r := ha.params.AreaRadius * math.Sqrt(rng.Float64())
	theta := 2 * math.Pi * rng.Float64()
	return ha.params.Center.Add(mgl64.Vec2{r * math.Cos(theta), r * math.Sin(theta)})
}

func (ha *HeightAreas) farFromCores(c mgl64.Vec2) bool {
	for _, other := range ha.cores {
		if other.Sub(c).Len() < ha.params.CoreMinDistance {
			return false
		}
	}
	return true
}

func (ha *HeightAreas) latticeOf(x, y float64) lattice {
	s := ha.params.Spacing
	return lattice{int(math.Floor(x / s)), int(math.Floor(y / s))}
}

func (ha *HeightAreas) center(l lattice) mgl64.Vec2 {
	s := ha.params.Spacing
	return mgl64.Vec2{(float64(l.x) + 0.5) * s, (float64(l.y) + 0.5) * s}
}

func (ha *HeightAreas) isRaised(x, y float64) bool {
	_, ok := ha.raised[ha.latticeOf(x, y)]
	return ok
}

func (ha *HeightAreas) height(x, y float64) float64 {
	if ha.isRaised(x, y) {
		return ha.params.Height
	}
	return 0
}

func (ha *HeightAreas) SampleHeight(pos mgl64.Vec3) (float64, error) {
	return ha.height(pos[0], pos[1]), nil
}

// SampleSlope is measured one lattice step either side, so the rim of a
// plateau reads as a cliff.
func (ha *HeightAreas) SampleSlope(pos mgl64.Vec3) (float64, error) {
	return slopeDegrees(ha.height, pos, ha.params.Spacing), nil
}

func (ha *HeightAreas) SampleSurfaceType(pos mgl64.Vec3) (grid.SurfaceType, error) {
	if ha.isRaised(pos[0], pos[1]) {
		return grid.SurfaceRock, nil
	}
	return grid.SurfaceGround, nil
}
