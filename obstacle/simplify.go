package obstacle

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"
)

// SimplifyFootprints drops footprint vertices closer than epsilon world units
// to the Douglas-Peucker outline. A ring that would collapse below a triangle
// keeps every vertex. The input obstacles are not modified.
func SimplifyFootprints(obstacles []Obstacle, epsilon float64) []Obstacle {
	out := make([]Obstacle, len(obstacles))
	copy(out, obstacles)
	if !(epsilon > 0) {
		return out
	}

	dp := simplify.DouglasPeucker(epsilon)
	for i, o := range out {
		if len(o.Footprint) == 0 {
			continue
		}
		ring := dp.Ring(o.Footprint[0].Clone())
		if len(ring) < 4 {
			continue
		}
		out[i].Footprint = orb.Polygon{ring}
	}
	return out
}

// VertexCount sums the outer ring lengths of obstacles
func VertexCount(obstacles []Obstacle) int {
	n := 0
	for _, o := range obstacles {
		if len(o.Footprint) > 0 {
			n += len(o.Footprint[0])
		}
	}
	return n
}
