package obstacle

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// RemoveContained drops obstacles whose prism lies entirely inside another
// obstacle of the same kind. Of two identical prisms the first one is kept.
func RemoveContained(obstacles []Obstacle) []Obstacle {
	if len(obstacles) <= 1 {
		return obstacles
	}

	contained := make([]bool, len(obstacles))
	for i := range obstacles {
		if contained[i] {
			continue
		}
		for j := range obstacles {
			if i == j || contained[j] {
				continue
			}
			if isContainedIn(obstacles[j], obstacles[i]) {
				contained[j] = true
				continue
			}
			if isContainedIn(obstacles[i], obstacles[j]) {
				contained[i] = true
				break
			}
		}
	}

	result := make([]Obstacle, 0, len(obstacles))
	for i, o := range obstacles {
		if !contained[i] {
			result = append(result, o)
		}
	}
	return result
}

// isContainedIn checks whether prism a lies within prism b
func isContainedIn(a, b Obstacle) bool {
	if a.Kind != b.Kind || a.MinZ < b.MinZ || a.MaxZ > b.MaxZ {
		return false
	}
	if len(a.Footprint) == 0 || len(b.Footprint) == 0 {
		return false
	}

	// Quick bounding box check first
	ab, bb := a.Footprint.Bound(), b.Footprint.Bound()
	if !bb.Contains(ab.Min) || !bb.Contains(ab.Max) {
		return false
	}

	for _, p := range a.Footprint[0] {
		if !onOrInside(b.Footprint, p) {
			return false
		}
	}
	return true
}

// onOrInside treats points on the outer ring as inside
func onOrInside(poly orb.Polygon, p orb.Point) bool {
	if planar.PolygonContains(poly, p) {
		return true
	}
	ring := poly[0]
	for i := 0; i+1 < len(ring); i++ {
		if onSegment(ring[i], ring[i+1], p) {
			return true
		}
	}
	return false
}

func onSegment(a, b, p orb.Point) bool {
	const eps = 1e-9
	cross := (b[0]-a[0])*(p[1]-a[1]) - (b[1]-a[1])*(p[0]-a[0])
	if cross > eps || cross < -eps {
		return false
	}
	return p[0] >= min(a[0], b[0])-eps && p[0] <= max(a[0], b[0])+eps &&
		p[1] >= min(a[1], b[1])-eps && p[1] <= max(a[1], b[1])+eps
}
