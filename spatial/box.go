package spatial

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Box is an axis-aligned world-space box. Both corners are inclusive.
type Box struct {
	Min, Max mgl64.Vec3
}

// BoxAround returns the box spanned by a and b, grown by margin on every side
func BoxAround(a, b mgl64.Vec3, margin float64) Box {
	box := Box{
		Min: mgl64.Vec3{min(a[0], b[0]), min(a[1], b[1]), min(a[2], b[2])},
		Max: mgl64.Vec3{max(a[0], b[0]), max(a[1], b[1]), max(a[2], b[2])},
	}
	return box.Expand(margin)
}

// Valid reports whether Max is nowhere below Min
func (b Box) Valid() bool {
	return b.Max[0] >= b.Min[0] && b.Max[1] >= b.Min[1] && b.Max[2] >= b.Min[2]
}

// Size returns the extent of the box on each axis
func (b Box) Size() mgl64.Vec3 {
	return b.Max.Sub(b.Min)
}

// Contains reports whether p lies inside b
func (b Box) Contains(p mgl64.Vec3) bool {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] || p[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// Intersects reports whether b and o overlap
func (b Box) Intersects(o Box) bool {
	for i := 0; i < 3; i++ {
		if b.Max[i] < o.Min[i] || o.Max[i] < b.Min[i] {
			return false
		}
	}
	return true
}

// Intersect returns the overlap of b and o. The result is invalid when they do not overlap.
func (b Box) Intersect(o Box) Box {
	return Box{
		Min: mgl64.Vec3{max(b.Min[0], o.Min[0]), max(b.Min[1], o.Min[1]), max(b.Min[2], o.Min[2])},
		Max: mgl64.Vec3{min(b.Max[0], o.Max[0]), min(b.Max[1], o.Max[1]), min(b.Max[2], o.Max[2])},
	}
}

// Union returns the smallest box holding b and o
func (b Box) Union(o Box) Box {
	return Box{
		Min: mgl64.Vec3{min(b.Min[0], o.Min[0]), min(b.Min[1], o.Min[1]), min(b.Min[2], o.Min[2])},
		Max: mgl64.Vec3{max(b.Max[0], o.Max[0]), max(b.Max[1], o.Max[1]), max(b.Max[2], o.Max[2])},
	}
}

// Expand grows b by m on every side
func (b Box) Expand(m float64) Box {
	d := mgl64.Vec3{m, m, m}
	return Box{Min: b.Min.Sub(d), Max: b.Max.Add(d)}
}

func (b Box) String() string {
	return fmt.Sprintf("[(%g,%g,%g)..(%g,%g,%g)]",
		b.Min[0], b.Min[1], b.Min[2], b.Max[0], b.Max[1], b.Max[2])
}
