package grid

import "fmt"

// Coord addresses a single cell of the grid
type Coord struct {
	X, Y, Z int
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z)
}

// Add returns c offset by o
func (c Coord) Add(o Coord) Coord {
	return Coord{X: c.X + o.X, Y: c.Y + o.Y, Z: c.Z + o.Z}
}

// Dims holds the number of cells along each axis
type Dims struct {
	X, Y, Z int
}

// Len returns the total number of cells
func (d Dims) Len() int {
	return d.X * d.Y * d.Z
}

// Contains reports whether c lies inside the grid
func (d Dims) Contains(c Coord) bool {
	return c.X >= 0 && c.X < d.X &&
		c.Y >= 0 && c.Y < d.Y &&
		c.Z >= 0 && c.Z < d.Z
}

// Index flattens c into a dense array offset. c must be in bounds.
func (d Dims) Index(c Coord) int {
	return (c.Z*d.Y+c.Y)*d.X + c.X
}

// Coord is the inverse of Index
func (d Dims) Coord(i int) Coord {
	x := i % d.X
	i /= d.X
	return Coord{X: x, Y: i % d.Y, Z: i / d.Y}
}

// Region is an inclusive box of cells
type Region struct {
	Min, Max Coord
}

// Full returns the region covering every cell of d
func (d Dims) Full() Region {
	return Region{Max: Coord{X: d.X - 1, Y: d.Y - 1, Z: d.Z - 1}}
}

// Empty reports whether the region holds no cells
func (r Region) Empty() bool {
	return r.Max.X < r.Min.X || r.Max.Y < r.Min.Y || r.Max.Z < r.Min.Z
}

// Contains reports whether c lies inside r
func (r Region) Contains(c Coord) bool {
	return c.X >= r.Min.X && c.X <= r.Max.X &&
		c.Y >= r.Min.Y && c.Y <= r.Max.Y &&
		c.Z >= r.Min.Z && c.Z <= r.Max.Z
}

// Len returns the number of cells in r
func (r Region) Len() int {
	if r.Empty() {
		return 0
	}
	return (r.Max.X - r.Min.X + 1) * (r.Max.Y - r.Min.Y + 1) * (r.Max.Z - r.Min.Z + 1)
}

// Expand grows r by n cells on every axis. Planar regions keep their Z span.
func (r Region) Expand(n int, planar bool) Region {
	out := Region{
		Min: Coord{X: r.Min.X - n, Y: r.Min.Y - n, Z: r.Min.Z},
		Max: Coord{X: r.Max.X + n, Y: r.Max.Y + n, Z: r.Max.Z},
	}
	if !planar {
		out.Min.Z -= n
		out.Max.Z += n
	}
	return out
}

// Clamp intersects r with the grid. The second result is false when nothing is left.
func (r Region) Clamp(d Dims) (Region, bool) {
	out := Region{
		Min: Coord{X: max(r.Min.X, 0), Y: max(r.Min.Y, 0), Z: max(r.Min.Z, 0)},
		Max: Coord{X: min(r.Max.X, d.X-1), Y: min(r.Max.Y, d.Y-1), Z: min(r.Max.Z, d.Z-1)},
	}
	return out, !out.Empty()
}

// Union returns the smallest region containing both r and o
func (r Region) Union(o Region) Region {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	return Region{
		Min: Coord{X: min(r.Min.X, o.Min.X), Y: min(r.Min.Y, o.Min.Y), Z: min(r.Min.Z, o.Min.Z)},
		Max: Coord{X: max(r.Max.X, o.Max.X), Y: max(r.Max.Y, o.Max.Y), Z: max(r.Max.Z, o.Max.Z)},
	}
}

// Intersect returns the overlap of r and o. The second result is false when they are disjoint.
func (r Region) Intersect(o Region) (Region, bool) {
	out := Region{
		Min: Coord{X: max(r.Min.X, o.Min.X), Y: max(r.Min.Y, o.Min.Y), Z: max(r.Min.Z, o.Min.Z)},
		Max: Coord{X: min(r.Max.X, o.Max.X), Y: min(r.Max.Y, o.Max.Y), Z: min(r.Max.Z, o.Max.Z)},
	}
	return out, !out.Empty()
}

// Each visits every cell of r in X-fastest order until fn returns false
func (r Region) Each(fn func(Coord) bool) {
	for z := r.Min.Z; z <= r.Max.Z; z++ {
		for y := r.Min.Y; y <= r.Max.Y; y++ {
			for x := r.Min.X; x <= r.Max.X; x++ {
				if !fn(Coord{X: x, Y: y, Z: z}) {
					return
				}
			}
		}
	}
}

func (r Region) String() string {
	return fmt.Sprintf("[%v..%v]", r.Min, r.Max)
}

// Chebyshev returns the largest per-axis distance between a and b
func Chebyshev(a, b Coord) int {
	return max(abs(a.X-b.X), abs(a.Y-b.Y), abs(a.Z-b.Z))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
