package grid

import "fmt"

// Connectivity selects which cells count as neighbors.
//
// Conn4 and Conn8 are planar (2.5D) and never leave the cell's layer.
// Conn6 and Conn26 are volumetric.
type Connectivity int

const (
	Conn4  Connectivity = 4
	Conn6  Connectivity = 6
	Conn8  Connectivity = 8
	Conn26 Connectivity = 26
)

// Neighbor offsets per connectivity, axis-aligned moves first so that
// enumeration order is stable across runs.
var (
	offsets4  = buildOffsets(true, 1)
	offsets8  = buildOffsets(true, 2)
	offsets6  = buildOffsets(false, 1)
	offsets26 = buildOffsets(false, 3)
)

// buildOffsets lists every unit offset that changes at most maxAxes axes
func buildOffsets(planar bool, maxAxes int) []Coord {
	zr := 1
	if planar {
		zr = 0
	}
	var out []Coord
	for axes := 1; axes <= maxAxes; axes++ {
		for dz := -zr; dz <= zr; dz++ {
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if abs(dx)+abs(dy)+abs(dz) == axes {
						out = append(out, Coord{X: dx, Y: dy, Z: dz})
					}
				}
			}
		}
	}
	return out
}

// Valid reports whether c is one of the supported values
func (c Connectivity) Valid() bool {
	switch c {
	case Conn4, Conn6, Conn8, Conn26:
		return true
	}
	return false
}

// Planar reports whether moves stay within one Z layer
func (c Connectivity) Planar() bool {
	return c == Conn4 || c == Conn8
}

// Diagonal reports whether moves may change more than one axis
func (c Connectivity) Diagonal() bool {
	return c == Conn8 || c == Conn26
}

// Offsets returns the neighbor offsets for c. The slice must not be modified.
func (c Connectivity) Offsets() []Coord {
	switch c {
	case Conn4:
		return offsets4
	case Conn6:
		return offsets6
	case Conn8:
		return offsets8
	case Conn26:
		return offsets26
	}
	return nil
}

func (c Connectivity) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Connectivity(%d)", int(c))
	}
	return fmt.Sprintf("Conn%d", int(c))
}

// AppendNeighbors appends the in-bounds neighbors of c to dst
func AppendNeighbors(dst []Coord, d Dims, c Coord, conn Connectivity) []Coord {
	if !d.Contains(c) {
		return dst
	}
	for _, o := range conn.Offsets() {
		n := c.Add(o)
		if d.Contains(n) {
			dst = append(dst, n)
		}
	}
	return dst
}

// AxesChanged counts the axes on which a and b differ
func AxesChanged(a, b Coord) int {
	n := 0
	if a.X != b.X {
		n++
	}
	if a.Y != b.Y {
		n++
	}
	if a.Z != b.Z {
		n++
	}
	return n
}
