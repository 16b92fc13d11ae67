package grid

// Clearance returns the largest r <= limit such that no cell within
// Chebyshev distance r of c is blocked. Planar grids only look at the layer
// of c.
func Clearance(c Coord, limit int, planar bool, blocked func(Coord) bool) int {
	return clearanceFrom(c, 1, limit, planar, blocked)
}

func clearanceFrom(c Coord, from, limit int, planar bool, blocked func(Coord) bool) int {
	for r := from; r <= limit; r++ {
		if ringBlocked(c, r, planar, blocked) {
			return r - 1
		}
	}
	return limit
}

func ringBlocked(c Coord, r int, planar bool, blocked func(Coord) bool) bool {
	zr := r
	if planar {
		zr = 0
	}
	for dz := -zr; dz <= zr; dz++ {
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if max(abs(dx), abs(dy), abs(dz)) != r {
					continue
				}
				if blocked(Coord{X: c.X + dx, Y: c.Y + dy, Z: c.Z + dz}) {
					return true
				}
			}
		}
	}
	return false
}

// SetClearanceLimit records that cells store clearance values capped at
// limit. Passable then measures clearance beyond the cap on demand for cells
// sitting at it.
func (tx *Tx) SetClearanceLimit(limit int, planar bool) {
	tx.next.clearanceLimit = limit
	tx.next.planar = planar
}

func (s *Snapshot) blocked(c Coord) bool {
	cell, ok := s.CellAt(c)
	return !ok || cell.Blocked()
}
