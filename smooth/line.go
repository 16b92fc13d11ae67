package smooth

import (
	"iter"

	"grid-planner/grid"
)

// Line yields the cells of a 3D Bresenham line from a to b, both included.
// Consecutive cells are always adjacent.
func Line(a, b grid.Coord) iter.Seq[grid.Coord] {
	return func(yield func(grid.Coord) bool) {
		d := [3]int{abs(b.X - a.X), abs(b.Y - a.Y), abs(b.Z - a.Z)}
		step := [3]int{sign(b.X - a.X), sign(b.Y - a.Y), sign(b.Z - a.Z)}
		cur := [3]int{a.X, a.Y, a.Z}

		// Dominant axis first, the other two follow their error terms.
		dom := 0
		if d[1] > d[dom] {
			dom = 1
		}
		if d[2] > d[dom] {
			dom = 2
		}
		o1, o2 := (dom+1)%3, (dom+2)%3
		err1, err2 := d[dom]/2, d[dom]/2

		if !yield(grid.Coord{X: cur[0], Y: cur[1], Z: cur[2]}) {
			return
		}
		for i := 0; i < d[dom]; i++ {
			cur[dom] += step[dom]
			err1 += d[o1]
			if err1 >= d[dom] {
				cur[o1] += step[o1]
				err1 -= d[dom]
			}
			err2 += d[o2]
			if err2 >= d[dom] {
				cur[o2] += step[o2]
				err2 -= d[dom]
			}
			if !yield(grid.Coord{X: cur[0], Y: cur[1], Z: cur[2]}) {
				return
			}
		}
	}
}

// LineOfSight reports whether an agent needing clearance can walk the
// straight line from a to b. Every step along the line must be a legal
// move, so the line never cuts a blocked corner.
func LineOfSight(snap *grid.Snapshot, a, b grid.Coord, clearance int) bool {
	if !snap.Passable(a, clearance) {
		return false
	}
	prev := a
	for c := range Line(a, b) {
		if c == a {
			continue
		}
		if !snap.StepAllowed(prev, c, clearance) {
			return false
		}
		prev = c
	}
	return true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
