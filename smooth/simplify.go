package smooth

import (
	"github.com/go-gl/mathgl/mgl64"

	"grid-planner/grid"
	"grid-planner/spatial"
)

// Simplify removes redundant cells from a path. From each kept cell it jumps
// to the furthest later cell still in line of sight. The first and last cells
// are always kept and the result is never longer than the input.
func Simplify(snap *grid.Snapshot, cells []grid.Coord, clearance int) []grid.Coord {
	if len(cells) <= 2 {
		return append([]grid.Coord(nil), cells...)
	}

	out := []grid.Coord{cells[0]}
	anchor := 0
	for anchor < len(cells)-1 {
		next := anchor + 1
		for j := len(cells) - 1; j > anchor+1; j-- {
			if LineOfSight(snap, cells[anchor], cells[j], clearance) {
				next = j
				break
			}
		}
		out = append(out, cells[next])
		anchor = next
	}
	return out
}

// Waypoints converts a simplified cell path into world positions. The first
// and last waypoints are start and goal; the ones in between are cell
// centers, resting on the terrain height for planar grids. A single-cell
// path yields start and goal, or just start when they coincide.
func Waypoints(snap *grid.Snapshot, idx *spatial.Index, cells []grid.Coord, start, goal mgl64.Vec3) []mgl64.Vec3 {
	if len(cells) == 0 {
		return nil
	}
	if len(cells) == 1 {
		if start.ApproxEqual(goal) {
			return []mgl64.Vec3{start}
		}
		return []mgl64.Vec3{start, goal}
	}

	out := make([]mgl64.Vec3, 0, len(cells))
	out = append(out, start)
	for _, c := range cells[1 : len(cells)-1] {
		p := idx.ToWorld(c)
		if idx.Planar() {
			cell, _ := snap.CellAt(c)
			p[2] = cell.Height
		}
		out = append(out, p)
	}
	return append(out, goal)
}
