package search

import (
	"math"

	"grid-planner/grid"
	"grid-planner/spatial"
)

// EdgeCost is the cost of stepping from one cell onto an adjacent one: the
// step factor times the destination cost, plus climbWeight per unit of
// elevation gained.
func EdgeCost(snap *grid.Snapshot, idx *spatial.Index, from, to grid.Coord, climbWeight float64) float64 {
	cell, _ := snap.CellAt(to)
	cost := idx.StepFactor(from, to) * cell.Cost
	if climbWeight > 0 {
		if rise := elevation(snap, idx, to) - elevation(snap, idx, from); rise > 0 {
			cost += climbWeight * rise
		}
	}
	return cost
}

// PathCost sums EdgeCost along a cell path
func PathCost(snap *grid.Snapshot, idx *spatial.Index, path []grid.Coord, climbWeight float64) float64 {
	total := 0.0
	for i := 1; i < len(path); i++ {
		total += EdgeCost(snap, idx, path[i-1], path[i], climbWeight)
	}
	return total
}

// elevation is the terrain height for planar grids and the cell center
// height for volumes
func elevation(snap *grid.Snapshot, idx *spatial.Index, c grid.Coord) float64 {
	if idx.Planar() {
		cell, _ := snap.CellAt(c)
		return cell.Height
	}
	return idx.ToWorld(c)[2]
}

// heuristic estimates the remaining cost as a step distance times the
// smallest cell cost. The octile and Euclidean kinds never overestimate for
// weight 1.
type heuristic struct {
	kind     Heuristic
	goal     grid.Coord
	scale    float64
	diagonal bool
	f2, f3   float64
	chebyFix bool
	euclid   float64
}

func newHeuristic(idx *spatial.Index, conn grid.Connectivity, kind Heuristic, goal grid.Coord, weight, minCost float64) heuristic {
	h := heuristic{kind: kind, goal: goal, diagonal: conn.Diagonal()}
	if kind == HeuristicNone || math.IsInf(minCost, 0) || minCost <= 0 {
		return h
	}
	h.scale = weight * minCost

	// Two axis moves never cost more than two straight moves, and so on.
	h.f2 = min(idx.DiagonalCost(), 2)
	h.f3 = min(idx.CornerCost(), h.f2+1)
	// Odd factor tables fall back to a plain Chebyshev bound.
	h.chebyFix = h.f2 < 1 || h.f3 < h.f2

	// A straight line may not cost more than the steps it stands for.
	h.euclid = 1
	if h.diagonal {
		h.euclid = min(1, h.f2/math.Sqrt2, h.f3/math.Sqrt(3))
	}
	return h
}

func (h heuristic) estimate(c grid.Coord) float64 {
	if h.scale == 0 {
		return 0
	}
	d0, d1, d2 := abs(c.X-h.goal.X), abs(c.Y-h.goal.Y), abs(c.Z-h.goal.Z)
	switch {
	case h.kind == HeuristicEuclidean:
		return h.scale * h.euclid * math.Sqrt(float64(d0*d0+d1*d1+d2*d2))
	case h.kind == HeuristicManhattan || !h.diagonal:
		return h.scale * float64(d0+d1+d2)
	}

	// Sort descending.
	if d0 < d1 {
		d0, d1 = d1, d0
	}
	if d1 < d2 {
		d1, d2 = d2, d1
	}
	if d0 < d1 {
		d0, d1 = d1, d0
	}
	if h.chebyFix {
		return h.scale * float64(d0) * min(1, h.f2, h.f3)
	}
	return h.scale * (float64(d0-d1) + float64(d1-d2)*h.f2 + float64(d2)*h.f3)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
