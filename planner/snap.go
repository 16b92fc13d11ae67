package planner

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"grid-planner/grid"
	"grid-planner/search"
)

// maxRequiredCells bounds the clearance a request asks for; it already
// reaches past the edge of any grid.
const maxRequiredCells = 1 << 20

// requiredCells converts an agent radius into the clearance a cell must
// have. An agent whose radius fits inside half a cell needs none.
func requiredCells(radius, cellSize float64) int {
	if radius <= 0 {
		return 0
	}
	return int(max(0, min(math.Ceil(radius/cellSize-0.5), maxRequiredCells)))
}

// snapEndpoint maps a request endpoint to the cell a search starts or ends
// on, together with the world point reported for it. Points on an eligible
// cell are kept as given. Points off the grid or on a cell the agent cannot
// occupy move to the nearest eligible cell center within the snap radius.
func (e *Engine) snapEndpoint(snap *grid.Snapshot, p mgl64.Vec3, clearance int) (grid.Coord, mgl64.Vec3, error) {
	idx := e.index
	planar := idx.Planar()

	c, err := idx.ToCell(p)
	inside := err == nil
	if inside && snap.Passable(c, clearance) {
		return c, p, nil
	}

	if !inside {
		q := idx.Clamp(p)
		off := p.Sub(q)
		if planar {
			off[2] = 0
		}
		if off.Len() > float64(e.opts.snapRadius)*idx.CellSize() {
			return grid.Coord{}, p, fmt.Errorf("%w: %v is more than %d cells outside the grid", grid.ErrOutOfBounds, p, e.opts.snapRadius)
		}
		if c, err = idx.ToCell(q); err != nil {
			return grid.Coord{}, p, err
		}
	}

	best, ok := e.nearestEligible(snap, c, p, clearance)
	if !ok {
		if !inside {
			return grid.Coord{}, p, fmt.Errorf("%w: no eligible cell near %v", grid.ErrOutOfBounds, p)
		}
		return grid.Coord{}, p, fmt.Errorf("%w: no eligible cell within %d cells of %v for clearance %d",
			search.ErrNoPathFound, e.opts.snapRadius, p, clearance)
	}

	w := idx.ToWorld(best)
	if planar {
		cell, _ := snap.CellAt(best)
		w[2] = cell.Height
	}
	return best, w, nil
}

// nearestEligible scans the snap window around c for the passable cell whose
// center is closest to p. Ties keep the first cell in scan order.
func (e *Engine) nearestEligible(snap *grid.Snapshot, c grid.Coord, p mgl64.Vec3, clearance int) (grid.Coord, bool) {
	planar := e.index.Planar()
	window, ok := grid.Region{Min: c, Max: c}.Expand(e.opts.snapRadius, planar).Clamp(snap.Dims())
	if !ok {
		return grid.Coord{}, false
	}

	var best grid.Coord
	bestDist := math.Inf(1)
	window.Each(func(n grid.Coord) bool {
		if !snap.Passable(n, clearance) {
			return true
		}
		d := e.index.ToWorld(n).Sub(p)
		if planar {
			d[2] = 0
		}
		if dist := d.LenSqr(); dist < bestDist {
			best, bestDist = n, dist
		}
		return true
	})
	return best, !math.IsInf(bestDist, 1)
}
