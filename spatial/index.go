package spatial

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"grid-planner/grid"
)

// Option configures an Index
type Option func(*Index)

// WithDiagonalCost sets the step factor for moves that change two axes.
// Non-positive values are ignored.
func WithDiagonalCost(f float64) Option {
	return func(ix *Index) {
		if f > 0 && !math.IsInf(f, 0) {
			ix.diagonal = f
		}
	}
}

// WithCornerCost sets the step factor for moves that change all three axes.
// Non-positive values are ignored.
func WithCornerCost(f float64) Option {
	return func(ix *Index) {
		if f > 0 && !math.IsInf(f, 0) {
			ix.corner = f
		}
	}
}

// Index maps world positions onto grid cells. It is immutable after New.
type Index struct {
	bounds   Box
	cellSize mgl64.Vec3
	dims     grid.Dims
	planar   bool
	diagonal float64
	corner   float64
}

// New lays a grid of cubic cells over bounds. The bounds are rounded up to a
// whole number of cells. In planar mode the grid has a single layer spanning
// the full height of the bounds.
func New(bounds Box, cellSize float64, planar bool, opts ...Option) (*Index, error) {
	if !bounds.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBounds, bounds)
	}
	if !(cellSize > 0) || math.IsInf(cellSize, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCellSize, cellSize)
	}

	ix := &Index{
		planar:   planar,
		diagonal: math.Sqrt2,
		corner:   math.Sqrt(3),
	}
	for _, opt := range opts {
		opt(ix)
	}

	size := bounds.Size()
	cells := func(extent float64) int {
		return max(1, int(math.Ceil(extent/cellSize)))
	}
	ix.dims = grid.Dims{X: cells(size[0]), Y: cells(size[1]), Z: cells(size[2])}
	ix.cellSize = mgl64.Vec3{cellSize, cellSize, cellSize}
	if planar {
		ix.dims.Z = 1
		ix.cellSize[2] = max(size[2], cellSize)
	}

	ix.bounds = Box{Min: bounds.Min}
	for i := 0; i < 3; i++ {
		n := [3]int{ix.dims.X, ix.dims.Y, ix.dims.Z}[i]
		ix.bounds.Max[i] = bounds.Min[i] + float64(n)*ix.cellSize[i]
	}
	return ix, nil
}

// Dims returns the grid dimensions
func (ix *Index) Dims() grid.Dims { return ix.dims }

// Bounds returns the world box covered by the grid
func (ix *Index) Bounds() Box { return ix.bounds }

// CellSize returns the horizontal cell edge length
func (ix *Index) CellSize() float64 { return ix.cellSize[0] }

// Planar reports whether the grid is a single 2.5D layer
func (ix *Index) Planar() bool { return ix.planar }

// ToCell returns the cell containing p. The max edge of the bounds belongs
// to the last cell. Planar grids ignore Z.
func (ix *Index) ToCell(p mgl64.Vec3) (grid.Coord, error) {
	axes := 3
	if ix.planar {
		axes = 2
	}
	var out [3]int
	n := [3]int{ix.dims.X, ix.dims.Y, ix.dims.Z}
	for i := 0; i < axes; i++ {
		if math.IsNaN(p[i]) || p[i] < ix.bounds.Min[i] || p[i] > ix.bounds.Max[i] {
			return grid.Coord{}, fmt.Errorf("%w: position (%g,%g,%g)", grid.ErrOutOfBounds, p[0], p[1], p[2])
		}
		out[i] = min(int((p[i]-ix.bounds.Min[i])/ix.cellSize[i]), n[i]-1)
	}
	return grid.Coord{X: out[0], Y: out[1], Z: out[2]}, nil
}

// ToWorld returns the center of cell c
func (ix *Index) ToWorld(c grid.Coord) mgl64.Vec3 {
	return mgl64.Vec3{
		ix.bounds.Min[0] + (float64(c.X)+0.5)*ix.cellSize[0],
		ix.bounds.Min[1] + (float64(c.Y)+0.5)*ix.cellSize[1],
		ix.bounds.Min[2] + (float64(c.Z)+0.5)*ix.cellSize[2],
	}
}

// Clamp pulls p inside the grid bounds
func (ix *Index) Clamp(p mgl64.Vec3) mgl64.Vec3 {
	for i := 0; i < 3; i++ {
		p[i] = mgl64.Clamp(p[i], ix.bounds.Min[i], ix.bounds.Max[i])
	}
	return p
}

// Neighbors returns the in-bounds neighbors of c
func (ix *Index) Neighbors(c grid.Coord, conn grid.Connectivity) []grid.Coord {
	return grid.AppendNeighbors(nil, ix.dims, c, conn)
}

// StepFactor returns the distance multiplier for a move between adjacent
// cells: 1 along an axis, the diagonal cost across two axes and the corner
// cost across three.
func (ix *Index) StepFactor(from, to grid.Coord) float64 {
	switch grid.AxesChanged(from, to) {
	case 0:
		return 0
	case 1:
		return 1
	case 2:
		return ix.diagonal
	}
	return ix.corner
}

// DiagonalCost returns the two-axis step factor
func (ix *Index) DiagonalCost() float64 { return ix.diagonal }

// CornerCost returns the three-axis step factor
func (ix *Index) CornerCost() float64 { return ix.corner }

// BoxRegion returns the cells overlapped by box. The second result is false
// when the box misses the grid entirely.
func (ix *Index) BoxRegion(box Box) (grid.Region, bool) {
	query := box
	if ix.planar {
		query.Min[2], query.Max[2] = ix.bounds.Min[2], ix.bounds.Max[2]
	}
	if !query.Valid() || !query.Intersects(ix.bounds) {
		return grid.Region{}, false
	}
	clipped := query.Intersect(ix.bounds)
	lo, err := ix.ToCell(clipped.Min)
	if err != nil {
		return grid.Region{}, false
	}
	hi, err := ix.ToCell(clipped.Max)
	if err != nil {
		return grid.Region{}, false
	}
	return grid.Region{Min: lo, Max: hi}, true
}

// RegionBox returns the world box covered by r
func (ix *Index) RegionBox(r grid.Region) Box {
	lo := ix.ToWorld(r.Min).Sub(ix.cellSize.Mul(0.5))
	hi := ix.ToWorld(r.Max).Add(ix.cellSize.Mul(0.5))
	return Box{Min: lo, Max: hi}
}
