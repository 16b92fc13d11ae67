package grid

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// chunkEdge is the edge length, in cells, of one copy-on-write region
const chunkEdge = 16

// chunk is one region of the arena. Chunks are immutable once published;
// writers clone them.
type chunk struct {
	cells   []Cell
	version uint64
	minCost float64
}

func (c *chunk) clone() *chunk {
	cells := make([]Cell, len(c.cells))
	copy(cells, c.cells)
	return &chunk{cells: cells, version: c.version, minCost: c.minCost}
}

func (c *chunk) refreshMinCost() {
	c.minCost = Impassable
	for i := range c.cells {
		if c.cells[i].Walkable && c.cells[i].Cost < c.minCost {
			c.minCost = c.cells[i].Cost
		}
	}
}

// Snapshot is an immutable, versioned view of every cell. Searches hold one
// snapshot for their whole lifetime.
type Snapshot struct {
	dims      Dims
	chunkSize Dims
	chunkDims Dims
	chunks    []*chunk
	version   uint64
	minCost   float64

	// clearanceLimit caps stored clearance; negative when stored values are exact
	clearanceLimit int
	planar         bool
}

// Version returns the cost-field version this snapshot represents
func (s *Snapshot) Version() uint64 { return s.version }

// Dims returns the grid dimensions
func (s *Snapshot) Dims() Dims { return s.dims }

// MinCost returns the smallest walkable cell cost, or Impassable if no cell is walkable
func (s *Snapshot) MinCost() float64 { return s.minCost }

func (s *Snapshot) locate(c Coord) (int, int) {
	cs := s.chunkSize
	cc := Coord{X: c.X / cs.X, Y: c.Y / cs.Y, Z: c.Z / cs.Z}
	lc := Coord{X: c.X % cs.X, Y: c.Y % cs.Y, Z: c.Z % cs.Z}
	return s.chunkDims.Index(cc), cs.Index(lc)
}

// CellAt returns the cell at c. Unknown coordinates are absent.
func (s *Snapshot) CellAt(c Coord) (Cell, bool) {
	if !s.dims.Contains(c) {
		return Cell{Cost: Impassable}, false
	}
	ci, li := s.locate(c)
	return s.chunks[ci].cells[li], true
}

// RegionVersion returns the version at which the region holding c last changed
func (s *Snapshot) RegionVersion(c Coord) uint64 {
	if !s.dims.Contains(c) {
		return 0
	}
	ci, _ := s.locate(c)
	return s.chunks[ci].version
}

// Neighbors returns the in-bounds neighbors of c
func (s *Snapshot) Neighbors(c Coord, conn Connectivity) []Coord {
	return AppendNeighbors(nil, s.dims, c, conn)
}

// Passable reports whether an agent needing the given clearance may stand on c
func (s *Snapshot) Passable(c Coord, clearance int) bool {
	cell, ok := s.CellAt(c)
	if !ok || cell.Blocked() {
		return false
	}
	stored := int(cell.Clearance)
	if stored >= clearance {
		return true
	}
	if s.clearanceLimit < 0 || stored < s.clearanceLimit {
		return false
	}
	return clearanceFrom(c, stored+1, clearance, s.planar, s.blocked) >= clearance
}

// StepAllowed reports whether a single move from one cell to an adjacent one
// is legal. Diagonal moves must not cut corners: every cell reached by moving
// along a strict subset of the changed axes has to be passable too.
func (s *Snapshot) StepAllowed(from, to Coord, clearance int) bool {
	if !s.Passable(to, clearance) {
		return false
	}
	d := Coord{X: to.X - from.X, Y: to.Y - from.Y, Z: to.Z - from.Z}
	var changed int
	if d.X != 0 {
		changed |= 1
	}
	if d.Y != 0 {
		changed |= 2
	}
	if d.Z != 0 {
		changed |= 4
	}
	for mask := 1; mask < changed; mask++ {
		if mask&changed != mask {
			continue
		}
		mid := from
		if mask&1 != 0 {
			mid.X += d.X
		}
		if mask&2 != 0 {
			mid.Y += d.Y
		}
		if mask&4 != 0 {
			mid.Z += d.Z
		}
		if !s.Passable(mid, clearance) {
			return false
		}
	}
	return true
}

// Grid owns the cell arena. Writers are serialized; readers load the current
// snapshot without locking.
type Grid struct {
	dims    Dims
	mu      sync.Mutex
	current atomic.Pointer[Snapshot]
}

// New creates a grid whose cells all start as void (non-walkable)
func New(d Dims) (*Grid, error) {
	if d.X <= 0 || d.Y <= 0 || d.Z <= 0 {
		return nil, fmt.Errorf("%w: %+v", ErrInvalidDims, d)
	}

	cs := Dims{X: min(chunkEdge, d.X), Y: min(chunkEdge, d.Y), Z: min(chunkEdge, d.Z)}
	cd := Dims{
		X: (d.X + cs.X - 1) / cs.X,
		Y: (d.Y + cs.Y - 1) / cs.Y,
		Z: (d.Z + cs.Z - 1) / cs.Z,
	}

	// Every chunk starts out sharing one void chunk; the first write clones it.
	void := &chunk{cells: make([]Cell, cs.Len()), minCost: Impassable}
	for i := range void.cells {
		void.cells[i].Cost = Impassable
	}
	chunks := make([]*chunk, cd.Len())
	for i := range chunks {
		chunks[i] = void
	}

	g := &Grid{dims: d}
	g.current.Store(&Snapshot{
		dims:      d,
		chunkSize: cs,
		chunkDims: cd,
		chunks:    chunks,
		minCost:   Impassable,

		clearanceLimit: -1,
	})
	return g, nil
}

// Dims returns the grid dimensions
func (g *Grid) Dims() Dims { return g.dims }

// Snapshot returns the current cost-field version
func (g *Grid) Snapshot() *Snapshot { return g.current.Load() }

// Version returns the current cost-field version number
func (g *Grid) Version() uint64 { return g.current.Load().version }

// CellAt returns the cell at c in the current version
func (g *Grid) CellAt(c Coord) (Cell, bool) {
	return g.current.Load().CellAt(c)
}

// Neighbors returns the in-bounds neighbors of c
func (g *Grid) Neighbors(c Coord, conn Connectivity) []Coord {
	return AppendNeighbors(nil, g.dims, c, conn)
}

// SetCell replaces one cell and publishes a new version
func (g *Grid) SetCell(c Coord, cell Cell) error {
	_, err := g.Update(func(tx *Tx) error {
		return tx.SetCell(c, cell)
	})
	return err
}

// Update runs fn against a private copy of the current version. If fn
// succeeds the copy is published as the next version; otherwise it is
// discarded and the current snapshot is returned unchanged.
func (g *Grid) Update(fn func(tx *Tx) error) (*Snapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	base := g.current.Load()
	tx := newTx(base)
	if err := fn(tx); err != nil {
		return base, err
	}

	next := tx.next
	for ci := range tx.owned {
		next.chunks[ci].refreshMinCost()
	}
	next.minCost = Impassable
	for _, ch := range next.chunks {
		if ch.minCost < next.minCost {
			next.minCost = ch.minCost
		}
	}
	g.current.Store(next)
	return next, nil
}

// Tx is a pending batch of cell writes
type Tx struct {
	next  *Snapshot
	owned map[int]bool
}

func newTx(base *Snapshot) *Tx {
	chunks := make([]*chunk, len(base.chunks))
	copy(chunks, base.chunks)
	next := *base
	next.chunks = chunks
	next.version = base.version + 1
	return &Tx{next: &next, owned: make(map[int]bool)}
}

// Dims returns the grid dimensions
func (tx *Tx) Dims() Dims { return tx.next.dims }

// Version returns the version this transaction will publish
func (tx *Tx) Version() uint64 { return tx.next.version }

// CellAt reads through pending writes
func (tx *Tx) CellAt(c Coord) (Cell, bool) {
	return tx.next.CellAt(c)
}

// SetCell stages a cell write, bumping the owning region's version
func (tx *Tx) SetCell(c Coord, cell Cell) error {
	if !tx.next.dims.Contains(c) {
		return fmt.Errorf("%w: %v", ErrOutOfBounds, c)
	}
	cell, err := cell.normalize()
	if err != nil {
		return fmt.Errorf("set cell %v: %w", c, err)
	}

	ci, li := tx.next.locate(c)
	ch := tx.next.chunks[ci]
	if !tx.owned[ci] {
		ch = ch.clone()
		ch.version = tx.next.version
		tx.next.chunks[ci] = ch
		tx.owned[ci] = true
	}

	ch.cells[li] = cell
	return nil
}
