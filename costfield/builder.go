package costfield

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"grid-planner/grid"
	"grid-planner/spatial"
)

// cancelCheckCells is how many cells are processed between context checks
const cancelCheckCells = 1024

var (
	errNaNHeight = errors.New("terrain returned NaN height")
	errBadCost   = errors.New("terrain returned an invalid cost")
)

// Builder recomputes grid cells from its terrain and obstacle sources.
// Rebuilds are serialized; searches keep reading the previous version until
// a rebuild commits.
type Builder struct {
	grid      *grid.Grid
	index     *spatial.Index
	terrain   TerrainSource
	obstacles ObstacleSource
	opts      options

	mu    sync.Mutex
	track *tracker
}

// New creates a builder writing into g. g and idx must describe the same grid.
// A nil obstacle source means no obstacles.
func New(g *grid.Grid, idx *spatial.Index, terrain TerrainSource, obstacles ObstacleSource, opts ...Option) (*Builder, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	if g == nil || idx == nil || g.Dims() != idx.Dims() {
		return nil, fmt.Errorf("%w: grid and index dimensions differ", ErrInvalidOptions)
	}
	if terrain == nil {
		return nil, fmt.Errorf("%w: terrain source is required", ErrInvalidOptions)
	}
	if obstacles == nil {
		obstacles = NoObstacles{}
	}

	return &Builder{
		grid:      g,
		index:     idx,
		terrain:   terrain,
		obstacles: obstacles,
		opts:      o,
		track:     newTracker(),
	}, nil
}

// MaxClearance returns the largest clearance, in cells, the builder computes
func (b *Builder) MaxClearance() int { return b.opts.maxClearance }

// Idle returns a channel that is closed once no rebuild is running
func (b *Builder) Idle() <-chan struct{} { return b.track.idle() }

// RebuildAll recomputes every cell of the grid
func (b *Builder) RebuildAll(ctx context.Context) (Report, error) {
	return b.RebuildCells(ctx, b.index.Dims().Full())
}

// RebuildRegion recomputes the cells overlapping the world box [lo, hi].
// Parts of the box outside the grid are ignored; a box missing the grid
// entirely fails with grid.ErrOutOfBounds.
func (b *Builder) RebuildRegion(ctx context.Context, lo, hi mgl64.Vec3) (Report, error) {
	box := spatial.Box{Min: lo, Max: hi}
	r, ok := b.index.BoxRegion(box)
	if !ok {
		return Report{}, fmt.Errorf("%w: rebuild region %v", grid.ErrOutOfBounds, box)
	}
	return b.RebuildCells(ctx, r)
}

// RebuildCells recomputes region r and commits the result as one grid
// version. Only cancellation or a region outside the grid abort the rebuild;
// sampling failures are reported through Report.Err.
func (b *Builder) RebuildCells(ctx context.Context, r grid.Region) (Report, error) {
	start := time.Now()
	dims := b.index.Dims()
	target, ok := r.Clamp(dims)
	if !ok {
		return Report{}, fmt.Errorf("%w: rebuild region %v", grid.ErrOutOfBounds, r)
	}

	b.track.begin()
	defer b.track.end()
	b.mu.Lock()
	defer b.mu.Unlock()

	ctx, span := otel.Tracer("grid-planner").Start(ctx, "costfield.Builder.Rebuild",
		trace.WithAttributes(attribute.String("region", target.String())),
	)
	defer span.End()

	planar := b.index.Planar()
	effective, _ := target.Expand(b.opts.influence, planar).Clamp(dims)
	report := Report{Region: effective, Cells: effective.Len()}

	cells, err := b.sample(ctx, effective, &report)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "sampling aborted")
		return report, err
	}

	snap, err := b.grid.Update(func(tx *grid.Tx) error {
		i := 0
		var werr error
		effective.Each(func(c grid.Coord) bool {
			werr = tx.SetCell(c, cells[i])
			i++
			return werr == nil
		})
		if werr != nil {
			return werr
		}
		return b.refreshClearance(ctx, tx, effective)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "commit aborted")
		return report, err
	}

	report.Version = snap.Version()
	report.Elapsed = time.Since(start)
	span.SetAttributes(
		attribute.Int64("version", int64(report.Version)),
		attribute.Int("cells", report.Cells),
		attribute.Int("failed", report.Failed),
	)

	if report.Partial {
		span.AddEvent("partial_cost_field")
		b.opts.logger.Warn("costfield_rebuild_partial",
			slog.String("region", effective.String()),
			slog.Uint64("version", report.Version),
			slog.Int("failed", report.Failed),
			slog.String("error", report.Err().Error()),
		)
	} else {
		b.opts.logger.Debug("costfield_rebuild_complete",
			slog.String("region", effective.String()),
			slog.Uint64("version", report.Version),
			slog.Int("cells", report.Cells),
			slog.Int("blocked", report.Blocked),
			slog.Duration("duration", report.Elapsed),
		)
	}
	return report, nil
}

// sample computes fresh cells for region in Each order. Clearance is left
// for refreshClearance.
func (b *Builder) sample(ctx context.Context, region grid.Region, report *Report) ([]grid.Cell, error) {
	cells := make([]grid.Cell, region.Len())

	query, _ := region.Expand(b.opts.influence, b.index.Planar()).Clamp(b.index.Dims())
	occ, err := b.obstacles.QueryOccupancy(ctx, query, b.index)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		// Without occupancy nothing in the region is known to be safe.
		for i := range cells {
			cells[i] = grid.Cell{Surface: grid.SurfaceVoid}
		}
		report.fail(len(cells), fmt.Errorf("obstacle query: %w", err))
		report.Blocked = len(cells)
		return cells, nil
	}

	prox := b.proximity(occ, region)

	i := 0
	region.Each(func(c grid.Coord) bool {
		if i%cancelCheckCells == 0 && ctx.Err() != nil {
			return false
		}
		cell, serr := b.sampleCell(c, occ[c], prox[i])
		if serr != nil {
			report.fail(1, fmt.Errorf("cell %v: %w", c, serr))
		}
		if !cell.Walkable {
			report.Blocked++
		}
		cells[i] = cell
		i++
		return true
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return cells, nil
}

func (b *Builder) sampleCell(c grid.Coord, occ grid.Occupancy, prox float64) (grid.Cell, error) {
	failed := grid.Cell{Surface: grid.SurfaceVoid}
	p := b.index.ToWorld(c)
	w := b.opts.weights

	h, err := b.terrain.SampleHeight(p)
	if err != nil {
		return failed, err
	}
	if math.IsNaN(h) {
		return failed, errNaNHeight
	}
	cell := grid.Cell{Height: h, Occupancy: occ}

	base := w.Base
	if cs, ok := b.terrain.(CostSource); ok {
		scale, err := cs.SampleCost(p)
		if err != nil {
			return failed, err
		}
		if !(scale >= 0) || math.IsInf(scale, 0) {
			return failed, fmt.Errorf("%w: %v", errBadCost, scale)
		}
		base *= scale
	}

	if !b.index.Planar() {
		if p[2] < h || occ != 0 {
			return cell, nil
		}
		cell.Walkable = true
		cell.Cost = base + w.Obstacle*prox
		return cell, nil
	}

	slope, err := b.terrain.SampleSlope(p)
	if err != nil {
		return failed, err
	}
	surface, err := b.terrain.SampleSurfaceType(p)
	if err != nil {
		return failed, err
	}
	cell.Surface = surface

	slope = math.Abs(slope)
	profile := b.opts.surfaces.lookup(surface)
	if profile.Blocking || occ != 0 || math.IsNaN(slope) || slope > b.opts.maxSlope {
		return cell, nil
	}
	cell.Walkable = true
	cell.Cost = base*profile.Multiplier + w.Slope*slope/b.opts.maxSlope + w.Obstacle*prox
	return cell, nil
}

// proximity returns, per cell of region in Each order, the closeness to the
// nearest occupied cell: 1 when adjacent, fading linearly to 0 one cell past
// the influence radius.
func (b *Builder) proximity(occ map[grid.Coord]grid.Occupancy, region grid.Region) []float64 {
	prox := make([]float64, region.Len())
	radius := b.opts.influence
	if radius == 0 || len(occ) == 0 {
		return prox
	}

	sx := region.Max.X - region.Min.X + 1
	sy := region.Max.Y - region.Min.Y + 1
	planar := b.index.Planar()

	for o, flags := range occ {
		if flags == 0 {
			continue
		}
		halo, ok := grid.Region{Min: o, Max: o}.Expand(radius, planar).Clamp(b.index.Dims())
		if !ok {
			continue
		}
		halo, ok = halo.Intersect(region)
		if !ok {
			continue
		}
		halo.Each(func(c grid.Coord) bool {
			dx, dy, dz := float64(c.X-o.X), float64(c.Y-o.Y), float64(c.Z-o.Z)
			d := math.Sqrt(dx*dx + dy*dy + dz*dz)
			if d == 0 {
				return true
			}
			p := 1 - (d-1)/float64(radius)
			i := ((c.Z-region.Min.Z)*sy+(c.Y-region.Min.Y))*sx + (c.X - region.Min.X)
			if p > prox[i] {
				prox[i] = min(p, 1)
			}
			return true
		})
	}
	return prox
}

// refreshClearance recomputes clearance for every cell whose neighborhood
// within maxClearance overlaps region. Cells outside region are only
// rewritten when their clearance actually changes.
func (b *Builder) refreshClearance(ctx context.Context, tx *grid.Tx, region grid.Region) error {
	limit := b.opts.maxClearance
	planar := b.index.Planar()
	tx.SetClearanceLimit(limit, planar)
	band, _ := region.Expand(limit, planar).Clamp(tx.Dims())

	blocked := func(c grid.Coord) bool {
		cell, ok := tx.CellAt(c)
		return !ok || cell.Blocked()
	}

	var err error
	n := 0
	band.Each(func(c grid.Coord) bool {
		n++
		if n%cancelCheckCells == 0 {
			if err = ctx.Err(); err != nil {
				return false
			}
		}
		cell, _ := tx.CellAt(c)
		if cell.Blocked() {
			return true
		}
		clearance := uint8(grid.Clearance(c, limit, planar, blocked))
		if clearance != cell.Clearance {
			cell.Clearance = clearance
			err = tx.SetCell(c, cell)
		}
		return err == nil
	})
	return err
}
