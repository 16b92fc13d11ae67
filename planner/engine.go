package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"grid-planner/costfield"
	"grid-planner/grid"
	"grid-planner/search"
	"grid-planner/smooth"
	"grid-planner/spatial"
)

// Engine serves path requests over one grid. It is safe for concurrent use.
type Engine struct {
	grid    *grid.Grid
	index   *spatial.Index
	builder *costfield.Builder
	opts    options
	conn    grid.Connectivity
	logger  *slog.Logger

	queue    *jobQueue
	versions *versionRing
	nextID   atomic.Uint64

	// per-engine series, removed on Close
	depthGauge   prometheus.Gauge
	versionGauge prometheus.Gauge

	mu      sync.Mutex
	handles map[uint64]*Handle
	started bool
	closed  bool
	wg      sync.WaitGroup
}

// New creates an engine. The builder must write into g, and idx must
// describe g. Workers start immediately unless WithoutAutoStart is given.
func New(g *grid.Grid, idx *spatial.Index, builder *costfield.Builder, opts ...Option) (*Engine, error) {
	if g == nil || idx == nil || builder == nil {
		return nil, fmt.Errorf("%w: grid, index and builder are required", ErrInvalidOptions)
	}
	if g.Dims() != idx.Dims() {
		return nil, fmt.Errorf("%w: grid %+v and index %+v dimensions differ", ErrInvalidOptions, g.Dims(), idx.Dims())
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(idx.Planar()); err != nil {
		return nil, err
	}

	conn := o.connectivity
	if conn == 0 {
		conn = grid.Conn26
		if idx.Planar() {
			conn = grid.Conn8
		}
	}

	e := &Engine{
		grid:     g,
		index:    idx,
		builder:  builder,
		opts:     o,
		conn:     conn,
		logger:   o.logger,
		queue:    newJobQueue(o.queueSize),
		versions: newVersionRing(o.retainVersions),
		handles:  make(map[uint64]*Handle),

		depthGauge:   queueDepth.WithLabelValues(o.name),
		versionGauge: costFieldVersion.WithLabelValues(o.name),
	}
	e.observe()

	if o.autoStart {
		e.Start()
	}
	return e, nil
}

// Start launches the workers. Calling it again, or after Close, does nothing.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started || e.closed {
		return
	}
	e.started = true
	for range e.opts.workers {
		e.wg.Add(1)
		go e.worker()
	}
	e.logger.Info("planner_started",
		slog.Int("workers", e.opts.workers),
		slog.String("connectivity", e.conn.String()),
		slog.Uint64("version", e.grid.Version()),
	)
}

// Close stops the workers. Pending requests resolve as cancelled, running
// searches are cancelled at their next check. Close waits for the workers.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	running := make([]*Handle, 0, len(e.handles))
	for _, h := range e.handles {
		running = append(running, h)
	}
	e.mu.Unlock()

	for _, h := range e.queue.close() {
		e.deliver(h, failed(h.id, fmt.Errorf("%w: %w", search.ErrCancelled, ErrClosed)))
	}
	for _, h := range running {
		h.cancel()
	}
	e.wg.Wait()
	queueDepth.DeleteLabelValues(e.opts.name)
	costFieldVersion.DeleteLabelValues(e.opts.name)
	e.logger.Info("planner_stopped")
	return nil
}

// Index returns the spatial index of the engine's grid
func (e *Engine) Index() *spatial.Index { return e.index }

// Connectivity returns the neighbor policy searches use
func (e *Engine) Connectivity() grid.Connectivity { return e.conn }

// Version returns the latest published cost-field version
func (e *Engine) Version() uint64 { return e.grid.Version() }

// Snapshot returns the latest cost field
func (e *Engine) Snapshot() *grid.Snapshot { return e.observe() }

// RetainedVersions lists the cost-field versions requests may still pin
func (e *Engine) RetainedVersions() []uint64 {
	e.observe()
	return e.versions.versions()
}

// observe loads the current snapshot and records it for version pinning
func (e *Engine) observe() *grid.Snapshot {
	snap := e.grid.Snapshot()
	e.versions.observe(snap)
	e.versionGauge.Set(float64(snap.Version()))
	return snap
}

// RequestPath queues req and returns immediately. Cancelling ctx cancels
// the request.
func (e *Engine) RequestPath(ctx context.Context, req Request) (*Handle, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, ErrClosed
	}
	h := newHandle(ctx, e.nextID.Add(1), req)
	e.handles[h.id] = h
	e.mu.Unlock()

	if err := e.queue.push(h); err != nil {
		e.release(h.id)
		h.cancel()
		return nil, err
	}
	e.depthGauge.Set(float64(e.queue.len()))
	return h, nil
}

// Await blocks until h delivers its result or ctx is done
func (e *Engine) Await(ctx context.Context, h *Handle) (Result, error) {
	return h.Wait(ctx)
}

// FindPath runs req and waits for its result
func (e *Engine) FindPath(ctx context.Context, req Request) (Result, error) {
	h, err := e.RequestPath(ctx, req)
	if err != nil {
		return Result{State: search.StateOf(err), Err: err}, err
	}
	defer e.Release(h)
	return h.Wait(ctx)
}

// Cancel cancels h. A request still waiting for a worker resolves at once
// with zero expansions; a running one stops at its next check. Delivered
// results are left untouched.
func (e *Engine) Cancel(h *Handle) {
	if e.queue.remove(h) {
		e.depthGauge.Set(float64(e.queue.len()))
		e.deliver(h, failed(h.id, fmt.Errorf("%w: before start", search.ErrCancelled)))
	}
	h.cancel()
}

// Lookup finds a handle that has not been released
func (e *Engine) Lookup(id uint64) (*Handle, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	h, ok := e.handles[id]
	return h, ok
}

// Release forgets h so Lookup no longer finds it. A request released before
// it finished is cancelled.
func (e *Engine) Release(h *Handle) {
	if _, done := h.Poll(); !done {
		e.Cancel(h)
	}
	e.release(h.id)
}

func (e *Engine) release(id uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.handles, id)
}

// InvalidateRegion rebuilds the cost field over box. A rebuild that could not
// sample part of the region still commits; check Report.Err.
func (e *Engine) InvalidateRegion(ctx context.Context, box spatial.Box) (costfield.Report, error) {
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return costfield.Report{}, ErrClosed
	}

	report, err := e.builder.RebuildRegion(ctx, box.Min, box.Max)
	e.recordRebuild(report, err)
	if err != nil {
		return report, fmt.Errorf("invalidate %v: %w", box, err)
	}
	e.observe()
	return report, nil
}

// RebuildAll recomputes the whole cost field, as done at startup
func (e *Engine) RebuildAll(ctx context.Context) (costfield.Report, error) {
	report, err := e.builder.RebuildAll(ctx)
	e.recordRebuild(report, err)
	if err != nil {
		return report, err
	}
	e.observe()
	return report, nil
}

func (e *Engine) recordRebuild(report costfield.Report, err error) {
	status := "complete"
	switch {
	case err != nil:
		status = "error"
	case report.Partial:
		status = "partial"
	}
	rebuildsTotal.WithLabelValues(status).Inc()
	if err == nil {
		rebuildDuration.Observe(report.Elapsed.Seconds())
	}
}

// WatchObstacles invalidates every box received on changes until ctx is done
// or changes is closed. Boxes outside the grid are logged and skipped.
func (e *Engine) WatchObstacles(ctx context.Context, changes <-chan spatial.Box) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case box, ok := <-changes:
			if !ok {
				return nil
			}
			report, err := e.InvalidateRegion(ctx, box)
			switch {
			case errors.Is(err, ErrClosed):
				return err
			case ctx.Err() != nil:
				return ctx.Err()
			case err != nil:
				e.logger.Warn("obstacle_invalidation_skipped",
					slog.String("box", box.String()),
					slog.String("error", err.Error()),
				)
			default:
				e.logger.Debug("obstacle_invalidation_applied",
					slog.String("box", box.String()),
					slog.Uint64("version", report.Version),
				)
			}
		}
	}
}

func (e *Engine) worker() {
	defer e.wg.Done()
	for {
		h, ok := e.queue.pop()
		if !ok {
			return
		}
		e.depthGauge.Set(float64(e.queue.len()))
		if !h.start() {
			continue
		}
		e.deliver(h, e.run(h))
	}
}

func (e *Engine) deliver(h *Handle, res Result) {
	if !h.resolve(res) {
		return
	}
	pathRequestsTotal.WithLabelValues(res.State.String(), errorKind(res.Err)).Inc()
}

func (e *Engine) radius(req Request) float64 {
	if req.AgentRadius > 0 {
		return req.AgentRadius
	}
	return e.opts.defaultAgentRadius
}

// run executes one request on the worker goroutine
func (e *Engine) run(h *Handle) Result {
	start := time.Now()
	req := h.req
	ctx := h.ctx

	timeout := e.opts.timeout
	if req.Timeout > 0 {
		timeout = req.Timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "planner.Engine.Search",
		trace.WithAttributes(
			attribute.Int64("request_id", int64(h.id)),
			attribute.Int("priority", req.Priority),
			attribute.Int64("pinned_version", int64(req.Version)),
		),
	)
	defer span.End()

	res := e.execute(ctx, h.id, req)
	res.Elapsed = time.Since(start)
	pathSearchDuration.Observe(res.Elapsed.Seconds())
	pathSearchExpansions.Observe(float64(res.Expansions))

	span.SetAttributes(
		attribute.String("state", res.State.String()),
		attribute.Int("expansions", res.Expansions),
		attribute.Int64("version", int64(res.Version)),
	)
	attrs := []any{
		slog.Uint64("id", h.id),
		slog.String("state", res.State.String()),
		slog.Int("expansions", res.Expansions),
		slog.Uint64("version", res.Version),
		slog.Duration("duration", res.Elapsed),
	}
	if res.Err != nil {
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, errorKind(res.Err))
		e.logger.Info("path_search_failed", append(attrs, slog.String("error", res.Err.Error()))...)
	} else {
		span.SetStatus(codes.Ok, "path found")
		e.logger.Info("path_search_complete", append(attrs,
			slog.Float64("cost", res.Cost),
			slog.Int("cells", len(res.Cells)),
			slog.Int("waypoints", len(res.Waypoints)),
		)...)
	}
	if e.opts.slowSearch > 0 && res.Elapsed > e.opts.slowSearch {
		e.logger.Warn("slow_path_search", append(attrs, slog.Duration("threshold", e.opts.slowSearch))...)
	}
	return res
}

// execute resolves the snapshot and endpoints, runs the search and smooths
// the path it finds
func (e *Engine) execute(ctx context.Context, id uint64, req Request) Result {
	if ctx.Err() != nil {
		return failed(id, searchCtxErr(ctx))
	}

	if e.opts.waitForRebuild > 0 && req.Version == 0 {
		if err := e.awaitRebuild(ctx); err != nil {
			return failed(id, err)
		}
	}

	snap := e.observe()
	if req.Version != 0 {
		pinned, err := e.versions.get(req.Version)
		if err != nil {
			res := failed(id, err)
			res.Version = req.Version
			return res
		}
		snap = pinned
	}

	clearance := requiredCells(e.radius(req), e.index.CellSize())
	startCell, startPos, err := e.snapEndpoint(snap, req.Start, clearance)
	if err != nil {
		return versioned(failed(id, fmt.Errorf("start: %w", err)), snap)
	}
	goalCell, goalPos, err := e.snapEndpoint(snap, req.Goal, clearance)
	if err != nil {
		return versioned(failed(id, fmt.Errorf("goal: %w", err)), snap)
	}

	w := e.opts.weights
	if req.Weights != nil {
		w = *req.Weights
	}
	kind := e.opts.heuristic
	if req.Heuristic != 0 {
		kind = req.Heuristic
	}
	budget := e.opts.maxExpansions
	if req.MaxExpansions > 0 {
		budget = req.MaxExpansions
	}

	out := search.Run(ctx, snap, e.index, search.Params{
		Start:           startCell,
		Goal:            goalCell,
		Clearance:       clearance,
		Connectivity:    e.conn,
		Heuristic:       kind,
		HeuristicWeight: w.Heuristic,
		ClimbWeight:     w.Climb,
		MaxExpansions:   budget,
		CheckInterval:   e.opts.checkInterval,
	})
	res := Result{
		ID:         id,
		State:      out.State(),
		Err:        out.Err,
		Expansions: out.Expansions,
		Version:    out.Version,
	}
	if out.Err != nil {
		return res
	}

	res.Cells = out.Path
	res.Cost = out.Cost
	pulled := smooth.Simplify(snap, out.Path, clearance)
	res.Waypoints = smooth.Waypoints(snap, e.index, pulled, startPos, goalPos)
	return res
}

// awaitRebuild waits for in-flight rebuilds up to the configured limit.
// Running out of time is not an error; the search proceeds on the current
// snapshot.
func (e *Engine) awaitRebuild(ctx context.Context) error {
	timer := time.NewTimer(e.opts.waitForRebuild)
	defer timer.Stop()
	select {
	case <-e.builder.Idle():
	case <-timer.C:
		e.logger.Debug("rebuild_wait_expired", slog.Duration("limit", e.opts.waitForRebuild))
	case <-ctx.Done():
		return searchCtxErr(ctx)
	}
	return nil
}

func versioned(res Result, snap *grid.Snapshot) Result {
	res.Version = snap.Version()
	return res
}

// searchCtxErr maps a finished context onto the search error taxonomy
func searchCtxErr(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", search.ErrTimeout, ctx.Err())
	}
	return fmt.Errorf("%w: %v", search.ErrCancelled, ctx.Err())
}
