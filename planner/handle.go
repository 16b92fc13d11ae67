package planner

import (
	"context"
	"sync"
	"sync/atomic"

	"grid-planner/search"
)

// Handle tracks one submitted request until its result is delivered
type Handle struct {
	id     uint64
	req    Request
	ctx    context.Context
	cancel context.CancelFunc

	state atomic.Int32
	done  chan struct{}
	once  sync.Once
	res   Result

	// queue bookkeeping, guarded by the queue mutex
	seq   uint64
	index int
}

func newHandle(ctx context.Context, id uint64, req Request) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{
		id:     id,
		req:    req,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
		index:  -1,
	}
	h.state.Store(int32(search.Queued))
	return h
}

// ID identifies the request within its engine
func (h *Handle) ID() uint64 { return h.id }

// Request returns the request as submitted
func (h *Handle) Request() Request { return h.req }

// State returns the current lifecycle state
func (h *Handle) State() search.State { return search.State(h.state.Load()) }

// Done returns a channel closed once the result is delivered
func (h *Handle) Done() <-chan struct{} { return h.done }

// Poll returns the result if it has been delivered
func (h *Handle) Poll() (Result, bool) {
	select {
	case <-h.done:
		return h.res, true
	default:
		return Result{}, false
	}
}

// Wait blocks until the result is delivered or ctx is done. The returned
// error is the result's error, or ctx's if it ended first.
func (h *Handle) Wait(ctx context.Context) (Result, error) {
	select {
	case <-h.done:
		return h.res, h.res.Err
	case <-ctx.Done():
		return Result{ID: h.id, State: h.State()}, ctx.Err()
	}
}

// start moves a queued handle to running. It fails if the handle was
// resolved in the meantime.
func (h *Handle) start() bool {
	return h.state.CompareAndSwap(int32(search.Queued), int32(search.Running))
}

// resolve delivers res exactly once; later calls are ignored
func (h *Handle) resolve(res Result) bool {
	delivered := false
	h.once.Do(func() {
		res.ID = h.id
		h.res = res
		h.state.Store(int32(res.State))
		h.cancel()
		close(h.done)
		delivered = true
	})
	return delivered
}
