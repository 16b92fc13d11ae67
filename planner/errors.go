package planner

import (
	"errors"

	"grid-planner/grid"
	"grid-planner/search"
)

var (
	// ErrStaleVersion indicates a request pinned a cost-field version that is no longer retained.
	ErrStaleVersion = errors.New("planner: cost-field version no longer retained")
	// ErrQueueFull indicates the pending request queue is at capacity.
	ErrQueueFull = errors.New("planner: request queue full")
	// ErrClosed indicates the engine has been closed.
	ErrClosed = errors.New("planner: engine closed")
	// ErrInvalidRequest indicates a request that can never be served.
	ErrInvalidRequest = errors.New("planner: invalid request")
	// ErrInvalidOptions indicates engine options that cannot be used.
	ErrInvalidOptions = errors.New("planner: invalid options")
)

// Search failures surfaced through Result.Err.
var (
	ErrOutOfBounds = grid.ErrOutOfBounds
	ErrNoPathFound = search.ErrNoPathFound
	ErrCancelled   = search.ErrCancelled
	ErrTimeout     = search.ErrTimeout
)
