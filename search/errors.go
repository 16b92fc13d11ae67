package search

import "errors"

var (
	// ErrNoPathFound indicates the open set was exhausted without reaching the goal.
	ErrNoPathFound = errors.New("search: no path found")
	// ErrCancelled indicates the caller cancelled the search.
	ErrCancelled = errors.New("search: cancelled")
	// ErrTimeout indicates the expansion budget or deadline ran out.
	ErrTimeout = errors.New("search: timeout")
	// ErrInvalidParams indicates search parameters that cannot be run.
	ErrInvalidParams = errors.New("search: invalid parameters")
)
