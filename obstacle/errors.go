package obstacle

import "errors"

var (
	// ErrInvalidObstacle indicates an obstacle without an ID, a usable footprint, or a valid height range.
	ErrInvalidObstacle = errors.New("obstacle: invalid obstacle")
	// ErrNotFound indicates an unknown obstacle ID.
	ErrNotFound = errors.New("obstacle: not found")
)
