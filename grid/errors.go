package grid

import "errors"

var (
	// ErrOutOfBounds indicates a coordinate or world position outside the grid.
	ErrOutOfBounds = errors.New("grid: coordinate out of bounds")
	// ErrInvalidCost indicates a walkable cell with a negative or non-finite cost.
	ErrInvalidCost = errors.New("grid: walkable cell cost must be finite and non-negative")
	// ErrInvalidDims indicates a grid with a zero or negative dimension.
	ErrInvalidDims = errors.New("grid: dimensions must be positive")
)
