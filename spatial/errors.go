package spatial

import "errors"

var (
	// ErrInvalidBounds indicates a bounds box whose max lies below its min.
	ErrInvalidBounds = errors.New("spatial: bounds max must not be below min")
	// ErrInvalidCellSize indicates a cell size or step factor that is not a positive finite number.
	ErrInvalidCellSize = errors.New("spatial: cell size must be positive and finite")
)
