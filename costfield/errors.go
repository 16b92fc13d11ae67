package costfield

import "errors"

var (
	// ErrPartialCostField reports cells that could not be sampled and were marked non-walkable.
	ErrPartialCostField = errors.New("costfield: partial cost field")
	// ErrInvalidOptions indicates builder options that cannot produce a cost field.
	ErrInvalidOptions = errors.New("costfield: invalid options")
)
