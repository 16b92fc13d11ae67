package costfield

import (
	"fmt"
	"time"

	"grid-planner/grid"
)

// Report summarizes one committed rebuild
type Report struct {
	Region  grid.Region // cells whose attributes were recomputed
	Version uint64      // grid version the rebuild published
	Cells   int
	Blocked int // recomputed cells left non-walkable, failed ones included
	Failed  int // cells that could not be sampled
	Partial bool
	Elapsed time.Duration

	cause error
}

// Err returns an error wrapping ErrPartialCostField when sampling failed
// somewhere in the region, nil otherwise.
func (r Report) Err() error {
	if !r.Partial {
		return nil
	}
	return fmt.Errorf("%w: %d of %d cells in %v: %v", ErrPartialCostField, r.Failed, r.Cells, r.Region, r.cause)
}

func (r *Report) fail(n int, err error) {
	r.Failed += n
	r.Partial = true
	if r.cause == nil {
		r.cause = err
	}
}
