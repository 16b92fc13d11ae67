package planner

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"grid-planner/grid"
	"grid-planner/search"
)

// Weights tune the search cost model of one request
type Weights struct {
	Heuristic float64 `json:"heuristic"` // 1 is optimal A*; larger is faster and may be suboptimal
	Climb     float64 `json:"climb"`     // extra cost per unit of elevation gained
}

func (w Weights) validate() error {
	if !(w.Heuristic >= 1) || math.IsInf(w.Heuristic, 0) {
		return fmt.Errorf("heuristic weight %v must be finite and >= 1", w.Heuristic)
	}
	if !(w.Climb >= 0) || math.IsInf(w.Climb, 0) {
		return fmt.Errorf("climb weight %v must be finite and >= 0", w.Climb)
	}
	return nil
}

// Request describes one path query in world coordinates
type Request struct {
	Start, Goal   mgl64.Vec3
	AgentRadius   float64          // world units; <= 0 uses the engine default
	Weights       *Weights         // nil uses the engine default
	Heuristic     search.Heuristic // zero uses the engine default
	Priority      int              // higher runs first
	MaxExpansions int              // 0 uses the engine default
	Timeout       time.Duration    // 0 uses the engine default
	Version       uint64           // pins a retained cost-field version; 0 means latest
}

func (r Request) validate() error {
	for _, p := range []mgl64.Vec3{r.Start, r.Goal} {
		for _, v := range p {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: non-finite position %v", ErrInvalidRequest, p)
			}
		}
	}
	if math.IsNaN(r.AgentRadius) || math.IsInf(r.AgentRadius, 0) {
		return fmt.Errorf("%w: agent radius %v", ErrInvalidRequest, r.AgentRadius)
	}
	if r.MaxExpansions < 0 || r.Timeout < 0 {
		return fmt.Errorf("%w: negative budget", ErrInvalidRequest)
	}
	if r.Heuristic != 0 && !r.Heuristic.Valid() {
		return fmt.Errorf("%w: heuristic %v", ErrInvalidRequest, r.Heuristic)
	}
	if r.Weights != nil {
		if err := r.Weights.validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
	}
	return nil
}

// Result is the terminal outcome of a request. Waypoints and Cells are nil
// unless State is Succeeded.
type Result struct {
	ID         uint64
	State      search.State
	Err        error
	Waypoints  []mgl64.Vec3 // simplified world path, start and goal included
	Cells      []grid.Coord // raw cell path the cost was summed over
	Cost       float64
	Expansions int
	Version    uint64 // cost-field version the search ran on
	Elapsed    time.Duration
}

func failed(id uint64, err error) Result {
	return Result{ID: id, State: search.StateOf(err), Err: err}
}

// errorKind labels an error for metrics and transport status mapping
func errorKind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrClosed):
		return "closed"
	case errors.Is(err, search.ErrCancelled):
		return "cancelled"
	case errors.Is(err, search.ErrTimeout):
		return "timeout"
	case errors.Is(err, search.ErrNoPathFound):
		return "no_path"
	case errors.Is(err, grid.ErrOutOfBounds):
		return "out_of_bounds"
	case errors.Is(err, ErrStaleVersion):
		return "stale_version"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	}
	return "internal"
}
