package search

import (
	"container/heap"
	"context"
	"errors"
	"fmt"

	"grid-planner/grid"
	"grid-planner/spatial"
)

// DefaultCheckInterval is the number of expansions between cancellation checks
const DefaultCheckInterval = 64

// Params describes one search over a snapshot
type Params struct {
	Start, Goal     grid.Coord
	Clearance       int // cells; a cell is eligible when its clearance is at least this
	Connectivity    grid.Connectivity
	Heuristic       Heuristic // zero means HeuristicOctile
	HeuristicWeight float64   // 1 is plain A*; larger trades optimality for speed; <= 0 means 1
	ClimbWeight     float64   // extra cost per unit of elevation gained
	MaxExpansions   int       // 0 means unlimited
	CheckInterval   int       // <= 0 means DefaultCheckInterval
}

// Outcome is the result of Run. Path is nil unless Err is nil.
type Outcome struct {
	Path       []grid.Coord
	Cost       float64
	Expansions int
	Version    uint64
	Err        error
}

// State returns the terminal state this outcome resolves to
func (o Outcome) State() State { return StateOf(o.Err) }

// Run searches snap for the cheapest path from p.Start to p.Goal.
//
// The context is observed every CheckInterval expansions, starting before the
// first one: cancellation resolves as ErrCancelled, an expired deadline as
// ErrTimeout. Running out of MaxExpansions is also ErrTimeout. No partial
// path is ever returned.
func Run(ctx context.Context, snap *grid.Snapshot, idx *spatial.Index, p Params) Outcome {
	out := Outcome{Version: snap.Version()}
	dims := snap.Dims()
	if err := contextErr(ctx); err != nil {
		out.Err = err
		return out
	}

	if !p.Connectivity.Valid() {
		out.Err = fmt.Errorf("%w: connectivity %v", ErrInvalidParams, p.Connectivity)
		return out
	}
	kind := p.Heuristic
	if kind == 0 {
		kind = HeuristicOctile
	}
	if !kind.Valid() {
		out.Err = fmt.Errorf("%w: heuristic %v", ErrInvalidParams, kind)
		return out
	}
	if dims != idx.Dims() {
		out.Err = fmt.Errorf("%w: snapshot and index dimensions differ", ErrInvalidParams)
		return out
	}
	for _, c := range []grid.Coord{p.Start, p.Goal} {
		if !dims.Contains(c) {
			out.Err = fmt.Errorf("%w: %v", grid.ErrOutOfBounds, c)
			return out
		}
		if !snap.Passable(c, p.Clearance) {
			out.Err = fmt.Errorf("%w: %v is not passable with clearance %d", ErrNoPathFound, c, p.Clearance)
			return out
		}
	}

	interval := p.CheckInterval
	if interval <= 0 {
		interval = DefaultCheckInterval
	}
	weight := p.HeuristicWeight
	if weight <= 0 {
		weight = 1
	}

	if p.Start == p.Goal {
		out.Path = []grid.Coord{p.Start}
		return out
	}

	h := newHeuristic(idx, p.Connectivity, kind, p.Goal, weight, snap.MinCost())
	offsets := p.Connectivity.Offsets()

	openSet := &priorityQueue{}
	heap.Init(openSet)
	nodes := make(map[int]*node)
	var seq uint64

	startNode := &node{coord: p.Start, h: h.estimate(p.Start)}
	startNode.f = startNode.h
	heap.Push(openSet, startNode)
	nodes[dims.Index(p.Start)] = startNode

	for openSet.Len() > 0 {
		if out.Expansions > 0 && out.Expansions%interval == 0 {
			if err := contextErr(ctx); err != nil {
				out.Err = err
				return out
			}
		}
		if p.MaxExpansions > 0 && out.Expansions >= p.MaxExpansions {
			out.Err = fmt.Errorf("%w: expansion budget of %d exhausted", ErrTimeout, p.MaxExpansions)
			return out
		}

		current := heap.Pop(openSet).(*node)
		current.closed = true
		out.Expansions++

		if current.coord == p.Goal {
			out.Path = reconstruct(current)
			out.Cost = current.g
			return out
		}

		for _, off := range offsets {
			next := current.coord.Add(off)
			if !dims.Contains(next) || !snap.StepAllowed(current.coord, next, p.Clearance) {
				continue
			}

			key := dims.Index(next)
			neighbor, exists := nodes[key]
			if exists && neighbor.closed {
				continue
			}

			tentativeG := current.g + EdgeCost(snap, idx, current.coord, next, p.ClimbWeight)
			if !exists {
				seq++
				neighbor = &node{
					coord:  next,
					g:      tentativeG,
					h:      h.estimate(next),
					parent: current,
					seq:    seq,
				}
				neighbor.f = neighbor.g + neighbor.h
				heap.Push(openSet, neighbor)
				nodes[key] = neighbor
			} else if tentativeG < neighbor.g {
				// Found a better path to this neighbor
				neighbor.g = tentativeG
				neighbor.f = neighbor.g + neighbor.h
				neighbor.parent = current
				heap.Fix(openSet, neighbor.index)
			}
		}
	}

	out.Err = fmt.Errorf("%w: from %v to %v", ErrNoPathFound, p.Start, p.Goal)
	return out
}

func reconstruct(goal *node) []grid.Coord {
	n := 0
	for cur := goal; cur != nil; cur = cur.parent {
		n++
	}
	path := make([]grid.Coord, n)
	for cur := goal; cur != nil; cur = cur.parent {
		n--
		path[n] = cur.coord
	}
	return path
}

func contextErr(ctx context.Context) error {
	err := ctx.Err()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrCancelled, err)
}
