package planner

import (
	"fmt"
	"sync"

	"grid-planner/grid"
)

// versionRing keeps the most recently observed snapshots addressable by version
type versionRing struct {
	mu    sync.Mutex
	snaps []*grid.Snapshot // oldest first
	limit int
}

func newVersionRing(limit int) *versionRing {
	return &versionRing{limit: limit}
}

// observe records snap if it is newer than everything retained
func (r *versionRing) observe(snap *grid.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n := len(r.snaps); n > 0 && r.snaps[n-1].Version() >= snap.Version() {
		return
	}
	r.snaps = append(r.snaps, snap)
	if over := len(r.snaps) - r.limit; over > 0 {
		clear(r.snaps[:over])
		r.snaps = r.snaps[over:]
	}
}

// get returns the retained snapshot with version v
func (r *versionRing) get(v uint64) (*grid.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n := len(r.snaps); n > 0 && v > r.snaps[n-1].Version() {
		return nil, fmt.Errorf("%w: version %d does not exist yet", ErrInvalidRequest, v)
	}
	for _, s := range r.snaps {
		if s.Version() == v {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: version %d", ErrStaleVersion, v)
}

// versions lists the retained versions, oldest first
func (r *versionRing) versions() []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]uint64, len(r.snaps))
	for i, s := range r.snaps {
		out[i] = s.Version()
	}
	return out
}
