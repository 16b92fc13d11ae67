package obstacle

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/clip"
	"github.com/paulmach/orb/planar"

	"grid-planner/grid"
	"grid-planner/spatial"
)

// minExtent keeps degenerate boxes indexable; rtreego rejects zero lengths
const minExtent = 1e-9

// entry wraps an obstacle for R-tree storage
type entry struct {
	obstacle Obstacle
	bbox     rtreego.Rect
}

// Bounds implements rtreego.Spatial
func (e *entry) Bounds() rtreego.Rect {
	return e.bbox
}

func toRect(b spatial.Box) (rtreego.Rect, error) {
	return rtreego.NewRect(
		rtreego.Point{b.Min[0], b.Min[1], b.Min[2]},
		[]float64{
			max(b.Max[0]-b.Min[0], minExtent),
			max(b.Max[1]-b.Min[1], minExtent),
			max(b.Max[2]-b.Min[2], minExtent),
		},
	)
}

// Store indexes obstacles in a 3D R-tree and notifies subscribers about the
// world boxes affected by every change.
type Store struct {
	mu      sync.RWMutex
	tree    *rtreego.Rtree
	entries map[string]*entry

	subMu   sync.Mutex
	subs    map[int]*subscriber
	nextSub int
}

// NewStore creates an empty obstacle store
func NewStore() *Store {
	return &Store{
		tree:    rtreego.NewTree(3, 25, 50), // 3D, min 25, max 50 entries per node
		entries: make(map[string]*entry),
		subs:    make(map[int]*subscriber),
	}
}

// Add inserts or replaces obstacles by ID. Nothing is inserted if any
// obstacle is invalid.
func (s *Store) Add(obstacles ...Obstacle) error {
	staged := make([]*entry, 0, len(obstacles))
	for _, o := range obstacles {
		if err := o.Validate(); err != nil {
			return err
		}
		rect, err := toRect(o.Box())
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidObstacle, o.ID, err)
		}
		staged = append(staged, &entry{obstacle: o, bbox: rect})
	}

	var changed []spatial.Box
	s.mu.Lock()
	for _, e := range staged {
		box := e.obstacle.Box()
		if old, ok := s.entries[e.obstacle.ID]; ok {
			s.tree.Delete(old)
			box = box.Union(old.obstacle.Box())
		}
		s.entries[e.obstacle.ID] = e
		s.tree.Insert(e)
		changed = append(changed, box)
	}
	s.mu.Unlock()

	for _, box := range changed {
		s.publish(box)
	}
	return nil
}

// Remove deletes an obstacle by ID
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	e, ok := s.entries[id]
	if ok {
		s.tree.Delete(e)
		delete(s.entries, id)
	}
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.publish(e.obstacle.Box())
	return nil
}

// Get returns the obstacle with the given ID
func (s *Store) Get(id string) (Obstacle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return Obstacle{}, false
	}
	return e.obstacle, true
}

// Len returns the number of stored obstacles
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Query returns the obstacles whose bounding boxes intersect box, ordered by ID
func (s *Store) Query(box spatial.Box) []Obstacle {
	rect, err := toRect(box)
	if err != nil {
		return nil
	}

	s.mu.RLock()
	results := s.tree.SearchIntersect(rect)
	s.mu.RUnlock()

	obstacles := make([]Obstacle, 0, len(results))
	for _, item := range results {
		obstacles = append(obstacles, item.(*entry).obstacle)
	}
	sort.Slice(obstacles, func(i, j int) bool { return obstacles[i].ID < obstacles[j].ID })
	return obstacles
}

// QueryOccupancy rasterizes the obstacles overlapping region onto the grid
// described by idx. A cell is occupied when the outer ring of a footprint
// overlaps the cell's rectangle with positive area and the cell's vertical
// span overlaps the obstacle's height range. Touching an edge or a face does
// not occupy a cell.
func (s *Store) QueryOccupancy(ctx context.Context, region grid.Region, idx *spatial.Index) (map[grid.Coord]grid.Occupancy, error) {
	region, ok := region.Clamp(idx.Dims())
	if !ok {
		return map[grid.Coord]grid.Occupancy{}, nil
	}

	out := make(map[grid.Coord]grid.Occupancy)
	for _, o := range s.Query(idx.RegionBox(region)) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		covered, ok := idx.BoxRegion(o.Box())
		if !ok {
			continue
		}
		covered, ok = covered.Intersect(region)
		if !ok {
			continue
		}

		flag := o.Kind.Occupancy()
		minArea := overlapEpsilon * idx.CellSize() * idx.CellSize()
		covered.Each(func(c grid.Coord) bool {
			cell := idx.RegionBox(grid.Region{Min: c, Max: c})
			if !idx.Planar() && (cell.Max[2] <= o.MinZ || cell.Min[2] >= o.MaxZ) {
				return true
			}
			bound := orb.Bound{
				Min: orb.Point{cell.Min[0], cell.Min[1]},
				Max: orb.Point{cell.Max[0], cell.Max[1]},
			}
			if overlapArea(o.Footprint, bound) > minArea {
				out[c] |= flag
			}
			return true
		})
	}
	return out, nil
}

// overlapEpsilon is the fraction of a cell's area below which an overlap
// counts as touching
const overlapEpsilon = 1e-9

// overlapArea returns the area of the footprint's outer ring inside bound.
// clip.Ring uses its input as scratch space, so the ring is cloned first.
func overlapArea(poly orb.Polygon, bound orb.Bound) float64 {
	if len(poly) == 0 {
		return 0
	}
	if !poly.Bound().Intersects(bound) {
		return 0
	}
	ring := clip.Ring(bound, poly[0].Clone())
	if ring == nil {
		return 0
	}
	return planar.Area(orb.Polygon{ring})
}
