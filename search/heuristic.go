package search

import (
	"fmt"
	"strings"
)

// Heuristic selects the distance estimate that orders the open set
type Heuristic uint8

const (
	// HeuristicOctile counts the cheapest mix of straight and diagonal
	// steps. It is exact on an empty uniform grid and never overestimates.
	HeuristicOctile Heuristic = iota + 1
	// HeuristicEuclidean is the straight-line distance in cells, scaled so it
	// never exceeds the octile estimate.
	HeuristicEuclidean
	// HeuristicManhattan counts axis steps. Under diagonal connectivity it
	// overestimates, so searches expand less and may return longer paths.
	HeuristicManhattan
	// HeuristicNone turns the search into uniform-cost search.
	HeuristicNone
)

var heuristicNames = map[Heuristic]string{
	HeuristicOctile:    "octile",
	HeuristicEuclidean: "euclidean",
	HeuristicManhattan: "manhattan",
	HeuristicNone:      "none",
}

func (h Heuristic) String() string {
	if name, ok := heuristicNames[h]; ok {
		return name
	}
	return fmt.Sprintf("heuristic(%d)", uint8(h))
}

// Valid reports whether h names a known heuristic
func (h Heuristic) Valid() bool {
	_, ok := heuristicNames[h]
	return ok
}

// ParseHeuristic maps a heuristic name to its value. Empty means octile.
func ParseHeuristic(name string) (Heuristic, error) {
	if name == "" {
		return HeuristicOctile, nil
	}
	for h, n := range heuristicNames {
		if strings.EqualFold(name, n) {
			return h, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown heuristic %q", ErrInvalidParams, name)
}

func (h Heuristic) MarshalText() ([]byte, error) {
	if !h.Valid() {
		return nil, fmt.Errorf("%w: heuristic %d", ErrInvalidParams, uint8(h))
	}
	return []byte(h.String()), nil
}

func (h *Heuristic) UnmarshalText(text []byte) error {
	v, err := ParseHeuristic(string(text))
	if err != nil {
		return err
	}
	*h = v
	return nil
}
