package planner

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"grid-planner/grid"
	"grid-planner/search"
)

// Defaults used when an option is not given.
const (
	DefaultWorkers        = 4
	DefaultQueueSize      = 256
	DefaultMaxExpansions  = 1_000_000
	DefaultTimeout        = 2 * time.Second
	DefaultRetainVersions = 8
	DefaultSnapRadius     = 2
	DefaultSlowSearch     = 250 * time.Millisecond
	DefaultName           = "default"
)

type options struct {
	workers            int
	queueSize          int
	connectivity       grid.Connectivity // zero means derive from the index
	checkInterval      int
	maxExpansions      int
	timeout            time.Duration
	waitForRebuild     time.Duration
	retainVersions     int
	snapRadius         int
	defaultAgentRadius float64
	weights            Weights
	heuristic          search.Heuristic
	slowSearch         time.Duration
	autoStart          bool
	name               string
	logger             *slog.Logger
}

func defaultOptions() options {
	return options{
		workers:        DefaultWorkers,
		queueSize:      DefaultQueueSize,
		checkInterval:  search.DefaultCheckInterval,
		maxExpansions:  DefaultMaxExpansions,
		timeout:        DefaultTimeout,
		retainVersions: DefaultRetainVersions,
		snapRadius:     DefaultSnapRadius,
		weights:        Weights{Heuristic: 1},
		heuristic:      search.HeuristicOctile,
		slowSearch:     DefaultSlowSearch,
		autoStart:      true,
		name:           DefaultName,
		logger:         slog.Default(),
	}
}

func (o options) validate(planar bool) error {
	switch {
	case o.workers < 1:
		return fmt.Errorf("%w: workers %d", ErrInvalidOptions, o.workers)
	case o.queueSize < 1:
		return fmt.Errorf("%w: queue size %d", ErrInvalidOptions, o.queueSize)
	case o.checkInterval < 1:
		return fmt.Errorf("%w: check interval %d", ErrInvalidOptions, o.checkInterval)
	case o.maxExpansions < 0 || o.timeout < 0 || o.waitForRebuild < 0:
		return fmt.Errorf("%w: negative budget", ErrInvalidOptions)
	case o.retainVersions < 1:
		return fmt.Errorf("%w: retain versions %d", ErrInvalidOptions, o.retainVersions)
	case o.snapRadius < 0:
		return fmt.Errorf("%w: snap radius %d", ErrInvalidOptions, o.snapRadius)
	case o.defaultAgentRadius < 0 || math.IsNaN(o.defaultAgentRadius):
		return fmt.Errorf("%w: default agent radius %v", ErrInvalidOptions, o.defaultAgentRadius)
	case o.name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidOptions)
	case !o.heuristic.Valid():
		return fmt.Errorf("%w: heuristic %v", ErrInvalidOptions, o.heuristic)
	}
	if err := o.weights.validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	if o.connectivity != 0 {
		if !o.connectivity.Valid() {
			return fmt.Errorf("%w: connectivity %v", ErrInvalidOptions, o.connectivity)
		}
		if planar && !o.connectivity.Planar() {
			return fmt.Errorf("%w: %v on a planar grid", ErrInvalidOptions, o.connectivity)
		}
	}
	return nil
}

// Option configures an Engine
type Option func(*options)

// WithWorkers sets the number of search goroutines
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithQueueSize bounds the number of pending requests
func WithQueueSize(n int) Option {
	return func(o *options) { o.queueSize = n }
}

// WithConnectivity overrides the neighbor policy. Planar grids default to
// Conn8, volumetric grids to Conn26.
func WithConnectivity(c grid.Connectivity) Option {
	return func(o *options) { o.connectivity = c }
}

// WithCheckInterval sets the number of expansions between cancellation checks
func WithCheckInterval(n int) Option {
	return func(o *options) { o.checkInterval = n }
}

// WithMaxExpansions sets the default expansion budget; 0 disables it
func WithMaxExpansions(n int) Option {
	return func(o *options) { o.maxExpansions = n }
}

// WithTimeout sets the default wall-clock budget of one search; 0 disables it
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithWaitForRebuild makes a starting search wait up to d for in-flight
// rebuilds to commit. With 0 searches start on the current snapshot.
func WithWaitForRebuild(d time.Duration) Option {
	return func(o *options) { o.waitForRebuild = d }
}

// WithRetainVersions sets how many cost-field snapshots stay addressable
func WithRetainVersions(n int) Option {
	return func(o *options) { o.retainVersions = n }
}

// WithSnapRadius sets how far, in cells, off-grid or blocked endpoints are
// moved to reach an eligible cell
func WithSnapRadius(cells int) Option {
	return func(o *options) { o.snapRadius = cells }
}

// WithDefaultAgentRadius sets the radius used by requests that give none
func WithDefaultAgentRadius(r float64) Option {
	return func(o *options) { o.defaultAgentRadius = r }
}

// WithWeights sets the default search weights
func WithWeights(w Weights) Option {
	return func(o *options) { o.weights = w }
}

// WithHeuristic sets the default distance estimate. HeuristicNone turns
// the search into Dijkstra.
func WithHeuristic(h search.Heuristic) Option {
	return func(o *options) { o.heuristic = h }
}

// WithSlowSearchThreshold sets the duration above which a search is logged as slow
func WithSlowSearchThreshold(d time.Duration) Option {
	return func(o *options) { o.slowSearch = d }
}

// WithoutAutoStart leaves the workers stopped until Start is called
func WithoutAutoStart() Option {
	return func(o *options) { o.autoStart = false }
}

// WithName labels the engine's metric series. Engines sharing a process
// need distinct names.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithLogger sets the engine logger
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
