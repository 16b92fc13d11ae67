package planner

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const tracerName = "grid-planner"

var (
	// pathRequestsTotal counts delivered results by state and error kind
	pathRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gridplanner_path_requests_total",
		Help: "Total path requests by terminal state",
	}, []string{"state", "error"})

	// pathSearchDuration tracks time from worker pickup to delivery
	pathSearchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gridplanner_path_search_duration_seconds",
		Help:    "Path search duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16), // 0.1ms to ~3s
	})

	// pathSearchExpansions tracks nodes expanded per search
	pathSearchExpansions = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gridplanner_path_search_expansions",
		Help:    "Nodes expanded per path search",
		Buckets: prometheus.ExponentialBuckets(1, 4, 12),
	})

	// queueDepth reports pending requests per engine
	queueDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "gridplanner_queue_depth",
		Help: "Path requests waiting for a worker",
	}, []string{"engine"})

	// rebuildsTotal counts cost-field rebuilds by outcome
	rebuildsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gridplanner_rebuilds_total",
		Help: "Total cost-field rebuilds by outcome",
	}, []string{"status"}) // "complete", "partial" or "error"

	// rebuildDuration tracks rebuild latency
	rebuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gridplanner_rebuild_duration_seconds",
		Help:    "Cost-field rebuild duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
	})

	// costFieldVersion reports the latest version each engine has seen
	costFieldVersion = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "gridplanner_cost_field_version",
		Help: "Latest published cost-field version",
	}, []string{"engine"})
)
