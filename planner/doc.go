// Package planner is the query façade of the engine. An Engine owns a grid,
// its spatial index and the cost field builder that writes it, and runs path
// requests on a pool of workers.
//
// Requests return a Handle immediately. Each request pins one cost-field
// snapshot when its worker picks it up and searches that snapshot only, so
// rebuilds committed mid-flight never leak into a running search. Callers
// poll or await the handle, cancel it, or invalidate world regions to
// trigger incremental rebuilds.
package planner
