// Package grid holds the cell arena of the planner: a dense, chunked store of
// per-cell cost, walkability, height, surface, occupancy and clearance.
//
// Writes go through Update (or SetCell) and publish a new immutable Snapshot
// with the version number incremented by one. Chunks not touched by a write
// are shared between versions, so a search holding an older Snapshot keeps a
// consistent view while the field is rebuilt underneath it.
package grid
