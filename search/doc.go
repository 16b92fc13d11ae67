// Package search runs A* over one immutable grid snapshot.
//
// Frontier nodes are ordered by f = g + h, then by h so that nodes closer to
// the goal win ties, then by insertion order. A request moves through
// Queued, Running and one of Succeeded, Failed or Cancelled.
package search
