// Package costfield fuses terrain samples and obstacle occupancy into the
// per-cell traversal cost, walkability and clearance stored in a grid.
//
// A rebuild recomputes a region widened by the obstacle influence radius and
// refreshes clearance in a further band of maxClearance cells, then commits
// everything as one grid version. Sampling failures never abort a rebuild:
// the affected cells become non-walkable and the Report is marked partial.
package costfield
