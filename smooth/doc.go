// Package smooth turns raw cell paths into short waypoint lists by string
// pulling over a 3D Bresenham line-of-sight test.
package smooth
