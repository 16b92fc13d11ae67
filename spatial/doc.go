// Package spatial maps world-space positions and boxes onto grid cells.
package spatial
