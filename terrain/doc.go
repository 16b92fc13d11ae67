// Package terrain provides height-field samplers for the cost field builder:
// a flat plane, fractal simplex noise, and seeded random height areas.
//
// Every sampler is deterministic for a given configuration, so rebuilding the
// same region twice yields the same cost field.
package terrain
