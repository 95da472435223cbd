// Package render turns the sink nodes of an evaluated graph into a draw list
// and rasterizes it.
//
// Sinks only forward geometry. Color is re-gathered here by reading each
// sink's own input connections against the output bank, so a sink's outputs
// never carry color. A disconnected color channel draws at full intensity.
//
// All coordinates in a DrawList are normalized to [0, 1] of the preview
// surface; Rasterize scales them to pixels.
package render
