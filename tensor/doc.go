// Package tensor is the buffer abstraction the KNN engine consumes.
//
// A Tensor is a flat, row-major buffer with a shape and a residency (Host or
// Accelerator). The engine only needs three capabilities from it: where the
// data lives, raw access to the elements, and the shape.
//
// # Layout
//
// Point sets are shaped [batch, dim, count] and stored dimension-major per
// batch element: for one element, all coordinate-0 values come first, then
// all coordinate-1 values, and so on. Result tensors are shaped
// [batch, k, queries]: one column per query.
//
// # Residency
//
// Accelerator residency is a tag: the elements must live in memory the
// configured device can address (for the in-process emulator any Go slice,
// for CUDA managed memory obtained from the device package).
//
// # Arrow
//
// FromArrowPoints converts FixedSizeList<float32> arrays (one row per point)
// into a point-set tensor; NeighborsToArrow exports one batch element of a
// result as a FixedSizeList<int32> with one row per query.
package tensor
