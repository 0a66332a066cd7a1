// Package distance provides squared Euclidean distance kernels for KNN search.
//
// All distance functions use the kernels from internal/simd, which pick a
// vectorised implementation at start-up when the CPU supports one.
//
// # Layouts
//
// Point sets are dimension-major: for N points in D dimensions the buffer
// holds all coordinate-0 values, then all coordinate-1 values, and so on.
// Columns walks one such dimension row at a time.
//
// # Usage
//
//	col := make([]float32, n)
//	distance.Columns(col, ref, n, query, q, j, dim)
//
//	all := make([]float32, n*q)
//	distance.ExpandedSquaredL2(all, ref, n, query, q, dim, nil)
package distance
