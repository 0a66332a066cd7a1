// Package searcher implements the top-k selection primitives shared by the
// CPU and accelerator kernels.
//
// Both selection strategies order candidates by the same total order (Less):
// ascending distance, NaN after every number, equal distances by ascending
// reference index. Substituting one backend for the other therefore never
// changes the returned indices.
//
//   - InsertionSelect: partial insertion sort over a full distance column,
//     using a caller-owned index buffer (host path).
//   - PriorityQueue: bounded max-heap of capacity k (one per accelerator lane),
//     pooled to keep lanes allocation-free.
package searcher
