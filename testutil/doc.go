// Package testutil provides testing utilities for vecknn.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random point sets and computing exact
// nearest neighbors with an implementation independent of the engine kernels.
//
// # Random Point Sets
//
//	rng := testutil.NewRNG(seed)
//	ref := rng.PointSet(batch, dim, n) // dimension-major, batch after batch
//
// # Exact Search (Ground Truth)
//
//	idx, dist := testutil.ExactKNN(ref, query, n, q, dim, k)
package testutil
