// Package kernel implements the per-batch brute-force KNN kernel for the host
// and for accelerator device contexts.
//
// A Backend is driven by the dispatcher in three steps: Alloc once per call,
// Run once per batch element (reusing the same Scratch), Finish once at the
// end. Both backends rank by ascending squared distance, ties by smaller
// reference index, NaN last, so they return identical indices.
package kernel
