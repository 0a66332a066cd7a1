// Package mem provides memory allocation utilities.
//
// # Aligned Allocation
//
// Scratch distance and index buffers are allocated 64-byte aligned so the
// SIMD kernels in internal/simd start every column on a cache-line boundary.
package mem
