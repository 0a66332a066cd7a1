// Package simd provides the float32 kernels behind the KNN distance passes.
//
// # Supported Platforms
//
//   - x86-64: AVX-512, AVX2 (via github.com/viterin/vek)
//   - ARM64: NEON (via github.com/viterin/vek)
//
// Runtime CPU feature detection (golang.org/x/sys/cpu) selects the
// implementation. Set VECKNN_SIMD=generic to force the pure Go fallback.
//
// # Operations
//
//   - AccumulateSquaredDiff: one dimension row of a dimension-major point set
//
// Every kernel rounds each product to float32 before accumulating, so the
// vectorised and scalar paths produce bit-identical results.
package simd
