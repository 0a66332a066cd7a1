// Package conv provides safe integer type conversion utilities.
//
// These functions perform bounds checking before narrowing Go's int to the
// fixed-width integers native kernel entry points take (element counts,
// dimensions, k).
//
// For conversions that are provably safe by domain constraints (e.g., loop
// indices, bounded counters), use direct type casts instead to avoid overhead.
package conv
