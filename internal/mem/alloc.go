// Package mem provides memory allocation utilities.
package mem

import (
	"unsafe"
)

// Alignment is the byte alignment of scratch buffers (one AVX-512 register, one cache line).
const Alignment = 64

// AllocAligned allocates a byte slice of the given size with 64-byte alignment.
// The returned slice is guaranteed to start at a memory address divisible by 64.
//
// Note: This function allocates slightly more memory than requested to ensure alignment.
// The underlying array is kept alive by the returned slice.
func AllocAligned(size int) []byte {
	if size <= 0 {
		return nil
	}

	buf := make([]byte, size+Alignment)

	addr := uintptr(unsafe.Pointer(&buf[0])) //nolint:gosec // unsafe is required for memory alignment
	offset := (Alignment - (addr & (Alignment - 1))) & (Alignment - 1)

	return buf[offset : offset+uintptr(size)]
}

// AllocAlignedFloat32 allocates a float32 slice of the given length with 64-byte alignment.
func AllocAlignedFloat32(n int) []float32 {
	if n <= 0 {
		return nil
	}
	b := AllocAligned(n * 4)
	return unsafe.Slice((*float32)(unsafe.Pointer(&b[0])), n) //nolint:gosec // unsafe is required for memory alignment
}

// AllocAlignedInt32 allocates an int32 slice of the given length with 64-byte alignment.
func AllocAlignedInt32(n int) []int32 {
	if n <= 0 {
		return nil
	}
	b := AllocAligned(n * 4)
	return unsafe.Slice((*int32)(unsafe.Pointer(&b[0])), n) //nolint:gosec // unsafe is required for memory alignment
}
