// Package vecknn computes batched brute-force k-nearest neighbors between
// reference and query point sets under squared Euclidean distance.
//
// Point sets are dimension-major: a [B, D, N] tensor holds, for each of B
// batch elements, all N values of coordinate 0, then all of coordinate 1, and
// so on. Results are [B, k, Q] tensors with one column per query, nearest
// first; equal distances resolve to the smaller reference index and NaN
// distances rank last.
//
// # Quick Start
//
//	ref := tensor.MustFromSlice([]float32{0, 10, 0, 0, 0, 10}, 1, 2, 3)
//	query := tensor.MustFromSlice([]float32{1, 0}, 1, 2, 1)
//	idx, _ := tensor.New[int32](1, 2, 1)
//
//	if err := vecknn.KNN(ctx, ref, query, idx); err != nil {
//	    return err
//	}
//	// idx.Data() == [0 1]
//
// # Backends
//
// The residency of the reference tensor selects the backend. Host tensors run
// on the single-threaded CPU kernel. Accelerator tensors run on the device
// context attached with WithAccelerator: either the in-process emulator from
// package device or a CUDA device from package device/cuda. Without an
// accelerator such inputs fail with ErrNotSupported; there is no silent
// fallback. Both backends return identical indices.
//
//	emu := device.NewEmulator()
//	defer emu.Close()
//	eng := vecknn.New(vecknn.WithAccelerator(emu))
//	err := eng.Search(ctx, ref.OnDevice(tensor.Accelerator), ...)
//
// # Errors
//
// Shape, k and residency problems are reported before anything is written
// (ErrInvalidTensor, *ErrShapeMismatch, *ErrInvalidK, *ErrResidencyMismatch).
// Accelerator failures surface after the batch as *ErrDeviceFault.
//
// # Configuration
//
// LoadConfig reads VECKNN_* environment variables (and optional .env files);
// NewFromConfig turns them into an Engine.
package vecknn
