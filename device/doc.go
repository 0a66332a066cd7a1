// Package device defines the accelerator execution context consumed by the
// KNN engine and provides an in-process emulated accelerator.
//
// A Context exposes the current Stream, scratch allocation in device memory
// and the last asynchronous error. Launches submitted to a stream execute in
// submission order and report failures asynchronously: a faulting launch
// leaves a sticky error that LastError returns (and clears) once all queued
// work has settled. Launches queued behind a fault are skipped.
//
// # Emulator
//
// The Emulator runs each launch as a grid of lanes split into blocks; blocks
// run in parallel on goroutines, lanes within a block run in order. It makes
// the accelerator path usable and testable without hardware:
//
//	emu := device.NewEmulator(func(o *device.EmulatorOptions) {
//	    o.BlockSize = 32
//	})
//	defer emu.Close()
//
// # Native kernels
//
// A stream may additionally implement KNNLauncher to run the whole per-batch
// KNN kernel natively (see package device/cuda).
package device
