package device

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable is returned when an accelerator runtime cannot be loaded or was not built in.
	ErrUnavailable = errors.New("device: accelerator not available")
	// ErrOutOfMemory is returned when a device allocation exceeds the available memory.
	ErrOutOfMemory = errors.New("device: out of memory")
	// ErrStreamClosed is recorded when work is launched on a closed stream.
	ErrStreamClosed = errors.New("device: stream closed")
	// ErrUnsupportedLaunch is recorded when a stream cannot execute a launch kind.
	ErrUnsupportedLaunch = errors.New("device: launch not supported by this stream")
	// ErrInvalidLaunch is recorded for malformed launches.
	ErrInvalidLaunch = errors.New("device: invalid launch")
)

// Launch is one kernel launch: Body runs once per lane in [0, Lanes).
type Launch struct {
	Name  string
	Lanes int
	Body  func(lane int) error
}

// Stream orders launches. Launch returns immediately; failures surface through
// Context.LastError.
type Stream interface {
	Launch(l Launch)
}

// Context is an accelerator execution context.
type Context interface {
	// Name identifies the device in logs and errors.
	Name() string

	// Stream returns the current stream.
	Stream() Stream

	// AllocFloat32 allocates n float32 values of device memory.
	AllocFloat32(n int) ([]float32, error)

	// Free releases memory obtained from AllocFloat32.
	Free(buf []float32)

	// LastError waits for all queued work on the current stream, then returns
	// and clears the sticky asynchronous error.
	LastError() error
}

// KNNArgs describes one batch element of a native KNN launch.
//
// Ref is Dim×RefN and Query Dim×QueryN, dimension-major. Dist is RefN×QueryN
// device scratch; after completion its first K rows (pitch QueryN) hold the
// sorted distances. Index receives K×QueryN reference indices.
type KNNArgs struct {
	Ref    []float32
	RefN   int
	Query  []float32
	QueryN int
	Dim    int
	K      int
	Dist   []float32
	Index  []int32
}

// KNNLauncher is implemented by streams that run the KNN kernel natively.
type KNNLauncher interface {
	LaunchKNN(args KNNArgs)
}

// FaultError reports a failed launch.
type FaultError struct {
	Launch string
	Lane   int
	Err    error
}

func (e *FaultError) Error() string {
	if e.Lane < 0 {
		return fmt.Sprintf("device: launch %q: %v", e.Launch, e.Err)
	}
	return fmt.Sprintf("device: launch %q lane %d: %v", e.Launch, e.Lane, e.Err)
}

func (e *FaultError) Unwrap() error { return e.Err }
