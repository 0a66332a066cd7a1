package vecknn

import (
	"errors"
	"fmt"

	"github.com/hupe1980/vecknn/tensor"
)

var (
	// ErrNotSupported is returned when the input resides on the accelerator but
	// the engine was not built with an accelerator.
	ErrNotSupported = errors.New("not compiled with accelerator support")

	// ErrInvalidTensor is returned for nil or wrongly ranked tensors.
	ErrInvalidTensor = errors.New("invalid tensor")
)

// ErrShapeMismatch indicates a tensor whose shape disagrees with the reference.
type ErrShapeMismatch struct {
	Tensor   string
	Expected []int
	Actual   []int
}

func (e *ErrShapeMismatch) Error() string {
	return fmt.Sprintf("%s shape mismatch: expected %v, got %v", e.Tensor, e.Expected, e.Actual)
}

// ErrInvalidK indicates a neighbor count outside [1, N].
type ErrInvalidK struct {
	K int
	N int
}

func (e *ErrInvalidK) Error() string {
	return fmt.Sprintf("invalid k: %d (must be in [1, %d])", e.K, e.N)
}

// ErrResidencyMismatch indicates tensors living on different devices.
type ErrResidencyMismatch struct {
	Tensor   string
	Expected tensor.Device
	Actual   tensor.Device
}

func (e *ErrResidencyMismatch) Error() string {
	return fmt.Sprintf("%s resides on %s, reference on %s", e.Tensor, e.Actual, e.Expected)
}

// ErrDeviceFault reports a failure raised by the accelerator. The output of the
// failed call is undefined.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrDeviceFault struct {
	Device string
	cause  error
}

func (e *ErrDeviceFault) Error() string {
	return fmt.Sprintf("device fault on %s: %v", e.Device, e.cause)
}

func (e *ErrDeviceFault) Unwrap() error { return e.cause }

// IsDeviceFault reports whether err is, or wraps, an ErrDeviceFault.
func IsDeviceFault(err error) bool {
	var f *ErrDeviceFault
	return errors.As(err, &f)
}
