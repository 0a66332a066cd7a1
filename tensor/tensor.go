package tensor

import (
	"errors"
	"fmt"
	"slices"
)

// Device identifies where a tensor's elements reside.
type Device uint8

const (
	// Host is ordinary process memory.
	Host Device = iota
	// Accelerator is memory addressable by the configured accelerator.
	Accelerator
)

func (d Device) String() string {
	switch d {
	case Host:
		return "host"
	case Accelerator:
		return "accelerator"
	default:
		return fmt.Sprintf("Unknown(%d)", d)
	}
}

// Element is the set of element types the engine reads and writes.
type Element interface {
	~float32 | ~int32
}

// ErrShape is returned when data length and shape disagree or a dimension is negative.
var ErrShape = errors.New("tensor: invalid shape")

// Tensor is a flat buffer with a shape and a residency.
type Tensor[T Element] struct {
	data   []T
	shape  []int
	device Device
}

// New allocates a zeroed host tensor of the given shape.
func New[T Element](shape ...int) (*Tensor[T], error) {
	n, err := numElements(shape)
	if err != nil {
		return nil, err
	}
	return &Tensor[T]{data: make([]T, n), shape: slices.Clone(shape), device: Host}, nil
}

// FromSlice wraps data as a host tensor without copying.
func FromSlice[T Element](data []T, shape ...int) (*Tensor[T], error) {
	return Wrap(data, Host, shape...)
}

// Wrap wraps data resident on device without copying.
func Wrap[T Element](data []T, device Device, shape ...int) (*Tensor[T], error) {
	n, err := numElements(shape)
	if err != nil {
		return nil, err
	}
	if n != len(data) {
		return nil, fmt.Errorf("%w: shape %v needs %d elements, got %d", ErrShape, shape, n, len(data))
	}
	return &Tensor[T]{data: data, shape: slices.Clone(shape), device: device}, nil
}

// MustFromSlice is like FromSlice but panics on a shape error.
func MustFromSlice[T Element](data []T, shape ...int) *Tensor[T] {
	t, err := FromSlice(data, shape...)
	if err != nil {
		panic(err)
	}
	return t
}

func numElements(shape []int) (int, error) {
	n := 1
	for _, d := range shape {
		if d < 0 {
			return 0, fmt.Errorf("%w: negative dimension in %v", ErrShape, shape)
		}
		n *= d
	}
	return n, nil
}

// Data returns the underlying elements.
func (t *Tensor[T]) Data() []T { return t.data }

// Device returns where the elements reside.
func (t *Tensor[T]) Device() Device { return t.device }

// Shape returns a copy of the shape.
func (t *Tensor[T]) Shape() []int { return slices.Clone(t.shape) }

// Rank returns the number of axes.
func (t *Tensor[T]) Rank() int { return len(t.shape) }

// Len returns the number of elements.
func (t *Tensor[T]) Len() int { return len(t.data) }

// Dim returns the size of axis i, or 0 when the axis does not exist.
func (t *Tensor[T]) Dim(i int) int {
	if i < 0 || i >= len(t.shape) {
		return 0
	}
	return t.shape[i]
}

// OnDevice returns a view of the same elements tagged with another residency.
func (t *Tensor[T]) OnDevice(d Device) *Tensor[T] {
	return &Tensor[T]{data: t.data, shape: t.shape, device: d}
}

// Batch returns the contiguous elements of batch element b (axis 0).
func (t *Tensor[T]) Batch(b int) []T {
	if len(t.shape) == 0 || t.shape[0] == 0 {
		return nil
	}
	stride := len(t.data) / t.shape[0]
	return t.data[b*stride : (b+1)*stride]
}
