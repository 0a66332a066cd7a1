package cuda

import (
	"fmt"
	"log/slog"

	"github.com/hupe1980/vecknn/tensor"
)

// DefaultRuntime is the CUDA runtime library name used when Config.Runtime is empty.
const DefaultRuntime = "libcudart.so"

// KernelSymbol is the exported kernel entry point.
const KernelSymbol = "knn_device"

// Config locates the shared libraries.
type Config struct {
	// Runtime is the path or soname of the CUDA runtime. Default DefaultRuntime.
	Runtime string

	// Kernel is the path of the library exporting KernelSymbol. Required.
	Kernel string

	// Logger receives load and fault diagnostics. Default slog.Default().
	Logger *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.Runtime == "" {
		c.Runtime = DefaultRuntime
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Error is a CUDA runtime error code.
type Error struct {
	Op      string
	Code    int32
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("cuda: %s: error %d", e.Op, e.Code)
	}
	return fmt.Sprintf("cuda: %s: %s (%d)", e.Op, e.Message, e.Code)
}

// NewTensor allocates a managed-memory tensor on d.
func NewTensor[T tensor.Element](d *Device, shape ...int) (*tensor.Tensor[T], error) {
	n := 1
	for _, s := range shape {
		n *= s
	}
	var zero T
	data, err := allocManaged[T](d, n, zero)
	if err != nil {
		return nil, err
	}
	t, err := tensor.Wrap(data, tensor.Accelerator, shape...)
	if err != nil {
		release(d, data)
		return nil, err
	}
	return t, nil
}

// Release frees a tensor created by NewTensor.
func Release[T tensor.Element](d *Device, t *tensor.Tensor[T]) {
	if t != nil {
		release(d, t.Data())
	}
}
