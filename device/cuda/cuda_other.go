//go:build !(linux || darwin)

package cuda

import (
	"fmt"
	"runtime"

	"github.com/hupe1980/vecknn/device"
)

// Device is unavailable on this platform.
type Device struct{}

var _ device.Context = (*Device)(nil)

// Open always fails with device.ErrUnavailable on this platform.
func Open(Config) (*Device, error) {
	return nil, fmt.Errorf("%w: cuda loader not supported on %s", device.ErrUnavailable, runtime.GOOS)
}

func (*Device) Name() string                        { return "cuda" }
func (*Device) Stream() device.Stream               { return nil }
func (*Device) AllocFloat32(int) ([]float32, error) { return nil, device.ErrUnavailable }
func (*Device) Free([]float32)                      {}
func (*Device) LastError() error                    { return device.ErrUnavailable }
func (*Device) Close() error                        { return nil }

func release[T ~float32 | ~int32](*Device, []T) {}

func allocManaged[T ~float32 | ~int32](*Device, int, T) ([]T, error) {
	return nil, device.ErrUnavailable
}
