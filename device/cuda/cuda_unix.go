//go:build linux || darwin

package cuda

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/hupe1980/vecknn/device"
	"github.com/hupe1980/vecknn/internal/conv"
)

const (
	cudaSuccess         = 0
	cudaMemAttachGlobal = 0x01
)

type functions struct {
	streamCreate      func(stream *uintptr) int32
	streamSynchronize func(stream uintptr) int32
	streamDestroy     func(stream uintptr) int32
	getLastError      func() int32
	getErrorString    func(code int32) string
	mallocManaged     func(ptr *uintptr, size uint64, flags uint32) int32
	free              func(ptr uintptr) int32
	knn               func(ref uintptr, refN int32, query uintptr, queryN int32, dim, k int32, dist, ind uintptr, stream uintptr)
}

// Device is a CUDA device context backed by one stream.
type Device struct {
	cfg    Config
	rt     uintptr
	kern   uintptr
	stream uintptr
	fn     functions

	mu     sync.Mutex
	err    error
	closed bool
}

var _ device.Context = (*Device)(nil)

// Open loads the runtime and kernel libraries and creates a stream.
func Open(cfg Config) (*Device, error) {
	cfg = cfg.withDefaults()
	if cfg.Kernel == "" {
		return nil, fmt.Errorf("%w: no kernel library configured", device.ErrUnavailable)
	}

	d := &Device{cfg: cfg}
	var err error
	if d.rt, err = purego.Dlopen(cfg.Runtime, purego.RTLD_NOW|purego.RTLD_GLOBAL); err != nil {
		return nil, fmt.Errorf("%w: load %s: %v", device.ErrUnavailable, cfg.Runtime, err)
	}
	if d.kern, err = purego.Dlopen(cfg.Kernel, purego.RTLD_NOW|purego.RTLD_GLOBAL); err != nil {
		_ = purego.Dlclose(d.rt)
		return nil, fmt.Errorf("%w: load %s: %v", device.ErrUnavailable, cfg.Kernel, err)
	}

	if err := d.register(); err != nil {
		d.unload()
		return nil, err
	}

	if code := d.fn.streamCreate(&d.stream); code != cudaSuccess {
		err := d.codeError("cudaStreamCreate", code)
		d.unload()
		return nil, fmt.Errorf("%w: %w", device.ErrUnavailable, err)
	}

	cfg.Logger.Debug("cuda device opened", "runtime", cfg.Runtime, "kernel", cfg.Kernel)
	return d, nil
}

func (d *Device) register() error {
	bind := func(fptr any, lib uintptr, name string) error {
		sym, err := purego.Dlsym(lib, name)
		if err != nil {
			return fmt.Errorf("%w: missing symbol %s: %v", device.ErrUnavailable, name, err)
		}
		purego.RegisterFunc(fptr, sym)
		return nil
	}

	return errors.Join(
		bind(&d.fn.streamCreate, d.rt, "cudaStreamCreate"),
		bind(&d.fn.streamSynchronize, d.rt, "cudaStreamSynchronize"),
		bind(&d.fn.streamDestroy, d.rt, "cudaStreamDestroy"),
		bind(&d.fn.getLastError, d.rt, "cudaGetLastError"),
		bind(&d.fn.getErrorString, d.rt, "cudaGetErrorString"),
		bind(&d.fn.mallocManaged, d.rt, "cudaMallocManaged"),
		bind(&d.fn.free, d.rt, "cudaFree"),
		bind(&d.fn.knn, d.kern, KernelSymbol),
	)
}

func (d *Device) unload() {
	if d.kern != 0 {
		_ = purego.Dlclose(d.kern)
	}
	if d.rt != 0 {
		_ = purego.Dlclose(d.rt)
	}
}

func (d *Device) codeError(op string, code int32) error {
	e := &Error{Op: op, Code: code}
	if d.fn.getErrorString != nil {
		e.Message = d.fn.getErrorString(code)
	}
	return e
}

// Name implements device.Context.
func (d *Device) Name() string { return "cuda" }

// Stream implements device.Context.
func (d *Device) Stream() device.Stream { return (*stream)(d) }

// AllocFloat32 implements device.Context with managed memory.
func (d *Device) AllocFloat32(n int) ([]float32, error) {
	return allocManaged(d, n, float32(0))
}

// Free implements device.Context.
func (d *Device) Free(buf []float32) { release(d, buf) }

// LastError implements device.Context. It synchronizes the stream.
func (d *Device) LastError() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	err := d.err
	d.err = nil
	if d.closed {
		return err
	}
	if code := d.fn.streamSynchronize(d.stream); code != cudaSuccess && err == nil {
		err = &device.FaultError{Launch: KernelSymbol, Lane: -1, Err: d.codeError("cudaStreamSynchronize", code)}
	}
	if code := d.fn.getLastError(); code != cudaSuccess && err == nil {
		err = &device.FaultError{Launch: KernelSymbol, Lane: -1, Err: d.codeError("cudaGetLastError", code)}
	}
	return err
}

// Close destroys the stream and unloads the libraries.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true

	var err error
	if code := d.fn.streamDestroy(d.stream); code != cudaSuccess {
		err = d.codeError("cudaStreamDestroy", code)
	}
	d.unload()
	return err
}

func (d *Device) fail(err error) {
	d.mu.Lock()
	if d.err == nil {
		d.err = err
	}
	d.mu.Unlock()
}

func release[T ~float32 | ~int32](d *Device, buf []T) {
	p := addr(buf)
	if p == 0 {
		return
	}
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if !closed {
		_ = d.fn.free(p)
	}
}

func allocManaged[T ~float32 | ~int32](d *Device, n int, _ T) ([]T, error) {
	if n < 0 {
		return nil, fmt.Errorf("cuda: negative allocation %d", n)
	}
	if n == 0 {
		return nil, nil
	}
	count, err := conv.IntToUint64(n)
	if err != nil {
		return nil, err
	}
	var ptr uintptr
	size := count * uint64(unsafe.Sizeof(T(0)))
	if code := d.fn.mallocManaged(&ptr, size, cudaMemAttachGlobal); code != cudaSuccess {
		return nil, fmt.Errorf("%w: %w", device.ErrOutOfMemory, d.codeError("cudaMallocManaged", code))
	}
	return unsafe.Slice((*T)(unsafe.Pointer(ptr)), n), nil
}

// stream is the Device's single CUDA stream.
type stream Device

// Launch implements device.Stream. Go lane bodies cannot run on the GPU.
func (s *stream) Launch(l device.Launch) {
	(*Device)(s).fail(&device.FaultError{Launch: l.Name, Lane: -1, Err: device.ErrUnsupportedLaunch})
}

// LaunchKNN implements device.KNNLauncher.
func (s *stream) LaunchKNN(a device.KNNArgs) {
	d := (*Device)(s)
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed {
		d.fail(&device.FaultError{Launch: KernelSymbol, Lane: -1, Err: device.ErrStreamClosed})
		return
	}
	args, err := conv.Int32s(a.RefN, a.QueryN, a.Dim, a.K)
	if err != nil {
		d.fail(&device.FaultError{Launch: KernelSymbol, Lane: -1, Err: err})
		return
	}
	d.fn.knn(
		addr(a.Ref), args[0],
		addr(a.Query), args[1],
		args[2], args[3],
		addr(a.Dist), addr(a.Index),
		d.stream,
	)
}

func addr[T any](s []T) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(s)))
}
