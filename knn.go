package vecknn

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/vecknn/internal/kernel"
	"github.com/hupe1980/vecknn/tensor"
)

// Engine computes batched brute-force k-nearest neighbors on the host or on
// an attached accelerator. An Engine is safe for concurrent use; calls on the
// accelerator are serialized.
type Engine struct {
	opts    options
	cpu     kernel.CPU
	accel   *kernel.Accelerator
	accelMu sync.Mutex
}

// New creates an Engine.
func New(optFns ...Option) *Engine {
	e := &Engine{opts: applyOptions(optFns)}
	if e.opts.accelerator != nil {
		e.accel = kernel.NewAccelerator(e.opts.accelerator, e.opts.expanded)
	}
	return e
}

// HasAccelerator reports whether accelerator-resident inputs are supported.
func (e *Engine) HasAccelerator() bool { return e.accel != nil }

var defaultEngine = sync.OnceValue(func() *Engine { return New() })

// KNN runs Search on a host-only engine.
func KNN(ctx context.Context, ref, query *tensor.Tensor[float32], idx *tensor.Tensor[int32], opts ...SearchOption) error {
	return defaultEngine().Search(ctx, ref, query, idx, opts...)
}

// shape is the validated geometry of one Search call.
type shape struct {
	batch, dim, refN, queryN, k int
	device                      tensor.Device
}

// Search writes, for every batch element b and query j, the indices of the k
// nearest reference points into idx[b, :, j], ordered by ascending squared
// distance with ties resolved to the smaller index.
//
// ref is [B, D, N], query [B, D, Q] and idx [B, k, Q]; k is taken from idx.
// The residency of ref selects the backend and every tensor must share it.
//
// Arguments are validated before anything is written. An accelerator failure
// is reported as *ErrDeviceFault after the whole batch was submitted; the
// output is then undefined.
func (e *Engine) Search(ctx context.Context, ref, query *tensor.Tensor[float32], idx *tensor.Tensor[int32], opts ...SearchOption) (err error) {
	so := applySearchOptions(opts)
	start := time.Now()

	sh, err := validate(ref, query, idx, so.distances)
	if err != nil {
		return err
	}

	var backend kernel.Backend = e.cpu
	if sh.device == tensor.Accelerator {
		if e.accel == nil {
			return ErrNotSupported
		}
		backend = e.accel
	}

	logger := e.opts.logger.
		WithCallID(uuid.NewString()).
		WithBackend(backend.Name()).
		WithK(sh.k).
		WithDimension(sh.dim)

	defer func() {
		e.opts.metricsCollector.RecordSearch(backend.Name(), sh.batch, sh.queryN, sh.k, time.Since(start), err)
		logger.LogSearch(ctx, sh.batch, sh.queryN, err)
	}()

	if sh.batch == 0 || sh.queryN == 0 {
		return nil
	}

	if sh.device == tensor.Accelerator {
		e.accelMu.Lock()
		defer e.accelMu.Unlock()
	}

	if err := run(backend, sh, ref, query, idx, so.distances); err != nil {
		if sh.device == tensor.Host {
			return err
		}
		logger.LogFault(ctx, backend.Name(), err)
		return &ErrDeviceFault{Device: backend.Name(), cause: err}
	}
	return nil
}

func run(backend kernel.Backend, sh shape, ref, query *tensor.Tensor[float32], idx *tensor.Tensor[int32], dist *tensor.Tensor[float32]) error {
	scratch, err := backend.Alloc(sh.refN, sh.queryN)
	if err != nil {
		return fmt.Errorf("allocate scratch: %w", err)
	}

	var runErr error
	for b := 0; b < sh.batch; b++ {
		p := kernel.Problem{
			Ref:    ref.Batch(b),
			Query:  query.Batch(b),
			RefN:   sh.refN,
			QueryN: sh.queryN,
			Dim:    sh.dim,
			K:      sh.k,
			Index:  idx.Batch(b),
		}
		if dist != nil {
			p.Dist = dist.Batch(b)
		}
		if runErr = backend.Run(p, scratch); runErr != nil {
			break
		}
	}

	return errors.Join(runErr, backend.Finish(scratch))
}

func validate(ref, query *tensor.Tensor[float32], idx *tensor.Tensor[int32], dist *tensor.Tensor[float32]) (shape, error) {
	var sh shape
	switch {
	case ref == nil:
		return sh, fmt.Errorf("%w: reference is nil", ErrInvalidTensor)
	case query == nil:
		return sh, fmt.Errorf("%w: query is nil", ErrInvalidTensor)
	case idx == nil:
		return sh, fmt.Errorf("%w: index output is nil", ErrInvalidTensor)
	}
	for _, t := range []struct {
		name string
		rank int
	}{
		{"reference", ref.Rank()},
		{"query", query.Rank()},
		{"index output", idx.Rank()},
	} {
		if t.rank != 3 {
			return sh, fmt.Errorf("%w: %s must have rank 3, got %d", ErrInvalidTensor, t.name, t.rank)
		}
	}

	sh = shape{
		batch:  ref.Dim(0),
		dim:    ref.Dim(1),
		refN:   ref.Dim(2),
		queryN: query.Dim(2),
		k:      idx.Dim(1),
		device: ref.Device(),
	}

	if query.Dim(0) != sh.batch || query.Dim(1) != sh.dim {
		return sh, &ErrShapeMismatch{Tensor: "query", Expected: []int{sh.batch, sh.dim, sh.queryN}, Actual: query.Shape()}
	}
	want := []int{sh.batch, sh.k, sh.queryN}
	if idx.Dim(0) != sh.batch || idx.Dim(2) != sh.queryN {
		return sh, &ErrShapeMismatch{Tensor: "index output", Expected: want, Actual: idx.Shape()}
	}
	if sh.k < 1 || sh.k > sh.refN {
		return sh, &ErrInvalidK{K: sh.k, N: sh.refN}
	}
	if dist != nil {
		if dist.Rank() != 3 || dist.Dim(0) != sh.batch || dist.Dim(1) != sh.k || dist.Dim(2) != sh.queryN {
			return sh, &ErrShapeMismatch{Tensor: "distance output", Expected: want, Actual: dist.Shape()}
		}
		if dist.Device() != sh.device {
			return sh, &ErrResidencyMismatch{Tensor: "distance output", Expected: sh.device, Actual: dist.Device()}
		}
	}

	if query.Device() != sh.device {
		return sh, &ErrResidencyMismatch{Tensor: "query", Expected: sh.device, Actual: query.Device()}
	}
	if idx.Device() != sh.device {
		return sh, &ErrResidencyMismatch{Tensor: "index output", Expected: sh.device, Actual: idx.Device()}
	}
	return sh, nil
}
