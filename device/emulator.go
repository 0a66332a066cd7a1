package device

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/vecknn/internal/mem"
	"github.com/hupe1980/vecknn/internal/resource"
)

// EmulatorOptions configures an Emulator.
type EmulatorOptions struct {
	// Name identifies the device. Default "emulator".
	Name string

	// BlockSize is the number of lanes one goroutine runs in order. Default 64.
	BlockSize int

	// Parallelism bounds the number of blocks running at once.
	// Default runtime.GOMAXPROCS(0).
	Parallelism int

	// MemoryLimit caps outstanding AllocFloat32 bytes. Zero means unlimited.
	MemoryLimit int64

	// QueueDepth is the number of launches the stream buffers. Default 64.
	QueueDepth int

	// Logger receives launch faults. Default slog.Default().
	Logger *slog.Logger

	// FaultInjector, when set, is consulted before every lane; a non-nil
	// error faults the launch. Intended for tests.
	FaultInjector func(launch string, lane int) error
}

// Emulator is an in-process accelerator.
type Emulator struct {
	opts      EmulatorOptions
	stream    *emuStream
	budget    *resource.Budget
	closeOnce sync.Once
}

// NewEmulator creates an Emulator and starts its stream worker.
func NewEmulator(optFns ...func(o *EmulatorOptions)) *Emulator {
	opts := EmulatorOptions{
		Name:        "emulator",
		BlockSize:   64,
		Parallelism: runtime.GOMAXPROCS(0),
		QueueDepth:  64,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.BlockSize <= 0 {
		opts.BlockSize = 64
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = runtime.GOMAXPROCS(0)
	}
	if opts.QueueDepth <= 0 {
		opts.QueueDepth = 64
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	e := &Emulator{opts: opts, budget: resource.NewBudget(opts.MemoryLimit)}
	e.stream = newEmuStream(&e.opts)
	return e
}

// Name implements Context.
func (e *Emulator) Name() string { return e.opts.Name }

// Stream implements Context.
func (e *Emulator) Stream() Stream { return e.stream }

// AllocFloat32 implements Context.
func (e *Emulator) AllocFloat32(n int) ([]float32, error) {
	if n < 0 {
		return nil, fmt.Errorf("device: negative allocation %d", n)
	}
	size := int64(n) * 4
	if err := e.budget.Acquire(size); err != nil {
		return nil, fmt.Errorf("%w: %d bytes requested, %d of %d in use", ErrOutOfMemory, size, e.budget.Used(), e.budget.Limit())
	}
	return mem.AllocAlignedFloat32(n), nil
}

// Free implements Context.
func (e *Emulator) Free(buf []float32) {
	e.budget.Release(int64(len(buf)) * 4)
}

// Allocated returns the outstanding allocation in bytes.
func (e *Emulator) Allocated() int64 { return e.budget.Used() }

// PeakAllocated returns the high-water mark of Allocated.
func (e *Emulator) PeakAllocated() int64 { return e.budget.Peak() }

// LastError implements Context.
func (e *Emulator) LastError() error { return e.stream.lastError() }

// Close drains the stream and stops its worker. Launches after Close record
// ErrStreamClosed.
func (e *Emulator) Close() error {
	e.closeOnce.Do(e.stream.close)
	return nil
}

type emuStream struct {
	opts  *EmulatorOptions
	queue chan Launch
	done  chan struct{}

	mu      sync.Mutex
	settled *sync.Cond
	pending int
	err     error
	closed  bool
}

func newEmuStream(opts *EmulatorOptions) *emuStream {
	s := &emuStream{
		opts:  opts,
		queue: make(chan Launch, opts.QueueDepth),
		done:  make(chan struct{}),
	}
	s.settled = sync.NewCond(&s.mu)
	go s.run()
	return s
}

// Launch implements Stream.
func (s *emuStream) Launch(l Launch) {
	s.mu.Lock()
	if s.closed {
		if s.err == nil {
			s.err = &FaultError{Launch: l.Name, Lane: -1, Err: ErrStreamClosed}
		}
		s.mu.Unlock()
		return
	}
	s.pending++
	s.mu.Unlock()

	s.queue <- l
}

func (s *emuStream) run() {
	defer close(s.done)
	for l := range s.queue {
		s.execute(l)

		s.mu.Lock()
		s.pending--
		if s.pending == 0 {
			s.settled.Broadcast()
		}
		s.mu.Unlock()
	}
}

func (s *emuStream) execute(l Launch) {
	s.mu.Lock()
	faulted := s.err != nil
	s.mu.Unlock()
	if faulted {
		return
	}

	if err := s.grid(l); err != nil {
		s.opts.Logger.Error("launch faulted", "device", s.opts.Name, "launch", l.Name, "error", err)
		s.mu.Lock()
		if s.err == nil {
			s.err = err
		}
		s.mu.Unlock()
	}
}

func (s *emuStream) grid(l Launch) error {
	if l.Lanes < 0 || (l.Lanes > 0 && l.Body == nil) {
		return &FaultError{Launch: l.Name, Lane: -1, Err: ErrInvalidLaunch}
	}

	bs := s.opts.BlockSize
	blocks := (l.Lanes + bs - 1) / bs

	var g errgroup.Group
	g.SetLimit(s.opts.Parallelism)
	for b := 0; b < blocks; b++ {
		lo, hi := b*bs, min((b+1)*bs, l.Lanes)
		g.Go(func() error {
			return s.block(l, lo, hi)
		})
	}
	return g.Wait()
}

func (s *emuStream) block(l Launch, lo, hi int) (err error) {
	lane := lo
	defer func() {
		if r := recover(); r != nil {
			err = &FaultError{Launch: l.Name, Lane: lane, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	for ; lane < hi; lane++ {
		if inject := s.opts.FaultInjector; inject != nil {
			if ierr := inject(l.Name, lane); ierr != nil {
				return &FaultError{Launch: l.Name, Lane: lane, Err: ierr}
			}
		}
		if berr := l.Body(lane); berr != nil {
			return &FaultError{Launch: l.Name, Lane: lane, Err: berr}
		}
	}
	return nil
}

func (s *emuStream) lastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.pending > 0 {
		s.settled.Wait()
	}
	err := s.err
	s.err = nil
	return err
}

func (s *emuStream) close() {
	s.mu.Lock()
	s.closed = true
	for s.pending > 0 {
		s.settled.Wait()
	}
	s.mu.Unlock()

	close(s.queue)
	<-s.done
}
