package resource

import (
	"errors"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// ErrMemoryLimitExceeded is returned when memory limit would be exceeded.
var ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

// Budget accounts for allocated bytes.
type Budget struct {
	limit int64
	sem   *semaphore.Weighted // nil if unlimited
	used  atomic.Int64
	peak  atomic.Int64
}

// NewBudget creates a Budget. limit <= 0 means unlimited.
func NewBudget(limit int64) *Budget {
	b := &Budget{limit: max(limit, 0)}
	if limit > 0 {
		b.sem = semaphore.NewWeighted(limit)
	}
	return b
}

// Acquire reserves bytes or returns ErrMemoryLimitExceeded.
func (b *Budget) Acquire(bytes int64) error {
	if b == nil || bytes <= 0 {
		return nil
	}
	if b.sem != nil && !b.sem.TryAcquire(bytes) {
		return ErrMemoryLimitExceeded
	}

	used := b.used.Add(bytes)
	for {
		peak := b.peak.Load()
		if used <= peak || b.peak.CompareAndSwap(peak, used) {
			break
		}
	}
	return nil
}

// Release returns bytes obtained from Acquire.
func (b *Budget) Release(bytes int64) {
	if b == nil || bytes <= 0 {
		return
	}
	if b.sem != nil {
		b.sem.Release(bytes)
	}
	b.used.Add(-bytes)
}

// Used returns the bytes currently reserved.
func (b *Budget) Used() int64 {
	if b == nil {
		return 0
	}
	return b.used.Load()
}

// Peak returns the high-water mark of Used.
func (b *Budget) Peak() int64 {
	if b == nil {
		return 0
	}
	return b.peak.Load()
}

// Limit returns the configured limit in bytes (0 if unlimited).
func (b *Budget) Limit() int64 {
	if b == nil {
		return 0
	}
	return b.limit
}
