// Package resource tracks device memory against an optional hard limit.
//
// Acquisition is non-blocking and fails fast with ErrMemoryLimitExceeded;
// callers decide whether to retry:
//
//	b := resource.NewBudget(1 << 30) // 1GB limit
//
//	if err := b.Acquire(4 << 20); err != nil {
//	    // ErrMemoryLimitExceeded
//	}
//	defer b.Release(4 << 20)
//
// A zero limit only tracks usage. All methods are safe for concurrent use and
// treat a nil *Budget as unlimited.
package resource
