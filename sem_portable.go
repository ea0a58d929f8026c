//go:build (!linux && !windows) || race

package ossync

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

const semValueMax = math.MaxInt32

// Sem is a counting semaphore on top of the Go runtime scheduler.
//
// It backs platforms without a kernel binding, and race builds, where the
// race detector has to see every happens-before edge.
//
// The weighted semaphore counts acquired units, so every unit that is not
// available is held: a fresh Sem holding init units has
// math.MaxInt64 - init units acquired.
type Sem struct {
	_        noCopy
	w        *semaphore.Weighted
	sleepers atomic.Int32
}

// NewSemaphore creates a semaphore holding init units.
func NewSemaphore(init uint32) (*Sem, error) {
	if init > semValueMax {
		return nil, fmt.Errorf("%w: %d > %d", ErrSemaphoreCount, init, semValueMax)
	}
	w := semaphore.NewWeighted(math.MaxInt64)
	if !w.TryAcquire(math.MaxInt64 - int64(init)) {
		return nil, fmt.Errorf("%w: cannot charge weighted semaphore", ErrSemaphoreCreate)
	}
	return &Sem{w: w}, nil
}

// Wait blocks until a unit is available and takes it.
func (s *Sem) Wait() {
	if s.w.TryAcquire(1) {
		return
	}
	s.sleepers.Add(1)
	// Acquire only fails when the context is done.
	_ = s.w.Acquire(context.Background(), 1)
	s.sleepers.Add(-1)
}

// TryWait takes a unit if one is available.
func (s *Sem) TryWait() bool {
	return s.w.TryAcquire(1)
}

// WaitTimeout is like Wait but gives up after d.
func (s *Sem) WaitTimeout(d time.Duration) bool {
	if s.w.TryAcquire(1) {
		return true
	}
	if d <= 0 {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	s.sleepers.Add(1)
	err := s.w.Acquire(ctx, 1)
	s.sleepers.Add(-1)
	return err == nil
}

// Post returns a unit, waking one waiter if any.
func (s *Sem) Post() bool {
	sleeping := s.sleepers.Load() > 0
	s.w.Release(1)
	return sleeping
}

// Close is a no-op; the Go runtime owns every resource.
func (s *Sem) Close() error {
	return nil
}
