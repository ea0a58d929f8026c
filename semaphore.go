// Package ossync provides synchronization primitives built directly on
// operating-system kernel objects: a counting semaphore, a Benaphore
// Mutex on top of it, and a Once that stays poisoned after a failed run.
package ossync

import (
	"time"
)

// Semaphore is the capability every semaphore backend satisfies.
//
// It is a classic counting semaphore: a non-negative count that Wait
// decrements (blocking at 0) and Post increments (waking one waiter).
// All methods are safe for concurrent use. No wake-up order is promised
// beyond what the operating system scheduler provides.
type Semaphore interface {
	// Wait blocks until the count is positive, then decrements it.
	// Interrupted or spurious wake-ups are retried transparently.
	Wait()

	// TryWait decrements the count if it is positive, without blocking.
	// It reports whether the decrement happened.
	TryWait() bool

	// WaitTimeout is like Wait but gives up after d.
	// It reports whether the decrement happened within d.
	WaitTimeout(d time.Duration) bool

	// Post increments the count, waking a waiter if there is one.
	// It reports whether a sleeping waiter was observed; the result is
	// informational only.
	Post() bool

	// Close releases the underlying kernel object.
	// The semaphore must not be used afterwards.
	Close() error
}

// SemaphoreFactory creates a Semaphore holding init units.
type SemaphoreFactory func(init uint32) (Semaphore, error)

// DefaultSemaphore is the SemaphoreFactory of the backend compiled into
// this build. See NewSemaphore.
func DefaultSemaphore(init uint32) (Semaphore, error) {
	s, err := NewSemaphore(init)
	if err != nil {
		return nil, err
	}
	return s, nil
}

var _ Semaphore = (*Sem)(nil)

// SemaphoreGuard holds one unit of a Semaphore until Release is called.
//
// Typical usage pattern:
//
//	g := ossync.LockSemaphore(s)
//	defer g.Release()
//	// ... do work ...
type SemaphoreGuard struct {
	_   noCopy
	sem Semaphore
}

// LockSemaphore waits on s and returns a guard holding the acquired unit.
func LockSemaphore(s Semaphore) SemaphoreGuard {
	s.Wait()
	return SemaphoreGuard{sem: s}
}

// TryLockSemaphore is the non-blocking form of LockSemaphore.
// The guard is valid only if the second result is true.
func TryLockSemaphore(s Semaphore) (SemaphoreGuard, bool) {
	if !s.TryWait() {
		return SemaphoreGuard{}, false
	}
	return SemaphoreGuard{sem: s}, true
}

// Release posts the held unit back to the semaphore.
// It panics if the guard holds nothing.
func (g *SemaphoreGuard) Release() {
	s := g.sem
	if s == nil {
		panic("ossync: release of unheld semaphore guard")
	}
	g.sem = nil
	s.Post()
}

// Lock waits on s and returns a guard holding the acquired unit.
func (s *Sem) Lock() SemaphoreGuard {
	return LockSemaphore(s)
}

// TryLock acquires a unit of s without blocking.
// The guard is valid only if the second result is true.
func (s *Sem) TryLock() (SemaphoreGuard, bool) {
	return TryLockSemaphore(s)
}
