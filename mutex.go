package ossync

import (
	"sync/atomic"

	"github.com/llxisdsh/ossync/internal/opt"
)

// Mutex is a mutual exclusion lock built as a Benaphore: an atomic
// counter in front of a Semaphore.
//
// An uncontended Lock or unlock is a single atomic add and never enters
// the kernel. Only a goroutine that finds the lock taken waits on the
// semaphore, and only an unlock that finds waiters posts it.
//
// Mutex is not reentrant: locking it again from the holder deadlocks.
// Waiters are woken in whatever order the semaphore backend wakes them.
//
// A Mutex must not be copied after first use.
type Mutex struct {
	_ noCopy
	// count is the number of goroutines holding or contending for the lock.
	count atomic.Int32
	_     opt.CounterPad_
	sem   Semaphore
}

// NewMutex creates an unlocked Mutex on the default semaphore backend.
// The only failure is the backend refusing to create a semaphore.
func NewMutex() (*Mutex, error) {
	return NewMutexWith(DefaultSemaphore)
}

// NewMutexWith creates an unlocked Mutex on a semaphore from newSem.
func NewMutexWith(newSem SemaphoreFactory) (*Mutex, error) {
	sem, err := newSem(0)
	if err != nil {
		return nil, err
	}
	return &Mutex{sem: sem}, nil
}

// Lock acquires m, blocking until it is available, and returns the guard
// that releases it.
//
//	g := m.Lock()
//	defer g.Unlock()
func (m *Mutex) Lock() MutexGuard {
	if m.count.Add(1) > 1 {
		m.sem.Wait()
	}
	return MutexGuard{m: m}
}

// TryLock acquires m only if it is free, without blocking.
// The guard is valid only if the second result is true.
func (m *Mutex) TryLock() (MutexGuard, bool) {
	if !m.count.CompareAndSwap(0, 1) {
		return MutexGuard{}, false
	}
	return MutexGuard{m: m}, true
}

func (m *Mutex) unlock() {
	n := m.count.Add(-1)
	if n > 0 {
		// Someone incremented count after us and sleeps, or is about to.
		m.sem.Post()
		return
	}
	if n < 0 {
		m.count.Add(1)
		panic("ossync: unlock of unlocked mutex")
	}
}

// Close releases the semaphore behind m.
// m must be unlocked and unused afterwards.
func (m *Mutex) Close() error {
	return m.sem.Close()
}

// MutexGuard proves that its Mutex is held.
// Unlock is the only way to release the Mutex.
//
// A guard that is dropped without Unlock leaves the Mutex locked forever.
// A guard must not be copied: a stale copy could unlock the Mutex on
// behalf of a later holder.
type MutexGuard struct {
	_ noCopy
	m *Mutex
}

// Unlock releases the Mutex held by g.
// It panics if g holds nothing, including when g was already unlocked.
func (g *MutexGuard) Unlock() {
	m := g.m
	if m == nil {
		panic("ossync: unlock of unlocked mutex")
	}
	g.m = nil
	m.unlock()
}
