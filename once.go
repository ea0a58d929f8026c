package ossync

import (
	"sync/atomic"
)

const (
	onceIncomplete uint32 = iota
	onceRunning
	onceComplete
	onceFailed
)

// Once runs an initializer at most once across any number of goroutines.
//
// The first caller becomes the runner. Callers arriving while it runs park
// on a semaphore created for that run and are released when it ends. If the
// initializer returns an error, panics or calls runtime.Goexit, the Once is
// poisoned: every later call reports ErrPoisoned and the initializer never
// runs again.
//
// It is zero-value usable. A Once must not be copied after first use.
type Once struct {
	_ noCopy
	// state moves Incomplete -> Running -> Complete | Failed, never back.
	state atomic.Uint32
	// parking points at waiters while the state is Running, nil otherwise.
	parking atomic.Pointer[semGuard]
	// err is written by the runner before it stores onceFailed.
	err     error
	waiters semGuard
}

// Do calls f if and only if Do or CallOnce is being called for the first
// time on o, and returns once f has finished, whichever goroutine ran it.
//
// It returns nil if f succeeded. If f failed, Do returns an error wrapping
// ErrPoisoned and the failure, now and on every later call. A panic in f is
// re-raised in the runner's goroutine after the waiters have been released.
func (o *Once) Do(f func() error) error {
	if o.state.Load() == onceComplete {
		return nil
	}
	return o.doSlow(f)
}

// CallOnce is like Do for an initializer that cannot return an error.
// It panics with the poisoning error if the initializer failed.
func (o *Once) CallOnce(f func()) {
	if o.state.Load() == onceComplete {
		return
	}
	if err := o.doSlow(func() error {
		f()
		return nil
	}); err != nil {
		panic(err)
	}
}

// IsCompleted reports whether the initializer has run successfully.
// A poisoned or running Once is not completed.
func (o *Once) IsCompleted() bool {
	return o.state.Load() == onceComplete
}

// IsPoisoned reports whether the initializer has failed.
func (o *Once) IsPoisoned() bool {
	return o.state.Load() == onceFailed
}

func (o *Once) doSlow(f func() error) error {
	var spins int
	for {
		switch o.state.Load() {
		case onceComplete:
			return nil
		case onceFailed:
			return o.err
		case onceIncomplete:
			if o.state.CompareAndSwap(onceIncomplete, onceRunning) {
				return o.run(f)
			}
		default:
			o.join(&spins)
		}
	}
}

// run executes f as the sole runner.
func (o *Once) run(f func() error) error {
	if sem, err := newOnceSemaphore(0); err == nil {
		o.waiters.sem = sem
	}
	o.parking.Store(&o.waiters)

	var (
		cause    error
		panicked *panicError
		returned bool
	)
	defer func() {
		if !returned {
			// runtime.Goexit is unwinding through f.
			o.finish(errGoexit)
		}
	}()

	// Distinguish panic from Goexit via double-defer with inner wrapper.
	func() {
		normalReturn := false
		defer func() {
			if !normalReturn {
				if r := recover(); r != nil {
					panicked = newPanicError(r)
				}
			}
		}()
		cause = f()
		normalReturn = true
	}()
	returned = true

	if panicked != nil {
		o.finish(panicked)
		panic(panicked)
	}
	return o.finish(cause)
}

// finish publishes the terminal state, then wakes every parked waiter.
func (o *Once) finish(cause error) error {
	if cause == nil {
		o.state.Store(onceComplete)
	} else {
		o.err = poisoned(cause)
		o.state.Store(onceFailed)
	}
	o.parking.Store(nil)
	o.waiters.release()
	return o.err
}

// join waits for the current runner to finish.
func (o *Once) join(spins *int) {
	g := o.parking.Load()
	if g == nil || g.sem == nil {
		// The runner has not published its waiters yet, or could not
		// create a semaphore and is polled instead.
		delay(spins)
		return
	}
	if o.state.Load() != onceRunning {
		return
	}
	g.wait()
}

// newOnceSemaphore creates the semaphore a runner parks its waiters on.
var newOnceSemaphore SemaphoreFactory = DefaultSemaphore

const semGuardSealed = 1 << 31

// semGuard parks the goroutines that join a running Once.
type semGuard struct {
	sem Semaphore
	// waiting holds the number of parked goroutines in the low 31 bits and
	// semGuardSealed once release has started.
	waiting atomic.Uint32
	// left counts parked goroutines that have been woken.
	left atomic.Uint32
}

// wait parks the caller until release. It returns false without parking
// if release has already started.
func (g *semGuard) wait() bool {
	for {
		w := g.waiting.Load()
		if w&semGuardSealed != 0 {
			return false
		}
		if g.waiting.CompareAndSwap(w, w+1) {
			break
		}
	}
	g.sem.Wait()
	// The last goroutine out closes the semaphore.
	if g.left.Add(1) == g.waiting.Load()&^semGuardSealed {
		_ = g.sem.Close()
	}
	return true
}

// release seals g and posts once for every parked goroutine.
func (g *semGuard) release() {
	n := g.seal()
	if g.sem == nil {
		return
	}
	for range n {
		g.sem.Post()
	}
	if n == 0 {
		_ = g.sem.Close()
	}
}

// seal sets semGuardSealed and returns the number of parked goroutines.
// A CAS loop rather than Uint32.Or: go1.24.0 miscompiles the Or intrinsic
// on amd64 when its result is used.
func (g *semGuard) seal() uint32 {
	for {
		w := g.waiting.Load()
		if g.waiting.CompareAndSwap(w, w|semGuardSealed) {
			return w &^ semGuardSealed
		}
	}
}
