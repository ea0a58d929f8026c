//go:build linux && !race

package ossync

import (
	"fmt"
	"math"
	"sync/atomic"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/llxisdsh/ossync/internal/opt"
)

const (
	futexWaitPrivate = 0 | 128
	futexWakePrivate = 1 | 128

	semValueMax = math.MaxInt32
)

// Sem is a counting semaphore parked on a process-private futex word.
//
// Size: 8 bytes (4 byte count + 4 byte sleeper count).
type Sem struct {
	_ noCopy
	// value is the futex word: the number of available units.
	value atomic.Uint32
	// sleepers is the number of goroutines inside FUTEX_WAIT, or about to be.
	sleepers atomic.Uint32
}

// NewSemaphore creates a semaphore holding init units.
func NewSemaphore(init uint32) (*Sem, error) {
	if init > semValueMax {
		return nil, fmt.Errorf("%w: %d > %d", ErrSemaphoreCount, init, semValueMax)
	}
	s := &Sem{}
	s.value.Store(init)
	return s, nil
}

func (s *Sem) tryDecrement() bool {
	for {
		v := s.value.Load()
		if v == 0 {
			return false
		}
		if s.value.CompareAndSwap(v, v-1) {
			return true
		}
	}
}

// Wait blocks until a unit is available and takes it.
func (s *Sem) Wait() {
	for !s.tryDecrement() {
		s.sleep(nil)
	}
}

// TryWait takes a unit if one is available.
func (s *Sem) TryWait() bool {
	return s.tryDecrement()
}

// WaitTimeout is like Wait but gives up after d.
func (s *Sem) WaitTimeout(d time.Duration) bool {
	if s.tryDecrement() {
		return true
	}
	if d <= 0 {
		return false
	}
	// Interrupted sleeps resume against the same monotonic deadline.
	deadline := time.Now().Add(d)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return s.tryDecrement()
		}
		ts := unix.NsecToTimespec(remaining.Nanoseconds())
		s.sleep(&ts)
		if s.tryDecrement() {
			return true
		}
	}
}

// sleep parks the calling thread while the futex word reads zero.
// Every return is treated as a possible wake-up; callers re-check the count.
func (s *Sem) sleep(ts *unix.Timespec) {
	s.sleepers.Add(1)
	_, _, errno := unix.Syscall6(
		unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(&s.value)),
		futexWaitPrivate,
		0,
		uintptr(unsafe.Pointer(ts)),
		0,
		0,
	)
	s.sleepers.Add(^uint32(0))

	switch errno {
	case 0, unix.EAGAIN, unix.EINTR, unix.ETIMEDOUT:
	default:
		if opt.Debug_ {
			panic(fmt.Sprintf("ossync: futex wait: %v", errno))
		}
	}
}

// Post returns a unit, waking one sleeper if any was observed.
func (s *Sem) Post() bool {
	if v := s.value.Add(1); opt.Debug_ && v > semValueMax {
		panic("ossync: semaphore count overflow")
	}
	// A waiter registers in sleepers before FUTEX_WAIT re-checks the word,
	// so either it sees the new value or we see it.
	if s.sleepers.Load() == 0 {
		return false
	}
	_, _, errno := unix.Syscall6(
		unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(&s.value)),
		futexWakePrivate,
		1,
		0,
		0,
		0,
	)
	if errno != 0 && opt.Debug_ {
		panic(fmt.Sprintf("ossync: futex wake: %v", errno))
	}
	return true
}

// Close is a no-op: a futex word holds no kernel resources once nobody
// sleeps on it.
func (s *Sem) Close() error {
	return nil
}
