//go:build windows && !race

package ossync

import (
	"fmt"
	"math"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/llxisdsh/ossync/internal/opt"
)

const (
	waitObject0 = 0x00000000
	waitTimeout = 0x00000102
	infinite    = 0xFFFFFFFF

	semValueMax = math.MaxInt32
)

var (
	modkernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procCreateSemaphoreW = modkernel32.NewProc("CreateSemaphoreW")
	procReleaseSemaphore = modkernel32.NewProc("ReleaseSemaphore")
)

// Sem is a counting semaphore backed by an unnamed Win32 semaphore object.
type Sem struct {
	_      noCopy
	handle windows.Handle
}

// NewSemaphore creates a semaphore holding init units.
func NewSemaphore(init uint32) (*Sem, error) {
	if init > semValueMax {
		return nil, fmt.Errorf("%w: %d > %d", ErrSemaphoreCount, init, semValueMax)
	}
	r, _, err := procCreateSemaphoreW.Call(0, uintptr(init), uintptr(semValueMax), 0)
	if r == 0 {
		return nil, fmt.Errorf("%w: CreateSemaphoreW: %w", ErrSemaphoreCreate, err)
	}
	return &Sem{handle: windows.Handle(r)}, nil
}

func (s *Sem) wait(ms uint32) bool {
	event, err := windows.WaitForSingleObject(s.handle, ms)
	switch event {
	case waitObject0:
		return true
	case waitTimeout:
		return false
	}
	// WAIT_FAILED on a live handle means the semaphore was misused.
	panic(fmt.Sprintf("ossync: WaitForSingleObject: %#x: %v", event, err))
}

// Wait blocks until a unit is available and takes it.
func (s *Sem) Wait() {
	s.wait(infinite)
}

// TryWait takes a unit if one is available.
func (s *Sem) TryWait() bool {
	return s.wait(0)
}

// WaitTimeout is like Wait but gives up after d.
func (s *Sem) WaitTimeout(d time.Duration) bool {
	if d <= 0 {
		return s.wait(0)
	}
	deadline := time.Now().Add(d)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return s.wait(0)
		}
		// Round up so that a sub-millisecond remainder still sleeps.
		ms := (remaining + time.Millisecond - 1) / time.Millisecond
		if ms >= infinite {
			ms = infinite - 1
		}
		if s.wait(uint32(ms)) {
			return true
		}
	}
}

// Post returns a unit. It reports whether the count was zero before, which
// is when a waiter may have been asleep.
func (s *Sem) Post() bool {
	var prev int32
	r, _, err := procReleaseSemaphore.Call(uintptr(s.handle), 1, uintptr(unsafe.Pointer(&prev)))
	if r == 0 {
		if opt.Debug_ {
			panic(fmt.Sprintf("ossync: ReleaseSemaphore: %v", err))
		}
		return false
	}
	return prev == 0
}

// Close releases the semaphore handle.
func (s *Sem) Close() error {
	return windows.CloseHandle(s.handle)
}
