package ossync

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"
)

func newTestSemaphore(t *testing.T, init uint32) *Sem {
	t.Helper()
	s, err := NewSemaphore(init)
	if err != nil {
		t.Fatalf("NewSemaphore(%d): %v", init, err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return s
}

func TestSemaphore_TryWait(t *testing.T) {
	s := newTestSemaphore(t, 0)

	if s.TryWait() {
		t.Fatal("TryWait succeeded on empty semaphore")
	}
	s.Post()
	if !s.TryWait() {
		t.Fatal("TryWait failed after Post")
	}
	if s.TryWait() {
		t.Fatal("TryWait succeeded twice after one Post")
	}
}

func TestSemaphore_InitialCount(t *testing.T) {
	s := newTestSemaphore(t, 3)
	for i := range 3 {
		if !s.TryWait() {
			t.Fatalf("TryWait %d failed", i)
		}
	}
	if s.TryWait() {
		t.Fatal("TryWait succeeded beyond initial count")
	}
}

func TestSemaphore_CountRange(t *testing.T) {
	_, err := NewSemaphore(math.MaxUint32)
	if !errors.Is(err, ErrSemaphoreCount) {
		t.Fatalf("err = %v, want ErrSemaphoreCount", err)
	}
}

func TestSemaphore_WaitBlocks(t *testing.T) {
	s := newTestSemaphore(t, 0)

	done := make(chan struct{})
	go func() {
		s.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Wait returned before Post")
	case <-time.After(50 * time.Millisecond):
		// OK
	}

	if !s.Post() {
		t.Error("Post did not observe the sleeping waiter")
	}
	select {
	case <-done:
		// OK
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after Post")
	}
}

func TestSemaphore_WaitTimeout(t *testing.T) {
	s := newTestSemaphore(t, 0)

	start := time.Now()
	if s.WaitTimeout(50 * time.Millisecond) {
		t.Fatal("WaitTimeout succeeded on empty semaphore")
	}
	if dur := time.Since(start); dur < 50*time.Millisecond {
		t.Errorf("WaitTimeout returned too early: %v", dur)
	}

	if s.WaitTimeout(0) {
		t.Fatal("WaitTimeout(0) succeeded on empty semaphore")
	}

	time.AfterFunc(20*time.Millisecond, func() {
		s.Post()
	})
	if !s.WaitTimeout(5 * time.Second) {
		t.Fatal("WaitTimeout missed a Post")
	}

	s.Post()
	if !s.WaitTimeout(0) {
		t.Fatal("WaitTimeout(0) missed an available unit")
	}
}

func TestSemaphore_Race(t *testing.T) {
	s := newTestSemaphore(t, 0)
	const N = 100
	var wg sync.WaitGroup
	wg.Add(N)

	for range N {
		go func() {
			defer wg.Done()
			s.Wait()
			// critical section
			s.Post()
		}()
	}

	s.Post() // Start the chain
	wg.Wait()

	// Should have 1 unit left
	if !s.TryWait() {
		t.Error("Race finished but semaphore empty")
	}
	if s.TryWait() {
		t.Error("Race finished with more than one unit")
	}
}

func TestSemaphore_Guard(t *testing.T) {
	s := newTestSemaphore(t, 1)

	g := s.Lock()
	if _, ok := s.TryLock(); ok {
		t.Fatal("TryLock succeeded while the only unit is held")
	}
	g.Release()

	g, ok := s.TryLock()
	if !ok {
		t.Fatal("TryLock failed after Release")
	}
	g.Release()

	// One wait and one post: the count is back where it started.
	if !s.TryWait() {
		t.Fatal("guard round trip lost a unit")
	}
	if s.TryWait() {
		t.Fatal("guard round trip created a unit")
	}
}

func TestSemaphore_GuardReleaseOnPanic(t *testing.T) {
	s := newTestSemaphore(t, 1)

	func() {
		defer func() { _ = recover() }()
		g := LockSemaphore(s)
		defer g.Release()
		panic("boom")
	}()

	if !s.TryWait() {
		t.Fatal("unit not returned after panic")
	}
}

func TestSemaphore_GuardDoubleRelease(t *testing.T) {
	s := newTestSemaphore(t, 1)
	g := LockSemaphore(s)
	g.Release()

	defer func() {
		if recover() == nil {
			t.Fatal("second Release did not panic")
		}
	}()
	g.Release()
}

func TestSemaphore_Default(t *testing.T) {
	s, err := DefaultSemaphore(1)
	if err != nil {
		t.Fatalf("DefaultSemaphore: %v", err)
	}
	defer s.Close()

	g, ok := TryLockSemaphore(s)
	if !ok {
		t.Fatal("TryLockSemaphore failed with one unit")
	}
	if _, ok := TryLockSemaphore(s); ok {
		t.Fatal("TryLockSemaphore succeeded with no units")
	}
	g.Release()
}
