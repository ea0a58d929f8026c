package ossync

import (
	"bytes"
	"errors"
	"fmt"
	"runtime/debug"
)

var (
	// ErrSemaphoreCreate is returned when the operating system refuses to
	// allocate a semaphore object.
	ErrSemaphoreCreate = errors.New("ossync: cannot create semaphore")

	// ErrSemaphoreCount is returned when the initial count of a semaphore
	// exceeds what the backend can represent.
	ErrSemaphoreCount = errors.New("ossync: semaphore count out of range")

	// ErrPoisoned is reported by every call on a Once whose initializer failed.
	ErrPoisoned = errors.New("ossync: once poisoned")
)

// panicError is an arbitrary value recovered from a panic
// with the stack trace during the execution of given function.
type panicError struct {
	value any
	stack []byte
}

// Error implements error interface.
func (p *panicError) Error() string {
	return fmt.Sprintf("%v\n\n%s", p.value, p.stack)
}

// Unwrap returns the underlying error value, if any.
func (p *panicError) Unwrap() error {
	if err, ok := p.value.(error); ok {
		return err
	}
	return nil
}

func newPanicError(v any) *panicError {
	stack := debug.Stack()
	// Trim first line "goroutine N [status]:" which can be misleading.
	if line := bytes.IndexByte(stack, '\n'); line >= 0 {
		stack = stack[line+1:]
	}
	return &panicError{value: v, stack: stack}
}

var errGoexit = errors.New("runtime.Goexit was called")

// poisoned wraps the failure of a Once initializer.
func poisoned(cause error) error {
	return fmt.Errorf("%w: %w", ErrPoisoned, cause)
}
