//go:build race

package opt

// Race_ reports whether the race detector is compiled in.
// The race detector cannot observe happens-before edges carried by
// futex or WaitForSingleObject, so the portable semaphore is used instead.
const Race_ = true
