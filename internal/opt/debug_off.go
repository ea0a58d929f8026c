//go:build !ossync_debug

package opt

// Debug_ enables assertions on unexpected kernel results.
// Without it, an unexpected result is treated as a spurious wake and retried.
const Debug_ = false
