//go:build !race

package opt

// Race_ reports whether the race detector is compiled in.
// Kernel-backed semaphores are only used when it is not.
const Race_ = false
