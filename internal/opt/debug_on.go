//go:build ossync_debug

package opt

// Debug_ enables assertions on unexpected kernel results.
// Use: go build -tags=ossync_debug
const Debug_ = true
