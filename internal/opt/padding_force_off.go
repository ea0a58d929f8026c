//go:build ossync_disable_padding

package opt

// CounterPad_ pads a hot 32-bit counter.
// Padding is force-disabled via the ossync_disable_padding build tag.
// Use: go build -tags=ossync_disable_padding
type CounterPad_ struct{}

const Padded_ = false
