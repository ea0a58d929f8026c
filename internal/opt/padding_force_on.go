//go:build ossync_enable_padding

package opt

// CounterPad_ pads a hot 32-bit counter out to its own cache line.
// Padding is force-enabled via the ossync_enable_padding build tag.
// Use: go build -tags=ossync_enable_padding
type CounterPad_ struct {
	_ [CacheLineSize_ - 4]byte
}

const Padded_ = true
