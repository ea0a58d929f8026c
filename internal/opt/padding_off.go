//go:build (amd64 || 386 || arm || mips || mipsle || wasm) && !ossync_disable_padding && !ossync_enable_padding

package opt

// CounterPad_ pads a hot 32-bit counter.
// Padding is disabled by default for:
// - amd64
// - 32-bit architectures (386, arm, mips, mipsle, wasm)
type CounterPad_ struct{}

const Padded_ = false
