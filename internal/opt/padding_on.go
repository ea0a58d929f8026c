//go:build !(amd64 || 386 || arm || mips || mipsle || wasm) && !ossync_disable_padding && !ossync_enable_padding

package opt

// CounterPad_ pads a hot 32-bit counter out to its own cache line.
// Padding is automatically enabled for architectures that are NOT:
// - amd64 (x86_64): Hardware optimizations often make padding less critical
// - 32-bit architectures (386, arm, mips, mipsle, wasm): Smaller cache lines/memory constraints
//
// Enabled for: arm64, s390x, ppc64, ppc64le, riscv64, loong64, mips64, mips64le, etc.
type CounterPad_ struct {
	_ [CacheLineSize_ - 4]byte
}

const Padded_ = true
