package opt

import (
	"testing"
	"unsafe"
)

func TestCounterPad(t *testing.T) {
	type padded struct {
		_ CounterPad_
		c uint32
	}
	size := unsafe.Sizeof(padded{})
	if Padded_ {
		if size != CacheLineSize_ {
			t.Fatalf("padded size = %d, want %d", size, CacheLineSize_)
		}
		return
	}
	if size != 4 {
		t.Fatalf("unpadded size = %d, want 4", size)
	}
}

func TestCacheLineSize(t *testing.T) {
	if CacheLineSize_ < 4 || CacheLineSize_&(CacheLineSize_-1) != 0 {
		t.Fatalf("CacheLineSize_ = %d, want a power of two", CacheLineSize_)
	}
}
