package benchmark

import (
	"sync"
	"testing"

	"github.com/llxisdsh/ossync"
)

// Completed fast path.
func BenchmarkOnceDone(b *testing.B) {
	b.ReportAllocs()
	var once ossync.Once
	once.CallOnce(func() {})
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			once.CallOnce(func() {})
		}
	})
}

// Completed fast path (sync).
func BenchmarkOnceDone_Sync(b *testing.B) {
	b.ReportAllocs()
	var once sync.Once
	once.Do(func() {})
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			once.Do(func() {})
		}
	})
}

// Same-key contention benchmark.
func BenchmarkOnceGroupSameKey(b *testing.B) {
	b.ReportAllocs()
	var g ossync.OnceGroup[string]
	key := "same"

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = g.Do(key, func() error { return nil })
		}
	})
}

// Many keys benchmark.
func BenchmarkOnceGroupManyKeys(b *testing.B) {
	b.ReportAllocs()
	var g ossync.OnceGroup[int]

	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			_ = g.Do(i&1023, func() error { return nil })
			i++
		}
	})
}
