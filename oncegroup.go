package ossync

import (
	"github.com/llxisdsh/pb"
)

// OnceGroup is a set of Once values keyed by K: each key's initializer
// runs at most once, and a failed key stays poisoned until it is
// forgotten.
//
// It is zero-value usable.
type OnceGroup[K comparable] struct {
	m pb.MapOf[K, *Once]
}

// Do runs f as the initializer of key, following the rules of Once.Do.
func (g *OnceGroup[K]) Do(key K, f func() error) error {
	return g.once(key).Do(f)
}

// CallOnce runs f as the initializer of key, following the rules of
// Once.CallOnce.
func (g *OnceGroup[K]) CallOnce(key K, f func()) {
	g.once(key).CallOnce(f)
}

// DoChan is like Do but runs in a new goroutine and delivers the result
// on the returned channel. A panic in f is not recovered.
//
// The returned channel will not be closed.
func (g *OnceGroup[K]) DoChan(key K, f func() error) <-chan error {
	ch := make(chan error, 1)
	o := g.once(key)
	if o.IsCompleted() {
		ch <- nil
		return ch
	}
	go func() {
		ch <- o.Do(f)
	}()
	return ch
}

// IsCompleted reports whether the initializer of key has run successfully.
func (g *OnceGroup[K]) IsCompleted(key K) bool {
	o, ok := g.m.Load(key)
	return ok && o.IsCompleted()
}

// Forget tells the group to stop tracking a key. Future calls
// to Do for this key start from a fresh Once, which is the only way to
// retry a poisoned key. Calls already holding the old Once are unaffected.
func (g *OnceGroup[K]) Forget(key K) {
	g.m.Delete(key)
}

func (g *OnceGroup[K]) once(key K) *Once {
	o, _ := g.m.ProcessEntry(
		key,
		func(l *pb.EntryOf[K, *Once]) (*pb.EntryOf[K, *Once], *Once, bool) {
			if l != nil {
				return l, l.Value, true
			}
			o := &Once{}
			return &pb.EntryOf[K, *Once]{Value: o}, o, false
		},
	)
	return o
}
