package service

import "sync/atomic"

// busy counts operations in flight. It is advisory only and never blocks.
type busy struct {
	inflight atomic.Int32
}

func (b *busy) enter() func() {
	b.inflight.Add(1)
	return func() { b.inflight.Add(-1) }
}

func (b *busy) active() bool {
	return b.inflight.Load() > 0
}
