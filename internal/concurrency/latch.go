// File: internal/concurrency/latch.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package concurrency

import "sync/atomic"

// Waker unblocks a pending or upcoming readiness wait.
type Waker interface {
	Wake() error
}

// Latch is a counting, lock-free signal latch. Raise may be called from any
// goroutine; Drain and DrainCount belong to the main loop only.
//
// Raises that happen between two drains coalesce into one observed event.
// The total of all DrainCount results always equals Raised once the latch is
// quiescent and drained.
type Latch struct {
	pending atomic.Uint64
	raised  atomic.Uint64
	drained atomic.Uint64
	waker   Waker
}

// NewLatch returns a latch that pokes w after every raise. w may be nil.
func NewLatch(w Waker) *Latch {
	return &Latch{waker: w}
}

// Raise sets the latch and wakes the bound waiter.
// The counter is published before the wake so a wait that returns because of
// this raise always finds it pending.
func (l *Latch) Raise() {
	l.raised.Add(1)
	l.pending.Add(1)
	if l.waker != nil {
		_ = l.waker.Wake()
	}
}

// DrainCount clears the latch and returns how many raises it absorbed.
func (l *Latch) DrainCount() uint64 {
	n := l.pending.Swap(0)
	l.drained.Add(n)
	return n
}

// Drain clears the latch and reports whether it was set.
func (l *Latch) Drain() bool {
	return l.DrainCount() > 0
}

// Raised returns the total number of raises.
func (l *Latch) Raised() uint64 { return l.raised.Load() }

// Drained returns the total number of raises consumed by drains.
func (l *Latch) Drained() uint64 { return l.drained.Load() }

// Pending returns the raises not yet drained.
func (l *Latch) Pending() uint64 { return l.pending.Load() }
