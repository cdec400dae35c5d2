// Package clock supplies logical time to the ledger.
//
// All period arithmetic (premium cycles, waiting periods) is expressed in
// logical ticks, a monotonically increasing counter, never wall-clock time.
// Services receive a Clock so tests can drive time explicitly.
package clock

import (
	"sync/atomic"
	"time"
)

// Tick is one unit of logical time.
type Tick uint64

// Clock reports the current logical time.
type Clock interface {
	Now() Tick
}

// Wall derives logical ticks from wall-clock time at a fixed interval,
// anchored at an epoch. Monotonicity follows from the wall clock; the anchor
// keeps tick values stable across restarts.
type Wall struct {
	epoch    time.Time
	interval time.Duration
}

// NewWall builds a wall-clock-backed logical clock. A zero interval defaults
// to ten minutes per tick.
func NewWall(epoch time.Time, interval time.Duration) *Wall {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Wall{epoch: epoch, interval: interval}
}

func (w *Wall) Now() Tick {
	elapsed := time.Since(w.epoch)
	if elapsed < 0 {
		return 0
	}
	return Tick(elapsed / w.interval)
}

// Manual is a hand-advanced clock for tests.
type Manual struct {
	now atomic.Uint64
}

// NewManual builds a manual clock starting at the given tick.
func NewManual(start Tick) *Manual {
	m := &Manual{}
	m.now.Store(uint64(start))
	return m
}

func (m *Manual) Now() Tick { return Tick(m.now.Load()) }

// Advance moves the clock forward by delta ticks.
func (m *Manual) Advance(delta Tick) { m.now.Add(uint64(delta)) }

// Set jumps the clock to an absolute tick. Panics if it would move backwards.
func (m *Manual) Set(t Tick) {
	for {
		cur := m.now.Load()
		if uint64(t) < cur {
			panic("clock: manual clock moved backwards")
		}
		if m.now.CompareAndSwap(cur, uint64(t)) {
			return
		}
	}
}
