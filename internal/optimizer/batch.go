package optimizer

import (
	"sync"
	"time"

	"github.com/dshills/termclick/internal/pointer"
)

// frameBatcher accumulates accepted events and flushes them on frame
// boundaries. If a full frame interval has already elapsed since the
// last flush, an added event flushes immediately; otherwise a timer is
// armed for the next boundary.
type frameBatcher struct {
	mu        sync.Mutex
	buf       []*pointer.Event
	lastFlush time.Time
	timer     *time.Timer
	interval  time.Duration
	flushFn   func([]*pointer.Event)
	closed    bool
}

func newFrameBatcher(interval time.Duration, flushFn func([]*pointer.Event)) *frameBatcher {
	return &frameBatcher{
		interval: interval,
		flushFn:  flushFn,
	}
}

// Add schedules an event for delivery. The caller must treat this as
// "scheduled", not "delivered".
func (b *frameBatcher) Add(ev *pointer.Event) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.buf = append(b.buf, ev)

	elapsed := time.Since(b.lastFlush)
	if elapsed >= b.interval {
		b.flushLocked()
		b.mu.Unlock()
		return
	}

	if b.timer == nil {
		b.timer = time.AfterFunc(b.interval-elapsed, b.timerFlush)
	}
	b.mu.Unlock()
}

// Flush delivers all pending events immediately.
func (b *frameBatcher) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.flushLocked()
}

// timerFlush runs on the frame-boundary timer.
func (b *frameBatcher) timerFlush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.flushLocked()
}

// flushLocked delivers the pending buffer. Caller holds b.mu; the flush
// callback runs with the lock held, so it must not call back into the
// batcher.
func (b *frameBatcher) flushLocked() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.lastFlush = time.Now()

	if len(b.buf) == 0 {
		return
	}
	pending := b.buf
	b.buf = nil
	b.flushFn(pending)
}

// Drain cancels any pending timer and returns queued events undelivered,
// leaving the batcher usable. Used when mouse support is switched off
// with events still in flight.
func (b *frameBatcher) Drain() []*pointer.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	dropped := b.buf
	b.buf = nil
	return dropped
}

// Close cancels any pending timer and drops queued events. No partial
// flush is guaranteed after Close.
func (b *frameBatcher) Close() []*pointer.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	dropped := b.buf
	b.buf = nil
	return dropped
}

// Pending returns the number of queued events.
func (b *frameBatcher) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buf)
}
