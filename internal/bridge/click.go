package bridge

import (
	"time"

	"github.com/dshills/termclick/internal/pointer"
)

// clickTracker tracks click patterns for double/triple click detection.
type clickTracker struct {
	maxTime     time.Duration
	maxDistance int

	lastPos   pointer.Position
	lastTime  time.Time
	lastCount int
}

func newClickTracker(maxTime time.Duration, maxDistance int) *clickTracker {
	return &clickTracker{
		maxTime:     maxTime,
		maxDistance: maxDistance,
	}
}

// recordClick records a click and returns the click count (1, 2, or 3).
// The count wraps back to 1 after 3: a quad-click starts a new sequence.
func (t *clickTracker) recordClick(pos pointer.Position, timestamp time.Time) int {
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	if t.isPartOfSequence(pos, timestamp) {
		t.lastCount++
		if t.lastCount > 3 {
			t.lastCount = 1
		}
	} else {
		t.lastCount = 1
	}

	t.lastPos = pos
	t.lastTime = timestamp
	return t.lastCount
}

// isPartOfSequence checks whether a click continues the current click
// sequence. A negative elapsed time (clock skew) starts a new sequence.
func (t *clickTracker) isPartOfSequence(pos pointer.Position, timestamp time.Time) bool {
	if t.lastCount == 0 || t.lastTime.IsZero() {
		return false
	}
	elapsed := timestamp.Sub(t.lastTime)
	if elapsed < 0 || elapsed > t.maxTime {
		return false
	}
	return pos.Distance(t.lastPos) <= t.maxDistance
}

// reset clears the click tracking state.
func (t *clickTracker) reset() {
	t.lastCount = 0
	t.lastTime = time.Time{}
	t.lastPos = pointer.Position{}
}
