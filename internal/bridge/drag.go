package bridge

import "github.com/dshills/termclick/internal/pointer"

// dragTracker tracks the lifecycle of a button-held gesture: armed on
// press, promoted to dragging once motion passes the threshold, cleared
// on release.
type dragTracker struct {
	// active indicates a button is held.
	active bool

	// dragging indicates motion has passed the threshold.
	dragging bool

	// button is the held button.
	button pointer.Button

	// startPos is where the button went down.
	startPos pointer.Position

	// currentPos is the latest reported position.
	currentPos pointer.Position
}

func newDragTracker() *dragTracker {
	return &dragTracker{}
}

// start arms the tracker on a button press.
func (t *dragTracker) start(pos pointer.Position, button pointer.Button) {
	t.active = true
	t.dragging = false
	t.button = button
	t.startPos = pos
	t.currentPos = pos
}

// update records the latest position.
func (t *dragTracker) update(pos pointer.Position) {
	if t.active {
		t.currentPos = pos
	}
}

// end clears all drag state.
func (t *dragTracker) end() {
	t.active = false
	t.dragging = false
	t.button = pointer.ButtonNone
	t.startPos = pointer.Position{}
	t.currentPos = pointer.Position{}
}
