package pointer

import "time"

// EventType identifies the kind of pointer event.
//
// The set is closed: every dispatch path switches over all eight kinds so
// that adding a new kind forces every switch to be revisited.
type EventType uint8

const (
	// EventClick is a button press.
	EventClick EventType = iota
	// EventDragStart marks the first motion of a press-and-move gesture.
	EventDragStart
	// EventDrag is continued motion while a button is held.
	EventDrag
	// EventDragEnd is a button release.
	EventDragEnd
	// EventScroll is a wheel tick.
	EventScroll
	// EventMove is pointer motion with no button held.
	EventMove
	// EventHover marks the pointer entering a registered region.
	EventHover
	// EventLeave marks the pointer leaving a registered region.
	EventLeave

	numEventTypes
)

// NumEventTypes is the number of distinct event types. Useful for
// per-type bookkeeping arrays.
const NumEventTypes = int(numEventTypes)

// String returns a string representation of the event type.
func (t EventType) String() string {
	switch t {
	case EventClick:
		return "click"
	case EventDragStart:
		return "drag-start"
	case EventDrag:
		return "drag"
	case EventDragEnd:
		return "drag-end"
	case EventScroll:
		return "scroll"
	case EventMove:
		return "move"
	case EventHover:
		return "hover"
	case EventLeave:
		return "leave"
	default:
		return "unknown"
	}
}

// Valid returns true for the eight defined event types.
func (t EventType) Valid() bool {
	return t < numEventTypes
}

// Button represents a mouse button.
type Button uint8

const (
	// ButtonNone indicates no button.
	ButtonNone Button = iota
	// ButtonLeft is the primary (left) mouse button.
	ButtonLeft
	// ButtonMiddle is the middle mouse button (scroll wheel click).
	ButtonMiddle
	// ButtonRight is the secondary (right) mouse button.
	ButtonRight
	// ButtonScrollUp indicates scroll wheel up.
	ButtonScrollUp
	// ButtonScrollDown indicates scroll wheel down.
	ButtonScrollDown
)

// String returns a string representation of the button.
func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonMiddle:
		return "middle"
	case ButtonRight:
		return "right"
	case ButtonScrollUp:
		return "scroll-up"
	case ButtonScrollDown:
		return "scroll-down"
	default:
		return "none"
	}
}

// IsScroll returns true if this is a scroll button.
func (b Button) IsScroll() bool {
	return b == ButtonScrollUp || b == ButtonScrollDown
}

// Position represents a zero-based screen coordinate.
type Position struct {
	X int
	Y int
}

// Equal returns true if two positions are equal.
func (p Position) Equal(other Position) bool {
	return p.X == other.X && p.Y == other.Y
}

// Distance returns the Manhattan distance (|dx| + |dy|) between two
// positions. Manhattan distance is cheap and close enough for proximity
// checks on a character grid.
func (p Position) Distance(other Position) int {
	dx := p.X - other.X
	if dx < 0 {
		dx = -dx
	}
	dy := p.Y - other.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// Event represents a single decoded pointer event.
type Event struct {
	// Type is the kind of event.
	Type EventType

	// Position is the zero-based application coordinate.
	Position Position

	// Button is the mouse button involved, if any.
	Button Button

	// Modifiers are the keyboard modifiers held during the event.
	Modifiers Modifier

	// Timestamp is the monotonic capture time. It is assigned once, at
	// decode, and never reordered by later pipeline stages.
	Timestamp time.Time

	// Raw is the wire sequence the event was decoded from, when known.
	Raw string

	// Target is the id of the region the event was attributed to, when
	// hit-testing has run. Empty otherwise.
	Target string

	// ClickCount is 1, 2, or 3 for single/double/triple clicks. Zero on
	// non-click events.
	ClickCount int
}

// Reset clears an event for reuse. Pooled events are reset before being
// handed back out.
func (e *Event) Reset() {
	*e = Event{}
}
