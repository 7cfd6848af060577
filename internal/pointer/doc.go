// Package pointer defines the canonical mouse event model shared by the
// protocol decoder, the event optimizer, the spatial registry, and the
// integration bridge.
//
// The pointer package deliberately contains no decoding or dispatch logic.
// It exists so that every stage of the input pipeline speaks one event
// vocabulary:
//
//	ev := pointer.Event{
//	    Type:      pointer.EventClick,
//	    Position:  pointer.Position{X: 4, Y: 9},
//	    Button:    pointer.ButtonLeft,
//	    Modifiers: pointer.ModNone,
//	    Timestamp: time.Now(),
//	}
//
// # Coordinates
//
// Positions are zero-based application coordinates. Terminal mouse
// protocols report one-based coordinates; the decoder converts before an
// Event is ever constructed, so nothing downstream needs to know about
// the wire offset.
//
// # Event Lifetime
//
// Events handed to dispatch callbacks may be backed by a pooled object.
// Callbacks receive them by value; callers holding an *Event from the
// optimizer must not retain it past the call that produced it.
package pointer
