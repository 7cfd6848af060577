package pointer

import "strings"

// Modifier represents keyboard modifier keys held during a pointer event.
// Modifiers are a bitfield and can be combined with bitwise OR.
type Modifier uint8

const (
	// ModNone indicates no modifiers.
	ModNone Modifier = 0

	// ModShift indicates the Shift key.
	ModShift Modifier = 1 << iota

	// ModCtrl indicates the Control key.
	ModCtrl

	// ModAlt indicates the Alt key.
	ModAlt

	// ModMeta indicates the Meta/Command key. None of the decoded wire
	// formats can report Meta, so decoded events never carry it; the bit
	// exists for callers that synthesize events.
	ModMeta
)

// HasShift returns true if Shift is set.
func (m Modifier) HasShift() bool { return m&ModShift != 0 }

// HasCtrl returns true if Ctrl is set.
func (m Modifier) HasCtrl() bool { return m&ModCtrl != 0 }

// HasAlt returns true if Alt is set.
func (m Modifier) HasAlt() bool { return m&ModAlt != 0 }

// HasMeta returns true if Meta is set.
func (m Modifier) HasMeta() bool { return m&ModMeta != 0 }

// String returns a canonical representation like "Ctrl+Shift".
func (m Modifier) String() string {
	if m == ModNone {
		return "None"
	}
	var parts []string
	if m.HasCtrl() {
		parts = append(parts, "Ctrl")
	}
	if m.HasAlt() {
		parts = append(parts, "Alt")
	}
	if m.HasShift() {
		parts = append(parts, "Shift")
	}
	if m.HasMeta() {
		parts = append(parts, "Meta")
	}
	return strings.Join(parts, "+")
}
