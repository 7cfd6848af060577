package protocol

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dshills/termclick/internal/pointer"
)

// Button code bit fields shared by all wire formats.
const (
	buttonMask  = 0x03 // bits 0-1: base button (3 = none)
	shiftBit    = 0x04 // bit 2
	altBit      = 0x08 // bit 3
	ctrlBit     = 0x10 // bit 4
	motionBit   = 0x20 // bit 5: motion while a button is held
	wheelBit    = 0x40 // bit 6: wheel event, bit 0 selects direction
	charOffset  = 32   // UTF-8/legacy encoding value offset
	utf8Payload = 3    // bytes following ESC [ M
)

// Scanning patterns for the three regex-discoverable grammars. The UTF-8
// payload may contain any byte, including newline, hence (?s).
var (
	sgrRe   = regexp.MustCompile(`\x1b\[<(\d+);(\d+);(\d+)([Mm])`)
	utf8Re  = regexp.MustCompile(`(?s)\x1b\[M(.)(.)(.)`)
	urxvtRe = regexp.MustCompile(`\x1b\[(\d+);(\d+);(\d+)M`)
)

// Anchored variants used by Parse, which expects a single sequence.
var (
	sgrExactRe   = regexp.MustCompile(`^\x1b\[<(\d+);(\d+);(\d+)([Mm])$`)
	utf8ExactRe  = regexp.MustCompile(`(?s)^\x1b\[M(.)(.)(.)$`)
	urxvtExactRe = regexp.MustCompile(`^\x1b\[(\d+);(\d+);(\d+)M$`)
)

// Parser decodes terminal mouse reports. It is stateless apart from the
// coordinate clamp and safe for concurrent use.
type Parser struct {
	// MaxCoordinate is the upper clamp applied to decoded coordinates.
	// Zero means no upper clamp; decoded values are never negative.
	MaxCoordinate int
}

// NewParser returns a parser with no upper coordinate clamp.
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes a single complete mouse sequence. It returns (nil, nil)
// for input that matches no grammar, and a *DecodeError for input that
// matches a grammar but carries an unparseable field. Grammars are tried
// in fixed precedence order: SGR, UTF-8, urxvt (the legacy format is
// byte-identical to UTF-8 and handled by the same path).
func (p *Parser) Parse(sequence string) (*pointer.Event, error) {
	if m := sgrExactRe.FindStringSubmatch(sequence); m != nil {
		return p.decodeSGR(m[0], m[1], m[2], m[3], m[4][0])
	}
	if m := utf8ExactRe.FindStringSubmatch(sequence); m != nil {
		return p.decodeUTF8(m[0], firstRune(m[1]), firstRune(m[2]), firstRune(m[3]))
	}
	if m := urxvtExactRe.FindStringSubmatch(sequence); m != nil {
		return p.decodeURXVT(m[0], m[1], m[2], m[3])
	}
	return nil, nil
}

// ExtractAll scans a buffer for mouse sequences in stream order, decodes
// each, and removes exactly the matched spans. It returns the decoded
// events, the remaining buffer (still interpretable as keyboard input),
// and any decode failures encountered. A span that fails to decode is
// still removed so a single bad report cannot wedge the scanner.
func (p *Parser) ExtractAll(buffer string) ([]pointer.Event, string, []error) {
	var events []pointer.Event
	var errs []error

	for {
		loc, decode := p.earliestMatch(buffer)
		if loc == nil {
			break
		}
		ev, err := decode()
		if err != nil {
			errs = append(errs, err)
		} else if ev != nil {
			events = append(events, *ev)
		}
		buffer = buffer[:loc[0]] + buffer[loc[1]:]
	}

	return events, buffer, errs
}

// LooksLikeMouseSequence reports whether the buffer contains at least one
// complete mouse report in any supported grammar.
func (p *Parser) LooksLikeMouseSequence(buffer string) bool {
	return sgrRe.MatchString(buffer) ||
		utf8Re.MatchString(buffer) ||
		urxvtRe.MatchString(buffer)
}

// earliestMatch finds the earliest grammar match in the buffer and returns
// its span together with a closure that decodes it. SGR wins ties at the
// same offset since its '<' marker makes it unambiguous.
func (p *Parser) earliestMatch(buffer string) ([]int, func() (*pointer.Event, error)) {
	var bestLoc []int
	var bestDecode func() (*pointer.Event, error)

	consider := func(loc []int, decode func() (*pointer.Event, error)) {
		if loc == nil {
			return
		}
		if bestLoc == nil || loc[0] < bestLoc[0] {
			bestLoc = loc
			bestDecode = decode
		}
	}

	if loc := sgrRe.FindStringSubmatchIndex(buffer); loc != nil {
		raw := buffer[loc[0]:loc[1]]
		m := sgrRe.FindStringSubmatch(raw)
		consider(loc[:2], func() (*pointer.Event, error) {
			return p.decodeSGR(raw, m[1], m[2], m[3], m[4][0])
		})
	}
	if loc := utf8Re.FindStringSubmatchIndex(buffer); loc != nil {
		raw := buffer[loc[0]:loc[1]]
		m := utf8Re.FindStringSubmatch(raw)
		consider(loc[:2], func() (*pointer.Event, error) {
			return p.decodeUTF8(raw, firstRune(m[1]), firstRune(m[2]), firstRune(m[3]))
		})
	}
	if loc := urxvtRe.FindStringSubmatchIndex(buffer); loc != nil {
		raw := buffer[loc[0]:loc[1]]
		m := urxvtRe.FindStringSubmatch(raw)
		consider(loc[:2], func() (*pointer.Event, error) {
			return p.decodeURXVT(raw, m[1], m[2], m[3])
		})
	}

	return bestLoc, bestDecode
}

// decodeSGR decodes an SGR report. The final character distinguishes
// press ('M') from release ('m').
func (p *Parser) decodeSGR(raw, btnField, xField, yField string, final byte) (*pointer.Event, error) {
	code, err := strconv.Atoi(btnField)
	if err != nil {
		return nil, &DecodeError{Format: "sgr", Field: "button", Raw: raw, Err: err}
	}
	x, err := strconv.Atoi(xField)
	if err != nil {
		return nil, &DecodeError{Format: "sgr", Field: "x", Raw: raw, Err: err}
	}
	y, err := strconv.Atoi(yField)
	if err != nil {
		return nil, &DecodeError{Format: "sgr", Field: "y", Raw: raw, Err: err}
	}

	ev := p.newEvent(raw, code, x, y)
	if ev.Type == pointer.EventClick && final == 'm' {
		ev.Type = pointer.EventDragEnd
	}
	return ev, nil
}

// decodeUTF8 decodes a UTF-8/legacy report: three payload characters, each
// offset by +32. Values below the offset are malformed, not "no match".
func (p *Parser) decodeUTF8(raw string, btnCh, xCh, yCh rune) (*pointer.Event, error) {
	if btnCh < charOffset {
		return nil, &DecodeError{Format: "utf8", Field: "button", Raw: raw}
	}
	if xCh < charOffset {
		return nil, &DecodeError{Format: "utf8", Field: "x", Raw: raw}
	}
	if yCh < charOffset {
		return nil, &DecodeError{Format: "utf8", Field: "y", Raw: raw}
	}

	code := int(btnCh) - charOffset
	x := int(xCh) - charOffset
	y := int(yCh) - charOffset
	return p.newEvent(raw, code, x, y), nil
}

// decodeURXVT decodes a urxvt report. Unlike SGR there is no release
// marker, so presses decode as clicks.
func (p *Parser) decodeURXVT(raw, btnField, xField, yField string) (*pointer.Event, error) {
	code, err := strconv.Atoi(btnField)
	if err != nil {
		return nil, &DecodeError{Format: "urxvt", Field: "button", Raw: raw, Err: err}
	}
	x, err := strconv.Atoi(xField)
	if err != nil {
		return nil, &DecodeError{Format: "urxvt", Field: "x", Raw: raw, Err: err}
	}
	y, err := strconv.Atoi(yField)
	if err != nil {
		return nil, &DecodeError{Format: "urxvt", Field: "y", Raw: raw, Err: err}
	}

	return p.newEvent(raw, code, x, y), nil
}

// newEvent builds an event from a button code and one-based coordinates.
// The event type here covers the format-independent cases; SGR release
// handling is layered on by the caller.
func (p *Parser) newEvent(raw string, code, x, y int) *pointer.Event {
	ev := &pointer.Event{
		Position:  p.mapCoordinates(x, y),
		Modifiers: decodeModifiers(code),
		Timestamp: time.Now(),
		Raw:       raw,
	}

	switch {
	case code&wheelBit != 0:
		ev.Type = pointer.EventScroll
		if code&1 != 0 {
			ev.Button = pointer.ButtonScrollDown
		} else {
			ev.Button = pointer.ButtonScrollUp
		}
	case code&buttonMask == 3 || code&motionBit != 0:
		ev.Type = pointer.EventMove
		ev.Button = decodeButton(code)
	default:
		ev.Type = pointer.EventClick
		ev.Button = decodeButton(code)
	}

	return ev
}

// mapCoordinates converts one-based terminal coordinates to zero-based
// application coordinates: (x, y) -> (max(0, x-1), max(0, y-1)), clamped
// to MaxCoordinate when one is configured.
func (p *Parser) mapCoordinates(x, y int) pointer.Position {
	pos := pointer.Position{X: x - 1, Y: y - 1}
	if pos.X < 0 {
		pos.X = 0
	}
	if pos.Y < 0 {
		pos.Y = 0
	}
	if p.MaxCoordinate > 0 {
		if pos.X > p.MaxCoordinate {
			pos.X = p.MaxCoordinate
		}
		if pos.Y > p.MaxCoordinate {
			pos.Y = p.MaxCoordinate
		}
	}
	return pos
}

func decodeButton(code int) pointer.Button {
	switch code & buttonMask {
	case 0:
		return pointer.ButtonLeft
	case 1:
		return pointer.ButtonMiddle
	case 2:
		return pointer.ButtonRight
	default:
		return pointer.ButtonNone
	}
}

func decodeModifiers(code int) pointer.Modifier {
	mods := pointer.ModNone
	if code&shiftBit != 0 {
		mods |= pointer.ModShift
	}
	if code&altBit != 0 {
		mods |= pointer.ModAlt
	}
	if code&ctrlBit != 0 {
		mods |= pointer.ModCtrl
	}
	return mods
}

// firstRune returns the first rune of a non-empty string.
func firstRune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

// IncompleteTail returns the index at which a trailing, incomplete mouse
// sequence begins, or -1 if the buffer does not end mid-sequence. Callers
// use it to carry a partial escape sequence over to the next input chunk
// instead of silently dropping it.
func IncompleteTail(buffer string) int {
	i := strings.LastIndexByte(buffer, 0x1b)
	if i < 0 {
		return -1
	}
	if isPartialSequence(buffer[i:]) {
		return i
	}
	return -1
}

// isPartialSequence reports whether s (which begins with ESC) is a proper
// prefix of some mouse report.
func isPartialSequence(s string) bool {
	if s == esc {
		return true
	}
	if len(s) < 2 || s[1] != '[' {
		return false
	}
	rest := s[2:]
	if rest == "" {
		return true
	}
	switch {
	case rest[0] == 'M':
		return len(rest) < 1+utf8Payload
	case rest[0] == '<':
		return isPartialParams(rest[1:])
	case rest[0] >= '0' && rest[0] <= '9':
		return isPartialParams(rest)
	}
	return false
}

// isPartialParams reports whether s is a prefix of "b;x;yM" (or "...m")
// that has not yet reached its final character.
func isPartialParams(s string) bool {
	semis := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c == ';':
			semis++
			if semis > 2 {
				return false
			}
		default:
			// Any final character, valid or not, means the sequence is
			// no longer a prefix.
			return false
		}
	}
	return true
}
