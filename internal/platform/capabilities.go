package platform

// SupportLevel classifies how much mouse support a terminal environment
// can be expected to deliver.
type SupportLevel uint8

const (
	// SupportNone means mouse reporting must not be attempted. No enable
	// or disable sequences are ever written at this level.
	SupportNone SupportLevel = iota
	// SupportMinimal means only the lowest common denominator works.
	SupportMinimal
	// SupportPartial means modern protocols work but with caveats
	// (containers, WSL, generic xterm-family terminals).
	SupportPartial
	// SupportFull means the terminal is known to handle SGR reporting,
	// motion tracking, and focus events.
	SupportFull
)

// String returns a string representation of the support level.
func (l SupportLevel) String() string {
	switch l {
	case SupportMinimal:
		return "minimal"
	case SupportPartial:
		return "partial"
	case SupportFull:
		return "full"
	default:
		return "none"
	}
}

// Protocol identifies a mouse reporting wire format.
type Protocol uint8

const (
	// ProtocolSGR is the SGR (DECSET 1006) encoding.
	ProtocolSGR Protocol = iota
	// ProtocolUTF8 is the UTF-8 (DECSET 1005) encoding, bounded to
	// roughly 223x223 cells.
	ProtocolUTF8
	// ProtocolURXVT is the urxvt (DECSET 1015) encoding, the universal
	// fallback.
	ProtocolURXVT
)

// String returns a string representation of the protocol.
func (p Protocol) String() string {
	switch p {
	case ProtocolSGR:
		return "sgr"
	case ProtocolUTF8:
		return "utf8"
	case ProtocolURXVT:
		return "urxvt"
	default:
		return "unknown"
	}
}

// Coordinate limits per protocol. SGR and urxvt are numeric and bounded
// only by the field width terminals accept; UTF-8 is bounded by the
// single-character encoding.
const (
	maxCoordNumeric = 65535
	maxCoordUTF8    = 223
)

// Capabilities describes the detected mouse support of the current
// terminal environment. Computed once per Detector and cached for the
// process lifetime.
type Capabilities struct {
	// Platform is the operating system family (runtime.GOOS).
	Platform string

	// Terminal is the best-effort terminal identification.
	Terminal string

	// IsWSL is true when running under Windows Subsystem for Linux.
	IsWSL bool

	// IsContainer is true when running inside a container.
	IsContainer bool

	// Protocols lists the wire formats worth negotiating, in preference
	// order.
	Protocols []Protocol

	// MaxCoordinate is the largest coordinate the preferred protocol can
	// report.
	MaxCoordinate int

	// Level is the overall support classification.
	Level SupportLevel
}

// Supports returns true if the protocol is in the negotiable set.
func (c Capabilities) Supports(p Protocol) bool {
	for _, sp := range c.Protocols {
		if sp == p {
			return true
		}
	}
	return false
}

// Preferred returns the first negotiable protocol and true, or false when
// none is available.
func (c Capabilities) Preferred() (Protocol, bool) {
	if len(c.Protocols) == 0 {
		return 0, false
	}
	return c.Protocols[0], true
}
