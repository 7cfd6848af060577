package protocol

// Control sequences for enabling and disabling mouse reporting.
// Reference: xterm ctlseqs, "Mouse Tracking" (DECSET private modes).
const esc = "\x1b"

const (
	// EnableTracking turns on basic press/release reporting (mode 1000).
	EnableTracking = esc + "[?1000h"
	// EnableButton turns on motion reporting while a button is held (mode 1002).
	EnableButton = esc + "[?1002h"
	// EnableAnyMotion turns on reporting of all motion (mode 1003).
	EnableAnyMotion = esc + "[?1003h"
	// EnableFocus turns on focus in/out reporting (mode 1004).
	EnableFocus = esc + "[?1004h"
	// EnableUTF8 switches reports to the UTF-8 coordinate encoding (mode 1005).
	EnableUTF8 = esc + "[?1005h"
	// EnableSGR switches reports to the SGR encoding (mode 1006).
	EnableSGR = esc + "[?1006h"
	// EnableURXVT switches reports to the urxvt encoding (mode 1015).
	EnableURXVT = esc + "[?1015h"

	// DisableTracking turns off basic press/release reporting.
	DisableTracking = esc + "[?1000l"
	// DisableButton turns off button-motion reporting.
	DisableButton = esc + "[?1002l"
	// DisableAnyMotion turns off all-motion reporting.
	DisableAnyMotion = esc + "[?1003l"
	// DisableFocus turns off focus reporting.
	DisableFocus = esc + "[?1004l"
	// DisableUTF8 turns off the UTF-8 encoding.
	DisableUTF8 = esc + "[?1005l"
	// DisableSGR turns off the SGR encoding.
	DisableSGR = esc + "[?1006l"
	// DisableURXVT turns off the urxvt encoding.
	DisableURXVT = esc + "[?1015l"
)

// DisableAll lists the disable sequences for every mode this package can
// negotiate. The terminal's actual state is not observable, so teardown
// always writes the full set regardless of which mode was enabled.
var DisableAll = []string{
	DisableTracking,
	DisableButton,
	DisableAnyMotion,
	DisableUTF8,
	DisableSGR,
	DisableURXVT,
	DisableFocus,
}
