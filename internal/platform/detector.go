// Package platform detects how much mouse support the current terminal
// environment offers and negotiates mouse reporting with the terminal.
//
// Detection combines the OS family, WSL indicators (environment variables
// and the kernel release string), container markers, and terminal
// identification from the environment. The result is memoized per
// Detector; concurrent first calls share a single in-flight detection.
//
// A Detector is an explicitly constructed value owned by its caller, not
// package-level state, so tests and embedders can run several detectors
// with different environments side by side.
package platform

import (
	"io"
	"os"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/term"

	"github.com/dshills/termclick/internal/logging"
	"github.com/dshills/termclick/internal/protocol"
)

// Config configures a Detector. Zero fields fall back to the real
// process environment.
type Config struct {
	// Getenv looks up environment variables. Defaults to os.Getenv.
	Getenv func(string) string

	// ReadFile reads marker files such as /proc/version. Defaults to
	// os.ReadFile.
	ReadFile func(string) ([]byte, error)

	// KernelRelease returns the kernel release string. Defaults to a
	// uname(2) query on unix builds.
	KernelRelease func() string

	// IsTerminal reports whether output is attached to a terminal.
	// Defaults to a check on stdout.
	IsTerminal func() bool

	// Output is where enable/disable control sequences are written.
	// Defaults to os.Stdout.
	Output io.Writer

	// GOOS overrides the platform string. Defaults to runtime.GOOS.
	GOOS string

	// Logger receives debug output. Defaults to the no-op logger.
	Logger *logging.Logger
}

// Detector performs capability detection and terminal negotiation.
type Detector struct {
	cfg Config

	once sync.Once
	caps Capabilities

	mu         sync.Mutex
	configured bool
}

// NewDetector creates a detector with the given configuration.
func NewDetector(cfg Config) *Detector {
	if cfg.Getenv == nil {
		cfg.Getenv = os.Getenv
	}
	if cfg.ReadFile == nil {
		cfg.ReadFile = os.ReadFile
	}
	if cfg.KernelRelease == nil {
		cfg.KernelRelease = kernelRelease
	}
	if cfg.IsTerminal == nil {
		cfg.IsTerminal = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) }
	}
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	if cfg.GOOS == "" {
		cfg.GOOS = runtime.GOOS
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop
	}
	return &Detector{cfg: cfg}
}

// Detect returns the capability descriptor, running detection on first
// call. Detection is idempotent: later calls return the cached result,
// and concurrent first calls block on the one in-flight run.
func (d *Detector) Detect() Capabilities {
	d.once.Do(func() {
		d.caps = d.detect()
		d.cfg.Logger.Debug("detected capabilities: level=%s terminal=%q wsl=%v container=%v",
			d.caps.Level, d.caps.Terminal, d.caps.IsWSL, d.caps.IsContainer)
	})
	return d.caps
}

// detect runs the full decision table once.
func (d *Detector) detect() Capabilities {
	caps := Capabilities{
		Platform:    d.cfg.GOOS,
		IsWSL:       d.detectWSL(),
		IsContainer: d.detectContainer(),
		Terminal:    d.identifyTerminal(),
	}

	caps.Level = d.classify(caps)

	switch caps.Level {
	case SupportNone:
		// No protocols: nothing is ever written to the terminal.
	case SupportMinimal:
		caps.Protocols = []Protocol{ProtocolUTF8, ProtocolURXVT}
		caps.MaxCoordinate = maxCoordUTF8
	default:
		caps.Protocols = []Protocol{ProtocolSGR, ProtocolUTF8, ProtocolURXVT}
		caps.MaxCoordinate = maxCoordNumeric
	}

	return caps
}

// classify applies the support-level decision table.
func (d *Detector) classify(caps Capabilities) SupportLevel {
	termEnv := d.cfg.Getenv("TERM")

	switch {
	case caps.Terminal == "":
		// No terminal identification at all.
		return SupportNone
	case termEnv == "dumb":
		return SupportNone
	case caps.IsWSL:
		if d.isRichTerminal() {
			return SupportPartial
		}
		return SupportMinimal
	case d.isRichTerminal():
		if caps.IsContainer {
			return SupportPartial
		}
		return SupportFull
	case isXtermFamily(termEnv):
		return SupportPartial
	default:
		return SupportMinimal
	}
}

// identifyTerminal returns a best-effort terminal name from the
// environment, preferring the more specific TERM_PROGRAM identification.
func (d *Detector) identifyTerminal() string {
	if p := d.cfg.Getenv("TERM_PROGRAM"); p != "" {
		return p
	}
	if d.cfg.Getenv("WT_SESSION") != "" {
		return "windows-terminal"
	}
	if t := d.cfg.Getenv("TERM"); t != "" && d.cfg.IsTerminal() {
		return t
	}
	return ""
}

// richTerminals are TERM_PROGRAM / TERM values known to implement SGR
// reporting, motion tracking, and focus events.
var richTerminals = map[string]bool{
	"iTerm.app":        true,
	"WezTerm":          true,
	"ghostty":          true,
	"kitty":            true,
	"vscode":           true,
	"Apple_Terminal":   true,
	"alacritty":        true,
	"xterm-kitty":      true,
	"xterm-ghostty":    true,
	"windows-terminal": true,
}

func (d *Detector) isRichTerminal() bool {
	if richTerminals[d.identifyTerminal()] {
		return true
	}
	return richTerminals[d.cfg.Getenv("TERM")]
}

func isXtermFamily(term string) bool {
	for _, prefix := range []string{"xterm", "screen", "tmux", "rxvt"} {
		if strings.HasPrefix(term, prefix) {
			return true
		}
	}
	return false
}

// detectWSL checks the environment and the kernel release string for
// Windows Subsystem for Linux markers.
func (d *Detector) detectWSL() bool {
	if d.cfg.Getenv("WSL_DISTRO_NAME") != "" || d.cfg.Getenv("WSL_INTEROP") != "" {
		return true
	}
	release := strings.ToLower(d.cfg.KernelRelease())
	if strings.Contains(release, "microsoft") {
		return true
	}
	if version, err := d.cfg.ReadFile("/proc/version"); err == nil {
		return strings.Contains(strings.ToLower(string(version)), "microsoft")
	}
	return false
}

// detectContainer checks container marker files and orchestration
// environment variables.
func (d *Detector) detectContainer() bool {
	for _, marker := range []string{"/.dockerenv", "/run/.containerenv"} {
		if _, err := d.cfg.ReadFile(marker); err == nil {
			return true
		}
	}
	return d.cfg.Getenv("KUBERNETES_SERVICE_HOST") != "" || d.cfg.Getenv("container") != ""
}

// Configure negotiates mouse reporting with the terminal and returns
// true on success. Protocol preference: SGR when supported (plus motion
// and focus reporting at full support), then UTF-8, then urxvt. Safe to
// call repeatedly; only the first successful call writes sequences.
func (d *Detector) Configure() bool {
	caps := d.Detect()
	if caps.Level == SupportNone {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.configured {
		return true
	}

	preferred, ok := caps.Preferred()
	if !ok {
		return false
	}

	var seqs []string
	switch preferred {
	case ProtocolSGR:
		seqs = []string{protocol.EnableTracking, protocol.EnableButton, protocol.EnableSGR}
		if caps.Level == SupportFull {
			seqs = append(seqs, protocol.EnableAnyMotion, protocol.EnableFocus)
		}
	case ProtocolUTF8:
		seqs = []string{protocol.EnableTracking, protocol.EnableUTF8}
	case ProtocolURXVT:
		seqs = []string{protocol.EnableTracking, protocol.EnableURXVT}
	}

	for _, s := range seqs {
		if _, err := io.WriteString(d.cfg.Output, s); err != nil {
			d.cfg.Logger.Debug("configure failed: %v", err)
			return false
		}
	}

	d.configured = true
	d.cfg.Logger.Debug("mouse reporting configured: protocol=%s", preferred)
	return true
}

// Disable writes the disable sequences for every protocol variant. The
// terminal's negotiated state is not observable, so the full set is
// always written. Safe to call repeatedly and before Configure; it never
// writes when detection classified support as none.
func (d *Detector) Disable() {
	caps := d.Detect()
	if caps.Level == SupportNone {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, s := range protocol.DisableAll {
		if _, err := io.WriteString(d.cfg.Output, s); err != nil {
			d.cfg.Logger.Debug("disable write failed: %v", err)
			return
		}
	}
	d.configured = false
}

// Recommendations returns human-readable advice for improving mouse
// support in the detected environment.
func (d *Detector) Recommendations() []string {
	caps := d.Detect()

	var recs []string
	switch caps.Level {
	case SupportNone:
		recs = append(recs, "no capable terminal detected; run inside a terminal emulator with mouse support")
	case SupportMinimal:
		recs = append(recs, "only legacy mouse encodings available; coordinates are limited to 223x223 cells")
	}
	if caps.IsWSL {
		recs = append(recs, "WSL detected; use Windows Terminal for full mouse support")
	}
	if caps.IsContainer {
		recs = append(recs, "container detected; mouse support depends on the host terminal")
	}
	if caps.Level == SupportPartial && !caps.IsWSL && !caps.IsContainer {
		recs = append(recs, "terminal supports SGR reporting but motion and focus events are not negotiated")
	}
	return recs
}
