package platform

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/dshills/termclick/internal/protocol"
)

// testConfig builds a Config backed by a fake environment. Marker files
// listed in files are readable; everything else fails.
func testConfig(env map[string]string, files map[string]string, out *bytes.Buffer) Config {
	return Config{
		Getenv: func(key string) string { return env[key] },
		ReadFile: func(path string) ([]byte, error) {
			if content, ok := files[path]; ok {
				return []byte(content), nil
			}
			return nil, errors.New("no such file")
		},
		KernelRelease: func() string { return env["__kernel"] },
		IsTerminal:    func() bool { return true },
		Output:        out,
		GOOS:          "linux",
	}
}

func TestDetectDecisionTable(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		files map[string]string
		level SupportLevel
	}{
		{
			name:  "kitty is full",
			env:   map[string]string{"TERM": "xterm-kitty"},
			level: SupportFull,
		},
		{
			name:  "iterm is full",
			env:   map[string]string{"TERM_PROGRAM": "iTerm.app", "TERM": "xterm-256color"},
			level: SupportFull,
		},
		{
			name:  "rich terminal in container is partial",
			env:   map[string]string{"TERM": "xterm-kitty"},
			files: map[string]string{"/.dockerenv": ""},
			level: SupportPartial,
		},
		{
			name:  "wsl with rich host terminal is partial",
			env:   map[string]string{"TERM": "xterm-256color", "WT_SESSION": "abc", "WSL_DISTRO_NAME": "Ubuntu"},
			level: SupportPartial,
		},
		{
			name:  "wsl with plain terminal is minimal",
			env:   map[string]string{"TERM": "xterm-256color", "WSL_DISTRO_NAME": "Ubuntu"},
			level: SupportMinimal,
		},
		{
			name:  "wsl detected from kernel release",
			env:   map[string]string{"TERM": "xterm", "__kernel": "5.15.90.1-microsoft-standard-WSL2"},
			level: SupportMinimal,
		},
		{
			name:  "generic xterm is partial",
			env:   map[string]string{"TERM": "xterm-256color"},
			level: SupportPartial,
		},
		{
			name:  "screen is partial",
			env:   map[string]string{"TERM": "screen-256color"},
			level: SupportPartial,
		},
		{
			name:  "tmux is partial",
			env:   map[string]string{"TERM": "tmux-256color"},
			level: SupportPartial,
		},
		{
			name:  "dumb terminal is none",
			env:   map[string]string{"TERM": "dumb"},
			level: SupportNone,
		},
		{
			name:  "no identification is none",
			env:   map[string]string{},
			level: SupportNone,
		},
		{
			name:  "unrecognized terminal is minimal",
			env:   map[string]string{"TERM": "linux"},
			level: SupportMinimal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			d := NewDetector(testConfig(tt.env, tt.files, &out))

			caps := d.Detect()
			if caps.Level != tt.level {
				t.Errorf("Level = %v, want %v", caps.Level, tt.level)
			}
		})
	}
}

func TestDetectProtocolSets(t *testing.T) {
	var out bytes.Buffer

	full := NewDetector(testConfig(map[string]string{"TERM": "xterm-kitty"}, nil, &out)).Detect()
	if p, ok := full.Preferred(); !ok || p != ProtocolSGR {
		t.Errorf("full Preferred() = %v, %v, want sgr", p, ok)
	}
	if full.MaxCoordinate != maxCoordNumeric {
		t.Errorf("full MaxCoordinate = %d, want %d", full.MaxCoordinate, maxCoordNumeric)
	}

	minimal := NewDetector(testConfig(map[string]string{"TERM": "linux"}, nil, &out)).Detect()
	if minimal.Supports(ProtocolSGR) {
		t.Error("minimal support should not offer SGR")
	}
	if p, ok := minimal.Preferred(); !ok || p != ProtocolUTF8 {
		t.Errorf("minimal Preferred() = %v, %v, want utf8", p, ok)
	}
	if minimal.MaxCoordinate != maxCoordUTF8 {
		t.Errorf("minimal MaxCoordinate = %d, want %d", minimal.MaxCoordinate, maxCoordUTF8)
	}

	none := NewDetector(testConfig(map[string]string{"TERM": "dumb"}, nil, &out)).Detect()
	if len(none.Protocols) != 0 {
		t.Errorf("none Protocols = %v, want empty", none.Protocols)
	}
}

func TestDetectIsIdempotentAndConcurrent(t *testing.T) {
	var out bytes.Buffer
	calls := 0
	cfg := testConfig(map[string]string{"TERM": "xterm-kitty"}, nil, &out)
	inner := cfg.Getenv
	cfg.Getenv = func(key string) string {
		if key == "TERM" {
			calls++
		}
		return inner(key)
	}
	d := NewDetector(cfg)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if caps := d.Detect(); caps.Level != SupportFull {
				t.Errorf("Level = %v, want full", caps.Level)
			}
		}()
	}
	wg.Wait()

	first := calls
	d.Detect()
	if calls != first {
		t.Errorf("Detect re-ran after memoization: %d -> %d env reads", first, calls)
	}
}

func TestConfigureFullWritesSGRAndMotion(t *testing.T) {
	var out bytes.Buffer
	d := NewDetector(testConfig(map[string]string{"TERM": "xterm-kitty"}, nil, &out))

	if !d.Configure() {
		t.Fatal("Configure() = false, want true")
	}

	written := out.String()
	for _, seq := range []string{
		protocol.EnableTracking, protocol.EnableButton, protocol.EnableSGR,
		protocol.EnableAnyMotion, protocol.EnableFocus,
	} {
		if !strings.Contains(written, seq) {
			t.Errorf("Configure output missing %q", seq)
		}
	}

	// Second call must not compound.
	before := out.Len()
	if !d.Configure() {
		t.Error("repeat Configure() = false, want true")
	}
	if out.Len() != before {
		t.Error("repeat Configure wrote additional sequences")
	}
}

func TestConfigurePartialSkipsMotionAndFocus(t *testing.T) {
	var out bytes.Buffer
	d := NewDetector(testConfig(map[string]string{"TERM": "xterm-256color"}, nil, &out))

	if !d.Configure() {
		t.Fatal("Configure() = false, want true")
	}

	written := out.String()
	if !strings.Contains(written, protocol.EnableSGR) {
		t.Error("partial support should still negotiate SGR")
	}
	if strings.Contains(written, protocol.EnableAnyMotion) || strings.Contains(written, protocol.EnableFocus) {
		t.Errorf("partial support negotiated motion/focus: %q", written)
	}
}

func TestConfigureMinimalPrefersUTF8(t *testing.T) {
	var out bytes.Buffer
	d := NewDetector(testConfig(map[string]string{"TERM": "linux"}, nil, &out))

	if !d.Configure() {
		t.Fatal("Configure() = false, want true")
	}
	written := out.String()
	if !strings.Contains(written, protocol.EnableUTF8) {
		t.Errorf("minimal Configure output missing UTF-8 enable: %q", written)
	}
	if strings.Contains(written, protocol.EnableSGR) {
		t.Errorf("minimal Configure negotiated SGR: %q", written)
	}
}

func TestNoSupportWritesNothing(t *testing.T) {
	var out bytes.Buffer
	d := NewDetector(testConfig(map[string]string{"TERM": "dumb"}, nil, &out))

	if d.Configure() {
		t.Error("Configure() = true for unsupported terminal")
	}
	d.Disable()

	if out.Len() != 0 {
		t.Errorf("sequences written at support level none: %q", out.String())
	}
}

func TestDisableWritesAllVariants(t *testing.T) {
	var out bytes.Buffer
	d := NewDetector(testConfig(map[string]string{"TERM": "xterm-kitty"}, nil, &out))

	d.Configure()
	out.Reset()
	d.Disable()

	written := out.String()
	// Every protocol variant is torn down regardless of which was
	// negotiated.
	for _, seq := range []string{
		protocol.DisableTracking, protocol.DisableButton,
		protocol.DisableSGR, protocol.DisableUTF8, protocol.DisableURXVT,
	} {
		if !strings.Contains(written, seq) {
			t.Errorf("Disable output missing %q", seq)
		}
	}

	// Disable is idempotent: a second call writes the same set again
	// without error.
	out.Reset()
	d.Disable()
	if out.String() != written {
		t.Error("repeat Disable produced different output")
	}
}

func TestRecommendations(t *testing.T) {
	var out bytes.Buffer

	wsl := NewDetector(testConfig(map[string]string{
		"TERM": "xterm-256color", "WSL_DISTRO_NAME": "Ubuntu",
	}, nil, &out))
	recs := wsl.Recommendations()
	found := false
	for _, r := range recs {
		if strings.Contains(r, "WSL") {
			found = true
		}
	}
	if !found {
		t.Errorf("Recommendations() = %v, want WSL advice", recs)
	}

	full := NewDetector(testConfig(map[string]string{"TERM": "xterm-kitty"}, nil, &out))
	if recs := full.Recommendations(); len(recs) != 0 {
		t.Errorf("Recommendations() for full support = %v, want none", recs)
	}
}
