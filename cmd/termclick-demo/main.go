// Package main is an interactive demonstration of the mouse input
// subsystem: it negotiates mouse reporting, registers a few clickable
// regions, and echoes every dispatched event.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/dshills/termclick/internal/bridge"
	"github.com/dshills/termclick/internal/config"
	"github.com/dshills/termclick/internal/logging"
	"github.com/dshills/termclick/internal/optimizer"
	"github.com/dshills/termclick/internal/platform"
	"github.com/dshills/termclick/internal/pointer"
	"github.com/dshills/termclick/internal/registry"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath  string
		debug       bool
		logFile     string
		showVersion bool
	)

	flag.StringVar(&configPath, "config", "", "Path to options file")
	flag.StringVar(&configPath, "c", "", "Path to options file (shorthand)")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.BoolVar(&debug, "d", false, "Enable debug logging (shorthand)")
	flag.StringVar(&logFile, "log-file", "", "Route log output to a rotated file")
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "termclick-demo - terminal mouse input demonstration\n\n")
		fmt.Fprintf(os.Stderr, "Usage: termclick-demo [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nKeys:\n")
		fmt.Fprintf(os.Stderr, "  q, Ctrl+C   quit\n")
		fmt.Fprintf(os.Stderr, "  t           toggle mouse reporting\n")
		fmt.Fprintf(os.Stderr, "  m           print pipeline metrics\n")
	}
	flag.Parse()

	if showVersion {
		fmt.Printf("termclick-demo %s (%s)\n", version, commit)
		return 0
	}

	opts, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	opts.ApplyEnv(nil)
	if debug {
		opts.Logging.Level = "debug"
	}
	if logFile != "" {
		opts.Logging.File = logFile
	}

	logger := logging.New(opts.LoggerConfig())

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		fmt.Fprintln(os.Stderr, "Error: stdin is not a terminal")
		return 1
	}

	width, height, err := term.GetSize(fd)
	if err != nil {
		width, height = 80, 24
	}

	reg := registry.New(registry.Config{
		Bounds: registry.Bounds{Width: width, Height: height},
		Index:  registry.NewQuadTree(opts.Registry.MaxDepth, opts.Registry.SplitThreshold),
		Logger: logger,
	})
	registerDemoRegions(reg, width)

	echo := func(ev pointer.Event) { printEvent(ev) }
	b := bridge.New(bridge.Config{
		Detector: platform.NewDetector(platform.Config{Logger: logger}),
		Registry: reg,
		Optimizer: optimizer.Config{
			FrameInterval:  opts.Optimizer.FrameInterval(),
			MoveInterval:   opts.Optimizer.MoveInterval(),
			DragInterval:   opts.Optimizer.DragInterval(),
			CacheCapacity:  opts.Optimizer.CacheCapacity,
			PoolCapacity:   opts.Optimizer.PoolCapacity,
			EnableBatching: opts.Optimizer.EnableBatching,
			Logger:         logger,
		},
		Handlers: bridge.Handlers{
			OnClick:     echo,
			OnDragStart: echo,
			OnDrag:      echo,
			OnDragEnd:   echo,
			OnScroll:    echo,
			OnMove:      echo,
			OnHover:     echo,
			OnLeave:     echo,
		},
		DoubleClickTime:     opts.Input.DoubleClickTime(),
		DoubleClickDistance: opts.Input.DoubleClickDistance,
		DragThreshold:       opts.Input.DragThreshold,
		Logger:              logger,
	})
	defer b.Close()

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to enter raw mode: %v\n", err)
		return 1
	}
	restore := func() { _ = term.Restore(fd, oldState) }
	defer restore()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		b.Close()
		restore()
		os.Exit(0)
	}()

	if b.Enable() {
		fmt.Print("mouse reporting on; click, drag, and scroll away (q quits)\r\n")
	} else {
		fmt.Print("mouse reporting unavailable; q quits\r\n")
	}

	buf := make([]byte, 256)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return 0
		}

		res := b.ProcessInput(string(buf[:n]))
		if quit := handleKeys(b, res.Remainder); quit {
			return 0
		}
	}
}

// handleKeys interprets the keyboard remainder. Returns true on quit.
func handleKeys(b *bridge.Bridge, keys string) bool {
	for _, c := range keys {
		switch c {
		case 'q', 0x03: // q or Ctrl+C
			return true
		case 't':
			if b.Toggle() {
				fmt.Print("mouse reporting on\r\n")
			} else {
				fmt.Print("mouse reporting off\r\n")
			}
		case 'm':
			printMetrics(b.Metrics())
		}
	}
	return false
}

// registerDemoRegions places a few overlapping targets to show hit
// testing, priorities, and hover transitions.
func registerDemoRegions(reg *registry.Registry, width int) {
	regions := []registry.Region{
		{
			ID:            "panel",
			Type:          "panel",
			Bounds:        registry.Bounds{X: 2, Y: 2, Width: max(10, width-4), Height: 10},
			Enabled:       true,
			Visible:       true,
			Priority:      1,
			Accessibility: registry.Accessibility{Label: "Demo panel", Role: "group"},
		},
		{
			ID:            "btn-ok",
			Type:          "button",
			Bounds:        registry.Bounds{X: 4, Y: 4, Width: 8, Height: 3},
			Enabled:       true,
			Visible:       true,
			Priority:      10,
			Accessibility: registry.Accessibility{Label: "OK", Role: "button"},
		},
		{
			ID:            "btn-cancel",
			Type:          "button",
			Bounds:        registry.Bounds{X: 14, Y: 4, Width: 10, Height: 3},
			Enabled:       true,
			Visible:       true,
			Priority:      10,
			Accessibility: registry.Accessibility{Label: "Cancel", Role: "button"},
		},
	}

	for _, r := range regions {
		if err := reg.Register(r); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: region %s: %v\n", r.ID, err)
		}
	}
}

func printEvent(ev pointer.Event) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-10s (%3d,%3d)", ev.Type, ev.Position.X, ev.Position.Y)
	if ev.Button != pointer.ButtonNone {
		fmt.Fprintf(&sb, " button=%s", ev.Button)
	}
	if ev.Modifiers != pointer.ModNone {
		fmt.Fprintf(&sb, " mods=%s", ev.Modifiers)
	}
	if ev.ClickCount > 1 {
		fmt.Fprintf(&sb, " count=%d", ev.ClickCount)
	}
	if ev.Target != "" {
		fmt.Fprintf(&sb, " target=%s", ev.Target)
	}
	fmt.Print(sb.String() + "\r\n")
}

func printMetrics(m optimizer.Snapshot) {
	fmt.Printf("events: total=%d processed=%d dropped=%d throttled=%d\r\n",
		m.Total, m.Processed, m.Dropped, m.Throttled)
	fmt.Printf("cache: hit-rate=%.2f  pipeline: avg=%dns peak=%dns\r\n",
		m.CacheHitRate, m.AvgProcessNs, m.PeakProcessNs)
}
