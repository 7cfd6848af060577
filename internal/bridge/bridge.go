package bridge

import (
	"sync"
	"time"

	"github.com/dshills/termclick/internal/logging"
	"github.com/dshills/termclick/internal/optimizer"
	"github.com/dshills/termclick/internal/platform"
	"github.com/dshills/termclick/internal/pointer"
	"github.com/dshills/termclick/internal/protocol"
	"github.com/dshills/termclick/internal/registry"
)

// Gesture recognition defaults.
const (
	DefaultDoubleClickTime     = 400 * time.Millisecond
	DefaultDoubleClickDistance = 4
	DefaultDragThreshold       = 1
)

// Handlers holds the typed dispatch callbacks. Nil callbacks are
// skipped; the event is still counted as dispatched.
type Handlers struct {
	OnClick     func(pointer.Event)
	OnDragStart func(pointer.Event)
	OnDrag      func(pointer.Event)
	OnDragEnd   func(pointer.Event)
	OnScroll    func(pointer.Event)
	OnMove      func(pointer.Event)
	OnHover     func(pointer.Event)
	OnLeave     func(pointer.Event)
}

// Config configures a Bridge.
type Config struct {
	// Detector performs capability detection and terminal negotiation.
	// A default detector is constructed when nil.
	Detector *platform.Detector

	// Registry, when set, enables hit-test target attribution and
	// hover/leave synthesis.
	Registry *registry.Registry

	// Optimizer tunes the event pipeline. Its FlushFunc is owned by the
	// bridge and must be left nil.
	Optimizer optimizer.Config

	// Handlers are the dispatch callbacks. Fixed at construction.
	Handlers Handlers

	// DoubleClickTime is the maximum gap between clicks in a sequence.
	DoubleClickTime time.Duration

	// DoubleClickDistance is the maximum Manhattan distance between
	// clicks in a sequence.
	DoubleClickDistance int

	// DragThreshold is the movement, in cells, at which a held button
	// becomes a drag.
	DragThreshold int

	// Logger receives diagnostics. Defaults to the no-op logger.
	Logger *logging.Logger
}

// Result is the outcome of one ProcessInput call.
type Result struct {
	// Events are the events dispatched during the call, in dispatch
	// order. With batching enabled, events flushed later by the frame
	// timer appear in no Result.
	Events []pointer.Event

	// Remainder is the input with mouse reports removed, still
	// interpretable as keyboard input.
	Remainder string
}

// Bridge is the input front end: it owns the parser, detector, and
// optimizer, and optionally consults a region registry.
type Bridge struct {
	mu sync.Mutex

	cfg    Config
	parser *protocol.Parser
	opt    *optimizer.Optimizer
	det    *platform.Detector
	reg    *registry.Registry

	handlers Handlers
	logger   *logging.Logger

	// carry holds a trailing partial escape sequence between calls.
	carry string

	enabled bool
	closed  bool

	click     *clickTracker
	drag      *dragTracker
	lastHover string

	collectMu  sync.Mutex
	collecting bool
	collected  []pointer.Event
}

// New creates a bridge. Zero config fields take defaults.
func New(cfg Config) *Bridge {
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop
	}
	if cfg.Detector == nil {
		cfg.Detector = platform.NewDetector(platform.Config{Logger: cfg.Logger})
	}
	if cfg.DoubleClickTime <= 0 {
		cfg.DoubleClickTime = DefaultDoubleClickTime
	}
	if cfg.DoubleClickDistance <= 0 {
		cfg.DoubleClickDistance = DefaultDoubleClickDistance
	}
	if cfg.DragThreshold <= 0 {
		cfg.DragThreshold = DefaultDragThreshold
	}

	b := &Bridge{
		cfg:      cfg,
		parser:   protocol.NewParser(),
		det:      cfg.Detector,
		reg:      cfg.Registry,
		handlers: cfg.Handlers,
		logger:   cfg.Logger.WithComponent("bridge"),
		click:    newClickTracker(cfg.DoubleClickTime, cfg.DoubleClickDistance),
		drag:     newDragTracker(),
	}

	optCfg := cfg.Optimizer
	if optCfg.Logger == nil {
		optCfg.Logger = cfg.Logger
	}
	if optCfg.EnableBatching {
		optCfg.FlushFunc = b.deliverBatch
	}
	b.opt = optimizer.New(optCfg)
	return b
}

// Enable detects terminal capabilities and negotiates mouse reporting.
// It returns true when mouse input is on. On an incapable terminal it
// logs the detector's recommendations and returns false; callers keep
// working keyboard-only.
func (b *Bridge) Enable() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return false
	}
	if b.enabled {
		return true
	}

	caps := b.det.Detect()
	if caps.Level == platform.SupportNone {
		for _, rec := range b.det.Recommendations() {
			b.logger.Info("%s", rec)
		}
		return false
	}
	if !b.det.Configure() {
		b.logger.Warn("terminal negotiation failed; mouse input stays off")
		return false
	}

	b.parser.MaxCoordinate = caps.MaxCoordinate
	b.enabled = true
	b.logger.Debug("mouse input enabled at level %s", caps.Level)
	return true
}

// Disable turns mouse reporting off: pending batched events are
// dropped, gesture state is cleared, and the disable sequences for
// every protocol variant are written. Idempotent.
func (b *Bridge) Disable() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.enabled = false
	b.carry = ""
	b.click.reset()
	b.drag.end()
	b.lastHover = ""
	b.mu.Unlock()

	b.opt.DropPending()
	b.det.Disable()
}

// Toggle flips mouse reporting and returns the new state.
func (b *Bridge) Toggle() bool {
	if b.Enabled() {
		b.Disable()
		return false
	}
	return b.Enable()
}

// Enabled reports whether mouse reporting is on.
func (b *Bridge) Enabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.enabled
}

// Close disables mouse reporting and releases the optimizer. The bridge
// is unusable afterwards. Idempotent.
func (b *Bridge) Close() {
	b.Disable()

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	b.opt.Close()
}

// ProcessInput consumes one chunk of raw terminal input. Mouse reports
// are stripped, decoded, refined into gestures, optimized, and
// dispatched; everything else comes back in Result.Remainder. A
// trailing partial escape sequence is carried over to the next call
// rather than dropped or misread as keystrokes.
//
// When the bridge is disabled the input passes through untouched.
func (b *Bridge) ProcessInput(input string) Result {
	b.mu.Lock()
	if b.closed || !b.enabled {
		b.mu.Unlock()
		return Result{Remainder: input}
	}

	data := b.carry + input
	b.carry = ""
	if i := protocol.IncompleteTail(data); i >= 0 {
		b.carry = data[i:]
		data = data[:i]
	}

	raw, remainder, errs := b.parser.ExtractAll(data)
	for _, err := range errs {
		b.logger.Debug("discarded malformed report: %v", err)
	}

	var logical []pointer.Event
	for _, ev := range raw {
		logical = append(logical, b.interpretLocked(ev)...)
	}
	b.mu.Unlock()

	b.beginCollect()
	for _, ev := range logical {
		b.submit(ev)
	}
	return Result{Events: b.endCollect(), Remainder: remainder}
}

// Flush delivers any batched events immediately.
func (b *Bridge) Flush() {
	b.opt.Flush()
}

// Metrics returns a snapshot of the optimizer pipeline counters.
func (b *Bridge) Metrics() optimizer.Snapshot {
	return b.opt.Metrics()
}

// interpretLocked refines one decoded wire event into zero or more
// gesture events. Caller holds b.mu.
func (b *Bridge) interpretLocked(ev pointer.Event) []pointer.Event {
	switch ev.Type {
	case pointer.EventClick:
		return b.pressLocked(ev)
	case pointer.EventDragEnd:
		return b.releaseLocked(ev)
	case pointer.EventMove:
		return b.motionLocked(ev)
	case pointer.EventScroll:
		ev.Target = b.targetAt(ev.Position)
		return []pointer.Event{ev}
	default:
		return []pointer.Event{ev}
	}
}

// pressLocked handles a button press: click sequence counting and drag
// arming.
func (b *Bridge) pressLocked(ev pointer.Event) []pointer.Event {
	ev.ClickCount = b.click.recordClick(ev.Position, ev.Timestamp)
	b.drag.start(ev.Position, ev.Button)
	ev.Target = b.targetAt(ev.Position)
	return []pointer.Event{ev}
}

// releaseLocked handles a button release. The release only surfaces as
// a drag end when motion actually passed the threshold; a plain
// press/release pair was already reported as a click on the press.
func (b *Bridge) releaseLocked(ev pointer.Event) []pointer.Event {
	wasDragging := b.drag.dragging
	b.drag.end()

	if !wasDragging {
		return nil
	}
	ev.Target = b.targetAt(ev.Position)
	return []pointer.Event{ev}
}

// motionLocked handles pointer motion: drag promotion while a button is
// held, hover/leave transitions otherwise.
func (b *Bridge) motionLocked(ev pointer.Event) []pointer.Event {
	// A motion report carrying a button means the press was missed
	// (chunk loss, or enable mid-drag). Arm the tracker retroactively.
	if !b.drag.active && ev.Button != pointer.ButtonNone {
		b.drag.start(ev.Position, ev.Button)
	}

	if b.drag.active {
		return b.dragMotionLocked(ev)
	}

	out := make([]pointer.Event, 0, 3)
	hitID := b.targetAt(ev.Position)
	if hitID != b.lastHover {
		if b.lastHover != "" {
			leave := ev
			leave.Type = pointer.EventLeave
			leave.Button = pointer.ButtonNone
			leave.Target = b.lastHover
			out = append(out, leave)
		}
		if hitID != "" {
			hover := ev
			hover.Type = pointer.EventHover
			hover.Button = pointer.ButtonNone
			hover.Target = hitID
			out = append(out, hover)
		}
		b.lastHover = hitID
	}

	ev.Target = hitID
	return append(out, ev)
}

// dragMotionLocked handles motion with a button held.
func (b *Bridge) dragMotionLocked(ev pointer.Event) []pointer.Event {
	b.drag.update(ev.Position)

	if !b.drag.dragging {
		if ev.Position.Distance(b.drag.startPos) < b.cfg.DragThreshold {
			// Sub-threshold jitter between press and release.
			return nil
		}
		b.drag.dragging = true

		start := ev
		start.Type = pointer.EventDragStart
		start.Position = b.drag.startPos
		start.Button = b.drag.button
		start.Target = b.targetAt(start.Position)

		cur := ev
		cur.Type = pointer.EventDrag
		cur.Button = b.drag.button
		cur.Target = b.targetAt(cur.Position)
		return []pointer.Event{start, cur}
	}

	cur := ev
	cur.Type = pointer.EventDrag
	cur.Button = b.drag.button
	cur.Target = b.targetAt(cur.Position)
	return []pointer.Event{cur}
}

// targetAt resolves the hit-test target id, or "" without a registry.
func (b *Bridge) targetAt(pos pointer.Position) string {
	if b.reg == nil {
		return ""
	}
	if r := b.reg.FindAt(pos.X, pos.Y); r != nil {
		return r.ID
	}
	return ""
}

// submit routes one gesture event toward dispatch. Hover and leave are
// synthesized from already rate-limited motion, so they bypass the
// optimizer: a dropped leave would strand a region in the hovered
// state.
func (b *Bridge) submit(ev pointer.Event) {
	switch ev.Type {
	case pointer.EventHover, pointer.EventLeave:
		b.deliver(ev)
		return
	}

	for _, out := range b.opt.Optimize(ev) {
		b.deliver(*out)
		b.opt.Release(out)
	}
}

// deliverBatch is the optimizer's flush callback.
func (b *Bridge) deliverBatch(events []*pointer.Event) {
	for _, ev := range events {
		b.deliver(*ev)
		b.opt.Release(ev)
	}
}

func (b *Bridge) deliver(ev pointer.Event) {
	b.dispatch(ev)
	b.dispatchRegion(ev)
	b.collect(ev)
}

// dispatchRegion routes the event to the callbacks of the region it was
// attributed to, when that region registered any.
func (b *Bridge) dispatchRegion(ev pointer.Event) {
	if b.reg == nil || ev.Target == "" {
		return
	}
	region, ok := b.reg.Get(ev.Target)
	if !ok {
		return
	}

	h := region.Handlers
	switch ev.Type {
	case pointer.EventClick:
		if h.OnClick != nil {
			h.OnClick(ev)
		}
	case pointer.EventDragStart, pointer.EventDrag, pointer.EventDragEnd:
		if h.OnDrag != nil {
			h.OnDrag(ev)
		}
	case pointer.EventHover:
		if h.OnHover != nil {
			h.OnHover(ev)
		}
	case pointer.EventLeave:
		if h.OnLeave != nil {
			h.OnLeave(ev)
		}
	}
}

// dispatch routes one event to its typed callback.
func (b *Bridge) dispatch(ev pointer.Event) {
	h := b.handlers
	switch ev.Type {
	case pointer.EventClick:
		if h.OnClick != nil {
			h.OnClick(ev)
		}
	case pointer.EventDragStart:
		if h.OnDragStart != nil {
			h.OnDragStart(ev)
		}
	case pointer.EventDrag:
		if h.OnDrag != nil {
			h.OnDrag(ev)
		}
	case pointer.EventDragEnd:
		if h.OnDragEnd != nil {
			h.OnDragEnd(ev)
		}
	case pointer.EventScroll:
		if h.OnScroll != nil {
			h.OnScroll(ev)
		}
	case pointer.EventMove:
		if h.OnMove != nil {
			h.OnMove(ev)
		}
	case pointer.EventHover:
		if h.OnHover != nil {
			h.OnHover(ev)
		}
	case pointer.EventLeave:
		if h.OnLeave != nil {
			h.OnLeave(ev)
		}
	default:
		b.logger.Debug("unroutable event type %v", ev.Type)
	}
}

func (b *Bridge) beginCollect() {
	b.collectMu.Lock()
	b.collecting = true
	b.collected = nil
	b.collectMu.Unlock()
}

func (b *Bridge) collect(ev pointer.Event) {
	b.collectMu.Lock()
	if b.collecting {
		b.collected = append(b.collected, ev)
	}
	b.collectMu.Unlock()
}

func (b *Bridge) endCollect() []pointer.Event {
	b.collectMu.Lock()
	events := b.collected
	b.collecting = false
	b.collected = nil
	b.collectMu.Unlock()
	return events
}
