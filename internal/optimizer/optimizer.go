package optimizer

import (
	"sync"
	"time"

	"github.com/dshills/termclick/internal/logging"
	"github.com/dshills/termclick/internal/pointer"
)

// Default pipeline tuning. Frame interval matches a 60 Hz consumer; move
// and drag ceilings sit near 120 Hz and 83 Hz.
const (
	DefaultFrameInterval = 16 * time.Millisecond
	DefaultMoveInterval  = 8 * time.Millisecond
	DefaultDragInterval  = 12 * time.Millisecond
	DefaultCacheCapacity = 256
	DefaultPoolCapacity  = 64
)

// Config configures the optimizer pipeline.
type Config struct {
	// FrameInterval is the dedupe window and the batch flush boundary.
	FrameInterval time.Duration

	// MoveInterval is the minimum spacing between accepted move events.
	MoveInterval time.Duration

	// DragInterval is the minimum spacing between accepted drag events.
	DragInterval time.Duration

	// CacheCapacity bounds the coordinate cache.
	CacheCapacity int

	// PoolCapacity bounds the event pool.
	PoolCapacity int

	// EnableBatching turns on frame batching. When set, Optimize returns
	// nothing and accepted events are delivered through FlushFunc on
	// frame boundaries.
	EnableBatching bool

	// FlushFunc receives batched events. Required when EnableBatching is
	// set. It must not call back into the optimizer except Release.
	FlushFunc func([]*pointer.Event)

	// Logger receives debug output. Defaults to the no-op logger.
	Logger *logging.Logger
}

// DefaultConfig returns sensible defaults with batching off.
func DefaultConfig() Config {
	return Config{
		FrameInterval: DefaultFrameInterval,
		MoveInterval:  DefaultMoveInterval,
		DragInterval:  DefaultDragInterval,
		CacheCapacity: DefaultCacheCapacity,
		PoolCapacity:  DefaultPoolCapacity,
	}
}

// Optimizer applies deduplication, throttling, coordinate interning,
// pooled allocation, and optional frame batching to the event stream.
type Optimizer struct {
	mu  sync.Mutex
	cfg Config

	// lastSeen holds the newest accepted timestamp per event type. It
	// only moves forward: a late caller cannot resurrect an older
	// timestamp for a type.
	lastSeen [pointer.NumEventTypes]time.Time

	lastMovePos  pointer.Position
	haveLastMove bool

	cache   *coordCache
	pool    *eventPool
	batch   *frameBatcher
	metrics *Metrics
	closed  bool
}

// New creates an optimizer. Zero config fields take defaults.
func New(cfg Config) *Optimizer {
	def := DefaultConfig()
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = def.FrameInterval
	}
	if cfg.MoveInterval <= 0 {
		cfg.MoveInterval = def.MoveInterval
	}
	if cfg.DragInterval <= 0 {
		cfg.DragInterval = def.DragInterval
	}
	if cfg.CacheCapacity <= 0 {
		cfg.CacheCapacity = def.CacheCapacity
	}
	if cfg.PoolCapacity <= 0 {
		cfg.PoolCapacity = def.PoolCapacity
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop
	}

	o := &Optimizer{
		cfg:     cfg,
		cache:   newCoordCache(cfg.CacheCapacity),
		pool:    newEventPool(cfg.PoolCapacity),
		metrics: NewMetrics(),
	}
	if cfg.EnableBatching && cfg.FlushFunc != nil {
		o.batch = newFrameBatcher(cfg.FrameInterval, cfg.FlushFunc)
	}
	return o
}

// Optimize runs one event through the pipeline. It returns zero or one
// event; zero means the event was dropped, or accepted and scheduled for
// a batched flush. Returned events are pooled: use them and hand them
// back with Release before the next call.
func (o *Optimizer) Optimize(ev pointer.Event) []*pointer.Event {
	start := time.Now()
	if ev.Timestamp.IsZero() {
		ev.Timestamp = start
	}

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}

	if o.isDuplicate(ev) {
		o.mu.Unlock()
		o.metrics.RecordDropped()
		return nil
	}
	if o.isThrottled(ev) {
		o.mu.Unlock()
		o.metrics.RecordThrottled()
		return nil
	}

	o.observe(ev)

	pos := o.cache.Get(ev.Position.X, ev.Position.Y)
	o.metrics.RecordCache(o.cache.Stats())

	out := o.pool.Get()
	*out = ev
	out.Position = pos

	batch := o.batch
	o.mu.Unlock()

	o.metrics.RecordAccepted(time.Since(start))

	if batch != nil {
		batch.Add(out)
		return nil
	}
	return []*pointer.Event{out}
}

// OptimizeBatch runs a slice of events through the pipeline in order.
func (o *Optimizer) OptimizeBatch(events []pointer.Event) []*pointer.Event {
	var out []*pointer.Event
	for _, ev := range events {
		out = append(out, o.Optimize(ev)...)
	}
	return out
}

// isDuplicate implements the dedupe stage: a move at the same coordinates
// as the previous move, or a repeat of a non-rate-limited type within one
// frame interval. Move and drag repeats are left to the throttle stage,
// which enforces tighter ceilings.
func (o *Optimizer) isDuplicate(ev pointer.Event) bool {
	if ev.Type == pointer.EventMove && o.haveLastMove && ev.Position.Equal(o.lastMovePos) {
		return true
	}

	switch ev.Type {
	case pointer.EventMove, pointer.EventDrag:
		return false
	}

	last := o.lastSeen[ev.Type]
	return !last.IsZero() && ev.Timestamp.Sub(last) < o.cfg.FrameInterval
}

// isThrottled enforces the per-type rate ceilings.
func (o *Optimizer) isThrottled(ev pointer.Event) bool {
	var spacing time.Duration
	switch ev.Type {
	case pointer.EventMove:
		spacing = o.cfg.MoveInterval
	case pointer.EventDrag:
		spacing = o.cfg.DragInterval
	default:
		return false
	}

	last := o.lastSeen[ev.Type]
	return !last.IsZero() && ev.Timestamp.Sub(last) < spacing
}

// observe records an accepted event for later dedupe/throttle decisions.
// Timestamps only advance.
func (o *Optimizer) observe(ev pointer.Event) {
	if ev.Timestamp.After(o.lastSeen[ev.Type]) {
		o.lastSeen[ev.Type] = ev.Timestamp
	}
	if ev.Type == pointer.EventMove {
		o.lastMovePos = ev.Position
		o.haveLastMove = true
	}
}

// Flush delivers any batched events immediately. No-op when batching is
// disabled.
func (o *Optimizer) Flush() {
	o.mu.Lock()
	batch := o.batch
	o.mu.Unlock()

	if batch != nil {
		batch.Flush()
	}
}

// Pending returns the number of events awaiting a batched flush.
func (o *Optimizer) Pending() int {
	o.mu.Lock()
	batch := o.batch
	o.mu.Unlock()

	if batch == nil {
		return 0
	}
	return batch.Pending()
}

// DropPending cancels any scheduled batch flush and discards the queued
// events, returning them to the pool. Unlike Close, the optimizer stays
// usable.
func (o *Optimizer) DropPending() {
	o.mu.Lock()
	batch := o.batch
	o.mu.Unlock()

	if batch == nil {
		return
	}
	for _, ev := range batch.Drain() {
		o.pool.Put(ev)
	}
}

// Release returns a pooled event. Callers must release every event
// handed out by Optimize once they are done dispatching it.
func (o *Optimizer) Release(ev *pointer.Event) {
	o.pool.Put(ev)
}

// Metrics returns a snapshot of pipeline counters.
func (o *Optimizer) Metrics() Snapshot {
	return o.metrics.Snapshot()
}

// PoolSize returns the number of events currently pooled.
func (o *Optimizer) PoolSize() int {
	return o.pool.Size()
}

// Close cancels any pending batch timer and drops queued events,
// returning them to the pool. Idempotent.
func (o *Optimizer) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	batch := o.batch
	o.mu.Unlock()

	if batch != nil {
		for _, ev := range batch.Close() {
			o.pool.Put(ev)
		}
	}
}
