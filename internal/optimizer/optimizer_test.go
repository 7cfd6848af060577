package optimizer

import (
	"sync"
	"testing"
	"time"

	"github.com/dshills/termclick/internal/pointer"
)

func moveAt(x, y int, ts time.Time) pointer.Event {
	return pointer.Event{
		Type:      pointer.EventMove,
		Position:  pointer.Position{X: x, Y: y},
		Timestamp: ts,
	}
}

func clickAt(x, y int, ts time.Time) pointer.Event {
	return pointer.Event{
		Type:      pointer.EventClick,
		Button:    pointer.ButtonLeft,
		Position:  pointer.Position{X: x, Y: y},
		Timestamp: ts,
	}
}

func TestDuplicateMoveDropped(t *testing.T) {
	o := New(DefaultConfig())
	base := time.Now()

	first := o.Optimize(moveAt(5, 5, base))
	if len(first) != 1 {
		t.Fatalf("first move: got %d events, want 1", len(first))
	}
	o.Release(first[0])

	// Same coordinates, well past any throttle window: still a duplicate.
	second := o.Optimize(moveAt(5, 5, base.Add(100*time.Millisecond)))
	if len(second) != 0 {
		t.Fatalf("duplicate move: got %d events, want 0", len(second))
	}

	m := o.Metrics()
	if m.Processed != 1 {
		t.Errorf("Processed = %d, want 1", m.Processed)
	}
	if m.Dropped != 1 {
		t.Errorf("Dropped = %d, want 1", m.Dropped)
	}
	if m.Total != 2 {
		t.Errorf("Total = %d, want 2", m.Total)
	}
}

func TestSameTypeWithinFrameDropped(t *testing.T) {
	o := New(DefaultConfig())
	base := time.Now()

	first := o.Optimize(clickAt(1, 1, base))
	if len(first) != 1 {
		t.Fatalf("first click: got %d events, want 1", len(first))
	}
	o.Release(first[0])

	// A second click 5ms later is inside the frame interval.
	second := o.Optimize(clickAt(9, 9, base.Add(5*time.Millisecond)))
	if len(second) != 0 {
		t.Fatalf("rapid repeat click: got %d events, want 0", len(second))
	}

	// 20ms later is past the window.
	third := o.Optimize(clickAt(9, 9, base.Add(25*time.Millisecond)))
	if len(third) != 1 {
		t.Fatalf("spaced click: got %d events, want 1", len(third))
	}
	o.Release(third[0])
}

func TestMoveThrottling(t *testing.T) {
	o := New(DefaultConfig())
	base := time.Now()

	accepted := 0
	// 100 moves, one per millisecond, all at distinct coordinates.
	for i := 0; i < 100; i++ {
		out := o.Optimize(moveAt(i, 0, base.Add(time.Duration(i)*time.Millisecond)))
		for _, ev := range out {
			accepted++
			o.Release(ev)
		}
	}

	// At an 8ms ceiling roughly one in eight survives.
	if accepted < 10 || accepted > 15 {
		t.Errorf("accepted = %d, want ~13 at 8ms spacing", accepted)
	}

	m := o.Metrics()
	if m.Throttled == 0 {
		t.Error("Throttled = 0, want > 0")
	}
	if m.ThrottleRate <= 0 {
		t.Errorf("ThrottleRate = %v, want > 0", m.ThrottleRate)
	}
}

func TestDragThrottling(t *testing.T) {
	o := New(DefaultConfig())
	base := time.Now()

	drag := func(x int, ts time.Time) pointer.Event {
		return pointer.Event{
			Type:      pointer.EventDrag,
			Button:    pointer.ButtonLeft,
			Position:  pointer.Position{X: x, Y: 0},
			Timestamp: ts,
		}
	}

	first := o.Optimize(drag(0, base))
	if len(first) != 1 {
		t.Fatalf("first drag: got %d, want 1", len(first))
	}
	o.Release(first[0])

	// 5ms later: under the 12ms drag ceiling.
	if out := o.Optimize(drag(1, base.Add(5*time.Millisecond))); len(out) != 0 {
		t.Errorf("drag within ceiling accepted")
	}
	// 15ms later: past it.
	out := o.Optimize(drag(2, base.Add(15*time.Millisecond)))
	if len(out) != 1 {
		t.Errorf("drag past ceiling dropped")
	} else {
		o.Release(out[0])
	}
}

func TestTimestampsNeverRegress(t *testing.T) {
	o := New(DefaultConfig())
	base := time.Now()

	out := o.Optimize(clickAt(1, 1, base.Add(time.Second)))
	if len(out) != 1 {
		t.Fatalf("got %d events, want 1", len(out))
	}
	o.Release(out[0])

	// An event carrying an older timestamp cannot resurrect the older
	// last-seen value: it reads as "within the frame window" and drops.
	if out := o.Optimize(clickAt(2, 2, base)); len(out) != 0 {
		t.Error("stale-timestamp event accepted")
	}
}

func TestPoolNeverExceedsCapacity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PoolCapacity = 16
	cfg.FrameInterval = time.Nanosecond // effectively disable dedupe
	cfg.MoveInterval = time.Nanosecond
	o := New(cfg)

	base := time.Now()
	var held []*pointer.Event
	for i := 0; i < 5000; i++ {
		ev := moveAt(i%500, i/500, base.Add(time.Duration(i)*time.Millisecond))
		for _, out := range o.Optimize(ev) {
			held = append(held, out)
		}
		// Return in bursts so Put sees a full pool regularly.
		if len(held) >= 100 {
			for _, ev := range held {
				o.Release(ev)
			}
			held = held[:0]
		}
		if size := o.PoolSize(); size > 16 {
			t.Fatalf("pool size %d exceeds capacity 16 at event %d", size, i)
		}
	}
	for _, ev := range held {
		o.Release(ev)
	}
	if size := o.PoolSize(); size > 16 {
		t.Fatalf("final pool size %d exceeds capacity 16", size)
	}
}

func TestCoordCacheFIFOEviction(t *testing.T) {
	c := newCoordCache(3)

	c.Get(1, 1)
	c.Get(2, 2)
	c.Get(3, 3)
	if c.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", c.Len())
	}

	// Hit: no eviction.
	c.Get(1, 1)
	hits, misses := c.Stats()
	if hits != 1 || misses != 3 {
		t.Errorf("Stats() = %d hits %d misses, want 1/3", hits, misses)
	}

	// Insert a fourth: the oldest entry (1,1) is evicted FIFO, even
	// though it was touched most recently.
	c.Get(4, 4)
	if c.Len() != 3 {
		t.Fatalf("Len() after eviction = %d, want 3", c.Len())
	}
	c.Get(1, 1)
	hits, misses = c.Stats()
	if hits != 1 || misses != 5 {
		t.Errorf("Stats() after eviction = %d hits %d misses, want 1/5", hits, misses)
	}
}

func TestCoordinateCanonicalization(t *testing.T) {
	o := New(DefaultConfig())
	base := time.Now()

	a := o.Optimize(clickAt(7, 7, base))
	if len(a) != 1 {
		t.Fatalf("got %d events, want 1", len(a))
	}
	pos := a[0].Position
	o.Release(a[0])

	b := o.Optimize(clickAt(7, 7, base.Add(50*time.Millisecond)))
	if len(b) != 1 {
		t.Fatalf("got %d events, want 1", len(b))
	}
	if !b[0].Position.Equal(pos) {
		t.Errorf("positions differ: %v vs %v", b[0].Position, pos)
	}
	o.Release(b[0])

	if m := o.Metrics(); m.CacheHitRate <= 0 {
		t.Errorf("CacheHitRate = %v, want > 0", m.CacheHitRate)
	}
}

func TestBatchingSchedulesDelivery(t *testing.T) {
	var mu sync.Mutex
	var delivered []*pointer.Event

	cfg := DefaultConfig()
	cfg.EnableBatching = true
	cfg.FrameInterval = 10 * time.Millisecond
	cfg.FlushFunc = func(events []*pointer.Event) {
		mu.Lock()
		delivered = append(delivered, events...)
		mu.Unlock()
	}
	o := New(cfg)
	defer o.Close()

	// First event: a full interval has elapsed since the zero lastFlush,
	// so it flushes immediately.
	if out := o.Optimize(clickAt(1, 1, time.Now())); len(out) != 0 {
		t.Errorf("batched Optimize returned %d events, want 0", len(out))
	}

	mu.Lock()
	immediate := len(delivered)
	mu.Unlock()
	if immediate != 1 {
		t.Fatalf("immediate flush delivered %d, want 1", immediate)
	}

	// Second event lands inside the interval and waits for the timer.
	o.Optimize(pointer.Event{
		Type:      pointer.EventScroll,
		Button:    pointer.ButtonScrollUp,
		Position:  pointer.Position{X: 2, Y: 2},
		Timestamp: time.Now(),
	})

	mu.Lock()
	beforeTimer := len(delivered)
	mu.Unlock()
	if beforeTimer != 1 {
		t.Fatalf("event delivered before frame boundary: %d", beforeTimer)
	}

	time.Sleep(30 * time.Millisecond)

	mu.Lock()
	afterTimer := len(delivered)
	mu.Unlock()
	if afterTimer != 2 {
		t.Errorf("after frame boundary delivered = %d, want 2", afterTimer)
	}
}

func TestCloseDropsPendingBatch(t *testing.T) {
	var mu sync.Mutex
	flushes := 0

	cfg := DefaultConfig()
	cfg.EnableBatching = true
	cfg.FrameInterval = 50 * time.Millisecond
	cfg.FlushFunc = func([]*pointer.Event) {
		mu.Lock()
		flushes++
		mu.Unlock()
	}
	o := New(cfg)

	// Prime lastFlush so the next event is queued, not flushed.
	o.Optimize(clickAt(1, 1, time.Now()))
	o.Optimize(pointer.Event{
		Type:      pointer.EventScroll,
		Button:    pointer.ButtonScrollDown,
		Position:  pointer.Position{X: 3, Y: 3},
		Timestamp: time.Now(),
	})

	if o.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", o.Pending())
	}

	o.Close()
	o.Close() // idempotent

	if o.Pending() != 0 {
		t.Errorf("Pending() after Close = %d, want 0", o.Pending())
	}

	time.Sleep(80 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if flushes != 1 {
		t.Errorf("flushes = %d, want 1 (no partial flush after Close)", flushes)
	}
}

func TestOptimizeBatchKeepsOrder(t *testing.T) {
	o := New(DefaultConfig())
	base := time.Now()

	events := []pointer.Event{
		clickAt(1, 1, base),
		moveAt(2, 2, base.Add(20*time.Millisecond)),
		{Type: pointer.EventScroll, Button: pointer.ButtonScrollUp, Position: pointer.Position{X: 3, Y: 3}, Timestamp: base.Add(40 * time.Millisecond)},
	}

	out := o.OptimizeBatch(events)
	if len(out) != 3 {
		t.Fatalf("len(out) = %d, want 3", len(out))
	}
	wantTypes := []pointer.EventType{pointer.EventClick, pointer.EventMove, pointer.EventScroll}
	for i, ev := range out {
		if ev.Type != wantTypes[i] {
			t.Errorf("out[%d].Type = %v, want %v", i, ev.Type, wantTypes[i])
		}
		o.Release(ev)
	}
}

func TestMetricsSnapshotDerivedRates(t *testing.T) {
	o := New(DefaultConfig())
	base := time.Now()

	out := o.Optimize(clickAt(1, 1, base))
	o.Release(out[0])
	o.Optimize(clickAt(1, 1, base.Add(time.Millisecond))) // dropped

	m := o.Metrics()
	if m.Total != 2 || m.Processed != 1 || m.Dropped != 1 {
		t.Errorf("counters = %d/%d/%d, want 2/1/1", m.Total, m.Processed, m.Dropped)
	}
	if m.DropRate != 0.5 {
		t.Errorf("DropRate = %v, want 0.5", m.DropRate)
	}
	if m.AvgProcessNs < 0 {
		t.Errorf("AvgProcessNs = %d, want >= 0", m.AvgProcessNs)
	}
	if m.PeakProcessNs < m.AvgProcessNs {
		t.Errorf("PeakProcessNs %d < AvgProcessNs %d", m.PeakProcessNs, m.AvgProcessNs)
	}
}
