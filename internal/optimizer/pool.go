package optimizer

import (
	"sync"

	"github.com/dshills/termclick/internal/pointer"
)

// eventPool is a fixed-capacity free list of event objects. Get falls
// back to heap allocation when the pool is empty; Put discards when the
// pool is full, so the pool never grows past its configured capacity.
type eventPool struct {
	mu       sync.Mutex
	free     []*pointer.Event
	capacity int
}

func newEventPool(capacity int) *eventPool {
	p := &eventPool{
		free:     make([]*pointer.Event, 0, capacity),
		capacity: capacity,
	}
	for i := 0; i < capacity; i++ {
		p.free = append(p.free, &pointer.Event{})
	}
	return p
}

// Get borrows an event from the pool, or heap-allocates one when the
// pool is exhausted.
func (p *eventPool) Get() *pointer.Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	if n := len(p.free); n > 0 {
		ev := p.free[n-1]
		p.free = p.free[:n-1]
		return ev
	}
	return &pointer.Event{}
}

// Put returns an event to the pool. Events beyond capacity are left for
// the garbage collector.
func (p *eventPool) Put(ev *pointer.Event) {
	if ev == nil {
		return
	}
	ev.Reset()

	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.free) < p.capacity {
		p.free = append(p.free, ev)
	}
}

// Size returns the current number of pooled objects.
func (p *eventPool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}
