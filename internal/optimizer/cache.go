package optimizer

import (
	"strconv"

	"github.com/dshills/termclick/internal/pointer"
)

// coordCache interns coordinate pairs. Repeated positions (a pointer
// parked on one cell emitting motion reports) resolve to one canonical
// value instead of a fresh pair per event. Eviction is FIFO once the
// cache reaches capacity.
type coordCache struct {
	entries  map[string]pointer.Position
	order    []string
	capacity int

	hits   uint64
	misses uint64
}

func newCoordCache(capacity int) *coordCache {
	return &coordCache{
		entries:  make(map[string]pointer.Position, capacity),
		order:    make([]string, 0, capacity),
		capacity: capacity,
	}
}

// Get returns the canonical position for (x, y), inserting it on first
// sight and evicting the oldest entry when full.
func (c *coordCache) Get(x, y int) pointer.Position {
	key := strconv.Itoa(x) + "," + strconv.Itoa(y)

	if pos, ok := c.entries[key]; ok {
		c.hits++
		return pos
	}
	c.misses++

	if len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	pos := pointer.Position{X: x, Y: y}
	c.entries[key] = pos
	c.order = append(c.order, key)
	return pos
}

// Len returns the number of cached positions.
func (c *coordCache) Len() int {
	return len(c.entries)
}

// Stats returns hit and miss counts.
func (c *coordCache) Stats() (hits, misses uint64) {
	return c.hits, c.misses
}
