package registry

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/termclick/internal/logging"
)

// ChangeKind identifies a region lifecycle notification.
type ChangeKind uint8

const (
	// ChangeAdded is emitted on registration.
	ChangeAdded ChangeKind = iota
	// ChangeUpdated is emitted when a region's fields change.
	ChangeUpdated
	// ChangeRemoved is emitted on unregistration.
	ChangeRemoved
	// ChangeEnabled is emitted when a region becomes enabled.
	ChangeEnabled
	// ChangeDisabled is emitted when a region becomes disabled.
	ChangeDisabled
	// ChangeMoved is emitted when a region's origin changes.
	ChangeMoved
)

// String returns a string representation of the change kind.
func (k ChangeKind) String() string {
	switch k {
	case ChangeAdded:
		return "added"
	case ChangeUpdated:
		return "updated"
	case ChangeRemoved:
		return "removed"
	case ChangeEnabled:
		return "enabled"
	case ChangeDisabled:
		return "disabled"
	case ChangeMoved:
		return "moved"
	default:
		return "unknown"
	}
}

// ChangeRecord describes one region mutation.
type ChangeRecord struct {
	// ID uniquely identifies this notification.
	ID string

	// RegionID is the region that changed.
	RegionID string

	// Kind is what happened.
	Kind ChangeKind

	// Timestamp is when the mutation was applied.
	Timestamp time.Time
}

// DefaultHistoryLimit bounds the retained change history.
const DefaultHistoryLimit = 64

// Config configures a Registry.
type Config struct {
	// Bounds is the terminal rectangle the index covers. The index root
	// always equals the current terminal bounds; use Resize on terminal
	// size changes.
	Bounds Bounds

	// Index is the spatial strategy. Defaults to a QuadTree with default
	// limits. Swap in Linear (or an incremental index) without touching
	// callers.
	Index Strategy

	// HistoryLimit bounds the change history. Non-positive takes the
	// default.
	HistoryLimit int

	// Logger receives overlap warnings and debug output.
	Logger *logging.Logger
}

// Registry owns the region set and its spatial index.
type Registry struct {
	mu sync.RWMutex

	regions map[string]*Region
	order   []string

	bounds Bounds
	index  Strategy

	history      []ChangeRecord
	historyLimit int
	onChange     func(ChangeRecord)

	logger *logging.Logger
}

// New creates a registry covering the given terminal bounds.
func New(cfg Config) *Registry {
	if cfg.Index == nil {
		cfg.Index = NewQuadTree(0, 0)
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = DefaultHistoryLimit
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop
	}

	r := &Registry{
		regions:      make(map[string]*Region),
		bounds:       cfg.Bounds,
		index:        cfg.Index,
		historyLimit: cfg.HistoryLimit,
		logger:       cfg.Logger.WithComponent("registry"),
	}
	r.index.Rebuild(r.bounds, nil)
	return r
}

// OnChange sets the change notification callback. The callback runs
// synchronously under the registry lock and must not call back into the
// registry.
func (r *Registry) OnChange(fn func(ChangeRecord)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onChange = fn
}

// Register adds a region. Validation failures come back as the complete
// list of violated constraints; a duplicate id is its own error. Regions
// overlapping at equal priority are accepted with a warning.
func (r *Registry) Register(region Region) error {
	if err := validate(region).AsError(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.regions[region.ID]; exists {
		return fmt.Errorf("%q: %w", region.ID, ErrDuplicateID)
	}

	for _, id := range r.order {
		other := r.regions[id]
		if other.Priority == region.Priority && other.Bounds.Intersects(region.Bounds) {
			r.logger.Warn("regions %q and %q overlap at equal priority %d; hit-test order decides",
				other.ID, region.ID, region.Priority)
		}
	}

	stored := region
	r.regions[region.ID] = &stored
	r.order = append(r.order, region.ID)
	r.rebuildLocked()
	r.recordLocked(region.ID, ChangeAdded)
	return nil
}

// Unregister removes a region.
func (r *Registry) Unregister(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.regions[id]; !exists {
		return fmt.Errorf("%q: %w", id, ErrNotFound)
	}

	delete(r.regions, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.rebuildLocked()
	r.recordLocked(id, ChangeRemoved)
	return nil
}

// Update replaces a region's fields. The id must already be registered
// and the new fields must pass the same validation as registration;
// failures leave the region untouched.
func (r *Registry) Update(region Region) error {
	if err := validate(region).AsError(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.regions[region.ID]
	if !exists {
		return fmt.Errorf("%q: %w", region.ID, ErrNotFound)
	}

	boundsChanged := current.Bounds != region.Bounds
	*current = region
	if boundsChanged {
		r.rebuildLocked()
	}
	r.recordLocked(region.ID, ChangeUpdated)
	return nil
}

// Move changes a region's origin, keeping its size.
func (r *Registry) Move(id string, x, y int) error {
	if x < 0 || y < 0 {
		errs := &ValidationErrors{}
		if x < 0 {
			errs.Add("bounds.x", "must be non-negative")
		}
		if y < 0 {
			errs.Add("bounds.y", "must be non-negative")
		}
		return errs
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	region, exists := r.regions[id]
	if !exists {
		return fmt.Errorf("%q: %w", id, ErrNotFound)
	}

	region.Bounds.X = x
	region.Bounds.Y = y
	r.rebuildLocked()
	r.recordLocked(id, ChangeMoved)
	return nil
}

// SetEnabled toggles a region's participation in hit-testing.
func (r *Registry) SetEnabled(id string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	region, exists := r.regions[id]
	if !exists {
		return fmt.Errorf("%q: %w", id, ErrNotFound)
	}
	if region.Enabled == enabled {
		return nil
	}

	region.Enabled = enabled
	kind := ChangeEnabled
	if !enabled {
		kind = ChangeDisabled
	}
	r.recordLocked(id, kind)
	return nil
}

// FindAt returns the enabled, visible region containing the point with
// the strictly highest priority, or nil. Ties resolve to the region the
// spatial search visits first.
func (r *Registry) FindAt(x, y int) *Region {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.resolve(r.index.Candidates(x, y), x, y)
}

// FindAtLinear is the linear-scan fallback. It must return the same
// region as FindAt for any region set.
func (r *Registry) FindAtLinear(x, y int) *Region {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.resolve(r.order, x, y)
}

// resolve picks the winner among candidate ids visited in order.
func (r *Registry) resolve(candidates []string, x, y int) *Region {
	var best *Region
	for _, id := range candidates {
		region, ok := r.regions[id]
		if !ok || !region.HitTestable() || !region.Bounds.Contains(x, y) {
			continue
		}
		if best == nil || region.Priority > best.Priority {
			best = region
		}
	}
	return best
}

// Criteria filters Query results. Zero fields match everything.
type Criteria struct {
	// Type matches the region type exactly when non-empty.
	Type string

	// Enabled filters on the enabled flag when non-nil.
	Enabled *bool

	// Visible filters on the visible flag when non-nil.
	Visible *bool

	// MinPriority excludes regions below it when non-nil.
	MinPriority *int
}

// Query returns regions matching the criteria, in registration order.
func (r *Registry) Query(c Criteria) []*Region {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Region
	for _, id := range r.order {
		region := r.regions[id]
		if c.Type != "" && region.Type != c.Type {
			continue
		}
		if c.Enabled != nil && region.Enabled != *c.Enabled {
			continue
		}
		if c.Visible != nil && region.Visible != *c.Visible {
			continue
		}
		if c.MinPriority != nil && region.Priority < *c.MinPriority {
			continue
		}
		out = append(out, region)
	}
	return out
}

// Get returns a region by id.
func (r *Registry) Get(id string) (*Region, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	region, ok := r.regions[id]
	return region, ok
}

// Len returns the number of registered regions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.regions)
}

// Resize updates the terminal bounds and rebuilds the index so the root
// node always covers the current terminal.
func (r *Registry) Resize(bounds Bounds) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bounds = bounds
	r.rebuildLocked()
}

// Clear removes every region.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range r.order {
		r.recordLocked(id, ChangeRemoved)
	}
	r.regions = make(map[string]*Region)
	r.order = nil
	r.rebuildLocked()
}

// History returns a copy of the bounded change history, oldest first.
func (r *Registry) History() []ChangeRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ChangeRecord, len(r.history))
	copy(out, r.history)
	return out
}

// rebuildLocked rederives the spatial index from the region map. Full
// rebuild is fine at terminal-UI scale; an incremental strategy can be
// swapped in through Config.Index if region counts grow.
func (r *Registry) rebuildLocked() {
	ordered := make([]*Region, 0, len(r.order))
	for _, id := range r.order {
		ordered = append(ordered, r.regions[id])
	}
	r.index.Rebuild(r.bounds, ordered)
}

// recordLocked appends a change record, FIFO-trimming the history.
func (r *Registry) recordLocked(regionID string, kind ChangeKind) {
	rec := ChangeRecord{
		ID:        uuid.NewString(),
		RegionID:  regionID,
		Kind:      kind,
		Timestamp: time.Now(),
	}

	r.history = append(r.history, rec)
	if len(r.history) > r.historyLimit {
		r.history = r.history[len(r.history)-r.historyLimit:]
	}

	if r.onChange != nil {
		r.onChange(rec)
	}
}
