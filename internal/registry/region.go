package registry

import "github.com/dshills/termclick/internal/pointer"

// Bounds is a rectangle on the terminal grid.
type Bounds struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Contains returns true if the point lies inside the rectangle.
func (b Bounds) Contains(x, y int) bool {
	return x >= b.X && x < b.X+b.Width && y >= b.Y && y < b.Y+b.Height
}

// Intersects returns true if two rectangles overlap.
func (b Bounds) Intersects(other Bounds) bool {
	return b.X < other.X+other.Width && other.X < b.X+b.Width &&
		b.Y < other.Y+other.Height && other.Y < b.Y+b.Height
}

// Handlers holds per-region event callbacks. Any field may be nil.
type Handlers struct {
	OnClick func(pointer.Event)
	OnDrag  func(pointer.Event)
	OnHover func(pointer.Event)
	OnLeave func(pointer.Event)
}

// Accessibility carries the accessible description of a region.
// Consumers outside this subsystem turn it into announcements; here it
// is only validated for presence.
type Accessibility struct {
	// Label is the accessible name. Required.
	Label string
	// Role describes what the region is (button, tab, scrollbar, ...).
	Role string
}

// Priority bounds for regions.
const (
	MinPriority = 0
	MaxPriority = 1000
)

// Region is an interactive rectangle. The registry owns registered
// regions; callers mutate them through registry methods, not directly.
type Region struct {
	// ID uniquely identifies the region.
	ID string

	// Type groups regions for queries (button, panel, list-row, ...).
	Type string

	// Bounds is the region rectangle. Width and Height must be positive,
	// X and Y non-negative.
	Bounds Bounds

	// Enabled regions participate in hit-testing.
	Enabled bool

	// Visible regions participate in hit-testing.
	Visible bool

	// Priority breaks overlaps: higher wins. Range [0, 1000].
	Priority int

	// Handlers are the region's event callbacks.
	Handlers Handlers

	// Accessibility is the accessible description. Label is required.
	Accessibility Accessibility

	// Style is opaque presentation data carried for consumers.
	Style map[string]string
}

// HitTestable returns true if the region participates in hit-testing.
func (r *Region) HitTestable() bool {
	return r.Enabled && r.Visible
}
