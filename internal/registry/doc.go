// Package registry tracks interactive screen regions and answers
// point-containment queries against them.
//
// Regions are rectangles with an id, a priority, enable/visibility flags,
// and handler callbacks. The registry owns each region from Register
// until Unregister or Clear. Hit-testing runs through a quadtree index;
// the index is a disposable cache rebuilt from the region map on every
// mutation, never the source of truth.
//
// # Resolution Rule
//
// FindAt returns the enabled, visible region containing the point with
// the strictly highest priority. Ties resolve to the region visited
// first by the spatial search: quadrants in NW, NE, SW, SE order, and
// registration order within a leaf. The linear fallback visits regions
// in registration order, which yields the same winner for any region
// set; this equivalence is the index's core correctness property.
package registry
