// Package optimizer is the high-rate event processing stage between the
// protocol decoder and dispatch.
//
// Terminals can report motion at hundreds of events per second; most of
// them are redundant. The optimizer applies, in order:
//
//  1. Deduplication — duplicate moves and same-type events arriving
//     within one frame interval are dropped.
//  2. Predictive throttling — independent per-type rate ceilings for
//     move and drag events.
//  3. Coordinate canonicalization — positions are interned in a bounded
//     FIFO cache.
//  4. Pooled allocation — surviving events are copied into pooled
//     objects rather than freshly allocated.
//  5. Frame batching (optional) — accepted events accumulate and flush
//     on frame boundaries.
//
// # Pooled Event Contract
//
// Events returned by Optimize are borrowed from a fixed-capacity pool.
// The caller uses them, then returns them with Release; retaining one
// past the call that produced it is a bug. When batching is enabled the
// optimizer releases batched events itself after the flush callback
// returns.
//
// Metrics are plain counters updated inside the pipeline; nothing polls
// terminal state.
package optimizer
