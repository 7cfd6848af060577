// Package bridge connects the wire parser, platform detector, event
// optimizer, and region registry into one input front end.
//
// A Bridge consumes raw terminal input, strips and decodes mouse
// reports (carrying partial escape sequences over to the next chunk),
// refines them into gestures (click counting, drag synthesis, hover
// and leave transitions), runs them through the optimizer pipeline,
// and dispatches the survivors to typed callbacks.
//
// ProcessInput is designed for a single input-reading goroutine; the
// dispatch callbacks may additionally fire from the batch flush timer
// when frame batching is enabled.
package bridge
