// Package subadapters wires the transport-agnostic subscription engine to
// concrete collaborators: a Pebble-backed event log for history reads and
// durable checkpoints, and an in-process channel reply sink for delivery.
//
// The adapters satisfy the engine's capability interfaces
// (subscription.EventLoader, subscription.CheckpointReader,
// subscription.CheckpointWriter, subscription.ReplySink); one
// PebbleCheckpointStore serves as both reader and writer. They do their I/O
// off the caller's goroutine, re-entering the engine only through the
// completion callback it was given. The engine itself posts that callback
// onto its own actor loop, so adapters never need their own locking around
// engine state.
package subadapters
