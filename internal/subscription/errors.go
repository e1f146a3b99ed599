package subscription

import "errors"

// Error kinds per the error handling design. Construction-time validation
// errors (ErrInvalidArgument) are surfaced synchronously from New. All
// others are isolated and local: a failing client does not affect others,
// a failing collaborator does not corrupt engine state.
var (
	// ErrInvalidArgument is returned by New when required parameters are missing.
	ErrInvalidArgument = errors.New("subscription: invalid argument")
	// ErrClientUnknown is logged and ignored: ack/nak referenced an unknown correlation id.
	ErrClientUnknown = errors.New("subscription: unknown client")
	// ErrEventUnknown is logged and ignored: ack/nak referenced an event not in that client's in-flight table.
	ErrEventUnknown = errors.New("subscription: unknown in-flight event")
	// ErrCheckpointWriteFailed is logged; the next scheduled write retries the latest value.
	ErrCheckpointWriteFailed = errors.New("subscription: checkpoint write failed")
	// ErrReadFailed is logged; the history reader retries after a short backoff.
	ErrReadFailed = errors.New("subscription: history read failed")
	// ErrBufferOverflow is a fatal internal invariant violation; the engine stops.
	ErrBufferOverflow = errors.New("subscription: buffer overflow")
	// ErrStopped names the stopped condition. Engine methods called after
	// Stop do not return it: they are no-ops (see Engine.Stop).
	ErrStopped = errors.New("subscription: engine stopped")
)
