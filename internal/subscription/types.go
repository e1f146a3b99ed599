// Package subscription implements the persistent subscription engine: a
// server-side cursor, shared by a group of competing consumer clients, over
// an append-only event stream.
//
// The Engine is a single-threaded actor: all public
// methods that touch engine state post a message onto an internal channel
// and the run loop is the
// only goroutine that ever touches buffer, registry, retry, or checkpoint
// state. External collaborators (the event loader, checkpoint reader and
// writer, and client reply sinks) are injected as capability interfaces
// and may be asynchronous; their completions re-enter the engine as
// messages, never as direct calls into locked state.
package subscription

import (
	"time"

	"github.com/google/uuid"
)

// EventSource tags where a buffered event came from.
type EventSource int

const (
	// SourceHistory marks an event paged in from persistent storage.
	SourceHistory EventSource = iota
	// SourceLive marks an event offered from the live tail feed.
	SourceLive
)

func (s EventSource) String() string {
	if s == SourceLive {
		return "live"
	}
	return "history"
}

// StreamEvent is an immutable record read from, or offered to, the engine.
type StreamEvent struct {
	EventNumber uint64
	EventID     uuid.UUID
	EventType   string
	Data        []byte
	Metadata    []byte
	// Position is an opaque token identifying this event's place in the
	// live feed; collaborators use it, the engine never interprets it.
	Position []byte
}

// BufferedEvent is a StreamEvent tagged with its origin and retry history.
type BufferedEvent struct {
	Event      StreamEvent
	Source     EventSource
	RetryCount int
}

// DispatchPolicy selects how the Dispatcher picks a client for the next event.
type DispatchPolicy int

const (
	// PreferRoundRobin rotates across clients with free capacity.
	PreferRoundRobin DispatchPolicy = iota
	// PreferDispatchToSingle sticks to one client until it saturates.
	PreferDispatchToSingle
)

// NakAction selects how a negatively-acknowledged event is handled.
type NakAction int

const (
	// NakRetry requeues the event without counting against maxRetryCount.
	NakRetry NakAction = iota
	// NakPark moves the event straight to the parked list.
	NakPark
	// NakSkip treats the event as acknowledged for checkpointing purposes.
	NakSkip
)

// DeliveredEvent is what a ReplySink receives: the event together with the
// correlation identifiers the client must echo back on ack/nak.
type DeliveredEvent struct {
	Event         StreamEvent
	CorrelationID string
	ConnectionID  string
	DeliveredAt   time.Time
}

// inFlightEntry is held jointly by the owning client and the retry tracker;
// the client is the canonical owner, the tracker keeps a deadline-ordered
// back-reference for timeout scans. owner is a direct pointer rather than a
// registry index so the entry stays valid across registry reindexing when
// other clients are removed.
type inFlightEntry struct {
	buffered   BufferedEvent
	owner      *trackedClient
	dispatchAt time.Time
	deadline   time.Time
}

// EngineState is the subscription's coarse lifecycle state.
type EngineState int

const (
	StateInitializing EngineState = iota
	StateCatchingUp
	StateLive
	StateStopped
)

func (s EngineState) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateCatchingUp:
		return "catching_up"
	case StateLive:
		return "live"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
