package subscription

import "time"

// trackedClient is a connected client in the group, together with its
// derived in-flight state. Canonical ownership of an inFlightEntry is the
// client; the retry tracker keeps only a deadline-ordered back-reference.
type trackedClient struct {
	ConnectionID       string
	CorrelationID      string
	ReplyTarget        any
	AllowedOutstanding int
	From               string
	User               string
	Filter             string // optional CEL expression; empty means unfiltered
	compiledFilter     clientFilter

	inFlight map[uuid128]*inFlightEntry

	// latencies holds recent dispatch-to-ack durations when
	// Config.LatencyStatistics is enabled, as a small ring buffer.
	latencies    []time.Duration
	latencyNext  int
	latencyCount int
}

// uuid128 is the in-flight table key; kept as a distinct name so registry.go
// doesn't need to import uuid directly for the map type.
type uuid128 = [16]byte

func newTrackedClient(connectionID, correlationID string, replyTarget any, allowedOutstanding int, from, user, filter string) *trackedClient {
	c := &trackedClient{
		ConnectionID:       connectionID,
		CorrelationID:      correlationID,
		ReplyTarget:        replyTarget,
		AllowedOutstanding: allowedOutstanding,
		From:               from,
		User:               user,
		Filter:             filter,
		inFlight:           make(map[uuid128]*inFlightEntry),
	}
	if cf, err := newClientFilter(filter); err == nil {
		c.compiledFilter = cf
	}
	// A malformed filter expression degrades to unfiltered (compiledFilter's
	// zero value has enabled=false) rather than rejecting the join; New's
	// ErrInvalidArgument is reserved for construction-time subscription
	// parameters, not per-client options.
	return c
}

func (c *trackedClient) freeCapacity() int {
	return c.AllowedOutstanding - len(c.inFlight)
}

func (c *trackedClient) recordLatency(d time.Duration, cap int) {
	if cap <= 0 {
		return
	}
	if len(c.latencies) < cap {
		c.latencies = append(c.latencies, d)
	} else {
		c.latencies[c.latencyNext] = d
		c.latencyNext = (c.latencyNext + 1) % cap
	}
	c.latencyCount++
}

// clientRegistry is the ordered set of clients in the group (C2). Order is
// insertion order; it underlies both round-robin rotation and
// prefer-to-single fallback.
type clientRegistry struct {
	order []*trackedClient
	byID  map[string]int // correlationID -> index into order
}

func newClientRegistry() *clientRegistry {
	return &clientRegistry{byID: make(map[string]int)}
}

// add appends a client, idempotent by correlationID: a repeat add for an
// already-registered correlationID returns the existing client unchanged,
// whatever connectionID it carries.
func (r *clientRegistry) add(connectionID, correlationID string, replyTarget any, allowedOutstanding int, from, user, filter string) *trackedClient {
	if idx, ok := r.byID[correlationID]; ok {
		return r.order[idx]
	}
	c := newTrackedClient(connectionID, correlationID, replyTarget, allowedOutstanding, from, user, filter)
	r.byID[correlationID] = len(r.order)
	r.order = append(r.order, c)
	return c
}

// remove deregisters a client and returns its in-flight entries so the
// caller can requeue them, as if each had been nak'd.
func (r *clientRegistry) remove(correlationID string) (*trackedClient, bool) {
	idx, ok := r.byID[correlationID]
	if !ok {
		return nil, false
	}
	removed := r.order[idx]
	r.order = append(r.order[:idx], r.order[idx+1:]...)
	delete(r.byID, correlationID)
	for id, i := range r.byID {
		if i > idx {
			r.byID[id] = i - 1
		}
	}
	return removed, true
}

func (r *clientRegistry) get(correlationID string) (*trackedClient, bool) {
	idx, ok := r.byID[correlationID]
	if !ok {
		return nil, false
	}
	return r.order[idx], true
}

func (r *clientRegistry) count() int { return len(r.order) }

func (r *clientRegistry) forEach(f func(*trackedClient)) {
	for _, c := range r.order {
		f(c)
	}
}
