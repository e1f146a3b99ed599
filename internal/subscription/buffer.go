package subscription

// eventBuffer is a bounded FIFO ordered by EventNumber ascending, split into
// a history segment and a live segment. History always sorts before live
// when both are present; dispatch drains history first, preserving
// EventNumber order within each segment.
type eventBuffer struct {
	historyCap int
	liveCap    int

	history []BufferedEvent
	live    []BufferedEvent

	parked []BufferedEvent
}

func newEventBuffer(historyCap, liveCap int) *eventBuffer {
	return &eventBuffer{historyCap: historyCap, liveCap: liveCap}
}

// size returns the total number of pending entries across both segments.
func (b *eventBuffer) size() int { return len(b.history) + len(b.live) }

// historyRoom reports how many more history entries fit before the cap.
func (b *eventBuffer) historyRoom() int { return b.historyCap - len(b.history) }

// enqueueHistory appends a batch of history events, preserving ascending
// order. Returns ErrBufferOverflow if the batch would exceed historyCap;
// callers are expected to request at most historyRoom() events at a time,
// so this signals a caller/collaborator bug rather than routine backpressure.
func (b *eventBuffer) enqueueHistory(batch []StreamEvent) error {
	if len(batch) > b.historyRoom() {
		return ErrBufferOverflow
	}
	for _, e := range batch {
		b.history = append(b.history, BufferedEvent{Event: e, Source: SourceHistory})
	}
	return nil
}

// enqueueLive appends a single live event. It is a no-op when the live
// segment is already at capacity; the history reader is expected to
// re-fetch the dropped range once it catches up. Returns whether the
// event was accepted.
func (b *eventBuffer) enqueueLive(e StreamEvent) bool {
	if len(b.live) >= b.liveCap {
		return false
	}
	b.live = append(b.live, BufferedEvent{Event: e, Source: SourceLive})
	return true
}

// peek returns the head of the buffer (history first) without removing it.
func (b *eventBuffer) peek() (BufferedEvent, bool) {
	if len(b.history) > 0 {
		return b.history[0], true
	}
	if len(b.live) > 0 {
		return b.live[0], true
	}
	return BufferedEvent{}, false
}

// pop removes and returns the head of the buffer.
func (b *eventBuffer) pop() (BufferedEvent, bool) {
	if len(b.history) > 0 {
		e := b.history[0]
		b.history = b.history[1:]
		return e, true
	}
	if len(b.live) > 0 {
		e := b.live[0]
		b.live = b.live[1:]
		return e, true
	}
	return BufferedEvent{}, false
}

// requeue inserts an event into its original segment before the first entry
// with a higher EventNumber, preserving EventNumber ordering against any
// other requeued or pending entries in that segment.
func (b *eventBuffer) requeue(e BufferedEvent) {
	seg := &b.history
	if e.Source == SourceLive {
		seg = &b.live
	}
	idx := 0
	for idx < len(*seg) && (*seg)[idx].Event.EventNumber < e.Event.EventNumber {
		idx++
	}
	*seg = append(*seg, BufferedEvent{})
	copy((*seg)[idx+1:], (*seg)[idx:])
	(*seg)[idx] = e
}

// markParked appends e to the in-memory parked list retained for operator
// inspection. Parked events are not durably persisted. Removing e from
// wherever it previously lived is the caller's responsibility.
func (b *eventBuffer) markParked(e BufferedEvent) {
	b.parked = append(b.parked, e)
}

// parkedSnapshot returns a copy of the parked list for read-only inspection.
func (b *eventBuffer) parkedSnapshot() []BufferedEvent {
	out := make([]BufferedEvent, len(b.parked))
	copy(out, b.parked)
	return out
}
