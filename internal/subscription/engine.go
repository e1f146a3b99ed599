package subscription

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JLoveI/EventStore/pkg/log"
)

// Engine is the persistent subscription engine (C7): a single-threaded
// actor coordinating the event buffer, client registry, dispatcher, retry
// tracker and checkpointer. Every exported method that reads or changes
// engine state posts a closure onto cmds; all of them except NotifyLiveEvent
// return only once the run loop has applied it. run is the only goroutine
// that ever mutates the fields below it.
type Engine struct {
	subscriptionID string

	cmds    chan func()
	stopped chan struct{}

	cfg        Config
	loader     EventLoader
	ckptWriter CheckpointWriter
	replySink  ReplySink
	logger     log.Logger

	buf     *eventBuffer
	reg     *clientRegistry
	disp    *dispatcher
	retries *retryTracker
	ckpt    *checkpointer
	hist    *historyReader

	state EngineState
}

// New validates cfg and constructs an Engine, starting its actor loop and
// kicking off the async checkpoint load. loader, ckptReader and ckptWriter
// are required and New fails with ErrInvalidArgument if any is nil.
// replySink may be nil: the engine still tracks dispatch and in-flight
// state but delivery is a no-op, which is useful for tests exercising
// dispatch in isolation.
func New(cfg Config, loader EventLoader, ckptReader CheckpointReader, ckptWriter CheckpointWriter, replySink ReplySink, logger log.Logger) (*Engine, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if loader == nil || ckptReader == nil || ckptWriter == nil {
		return nil, ErrInvalidArgument
	}
	if logger == nil {
		logger = log.NewLogger()
	}
	e := &Engine{
		subscriptionID: cfg.SubscriptionID(),
		cmds:           make(chan func(), 64),
		stopped:        make(chan struct{}),
		cfg:            cfg,
		loader:         loader,
		ckptWriter:     ckptWriter,
		replySink:      replySink,
		logger:         logger.WithComponent("subscription").WithField("subscriptionId", cfg.SubscriptionID()),
		buf:            newEventBuffer(cfg.HistoryBufferSize, cfg.LiveBufferSize),
		reg:            newClientRegistry(),
		disp:           newDispatcher(cfg.dispatchPolicy()),
		retries:        newRetryTracker(),
		state:          StateInitializing,
	}
	go e.run()
	e.post(func() { e.startCheckpointLoad(ckptReader) })
	return e, nil
}

func validateConfig(cfg Config) error {
	if cfg.StreamName == "" || cfg.GroupName == "" {
		return ErrInvalidArgument
	}
	if cfg.Timeout <= 0 || cfg.MaxRetryCount < 0 {
		return ErrInvalidArgument
	}
	if cfg.LiveBufferSize <= 0 || cfg.HistoryBufferSize <= 0 || cfg.ReadBatchSize <= 0 {
		return ErrInvalidArgument
	}
	return nil
}

func (e *Engine) tickInterval() time.Duration {
	d := e.cfg.Timeout / 4
	if d > 250*time.Millisecond {
		d = 250 * time.Millisecond
	}
	if d < 10*time.Millisecond {
		d = 10 * time.Millisecond
	}
	return d
}

// run is the actor loop: the only goroutine that mutates e.buf, e.reg,
// e.disp, e.retries, e.ckpt, e.hist or e.state.
func (e *Engine) run() {
	ticker := time.NewTicker(e.tickInterval())
	defer ticker.Stop()
	for {
		select {
		case f := <-e.cmds:
			f()
		case now := <-ticker.C:
			e.onTick(now)
		case <-e.stopped:
			return
		}
	}
}

// post enqueues f for execution on the actor loop. It is safe to call from
// any goroutine, including collaborator completion callbacks.
func (e *Engine) post(f func()) {
	select {
	case e.cmds <- f:
	case <-e.stopped:
	}
}

// call is like post but blocks the caller until f has run, for methods that
// need a synchronous-looking return value.
func (e *Engine) call(f func()) {
	done := make(chan struct{})
	e.post(func() {
		f()
		close(done)
	})
	select {
	case <-done:
	case <-e.stopped:
	}
}

func (e *Engine) startCheckpointLoad(reader CheckpointReader) {
	if reader == nil {
		e.onCheckpointLoaded(nil)
		return
	}
	reader.BeginLoadState(context.Background(), e.subscriptionID, func(lastAcked *uint64) {
		e.post(func() { e.onCheckpointLoaded(lastAcked) })
	})
}

func (e *Engine) onCheckpointLoaded(lastAcked *uint64) {
	initial := int64(-1)
	var start uint64
	switch {
	case lastAcked != nil:
		initial = int64(*lastAcked)
		start = *lastAcked + 1
	case e.cfg.StartFrom == StartFromCurrent:
		start = 0 // the live feed, not history, supplies events from here on
	default:
		start = uint64(e.cfg.StartFrom)
	}
	e.ckpt = newCheckpointer(initial)
	e.hist = newHistoryReader(e.loader, e.subscriptionID, start)
	if lastAcked == nil && e.cfg.StartFrom == StartFromCurrent {
		e.hist.caughtUp = true
		e.state = StateLive
		return
	}
	e.state = StateCatchingUp
	e.requestHistoryLoad()
}

// requestHistoryLoad issues a bounded read: at most historyRoom() events,
// so the loaded batch always fits enqueueHistory's cap. It is a no-op when
// the history segment has no room; the next tick retries once space opens
// up from acked/dispatched events.
func (e *Engine) requestHistoryLoad() {
	room := e.buf.historyRoom()
	if room <= 0 {
		return
	}
	batchSize := e.cfg.ReadBatchSize
	if room < batchSize {
		batchSize = room
	}
	e.hist.requestLoad(context.Background(), batchSize, func(events []StreamEvent, next uint64, caughtUp bool, err error) {
		e.post(func() { e.onHistoryLoaded(events, next, caughtUp, err) })
	})
}

func (e *Engine) onHistoryLoaded(events []StreamEvent, next uint64, caughtUp bool, err error) {
	if e.state == StateStopped {
		return
	}
	if err != nil {
		e.logger.Warn("history read failed, will retry", log.Err(fmt.Errorf("%w: %v", ErrReadFailed, err)))
		e.hist.completeLoad(e.hist.nextEventNumber, false)
		return
	}
	if len(events) > 0 {
		if enqErr := e.buf.enqueueHistory(events); enqErr != nil {
			e.fail(enqErr)
			return
		}
	}
	e.hist.completeLoad(next, caughtUp)
	if caughtUp {
		e.state = StateLive
	} else {
		e.requestHistoryLoad()
	}
	e.dispatchPending()
}

// fail moves the engine to StateStopped after a fatal internal invariant
// violation. In-flight work is abandoned; the caller is expected to
// recreate the subscription from the last persisted checkpoint.
func (e *Engine) fail(err error) {
	e.logger.Error("subscription engine stopping on fatal error", log.Err(err))
	e.state = StateStopped
}

// AddClient registers a client in the group. filter is an optional CEL
// expression evaluated against each candidate event.
func (e *Engine) AddClient(connectionID, correlationID string, replyTarget any, allowedOutstanding int, from, user, filter string) error {
	if connectionID == "" || correlationID == "" || allowedOutstanding <= 0 {
		return ErrInvalidArgument
	}
	e.call(func() {
		e.reg.add(connectionID, correlationID, replyTarget, allowedOutstanding, from, user, filter)
		e.dispatchPending()
	})
	return nil
}

// RemoveClient deregisters a client, requeuing its in-flight events as if
// each had been nak'd with NakRetry.
func (e *Engine) RemoveClient(correlationID string) {
	e.call(func() {
		idx, ok := e.reg.byID[correlationID]
		if !ok {
			return
		}
		removed, _ := e.reg.remove(correlationID)
		e.disp.onClientRemoved(idx)
		for _, entry := range removed.inFlight {
			e.retries.untrack(entry)
			e.buf.requeue(entry.buffered)
		}
		e.dispatchPending()
	})
}

// Ack acknowledges delivery of eventID to correlationID's client.
func (e *Engine) Ack(correlationID string, eventID uuid.UUID) error {
	var outErr error
	e.call(func() {
		c, ok := e.reg.get(correlationID)
		if !ok {
			outErr = ErrClientUnknown
			e.logger.Warn("ack from unknown client", log.Str("correlationId", correlationID))
			return
		}
		entry, ok := c.inFlight[uuid128(eventID)]
		if !ok {
			outErr = ErrEventUnknown
			e.logger.Warn("ack for unknown in-flight event", log.Str("correlationId", correlationID))
			return
		}
		delete(c.inFlight, uuid128(eventID))
		e.retries.untrack(entry)
		if e.cfg.LatencyStatistics {
			c.recordLatency(time.Since(entry.dispatchAt), latencyRingSize)
		}
		e.ckpt.ack(entry.buffered.Event.EventNumber)
		e.dispatchPending()
	})
	return outErr
}

// latencyRingSize bounds the per-client recent-latency ring buffer.
const latencyRingSize = 64

// Nak negatively acknowledges eventID for correlationID's client, applying
// action.
func (e *Engine) Nak(correlationID string, eventID uuid.UUID, action NakAction) error {
	var outErr error
	e.call(func() {
		c, ok := e.reg.get(correlationID)
		if !ok {
			outErr = ErrClientUnknown
			e.logger.Warn("nak from unknown client", log.Str("correlationId", correlationID))
			return
		}
		entry, ok := c.inFlight[uuid128(eventID)]
		if !ok {
			outErr = ErrEventUnknown
			e.logger.Warn("nak for unknown in-flight event", log.Str("correlationId", correlationID))
			return
		}
		delete(c.inFlight, uuid128(eventID))
		e.retries.untrack(entry)
		e.resolveNak(entry, action)
		e.dispatchPending()
	})
	return outErr
}

func (e *Engine) resolveNak(entry *inFlightEntry, action NakAction) {
	switch action {
	case NakSkip:
		e.ckpt.ack(entry.buffered.Event.EventNumber)
	case NakPark:
		e.buf.markParked(entry.buffered)
	default: // NakRetry
		e.buf.requeue(entry.buffered)
	}
}

// NotifyLiveEvent offers a newly-appended event to the engine. It is
// accepted only if it is contiguous with the read frontier (ev.EventNumber
// == the next eventNumber the engine expects, whether from history or a
// prior live offer); anything else is dropped, including a live buffer
// already at capacity. A dropped event beyond the frontier is expected to
// be recoverable from history once the reader catches up this far.
func (e *Engine) NotifyLiveEvent(ev StreamEvent) {
	e.post(func() {
		if e.state == StateStopped || e.hist == nil {
			return
		}
		if ev.EventNumber != e.hist.frontier() {
			return
		}
		if e.buf.enqueueLive(ev) {
			e.hist.advanceFrontier(ev.EventNumber)
		}
		e.dispatchPending()
	})
}

// dispatchPending drains the buffer, handing events to eligible clients
// until either the buffer empties or no client has free, matching capacity.
func (e *Engine) dispatchPending() {
	for {
		buffered, ok := e.buf.peek()
		if !ok {
			return
		}
		idx, ok := e.disp.pick(buffered.Event, e.reg)
		if !ok {
			return
		}
		e.buf.pop()
		e.deliverTo(idx, buffered)
	}
}

func (e *Engine) deliverTo(idx int, buffered BufferedEvent) {
	c := e.reg.order[idx]
	now := time.Now()
	entry := &inFlightEntry{
		buffered:   buffered,
		owner:      c,
		dispatchAt: now,
		deadline:   now.Add(e.cfg.Timeout),
	}
	c.inFlight[uuid128(buffered.Event.EventID)] = entry
	e.retries.track(entry)
	if e.replySink == nil {
		return
	}
	delivered := DeliveredEvent{
		Event:         buffered.Event,
		CorrelationID: c.CorrelationID,
		ConnectionID:  c.ConnectionID,
		DeliveredAt:   now,
	}
	if err := e.replySink.Send(c.ReplyTarget, delivered); err != nil {
		e.logger.Warn("reply send failed", log.Err(err), log.Str("correlationId", c.CorrelationID))
	}
}

// onTick runs the retry-timeout scan and checkpoint write scheduling.
// Called only from run, on the actor's own ticker.
func (e *Engine) onTick(now time.Time) {
	if e.state == StateStopped {
		return
	}
	if e.state == StateCatchingUp && e.hist != nil && !e.hist.outstanding && !e.hist.isCaughtUp() {
		e.requestHistoryLoad()
	}
	for _, entry := range e.retries.dueEntries(now) {
		delete(entry.owner.inFlight, uuid128(entry.buffered.Event.EventID))
		entry.buffered.RetryCount++
		if entry.buffered.RetryCount > e.cfg.MaxRetryCount {
			e.buf.markParked(entry.buffered)
		} else {
			e.buf.requeue(entry.buffered)
		}
	}
	e.dispatchPending()
	if e.ckpt != nil && e.ckptWriter != nil && e.ckpt.dueForWrite(e.cfg.CheckpointInterval, e.cfg.CheckpointMaxDelay, now) {
		value := e.ckpt.beginWrite()
		e.ckptWriter.BeginWriteState(context.Background(), e.subscriptionID, value, func(err error) {
			e.post(func() {
				e.ckpt.completeWrite(value, err, time.Now())
				if err != nil {
					e.logger.Warn("checkpoint write failed", log.Err(fmt.Errorf("%w: %v", ErrCheckpointWriteFailed, err)))
				}
			})
		})
	}
}

// Stop halts the actor loop. Further calls to Engine methods are no-ops.
func (e *Engine) Stop() {
	e.call(func() { e.state = StateStopped })
	close(e.stopped)
}

func (e *Engine) SubscriptionID() string { return e.subscriptionID }
func (e *Engine) StreamName() string     { return e.cfg.StreamName }
func (e *Engine) GroupName() string      { return e.cfg.GroupName }

func (e *Engine) State() EngineState {
	var s EngineState
	e.call(func() { s = e.state })
	return s
}

func (e *Engine) HasClients() bool {
	var has bool
	e.call(func() { has = e.reg.count() > 0 })
	return has
}

func (e *Engine) ClientCount() int {
	var n int
	e.call(func() { n = e.reg.count() })
	return n
}

// ParkedEvents returns a snapshot of the in-memory parked list.
func (e *Engine) ParkedEvents() []BufferedEvent {
	var out []BufferedEvent
	e.call(func() { out = e.buf.parkedSnapshot() })
	return out
}

// ClientLatency is a per-client dispatch-to-ack latency summary, populated
// only when Config.LatencyStatistics is enabled.
type ClientLatency struct {
	CorrelationID string
	SampleCount   int
	Recent        []time.Duration
}

// LatencySnapshot returns the recorded dispatch-to-ack latencies for every
// client, most recent samples only (see registry.go's ring buffer). When
// LatencyStatistics is disabled each entry's Recent slice is empty and its
// SampleCount is 0.
func (e *Engine) LatencySnapshot() []ClientLatency {
	var out []ClientLatency
	e.call(func() {
		e.reg.forEach(func(c *trackedClient) {
			recent := make([]time.Duration, len(c.latencies))
			copy(recent, c.latencies)
			out = append(out, ClientLatency{
				CorrelationID: c.CorrelationID,
				SampleCount:   c.latencyCount,
				Recent:        recent,
			})
		})
	})
	return out
}
