package subscription

import "time"

// checkpointer computes the highest contiguous acknowledged event number
// and schedules durable writes (C5). lastAcked of -1 means nothing has been
// acknowledged yet; dispatch then begins per Config.StartFrom.
type checkpointer struct {
	lastAcked int64
	acked     map[uint64]struct{}

	ackedSincePersist int
	lastPersistAt     time.Time
	persisted         int64 // highest value known to be durably written, -1 if never
	writeInFlight     bool
	writeFailed       bool
}

func newCheckpointer(initial int64) *checkpointer {
	return &checkpointer{
		lastAcked:     initial,
		acked:         make(map[uint64]struct{}),
		persisted:     initial,
		lastPersistAt: time.Now(),
	}
}

// ack records that eventNumber was acknowledged and advances lastAcked by
// repeatedly consuming contiguous successors. Acking an event at or below
// the current lastAcked is a no-op (idempotent).
func (c *checkpointer) ack(eventNumber uint64) {
	if int64(eventNumber) <= c.lastAcked {
		return
	}
	c.acked[eventNumber] = struct{}{}
	c.ackedSincePersist++
	for {
		next := uint64(c.lastAcked + 1)
		if _, ok := c.acked[next]; !ok {
			break
		}
		delete(c.acked, next)
		c.lastAcked = int64(next)
	}
}

// dueForWrite reports whether a durable write should be scheduled now.
// Writes are serialized: a write already in flight suppresses scheduling a
// second one regardless of how far lastAcked has advanced since.
func (c *checkpointer) dueForWrite(interval int, maxDelay time.Duration, now time.Time) bool {
	if c.writeInFlight {
		return false
	}
	if c.lastAcked <= c.persisted {
		return false
	}
	if c.writeFailed {
		return true
	}
	if interval > 0 && c.ackedSincePersist >= interval {
		return true
	}
	return maxDelay > 0 && now.Sub(c.lastPersistAt) >= maxDelay
}

// beginWrite marks a write in flight and returns the value to persist.
func (c *checkpointer) beginWrite() uint64 {
	c.writeInFlight = true
	return uint64(c.lastAcked)
}

// completeWrite records the outcome of a durable write started by beginWrite.
// On failure the value is left pending: the next dueForWrite check retries
// immediately rather than waiting out the interval/delay again.
func (c *checkpointer) completeWrite(value uint64, err error, now time.Time) {
	c.writeInFlight = false
	if err != nil {
		c.writeFailed = true
		return
	}
	c.writeFailed = false
	if int64(value) > c.persisted {
		c.persisted = int64(value)
	}
	c.ackedSincePersist = 0
	c.lastPersistAt = now
}
