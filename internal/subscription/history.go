package subscription

import "context"

// historyReader wraps the injected EventLoader and enforces the single-
// outstanding-read invariant (C6): at most one BeginLoad call is in flight
// at a time, so the engine never has to reconcile two concurrent batches
// landing out of order. The engine owns when to call requestLoad; the
// loader's completion callback re-enters the engine as a posted message,
// never as a direct call into engine state, so the actor loop remains the
// only mutator.
type historyReader struct {
	loader          EventLoader
	subscriptionID  string
	nextEventNumber uint64
	outstanding     bool
	caughtUp        bool
}

func newHistoryReader(loader EventLoader, subscriptionID string, startEventNumber uint64) *historyReader {
	return &historyReader{
		loader:          loader,
		subscriptionID:  subscriptionID,
		nextEventNumber: startEventNumber,
	}
}

// requestLoad issues a BeginLoad for the next batch if one isn't already
// outstanding and history hasn't already caught up to the live tail. deliver
// is invoked from whatever goroutine the loader completes on; callers must
// post it back onto the engine's own message channel rather than acting on
// engine state directly from within deliver.
func (h *historyReader) requestLoad(ctx context.Context, batchSize int, deliver func(events []StreamEvent, nextEventNumber uint64, caughtUp bool, err error)) bool {
	if h.outstanding || h.caughtUp || h.loader == nil {
		return false
	}
	h.outstanding = true
	h.loader.BeginLoad(ctx, h.subscriptionID, h.nextEventNumber, batchSize, deliver)
	return true
}

// completeLoad records the result of a load previously started by
// requestLoad. It must be called from the engine's actor loop. On a
// ReadFailed condition the caller passes the unchanged nextEventNumber so
// the next requestLoad retries the same range.
func (h *historyReader) completeLoad(nextEventNumber uint64, caughtUp bool) {
	h.outstanding = false
	h.nextEventNumber = nextEventNumber
	if caughtUp {
		h.caughtUp = true
	}
}

// isCaughtUp reports whether history has been fully drained up to the live
// tail as of the last completed load, signalling the engine may transition
// from CatchingUp to Live.
func (h *historyReader) isCaughtUp() bool {
	return h.caughtUp
}

// frontier returns the next eventNumber the engine expects to see next,
// from either a history page or a live offer.
func (h *historyReader) frontier() uint64 {
	return h.nextEventNumber
}

// advanceFrontier records that eventNumber was accepted as a live event so
// a later history page starting at or before it does not re-deliver it.
// A no-op if eventNumber isn't the current frontier.
func (h *historyReader) advanceFrontier(eventNumber uint64) {
	if eventNumber == h.nextEventNumber {
		h.nextEventNumber++
	}
}
