package subscription

import "context"

// EventLoader pages historical events out of the underlying log storage.
// At most one BeginLoad call is ever outstanding per subscription; the
// engine waits for onCompleted before issuing another. onCompleted delivers
// events ordered by ascending EventNumber plus the next number to read
// from, or caughtUp true when the read has reached the live tail. A
// non-nil err is a ReadFailed condition: the engine logs it and retries the
// same startEventNumber on the next scheduled load rather than advancing.
type EventLoader interface {
	BeginLoad(ctx context.Context, subscriptionID string, startEventNumber uint64, countToLoad int, onCompleted func(events []StreamEvent, nextEventNumber uint64, caughtUp bool, err error))
}

// CheckpointReader loads the last durably persisted checkpoint exactly once
// per subscription lifetime. A nil *uint64 means no checkpoint was ever
// written; dispatch then begins at the configured StartFrom.
type CheckpointReader interface {
	BeginLoadState(ctx context.Context, subscriptionID string, onStateLoaded func(lastAcked *uint64))
}

// CheckpointWriter durably persists a checkpoint value. Calls are serialized
// by the engine: at most one outstanding write, and a newer value supersedes
// a pending one. The engine treats writes as best-effort; a failure is
// logged and the next scheduled write retries the latest value.
type CheckpointWriter interface {
	BeginWriteState(ctx context.Context, subscriptionID string, lastAcked uint64, onDone func(err error))
}

// ReplySink delivers a dispatched event to a connected client. Send is
// assumed to be a non-blocking enqueue; delivery acknowledgement comes back
// to the engine as Ack/Nak calls, not as a return value from Send.
type ReplySink interface {
	Send(replyTarget any, event DeliveredEvent) error
}
