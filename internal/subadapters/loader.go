package subadapters

import (
	"context"

	"github.com/JLoveI/EventStore/internal/eventlog"
	"github.com/JLoveI/EventStore/internal/subscription"
)

// PebbleEventLoader backs subscription.EventLoader with a single
// eventlog.Log. It is scoped to one stream; subscriptionID is accepted for
// interface conformance and logging but the Log itself already identifies
// the stream being read.
type PebbleEventLoader struct {
	log *eventlog.Log
}

func NewPebbleEventLoader(log *eventlog.Log) *PebbleEventLoader {
	return &PebbleEventLoader{log: log}
}

// BeginLoad reads off the caller's goroutine so a slow disk read never
// blocks the engine's actor loop, and reports the result back through
// onCompleted exactly once.
func (a *PebbleEventLoader) BeginLoad(ctx context.Context, subscriptionID string, startEventNumber uint64, countToLoad int, onCompleted func(events []subscription.StreamEvent, nextEventNumber uint64, caughtUp bool, err error)) {
	go func() {
		items, next := a.log.Read(eventlog.ReadOptions{
			Start: eventlog.TokenFromSeq(startEventNumber),
			Limit: countToLoad,
		})
		events := make([]subscription.StreamEvent, 0, len(items))
		for _, item := range items {
			ev, err := decodeStreamEvent(item)
			if err != nil {
				onCompleted(nil, startEventNumber, false, err)
				return
			}
			events = append(events, ev)
		}
		caughtUp := len(items) < countToLoad
		onCompleted(events, next.Seq(), caughtUp, nil)
	}()
}
