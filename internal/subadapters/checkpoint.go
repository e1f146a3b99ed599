package subadapters

import (
	"context"

	"github.com/JLoveI/EventStore/internal/eventlog"
)

// PebbleCheckpointStore backs both subscription.CheckpointReader and
// subscription.CheckpointWriter with the log's own durable cursor
// (Log.CommitCursor / Log.GetCursor), the same idempotent, monotonic-only
// mechanism the log uses for its other consumer groups.
type PebbleCheckpointStore struct {
	log   *eventlog.Log
	group string
}

func NewPebbleCheckpointStore(log *eventlog.Log, group string) *PebbleCheckpointStore {
	return &PebbleCheckpointStore{log: log, group: group}
}

func (s *PebbleCheckpointStore) BeginLoadState(ctx context.Context, subscriptionID string, onStateLoaded func(lastAcked *uint64)) {
	go func() {
		tok, ok := s.log.GetCursor(s.group)
		if !ok {
			onStateLoaded(nil)
			return
		}
		v := tok.Seq()
		onStateLoaded(&v)
	}()
}

func (s *PebbleCheckpointStore) BeginWriteState(ctx context.Context, subscriptionID string, lastAcked uint64, onDone func(err error)) {
	go func() {
		err := s.log.CommitCursor(s.group, eventlog.TokenFromSeq(lastAcked))
		onDone(err)
	}()
}
