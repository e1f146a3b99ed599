package subadapters

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JLoveI/EventStore/internal/eventlog"
	pebblestore "github.com/JLoveI/EventStore/internal/storage/pebble"
	"github.com/JLoveI/EventStore/internal/subscription"
)

func newTestLog(t *testing.T) *eventlog.Log {
	t.Helper()
	dir := t.TempDir()
	db, err := pebblestore.Open(pebblestore.Options{DataDir: dir, Fsync: pebblestore.FsyncModeAlways})
	if err != nil {
		t.Fatalf("open pebble: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	l, err := eventlog.OpenLog(db, "ns", "orders", 0)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	return l
}

func TestEventRoundTripsThroughEncodeDecode(t *testing.T) {
	ev := subscription.StreamEvent{
		EventID:   uuid.New(),
		EventType: "widget.created",
		Data:      []byte("payload"),
		Metadata:  []byte(`{"trace":"abc"}`),
	}
	rec := EncodeEvent(ev)
	item := eventlog.Item{Seq: 42, Header: rec.Header, Payload: rec.Payload}

	got, err := decodeStreamEvent(item)
	if err != nil {
		t.Fatalf("decodeStreamEvent: %v", err)
	}
	if got.EventNumber != 42 || got.EventID != ev.EventID || got.EventType != ev.EventType {
		t.Fatalf("decoded = %+v, want event number 42 matching %+v", got, ev)
	}
	if string(got.Data) != string(ev.Data) || string(got.Metadata) != string(ev.Metadata) {
		t.Fatalf("decoded payload/metadata mismatch: %+v", got)
	}
}

func TestPebbleEventLoaderReadsAppendedEvents(t *testing.T) {
	log := newTestLog(t)
	for i := 0; i < 3; i++ {
		rec := EncodeEvent(subscription.StreamEvent{EventID: uuid.New(), EventType: "t", Data: []byte{byte(i)}})
		if _, err := log.Append(context.Background(), []eventlog.AppendRecord{rec}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	loader := NewPebbleEventLoader(log)
	done := make(chan struct{})
	var gotEvents []subscription.StreamEvent
	var gotCaughtUp bool
	loader.BeginLoad(context.Background(), "orders:billing", 0, 10, func(events []subscription.StreamEvent, next uint64, caughtUp bool, err error) {
		if err != nil {
			t.Errorf("BeginLoad: %v", err)
		}
		gotEvents = events
		gotCaughtUp = caughtUp
		close(done)
	})
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for BeginLoad")
	}
	if len(gotEvents) != 3 || !gotCaughtUp {
		t.Fatalf("got %d events, caughtUp=%v; want 3, true", len(gotEvents), gotCaughtUp)
	}
}

func TestPebbleCheckpointStoreRoundTrips(t *testing.T) {
	log := newTestLog(t)
	store := NewPebbleCheckpointStore(log, "billing")

	loadDone := make(chan struct{})
	var loaded *uint64
	store.BeginLoadState(context.Background(), "orders:billing", func(lastAcked *uint64) {
		loaded = lastAcked
		close(loadDone)
	})
	<-loadDone
	if loaded != nil {
		t.Fatalf("expected no checkpoint before any write, got %v", *loaded)
	}

	writeDone := make(chan struct{})
	store.BeginWriteState(context.Background(), "orders:billing", 7, func(err error) {
		if err != nil {
			t.Errorf("BeginWriteState: %v", err)
		}
		close(writeDone)
	})
	<-writeDone

	loadDone2 := make(chan struct{})
	store.BeginLoadState(context.Background(), "orders:billing", func(lastAcked *uint64) {
		loaded = lastAcked
		close(loadDone2)
	})
	<-loadDone2
	if loaded == nil || *loaded != 7 {
		t.Fatalf("loaded = %v, want 7", loaded)
	}
}

func TestChannelReplySinkDeliversAndRejectsWrongTarget(t *testing.T) {
	sink := NewChannelReplySink()
	ch := make(chan subscription.DeliveredEvent, 1)
	if err := sink.Send(ch, subscription.DeliveredEvent{CorrelationID: "c1"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	select {
	case got := <-ch:
		if got.CorrelationID != "c1" {
			t.Fatalf("got %+v", got)
		}
	default:
		t.Fatalf("expected event to be delivered to channel")
	}

	if err := sink.Send("not-a-channel", subscription.DeliveredEvent{}); err != ErrReplyTargetInvalid {
		t.Fatalf("Send with wrong target = %v, want ErrReplyTargetInvalid", err)
	}
}
