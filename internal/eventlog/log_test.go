package eventlog

import (
	"context"
	"testing"
	"time"

	pebblestore "github.com/JLoveI/EventStore/internal/storage/pebble"
)

func newTestLog(t *testing.T) *Log {
	t.Helper()
	dir := t.TempDir()
	db, err := pebblestore.Open(pebblestore.Options{DataDir: dir, Fsync: pebblestore.FsyncModeAlways})
	if err != nil {
		t.Fatalf("open pebble: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	l, err := OpenLog(db, "ns", "t", 1)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	return l
}

func TestAppendAssignsSequential(t *testing.T) {
	l := newTestLog(t)
	ctx := context.Background()
	seqs, err := l.Append(ctx, []AppendRecord{{Header: []byte("h1"), Payload: []byte("p1")}, {Header: []byte("h2"), Payload: []byte("p2")}})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if len(seqs) != 2 {
		t.Fatalf("want 2 seqs, got %d", len(seqs))
	}
	if !(seqs[0] < seqs[1]) {
		t.Fatalf("expected increasing seqs: %v", seqs)
	}
	if got := l.LastSeq(); got != seqs[1] {
		t.Fatalf("LastSeq() = %d, want %d", got, seqs[1])
	}
}

func TestReadPaginatesAndResumes(t *testing.T) {
	l := newTestLog(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if _, err := l.Append(ctx, []AppendRecord{{Payload: []byte{byte(i)}}}); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	page1, next := l.Read(ReadOptions{Limit: 2})
	if len(page1) != 2 {
		t.Fatalf("page1 len = %d, want 2", len(page1))
	}
	page2, _ := l.Read(ReadOptions{Start: next, Limit: 100})
	if len(page2) != 3 {
		t.Fatalf("page2 len = %d, want 3", len(page2))
	}
	if page1[0].Seq >= page2[0].Seq {
		t.Fatalf("expected ascending seqs across pages")
	}
}

func TestCursorIsMonotonicAndIdempotent(t *testing.T) {
	l := newTestLog(t)
	if err := l.CommitCursor("g1", TokenFromSeq(5)); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := l.CommitCursor("g1", TokenFromSeq(3)); err != nil {
		t.Fatalf("commit lower: %v", err)
	}
	tok, ok := l.GetCursor("g1")
	if !ok || tok.Seq() != 5 {
		t.Fatalf("cursor = %v, ok=%v, want 5", tok.Seq(), ok)
	}
}

func TestWaitForAppendWakesOnAppend(t *testing.T) {
	l := newTestLog(t)
	woke := make(chan bool, 1)
	go func() { woke <- l.WaitForAppend(0) }()
	// WaitForAppend only wakes on appends made after it has taken its
	// snapshot of notifyCh, so give the waiter time to block first.
	time.Sleep(50 * time.Millisecond)

	if _, err := l.Append(context.Background(), []AppendRecord{{Payload: []byte("x")}}); err != nil {
		t.Fatalf("append: %v", err)
	}
	select {
	case w := <-woke:
		if !w {
			t.Fatalf("expected wake=true")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for wake")
	}
}

func TestWaitForAppendTimesOut(t *testing.T) {
	l := newTestLog(t)
	if l.WaitForAppend(1) {
		t.Fatalf("expected timeout (false)")
	}
}
