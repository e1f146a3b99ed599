package pebblestore

import (
	"context"
	"testing"
	"time"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(Options{
		DataDir:       t.TempDir(),
		Fsync:         FsyncModeInterval,
		FsyncInterval: 2 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSetGetRoundTrips(t *testing.T) {
	db := newTestDB(t)

	key, val := []byte("k1"), []byte("v1")
	if err := db.Set(key, val); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := db.Get(key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != string(val) {
		t.Fatalf("got %q want %q", got, val)
	}
}

func TestGetMissingKeyReturnsError(t *testing.T) {
	db := newTestDB(t)

	if _, err := db.Get([]byte("missing")); err == nil {
		t.Fatalf("expected error for missing key")
	}
}

func TestBatchCommitIsAtomic(t *testing.T) {
	db := newTestDB(t)

	b := db.NewBatch()
	if err := b.Set([]byte("a"), []byte("1"), nil); err != nil {
		t.Fatalf("batch set: %v", err)
	}
	if err := b.Set([]byte("b"), []byte("2"), nil); err != nil {
		t.Fatalf("batch set: %v", err)
	}
	if err := db.CommitBatch(context.Background(), b); err != nil {
		t.Fatalf("commit: %v", err)
	}

	for k, want := range map[string]string{"a": "1", "b": "2"} {
		got, err := db.Get([]byte(k))
		if err != nil {
			t.Fatalf("get %q: %v", k, err)
		}
		if string(got) != want {
			t.Fatalf("get %q = %q want %q", k, got, want)
		}
	}
}

func TestCommitBatchRejectsNilBatch(t *testing.T) {
	db := newTestDB(t)

	if err := db.CommitBatch(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil batch")
	}
}

func TestOpenRequiresDataDir(t *testing.T) {
	if _, err := Open(Options{}); err == nil {
		t.Fatalf("expected error for empty DataDir")
	}
}
