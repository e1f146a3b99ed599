package subscription

import "testing"

func TestClientRegistryAddIsIdempotentByCorrelationID(t *testing.T) {
	r := newClientRegistry()
	c1 := r.add("conn-1", "corr-1", nil, 4, "", "", "")
	c2 := r.add("conn-1", "corr-1", nil, 4, "", "", "")
	if c1 != c2 {
		t.Fatalf("re-adding the same correlationID should return the existing client")
	}
	if r.count() != 1 {
		t.Fatalf("count = %d, want 1", r.count())
	}
}

func TestClientRegistryRemoveReindexesByID(t *testing.T) {
	r := newClientRegistry()
	r.add("conn-1", "a", nil, 1, "", "", "")
	r.add("conn-2", "b", nil, 1, "", "", "")
	r.add("conn-3", "c", nil, 1, "", "", "")

	removed, ok := r.remove("a")
	if !ok || removed.CorrelationID != "a" {
		t.Fatalf("remove(a) = %+v, %v", removed, ok)
	}
	if r.count() != 2 {
		t.Fatalf("count = %d, want 2", r.count())
	}
	b, ok := r.get("b")
	if !ok || r.order[r.byID["b"]] != b {
		t.Fatalf("byID index for b is stale after removal")
	}
	c, ok := r.get("c")
	if !ok || r.order[r.byID["c"]] != c {
		t.Fatalf("byID index for c is stale after removal")
	}
}

func TestFreeCapacityReflectsInFlightCount(t *testing.T) {
	c := newTrackedClient("conn", "corr", nil, 2, "", "", "")
	if c.freeCapacity() != 2 {
		t.Fatalf("freeCapacity = %d, want 2", c.freeCapacity())
	}
	c.inFlight[uuid128{1}] = &inFlightEntry{}
	if c.freeCapacity() != 1 {
		t.Fatalf("freeCapacity = %d, want 1", c.freeCapacity())
	}
}

func TestMalformedFilterDegradesToUnfiltered(t *testing.T) {
	c := newTrackedClient("conn", "corr", nil, 1, "", "", "not( valid cel [[[")
	if c.compiledFilter.enabled {
		t.Fatalf("malformed filter expression should degrade to disabled, not error out")
	}
	if !c.compiledFilter.eval(StreamEvent{EventType: "anything"}) {
		t.Fatalf("disabled filter must pass every event")
	}
}

func TestRecordLatencyWrapsRingBuffer(t *testing.T) {
	c := newTrackedClient("conn", "corr", nil, 1, "", "", "")
	for i := 0; i < 5; i++ {
		c.recordLatency(1, 3)
	}
	if len(c.latencies) != 3 {
		t.Fatalf("latencies len = %d, want 3", len(c.latencies))
	}
	if c.latencyCount != 5 {
		t.Fatalf("latencyCount = %d, want 5", c.latencyCount)
	}
}
