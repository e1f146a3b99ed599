package subscription

import "testing"

func TestEnqueueHistoryPreservesOrderAndCap(t *testing.T) {
	b := newEventBuffer(3, 10)
	if err := b.enqueueHistory([]StreamEvent{{EventNumber: 1}, {EventNumber: 2}}); err != nil {
		t.Fatalf("enqueueHistory: %v", err)
	}
	if got := b.historyRoom(); got != 1 {
		t.Fatalf("historyRoom = %d, want 1", got)
	}
	if err := b.enqueueHistory([]StreamEvent{{EventNumber: 3}, {EventNumber: 4}}); err != ErrBufferOverflow {
		t.Fatalf("enqueueHistory over cap = %v, want ErrBufferOverflow", err)
	}
}

func TestEnqueueLiveDropsAtCapacity(t *testing.T) {
	b := newEventBuffer(1, 1)
	if ok := b.enqueueLive(StreamEvent{EventNumber: 1}); !ok {
		t.Fatalf("first enqueueLive should succeed")
	}
	if ok := b.enqueueLive(StreamEvent{EventNumber: 2}); ok {
		t.Fatalf("enqueueLive over cap should be dropped, not accepted")
	}
	if b.size() != 1 {
		t.Fatalf("size = %d, want 1", b.size())
	}
}

func TestPeekAndPopDrainHistoryBeforeLive(t *testing.T) {
	b := newEventBuffer(2, 2)
	_ = b.enqueueHistory([]StreamEvent{{EventNumber: 5}})
	b.enqueueLive(StreamEvent{EventNumber: 1})

	head, ok := b.peek()
	if !ok || head.Event.EventNumber != 5 || head.Source != SourceHistory {
		t.Fatalf("peek = %+v, want history event 5", head)
	}
	popped, ok := b.pop()
	if !ok || popped.Event.EventNumber != 5 {
		t.Fatalf("pop = %+v, want history event 5", popped)
	}
	popped, ok = b.pop()
	if !ok || popped.Event.EventNumber != 1 || popped.Source != SourceLive {
		t.Fatalf("pop = %+v, want live event 1", popped)
	}
	if _, ok := b.pop(); ok {
		t.Fatalf("pop on empty buffer should report false")
	}
}

func TestRequeueInsertsBySegmentAndEventNumber(t *testing.T) {
	b := newEventBuffer(5, 5)
	_ = b.enqueueHistory([]StreamEvent{{EventNumber: 1}, {EventNumber: 3}})
	b.requeue(BufferedEvent{Event: StreamEvent{EventNumber: 2}, Source: SourceHistory})

	var nums []uint64
	for {
		e, ok := b.pop()
		if !ok {
			break
		}
		nums = append(nums, e.Event.EventNumber)
	}
	want := []uint64{1, 2, 3}
	if len(nums) != len(want) {
		t.Fatalf("got %v, want %v", nums, want)
	}
	for i := range want {
		if nums[i] != want[i] {
			t.Fatalf("got %v, want %v", nums, want)
		}
	}
}

func TestMarkParkedAndSnapshotIsACopy(t *testing.T) {
	b := newEventBuffer(5, 5)
	b.markParked(BufferedEvent{Event: StreamEvent{EventNumber: 7}})

	snap := b.parkedSnapshot()
	if len(snap) != 1 || snap[0].Event.EventNumber != 7 {
		t.Fatalf("parkedSnapshot = %+v", snap)
	}
	snap[0].Event.EventNumber = 999
	if b.parked[0].Event.EventNumber != 7 {
		t.Fatalf("parkedSnapshot must not alias internal storage")
	}
}
