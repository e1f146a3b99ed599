package subscription

import "testing"

func saturate(c *trackedClient) {
	for i := 0; i < c.AllowedOutstanding; i++ {
		c.inFlight[uuid128{byte(i)}] = &inFlightEntry{}
	}
}

func TestRoundRobinRotatesAcrossFreeClients(t *testing.T) {
	reg := newClientRegistry()
	reg.add("c1", "a", nil, 1, "", "", "")
	reg.add("c2", "b", nil, 1, "", "", "")
	d := newDispatcher(PreferRoundRobin)

	first, ok := d.pick(StreamEvent{}, reg)
	if !ok || first != 0 {
		t.Fatalf("first pick = %d, %v, want 0, true", first, ok)
	}
	second, ok := d.pick(StreamEvent{}, reg)
	if !ok || second != 1 {
		t.Fatalf("second pick = %d, %v, want 1, true", second, ok)
	}
}

func TestRoundRobinSkipsSaturatedClients(t *testing.T) {
	reg := newClientRegistry()
	a := reg.add("c1", "a", nil, 1, "", "", "")
	reg.add("c2", "b", nil, 1, "", "", "")
	saturate(a)
	d := newDispatcher(PreferRoundRobin)

	idx, ok := d.pick(StreamEvent{}, reg)
	if !ok || idx != 1 {
		t.Fatalf("pick = %d, %v, want 1, true (a is saturated)", idx, ok)
	}
}

func TestPickReturnsFalseWhenNoClients(t *testing.T) {
	d := newDispatcher(PreferRoundRobin)
	if _, ok := d.pick(StreamEvent{}, newClientRegistry()); ok {
		t.Fatalf("pick on empty registry should report false")
	}
}

func TestStickyDispatchPinsToFirstClient(t *testing.T) {
	reg := newClientRegistry()
	reg.add("c1", "a", nil, 5, "", "", "")
	reg.add("c2", "b", nil, 5, "", "", "")
	d := newDispatcher(PreferDispatchToSingle)

	for i := 0; i < 4; i++ {
		idx, ok := d.pick(StreamEvent{}, reg)
		if !ok || idx != 0 {
			t.Fatalf("pick %d = %d, %v, want 0, true", i, idx, ok)
		}
	}
}

func TestStickyFallsThroughWhenSaturatedWithoutLosingPin(t *testing.T) {
	reg := newClientRegistry()
	a := reg.add("c1", "a", nil, 1, "", "", "")
	reg.add("c2", "b", nil, 1, "", "", "")
	d := newDispatcher(PreferDispatchToSingle)

	idx, ok := d.pick(StreamEvent{}, reg)
	if !ok || idx != 0 {
		t.Fatalf("first pick = %d, %v, want 0, true", idx, ok)
	}
	saturate(a)
	idx, ok = d.pick(StreamEvent{}, reg)
	if !ok || idx != 1 {
		t.Fatalf("second pick = %d, %v, want 1 (fallthrough)", idx, ok)
	}
	if d.sticky != 0 {
		t.Fatalf("sticky pin moved to %d, want it to remain 0", d.sticky)
	}
}

func TestOnClientRemovedAdjustsCursors(t *testing.T) {
	d := newDispatcher(PreferDispatchToSingle)
	d.sticky = 2
	d.roundRobin = 2
	d.onClientRemoved(0)
	if d.sticky != 1 {
		t.Fatalf("sticky = %d, want 1 after removing an earlier client", d.sticky)
	}
	if d.roundRobin != 1 {
		t.Fatalf("roundRobin = %d, want 1 after removing an earlier client", d.roundRobin)
	}
	d.onClientRemoved(1)
	if d.sticky != -1 {
		t.Fatalf("sticky = %d, want -1 after removing the sticky client itself", d.sticky)
	}
}

func TestFilteredClientIsSkipped(t *testing.T) {
	reg := newClientRegistry()
	reg.add("c1", "a", nil, 1, "", "", `event_type == "widget.created"`)
	reg.add("c2", "b", nil, 1, "", "", "")
	d := newDispatcher(PreferRoundRobin)

	idx, ok := d.pick(StreamEvent{EventType: "widget.deleted"}, reg)
	if !ok || idx != 1 {
		t.Fatalf("pick = %d, %v, want 1 (a's filter excludes this event)", idx, ok)
	}
}
