package subscription

// dispatcher picks the next (event, client) pair according to policy and
// per-client capacity (C3). It holds only rotation state; buffer and
// registry state are owned by the engine and passed in on each call.
type dispatcher struct {
	policy     DispatchPolicy
	roundRobin int // next index to consider, for PreferRoundRobin
	sticky     int // index of the sticky client, for PreferDispatchToSingle; -1 if unset
}

func newDispatcher(policy DispatchPolicy) *dispatcher {
	return &dispatcher{policy: policy, sticky: -1}
}

// pick selects a client index eligible to receive e: it must have free
// capacity and, if it has a filter, the filter must match e. Round-robin
// walks clients in insertion order starting from its cursor and advances
// the cursor past whichever client is returned. Prefer-single tries the
// sticky client first; when it is saturated or filtered out, the event goes
// to the first eligible client in insertion order and the pin stays where
// it is. The pin is cleared only when its client disconnects.
func (d *dispatcher) pick(e StreamEvent, reg *clientRegistry) (int, bool) {
	n := reg.count()
	if n == 0 {
		return -1, false
	}
	switch d.policy {
	case PreferDispatchToSingle:
		return d.pickSticky(e, reg)
	default:
		return d.pickRoundRobin(e, reg)
	}
}

func (d *dispatcher) pickRoundRobin(e StreamEvent, reg *clientRegistry) (int, bool) {
	n := reg.count()
	if d.roundRobin >= n {
		d.roundRobin = 0
	}
	for i := 0; i < n; i++ {
		idx := (d.roundRobin + i) % n
		c := reg.order[idx]
		if c.freeCapacity() > 0 && c.compiledFilter.eval(e) {
			d.roundRobin = (idx + 1) % n
			return idx, true
		}
	}
	return -1, false
}

func (d *dispatcher) pickSticky(e StreamEvent, reg *clientRegistry) (int, bool) {
	n := reg.count()
	if d.sticky >= 0 && d.sticky < n {
		c := reg.order[d.sticky]
		if c.freeCapacity() > 0 && c.compiledFilter.eval(e) {
			return d.sticky, true
		}
	}
	// Sticky client is gone, saturated, or filtered out for this event:
	// fall through to the next client in insertion order for this event
	// only. The pin is set here only while it is unset; onClientRemoved is
	// what clears it.
	for i := 0; i < n; i++ {
		c := reg.order[i]
		if c.freeCapacity() > 0 && c.compiledFilter.eval(e) {
			if d.sticky < 0 || d.sticky >= n {
				d.sticky = i
			}
			return i, true
		}
	}
	return -1, false
}

// onClientRemoved adjusts cursor state after a client leaves the registry
// at index idx (already removed from reg.order by the caller).
func (d *dispatcher) onClientRemoved(idx int) {
	if d.sticky == idx {
		d.sticky = -1
	} else if d.sticky > idx {
		d.sticky--
	}
	if d.roundRobin > idx {
		d.roundRobin--
	}
}
