package hub

// Snapshot is a serializable copy of an EventHub's full state: registered
// filters, open pending batches and sealed ready batches. It is the unit
// internal/store persists across actor upgrades.
type Snapshot struct {
	BatchMaxAgeNS     uint64
	BatchMaxSizeBytes int
	Filters           []SnapshotFilter
	Pending           []SnapshotPending
	Ready             []SnapshotReady
}

// SnapshotFilter is one registered filter and its subscribed endpoints.
type SnapshotFilter struct {
	Topics    []Field
	Endpoints []Endpoint
}

// SnapshotPending is one endpoint's still-open pending batch.
type SnapshotPending struct {
	Endpoint    Endpoint
	Bytes       []byte
	EventsCount uint64
	OpenTimeNS  uint64
}

// SnapshotReady is one endpoint's queue of sealed batches awaiting dispatch.
type SnapshotReady struct {
	Endpoint Endpoint
	Batches  []SnapshotBatch
}

// SnapshotBatch is one sealed batch within a SnapshotReady entry.
type SnapshotBatch struct {
	Bytes       []byte
	EventsCount uint64
}

// Snapshot captures h's full state. The returned value shares no backing
// arrays with h -- mutating h afterwards does not affect the snapshot.
func (h *EventHub) Snapshot() Snapshot {
	s := Snapshot{
		BatchMaxAgeNS:     h.batchMaxAgeNS,
		BatchMaxSizeBytes: h.batchMaxSizeBytes,
	}

	for _, entry := range h.filters.byKey {
		sf := SnapshotFilter{Endpoints: make([]Endpoint, 0, len(entry.endpoints))}
		entry.filter.Topics.Each(func(f Field) {
			v := make([]byte, len(f.Value))
			copy(v, f.Value)
			sf.Topics = append(sf.Topics, Field{Name: f.Name, Value: v})
		})
		for _, ep := range entry.endpoints {
			sf.Endpoints = append(sf.Endpoints, ep)
		}
		s.Filters = append(s.Filters, sf)
	}

	for key, p := range h.pending {
		ep := h.pendingEndpoints[key]
		buf := make([]byte, len(p.bytes))
		copy(buf, p.bytes)
		s.Pending = append(s.Pending, SnapshotPending{
			Endpoint:    ep,
			Bytes:       buf,
			EventsCount: p.eventsCount,
			OpenTimeNS:  p.openTimeNS,
		})
	}

	for _, entry := range h.ready {
		sr := SnapshotReady{Endpoint: entry.endpoint, Batches: make([]SnapshotBatch, len(entry.batches))}
		for i, b := range entry.batches {
			buf := make([]byte, len(b.bytes))
			copy(buf, b.bytes)
			sr.Batches[i] = SnapshotBatch{Bytes: buf, EventsCount: b.eventsCount}
		}
		s.Ready = append(s.Ready, sr)
	}

	return s
}

// Restore replaces h's entire state with s's, discarding whatever h
// currently holds. Pending batches are re-enrolled in the deadline queue
// using their original open_time_ns, so age-based promotion behaves as if
// the process had never restarted.
func (h *EventHub) Restore(s Snapshot) {
	h.batchMaxAgeNS = s.BatchMaxAgeNS
	h.batchMaxSizeBytes = s.BatchMaxSizeBytes
	h.filters = newFilterIndex()
	h.pending = make(map[string]*pendingBatch)
	h.pendingEndpoints = make(map[string]Endpoint)
	h.pendingDeadlines = newDeadlineQueue()
	h.ready = make(map[string]*readyEntry)

	for _, sf := range s.Filters {
		filter := NewFilter(sf.Topics...)
		for _, ep := range sf.Endpoints {
			h.filters.add(filter, ep)
		}
	}

	for _, sp := range s.Pending {
		key := sp.Endpoint.key()
		h.pending[key] = &pendingBatch{bytes: sp.Bytes, eventsCount: sp.EventsCount, openTimeNS: sp.OpenTimeNS}
		h.pendingEndpoints[key] = sp.Endpoint
		h.pendingDeadlines.push(sp.OpenTimeNS, sp.Endpoint)
	}

	for _, sr := range s.Ready {
		entry := &readyEntry{endpoint: sr.Endpoint, batches: make([]readyBatch, len(sr.Batches))}
		for i, sb := range sr.Batches {
			entry.batches[i] = readyBatch{bytes: sb.Bytes, eventsCount: sb.EventsCount}
		}
		h.ready[sr.Endpoint.key()] = entry
	}
}
