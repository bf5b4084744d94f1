package hub

// pendingBatch accumulates encoded event-value bytes for a single endpoint,
// bounded by batch_max_size_bytes and kept open for at most
// batch_max_age_ns before the dispatcher seals it.
type pendingBatch struct {
	bytes       []byte
	eventsCount uint64
	openTimeNS  uint64
}

// readyBatch is an immutable, sealed batch awaiting dispatch.
type readyBatch struct {
	bytes       []byte
	eventsCount uint64
}

func (p *pendingBatch) seal() readyBatch {
	return readyBatch{bytes: p.bytes, eventsCount: p.eventsCount}
}
