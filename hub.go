// Package hub implements the subscription index, topic matching, batching
// scheduler and wire encoding of an in-process publish/subscribe event hub
// meant to be embedded inside a smart-contract-style actor. The actor
// runtime itself -- now(), caller(), remote_call(), the heartbeat loop, and
// the IDL/Candid encoder -- are external collaborators represented here by
// the Clock, CallerResolver, RemoteCaller and TypeTableEncoder interfaces
// (see host.go); this package owns none of them.
package hub

import (
	"encoding/gob"
	"sort"

	"github.com/seniorjoinu/ic-event-hub/internal/idl"
)

// readyEntry is a per-endpoint queue of sealed batches awaiting dispatch.
type readyEntry struct {
	endpoint Endpoint
	batches  []readyBatch
}

// EventHub is the engine's entire owned state: a filter index, per-endpoint
// pending batches with their deadline queue, and per-endpoint ready
// queues. It is not safe for concurrent use from multiple goroutines
// without external synchronization -- the single-threaded actor model this
// engine is meant to run inside requires no internal locking, and
// multi-threaded hosts should wrap the whole value in one mutex rather than
// attempt fine-grained locking.
type EventHub struct {
	batchMaxAgeNS     uint64
	batchMaxSizeBytes int

	filters *filterIndex

	pending          map[string]*pendingBatch // endpoint.key() -> pending
	pendingEndpoints map[string]Endpoint      // endpoint.key() -> endpoint, written on open, read by Snapshot
	pendingDeadlines *deadlineQueue

	ready map[string]*readyEntry // endpoint.key() -> ready entry

	obs Observer
}

// Observer receives notifications of dropped events and sealed batches,
// letting a host wire these into metrics without the core engine importing
// a metrics library itself. A nil Observer (the default) means no-op.
type Observer interface {
	EventDropped(reason string)
	BatchSealed(reason string)
}

// SetObserver installs obs as the hub's Observer. Pass nil to disable.
func (h *EventHub) SetObserver(obs Observer) { h.obs = obs }

func (h *EventHub) notifyDropped(reason string) {
	if h.obs != nil {
		h.obs.EventDropped(reason)
	}
}

func (h *EventHub) notifySealed(reason string) {
	if h.obs != nil {
		h.obs.BatchSealed(reason)
	}
}

// New builds an EventHub with the given batching configuration. Both
// batchMaxAgeNS and batchMaxSizeBytes may be changed later via the setters.
func New(batchMaxAgeNS uint64, batchMaxSizeBytes int) *EventHub {
	return &EventHub{
		batchMaxAgeNS:     batchMaxAgeNS,
		batchMaxSizeBytes: batchMaxSizeBytes,
		filters:           newFilterIndex(),
		pending:           make(map[string]*pendingBatch),
		pendingEndpoints:  make(map[string]Endpoint),
		pendingDeadlines:  newDeadlineQueue(),
		ready:             make(map[string]*readyEntry),
	}
}

// BatchMaxAgeNS returns the currently configured maximum pending-batch age.
func (h *EventHub) BatchMaxAgeNS() uint64 { return h.batchMaxAgeNS }

// SetBatchMaxAgeNS changes the maximum pending-batch age. The new value
// applies to every promotion check made after the call, including for
// batches already open -- age is computed from open_time_ns at promotion
// time, never cached.
func (h *EventHub) SetBatchMaxAgeNS(v uint64) { h.batchMaxAgeNS = v }

// BatchMaxSizeBytes returns the currently configured sealed-batch size cap.
func (h *EventHub) BatchMaxSizeBytes() int { return h.batchMaxSizeBytes }

// SetBatchMaxSizeBytes changes the sealed-batch size cap. Existing pending
// batches that already exceed the new, smaller cap are left untouched
// until their next push or promotion -- see DESIGN.md for the rationale.
func (h *EventHub) SetBatchMaxSizeBytes(v int) { h.batchMaxSizeBytes = v }

// Subscribe registers endpoint as interested in filter. Idempotent.
func (h *EventHub) Subscribe(filter Filter, endpoint Endpoint) {
	h.filters.add(filter, endpoint)
}

// Unsubscribe removes endpoint from filter. Returns ErrUnknownFilter or
// ErrUnknownEndpoint as described on filterIndex.remove.
func (h *EventHub) Unsubscribe(filter Filter, endpoint Endpoint) error {
	return h.filters.remove(filter, endpoint)
}

// GetSubscribers returns the matched endpoints for filter.
func (h *EventHub) GetSubscribers(filter Filter) []Endpoint {
	return h.filters.matchByTopics(filter.Topics)
}

// FilterCount returns the number of distinct registered filters.
func (h *EventHub) FilterCount() int { return h.filters.len() }

// Push encodes event's value fields and fans it out to every endpoint whose
// filter is a subset of event's topics. Returns ErrNoListeners if no
// filter matches (the event is dropped, not an error condition for
// callers), or ErrEventTooBig if the encoded event is at
// least as large as the configured size cap.
func (h *EventHub) Push(event Event, nowNS uint64) error {
	endpoints := h.filters.matchByTopics(event.Topics())
	if len(endpoints) == 0 {
		h.notifyDropped("no_listeners")
		return ErrNoListeners
	}

	encoded := idl.EncodeEventValues(toIDLFields(event.Values()))
	if len(encoded) >= h.batchMaxSizeBytes {
		h.notifyDropped("too_big")
		return ErrEventTooBig
	}

	for _, ep := range endpoints {
		h.pushToEndpoint(ep, encoded, nowNS)
	}
	return nil
}

func (h *EventHub) pushToEndpoint(ep Endpoint, encoded []byte, nowNS uint64) {
	key := ep.key()
	p, exists := h.pending[key]
	switch {
	case !exists:
		h.openPending(ep, encoded, nowNS)
	case len(p.bytes)+len(encoded) < h.batchMaxSizeBytes:
		p.bytes = append(p.bytes, encoded...)
		p.eventsCount++
	default:
		h.sealPending(ep)
		h.notifySealed("size")
		h.openPending(ep, encoded, nowNS)
	}
}

func (h *EventHub) openPending(ep Endpoint, encoded []byte, nowNS uint64) {
	key := ep.key()
	buf := make([]byte, len(encoded))
	copy(buf, encoded)
	h.pending[key] = &pendingBatch{bytes: buf, eventsCount: 1, openTimeNS: nowNS}
	h.pendingEndpoints[key] = ep
	h.pendingDeadlines.push(nowNS, ep)
}

// sealPending moves the pending batch for ep (which must exist) into ready
// and clears it from the pending map.
func (h *EventHub) sealPending(ep Endpoint) {
	key := ep.key()
	p := h.pending[key]
	h.appendReady(ep, p.seal())
	delete(h.pending, key)
}

func (h *EventHub) appendReady(ep Endpoint, batch readyBatch) {
	key := ep.key()
	entry, ok := h.ready[key]
	if !ok {
		entry = &readyEntry{endpoint: ep}
		h.ready[key] = entry
	}
	entry.batches = append(entry.batches, batch)
}

// PromoteExpired drains pending_deadlines of every entry whose age has
// reached batch_max_age_ns, sealing the corresponding pending batch into
// ready. Stale heap entries (the pending batch was already resealed and
// reopened, or no longer exists) are discarded.
func (h *EventHub) PromoteExpired(nowNS uint64) {
	for {
		entry, ok := h.pendingDeadlines.peek()
		if !ok {
			return
		}
		if entry.openTimeNS+h.batchMaxAgeNS > nowNS {
			return
		}
		h.pendingDeadlines.pop()

		key := entry.endpoint.key()
		p, exists := h.pending[key]
		if !exists || p.openTimeNS != entry.openTimeNS {
			continue // stale heap entry, superseded or gone
		}
		h.appendReady(entry.endpoint, p.seal())
		h.notifySealed("time")
		delete(h.pending, key)
	}
}

// popReadyLargestKey removes and returns the ready entry whose endpoint key
// sorts largest, or ok=false if ready is empty.
func (h *EventHub) popReadyLargestKey() (*readyEntry, bool) {
	if len(h.ready) == 0 {
		return nil, false
	}
	var largest string
	for key := range h.ready {
		if key > largest {
			largest = key
		}
	}
	entry := h.ready[largest]
	delete(h.ready, largest)
	return entry, true
}

// readyKeys returns the current ready map's keys sorted ascending, used
// only by tests and diagnostics that want deterministic inspection without
// mutating the hub.
func (h *EventHub) readyKeys() []string {
	keys := make([]string, 0, len(h.ready))
	for k := range h.ready {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func toIDLFields(fields []Field) []idl.Field {
	out := make([]idl.Field, len(fields))
	for i, f := range fields {
		out[i] = idl.Field{Name: f.Name, Value: f.Value}
	}
	return out
}

func init() {
	gob.Register(Principal{})
}
