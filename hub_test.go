package hub

import (
	"errors"
	"testing"
)

func mkEvent(name string, extraTopics ...Field) Event {
	topics := append([]Field{{Name: EventNameField, Value: []byte(name)}}, extraTopics...)
	return NewEvent(NewFieldSet(topics...), []Field{{Name: "payload", Value: []byte("x")}})
}

func TestPushMatchesSubsetFilter(t *testing.T) {
	h := New(1000, 1024)
	ep := Endpoint{Principal: Principal{1}, Method: "on_event"}
	h.Subscribe(NewFilter(Field{Name: EventNameField, Value: []byte("order_placed")}), ep)

	err := h.Push(mkEvent("order_placed", Field{Name: "region", Value: []byte("eu")}), 0)
	if err != nil {
		t.Fatalf("Push: %v", err)
	}

	h.PromoteExpired(2000)
	entry, ok := h.popReadyLargestKey()
	if !ok {
		t.Fatalf("expected a ready entry")
	}
	if entry.endpoint != ep {
		t.Fatalf("got endpoint %+v, want %+v", entry.endpoint, ep)
	}
}

func TestPushDoesNotMatchSupersetFilter(t *testing.T) {
	h := New(1000, 1024)
	ep := Endpoint{Principal: Principal{1}, Method: "on_event"}
	// Filter requires a topic field the event never carries: no match.
	h.Subscribe(NewFilter(
		Field{Name: EventNameField, Value: []byte("order_placed")},
		Field{Name: "region", Value: []byte("eu")},
	), ep)

	err := h.Push(mkEvent("order_placed"), 0)
	if !errors.Is(err, ErrNoListeners) {
		t.Fatalf("got %v, want ErrNoListeners", err)
	}
}

func TestSubscribeIsIdempotent(t *testing.T) {
	h := New(1000, 1024)
	filter := NewFilter(Field{Name: EventNameField, Value: []byte("order_placed")})
	ep := Endpoint{Principal: Principal{1}, Method: "on_event"}

	h.Subscribe(filter, ep)
	h.Subscribe(filter, ep)

	if got := h.FilterCount(); got != 1 {
		t.Fatalf("FilterCount = %d, want 1", got)
	}
	if got := len(h.GetSubscribers(filter)); got != 1 {
		t.Fatalf("GetSubscribers returned %d endpoints, want 1", got)
	}
}

func TestUnsubscribeUnknownFilterErrors(t *testing.T) {
	h := New(1000, 1024)
	ep := Endpoint{Principal: Principal{1}, Method: "on_event"}
	err := h.Unsubscribe(NewFilter(Field{Name: EventNameField, Value: []byte("never_registered")}), ep)
	if !errors.Is(err, ErrUnknownFilter) {
		t.Fatalf("got %v, want ErrUnknownFilter", err)
	}
}

func TestUnsubscribeUnknownEndpointErrors(t *testing.T) {
	h := New(1000, 1024)
	filter := NewFilter(Field{Name: EventNameField, Value: []byte("order_placed")})
	ep := Endpoint{Principal: Principal{1}, Method: "on_event"}
	other := Endpoint{Principal: Principal{2}, Method: "on_event"}
	h.Subscribe(filter, ep)

	err := h.Unsubscribe(filter, other)
	if !errors.Is(err, ErrUnknownEndpoint) {
		t.Fatalf("got %v, want ErrUnknownEndpoint", err)
	}
}

func TestPushTooBigIsRejected(t *testing.T) {
	h := New(1000, 8) // tiny cap, below mkEvent's 11-byte encoded values
	ep := Endpoint{Principal: Principal{1}, Method: "on_event"}
	h.Subscribe(NewFilter(Field{Name: EventNameField, Value: []byte("order_placed")}), ep)

	err := h.Push(mkEvent("order_placed"), 0)
	if !errors.Is(err, ErrEventTooBig) {
		t.Fatalf("got %v, want ErrEventTooBig", err)
	}
}

func TestBatchSealsOnSizeOverflow(t *testing.T) {
	// Each encoded event is a handful of bytes; cap it low enough that the
	// second push can't fit alongside the first.
	h := New(1_000_000_000, 16)
	ep := Endpoint{Principal: Principal{1}, Method: "on_event"}
	h.Subscribe(NewFilter(Field{Name: EventNameField, Value: []byte("order_placed")}), ep)

	if err := h.Push(mkEvent("order_placed"), 0); err != nil {
		t.Fatalf("first Push: %v", err)
	}
	if err := h.Push(mkEvent("order_placed"), 1); err != nil {
		t.Fatalf("second Push: %v", err)
	}

	// The first batch should already be sealed into ready, independent of
	// PromoteExpired (which hasn't run yet, and the age cap is enormous).
	if len(h.readyKeys()) != 1 {
		t.Fatalf("expected one sealed ready entry after overflow, got %d", len(h.readyKeys()))
	}
}

func TestBatchSealsAtExactBoundaryRatherThanReachingCap(t *testing.T) {
	// cap=10: first event encodes to exactly cap-1=9 bytes (1 field, 1-byte
	// name, 5-byte value: 1+1+1+1+5). A second push of a minimal event
	// (zero value fields, encodes to a single 0x00 count byte) would bring
	// the pending batch to exactly 10 bytes under <=, which must not
	// happen -- it has to seal the first batch and open a fresh one instead.
	h := New(1_000_000_000, 10)
	ep := Endpoint{Principal: Principal{1}, Method: "on_event"}
	h.Subscribe(NewFilter(Field{Name: EventNameField, Value: []byte("order_placed")}), ep)

	first := NewEvent(
		NewFieldSet(Field{Name: EventNameField, Value: []byte("order_placed")}),
		[]Field{{Name: "a", Value: []byte("hello")}},
	)
	if err := h.Push(first, 0); err != nil {
		t.Fatalf("first Push: %v", err)
	}

	second := NewEvent(NewFieldSet(Field{Name: EventNameField, Value: []byte("order_placed")}), nil)
	if err := h.Push(second, 1); err != nil {
		t.Fatalf("second Push: %v", err)
	}

	if len(h.readyKeys()) != 1 {
		t.Fatalf("expected the first batch to have sealed, got %d ready entries", len(h.readyKeys()))
	}
	sealed := h.ready[ep.key()].batches
	if len(sealed) != 1 || sealed[0].eventsCount != 1 {
		t.Fatalf("expected exactly one sealed batch holding the first event, got %+v", sealed)
	}
	pending, ok := h.pending[ep.key()]
	if !ok || pending.eventsCount != 1 {
		t.Fatalf("expected a fresh pending batch holding only the second event, got %+v", pending)
	}
}

func TestBatchSealsOnAgeExpiry(t *testing.T) {
	h := New(100, 1024) // 100ns max age
	ep := Endpoint{Principal: Principal{1}, Method: "on_event"}
	h.Subscribe(NewFilter(Field{Name: EventNameField, Value: []byte("order_placed")}), ep)

	if err := h.Push(mkEvent("order_placed"), 0); err != nil {
		t.Fatalf("Push: %v", err)
	}

	h.PromoteExpired(50) // not yet expired
	if len(h.readyKeys()) != 0 {
		t.Fatalf("expected no ready entries before expiry")
	}

	h.PromoteExpired(150) // now expired
	if len(h.readyKeys()) != 1 {
		t.Fatalf("expected one ready entry after expiry")
	}
}

func TestPopReadyLargestKeyTieBreak(t *testing.T) {
	h := New(1, 1024)
	epA := Endpoint{Principal: Principal{1}, Method: "aaa"}
	epB := Endpoint{Principal: Principal{2}, Method: "bbb"}
	h.Subscribe(NewFilter(Field{Name: EventNameField, Value: []byte("order_placed")}), epA)
	h.Subscribe(NewFilter(Field{Name: EventNameField, Value: []byte("order_placed")}), epB)

	if err := h.Push(mkEvent("order_placed"), 0); err != nil {
		t.Fatalf("Push: %v", err)
	}
	h.PromoteExpired(2)

	keys := h.readyKeys()
	if len(keys) != 2 {
		t.Fatalf("expected 2 ready entries, got %d", len(keys))
	}

	first, ok := h.popReadyLargestKey()
	if !ok {
		t.Fatalf("expected a ready entry")
	}
	if first.endpoint.key() != keys[len(keys)-1] {
		t.Fatalf("popReadyLargestKey returned %q, want the largest key %q", first.endpoint.key(), keys[len(keys)-1])
	}
}

func TestSetBatchMaxSizeBytesDoesNotResealExistingPending(t *testing.T) {
	h := New(1_000_000_000, 1024)
	ep := Endpoint{Principal: Principal{1}, Method: "on_event"}
	h.Subscribe(NewFilter(Field{Name: EventNameField, Value: []byte("order_placed")}), ep)

	if err := h.Push(mkEvent("order_placed"), 0); err != nil {
		t.Fatalf("Push: %v", err)
	}

	// Shrink the cap below the already-open pending batch's size. Per the
	// documented resolution, this must not retroactively seal it.
	h.SetBatchMaxSizeBytes(1)
	if len(h.readyKeys()) != 0 {
		t.Fatalf("shrinking batch_max_size_bytes must not reseal existing pending batches")
	}
}

type countingObserver struct {
	dropped map[string]int
	sealed  map[string]int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{dropped: make(map[string]int), sealed: make(map[string]int)}
}

func (o *countingObserver) EventDropped(reason string) { o.dropped[reason]++ }
func (o *countingObserver) BatchSealed(reason string)  { o.sealed[reason]++ }

func TestObserverNotifiedOnDropAndSeal(t *testing.T) {
	obs := newCountingObserver()
	h := New(50, 16)
	h.SetObserver(obs)
	ep := Endpoint{Principal: Principal{1}, Method: "on_event"}
	h.Subscribe(NewFilter(Field{Name: EventNameField, Value: []byte("order_placed")}), ep)

	if err := h.Push(mkEvent("unmatched_event"), 0); !errors.Is(err, ErrNoListeners) {
		t.Fatalf("got %v, want ErrNoListeners", err)
	}
	if obs.dropped["no_listeners"] != 1 {
		t.Fatalf("expected one no_listeners drop, got %d", obs.dropped["no_listeners"])
	}

	if err := h.Push(mkEvent("order_placed"), 0); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if err := h.Push(mkEvent("order_placed"), 1); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if obs.sealed["size"] != 1 {
		t.Fatalf("expected one size-triggered seal, got %d", obs.sealed["size"])
	}

	h.PromoteExpired(100)
	if obs.sealed["time"] != 1 {
		t.Fatalf("expected one time-triggered seal, got %d", obs.sealed["time"])
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	h := New(1000, 1024)
	ep := Endpoint{Principal: Principal{1}, Method: "on_event"}
	filter := NewFilter(Field{Name: EventNameField, Value: []byte("order_placed")})
	h.Subscribe(filter, ep)

	if err := h.Push(mkEvent("order_placed"), 0); err != nil {
		t.Fatalf("Push: %v", err)
	}

	snap := h.Snapshot()

	restored := New(0, 0)
	restored.Restore(snap)

	if got := restored.FilterCount(); got != 1 {
		t.Fatalf("FilterCount after restore = %d, want 1", got)
	}
	if got := len(restored.GetSubscribers(filter)); got != 1 {
		t.Fatalf("GetSubscribers after restore = %d, want 1", got)
	}
	if restored.BatchMaxAgeNS() != 1000 || restored.BatchMaxSizeBytes() != 1024 {
		t.Fatalf("restored config mismatch: age=%d size=%d", restored.BatchMaxAgeNS(), restored.BatchMaxSizeBytes())
	}

	restored.PromoteExpired(2000)
	if len(restored.readyKeys()) != 1 {
		t.Fatalf("expected the restored pending batch to still promote on its original open time")
	}
}
