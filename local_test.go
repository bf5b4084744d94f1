package hub

import (
	"context"
	"errors"
	"testing"

	"github.com/seniorjoinu/ic-event-hub/internal/idl"
)

func TestLocalRouterDeliversToTypedHandler(t *testing.T) {
	router := NewLocalRouter()
	var got int
	ep, err := router.Register("on_count", func(ctx context.Context, n int) error {
		got = n
		return nil
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	h := New(1, 1024)
	h.SetObserver(nil)
	h.Subscribe(NewFilter(Field{Name: EventNameField, Value: []byte("counted")}), ep)

	valueField, err := ValueField("n", 7)
	if err != nil {
		t.Fatalf("ValueField: %v", err)
	}
	event := NewEvent(NewFieldSet(Field{Name: EventNameField, Value: []byte("counted")}), []Field{valueField})
	if err := h.Push(event, 0); err != nil {
		t.Fatalf("Push: %v", err)
	}
	h.PromoteExpired(1)

	dispatcher := NewDispatcher(h, ClockFunc(func() uint64 { return 2 }), idl.DefaultTypeTableEncoder{}, router, testLogger(), nil)
	dispatcher.SendEvents(context.Background())

	if got != 7 {
		t.Fatalf("got = %d, want 7", got)
	}
}

func TestLocalRouterUnknownMethodErrors(t *testing.T) {
	router := NewLocalRouter()
	envelope := idl.Envelope(idl.DefaultTypeTableEncoder{}.EncodeVecEventType(), 0, nil)
	ch := router.Call(context.Background(), Endpoint{Principal: LocalPrincipal, Method: "missing"}, envelope)
	if err := <-ch; err == nil {
		t.Fatalf("expected an error for an unregistered method")
	}
}

func TestLocalRouterUnregister(t *testing.T) {
	router := NewLocalRouter()
	ep, err := router.Register("on_event", func(ctx context.Context, name string, values []Field) error { return nil })
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	router.Unregister(ep.Method)

	envelope := idl.Envelope(idl.DefaultTypeTableEncoder{}.EncodeVecEventType(), 0, nil)
	ch := router.Call(context.Background(), ep, envelope)
	if err := <-ch; err == nil {
		t.Fatalf("expected an error after unregistering the handler")
	}
}

func TestToLocalHandlerUnsupportedType(t *testing.T) {
	_, err := ToLocalHandler(42)
	if err == nil {
		t.Fatalf("expected an error for an unsupported callback type")
	}
}

func TestToLocalHandlerNoArgCallback(t *testing.T) {
	called := false
	h, err := ToLocalHandler(func(ctx context.Context) error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("ToLocalHandler: %v", err)
	}
	if err := h(context.Background(), "whatever", nil); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if !called {
		t.Fatalf("expected the no-arg callback to be invoked")
	}
}

func TestToLocalHandlerCastsMismatchedType(t *testing.T) {
	var got string
	h, err := ToLocalHandler(func(ctx context.Context, s string) error {
		got = s
		return nil
	})
	if err != nil {
		t.Fatalf("ToLocalHandler: %v", err)
	}

	// A value field encoded as an int64 should still reach a string callback
	// via spf13/cast, since the concrete decoded type (int64) isn't a string.
	valueField, err := ValueField("n", int64(123))
	if err != nil {
		t.Fatalf("ValueField: %v", err)
	}
	if err := h(context.Background(), "evt", []Field{valueField}); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if got != "123" {
		t.Fatalf("got %q, want %q", got, "123")
	}
}

func TestToLocalHandlerPropagatesError(t *testing.T) {
	wantErr := errors.New("boom")
	h, err := ToLocalHandler(func(ctx context.Context) error { return wantErr })
	if err != nil {
		t.Fatalf("ToLocalHandler: %v", err)
	}
	if err := h(context.Background(), "evt", nil); !errors.Is(err, wantErr) {
		t.Fatalf("got %v, want %v", err, wantErr)
	}
}
