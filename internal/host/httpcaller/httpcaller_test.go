package httpcaller

import (
	"context"
	"net/http/httptest"
	"testing"

	hub "github.com/seniorjoinu/ic-event-hub"
	"github.com/seniorjoinu/ic-event-hub/internal/host"
)

func TestClientServerRoundTrip(t *testing.T) {
	var gotBody []byte
	var gotCaller hub.Principal
	handlers := map[string]EventHandler{
		"on_event": func(ctx context.Context, body []byte) error {
			gotBody = body
			gotCaller = host.ContextCallerResolver{}.Caller(ctx)
			return nil
		},
	}
	srv := NewServer(handlers)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	caller := hub.Principal{1, 2, 3}
	ep := hub.Endpoint{Principal: hub.Principal{9}, Method: "on_event"}
	resolver := StaticResolver{ep.Principal: ts.URL}
	client := NewClient(resolver)

	// Client itself never sets X-Principal-Hex (that's an upstream auth
	// step's job); exercise WithCaller's wire encoding separately by
	// hitting the server directly isn't needed here since handleCall only
	// trusts the header, which Call never sets -- so this round trip
	// checks the payload only.
	_ = caller
	err := <-client.Call(context.Background(), ep, []byte("hello"))
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if string(gotBody) != "hello" {
		t.Fatalf("gotBody = %q, want %q", gotBody, "hello")
	}
	if gotCaller != (hub.Principal{}) {
		t.Fatalf("gotCaller = %v, want the zero principal (no header set)", gotCaller)
	}
}

func TestClientReturnsErrorForUnresolvedPrincipal(t *testing.T) {
	client := NewClient(StaticResolver{})
	ep := hub.Endpoint{Principal: hub.Principal{1}, Method: "on_event"}
	err := <-client.Call(context.Background(), ep, nil)
	if err == nil {
		t.Fatalf("expected an error for an unresolved principal")
	}
}

func TestServerReturnsNotFoundForUnknownMethod(t *testing.T) {
	srv := NewServer(map[string]EventHandler{})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	ep := hub.Endpoint{Principal: hub.Principal{1}, Method: "missing"}
	client := NewClient(StaticResolver{ep.Principal: ts.URL})
	err := <-client.Call(context.Background(), ep, nil)
	if err == nil {
		t.Fatalf("expected an error for an unknown method")
	}
}

func TestServerPropagatesPrincipalHeaderToContext(t *testing.T) {
	want := hub.Principal{5, 6, 7}
	var got hub.Principal
	srv := NewServer(map[string]EventHandler{
		"on_event": func(ctx context.Context, body []byte) error {
			got = host.ContextCallerResolver{}.Caller(ctx)
			return nil
		},
	})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	req := httptest.NewRequest("POST", "/call/on_event", nil)
	req.Header.Set("X-Principal-Hex", want.String())
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got != want {
		t.Fatalf("got caller %v, want %v", got, want)
	}
}
