package httpcaller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	hub "github.com/seniorjoinu/ic-event-hub"
)

// EventHubClient is a typed wrapper around the four actor-exported methods
// of a remote hub, mirroring the original Rust implementation's
// EventHubClient (ic-event-hub-rs/src/api.rs) -- there, an async Candid
// client; here, an HTTP client carrying the same requests as JSON bodies
// against the emitter's /call/{method} routes. Unlike Client (which
// ferries already-encoded DIDL envelopes for the dispatcher), EventHubClient
// is a request/response RPC client for the subscription management
// surface, so it encodes its requests as JSON directly.
type EventHubClient struct {
	http     *http.Client
	emitter  hub.Principal
	resolver PrincipalResolver
}

// NewEventHubClient builds a client addressing the hub hosted at emitter,
// resolved through resolver.
func NewEventHubClient(emitter hub.Principal, resolver PrincipalResolver) *EventHubClient {
	return &EventHubClient{
		http:     &http.Client{Timeout: 10 * time.Second},
		emitter:  emitter,
		resolver: resolver,
	}
}

// AddEventListeners calls _add_event_listeners on the emitter.
func (c *EventHubClient) AddEventListeners(ctx context.Context, req hub.AddEventListenersRequest) error {
	return c.call(ctx, "_add_event_listeners", req)
}

// RemoveEventListeners calls _remove_event_listeners on the emitter.
func (c *EventHubClient) RemoveEventListeners(ctx context.Context, req hub.RemoveEventListenersRequest) error {
	return c.call(ctx, "_remove_event_listeners", req)
}

// BecomeEventListener calls _become_event_listener on the emitter.
func (c *EventHubClient) BecomeEventListener(ctx context.Context, req hub.BecomeEventListenerRequest) error {
	return c.call(ctx, "_become_event_listener", req)
}

// StopBeingEventListener calls _stop_being_event_listener on the emitter.
func (c *EventHubClient) StopBeingEventListener(ctx context.Context, req hub.StopBeingEventListenerRequest) error {
	return c.call(ctx, "_stop_being_event_listener", req)
}

// call issues a synchronous JSON-over-HTTP request/response call to
// method on the emitter and waits for the result.
func (c *EventHubClient) call(ctx context.Context, method string, req any) error {
	baseURL, ok := c.resolver.Resolve(c.emitter)
	if !ok {
		return fmt.Errorf("httpcaller: no address for principal %s", c.emitter)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("httpcaller: encoding %s request: %w", method, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/call/"+method, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("httpcaller: %s %s returned %d: %s", method, c.emitter, resp.StatusCode, string(errBody))
	}
	return nil
}

// Listen subscribes callbackName on the local listener (caller) to events
// from emitter matching filter, mirroring src/event_hub/src/lib.rs's
// listen() free function: a one-shot convenience that spares the caller
// from hand-building an AddEventListenersRequest.
func Listen(ctx context.Context, resolver PrincipalResolver, emitter, listener hub.Principal, filter hub.Filter, callbackName string) error {
	client := NewEventHubClient(emitter, resolver)
	return client.AddEventListeners(ctx, hub.AddEventListenersRequest{
		Listeners: []struct {
			Filter   hub.Filter
			Endpoint hub.Endpoint
		}{
			{Filter: filter, Endpoint: hub.Endpoint{Principal: listener, Method: callbackName}},
		},
	})
}

// ListenMany subscribes to several filters in one call, mirroring
// src/event_hub/src/lib.rs's listen_many(). filters and callbackNames must
// be the same length, positionally paired.
func ListenMany(ctx context.Context, resolver PrincipalResolver, emitter, listener hub.Principal, filters []hub.Filter, callbackNames []string) error {
	if len(filters) != len(callbackNames) {
		return fmt.Errorf("httpcaller: listen_many: %d filters but %d callback names", len(filters), len(callbackNames))
	}

	type listenerEntry = struct {
		Filter   hub.Filter
		Endpoint hub.Endpoint
	}
	listeners := make([]listenerEntry, len(filters))
	for i, f := range filters {
		listeners[i] = listenerEntry{Filter: f, Endpoint: hub.Endpoint{Principal: listener, Method: callbackNames[i]}}
	}

	client := NewEventHubClient(emitter, resolver)
	return client.AddEventListeners(ctx, hub.AddEventListenersRequest{Listeners: listeners})
}
