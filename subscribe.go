package hub

import (
	"context"
	"fmt"
)

// Callback names one (filter, method) subscription entry, mirroring the
// wire shape of subscribe/unsubscribe requests.
type Callback struct {
	Filter     Filter
	MethodName string
}

// SubscribeRequest is the payload of the subscribe actor method.
type SubscribeRequest struct {
	Callbacks []Callback
}

// UnsubscribeRequest is the payload of the unsubscribe actor method.
type UnsubscribeRequest struct {
	Callbacks []Callback
}

// GetSubscribersRequest is the payload of the get_subscribers actor method.
type GetSubscribersRequest struct {
	Filters []Filter
}

// GetSubscribersResponse is the result of the get_subscribers actor method.
type GetSubscribersResponse struct {
	Subscribers [][]Endpoint
}

// HandleSubscribe implements the subscribe actor method: for each callback
// entry, register Endpoint{caller, method_name} under the given filter.
// Always succeeds (subscription add is unconditional and idempotent).
func (h *EventHub) HandleSubscribe(ctx context.Context, caller Principal, req SubscribeRequest) {
	for _, cb := range req.Callbacks {
		h.Subscribe(cb.Filter, Endpoint{Principal: caller, Method: cb.MethodName})
	}
}

// HandleUnsubscribe implements the unsubscribe actor method. If any removal
// fails, it returns an error naming the failing entry's index; processing
// stops at that entry and earlier removals are not rolled back.
func (h *EventHub) HandleUnsubscribe(ctx context.Context, caller Principal, req UnsubscribeRequest) error {
	for i, cb := range req.Callbacks {
		ep := Endpoint{Principal: caller, Method: cb.MethodName}
		if err := h.Unsubscribe(cb.Filter, ep); err != nil {
			return fmt.Errorf("unsubscribe: entry %d: %w", i, err)
		}
	}
	return nil
}

// HandleGetSubscribers implements the get_subscribers actor method.
func (h *EventHub) HandleGetSubscribers(ctx context.Context, req GetSubscribersRequest) GetSubscribersResponse {
	out := make([][]Endpoint, len(req.Filters))
	for i, f := range req.Filters {
		out[i] = h.GetSubscribers(f)
	}
	return GetSubscribersResponse{Subscribers: out}
}

// AddEventListenersRequest is the payload of the _add_event_listeners
// alternate-surface method: unlike subscribe, it carries an explicit
// Endpoint per entry, letting one principal subscribe on behalf of another.
type AddEventListenersRequest struct {
	Listeners []struct {
		Filter   Filter
		Endpoint Endpoint
	}
}

// HandleAddEventListeners implements _add_event_listeners.
func (h *EventHub) HandleAddEventListeners(ctx context.Context, req AddEventListenersRequest) {
	for _, l := range req.Listeners {
		h.Subscribe(l.Filter, l.Endpoint)
	}
}

// RemoveEventListenersRequest is the payload of the
// _remove_event_listeners alternate-surface method.
type RemoveEventListenersRequest struct {
	Listeners []struct {
		Filter   Filter
		Endpoint Endpoint
	}
}

// HandleRemoveEventListeners implements _remove_event_listeners, with the
// same partial-failure semantics as HandleUnsubscribe.
func (h *EventHub) HandleRemoveEventListeners(ctx context.Context, req RemoveEventListenersRequest) error {
	for i, l := range req.Listeners {
		if err := h.Unsubscribe(l.Filter, l.Endpoint); err != nil {
			return fmt.Errorf("_remove_event_listeners: entry %d: %w", i, err)
		}
	}
	return nil
}

// BecomeEventListenerRequest is the payload of the
// _become_event_listener alternate-surface method: the principal is always
// derived from caller(), never supplied explicitly.
type BecomeEventListenerRequest struct {
	Filter     Filter
	MethodName string
}

// HandleBecomeEventListener implements _become_event_listener.
func (h *EventHub) HandleBecomeEventListener(ctx context.Context, caller Principal, req BecomeEventListenerRequest) {
	h.Subscribe(req.Filter, Endpoint{Principal: caller, Method: req.MethodName})
}

// StopBeingEventListenerRequest is the payload of the
// _stop_being_event_listener alternate-surface method.
type StopBeingEventListenerRequest struct {
	Filter     Filter
	MethodName string
}

// HandleStopBeingEventListener implements _stop_being_event_listener.
func (h *EventHub) HandleStopBeingEventListener(ctx context.Context, caller Principal, req StopBeingEventListenerRequest) error {
	ep := Endpoint{Principal: caller, Method: req.MethodName}
	if err := h.Unsubscribe(req.Filter, ep); err != nil {
		return fmt.Errorf("_stop_being_event_listener: %w", err)
	}
	return nil
}

// GetEventListenersRequest is the payload of the _get_event_listeners
// alternate-surface method.
type GetEventListenersRequest struct {
	Filters []Filter
}

// HandleGetEventListeners implements _get_event_listeners, identical in
// semantics to HandleGetSubscribers under the alternate naming surface.
func (h *EventHub) HandleGetEventListeners(ctx context.Context, req GetEventListenersRequest) GetSubscribersResponse {
	return h.HandleGetSubscribers(ctx, GetSubscribersRequest{Filters: req.Filters})
}
