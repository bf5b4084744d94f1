package hub

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/seniorjoinu/ic-event-hub/internal/idl"
)

// Dispatcher drives SendEvents on every heartbeat tick using the injected
// host collaborators. It owns no state of its own beyond its references to
// the EventHub and the collaborators; all mutable state lives on EventHub.
type Dispatcher struct {
	hub    *EventHub
	clock  Clock
	types  TypeTableEncoder
	caller RemoteCaller
	log    zerolog.Logger
	stats  *DeliveryStats
}

// NewDispatcher builds a Dispatcher over hub, using clock for the current
// time, types to compute the per-dispatch-pass type table, caller to issue
// remote calls, and log for structured diagnostics. stats may be nil, in
// which case per-endpoint delivery counts are not tracked.
func NewDispatcher(hub *EventHub, clock Clock, types TypeTableEncoder, caller RemoteCaller, log zerolog.Logger, stats *DeliveryStats) *Dispatcher {
	return &Dispatcher{hub: hub, clock: clock, types: types, caller: caller, log: log, stats: stats}
}

// SendEvents promotes expired pending batches, then repeatedly pops the
// ready entry with the largest endpoint key, framing each of its sealed
// batches into the wire envelope and issuing a
// fire-and-forget remote call. Once ready is empty, if any calls were
// issued, one background goroutine is spawned to await every returned
// channel and log failures; SendEvents itself never blocks on that
// goroutine.
func (d *Dispatcher) SendEvents(ctx context.Context) {
	now := d.clock.Now()
	d.hub.PromoteExpired(now)

	typeTable := d.types.EncodeVecEventType()

	var pending []<-chan error
	var pendingEndpoints []Endpoint

	for {
		entry, ok := d.hub.popReadyLargestKey()
		if !ok {
			break
		}
		for _, batch := range entry.batches {
			envelope := idl.Envelope(typeTable, batch.eventsCount, batch.bytes)
			errCh := d.caller.Call(ctx, entry.endpoint, envelope)
			pending = append(pending, errCh)
			pendingEndpoints = append(pendingEndpoints, entry.endpoint)
			if d.stats != nil {
				d.stats.RecordDispatch(entry.endpoint)
			}
		}
	}

	if len(pending) == 0 {
		return
	}

	go d.awaitAll(pending, pendingEndpoints)
}

// awaitAll blocks the background goroutine (never the caller of
// SendEvents) until every dispatched call's result is known, logging each
// failure. Remote-call failures never mutate hub state, are never retried,
// and never propagate back to SendEvents' caller.
func (d *Dispatcher) awaitAll(pending []<-chan error, endpoints []Endpoint) {
	for i, ch := range pending {
		if err := <-ch; err != nil {
			d.log.Warn().
				Err(err).
				Str("principal", endpoints[i].Principal.String()).
				Str("method", endpoints[i].Method).
				Msg("remote call failed")
		}
	}
}
