package hub

import (
	"context"
	"fmt"
	"sync"

	"github.com/seniorjoinu/ic-event-hub/internal/idl"
)

// localTypeTableLen is the byte length of DefaultTypeTableEncoder's
// placeholder type table. LocalRouter relies on it being fixed-length to
// strip the envelope header without a real Candid decoder; routers paired
// with a different TypeTableEncoder must be constructed with
// NewLocalRouterTypeTableLen instead.
const localTypeTableLen = 3

// LocalPrincipal is the synthetic principal every LocalRouter vends
// endpoints under. It never collides with a real 29-byte IC principal
// derived from caller(), since host-assigned principals are expected to be
// non-zero; callers that need to distinguish multiple local routers should
// keep each router's endpoints namespaced by method name instead.
var LocalPrincipal = Principal{}

// LocalRouter lets in-process Go code subscribe to the hub without a real
// remote-call transport: it implements RemoteCaller by decoding the
// dispatched envelope itself and invoking a registered LocalHandler
// directly, synchronously, instead of issuing a network call.
type LocalRouter struct {
	mu           sync.RWMutex
	handlers     map[string]LocalHandler
	typeTableLen int
}

// NewLocalRouter builds a LocalRouter assuming DefaultTypeTableEncoder.
func NewLocalRouter() *LocalRouter {
	return NewLocalRouterTypeTableLen(localTypeTableLen)
}

// NewLocalRouterTypeTableLen builds a LocalRouter for a TypeTableEncoder
// whose output is always exactly typeTableLen bytes.
func NewLocalRouterTypeTableLen(typeTableLen int) *LocalRouter {
	return &LocalRouter{handlers: make(map[string]LocalHandler), typeTableLen: typeTableLen}
}

// Register wraps cb via ToLocalHandler and stores it under method, returning
// the Endpoint{LocalPrincipal, method} subscribers should filter on.
func (r *LocalRouter) Register(method string, cb any) (Endpoint, error) {
	h, err := ToLocalHandler(cb)
	if err != nil {
		return Endpoint{}, err
	}
	r.mu.Lock()
	r.handlers[method] = h
	r.mu.Unlock()
	return Endpoint{Principal: LocalPrincipal, Method: method}, nil
}

// Unregister removes the handler registered under method, if any.
func (r *LocalRouter) Unregister(method string) {
	r.mu.Lock()
	delete(r.handlers, method)
	r.mu.Unlock()
}

// Call implements RemoteCaller: it decodes the dispatched envelope back
// into its constituent events and invokes the handler registered for
// endpoint.Method once per event, synchronously, reporting the first error
// encountered (if any) on the returned channel.
func (r *LocalRouter) Call(ctx context.Context, endpoint Endpoint, payload []byte) <-chan error {
	ch := make(chan error, 1)

	r.mu.RLock()
	h, ok := r.handlers[endpoint.Method]
	r.mu.RUnlock()
	if !ok {
		ch <- fmt.Errorf("hub: no local handler registered for method %q", endpoint.Method)
		close(ch)
		return ch
	}

	_, body, err := idl.ParseEnvelope(payload, r.typeTableLen)
	if err != nil {
		ch <- err
		close(ch)
		return ch
	}

	eventFieldLists, err := idl.DecodeEventStream(body)
	if err != nil {
		ch <- err
		close(ch)
		return ch
	}

	var firstErr error
	for _, fields := range eventFieldLists {
		values := make([]Field, len(fields))
		for i, f := range fields {
			values[i] = Field{Name: f.Name, Value: f.Value}
		}
		if err := h(ctx, endpoint.Method, values); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	ch <- firstErr
	close(ch)
	return ch
}

func decodeFieldValue(f Field) (any, error) {
	return idl.DecodeValue(f.Value)
}
