package host

import (
	"context"

	"github.com/google/uuid"

	hub "github.com/seniorjoinu/ic-event-hub"
)

// callerContextKey is the context key httpcaller's server side stores the
// caller principal under, after reading it from the inbound request's
// X-Principal-Hex header (see httpcaller.Server).
type callerContextKey struct{}

// WithCaller returns a context carrying principal as the resolved caller,
// for use by request-handling code before dispatching into the hub.
func WithCaller(ctx context.Context, principal hub.Principal) context.Context {
	return context.WithValue(ctx, callerContextKey{}, principal)
}

// ContextCallerResolver implements hub.CallerResolver by reading the
// principal a prior WithCaller call stashed in the context. The IC actor
// runtime derives caller() from the inbound message's signature; this
// package has no such primitive; the nearest equivalent here is an
// upstream authentication step (see httpcaller.Server) populating the
// context before the hub's exported handlers run.
type ContextCallerResolver struct{}

// Caller implements hub.CallerResolver.
func (ContextCallerResolver) Caller(ctx context.Context) hub.Principal {
	if p, ok := ctx.Value(callerContextKey{}).(hub.Principal); ok {
		return p
	}
	return hub.Principal{}
}

// NewSyntheticPrincipal mints a fresh 29-byte principal from a random
// UUIDv4, zero-padded. The pack carries no IC principal codec; uuid is the
// nearest ecosystem primitive for "stable random identifier", used here
// purely for local/test hosts that need distinct principals without a real
// IC identity.
func NewSyntheticPrincipal() hub.Principal {
	return PrincipalFromUUID(uuid.New())
}

// PrincipalFromUUID embeds a UUID's 16 bytes into the low bytes of a
// 29-byte Principal, zero-padding the rest.
func PrincipalFromUUID(u uuid.UUID) hub.Principal {
	var p hub.Principal
	copy(p[:], u[:])
	return p
}
