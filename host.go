package hub

import "context"

// Clock provides the host actor's notion of the current time, in
// nanoseconds. It stands in for the host runtime's now().
type Clock interface {
	Now() uint64
}

// ClockFunc adapts a plain function to Clock.
type ClockFunc func() uint64

// Now implements Clock.
func (f ClockFunc) Now() uint64 { return f() }

// CallerResolver resolves the identity of the current invocation's caller,
// standing in for the host runtime's caller().
type CallerResolver interface {
	Caller(ctx context.Context) Principal
}

// CallerResolverFunc adapts a plain function to CallerResolver.
type CallerResolverFunc func(ctx context.Context) Principal

// Caller implements CallerResolver.
func (f CallerResolverFunc) Caller(ctx context.Context) Principal { return f(ctx) }

// RemoteCaller issues a single fire-and-forget remote call, standing in for
// the host runtime's remote_call(principal, method, bytes) -> future. The
// returned channel carries at most one error (nil on success) and is
// always eventually sent to and closed, even on transport failure --
// exactly one value is produced before the channel closes.
type RemoteCaller interface {
	Call(ctx context.Context, endpoint Endpoint, payload []byte) <-chan error
}

// TypeTableEncoder supplies the IDL type-table bytes for a dispatch pass,
// standing in for the host's Candid/IDL encoder (this engine owns no
// actual Candid implementation; see internal/idl for the default
// stand-in). Computed once per call to SendEvents and reused across every
// batch dispatched in that pass.
type TypeTableEncoder interface {
	EncodeVecEventType() []byte
}
