package hub

import "errors"

// Sentinel errors raised by the filter index and batch accumulator. Errors
// local to event acceptance (ErrNoListeners, ErrEventTooBig) are returned
// to the emitting caller and never halt the host actor; errors raised by
// index mutation (ErrUnknownFilter, ErrUnknownEndpoint) are surfaced by the
// subscription endpoints as a trap (see Unsubscribe).
var (
	// ErrUnknownFilter is returned by the filter index's Remove when the
	// filter being removed from was never registered.
	ErrUnknownFilter = errors.New("hub: unknown filter")

	// ErrUnknownEndpoint is returned by the filter index's Remove when the
	// filter exists but does not contain the given endpoint.
	ErrUnknownEndpoint = errors.New("hub: unknown endpoint for filter")

	// ErrNoListeners is returned by Push when no registered filter matches
	// the event's topics. The event is silently dropped by the caller; this
	// is a signalled, non-fatal condition, not a user-facing error.
	ErrNoListeners = errors.New("hub: no listeners for event")

	// ErrEventTooBig is returned by Push when the event's encoded value
	// bytes are at least as large as the configured batch size cap.
	ErrEventTooBig = errors.New("hub: encoded event exceeds batch_max_size_bytes")
)

// CastError wraps a failure converting a delivered event's value into the
// type a typed local callback expects. ToLocalHandler (handler.go) uses
// spf13/cast's non-erroring conversions and never returns a CastError.
type CastError struct {
	orig error
}

// Error implements the error interface for CastError.
func (e *CastError) Error() string {
	return "hub: payload cast failed: " + e.orig.Error()
}

// Unwrap exposes the underlying cast error for errors.Is/errors.As.
func (e *CastError) Unwrap() error {
	return e.orig
}

func newCastError(orig error) *CastError {
	return &CastError{orig: orig}
}
