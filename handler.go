package hub

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cast"
)

// LocalHandler processes an event delivered to an in-process subscriber: the
// endpoint method it was dispatched to and the event's value fields, in
// emission order. LocalRouter.Call reports the first error a handler returns
// on its result channel, where the Dispatcher logs it.
type LocalHandler func(ctx context.Context, method string, values []Field) error

func toLocalHandlerCommon[T any](cb func(context.Context, T) error, castFunc func(any) T) LocalHandler {
	return func(ctx context.Context, _ string, values []Field) error {
		v, ok := firstValue(values)
		if !ok {
			var zero T
			return cb(ctx, zero)
		}
		if typed, ok := v.(T); ok {
			return cb(ctx, typed)
		}
		return cb(ctx, castFunc(v))
	}
}

// ToLocalHandler converts a variety of convenient callback signatures into
// a LocalHandler. Supported shapes:
//
//	func(ctx context.Context) error
//	func(ctx context.Context, method string, values []Field) error  (LocalHandler itself)
//	func(ctx context.Context, payload Type) error                 (Type is any of the below)
//	func(ctx context.Context, payload any) error
//
// Type may be any of: int/int8/.../uint64, float32, float64, string, bool,
// time.Time, time.Duration. The payload passed to a typed callback is the
// decoded value of the event's first value field (see internal/idl's
// EncodeValue/DecodeValue convention); if decoding produces a different
// concrete type, github.com/spf13/cast converts it. If there are no value
// fields or decoding fails, a typed callback receives the zero value of its
// type and an any callback receives nil.
func ToLocalHandler(cb any) (LocalHandler, error) {
	switch cbt := cb.(type) {
	case func(ctx context.Context) error:
		return func(ctx context.Context, _ string, _ []Field) error {
			return cbt(ctx)
		}, nil

	case LocalHandler:
		return cbt, nil
	case func(context.Context, string, []Field) error:
		return cbt, nil

	// Numeric types
	case func(context.Context, int) error:
		return toLocalHandlerCommon(cbt, cast.ToInt), nil
	case func(context.Context, int8) error:
		return toLocalHandlerCommon(cbt, cast.ToInt8), nil
	case func(context.Context, int16) error:
		return toLocalHandlerCommon(cbt, cast.ToInt16), nil
	case func(context.Context, int32) error:
		return toLocalHandlerCommon(cbt, cast.ToInt32), nil
	case func(context.Context, int64) error:
		return toLocalHandlerCommon(cbt, cast.ToInt64), nil

	// Unsigned integers
	case func(context.Context, uint) error:
		return toLocalHandlerCommon(cbt, cast.ToUint), nil
	case func(context.Context, uint8) error:
		return toLocalHandlerCommon(cbt, cast.ToUint8), nil
	case func(context.Context, uint16) error:
		return toLocalHandlerCommon(cbt, cast.ToUint16), nil
	case func(context.Context, uint32) error:
		return toLocalHandlerCommon(cbt, cast.ToUint32), nil
	case func(context.Context, uint64) error:
		return toLocalHandlerCommon(cbt, cast.ToUint64), nil

	// Floating point
	case func(context.Context, float32) error:
		return toLocalHandlerCommon(cbt, cast.ToFloat32), nil
	case func(context.Context, float64) error:
		return toLocalHandlerCommon(cbt, cast.ToFloat64), nil

	// String and bool
	case func(context.Context, string) error:
		return toLocalHandlerCommon(cbt, cast.ToString), nil
	case func(context.Context, bool) error:
		return toLocalHandlerCommon(cbt, cast.ToBool), nil

	// Time and duration
	case func(context.Context, time.Time) error:
		return toLocalHandlerCommon(cbt, cast.ToTime), nil
	case func(context.Context, time.Duration) error:
		return toLocalHandlerCommon(cbt, cast.ToDuration), nil

	case func(ctx context.Context, a any) error:
		return func(ctx context.Context, _ string, values []Field) error {
			v, _ := firstValue(values)
			return cbt(ctx, v)
		}, nil

	default:
		return nil, fmt.Errorf("hub: unsupported local callback type: %T", cb)
	}
}

// firstValue decodes the first value field using the internal/idl value
// codec, returning ok=false if there are no value fields or decoding fails
// (e.g. the field was populated by a real Candid encoder rather than
// internal/idl.EncodeValue, in which case typed local callbacks should not
// be relied on -- use the LocalHandler or any-payload forms instead).
func firstValue(values []Field) (any, bool) {
	if len(values) == 0 {
		return nil, false
	}
	v, err := decodeFieldValue(values[0])
	if err != nil {
		return nil, false
	}
	return v, true
}
