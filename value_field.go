package hub

import "github.com/seniorjoinu/ic-event-hub/internal/idl"

// ValueField builds a value Field carrying v encoded via the internal/idl
// value codec, for use in an Event's Values() list when the delivery path
// (LocalRouter, or a RemoteCaller test double) decodes with the same
// codec. Event topic fields are opaque IDL-encoded bytes from a real
// Candid encoder in production and are not expected to round-trip through
// ValueField/DecodeValue; this helper exists for the local, in-process
// convenience layer and for tests.
func ValueField(name string, v any) (Field, error) {
	b, err := idl.EncodeValue(v)
	if err != nil {
		return Field{}, err
	}
	return Field{Name: name, Value: b}, nil
}
