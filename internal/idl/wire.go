package idl

import (
	"bytes"
	"fmt"
)

// Envelope builds the byte-exact wire framing for a dispatched batch:
//
//	b"DIDL"  ‖  <type table for vec<Event>>  ‖  <ULEB128 events_count>  ‖  <concatenated encoded Event values>
//
// typeTable is supplied by a TypeTableEncoder and is identical across every
// batch in one dispatch pass; body is the pending batch's already-encoded
// bytes (see EncodeEventValues), concatenated verbatim.
func Envelope(typeTable []byte, eventsCount uint64, body []byte) []byte {
	out := make([]byte, 0, 4+len(typeTable)+binaryMaxVarintLen+len(body))
	out = append(out, 'D', 'I', 'D', 'L')
	out = append(out, typeTable...)
	out = PutUvarint(out, eventsCount)
	out = append(out, body...)
	return out
}

const binaryMaxVarintLen = 10 // encoding/binary.MaxVarintLen64

// ParseEnvelope reverses Envelope, given the known length in bytes of the
// type table that was used to build it. Real Candid type tables are
// self-delimiting and would not need this parameter; the placeholder
// DefaultTypeTableEncoder's table has a fixed length, which is what
// in-process routing (see the root package's LocalRouter) relies on.
func ParseEnvelope(envelope []byte, typeTableLen int) (eventsCount uint64, body []byte, err error) {
	if len(envelope) < 4 || string(envelope[:4]) != "DIDL" {
		return 0, nil, fmt.Errorf("idl: missing DIDL magic")
	}
	rest := envelope[4:]
	if len(rest) < typeTableLen {
		return 0, nil, fmt.Errorf("idl: envelope shorter than declared type table")
	}
	rest = rest[typeTableLen:]

	r := bytes.NewReader(rest)
	n, err := ReadUvarint(r)
	if err != nil {
		return 0, nil, fmt.Errorf("idl: reading events_count: %w", err)
	}
	body = rest[len(rest)-r.Len():]
	return n, body, nil
}
