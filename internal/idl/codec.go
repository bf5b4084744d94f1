// Package idl provides a minimal, self-contained stand-in for the
// Candid/IDL encoder the event hub engine treats as an external
// collaborator. It is used two ways: to build the byte-exact
// DIDL wire envelope dispatched on each heartbeat tick, and -- as a
// convenience for the local, in-process subscribe surface and for tests --
// to encode and decode primitive Go values into the opaque Field bytes the
// engine carries around without ever inspecting.
//
// None of this is real Candid. Full Candid type serialization requires the
// actual IC type system and is explicitly out of scope for this engine; the
// corpus this module was grounded on carries no Go Candid encoder either.
// Production embeddings are expected to supply their own hub.TypeTableEncoder
// and their own Field value encoding for values that must interoperate with
// real Candid-speaking peers.
package idl

import (
	"encoding/binary"
	"fmt"
	"io"
)

// PutUvarint appends x to buf using the LEB128 unsigned varint encoding.
// encoding/binary's Uvarint/PutUvarint implement exactly the LEB128
// algorithm (base-128, little-endian, continuation bit in the high bit),
// so no third-party leb128 library is needed here.
func PutUvarint(buf []byte, x uint64) []byte {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], x)
	return append(buf, tmp[:n]...)
}

// ReadUvarint reads a LEB128 unsigned varint from r.
func ReadUvarint(r io.ByteReader) (uint64, error) {
	return binary.ReadUvarint(r)
}

// Field is one (name, value) pair, mirroring the root package's Field but
// kept free of any dependency on it so idl stays a leaf package.
type Field struct {
	Name  string
	Value []byte
}

// EncodeEventValues writes a self-delimiting encoding of fields: a varint
// count, then for each field a varint-length-prefixed name and a
// varint-length-prefixed value. This is what the accumulator stores per
// event (see the root package's Push) -- concatenating the output of
// EncodeEventValues for successive events produces exactly the
// "concatenated encoded Event values" the wire codec frames, because each
// call is self-delimiting and therefore concatenation-safe.
func EncodeEventValues(fields []Field) []byte {
	var buf []byte
	buf = PutUvarint(buf, uint64(len(fields)))
	for _, f := range fields {
		buf = PutUvarint(buf, uint64(len(f.Name)))
		buf = append(buf, f.Name...)
		buf = PutUvarint(buf, uint64(len(f.Value)))
		buf = append(buf, f.Value...)
	}
	return buf
}

// DecodeEventValues reads back the fields written by EncodeEventValues,
// returning the number of bytes consumed.
func DecodeEventValues(b []byte) ([]Field, int, error) {
	r := &byteSliceReader{b: b}
	n, err := ReadUvarint(r)
	if err != nil {
		return nil, 0, fmt.Errorf("idl: reading field count: %w", err)
	}
	out := make([]Field, 0, n)
	for i := uint64(0); i < n; i++ {
		nameLen, err := ReadUvarint(r)
		if err != nil {
			return nil, 0, fmt.Errorf("idl: reading name length: %w", err)
		}
		name, err := r.take(int(nameLen))
		if err != nil {
			return nil, 0, err
		}
		valLen, err := ReadUvarint(r)
		if err != nil {
			return nil, 0, fmt.Errorf("idl: reading value length: %w", err)
		}
		val, err := r.take(int(valLen))
		if err != nil {
			return nil, 0, err
		}
		out = append(out, Field{Name: string(name), Value: val})
	}
	return out, r.pos, nil
}

// DecodeEventStream splits a batch's concatenated body back into the
// per-event field lists it was built from, by repeatedly applying
// DecodeEventValues until the body is exhausted. Used by local, in-process
// subscribers (see the root package's LocalRouter in local.go) to recover individual
// events out of a sealed batch instead of going over the wire.
func DecodeEventStream(body []byte) ([][]Field, error) {
	var events [][]Field
	for len(body) > 0 {
		fields, n, err := DecodeEventValues(body)
		if err != nil {
			return nil, err
		}
		events = append(events, fields)
		body = body[n:]
	}
	return events, nil
}

type byteSliceReader struct {
	b   []byte
	pos int
}

func (r *byteSliceReader) ReadByte() (byte, error) {
	if r.pos >= len(r.b) {
		return 0, io.EOF
	}
	c := r.b[r.pos]
	r.pos++
	return c, nil
}

func (r *byteSliceReader) take(n int) ([]byte, error) {
	if r.pos+n > len(r.b) {
		return nil, fmt.Errorf("idl: short read: need %d bytes, have %d", n, len(r.b)-r.pos)
	}
	out := r.b[r.pos : r.pos+n]
	r.pos += n
	return out, nil
}
