package idl

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// Value type tags used by EncodeValue/DecodeValue. These are purely
// internal to this package's convenience codec -- real Candid wire values
// use a completely different, richer type scheme.
const (
	tagInt64   byte = 1
	tagUint64  byte = 2
	tagFloat64 byte = 3
	tagString  byte = 4
	tagBool    byte = 5
	tagBytes   byte = 6
	tagTime    byte = 7
	tagDur     byte = 8
)

// EncodeValue encodes a primitive Go value into opaque bytes tagged with
// its type, for use as a Field.Value. Used by the local, in-process
// subscribe convenience layer (see the root package's ValueField) and by
// tests that want typed round-tripping without wiring a real IDL encoder.
func EncodeValue(v any) ([]byte, error) {
	switch x := v.(type) {
	case int:
		return encodeInt(int64(x)), nil
	case int8:
		return encodeInt(int64(x)), nil
	case int16:
		return encodeInt(int64(x)), nil
	case int32:
		return encodeInt(int64(x)), nil
	case int64:
		return encodeInt(x), nil
	case uint:
		return encodeUint(uint64(x)), nil
	case uint8:
		return encodeUint(uint64(x)), nil
	case uint16:
		return encodeUint(uint64(x)), nil
	case uint32:
		return encodeUint(uint64(x)), nil
	case uint64:
		return encodeUint(x), nil
	case float32:
		return encodeFloat(float64(x)), nil
	case float64:
		return encodeFloat(x), nil
	case string:
		return append([]byte{tagString}, x...), nil
	case bool:
		b := byte(0)
		if x {
			b = 1
		}
		return []byte{tagBool, b}, nil
	case []byte:
		return append([]byte{tagBytes}, x...), nil
	case time.Time:
		return encodeInt2(tagTime, x.UnixNano()), nil
	case time.Duration:
		return encodeInt2(tagDur, int64(x)), nil
	default:
		return nil, fmt.Errorf("idl: unsupported value type %T", v)
	}
}

// DecodeValue reverses EncodeValue, returning a value of the matching Go
// type (int64, uint64, float64, string, bool, []byte, time.Time, or
// time.Duration).
func DecodeValue(b []byte) (any, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("idl: empty value")
	}
	tag, rest := b[0], b[1:]
	switch tag {
	case tagInt64:
		return int64(binary.BigEndian.Uint64(rest)), nil
	case tagUint64:
		return binary.BigEndian.Uint64(rest), nil
	case tagFloat64:
		bits := binary.BigEndian.Uint64(rest)
		return math.Float64frombits(bits), nil
	case tagString:
		return string(rest), nil
	case tagBool:
		return rest[0] != 0, nil
	case tagBytes:
		return rest, nil
	case tagTime:
		return time.Unix(0, int64(binary.BigEndian.Uint64(rest))), nil
	case tagDur:
		return time.Duration(int64(binary.BigEndian.Uint64(rest))), nil
	default:
		return nil, fmt.Errorf("idl: unknown value tag %d", tag)
	}
}

func encodeInt(v int64) []byte {
	return encodeInt2(tagInt64, v)
}

func encodeInt2(tag byte, v int64) []byte {
	buf := make([]byte, 9)
	buf[0] = tag
	binary.BigEndian.PutUint64(buf[1:], uint64(v))
	return buf
}

func encodeUint(v uint64) []byte {
	buf := make([]byte, 9)
	buf[0] = tagUint64
	binary.BigEndian.PutUint64(buf[1:], v)
	return buf
}

func encodeFloat(v float64) []byte {
	buf := make([]byte, 9)
	buf[0] = tagFloat64
	binary.BigEndian.PutUint64(buf[1:], math.Float64bits(v))
	return buf
}
