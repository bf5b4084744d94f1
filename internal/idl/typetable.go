package idl

// defaultVecEventTypeTable is a fixed placeholder for the Candid type-table
// bytes describing `vec<Event>`. Real Candid type serialization is an
// external collaborator (the host's IDL encoder) and is not
// reconstructed here; this constant exists so the engine has a working,
// deterministic default when no TypeTableEncoder is supplied, e.g. in unit
// tests and local, non-Candid-speaking deployments. Production embeddings
// that must interoperate with real Candid-speaking peers should supply
// their own hub.TypeTableEncoder backed by an actual Candid implementation.
var defaultVecEventTypeTable = []byte{
	0x01,       // one compound type in the table
	0x6d, 0x01, // vector constructor wrapping type index 1 (opaque record)
}

// DefaultTypeTableEncoder returns the frozen placeholder type-table bytes
// described above.
type DefaultTypeTableEncoder struct{}

// EncodeVecEventType implements hub.TypeTableEncoder.
func (DefaultTypeTableEncoder) EncodeVecEventType() []byte {
	out := make([]byte, len(defaultVecEventTypeTable))
	copy(out, defaultVecEventTypeTable)
	return out
}
