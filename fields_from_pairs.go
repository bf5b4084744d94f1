package hub

import "github.com/seniorjoinu/ic-event-hub/pkg/kv"

// FieldsFromPairs is an ergonomic constructor for topic fields, accepting
// either "key=value" strings or alternating "key", "value" strings (see
// kv.Parse for the exact grammar, including escaped '='). Each value is
// carried as the raw bytes of its string form; callers needing typed
// values should build []Field directly instead. Fields come back sorted by
// name.
//
// FieldsFromPairs(
//
//	"status=active",
//	"region", "eu-west-1",
//
// ) is equivalent to []Field{{"region", []byte("eu-west-1")}, {"status", []byte("active")}}.
func FieldsFromPairs(pairs ...string) ([]Field, error) {
	m, err := kv.Parse(pairs...)
	if err != nil {
		return nil, err
	}
	fields := make([]Field, 0, m.Len())
	m.Each(func(key, value string) {
		fields = append(fields, Field{Name: key, Value: []byte(value)})
	})
	return fields, nil
}

// FilterFromPairs builds a Filter directly from pair arguments, a
// convenience wrapping FieldsFromPairs + NewFilter for the common case of
// hand-written subscription code.
func FilterFromPairs(pairs ...string) (Filter, error) {
	fields, err := FieldsFromPairs(pairs...)
	if err != nil {
		return Filter{}, err
	}
	return NewFilter(fields...), nil
}
