package hub

import (
	"bytes"
	"sort"
)

// EventNameField is the well-known topic field name every Event carries,
// holding the IDL-encoded name of the event's type. It is the anchor every
// Filter built from a typed event-filter includes.
const EventNameField = "__event_name"

// Field is a single named, opaquely-encoded attribute. Two fields compare
// equal iff both Name and Value are equal; ordering is lexicographic by
// Name first, then by Value.
type Field struct {
	Name  string
	Value []byte
}

// Equal reports whether f and other carry the same name and value.
func (f Field) Equal(other Field) bool {
	return f.Name == other.Name && bytes.Equal(f.Value, other.Value)
}

// Less reports whether f sorts before other under the canonical Field
// ordering: by Name, then by Value.
func (f Field) Less(other Field) bool {
	if f.Name != other.Name {
		return f.Name < other.Name
	}
	return bytes.Compare(f.Value, other.Value) < 0
}

// FieldSet is a sorted, deduplicated set of Fields. The zero value is an
// empty set. FieldSet is immutable once built by NewFieldSet.
type FieldSet struct {
	fields []Field
}

// NewFieldSet builds a FieldSet from the given fields, sorting them and
// keeping one field per Name (later duplicates win, matching "last write wins").
func NewFieldSet(fields ...Field) FieldSet {
	cp := make([]Field, len(fields))
	copy(cp, fields)
	sort.SliceStable(cp, func(i, j int) bool { return cp[i].Name < cp[j].Name })

	out := cp[:0]
	for _, f := range cp {
		if len(out) > 0 && out[len(out)-1].Name == f.Name {
			out[len(out)-1] = f
			continue
		}
		out = append(out, f)
	}
	return FieldSet{fields: out}
}

// Len returns the number of fields in the set.
func (s FieldSet) Len() int {
	return len(s.fields)
}

// Each calls cb for every field in sorted order.
func (s FieldSet) Each(cb func(f Field)) {
	for _, f := range s.fields {
		cb(f)
	}
}

// Get returns the field named name and true, or the zero Field and false.
func (s FieldSet) Get(name string) (Field, bool) {
	idx := sort.Search(len(s.fields), func(i int) bool { return s.fields[i].Name >= name })
	for idx < len(s.fields) && s.fields[idx].Name == name {
		return s.fields[idx], true
	}
	return Field{}, false
}

// Subset reports whether every field of s is present in other, under Field
// equality (both name and value must match exactly). This is the matching
// relation the whole engine is built on: Filter.Topics ⊆ Event.Topics.
//
// Both sets are kept sorted, so this runs in O(len(s)+len(other)) using a
// merge-style two-pointer scan.
func (s FieldSet) Subset(other FieldSet) bool {
	i, j := 0, 0
	for i < len(s.fields) && j < len(other.fields) {
		a, b := s.fields[i], other.fields[j]
		switch {
		case a.Name < b.Name:
			return false
		case a.Name > b.Name:
			j++
		default:
			if !bytes.Equal(a.Value, b.Value) {
				// same name, different value: not present, but there may be
				// another field with the same name further in other (there
				// isn't, since other is deduplicated) -- so bail out.
				return false
			}
			i++
			j++
		}
	}
	return i == len(s.fields)
}

// Equal reports whether s and other contain exactly the same fields.
func (s FieldSet) Equal(other FieldSet) bool {
	if len(s.fields) != len(other.fields) {
		return false
	}
	for i := range s.fields {
		if !s.fields[i].Equal(other.fields[i]) {
			return false
		}
	}
	return true
}

// key returns a canonical string encoding fields can be hashed or compared
// by, used as the map key backing the filter index.
func (s FieldSet) key() string {
	var buf bytes.Buffer
	for _, f := range s.fields {
		buf.WriteString(f.Name)
		buf.WriteByte(0)
		buf.Write(f.Value)
		buf.WriteByte(0)
	}
	return buf.String()
}
