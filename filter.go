package hub

// Filter is a set of topic fields. A Filter matches an Event iff the
// Filter's topics are a subset of the Event's topics. The empty filter
// (Len() == 0) matches every event.
type Filter struct {
	Topics FieldSet
}

// NewFilter builds a Filter from the given topic fields.
func NewFilter(fields ...Field) Filter {
	return Filter{Topics: NewFieldSet(fields...)}
}

// Matches reports whether f matches an event carrying the given topics.
func (f Filter) Matches(eventTopics FieldSet) bool {
	return f.Topics.Subset(eventTopics)
}

// key returns the canonical string this filter is indexed under.
func (f Filter) key() string {
	return f.Topics.key()
}
