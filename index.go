package hub

// filterIndex maps registered Filters to the set of Endpoints interested in
// them, and answers subset-match queries against an event's topics.
//
// The required baseline is a linear scan over every registered filter,
// subset-testing two sorted field sets. filterIndex additionally maintains
// a secondary index from individual topic fields to candidate filters (the
// teacher's multi-level sublist index, adapted), which narrows the scan to
// filters that share at least one topic field with the event -- every
// candidate is still subset-checked exactly, so match semantics are
// unchanged, only the candidate set is pruned.
type filterIndex struct {
	seq uint64

	byKey map[string]*filterEntry // filter.key() -> entry, for idempotent add/remove

	indexKeyValue map[string]map[string]*filterList // field name -> field value -> candidates
	indexEmpty    *filterList                        // filters with zero topic fields
}

func newFilterIndex() *filterIndex {
	return &filterIndex{
		byKey:         make(map[string]*filterEntry),
		indexKeyValue: make(map[string]map[string]*filterList),
		indexEmpty:    &filterList{},
	}
}

// add registers endpoint under filter. Idempotent: re-adding the same
// (filter, endpoint) pair is a no-op.
func (idx *filterIndex) add(filter Filter, endpoint Endpoint) {
	key := filter.key()
	entry, exists := idx.byKey[key]
	if !exists {
		idx.seq++
		entry = &filterEntry{
			id:        idx.seq,
			filter:    filter,
			endpoints: make(map[string]Endpoint),
		}
		idx.byKey[key] = entry
		idx.index(entry)
	}
	entry.endpoints[endpoint.key()] = endpoint
}

// index inserts entry into every secondary candidate list it belongs to.
func (idx *filterIndex) index(entry *filterEntry) {
	if entry.filter.Topics.Len() == 0 {
		idx.indexEmpty.add(entry)
		return
	}
	entry.filter.Topics.Each(func(f Field) {
		vals, ok := idx.indexKeyValue[f.Name]
		if !ok {
			vals = make(map[string]*filterList)
			idx.indexKeyValue[f.Name] = vals
		}
		sl, ok := vals[string(f.Value)]
		if !ok {
			sl = &filterList{}
			vals[string(f.Value)] = sl
		}
		sl.add(entry)
	})
}

// unindex removes entry from every secondary candidate list it belongs to.
func (idx *filterIndex) unindex(entry *filterEntry) {
	if entry.filter.Topics.Len() == 0 {
		idx.indexEmpty.remove(entry.id)
		return
	}
	entry.filter.Topics.Each(func(f Field) {
		if vals, ok := idx.indexKeyValue[f.Name]; ok {
			if sl, ok := vals[string(f.Value)]; ok {
				sl.remove(entry.id)
				if sl.len() == 0 {
					delete(vals, string(f.Value))
				}
			}
			if len(vals) == 0 {
				delete(idx.indexKeyValue, f.Name)
			}
		}
	})
}

// remove un-registers endpoint from filter. Fails with ErrUnknownFilter if
// filter was never registered, or ErrUnknownEndpoint if filter is
// registered but endpoint is not among its subscribers. If the endpoint set
// becomes empty, the filter entry itself is removed.
func (idx *filterIndex) remove(filter Filter, endpoint Endpoint) error {
	key := filter.key()
	entry, ok := idx.byKey[key]
	if !ok {
		return ErrUnknownFilter
	}
	if _, ok := entry.endpoints[endpoint.key()]; !ok {
		return ErrUnknownEndpoint
	}
	delete(entry.endpoints, endpoint.key())
	if len(entry.endpoints) == 0 {
		idx.unindex(entry)
		delete(idx.byKey, key)
	}
	return nil
}

// matchByTopics returns the deduplicated union of endpoints across every
// registered filter that is a topic-subset of topics. Order is unspecified.
func (idx *filterIndex) matchByTopics(topics FieldSet) []Endpoint {
	var candidates []*filterList
	topics.Each(func(f Field) {
		if vals, ok := idx.indexKeyValue[f.Name]; ok {
			if sl, ok := vals[string(f.Value)]; ok {
				candidates = append(candidates, sl)
			}
		}
	})
	if idx.indexEmpty.len() > 0 {
		candidates = append(candidates, idx.indexEmpty)
	}

	seen := make(map[string]Endpoint)
	for entry := range mergeFilterLists(candidates...) {
		if !entry.filter.Matches(topics) {
			continue
		}
		for k, ep := range entry.endpoints {
			seen[k] = ep
		}
	}

	out := make([]Endpoint, 0, len(seen))
	for _, ep := range seen {
		out = append(out, ep)
	}
	return out
}

// len returns the number of distinct registered filters.
func (idx *filterIndex) len() int {
	return len(idx.byKey)
}
