package hub

import (
	"iter"
	"sort"
)

// filterEntry is one registered (Filter, endpoint-set) pair in the filter
// index. id is a monotonically increasing sequence number assigned at
// first registration, used only to keep filterLists sorted for the
// merge-dedup scan in matchByTopics -- it has no meaning outside the index.
type filterEntry struct {
	id        uint64
	filter    Filter
	endpoints map[string]Endpoint
}

// filterList is a secondary-index candidate list: a slice of filterEntry
// pointers kept sorted by id, supporting binary-search insertion, removal
// and lookup.
type filterList struct {
	lst []*filterEntry
}

func (sl *filterList) add(e *filterEntry) {
	idx := sort.Search(len(sl.lst), func(i int) bool {
		return sl.lst[i].id >= e.id
	})

	sl.lst = append(sl.lst, nil)
	if idx < len(sl.lst)-1 {
		copy(sl.lst[idx+1:], sl.lst[idx:])
	}
	sl.lst[idx] = e
}

func (sl *filterList) remove(id uint64) {
	idx := sort.Search(len(sl.lst), func(i int) bool {
		return sl.lst[i].id >= id
	})
	if idx < len(sl.lst) && sl.lst[idx].id == id {
		copy(sl.lst[idx:], sl.lst[idx+1:])
		sl.lst = sl.lst[:len(sl.lst)-1]
	}
}

func (sl *filterList) len() int {
	if sl == nil {
		return 0
	}
	return len(sl.lst)
}

// mergeFilterLists returns an iterator over every distinct filterEntry
// across the given lists, each of which must already be sorted by id.
// Entries appearing in more than one list (a filter candidate reachable via
// two different matching topic fields) are yielded exactly once.
func mergeFilterLists(lists ...*filterList) iter.Seq[*filterEntry] {
	return func(yield func(*filterEntry) bool) {
		indices := make([]int, len(lists))
		prevID := uint64(0) // 0 is never a valid id (ids are assigned starting at 1)

		for {
			var smallest *filterEntry
			smallestListIdx := -1

			for i, lst := range lists {
				if lst == nil || indices[i] >= len(lst.lst) {
					continue
				}
				current := lst.lst[indices[i]]
				if smallest == nil || current.id < smallest.id {
					smallest = current
					smallestListIdx = i
				}
			}

			if smallest == nil {
				return
			}

			if smallest.id != prevID {
				prevID = smallest.id
				if !yield(smallest) {
					return
				}
			}

			indices[smallestListIdx]++
		}
	}
}
