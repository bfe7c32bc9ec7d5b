package session

import "slices"

// Selection is the set of checked rows in the client list. It is relative
// to the loaded record set and emptied whenever that set changes.
type Selection struct {
	IDs    []int64 `json:"ids"`
	Loaded []int64 `json:"loaded"`
}

// Sync records the ids of the freshly loaded list. A different set of
// records clears the selection.
func (s *Selection) Sync(loaded []int64) {
	ids := slices.Clone(loaded)
	slices.Sort(ids)
	if slices.Equal(ids, s.Loaded) {
		return
	}
	s.Loaded = ids
	s.IDs = nil
}

func (s *Selection) Has(id int64) bool { return slices.Contains(s.IDs, id) }

func (s *Selection) Count() int { return len(s.IDs) }

// Toggle checks or unchecks a loaded row.
func (s *Selection) Toggle(id int64) {
	if i := slices.Index(s.IDs, id); i >= 0 {
		s.IDs = slices.Delete(s.IDs, i, i+1)
		return
	}
	if _, ok := slices.BinarySearch(s.Loaded, id); ok {
		s.IDs = append(s.IDs, id)
	}
}

// AllSelected reports whether every loaded row is checked.
func (s *Selection) AllSelected() bool {
	return len(s.Loaded) > 0 && len(s.IDs) == len(s.Loaded)
}

// ToggleAll selects every loaded row, or none when all are already selected.
func (s *Selection) ToggleAll() {
	if s.AllSelected() {
		s.IDs = nil
		return
	}
	s.IDs = slices.Clone(s.Loaded)
}

func (s *Selection) Clear() { s.IDs = nil }
