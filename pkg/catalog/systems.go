// Package catalog assembles the resolved per-ROM view of a raw lookup
// response: identity fields, locale and region resolved text fields, the set
// of downloadable media assets and the romlist row derived from them.
package catalog

import "sort"

// Systems is the bidirectional systemID/systemName mapping fetched once at
// startup. Read-only after construction, safe to share across workers.
type Systems struct {
	byID   map[int]string
	byName map[string]int
}

// NewSystems builds the catalog from an id to name mapping.
func NewSystems(m map[int]string) Systems {
	s := Systems{
		byID:   make(map[int]string, len(m)),
		byName: make(map[string]int, len(m)),
	}
	for id, name := range m {
		s.byID[id] = name
		s.byName[name] = id
	}
	return s
}

// NameByID returns the system name for an id.
func (s Systems) NameByID(id int) (string, bool) {
	name, ok := s.byID[id]
	return name, ok
}

// IDByName returns the system id for a name.
func (s Systems) IDByName(name string) (int, bool) {
	id, ok := s.byName[name]
	return id, ok
}

// Empty reports whether the catalog holds no systems. An empty catalog after
// the startup fetch is fatal for a run.
func (s Systems) Empty() bool {
	return len(s.byID) == 0
}

// Len returns the number of systems.
func (s Systems) Len() int {
	return len(s.byID)
}

// IDs returns all system ids in ascending order.
func (s Systems) IDs() []int {
	ids := make([]int, 0, len(s.byID))
	for id := range s.byID {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
