package ecs

// SparseSet is a cache-friendly storage for components keyed by entity id.
// Every slot remembers the world version of its last write.
type SparseSet struct {
	denseEntities []int
	denseValues   []any
	denseVersions []uint64
	sparse        []int
}

// Has returns true if the entity id exists in the set.
func (s *SparseSet) Has(id int) bool {
	if s == nil || id <= 0 || id-1 >= len(s.sparse) {
		return false
	}
	idx := s.sparse[id-1]
	return idx >= 0 && idx < len(s.denseEntities) && s.denseEntities[idx] == id
}

// Get returns the component for id, or nil.
func (s *SparseSet) Get(id int) any {
	if !s.Has(id) {
		return nil
	}
	return s.denseValues[s.sparse[id-1]]
}

// Version returns the version id was last written at.
func (s *SparseSet) Version(id int) (uint64, bool) {
	if !s.Has(id) {
		return 0, false
	}
	return s.denseVersions[s.sparse[id-1]], true
}

// Set inserts or updates a component for id.
func (s *SparseSet) Set(id int, v any, version uint64) {
	if s == nil || id <= 0 {
		return
	}
	for id-1 >= len(s.sparse) {
		s.sparse = append(s.sparse, -1)
	}
	if s.Has(id) {
		idx := s.sparse[id-1]
		s.denseValues[idx] = v
		s.denseVersions[idx] = version
		return
	}
	s.denseEntities = append(s.denseEntities, id)
	s.denseValues = append(s.denseValues, v)
	s.denseVersions = append(s.denseVersions, version)
	s.sparse[id-1] = len(s.denseEntities) - 1
}

// Remove deletes the component for id if present.
func (s *SparseSet) Remove(id int) bool {
	if s == nil || !s.Has(id) {
		return false
	}
	idx := s.sparse[id-1]
	last := len(s.denseEntities) - 1
	lastID := s.denseEntities[last]

	s.denseEntities[idx] = s.denseEntities[last]
	s.denseValues[idx] = s.denseValues[last]
	s.denseVersions[idx] = s.denseVersions[last]
	s.sparse[lastID-1] = idx

	s.denseEntities = s.denseEntities[:last]
	s.denseValues = s.denseValues[:last]
	s.denseVersions = s.denseVersions[:last]
	s.sparse[id-1] = -1
	return true
}

// Len returns the number of stored components.
func (s *SparseSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.denseEntities)
}

// Entities returns the dense entity id list.
func (s *SparseSet) Entities() []int {
	if s == nil {
		return nil
	}
	return s.denseEntities
}

// ChangedSince returns ids written after version.
func (s *SparseSet) ChangedSince(version uint64) []int {
	if s == nil {
		return nil
	}
	var out []int
	for i, v := range s.denseVersions {
		if v > version {
			out = append(out, s.denseEntities[i])
		}
	}
	return out
}
