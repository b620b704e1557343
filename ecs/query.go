package ecs

import "sort"

// IntersectEntities returns entity ids present in every set.
func IntersectEntities(sets ...*SparseSet) []int {
	if len(sets) == 0 {
		return nil
	}
	smallest := sets[0]
	for _, s := range sets[1:] {
		if s.Len() < smallest.Len() {
			smallest = s
		}
	}
	out := make([]int, 0, smallest.Len())
outer:
	for _, id := range smallest.Entities() {
		for _, s := range sets {
			if !s.Has(id) {
				continue outer
			}
		}
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// Query returns live entities holding every kind, ordered by id.
func (w *World) Query(kinds ...ComponentKind) []Entity {
	if w == nil || len(kinds) == 0 {
		return nil
	}
	sets := make([]*SparseSet, 0, len(kinds))
	for _, k := range kinds {
		s := w.stores[k.ID()]
		if s == nil {
			return nil
		}
		sets = append(sets, s)
	}
	return w.resolve(IntersectEntities(sets...))
}

// First returns the lowest entity holding kind.
func (w *World) First(kind ComponentKind) (Entity, bool) {
	ents := w.Query(kind)
	if len(ents) == 0 {
		return 0, false
	}
	return ents[0], true
}

// Changed returns entities whose kind was added or replaced after since.
func (w *World) Changed(kind ComponentKind, since uint64) []Entity {
	if w == nil {
		return nil
	}
	ids := w.stores[kind.ID()].ChangedSince(since)
	sort.Ints(ids)
	return w.resolve(ids)
}

// Removed returns entities that lost kind after since, in removal order.
// Destroyed entities are reported with their stale handle.
func (w *World) Removed(kind ComponentKind, since uint64) []Entity {
	if w == nil {
		return nil
	}
	var out []Entity
	seen := make(map[Entity]struct{})
	for _, r := range w.removals {
		if r.version <= since || r.kind != kind.ID() {
			continue
		}
		if _, ok := seen[r.entity]; ok {
			continue
		}
		seen[r.entity] = struct{}{}
		out = append(out, r.entity)
	}
	return out
}

func (w *World) resolve(ids []int) []Entity {
	out := make([]Entity, 0, len(ids))
	for _, id := range ids {
		if e, ok := w.entities.entity(id); ok {
			out = append(out, e)
		}
	}
	return out
}
