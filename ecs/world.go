package ecs

import (
	"sort"

	"github.com/milk9111/jointsync/ecs/component"
)

// ComponentKind is satisfied by every component.ComponentKind[T].
type ComponentKind interface {
	ID() component.ComponentID
	Valid() bool
}

type removal struct {
	entity  Entity
	kind    component.ComponentID
	version uint64
}

// World owns entities, components and the change log.
type World struct {
	entities entityStore
	stores   map[component.ComponentID]*SparseSet
	events   EventQueue

	// version increases on every component write or removal.
	version   uint64
	removals  []removal
	prevStart uint64
	tickStart uint64
}

// NewWorld creates an empty ECS world.
func NewWorld() *World {
	return &World{stores: make(map[component.ComponentID]*SparseSet)}
}

// CreateEntity allocates a new entity.
func (w *World) CreateEntity() Entity {
	return w.entities.create()
}

// DestroyEntity strips every component, recording each as removed, and
// frees the slot. It reports false for dead handles.
func (w *World) DestroyEntity(e Entity) bool {
	if !w.IsAlive(e) {
		return false
	}
	ids := make([]component.ComponentID, 0, len(w.stores))
	for id := range w.stores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		w.removeByID(e, id)
	}
	return w.entities.destroy(e)
}

// IsAlive reports whether an entity handle is valid.
func (w *World) IsAlive(e Entity) bool {
	if w == nil {
		return false
	}
	return w.entities.isAlive(e)
}

// Entities returns every live entity, ordered by id.
func (w *World) Entities() []Entity {
	if w == nil {
		return nil
	}
	out := make([]Entity, 0, w.entities.count)
	for id := 1; id <= len(w.entities.gen); id++ {
		if e, ok := w.entities.entity(id); ok {
			out = append(out, e)
		}
	}
	return out
}

// AddComponent inserts or replaces a component and marks it changed.
func (w *World) AddComponent(e Entity, kind ComponentKind, value any) error {
	if !kind.Valid() {
		return component.ErrInvalidComponentKind
	}
	if value == nil {
		return component.ErrNilComponent
	}
	if !w.IsAlive(e) {
		return component.ErrEntityNotAlive
	}
	store := w.stores[kind.ID()]
	if store == nil {
		store = &SparseSet{}
		w.stores[kind.ID()] = store
	}
	w.version++
	store.Set(int(e.id()), value, w.version)
	return nil
}

// RemoveComponent deletes a component and records the removal.
func (w *World) RemoveComponent(e Entity, kind ComponentKind) bool {
	if !w.IsAlive(e) {
		return false
	}
	return w.removeByID(e, kind.ID())
}

func (w *World) removeByID(e Entity, id component.ComponentID) bool {
	if !w.stores[id].Remove(int(e.id())) {
		return false
	}
	w.version++
	w.removals = append(w.removals, removal{entity: e, kind: id, version: w.version})
	return true
}

// HasComponent reports whether e holds kind.
func (w *World) HasComponent(e Entity, kind ComponentKind) bool {
	if !w.IsAlive(e) {
		return false
	}
	return w.stores[kind.ID()].Has(int(e.id()))
}

// GetComponent returns the stored value for kind.
func (w *World) GetComponent(e Entity, kind ComponentKind) (any, bool) {
	if !w.HasComponent(e, kind) {
		return nil, false
	}
	return w.stores[kind.ID()].Get(int(e.id())), true
}

// Version returns the current mutation counter. Pass it back to Changed
// and Removed to see what happened after this point.
func (w *World) Version() uint64 {
	if w == nil {
		return 0
	}
	return w.version
}

// Events returns the world event queue.
func (w *World) Events() *EventQueue {
	if w == nil {
		return nil
	}
	return &w.events
}

func (w *World) beginTick() {
	w.tickStart = w.version
}

// endTick forgets removals older than the previous tick and clears events.
func (w *World) endTick() {
	keep := w.removals[:0]
	for _, r := range w.removals {
		if r.version > w.prevStart {
			keep = append(keep, r)
		}
	}
	clear(w.removals[len(keep):])
	w.removals = keep
	w.prevStart = w.tickStart
	w.events.flush()
}
