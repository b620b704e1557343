// Package ecs is a small sparse-set entity component store with change
// and removal tracking, plus a scheduler that runs systems in order.
package ecs

import "strconv"

// Entity packs a slot id (low 32 bits) and its generation (high 32 bits).
// Destroying an entity bumps its slot's generation, so a stale Entity
// never resolves to the slot's next occupant. Components that reference
// other entities store the raw uint64.
type Entity uint64

type (
	entityID   uint32
	generation uint32
)

const entityIDBits = 32

func makeEntity(id entityID, gen generation) Entity {
	return Entity(uint64(gen)<<entityIDBits | uint64(id))
}

func (e Entity) id() entityID {
	return entityID(uint32(e))
}

func (e Entity) generation() generation {
	return generation(uint32(uint64(e) >> entityIDBits))
}

// String renders the entity as "<id>v<generation>".
func (e Entity) String() string {
	return strconv.FormatUint(uint64(e.id()), 10) + "v" + strconv.FormatUint(uint64(e.generation()), 10)
}

// Valid reports whether e names a slot. Slot 0 is reserved, so the zero
// Entity and any reference decoded from an unset field are invalid.
func (e Entity) Valid() bool {
	return e.id() > 0
}
