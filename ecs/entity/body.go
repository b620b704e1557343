package entity

import (
	"fmt"

	"github.com/milk9111/jointsync/ecs"
	"github.com/milk9111/jointsync/ecs/component"
)

// NewBody spawns an entity with everything the body system needs.
func NewBody(w *ecs.World, t component.Transform, body component.RigidBody, collider component.Collider) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("body: world is nil")
	}
	e := w.CreateEntity()
	if err := ecs.Add(w, e, component.TransformComponent, t); err != nil {
		return 0, fmt.Errorf("body: add transform: %w", err)
	}
	if err := ecs.Add(w, e, component.RigidBodyComponent, body); err != nil {
		w.DestroyEntity(e)
		return 0, fmt.Errorf("body: add rigid body: %w", err)
	}
	if err := ecs.Add(w, e, component.ColliderComponent, collider); err != nil {
		w.DestroyEntity(e)
		return 0, fmt.Errorf("body: add collider: %w", err)
	}
	return e, nil
}

// SetEntityTransform overwrites the transform of e. On a live body this
// rebuilds the engine body at the new pose on the next tick.
func SetEntityTransform(w *ecs.World, e ecs.Entity, t component.Transform) error {
	return ecs.Add(w, e, component.TransformComponent, t)
}
