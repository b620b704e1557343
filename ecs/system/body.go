package system

import (
	"sort"

	"github.com/milk9111/jointsync/ecs"
	"github.com/milk9111/jointsync/ecs/component"
	"github.com/milk9111/jointsync/engine"
	"go.uber.org/zap"
)

// BodySystem mirrors entities carrying Transform, RigidBody and Collider
// into engine bodies and removes bodies whose entity went away. A body
// whose components are edited from outside the step is rebuilt under a
// new handle.
type BodySystem struct {
	engine engine.Bodies
	log    *zap.Logger

	entities map[ecs.Entity]trackedBody
}

// trackedBody is the component state a body was built from.
type trackedBody struct {
	handle    engine.BodyHandle
	transform component.Transform
	body      component.RigidBody
	collider  component.Collider
}

func NewBodySystem(eng engine.Bodies, logger *zap.Logger) *BodySystem {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BodySystem{
		engine:   eng,
		log:      logger.Named("bodies"),
		entities: make(map[ecs.Entity]trackedBody),
	}
}

func (bs *BodySystem) Update(w *ecs.World) {
	if bs == nil || w == nil || bs.engine == nil {
		return
	}
	bs.cleanupEntities(w)
	bs.syncEntities(w)
}

func (bs *BodySystem) syncEntities(w *ecs.World) {
	entities := w.Query(
		component.TransformComponent.Kind(),
		component.RigidBodyComponent.Kind(),
		component.ColliderComponent.Kind(),
	)
	for _, e := range entities {
		if _, ok := bs.entities[e]; ok {
			continue
		}
		transform, _ := ecs.Get(w, e, component.TransformComponent)
		body, _ := ecs.Get(w, e, component.RigidBodyComponent)
		collider, _ := ecs.Get(w, e, component.ColliderComponent)

		h, err := bs.engine.InsertBody(engine.BodyDesc{
			Type:       body.Type,
			Pose:       transform.Isometry(),
			Mass:       body.Mass,
			Shape:      collider.Shape(),
			Friction:   body.Friction,
			Elasticity: body.Elasticity,
		})
		if err != nil {
			// The body stays unmaterialised; joints on it will be dropped.
			ecs.Remove(w, e, component.RigidBodyComponent)
			bs.log.Warn("dropping rigid body", zap.Stringer("entity", e), zap.Error(err))
			w.Events().Push(ecs.Event{
				Type: ecs.EventBodyDropped,
				Data: ecs.DropEvent{Entity: e, Err: err},
			})
			continue
		}

		bs.entities[e] = trackedBody{handle: h, transform: transform, body: body, collider: collider}
		if err := ecs.Add(w, e, component.RigidBodyHandleComponent, component.RigidBodyHandle{Handle: h}); err != nil {
			panic("body system: add body handle: " + err.Error())
		}
		bs.log.Debug("body created", zap.Stringer("entity", e), zap.Stringer("handle", h))
	}
}

// cleanupEntities removes engine bodies of entities that died, lost a
// required component or were edited since the body was built. The engine
// drops their joints with them. Edited entities are inserted again by
// syncEntities in the same update.
func (bs *BodySystem) cleanupEntities(w *ecs.World) {
	entities := make([]ecs.Entity, 0, len(bs.entities))
	for e := range bs.entities {
		entities = append(entities, e)
	}
	sort.Slice(entities, func(i, j int) bool { return entities[i] < entities[j] })

	for _, e := range entities {
		tb := bs.entities[e]
		reason := "body removed"
		if w.IsAlive(e) {
			if bs.current(w, e, &tb) {
				bs.entities[e] = tb
				continue
			}
			if ecs.Has(w, e, component.TransformComponent) &&
				ecs.Has(w, e, component.RigidBodyComponent) &&
				ecs.Has(w, e, component.ColliderComponent) {
				reason = "body changed, rebuilding"
			}
		}

		bs.engine.RemoveBody(tb.handle)
		delete(bs.entities, e)
		if w.IsAlive(e) {
			ecs.Remove(w, e, component.RigidBodyHandleComponent)
		}
		bs.log.Debug(reason, zap.Stringer("entity", e), zap.Stringer("handle", tb.handle))
	}
}

// current reports whether the body in tb still matches e's components. A
// transform equal to the engine's own pose was written back by the step
// and is folded into tb.
func (bs *BodySystem) current(w *ecs.World, e ecs.Entity, tb *trackedBody) bool {
	transform, ok := ecs.Get(w, e, component.TransformComponent)
	if !ok {
		return false
	}
	body, ok := ecs.Get(w, e, component.RigidBodyComponent)
	if !ok || body != tb.body {
		return false
	}
	collider, ok := ecs.Get(w, e, component.ColliderComponent)
	if !ok || collider != tb.collider {
		return false
	}
	if bh, ok := ecs.Get(w, e, component.RigidBodyHandleComponent); !ok || bh.Handle != tb.handle {
		return false
	}
	if transform == tb.transform {
		return true
	}
	pose, ok := bs.engine.BodyPose(tb.handle)
	if !ok || transform != component.TransformFrom(pose) {
		return false
	}
	tb.transform = transform
	return true
}

// Handle returns the engine body for e, if the system created one.
func (bs *BodySystem) Handle(e ecs.Entity) (engine.BodyHandle, bool) {
	if bs == nil {
		return 0, false
	}
	tb, ok := bs.entities[e]
	return tb.handle, ok
}
