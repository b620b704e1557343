package scene

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/jointsync/ecs"
	"github.com/milk9111/jointsync/ecs/component"
	"github.com/milk9111/jointsync/ecs/entity"
	"github.com/milk9111/jointsync/engine"
	"github.com/milk9111/jointsync/geom"
	"github.com/milk9111/jointsync/joint"
)

type buildContext struct {
	entities map[string]ecs.Entity
}

type componentBuildFn func(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error

type componentBuilder struct {
	build  componentBuildFn
	remove func(w *ecs.World, e ecs.Entity) bool
}

var componentRegistry = map[string]componentBuilder{
	"transform":  {addTransform, removeOf(component.TransformComponent)},
	"rigid_body": {addRigidBody, removeOf(component.RigidBodyComponent)},
	"collider":   {addCollider, removeOf(component.ColliderComponent)},
	"joint":      {addJoint, removeOf(component.JointComponent)},
}

// Joints go last so snapped joints see every transform.
var componentBuildOrder = []string{
	"transform",
	"rigid_body",
	"collider",
	"joint",
}

func removeOf[T any](handle component.ComponentHandle[T]) func(*ecs.World, ecs.Entity) bool {
	return func(w *ecs.World, e ecs.Entity) bool {
		return ecs.Remove(w, e, handle)
	}
}

// Instance maps scene entity names to the world entities built for them.
type Instance struct {
	Entities map[string]ecs.Entity
	specs    map[string]EntitySpec
}

// Spawn builds every entity in sc. On error nothing is left in the world.
func Spawn(w *ecs.World, sc *Scene) (*Instance, error) {
	if w == nil {
		return nil, fmt.Errorf("scene: world is nil")
	}
	inst := &Instance{
		Entities: make(map[string]ecs.Entity),
		specs:    make(map[string]EntitySpec),
	}
	if err := inst.Apply(w, sc); err != nil {
		for _, e := range inst.Entities {
			w.DestroyEntity(e)
		}
		return nil, err
	}
	return inst, nil
}

// Entity returns the world entity spawned for name.
func (inst *Instance) Entity(name string) (ecs.Entity, bool) {
	if inst == nil {
		return 0, false
	}
	e, ok := inst.Entities[name]
	return e, ok
}

// Names returns the spawned entity names, sorted.
func (inst *Instance) Names() []string {
	names := make([]string, 0, len(inst.Entities))
	for name := range inst.Entities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply brings the world in line with sc. Entities missing from sc are
// destroyed, new ones are spawned, and entities whose components differ
// are rebuilt in place so their joints keep their identity. On error the
// world may be partially updated.
func (inst *Instance) Apply(w *ecs.World, sc *Scene) error {
	if err := sc.Validate(); err != nil {
		return err
	}

	next := make(map[string]EntitySpec, len(sc.Entities))
	for _, es := range sc.Entities {
		next[es.Name] = es
	}

	for _, name := range inst.Names() {
		if _, ok := next[name]; ok {
			continue
		}
		w.DestroyEntity(inst.Entities[name])
		delete(inst.Entities, name)
		delete(inst.specs, name)
	}

	var dirty []string
	for _, es := range sc.Entities {
		prev, ok := inst.specs[es.Name]
		if !ok {
			e := w.CreateEntity()
			if err := ecs.Add(w, e, component.NameComponent, component.Name{Value: es.Name}); err != nil {
				return fmt.Errorf("scene: entity %q: %w", es.Name, err)
			}
			inst.Entities[es.Name] = e
			dirty = append(dirty, es.Name)
			continue
		}
		if reflect.DeepEqual(prev.Components, es.Components) {
			continue
		}
		for comp := range prev.Components {
			if _, ok := es.Components[comp]; !ok {
				componentRegistry[comp].remove(w, inst.Entities[es.Name])
			}
		}
		dirty = append(dirty, es.Name)
	}

	ctx := &buildContext{entities: inst.Entities}
	for _, comp := range componentBuildOrder {
		builder := componentRegistry[comp]
		for _, name := range dirty {
			raw, ok := next[name].Components[comp]
			if !ok {
				continue
			}
			if err := builder.build(w, inst.Entities[name], raw, ctx); err != nil {
				return fmt.Errorf("scene: entity %q: add %q: %w", name, comp, err)
			}
		}
	}

	for _, name := range dirty {
		inst.specs[name] = next[name]
	}
	return nil
}

func addTransform(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := DecodeComponentSpec[TransformSpec](raw)
	if err != nil {
		return fmt.Errorf("decode transform spec: %w", err)
	}
	iso, err := spec.isometry()
	if err != nil {
		return err
	}
	return entity.SetEntityTransform(w, e, component.TransformFrom(iso))
}

func addRigidBody(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := DecodeComponentSpec[RigidBodySpec](raw)
	if err != nil {
		return fmt.Errorf("decode rigid_body spec: %w", err)
	}
	typ, err := engine.ParseBodyType(spec.Type)
	if err != nil {
		return err
	}
	return ecs.Add(w, e, component.RigidBodyComponent, component.RigidBody{
		Type:       typ,
		Mass:       spec.Mass,
		Friction:   spec.Friction,
		Elasticity: spec.Elasticity,
	})
}

func addCollider(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := DecodeComponentSpec[ColliderSpec](raw)
	if err != nil {
		return fmt.Errorf("decode collider spec: %w", err)
	}
	return ecs.Add(w, e, component.ColliderComponent, component.Collider{
		Radius: spec.Radius,
		Width:  spec.Width,
		Height: spec.Height,
		Depth:  spec.Depth,
	})
}

func addJoint(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error {
	spec, err := DecodeComponentSpec[JointSpec](raw)
	if err != nil {
		return fmt.Errorf("decode joint spec: %w", err)
	}
	b1, ok := ctx.entities[spec.Body1]
	if !ok {
		return fmt.Errorf("unknown body1 %q", spec.Body1)
	}
	b2, ok := ctx.entities[spec.Body2]
	if !ok {
		return fmt.Errorf("unknown body2 %q", spec.Body2)
	}
	kind, err := joint.ParseKind(spec.Kind)
	if err != nil {
		return err
	}

	var rec component.Joint
	if spec.Snap {
		rec, err = snapJoint(w, b1, b2, kind, spec)
	} else {
		rec, err = explicitJoint(b1, b2, kind, spec)
	}
	if err != nil {
		return err
	}
	return ecs.Add(w, e, component.JointComponent, rec)
}

func snapJoint(w *ecs.World, b1, b2 ecs.Entity, kind joint.Kind, spec JointSpec) (component.Joint, error) {
	p1, err := vec3(spec.Point1)
	if err != nil {
		return component.Joint{}, fmt.Errorf("point1: %w", err)
	}
	a1, err := vec3(spec.Axis1)
	if err != nil {
		return component.Joint{}, fmt.Errorf("axis1: %w", err)
	}
	switch kind {
	case joint.KindBall:
		return entity.BallJointCurrent(w, b1, b2, p1)
	case joint.KindFixed:
		return entity.FixedJointCurrent(w, b1, b2)
	case joint.KindRevolute:
		if spec.Axis1 == nil {
			a1 = mgl64.Vec3{0, 0, 1}
		}
		return entity.RevoluteJointCurrent(w, b1, b2, p1, a1)
	default:
		return entity.PrismaticJointCurrent(w, b1, b2, p1, a1)
	}
}

// explicitJoint copies the parameters as written. Bad axes are left for
// the joint system to reject.
func explicitJoint(b1, b2 ecs.Entity, kind joint.Kind, spec JointSpec) (component.Joint, error) {
	rec := component.Joint{Body1: uint64(b1), Body2: uint64(b2)}
	var vs [4]mgl64.Vec3
	for i, raw := range [][]float64{spec.Point1, spec.Axis1, spec.Point2, spec.Axis2} {
		v, err := vec3(raw)
		if err != nil {
			return component.Joint{}, fmt.Errorf("joint vector %d: %w", i, err)
		}
		vs[i] = v
	}
	switch kind {
	case joint.KindBall:
		rec.Spec = joint.Ball{Point1: vs[0], Point2: vs[2]}
	case joint.KindFixed:
		f1, err := spec.Frame1.isometry()
		if err != nil {
			return component.Joint{}, fmt.Errorf("frame1: %w", err)
		}
		f2, err := spec.Frame2.isometry()
		if err != nil {
			return component.Joint{}, fmt.Errorf("frame2: %w", err)
		}
		rec.Spec = joint.Fixed{Frame1: f1, Frame2: f2}
	case joint.KindRevolute:
		rec.Spec = joint.Revolute{Point1: vs[0], Axis1: vs[1], Point2: vs[2], Axis2: vs[3]}
	default:
		rec.Spec = joint.Prismatic{Point1: vs[0], Axis1: vs[1], Point2: vs[2], Axis2: vs[3]}
	}
	return rec, nil
}

// isometry reads a transform block. A nil block is the identity.
func (t *TransformSpec) isometry() (geom.Isometry, error) {
	if t == nil {
		return geom.Identity(), nil
	}
	pos, err := vec3(t.Position)
	if err != nil {
		return geom.Isometry{}, fmt.Errorf("position: %w", err)
	}
	if t.Rotation.Angle == 0 {
		return geom.FromTranslation(pos), nil
	}
	axis := mgl64.Vec3{0, 0, 1}
	if t.Rotation.Axis != nil {
		if axis, err = vec3(t.Rotation.Axis); err != nil {
			return geom.Isometry{}, fmt.Errorf("rotation axis: %w", err)
		}
	}
	if axis.Len() == 0 {
		return geom.Isometry{}, fmt.Errorf("rotation axis: %w", joint.ErrZeroAxis)
	}
	return geom.FromRotationTranslation(mgl64.QuatRotate(t.Rotation.Angle, axis.Normalize()), pos), nil
}

// vec3 reads two or three components; a missing vector is zero.
func vec3(v []float64) (mgl64.Vec3, error) {
	var out mgl64.Vec3
	switch len(v) {
	case 0:
	case 2, 3:
		copy(out[:], v)
	default:
		return out, fmt.Errorf("want 2 or 3 components, got %d", len(v))
	}
	return out, nil
}
