// Package entity builds ready-made body and joint entities.
package entity

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/jointsync/ecs"
	"github.com/milk9111/jointsync/ecs/component"
	"github.com/milk9111/jointsync/geom"
	"github.com/milk9111/jointsync/joint"
)

// BallJointCurrent builds a ball joint anchored at p1 (body 1 local) that
// holds the bodies where they are now.
func BallJointCurrent(w *ecs.World, e1, e2 ecs.Entity, p1 mgl64.Vec3) (component.Joint, error) {
	t1, t2, err := currentPair(w, e1, e2)
	if err != nil {
		return component.Joint{}, err
	}
	return record(e1, e2, joint.BallWith(t1, t2, p1)), nil
}

// FixedJointCurrent welds the bodies at their current relative pose.
func FixedJointCurrent(w *ecs.World, e1, e2 ecs.Entity) (component.Joint, error) {
	t1, t2, err := currentPair(w, e1, e2)
	if err != nil {
		return component.Joint{}, err
	}
	return record(e1, e2, joint.FixedWith(t1, t2)), nil
}

func RevoluteJointCurrent(w *ecs.World, e1, e2 ecs.Entity, p1, a1 mgl64.Vec3) (component.Joint, error) {
	t1, t2, err := currentPair(w, e1, e2)
	if err != nil {
		return component.Joint{}, err
	}
	spec, err := joint.RevoluteWith(t1, t2, p1, a1)
	if err != nil {
		return component.Joint{}, err
	}
	return record(e1, e2, spec), nil
}

func PrismaticJointCurrent(w *ecs.World, e1, e2 ecs.Entity, p1, a1 mgl64.Vec3) (component.Joint, error) {
	t1, t2, err := currentPair(w, e1, e2)
	if err != nil {
		return component.Joint{}, err
	}
	spec, err := joint.PrismaticWith(t1, t2, p1, a1)
	if err != nil {
		return component.Joint{}, err
	}
	return record(e1, e2, spec), nil
}

// NewJoint spawns an entity holding rec.
func NewJoint(w *ecs.World, rec component.Joint) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("joint: world is nil")
	}
	if err := joint.Validate(rec.Spec); err != nil {
		return 0, fmt.Errorf("joint: %w", err)
	}
	e := w.CreateEntity()
	if err := ecs.Add(w, e, component.JointComponent, rec); err != nil {
		w.DestroyEntity(e)
		return 0, fmt.Errorf("joint: %w", err)
	}
	return e, nil
}

func record(e1, e2 ecs.Entity, spec joint.Spec) component.Joint {
	return component.Joint{Body1: uint64(e1), Body2: uint64(e2), Spec: spec}
}

func currentPair(w *ecs.World, e1, e2 ecs.Entity) (geom.Isometry, geom.Isometry, error) {
	t1, ok := ecs.Get(w, e1, component.TransformComponent)
	if !ok {
		return geom.Isometry{}, geom.Isometry{}, fmt.Errorf("body 1 %v: %w", e1, joint.ErrTransformUnavailable)
	}
	t2, ok := ecs.Get(w, e2, component.TransformComponent)
	if !ok {
		return geom.Isometry{}, geom.Isometry{}, fmt.Errorf("body 2 %v: %w", e2, joint.ErrTransformUnavailable)
	}
	return t1.Isometry(), t2.Isometry(), nil
}
