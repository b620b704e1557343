// Package engine describes the handle-based surface a physics engine exposes
// to the joint synchronisation systems.
package engine

import (
	"errors"
	"fmt"

	"github.com/milk9111/jointsync/geom"
	"github.com/milk9111/jointsync/joint"
)

var (
	ErrUnknownBody    = errors.New("engine: unknown body handle")
	ErrSameBody       = errors.New("engine: joint attaches a body to itself")
	ErrDegenerateMass = errors.New("engine: joint needs at least one body with finite mass")
	ErrRejected       = errors.New("engine: joint rejected")
	ErrUnsupported    = errors.New("engine: unsupported joint parameters")
)

// BodyType selects how the engine integrates a body.
type BodyType uint8

const (
	BodyDynamic BodyType = iota
	BodyStatic
	BodyKinematic
)

func (t BodyType) String() string {
	switch t {
	case BodyDynamic:
		return "dynamic"
	case BodyStatic:
		return "static"
	case BodyKinematic:
		return "kinematic"
	default:
		return "unknown"
	}
}

// ParseBodyType is the inverse of BodyType.String. Empty means dynamic.
func ParseBodyType(s string) (BodyType, error) {
	switch s {
	case "", "dynamic":
		return BodyDynamic, nil
	case "static":
		return BodyStatic, nil
	case "kinematic":
		return BodyKinematic, nil
	default:
		return 0, fmt.Errorf("engine: unknown body type %q", s)
	}
}

// Shape is the collision shape of a body. A positive Radius selects a
// ball, otherwise Width/Height/Depth select a box.
type Shape struct {
	Radius float64
	Width  float64
	Height float64
	Depth  float64
}

// BodyDesc is everything an engine needs to materialise a body.
type BodyDesc struct {
	Type       BodyType
	Pose       geom.Isometry
	Mass       float64
	Shape      Shape
	Friction   float64
	Elasticity float64
}

// Params is an engine-native joint parameter block.
type Params interface {
	JointKind() joint.Kind
}

// Joint is the engine's view of a live joint.
type Joint struct {
	Body1  BodyHandle
	Body2  BodyHandle
	Params Params
}

// Translator converts a joint spec to the engine's native parameters,
// normalising axes and rejecting degenerate input.
type Translator interface {
	Translate(spec joint.Spec) (Params, error)
}

// Joints is the engine's joint table.
type Joints interface {
	InsertJoint(b1, b2 BodyHandle, params Params) (JointHandle, error)
	RemoveJoint(h JointHandle, wakeUp bool) bool
	LookupJoint(h JointHandle) (Joint, bool)
}

// Bodies is the engine's body table. Removing a body removes every joint
// attached to it.
type Bodies interface {
	InsertBody(desc BodyDesc) (BodyHandle, error)
	RemoveBody(h BodyHandle) bool
	ContainsBody(h BodyHandle) bool
	BodyPose(h BodyHandle) (geom.Isometry, bool)
}

// JointEngine is what the joint system needs.
type JointEngine interface {
	Translator
	Joints
	ContainsBody(h BodyHandle) bool
}

// Engine is a complete physics backend.
type Engine interface {
	Translator
	Joints
	Bodies
	Step(dt float64)
}
