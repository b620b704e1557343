// Package cpengine runs the joint systems on top of Chipmunk2D. Bodies and
// joints live in the XY plane; Z coordinates are carried through untouched.
package cpengine

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/jointsync/engine"
	"github.com/milk9111/jointsync/geom"
)

const (
	defaultIterations = 10
	defaultBoxSize    = 1.0
)

// Options configures a new Engine.
type Options struct {
	Gravity    mgl64.Vec3
	Iterations int
	// Damping is the fraction of velocity bodies keep per second. Zero
	// means no damping.
	Damping float64
}

// Engine owns a cp.Space and the handle tables in front of it.
type Engine struct {
	space *cp.Space

	bodies engine.SlotMap[engine.BodyHandle, *bodyInfo]
	joints engine.SlotMap[engine.JointHandle, *jointInfo]
}

type bodyInfo struct {
	body   *cp.Body
	shapes []*cp.Shape
	typ    engine.BodyType
	z      float64
}

type jointInfo struct {
	body1       engine.BodyHandle
	body2       engine.BodyHandle
	params      engine.Params
	constraints []*cp.Constraint
}

var _ engine.Engine = (*Engine)(nil)

// New creates an engine with an empty space.
func New(opts Options) *Engine {
	if opts.Iterations <= 0 {
		opts.Iterations = defaultIterations
	}
	space := cp.NewSpace()
	space.Iterations = uint(opts.Iterations)
	space.SetGravity(cp.Vector{X: opts.Gravity.X(), Y: opts.Gravity.Y()})
	if opts.Damping > 0 {
		space.SetDamping(opts.Damping)
	}
	return &Engine{space: space}
}

func (e *Engine) Step(dt float64) {
	e.space.Step(dt)
}

func (e *Engine) InsertBody(desc engine.BodyDesc) (engine.BodyHandle, error) {
	pos := desc.Pose.Translation
	info := &bodyInfo{typ: desc.Type, z: pos.Z()}

	switch desc.Type {
	case engine.BodyStatic:
		info.body = cp.NewStaticBody()
	case engine.BodyKinematic:
		info.body = cp.NewKinematicBody()
	default:
		if desc.Mass <= 0 || math.IsInf(desc.Mass, 0) || math.IsNaN(desc.Mass) {
			return 0, fmt.Errorf("%w: mass %v", engine.ErrDegenerateMass, desc.Mass)
		}
		info.body = cp.NewBody(desc.Mass, moment(desc))
	}
	info.body.SetPosition(cp.Vector{X: pos.X(), Y: pos.Y()})
	info.body.SetAngle(geom.PlanarAngle(desc.Pose.Rotation))

	shape := newShape(info.body, desc.Shape)
	shape.SetFriction(desc.Friction)
	shape.SetElasticity(desc.Elasticity)
	info.shapes = []*cp.Shape{shape}

	e.space.AddBody(info.body)
	e.space.AddShape(shape)
	return e.bodies.Insert(info), nil
}

func (e *Engine) RemoveBody(h engine.BodyHandle) bool {
	info, ok := e.bodies.Get(h)
	if !ok {
		return false
	}

	var attached []engine.JointHandle
	e.joints.Each(func(jh engine.JointHandle, j *jointInfo) {
		if j.body1 == h || j.body2 == h {
			attached = append(attached, jh)
		}
	})
	for _, jh := range attached {
		e.RemoveJoint(jh, true)
	}

	for _, shape := range info.shapes {
		e.space.RemoveShape(shape)
	}
	e.space.RemoveBody(info.body)
	e.bodies.Remove(h)
	return true
}

func (e *Engine) ContainsBody(h engine.BodyHandle) bool {
	return e.bodies.Contains(h)
}

func (e *Engine) BodyPose(h engine.BodyHandle) (geom.Isometry, bool) {
	info, ok := e.bodies.Get(h)
	if !ok {
		return geom.Isometry{}, false
	}
	pos := info.body.Position()
	return geom.FromRotationTranslation(
		mgl64.QuatRotate(info.body.Angle(), mgl64.Vec3{0, 0, 1}),
		mgl64.Vec3{pos.X, pos.Y, info.z},
	), true
}

func (e *Engine) InsertJoint(b1, b2 engine.BodyHandle, params engine.Params) (engine.JointHandle, error) {
	a, ok := e.bodies.Get(b1)
	if !ok {
		return 0, fmt.Errorf("%w: %v", engine.ErrUnknownBody, b1)
	}
	b, ok := e.bodies.Get(b2)
	if !ok {
		return 0, fmt.Errorf("%w: %v", engine.ErrUnknownBody, b2)
	}
	if b1 == b2 {
		return 0, engine.ErrSameBody
	}
	if a.typ != engine.BodyDynamic && b.typ != engine.BodyDynamic {
		return 0, engine.ErrDegenerateMass
	}

	constraints, err := e.build(a.body, b.body, params)
	if err != nil {
		return 0, err
	}
	if err := e.addConstraints(constraints); err != nil {
		return 0, err
	}
	return e.joints.Insert(&jointInfo{
		body1:       b1,
		body2:       b2,
		params:      params,
		constraints: constraints,
	}), nil
}

// RemoveJoint drops the joint's constraints. cp wakes both bodies on
// constraint removal regardless of wakeUp.
func (e *Engine) RemoveJoint(h engine.JointHandle, wakeUp bool) bool {
	info, ok := e.joints.Remove(h)
	if !ok {
		return false
	}
	for _, c := range info.constraints {
		e.space.RemoveConstraint(c)
	}
	if wakeUp {
		e.activate(info.body1)
		e.activate(info.body2)
	}
	return true
}

func (e *Engine) LookupJoint(h engine.JointHandle) (engine.Joint, bool) {
	info, ok := e.joints.Get(h)
	if !ok {
		return engine.Joint{}, false
	}
	return engine.Joint{Body1: info.body1, Body2: info.body2, Params: info.params}, true
}

// Constraints exposes the cp constraints backing a joint.
func (e *Engine) Constraints(h engine.JointHandle) []*cp.Constraint {
	info, ok := e.joints.Get(h)
	if !ok {
		return nil
	}
	return info.constraints
}

func (e *Engine) build(a, b *cp.Body, params engine.Params) ([]*cp.Constraint, error) {
	switch p := params.(type) {
	case PivotParams:
		return []*cp.Constraint{cp.NewPivotJoint2(a, b, p.AnchorA, p.AnchorB)}, nil
	case WeldParams:
		return []*cp.Constraint{
			cp.NewPivotJoint2(a, b, p.Frame1.Anchor, p.Frame2.Anchor),
			cp.NewGearJoint(a, b, p.Phase(), 1),
		}, nil
	case PrismaticParams:
		return []*cp.Constraint{newPrismaticJoint(a, b, p)}, nil
	default:
		return nil, fmt.Errorf("%w: %T", engine.ErrUnsupported, params)
	}
}

// addConstraints turns a cp assertion into ErrRejected and leaves the space
// as it was. Jointed bodies never collide with each other.
func (e *Engine) addConstraints(cs []*cp.Constraint) (err error) {
	added := 0
	defer func() {
		if r := recover(); r != nil {
			for _, c := range cs[:added] {
				e.space.RemoveConstraint(c)
			}
			err = fmt.Errorf("%w: %v", engine.ErrRejected, r)
		}
	}()
	for _, c := range cs {
		c.SetCollideBodies(false)
		e.space.AddConstraint(c)
		added++
	}
	return nil
}

func (e *Engine) activate(h engine.BodyHandle) {
	info, ok := e.bodies.Get(h)
	if !ok || info.typ != engine.BodyDynamic {
		return
	}
	info.body.Activate()
}

func moment(desc engine.BodyDesc) float64 {
	s := desc.Shape
	if s.Radius > 0 {
		return cp.MomentForCircle(desc.Mass, 0, s.Radius, cp.Vector{})
	}
	w, h := boxSize(s)
	return cp.MomentForBox(desc.Mass, w, h)
}

func newShape(body *cp.Body, s engine.Shape) *cp.Shape {
	if s.Radius > 0 {
		return cp.NewCircle(body, s.Radius, cp.Vector{})
	}
	w, h := boxSize(s)
	return cp.NewBox(body, w, h, 0)
}

func boxSize(s engine.Shape) (float64, float64) {
	w, h := s.Width, s.Height
	if w <= 0 || h <= 0 {
		w, h = defaultBoxSize, defaultBoxSize
	}
	return w, h
}
