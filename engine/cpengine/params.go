package cpengine

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/jointsync/engine"
	"github.com/milk9111/jointsync/geom"
	"github.com/milk9111/jointsync/joint"
)

// Frame is a planar joint frame in a body's local coordinates.
type Frame struct {
	Anchor cp.Vector
	Angle  float64
}

// Isometry lifts the frame back to 3-D, rotating about +Z.
func (f Frame) Isometry() geom.Isometry {
	return geom.FromRotationTranslation(
		mgl64.QuatRotate(f.Angle, mgl64.Vec3{0, 0, 1}),
		mgl64.Vec3{f.Anchor.X, f.Anchor.Y, 0},
	)
}

// PivotParams pins two anchors together. Ball and revolute joints both
// map here: in the plane a hinge has no axis left to constrain.
type PivotParams struct {
	AnchorA cp.Vector
	AnchorB cp.Vector
}

// WeldParams locks two frames together with a pivot plus a 1:1 gear.
type WeldParams struct {
	Frame1 Frame
	Frame2 Frame
}

// PrismaticParams lets AnchorB slide along the line through AnchorA with
// direction AxisA while AxisA and AxisB stay aligned. Both axes are unit
// length.
type PrismaticParams struct {
	AnchorA cp.Vector
	AxisA   cp.Vector
	AnchorB cp.Vector
	AxisB   cp.Vector
}

func (PivotParams) JointKind() joint.Kind     { return joint.KindBall }
func (WeldParams) JointKind() joint.Kind      { return joint.KindFixed }
func (PrismaticParams) JointKind() joint.Kind { return joint.KindPrismatic }

// Frames returns both weld frames as isometries.
func (p WeldParams) Frames() (geom.Isometry, geom.Isometry) {
	return p.Frame1.Isometry(), p.Frame2.Isometry()
}

// Phase is the relative angle b - a the gear holds.
func (p WeldParams) Phase() float64 {
	return p.Frame1.Angle - p.Frame2.Angle
}

// Phase is the relative angle b - a the joint holds.
func (p PrismaticParams) Phase() float64 {
	return vectorAngle(p.AxisA) - vectorAngle(p.AxisB)
}

// Translate projects a spec onto the XY plane.
func (e *Engine) Translate(spec joint.Spec) (engine.Params, error) {
	if err := joint.Validate(spec); err != nil {
		return nil, err
	}
	switch s := spec.(type) {
	case joint.Ball:
		return PivotParams{AnchorA: planar(s.Point1), AnchorB: planar(s.Point2)}, nil
	case joint.Revolute:
		return PivotParams{AnchorA: planar(s.Point1), AnchorB: planar(s.Point2)}, nil
	case joint.Fixed:
		return WeldParams{Frame1: planarFrame(s.Frame1), Frame2: planarFrame(s.Frame2)}, nil
	case joint.Prismatic:
		a1, err := planarAxis(s.Axis1)
		if err != nil {
			return nil, fmt.Errorf("axis 1: %w", err)
		}
		a2, err := planarAxis(s.Axis2)
		if err != nil {
			return nil, fmt.Errorf("axis 2: %w", err)
		}
		return PrismaticParams{
			AnchorA: planar(s.Point1),
			AxisA:   a1,
			AnchorB: planar(s.Point2),
			AxisB:   a2,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %T", engine.ErrUnsupported, spec)
	}
}

func planar(v mgl64.Vec3) cp.Vector {
	return cp.Vector{X: v.X(), Y: v.Y()}
}

func planarFrame(iso geom.Isometry) Frame {
	return Frame{Anchor: planar(iso.Translation), Angle: geom.PlanarAngle(iso.Rotation)}
}

// planarAxis fails when the axis is perpendicular to the plane.
func planarAxis(v mgl64.Vec3) (cp.Vector, error) {
	p := planar(v)
	l := math.Hypot(p.X, p.Y)
	if l <= 1e-12 {
		return cp.Vector{}, joint.ErrZeroAxis
	}
	return cp.Vector{X: p.X / l, Y: p.Y / l}, nil
}

func vectorAngle(v cp.Vector) float64 {
	return math.Atan2(v.Y, v.X)
}
