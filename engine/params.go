package engine

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/jointsync/geom"
	"github.com/milk9111/jointsync/joint"
)

// BallParams pins two local anchors together.
type BallParams struct {
	LocalAnchor1 mgl64.Vec3
	LocalAnchor2 mgl64.Vec3
}

// FixedParams keeps two local frames coincident.
type FixedParams struct {
	LocalFrame1 geom.Isometry
	LocalFrame2 geom.Isometry
}

// RevoluteParams pins two anchors and aligns two unit axes.
type RevoluteParams struct {
	LocalAnchor1 mgl64.Vec3
	LocalAxis1   mgl64.Vec3
	LocalAnchor2 mgl64.Vec3
	LocalAxis2   mgl64.Vec3
}

// PrismaticParams aligns two unit axes and their tangents. The tangents are
// chosen by Translate3D.
type PrismaticParams struct {
	LocalAnchor1  mgl64.Vec3
	LocalAxis1    mgl64.Vec3
	LocalTangent1 mgl64.Vec3
	LocalAnchor2  mgl64.Vec3
	LocalAxis2    mgl64.Vec3
	LocalTangent2 mgl64.Vec3
}

func (BallParams) JointKind() joint.Kind      { return joint.KindBall }
func (FixedParams) JointKind() joint.Kind     { return joint.KindFixed }
func (RevoluteParams) JointKind() joint.Kind  { return joint.KindRevolute }
func (PrismaticParams) JointKind() joint.Kind { return joint.KindPrismatic }

// Translate3D maps a spec onto the reference 3-D parameter blocks.
func Translate3D(spec joint.Spec) (Params, error) {
	if err := joint.Validate(spec); err != nil {
		return nil, err
	}
	switch s := spec.(type) {
	case joint.Ball:
		return BallParams{LocalAnchor1: s.Point1, LocalAnchor2: s.Point2}, nil
	case joint.Fixed:
		return FixedParams{LocalFrame1: s.Frame1, LocalFrame2: s.Frame2}, nil
	case joint.Revolute:
		return RevoluteParams{
			LocalAnchor1: s.Point1,
			LocalAxis1:   s.Axis1.Normalize(),
			LocalAnchor2: s.Point2,
			LocalAxis2:   s.Axis2.Normalize(),
		}, nil
	case joint.Prismatic:
		a1 := s.Axis1.Normalize()
		a2 := s.Axis2.Normalize()
		return PrismaticParams{
			LocalAnchor1:  s.Point1,
			LocalAxis1:    a1,
			LocalTangent1: Tangent(a1),
			LocalAnchor2:  s.Point2,
			LocalAxis2:    a2,
			LocalTangent2: Tangent(a2),
		}, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupported, spec)
	}
}

// Tangent returns a unit vector orthogonal to the unit vector axis.
func Tangent(axis mgl64.Vec3) mgl64.Vec3 {
	ref := mgl64.Vec3{1, 0, 0}
	if math.Abs(axis.X()) > 0.9 {
		ref = mgl64.Vec3{0, 1, 0}
	}
	return axis.Cross(ref).Normalize()
}
