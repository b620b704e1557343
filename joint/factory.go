package joint

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/jointsync/geom"
)

// DeriveFrame returns the transform taking coordinates in from's local frame
// to coordinates in to's local frame, both given as world transforms.
func DeriveFrame(from, to geom.Isometry) geom.Isometry {
	return to.Inverse().Mul(from)
}

// BallArm hangs body 2 on an arm: the pivot is at body 1's origin and at arm
// in body 2's frame.
func BallArm(arm mgl64.Vec3) Ball {
	return Ball{Point2: arm}
}

// BallWith builds a ball joint pivoting at p1 (body 1 local) that is
// satisfied at the given world transforms.
func BallWith(t1, t2 geom.Isometry, p1 mgl64.Vec3) Ball {
	return Ball{
		Point1: p1,
		Point2: DeriveFrame(t1, t2).TransformPoint(p1),
	}
}

// FixedWith locks body 2 to body 1 at their current relative pose. The joint
// frame on body 1 is body 1's own frame.
func FixedWith(t1, t2 geom.Isometry) Fixed {
	return Fixed{
		Frame1: geom.Identity(),
		Frame2: DeriveFrame(t1, t2),
	}
}

// RevoluteWith builds a hinge at p1 about a1 (body 1 local).
func RevoluteWith(t1, t2 geom.Isometry, p1, a1 mgl64.Vec3) (Revolute, error) {
	p2, a2, err := convertAxial(t1, t2, p1, a1)
	if err != nil {
		return Revolute{}, err
	}
	return Revolute{Point1: p1, Axis1: a1, Point2: p2, Axis2: a2}, nil
}

// PrismaticWith builds a slider through p1 along a1 (body 1 local).
func PrismaticWith(t1, t2 geom.Isometry, p1, a1 mgl64.Vec3) (Prismatic, error) {
	p2, a2, err := convertAxial(t1, t2, p1, a1)
	if err != nil {
		return Prismatic{}, err
	}
	return Prismatic{Point1: p1, Axis1: a1, Point2: p2, Axis2: a2}, nil
}

func convertAxial(t1, t2 geom.Isometry, p1, a1 mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3, error) {
	if _, err := UnitAxis(a1); err != nil {
		return mgl64.Vec3{}, mgl64.Vec3{}, err
	}
	frame := DeriveFrame(t1, t2)
	return frame.TransformPoint(p1), frame.TransformVector(a1), nil
}
