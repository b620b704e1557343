package joint

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/jointsync/geom"
)

var (
	ErrZeroAxis             = errors.New("joint: axis has zero length")
	ErrNonFinite            = errors.New("joint: parameter is not finite")
	ErrUnknownKind          = errors.New("joint: unknown joint kind")
	ErrTransformUnavailable = errors.New("joint: body transform unavailable")
	errNilSpec              = errors.New("joint: spec is nil")
)

const axisEpsilon = 1e-12

// Kind names a joint variant.
type Kind uint8

const (
	KindBall Kind = iota + 1
	KindFixed
	KindRevolute
	KindPrismatic
)

func (k Kind) String() string {
	switch k {
	case KindBall:
		return "ball"
	case KindFixed:
		return "fixed"
	case KindRevolute:
		return "revolute"
	case KindPrismatic:
		return "prismatic"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "ball":
		return KindBall, nil
	case "fixed":
		return KindFixed, nil
	case "revolute":
		return KindRevolute, nil
	case "prismatic":
		return KindPrismatic, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Spec is the closed set of joint variants. All geometry is expressed in
// the local frame of the body it belongs to.
type Spec interface {
	Kind() Kind
	isSpec()
}

// Ball pins Point1 on body 1 to Point2 on body 2. Rotation is free.
type Ball struct {
	Point1 mgl64.Vec3
	Point2 mgl64.Vec3
}

// Fixed keeps the world images of Frame1 and Frame2 coincident.
type Fixed struct {
	Frame1 geom.Isometry
	Frame2 geom.Isometry
}

// Revolute pins the points and aligns the axes, leaving one rotational
// degree of freedom. Axes need not be unit length.
type Revolute struct {
	Point1 mgl64.Vec3
	Axis1  mgl64.Vec3
	Point2 mgl64.Vec3
	Axis2  mgl64.Vec3
}

// Prismatic aligns the axes and allows translation along them. Tangent
// axes are left to the engine.
type Prismatic struct {
	Point1 mgl64.Vec3
	Axis1  mgl64.Vec3
	Point2 mgl64.Vec3
	Axis2  mgl64.Vec3
}

func (Ball) Kind() Kind      { return KindBall }
func (Fixed) Kind() Kind     { return KindFixed }
func (Revolute) Kind() Kind  { return KindRevolute }
func (Prismatic) Kind() Kind { return KindPrismatic }

func (Ball) isSpec()      {}
func (Fixed) isSpec()     {}
func (Revolute) isSpec()  {}
func (Prismatic) isSpec() {}

// Validate rejects specs that an engine could only turn into NaNs.
func Validate(spec Spec) error {
	switch s := spec.(type) {
	case nil:
		return errNilSpec
	case Ball:
		return finitePoints(s.Point1, s.Point2)
	case Fixed:
		if !s.Frame1.IsFinite() || !s.Frame2.IsFinite() {
			return ErrNonFinite
		}
		return nil
	case Revolute:
		return validateAxial(s.Point1, s.Axis1, s.Point2, s.Axis2)
	case Prismatic:
		return validateAxial(s.Point1, s.Axis1, s.Point2, s.Axis2)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownKind, spec)
	}
}

// UnitAxis normalises a direction, failing on zero length.
func UnitAxis(axis mgl64.Vec3) (mgl64.Vec3, error) {
	if !geom.VecIsFinite(axis) {
		return mgl64.Vec3{}, ErrNonFinite
	}
	if axis.Len() <= axisEpsilon {
		return mgl64.Vec3{}, ErrZeroAxis
	}
	return axis.Normalize(), nil
}

func validateAxial(p1, a1, p2, a2 mgl64.Vec3) error {
	if err := finitePoints(p1, p2); err != nil {
		return err
	}
	if _, err := UnitAxis(a1); err != nil {
		return fmt.Errorf("axis 1: %w", err)
	}
	if _, err := UnitAxis(a2); err != nil {
		return fmt.Errorf("axis 2: %w", err)
	}
	return nil
}

func finitePoints(points ...mgl64.Vec3) error {
	for _, p := range points {
		if !geom.VecIsFinite(p) {
			return ErrNonFinite
		}
	}
	return nil
}
