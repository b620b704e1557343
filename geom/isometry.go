package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Isometry is a rigid transform: rotate first, then translate.
//
// Every constructor normalises the rotation, so a value obtained from this
// package never carries scale or shear. The zero value is not a valid
// isometry; use Identity.
type Isometry struct {
	Rotation    mgl64.Quat
	Translation mgl64.Vec3
}

// Identity returns the isometry that leaves every point in place.
func Identity() Isometry {
	return Isometry{Rotation: mgl64.QuatIdent()}
}

// FromTranslation returns a pure translation.
func FromTranslation(v mgl64.Vec3) Isometry {
	return Isometry{Rotation: mgl64.QuatIdent(), Translation: v}
}

// FromRotation returns a pure rotation. A zero quaternion yields Identity.
func FromRotation(r mgl64.Quat) Isometry {
	return Isometry{Rotation: normalizeQuat(r)}
}

// FromAxisAngle returns a rotation of angle radians about axis.
func FromAxisAngle(axis mgl64.Vec3, angle float64) Isometry {
	if axis.Len() == 0 {
		return Identity()
	}
	return FromRotation(mgl64.QuatRotate(angle, axis.Normalize()))
}

// FromRotationTranslation builds rotation-then-translation.
func FromRotationTranslation(r mgl64.Quat, t mgl64.Vec3) Isometry {
	return Isometry{Rotation: normalizeQuat(r), Translation: t}
}

// FromMat4 converts a world transform matrix. The matrix is assumed to be
// rigid; any scale left in the upper 3x3 is discarded by the quaternion
// normalisation.
func FromMat4(m mgl64.Mat4) Isometry {
	return FromRotationTranslation(mgl64.Mat4ToQuat(m), m.Col(3).Vec3())
}

// Compose returns a∘b: b is applied first.
func Compose(a, b Isometry) Isometry {
	return a.Mul(b)
}

// Mul returns iso∘other.
func (iso Isometry) Mul(other Isometry) Isometry {
	return Isometry{
		Rotation:    normalizeQuat(iso.Rotation.Mul(other.Rotation)),
		Translation: iso.Rotation.Rotate(other.Translation).Add(iso.Translation),
	}
}

// MulTranslation composes iso with a translation applied first.
func (iso Isometry) MulTranslation(v mgl64.Vec3) Isometry {
	return iso.Mul(FromTranslation(v))
}

// MulRotation composes iso with a rotation applied first.
func (iso Isometry) MulRotation(r mgl64.Quat) Isometry {
	return iso.Mul(FromRotation(r))
}

// Inverse returns the algebraic inverse rigid transform.
func (iso Isometry) Inverse() Isometry {
	inv := iso.Rotation.Inverse()
	return Isometry{
		Rotation:    inv,
		Translation: inv.Rotate(iso.Translation).Mul(-1),
	}
}

// Inverse is the free-function form of Isometry.Inverse.
func Inverse(iso Isometry) Isometry {
	return iso.Inverse()
}

// Decompose splits the isometry into its rotation and translation.
func (iso Isometry) Decompose() (mgl64.Quat, mgl64.Vec3) {
	return iso.Rotation, iso.Translation
}

// TransformPoint maps a point: rotation and translation.
func (iso Isometry) TransformPoint(p mgl64.Vec3) mgl64.Vec3 {
	return iso.Rotation.Rotate(p).Add(iso.Translation)
}

// TransformVector maps a direction: rotation only.
func (iso Isometry) TransformVector(v mgl64.Vec3) mgl64.Vec3 {
	return iso.Rotation.Rotate(v)
}

// Mat4 returns the homogeneous matrix form.
func (iso Isometry) Mat4() mgl64.Mat4 {
	t := iso.Translation
	return mgl64.Translate3D(t.X(), t.Y(), t.Z()).Mul4(iso.Rotation.Mat4())
}

// ApproxEqual compares two isometries within eps. q and -q encode the same
// rotation and compare equal.
func (iso Isometry) ApproxEqual(other Isometry, eps float64) bool {
	if !iso.Translation.ApproxEqualThreshold(other.Translation, eps) {
		return false
	}
	d := iso.Rotation.Dot(other.Rotation)
	return 1-math.Abs(d) <= eps
}

// IsFinite reports whether every component is a finite number.
func (iso Isometry) IsFinite() bool {
	q := iso.Rotation
	return isFinite(q.W) && VecIsFinite(q.V) && VecIsFinite(iso.Translation)
}

func normalizeQuat(q mgl64.Quat) mgl64.Quat {
	if q.Len() == 0 {
		return mgl64.QuatIdent()
	}
	return q.Normalize()
}
