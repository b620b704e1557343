package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// PlanarAngle projects a rotation onto the XY plane and returns its angle
// about +Z in radians.
func PlanarAngle(q mgl64.Quat) float64 {
	x := q.Rotate(mgl64.Vec3{1, 0, 0})
	return math.Atan2(x.Y(), x.X())
}

// VecIsFinite reports whether v has no NaN or infinite component.
func VecIsFinite(v mgl64.Vec3) bool {
	return isFinite(v.X()) && isFinite(v.Y()) && isFinite(v.Z())
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
