package component

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/jointsync/geom"
)

// Transform is an entity's world pose.
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// Isometry returns the pose as a rigid transform. A zero rotation reads as
// identity.
func (t Transform) Isometry() geom.Isometry {
	return geom.FromRotationTranslation(t.Rotation, t.Position)
}

// TransformFrom is the inverse of Isometry.
func TransformFrom(iso geom.Isometry) Transform {
	return Transform{Position: iso.Translation, Rotation: iso.Rotation}
}

var TransformComponent = NewComponent[Transform]()
