package component

import "github.com/milk9111/jointsync/engine"

// RigidBody asks for a simulated body at the entity's transform.
type RigidBody struct {
	Type       engine.BodyType
	Mass       float64
	Friction   float64
	Elasticity float64
}

// Collider gives a body its shape. Without one the body has no mass and
// joints will not attach to it.
type Collider struct {
	Radius float64
	Width  float64
	Height float64
	Depth  float64
}

func (c Collider) Shape() engine.Shape {
	return engine.Shape{Radius: c.Radius, Width: c.Width, Height: c.Height, Depth: c.Depth}
}

// RigidBodyHandle is attached once the body exists in the engine.
type RigidBodyHandle struct {
	Handle engine.BodyHandle
}

var (
	RigidBodyComponent       = NewComponent[RigidBody]()
	ColliderComponent        = NewComponent[Collider]()
	RigidBodyHandleComponent = NewComponent[RigidBodyHandle]()
)
