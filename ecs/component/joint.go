package component

import (
	"github.com/milk9111/jointsync/engine"
	"github.com/milk9111/jointsync/joint"
)

// Joint links two body entities. Body1 and Body2 hold raw entity values.
type Joint struct {
	Body1 uint64
	Body2 uint64
	Spec  joint.Spec
}

// JointHandle is attached while the joint exists in the engine.
type JointHandle struct {
	Handle engine.JointHandle
	Body1  engine.BodyHandle
	Body2  engine.BodyHandle
}

var (
	JointComponent       = NewComponent[Joint]()
	JointHandleComponent = NewComponent[JointHandle]()
)
