// Package enginetest provides an in-memory engine that records every joint
// table mutation. It does not simulate anything.
package enginetest

import (
	"github.com/milk9111/jointsync/engine"
	"github.com/milk9111/jointsync/geom"
	"github.com/milk9111/jointsync/joint"
)

// Call is one recorded joint table mutation.
type Call struct {
	Op     string // "insert" or "remove"
	Handle engine.JointHandle
	Wake   bool
}

// Engine is a recording engine using the reference 3-D parameters.
type Engine struct {
	bodies engine.SlotMap[engine.BodyHandle, engine.BodyDesc]
	joints engine.SlotMap[engine.JointHandle, engine.Joint]

	// Reject, when set, is consulted before every joint insert.
	Reject func(b1, b2 engine.BodyHandle, params engine.Params) error

	Calls []Call
	Steps int
}

var _ engine.Engine = (*Engine)(nil)

// New returns an empty engine.
func New() *Engine {
	return &Engine{}
}

func (e *Engine) Translate(spec joint.Spec) (engine.Params, error) {
	return engine.Translate3D(spec)
}

func (e *Engine) InsertJoint(b1, b2 engine.BodyHandle, params engine.Params) (engine.JointHandle, error) {
	if !e.bodies.Contains(b1) || !e.bodies.Contains(b2) {
		return 0, engine.ErrUnknownBody
	}
	if b1 == b2 {
		return 0, engine.ErrSameBody
	}
	if e.Reject != nil {
		if err := e.Reject(b1, b2, params); err != nil {
			return 0, err
		}
	}
	h := e.joints.Insert(engine.Joint{Body1: b1, Body2: b2, Params: params})
	e.Calls = append(e.Calls, Call{Op: "insert", Handle: h})
	return h, nil
}

func (e *Engine) RemoveJoint(h engine.JointHandle, wakeUp bool) bool {
	if _, ok := e.joints.Remove(h); !ok {
		return false
	}
	e.Calls = append(e.Calls, Call{Op: "remove", Handle: h, Wake: wakeUp})
	return true
}

func (e *Engine) LookupJoint(h engine.JointHandle) (engine.Joint, bool) {
	return e.joints.Get(h)
}

func (e *Engine) InsertBody(desc engine.BodyDesc) (engine.BodyHandle, error) {
	return e.bodies.Insert(desc), nil
}

// RemoveBody drops the body and, like a real engine, every joint on it.
// Those joint removals are not recorded as calls.
func (e *Engine) RemoveBody(h engine.BodyHandle) bool {
	if !e.bodies.Contains(h) {
		return false
	}
	var attached []engine.JointHandle
	e.joints.Each(func(jh engine.JointHandle, j engine.Joint) {
		if j.Body1 == h || j.Body2 == h {
			attached = append(attached, jh)
		}
	})
	for _, jh := range attached {
		e.joints.Remove(jh)
	}
	e.bodies.Remove(h)
	return true
}

func (e *Engine) ContainsBody(h engine.BodyHandle) bool {
	return e.bodies.Contains(h)
}

func (e *Engine) BodyPose(h engine.BodyHandle) (geom.Isometry, bool) {
	desc, ok := e.bodies.Get(h)
	if !ok {
		return geom.Isometry{}, false
	}
	return desc.Pose, true
}

func (e *Engine) Step(dt float64) {
	e.Steps++
}

// JointCount returns the number of live joints.
func (e *Engine) JointCount() int {
	return e.joints.Len()
}

// Count returns how many calls with op were recorded.
func (e *Engine) Count(op string) int {
	n := 0
	for _, c := range e.Calls {
		if c.Op == op {
			n++
		}
	}
	return n
}
