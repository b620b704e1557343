package system

import (
	"github.com/milk9111/jointsync/ecs"
	"github.com/milk9111/jointsync/ecs/component"
	"github.com/milk9111/jointsync/engine"
	"github.com/milk9111/jointsync/geom"
)

// Stepper advances a simulation and reports body poses.
type Stepper interface {
	Step(dt float64)
	BodyPose(h engine.BodyHandle) (geom.Isometry, bool)
}

// StepSystem advances the engine by a fixed timestep and copies dynamic
// body poses back into their transforms.
type StepSystem struct {
	engine Stepper
	dt     float64
}

func NewStepSystem(eng Stepper, dt float64) *StepSystem {
	return &StepSystem{engine: eng, dt: dt}
}

func (ss *StepSystem) Update(w *ecs.World) {
	if ss == nil || w == nil || ss.engine == nil {
		return
	}
	ss.engine.Step(ss.dt)
	ss.syncTransforms(w)
}

func (ss *StepSystem) syncTransforms(w *ecs.World) {
	entities := w.Query(
		component.RigidBodyHandleComponent.Kind(),
		component.RigidBodyComponent.Kind(),
		component.TransformComponent.Kind(),
	)
	for _, e := range entities {
		body, _ := ecs.Get(w, e, component.RigidBodyComponent)
		if body.Type != engine.BodyDynamic {
			continue
		}
		bh, _ := ecs.Get(w, e, component.RigidBodyHandleComponent)
		pose, ok := ss.engine.BodyPose(bh.Handle)
		if !ok {
			continue
		}
		_ = ecs.Add(w, e, component.TransformComponent, component.TransformFrom(pose))
	}
}
