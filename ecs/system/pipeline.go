package system

import (
	"github.com/milk9111/jointsync/ecs"
	"github.com/milk9111/jointsync/engine"
	"go.uber.org/zap"
)

// Pipeline is the fixed per-tick physics order: bodies, joints, step.
type Pipeline struct {
	*ecs.Scheduler

	Bodies *BodySystem
	Joints *JointSystem
	Step   *StepSystem
}

// NewPhysicsPipeline wires the physics systems against eng. Extra systems
// run after the step, in the order given.
func NewPhysicsPipeline(eng engine.Engine, dt float64, logger *zap.Logger, extra ...ecs.System) *Pipeline {
	p := &Pipeline{
		Bodies: NewBodySystem(eng, logger),
		Joints: NewJointSystem(eng, logger),
		Step:   NewStepSystem(eng, dt),
	}
	p.Scheduler = ecs.NewScheduler(p.Bodies, p.Joints, p.Step)
	for _, s := range extra {
		p.Add(s)
	}
	return p
}
