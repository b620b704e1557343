package main

import (
	"github.com/milk9111/jointsync/config"
	"github.com/milk9111/jointsync/ecs"
	"github.com/milk9111/jointsync/ecs/system"
	"github.com/milk9111/jointsync/engine/cpengine"
	"github.com/milk9111/jointsync/scene"
	"go.uber.org/zap"
)

// sim is one world driven by the physics pipeline.
type sim struct {
	world    *ecs.World
	engine   *cpengine.Engine
	pipeline *system.Pipeline
	instance *scene.Instance
	log      *zap.Logger

	ticks   int
	dropped []ecs.Event
}

func newSim(cfg config.Config, sc *scene.Scene, logger *zap.Logger) (*sim, error) {
	s := &sim{
		world: ecs.NewWorld(),
		engine: cpengine.New(cpengine.Options{
			Gravity:    cfg.Physics.GravityVec(),
			Iterations: cfg.Physics.Iterations,
			Damping:    cfg.Physics.Damping,
		}),
		log: logger,
	}
	s.pipeline = system.NewPhysicsPipeline(s.engine, cfg.Physics.Timestep, logger, ecs.SystemFunc(s.collect))

	inst, err := scene.Spawn(s.world, sc)
	if err != nil {
		return nil, err
	}
	s.instance = inst
	return s, nil
}

func (s *sim) tick() {
	s.pipeline.Update(s.world)
	s.ticks++
}

func (s *sim) reload(sc *scene.Scene) error {
	if err := s.instance.Apply(s.world, sc); err != nil {
		return err
	}
	s.log.Info("scene reloaded", zap.String("scene", sc.Name), zap.Int("entities", len(s.instance.Entities)))
	return nil
}

func (s *sim) collect(w *ecs.World) {
	for _, evt := range w.Events().Drain() {
		switch evt.Type {
		case ecs.EventJointDropped, ecs.EventBodyDropped:
			s.dropped = append(s.dropped, evt)
		}
	}
}
