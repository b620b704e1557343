package system

import (
	"errors"
	"fmt"
	"sort"

	"github.com/milk9111/jointsync/ecs"
	"github.com/milk9111/jointsync/ecs/component"
	"github.com/milk9111/jointsync/engine"
	"go.uber.org/zap"
)

var (
	ErrBodyMissing  = errors.New("joint: body entity missing")
	ErrBodyNotReady = errors.New("joint: body not simulation ready")
)

// JointSystem keeps the engine's joint table in step with the Joint
// records in the world. Each Update runs, in order: the removal pass, the
// change pass, the orphan sweep, then the creation pass.
type JointSystem struct {
	engine engine.JointEngine
	log    *zap.Logger

	lastVersion uint64
	tracked     map[ecs.Entity]trackedJoint
}

// trackedJoint is the record value a live engine joint was built from.
type trackedJoint struct {
	handle engine.JointHandle
	joint  component.Joint
}

func NewJointSystem(eng engine.JointEngine, logger *zap.Logger) *JointSystem {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JointSystem{
		engine:  eng,
		log:     logger.Named("joints"),
		tracked: make(map[ecs.Entity]trackedJoint),
	}
}

// Live returns the number of engine joints the system owns.
func (js *JointSystem) Live() int {
	if js == nil {
		return 0
	}
	return len(js.tracked)
}

func (js *JointSystem) Update(w *ecs.World) {
	if js == nil || w == nil || js.engine == nil {
		return
	}

	since := js.lastVersion
	js.handleRemoved(w, since)
	js.handleChanged(w, since)
	js.sweepOrphans(w)
	js.create(w)
	js.lastVersion = w.Version()
}

func (js *JointSystem) handleRemoved(w *ecs.World, since uint64) {
	for _, e := range ecs.Removed(w, component.JointComponent, since) {
		if _, ok := js.tracked[e]; !ok {
			continue
		}
		js.teardown(w, e)
		delete(js.tracked, e)
		js.log.Debug("joint record removed", zap.Stringer("entity", e))
	}
}

func (js *JointSystem) handleChanged(w *ecs.World, since uint64) {
	for _, e := range ecs.Changed(w, component.JointComponent, since) {
		prev, ok := js.tracked[e]
		if !ok {
			continue
		}
		cur, ok := ecs.Get(w, e, component.JointComponent)
		if !ok || cur == prev.joint {
			continue
		}
		js.teardown(w, e)
		delete(js.tracked, e)
		js.log.Debug("joint record changed, rebuilding", zap.Stringer("entity", e))
	}
}

// sweepOrphans checks tracked joints against their bodies. A record whose
// body no longer resolves is dropped. A joint whose engine side went away
// while both bodies still resolve, as when a body is rebuilt, is untracked
// so the creation pass inserts it again.
func (js *JointSystem) sweepOrphans(w *ecs.World) {
	entities := make([]ecs.Entity, 0, len(js.tracked))
	for e := range js.tracked {
		entities = append(entities, e)
	}
	sort.Slice(entities, func(i, j int) bool { return entities[i] < entities[j] })

	for _, e := range entities {
		tj := js.tracked[e]
		if !w.IsAlive(e) {
			js.teardown(w, e)
			delete(js.tracked, e)
			continue
		}
		if !ecs.Has(w, e, component.JointHandleComponent) {
			js.engine.RemoveJoint(tj.handle, true)
			delete(js.tracked, e)
			continue
		}

		b1, b2, err := js.resolvePair(w, tj.joint)
		if err != nil {
			js.teardown(w, e)
			delete(js.tracked, e)
			js.drop(w, e, err)
			continue
		}
		if live, ok := js.engine.LookupJoint(tj.handle); ok && live.Body1 == b1 && live.Body2 == b2 {
			continue
		}

		// The bodies were rebuilt under new handles. The record is still
		// valid, so the creation pass inserts it again.
		js.teardown(w, e)
		delete(js.tracked, e)
		js.log.Debug("joint bodies rebuilt, recreating",
			zap.Stringer("entity", e),
			zap.Stringer("handle", tj.handle),
		)
	}
}

func (js *JointSystem) create(w *ecs.World) {
	for _, e := range w.Query(component.JointComponent.Kind()) {
		if ecs.Has(w, e, component.JointHandleComponent) {
			continue
		}
		rec, ok := ecs.Get(w, e, component.JointComponent)
		if !ok {
			continue
		}

		b1, b2, err := js.resolvePair(w, rec)
		if err != nil {
			js.drop(w, e, err)
			continue
		}
		params, err := js.engine.Translate(rec.Spec)
		if err != nil {
			js.drop(w, e, fmt.Errorf("translate %s joint: %w", kindOf(rec), err))
			continue
		}
		h, err := js.engine.InsertJoint(b1, b2, params)
		if err != nil {
			js.drop(w, e, fmt.Errorf("insert %s joint: %w", kindOf(rec), err))
			continue
		}

		if err := ecs.Add(w, e, component.JointHandleComponent, component.JointHandle{Handle: h, Body1: b1, Body2: b2}); err != nil {
			panic("joint system: add joint handle: " + err.Error())
		}
		js.tracked[e] = trackedJoint{handle: h, joint: rec}
		js.log.Debug("joint created",
			zap.Stringer("entity", e),
			zap.Stringer("handle", h),
			zap.Stringer("kind", rec.Spec.Kind()),
		)
	}
}

// teardown removes the engine joint and the handle component but leaves
// the record alone.
func (js *JointSystem) teardown(w *ecs.World, e ecs.Entity) {
	tj, ok := js.tracked[e]
	if !ok {
		return
	}
	js.engine.RemoveJoint(tj.handle, true)
	if w.IsAlive(e) {
		ecs.Remove(w, e, component.JointHandleComponent)
	}
}

// drop removes a record that cannot be materialised.
func (js *JointSystem) drop(w *ecs.World, e ecs.Entity, err error) {
	ecs.Remove(w, e, component.JointComponent)
	js.log.Warn("dropping joint record", zap.Stringer("entity", e), zap.Error(err))
	w.Events().Push(ecs.Event{
		Type: ecs.EventJointDropped,
		Data: ecs.DropEvent{Entity: e, Err: err},
	})
}

func (js *JointSystem) resolvePair(w *ecs.World, rec component.Joint) (engine.BodyHandle, engine.BodyHandle, error) {
	b1, err := js.resolveBody(w, rec.Body1)
	if err != nil {
		return 0, 0, fmt.Errorf("body 1: %w", err)
	}
	b2, err := js.resolveBody(w, rec.Body2)
	if err != nil {
		return 0, 0, fmt.Errorf("body 2: %w", err)
	}
	return b1, b2, nil
}

func (js *JointSystem) resolveBody(w *ecs.World, ref uint64) (engine.BodyHandle, error) {
	e := ecs.Entity(ref)
	if !w.IsAlive(e) {
		return 0, fmt.Errorf("%w: %v", ErrBodyMissing, e)
	}
	if !ecs.Has(w, e, component.ColliderComponent) {
		return 0, fmt.Errorf("%w: %v has no collider", ErrBodyNotReady, e)
	}
	bh, ok := ecs.Get(w, e, component.RigidBodyHandleComponent)
	if !ok || !js.engine.ContainsBody(bh.Handle) {
		return 0, fmt.Errorf("%w: %v has no engine body", ErrBodyNotReady, e)
	}
	return bh.Handle, nil
}

func kindOf(rec component.Joint) string {
	if rec.Spec == nil {
		return "nil"
	}
	return rec.Spec.Kind().String()
}
