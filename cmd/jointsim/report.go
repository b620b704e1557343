package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/jointsync/ecs"
	"github.com/milk9111/jointsync/ecs/component"
	"github.com/milk9111/jointsync/ecs/system"
	"github.com/milk9111/jointsync/engine"
	"github.com/milk9111/jointsync/geom"
	"github.com/milk9111/jointsync/joint"
)

// snapshotJoints keeps the records as spawned so dropped joints can still
// be described after the tick removed them.
func snapshotJoints(s *sim) map[ecs.Entity]component.Joint {
	out := make(map[ecs.Entity]component.Joint)
	ecs.ForEach(s.world, component.JointComponent, func(e ecs.Entity, rec component.Joint) {
		out[e] = rec
	})
	return out
}

func writeReport(out io.Writer, name string, s *sim, records map[ecs.Entity]component.Joint) error {
	w := s.world
	reasons := make(map[ecs.Entity]error)
	for _, evt := range s.dropped {
		if drop, ok := evt.Data.(ecs.DropEvent); ok {
			reasons[drop.Entity] = drop.Err
		}
	}

	var live, dropped int
	p := &printer{w: out}
	p.printf("scene %s\n", name)
	p.printf("bodies:\n")
	for _, n := range s.instance.Names() {
		e := s.instance.Entities[n]
		body, ok := ecs.Get(w, e, component.RigidBodyComponent)
		if !ok {
			if err, ok := reasons[e]; ok {
				p.printf("  %-10s %-10s dropped: %s\n", n, "-", reason(err))
			}
			continue
		}
		handle := "-"
		if bh, ok := ecs.Get(w, e, component.RigidBodyHandleComponent); ok {
			handle = bh.Handle.String()
		}
		p.printf("  %-10s %-10s %s\n", n, body.Type, handle)
	}

	p.printf("joints:\n")
	for _, n := range s.instance.Names() {
		e := s.instance.Entities[n]
		rec, ok := records[e]
		if !ok {
			continue
		}
		status := "pending"
		if h, ok := ecs.Get(w, e, component.JointHandleComponent); ok {
			status = h.Handle.String()
			live++
		} else if err, ok := reasons[e]; ok {
			status = "dropped: " + reason(err)
			dropped++
		}
		p.printf("  %-10s %-10s %s -> %s  %s\n", n, rec.Spec.Kind(), nameOf(w, rec.Body1), nameOf(w, rec.Body2), status)
		p.printf("      %s\n", describe(rec.Spec))
	}
	p.printf("live: %d dropped: %d\n", live, dropped)
	return p.err
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func nameOf(w *ecs.World, ref uint64) string {
	if n, ok := ecs.Get(w, ecs.Entity(ref), component.NameComponent); ok {
		return n.Value
	}
	return ecs.Entity(ref).String()
}

func reason(err error) string {
	switch {
	case errors.Is(err, system.ErrBodyMissing):
		return "body missing"
	case errors.Is(err, system.ErrBodyNotReady):
		return "body not ready"
	case errors.Is(err, joint.ErrZeroAxis):
		return "zero axis"
	case errors.Is(err, joint.ErrNonFinite):
		return "non-finite parameter"
	case errors.Is(err, engine.ErrDegenerateMass):
		return "degenerate mass"
	case errors.Is(err, engine.ErrSameBody):
		return "same body"
	case errors.Is(err, engine.ErrRejected):
		return "rejected by engine"
	default:
		return err.Error()
	}
}

func describe(spec joint.Spec) string {
	switch s := spec.(type) {
	case joint.Ball:
		return fmt.Sprintf("p1=%s p2=%s", vec(s.Point1), vec(s.Point2))
	case joint.Fixed:
		return fmt.Sprintf("f1=%s f2=%s", frame(s.Frame1), frame(s.Frame2))
	case joint.Revolute:
		return fmt.Sprintf("p1=%s a1=%s p2=%s a2=%s", vec(s.Point1), vec(s.Axis1), vec(s.Point2), vec(s.Axis2))
	case joint.Prismatic:
		return fmt.Sprintf("p1=%s a1=%s p2=%s a2=%s", vec(s.Point1), vec(s.Axis1), vec(s.Point2), vec(s.Axis2))
	default:
		return "?"
	}
}

func vec(v mgl64.Vec3) string {
	return fmt.Sprintf("(%s, %s, %s)", num(v.X()), num(v.Y()), num(v.Z()))
}

func frame(iso geom.Isometry) string {
	return vec(iso.Translation) + "@" + num(geom.PlanarAngle(iso.Rotation))
}

// num prints three decimals and never a negative zero.
func num(f float64) string {
	s := fmt.Sprintf("%.3f", f)
	if s == "-0.000" {
		return "0.000"
	}
	return s
}
