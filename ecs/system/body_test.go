package system

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/jointsync/ecs"
	"github.com/milk9111/jointsync/ecs/component"
	"github.com/milk9111/jointsync/ecs/entity"
	"github.com/milk9111/jointsync/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBodySystemLifecycle(t *testing.T) {
	f := newFixture(t)
	e := f.body(t, mgl64.Vec3{1, 2, 3})

	f.tick()
	bh, ok := ecs.Get(f.w, e, component.RigidBodyHandleComponent)
	require.True(t, ok)
	assert.True(t, f.eng.ContainsBody(bh.Handle))
	got, ok := f.pipe.Bodies.Handle(e)
	require.True(t, ok)
	assert.Equal(t, bh.Handle, got)

	f.tick()
	again, _ := ecs.Get(f.w, e, component.RigidBodyHandleComponent)
	assert.Equal(t, bh, again, "no reinsert while unchanged")

	ecs.Remove(f.w, e, component.ColliderComponent)
	f.tick()
	assert.False(t, f.eng.ContainsBody(bh.Handle))
	assert.False(t, ecs.Has(f.w, e, component.RigidBodyHandleComponent))
}

func TestBodySystemRebuildsEditedBody(t *testing.T) {
	cases := []struct {
		name string
		edit func(w *ecs.World, e ecs.Entity) error
	}{
		{"transform", func(w *ecs.World, e ecs.Entity) error {
			return entity.SetEntityTransform(w, e, component.Transform{Position: mgl64.Vec3{5, 0, 0}})
		}},
		{"rigid_body", func(w *ecs.World, e ecs.Entity) error {
			return ecs.Add(w, e, component.RigidBodyComponent, component.RigidBody{Type: engine.BodyDynamic, Mass: 9})
		}},
		{"collider", func(w *ecs.World, e ecs.Entity) error {
			return ecs.Add(w, e, component.ColliderComponent, component.Collider{Radius: 2})
		}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f := newFixture(t)
			e := f.body(t, mgl64.Vec3{1, 0, 0})
			f.tick()
			first, ok := f.pipe.Bodies.Handle(e)
			require.True(t, ok)

			require.NoError(t, c.edit(f.w, e))
			want, _ := ecs.Get(f.w, e, component.TransformComponent)
			f.tick()

			second, ok := f.pipe.Bodies.Handle(e)
			require.True(t, ok)
			assert.NotEqual(t, first, second)
			assert.False(t, f.eng.ContainsBody(first))
			bh, _ := ecs.Get(f.w, e, component.RigidBodyHandleComponent)
			assert.Equal(t, second, bh.Handle)

			pose, ok := f.eng.BodyPose(second)
			require.True(t, ok)
			assert.InDelta(t, want.Position.X(), pose.Translation.X(), 1e-12)
			got, _ := ecs.Get(f.w, e, component.TransformComponent)
			assert.InDelta(t, want.Position.X(), got.Position.X(), 1e-12, "edit survives the step")
		})
	}
}

func TestBodySystemRemovesDestroyedEntity(t *testing.T) {
	f := newFixture(t)
	e := f.body(t, mgl64.Vec3{})
	f.tick()
	bh, _ := ecs.Get(f.w, e, component.RigidBodyHandleComponent)

	f.w.DestroyEntity(e)
	f.tick()
	assert.False(t, f.eng.ContainsBody(bh.Handle))
	_, ok := f.pipe.Bodies.Handle(e)
	assert.False(t, ok)
}

func TestBodySystemDropsRejectedBody(t *testing.T) {
	f := newFixture(t)
	bodies := &rejectingBodies{Engine: f.eng}
	bs := NewBodySystem(bodies, nil)

	e := f.body(t, mgl64.Vec3{})
	bs.Update(f.w)

	assert.False(t, ecs.Has(f.w, e, component.RigidBodyComponent))
	assert.False(t, ecs.Has(f.w, e, component.RigidBodyHandleComponent))
	events := f.w.Events().Drain()
	require.Len(t, events, 1)
	assert.Equal(t, ecs.EventBodyDropped, events[0].Type)
	assert.ErrorIs(t, events[0].Data.(ecs.DropEvent).Err, engine.ErrDegenerateMass)
}

func TestStepSystemWritesDynamicPoses(t *testing.T) {
	f := newFixture(t)
	dyn := f.body(t, mgl64.Vec3{1, 0, 0})
	static := f.w.CreateEntity()
	require.NoError(t, ecs.Add(f.w, static, component.TransformComponent, component.Transform{Position: mgl64.Vec3{5, 5, 5}}))
	require.NoError(t, ecs.Add(f.w, static, component.RigidBodyComponent, component.RigidBody{Type: engine.BodyStatic}))
	require.NoError(t, ecs.Add(f.w, static, component.ColliderComponent, component.Collider{Width: 1, Height: 1}))

	mark := f.w.Version()
	f.tick()

	assert.Equal(t, 1, f.eng.Steps)
	changed := ecs.Changed(f.w, component.TransformComponent, mark)
	assert.Equal(t, []ecs.Entity{dyn}, changed)
}

type rejectingBodies struct {
	engine.Engine
}

func (r *rejectingBodies) InsertBody(engine.BodyDesc) (engine.BodyHandle, error) {
	return 0, engine.ErrDegenerateMass
}
