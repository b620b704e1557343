package ecs

import (
	"testing"

	"github.com/milk9111/jointsync/ecs/component"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorldEntityLifecycle(t *testing.T) {
	cases := []struct {
		name         string
		create       int
		destroyIndex int // -1 = none
	}{
		{"single", 1, 0},
		{"three_create_destroy_middle", 3, 1},
		{"none_destroy", 2, -1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := NewWorld()
			ents := make([]Entity, 0, c.create)
			for i := 0; i < c.create; i++ {
				ents = append(ents, w.CreateEntity())
			}
			require.Len(t, w.Entities(), c.create)
			if c.destroyIndex < 0 {
				return
			}
			dead := ents[c.destroyIndex]
			require.True(t, w.DestroyEntity(dead))
			assert.False(t, w.IsAlive(dead))
			assert.False(t, w.DestroyEntity(dead), "second destroy")
			assert.Len(t, w.Entities(), c.create-1)
		})
	}
}

func TestEntitySlotReuseBumpsGeneration(t *testing.T) {
	w := NewWorld()
	a := w.CreateEntity()
	require.True(t, w.DestroyEntity(a))
	b := w.CreateEntity()

	assert.Equal(t, a.id(), b.id())
	assert.NotEqual(t, a, b)
	assert.False(t, w.IsAlive(a))
	assert.True(t, w.IsAlive(b))
	assert.False(t, Entity(0).Valid())
	assert.False(t, Entity(uint64(3)<<entityIDBits).Valid(), "generation alone names no slot")
	assert.Equal(t, "1v0", a.String())
	assert.Equal(t, "1v1", b.String())
}

func TestComponents(t *testing.T) {
	w := NewWorld()
	ints := component.NewComponent[int]()
	strs := component.NewComponent[string]()

	e1 := w.CreateEntity()
	e2 := w.CreateEntity()

	tests := []struct {
		name     string
		setup    func() error
		check    func(t *testing.T)
		teardown func() bool
	}{
		{
			name:  "add_int",
			setup: func() error { return Add(w, e1, ints, 10) },
			check: func(t *testing.T) {
				v, ok := Get(w, e1, ints)
				require.True(t, ok)
				assert.Equal(t, 10, v)
			},
			teardown: func() bool { return Remove(w, e1, ints) },
		},
		{
			name: "add_str_to_both",
			setup: func() error {
				if err := Add(w, e1, strs, "a"); err != nil {
					return err
				}
				return Add(w, e2, strs, "b")
			},
			check: func(t *testing.T) {
				assert.True(t, Has(w, e1, strs))
				assert.True(t, Has(w, e2, strs))
				assert.Equal(t, []Entity{e1, e2}, w.Query(strs.Kind()))
			},
			teardown: func() bool { return Remove(w, e1, strs) },
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.NoError(t, tc.setup())
			tc.check(t)
			assert.True(t, tc.teardown())
			assert.False(t, tc.teardown(), "already removed")
		})
	}
}

func TestAddComponentErrors(t *testing.T) {
	w := NewWorld()
	h := component.NewComponent[int]()
	e := w.CreateEntity()

	assert.ErrorIs(t, w.AddComponent(e, component.ComponentKind[int]{}, 1), component.ErrInvalidComponentKind)
	assert.ErrorIs(t, w.AddComponent(e, h.Kind(), nil), component.ErrNilComponent)

	w.DestroyEntity(e)
	assert.ErrorIs(t, Add(w, e, h, 1), component.ErrEntityNotAlive)
}

func TestQueryIntersectsInIDOrder(t *testing.T) {
	w := NewWorld()
	a := component.NewComponent[int]()
	b := component.NewComponent[bool]()

	var both []Entity
	for i := 0; i < 6; i++ {
		e := w.CreateEntity()
		require.NoError(t, Add(w, e, a, i))
		if i%2 == 0 {
			require.NoError(t, Add(w, e, b, true))
			both = append(both, e)
		}
	}
	// Swap-remove reshuffles the dense array; order must not follow it.
	Remove(w, both[0], b)
	require.NoError(t, Add(w, both[0], b, true))

	assert.Equal(t, both, w.Query(a.Kind(), b.Kind()))
	first, ok := w.First(b.Kind())
	require.True(t, ok)
	assert.Equal(t, both[0], first)
	assert.Empty(t, w.Query(component.NewComponent[string]().Kind()))
}

func TestChangedSince(t *testing.T) {
	w := NewWorld()
	h := component.NewComponent[int]()
	e1 := w.CreateEntity()
	e2 := w.CreateEntity()
	require.NoError(t, Add(w, e1, h, 1))
	require.NoError(t, Add(w, e2, h, 2))

	mark := w.Version()
	assert.Empty(t, Changed(w, h, mark))

	require.NoError(t, Add(w, e2, h, 3))
	assert.Equal(t, []Entity{e2}, Changed(w, h, mark))
	assert.Equal(t, []Entity{e1, e2}, Changed(w, h, 0))
}

func TestRemovedSince(t *testing.T) {
	w := NewWorld()
	h := component.NewComponent[int]()
	other := component.NewComponent[string]()
	e1 := w.CreateEntity()
	e2 := w.CreateEntity()
	require.NoError(t, Add(w, e1, h, 1))
	require.NoError(t, Add(w, e2, h, 2))
	require.NoError(t, Add(w, e2, other, "x"))

	mark := w.Version()
	require.True(t, Remove(w, e1, h))
	require.True(t, w.DestroyEntity(e2))

	assert.Equal(t, []Entity{e1, e2}, Removed(w, h, mark))
	assert.Equal(t, []Entity{e2}, Removed(w, other, mark))
	assert.Empty(t, Removed(w, h, w.Version()))
}

func TestSchedulerPrunesRemovalLog(t *testing.T) {
	w := NewWorld()
	h := component.NewComponent[int]()
	e := w.CreateEntity()
	require.NoError(t, Add(w, e, h, 1))

	var seen [][]Entity
	var since uint64
	s := NewScheduler(SystemFunc(func(w *World) {
		seen = append(seen, Removed(w, h, since))
		since = w.Version()
	}))

	s.Update(w)
	Remove(w, e, h) // between ticks
	s.Update(w)
	s.Update(w)

	require.Len(t, seen, 3)
	assert.Empty(t, seen[0])
	assert.Equal(t, []Entity{e}, seen[1])
	assert.Empty(t, seen[2])

	s.Update(w)
	assert.Empty(t, w.removals, "log pruned after two ticks")
}

func TestSchedulerSystemsIsACopy(t *testing.T) {
	var order []int
	first := SystemFunc(func(*World) { order = append(order, 1) })
	second := SystemFunc(func(*World) { order = append(order, 2) })

	s := NewScheduler(first)
	s.Add(nil)
	s.Add(second)
	systems := s.Systems()
	require.Len(t, systems, 2)

	systems[0] = second
	s.Update(NewWorld())
	assert.Equal(t, []int{1, 2}, order)
}

func TestSchedulerFlushesEvents(t *testing.T) {
	w := NewWorld()
	var drained []Event
	s := NewScheduler(
		SystemFunc(func(w *World) { w.Events().Push(Event{Type: EventJointDropped}) }),
		SystemFunc(func(w *World) { drained = append(drained, w.Events().Drain()...) }),
	)
	s.Update(w)
	assert.Len(t, drained, 1)

	w.Events().Push(Event{Type: "late"})
	NewScheduler().Update(w)
	assert.Nil(t, w.Events().Drain())
}
