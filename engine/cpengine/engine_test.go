package cpengine

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/jointsync/engine"
	"github.com/milk9111/jointsync/geom"
	"github.com/milk9111/jointsync/joint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine() *Engine {
	return New(Options{Gravity: mgl64.Vec3{0, -9.81, 0}})
}

func ball(pos mgl64.Vec3) engine.BodyDesc {
	return engine.BodyDesc{
		Type:  engine.BodyDynamic,
		Pose:  geom.FromTranslation(pos),
		Mass:  1,
		Shape: engine.Shape{Radius: 0.1},
	}
}

func TestTranslate(t *testing.T) {
	e := newTestEngine()
	x := mgl64.Vec3{1, 0, 0}

	cases := []struct {
		name string
		spec joint.Spec
		want engine.Params
		err  error
	}{
		{
			name: "ball_projects",
			spec: joint.Ball{Point1: mgl64.Vec3{1, 2, 3}, Point2: mgl64.Vec3{-1, 0, 9}},
			want: PivotParams{AnchorA: cp.Vector{X: 1, Y: 2}, AnchorB: cp.Vector{X: -1, Y: 0}},
		},
		{
			name: "revolute_is_pivot",
			spec: joint.Revolute{Point1: mgl64.Vec3{0, 1, 0}, Axis1: mgl64.Vec3{0, 0, 1}, Point2: mgl64.Vec3{2, 0, 0}, Axis2: mgl64.Vec3{0, 0, 1}},
			want: PivotParams{AnchorA: cp.Vector{X: 0, Y: 1}, AnchorB: cp.Vector{X: 2, Y: 0}},
		},
		{
			name: "revolute_zero_axis",
			spec: joint.Revolute{Axis1: x},
			err:  joint.ErrZeroAxis,
		},
		{
			name: "prismatic_normalises",
			spec: joint.Prismatic{Axis1: mgl64.Vec3{0, 5, 0}, Axis2: mgl64.Vec3{-3, 0, 0}},
			want: PrismaticParams{AxisA: cp.Vector{X: 0, Y: 1}, AxisB: cp.Vector{X: -1, Y: 0}},
		},
		{
			name: "prismatic_axis_out_of_plane",
			spec: joint.Prismatic{Axis1: mgl64.Vec3{0, 0, 1}, Axis2: x},
			err:  joint.ErrZeroAxis,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := e.Translate(c.spec)
			if c.err != nil {
				assert.ErrorIs(t, err, c.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestWeldFramesDecodeToIdentity(t *testing.T) {
	e := newTestEngine()
	params, err := e.Translate(joint.FixedWith(geom.Identity(), geom.Identity()))
	require.NoError(t, err)

	weld, ok := params.(WeldParams)
	require.True(t, ok)
	f1, f2 := weld.Frames()
	assert.Equal(t, geom.Identity(), f1)
	assert.Equal(t, geom.Identity(), f2)
	assert.Equal(t, 0.0, weld.Phase())
}

func TestWeldFramesRoundTrip(t *testing.T) {
	e := newTestEngine()
	frame := geom.FromRotationTranslation(mgl64.QuatRotate(0.6, mgl64.Vec3{0, 0, 1}), mgl64.Vec3{2, -1, 0})
	params, err := e.Translate(joint.Fixed{Frame1: geom.Identity(), Frame2: frame})
	require.NoError(t, err)

	_, f2 := params.(WeldParams).Frames()
	assert.True(t, f2.ApproxEqual(frame, 1e-12), "got %+v", f2)
}

func TestJointLifecycle(t *testing.T) {
	e := newTestEngine()
	b1, err := e.InsertBody(ball(mgl64.Vec3{0, 0, 0}))
	require.NoError(t, err)
	b2, err := e.InsertBody(ball(mgl64.Vec3{1, 0, 0}))
	require.NoError(t, err)

	specs := []joint.Spec{
		joint.Ball{Point2: mgl64.Vec3{-1, 0, 0}},
		joint.FixedWith(geom.Identity(), geom.FromTranslation(mgl64.Vec3{1, 0, 0})),
		joint.Prismatic{Axis1: mgl64.Vec3{1, 0, 0}, Axis2: mgl64.Vec3{1, 0, 0}},
	}
	wantConstraints := []int{1, 2, 1}

	for i, spec := range specs {
		t.Run(spec.Kind().String(), func(t *testing.T) {
			params, err := e.Translate(spec)
			require.NoError(t, err)
			h, err := e.InsertJoint(b1, b2, params)
			require.NoError(t, err)

			got, ok := e.LookupJoint(h)
			require.True(t, ok)
			assert.Equal(t, b1, got.Body1)
			assert.Equal(t, b2, got.Body2)
			assert.Equal(t, params, got.Params)
			assert.Len(t, e.Constraints(h), wantConstraints[i])

			assert.True(t, e.RemoveJoint(h, true))
			assert.False(t, e.RemoveJoint(h, true), "stale handle")
			_, ok = e.LookupJoint(h)
			assert.False(t, ok)
		})
	}
}

func TestInsertJointRejections(t *testing.T) {
	e := newTestEngine()
	dyn, err := e.InsertBody(ball(mgl64.Vec3{}))
	require.NoError(t, err)
	s1, err := e.InsertBody(engine.BodyDesc{Type: engine.BodyStatic, Pose: geom.Identity()})
	require.NoError(t, err)
	s2, err := e.InsertBody(engine.BodyDesc{Type: engine.BodyStatic, Pose: geom.Identity()})
	require.NoError(t, err)

	params := PivotParams{}

	_, err = e.InsertJoint(s1, s2, params)
	assert.ErrorIs(t, err, engine.ErrDegenerateMass)

	_, err = e.InsertJoint(dyn, dyn, params)
	assert.ErrorIs(t, err, engine.ErrSameBody)

	_, err = e.InsertJoint(dyn, engine.BodyHandle(12345), params)
	assert.ErrorIs(t, err, engine.ErrUnknownBody)

	_, err = e.InsertJoint(dyn, s1, engine.BallParams{})
	assert.ErrorIs(t, err, engine.ErrUnsupported)

	h, err := e.InsertJoint(dyn, s1, params)
	require.NoError(t, err)
	assert.True(t, e.RemoveJoint(h, false))
}

func TestInsertBodyRejectsMasslessDynamic(t *testing.T) {
	e := newTestEngine()
	desc := ball(mgl64.Vec3{})
	desc.Mass = 0
	_, err := e.InsertBody(desc)
	assert.ErrorIs(t, err, engine.ErrDegenerateMass)
}

func TestRemoveBodyDropsAttachedJoints(t *testing.T) {
	e := newTestEngine()
	b1, _ := e.InsertBody(ball(mgl64.Vec3{}))
	b2, _ := e.InsertBody(ball(mgl64.Vec3{1, 0, 0}))
	b3, _ := e.InsertBody(ball(mgl64.Vec3{2, 0, 0}))

	j12, err := e.InsertJoint(b1, b2, PivotParams{})
	require.NoError(t, err)
	j23, err := e.InsertJoint(b2, b3, PivotParams{})
	require.NoError(t, err)

	require.True(t, e.RemoveBody(b1))
	assert.False(t, e.ContainsBody(b1))
	_, ok := e.LookupJoint(j12)
	assert.False(t, ok)
	_, ok = e.LookupJoint(j23)
	assert.True(t, ok)
	assert.False(t, e.RemoveBody(b1))
}

func TestPendulumKeepsAnchorsTogether(t *testing.T) {
	e := newTestEngine()
	pivot, err := e.InsertBody(engine.BodyDesc{Type: engine.BodyStatic, Pose: geom.Identity(), Shape: engine.Shape{Radius: 0.05}})
	require.NoError(t, err)
	bob, err := e.InsertBody(ball(mgl64.Vec3{1, 0, 0.5}))
	require.NoError(t, err)

	params, err := e.Translate(joint.BallWith(geom.Identity(), geom.FromTranslation(mgl64.Vec3{1, 0, 0}), mgl64.Vec3{}))
	require.NoError(t, err)
	_, err = e.InsertJoint(pivot, bob, params)
	require.NoError(t, err)

	for i := 0; i < 30; i++ {
		e.Step(1.0 / 60.0)
	}

	pose, ok := e.BodyPose(bob)
	require.True(t, ok)
	pos := pose.Translation
	assert.InDelta(t, 1.0, math.Hypot(pos.X(), pos.Y()), 0.05, "bob stays on its arm: %v", pos)
	assert.Less(t, pos.Y(), 0.0, "bob swung down")
	assert.Equal(t, 0.5, pos.Z(), "z is carried through")
}

func TestPrismaticSlidesAlongItsAxis(t *testing.T) {
	e := newTestEngine()
	rail, err := e.InsertBody(engine.BodyDesc{Type: engine.BodyStatic, Pose: geom.Identity(), Shape: engine.Shape{Radius: 0.05}})
	require.NoError(t, err)
	carPose := geom.FromRotationTranslation(mgl64.QuatRotate(0.3, mgl64.Vec3{0, 0, 1}), mgl64.Vec3{1, 1, 0})
	car, err := e.InsertBody(engine.BodyDesc{
		Type:  engine.BodyDynamic,
		Pose:  carPose,
		Mass:  1,
		Shape: engine.Shape{Width: 0.5, Height: 0.5},
	})
	require.NoError(t, err)

	spec, err := joint.PrismaticWith(geom.Identity(), carPose, mgl64.Vec3{}, mgl64.Vec3{1, 1, 0})
	require.NoError(t, err)
	params, err := e.Translate(spec)
	require.NoError(t, err)
	_, err = e.InsertJoint(rail, car, params)
	require.NoError(t, err)

	for i := 0; i < 60; i++ {
		e.Step(1.0 / 60.0)
	}

	pose, ok := e.BodyPose(car)
	require.True(t, ok)
	pos := pose.Translation
	assert.InDelta(t, pos.X(), pos.Y(), 1e-6, "car left the rail: %v", pos)
	assert.Less(t, pos.Y(), 0.0, "car slid down the rail")
	assert.InDelta(t, 0.3, geom.PlanarAngle(pose.Rotation), 1e-9)
}
