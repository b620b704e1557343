package joint

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/jointsync/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func poses() []geom.Isometry {
	return []geom.Isometry{
		geom.Identity(),
		geom.FromTranslation(mgl64.Vec3{1, 0, 0}),
		geom.FromAxisAngle(mgl64.Vec3{0, 0, 1}, math.Pi/3),
		geom.FromRotationTranslation(mgl64.QuatRotate(2.1, mgl64.Vec3{1, 1, 0}.Normalize()), mgl64.Vec3{-4, 9, 0.5}),
		geom.FromRotationTranslation(mgl64.QuatRotate(-0.4, mgl64.Vec3{0, 1, 0}), mgl64.Vec3{25000, -12000, 3}),
	}
}

func TestDeriveFrameRoundTrip(t *testing.T) {
	p := mgl64.Vec3{0.3, -1.7, 2}
	for i, a := range poses() {
		for j, b := range poses() {
			got := b.TransformPoint(DeriveFrame(a, b).TransformPoint(p))
			want := a.TransformPoint(p)
			assert.True(t, got.ApproxEqualThreshold(want, 1e-7), "poses %d,%d: got %v want %v", i, j, got, want)
		}
	}
}

func TestBallWithZeroResidual(t *testing.T) {
	p := mgl64.Vec3{-0.5, 0.25, 1}
	for _, a := range poses() {
		for _, b := range poses() {
			ball := BallWith(a, b, p)
			assert.Equal(t, p, ball.Point1)
			w1 := a.TransformPoint(ball.Point1)
			w2 := b.TransformPoint(ball.Point2)
			assert.True(t, w1.ApproxEqualThreshold(w2, 1e-7), "residual %v", w1.Sub(w2))
		}
	}
}

func TestBallWithAxisAlignedScenario(t *testing.T) {
	ball := BallWith(
		geom.Identity(),
		geom.FromTranslation(mgl64.Vec3{1, 0, 0}),
		mgl64.Vec3{-1, 0, 0},
	)
	assert.Equal(t, mgl64.Vec3{-1, 0, 0}, ball.Point1)
	assert.True(t, ball.Point2.ApproxEqualThreshold(mgl64.Vec3{-2, 0, 0}, 1e-12), "got %v", ball.Point2)
}

func TestFixedWith(t *testing.T) {
	t.Run("identical_pose", func(t *testing.T) {
		pose := geom.FromRotationTranslation(mgl64.QuatRotate(0.8, mgl64.Vec3{0, 0, 1}), mgl64.Vec3{3, 4, 0})
		fixed := FixedWith(pose, pose)
		assert.Equal(t, geom.Identity(), fixed.Frame1)
		assert.True(t, fixed.Frame2.ApproxEqual(geom.Identity(), 1e-9), "got %+v", fixed.Frame2)
	})

	t.Run("frames_coincide", func(t *testing.T) {
		for _, a := range poses() {
			for _, b := range poses() {
				fixed := FixedWith(a, b)
				w1 := a.Mul(fixed.Frame1)
				w2 := b.Mul(fixed.Frame2)
				assert.True(t, w1.ApproxEqual(w2, 1e-7))
			}
		}
	})
}

func TestAxialJointsWith(t *testing.T) {
	a := geom.FromTranslation(mgl64.Vec3{0, 2, 0})
	b := geom.FromRotationTranslation(mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1}), mgl64.Vec3{5, 0, 0})
	p1 := mgl64.Vec3{1, 0, 0}
	a1 := mgl64.Vec3{2, 0, 0}

	rev, err := RevoluteWith(a, b, p1, a1)
	require.NoError(t, err)
	pri, err := PrismaticWith(a, b, p1, a1)
	require.NoError(t, err)

	for name, got := range map[string][4]mgl64.Vec3{
		"revolute":  {rev.Point1, rev.Axis1, rev.Point2, rev.Axis2},
		"prismatic": {pri.Point1, pri.Axis1, pri.Point2, pri.Axis2},
	} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, a1, got[1], "axis 1 is kept as given")
			w1 := a.TransformPoint(got[0])
			w2 := b.TransformPoint(got[2])
			assert.True(t, w1.ApproxEqualThreshold(w2, 1e-9))

			d1 := a.TransformVector(got[1])
			d2 := b.TransformVector(got[3])
			assert.True(t, d1.ApproxEqualThreshold(d2, 1e-9), "axes transform as vectors: %v vs %v", d1, d2)
		})
	}
}

func TestAxialJointsRejectZeroAxis(t *testing.T) {
	_, err := RevoluteWith(geom.Identity(), geom.Identity(), mgl64.Vec3{}, mgl64.Vec3{})
	assert.ErrorIs(t, err, ErrZeroAxis)

	_, err = PrismaticWith(geom.Identity(), geom.Identity(), mgl64.Vec3{}, mgl64.Vec3{})
	assert.ErrorIs(t, err, ErrZeroAxis)
}

func TestBallArm(t *testing.T) {
	ball := BallArm(mgl64.Vec3{-1, 0, 0})
	assert.Equal(t, mgl64.Vec3{}, ball.Point1)
	assert.Equal(t, mgl64.Vec3{-1, 0, 0}, ball.Point2)
}
