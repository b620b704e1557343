package cpengine

import (
	"math"

	"github.com/jakecoffman/cp"
)

// prismaticJoint keeps anchorB on the line through anchorA along axisA and
// holds the bodies' relative angle at phase. Both rows are solved together
// as one 2x2 block, the way a Box2D prismatic joint solves its
// perpendicular and angular rows.
type prismaticJoint struct {
	*cp.Constraint

	a, b    *cp.Body
	anchorA cp.Vector
	axisA   cp.Vector
	anchorB cp.Vector
	phase   float64

	perp   cp.Vector
	s1, s2 float64
	k      [4]float64
	bias   cp.Vector
	jAcc   cp.Vector
}

func newPrismaticJoint(a, b *cp.Body, p PrismaticParams) *cp.Constraint {
	joint := &prismaticJoint{
		a:       a,
		b:       b,
		anchorA: p.AnchorA,
		axisA:   p.AxisA,
		anchorB: p.AnchorB,
		phase:   p.Phase(),
	}
	joint.Constraint = cp.NewConstraint(joint, a, b)
	return joint.Constraint
}

func (joint *prismaticJoint) PreStep(dt float64) {
	a, b := joint.a, joint.b

	r1 := a.Rotation().Rotate(joint.anchorA.Sub(a.CenterOfGravity()))
	r2 := b.Rotation().Rotate(joint.anchorB.Sub(b.CenterOfGravity()))
	d := b.Position().Add(r2).Sub(a.Position().Add(r1))

	joint.perp = a.Rotation().Rotate(joint.axisA.Perp())
	joint.s1 = d.Add(r1).Cross(joint.perp)
	joint.s2 = r2.Cross(joint.perp)

	mA, iA := inverseMass(a)
	mB, iB := inverseMass(b)
	k11 := mA + mB + iA*joint.s1*joint.s1 + iB*joint.s2*joint.s2
	k12 := iA*joint.s1 + iB*joint.s2
	k22 := iA + iB
	if k22 == 0 {
		k22 = 1
	}
	det := k11*k22 - k12*k12
	if det != 0 {
		det = 1 / det
	}
	joint.k = [4]float64{k22 * det, -k12 * det, -k12 * det, k11 * det}

	coef := (1 - math.Pow(joint.ErrorBias(), dt)) / dt
	maxBias := joint.MaxBias()
	joint.bias = cp.Vector{
		X: cp.Clamp(-coef*d.Dot(joint.perp), -maxBias, maxBias),
		Y: cp.Clamp(-coef*(b.Angle()-a.Angle()-joint.phase), -maxBias, maxBias),
	}
}

func (joint *prismaticJoint) ApplyCachedImpulse(dtCoef float64) {
	joint.apply(joint.jAcc.Mult(dtCoef))
}

func (joint *prismaticJoint) ApplyImpulse(dt float64) {
	a, b := joint.a, joint.b

	vr := cp.Vector{
		X: joint.perp.Dot(b.Velocity().Sub(a.Velocity())) + joint.s2*b.AngularVelocity() - joint.s1*a.AngularVelocity(),
		Y: b.AngularVelocity() - a.AngularVelocity(),
	}
	e := joint.bias.Sub(vr)
	j := cp.Vector{
		X: joint.k[0]*e.X + joint.k[1]*e.Y,
		Y: joint.k[2]*e.X + joint.k[3]*e.Y,
	}

	jOld := joint.jAcc
	joint.jAcc = jOld.Add(j).Clamp(joint.MaxForce() * dt)
	joint.apply(joint.jAcc.Sub(jOld))
}

func (joint *prismaticJoint) GetImpulse() float64 {
	return joint.jAcc.Length()
}

func (joint *prismaticJoint) apply(j cp.Vector) {
	p := joint.perp.Mult(j.X)
	push(joint.a, p.Neg(), -(j.X*joint.s1 + j.Y))
	push(joint.b, p, j.X*joint.s2+j.Y)
}

// push changes a dynamic body's velocity by impulse and its angular
// velocity by angular times the inverse moment.
func push(body *cp.Body, impulse cp.Vector, angular float64) {
	m, i := inverseMass(body)
	if m == 0 && i == 0 {
		return
	}
	body.SetVelocityVector(body.Velocity().Add(impulse.Mult(m)))
	body.SetAngularVelocity(body.AngularVelocity() + angular*i)
}

func inverseMass(body *cp.Body) (float64, float64) {
	if body.GetType() != cp.BODY_DYNAMIC {
		return 0, 0
	}
	return 1 / body.Mass(), 1 / body.Moment()
}
