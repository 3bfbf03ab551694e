package math3d

import "math"

// Quat is a rotation quaternion W + Xi + Yj + Zk. Orientations are kept
// unit length; call Normalize after accumulating error.
type Quat struct {
	W, X, Y, Z float64
}

// QuatIdent returns the identity rotation.
func QuatIdent() Quat {
	return Quat{W: 1}
}

// QuatAxisAngle returns a rotation of angle radians about axis, right-handed.
func QuatAxisAngle(axis Vec3, angle float64) Quat {
	axis = axis.Normalize()
	s, c := math.Sincos(angle / 2)
	return Quat{W: c, X: axis.X * s, Y: axis.Y * s, Z: axis.Z * s}
}

// QuatEuler composes rotations about X, then Y, then Z in the body frame,
// so the resulting matrix is Rx * Ry * Rz.
func QuatEuler(x, y, z float64) Quat {
	return QuatAxisAngle(Vec3{1, 0, 0}, x).
		Mul(QuatAxisAngle(Vec3{0, 1, 0}, y)).
		Mul(QuatAxisAngle(Vec3{0, 0, 1}, z))
}

// Mul returns the Hamilton product q * r: r is applied first.
func (q Quat) Mul(r Quat) Quat {
	return Quat{
		W: q.W*r.W - q.X*r.X - q.Y*r.Y - q.Z*r.Z,
		X: q.W*r.X + q.X*r.W + q.Y*r.Z - q.Z*r.Y,
		Y: q.W*r.Y - q.X*r.Z + q.Y*r.W + q.Z*r.X,
		Z: q.W*r.Z + q.X*r.Y - q.Y*r.X + q.Z*r.W,
	}
}

// Conjugate returns the inverse rotation of a unit quaternion.
func (q Quat) Conjugate() Quat {
	return Quat{W: q.W, X: -q.X, Y: -q.Y, Z: -q.Z}
}

// Len returns the quaternion norm.
func (q Quat) Len() float64 {
	return math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
}

// Normalize returns q scaled to unit length. A zero quaternion becomes the
// identity.
func (q Quat) Normalize() Quat {
	l := q.Len()
	if l == 0 {
		return QuatIdent()
	}
	return Quat{W: q.W / l, X: q.X / l, Y: q.Y / l, Z: q.Z / l}
}

// Rotate applies q to v.
func (q Quat) Rotate(v Vec3) Vec3 {
	u := Vec3{q.X, q.Y, q.Z}
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(u.Cross(t))
}

// Integrate advances q by a world-space angular velocity over dt seconds
// and renormalizes.
func (q Quat) Integrate(angVel Vec3, dt float64) Quat {
	spin := Quat{X: angVel.X, Y: angVel.Y, Z: angVel.Z}.Mul(q)
	h := 0.5 * dt
	return Quat{
		W: q.W + spin.W*h,
		X: q.X + spin.X*h,
		Y: q.Y + spin.Y*h,
		Z: q.Z + spin.Z*h,
	}.Normalize()
}

// Mat4 returns the rotation matrix of q.
func (q Quat) Mat4() Mat4 {
	w, x, y, z := q.W, q.X, q.Y, q.Z
	return Mat4{
		1 - 2*y*y - 2*z*z, 2*x*y + 2*w*z, 2*x*z - 2*w*y, 0,
		2*x*y - 2*w*z, 1 - 2*x*x - 2*z*z, 2*y*z + 2*w*x, 0,
		2*x*z + 2*w*y, 2*y*z - 2*w*x, 1 - 2*x*x - 2*y*y, 0,
		0, 0, 0, 1,
	}
}
