package math

import (
	"testing"

	"github.com/chewxy/math32"
)

func TestQuatIdentity(t *testing.T) {
	q := QuatIdentity()
	if q.X != 0 || q.Y != 0 || q.Z != 0 || q.W != 1 {
		t.Errorf("Identity quaternion should be (0,0,0,1), got (%v,%v,%v,%v)", q.X, q.Y, q.Z, q.W)
	}
}

func TestQuatNormalize(t *testing.T) {
	q := Quat{X: 1, Y: 2, Z: 3, W: 4}
	n := q.Normalize()

	length := math32.Sqrt(n.X*n.X + n.Y*n.Y + n.Z*n.Z + n.W*n.W)
	if math32.Abs(length-1.0) > 0.0001 {
		t.Errorf("Normalized quaternion length should be 1, got %v", length)
	}
}

func TestQuatToMat4(t *testing.T) {
	// Identity quaternion should produce identity matrix
	q := QuatIdentity()
	m := q.ToMat4()

	identity := Identity()
	for i := 0; i < 16; i++ {
		if math32.Abs(m[i]-identity[i]) > 0.0001 {
			t.Errorf("Identity quat should produce identity matrix, element %d: got %v, want %v", i, m[i], identity[i])
		}
	}
}

func TestQuatFromAxisAngle(t *testing.T) {
	// 90 degrees around Y axis
	q := QuatFromAxisAngle(Vec3{X: 0, Y: 1, Z: 0}, math32.Pi/2)

	// Should have Y component and W = cos(45deg)
	expectedW := math32.Cos(math32.Pi / 4)
	expectedY := math32.Sin(math32.Pi / 4)

	if math32.Abs(q.W-expectedW) > 0.001 {
		t.Errorf("QuatFromAxisAngle W: expected %v, got %v", expectedW, q.W)
	}
	if math32.Abs(q.Y-expectedY) > 0.001 {
		t.Errorf("QuatFromAxisAngle Y: expected %v, got %v", expectedY, q.Y)
	}
}

func TestQuatFromMat4Roundtrip(t *testing.T) {
	axes := []Vec3{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
		Vec3{1, 1, 1}.Normalize(),
	}
	for _, axis := range axes {
		q := QuatFromAxisAngle(axis, 1.2)
		got := QuatFromMat4(q.ToMat4())
		// q and -q are the same rotation
		if math32.Abs(math32.Abs(got.Dot(q))-1) > 0.001 {
			t.Errorf("roundtrip for axis %v: got %v, want %v", axis, got, q)
		}
	}
}

func TestQuatMulAppliesRightFirst(t *testing.T) {
	// Rotating +X by 90deg around Z gives +Y, then 90deg around X gives +Z.
	qz := QuatFromAxisAngle(Vec3{0, 0, 1}, math32.Pi/2)
	qx := QuatFromAxisAngle(Vec3{1, 0, 0}, math32.Pi/2)

	v := qx.Mul(qz).RotateVec3(Vec3{1, 0, 0})
	want := Vec3{0, 0, 1}
	if v.Distance(want) > 0.001 {
		t.Errorf("qx*qz applied to +X = %v, want %v", v, want)
	}
}

func TestQuatRotateVec3MatchesMat4(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{0, 1, 0}, math32.Pi/3)
	v := Vec3{1, 2, 3}

	got := q.RotateVec3(v)
	want := q.ToMat4().TransformVec3(v)
	if got.Distance(want) > 0.001 {
		t.Errorf("RotateVec3 = %v, ToMat4 transform = %v", got, want)
	}
}

func TestLookRotation(t *testing.T) {
	// +Z should end up pointing at the target direction.
	dir := Vec3{1, 0, 1}.Normalize()
	q := LookRotation(dir, Vec3{0, 1, 0})

	z := q.RotateVec3(Vec3{0, 0, 1})
	if z.Distance(dir) > 0.001 {
		t.Errorf("LookRotation forward = %v, want %v", z, dir)
	}

	// Up should stay vertical when the direction is horizontal.
	y := q.RotateVec3(Vec3{0, 1, 0})
	if y.Distance(Vec3{0, 1, 0}) > 0.001 {
		t.Errorf("LookRotation up = %v, want (0,1,0)", y)
	}
}

func TestLookRotationStraightUp(t *testing.T) {
	q := LookRotation(Vec3{0, 1, 0}, Vec3{0, 1, 0})
	z := q.RotateVec3(Vec3{0, 0, 1})
	if z.Distance(Vec3{0, 1, 0}) > 0.001 {
		t.Errorf("LookRotation straight up forward = %v, want (0,1,0)", z)
	}
}
