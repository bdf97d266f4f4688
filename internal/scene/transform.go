package scene

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// minScale below this a scale axis is treated as collapsed and the transform as unusable.
const minScale = 1e-6

// Transform is a node's local position/rotation/scale relative to its parent.
type Transform struct {
	Position rl.Vector3
	Rotation rl.Quaternion
	Scale    rl.Vector3
}

// IdentityTransform returns the transform at the origin with no rotation and unit scale.
func IdentityTransform() Transform {
	return Transform{
		Position: rl.NewVector3(0, 0, 0),
		Rotation: rl.QuaternionIdentity(),
		Scale:    rl.NewVector3(1, 1, 1),
	}
}

// Valid reports whether every component is finite and no scale axis is collapsed.
func (t Transform) Valid() bool {
	vals := [...]float32{
		t.Position.X, t.Position.Y, t.Position.Z,
		t.Rotation.X, t.Rotation.Y, t.Rotation.Z, t.Rotation.W,
		t.Scale.X, t.Scale.Y, t.Scale.Z,
	}
	for _, v := range vals {
		if math32.IsNaN(v) || math32.IsInf(v, 0) {
			return false
		}
	}
	return math32.Abs(t.Scale.X) > minScale && math32.Abs(t.Scale.Y) > minScale && math32.Abs(t.Scale.Z) > minScale
}

// Matrix returns the local matrix. Order: scale, then rotate, then translate
// (raylib MatrixMultiply applies the left operand first).
func (t Transform) Matrix() rl.Matrix {
	scale := rl.MatrixScale(t.Scale.X, t.Scale.Y, t.Scale.Z)
	rot := rl.QuaternionToMatrix(rl.QuaternionNormalize(t.Rotation))
	trans := rl.MatrixTranslate(t.Position.X, t.Position.Y, t.Position.Z)
	return rl.MatrixMultiply(rl.MatrixMultiply(scale, rot), trans)
}

// Decompose splits an affine matrix back into position, rotation and scale. Shear is
// discarded; for matrices built from Transform.Matrix chains without non-uniform scale
// under rotation the result is exact up to float error.
func Decompose(m rl.Matrix) Transform {
	// Basis images of the unit axes live in M0..M2, M4..M6, M8..M10.
	sx := math32.Sqrt(m.M0*m.M0 + m.M1*m.M1 + m.M2*m.M2)
	sy := math32.Sqrt(m.M4*m.M4 + m.M5*m.M5 + m.M6*m.M6)
	sz := math32.Sqrt(m.M8*m.M8 + m.M9*m.M9 + m.M10*m.M10)
	if rl.MatrixDeterminant(m) < 0 {
		sx = -sx
	}
	t := Transform{
		Position: rl.NewVector3(m.M12, m.M13, m.M14),
		Rotation: rl.QuaternionIdentity(),
		Scale:    rl.NewVector3(sx, sy, sz),
	}
	if math32.Abs(sx) < minScale || math32.Abs(sy) < minScale || math32.Abs(sz) < minScale {
		return t
	}
	rot := rl.MatrixIdentity()
	rot.M0, rot.M1, rot.M2 = m.M0/sx, m.M1/sx, m.M2/sx
	rot.M4, rot.M5, rot.M6 = m.M4/sy, m.M5/sy, m.M6/sy
	rot.M8, rot.M9, rot.M10 = m.M8/sz, m.M9/sz, m.M10/sz
	t.Rotation = rotationFromMatrix(rot)
	return t
}

// rotationFromMatrix inverts rl.QuaternionToMatrix as Matrix uses it. raylib-go's
// QuaternionFromMatrix reads the opposite sign convention and counts M15 in the trace,
// so it cannot be used here.
func rotationFromMatrix(m rl.Matrix) rl.Quaternion {
	var q rl.Quaternion
	trace := m.M0 + m.M5 + m.M10
	switch {
	case trace > 0:
		s := 2 * math32.Sqrt(trace+1)
		q.W = s / 4
		q.X = (m.M9 - m.M6) / s
		q.Y = (m.M2 - m.M8) / s
		q.Z = (m.M4 - m.M1) / s
	case m.M0 > m.M5 && m.M0 > m.M10:
		s := 2 * math32.Sqrt(1+m.M0-m.M5-m.M10)
		q.W = (m.M9 - m.M6) / s
		q.X = s / 4
		q.Y = (m.M1 + m.M4) / s
		q.Z = (m.M2 + m.M8) / s
	case m.M5 > m.M10:
		s := 2 * math32.Sqrt(1+m.M5-m.M0-m.M10)
		q.W = (m.M2 - m.M8) / s
		q.X = (m.M1 + m.M4) / s
		q.Y = s / 4
		q.Z = (m.M6 + m.M9) / s
	default:
		s := 2 * math32.Sqrt(1+m.M10-m.M0-m.M5)
		q.W = (m.M4 - m.M1) / s
		q.X = (m.M2 + m.M8) / s
		q.Y = (m.M6 + m.M9) / s
		q.Z = s / 4
	}
	return rl.QuaternionNormalize(q)
}
