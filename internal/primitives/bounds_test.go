package primitives

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
)

func TestWorldBoundsScalesAndTranslates(t *testing.T) {
	m := rl.MatrixMultiply(rl.MatrixScale(2, 4, 2), rl.MatrixTranslate(10, 0, -3))
	b := WorldBounds("cube", m)
	assert.InDelta(t, 9, b.Min.X, 1e-5)
	assert.InDelta(t, 11, b.Max.X, 1e-5)
	assert.InDelta(t, -2, b.Min.Y, 1e-5)
	assert.InDelta(t, 2, b.Max.Y, 1e-5)
	assert.InDelta(t, -4, b.Min.Z, 1e-5)
	assert.InDelta(t, -2, b.Max.Z, 1e-5)
}

func TestWorldBoundsRotatedHull(t *testing.T) {
	// A unit cube turned 45 degrees about Y spans sqrt(2) on X and Z.
	m := rl.QuaternionToMatrix(rl.QuaternionFromEuler(0, 0.78539816, 0))
	b := WorldBounds("cube", m)
	assert.InDelta(t, 0.7071, b.Max.X, 1e-3)
	assert.InDelta(t, -0.7071, b.Min.Z, 1e-3)
	assert.InDelta(t, 0.5, b.Max.Y, 1e-5)
}

func TestPlaneHasThickness(t *testing.T) {
	b := Bounds("plane")
	assert.Greater(t, b.Max.Y, b.Min.Y)
	assert.True(t, Known("plane"))
	assert.False(t, Known("torus"))
	assert.Equal(t, Bounds("cube"), Bounds("torus"))
}

func TestToColorClamps(t *testing.T) {
	c := ToColor(rl.NewVector4(1.2, 0.5, -0.1, 1))
	assert.Equal(t, rl.NewColor(255, 128, 0, 255), c)
}
