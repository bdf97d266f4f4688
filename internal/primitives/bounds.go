package primitives

import rl "github.com/gen2brain/raylib-go/raylib"

// planeThickness gives planes a sliver of volume so box/ray tests never degenerate.
const planeThickness = 0.01

// Shapes lists the primitive shapes the registry can draw, in menu order.
var Shapes = []string{"cube", "sphere", "cylinder", "plane"}

// Known reports whether shape is one of Shapes.
func Known(shape string) bool {
	for _, s := range Shapes {
		if s == shape {
			return true
		}
	}
	return false
}

// Bounds returns the model-space bounding box of a shape. Every shape is centered on
// its origin with unit extent, so scale alone sizes it. Unknown shapes get the unit cube.
func Bounds(shape string) rl.BoundingBox {
	if shape == "plane" {
		return rl.NewBoundingBox(
			rl.NewVector3(-0.5, -planeThickness/2, -0.5),
			rl.NewVector3(0.5, planeThickness/2, 0.5),
		)
	}
	return rl.NewBoundingBox(rl.NewVector3(-0.5, -0.5, -0.5), rl.NewVector3(0.5, 0.5, 0.5))
}

// WorldBounds transforms the shape's box corners by m and returns their axis-aligned hull.
func WorldBounds(shape string, m rl.Matrix) rl.BoundingBox {
	b := Bounds(shape)
	var out rl.BoundingBox
	for i := 0; i < 8; i++ {
		c := rl.NewVector3(b.Min.X, b.Min.Y, b.Min.Z)
		if i&1 != 0 {
			c.X = b.Max.X
		}
		if i&2 != 0 {
			c.Y = b.Max.Y
		}
		if i&4 != 0 {
			c.Z = b.Max.Z
		}
		w := rl.Vector3Transform(c, m)
		if i == 0 {
			out.Min, out.Max = w, w
			continue
		}
		out.Min = rl.Vector3Min(out.Min, w)
		out.Max = rl.Vector3Max(out.Max, w)
	}
	return out
}
