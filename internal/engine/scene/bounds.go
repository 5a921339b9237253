package scene

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/glbview/pkg/math"
)

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min math.Vec3
	Max math.Vec3
}

// NewAABB returns an empty box that any point will expand.
func NewAABB() AABB {
	return AABB{
		Min: math.Vec3{X: math32.Inf(1), Y: math32.Inf(1), Z: math32.Inf(1)},
		Max: math.Vec3{X: math32.Inf(-1), Y: math32.Inf(-1), Z: math32.Inf(-1)},
	}
}

// Valid reports whether the box contains at least one point.
func (b AABB) Valid() bool {
	return b.Min.X <= b.Max.X && b.Min.Y <= b.Max.Y && b.Min.Z <= b.Max.Z
}

// ExpandPoint grows the box to contain the point.
func (b *AABB) ExpandPoint(x, y, z float32) {
	b.Min = b.Min.Min(math.Vec3{X: x, Y: y, Z: z})
	b.Max = b.Max.Max(math.Vec3{X: x, Y: y, Z: z})
}

// ExpandVec3 grows the box to contain the point.
func (b *AABB) ExpandVec3(v math.Vec3) {
	b.ExpandPoint(v.X, v.Y, v.Z)
}

// Union grows the box to contain another box.
func (b *AABB) Union(other AABB) {
	if !other.Valid() {
		return
	}
	b.Min = b.Min.Min(other.Min)
	b.Max = b.Max.Max(other.Max)
}

// Center returns the box center.
func (b AABB) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the box extents.
func (b AABB) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}

// MaxExtent returns the largest extent across the three axes.
func (b AABB) MaxExtent() float32 {
	s := b.Size()
	return math32.Max(s.X, math32.Max(s.Y, s.Z))
}

// Transform returns the box containing all eight transformed corners.
func (b AABB) Transform(m math.Mat4) AABB {
	if !b.Valid() {
		return b
	}
	out := NewAABB()
	for _, x := range []float32{b.Min.X, b.Max.X} {
		for _, y := range []float32{b.Min.Y, b.Max.Y} {
			for _, z := range []float32{b.Min.Z, b.Max.Z} {
				out.ExpandVec3(m.TransformVec3(math.Vec3{X: x, Y: y, Z: z}))
			}
		}
	}
	return out
}
