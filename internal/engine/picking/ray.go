// Package picking builds world-space rays from viewport clicks and
// tests them against scene geometry bounds.
package picking

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/glbview/internal/engine/scene"
	"github.com/Faultbox/glbview/pkg/math"
)

// Ray is a half-line in world space.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3 // Normalized
}

// ScreenRay builds the ray through a viewport pixel for a perspective
// camera looking from eye toward target. fovY is the vertical field of
// view in radians. Pixel coordinates have their origin in the top left
// corner of the viewport.
func ScreenRay(eye, target math.Vec3, fovY, px, py, width, height float32) Ray {
	ndcX := 2*px/width - 1
	ndcY := 1 - 2*py/height // Flip Y

	forward := target.Sub(eye).Normalize()
	right := forward.Cross(math.Vec3{Y: 1}).Normalize()
	up := right.Cross(forward)

	halfH := math32.Tan(fovY / 2)
	halfW := halfH * width / height

	dir := forward.
		Add(right.Scale(ndcX * halfW)).
		Add(up.Scale(ndcY * halfH)).
		Normalize()

	return Ray{Origin: eye, Direction: dir}
}

// IntersectAABB tests the ray against an axis-aligned box using the
// slab method. It returns the distance to the entry point, or to the
// exit point when the ray starts inside the box, and whether the box
// was hit at all.
func (r Ray) IntersectAABB(b scene.AABB) (float32, bool) {
	tmin := float32(-math32.MaxFloat32)
	tmax := float32(math32.MaxFloat32)

	origin := [3]float32{r.Origin.X, r.Origin.Y, r.Origin.Z}
	dir := [3]float32{r.Direction.X, r.Direction.Y, r.Direction.Z}
	min := [3]float32{b.Min.X, b.Min.Y, b.Min.Z}
	max := [3]float32{b.Max.X, b.Max.Y, b.Max.Z}

	for i := 0; i < 3; i++ {
		if dir[i] != 0 {
			t1 := (min[i] - origin[i]) / dir[i]
			t2 := (max[i] - origin[i]) / dir[i]
			if t1 > t2 {
				t1, t2 = t2, t1
			}
			if t1 > tmin {
				tmin = t1
			}
			if t2 < tmax {
				tmax = t2
			}
		} else if origin[i] < min[i] || origin[i] > max[i] {
			return 0, false
		}
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// PickNode returns the mesh node whose bounds the ray enters first, or
// nil when the ray misses every mesh. Line overlays are not pickable.
func PickNode(root *scene.Node, ray Ray) *scene.Node {
	var best *scene.Node
	bestT := float32(math32.MaxFloat32)
	if root != nil {
		pickNode(root, math.Identity(), ray, &best, &bestT)
	}
	return best
}

func pickNode(n *scene.Node, parent math.Mat4, ray Ray, best **scene.Node, bestT *float32) {
	world := parent.Mul(n.LocalMatrix())
	if n.Kind == scene.KindMesh && n.Mesh != nil {
		box := n.Mesh.Bounds().Transform(world)
		if t, hit := ray.IntersectAABB(box); hit && t < *bestT {
			*best = n
			*bestT = t
		}
	}
	for _, c := range n.Children {
		pickNode(c, world, ray, best, bestT)
	}
}
