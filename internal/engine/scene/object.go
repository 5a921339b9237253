package scene

import (
	"github.com/Faultbox/glbview/pkg/math"
)

// Object is a loaded model: the scene graph root plus metadata that
// does not live in the graph itself.
type Object struct {
	Root       *Node
	Source     string // path the object was loaded from
	Animations []Animation
}

// Animation describes a clip present in the source asset. Playback is
// out of scope for the viewer, the viewer only lists them.
type Animation struct {
	Name     string
	Duration float32 // seconds
}

// Bounds returns the bounding box of all mesh geometry under the root,
// in the object's local space. Line overlays are excluded so toggling
// them does not change framing.
func (o *Object) Bounds() AABB {
	b := NewAABB()
	if o.Root != nil {
		expandNodeBounds(o.Root, math.Identity(), &b)
	}
	return b
}

func expandNodeBounds(n *Node, parent math.Mat4, b *AABB) {
	world := parent.Mul(n.LocalMatrix())
	if n.Kind == KindMesh && n.Mesh != nil {
		b.Union(n.Mesh.Bounds().Transform(world))
	}
	for _, c := range n.Children {
		expandNodeBounds(c, world, b)
	}
}

// MeshCount returns the number of mesh nodes in the graph.
func (o *Object) MeshCount() int {
	count := 0
	if o.Root != nil {
		o.Root.Traverse(func(n *Node) {
			if n.Kind == KindMesh && n.Mesh != nil {
				count++
			}
		})
	}
	return count
}

// TriangleCount returns the total number of triangles in the graph.
func (o *Object) TriangleCount() int {
	count := 0
	if o.Root != nil {
		o.Root.Traverse(func(n *Node) {
			if n.Kind == KindMesh && n.Mesh != nil {
				count += n.Mesh.TriangleCount()
			}
		})
	}
	return count
}

// Clone returns a copy of the object with its own node tree and
// materials. Geometry buffers are shared with the receiver.
func (o *Object) Clone() *Object {
	c := *o
	if o.Root != nil {
		c.Root = o.Root.Clone()
	}
	c.Animations = append([]Animation(nil), o.Animations...)
	return &c
}
