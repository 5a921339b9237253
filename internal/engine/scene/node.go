// Package scene provides the 3D scene graph the viewer renders:
// nodes with TRS transforms, triangle meshes, line sets and materials.
package scene

import (
	"github.com/Faultbox/glbview/pkg/math"
)

// NodeKind identifies what a node contributes to the scene.
type NodeKind int

const (
	// KindGroup is a pure transform node with no geometry.
	KindGroup NodeKind = iota
	// KindMesh carries triangle geometry.
	KindMesh
	// KindLines carries line-segment geometry, used for overlays.
	KindLines
	// KindCamera marks a camera defined by the source asset. The viewer
	// keeps it in the graph but looks through its own orbit camera.
	KindCamera
)

// String returns the kind name.
func (k NodeKind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindMesh:
		return "mesh"
	case KindLines:
		return "lines"
	case KindCamera:
		return "camera"
	default:
		return "unknown"
	}
}

// Node is a scene graph node. Geometry fields are set according to
// Kind: Mesh for KindMesh, Lines for KindLines.
type Node struct {
	Name string
	Kind NodeKind

	Position math.Vec3
	Rotation math.Quat
	Scale    math.Vec3

	Mesh  *Mesh
	Lines *LineSet

	Children []*Node
}

// NewNode creates a node with an identity transform.
func NewNode(kind NodeKind, name string) *Node {
	return &Node{
		Name:     name,
		Kind:     kind,
		Rotation: math.QuatIdentity(),
		Scale:    math.Vec3{X: 1, Y: 1, Z: 1},
	}
}

// AddChild appends a child node.
func (n *Node) AddChild(child *Node) {
	n.Children = append(n.Children, child)
}

// RemoveChild removes a child by identity. Returns false if the node
// is not a direct child.
func (n *Node) RemoveChild(child *Node) bool {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			return true
		}
	}
	return false
}

// Child returns the first direct child with the given name, or nil.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Traverse visits the node and all descendants depth-first.
func (n *Node) Traverse(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Traverse(fn)
	}
}

// LocalMatrix returns the node transform as translation * rotation * scale.
func (n *Node) LocalMatrix() math.Mat4 {
	t := math.Translate(n.Position.X, n.Position.Y, n.Position.Z)
	r := n.Rotation.ToMat4()
	s := math.Scale(n.Scale.X, n.Scale.Y, n.Scale.Z)
	return t.Mul(r).Mul(s)
}

// LookAt rotates the node so its +Z axis points at target.
func (n *Node) LookAt(target, up math.Vec3) {
	dir := target.Sub(n.Position)
	if dir.Length() == 0 {
		return
	}
	n.Rotation = math.LookRotation(dir, up)
}

// RotateOnWorldAxis applies a rotation of angle radians around a
// world-space axis on top of the current rotation.
func (n *Node) RotateOnWorldAxis(axis math.Vec3, angle float32) {
	n.Rotation = math.QuatFromAxisAngle(axis, angle).Mul(n.Rotation).Normalize()
}

// Clone returns a copy of the node and its descendants that can be
// transformed and re-materialed without touching the receiver. Vertex,
// index and texture data is shared between the copies.
func (n *Node) Clone() *Node {
	c := *n
	if n.Mesh != nil {
		mesh := *n.Mesh
		if n.Mesh.Material != nil {
			mat := *n.Mesh.Material
			mesh.Material = &mat
		}
		c.Mesh = &mesh
	}
	if n.Lines != nil {
		lines := *n.Lines
		c.Lines = &lines
	}
	c.Children = make([]*Node, len(n.Children))
	for i, child := range n.Children {
		c.Children[i] = child.Clone()
	}
	return &c
}
