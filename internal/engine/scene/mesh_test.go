package scene

import (
	"testing"

	"github.com/Faultbox/glbview/pkg/math"
)

// quadMesh returns two triangles sharing the edge (1,2).
func quadMesh() *Mesh {
	positions := [][3]float32{
		{0, 0, 0},
		{1, 0, 0},
		{0, 1, 0},
		{1, 1, 0},
	}
	m := &Mesh{
		Indices:  []uint32{0, 1, 2, 1, 3, 2},
		Material: NewMaterial("mat"),
	}
	for _, p := range positions {
		m.Vertices = append(m.Vertices,
			p[0], p[1], p[2], // position
			0, 0, 1, // normal
			p[0], p[1]) // texcoord
	}
	return m
}

func TestMeshCounts(t *testing.T) {
	m := quadMesh()
	if m.VertexCount() != 4 {
		t.Errorf("VertexCount = %d, want 4", m.VertexCount())
	}
	if m.TriangleCount() != 2 {
		t.Errorf("TriangleCount = %d, want 2", m.TriangleCount())
	}
}

func TestMeshBounds(t *testing.T) {
	b := quadMesh().Bounds()
	if !b.Valid() {
		t.Fatal("bounds of non-empty mesh should be valid")
	}
	if b.Min != (math.Vec3{}) {
		t.Errorf("bounds min = %v, want origin", b.Min)
	}
	if b.Max != (math.Vec3{X: 1, Y: 1}) {
		t.Errorf("bounds max = %v, want (1,1,0)", b.Max)
	}
}

func TestEdgeLinesUnique(t *testing.T) {
	ls := quadMesh().EdgeLines()

	// Two triangles sharing one edge have five unique edges.
	if ls.SegmentCount() != 5 {
		t.Errorf("SegmentCount = %d, want 5", ls.SegmentCount())
	}
	if len(ls.Positions) != 5*6 {
		t.Errorf("len(Positions) = %d, want %d", len(ls.Positions), 5*6)
	}
}

func TestEdgeLinesSingleTriangle(t *testing.T) {
	m := quadMesh()
	m.Indices = m.Indices[:3]

	if got := m.EdgeLines().SegmentCount(); got != 3 {
		t.Errorf("SegmentCount = %d, want 3", got)
	}
}

func TestAABBUnion(t *testing.T) {
	a := NewAABB()
	a.ExpandPoint(0, 0, 0)
	a.ExpandPoint(1, 1, 1)

	b := NewAABB()
	b.ExpandPoint(-1, 2, 0.5)

	a.Union(b)
	if a.Min != (math.Vec3{X: -1}) {
		t.Errorf("union min = %v, want (-1,0,0)", a.Min)
	}
	if a.Max != (math.Vec3{X: 1, Y: 2, Z: 1}) {
		t.Errorf("union max = %v, want (1,2,1)", a.Max)
	}

	// Union with an empty box is a no-op.
	before := a
	a.Union(NewAABB())
	if a != before {
		t.Errorf("union with empty box changed bounds: %v", a)
	}
}

func TestAABBCenterSize(t *testing.T) {
	b := AABB{Min: math.Vec3{X: -1, Y: -2, Z: -3}, Max: math.Vec3{X: 1, Y: 2, Z: 3}}

	if c := b.Center(); c != (math.Vec3{}) {
		t.Errorf("center = %v, want origin", c)
	}
	if s := b.Size(); s != (math.Vec3{X: 2, Y: 4, Z: 6}) {
		t.Errorf("size = %v, want (2,4,6)", s)
	}
	if e := b.MaxExtent(); e != 6 {
		t.Errorf("max extent = %v, want 6", e)
	}
}

func TestAABBTransform(t *testing.T) {
	b := AABB{Min: math.Vec3{}, Max: math.Vec3{X: 1, Y: 1, Z: 1}}
	moved := b.Transform(math.Translate(10, 0, 0))

	if moved.Min != (math.Vec3{X: 10}) {
		t.Errorf("transformed min = %v, want (10,0,0)", moved.Min)
	}
	if moved.Max != (math.Vec3{X: 11, Y: 1, Z: 1}) {
		t.Errorf("transformed max = %v, want (11,1,1)", moved.Max)
	}
}

func TestObjectBounds(t *testing.T) {
	meshNode := NewNode(KindMesh, "quad")
	meshNode.Mesh = quadMesh()
	meshNode.Scale = math.Vec3{X: 2, Y: 2, Z: 2}

	root := NewNode(KindGroup, "root")
	root.Position = math.Vec3{X: 10}
	root.AddChild(meshNode)

	obj := &Object{Root: root}
	b := obj.Bounds()

	if !vecNear(b.Min, math.Vec3{X: 10}, 0.001) {
		t.Errorf("object bounds min = %v, want (10,0,0)", b.Min)
	}
	if !vecNear(b.Max, math.Vec3{X: 12, Y: 2}, 0.001) {
		t.Errorf("object bounds max = %v, want (12,2,0)", b.Max)
	}
}

func TestObjectBoundsIgnoresLines(t *testing.T) {
	meshNode := NewNode(KindMesh, "quad")
	meshNode.Mesh = quadMesh()

	overlay := NewNode(KindLines, "overlay")
	overlay.Lines = meshNode.Mesh.EdgeLines()
	overlay.Scale = math.Vec3{X: 100, Y: 100, Z: 100}
	meshNode.AddChild(overlay)

	obj := &Object{Root: meshNode}
	b := obj.Bounds()
	if !vecNear(b.Max, math.Vec3{X: 1, Y: 1}, 0.001) {
		t.Errorf("line overlay should not affect bounds, got max %v", b.Max)
	}
}

func TestObjectCounts(t *testing.T) {
	root := NewNode(KindGroup, "root")
	for i := 0; i < 3; i++ {
		n := NewNode(KindMesh, "m")
		n.Mesh = quadMesh()
		root.AddChild(n)
	}

	obj := &Object{Root: root}
	if obj.MeshCount() != 3 {
		t.Errorf("MeshCount = %d, want 3", obj.MeshCount())
	}
	if obj.TriangleCount() != 6 {
		t.Errorf("TriangleCount = %d, want 6", obj.TriangleCount())
	}
}

func TestObjectNilRoot(t *testing.T) {
	obj := &Object{}
	if obj.Bounds().Valid() {
		t.Error("bounds of empty object should be invalid")
	}
	if obj.MeshCount() != 0 || obj.TriangleCount() != 0 {
		t.Error("empty object should have zero counts")
	}
}
