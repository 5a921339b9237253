package scene

// VertexStride is the number of floats per vertex in Mesh.Vertices:
// position (3), normal (3), texcoord (2).
const VertexStride = 8

// Mesh holds interleaved triangle geometry and its material.
type Mesh struct {
	Vertices []float32
	Indices  []uint32
	Material *Material

	bounds      AABB
	boundsValid bool
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / VertexStride
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Position returns the position of vertex i.
func (m *Mesh) Position(i int) [3]float32 {
	base := i * VertexStride
	return [3]float32{m.Vertices[base], m.Vertices[base+1], m.Vertices[base+2]}
}

// Bounds returns the local-space bounding box, computed on first use.
func (m *Mesh) Bounds() AABB {
	if !m.boundsValid {
		b := NewAABB()
		for i := 0; i < m.VertexCount(); i++ {
			p := m.Position(i)
			b.ExpandPoint(p[0], p[1], p[2])
		}
		m.bounds = b
		m.boundsValid = true
	}
	return m.bounds
}

// LineSet holds line-segment geometry as consecutive endpoint pairs,
// three floats per endpoint.
type LineSet struct {
	Positions []float32
	Color     [4]float32
}

// SegmentCount returns the number of line segments.
func (l *LineSet) SegmentCount() int {
	return len(l.Positions) / 6
}

// EdgeLines extracts the unique triangle edges of the mesh as a line
// set, suitable for a wireframe overlay.
func (m *Mesh) EdgeLines() *LineSet {
	type edge struct{ a, b uint32 }
	seen := make(map[edge]struct{}, len(m.Indices))

	ls := &LineSet{Color: [4]float32{0.05, 0.05, 0.05, 1}}

	addEdge := func(a, b uint32) {
		if a > b {
			a, b = b, a
		}
		e := edge{a, b}
		if _, ok := seen[e]; ok {
			return
		}
		seen[e] = struct{}{}

		pa := m.Position(int(a))
		pb := m.Position(int(b))
		ls.Positions = append(ls.Positions,
			pa[0], pa[1], pa[2],
			pb[0], pb[1], pb[2])
	}

	for i := 0; i+2 < len(m.Indices); i += 3 {
		i0, i1, i2 := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		addEdge(i0, i1)
		addEdge(i1, i2)
		addEdge(i2, i0)
	}

	return ls
}
