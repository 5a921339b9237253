// Package loader reads glTF and GLB files into the viewer scene graph.
package loader

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/glbview/internal/engine/scene"
	"github.com/Faultbox/glbview/pkg/math"
)

// ErrUnsupportedFormat is returned for files that are not glTF or GLB.
var ErrUnsupportedFormat = errors.New("unsupported model format")

// IsModelFile reports whether the path has a supported extension.
func IsModelFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".glb", ".gltf":
		return true
	default:
		return false
	}
}

// Load reads a .glb or .gltf file into a scene object. External
// buffers and images referenced by a .gltf document are resolved
// relative to its directory.
func Load(path string) (*scene.Object, error) {
	if !IsModelFile(path) {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupportedFormat)
	}

	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", filepath.Base(path), err)
	}

	obj, err := decodeDocument(doc, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	obj.Source = path
	return obj, nil
}

// decodeDocument converts a parsed glTF document into a scene object.
func decodeDocument(doc *gltf.Document, baseDir string) (*scene.Object, error) {
	sceneIdx := 0
	if doc.Scene != nil {
		sceneIdx = *doc.Scene
	}
	if sceneIdx < 0 || sceneIdx >= len(doc.Scenes) {
		return nil, fmt.Errorf("document has no usable scene")
	}
	gs := doc.Scenes[sceneIdx]

	materials := decodeMaterials(doc, baseDir)

	// A glTF mesh is a list of primitives, each of which becomes one
	// viewer mesh.
	meshes := make([][]*scene.Mesh, len(doc.Meshes))
	for i, gm := range doc.Meshes {
		for _, prim := range gm.Primitives {
			mesh, err := decodePrimitive(doc, prim, materials)
			if err != nil {
				return nil, fmt.Errorf("mesh %q: %w", gm.Name, err)
			}
			if mesh != nil {
				meshes[i] = append(meshes[i], mesh)
			}
		}
	}

	rootName := gs.Name
	if rootName == "" {
		rootName = "scene"
	}
	root := scene.NewNode(scene.KindGroup, rootName)
	for _, ni := range gs.Nodes {
		if ni < 0 || ni >= len(doc.Nodes) {
			return nil, fmt.Errorf("scene references node %d of %d", ni, len(doc.Nodes))
		}
		child, err := decodeNode(doc, ni, meshes)
		if err != nil {
			return nil, err
		}
		root.AddChild(child)
	}

	return &scene.Object{
		Root:       root,
		Animations: decodeAnimations(doc),
	}, nil
}

func decodeNode(doc *gltf.Document, idx int, meshes [][]*scene.Mesh) (*scene.Node, error) {
	gn := doc.Nodes[idx]

	name := gn.Name
	if name == "" {
		name = fmt.Sprintf("node_%d", idx)
	}
	n := scene.NewNode(scene.KindGroup, name)
	applyNodeTransform(n, gn)

	if gn.Camera != nil && gn.Mesh == nil {
		n.Kind = scene.KindCamera
	}

	if gn.Mesh != nil {
		mi := *gn.Mesh
		if mi < 0 || mi >= len(meshes) {
			return nil, fmt.Errorf("node %q references mesh %d of %d", name, mi, len(doc.Meshes))
		}
		prims := meshes[mi]
		if len(prims) == 1 {
			n.Kind = scene.KindMesh
			n.Mesh = prims[0]
		} else {
			// Multi-primitive meshes become a group of mesh nodes so
			// each primitive keeps its own material.
			for i, pm := range prims {
				child := scene.NewNode(scene.KindMesh, fmt.Sprintf("%s_%d", name, i))
				child.Mesh = pm
				n.AddChild(child)
			}
		}
	}

	for _, ci := range gn.Children {
		if ci < 0 || ci >= len(doc.Nodes) {
			return nil, fmt.Errorf("node %q references child %d of %d", name, ci, len(doc.Nodes))
		}
		child, err := decodeNode(doc, ci, meshes)
		if err != nil {
			return nil, err
		}
		n.AddChild(child)
	}

	return n, nil
}

// applyNodeTransform copies the glTF node transform. A matrix, when
// present, wins over the TRS fields.
func applyNodeTransform(n *scene.Node, gn *gltf.Node) {
	t := gn.TranslationOrDefault()
	r := gn.RotationOrDefault()
	s := gn.ScaleOrDefault()
	n.Position = math.Vec3{X: float32(t[0]), Y: float32(t[1]), Z: float32(t[2])}
	n.Rotation = math.Quat{X: float32(r[0]), Y: float32(r[1]), Z: float32(r[2]), W: float32(r[3])}
	n.Scale = math.Vec3{X: float32(s[0]), Y: float32(s[1]), Z: float32(s[2])}

	identity := [16]float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
	if m := gn.MatrixOrDefault(); m != identity {
		var m32 math.Mat4
		for i, v := range m {
			m32[i] = float32(v)
		}
		n.Position, n.Rotation, n.Scale = m32.Decompose()
	}
}

// decodePrimitive converts one glTF primitive into a viewer mesh.
// Primitives without positions or with a non-triangle mode are
// skipped and return nil.
func decodePrimitive(doc *gltf.Document, prim *gltf.Primitive, materials []*scene.Material) (*scene.Mesh, error) {
	if prim.Mode != gltf.PrimitiveTriangles {
		return nil, nil
	}
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, nil
	}
	if posIdx < 0 || posIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("position accessor %d of %d", posIdx, len(doc.Accessors))
	}

	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("reading positions: %w", err)
	}

	var indices []uint32
	if prim.Indices != nil {
		ii := *prim.Indices
		if ii < 0 || ii >= len(doc.Accessors) {
			return nil, fmt.Errorf("index accessor %d of %d", ii, len(doc.Accessors))
		}
		indices, err = modeler.ReadIndices(doc, doc.Accessors[ii], nil)
		if err != nil {
			return nil, fmt.Errorf("reading indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	var normals [][3]float32
	if ni, ok := prim.Attributes[gltf.NORMAL]; ok && ni >= 0 && ni < len(doc.Accessors) {
		normals, err = modeler.ReadNormal(doc, doc.Accessors[ni], nil)
		if err != nil {
			return nil, fmt.Errorf("reading normals: %w", err)
		}
	}
	if len(normals) != len(positions) {
		normals = computeNormals(positions, indices)
	}

	var texcoords [][2]float32
	if ti, ok := prim.Attributes[gltf.TEXCOORD_0]; ok && ti >= 0 && ti < len(doc.Accessors) {
		texcoords, err = modeler.ReadTextureCoord(doc, doc.Accessors[ti], nil)
		if err != nil {
			return nil, fmt.Errorf("reading texcoords: %w", err)
		}
	}

	mat := scene.NewMaterial("")
	if prim.Material != nil && *prim.Material >= 0 && *prim.Material < len(materials) {
		mat = materials[*prim.Material]
	}

	mesh := &scene.Mesh{
		Indices:  indices,
		Material: mat,
		Vertices: make([]float32, 0, len(positions)*scene.VertexStride),
	}
	for i, p := range positions {
		var n [3]float32
		if i < len(normals) {
			n = normals[i]
		}
		var uv [2]float32
		if i < len(texcoords) {
			uv = texcoords[i]
		}
		mesh.Vertices = append(mesh.Vertices,
			p[0], p[1], p[2],
			n[0], n[1], n[2],
			uv[0], uv[1])
	}

	return mesh, nil
}

// computeNormals derives smooth vertex normals from triangle faces,
// for assets that do not carry their own.
func computeNormals(positions [][3]float32, indices []uint32) [][3]float32 {
	acc := make([]math.Vec3, len(positions))

	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		if int(i0) >= len(positions) || int(i1) >= len(positions) || int(i2) >= len(positions) {
			continue
		}
		p0 := math.Vec3{X: positions[i0][0], Y: positions[i0][1], Z: positions[i0][2]}
		p1 := math.Vec3{X: positions[i1][0], Y: positions[i1][1], Z: positions[i1][2]}
		p2 := math.Vec3{X: positions[i2][0], Y: positions[i2][1], Z: positions[i2][2]}

		face := p1.Sub(p0).Cross(p2.Sub(p0))
		acc[i0] = acc[i0].Add(face)
		acc[i1] = acc[i1].Add(face)
		acc[i2] = acc[i2].Add(face)
	}

	out := make([][3]float32, len(positions))
	for i, v := range acc {
		n := v.Normalize()
		if n.Length() == 0 {
			n = math.Vec3{Y: 1}
		}
		out[i] = [3]float32{n.X, n.Y, n.Z}
	}
	return out
}

// decodeAnimations lists the clips in the document. The duration is
// the largest keyframe time across the clip's samplers. Playback is
// not supported, the viewer only reports what the asset contains.
func decodeAnimations(doc *gltf.Document) []scene.Animation {
	if len(doc.Animations) == 0 {
		return nil
	}
	out := make([]scene.Animation, 0, len(doc.Animations))
	for i, ga := range doc.Animations {
		name := ga.Name
		if name == "" {
			name = fmt.Sprintf("animation_%d", i)
		}

		var duration float64
		for _, smp := range ga.Samplers {
			if smp == nil {
				continue
			}
			ai := smp.Input
			if ai < 0 || ai >= len(doc.Accessors) {
				continue
			}
			if acc := doc.Accessors[ai]; len(acc.Max) > 0 && acc.Max[0] > duration {
				duration = acc.Max[0]
			}
		}

		out = append(out, scene.Animation{Name: name, Duration: float32(duration)})
	}
	return out
}
