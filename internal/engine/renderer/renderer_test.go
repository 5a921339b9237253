package renderer

import (
	"testing"

	"github.com/Faultbox/glbview/internal/engine/scene"
	"github.com/Faultbox/glbview/pkg/math"
)

func pointMesh(x, y, z float32, mat *scene.Material) *scene.Mesh {
	return &scene.Mesh{
		Vertices: []float32{x, y, z, 0, 0, 1, 0, 0},
		Indices:  []uint32{0, 0, 0},
		Material: mat,
	}
}

func TestCollectItemsPartition(t *testing.T) {
	glass := scene.NewMaterial("glass")
	glass.Transparent = true

	root := scene.NewNode(scene.KindGroup, "root")
	root.Position = math.Vec3{X: 10}

	solid := scene.NewNode(scene.KindMesh, "solid")
	solid.Mesh = pointMesh(0, 0, 0, scene.NewMaterial("solid"))
	root.AddChild(solid)

	clear := scene.NewNode(scene.KindMesh, "clear")
	clear.Mesh = pointMesh(0, 0, 0, glass)
	root.AddChild(clear)

	overlay := scene.NewNode(scene.KindLines, "overlay")
	overlay.Lines = &scene.LineSet{Positions: []float32{0, 0, 0, 1, 0, 0}}
	solid.AddChild(overlay)

	var opaque, transparent []meshItem
	var lines []lineItem
	collectItems(root, math.Identity(), &opaque, &transparent, &lines)

	if len(opaque) != 1 || opaque[0].mesh != solid.Mesh {
		t.Errorf("opaque = %d items", len(opaque))
	}
	if len(transparent) != 1 || transparent[0].mesh != clear.Mesh {
		t.Errorf("transparent = %d items", len(transparent))
	}
	if len(lines) != 1 || lines[0].lines != overlay.Lines {
		t.Errorf("lines = %d items", len(lines))
	}

	// The overlay under the translated root must inherit the world
	// transform of its mesh node.
	p := lines[0].world.TransformPoint([3]float32{0, 0, 0})
	if p[0] != 10 {
		t.Errorf("overlay world origin X = %v, want 10", p[0])
	}
}

func TestCollectItemsNilGeometry(t *testing.T) {
	root := scene.NewNode(scene.KindGroup, "root")
	root.AddChild(scene.NewNode(scene.KindMesh, "empty"))
	root.AddChild(scene.NewNode(scene.KindLines, "bare"))
	root.AddChild(scene.NewNode(scene.KindCamera, "cam"))

	var opaque, transparent []meshItem
	var lines []lineItem
	collectItems(root, math.Identity(), &opaque, &transparent, &lines)

	if len(opaque)+len(transparent)+len(lines) != 0 {
		t.Errorf("nodes without geometry produced %d/%d/%d items",
			len(opaque), len(transparent), len(lines))
	}
}

func TestSortByViewDepthFarthestFirst(t *testing.T) {
	items := []meshItem{
		{world: math.Translate(0, 0, -1), mesh: pointMesh(0, 0, 0, nil)},
		{world: math.Translate(0, 0, -10), mesh: pointMesh(0, 0, 0, nil)},
		{world: math.Translate(0, 0, -5), mesh: pointMesh(0, 0, 0, nil)},
	}

	sortByViewDepth(items, math.Identity())

	want := []float32{-10, -5, -1}
	for i, z := range want {
		if items[i].depth != z {
			t.Errorf("item %d depth = %v, want %v", i, items[i].depth, z)
		}
	}
}

func TestSortByViewDepthUsesCamera(t *testing.T) {
	// Two meshes on the X axis. Viewed from +X, the one at the origin
	// is farther and must sort first.
	items := []meshItem{
		{world: math.Translate(4, 0, 0), mesh: pointMesh(0, 0, 0, nil)},
		{world: math.Identity(), mesh: pointMesh(0, 0, 0, nil)},
	}

	view := math.LookAt(math.Vec3{X: 5}, math.Vec3{}, math.Vec3{Y: 1})
	sortByViewDepth(items, view)

	if items[0].depth > items[1].depth {
		t.Errorf("depths not ascending: %v then %v", items[0].depth, items[1].depth)
	}
	if items[1].world.TransformPoint([3]float32{0, 0, 0})[0] != 4 {
		t.Error("nearer mesh (x=4) should sort last")
	}
}
