package viewer

import (
	"testing"

	"github.com/chewxy/math32"

	"github.com/Faultbox/glbview/internal/engine/scene"
	"github.com/Faultbox/glbview/pkg/math"
)

type stubCamera struct {
	pos math.Vec3
}

func (c stubCamera) Position() math.Vec3 {
	return c.pos
}

// frontCamera looks at the origin from +Z, so the face-the-camera
// baseline is the identity rotation.
var frontCamera = stubCamera{pos: math.Vec3{Z: 5}}

func triangleMesh() *scene.Mesh {
	positions := [][3]float32{
		{0, 0, 0},
		{1, 0, 0},
		{0, 1, 0},
	}
	m := &scene.Mesh{
		Indices:  []uint32{0, 1, 2},
		Material: scene.NewMaterial("mat"),
	}
	for _, p := range positions {
		m.Vertices = append(m.Vertices,
			p[0], p[1], p[2],
			0, 0, 1,
			p[0], p[1])
	}
	return m
}

func testObject(meshCount int) *scene.Object {
	root := scene.NewNode(scene.KindGroup, "root")
	for i := 0; i < meshCount; i++ {
		n := scene.NewNode(scene.KindMesh, "mesh")
		n.Mesh = triangleMesh()
		root.AddChild(n)
	}
	return &scene.Object{Root: root}
}

func rotatedNear(t *testing.T, q math.Quat, v, want math.Vec3) {
	t.Helper()
	got := q.RotateVec3(v)
	if math32.Abs(got.X-want.X) > 0.001 ||
		math32.Abs(got.Y-want.Y) > 0.001 ||
		math32.Abs(got.Z-want.Z) > 0.001 {
		t.Errorf("rotated %v = %v, want %v", v, got, want)
	}
}

func overlayCount(obj *scene.Object) int {
	count := 0
	obj.Root.Traverse(func(n *scene.Node) {
		if n.Kind == scene.KindLines && n.Name == OverlayName {
			count++
		}
	})
	return count
}

func firstMaterial(obj *scene.Object) *scene.Material {
	var mat *scene.Material
	obj.Root.Traverse(func(n *scene.Node) {
		if mat == nil && n.Kind == scene.KindMesh && n.Mesh != nil {
			mat = n.Mesh.Material
		}
	})
	return mat
}

func TestNewModelDefaults(t *testing.T) {
	m := NewModel(nil)

	if m.Object() != nil {
		t.Error("new model should have no object")
	}
	if m.Vista() != VistaFrontal {
		t.Errorf("initial vista = %v, want frontal", m.Vista())
	}
	if m.Mode() != DefaultMode() {
		t.Errorf("initial mode = %v, want default", m.Mode())
	}
	if m.Applied() != DefaultMode() {
		t.Errorf("initial applied = %v, want default", m.Applied())
	}
}

func TestUpdateWithoutObject(t *testing.T) {
	m := NewModel(nil)

	// Requests against an empty model must not crash and must
	// survive until an object arrives.
	m.SetVista(VistaIzquierda)
	m.SetWireframe(true)
	m.Update(frontCamera)

	obj := testObject(2)
	m.SetObject(obj)
	m.Update(frontCamera)

	rotatedNear(t, obj.Root.Rotation, math.Vec3{Z: 1}, math.Vec3{X: 1})
	if overlayCount(obj) != 2 {
		t.Errorf("overlays = %d, want 2", overlayCount(obj))
	}
}

func TestVistaDeferredUntilUpdate(t *testing.T) {
	m := NewModel(nil)
	obj := testObject(1)
	m.SetObject(obj)

	m.SetVista(VistaIzquierda)
	if obj.Root.Rotation != math.QuatIdentity() {
		t.Error("SetVista must not touch the graph before Update")
	}

	m.Update(frontCamera)
	rotatedNear(t, obj.Root.Rotation, math.Vec3{Z: 1}, math.Vec3{X: 1})
}

func TestVistaAppliedOnce(t *testing.T) {
	m := NewModel(nil)
	obj := testObject(1)
	m.SetObject(obj)

	m.SetVista(VistaIsometrica)
	m.Update(frontCamera)
	first := obj.Root.Rotation

	m.Update(frontCamera)
	if obj.Root.Rotation != first {
		t.Error("second Update reapplied the vista")
	}

	// Once consumed, the pending flag is gone: an external rotation
	// is not overwritten by the next Update.
	obj.Root.Rotation = math.QuatFromAxisAngle(math.Vec3{Y: 1}, 1)
	m.Update(frontCamera)
	if obj.Root.Rotation != math.QuatFromAxisAngle(math.Vec3{Y: 1}, 1) {
		t.Error("Update without a pending vista touched the rotation")
	}
}

func TestVistaLastWriteWins(t *testing.T) {
	m := NewModel(nil)
	obj := testObject(1)
	m.SetObject(obj)

	m.SetVista(VistaSuperior)
	m.SetVista(VistaDerecha)
	m.Update(frontCamera)

	// Only derecha is applied: +Z rotated -90 degrees around Y.
	rotatedNear(t, obj.Root.Rotation, math.Vec3{Z: 1}, math.Vec3{X: -1})
}

func TestVistaAnglesApplyXThenYThenZ(t *testing.T) {
	m := NewModel(nil)
	obj := testObject(1)
	m.SetObject(obj)

	m.SetVista(Vista{Name: "custom", X: 90, Y: 90})
	m.Update(frontCamera)

	// X first sends +Y to +Z, then Y sends +Z to +X. Applying Y
	// first would leave +Y in place and end at +Z instead.
	rotatedNear(t, obj.Root.Rotation, math.Vec3{Y: 1}, math.Vec3{X: 1})

	m.SetVista(Vista{Name: "custom", Y: 90, Z: 90})
	m.Update(frontCamera)

	// Y first sends +Z to +X, then Z sends +X to +Y.
	rotatedNear(t, obj.Root.Rotation, math.Vec3{Z: 1}, math.Vec3{Y: 1})
}

func TestVistaFacesCameraFirst(t *testing.T) {
	m := NewModel(nil)
	obj := testObject(1)
	m.SetObject(obj)

	m.SetVista(VistaFrontal)
	m.Update(stubCamera{pos: math.Vec3{X: 5}})

	// With the camera on +X and no vista angles, the object front
	// points at the camera.
	rotatedNear(t, obj.Root.Rotation, math.Vec3{Z: 1}, math.Vec3{X: 1})
}

func TestCustomVistaAppliedAsGiven(t *testing.T) {
	m := NewModel(nil)
	obj := testObject(1)
	m.SetObject(obj)

	m.SetVista(Vista{Name: "tilt", X: 45})
	m.Update(frontCamera)

	want := math.Vec3{Y: -math32.Sin(math.Radians(45)), Z: math32.Cos(math.Radians(45))}
	rotatedNear(t, obj.Root.Rotation, math.Vec3{Z: 1}, want)
}

func TestWireframeRoundTrip(t *testing.T) {
	m := NewModel(nil)
	obj := testObject(3)
	m.SetObject(obj)

	m.SetWireframe(true)
	m.Update(frontCamera)
	if overlayCount(obj) != 3 {
		t.Fatalf("overlays after enable = %d, want 3", overlayCount(obj))
	}
	for _, c := range obj.Root.Children {
		overlay := c.Child(OverlayName)
		if overlay == nil || overlay.Kind != scene.KindLines || overlay.Lines == nil {
			t.Fatal("each mesh node should carry a line overlay child")
		}
		if overlay.Lines.SegmentCount() != 3 {
			t.Errorf("triangle overlay has %d segments, want 3", overlay.Lines.SegmentCount())
		}
	}

	m.SetWireframe(false)
	m.Update(frontCamera)
	if overlayCount(obj) != 0 {
		t.Errorf("overlays after disable = %d, want 0", overlayCount(obj))
	}
	for _, c := range obj.Root.Children {
		if len(c.Children) != 0 {
			t.Error("mesh nodes should have no children after disable")
		}
	}
}

func TestWireframeIdempotent(t *testing.T) {
	m := NewModel(nil)
	obj := testObject(2)
	m.SetObject(obj)

	m.SetWireframe(true)
	m.Update(frontCamera)
	m.SetWireframe(true)
	m.Update(frontCamera)
	m.Update(frontCamera)

	if overlayCount(obj) != 2 {
		t.Errorf("overlays = %d, want 2 after repeated enables", overlayCount(obj))
	}
}

func TestTransparencyOnOff(t *testing.T) {
	m := NewModel(nil)
	obj := testObject(1)
	m.SetObject(obj)
	mat := firstMaterial(obj)

	m.SetTransparent(true)
	m.Update(frontCamera)
	if !mat.Transparent || mat.Opacity != TransparentOpacity {
		t.Errorf("after enable: transparent=%v opacity=%v, want true/%v",
			mat.Transparent, mat.Opacity, TransparentOpacity)
	}

	m.SetTransparent(false)
	m.Update(frontCamera)
	if mat.Transparent || mat.Opacity != 0 {
		t.Errorf("after disable: transparent=%v opacity=%v, want false/0",
			mat.Transparent, mat.Opacity)
	}
}

func TestShadingOffHidesSurfaces(t *testing.T) {
	m := NewModel(nil)
	obj := testObject(1)
	m.SetObject(obj)
	mat := firstMaterial(obj)

	m.SetShaded(false)
	m.Update(frontCamera)
	if !mat.Transparent || mat.Opacity != 0 {
		t.Errorf("unshaded: transparent=%v opacity=%v, want true/0", mat.Transparent, mat.Opacity)
	}

	m.SetShaded(true)
	m.Update(frontCamera)
	if mat.Transparent || mat.Opacity != 1 {
		t.Errorf("reshaded: transparent=%v opacity=%v, want false/1", mat.Transparent, mat.Opacity)
	}
}

func TestTransparencySuppressedWhileUnshaded(t *testing.T) {
	m := NewModel(nil)
	obj := testObject(1)
	m.SetObject(obj)
	mat := firstMaterial(obj)

	m.SetShaded(false)
	m.Update(frontCamera)

	m.SetTransparent(true)
	m.Update(frontCamera)

	// The request is recorded but not applied while unshaded.
	if m.Applied().Transparent {
		t.Error("transparency should not apply while shading is off")
	}
	if !mat.Transparent || mat.Opacity != 0 {
		t.Errorf("materials changed while suppressed: transparent=%v opacity=%v",
			mat.Transparent, mat.Opacity)
	}
}

func TestPendingTransparencyAppliesWithShading(t *testing.T) {
	m := NewModel(nil)
	obj := testObject(1)
	m.SetObject(obj)
	mat := firstMaterial(obj)

	m.SetShaded(false)
	m.Update(frontCamera)
	m.SetTransparent(true)
	m.Update(frontCamera)

	// Re-enabling shading fires both transitions in one pass:
	// transparency first, then the shading write, which lands last.
	m.SetShaded(true)
	m.Update(frontCamera)

	if !m.Applied().Transparent || !m.Applied().Shaded {
		t.Errorf("applied = %+v, want transparency and shading applied", m.Applied())
	}
	if mat.Transparent || mat.Opacity != 1 {
		t.Errorf("material = transparent=%v opacity=%v, want the shading write last",
			mat.Transparent, mat.Opacity)
	}
}

func TestShadingOffResetsAppliedTransparency(t *testing.T) {
	m := NewModel(nil)
	obj := testObject(1)
	m.SetObject(obj)
	mat := firstMaterial(obj)

	m.SetTransparent(true)
	m.Update(frontCamera)
	if !m.Applied().Transparent {
		t.Fatal("transparency should be applied while shaded")
	}

	m.SetShaded(false)
	m.Update(frontCamera)
	if m.Applied().Transparent {
		t.Error("shading off must reset the applied transparency")
	}

	// With transparency still requested, re-enabling shading
	// replays it before the shading write.
	m.SetShaded(true)
	m.Update(frontCamera)
	if !m.Applied().Transparent {
		t.Error("transparency request should replay when shading returns")
	}
	if mat.Transparent || mat.Opacity != 1 {
		t.Errorf("material = transparent=%v opacity=%v after reshading", mat.Transparent, mat.Opacity)
	}
}

func TestModeNetValueBetweenFrames(t *testing.T) {
	m := NewModel(nil)
	obj := testObject(1)
	m.SetObject(obj)
	mat := firstMaterial(obj)

	// Flags that flip and flip back between frames never reach the
	// graph, only the net value does.
	m.SetWireframe(true)
	m.SetWireframe(false)
	m.SetTransparent(true)
	m.SetTransparent(false)
	m.Update(frontCamera)

	if overlayCount(obj) != 0 {
		t.Errorf("overlays = %d, want 0 for a net-unchanged wireframe flag", overlayCount(obj))
	}
	if mat.Transparent || mat.Opacity != 1 {
		t.Errorf("material = transparent=%v opacity=%v, want untouched", mat.Transparent, mat.Opacity)
	}
	if m.Applied() != DefaultMode() {
		t.Errorf("applied = %+v, want defaults", m.Applied())
	}
}

func TestReconcileLeavesMaterialsAloneWithoutTransitions(t *testing.T) {
	m := NewModel(nil)
	obj := testObject(1)
	m.SetObject(obj)
	mat := firstMaterial(obj)

	mat.Opacity = 0.7
	m.Update(frontCamera)
	if mat.Opacity != 0.7 {
		t.Errorf("opacity = %v, reconcile should not touch materials without a transition", mat.Opacity)
	}
}

func TestSetObjectResetsApplied(t *testing.T) {
	m := NewModel(nil)
	first := testObject(1)
	m.SetObject(first)

	m.SetWireframe(true)
	m.Update(frontCamera)
	if overlayCount(first) != 1 {
		t.Fatal("expected overlay on first object")
	}

	second := testObject(2)
	m.SetObject(second)
	if m.Applied() != DefaultMode() {
		t.Errorf("applied after SetObject = %+v, want defaults", m.Applied())
	}

	// The requested wireframe carries over to the new object.
	m.Update(frontCamera)
	if overlayCount(second) != 2 {
		t.Errorf("overlays on new object = %d, want 2", overlayCount(second))
	}
}

func TestToggles(t *testing.T) {
	m := NewModel(nil)

	m.ToggleWireframe()
	m.ToggleTransparent()
	m.ToggleShaded()

	want := Mode{Wireframe: true, Transparent: true, Shaded: false}
	if m.Mode() != want {
		t.Errorf("mode after toggles = %+v, want %+v", m.Mode(), want)
	}
}

func TestVistaByName(t *testing.T) {
	v, ok := VistaByName("isometrica")
	if !ok || v != VistaIsometrica {
		t.Errorf("VistaByName(isometrica) = %v %v", v, ok)
	}
	if _, ok := VistaByName("oblique"); ok {
		t.Error("unknown vista name should not resolve")
	}
}

func TestStockVistaAngles(t *testing.T) {
	cases := []struct {
		vista   Vista
		x, y, z float32
	}{
		{VistaFrontal, 0, 0, 0},
		{VistaPosterior, 0, 180, 0},
		{VistaSuperior, 90, 0, 0},
		{VistaInferior, -90, 0, 0},
		{VistaIzquierda, 0, 90, 0},
		{VistaDerecha, 0, -90, 0},
		{VistaIsometrica, 30, 30, 0},
	}
	for _, c := range cases {
		if c.vista.X != c.x || c.vista.Y != c.y || c.vista.Z != c.z {
			t.Errorf("%s angles = (%v,%v,%v), want (%v,%v,%v)",
				c.vista.Name, c.vista.X, c.vista.Y, c.vista.Z, c.x, c.y, c.z)
		}
	}
}
