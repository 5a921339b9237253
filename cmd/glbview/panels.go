// UI panels for the glbview application.
package main

import (
	"fmt"
	"path/filepath"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/Faultbox/glbview/internal/engine/picking"
	"github.com/Faultbox/glbview/internal/engine/scene"
	"github.com/Faultbox/glbview/internal/viewer"
	"github.com/Faultbox/glbview/pkg/math"
)

// maxModelListItems caps the file list to keep the panel responsive.
const maxModelListItems = 100

// lastMousePos tracks previous mouse position for drag delta calculation.
var lastMousePos imgui.Vec2

// renderSidePanel renders the model list, vista buttons, display mode
// checkboxes and object info.
func (app *App) renderSidePanel() {
	app.renderModelList()
	imgui.Separator()
	app.renderVistaButtons()
	imgui.Separator()
	app.renderPresentation()
	imgui.Separator()
	app.renderModelInfo()
	imgui.Separator()
	app.renderSceneTree()
}

// renderModelList lists the model files found under the search paths.
func (app *App) renderModelList() {
	imgui.Text("Models")
	imgui.SameLine()
	if imgui.Button("Refresh") {
		app.modelFiles = app.manager.List()
	}

	if imgui.BeginChildStrV("ModelListChild", imgui.NewVec2(0, 160), imgui.ChildFlagsBorders, imgui.WindowFlagsHorizontalScrollbar) {
		if len(app.modelFiles) == 0 {
			imgui.TextDisabled("No models found")
			imgui.TextDisabled("Use File > Open Model...")
		}
		for i, path := range app.modelFiles {
			if i >= maxModelListItems {
				imgui.Text(fmt.Sprintf("... and %d more", len(app.modelFiles)-maxModelListItems))
				break
			}
			flags := imgui.TreeNodeFlagsLeaf | imgui.TreeNodeFlagsNoTreePushOnOpen | imgui.TreeNodeFlagsSpanAvailWidth
			if path == app.modelPath {
				flags |= imgui.TreeNodeFlagsSelected
			}
			imgui.TreeNodeExStrV(filepath.Base(path)+"##"+path, flags)
			if imgui.IsItemClicked() {
				app.startLoad(path)
			}
		}
	}
	imgui.EndChild()
}

// renderVistaButtons renders one button per stock viewpoint.
func (app *App) renderVistaButtons() {
	imgui.Text(fmt.Sprintf("Vista: %s", app.model.Vista().Name))
	for i, v := range viewer.Vistas {
		if i%2 == 1 {
			imgui.SameLine()
		}
		if imgui.ButtonV(v.Name, imgui.NewVec2(160, 0)) {
			app.model.SetVista(v)
		}
	}
}

// renderPresentation renders the display mode checkboxes.
func (app *App) renderPresentation() {
	imgui.Text("Presentation")

	mode := app.model.Mode()

	wireframe := mode.Wireframe
	if imgui.Checkbox("Wireframe (W)", &wireframe) {
		app.model.SetWireframe(wireframe)
	}

	transparent := mode.Transparent
	if imgui.Checkbox("Transparency (T)", &transparent) {
		app.model.SetTransparent(transparent)
	}
	if imgui.IsItemHovered() {
		imgui.SetTooltip("Dims surfaces to 40% opacity; takes effect while shading is on")
	}

	shaded := mode.Shaded
	if imgui.Checkbox("Shading (S)", &shaded) {
		app.model.SetShaded(shaded)
	}

	imgui.Checkbox("Show Bounds (B)", &app.showBounds)
	imgui.Checkbox("Show Grid (G)", &app.showGrid)
}

// renderModelInfo shows the loaded object's statistics and animations.
func (app *App) renderModelInfo() {
	obj := app.model.Object()
	if obj == nil {
		imgui.TextDisabled("No model loaded")
		return
	}

	imgui.Text(fmt.Sprintf("File: %s", filepath.Base(obj.Source)))
	imgui.Text(fmt.Sprintf("Meshes: %d", obj.MeshCount()))
	imgui.Text(fmt.Sprintf("Triangles: %d", obj.TriangleCount()))
	imgui.Text(fmt.Sprintf("Materials: %d", materialCount(obj)))

	if len(obj.Animations) > 0 {
		if imgui.TreeNodeExStrV(fmt.Sprintf("Animations (%d)", len(obj.Animations)), imgui.TreeNodeFlagsNone) {
			for _, a := range obj.Animations {
				imgui.Text(fmt.Sprintf("%s (%.2fs)", a.Name, a.Duration))
			}
			imgui.TreePop()
		}
	}
}

// materialCount counts distinct materials across the object's meshes.
func materialCount(obj *scene.Object) int {
	if obj.Root == nil {
		return 0
	}
	seen := make(map[*scene.Material]bool)
	obj.Root.Traverse(func(n *scene.Node) {
		if n.Kind == scene.KindMesh && n.Mesh != nil && n.Mesh.Material != nil {
			seen[n.Mesh.Material] = true
		}
	})
	return len(seen)
}

// renderSceneTree renders the scene graph of the loaded object.
func (app *App) renderSceneTree() {
	obj := app.model.Object()
	if obj == nil || obj.Root == nil {
		return
	}
	imgui.Text("Scene")
	if app.selected != nil {
		imgui.SameLine()
		imgui.TextDisabled(fmt.Sprintf("(%s)", app.selected.Name))
	}
	if imgui.BeginChildStrV("SceneTreeChild", imgui.NewVec2(0, 0), imgui.ChildFlagsBorders, imgui.WindowFlagsHorizontalScrollbar) {
		app.renderSceneNode(obj.Root)
	}
	imgui.EndChild()
}

// renderSceneNode recursively renders a scene graph node. Mesh rows are
// selectable and stay in sync with viewport picking.
func (app *App) renderSceneNode(n *scene.Node) {
	label := n.Name
	switch n.Kind {
	case scene.KindMesh:
		if n.Mesh != nil {
			label = fmt.Sprintf("%s (%d tris)", n.Name, n.Mesh.TriangleCount())
		}
	case scene.KindLines:
		if n.Lines != nil {
			label = fmt.Sprintf("%s (%d lines)", n.Name, n.Lines.SegmentCount())
		}
	}

	if len(n.Children) == 0 {
		flags := imgui.TreeNodeFlagsLeaf | imgui.TreeNodeFlagsNoTreePushOnOpen
		if n == app.selected {
			flags |= imgui.TreeNodeFlagsSelected
		}
		imgui.TreeNodeExStrV(label, flags)
		if imgui.IsItemClicked() && n.Kind == scene.KindMesh {
			app.selected = n
		}
		return
	}

	flags := imgui.TreeNodeFlagsOpenOnArrow | imgui.TreeNodeFlagsSpanAvailWidth | imgui.TreeNodeFlagsDefaultOpen
	if n == app.selected {
		flags |= imgui.TreeNodeFlagsSelected
	}
	open := imgui.TreeNodeExStrV(label, flags)
	if imgui.IsItemClicked() && n.Kind == scene.KindMesh {
		app.selected = n
	}
	if open {
		for _, c := range n.Children {
			app.renderSceneNode(c)
		}
		imgui.TreePop()
	}
}

// renderViewport renders the model into the offscreen target and
// displays it, handling orbit, pan and zoom input while hovered.
func (app *App) renderViewport() {
	avail := imgui.ContentRegionAvail()
	if avail.X < 1 || avail.Y < 1 {
		return
	}

	app.rend.Resize(int32(avail.X), int32(avail.Y))
	textureID := app.rend.Render(app.model.Object(), app.cam)

	// Display rendered texture (flip V for OpenGL)
	origin := imgui.CursorScreenPos()
	texRef := imgui.NewTextureRefTextureID(imgui.TextureID(textureID))
	imgui.ImageWithBgV(
		*texRef,
		imgui.NewVec2(avail.X, avail.Y),
		imgui.NewVec2(0, 1), // UV flipped
		imgui.NewVec2(1, 0),
		imgui.NewVec4(0.15, 0.15, 0.15, 1.0),
		imgui.NewVec4(1, 1, 1, 1),
	)

	// Handle mouse input when hovering the image
	if imgui.IsItemHovered() {
		mousePos := imgui.MousePos()

		// Left click picks the mesh under the cursor, a click on empty
		// space clears the selection
		if imgui.IsMouseClickedBool(0) {
			app.selected = app.pickAt(mousePos.X-origin.X, mousePos.Y-origin.Y, avail.X, avail.Y)
		}

		if imgui.IsMouseDragging(imgui.MouseButtonLeft) {
			app.cam.HandleDrag(mousePos.X-lastMousePos.X, mousePos.Y-lastMousePos.Y)
		}
		if imgui.IsMouseDragging(imgui.MouseButtonRight) || imgui.IsMouseDragging(imgui.MouseButtonMiddle) {
			app.cam.HandlePan(mousePos.X-lastMousePos.X, mousePos.Y-lastMousePos.Y)
		}
		lastMousePos = mousePos

		// Mouse wheel for zoom
		wheel := imgui.CurrentIO().MouseWheel()
		if wheel != 0 {
			app.cam.HandleZoom(wheel)
		}
	}
}

// pickAt casts a ray through the given viewport pixel and returns the
// nearest mesh node, or nil when nothing is under the cursor.
func (app *App) pickAt(px, py, width, height float32) *scene.Node {
	obj := app.model.Object()
	if obj == nil || obj.Root == nil {
		return nil
	}
	ray := picking.ScreenRay(app.cam.Position(), app.cam.Center,
		math.Radians(app.cfg.Viewer.FOVDegrees), px, py, width, height)
	return picking.PickNode(obj.Root, ray)
}

// renderStatusBar renders the status bar at the bottom.
func (app *App) renderStatusBar() {
	if app.loadCh != nil {
		imgui.Text("Loading...")
		return
	}

	obj := app.model.Object()
	if obj == nil {
		imgui.Text("No model loaded")
		return
	}

	stats := app.rend.Stats()
	line := fmt.Sprintf("%s | %d meshes | %d triangles | %d draws | vista: %s",
		filepath.Base(app.modelPath), obj.MeshCount(), obj.TriangleCount(),
		stats.DrawCalls, app.model.Vista().Name)
	if app.cfg.Viewer.ShowFPS {
		line += fmt.Sprintf(" | %.1f fps", imgui.CurrentIO().Framerate())
	}
	imgui.Text(line)
}
