package viewer

import (
	"go.uber.org/zap"

	"github.com/Faultbox/glbview/internal/engine/scene"
	"github.com/Faultbox/glbview/pkg/math"
)

// TransparentOpacity is the opacity materials take while the
// transparency mode is active.
const TransparentOpacity = 0.4

// OverlayName names the wireframe overlay children attached to mesh
// nodes, so they can be found and removed again.
const OverlayName = "wireframe_overlay"

// Camera exposes the viewpoint position the object is turned toward.
type Camera interface {
	Position() math.Vec3
}

// Model tracks the presented object together with the requested
// viewpoint and display modes, and reconciles the scene graph with
// them once per frame. Changes requested between frames are deferred
// until Update, and re-requesting the current state does not touch
// the graph.
type Model struct {
	object      *scene.Object
	vista       Vista
	viewChanged bool

	mode    Mode // requested flags
	applied Mode // flags the graph currently reflects

	log *zap.Logger
}

// NewModel returns a model with no object, the frontal viewpoint and
// default display modes.
func NewModel(log *zap.Logger) *Model {
	if log == nil {
		log = zap.NewNop()
	}
	return &Model{
		vista:   VistaFrontal,
		mode:    DefaultMode(),
		applied: DefaultMode(),
		log:     log,
	}
}

// SetObject replaces the presented object. The new object is assumed
// to be in its loaded state, so the applied modes reset to the
// defaults and any requested modes take effect on the next Update.
// The stored vista is kept but not re-applied until SetVista is
// called again.
func (m *Model) SetObject(obj *scene.Object) {
	m.object = obj
	m.applied = DefaultMode()
}

// Object returns the presented object, or nil.
func (m *Model) Object() *scene.Object {
	return m.object
}

// SetVista stores the requested viewpoint and marks it pending. Only
// the last request before Update takes effect.
func (m *Model) SetVista(v Vista) {
	m.vista = v
	m.viewChanged = true
}

// Vista returns the requested viewpoint.
func (m *Model) Vista() Vista {
	return m.vista
}

// SetWireframe requests the wireframe overlay state.
func (m *Model) SetWireframe(on bool) {
	m.mode.Wireframe = on
}

// SetTransparent requests the transparency state.
func (m *Model) SetTransparent(on bool) {
	m.mode.Transparent = on
}

// SetShaded requests the surface shading state.
func (m *Model) SetShaded(on bool) {
	m.mode.Shaded = on
}

// ToggleWireframe flips the requested wireframe state.
func (m *Model) ToggleWireframe() {
	m.mode.Wireframe = !m.mode.Wireframe
}

// ToggleTransparent flips the requested transparency state.
func (m *Model) ToggleTransparent() {
	m.mode.Transparent = !m.mode.Transparent
}

// ToggleShaded flips the requested shading state.
func (m *Model) ToggleShaded() {
	m.mode.Shaded = !m.mode.Shaded
}

// Mode returns the requested display modes.
func (m *Model) Mode() Mode {
	return m.mode
}

// Applied returns the modes the scene graph currently reflects.
func (m *Model) Applied() Mode {
	return m.applied
}

// Update reconciles the scene graph with the requested viewpoint and
// modes. With no object it does nothing; pending requests survive
// until an object is present.
func (m *Model) Update(cam Camera) {
	if m.object == nil || m.object.Root == nil {
		return
	}

	if m.viewChanged {
		m.applyVista(cam)
		m.viewChanged = false
	}

	m.applyModes()
}

// applyVista orients the object root: face the camera, then rotate
// around the world X, Y and Z axes by the vista angles.
func (m *Model) applyVista(cam Camera) {
	root := m.object.Root

	root.LookAt(cam.Position(), math.Vec3{Y: 1})
	root.RotateOnWorldAxis(math.Vec3{X: 1}, math.Radians(m.vista.X))
	root.RotateOnWorldAxis(math.Vec3{Y: 1}, math.Radians(m.vista.Y))
	root.RotateOnWorldAxis(math.Vec3{Z: 1}, math.Radians(m.vista.Z))

	m.log.Debug("vista applied",
		zap.String("vista", m.vista.Name),
		zap.Float32("x", m.vista.X),
		zap.Float32("y", m.vista.Y),
		zap.Float32("z", m.vista.Z))
}

// applyModes fires the mode transitions whose requested flag differs
// from the applied one. Wireframe first, then transparency, then
// shading; a transparency request only applies while shading is
// requested on, and turning shading off resets the applied
// transparency so the request fires again once shading returns.
func (m *Model) applyModes() {
	if m.mode.Wireframe != m.applied.Wireframe {
		if m.mode.Wireframe {
			m.addOverlays()
		} else {
			m.removeOverlays()
		}
		m.applied.Wireframe = m.mode.Wireframe
	}

	if m.mode.Transparent != m.applied.Transparent && m.mode.Shaded {
		if m.mode.Transparent {
			m.eachMaterial(func(mat *scene.Material) {
				mat.Transparent = true
				mat.Opacity = TransparentOpacity
			})
		} else {
			m.eachMaterial(func(mat *scene.Material) {
				mat.Transparent = false
				mat.Opacity = 0
			})
		}
		m.applied.Transparent = m.mode.Transparent
		m.log.Debug("transparency applied", zap.Bool("on", m.mode.Transparent))
	}

	if m.mode.Shaded != m.applied.Shaded {
		if m.mode.Shaded {
			m.eachMaterial(func(mat *scene.Material) {
				mat.Transparent = false
				mat.Opacity = 1
			})
		} else {
			m.eachMaterial(func(mat *scene.Material) {
				mat.Transparent = true
				mat.Opacity = 0
			})
			m.applied.Transparent = false
		}
		m.applied.Shaded = m.mode.Shaded
		m.log.Debug("shading applied", zap.Bool("on", m.mode.Shaded))
	}
}

// meshNodes collects the mesh nodes of the graph before mutating it.
func (m *Model) meshNodes() []*scene.Node {
	var nodes []*scene.Node
	m.object.Root.Traverse(func(n *scene.Node) {
		if n.Kind == scene.KindMesh && n.Mesh != nil {
			nodes = append(nodes, n)
		}
	})
	return nodes
}

func (m *Model) addOverlays() {
	added := 0
	for _, n := range m.meshNodes() {
		if n.Child(OverlayName) != nil {
			continue
		}
		overlay := scene.NewNode(scene.KindLines, OverlayName)
		overlay.Lines = n.Mesh.EdgeLines()
		n.AddChild(overlay)
		added++
	}
	m.log.Debug("wireframe overlays added", zap.Int("count", added))
}

func (m *Model) removeOverlays() {
	removed := 0
	for _, n := range m.meshNodes() {
		if overlay := n.Child(OverlayName); overlay != nil {
			n.RemoveChild(overlay)
			removed++
		}
	}
	m.log.Debug("wireframe overlays removed", zap.Int("count", removed))
}

func (m *Model) eachMaterial(fn func(*scene.Material)) {
	for _, n := range m.meshNodes() {
		if n.Mesh.Material != nil {
			fn(n.Mesh.Material)
		}
	}
}
