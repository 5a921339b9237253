// glbview is a graphical viewer for glTF and GLB models.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/Faultbox/glbview/internal/assets"
	"github.com/Faultbox/glbview/internal/config"
	"github.com/Faultbox/glbview/internal/engine/camera"
	"github.com/Faultbox/glbview/internal/engine/debug"
	"github.com/Faultbox/glbview/internal/engine/renderer"
	"github.com/Faultbox/glbview/internal/engine/scene"
	"github.com/Faultbox/glbview/internal/engine/ui"
	"github.com/Faultbox/glbview/internal/logger"
	"github.com/Faultbox/glbview/internal/viewer"
)

// Scene graph names of the overlay line nodes.
const (
	boundsNodeName = "bounds_overlay"
	gridNodeName   = "ground_grid"
)

func main() {
	runtime.LockOSThread()

	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	app, err := NewApp(cfg)
	if err != nil {
		logger.Error("failed to create application", zap.Error(err))
		os.Exit(1)
	}
	defer app.Close()

	// Open the model named on the command line, if any
	if flag.Arg(0) != "" {
		app.startLoad(flag.Arg(0))
	}

	app.Run()
}

// App represents the viewer application state.
type App struct {
	backend *ui.Backend
	cfg     *config.Config
	log     *zap.Logger

	manager *assets.Manager
	model   *viewer.Model
	cam     *camera.OrbitCamera
	rend    *renderer.Renderer
	capture *debug.ScreenshotCapture

	// Loaded model state
	modelPath  string      // resolved path of the presented model
	bounds     scene.AABB  // object-space bounds captured at load
	modelFiles []string    // model files found under the search paths
	selected   *scene.Node // mesh node picked in the viewport or tree
	showBounds bool
	showGrid   bool

	// Async load state; at most one load in flight, resolved on the
	// frame thread
	loadCh <-chan assets.Result

	// File dialog state (must open on main thread)
	pendingModelPath string

	// Notification overlay state
	lastNotifyMsg       string
	showNotifyMsg       bool
	notifyTime          time.Time
	screenshotRequested bool // Deferred capture flag (capture next frame)
}

// NewApp creates a new application instance.
func NewApp(cfg *config.Config) (*App, error) {
	app := &App{
		cfg:     cfg,
		log:     logger.Named("glbview"),
		manager: assets.NewManager(cfg.Data.ModelPaths...),
		model:   viewer.NewModel(logger.Named("viewer")),
		cam:     camera.NewOrbitCamera(),
		capture: debug.NewScreenshotCapture(cfg.Data.ScreenshotDir, "glbview"),
	}

	v, ok := viewer.VistaByName(cfg.Viewer.Vista)
	if !ok {
		app.log.Warn("unknown vista in config, using frontal",
			zap.String("vista", cfg.Viewer.Vista))
		v = viewer.VistaFrontal
	}
	app.model.SetVista(v)
	app.model.SetWireframe(cfg.Viewer.Wireframe)
	app.model.SetTransparent(cfg.Viewer.Transparent)
	app.model.SetShaded(cfg.Viewer.Shaded)

	var err error
	app.backend, err = ui.NewBackend("glbview",
		int32(cfg.Window.Width), int32(cfg.Window.Height),
		[3]float32{0.1, 0.1, 0.12})
	if err != nil {
		return nil, fmt.Errorf("creating backend: %w", err)
	}

	app.rend, err = renderer.New(int32(cfg.Window.Width), int32(cfg.Window.Height),
		logger.Named("renderer"))
	if err != nil {
		return nil, fmt.Errorf("creating renderer: %w", err)
	}
	app.rend.SetBackground(cfg.Viewer.Background[0], cfg.Viewer.Background[1], cfg.Viewer.Background[2])
	app.rend.SetFOV(cfg.Viewer.FOVDegrees)

	app.modelFiles = app.manager.List()

	return app, nil
}

// Close cleans up resources.
func (app *App) Close() {
	if app.rend != nil {
		app.rend.Destroy()
		app.rend = nil
	}
}

// Run starts the main application loop.
func (app *App) Run() {
	app.backend.Run(app.render)
}

// openFileDialog shows a native file dialog to select a model file.
func (app *App) openFileDialog() {
	// Run in goroutine to not block the UI
	// NOTE: SDL/Cocoa window operations must happen on main thread,
	// so we just set pendingModelPath here and process it in render()
	go func() {
		filename, err := dialog.File().
			Filter("glTF Models", "glb", "gltf").
			Filter("All Files", "*").
			Title("Open Model").
			Load()

		if err != nil {
			// User canceled or error occurred
			if err != dialog.ErrCancelled {
				app.log.Error("file dialog failed", zap.Error(err))
			}
			return
		}

		// Queue the file to be opened on main thread
		app.pendingModelPath = filename
	}()
}

// startLoad kicks off an asynchronous model load.
func (app *App) startLoad(path string) {
	if app.loadCh != nil {
		app.showNotification("Still loading previous model")
		return
	}
	app.log.Info("loading model", zap.String("path", path))
	app.loadCh = app.manager.LoadAsync(path)
	app.showNotification("Loading " + filepath.Base(path) + "...")
}

// pollLoad checks for a finished load without blocking the frame.
func (app *App) pollLoad() {
	if app.loadCh == nil {
		return
	}
	select {
	case res := <-app.loadCh:
		app.loadCh = nil
		if res.Err != nil {
			app.log.Error("model load failed", zap.Error(res.Err))
			app.showNotification(fmt.Sprintf("Load failed: %v", res.Err))
			return
		}
		app.installObject(res)
	default:
	}
}

// installObject presents a freshly loaded model.
func (app *App) installObject(res assets.Result) {
	app.model.SetObject(res.Object)
	// Re-request the current vista so it applies to the new object.
	app.model.SetVista(app.model.Vista())

	app.modelPath = res.Path
	app.selected = nil
	// Bounds are captured before the first Update touches the root, so
	// they stay in object space regardless of the vista applied later.
	app.bounds = res.Object.Bounds()

	if app.cfg.Viewer.AutoFit {
		app.cam.FitToBounds(app.bounds)
	}

	app.backend.SetWindowTitle(fmt.Sprintf("glbview - %s", filepath.Base(res.Path)))
	app.log.Info("model loaded",
		zap.String("path", res.Path),
		zap.Int("meshes", res.Object.MeshCount()),
		zap.Int("triangles", res.Object.TriangleCount()))
	app.showNotification(fmt.Sprintf("Loaded: %s (%d meshes, %d triangles)",
		filepath.Base(res.Path), res.Object.MeshCount(), res.Object.TriangleCount()))
}

// vistaKeys maps the number keys to the stock vistas in order.
var vistaKeys = []imgui.Key{
	imgui.Key1, imgui.Key2, imgui.Key3, imgui.Key4,
	imgui.Key5, imgui.Key6, imgui.Key7,
}

// handleShortcuts processes global keyboard shortcuts.
func (app *App) handleShortcuts() {
	// F12 = request screenshot (captured next frame to get rendered content)
	if ui.IsKeyPressed(imgui.KeyF12) {
		app.screenshotRequested = true
	}

	// Ctrl+O = open model dialog
	ctrlO := imgui.KeyChord(imgui.ModCtrl) | imgui.KeyChord(imgui.KeyO)
	if imgui.IsKeyChordPressed(ctrlO) {
		app.openFileDialog()
	}

	// Mode and camera keys only apply when no widget is capturing input
	if imgui.IsAnyItemActive() {
		return
	}

	if ui.IsKeyPressed(imgui.KeyW) {
		app.model.ToggleWireframe()
	}
	if ui.IsKeyPressed(imgui.KeyT) {
		app.model.ToggleTransparent()
	}
	if ui.IsKeyPressed(imgui.KeyS) {
		app.model.ToggleShaded()
	}
	if ui.IsKeyPressed(imgui.KeyB) {
		app.showBounds = !app.showBounds
	}
	if ui.IsKeyPressed(imgui.KeyG) {
		app.showGrid = !app.showGrid
	}
	if ui.IsKeyPressed(imgui.KeyF) {
		app.fitCamera()
	}
	for i, key := range vistaKeys {
		if ui.IsKeyPressed(key) {
			app.model.SetVista(viewer.Vistas[i])
		}
	}
}

// fitCamera frames the camera on the loaded model.
func (app *App) fitCamera() {
	if app.bounds.Valid() {
		app.cam.FitToBounds(app.bounds)
	}
}

// syncOverlays attaches or removes the bounding box and ground grid
// line nodes to match the current toggles.
func (app *App) syncOverlays() {
	obj := app.model.Object()
	if obj == nil || obj.Root == nil {
		return
	}
	syncOverlay(obj.Root, boundsNodeName, app.showBounds, func() *scene.LineSet {
		return debug.BoundsLines(app.bounds, app.bounds.MaxExtent()*0.005)
	})
	syncOverlay(obj.Root, gridNodeName, app.showGrid, func() *scene.LineSet {
		return debug.GridLines(app.bounds)
	})
}

// syncOverlay adds or removes a single named line overlay under root.
func syncOverlay(root *scene.Node, name string, want bool, build func() *scene.LineSet) {
	existing := root.Child(name)
	switch {
	case want && existing == nil:
		lines := build()
		if lines == nil {
			return
		}
		n := scene.NewNode(scene.KindLines, name)
		n.Lines = lines
		root.AddChild(n)
	case !want && existing != nil:
		root.RemoveChild(existing)
	}
}

// render is called each frame to draw the UI.
func (app *App) render() {
	// Deferred screenshot capture, runs at the start of the frame so
	// the previous frame's content is what gets read.
	if app.screenshotRequested {
		app.screenshotRequested = false
		app.captureScreenshot()
	}

	// Process pending file dialog result (must be on main thread for SDL/Cocoa)
	if app.pendingModelPath != "" {
		path := app.pendingModelPath
		app.pendingModelPath = ""
		app.startLoad(path)
	}

	app.pollLoad()
	app.handleShortcuts()

	// Reconcile viewpoint and display modes, then sync the overlays.
	app.model.Update(app.cam)
	app.syncOverlays()

	// Main menu bar
	if imgui.BeginMainMenuBar() {
		if imgui.BeginMenu("File") {
			if imgui.MenuItemBool("Open Model...") {
				app.openFileDialog()
			}
			imgui.Separator()
			if imgui.MenuItemBool("Exit") {
				os.Exit(0)
			}
			imgui.EndMenu()
		}
		if imgui.BeginMenu("View") {
			for _, v := range viewer.Vistas {
				if imgui.MenuItemBool(v.Name) {
					app.model.SetVista(v)
				}
			}
			imgui.Separator()
			if imgui.MenuItemBool("Fit Camera") {
				app.fitCamera()
			}
			imgui.EndMenu()
		}
		imgui.EndMainMenuBar()
	}

	// Get viewport work area (excludes menu bar)
	workPosX, workPosY, workW, workH := app.backend.GetViewport()

	// Layout dimensions
	leftPanelWidth := float32(350)
	statusBarHeight := float32(30)
	contentHeight := workH - statusBarHeight

	// Window flags for fixed panels
	flags := imgui.WindowFlagsNoMove | imgui.WindowFlagsNoResize | imgui.WindowFlagsNoCollapse

	// Left panel: models, vistas, display modes, object info
	imgui.SetNextWindowPos(imgui.NewVec2(workPosX, workPosY))
	imgui.SetNextWindowSize(imgui.NewVec2(leftPanelWidth, contentHeight))
	if imgui.BeginV("Model", nil, flags) {
		app.renderSidePanel()
	}
	imgui.End()

	// Center panel: rendered model
	imgui.SetNextWindowPos(imgui.NewVec2(workPosX+leftPanelWidth, workPosY))
	imgui.SetNextWindowSize(imgui.NewVec2(workW-leftPanelWidth, contentHeight))
	if imgui.BeginV("Viewport", nil, flags) {
		app.renderViewport()
	}
	imgui.End()

	// Status bar at bottom
	imgui.SetNextWindowPos(imgui.NewVec2(workPosX, workPosY+contentHeight))
	imgui.SetNextWindowSize(imgui.NewVec2(workW, statusBarHeight))
	statusFlags := flags | imgui.WindowFlagsNoTitleBar | imgui.WindowFlagsNoScrollbar
	if imgui.BeginV("##StatusBar", nil, statusFlags) {
		app.renderStatusBar()
	}
	imgui.End()

	// Notification overlay, shows for 2 seconds
	if app.showNotifyMsg && time.Since(app.notifyTime) < 2*time.Second {
		notifyFlags := imgui.WindowFlagsNoTitleBar | imgui.WindowFlagsNoResize |
			imgui.WindowFlagsNoMove | imgui.WindowFlagsNoScrollbar |
			imgui.WindowFlagsAlwaysAutoResize | imgui.WindowFlagsNoFocusOnAppearing
		imgui.SetNextWindowPos(imgui.NewVec2(workPosX+10, workPosY+10))
		imgui.SetNextWindowBgAlpha(0.85)
		if imgui.BeginV("##Notify", nil, notifyFlags) {
			imgui.Text(app.lastNotifyMsg)
		}
		imgui.End()
	} else if app.showNotifyMsg {
		app.showNotifyMsg = false
	}
}
