// glbshow is a minimal windowed presenter for glTF and GLB models.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/glbview/internal/assets"
	"github.com/Faultbox/glbview/internal/config"
	"github.com/Faultbox/glbview/internal/engine/camera"
	"github.com/Faultbox/glbview/internal/engine/debug"
	"github.com/Faultbox/glbview/internal/engine/input"
	"github.com/Faultbox/glbview/internal/engine/renderer"
	"github.com/Faultbox/glbview/internal/engine/scene"
	"github.com/Faultbox/glbview/internal/engine/window"
	"github.com/Faultbox/glbview/internal/logger"
	"github.com/Faultbox/glbview/internal/viewer"
)

// Scene graph names of the overlay line nodes.
const (
	boundsNodeName = "bounds_overlay"
	gridNodeName   = "ground_grid"
)

func main() {
	config.ParseFlags()

	if flag.Arg(0) == "" {
		fmt.Fprintln(os.Stderr, "Usage: glbshow [flags] <model.glb|model.gltf>")
		os.Exit(1)
	}

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

	show, err := NewShow(cfg)
	if err != nil {
		logger.Error("failed to start presenter", zap.Error(err))
		os.Exit(1)
	}
	defer show.Close()

	if err := show.Load(flag.Arg(0)); err != nil {
		logger.Error("failed to load model", zap.Error(err))
		os.Exit(1)
	}

	fmt.Println("Keys: 1-7 vistas | W wireframe | T transparency | S shading | B bounds | G grid | F fit | F12 screenshot | ESC quit")

	show.Run()
	logger.Info("presenter closed")
}

// Show owns the window, the renderer and the presentation state.
type Show struct {
	cfg     *config.Config
	log     *zap.Logger
	window  *window.Window
	input   *input.Input
	rend    *renderer.Renderer
	manager *assets.Manager
	model   *viewer.Model
	cam     *camera.OrbitCamera
	capture *debug.ScreenshotCapture

	bounds              scene.AABB // object-space bounds captured at load
	showBounds          bool
	showGrid            bool
	screenshotRequested bool
	running             bool
}

// NewShow creates the window, OpenGL context and renderer.
func NewShow(cfg *config.Config) (*Show, error) {
	s := &Show{
		cfg:     cfg,
		log:     logger.Named("glbshow"),
		manager: assets.NewManager(cfg.Data.ModelPaths...),
		model:   viewer.NewModel(logger.Named("viewer")),
		cam:     camera.NewOrbitCamera(),
		capture: debug.NewScreenshotCapture(cfg.Data.ScreenshotDir, "glbshow"),
	}

	var err error
	s.window, err = window.New(window.Config{
		Title:      "glbshow",
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("creating window: %w", err)
	}

	if err := renderer.Init(logger.Named("gl")); err != nil {
		s.window.Close()
		return nil, fmt.Errorf("initializing OpenGL: %w", err)
	}

	width, height := s.window.DrawableSize()
	s.rend, err = renderer.New(int32(width), int32(height), logger.Named("renderer"))
	if err != nil {
		s.window.Close()
		return nil, fmt.Errorf("creating renderer: %w", err)
	}
	s.rend.SetBackground(cfg.Viewer.Background[0], cfg.Viewer.Background[1], cfg.Viewer.Background[2])
	s.rend.SetFOV(cfg.Viewer.FOVDegrees)

	s.input = input.New()

	v, ok := viewer.VistaByName(cfg.Viewer.Vista)
	if !ok {
		s.log.Warn("unknown vista in config, using frontal",
			zap.String("vista", cfg.Viewer.Vista))
		v = viewer.VistaFrontal
	}
	s.model.SetVista(v)
	s.model.SetWireframe(cfg.Viewer.Wireframe)
	s.model.SetTransparent(cfg.Viewer.Transparent)
	s.model.SetShaded(cfg.Viewer.Shaded)

	return s, nil
}

// Load loads and presents the given model file.
func (s *Show) Load(path string) error {
	obj, err := s.manager.Load(path)
	if err != nil {
		return err
	}

	s.model.SetObject(obj)
	// Re-request the current vista so it applies to the new object.
	s.model.SetVista(s.model.Vista())
	s.bounds = obj.Bounds()
	if s.cfg.Viewer.AutoFit {
		s.cam.FitToBounds(s.bounds)
	}

	s.window.SetTitle(fmt.Sprintf("glbshow - %s", filepath.Base(path)))
	s.log.Info("model loaded",
		zap.String("path", path),
		zap.Int("meshes", obj.MeshCount()),
		zap.Int("triangles", obj.TriangleCount()))
	return nil
}

// Run starts the main presentation loop.
func (s *Show) Run() {
	s.running = true

	// Timing
	frameCount := 0
	fpsTimer := time.Now()

	var frameDur time.Duration
	if s.cfg.Window.FPSLimit > 0 {
		frameDur = time.Second / time.Duration(s.cfg.Window.FPSLimit)
	}

	s.log.Info("starting presentation loop")

	for s.running {
		frameStart := time.Now()

		// 1. Process input
		if s.input.Update() {
			s.running = false
			break
		}
		s.handleEvents()

		// 2. Reconcile viewpoint and display modes
		s.model.Update(s.cam)
		s.syncOverlays()

		// 3. Render offscreen, then present to the window
		s.rend.Render(s.model.Object(), s.cam)
		if s.screenshotRequested {
			s.screenshotRequested = false
			s.captureScreenshot()
		}
		width, height := s.window.DrawableSize()
		s.rend.Present(int32(width), int32(height))

		// 4. Present (swap buffers)
		s.window.SwapBuffers()

		// FPS counter
		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			s.log.Debug("fps", zap.Int("count", frameCount))
			frameCount = 0
			fpsTimer = time.Now()
		}

		if frameDur > 0 {
			if remaining := frameDur - time.Since(frameStart); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
}

// Close cleans up resources.
func (s *Show) Close() {
	if s.rend != nil {
		s.rend.Destroy()
		s.rend = nil
	}
	if s.window != nil {
		s.window.Close()
		s.window = nil
	}
}

// vistaScancodes maps the number keys to the stock vistas in order.
var vistaScancodes = []sdl.Scancode{
	sdl.SCANCODE_1, sdl.SCANCODE_2, sdl.SCANCODE_3, sdl.SCANCODE_4,
	sdl.SCANCODE_5, sdl.SCANCODE_6, sdl.SCANCODE_7,
}

// handleEvents processes the events polled this frame.
func (s *Show) handleEvents() {
	for _, e := range s.input.Events() {
		switch e.Type {
		case input.EventWindowResize:
			width, height := s.window.DrawableSize()
			s.rend.Resize(int32(width), int32(height))

		case input.EventKeyDown:
			s.handleKey(e.Key)

		case input.EventMouseMove:
			if e.Buttons&sdl.ButtonLMask() != 0 {
				s.cam.HandleDrag(float32(e.DeltaX), float32(e.DeltaY))
			}
			if e.Buttons&(sdl.ButtonRMask()|sdl.ButtonMMask()) != 0 {
				s.cam.HandlePan(float32(e.DeltaX), float32(e.DeltaY))
			}

		case input.EventMouseWheel:
			s.cam.HandleZoom(e.WheelY)
		}
	}
}

// handleKey dispatches a single key press.
func (s *Show) handleKey(key sdl.Scancode) {
	switch key {
	case sdl.SCANCODE_ESCAPE, sdl.SCANCODE_Q:
		s.running = false
	case sdl.SCANCODE_W:
		s.model.ToggleWireframe()
	case sdl.SCANCODE_T:
		s.model.ToggleTransparent()
	case sdl.SCANCODE_S:
		s.model.ToggleShaded()
	case sdl.SCANCODE_B:
		s.showBounds = !s.showBounds
	case sdl.SCANCODE_G:
		s.showGrid = !s.showGrid
	case sdl.SCANCODE_F:
		if s.bounds.Valid() {
			s.cam.FitToBounds(s.bounds)
		}
	case sdl.SCANCODE_F12:
		s.screenshotRequested = true
	default:
		for i, sc := range vistaScancodes {
			if key == sc {
				s.model.SetVista(viewer.Vistas[i])
				return
			}
		}
	}
}

// syncOverlays attaches or removes the bounding box and ground grid
// line nodes to match the current toggles.
func (s *Show) syncOverlays() {
	obj := s.model.Object()
	if obj == nil || obj.Root == nil {
		return
	}
	syncOverlay(obj.Root, boundsNodeName, s.showBounds, func() *scene.LineSet {
		return debug.BoundsLines(s.bounds, s.bounds.MaxExtent()*0.005)
	})
	syncOverlay(obj.Root, gridNodeName, s.showGrid, func() *scene.LineSet {
		return debug.GridLines(s.bounds)
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

// captureScreenshot saves the offscreen frame that was just rendered.
func (s *Show) captureScreenshot() {
	pixels := s.rend.ReadPixels()
	width, height := s.rend.Size()
	path, err := s.capture.CaptureFromPixels(pixels, int(width), int(height))
	if err != nil {
		s.log.Error("screenshot failed", zap.Error(err))
		return
	}
	s.log.Info("screenshot saved", zap.String("path", path))
}
