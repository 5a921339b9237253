// Screenshot capture and notification helpers.
package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"
)

// captureScreenshot captures the current frame to a PNG file.
func (app *App) captureScreenshot() {
	// Get actual framebuffer size (handles HiDPI/Retina correctly)
	// DisplaySize is logical pixels, DisplayFramebufferScale is the multiplier
	io := imgui.CurrentIO()
	displaySize := io.DisplaySize()
	fbScale := io.DisplayFramebufferScale()
	width := int(displaySize.X * fbScale.X)
	height := int(displaySize.Y * fbScale.Y)

	if width <= 0 || height <= 0 {
		app.showNotification("Screenshot failed: invalid viewport")
		return
	}

	// Read from the front buffer (what's currently displayed) since we
	// capture at frame start
	gl.ReadBuffer(gl.FRONT)
	pixels := make([]byte, width*height*4) // RGBA
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.ReadBuffer(gl.BACK) // Restore default

	path, err := app.capture.CaptureFromPixels(pixels, width, height)
	if err != nil {
		app.log.Error("screenshot failed", zap.Error(err))
		app.showNotification(fmt.Sprintf("Screenshot failed: %v", err))
		return
	}

	app.log.Info("screenshot saved", zap.String("path", path))
	app.showNotification("Saved: " + filepath.Base(path))
}

// showNotification displays a brief overlay notification message.
func (app *App) showNotification(msg string) {
	app.lastNotifyMsg = msg
	app.showNotifyMsg = true
	app.notifyTime = time.Now()
}
