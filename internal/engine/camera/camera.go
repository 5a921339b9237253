// Package camera provides the orbit camera the viewer looks through.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/glbview/internal/engine/scene"
	"github.com/Faultbox/glbview/pkg/math"
)

// OrbitCamera orbits around a center point.
type OrbitCamera struct {
	// Center point to orbit around
	Center math.Vec3

	// Spherical coordinates
	Distance  float32 // Distance from center
	RotationX float32 // Pitch (vertical angle, radians)
	RotationY float32 // Yaw (horizontal angle, radians)

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	DragSensitivity float32
	PanSensitivity  float32
	ZoomSensitivity float32
}

// NewOrbitCamera creates a new orbit camera with default settings.
// The defaults suit a meter-scale model until FitToBounds rescales
// them to the loaded asset.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:        5.0,
		RotationX:       0.0,
		RotationY:       0.0,
		MinDistance:     0.1,
		MaxDistance:     1000.0,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.01,
		PanSensitivity:  0.002,
		ZoomSensitivity: 0.1,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	x := c.Distance * math32.Cos(c.RotationX) * math32.Sin(c.RotationY)
	y := c.Distance * math32.Sin(c.RotationX)
	z := c.Distance * math32.Cos(c.RotationX) * math32.Cos(c.RotationY)

	return math.Vec3{
		X: c.Center.X + x,
		Y: c.Center.Y + y,
		Z: c.Center.Z + z,
	}
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	up := math.Vec3{Y: 1}
	return math.LookAt(c.Position(), c.Center, up)
}

// HandleDrag updates rotation based on mouse drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.RotationY -= deltaX * c.DragSensitivity
	c.RotationX += deltaY * c.DragSensitivity

	// Clamp pitch
	if c.RotationX < c.MinPitch {
		c.RotationX = c.MinPitch
	}
	if c.RotationX > c.MaxPitch {
		c.RotationX = c.MaxPitch
	}
}

// HandlePan shifts the center point in the view plane, so a drag moves
// the model with the cursor regardless of camera orientation.
func (c *OrbitCamera) HandlePan(deltaX, deltaY float32) {
	speed := c.Distance * c.PanSensitivity

	forward := c.Center.Sub(c.Position()).Normalize()
	right := forward.Cross(math.Vec3{Y: 1}).Normalize()
	up := right.Cross(forward)

	c.Center = c.Center.
		Add(right.Scale(-deltaX * speed)).
		Add(up.Scale(deltaY * speed))
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	if c.Distance < c.MinDistance {
		c.Distance = c.MinDistance
	}
	if c.Distance > c.MaxDistance {
		c.Distance = c.MaxDistance
	}
}

// FitToBounds frames the given bounding box and rescales the zoom
// range to the model size, so tiny and huge assets are equally
// navigable. Invalid bounds leave the camera where it is.
func (c *OrbitCamera) FitToBounds(b scene.AABB) {
	if !b.Valid() {
		return
	}

	c.Center = b.Center()

	ext := b.MaxExtent()
	if ext <= 0 {
		ext = 1
	}
	c.Distance = ext * 1.8
	c.MinDistance = ext * 0.05
	c.MaxDistance = ext * 20

	c.RotationX = 0.35 // Look slightly down
	c.RotationY = 0.0
}
