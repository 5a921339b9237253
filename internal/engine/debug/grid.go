// Package debug provides debug visualization utilities.
package debug

import (
	"github.com/Faultbox/glbview/internal/engine/scene"
)

// GridColor is the line color used for the reference ground grid.
var GridColor = [4]float32{0.45, 0.45, 0.45, 1.0}

// gridDivisions is the number of grid cells on each side of the center.
const gridDivisions = 8

// GridLines builds a reference ground grid on the XZ plane directly
// beneath the given bounds. The grid is centered under the bounds and
// extends past them on every side, so the model always stands on it.
// Returns nil for an invalid box.
func GridLines(b scene.AABB) *scene.LineSet {
	if !b.Valid() {
		return nil
	}

	center := b.Center()
	half := b.MaxExtent()
	if half <= 0 {
		half = 1
	}
	step := half / gridDivisions
	y := b.Min.Y

	var positions []float32

	// Lines running along Z
	for i := -gridDivisions; i <= gridDivisions; i++ {
		x := center.X + float32(i)*step
		positions = append(positions,
			x, y, center.Z-half,
			x, y, center.Z+half,
		)
	}

	// Lines running along X
	for i := -gridDivisions; i <= gridDivisions; i++ {
		z := center.Z + float32(i)*step
		positions = append(positions,
			center.X-half, y, z,
			center.X+half, y, z,
		)
	}

	return &scene.LineSet{
		Positions: positions,
		Color:     GridColor,
	}
}
