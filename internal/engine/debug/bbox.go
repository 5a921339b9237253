// Package debug provides debug visualization utilities.
package debug

import (
	"github.com/Faultbox/glbview/internal/engine/scene"
)

// BoundsColor is the line color used for bounding box overlays.
var BoundsColor = [4]float32{1.0, 0.8, 0.2, 1.0}

// BoundsLines builds the 12 wireframe edges of b as a line set that can
// be attached to a scene graph. padding expands the box by the given
// amount on all sides. Returns nil for an invalid box.
func BoundsLines(b scene.AABB, padding float32) *scene.LineSet {
	if !b.Valid() {
		return nil
	}

	minX := b.Min.X - padding
	minY := b.Min.Y - padding
	minZ := b.Min.Z - padding
	maxX := b.Max.X + padding
	maxY := b.Max.Y + padding
	maxZ := b.Max.Z + padding

	return &scene.LineSet{
		Positions: boxEdgeVertices(minX, minY, minZ, maxX, maxY, maxZ),
		Color:     BoundsColor,
	}
}

// boxEdgeVertices creates line vertices for a wireframe box.
// Returns 24 vertices (12 edges × 2 endpoints), format: [x, y, z] per vertex.
func boxEdgeVertices(minX, minY, minZ, maxX, maxY, maxZ float32) []float32 {
	return []float32{
		// Bottom face (4 edges)
		minX, minY, minZ, maxX, minY, minZ,
		maxX, minY, minZ, maxX, minY, maxZ,
		maxX, minY, maxZ, minX, minY, maxZ,
		minX, minY, maxZ, minX, minY, minZ,
		// Top face (4 edges)
		minX, maxY, minZ, maxX, maxY, minZ,
		maxX, maxY, minZ, maxX, maxY, maxZ,
		maxX, maxY, maxZ, minX, maxY, maxZ,
		minX, maxY, maxZ, minX, maxY, minZ,
		// Vertical edges (4 edges)
		minX, minY, minZ, minX, maxY, minZ,
		maxX, minY, minZ, maxX, maxY, minZ,
		maxX, minY, maxZ, maxX, maxY, maxZ,
		minX, minY, maxZ, minX, maxY, maxZ,
	}
}
