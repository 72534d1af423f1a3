// Package debug builds line geometry for wireframe overlays and captures screenshots.
package debug

import "github.com/Faultbox/meshlens/pkg/volume"

// BoxVertexCount is the number of line vertices per box (12 edges × 2).
const BoxVertexCount = 24

// AppendBoxLines appends the 12 edges of b to dst as GL_LINES vertices,
// three floats per vertex.
func AppendBoxLines(dst []float32, b volume.AABB) []float32 {
	minX, minY, minZ := b.Min.X, b.Min.Y, b.Min.Z
	maxX, maxY, maxZ := b.Max.X, b.Max.Y, b.Max.Z
	return append(dst,
		// Bottom face
		minX, minY, minZ, maxX, minY, minZ,
		maxX, minY, minZ, maxX, minY, maxZ,
		maxX, minY, maxZ, minX, minY, maxZ,
		minX, minY, maxZ, minX, minY, minZ,
		// Top face
		minX, maxY, minZ, maxX, maxY, minZ,
		maxX, maxY, minZ, maxX, maxY, maxZ,
		maxX, maxY, maxZ, minX, maxY, maxZ,
		minX, maxY, maxZ, minX, maxY, minZ,
		// Vertical edges
		minX, minY, minZ, minX, maxY, minZ,
		maxX, minY, minZ, maxX, maxY, minZ,
		maxX, minY, maxZ, maxX, maxY, maxZ,
		minX, minY, maxZ, minX, maxY, maxZ,
	)
}

// BoxLines returns the line vertices of every valid box in boxes.
func BoxLines(boxes []volume.AABB) []float32 {
	out := make([]float32, 0, len(boxes)*BoxVertexCount*3)
	for _, b := range boxes {
		if b.Valid() {
			out = AppendBoxLines(out, b)
		}
	}
	return out
}
