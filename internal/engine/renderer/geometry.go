package renderer

import (
	"github.com/Faultbox/meshlens/internal/scene"
	"github.com/Faultbox/meshlens/pkg/volume"
)

// solidStride is position + face normal, in floats.
const solidStride = 6

// meshVertices expands a mesh into unindexed triangles with flat normals.
// Degenerate triangles keep a zero normal.
func meshVertices(m *scene.Mesh) []float32 {
	n := m.TriangleCount()
	out := make([]float32, 0, n*3*solidStride)
	for i := 0; i < n; i++ {
		a, b, c, ok := m.Triangle(i)
		if !ok {
			continue
		}
		normal := b.Sub(a).Cross(c.Sub(a))
		if normal.Length() > 0 {
			normal = normal.Normalize()
		}
		for _, v := range [3]struct{ X, Y, Z float32 }{
			{a.X, a.Y, a.Z}, {b.X, b.Y, b.Z}, {c.X, c.Y, c.Z},
		} {
			out = append(out, v.X, v.Y, v.Z, normal.X, normal.Y, normal.Z)
		}
	}
	return out
}

// markerBoxes returns the boxes of the scene's octree markers.
func markerBoxes(sc *scene.Scene) []volume.AABB {
	markers := sc.Markers()
	boxes := make([]volume.AABB, len(markers))
	for i, m := range markers {
		boxes[i] = m.Box
	}
	return boxes
}
