// Package scene holds the meshes loaded into the viewer, the octree markers
// emitted for them and the per-mesh highlight state read by the renderer.
package scene

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/meshlens/internal/picking"
	"github.com/Faultbox/meshlens/pkg/math"
	"github.com/Faultbox/meshlens/pkg/volume"
)

// Highlight is the selection material applied to a mesh.
type Highlight struct {
	Enabled   bool
	Color     [3]float32
	Wireframe bool
}

// Mesh is a triangle mesh baked to world space.
type Mesh struct {
	name     string
	source   string
	position math.Vec3
	vertices []math.Vec3
	indices  []uint32
	bounds   volume.AABB

	highlight Highlight
}

// NewMesh creates a mesh from world-space vertices. indices lists triangles;
// when empty, vertices are read as consecutive triangles. A mesh without
// vertices gets inverted bounds and is skipped by bounds accumulation.
func NewMesh(name string, position math.Vec3, vertices []math.Vec3, indices []uint32) *Mesh {
	m := &Mesh{
		name:     name,
		position: position,
		vertices: vertices,
		indices:  indices,
		bounds: volume.AABB{
			Min: math.Splat(math32.Inf(1)),
			Max: math.Splat(math32.Inf(-1)),
		},
	}
	for _, v := range vertices {
		m.bounds = m.bounds.ExtendPoint(v)
	}
	return m
}

// Name returns the mesh name.
func (m *Mesh) Name() string { return m.name }

// Source returns the file the mesh was loaded from.
func (m *Mesh) Source() string { return m.source }

// Position returns the mesh's world position.
func (m *Mesh) Position() math.Vec3 { return m.position }

// WorldAABB returns the world-space bounding box.
func (m *Mesh) WorldAABB() volume.AABB { return m.bounds }

// Vertices returns the world-space vertex positions.
func (m *Mesh) Vertices() []math.Vec3 { return m.vertices }

// Indices returns the triangle indices.
func (m *Mesh) Indices() []uint32 { return m.indices }

// Highlight returns the current highlight state.
func (m *Mesh) Highlight() Highlight { return m.highlight }

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	if len(m.indices) > 0 {
		return len(m.indices) / 3
	}
	return len(m.vertices) / 3
}

// Triangle returns the corners of triangle i.
func (m *Mesh) Triangle(i int) (a, b, c math.Vec3, ok bool) {
	var ia, ib, ic int
	if len(m.indices) > 0 {
		ia, ib, ic = int(m.indices[3*i]), int(m.indices[3*i+1]), int(m.indices[3*i+2])
	} else {
		ia, ib, ic = 3*i, 3*i+1, 3*i+2
	}
	n := len(m.vertices)
	if ia >= n || ib >= n || ic >= n {
		return a, b, c, false
	}
	return m.vertices[ia], m.vertices[ib], m.vertices[ic], true
}

// Intersect returns the distance to the nearest triangle hit by r. Meshes
// without triangles are hit through their bounds.
func (m *Mesh) Intersect(r picking.Ray) (float32, bool) {
	if !m.bounds.Valid() {
		return 0, false
	}
	if _, ok := r.IntersectAABB(m.bounds); !ok {
		return 0, false
	}

	count := m.TriangleCount()
	if count == 0 {
		return r.IntersectAABB(m.bounds)
	}

	best := math32.Inf(1)
	hit := false
	for i := 0; i < count; i++ {
		a, b, c, ok := m.Triangle(i)
		if !ok {
			continue
		}
		if t, ok := r.IntersectTriangle(a, b, c); ok && t < best {
			best = t
			hit = true
		}
	}
	return best, hit
}
