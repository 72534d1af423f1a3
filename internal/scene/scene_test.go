package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/meshlens/internal/analysis"
	"github.com/Faultbox/meshlens/internal/picking"
	"github.com/Faultbox/meshlens/pkg/math"
	"github.com/Faultbox/meshlens/pkg/volume"
)

func vec(x, y, z float32) math.Vec3 { return math.Vec3{X: x, Y: y, Z: z} }

// cube builds a closed axis-aligned box mesh from lo to hi.
func cube(name string, lo, hi math.Vec3) *Mesh {
	v := []math.Vec3{
		{X: lo.X, Y: lo.Y, Z: lo.Z}, {X: hi.X, Y: lo.Y, Z: lo.Z},
		{X: hi.X, Y: hi.Y, Z: lo.Z}, {X: lo.X, Y: hi.Y, Z: lo.Z},
		{X: lo.X, Y: lo.Y, Z: hi.Z}, {X: hi.X, Y: lo.Y, Z: hi.Z},
		{X: hi.X, Y: hi.Y, Z: hi.Z}, {X: lo.X, Y: hi.Y, Z: hi.Z},
	}
	idx := []uint32{
		0, 1, 2, 0, 2, 3, // -Z
		4, 6, 5, 4, 7, 6, // +Z
		0, 4, 5, 0, 5, 1, // -Y
		3, 2, 6, 3, 6, 7, // +Y
		0, 3, 7, 0, 7, 4, // -X
		1, 5, 6, 1, 6, 2, // +X
	}
	return NewMesh(name, lo.Add(hi).Scale(0.5), v, idx)
}

func TestNewMeshBounds(t *testing.T) {
	m := cube("box", vec(-1, 0, 2), vec(3, 4, 5))
	assert.Equal(t, volume.AABB{Min: vec(-1, 0, 2), Max: vec(3, 4, 5)}, m.WorldAABB())
	assert.Equal(t, 12, m.TriangleCount())
	assert.Equal(t, vec(1, 2, 3.5), m.Position())
}

func TestNewMeshWithoutVertices(t *testing.T) {
	m := NewMesh("empty", math.Vec3{}, nil, nil)
	assert.False(t, m.WorldAABB().Valid())

	b, err := volume.Cumulative([]*Mesh{m, cube("box", vec(0, 0, 0), vec(1, 1, 1))})
	require.NoError(t, err)
	assert.Equal(t, volume.AABB{Max: vec(1, 1, 1)}, b)
}

func TestCastRayNearest(t *testing.T) {
	s := New()
	far := cube("far", vec(-1, -1, 10), vec(1, 1, 12))
	near := cube("near", vec(-1, -1, 2), vec(1, 1, 4))
	side := cube("side", vec(5, 5, 0), vec(6, 6, 1))
	require.NoError(t, s.Commit(Batch{Meshes: []*Mesh{far, near, side}}))

	hit, ok := s.CastRay(picking.NewRay(vec(0, 0, -5), vec(0, 0, 1)))
	require.True(t, ok)
	assert.Same(t, near, hit)

	_, ok = s.CastRay(picking.NewRay(vec(0, 0, -5), vec(0, 0, -1)))
	assert.False(t, ok)
}

func TestCastRayFromInsideMesh(t *testing.T) {
	s := New()
	room := cube("room", vec(-10, -10, -10), vec(10, 10, 10))
	crate := cube("crate", vec(-1, -1, 3), vec(1, 1, 5))
	require.NoError(t, s.Commit(Batch{Meshes: []*Mesh{room, crate}}))

	hit, ok := s.CastRay(picking.NewRay(vec(0, 0, 0), vec(0, 0, 1)))
	require.True(t, ok)
	assert.Same(t, crate, hit)
}

func TestCastRayTieGoesToFirst(t *testing.T) {
	s := New()
	a := cube("a", vec(-1, -1, 2), vec(1, 1, 4))
	b := cube("b", vec(-1, -1, 2), vec(1, 1, 4))
	require.NoError(t, s.Commit(Batch{Meshes: []*Mesh{a, b}}))

	hit, ok := s.CastRay(picking.NewRay(vec(0, 0, -5), vec(0, 0, 1)))
	require.True(t, ok)
	assert.Same(t, a, hit)
}

func TestCastRayIgnoresMarkers(t *testing.T) {
	s := New()
	require.NoError(t, s.Commit(Batch{
		Markers: []analysis.Marker{{Box: volume.AABB{Min: vec(-5, -5, -5), Max: vec(5, 5, 5)}}},
	}))

	_, ok := s.CastRay(picking.NewRay(vec(0, 0, -10), vec(0, 0, 1)))
	assert.False(t, ok)
}

func TestCommitRejectsStaleGeneration(t *testing.T) {
	s := New()
	gen := s.Generation()
	s.Reset()

	err := s.Commit(Batch{
		Generation: gen,
		Meshes:     []*Mesh{cube("old", vec(0, 0, 0), vec(1, 1, 1))},
		HasBounds:  true,
	})
	require.ErrorIs(t, err, ErrStaleGeneration)
	assert.Equal(t, Stats{}, s.Stats())
}

func TestCommitAndReset(t *testing.T) {
	s := New()
	m := cube("m", vec(0, 0, 0), vec(2, 2, 2))
	b := Batch{
		Generation: s.Generation(),
		Source:     "scene.obj",
		Meshes:     []*Mesh{m},
		Bounds:     m.WorldAABB(),
		HasBounds:  true,
		Markers:    make([]analysis.Marker, 8),
	}
	require.NoError(t, s.Commit(b))

	assert.Equal(t, Stats{Meshes: 1, Markers: 8, Loads: 1}, s.Stats())
	assert.Equal(t, "scene.obj", m.Source())
	assert.Equal(t, []volume.AABB{m.WorldAABB()}, s.Bounds())

	found, ok := s.FindMesh("m")
	require.True(t, ok)
	assert.Same(t, m, found)

	before := s.Generation()
	after := s.Reset()
	assert.Greater(t, after, before)
	assert.Equal(t, Stats{}, s.Stats())
	assert.Empty(t, s.Proxies())
}

func TestHighlight(t *testing.T) {
	s := New()
	m := cube("m", vec(0, 0, 0), vec(1, 1, 1))

	s.SetHighlight(m, [3]float32{1, 0, 0}, true)
	assert.Equal(t, Highlight{Enabled: true, Color: [3]float32{1, 0, 0}, Wireframe: true}, m.Highlight())

	s.ClearHighlight(m)
	assert.Equal(t, Highlight{}, m.Highlight())
}
