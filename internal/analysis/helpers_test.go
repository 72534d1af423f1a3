package analysis

import (
	"github.com/Faultbox/meshlens/internal/picking"
	"github.com/Faultbox/meshlens/pkg/math"
	"github.com/Faultbox/meshlens/pkg/volume"
)

type testMesh struct {
	name string
	box  volume.AABB
}

func (m *testMesh) Name() string           { return m.name }
func (m *testMesh) Position() math.Vec3    { return m.box.Center() }
func (m *testMesh) WorldAABB() volume.AABB { return m.box }

func mesh(name string, minX, minY, minZ, maxX, maxY, maxZ float32) *testMesh {
	return &testMesh{name: name, box: volume.AABB{
		Min: math.Vec3{X: minX, Y: minY, Z: minZ},
		Max: math.Vec3{X: maxX, Y: maxY, Z: maxZ},
	}}
}

func proxies(ms ...*testMesh) []MeshProxy {
	out := make([]MeshProxy, len(ms))
	for i, m := range ms {
		out[i] = m
	}
	return out
}

// scriptedCaster returns a fixed sequence of hits, one per call.
type scriptedCaster struct {
	hits  []MeshProxy
	calls int
}

func (c *scriptedCaster) CastRay(picking.Ray) (MeshProxy, bool) {
	if c.calls >= len(c.hits) {
		return nil, false
	}
	h := c.hits[c.calls]
	c.calls++
	return h, h != nil
}

type highlightCall struct {
	name  string
	set   bool
	color [3]float32
}

type recordingHighlighter struct {
	calls []highlightCall
}

func (h *recordingHighlighter) SetHighlight(m MeshProxy, color [3]float32, wireframe bool) {
	h.calls = append(h.calls, highlightCall{name: m.Name(), set: true, color: color})
}

func (h *recordingHighlighter) ClearHighlight(m MeshProxy) {
	h.calls = append(h.calls, highlightCall{name: m.Name()})
}
