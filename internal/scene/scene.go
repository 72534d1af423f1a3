package scene

import (
	"errors"
	"sync"

	"github.com/chewxy/math32"

	"github.com/Faultbox/meshlens/internal/analysis"
	"github.com/Faultbox/meshlens/internal/picking"
	"github.com/Faultbox/meshlens/pkg/volume"
)

var (
	_ analysis.MeshProxy   = (*Mesh)(nil)
	_ analysis.RayCaster   = (*Scene)(nil)
	_ analysis.Highlighter = (*Scene)(nil)
)

// ErrStaleGeneration is returned when a batch was produced for a scene
// generation that has since been reset.
var ErrStaleGeneration = errors.New("scene: batch belongs to a reset scene")

// Batch is the analyzed output of one load, ready to be added to the scene.
type Batch struct {
	Generation uint64
	Source     string
	Meshes     []*Mesh
	Bounds     volume.AABB
	HasBounds  bool
	Markers    []analysis.Marker
}

// Stats is a snapshot of scene counters for display.
type Stats struct {
	Meshes  int
	Markers int
	Loads   int
}

// Scene is the ordered mesh set plus visual markers. Mesh order is the
// commit order and is stable, so iteration is deterministic.
//
// Structural changes (Commit, Reset) take the scene lock so loader goroutines
// can read Generation concurrently. Highlight state is only touched from
// the render loop.
type Scene struct {
	mu         sync.RWMutex
	generation uint64
	meshes     []*Mesh
	markers    []analysis.Marker
	bounds     []volume.AABB
}

// New creates an empty scene.
func New() *Scene {
	return &Scene{}
}

// Generation returns the current scene generation. It increases on Reset.
func (s *Scene) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// Reset removes all meshes, markers and bounds and starts a new generation.
func (s *Scene) Reset() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.meshes = nil
	s.markers = nil
	s.bounds = nil
	return s.generation
}

// Commit appends a batch. Batches from an older generation are rejected
// with ErrStaleGeneration and leave the scene untouched.
func (s *Scene) Commit(b Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b.Generation != s.generation {
		return ErrStaleGeneration
	}
	for _, m := range b.Meshes {
		if m.source == "" {
			m.source = b.Source
		}
	}
	s.meshes = append(s.meshes, b.Meshes...)
	s.markers = append(s.markers, b.Markers...)
	if b.HasBounds {
		s.bounds = append(s.bounds, b.Bounds)
	}
	return nil
}

// Meshes returns a snapshot of the mesh set.
func (s *Scene) Meshes() []*Mesh {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Mesh, len(s.meshes))
	copy(out, s.meshes)
	return out
}

// Proxies returns the mesh set as analysis proxies.
func (s *Scene) Proxies() []analysis.MeshProxy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]analysis.MeshProxy, len(s.meshes))
	for i, m := range s.meshes {
		out[i] = m
	}
	return out
}

// Markers returns a snapshot of the octree markers.
func (s *Scene) Markers() []analysis.Marker {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]analysis.Marker, len(s.markers))
	copy(out, s.markers)
	return out
}

// Bounds returns the cumulative box of every committed load, in order.
func (s *Scene) Bounds() []volume.AABB {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]volume.AABB, len(s.bounds))
	copy(out, s.bounds)
	return out
}

// FindMesh returns the first mesh with the given name.
func (s *Scene) FindMesh(name string) (*Mesh, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.meshes {
		if m.name == name {
			return m, true
		}
	}
	return nil, false
}

// Stats returns the current counters.
func (s *Scene) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{Meshes: len(s.meshes), Markers: len(s.markers), Loads: len(s.bounds)}
}

// CastRay returns the nearest mesh hit by r. Equal distances resolve to
// the mesh committed first. Markers are never hit.
func (s *Scene) CastRay(r picking.Ray) (analysis.MeshProxy, bool) {
	if !r.Valid() {
		return nil, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var nearest *Mesh
	best := math32.Inf(1)
	for _, m := range s.meshes {
		t, ok := r.IntersectAABB(m.bounds)
		if !ok {
			continue
		}
		// Boxes entered beyond the best hit cannot beat it
		if t > best && !m.bounds.ContainsPoint(r.Origin) {
			continue
		}
		if t, ok := m.Intersect(r); ok && t < best {
			best = t
			nearest = m
		}
	}
	if nearest == nil {
		return nil, false
	}
	return nearest, true
}

// SetHighlight marks m as highlighted.
func (s *Scene) SetHighlight(m analysis.MeshProxy, color [3]float32, wireframe bool) {
	if mesh, ok := m.(*Mesh); ok {
		mesh.highlight = Highlight{Enabled: true, Color: color, Wireframe: wireframe}
	}
}

// ClearHighlight restores m's normal material.
func (s *Scene) ClearHighlight(m analysis.MeshProxy) {
	if mesh, ok := m.(*Mesh); ok {
		mesh.highlight = Highlight{}
	}
}
