// Package analysis implements the geometric analysis of a loaded scene:
// containment classification against a reference volume, recursive octree
// subdivision of a bounding region, and change-driven hit selection.
//
// Nothing here owns or mutates meshes. Meshes are read through MeshProxy
// snapshots and visual effects are delegated to collaborator interfaces.
package analysis

import (
	"github.com/Faultbox/meshlens/internal/picking"
	"github.com/Faultbox/meshlens/pkg/math"
	"github.com/Faultbox/meshlens/pkg/volume"
)

// MeshProxy is a read-only handle to a mesh owned by the rendering layer.
type MeshProxy interface {
	Name() string
	Position() math.Vec3
	WorldAABB() volume.AABB
}

// RayCaster returns the nearest mesh intersected by a ray.
type RayCaster interface {
	CastRay(r picking.Ray) (MeshProxy, bool)
}

// Highlighter applies and removes the selection highlight on a mesh.
type Highlighter interface {
	SetHighlight(m MeshProxy, color [3]float32, wireframe bool)
	ClearHighlight(m MeshProxy)
}

// Partition splits a mesh set, minus the reference mesh, into the meshes
// contained in the reference volume and the rest. The two slices are
// disjoint and together cover every candidate except the reference.
type Partition struct {
	Inside  []MeshProxy
	Outside []MeshProxy
}

// Len returns the number of classified meshes.
func (p Partition) Len() int {
	return len(p.Inside) + len(p.Outside)
}

// Names returns the inside and outside mesh names in classification order.
func (p Partition) Names() (inside, outside []string) {
	inside = make([]string, 0, len(p.Inside))
	for _, m := range p.Inside {
		inside = append(inside, m.Name())
	}
	outside = make([]string, 0, len(p.Outside))
	for _, m := range p.Outside {
		outside = append(outside, m.Name())
	}
	return inside, outside
}
