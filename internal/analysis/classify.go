package analysis

import "github.com/Faultbox/meshlens/pkg/volume"

// Classify partitions candidates against reference. A candidate is inside
// when its box lies within reference on every axis, touching faces included;
// partial overlap is outside. exclude (usually the reference mesh) is left
// out of both sets and may be nil. Candidates with invalid bounds, and every
// candidate when reference itself is invalid, land in outside.
//
// Iteration follows candidate order, so results are deterministic.
func Classify(reference volume.AABB, exclude MeshProxy, candidates []MeshProxy) Partition {
	var p Partition
	for _, m := range candidates {
		if m == nil || (exclude != nil && m == exclude) {
			continue
		}
		if reference.Contains(m.WorldAABB()) {
			p.Inside = append(p.Inside, m)
		} else {
			p.Outside = append(p.Outside, m)
		}
	}
	return p
}

// ClassifyMesh classifies candidates against reference's own bounds.
func ClassifyMesh(reference MeshProxy, candidates []MeshProxy) Partition {
	return Classify(reference.WorldAABB(), reference, candidates)
}
