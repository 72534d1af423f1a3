// Package volume provides axis-aligned bounding boxes and the operations the
// scene analysis builds on: validity checks, containment, octant splits and
// cumulative bounds over mesh sets.
package volume

import (
	"fmt"

	"github.com/Faultbox/meshlens/pkg/math"
)

// AABB is an axis-aligned bounding box. A valid box has Min <= Max on every
// axis and only finite coordinates.
type AABB struct {
	Min math.Vec3
	Max math.Vec3
}

// New creates an AABB from two opposite corners, ordering each axis.
func New(a, b math.Vec3) AABB {
	return AABB{Min: a.Min(b), Max: a.Max(b)}
}

// Empty is the sentinel returned when there is nothing to bound:
// a zero-volume box at the origin.
func Empty() AABB {
	return AABB{}
}

// Valid reports whether the box is finite and not inverted.
func (b AABB) Valid() bool {
	if !b.Min.IsFinite() || !b.Max.IsFinite() {
		return false
	}
	return b.Min.X <= b.Max.X && b.Min.Y <= b.Max.Y && b.Min.Z <= b.Max.Z
}

// Size returns the edge lengths.
func (b AABB) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}

// HalfExtents returns half the edge lengths.
func (b AABB) HalfExtents() math.Vec3 {
	return b.Size().Scale(0.5)
}

// Center returns the midpoint. It is finite for every valid box, even when
// Size overflows.
func (b AABB) Center() math.Vec3 {
	return b.Min.Scale(0.5).Add(b.Max.Scale(0.5))
}

// Volume returns the enclosed volume.
func (b AABB) Volume() float32 {
	s := b.Size()
	return s.X * s.Y * s.Z
}

// Contains reports whether other lies entirely inside b. Touching faces
// count as contained. Invalid boxes never contain or are contained.
func (b AABB) Contains(other AABB) bool {
	if !b.Valid() || !other.Valid() {
		return false
	}
	return other.Min.X >= b.Min.X && other.Max.X <= b.Max.X &&
		other.Min.Y >= b.Min.Y && other.Max.Y <= b.Max.Y &&
		other.Min.Z >= b.Min.Z && other.Max.Z <= b.Max.Z
}

// ContainsPoint reports whether p lies inside or on the box.
func (b AABB) ContainsPoint(p math.Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Union returns the smallest box enclosing both.
func (b AABB) Union(other AABB) AABB {
	return AABB{Min: b.Min.Min(other.Min), Max: b.Max.Max(other.Max)}
}

// ExtendPoint returns the box grown to include p.
func (b AABB) ExtendPoint(p math.Vec3) AABB {
	return AABB{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// Octants splits the box along all three midplanes. The order is fixed:
//
//	0 [min, mid]
//	1 +X
//	2 +Y
//	3 +Z
//	4 [mid, max]
//	5 +X+Y
//	6 +X+Z
//	7 +Y+Z
func (b AABB) Octants() [8]AABB {
	lo, hi := b.Min, b.Max
	mid := b.Center()

	return [8]AABB{
		{Min: lo, Max: mid},
		{Min: math.Vec3{X: mid.X, Y: lo.Y, Z: lo.Z}, Max: math.Vec3{X: hi.X, Y: mid.Y, Z: mid.Z}},
		{Min: math.Vec3{X: lo.X, Y: mid.Y, Z: lo.Z}, Max: math.Vec3{X: mid.X, Y: hi.Y, Z: mid.Z}},
		{Min: math.Vec3{X: lo.X, Y: lo.Y, Z: mid.Z}, Max: math.Vec3{X: mid.X, Y: mid.Y, Z: hi.Z}},
		{Min: mid, Max: hi},
		{Min: math.Vec3{X: mid.X, Y: mid.Y, Z: lo.Z}, Max: math.Vec3{X: hi.X, Y: hi.Y, Z: mid.Z}},
		{Min: math.Vec3{X: mid.X, Y: lo.Y, Z: mid.Z}, Max: math.Vec3{X: hi.X, Y: mid.Y, Z: hi.Z}},
		{Min: math.Vec3{X: lo.X, Y: mid.Y, Z: mid.Z}, Max: math.Vec3{X: mid.X, Y: hi.Y, Z: hi.Z}},
	}
}

// String formats the box with two decimals per coordinate.
func (b AABB) String() string {
	return fmt.Sprintf("min(%.2f, %.2f, %.2f) max(%.2f, %.2f, %.2f)",
		b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z)
}
