package analysis

import (
	"errors"
	"fmt"

	"github.com/Faultbox/meshlens/pkg/math"
	"github.com/Faultbox/meshlens/pkg/volume"
)

// MaxDepthLimit caps subdivision depth. Depth 6 already emits 299,592 markers.
const MaxDepthLimit = 6

var (
	// ErrDepthLimit is returned for a max depth outside [0, MaxDepthLimit].
	ErrDepthLimit = errors.New("analysis: subdivision depth out of range")

	// ErrDegenerateVolume is returned when the volume to subdivide is inverted
	// or not finite, or its extent overflows float32.
	ErrDegenerateVolume = errors.New("analysis: degenerate subdivision volume")
)

// Marker describes one emitted sub-volume: the box, its center and full
// edge lengths, and the level it belongs to (0 is the root).
type Marker struct {
	Box    volume.AABB
	Center math.Vec3
	Size   math.Vec3
	Depth  int
}

// HalfExtents returns half the marker's edge lengths.
func (m Marker) HalfExtents() math.Vec3 {
	return m.Box.HalfExtents()
}

func newMarker(b volume.AABB, depth int) Marker {
	return Marker{Box: b, Center: b.Center(), Size: b.Size(), Depth: depth}
}

// SubdivideOptions controls octree subdivision.
type SubdivideOptions struct {
	// MaxDepth is the deepest level emitted. Level 1 holds the eight
	// children of the root volume.
	MaxDepth int

	// EmitRoot also emits the root volume itself at depth 0. When false
	// only children are emitted, one marker per octant per level.
	EmitRoot bool
}

// MarkerCount returns how many markers Subdivide emits for opts.
func MarkerCount(opts SubdivideOptions) int {
	n, level := 0, 1
	for d := 1; d <= opts.MaxDepth; d++ {
		level *= 8
		n += level
	}
	if opts.EmitRoot {
		n++
	}
	return n
}

// Subdivide recursively splits v into octants down to opts.MaxDepth and
// calls emit for every sub-volume, parents before their children. It
// returns the number of markers emitted.
func Subdivide(v volume.AABB, opts SubdivideOptions, emit func(Marker)) (int, error) {
	if opts.MaxDepth < 0 || opts.MaxDepth > MaxDepthLimit {
		return 0, fmt.Errorf("%w: %d (limit %d)", ErrDepthLimit, opts.MaxDepth, MaxDepthLimit)
	}
	if !v.Valid() || !v.Size().IsFinite() {
		return 0, fmt.Errorf("%w: %v", ErrDegenerateVolume, v)
	}

	n := 0
	if opts.EmitRoot {
		emit(newMarker(v, 0))
		n++
	}
	return n + subdivide(v, 1, opts.MaxDepth, emit), nil
}

// subdivide emits the octants of v at depth and recurses into each.
func subdivide(v volume.AABB, depth, maxDepth int, emit func(Marker)) int {
	if depth > maxDepth {
		return 0
	}

	n := 0
	for _, child := range v.Octants() {
		emit(newMarker(child, depth))
		n++
		n += subdivide(child, depth+1, maxDepth, emit)
	}
	return n
}

// Collect runs Subdivide and returns the markers as a slice.
func Collect(v volume.AABB, opts SubdivideOptions) ([]Marker, error) {
	if opts.MaxDepth < 0 || opts.MaxDepth > MaxDepthLimit {
		return nil, fmt.Errorf("%w: %d (limit %d)", ErrDepthLimit, opts.MaxDepth, MaxDepthLimit)
	}
	markers := make([]Marker, 0, MarkerCount(opts))
	if _, err := Subdivide(v, opts, func(m Marker) { markers = append(markers, m) }); err != nil {
		return nil, err
	}
	return markers, nil
}
