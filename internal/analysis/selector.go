package analysis

import "github.com/Faultbox/meshlens/internal/picking"

// DefaultHighlightColor is the emissive red applied to the selected mesh.
var DefaultHighlightColor = [3]float32{1, 0, 0}

// SelectorOptions holds the policy switches of the hit selector.
type SelectorOptions struct {
	// ClearOnMiss drops the selection when the ray hits nothing. When false
	// the last selected mesh stays selected and highlighted.
	ClearOnMiss bool

	// RestorePrevious removes the highlight from the previously selected
	// mesh on a selection change. When false old highlights accumulate.
	RestorePrevious bool

	// HighlightColor is applied to newly selected meshes.
	HighlightColor [3]float32

	// Wireframe draws the selected mesh as wireframe.
	Wireframe bool
}

// DefaultSelectorOptions keeps the last selection on a miss and leaves
// earlier highlights in place.
func DefaultSelectorOptions() SelectorOptions {
	return SelectorOptions{HighlightColor: DefaultHighlightColor, Wireframe: true}
}

// Event is the outcome of one Selector tick.
type Event struct {
	// Hit is true when the ray intersected a mesh this tick.
	Hit bool
	// Changed is true when the selection changed and a new partition was computed.
	Changed bool
	// Previous is the selection before the tick, Current the one after.
	Previous MeshProxy
	Current  MeshProxy
	// Partition is only set when Changed is true and Current is not nil.
	Partition Partition
}

// Selector tracks the mesh under the view ray across frames. It has two
// states, no selection and selected(mesh), and re-runs classification only
// when the selected mesh changes.
//
// A Selector is driven from the render loop and is not safe for concurrent use.
type Selector struct {
	caster      RayCaster
	highlighter Highlighter
	opts        SelectorOptions

	current   MeshProxy
	partition Partition
}

// NewSelector creates a selector. highlighter may be nil.
func NewSelector(caster RayCaster, highlighter Highlighter, opts SelectorOptions) *Selector {
	return &Selector{caster: caster, highlighter: highlighter, opts: opts}
}

// Current returns the selected mesh, or nil.
func (s *Selector) Current() MeshProxy {
	return s.current
}

// Partition returns the partition computed for the current selection.
func (s *Selector) Partition() Partition {
	return s.partition
}

// Reset forgets the selection without touching highlights. Use it when the
// mesh set is replaced.
func (s *Selector) Reset() {
	s.current = nil
	s.partition = Partition{}
}

// Tick casts r and updates the selection. meshes is the full candidate set
// used for classification when the selection changes.
func (s *Selector) Tick(r picking.Ray, meshes []MeshProxy) Event {
	ev := Event{Previous: s.current, Current: s.current}

	hit, ok := s.caster.CastRay(r)
	if !ok || hit == nil {
		if s.opts.ClearOnMiss && s.current != nil {
			s.unhighlight(s.current)
			s.Reset()
			ev.Current = nil
			ev.Changed = true
		}
		return ev
	}
	ev.Hit = true

	if hit == s.current {
		return ev
	}

	if s.opts.RestorePrevious && s.current != nil {
		s.unhighlight(s.current)
	}
	if s.highlighter != nil {
		s.highlighter.SetHighlight(hit, s.opts.HighlightColor, s.opts.Wireframe)
	}

	s.current = hit
	s.partition = ClassifyMesh(hit, meshes)

	ev.Current = hit
	ev.Changed = true
	ev.Partition = s.partition
	return ev
}

func (s *Selector) unhighlight(m MeshProxy) {
	if s.highlighter != nil {
		s.highlighter.ClearHighlight(m)
	}
}
