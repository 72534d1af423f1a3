package volume

import "errors"

// ErrEmptyInput is returned by Cumulative when no valid box was folded.
// The accompanying AABB is always Empty().
var ErrEmptyInput = errors.New("volume: no valid bounds to accumulate")

// Bounded is anything with a world-space bounding box.
type Bounded interface {
	WorldAABB() AABB
}

// Accumulator folds boxes into a running cumulative box.
// The zero value is ready to use.
type Accumulator struct {
	box     AABB
	count   int
	skipped int
}

// Add folds b in. Invalid boxes are counted and ignored so they cannot
// poison the running bounds. Returns whether b was used.
func (a *Accumulator) Add(b AABB) bool {
	if !b.Valid() {
		a.skipped++
		return false
	}
	if a.count == 0 {
		a.box = b
	} else {
		a.box = a.box.Union(b)
	}
	a.count++
	return true
}

// Count returns the number of boxes folded in.
func (a *Accumulator) Count() int {
	return a.count
}

// Skipped returns the number of invalid boxes ignored.
func (a *Accumulator) Skipped() int {
	return a.skipped
}

// Bounds returns the cumulative box, or Empty() and ErrEmptyInput if
// nothing valid was added.
func (a *Accumulator) Bounds() (AABB, error) {
	if a.count == 0 {
		return Empty(), ErrEmptyInput
	}
	return a.box, nil
}

// Cumulative returns the smallest box enclosing every valid item's box.
func Cumulative[T Bounded](items []T) (AABB, error) {
	var acc Accumulator
	for _, it := range items {
		acc.Add(it.WorldAABB())
	}
	return acc.Bounds()
}
