// Package placement arranges copies of a structure in the scene.
package placement

import (
	"errors"
	"fmt"

	"github.com/rwi-modeling/backend/internal/geometry"
	"github.com/rwi-modeling/backend/internal/models"
)

// MaxCopies bounds the number of copies a single line may hold.
const MaxCopies = 10000

var (
	// ErrNoDimensions is returned when the template structure has no dimensions.
	ErrNoDimensions = errors.New("structure has no dimensions")
	// ErrNoProgress is returned when the next copy would not start past the
	// previous one, which happens once coordinates exceed float64 resolution.
	ErrNoProgress = errors.New("placement does not advance")
	// ErrTooManyCopies is returned when the line would need more than MaxCopies copies.
	ErrTooManyCopies = errors.New("too many copies")
)

// SpacingFunc returns the gap to leave after each placed copy.
type SpacingFunc func() float64

// PlaceOnLine lines up copies of s along axis (0, 1 or 2 for x, y or z),
// starting at origin; the other two coordinates of origin are kept for every
// copy. s must have its corner at (0, 0, 0) and carry
// Dimensions. Copies are named <name>000, <name>001, ... and are added while
// the next one still ends before destination. The returned group is named
// "<name> in line".
func PlaceOnLine(origin models.Vec3, destination float64, axis int, spacing SpacingFunc, s *geometry.Structure) (*geometry.StructureGroup, error) {
	if axis < 0 || axis > 2 {
		return nil, fmt.Errorf("axis must be 0, 1 or 2, got %d", axis)
	}
	if s.Dimensions == nil {
		return nil, fmt.Errorf("%q: %w", s.Name(), ErrNoDimensions)
	}
	group, err := geometry.NewStructureGroup(s.Name() + " in line")
	if err != nil {
		return nil, err
	}

	size := s.Dimensions[axis]
	pos := origin[axis]
	for n := 0; pos < destination && pos+size < destination; n++ {
		copied := s.Clone()
		if err := copied.SetName(fmt.Sprintf("%s%03d", s.Name(), n)); err != nil {
			return nil, err
		}
		at := origin
		at[axis] = pos
		copied.Translate(at)
		group.AddStructures(copied)
		next := at[axis] + size + spacing()
		if !(next > pos) {
			return nil, fmt.Errorf("copy %d at %g: %w", n, pos, ErrNoProgress)
		}
		if n+1 >= MaxCopies && next < destination && next+size < destination {
			return nil, fmt.Errorf("more than %d copies of %q: %w", MaxCopies, s.Name(), ErrTooManyCopies)
		}
		pos = next
	}
	return group, nil
}
