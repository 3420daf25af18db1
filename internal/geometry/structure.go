package geometry

import (
	"regexp"

	"github.com/rwi-modeling/backend/internal/models"
	"github.com/rwi-modeling/backend/internal/parser"
)

var (
	structureLayout = &parser.Layout{
		Open:       regexp.MustCompile(`^\s*begin_<structure>\s+(?P<name>.*)$`),
		OpenPrefix: "begin_<structure> ",
		End:        regexp.MustCompile(`^\s*end_<structure>\s*$`),
		Close:      "end_<structure>\n",
	}

	structureGroupOpenRe = regexp.MustCompile(`^\s*begin_<structure_group>\s+(?P<name>.*)$`)

	structureGroupLayout = &parser.Layout{
		Open:       structureGroupOpenRe,
		OpenPrefix: "begin_<structure_group> ",
		End:        regexp.MustCompile(`^\s*end_<structure_group>\s*$`),
		Close:      "end_<structure_group>\n",
	}
)

// Structure groups the sub structures of one physical object.
type Structure struct {
	parser.Container[*SubStructure]

	// Dimensions is set by builders or by ComputeDimensions. Placement
	// uses it to space copies.
	Dimensions *models.Vec3
}

func newStructure() *Structure {
	return &Structure{Container: parser.NewContainer[*SubStructure](structureLayout, ParseSubStructure)}
}

// NewStructure returns an empty structure.
func NewStructure(name string) (*Structure, error) {
	s := newStructure()
	if err := s.SetName(name); err != nil {
		return nil, err
	}
	return s, nil
}

// ParseStructure reads a begin_<structure> block.
func ParseStructure(r *parser.LineReader) (*Structure, error) {
	s := newStructure()
	if err := s.Parse(r); err != nil {
		return nil, err
	}
	return s, nil
}

// SubStructures returns the sub structures in order.
func (s *Structure) SubStructures() []*SubStructure {
	return s.Children()
}

// AddSubStructures appends sub structures.
func (s *Structure) AddSubStructures(subs ...*SubStructure) {
	s.Append(subs...)
}

// Bounds returns the bounding box of every vertex in the structure.
func (s *Structure) Bounds() (models.Box, bool) {
	return unionBounds(s.SubStructures())
}

// ComputeDimensions sets Dimensions to the size of the bounding box and
// returns it. A structure without vertices keeps its Dimensions.
func (s *Structure) ComputeDimensions() (models.Vec3, bool) {
	box, ok := s.Bounds()
	if !ok {
		return models.Vec3{}, false
	}
	size := box.Size()
	s.Dimensions = &size
	return size, true
}

// Clone returns an independent copy of s.
func (s *Structure) Clone() *Structure {
	return &Structure{Container: s.Copy(), Dimensions: cloneVec(s.Dimensions)}
}

// StructureGroup is the outermost level of the geometry inside a document.
type StructureGroup struct {
	parser.Container[*Structure]
}

func newStructureGroup() *StructureGroup {
	return &StructureGroup{Container: parser.NewContainer[*Structure](structureGroupLayout, ParseStructure)}
}

// NewStructureGroup returns an empty structure group.
func NewStructureGroup(name string) (*StructureGroup, error) {
	g := newStructureGroup()
	if err := g.SetName(name); err != nil {
		return nil, err
	}
	return g, nil
}

// ParseStructureGroup reads a begin_<structure_group> block.
func ParseStructureGroup(r *parser.LineReader) (*StructureGroup, error) {
	g := newStructureGroup()
	if err := g.Parse(r); err != nil {
		return nil, err
	}
	return g, nil
}

// Structures returns the structures in order.
func (g *StructureGroup) Structures() []*Structure {
	return g.Children()
}

// AddStructures appends structures.
func (g *StructureGroup) AddStructures(structures ...*Structure) {
	g.Append(structures...)
}

// Bounds returns the bounding box of every vertex in the group.
func (g *StructureGroup) Bounds() (models.Box, bool) {
	return unionBounds(g.Structures())
}

// Clone returns an independent copy of g.
func (g *StructureGroup) Clone() *StructureGroup {
	return &StructureGroup{Container: g.Copy()}
}

type bounded interface {
	Bounds() (models.Box, bool)
}

func unionBounds[T bounded](items []T) (models.Box, bool) {
	var box models.Box
	found := false
	for _, it := range items {
		b, ok := it.Bounds()
		if !ok {
			continue
		}
		if found {
			box = box.Extend(b)
		} else {
			box, found = b, true
		}
	}
	return box, found
}
