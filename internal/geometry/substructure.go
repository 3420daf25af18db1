package geometry

import (
	"regexp"

	"github.com/rwi-modeling/backend/internal/models"
	"github.com/rwi-modeling/backend/internal/parser"
)

var subStructureLayout = &parser.Layout{
	Open:       regexp.MustCompile(`^\s*begin_<sub_structure>\s+(?P<name>.*)$`),
	OpenPrefix: "begin_<sub_structure> ",
	End:        regexp.MustCompile(`^\s*end_<sub_structure>\s*$`),
	Close:      "end_<sub_structure>\n",
}

// SubStructure is a closed set of faces, e.g. one box.
type SubStructure struct {
	parser.Container[*Face]

	// Dimensions is set by builders; it is not derived from the faces.
	Dimensions *models.Vec3
}

func newSubStructure() *SubStructure {
	return &SubStructure{Container: parser.NewContainer[*Face](subStructureLayout, ParseFace)}
}

// NewSubStructure returns an empty sub structure.
func NewSubStructure(name string, material int) (*SubStructure, error) {
	s := newSubStructure()
	named, err := models.NewNamed(name, material)
	if err != nil {
		return nil, err
	}
	s.Named = named
	return s, nil
}

// ParseSubStructure reads a begin_<sub_structure> block.
func ParseSubStructure(r *parser.LineReader) (*SubStructure, error) {
	s := newSubStructure()
	if err := s.Parse(r); err != nil {
		return nil, err
	}
	return s, nil
}

// Faces returns the faces in order.
func (s *SubStructure) Faces() []*Face {
	return s.Children()
}

// AddFaces appends faces.
func (s *SubStructure) AddFaces(faces ...*Face) {
	s.Append(faces...)
}

// Vertices returns the points of every face, concatenated in face order.
func (s *SubStructure) Vertices() []models.Vec3 {
	var pts []models.Vec3
	for _, f := range s.Faces() {
		pts = append(pts, f.Points()...)
	}
	return pts
}

// Bounds returns the bounding box of all face vertices.
func (s *SubStructure) Bounds() (models.Box, bool) {
	return models.BoxOf(s.Vertices())
}

// Clone returns an independent copy of s.
func (s *SubStructure) Clone() *SubStructure {
	return &SubStructure{Container: s.Copy(), Dimensions: cloneVec(s.Dimensions)}
}

func cloneVec(v *models.Vec3) *models.Vec3 {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}
