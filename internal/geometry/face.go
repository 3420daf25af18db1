package geometry

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rwi-modeling/backend/internal/models"
	"github.com/rwi-modeling/backend/internal/parser"
)

var (
	faceBeginRe    = regexp.MustCompile(`^\s*begin_<face>\s+(?P<name>.*)$`)
	faceEndRe      = regexp.MustCompile(`^\s*end_<face>\s*$`)
	faceMaterialRe = regexp.MustCompile(`^\s*Material\s+(?P<mid>\d+)\s*$`)
)

// Face is a named planar polygon: a material index and an ordered vertex list.
type Face struct {
	models.Named
	VertexList

	openLine string
	openName string
}

// NewFace returns an empty face.
func NewFace(name string, material int) (*Face, error) {
	named, err := models.NewNamed(name, material)
	if err != nil {
		return nil, err
	}
	return &Face{Named: named}, nil
}

// ParseFace reads a begin_<face> block: open line, material line, vertex
// list, close line, in that order.
func ParseFace(r *parser.LineReader) (*Face, error) {
	f := &Face{}
	line, caps, err := parser.MatchLine(faceBeginRe, r)
	if err != nil {
		return nil, err
	}
	if err := f.SetName(caps["name"]); err != nil {
		return nil, err
	}
	f.openLine, f.openName = line, f.Name()
	caps, err = parser.MatchOrFail(faceMaterialRe, r)
	if err != nil {
		return nil, err
	}
	material, err := strconv.Atoi(caps["mid"])
	if err != nil {
		return nil, models.UnexpectedToken(r.Line(), faceMaterialRe.String(), caps["mid"])
	}
	if err := f.SetMaterial(material); err != nil {
		return nil, err
	}
	if err := f.VertexList.decode(r); err != nil {
		return nil, err
	}
	if _, err := parser.MatchOrFail(faceEndRe, r); err != nil {
		return nil, err
	}
	return f, nil
}

// Encode writes the face block.
func (f *Face) Encode(sb *strings.Builder) {
	parser.WriteOpenLine(sb, f.openLine, f.openName, "begin_<face> ", f.Name())
	sb.WriteString("Material ")
	sb.WriteString(strconv.Itoa(f.Material()))
	sb.WriteByte('\n')
	f.VertexList.Encode(sb)
	sb.WriteString("end_<face>\n")
}

// Clone returns an independent copy of f.
func (f *Face) Clone() *Face {
	return &Face{
		Named:      f.Named,
		VertexList: *f.VertexList.Clone(),
		openLine:   f.openLine,
		openName:   f.openName,
	}
}
