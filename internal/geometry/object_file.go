package geometry

import (
	"io"

	"github.com/rwi-modeling/backend/internal/models"
	"github.com/rwi-modeling/backend/internal/parser"
)

// DefaultObjectHead is the preamble of a fresh .object document: the format
// line, the object open line, a cartesian reference and one PEC material.
const DefaultObjectHead = "Format type:keyword version: 1.1.0\n" +
	"begin_<object> Untitled Model\n" +
	"begin_<reference> \n" +
	"cartesian\n" +
	"longitude 0.000000000000000\n" +
	"latitude 0.000000000000000\n" +
	"visible no\n" +
	"sealevel\n" +
	"end_<reference>\n" +
	"begin_<Material> Metal\n" +
	"Material 0\n" +
	"PEC\n" +
	"thickness 0.000e+000\n" +
	"begin_<Color> \n" +
	"ambient 0.600000 0.600000 0.600000 1.000000\n" +
	"diffuse 0.600000 0.600000 0.600000 1.000000\n" +
	"specular 0.600000 0.600000 0.600000 1.000000\n" +
	"emission 0.000000 0.000000 0.000000 0.000000\n" +
	"shininess 75.000000\n" +
	"end_<Color>\n" +
	"diffuse_scattering_model none\n" +
	"fields_diffusively_scattered 0.400000\n" +
	"cross_polarized_power 0.400000\n" +
	"directive_alpha 4\n" +
	"directive_beta 4\n" +
	"directive_lambda 0.750000\n" +
	"subdivide_facets yes\n" +
	"reflection_coefficient_options do_not_use\n" +
	"roughness 0.000e+000\n" +
	"end_<Material>\n"

// DefaultObjectTail closes a fresh .object document.
const DefaultObjectTail = "end_<object>\n"

// The head is everything before the first group; anything after the last
// group, up to end of input, is the tail.
var objectFileLayout = &parser.Layout{
	EndHeader: structureGroupOpenRe,
	BeginTail: parser.Not(structureGroupOpenRe),
}

// ObjectFile is an .object document: a verbatim head, structure groups and a
// verbatim tail.
type ObjectFile struct {
	parser.Container[*StructureGroup]
}

func newObjectFile() *ObjectFile {
	return &ObjectFile{Container: parser.NewContainer[*StructureGroup](objectFileLayout, ParseStructureGroup)}
}

// NewObjectFile returns an empty document with the default head and tail.
func NewObjectFile(name string) (*ObjectFile, error) {
	o := newObjectFile()
	if err := o.SetName(name); err != nil {
		return nil, err
	}
	o.SetHead(DefaultObjectHead)
	o.SetTail(DefaultObjectTail)
	return o, nil
}

// ParseObjectFile reads a whole .object document from r. name is usually
// the file's base name.
func ParseObjectFile(r *parser.LineReader, name string) (*ObjectFile, error) {
	o := newObjectFile()
	if err := o.SetName(name); err != nil {
		return nil, err
	}
	if err := o.Parse(r); err != nil {
		return nil, err
	}
	return o, nil
}

// ReadObjectFile parses an .object document from an io.Reader.
func ReadObjectFile(rd io.Reader, name string) (*ObjectFile, error) {
	r := parser.NewLineReader(rd)
	o, err := ParseObjectFile(r, name)
	if rerr := r.Err(); rerr != nil {
		return nil, rerr
	}
	return o, err
}

// StructureGroups returns the groups in order.
func (o *ObjectFile) StructureGroups() []*StructureGroup {
	return o.Children()
}

// AddStructureGroups appends groups.
func (o *ObjectFile) AddStructureGroups(groups ...*StructureGroup) {
	o.Append(groups...)
}

// StructureGroup returns the first group named name.
func (o *ObjectFile) StructureGroup(name string) (*StructureGroup, bool) {
	for _, g := range o.StructureGroups() {
		if g.Name() == name {
			return g, true
		}
	}
	return nil, false
}

// Bounds returns the bounding box of every vertex in the document.
func (o *ObjectFile) Bounds() (models.Box, bool) {
	return unionBounds(o.StructureGroups())
}

// Clone returns an independent copy of o.
func (o *ObjectFile) Clone() *ObjectFile {
	return &ObjectFile{Container: o.Copy()}
}
