package geometry

import (
	"regexp"

	"github.com/rwi-modeling/backend/internal/models"
	"github.com/rwi-modeling/backend/internal/parser"
)

// DefaultLocationHead opens a fresh location block.
const DefaultLocationHead = "begin_<location> \n"

var locationEndRe = regexp.MustCompile(`^\s*end_<location>\s*$`)

// The head is free-form up to the vertex count line; the single vertex list
// is followed by end_<location>.
var locationLayout = &parser.Layout{
	EndHeader: nVerticesRe,
	End:       locationEndRe,
	Close:     "end_<location>\n",
}

// Location is a transmitter/receiver point set: an unparsed head, one vertex
// list and the closing line.
type Location struct {
	parser.Container[*VertexList]
}

func newLocation() *Location {
	l := &Location{}
	l.Container = parser.NewContainer[*VertexList](locationLayout, l.parseVertices)
	return l
}

// NewLocation returns a location with the default head and no points.
func NewLocation() *Location {
	l := newLocation()
	l.SetHead(DefaultLocationHead)
	l.Append(&VertexList{})
	return l
}

// ParseLocation reads a location block up to and including end_<location>.
func ParseLocation(r *parser.LineReader) (*Location, error) {
	l := newLocation()
	if err := l.Parse(r); err != nil {
		return nil, err
	}
	return l, nil
}

// A location holds exactly one vertex list; a second count line is where
// end_<location> was expected.
func (l *Location) parseVertices(r *parser.LineReader) (*VertexList, error) {
	if l.Len() > 0 {
		line := parser.Trim(r.Next())
		return nil, models.UnexpectedToken(r.Line(), locationEndRe.String(), line)
	}
	return ParseVertexList(r)
}

// Vertices returns the location's vertex list.
func (l *Location) Vertices() *VertexList {
	if l.Len() == 0 {
		l.Append(&VertexList{})
	}
	return l.Children()[0]
}

// Points returns the location points in order.
func (l *Location) Points() []models.Vec3 {
	return l.Vertices().Points()
}

// AddVertex appends p to the location.
func (l *Location) AddVertex(p models.Vec3) {
	l.Vertices().Append(p)
}

// Bounds returns the bounding box of the location points.
func (l *Location) Bounds() (models.Box, bool) {
	return models.BoxOf(l.Points())
}

// Clone returns an independent copy of l.
func (l *Location) Clone() *Location {
	cp := newLocation()
	cp.SetHead(l.Head())
	cp.SetTail(l.Tail())
	for _, vl := range l.Children() {
		cp.Append(vl.Clone())
	}
	return cp
}
