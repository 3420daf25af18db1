// Package geometry models the object-geometry schema: vertex lists, faces and
// the structure hierarchy of an .object document.
package geometry

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rwi-modeling/backend/internal/models"
	"github.com/rwi-modeling/backend/internal/parser"
)

// DefaultPrecision is the number of fractional digits written per coordinate.
const DefaultPrecision = 10

const vertexLineExpected = "<float> <float> <float>"

// maxPrealloc bounds the capacity reserved from an nVertices line; the
// count is untrusted until the lines are actually read.
const maxPrealloc = 1024

var nVerticesRe = regexp.MustCompile(`^\s*nVertices\s+(?P<n>\d+)\s*$`)

// VertexList is an ordered sequence of 3D points. The order of the points
// carries the face orientation, so it is never changed except by
// InvertDirection.
type VertexList struct {
	points []models.Vec3
	// offset from DefaultPrecision, so the zero value writes 10 digits
	precisionDelta int
}

// ParseVertexList reads a count line followed by that many coordinate lines.
func ParseVertexList(r *parser.LineReader) (*VertexList, error) {
	vl := &VertexList{}
	if err := vl.decode(r); err != nil {
		return nil, err
	}
	return vl, nil
}

func (vl *VertexList) decode(r *parser.LineReader) error {
	caps, err := parser.MatchOrFail(nVerticesRe, r)
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(caps["n"])
	if err != nil {
		return models.UnexpectedToken(r.Line(), nVerticesRe.String(), caps["n"])
	}
	points := make([]models.Vec3, 0, min(n, maxPrealloc))
	for i := 0; i < n; i++ {
		if r.EOF() {
			return models.MissingBoundary(vertexLineExpected)
		}
		line := parser.Trim(r.Next())
		p, ok := parsePoint(line)
		if !ok {
			return models.UnexpectedToken(r.Line(), vertexLineExpected, line)
		}
		points = append(points, p)
	}
	vl.points = points
	return nil
}

func parsePoint(line string) (models.Vec3, bool) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return models.Vec3{}, false
	}
	var p models.Vec3
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return models.Vec3{}, false
		}
		p[i] = v
	}
	return p, true
}

// Len returns the number of points.
func (vl *VertexList) Len() int {
	return len(vl.points)
}

// Points returns the points in order. The slice is owned by vl.
func (vl *VertexList) Points() []models.Vec3 {
	return vl.points
}

// Append adds p at the end.
func (vl *VertexList) Append(p models.Vec3) {
	vl.points = append(vl.points, p)
}

// AppendCoords adds a point given as loose coordinates; exactly three are
// required.
func (vl *VertexList) AppendCoords(coords ...float64) error {
	if len(coords) != 3 {
		return models.NewFormatError(models.ErrInvalidVertexArity,
			"vertices must have 3 coordinates (x, y, z), got %d", len(coords))
	}
	vl.Append(models.Vec3{coords[0], coords[1], coords[2]})
	return nil
}

// Translate adds offset to every point.
func (vl *VertexList) Translate(offset models.Vec3) {
	for i := range vl.points {
		vl.points[i] = vl.points[i].Add(offset)
	}
}

// InvertDirection reverses the point order, flipping the orientation implied
// by the winding. Applying it twice restores the original order.
func (vl *VertexList) InvertDirection() {
	for i, j := 0, len(vl.points)-1; i < j; i, j = i+1, j-1 {
		vl.points[i], vl.points[j] = vl.points[j], vl.points[i]
	}
}

// Precision returns the number of fractional digits written per coordinate.
func (vl *VertexList) Precision() int {
	return DefaultPrecision + vl.precisionDelta
}

// SetPrecision changes the number of fractional digits written per
// coordinate. Negative values are treated as 0.
func (vl *VertexList) SetPrecision(digits int) {
	vl.precisionDelta = max(digits, 0) - DefaultPrecision
}

// Encode writes the count line and one line per point.
func (vl *VertexList) Encode(sb *strings.Builder) {
	sb.WriteString("nVertices ")
	sb.WriteString(strconv.Itoa(len(vl.points)))
	sb.WriteByte('\n')
	prec := vl.Precision()
	var buf []byte
	for _, p := range vl.points {
		buf = buf[:0]
		for i, c := range p {
			if i > 0 {
				buf = append(buf, ' ')
			}
			buf = strconv.AppendFloat(buf, c, 'f', prec, 64)
		}
		buf = append(buf, '\n')
		sb.Write(buf)
	}
}

// Clone returns an independent copy of vl.
func (vl *VertexList) Clone() *VertexList {
	cp := *vl
	cp.points = append([]models.Vec3(nil), vl.points...)
	return &cp
}
