// Package setup models the antenna-array part of a .setup project file.
package setup

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/rwi-modeling/backend/internal/models"
	"github.com/rwi-modeling/backend/internal/parser"
)

var (
	mimoBeginRe    = regexp.MustCompile(`^\s*begin_<MimoElement>\s*$`)
	mimoPositionRe = regexp.MustCompile(`^\s*position\s+(?P<v>.*)$`)
	mimoAntennaRe  = regexp.MustCompile(`^\s*antenna\s+(?P<v>.*)$`)
	mimoRotationRe = regexp.MustCompile(`^\s*rotation\s+(?P<v>.*)$`)
	mimoEndRe      = regexp.MustCompile(`^\s*end_<MimoElement>\s*$`)
)

// MimoElement is one element of an antenna array. Its fields are kept as
// the free text found in the file.
type MimoElement struct {
	Position string
	Antenna  string
	Rotation string
}

// ParseMimoElement reads a begin_<MimoElement> block.
func ParseMimoElement(r *parser.LineReader) (*MimoElement, error) {
	if _, err := parser.MatchOrFail(mimoBeginRe, r); err != nil {
		return nil, err
	}
	m := &MimoElement{}
	for _, field := range []struct {
		re  *regexp.Regexp
		dst *string
	}{
		{mimoPositionRe, &m.Position},
		{mimoAntennaRe, &m.Antenna},
		{mimoRotationRe, &m.Rotation},
	} {
		caps, err := parser.MatchOrFail(field.re, r)
		if err != nil {
			return nil, err
		}
		*field.dst = caps["v"]
	}
	if _, err := parser.MatchOrFail(mimoEndRe, r); err != nil {
		return nil, err
	}
	return m, nil
}

// Encode writes the element block.
func (m *MimoElement) Encode(sb *strings.Builder) {
	sb.WriteString("begin_<MimoElement>\n")
	sb.WriteString("position " + m.Position + "\n")
	sb.WriteString("antenna " + m.Antenna + "\n")
	sb.WriteString("rotation " + m.Rotation + "\n")
	sb.WriteString("end_<MimoElement>\n")
}

// Translate shifts the position when it holds three numbers. Any other
// position text is left as is.
func (m *MimoElement) Translate(offset models.Vec3) {
	p, ok := m.Point()
	if !ok {
		return
	}
	m.SetPoint(p.Add(offset))
}

// Point parses the position as "x y z".
func (m *MimoElement) Point() (models.Vec3, bool) {
	fields := strings.Fields(m.Position)
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

// SetPoint writes p as the position, using the shortest exact decimal form.
func (m *MimoElement) SetPoint(p models.Vec3) {
	parts := make([]string, 3)
	for i, c := range p {
		parts[i] = strconv.FormatFloat(c, 'f', -1, 64)
	}
	m.Position = strings.Join(parts, " ")
}

// Clone returns a copy of m.
func (m *MimoElement) Clone() *MimoElement {
	cp := *m
	return &cp
}

func round5(v float64) float64 {
	return math.Round(v*1e5) / 1e5
}
