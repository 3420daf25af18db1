package setup

import (
	"math"
	"regexp"

	"github.com/rwi-modeling/backend/internal/models"
	"github.com/rwi-modeling/backend/internal/parser"
)

// An antenna head is its name line followed by unparsed properties up to the
// first element; its tail starts at the first line that does not open an
// element and runs through end_<antenna>.
var antennaLayout = &parser.Layout{
	Open:       regexp.MustCompile(`^\s*begin_<antenna>\s+(?P<name>.*)$`),
	OpenPrefix: "begin_<antenna> ",
	EndHeader:  mimoBeginRe,
	BeginTail:  parser.Not(mimoBeginRe),
	End:        regexp.MustCompile(`^\s*end_<antenna>\s*$`),
	Close:      "end_<antenna>\n",
}

// Antenna is a named antenna array made of MimoElements.
type Antenna struct {
	parser.Container[*MimoElement]
}

func newAntenna() *Antenna {
	return &Antenna{Container: parser.NewContainer[*MimoElement](antennaLayout, ParseMimoElement)}
}

// NewAntenna returns an antenna without properties or elements.
func NewAntenna(name string) (*Antenna, error) {
	a := newAntenna()
	if err := a.SetName(name); err != nil {
		return nil, err
	}
	return a, nil
}

// ParseAntenna reads a begin_<antenna> block.
func ParseAntenna(r *parser.LineReader) (*Antenna, error) {
	a := newAntenna()
	if err := a.Parse(r); err != nil {
		return nil, err
	}
	return a, nil
}

// MimoElements returns the elements in order.
func (a *Antenna) MimoElements() []*MimoElement {
	return a.Children()
}

// AddMimoElements appends elements.
func (a *Antenna) AddMimoElements(elems ...*MimoElement) {
	a.Append(elems...)
}

// ArrangeLinear positions the elements on a line starting at origin, at
// angleDeg from the x axis in the xy plane, spacing apart. Step components
// and positions are rounded to 5 decimals.
func (a *Antenna) ArrangeLinear(origin models.Vec3, angleDeg, spacing float64) {
	angle := angleDeg * math.Pi / 180
	step := models.Vec3{round5(math.Cos(angle) * spacing), round5(math.Sin(angle) * spacing), 0}
	p := origin
	for _, m := range a.MimoElements() {
		m.SetPoint(models.Vec3{round5(p[0]), round5(p[1]), round5(p[2])})
		p = p.Add(step)
	}
}

// Clone returns an independent copy of a.
func (a *Antenna) Clone() *Antenna {
	return &Antenna{Container: a.Copy()}
}

// Summary describes the antenna and its elements.
func (a *Antenna) Summary() models.NodeSummary {
	n := models.NodeSummary{Type: "antenna", Name: a.Name()}
	for _, m := range a.MimoElements() {
		n.Children = append(n.Children, models.NodeSummary{Type: "mimo_element", Name: m.Position})
	}
	return n
}
