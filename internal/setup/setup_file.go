package setup

import (
	"io"
	"regexp"

	"github.com/rwi-modeling/backend/internal/models"
	"github.com/rwi-modeling/backend/internal/parser"
)

// DefaultSetupHead is the preamble of a fresh .setup document.
const DefaultSetupHead = "Format type:keyword version: 1.1.0\n" +
	"begin_<project> Untitled Project\n"

// DefaultSetupTail closes a fresh .setup document.
const DefaultSetupTail = "end_<project>\n"

var antennaStartRe = regexp.MustCompile(`^\s*begin_<antenna>.*$`)

var setupFileLayout = &parser.Layout{
	EndHeader: antennaStartRe,
	BeginTail: parser.Not(antennaStartRe),
	End:       regexp.MustCompile(`^\s*end_<project>.*$`),
}

// SetupFile is a .setup project document: a verbatim head, the antennas and
// a verbatim tail ending at end_<project>.
type SetupFile struct {
	parser.Container[*Antenna]
}

func newSetupFile() *SetupFile {
	return &SetupFile{Container: parser.NewContainer[*Antenna](setupFileLayout, ParseAntenna)}
}

// NewSetupFile returns an empty document with the default head and tail.
func NewSetupFile(name string) (*SetupFile, error) {
	s := newSetupFile()
	if err := s.SetName(name); err != nil {
		return nil, err
	}
	s.SetHead(DefaultSetupHead)
	s.SetTail(DefaultSetupTail)
	return s, nil
}

// ParseSetupFile reads a whole .setup document from r.
func ParseSetupFile(r *parser.LineReader, name string) (*SetupFile, error) {
	s := newSetupFile()
	if err := s.SetName(name); err != nil {
		return nil, err
	}
	if err := s.Parse(r); err != nil {
		return nil, err
	}
	return s, nil
}

// ReadSetupFile parses a .setup document from an io.Reader.
func ReadSetupFile(rd io.Reader, name string) (*SetupFile, error) {
	r := parser.NewLineReader(rd)
	s, err := ParseSetupFile(r, name)
	if rerr := r.Err(); rerr != nil {
		return nil, rerr
	}
	return s, err
}

// Antennas returns the antennas in order.
func (s *SetupFile) Antennas() []*Antenna {
	return s.Children()
}

// AddAntennas appends antennas.
func (s *SetupFile) AddAntennas(antennas ...*Antenna) {
	s.Append(antennas...)
}

// Antenna returns the first antenna named name.
func (s *SetupFile) Antenna(name string) (*Antenna, bool) {
	for _, a := range s.Antennas() {
		if a.Name() == name {
			return a, true
		}
	}
	return nil, false
}

// Clone returns an independent copy of s.
func (s *SetupFile) Clone() *SetupFile {
	return &SetupFile{Container: s.Copy()}
}

// Summary describes the document and its antennas.
func (s *SetupFile) Summary() models.NodeSummary {
	n := models.NodeSummary{Type: "setup", Name: s.Name()}
	for _, a := range s.Antennas() {
		n.Children = append(n.Children, a.Summary())
	}
	return n
}
