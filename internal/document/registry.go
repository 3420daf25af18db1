// Package document detects, loads and writes whole object and setup files.
package document

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rwi-modeling/backend/internal/geometry"
	"github.com/rwi-modeling/backend/internal/models"
	"github.com/rwi-modeling/backend/internal/setup"
)

// Kind names a document type.
type Kind string

const (
	KindObject Kind = "object"
	KindSetup  Kind = "setup"
)

// Document is a parsed top-level file.
type Document interface {
	Name() string
	Encode(sb *strings.Builder)
	Serialize() string
	Translate(offset models.Vec3)
	Clear()
	Len() int
	Summary() models.NodeSummary
}

// Format reads one kind of document.
type Format interface {
	// Kind returns the document kind this format produces.
	Kind() Kind
	// Extension returns the file extension, including the dot.
	Extension() string
	// CanParse reports whether the file content looks like this format.
	CanParse(filePath string) (bool, error)
	// Parse reads a whole document with "\n" line terminators.
	Parse(r io.Reader, name string) (Document, error)
}

type format struct {
	kind   Kind
	ext    string
	marker *regexp.Regexp
	parse  func(r io.Reader, name string) (Document, error)
}

func (f *format) Kind() Kind        { return f.kind }
func (f *format) Extension() string { return f.ext }

func (f *format) Parse(r io.Reader, name string) (Document, error) {
	return f.parse(r, name)
}

// CanParse looks for the format's open line among the first non-empty lines.
func (f *format) CanParse(filePath string) (bool, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return false, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	checked := 0
	for scanner.Scan() && checked < 10 {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		checked++
		if f.marker.MatchString(line) {
			return true, nil
		}
	}
	return false, scanner.Err()
}

// NewObjectFormat returns the .object format.
func NewObjectFormat() Format {
	return &format{
		kind:   KindObject,
		ext:    ".object",
		marker: regexp.MustCompile(`^\s*begin_<object>`),
		parse: func(r io.Reader, name string) (Document, error) {
			o, err := geometry.ReadObjectFile(r, name)
			if err != nil {
				return nil, err
			}
			return o, nil
		},
	}
}

// NewSetupFormat returns the .setup format.
func NewSetupFormat() Format {
	return &format{
		kind:   KindSetup,
		ext:    ".setup",
		marker: regexp.MustCompile(`^\s*begin_<project>`),
		parse: func(r io.Reader, name string) (Document, error) {
			s, err := setup.ReadSetupFile(r, name)
			if err != nil {
				return nil, err
			}
			return s, nil
		},
	}
}

// Registry holds the known formats and detects which one a file uses.
type Registry struct {
	formats []Format
}

// Global registry instance
var globalRegistry = NewRegistry()

// NewRegistry returns a registry with the object and setup formats.
func NewRegistry() *Registry {
	return &Registry{
		formats: []Format{
			NewObjectFormat(),
			NewSetupFormat(),
		},
	}
}

// GetGlobalRegistry returns the singleton registry.
func GetGlobalRegistry() *Registry {
	return globalRegistry
}

// Register adds a format.
func (r *Registry) Register(f Format) {
	r.formats = append(r.formats, f)
}

// ByKind returns the format producing kind.
func (r *Registry) ByKind(kind Kind) (Format, error) {
	for _, f := range r.formats {
		if f.Kind() == kind {
			return f, nil
		}
	}
	return nil, fmt.Errorf("unknown document kind: %s", kind)
}

// Detect picks the format for a file by the extension of name, falling back
// to the content at filePath.
func (r *Registry) Detect(name, filePath string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(name))
	for _, f := range r.formats {
		if f.Extension() == ext {
			return f, nil
		}
	}
	for _, f := range r.formats {
		can, err := f.CanParse(filePath)
		if err != nil {
			continue
		}
		if can {
			return f, nil
		}
	}
	return nil, fmt.Errorf("no suitable format found for file: %s", name)
}

// Load parses the document at filePath, naming it after the file.
func (r *Registry) Load(filePath string) (Document, Kind, error) {
	return r.LoadNamed(filePath, filepath.Base(filePath))
}

// LoadNamed parses the document at filePath. name selects the format by
// extension and becomes the document name.
func (r *Registry) LoadNamed(filePath, name string) (Document, Kind, error) {
	f, err := r.Detect(name, filePath)
	if err != nil {
		return nil, "", err
	}
	file, err := os.Open(filePath)
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	doc, err := Parse(f, file, name)
	if err != nil {
		return nil, "", fmt.Errorf("parsing %s: %w", name, err)
	}
	return doc, f.Kind(), nil
}
