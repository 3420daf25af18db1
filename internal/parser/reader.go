package parser

import (
	"bufio"
	"errors"
	"io"
)

// LineReader wraps a line-oriented input with one line of lookahead.
//
// Lines are returned with their terminating "\n" so that unparsed regions
// can be preserved verbatim. The empty string signals end of input; a blank
// line in the input is returned as "\n".
type LineReader struct {
	br      *bufio.Reader
	next    string
	hasNext bool
	line    int
	err     error
}

// NewLineReader creates a LineReader over r.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{br: bufio.NewReader(r)}
}

// Peek returns the next line without consuming it.
func (r *LineReader) Peek() string {
	if !r.hasNext {
		r.next = r.read()
		r.hasNext = true
	}
	return r.next
}

// Next consumes and returns the next line. It returns the same text a
// preceding Peek returned.
func (r *LineReader) Next() string {
	line := r.Peek()
	r.hasNext = false
	if line != "" {
		r.line++
	}
	return line
}

// EOF reports whether the input is exhausted.
func (r *LineReader) EOF() bool {
	return r.Peek() == ""
}

// Line returns the number of lines consumed so far, which is the 1-based
// number of the most recently consumed line.
func (r *LineReader) Line() int {
	return r.line
}

// Err returns the first read error other than io.EOF. A read error ends the
// stream, so parsing stops with a boundary error and Err explains why.
func (r *LineReader) Err() error {
	return r.err
}

func (r *LineReader) read() string {
	if r.err != nil {
		return ""
	}
	s, err := r.br.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		r.err = err
		return ""
	}
	return s
}
