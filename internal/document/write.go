package document

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/transform"
)

// Parse reads a document in format f from rd, accepting either LF or CRLF
// line terminators.
func Parse(f Format, rd io.Reader, name string) (Document, error) {
	return f.Parse(transform.NewReader(rd, toLF{}), name)
}

// Encode returns the document text with the given line ending.
func Encode(doc Document, ending LineEnding) ([]byte, error) {
	var sb strings.Builder
	doc.Encode(&sb)
	out, _, err := transform.Bytes(ending.Transformer(), []byte(sb.String()))
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", doc.Name(), err)
	}
	return out, nil
}

// WriteTo writes the document to w with the given line ending.
func WriteTo(w io.Writer, doc Document, ending LineEnding) error {
	var sb strings.Builder
	doc.Encode(&sb)
	tw := transform.NewWriter(w, ending.Transformer())
	if _, err := io.WriteString(tw, sb.String()); err != nil {
		return err
	}
	return tw.Close()
}

// Write creates or truncates path and writes the document to it. The file is
// flushed and closed before Write returns.
func Write(path string, doc Document, ending LineEnding) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing file: %w", cerr)
		}
	}()

	bw := bufio.NewWriter(f)
	if err := WriteTo(bw, doc, ending); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}
