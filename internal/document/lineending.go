package document

import (
	"fmt"
	"strings"

	"golang.org/x/text/transform"
)

// LineEnding selects the line terminator written to disk.
type LineEnding string

const (
	LF   LineEnding = "lf"
	CRLF LineEnding = "crlf"
)

// ParseLineEnding accepts "lf" or "crlf", case-insensitively. The empty
// string selects CRLF, which is what the simulation tool writes.
func ParseLineEnding(s string) (LineEnding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(CRLF):
		return CRLF, nil
	case string(LF):
		return LF, nil
	}
	return "", fmt.Errorf("unknown line ending %q (want lf or crlf)", s)
}

// Transformer returns the transform that converts "\n"-terminated document
// text into e.
func (e LineEnding) Transformer() transform.Transformer {
	if e == CRLF {
		return toCRLF{}
	}
	return transform.Nop
}

// toCRLF expands every "\n" to "\r\n".
type toCRLF struct{ transform.NopResetter }

func (toCRLF) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		c := src[nSrc]
		if c == '\n' {
			if nDst+2 > len(dst) {
				return nDst, nSrc, transform.ErrShortDst
			}
			dst[nDst], dst[nDst+1] = '\r', '\n'
			nDst += 2
		} else {
			if nDst == len(dst) {
				return nDst, nSrc, transform.ErrShortDst
			}
			dst[nDst] = c
			nDst++
		}
		nSrc++
	}
	return nDst, nSrc, nil
}

// toLF collapses "\r\n" to "\n". A lone "\r" is kept.
type toLF struct{ transform.NopResetter }

func (toLF) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		c := src[nSrc]
		if c == '\r' {
			if nSrc+1 == len(src) {
				if !atEOF {
					return nDst, nSrc, transform.ErrShortSrc
				}
			} else if src[nSrc+1] == '\n' {
				nSrc++
				continue
			}
		}
		if nDst == len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		dst[nDst] = c
		nDst++
		nSrc++
	}
	return nDst, nSrc, nil
}
