package parser

import (
	"regexp"
	"strings"

	"github.com/rwi-modeling/backend/internal/models"
)

// Matcher decides whether a single line (without its terminator) belongs to
// a boundary. *regexp.Regexp satisfies it.
type Matcher interface {
	MatchString(s string) bool
	String() string
}

// Not returns a Matcher accepting every line m rejects. RE2 has no negative
// lookahead, so "any line that is not X" boundaries are built with Not.
func Not(m Matcher) Matcher {
	return notMatcher{m}
}

type notMatcher struct {
	m Matcher
}

func (n notMatcher) MatchString(s string) bool {
	return !n.m.MatchString(s)
}

func (n notMatcher) String() string {
	return "not(" + n.m.String() + ")"
}

// Captures holds the named groups of a successful match.
type Captures map[string]string

// Trim strips the line terminator from a raw line.
func Trim(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}

// Matches reports whether the raw line matches m, ignoring its terminator.
// The end-of-input sentinel never matches a regexp; it only matches a
// negated boundary.
func Matches(m Matcher, line string) bool {
	return m.MatchString(Trim(line))
}

// MatchOrFail consumes one line and matches it against the anchored pattern
// re. On success the named captures are returned. On mismatch no further
// input is consumed and a ParseError naming the pattern and the offending
// text is returned; if the input had already ended the error kind is
// ErrMissingBoundary.
func MatchOrFail(re *regexp.Regexp, r *LineReader) (Captures, error) {
	_, caps, err := MatchLine(re, r)
	return caps, err
}

// MatchLine is MatchOrFail that also returns the consumed line without its
// terminator.
func MatchLine(re *regexp.Regexp, r *LineReader) (string, Captures, error) {
	if r.EOF() {
		return "", nil, models.MissingBoundary(re.String())
	}
	line := r.Next()
	text := Trim(line)
	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", nil, models.UnexpectedToken(r.Line(), re.String(), text)
	}
	caps := make(Captures, len(m))
	for i, name := range re.SubexpNames() {
		if name != "" {
			caps[name] = m[i]
		}
	}
	return text, caps, nil
}
