package parser

import (
	"regexp"
	"strings"

	"github.com/rwi-modeling/backend/internal/models"
)

// Node is what a Container needs from its children: they serialize
// themselves, move, and produce independent copies.
type Node[T any] interface {
	Encode(sb *strings.Builder)
	Translate(offset models.Vec3)
	Clone() T
}

// ParseFunc reads exactly one entity from r.
type ParseFunc[T any] func(r *LineReader) (T, error)

// Layout configures the boundaries of one kind of begin_<X> ... end_<X> block.
//
// The head is either a single line matching Open (whose "name" capture
// becomes the entity name), a free-form region accumulated verbatim until a
// line matching EndHeader is peeked, or Open followed by such a region.
// Children are parsed until a line matches BeginTail, which starts verbatim
// tail capture up to and including the End line, or until a line matches End,
// which is consumed. With neither set, children run to end of input.
type Layout struct {
	Open       *regexp.Regexp
	OpenPrefix string // head line is OpenPrefix + name + "\n"
	EndHeader  Matcher
	BeginTail  Matcher
	End        Matcher
	Close      string // tail of a container built in memory
}

// Container is the recursive engine behind every block entity. It keeps the
// unparsed head and tail text verbatim so that an unmodified parse encodes
// back to the same bytes.
type Container[T Node[T]] struct {
	models.Named

	layout   *Layout
	parse    ParseFunc[T]
	children []T
	head     string
	tail     string

	// open line as read, reused while the name is unchanged
	openLine string
	openName string
}

// NewContainer returns an empty container configured by layout. Children are
// read with parse.
func NewContainer[T Node[T]](layout *Layout, parse ParseFunc[T]) Container[T] {
	if layout.Open == nil && layout.EndHeader == nil {
		panic("parser: layout needs an Open pattern or an EndHeader matcher")
	}
	return Container[T]{layout: layout, parse: parse, tail: layout.Close}
}

// Parse replaces the contents of c with the block read from r.
func (c *Container[T]) Parse(r *LineReader) error {
	c.children = nil
	if err := c.parseHead(r); err != nil {
		return err
	}
	l := c.layout
	for {
		line := r.Peek()
		if line == "" {
			if l.End != nil {
				return models.MissingBoundary(l.End.String())
			}
			c.tail = ""
			return nil
		}
		if l.BeginTail != nil && Matches(l.BeginTail, line) {
			return c.parseTail(r)
		}
		if l.End != nil && Matches(l.End, line) {
			c.tail = r.Next()
			return nil
		}
		child, err := c.parse(r)
		if err != nil {
			return err
		}
		c.children = append(c.children, child)
	}
}

func (c *Container[T]) parseHead(r *LineReader) error {
	c.head = ""
	c.openLine, c.openName = "", ""
	l := c.layout
	if l.Open != nil {
		line, caps, err := MatchLine(l.Open, r)
		if err != nil {
			return err
		}
		if err := c.SetName(caps["name"]); err != nil {
			return err
		}
		c.openLine, c.openName = line, c.Name()
	}
	if l.EndHeader == nil {
		return nil
	}
	var sb strings.Builder
	for {
		line := r.Peek()
		if line == "" {
			return models.MissingBoundary(l.EndHeader.String())
		}
		if Matches(l.EndHeader, line) {
			break
		}
		sb.WriteString(r.Next())
	}
	c.head = sb.String()
	return nil
}

func (c *Container[T]) parseTail(r *LineReader) error {
	end := c.layout.End
	var sb strings.Builder
	for {
		line := r.Next()
		if line == "" {
			if end != nil {
				return models.MissingBoundary(end.String())
			}
			break
		}
		sb.WriteString(line)
		if end != nil && Matches(end, line) {
			break
		}
	}
	c.tail = sb.String()
	return nil
}

// Encode writes the head, each child in order, then the tail. A parsed open
// line is written as read unless the entity was renamed.
func (c *Container[T]) Encode(sb *strings.Builder) {
	if c.layout.Open != nil {
		WriteOpenLine(sb, c.openLine, c.openName, c.layout.OpenPrefix, c.Name())
	}
	sb.WriteString(c.head)
	for _, child := range c.children {
		child.Encode(sb)
	}
	sb.WriteString(c.tail)
}

// WriteOpenLine writes raw when it was read for the current name, otherwise
// the canonical prefix + name line.
func WriteOpenLine(sb *strings.Builder, raw, rawName, prefix, name string) {
	if raw != "" && rawName == name {
		sb.WriteString(raw)
	} else {
		sb.WriteString(prefix)
		sb.WriteString(name)
	}
	sb.WriteByte('\n')
}

// Serialize returns the encoded text of c.
func (c *Container[T]) Serialize() string {
	var sb strings.Builder
	c.Encode(&sb)
	return sb.String()
}

// Children returns the children in insertion order. The slice is owned by c.
func (c *Container[T]) Children() []T {
	return c.children
}

// Len returns the number of children.
func (c *Container[T]) Len() int {
	return len(c.children)
}

// Append adds children at the end.
func (c *Container[T]) Append(children ...T) {
	c.children = append(c.children, children...)
}

// AppendNode adds child after checking it has the configured child type.
func (c *Container[T]) AppendNode(child any) error {
	typed, ok := child.(T)
	if !ok {
		var want T
		return models.NewFormatError(models.ErrInvalidChildType, "expected %T, got %T", want, child)
	}
	c.children = append(c.children, typed)
	return nil
}

// Clear removes every child. Head and tail are kept.
func (c *Container[T]) Clear() {
	c.children = nil
}

// Translate moves every child by offset.
func (c *Container[T]) Translate(offset models.Vec3) {
	for _, child := range c.children {
		child.Translate(offset)
	}
}

// Head returns the verbatim free-form head region.
func (c *Container[T]) Head() string {
	return c.head
}

// SetHead replaces the free-form head region.
func (c *Container[T]) SetHead(head string) {
	c.head = head
}

// Tail returns the verbatim tail region.
func (c *Container[T]) Tail() string {
	return c.tail
}

// SetTail replaces the tail region.
func (c *Container[T]) SetTail(tail string) {
	c.tail = tail
}

// Copy returns a deep copy of c; children are cloned.
func (c *Container[T]) Copy() Container[T] {
	cp := *c
	cp.children = make([]T, len(c.children))
	for i, child := range c.children {
		cp.children[i] = child.Clone()
	}
	return cp
}
