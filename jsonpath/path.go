// Package jsonpath implements the ordered path-element stack used to
// identify a location inside a streamed JSON document, per spec.md §3 and
// §4.1. It has zero external dependencies: it is a thin DTO package, the
// same discipline the teacher repo applies to its own leaf data-type
// package.
package jsonpath

import (
	"fmt"
	"strconv"
	"strings"
)

// ElementKind distinguishes an object key from an array index within a Path.
type ElementKind uint8

const (
	// KeyElement is an object key, stored in its exact on-wire unescaped
	// form (the raw bytes between the quotes, with JSON escapes left
	// intact).
	KeyElement ElementKind = iota
	// IndexElement is a zero-based array index, incremented each time the
	// enclosing array closes an element.
	IndexElement
)

// Element is one segment of a Path: either an object Key or an array Index.
// Exactly one of Key/Index is meaningful, selected by Kind.
type Element struct {
	Kind  ElementKind
	Key   []byte
	Index uint64
}

// Key constructs a KeyElement from the given on-wire key bytes.
func Key(raw []byte) Element {
	return Element{Kind: KeyElement, Key: raw}
}

// Index constructs an IndexElement.
func Index(i uint64) Element {
	return Element{Kind: IndexElement, Index: i}
}

// Equal reports whether two elements are structurally identical.
func (e Element) Equal(other Element) bool {
	if e.Kind != other.Kind {
		return false
	}
	if e.Kind == IndexElement {
		return e.Index == other.Index
	}
	return string(e.Key) == string(other.Key)
}

// render appends the surface-syntax form of e to sb: `{"<raw-key>"}` with `"`
// and `\` escaped, or `[<index>]`.
func (e Element) render(sb *strings.Builder) {
	if e.Kind == IndexElement {
		sb.WriteByte('[')
		sb.WriteString(strconv.FormatUint(e.Index, 10))
		sb.WriteByte(']')
		return
	}
	sb.WriteString(`{"`)
	for _, b := range e.Key {
		if b == '"' || b == '\\' {
			sb.WriteByte('\\')
		}
		sb.WriteByte(b)
	}
	sb.WriteString(`"}`)
}

// Path is an ordered sequence of path Elements identifying a location in a
// JSON document. The zero value is the empty (root) path. Path is a value
// type: callers that retain a Path across further Push/Pop calls on the
// owner must Clone it first.
type Path []Element

// Push returns a new Path with e appended, using append semantics. A Path
// obtained via Clone has Len == Cap, so pushing onto it always allocates a
// new backing array; a Path with spare capacity (such as the result of Pop)
// is extended in place, overwriting whatever its backing array held there.
func (p Path) Push(e Element) Path {
	return append(p, e)
}

// Pop returns a new Path with the last element removed. Popping an empty
// Path returns an empty Path.
func (p Path) Pop() Path {
	if len(p) == 0 {
		return p
	}
	return p[:len(p)-1]
}

// Depth returns the number of elements in the path. The root path has depth
// zero.
func (p Path) Depth() int {
	return len(p)
}

// Last returns the final element and true, or the zero Element and false if
// p is empty.
func (p Path) Last() (Element, bool) {
	if len(p) == 0 {
		return Element{}, false
	}
	return p[len(p)-1], true
}

// Clone returns a defensive copy of p whose backing array is never aliased
// to the receiver's, safe to hand to a matcher or handler that may outlive
// further mutation of the original.
func (p Path) Clone() Path {
	if len(p) == 0 {
		return nil
	}
	cp := make(Path, len(p))
	copy(cp, p)
	return cp
}

// Equal reports whether two paths are structurally identical.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if !p[i].Equal(other[i]) {
			return false
		}
	}
	return true
}

// Render returns the canonical surface-syntax string for p: the
// concatenation of each element's display form, `{"k"}` for keys and `[i]`
// for indices, with no separators. The root path renders as "".
func (p Path) Render() string {
	if len(p) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, e := range p {
		e.render(&sb)
	}
	return sb.String()
}

// Parse parses the canonical surface syntax produced by Render back into a
// Path. The grammar is `( '{' quoted_string '}' | '[' digits ']' )*`; an
// empty string parses to the empty (root) path. Parse is the exact inverse
// of Render: Parse(p.Render()) always equals p for any Path p the streamer
// can produce.
func Parse(s string) (Path, error) {
	var out Path
	i := 0
	for i < len(s) {
		switch s[i] {
		case '{':
			key, next, err := parseKeySegment(s, i)
			if err != nil {
				return nil, err
			}
			out = out.Push(Key(key))
			i = next
		case '[':
			idx, next, err := parseIndexSegment(s, i)
			if err != nil {
				return nil, err
			}
			out = out.Push(Index(idx))
			i = next
		default:
			return nil, fmt.Errorf("jsonpath: unexpected byte %q at offset %d", s[i], i)
		}
	}
	return out, nil
}

// parseKeySegment parses `{"<raw-key>"}` starting at s[start] == '{' and
// returns the unescaped key bytes and the offset just past the closing '}'.
func parseKeySegment(s string, start int) ([]byte, int, error) {
	i := start + 1
	if i >= len(s) || s[i] != '"' {
		return nil, 0, fmt.Errorf("jsonpath: expected '\"' at offset %d", i)
	}
	i++
	var key []byte
	for i < len(s) {
		c := s[i]
		if c == '\\' && i+1 < len(s) && (s[i+1] == '"' || s[i+1] == '\\') {
			key = append(key, s[i+1])
			i += 2
			continue
		}
		if c == '"' {
			break
		}
		key = append(key, c)
		i++
	}
	if i >= len(s) || s[i] != '"' {
		return nil, 0, fmt.Errorf("jsonpath: unterminated key starting at offset %d", start)
	}
	i++
	if i >= len(s) || s[i] != '}' {
		return nil, 0, fmt.Errorf("jsonpath: expected '}' at offset %d", i)
	}
	return key, i + 1, nil
}

// parseIndexSegment parses `[<digits>]` starting at s[start] == '[' and
// returns the index value and the offset just past the closing ']'.
func parseIndexSegment(s string, start int) (uint64, int, error) {
	i := start + 1
	digitsStart := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == digitsStart {
		return 0, 0, fmt.Errorf("jsonpath: expected digits at offset %d", digitsStart)
	}
	if i >= len(s) || s[i] != ']' {
		return 0, 0, fmt.Errorf("jsonpath: expected ']' at offset %d", i)
	}
	idx, err := strconv.ParseUint(s[digitsStart:i], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("jsonpath: invalid index at offset %d: %w", digitsStart, err)
	}
	return idx, i + 1, nil
}
