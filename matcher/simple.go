package matcher

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/harvx/streamson/jsonpath"
	"github.com/harvx/streamson/streamer"
)

// simpleElemKind tags one token of a compiled Simple pattern.
type simpleElemKind uint8

const (
	elemKeyLiteral simpleElemKind = iota
	elemKeyAny
	elemIndexSet
	elemIndexAny
	elemAny
	elemTailWildcard
)

// indexRange is an inclusive [Lo, Hi] range of array indices accepted by an
// elemIndexSet token. A single index N is stored as {Lo: N, Hi: N}.
type indexRange struct {
	Lo, Hi uint64
}

func (r indexRange) contains(i uint64) bool { return i >= r.Lo && i <= r.Hi }

type simpleElem struct {
	kind   simpleElemKind
	key    []byte
	ranges []indexRange
}

// Simple matches a path against a pattern over path elements: literal or
// wildcard object keys, literal/ranged/wildcard array indices, a single-
// element wildcard, and a trailing multi-element wildcard. See spec.md §4.3.
type Simple struct {
	elems []simpleElem
}

// Matches reports whether path satisfies the compiled pattern.
func (s Simple) Matches(path jsonpath.Path, _ streamer.MatchedKind) bool {
	pi := 0
	for ei, e := range s.elems {
		if e.kind == elemTailWildcard {
			return ei == len(s.elems)-1
		}
		if pi >= len(path) {
			return false
		}
		if !elementMatches(e, path[pi]) {
			return false
		}
		pi++
	}
	return pi == len(path)
}

func elementMatches(e simpleElem, actual jsonpath.Element) bool {
	switch e.kind {
	case elemKeyLiteral:
		return actual.Kind == jsonpath.KeyElement && string(actual.Key) == string(e.key)
	case elemKeyAny:
		return actual.Kind == jsonpath.KeyElement
	case elemIndexSet:
		if actual.Kind != jsonpath.IndexElement {
			return false
		}
		for _, r := range e.ranges {
			if r.contains(actual.Index) {
				return true
			}
		}
		return false
	case elemIndexAny:
		return actual.Kind == jsonpath.IndexElement
	case elemAny:
		return true
	default:
		return false
	}
}

// ParseSimple compiles a Simple pattern body (the part after "simple:") into
// a Simple matcher. Grammar, per spec.md §4.3:
//
//	{"literal"}   object key must equal literal, on-wire bytes
//	{}            any object key
//	[N]           array index N
//	[N1,N2-N3,…]  array index in the listed values/ranges
//	[]            any array index
//	?             any single element
//	*             zero or more elements (must be the final token)
func ParseSimple(body string) (Simple, error) {
	var elems []simpleElem
	i := 0
	for i < len(body) {
		switch body[i] {
		case '{':
			e, next, err := parseKeyToken(body, i)
			if err != nil {
				return Simple{}, err
			}
			elems = append(elems, e)
			i = next
		case '[':
			e, next, err := parseIndexToken(body, i)
			if err != nil {
				return Simple{}, err
			}
			elems = append(elems, e)
			i = next
		case '?':
			elems = append(elems, simpleElem{kind: elemAny})
			i++
		case '*':
			if i != len(body)-1 {
				return Simple{}, fmt.Errorf("matcher: '*' must be the final token in %q", body)
			}
			elems = append(elems, simpleElem{kind: elemTailWildcard})
			i++
		default:
			return Simple{}, fmt.Errorf("matcher: unexpected byte %q at offset %d in %q", body[i], i, body)
		}
	}
	return Simple{elems: elems}, nil
}

func parseKeyToken(body string, start int) (simpleElem, int, error) {
	if start+1 < len(body) && body[start+1] == '}' {
		return simpleElem{kind: elemKeyAny}, start + 2, nil
	}
	if start+1 >= len(body) || body[start+1] != '"' {
		return simpleElem{}, 0, fmt.Errorf("matcher: expected '\"' or '}' at offset %d in %q", start+1, body)
	}
	i := start + 2
	var key []byte
	for i < len(body) {
		c := body[i]
		if c == '\\' && i+1 < len(body) && (body[i+1] == '"' || body[i+1] == '\\') {
			key = append(key, body[i+1])
			i += 2
			continue
		}
		if c == '"' {
			break
		}
		key = append(key, c)
		i++
	}
	if i >= len(body) || body[i] != '"' {
		return simpleElem{}, 0, fmt.Errorf("matcher: unterminated key literal starting at offset %d in %q", start, body)
	}
	i++
	if i >= len(body) || body[i] != '}' {
		return simpleElem{}, 0, fmt.Errorf("matcher: expected '}' at offset %d in %q", i, body)
	}
	return simpleElem{kind: elemKeyLiteral, key: key}, i + 1, nil
}

func parseIndexToken(body string, start int) (simpleElem, int, error) {
	end := strings.IndexByte(body[start:], ']')
	if end < 0 {
		return simpleElem{}, 0, fmt.Errorf("matcher: unterminated index token starting at offset %d in %q", start, body)
	}
	end += start
	inner := body[start+1 : end]
	if inner == "" {
		return simpleElem{kind: elemIndexAny}, end + 1, nil
	}
	var ranges []indexRange
	for _, part := range strings.Split(inner, ",") {
		r, err := parseIndexRange(part)
		if err != nil {
			return simpleElem{}, 0, fmt.Errorf("matcher: %w in %q", err, body)
		}
		ranges = append(ranges, r)
	}
	return simpleElem{kind: elemIndexSet, ranges: ranges}, end + 1, nil
}

func parseIndexRange(part string) (indexRange, error) {
	if dash := strings.IndexByte(part, '-'); dash >= 0 {
		lo, err := strconv.ParseUint(part[:dash], 10, 64)
		if err != nil {
			return indexRange{}, fmt.Errorf("invalid range start %q: %w", part[:dash], err)
		}
		hi, err := strconv.ParseUint(part[dash+1:], 10, 64)
		if err != nil {
			return indexRange{}, fmt.Errorf("invalid range end %q: %w", part[dash+1:], err)
		}
		if hi < lo {
			return indexRange{}, fmt.Errorf("range end %d below start %d", hi, lo)
		}
		return indexRange{Lo: lo, Hi: hi}, nil
	}
	n, err := strconv.ParseUint(part, 10, 64)
	if err != nil {
		return indexRange{}, fmt.Errorf("invalid index %q: %w", part, err)
	}
	return indexRange{Lo: n, Hi: n}, nil
}
