// Package streamer implements the incremental, single-byte, resumable JSON
// lexer described in spec.md §4.2: bytes are fed in one at a time and the
// streamer emits structural tokens together with a snapshot of the current
// jsonpath.Path.
package streamer

import "github.com/harvx/streamson/jsonpath"

// MatchedKind is the JSON value type observed at a value's first
// non-whitespace byte. The zero value means "no kind" and is used on tokens
// that are not tied to a specific value (Pending between structural bytes,
// Idle between documents).
type MatchedKind uint8

const (
	noKind MatchedKind = iota
	// Object marks a '{' value.
	Object
	// Array marks a '[' value.
	Array
	// String marks a '"' value.
	String
	// Number marks a numeric value ('-' or a digit).
	Number
	// Boolean marks a true/false value.
	Boolean
	// Null marks a null value.
	Null
)

func (k MatchedKind) String() string {
	switch k {
	case Object:
		return "Object"
	case Array:
		return "Array"
	case String:
		return "String"
	case Number:
		return "Number"
	case Boolean:
		return "Boolean"
	case Null:
		return "Null"
	default:
		return "None"
	}
}

// TokenKind classifies a Token. See spec.md §3.
type TokenKind uint8

const (
	// Pending indicates no token-worthy event occurred for this byte; it
	// was consumed as part of an in-progress value or structural wait.
	Pending TokenKind = iota
	// Idle indicates the byte was whitespace outside any JSON document
	// (before the first document, or between concatenated documents).
	Idle
	// Start indicates a value began at this byte; Token.MatchedKind holds
	// the value's type.
	Start
	// End indicates a value ended at this byte; Token.MatchedKind holds
	// the value's type.
	End
	// Separator indicates a structural comma or colon was consumed.
	Separator
)

func (k TokenKind) String() string {
	switch k {
	case Pending:
		return "Pending"
	case Idle:
		return "Idle"
	case Start:
		return "Start"
	case End:
		return "End"
	case Separator:
		return "Separator"
	default:
		return "Unknown"
	}
}

// Token is a single structural event emitted by the streamer for one
// absorbed byte. Multiple Tokens may result from a single Feed call: a
// Number value's closing byte is not part of the number, so the streamer
// first emits the Number's End token and then reprocesses that same byte
// through its ordinary structural dispatch, yielding a second token.
type Token struct {
	// Kind classifies the event.
	Kind TokenKind

	// MatchedKind is populated on Start/End tokens (and, where known, on
	// Pending tokens produced mid-value) with the value's JSON type.
	MatchedKind MatchedKind

	// Path is a defensive snapshot of the path at the moment this token
	// was produced; it is always safe for the caller to retain.
	Path jsonpath.Path

	// ByteIndex is the absolute offset (0-based, from the start of all
	// input ever fed to this Streamer) of the byte this token describes.
	ByteIndex uint64

	// Byte is the raw input byte this token describes.
	Byte byte

	// InObjectKey reports whether Byte is part of an object member's key
	// (its opening quote through the following colon, inclusive).
	InObjectKey bool
}
