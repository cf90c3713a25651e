package streamer

import (
	"fmt"
	"log/slog"

	"github.com/harvx/streamson/internal/xlog"
	"github.com/harvx/streamson/jsonpath"
	"github.com/harvx/streamson/streamsonerr"
)

// awaitState tracks what a frame expects its next structural byte to be.
type awaitState uint8

const (
	awaitKeyOrCloseObject awaitState = iota
	awaitColonAfterKey
	awaitValueAfterColon
	awaitCommaOrCloseObject
	awaitValueOrCloseArray
	awaitCommaOrCloseArray
)

// frame is one entry of the container stack: an open object or array and
// what it is currently waiting for.
type frame struct {
	kind     MatchedKind
	awaiting awaitState
}

// scanKind selects which byte-level sub-scanner owns the next Feed call.
type scanKind uint8

const (
	scanNone scanKind = iota
	scanString
	scanKey
	scanNumber
	scanLiteral
)

// scanState is the state of an in-progress scalar scan (string, object key,
// number, or boolean/null literal). Only one of these is ever active.
type scanState struct {
	kind         scanKind
	valueKind    MatchedKind
	escaping     bool
	hexRemaining int
	buf          []byte // accumulated raw bytes, used by scanKey only
	literal      string // remaining expected bytes for scanLiteral
	literalPos   int
	lastByte     byte // most recently accepted digit byte, used by scanNumber only
}

// Streamer is a resumable, single-byte-fed JSON lexer. It holds no reference
// to the input: bytes are pushed in one at a time via Feed, and the zero
// Streamer value is not usable — construct one with New.
type Streamer struct {
	pos    uint64
	path   jsonpath.Path
	frames []frame
	scan   scanState
	err    error
	log    *slog.Logger
}

// New returns a Streamer ready to accept bytes at document start.
func New() *Streamer {
	return &Streamer{log: xlog.For("streamer")}
}

// Path returns a defensive snapshot of the streamer's current path.
func (s *Streamer) Path() jsonpath.Path {
	return s.path.Clone()
}

// Feed absorbs a single input byte and returns the token(s) it produced. A
// byte usually produces exactly one token; a Number value's terminating byte
// produces two, because that byte belongs to whatever follows the number and
// is reprocessed once the number's End token is emitted. Once Feed returns a
// non-nil error the Streamer is poisoned: every subsequent call returns the
// same error.
func (s *Streamer) Feed(b byte) ([]Token, error) {
	if s.err != nil {
		return nil, s.err
	}
	toks, err := s.feedByte(b)
	if err != nil {
		s.err = err
		s.log.Debug("poisoned", "err", err, "pos", s.pos)
		return toks, err
	}
	s.pos++
	return toks, nil
}

// Terminate signals end of input. It is an error to call Terminate with an
// open container or a value mid-scan, except a Number, which has no closing
// delimiter and is finalized cleanly if it is not nested inside an open
// container. Terminate is idempotent: once it has reported success or
// failure, further calls repeat that outcome without side effects.
func (s *Streamer) Terminate() ([]Token, error) {
	if s.err != nil {
		return nil, s.err
	}
	switch s.scan.kind {
	case scanNumber:
		tok := Token{Kind: End, MatchedKind: Number, Path: s.path.Clone(), ByteIndex: s.pos - 1, Byte: s.scan.lastByte}
		s.notifyParentOfValueEnd()
		s.scan.kind = scanNone
		if len(s.frames) > 0 {
			s.err = streamsonerr.Incomplete("streamer.Terminate", fmt.Errorf("unterminated container at depth %d", len(s.frames)))
			return []Token{tok}, s.err
		}
		return []Token{tok}, nil
	case scanString, scanKey, scanLiteral:
		s.err = streamsonerr.Incomplete("streamer.Terminate", fmt.Errorf("input ended mid-value at byte %d", s.pos))
		return nil, s.err
	default:
		if len(s.frames) > 0 {
			s.err = streamsonerr.Incomplete("streamer.Terminate", fmt.Errorf("unterminated container at depth %d", len(s.frames)))
			return nil, s.err
		}
		return nil, nil
	}
}

func (s *Streamer) feedByte(b byte) ([]Token, error) {
	switch s.scan.kind {
	case scanString:
		return s.feedScanString(b)
	case scanKey:
		return s.feedScanKey(b)
	case scanNumber:
		return s.feedScanNumber(b)
	case scanLiteral:
		return s.feedScanLiteral(b)
	default:
		return s.feedStructural(b)
	}
}

func (s *Streamer) feedStructural(b byte) ([]Token, error) {
	if len(s.frames) == 0 {
		if isWhitespace(b) {
			return []Token{{Kind: Idle, Path: s.path.Clone(), ByteIndex: s.pos, Byte: b}}, nil
		}
		if b == '}' || b == ']' {
			return nil, streamsonerr.Input("streamer: unbalanced bracket", fmt.Errorf("stray %q at top level", b))
		}
		return s.startValue(b)
	}

	f := &s.frames[len(s.frames)-1]
	switch f.kind {
	case Object:
		return s.feedObjectFrame(f, b)
	default:
		return s.feedArrayFrame(f, b)
	}
}

func (s *Streamer) feedObjectFrame(f *frame, b byte) ([]Token, error) {
	switch f.awaiting {
	case awaitKeyOrCloseObject:
		if isWhitespace(b) {
			return []Token{s.pendingTok(noKind, b)}, nil
		}
		if b == '}' {
			return s.closeContainer(Object, b)
		}
		if b == ']' {
			return nil, streamsonerr.Input("streamer: unbalanced bracket", fmt.Errorf("']' closing an object"))
		}
		if b != '"' {
			return nil, streamsonerr.Input("streamer: unexpected byte", fmt.Errorf("expected object key, got %q", b))
		}
		s.path = s.path.Push(jsonpath.Key(nil))
		s.scan = scanState{kind: scanKey}
		return []Token{s.objectKeyTok(b)}, nil

	case awaitColonAfterKey:
		if isWhitespace(b) {
			return []Token{s.pendingTok(noKind, b)}, nil
		}
		if b != ':' {
			return nil, streamsonerr.Input("streamer: unexpected byte", fmt.Errorf("expected ':', got %q", b))
		}
		f.awaiting = awaitValueAfterColon
		return []Token{{Kind: Separator, Path: s.path.Clone(), ByteIndex: s.pos, Byte: b, InObjectKey: true}}, nil

	case awaitValueAfterColon:
		if isWhitespace(b) {
			return []Token{s.pendingTok(noKind, b)}, nil
		}
		return s.startValue(b)

	default: // awaitCommaOrCloseObject
		if isWhitespace(b) {
			return []Token{s.pendingTok(noKind, b)}, nil
		}
		if b == '}' {
			return s.closeContainer(Object, b)
		}
		if b != ',' {
			return nil, streamsonerr.Input("streamer: unexpected byte", fmt.Errorf("expected ',' or '}', got %q", b))
		}
		f.awaiting = awaitKeyOrCloseObject
		return []Token{{Kind: Separator, Path: s.path.Clone(), ByteIndex: s.pos, Byte: b}}, nil
	}
}

func (s *Streamer) feedArrayFrame(f *frame, b byte) ([]Token, error) {
	switch f.awaiting {
	case awaitValueOrCloseArray:
		if isWhitespace(b) {
			return []Token{s.pendingTok(noKind, b)}, nil
		}
		if b == ']' {
			return s.closeContainer(Array, b)
		}
		if b == '}' {
			return nil, streamsonerr.Input("streamer: unbalanced bracket", fmt.Errorf("'}' closing an array"))
		}
		return s.startValue(b)

	default: // awaitCommaOrCloseArray
		if isWhitespace(b) {
			return []Token{s.pendingTok(noKind, b)}, nil
		}
		if b == ']' {
			return s.closeContainer(Array, b)
		}
		if b != ',' {
			return nil, streamsonerr.Input("streamer: unexpected byte", fmt.Errorf("expected ',' or ']', got %q", b))
		}
		last, _ := s.path.Last()
		s.path[len(s.path)-1] = jsonpath.Index(last.Index + 1)
		f.awaiting = awaitValueOrCloseArray
		return []Token{{Kind: Separator, Path: s.path.Clone(), ByteIndex: s.pos, Byte: b}}, nil
	}
}

// startValue dispatches on the first byte of a value. The path at this point
// already reflects the value's own position (a key or index already pushed
// by the caller, or the empty root path at document level).
func (s *Streamer) startValue(b byte) ([]Token, error) {
	switch {
	case b == '{':
		tok := Token{Kind: Start, MatchedKind: Object, Path: s.path.Clone(), ByteIndex: s.pos, Byte: b}
		s.frames = append(s.frames, frame{kind: Object, awaiting: awaitKeyOrCloseObject})
		return []Token{tok}, nil

	case b == '[':
		tok := Token{Kind: Start, MatchedKind: Array, Path: s.path.Clone(), ByteIndex: s.pos, Byte: b}
		s.frames = append(s.frames, frame{kind: Array, awaiting: awaitValueOrCloseArray})
		s.path = s.path.Push(jsonpath.Index(0))
		return []Token{tok}, nil

	case b == '"':
		tok := Token{Kind: Start, MatchedKind: String, Path: s.path.Clone(), ByteIndex: s.pos, Byte: b}
		s.scan = scanState{kind: scanString, valueKind: String}
		return []Token{tok}, nil

	case b == '-' || (b >= '0' && b <= '9'):
		tok := Token{Kind: Start, MatchedKind: Number, Path: s.path.Clone(), ByteIndex: s.pos, Byte: b}
		s.scan = scanState{kind: scanNumber, valueKind: Number, lastByte: b}
		return []Token{tok}, nil

	case b == 't':
		tok := Token{Kind: Start, MatchedKind: Boolean, Path: s.path.Clone(), ByteIndex: s.pos, Byte: b}
		s.scan = scanState{kind: scanLiteral, valueKind: Boolean, literal: "rue"}
		return []Token{tok}, nil

	case b == 'f':
		tok := Token{Kind: Start, MatchedKind: Boolean, Path: s.path.Clone(), ByteIndex: s.pos, Byte: b}
		s.scan = scanState{kind: scanLiteral, valueKind: Boolean, literal: "alse"}
		return []Token{tok}, nil

	case b == 'n':
		tok := Token{Kind: Start, MatchedKind: Null, Path: s.path.Clone(), ByteIndex: s.pos, Byte: b}
		s.scan = scanState{kind: scanLiteral, valueKind: Null, literal: "ull"}
		return []Token{tok}, nil

	default:
		return nil, streamsonerr.Input("streamer: unexpected byte", fmt.Errorf("cannot start a value with %q", b))
	}
}

func (s *Streamer) feedScanString(b byte) ([]Token, error) {
	switch {
	case s.scan.hexRemaining > 0:
		if !isHexDigit(b) {
			return nil, streamsonerr.Input("streamer: string escape", fmt.Errorf("invalid \\u hex digit %q", b))
		}
		s.scan.hexRemaining--
		return []Token{s.pendingTok(String, b)}, nil
	case s.scan.escaping:
		if !isValidEscape(b) {
			return nil, streamsonerr.Input("streamer: string escape", fmt.Errorf("unknown escape %q", b))
		}
		s.scan.escaping = false
		if b == 'u' {
			s.scan.hexRemaining = 4
		}
		return []Token{s.pendingTok(String, b)}, nil
	case b == '\\':
		s.scan.escaping = true
		return []Token{s.pendingTok(String, b)}, nil
	case b == '"':
		return []Token{s.endValue(String, b)}, nil
	default:
		return []Token{s.pendingTok(String, b)}, nil
	}
}

func (s *Streamer) feedScanKey(b byte) ([]Token, error) {
	switch {
	case s.scan.hexRemaining > 0:
		if !isHexDigit(b) {
			return nil, streamsonerr.Input("streamer: string escape", fmt.Errorf("invalid \\u hex digit %q", b))
		}
		s.scan.hexRemaining--
		s.scan.buf = append(s.scan.buf, b)
		return []Token{s.objectKeyTok(b)}, nil
	case s.scan.escaping:
		if !isValidEscape(b) {
			return nil, streamsonerr.Input("streamer: string escape", fmt.Errorf("unknown escape %q", b))
		}
		s.scan.escaping = false
		s.scan.buf = append(s.scan.buf, b)
		if b == 'u' {
			s.scan.hexRemaining = 4
		}
		return []Token{s.objectKeyTok(b)}, nil
	case b == '\\':
		s.scan.escaping = true
		s.scan.buf = append(s.scan.buf, b)
		return []Token{s.objectKeyTok(b)}, nil
	case b == '"':
		s.path[len(s.path)-1].Key = s.scan.buf
		s.scan = scanState{kind: scanNone}
		s.frames[len(s.frames)-1].awaiting = awaitColonAfterKey
		return []Token{s.objectKeyTok(b)}, nil
	default:
		s.scan.buf = append(s.scan.buf, b)
		return []Token{s.objectKeyTok(b)}, nil
	}
}

func (s *Streamer) feedScanNumber(b byte) ([]Token, error) {
	if isNumberByte(b) {
		s.scan.lastByte = b
		return []Token{s.pendingTok(Number, b)}, nil
	}
	last := s.scan.lastByte
	tok := Token{Kind: End, MatchedKind: Number, Path: s.path.Clone(), ByteIndex: s.pos - 1, Byte: last}
	s.notifyParentOfValueEnd()
	s.scan = scanState{kind: scanNone}
	rest, err := s.feedStructural(b)
	return append([]Token{tok}, rest...), err
}

func (s *Streamer) feedScanLiteral(b byte) ([]Token, error) {
	want := s.scan.literal[s.scan.literalPos]
	if b != want {
		return nil, streamsonerr.Input("streamer: literal", fmt.Errorf("unexpected byte %q in literal, want %q", b, want))
	}
	s.scan.literalPos++
	if s.scan.literalPos == len(s.scan.literal) {
		return []Token{s.endValue(s.scan.valueKind, b)}, nil
	}
	return []Token{s.pendingTok(s.scan.valueKind, b)}, nil
}

// endValue closes a scalar value (String, Number via Terminate, Boolean, or
// Null), updates the parent frame's expectation, and returns its End token.
func (s *Streamer) endValue(kind MatchedKind, b byte) Token {
	tok := Token{Kind: End, MatchedKind: kind, Path: s.path.Clone(), ByteIndex: s.pos, Byte: b}
	s.notifyParentOfValueEnd()
	s.scan = scanState{kind: scanNone}
	return tok
}

// closeContainer closes an Object or Array at the current byte, popping the
// Array's own index element first so that entry and exit paths match.
func (s *Streamer) closeContainer(kind MatchedKind, b byte) ([]Token, error) {
	if kind == Array {
		s.path = s.path.Pop()
	}
	tok := Token{Kind: End, MatchedKind: kind, Path: s.path.Clone(), ByteIndex: s.pos, Byte: b}
	s.frames = s.frames[:len(s.frames)-1]
	s.notifyParentOfValueEnd()
	return []Token{tok}, nil
}

// notifyParentOfValueEnd updates the enclosing frame's expectation after a
// value (scalar or container) closes. An object parent loses the member key
// it pushed at key-scan time; an array parent keeps its index element,
// incrementing it only when the next comma is seen.
func (s *Streamer) notifyParentOfValueEnd() {
	if len(s.frames) == 0 {
		return
	}
	parent := &s.frames[len(s.frames)-1]
	if parent.kind == Object {
		s.path = s.path.Pop()
		parent.awaiting = awaitCommaOrCloseObject
	} else {
		parent.awaiting = awaitCommaOrCloseArray
	}
}

func (s *Streamer) pendingTok(kind MatchedKind, b byte) Token {
	return Token{Kind: Pending, MatchedKind: kind, Path: s.path.Clone(), ByteIndex: s.pos, Byte: b}
}

// objectKeyTok builds a Pending token for a byte that is part of an object
// member's key scan (opening quote through closing quote, inclusive).
func (s *Streamer) objectKeyTok(b byte) Token {
	tok := s.pendingTok(noKind, b)
	tok.InObjectKey = true
	return tok
}

func isWhitespace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func isNumberByte(b byte) bool {
	return (b >= '0' && b <= '9') || b == 'e' || b == 'E' || b == '+' || b == '-' || b == '.'
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func isValidEscape(b byte) bool {
	switch b {
	case '"', '\\', '/', 'b', 'f', 'n', 'r', 't', 'u':
		return true
	default:
		return false
	}
}
