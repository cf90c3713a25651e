package handler

import (
	"sync"

	"github.com/harvx/streamson/jsonpath"
	"github.com/harvx/streamson/streamer"
)

// Replace is a converter Handler that discards a matched value's bytes
// entirely and substitutes a fixed literal, e.g. redacting a password field
// as spec.md's Convert scenario (S3) does. It is not buffering: it produces
// its whole replacement at Start and emits nothing further from Feed or End.
type Replace struct {
	mu      sync.Mutex
	literal []byte
}

// NewReplace returns a Replace handler that substitutes literal for every
// match it is attached to.
func NewReplace(literal []byte) *Replace {
	return &Replace{literal: literal}
}

// Start emits the replacement literal as the match's entire output.
func (r *Replace) Start(jsonpath.Path, MatchID, streamer.MatchedKind) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.literal, nil
}

// Feed discards the original bytes; Replace already emitted its output at Start.
func (r *Replace) Feed([]byte, MatchID) ([]byte, error) { return []byte{}, nil }

// End emits nothing further.
func (r *Replace) End(jsonpath.Path, MatchID, streamer.MatchedKind) ([]byte, error) {
	return nil, nil
}

// IsConverter reports true: Replace's output replaces the matched bytes.
func (r *Replace) IsConverter() bool { return true }

// Buffering reports false: Replace needs no accumulated state.
func (r *Replace) Buffering() bool { return false }
