// Package handler defines the start/feed/end contract a Strategy drives over
// matched byte spans, per spec.md §3/§4.4, plus Group, which composes an
// ordered list of handlers into a single one. All implementations must be
// safe for concurrent use: a Handler may be attached to several Strategy
// instances, potentially running on different goroutines.
package handler

import (
	"github.com/harvx/streamson/jsonpath"
	"github.com/harvx/streamson/streamer"
)

// MatchID distinguishes overlapping or nested matches delivered to the same
// Handler. It is issued by a Strategy at Start and retired at the paired
// End.
type MatchID uint64

// Handler observes or rewrites a matched byte span as it streams past.
// Implementations own their mutable state behind an interior-mutation
// discipline: acquire a lock only for the duration of a single Start/Feed/End
// call and never hold it across calls to another Handler or across Strategy
// invocations (spec.md §5).
type Handler interface {
	// Start is called when a match begins. The returned bytes, if any, are
	// a prologue emitted ahead of the matched span's own bytes.
	Start(path jsonpath.Path, id MatchID, kind streamer.MatchedKind) ([]byte, error)

	// Feed delivers the next chunk of a matched span's raw bytes. The
	// returned bytes, if non-nil, are the transformed chunk; nil means
	// passthrough. Non-converter handlers' return value is ignored.
	Feed(chunk []byte, id MatchID) ([]byte, error)

	// End is called when a match closes. The returned bytes, if any, are
	// an epilogue emitted after the matched span's own bytes.
	End(path jsonpath.Path, id MatchID, kind streamer.MatchedKind) ([]byte, error)

	// IsConverter reports whether this Handler's output is meant to
	// replace the matched bytes in modes where conversion applies
	// (Convert, All, Extract).
	IsConverter() bool

	// Buffering reports whether this Handler needs the whole matched
	// value accumulated before it can produce output, deferring all of
	// its output to End.
	Buffering() bool
}

// Terminator is an optional capability a Handler may implement to flush
// incomplete internal state when a Strategy is told no more input is
// coming.
type Terminator interface {
	Terminate() ([]byte, error)
}
