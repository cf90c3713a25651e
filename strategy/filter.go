package strategy

import (
	"github.com/harvx/streamson/handler"
	"github.com/harvx/streamson/matcher"
	"github.com/harvx/streamson/streamer"
)

// Filter removes matched subtrees from the output (spec.md §4.5). Nested
// matching is disabled while a subtree is being dropped: only the outermost
// match for a given region takes effect. A filtered object member also
// elides its key and colon and the one surrounding comma that keeps the
// container well-formed; a filtered array element elides one surrounding
// comma. Handlers attached to the filter matcher still see Start/Feed/End
// over the removed bytes, so side-effecting handlers can export them.
type Filter struct {
	c *core

	// pending holds the bytes of the most recent retractable span (a
	// leading comma, and/or an object member's key+colon) that has not yet
	// been committed to the output. It is flushed once we know the value
	// that follows is being kept, and discarded if that value is filtered.
	pending []byte

	// suppressNextComma is set when a filtered member had no leading comma
	// of its own to retract (it was the first member in its container): the
	// comma that would otherwise follow it, separating it from the next
	// surviving member, must be dropped instead.
	suppressNextComma bool

	// filtering is true for the bytes of a subtree currently being dropped.
	filtering bool
}

// NewFilter returns a Filter with the given error policy.
func NewFilter(policy Policy) *Filter {
	gate := func(c *core, _ streamer.Token) bool { return len(c.active) == 0 }
	return &Filter{c: newCore(policy, gate)}
}

// AddMatcher registers a matcher and the handlers observing/removed bytes it
// is attached to.
func (f *Filter) AddMatcher(m matcher.Matcher, handlers ...handler.Handler) {
	f.c.addMatcher(m, handlers...)
}

// Process feeds chunk through the streamer and returns the bytes that
// survive filtering.
func (f *Filter) Process(chunk []byte) ([]byte, error) {
	var out []byte
	for _, b := range chunk {
		res, err := f.c.step(b)
		if err != nil {
			return out, err
		}
		out = f.advance(out, b, res)
	}
	return out, nil
}

// Terminate flushes any still-pending (unfiltered) separator bytes and
// reports the streamer's end-of-input outcome.
func (f *Filter) Terminate() ([]byte, error) {
	_, err := f.c.terminate()
	out := f.pending
	f.pending = nil
	return out, err
}

func (f *Filter) advance(out []byte, b byte, res stepResult) []byte {
	// Tokens before the last belong to the byte that preceded b (a Number's
	// boundary). If that closed our active filtered match, filtering ends
	// here, but b itself belongs to whatever the last token says, not to
	// the match that just closed.
	if len(res.closedEarly) > 0 {
		f.filtering = false
	}

	if f.filtering {
		if len(res.closedNow) > 0 {
			f.filtering = false
		}
		return out
	}

	last := res.tokens[len(res.tokens)-1]

	switch {
	case len(res.opened) > 0:
		// A match begins at this byte: the value is being filtered. Retract
		// a leading comma if one is pending; otherwise this was the first
		// member/element in its container, so the comma that will follow it
		// must be dropped instead.
		if len(f.pending) > 0 && f.pending[0] == ',' {
			f.pending = nil
		} else {
			f.pending = nil
			f.suppressNextComma = true
		}
		f.filtering = true
		return out

	case last.Kind == streamer.Start:
		// A value begins and nothing matched it: it is kept. Commit
		// whatever separator/key span was pending ahead of it.
		out = append(out, f.pending...)
		f.pending = nil
		return append(out, b)

	case b == ',' && last.Kind == streamer.Separator:
		if f.suppressNextComma {
			f.suppressNextComma = false
			return out
		}
		out = append(out, f.pending...)
		f.pending = []byte{b}
		return out

	case last.Kind == streamer.End || last.Kind == streamer.Idle:
		// A container close, or whitespace between documents: never part of
		// a retractable span. Commit whatever is pending, then the byte.
		out = append(out, f.pending...)
		f.pending = nil
		return append(out, b)

	default:
		// Whitespace, an object key byte, or the colon after it: part of a
		// span that is not yet resolved as kept or filtered. Hold it.
		f.pending = append(f.pending, b)
		return out
	}
}
