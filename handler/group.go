package handler

import (
	"github.com/harvx/streamson/jsonpath"
	"github.com/harvx/streamson/streamer"
)

// Group composes an ordered list of Handlers into a single Handler, per
// spec.md §4.4's chaining rule: each handler in turn receives the current
// byte range; a converter's output becomes the input to the next handler, a
// non-converter observes that same input and leaves it unchanged for the
// next handler. The group's own IsConverter is the OR of its members; its
// aggregate output is the rightmost converter's output, or the unmodified
// input if no member converts.
type Group struct {
	handlers []Handler
}

// NewGroup returns a Group chaining handlers in the given order. A Group of
// zero handlers is a valid, inert passthrough Handler.
func NewGroup(handlers ...Handler) *Group {
	return &Group{handlers: handlers}
}

// IsConverter reports whether any member handler converts.
func (g *Group) IsConverter() bool {
	for _, h := range g.handlers {
		if h.IsConverter() {
			return true
		}
	}
	return false
}

// Buffering reports whether any member handler needs the full matched value
// before it can produce output.
func (g *Group) Buffering() bool {
	for _, h := range g.handlers {
		if h.Buffering() {
			return true
		}
	}
	return false
}

// Start chains each member's Start prologue. A non-converter's return value
// is observational only and does not appear in the aggregate prologue.
func (g *Group) Start(path jsonpath.Path, id MatchID, kind streamer.MatchedKind) ([]byte, error) {
	var current []byte
	for _, h := range g.handlers {
		out, err := h.Start(path, id, kind)
		if err != nil {
			return nil, err
		}
		if h.IsConverter() && out != nil {
			current = out
		}
	}
	return current, nil
}

// Feed chains chunk through each member in order.
func (g *Group) Feed(chunk []byte, id MatchID) ([]byte, error) {
	current := chunk
	for _, h := range g.handlers {
		out, err := h.Feed(current, id)
		if err != nil {
			return nil, err
		}
		if h.IsConverter() && out != nil {
			current = out
		}
	}
	return current, nil
}

// End chains each member's End epilogue, mirroring Start.
func (g *Group) End(path jsonpath.Path, id MatchID, kind streamer.MatchedKind) ([]byte, error) {
	var current []byte
	for _, h := range g.handlers {
		out, err := h.End(path, id, kind)
		if err != nil {
			return nil, err
		}
		if h.IsConverter() && out != nil {
			current = out
		}
	}
	return current, nil
}

// Terminate flushes every member that implements Terminator, in order,
// concatenating their outputs.
func (g *Group) Terminate() ([]byte, error) {
	var out []byte
	for _, h := range g.handlers {
		t, ok := h.(Terminator)
		if !ok {
			continue
		}
		flushed, err := t.Terminate()
		if err != nil {
			return nil, err
		}
		out = append(out, flushed...)
	}
	return out, nil
}
