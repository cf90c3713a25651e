package strategy

import (
	"github.com/harvx/streamson/handler"
	"github.com/harvx/streamson/matcher"
	"github.com/harvx/streamson/streamer"
)

// All treats every top-level value as matched without needing a matcher to
// select it (spec.md §4.5): each registration's matcher is tested only at
// depth 0, so it synthesizes one match per registration per top-level
// document value (several registrations may each independently match the
// same top-level value; a concatenated stream of documents produces one
// match per document). It otherwise behaves like Convert, emitting the whole
// input with any converted spans substituted in. Pairing with matcher.All
// makes a registration's handler see the complete document on every call.
type All struct {
	c *core
}

// NewAll returns an All with the given error policy.
func NewAll(policy Policy) *All {
	gate := func(_ *core, tok streamer.Token) bool { return tok.Path.Depth() == 0 }
	return &All{c: newCore(policy, gate)}
}

// AddMatcher registers a matcher and the handlers invoked over every
// top-level value it matches.
func (a *All) AddMatcher(m matcher.Matcher, handlers ...handler.Handler) {
	a.c.addMatcher(m, handlers...)
}

// Process feeds chunk through the streamer and returns the resulting output.
func (a *All) Process(chunk []byte) ([]byte, error) {
	var out []byte
	for _, b := range chunk {
		res, err := a.c.step(b)
		if err != nil {
			return out, err
		}
		out = wholeStreamAssemble(out, b, res)
	}
	return out, nil
}

// Terminate flushes any unterminated trailing match and reports the
// streamer's end-of-input outcome.
func (a *All) Terminate() ([]byte, error) {
	tres, err := a.c.terminate()
	var out []byte
	for _, am := range tres.closed {
		out = append(out, am.epilogue...)
	}
	for _, am := range tres.terminated {
		out = append(out, am.epilogue...)
	}
	return out, err
}
