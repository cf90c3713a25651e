package strategy

import (
	"github.com/harvx/streamson/handler"
	"github.com/harvx/streamson/matcher"
	"github.com/harvx/streamson/streamer"
)

// Convert rewrites matched subtrees in place (spec.md §4.5): every byte of
// the document is emitted, except that a matched span's bytes are replaced
// by whatever its handler group's Feed/Start/End return. Nested matching is
// disabled the same way as Filter: outermost match wins, so a converting
// handler always sees a whole, self-contained subtree.
type Convert struct {
	c *core
}

// NewConvert returns a Convert with the given error policy.
func NewConvert(policy Policy) *Convert {
	gate := func(c *core, _ streamer.Token) bool { return len(c.active) == 0 }
	return &Convert{c: newCore(policy, gate)}
}

// AddMatcher registers a matcher and the handlers that rewrite the subtrees
// it selects.
func (v *Convert) AddMatcher(m matcher.Matcher, handlers ...handler.Handler) {
	v.c.addMatcher(m, handlers...)
}

// Process feeds chunk through the streamer and returns the converted output.
func (v *Convert) Process(chunk []byte) ([]byte, error) {
	var out []byte
	for _, b := range chunk {
		res, err := v.c.step(b)
		if err != nil {
			return out, err
		}
		out = wholeStreamAssemble(out, b, res)
	}
	return out, nil
}

// Terminate flushes any unterminated trailing match and reports the
// streamer's end-of-input outcome.
func (v *Convert) Terminate() ([]byte, error) {
	tres, err := v.c.terminate()
	var out []byte
	for _, am := range tres.closed {
		out = append(out, am.epilogue...)
	}
	for _, am := range tres.terminated {
		out = append(out, am.epilogue...)
	}
	return out, err
}
