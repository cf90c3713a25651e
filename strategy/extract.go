package strategy

import (
	"github.com/harvx/streamson/handler"
	"github.com/harvx/streamson/matcher"
	"github.com/harvx/streamson/streamer"
)

// Extract emits only matched subtrees, discarding everything else (spec.md
// §4.5): the inverse of Filter. Nested matching is disabled the same way as
// Filter and Convert, so a matched subtree is extracted whole. When several
// registrations match the identical span, each is extracted independently
// and the results are concatenated, not deduplicated.
type Extract struct {
	c *core

	// Separator is written between two consecutive extracted values. Empty
	// by default (values are simply concatenated).
	Separator []byte
	// Before is written once, ahead of the first extracted value.
	Before []byte
	// After is written once, at Terminate, following the last extracted
	// value.
	After []byte

	wroteBefore bool
	wroteAny    bool
	wroteAfter  bool
}

// NewExtract returns an Extract with the given error policy.
func NewExtract(policy Policy) *Extract {
	gate := func(c *core, _ streamer.Token) bool { return len(c.active) == 0 }
	return &Extract{c: newCore(policy, gate)}
}

// AddMatcher registers a matcher and the handlers that produce the bytes
// extracted for each subtree it selects.
func (e *Extract) AddMatcher(m matcher.Matcher, handlers ...handler.Handler) {
	e.c.addMatcher(m, handlers...)
}

// Process feeds chunk through the streamer and returns the extracted bytes.
func (e *Extract) Process(chunk []byte) ([]byte, error) {
	var out []byte
	for _, b := range chunk {
		res, err := e.c.step(b)
		if err != nil {
			return out, err
		}
		out = e.advance(out, b, res)
	}
	return out, nil
}

func (e *Extract) advance(out []byte, b byte, res stepResult) []byte {
	for _, am := range res.closedEarly {
		out = append(out, am.epilogue...)
	}

	for _, am := range res.opened {
		out = e.emitLeader(out)
		out = append(out, am.prologue...)
	}

	for _, am := range res.delivered {
		if replaced, ok := res.feedOut[am.id]; ok {
			out = append(out, replaced...)
		} else {
			out = append(out, b)
		}
	}

	for _, am := range res.closedNow {
		out = append(out, am.epilogue...)
	}
	return out
}

// emitLeader writes Before ahead of the very first extracted value, and
// Separator ahead of every one after that.
func (e *Extract) emitLeader(out []byte) []byte {
	if !e.wroteBefore {
		out = append(out, e.Before...)
		e.wroteBefore = true
	} else if e.wroteAny {
		out = append(out, e.Separator...)
	}
	e.wroteAny = true
	return out
}

// Terminate flushes any still-open extracted match and appends After.
func (e *Extract) Terminate() ([]byte, error) {
	tres, err := e.c.terminate()
	var out []byte
	for _, am := range tres.closed {
		out = append(out, am.epilogue...)
	}
	for _, am := range tres.terminated {
		out = append(out, am.epilogue...)
	}
	if e.wroteAny && !e.wroteAfter {
		out = append(out, e.After...)
		e.wroteAfter = true
	}
	return out, err
}
