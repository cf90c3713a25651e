package strategy

import (
	"log/slog"

	"github.com/harvx/streamson/handler"
	"github.com/harvx/streamson/internal/xlog"
	"github.com/harvx/streamson/jsonpath"
	"github.com/harvx/streamson/matcher"
	"github.com/harvx/streamson/streamer"
	"github.com/harvx/streamson/streamsonerr"
)

// registration pairs a matcher with the handler group attached to it, kept
// in AddMatcher call order: spec.md §5 requires handlers of matchers tied
// for a Start to run in registration order, and the same order again at End.
type registration struct {
	idx int
	m   matcher.Matcher
	h   handler.Handler
}

// activeMatch is one open MatchRecord: a registration's handler currently
// receiving Start/Feed/End for a subtree that has not yet closed.
type activeMatch struct {
	id       handler.MatchID
	reg      *registration
	kind     streamer.MatchedKind
	path     jsonpath.Path
	dead     bool // true once an isolated handler error has retired it
	prologue []byte
	epilogue []byte
}

// level is the set of activeMatches (possibly empty) opened at one physical
// Start token. core maintains a stack of levels mirroring the streamer's own
// container/value nesting so that an End token can be paired with exactly
// the matches that opened at its Start, in O(1), without any path
// comparison.
type level struct {
	matches []*activeMatch
}

// matchGate decides, for a Start token, whether core should even test this
// strategy's registrations against it. Trigger always returns true; Filter,
// Extract, and Convert return true only when no match is currently active
// (outermost wins, nesting disabled); All returns true only at depth 0.
type matchGate func(c *core, tok streamer.Token) bool

// core is the shared machinery behind every mode: it owns the Streamer, the
// registrations, the active-match bookkeeping, and handler invocation. Each
// mode embeds a *core and supplies its own output-assembly logic around
// step/terminate.
type core struct {
	strm   *streamer.Streamer
	regs   []*registration
	nextID handler.MatchID
	levels []level
	active []*activeMatch
	policy Policy
	gate   matchGate
	err    error
	log    *slog.Logger
}

func newCore(policy Policy, gate matchGate) *core {
	return &core{
		strm:   streamer.New(),
		policy: policy,
		gate:   gate,
		log:    xlog.For("strategy"),
	}
}

func (c *core) addMatcher(m matcher.Matcher, handlers ...handler.Handler) {
	c.regs = append(c.regs, &registration{
		idx: len(c.regs),
		m:   m,
		h:   handler.NewGroup(handlers...),
	})
}

// stepResult reports what happened while processing one external byte.
type stepResult struct {
	tokens []streamer.Token
	opened []*activeMatch

	// closedEarly holds matches closed by a token other than the last one
	// in this batch (only possible for a Number's boundary End): byte b
	// was never part of their span. closedNow holds matches closed by the
	// last token, whose byte b was delivered to them first.
	closedEarly []*activeMatch
	closedNow   []*activeMatch

	// delivered lists, in registration order, every match that actually
	// received byte b via Feed — including one that closes on this very
	// byte (closedNow), which is fed before it is popped. Callers that
	// assemble output keyed by feedOut must range over delivered, not
	// core.active: by the time step returns, a closedNow match is no
	// longer in core.active even though it did receive b.
	delivered []*activeMatch

	feedOut map[handler.MatchID][]byte
}

// step drives one external byte through the streamer and the registered
// matchers, invoking handler hooks in the order spec.md §5 requires. It
// returns a poisoning error once one has occurred; after that every call
// returns the same error without touching the streamer again.
func (c *core) step(b byte) (stepResult, error) {
	if c.err != nil {
		return stepResult{}, c.err
	}
	toks, err := c.strm.Feed(b)
	if err != nil {
		c.err = err
		return stepResult{tokens: toks}, err
	}

	var res stepResult
	res.tokens = toks

	// All tokens but the last belong to the byte just before b (the only
	// case: a Number's End, emitted when the streamer reprocesses b as the
	// first byte of whatever follows). They close a match without b being
	// part of its span.
	for i := 0; i < len(toks)-1; i++ {
		if cerr := c.closeForToken(toks[i], &res.closedEarly); cerr != nil {
			c.err = cerr
			return res, cerr
		}
	}

	last := toks[len(toks)-1]
	if last.Kind == streamer.Start {
		if cerr := c.openForToken(last, &res); cerr != nil {
			c.err = cerr
			return res, cerr
		}
	}
	if cerr := c.deliverByte(b, &res); cerr != nil {
		c.err = cerr
		return res, cerr
	}
	res.delivered = append([]*activeMatch(nil), c.active...)
	if last.Kind == streamer.End {
		if cerr := c.closeForToken(last, &res.closedNow); cerr != nil {
			c.err = cerr
			return res, cerr
		}
	}

	return res, nil
}

// openForToken tests every registration against a Start token (subject to
// the mode's gate), opening a new activeMatch and invoking Start for each
// one that matches.
func (c *core) openForToken(tok streamer.Token, res *stepResult) error {
	var lvl level
	if c.gate(c, tok) {
		for _, reg := range c.regs {
			if !reg.m.Matches(tok.Path, tok.MatchedKind) {
				continue
			}
			am := &activeMatch{id: c.nextID, reg: reg, kind: tok.MatchedKind, path: tok.Path.Clone()}
			c.nextID++
			pro, herr := reg.h.Start(am.path, am.id, am.kind)
			if herr != nil {
				wrapped := streamsonerr.Handler("strategy.Start", herr)
				if abortErr := c.handleHandlerErr(am, wrapped); abortErr != nil {
					return abortErr
				}
				continue
			}
			am.prologue = pro
			lvl.matches = append(lvl.matches, am)
		}
	}
	c.levels = append(c.levels, lvl)
	c.active = append(c.active, lvl.matches...)
	res.opened = append(res.opened, lvl.matches...)
	return nil
}

// closeForToken pops the level paired with an End token and invokes End on
// every (non-dead) match it held, in registration order, appending each one
// to dest.
func (c *core) closeForToken(tok streamer.Token, dest *[]*activeMatch) error {
	if len(c.levels) == 0 {
		return nil
	}
	top := c.levels[len(c.levels)-1]
	c.levels = c.levels[:len(c.levels)-1]
	c.active = c.active[:len(c.active)-len(top.matches)]

	for _, am := range top.matches {
		if am.dead {
			continue
		}
		epi, herr := am.reg.h.End(tok.Path, am.id, am.kind)
		if herr != nil {
			wrapped := streamsonerr.Handler("strategy.End", herr)
			if abortErr := c.handleHandlerErr(am, wrapped); abortErr != nil {
				return abortErr
			}
			continue
		}
		am.epilogue = epi
		*dest = append(*dest, am)
	}
	return nil
}

// deliverByte feeds b to every currently active (non-dead) match's handler
// group, in registration order, collecting any replacement bytes a
// converting handler returns.
func (c *core) deliverByte(b byte, res *stepResult) error {
	if len(c.active) == 0 {
		return nil
	}
	for _, am := range c.active {
		if am.dead {
			continue
		}
		out, herr := am.reg.h.Feed([]byte{b}, am.id)
		if herr != nil {
			wrapped := streamsonerr.Handler("strategy.Feed", herr)
			if abortErr := c.handleHandlerErr(am, wrapped); abortErr != nil {
				return abortErr
			}
			continue
		}
		if out != nil {
			if res.feedOut == nil {
				res.feedOut = make(map[handler.MatchID][]byte, len(c.active))
			}
			res.feedOut[am.id] = out
		}
	}
	return nil
}

// handleHandlerErr applies the Strategy's error policy to a handler failure.
// PolicyAbort returns the error (poisoning the core); PolicyIsolate retires
// just this match and returns nil.
func (c *core) handleHandlerErr(am *activeMatch, err error) error {
	if c.policy == PolicyIsolate {
		am.dead = true
		c.log.Warn("isolating failed match", "err", err, "match_id", am.id)
		return nil
	}
	return err
}

// terminateResult mirrors stepResult for the tail-of-input flush.
type terminateResult struct {
	tokens     []streamer.Token
	closed     []*activeMatch
	terminated []*activeMatch // matches flushed via handler.Terminator
}

// terminate signals end of input to the streamer, closes whatever the
// streamer's own Terminate reports (a trailing Number), and then flushes
// every still-active Terminator-capable handler. It returns the streamer's
// Terminate error (typically KindIncomplete) alongside whatever bytes were
// recovered, per spec.md §7: partial output is valid output.
func (c *core) terminate() (terminateResult, error) {
	if c.err != nil {
		return terminateResult{}, c.err
	}
	toks, terr := c.strm.Terminate()
	var res terminateResult
	res.tokens = toks

	for _, tok := range toks {
		if tok.Kind == streamer.End {
			if cerr := c.closeForToken(tok, &res.closed); cerr != nil {
				c.err = cerr
				return res, cerr
			}
		}
	}

	for _, am := range c.active {
		if am.dead {
			continue
		}
		t, ok := am.reg.h.(handler.Terminator)
		if !ok {
			continue
		}
		flushed, herr := t.Terminate()
		if herr != nil {
			wrapped := streamsonerr.Handler("strategy.Terminate", herr)
			if abortErr := c.handleHandlerErr(am, wrapped); abortErr != nil {
				c.err = abortErr
				return res, abortErr
			}
			continue
		}
		am.epilogue = append(am.epilogue, flushed...)
		res.terminated = append(res.terminated, am)
	}

	if terr != nil {
		c.err = terr
	}
	return res, terr
}
