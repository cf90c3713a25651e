// Package strategy implements the five stream-processing modes described in
// spec.md §4.5 (Trigger, Filter, Extract, Convert, All), built on top of a
// streamer.Streamer and a list of (matcher.Matcher, handler.Group)
// registrations. Each mode owns a *core that drives the streamer byte by
// byte, decides which registrations open a MatchRecord at a given Start,
// and invokes each match's handler group's Start/Feed/End in registration
// order.
package strategy

import (
	"github.com/harvx/streamson/handler"
	"github.com/harvx/streamson/matcher"
)

// Policy controls what a Strategy does when a Handler's Start, Feed, or End
// returns an error, per spec.md §7.
type Policy uint8

const (
	// PolicyAbort reports the handler error and poisons the Strategy:
	// further Process/Terminate calls return the same error. This is the
	// default.
	PolicyAbort Policy = iota
	// PolicyIsolate drops the offending MatchRecord and continues
	// streaming; no further hooks are invoked for that match.
	PolicyIsolate
)

// Strategy is the common surface exposed by every mode.
type Strategy interface {
	// Process absorbs the next chunk of input and returns the bytes this
	// mode emits for it.
	Process(chunk []byte) ([]byte, error)
	// Terminate signals end of input, flushing any buffering handlers.
	// Terminate is idempotent.
	Terminate() ([]byte, error)
	// AddMatcher registers a matcher and the handlers that should observe
	// or convert every subtree it matches. Handlers are chained into a
	// single handler.Group in the given order.
	AddMatcher(m matcher.Matcher, handlers ...handler.Handler)
}
