// Package matcher implements the predicates over (Path, MatchedKind) that
// decide whether a Strategy takes interest in a subtree, per spec.md §4.3:
// Simple path patterns, Depth ranges, anchored Regex, the All wildcard, and
// the Not/And/Or combinators, plus a textual Parse entry point for the
// simple:/depth:/regex: surface syntax.
package matcher

import (
	"github.com/harvx/streamson/jsonpath"
	"github.com/harvx/streamson/streamer"
)

// Matcher decides whether a given path and the JSON value kind observed at
// it are of interest. Implementations must be pure (no observable side
// effects), safe to call concurrently, and safe to share by reference across
// multiple Strategy instances running at once.
type Matcher interface {
	Matches(path jsonpath.Path, kind streamer.MatchedKind) bool
}

// All matches every path unconditionally. It is mainly useful with the All
// strategy mode and with analysis-style handlers that want to see the whole
// document.
type All struct{}

// Matches always returns true.
func (All) Matches(jsonpath.Path, streamer.MatchedKind) bool { return true }

// notMatcher negates another Matcher.
type notMatcher struct{ m Matcher }

// Not returns a Matcher that matches iff m does not.
func Not(m Matcher) Matcher { return notMatcher{m: m} }

func (n notMatcher) Matches(path jsonpath.Path, kind streamer.MatchedKind) bool {
	return !n.m.Matches(path, kind)
}

// andMatcher is a short-circuiting conjunction of two Matchers.
type andMatcher struct{ a, b Matcher }

// And returns a Matcher that matches iff both a and b match. b is not
// evaluated if a does not match.
func And(a, b Matcher) Matcher { return andMatcher{a: a, b: b} }

func (m andMatcher) Matches(path jsonpath.Path, kind streamer.MatchedKind) bool {
	return m.a.Matches(path, kind) && m.b.Matches(path, kind)
}

// orMatcher is a short-circuiting disjunction of two Matchers.
type orMatcher struct{ a, b Matcher }

// Or returns a Matcher that matches iff either a or b matches. b is not
// evaluated if a matches.
func Or(a, b Matcher) Matcher { return orMatcher{a: a, b: b} }

func (m orMatcher) Matches(path jsonpath.Path, kind streamer.MatchedKind) bool {
	return m.a.Matches(path, kind) || m.b.Matches(path, kind)
}
