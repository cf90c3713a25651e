// Package streamsonerr defines the error taxonomy shared by every streamson
// package: streamer, matcher, handler, and strategy all return errors
// wrapped in Error so callers can classify failures with errors.Is/errors.As
// instead of matching on string content.
package streamsonerr

import "fmt"

// Kind classifies the source of a streamson error, per the taxonomy in
// spec.md §7.
type Kind string

const (
	// KindInput covers unbalanced brackets, unexpected bytes, and malformed
	// string escapes surfaced from the streamer. After a KindInput error the
	// producing Strategy is poisoned: further calls return the same error.
	KindInput Kind = "input"

	// KindMatcher covers malformed patterns or expressions detected at
	// matcher construction time. Never raised from Matcher.Matches.
	KindMatcher Kind = "matcher"

	// KindHandler covers failures reported by a Handler's Start/Feed/End.
	// Propagation policy (abort vs. isolate-and-continue) is a Strategy
	// construction option; see strategy.Policy.
	KindHandler Kind = "handler"

	// KindIncomplete is returned from Terminate when the input ended
	// mid-value.
	KindIncomplete Kind = "incomplete"
)

// Error is the concrete error type returned across streamson's public API.
// It carries a Kind for programmatic classification, an Op describing what
// was being attempted, and an optional wrapped cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("streamson: %s: %s: %v", e.Kind, e.Op, e.Err)
	}
	return fmt.Sprintf("streamson: %s: %s", e.Kind, e.Op)
}

// Unwrap returns the wrapped cause, enabling errors.Is and errors.As to
// traverse the error chain.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a *Error with the same Kind, enabling
// errors.Is(err, streamsonerr.Input("", nil)) style sentinel checks without
// requiring a matching Op or Err.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

// Input wraps err as a KindInput error for op.
func Input(op string, err error) *Error {
	return &Error{Kind: KindInput, Op: op, Err: err}
}

// Matcher wraps err as a KindMatcher error for op.
func Matcher(op string, err error) *Error {
	return &Error{Kind: KindMatcher, Op: op, Err: err}
}

// Handler wraps err as a KindHandler error for op.
func Handler(op string, err error) *Error {
	return &Error{Kind: KindHandler, Op: op, Err: err}
}

// Incomplete wraps err as a KindIncomplete error for op.
func Incomplete(op string, err error) *Error {
	return &Error{Kind: KindIncomplete, Op: op, Err: err}
}
