package strategy

import (
	"github.com/harvx/streamson/handler"
	"github.com/harvx/streamson/matcher"
	"github.com/harvx/streamson/streamer"
)

// Trigger is pure observation (spec.md §4.5): every registration is tested
// at every Start regardless of what else is active, so matches nest freely
// and handlers attached to different matchers may fire over the same bytes,
// distinguished by MatchID. Trigger never rewrites the stream; its output is
// either nothing or the unmodified input, selected by Passthrough.
type Trigger struct {
	c           *core
	Passthrough bool
}

// NewTrigger returns a Trigger with the given error policy. By default it
// emits no output bytes, matching spec.md §8 invariant 3's baseline case;
// set Passthrough to echo input instead.
func NewTrigger(policy Policy) *Trigger {
	return &Trigger{c: newCore(policy, func(*core, streamer.Token) bool { return true })}
}

// AddMatcher registers a matcher and the handlers observing it.
func (t *Trigger) AddMatcher(m matcher.Matcher, handlers ...handler.Handler) {
	t.c.addMatcher(m, handlers...)
}

// Process feeds chunk through the streamer, driving every registered
// handler's Start/Feed/End, and returns the passthrough bytes if enabled.
func (t *Trigger) Process(chunk []byte) ([]byte, error) {
	var out []byte
	for _, b := range chunk {
		if _, err := t.c.step(b); err != nil {
			return out, err
		}
		if t.Passthrough {
			out = append(out, b)
		}
	}
	return out, nil
}

// Terminate flushes any buffering handlers still active; Trigger itself has
// no tail bytes of its own to emit.
func (t *Trigger) Terminate() ([]byte, error) {
	_, err := t.c.terminate()
	return nil, err
}
