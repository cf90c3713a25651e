package handler

import (
	"sync"

	"github.com/harvx/streamson/jsonpath"
	"github.com/harvx/streamson/streamer"
)

// Event is one observation recorded by Recorder.
type Event struct {
	Kind string // "start", "feed", or "end"
	Path jsonpath.Path
	ID   MatchID
	Data []byte
}

// Recorder is a non-converting, non-buffering Handler that records every
// call it receives, in order, for assertions in protocol-conformance and
// Strategy tests. It is not part of the handler surface syntax — it exists
// purely to exercise and verify the Handler contract and Group composition.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder { return &Recorder{} }

// Events returns a defensive copy of every call recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Start records the call and returns no prologue.
func (r *Recorder) Start(path jsonpath.Path, id MatchID, _ streamer.MatchedKind) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Kind: "start", Path: path.Clone(), ID: id})
	return nil, nil
}

// Feed records the observed chunk and returns nil: Recorder never converts.
func (r *Recorder) Feed(chunk []byte, id MatchID) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make([]byte, len(chunk))
	copy(cp, chunk)
	r.events = append(r.events, Event{Kind: "feed", ID: id, Data: cp})
	return nil, nil
}

// End records the call and returns no epilogue.
func (r *Recorder) End(path jsonpath.Path, id MatchID, _ streamer.MatchedKind) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Kind: "end", Path: path.Clone(), ID: id})
	return nil, nil
}

// IsConverter reports false: Recorder only observes.
func (r *Recorder) IsConverter() bool { return false }

// Buffering reports false: Recorder produces nothing, so it needs no
// accumulation.
func (r *Recorder) Buffering() bool { return false }
