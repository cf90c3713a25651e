package matcher

import (
	"encoding/binary"
	"sync"

	"github.com/zeebo/xxh3"

	"github.com/harvx/streamson/jsonpath"
)

// renderCache memoizes Path.Render() for the single most recently rendered
// path, keyed by an xxh3 digest of the path's element stack computed without
// building the rendered string. It exists because a Regex matcher is often
// one of several matchers evaluated against the same unchanged path at a
// single Start event, and rendering is the expensive part of that check.
//
// A single-slot cache (rather than an unbounded map) matches that access
// pattern and bounds memory regardless of how many distinct paths a long
// stream produces; a hash collision between two different paths evaluated
// back to back would return a stale render, which is an accepted risk for
// this kind of memoization, not a bug that corrupts Streamer state.
var renderCache struct {
	mu       sync.Mutex
	digest   uint64
	rendered string
	valid    bool
}

func memoizedRender(p jsonpath.Path) string {
	d := digestPath(p)

	renderCache.mu.Lock()
	defer renderCache.mu.Unlock()

	if renderCache.valid && renderCache.digest == d {
		return renderCache.rendered
	}

	rendered := p.Render()
	renderCache.digest = d
	renderCache.rendered = rendered
	renderCache.valid = true
	return rendered
}

func digestPath(p jsonpath.Path) uint64 {
	h := xxh3.New()
	var buf [9]byte
	for _, e := range p {
		if e.Kind == jsonpath.IndexElement {
			buf[0] = 1
			binary.BigEndian.PutUint64(buf[1:], e.Index)
			h.Write(buf[:])
			continue
		}
		buf[0] = 0
		h.Write(buf[:1])
		h.Write(e.Key)
	}
	return h.Sum64()
}
