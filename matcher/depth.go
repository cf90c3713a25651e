package matcher

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/harvx/streamson/jsonpath"
	"github.com/harvx/streamson/streamer"
)

// Depth matches paths whose length falls within [Min, Max]. A zero Max means
// unbounded (min <= depth).
type Depth struct {
	Min uint
	Max uint // 0 means unbounded
}

// Matches reports whether path's depth falls within d's range.
func (d Depth) Matches(path jsonpath.Path, _ streamer.MatchedKind) bool {
	depth := uint(path.Depth())
	if depth < d.Min {
		return false
	}
	if d.Max != 0 && depth > d.Max {
		return false
	}
	return true
}

// ParseDepth parses the body of a `depth:<min>[-<max>]` surface-syntax
// matcher, e.g. "2" or "2-5".
func ParseDepth(body string) (Depth, error) {
	parts := strings.SplitN(body, "-", 2)
	minV, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return Depth{}, fmt.Errorf("matcher: invalid depth min %q: %w", parts[0], err)
	}
	if len(parts) == 1 {
		return Depth{Min: uint(minV)}, nil
	}
	maxV, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return Depth{}, fmt.Errorf("matcher: invalid depth max %q: %w", parts[1], err)
	}
	if maxV < minV {
		return Depth{}, fmt.Errorf("matcher: depth max %d below min %d", maxV, minV)
	}
	return Depth{Min: uint(minV), Max: uint(maxV)}, nil
}
