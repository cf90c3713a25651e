package matcher

import (
	"fmt"
	"strings"

	"github.com/harvx/streamson/streamsonerr"
)

// Parse compiles a matcher surface-syntax string into a Matcher, dispatching
// on its prefix per spec.md §6: "simple:<pattern>", "depth:<min>[-<max>]",
// or "regex:<expression>". Combinators (Not/And/Or) are constructed
// programmatically, not through this textual form — that composition is an
// external CLI collaborator's concern, per spec.md §9.
func Parse(s string) (Matcher, error) {
	switch {
	case strings.HasPrefix(s, "simple:"):
		m, err := ParseSimple(strings.TrimPrefix(s, "simple:"))
		if err != nil {
			return nil, streamsonerr.Matcher("matcher.Parse", err)
		}
		return m, nil
	case strings.HasPrefix(s, "depth:"):
		m, err := ParseDepth(strings.TrimPrefix(s, "depth:"))
		if err != nil {
			return nil, streamsonerr.Matcher("matcher.Parse", err)
		}
		return m, nil
	case strings.HasPrefix(s, "regex:"):
		m, err := ParseRegex(strings.TrimPrefix(s, "regex:"))
		if err != nil {
			return nil, err // already a *streamsonerr.Error from ParseRegex
		}
		return m, nil
	default:
		return nil, streamsonerr.Matcher("matcher.Parse", fmt.Errorf("unrecognized matcher prefix in %q", s))
	}
}
