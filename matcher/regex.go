package matcher

import (
	"fmt"

	"github.com/dlclark/regexp2"

	"github.com/harvx/streamson/jsonpath"
	"github.com/harvx/streamson/streamer"
	"github.com/harvx/streamson/streamsonerr"
)

// Regex matches the rendered path string against a pattern anchored at both
// ends, per spec.md §4.3. It is built on dlclark/regexp2 rather than the
// standard library's RE2-based regexp so that lookaround and backreferences
// are available in matcher surface syntax, the same way the CLI stack this
// module grew out of reaches for regexp2 wherever an end user supplies a
// pattern a strict RE2 engine cannot express.
type Regex struct {
	re *regexp2.Regexp
}

// ParseRegex compiles body (the part after "regex:") into a Regex matcher,
// anchoring it at both ends so a partial match of the rendered path does not
// count as a match.
func ParseRegex(body string) (Regex, error) {
	re, err := regexp2.Compile(`\A(?:`+body+`)\z`, regexp2.None)
	if err != nil {
		return Regex{}, streamsonerr.Matcher("matcher.ParseRegex", fmt.Errorf("compiling %q: %w", body, err))
	}
	return Regex{re: re}, nil
}

// Matches reports whether the memoized render of path matches the compiled
// pattern. A regexp2 evaluation error (e.g. exceeding MatchTimeout) is
// treated as no match rather than surfaced, matching the "never raised from
// matches" clause of the Matcher contract in spec.md §4.3.
//
// The rendered path reproduces on-wire key bytes verbatim, so a key that is
// not valid UTF-8 reaches regexp2 as raw bytes; regexp2 works on runes and
// sees each invalid sequence as the Unicode replacement character.
func (r Regex) Matches(path jsonpath.Path, _ streamer.MatchedKind) bool {
	ok, err := r.re.MatchString(memoizedRender(path))
	if err != nil {
		return false
	}
	return ok
}
