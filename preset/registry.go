package preset

import (
	"fmt"
	"strings"

	"github.com/harvx/streamson/handler"
)

// HandlerFactory builds a handler.Handler from the argument portion of a
// Rule.Handler reference (the text after the first colon, or empty if the
// reference has none).
type HandlerFactory func(arg string) (handler.Handler, error)

// Registry resolves a preset's string matcher/handler references into live
// matcher.Matcher and handler.Handler values and assembles a
// strategy.Strategy from them.
type Registry struct {
	factories map[string]HandlerFactory
}

// NewRegistry returns a Registry seeded with the two reference handlers the
// handler package ships for protocol-conformance testing: "replace:<text>"
// and "recorder".
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]HandlerFactory)}
	r.RegisterHandlerFactory("replace", func(arg string) (handler.Handler, error) {
		return handler.NewReplace([]byte(arg)), nil
	})
	r.RegisterHandlerFactory("recorder", func(string) (handler.Handler, error) {
		return handler.NewRecorder(), nil
	})
	return r
}

// RegisterHandlerFactory associates a reference prefix (the text before the
// first colon in a Rule.Handler string) with a factory. A caller embedding
// preset can register its own handler kinds alongside the built-ins.
func (r *Registry) RegisterHandlerFactory(prefix string, f HandlerFactory) {
	r.factories[prefix] = f
}

// buildHandler resolves one Rule.Handler reference, e.g. "replace:REDACTED"
// or "recorder", into a handler.Handler.
func (r *Registry) buildHandler(ref string) (handler.Handler, error) {
	prefix, arg, _ := strings.Cut(ref, ":")
	f, ok := r.factories[prefix]
	if !ok {
		return nil, fmt.Errorf("preset: unknown handler reference %q", ref)
	}
	return f(arg)
}
