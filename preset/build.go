package preset

import (
	"fmt"

	"github.com/harvx/streamson/matcher"
	"github.com/harvx/streamson/strategy"
)

// Build constructs a ready-to-use strategy.Strategy for the named preset,
// resolving every Rule's matcher text and handler reference through r.
func (r *Registry) Build(name string, presets map[string]Preset) (strategy.Strategy, error) {
	p, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("preset: unknown preset %q", name)
	}

	policy := p.Policy.resolve()

	var s strategy.Strategy
	switch p.Mode {
	case ModeTrigger:
		t := strategy.NewTrigger(policy)
		t.Passthrough = p.Passthrough
		s = t
	case ModeFilter:
		s = strategy.NewFilter(policy)
	case ModeExtract:
		e := strategy.NewExtract(policy)
		e.Separator = []byte(p.Separator)
		e.Before = []byte(p.Before)
		e.After = []byte(p.After)
		s = e
	case ModeConvert:
		s = strategy.NewConvert(policy)
	case ModeAll:
		s = strategy.NewAll(policy)
	default:
		return nil, fmt.Errorf("preset %q: unknown mode %q", name, p.Mode)
	}

	for i, rule := range p.Rules {
		m, err := matcher.Parse(rule.Matcher)
		if err != nil {
			return nil, fmt.Errorf("preset %q: rule %d: matcher %q: %w", name, i, rule.Matcher, err)
		}
		h, err := r.buildHandler(rule.Handler)
		if err != nil {
			return nil, fmt.Errorf("preset %q: rule %d: %w", name, i, err)
		}
		s.AddMatcher(m, h)
	}

	return s, nil
}
