// Package preset loads named (matcher, handler) pipeline definitions from
// TOML and builds them into runnable strategy.Strategy instances, the way
// the teacher's internal/config package loads named profiles and resolves
// them into a pipeline.Config. A preset is a reusable recipe: which
// strategy.Strategy mode to run, what policy it applies to handler errors,
// and the ordered list of matcher/handler pairs to register.
package preset

import "github.com/harvx/streamson/strategy"

// Mode names one of the five strategy.Strategy implementations.
type Mode string

const (
	ModeTrigger Mode = "trigger"
	ModeFilter  Mode = "filter"
	ModeExtract Mode = "extract"
	ModeConvert Mode = "convert"
	ModeAll     Mode = "all"
)

// Policy names a strategy.Policy by the TOML-facing string used in a preset.
type Policy string

const (
	PolicyAbort   Policy = "abort"
	PolicyIsolate Policy = "isolate"
)

func (p Policy) resolve() strategy.Policy {
	if p == PolicyIsolate {
		return strategy.PolicyIsolate
	}
	return strategy.PolicyAbort
}

// Rule is one (matcher, handler) pair to register against a Strategy. Matcher
// is parsed by matcher.Parse; Handler is resolved through a Registry's
// handler factories.
type Rule struct {
	Matcher string `koanf:"matcher" toml:"matcher"`
	Handler string `koanf:"handler" toml:"handler"`
}

// Preset is one named pipeline definition.
type Preset struct {
	// Mode selects which strategy.Strategy implementation this preset builds.
	Mode Mode `koanf:"mode" toml:"mode"`
	// Policy controls handler-error behavior; empty means PolicyAbort.
	Policy Policy `koanf:"policy" toml:"policy"`
	// Passthrough is forwarded to strategy.Trigger.Passthrough; ignored by
	// every other mode.
	Passthrough bool `koanf:"passthrough" toml:"passthrough"`
	// Separator, Before, After are forwarded to strategy.Extract's fields of
	// the same name; ignored by every other mode.
	Separator string `koanf:"separator" toml:"separator"`
	Before    string `koanf:"before" toml:"before"`
	After     string `koanf:"after" toml:"after"`
	// Rules lists the matcher/handler pairs to register, in order.
	Rules []Rule `koanf:"rules" toml:"rules"`
}
