package preset

import (
	"fmt"

	"github.com/knadh/koanf/providers/confmap"
	koanf "github.com/knadh/koanf/v2"
)

// ResolveOptions configures layered preset resolution, mirroring the
// teacher's ResolveOptions/Resolve: later layers override earlier ones,
// field by field, the same way CLI flags override env vars override file
// config override defaults in internal/config.Resolve.
type ResolveOptions struct {
	// Path is the streamson.toml file to load. Empty skips the file layer.
	Path string
	// Overrides are programmatic presets layered over the file, highest
	// precedence, keyed by name.
	Overrides map[string]Preset
}

// Resolve runs the preset resolution pipeline:
//  1. built-in defaults (Defaults())
//  2. the TOML file named by opts.Path, if any
//  3. opts.Overrides
//
// A later layer's preset fields override the same preset's fields from an
// earlier layer one at a time; a field absent from a later layer (left at its
// zero value) keeps the earlier layer's value. Rules is the exception: since
// a partial rule list has no sensible default to splice against, a layer that
// sets Rules at all replaces the whole list.
func Resolve(opts ResolveOptions) (map[string]Preset, error) {
	k := koanf.New(".")

	if err := loadLayer(k, Defaults()); err != nil {
		return nil, fmt.Errorf("loading default presets: %w", err)
	}

	if opts.Path != "" {
		fromFile, err := LoadFromFile(opts.Path)
		if err != nil {
			return nil, err
		}
		if err := loadLayer(k, fromFile); err != nil {
			return nil, fmt.Errorf("loading preset file %s: %w", opts.Path, err)
		}
	}

	if len(opts.Overrides) > 0 {
		if err := loadLayer(k, opts.Overrides); err != nil {
			return nil, fmt.Errorf("loading preset overrides: %w", err)
		}
	}

	return flatMapToPresets(k), nil
}

// loadLayer flattens each named preset into scalar koanf keys and merges
// them into k, the way the teacher's loadLayer merges a flattened Profile.
func loadLayer(k *koanf.Koanf, presets map[string]Preset) error {
	flat := make(map[string]any)
	for name, p := range presets {
		prefix := "preset." + name + "."
		for key, v := range map[string]string{
			"mode": string(p.Mode), "policy": string(p.Policy),
			"separator": p.Separator, "before": p.Before, "after": p.After,
		} {
			if v != "" {
				flat[prefix+key] = v
			}
		}
		if p.Passthrough {
			flat[prefix+"passthrough"] = true
		}
		if p.Rules != nil {
			flat[prefix+"rules"] = p.Rules
		}
	}
	return k.Load(confmap.Provider(flat, "."), nil)
}

// flatMapToPresets reconstructs every named preset from k's current state.
func flatMapToPresets(k *koanf.Koanf) map[string]Preset {
	names := k.MapKeys("preset")
	out := make(map[string]Preset, len(names))
	for _, name := range names {
		prefix := "preset." + name + "."
		p := Preset{
			Mode:        Mode(k.String(prefix + "mode")),
			Policy:      Policy(k.String(prefix + "policy")),
			Passthrough: k.Bool(prefix + "passthrough"),
			Separator:   k.String(prefix + "separator"),
			Before:      k.String(prefix + "before"),
			After:       k.String(prefix + "after"),
		}
		if raw, ok := k.Get(prefix + "rules").([]Rule); ok {
			p.Rules = raw
		}
		out[name] = p
	}
	return out
}

// Defaults returns the built-in presets every resolution starts from: a
// single "passthrough" Trigger preset with no rules, mirroring the teacher's
// DefaultProfile anchor layer.
func Defaults() map[string]Preset {
	return map[string]Preset{
		"passthrough": {Mode: ModeTrigger, Passthrough: true},
	}
}
