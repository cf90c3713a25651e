package preset

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/harvx/streamson/internal/xlog"
)

var log = xlog.For("preset")

// document is the root shape of a streamson.toml file: a table of named
// presets under [preset.<name>].
type document struct {
	Preset map[string]Preset `toml:"preset"`
}

// LoadFromFile reads and parses a streamson.toml preset file at path.
// Unknown TOML keys warn via slog rather than failing, matching the
// teacher's forward-compatible LoadFromFile.
func LoadFromFile(path string) (map[string]Preset, error) {
	var doc document
	meta, err := toml.DecodeFile(path, &doc)
	if err != nil {
		return nil, fmt.Errorf("parse preset file %s: %w", path, err)
	}
	warnUndecodedKeys(meta, path)
	return doc.Preset, nil
}

// LoadFromString parses preset TOML from an in-memory string. name is used
// only in log output.
func LoadFromString(data, name string) (map[string]Preset, error) {
	var doc document
	meta, err := toml.Decode(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("parse preset source %s: %w", name, err)
	}
	warnUndecodedKeys(meta, name)
	return doc.Preset, nil
}

func warnUndecodedKeys(meta toml.MetaData, source string) {
	undecoded := meta.Undecoded()
	if len(undecoded) == 0 {
		return
	}
	keys := make([]string, 0, len(undecoded))
	for _, k := range undecoded {
		keys = append(keys, k.String())
	}
	log.Warn("unknown preset keys will be ignored",
		"source", source,
		"keys", strings.Join(keys, ", "),
	)
}
