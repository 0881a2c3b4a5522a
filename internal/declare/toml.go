package declare

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// tomlLayerFile key mapping for one declaration layer.
type tomlLayerFile struct {
	GlobalExtra string                   `toml:"global_extra"`
	Paths       map[string]tomlLayerPath `toml:"paths"`
}

type tomlLayerPath struct {
	Enable      bool   `toml:"enable"`
	Path        string `toml:"path"`
	User        string `toml:"user"`
	Group       string `toml:"group"`
	Frequency   string `toml:"frequency"`
	Keep        int    `toml:"keep"`
	Priority    int    `toml:"priority"`
	ExtraConfig string `toml:"extra_config"`
}

// parseTOML reads a layer with metadata-driven presence, so an op records
// exactly the keys the file defined and nothing else. Unknown keys are
// rejected rather than silently dropped.
func parseTOML(origin string, data []byte) (Layer, error) {
	var raw tomlLayerFile
	meta, err := toml.Decode(string(data), &raw)
	if err != nil {
		return Layer{}, fmt.Errorf("declare: parse %s: %w", origin, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Layer{}, fmt.Errorf("declare: parse %s: unknown keys: %s", origin, strings.Join(keys, ", "))
	}

	layer := Layer{Origin: origin, Ops: make(map[string]Op, len(raw.Paths))}
	if meta.IsDefined("global_extra") {
		layer.GlobalExtra = raw.GlobalExtra
	}
	for name, entry := range raw.Paths {
		var op Op
		if meta.IsDefined("paths", name, "enable") {
			op.Enable = ref(entry.Enable)
		}
		if meta.IsDefined("paths", name, "path") {
			op.Path = ref(entry.Path)
		}
		if meta.IsDefined("paths", name, "user") {
			op.User = ref(entry.User)
		}
		if meta.IsDefined("paths", name, "group") {
			op.Group = ref(entry.Group)
		}
		if meta.IsDefined("paths", name, "frequency") {
			op.Frequency = ref(entry.Frequency)
		}
		if meta.IsDefined("paths", name, "keep") {
			op.Keep = ref(entry.Keep)
		}
		if meta.IsDefined("paths", name, "priority") {
			op.Priority = ref(entry.Priority)
		}
		if meta.IsDefined("paths", name, "extra_config") {
			op.ExtraConfig = ref(entry.ExtraConfig)
		}
		layer.Ops[name] = op
	}
	return layer, nil
}
