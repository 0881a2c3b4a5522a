package declare

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"

	"github.com/muhammadmuzzammil1998/jsonc"
	"github.com/ohler55/ojg/jp"
)

var (
	reTrailingCommas = regexp.MustCompile(`,(\s*[\]\}])`)

	jpGlobalExtra = jp.MustParseString("$.global_extra")
	jpPaths       = jp.MustParseString("$.paths")
)

// removeTrailingCommas runs before and after comment stripping so inputs
// like ", // note \n ]" still normalize to valid JSON.
func removeTrailingCommas(data []byte) []byte {
	return reTrailingCommas.ReplaceAll(data, []byte("$1"))
}

// parseJSONC reads a commented-JSON layer. Presence is whatever keys the
// object literally carries, so the op shape matches the TOML reader.
func parseJSONC(origin string, data []byte) (Layer, error) {
	clean := removeTrailingCommas(data)
	clean = jsonc.ToJSON(clean)
	clean = removeTrailingCommas(clean)

	var root any
	if err := json.Unmarshal(clean, &root); err != nil {
		return Layer{}, fmt.Errorf("declare: parse %s: %w", origin, err)
	}

	layer := Layer{Origin: origin, Ops: make(map[string]Op)}
	for _, v := range jpGlobalExtra.Get(root) {
		s, ok := v.(string)
		if !ok {
			return Layer{}, fmt.Errorf("declare: parse %s: global_extra must be a string", origin)
		}
		layer.GlobalExtra = s
	}
	for _, section := range jpPaths.Get(root) {
		entries, ok := section.(map[string]any)
		if !ok {
			return Layer{}, fmt.Errorf("declare: parse %s: paths must be an object", origin)
		}
		for name, fields := range entries {
			obj, ok := fields.(map[string]any)
			if !ok {
				return Layer{}, fmt.Errorf("declare: parse %s: path %q must be an object", origin, name)
			}
			op, err := jsoncOp(origin, name, obj)
			if err != nil {
				return Layer{}, err
			}
			layer.Ops[name] = op
		}
	}
	return layer, nil
}

func jsoncOp(origin, name string, fields map[string]any) (Op, error) {
	var op Op
	for key, raw := range fields {
		switch key {
		case "enable":
			v, ok := raw.(bool)
			if !ok {
				return Op{}, badField(origin, name, key, "boolean")
			}
			op.Enable = ref(v)
		case "path":
			v, ok := raw.(string)
			if !ok {
				return Op{}, badField(origin, name, key, "string")
			}
			op.Path = ref(v)
		case "user":
			v, ok := raw.(string)
			if !ok {
				return Op{}, badField(origin, name, key, "string")
			}
			op.User = ref(v)
		case "group":
			v, ok := raw.(string)
			if !ok {
				return Op{}, badField(origin, name, key, "string")
			}
			op.Group = ref(v)
		case "frequency":
			v, ok := raw.(string)
			if !ok {
				return Op{}, badField(origin, name, key, "string")
			}
			op.Frequency = ref(v)
		case "extra_config":
			v, ok := raw.(string)
			if !ok {
				return Op{}, badField(origin, name, key, "string")
			}
			op.ExtraConfig = ref(v)
		case "keep":
			n, ok := intValue(raw)
			if !ok {
				return Op{}, badField(origin, name, key, "whole number")
			}
			op.Keep = ref(n)
		case "priority":
			n, ok := intValue(raw)
			if !ok {
				return Op{}, badField(origin, name, key, "whole number")
			}
			op.Priority = ref(n)
		default:
			return Op{}, fmt.Errorf("declare: %s: path %q: unknown key %q", origin, name, key)
		}
	}
	return op, nil
}

func intValue(raw any) (int, bool) {
	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	case int64:
		return int(v), true
	}
	return 0, false
}

func badField(origin, name, key, want string) error {
	return fmt.Errorf("declare: %s: path %q: key %q must be a %s", origin, name, key, want)
}
