package declare

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rotorlabs/rotorctl/internal/pathspec"
)

var ErrUnsupportedFormat = errors.New("declare: unsupported layer format")

// Op is a partial update for one named entry. A nil field means the layer
// did not mention it; there is no way to unset a field, only to overwrite
// it in a later layer or disable the whole entry.
type Op struct {
	Enable      *bool
	Path        *string
	User        *string
	Group       *string
	Frequency   *string
	Keep        *int
	Priority    *int
	ExtraConfig *string
}

// overlay returns op with next's declared fields applied on top.
func (op Op) overlay(next Op) Op {
	if next.Enable != nil {
		op.Enable = next.Enable
	}
	if next.Path != nil {
		op.Path = next.Path
	}
	if next.User != nil {
		op.User = next.User
	}
	if next.Group != nil {
		op.Group = next.Group
	}
	if next.Frequency != nil {
		op.Frequency = next.Frequency
	}
	if next.Keep != nil {
		op.Keep = next.Keep
	}
	if next.Priority != nil {
		op.Priority = next.Priority
	}
	if next.ExtraConfig != nil {
		op.ExtraConfig = next.ExtraConfig
	}
	return op
}

// params converts the merged op into constructor input. Undeclared fields
// stay zero so the constructor applies its defaults.
func (op Op) params() pathspec.Params {
	p := pathspec.Params{
		Enable:   op.Enable,
		User:     op.User,
		Group:    op.Group,
		Keep:     op.Keep,
		Priority: op.Priority,
	}
	if op.Path != nil {
		p.Path = *op.Path
	}
	if op.Frequency != nil {
		p.Frequency = *op.Frequency
	}
	if op.ExtraConfig != nil {
		p.ExtraConfig = *op.ExtraConfig
	}
	return p
}

// Layer is the parsed content of one declaration file.
type Layer struct {
	Origin      string
	Ops         map[string]Op
	GlobalExtra string
}

// Parse dispatches on the file extension. Origin is kept verbatim for
// error attribution.
func Parse(origin string, data []byte) (Layer, error) {
	switch strings.ToLower(filepath.Ext(origin)) {
	case ".toml":
		return parseTOML(origin, data)
	case ".json", ".jsonc":
		return parseJSONC(origin, data)
	default:
		return Layer{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, origin)
	}
}

func ref[T any](v T) *T { return &v }
