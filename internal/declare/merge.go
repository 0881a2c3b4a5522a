package declare

import (
	"strings"

	"github.com/rotorlabs/rotorctl/internal/compile"
	"github.com/rotorlabs/rotorctl/internal/pathspec"
)

// Merge folds layers in order into one render source. Later layers win
// field-wise on entries they both declare; global extra text accumulates
// across layers instead of being replaced.
func Merge(layers []Layer) compile.Source {
	merged := make(map[string]Op)
	var extras []string
	for _, layer := range layers {
		for name, op := range layer.Ops {
			merged[name] = merged[name].overlay(op)
		}
		if extra := strings.TrimSpace(layer.GlobalExtra); extra != "" {
			extras = append(extras, extra)
		}
	}

	entries := make(map[string]pathspec.Params, len(merged))
	for name, op := range merged {
		entries[name] = op.params()
	}
	return compile.Source{
		Entries:     entries,
		GlobalExtra: strings.Join(extras, "\n"),
	}
}
