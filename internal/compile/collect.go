package compile

import (
	"sort"

	"github.com/rotorlabs/rotorctl/internal/pathspec"
)

// Source is the full declarative input for one render pass: the merged
// name-to-entry mapping plus the free-form text appended after all blocks.
type Source struct {
	Entries     map[string]pathspec.Params
	GlobalExtra string
}

// Collect constructs every declared entry and drops the disabled ones.
// Disabled entries never reach validation, ordering, or rendering. Names
// are visited in sorted order so a construction failure is attributed to
// the same entry on every run.
func Collect(src Source) ([]*pathspec.Spec, error) {
	names := make([]string, 0, len(src.Entries))
	for name := range src.Entries {
		names = append(names, name)
	}
	sort.Strings(names)

	enabled := make([]*pathspec.Spec, 0, len(names))
	for _, name := range names {
		entry, err := pathspec.New(name, src.Entries[name])
		if err != nil {
			return nil, err
		}
		if !entry.Enabled() {
			continue
		}
		enabled = append(enabled, entry)
	}
	return enabled, nil
}
