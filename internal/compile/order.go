package compile

import (
	"sort"

	"github.com/rotorlabs/rotorctl/internal/pathspec"
)

// Order sorts entries in place by priority ascending, then name ascending.
// The composite key makes the order total, so rendered output never depends
// on map iteration or insertion order.
func Order(entries []*pathspec.Spec) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Priority() != entries[j].Priority() {
			return entries[i].Priority() < entries[j].Priority()
		}
		return entries[i].Name() < entries[j].Name()
	})
}
