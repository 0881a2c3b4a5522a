package compile

import (
	"fmt"
	"strings"

	"github.com/rotorlabs/rotorctl/internal/pathspec"
)

// Render emits the rotation tool's block syntax for the ordered entries,
// followed by the top-level global text. Pure function of its arguments:
// no clock, no map iteration, no I/O, so equal inputs always produce
// byte-identical output.
func Render(entries []*pathspec.Spec, globalExtra string) string {
	segments := make([]string, 0, len(entries)+1)
	for _, entry := range entries {
		segments = append(segments, renderBlock(entry))
	}
	if extra := trimOuterBlank(globalExtra); extra != "" {
		segments = append(segments, extra+"\n")
	}
	return strings.Join(segments, "\n")
}

// renderBlock writes one quoted-path block. Directive lines inside the
// braces are indented two spaces; extra config lines are re-indented but
// otherwise passed through opaque.
func renderBlock(entry *pathspec.Spec) string {
	var b strings.Builder
	b.WriteString("\"" + entry.Path() + "\" {\n")
	if user, ok := entry.User(); ok {
		group, _ := entry.Group()
		fmt.Fprintf(&b, "  su %s %s\n", user, group)
	}
	fmt.Fprintf(&b, "  %s\n", entry.Frequency())
	fmt.Fprintf(&b, "  rotate %d\n", entry.Keep())
	for _, line := range strings.Split(entry.ExtraConfig(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		b.WriteString("  " + line + "\n")
	}
	b.WriteString("}\n")
	return b.String()
}

func trimOuterBlank(s string) string {
	return strings.Trim(s, " \t\n")
}
