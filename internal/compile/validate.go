package compile

import (
	"fmt"
	"strings"

	"github.com/rotorlabs/rotorctl/internal/pathspec"
)

// ValidationError is one cross-field violation, attributed to the entry
// that caused it.
type ValidationError struct {
	Name   string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("path %q: %s", e.Name, e.Reason)
}

// ValidationErrors batches every violation found in a single pass so one
// run surfaces all problems instead of stopping at the first.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 1 {
		return "compile: " + e[0].Error()
	}
	lines := make([]string, 0, len(e))
	for _, v := range e {
		lines = append(lines, "  "+v.Error())
	}
	return fmt.Sprintf("compile: %d invalid entries:\n%s", len(e), strings.Join(lines, "\n"))
}

// Validate enforces the cross-field invariants on enabled entries and
// returns a ValidationErrors carrying every violation, or nil when the
// whole set is clean.
func Validate(entries []*pathspec.Spec) error {
	var errs ValidationErrors
	for _, entry := range entries {
		_, hasUser := entry.User()
		_, hasGroup := entry.Group()
		if hasUser != hasGroup {
			errs = append(errs, ValidationError{
				Name:   entry.Name(),
				Reason: "user and group must be declared together or not at all",
			})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
