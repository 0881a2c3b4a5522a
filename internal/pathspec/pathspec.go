// Package pathspec owns the model for one declared log-rotation target.
//
// Ownership boundary:
// - per-entry field domains and defaults
// - frequency enum
// - field-attributed construction errors
//
// Cross-entry checks belong to internal/compile.
package pathspec

import (
	"errors"
	"fmt"
	"strings"
)

// Frequency is the rotation cadence, emitted verbatim into the rendered block.
type Frequency string

const (
	Hourly  Frequency = "hourly"
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

// Per-entry defaults applied when a declaration leaves a field unset.
const (
	DefaultFrequency = Daily
	DefaultKeep      = 20
	DefaultPriority  = 1000
)

// Directives every entry body starts with; declared extra text is appended
// after these, never instead of them.
const defaultExtraConfig = "missingok\nnotifempty"

var ErrInvalidField = errors.New("pathspec: invalid field")

// InvalidFieldError reports one field value outside its declared domain.
// It aborts the whole render pass; field errors are not per-entry recoverable.
type InvalidFieldError struct {
	Name   string
	Field  string
	Value  string
	Reason string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("path %q: field %q = %q: %s", e.Name, e.Field, e.Value, e.Reason)
}

func (e *InvalidFieldError) Unwrap() error { return ErrInvalidField }

// ParseFrequency maps a raw declaration string onto the frequency enum.
func ParseFrequency(raw string) (Frequency, error) {
	switch Frequency(strings.TrimSpace(raw)) {
	case Hourly:
		return Hourly, nil
	case Daily:
		return Daily, nil
	case Weekly:
		return Weekly, nil
	case Monthly:
		return Monthly, nil
	case Yearly:
		return Yearly, nil
	default:
		return "", fmt.Errorf("%w: unknown frequency %q (expected hourly|daily|weekly|monthly|yearly)", ErrInvalidField, raw)
	}
}

// Params carries one declared entry before defaults are applied. Pointer
// fields keep "unset" distinct from the zero value so layered declarations
// overwrite only what they actually set.
type Params struct {
	Enable      *bool
	Path        string
	User        *string
	Group       *string
	Frequency   string
	Keep        *int
	Priority    *int
	ExtraConfig string
}

// Spec is one immutable log-rotation target. Construct through New; read
// access goes through accessors only.
type Spec struct {
	name        string
	enable      bool
	path        string
	user        string
	group       string
	hasUser     bool
	hasGroup    bool
	frequency   Frequency
	keep        int
	priority    int
	extraConfig string
}

// New validates field domains, applies defaults, and binds the mapping key
// as the entry name. The name is never settable from the declaration body.
func New(name string, p Params) (*Spec, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &InvalidFieldError{Name: name, Field: "name", Reason: "entry name must not be empty"}
	}

	path := strings.TrimSpace(p.Path)
	if path == "" {
		return nil, &InvalidFieldError{Name: name, Field: "path", Reason: "path is required"}
	}

	frequency := DefaultFrequency
	if strings.TrimSpace(p.Frequency) != "" {
		parsed, err := ParseFrequency(p.Frequency)
		if err != nil {
			return nil, &InvalidFieldError{
				Name:   name,
				Field:  "frequency",
				Value:  p.Frequency,
				Reason: "expected hourly|daily|weekly|monthly|yearly",
			}
		}
		frequency = parsed
	}

	keep := DefaultKeep
	if p.Keep != nil {
		if *p.Keep < 0 {
			return nil, &InvalidFieldError{
				Name:   name,
				Field:  "keep",
				Value:  fmt.Sprintf("%d", *p.Keep),
				Reason: "keep must be >= 0",
			}
		}
		keep = *p.Keep
	}

	priority := DefaultPriority
	if p.Priority != nil {
		priority = *p.Priority
	}

	enable := true
	if p.Enable != nil {
		enable = *p.Enable
	}

	spec := &Spec{
		name:        name,
		enable:      enable,
		path:        path,
		frequency:   frequency,
		keep:        keep,
		priority:    priority,
		extraConfig: mergeExtraConfig(p.ExtraConfig),
	}

	// Whitespace-only ownership strings count as absent; there is no way to
	// declare an empty user or group on purpose.
	if p.User != nil {
		if v := strings.TrimSpace(*p.User); v != "" {
			spec.user = v
			spec.hasUser = true
		}
	}
	if p.Group != nil {
		if v := strings.TrimSpace(*p.Group); v != "" {
			spec.group = v
			spec.hasGroup = true
		}
	}

	return spec, nil
}

// mergeExtraConfig appends declared extra directives after the fixed defaults.
func mergeExtraConfig(extra string) string {
	extra = strings.TrimRight(extra, "\n \t")
	if strings.TrimSpace(extra) == "" {
		return defaultExtraConfig
	}
	return defaultExtraConfig + "\n" + extra
}

func (s *Spec) Name() string { return s.name }

func (s *Spec) Enabled() bool { return s.enable }

// Path is the rotation target pattern; opaque to rotorctl, only ever emitted.
func (s *Spec) Path() string { return s.path }

// User returns the declared rotation user and whether one was declared.
func (s *Spec) User() (string, bool) { return s.user, s.hasUser }

// Group returns the declared rotation group and whether one was declared.
func (s *Spec) Group() (string, bool) { return s.group, s.hasGroup }

func (s *Spec) Frequency() Frequency { return s.frequency }

func (s *Spec) Keep() int { return s.keep }

// Priority orders rendered blocks; lower values render earlier.
func (s *Spec) Priority() int { return s.priority }

// ExtraConfig is the merged directive body: the fixed defaults followed by
// any declared extra lines. Free-form, never parsed.
func (s *Spec) ExtraConfig() string { return s.extraConfig }
