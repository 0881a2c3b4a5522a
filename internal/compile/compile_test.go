package compile

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotorlabs/rotorctl/internal/pathspec"
)

func boolPtr(v bool) *bool { return &v }

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func TestCompileRendersFullBlock(t *testing.T) {
	src := Source{
		Entries: map[string]pathspec.Params{
			"nginx": {
				Path:        "/var/log/nginx/*.log",
				User:        strPtr("svc"),
				Group:       strPtr("adm"),
				Frequency:   "weekly",
				Keep:        intPtr(7),
				ExtraConfig: "compress\ndelaycompress",
			},
		},
	}

	out, err := Compile(src)
	require.NoError(t, err)

	want := `"/var/log/nginx/*.log" {
  su svc adm
  weekly
  rotate 7
  missingok
  notifempty
  compress
  delaycompress
}
`
	assert.Equal(t, want, out)
}

func TestCompileDefaultsRoundTrip(t *testing.T) {
	src := Source{
		Entries: map[string]pathspec.Params{
			"app": {Path: "/var/log/app.log"},
		},
	}

	out, err := Compile(src)
	require.NoError(t, err)

	want := `"/var/log/app.log" {
  daily
  rotate 20
  missingok
  notifempty
}
`
	assert.Equal(t, want, out)
	assert.NotContains(t, out, "su ")
}

func TestCompileOrdersByPriorityThenName(t *testing.T) {
	src := Source{
		Entries: map[string]pathspec.Params{
			"b": {Path: "/var/log/b.log", Priority: intPtr(500)},
			"a": {Path: "/var/log/a.log"},
			"c": {Path: "/var/log/c.log", Priority: intPtr(1000)},
			"d": {Path: "/var/log/d.log", Priority: intPtr(1)},
		},
	}

	out, err := Compile(src)
	require.NoError(t, err)

	order := []string{"/var/log/d.log", "/var/log/b.log", "/var/log/a.log", "/var/log/c.log"}
	last := -1
	for _, path := range order {
		idx := strings.Index(out, `"`+path+`"`)
		require.NotEqual(t, -1, idx, "missing block for %s", path)
		assert.Greater(t, idx, last, "%s rendered out of order", path)
		last = idx
	}
}

func TestCompileSeparatesBlocksWithBlankLine(t *testing.T) {
	src := Source{
		Entries: map[string]pathspec.Params{
			"a": {Path: "/var/log/a.log"},
			"b": {Path: "/var/log/b.log"},
		},
	}

	out, err := Compile(src)
	require.NoError(t, err)
	assert.Contains(t, out, "}\n\n\"/var/log/b.log\" {")
	assert.True(t, strings.HasSuffix(out, "}\n"))
}

func TestCompileAppendsGlobalExtra(t *testing.T) {
	src := Source{
		Entries: map[string]pathspec.Params{
			"a": {Path: "/var/log/a.log"},
		},
		GlobalExtra: "dateext\n",
	}

	out, err := Compile(src)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "}\n\ndateext\n"), "global extra must trail all blocks: %q", out)
}

func TestCompileDropsDisabledEntries(t *testing.T) {
	// The disabled entry declares a user without a group. That violation
	// must never surface because disabled entries are filtered before
	// validation runs.
	src := Source{
		Entries: map[string]pathspec.Params{
			"on":  {Path: "/var/log/on.log"},
			"off": {Path: "/var/log/off.log", Enable: boolPtr(false), User: strPtr("svc")},
		},
	}

	out, err := Compile(src)
	require.NoError(t, err)
	assert.Contains(t, out, `"/var/log/on.log"`)
	assert.NotContains(t, out, "off.log")
}

func TestCompileBatchesValidationErrors(t *testing.T) {
	src := Source{
		Entries: map[string]pathspec.Params{
			"one":   {Path: "/var/log/one.log", User: strPtr("svc")},
			"two":   {Path: "/var/log/two.log", User: strPtr("svc")},
			"three": {Path: "/var/log/three.log", Group: strPtr("adm")},
			"clean": {Path: "/var/log/clean.log"},
		},
	}

	out, err := Compile(src)
	require.Error(t, err)
	assert.Empty(t, out, "failed pass must not produce partial output")

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 3)

	names := make([]string, 0, len(verrs))
	for _, v := range verrs {
		names = append(names, v.Name)
	}
	assert.ElementsMatch(t, []string{"one", "two", "three"}, names)
}

func TestCompileFailsClosedOnInvalidField(t *testing.T) {
	src := Source{
		Entries: map[string]pathspec.Params{
			"ok":  {Path: "/var/log/ok.log"},
			"bad": {Path: "/var/log/bad.log", Frequency: "fortnightly"},
		},
	}

	out, err := Compile(src)
	require.Error(t, err)
	assert.ErrorIs(t, err, pathspec.ErrInvalidField)
	assert.Empty(t, out)
}

func TestCompileEmptySourceRendersNothing(t *testing.T) {
	out, err := Compile(Source{})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestValidateAcceptsJointOwnership(t *testing.T) {
	entry, err := pathspec.New("svc", pathspec.Params{
		Path:  "/var/log/svc.log",
		User:  strPtr("svc"),
		Group: strPtr("adm"),
	})
	require.NoError(t, err)
	assert.NoError(t, Validate([]*pathspec.Spec{entry}))
}

func TestValidationErrorsMessageCarriesEveryEntry(t *testing.T) {
	errs := ValidationErrors{
		{Name: "one", Reason: "user and group must be declared together or not at all"},
		{Name: "two", Reason: "user and group must be declared together or not at all"},
	}
	msg := errs.Error()
	assert.Contains(t, msg, `"one"`)
	assert.Contains(t, msg, `"two"`)
	assert.Contains(t, msg, "2 invalid entries")

	var asErr error = errs
	assert.False(t, errors.Is(asErr, pathspec.ErrInvalidField))
}
