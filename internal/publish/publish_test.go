package publish

import (
	"errors"
	"testing"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishWritesDestination(t *testing.T) {
	fs := memfs.New()
	w := NewWriter(fs)

	require.NoError(t, w.Publish("/etc/rotor/rotor.conf", []byte("rotate 20\n")))

	got, err := util.ReadFile(fs, "/etc/rotor/rotor.conf")
	require.NoError(t, err)
	assert.Equal(t, "rotate 20\n", string(got))
}

func TestPublishLeavesNoStagingFileBehind(t *testing.T) {
	fs := memfs.New()
	w := NewWriter(fs)

	require.NoError(t, w.Publish("/etc/rotor/rotor.conf", []byte("x\n")))

	_, err := fs.Stat("/etc/rotor/rotor.conf.tmp")
	assert.Error(t, err, "staging file must be renamed away")
}

func TestPublishReplacesExistingContent(t *testing.T) {
	fs := memfs.New()
	w := NewWriter(fs)

	require.NoError(t, w.Publish("/etc/rotor/rotor.conf", []byte("old\n")))
	require.NoError(t, w.Publish("/etc/rotor/rotor.conf", []byte("new\n")))

	got, err := util.ReadFile(fs, "/etc/rotor/rotor.conf")
	require.NoError(t, err)
	assert.Equal(t, "new\n", string(got))
}

type renameFailFS struct {
	billy.Filesystem
}

func (f renameFailFS) Rename(from, to string) error {
	return errors.New("rename refused")
}

func TestPublishKeepsOldContentWhenReplaceFails(t *testing.T) {
	base := memfs.New()
	require.NoError(t, util.WriteFile(base, "/etc/rotor/rotor.conf", []byte("old\n"), 0o644))

	w := NewWriter(renameFailFS{base})
	err := w.Publish("/etc/rotor/rotor.conf", []byte("new\n"))
	require.Error(t, err)

	got, err := util.ReadFile(base, "/etc/rotor/rotor.conf")
	require.NoError(t, err)
	assert.Equal(t, "old\n", string(got), "failed publish must not touch the destination")

	_, statErr := base.Stat("/etc/rotor/rotor.conf.tmp")
	assert.Error(t, statErr, "staging file must be removed after a failed rename")
}
