package publish

import (
	"fmt"
	"os"
	"path/filepath"

	billy "github.com/go-git/go-billy/v5"
	"github.com/rs/zerolog/log"
)

// Writer stages rendered text next to its destination and renames it into
// place. The destination is either fully replaced or left untouched.
type Writer struct {
	fs billy.Filesystem
}

func NewWriter(fs billy.Filesystem) *Writer {
	return &Writer{fs: fs}
}

// Publish writes content at path through a staging file in the same
// directory, creating parent directories as needed.
func (w *Writer) Publish(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := w.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("publish: create dir %s: %w", dir, err)
	}

	staging := path + ".tmp"
	f, err := w.fs.OpenFile(staging, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("publish: stage %s: %w", staging, err)
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		w.discard(staging)
		return fmt.Errorf("publish: write %s: %w", staging, err)
	}
	if err := f.Close(); err != nil {
		w.discard(staging)
		return fmt.Errorf("publish: close %s: %w", staging, err)
	}
	if err := w.fs.Rename(staging, path); err != nil {
		w.discard(staging)
		return fmt.Errorf("publish: replace %s: %w", path, err)
	}

	log.Debug().
		Str("path", path).
		Int("bytes", len(content)).
		Msg("rendered output published")
	return nil
}

func (w *Writer) discard(path string) {
	if err := w.fs.Remove(path); err != nil {
		log.Warn().Str("path", path).Err(err).Msg("staging file left behind")
	}
}
