package declare

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"

	"github.com/rotorlabs/rotorctl/internal/compile"
)

const layerCacheSize = 128

type cachedLayer struct {
	fingerprint string
	layer       Layer
}

// Loader reads every declaration file in a directory, in lexical filename
// order. Parsed layers are cached per path and reused while the file's
// size and mtime are unchanged, so watch-triggered passes only re-parse
// what actually moved.
type Loader struct {
	fs    billy.Filesystem
	cache *lru.Cache[string, cachedLayer]
}

func NewLoader(fs billy.Filesystem) *Loader {
	cache, _ := lru.New[string, cachedLayer](layerCacheSize)
	return &Loader{fs: fs, cache: cache}
}

// Load parses the directory's layers in lexical order. Dotfiles and
// unrecognized extensions are skipped; subdirectories are not walked.
func (l *Loader) Load(dir string) ([]Layer, error) {
	infos, err := l.fs.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("declare: read dir %s: %w", dir, err)
	}

	files := make([]os.FileInfo, 0, len(infos))
	for _, info := range infos {
		if info.IsDir() || strings.HasPrefix(info.Name(), ".") {
			continue
		}
		switch strings.ToLower(filepath.Ext(info.Name())) {
		case ".toml", ".json", ".jsonc":
			files = append(files, info)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name() < files[j].Name() })

	layers := make([]Layer, 0, len(files))
	for _, info := range files {
		layer, err := l.loadFile(l.fs.Join(dir, info.Name()), info)
		if err != nil {
			return nil, err
		}
		layers = append(layers, layer)
	}
	return layers, nil
}

// Source loads and merges in one step.
func (l *Loader) Source(dir string) (compile.Source, error) {
	layers, err := l.Load(dir)
	if err != nil {
		return compile.Source{}, err
	}
	return Merge(layers), nil
}

func (l *Loader) loadFile(path string, info os.FileInfo) (Layer, error) {
	fp := fmt.Sprintf("%d:%d", info.Size(), info.ModTime().UnixNano())
	if hit, ok := l.cache.Get(path); ok && hit.fingerprint == fp {
		return hit.layer, nil
	}

	data, err := util.ReadFile(l.fs, path)
	if err != nil {
		return Layer{}, fmt.Errorf("declare: read %s: %w", path, err)
	}
	layer, err := Parse(path, data)
	if err != nil {
		return Layer{}, err
	}
	l.cache.Add(path, cachedLayer{fingerprint: fp, layer: layer})
	log.Debug().
		Str("layer", path).
		Int("entries", len(layer.Ops)).
		Msg("declaration layer parsed")
	return layer, nil
}
