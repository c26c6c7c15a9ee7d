// Package fsbackend contains an implementation of the backend.Backend
// interface for the filesystem
package fsbackend

import (
	"github.com/mwillard/gitodb/backend"
	"github.com/mwillard/gitodb/ginternals"
	"github.com/mwillard/gitodb/ginternals/config"
	"github.com/mwillard/gitodb/ginternals/githash"
	"github.com/mwillard/gitodb/internal/cache"
	"github.com/mwillard/gitodb/internal/syncutil"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// defaultCacheSize is the number of objects kept in the in-memory LRU
// cache. 0 would mean unlimited, which isn't what we want here.
const defaultCacheSize = 1000

// defaultMutexPoolSize is the number of stripes used by the named
// mutex guarding concurrent object access
const defaultMutexPoolSize = 64

// we make sure the struct implements the interface
var _ backend.Backend = (*Backend)(nil)

// Backend is a Backend implementation that uses the filesystem to store data
type Backend struct {
	fs   afero.Fs
	cfg  *config.Config
	hash githash.Hash

	cache    *cache.LRU
	objectMu *syncutil.NamedMutex
}

// New returns a new Backend object backed by cfg's object directory
func New(cfg *config.Config, hash githash.Hash) *Backend {
	fs := cfg.FS
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Backend{
		fs:       fs,
		cfg:      cfg,
		hash:     hash,
		cache:    cache.NewLRU(defaultCacheSize),
		objectMu: syncutil.NewNamedMutex(defaultMutexPoolSize),
	}
}

// Close frees the resources held by the backend
func (b *Backend) Close() error {
	b.cache.Clear()
	return nil
}

// Init initializes a repository: it creates the object directory, the
// description file, and the default [core] config section
func (b *Backend) Init() error {
	if err := b.fs.MkdirAll(ginternals.ObjectsPath(b.cfg), 0o750); err != nil {
		return xerrors.Errorf("could not create the objects directory: %w", err)
	}

	descPath := ginternals.DescriptionFilePath(b.cfg)
	content := []byte("Unnamed repository; edit this file 'description' to name the repository.\n")
	if err := afero.WriteFile(b.fs, descPath, content, 0o644); err != nil {
		return xerrors.Errorf("could not create the description file: %w", err)
	}

	if err := b.setDefaultCfg(); err != nil {
		return xerrors.Errorf("could not set the default config: %w", err)
	}

	return nil
}
