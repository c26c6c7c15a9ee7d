// Package gitodb implements the object-database core of a
// content-addressed, Git-compatible version control system: repository
// layout, object framing, and the blob/tree/commit/tag codecs.
package gitodb

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mwillard/gitodb/backend"
	"github.com/mwillard/gitodb/backend/fsbackend"
	"github.com/mwillard/gitodb/ginternals"
	"github.com/mwillard/gitodb/ginternals/config"
	"github.com/mwillard/gitodb/ginternals/githash"
	"github.com/mwillard/gitodb/ginternals/object"
	"github.com/mwillard/gitodb/internal/gitpath"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
	"gopkg.in/ini.v1"
)

// Error kinds returned by the repository layout operations
var (
	// ErrRepositoryNotExist is returned when Discover walks all the way
	// up to the filesystem root without finding a .git directory
	ErrRepositoryNotExist = errors.New("not a git repository (or any of the parent directories)")
	// ErrConfigMissing is returned when a repository's config file is
	// absent
	ErrConfigMissing = errors.New("repository config is missing")
	// ErrBadConfig is returned when a repository's config file can't be
	// parsed, has no [core] section, or is missing
	// core.repositoryformatversion
	ErrBadConfig = errors.New("repository config is invalid")
	// ErrUnsupportedFormat is returned when core.repositoryformatversion
	// isn't 0
	ErrUnsupportedFormat = errors.New("unsupported repositoryformatversion")
	// ErrNotADirectory is returned when a path under the git directory
	// exists but is a file where a directory was expected
	ErrNotADirectory = errors.New("path exists and is not a directory")
	// ErrRepositoryExists is returned by Create when path already holds
	// a non-empty .git directory
	ErrRepositoryExists = errors.New("repository already exists")
)

// headRefContent is the literal content of a freshly created HEAD file:
// an unborn symbolic ref pointing at the default branch
const headRefContent = "ref: refs/heads/master\n"

// Repository is a handle onto a Git object database: its on-disk layout
// (via Config) and the backend used to store and retrieve objects.
type Repository struct {
	cfg     *config.Config
	backend backend.Backend
	hash    githash.Hash
}

// Create initializes a new repository at path and returns a handle to
// it. path may not exist yet, or may exist as an empty directory, or
// as a directory whose .git subdirectory (if present) is empty.
func Create(fs afero.Fs, path string) (*Repository, error) {
	if err := validateCreateTarget(fs, path); err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfigSkipEnv(config.LoadConfigOptions{
		FS:               fs,
		WorkingDirectory: path,
		GitDirPath:       filepath.Join(path, gitpath.DotGitPath),
		SkipGitDirLookUp: true,
	})
	if err != nil {
		return nil, xerrors.Errorf("could not build repository config: %w", err)
	}

	hash := githash.NewSHA1()
	b := fsbackend.New(cfg, hash)
	if err := b.Init(); err != nil {
		return nil, xerrors.Errorf("could not initialize object database: %w", err)
	}

	for _, dir := range []string{"branches", gitpath.RefsHeadsPath, gitpath.RefsTagsPath} {
		if err := fs.MkdirAll(filepath.Join(cfg.GitDirPath, dir), 0o750); err != nil {
			return nil, xerrors.Errorf("could not create %s: %w", dir, err)
		}
	}

	headPath := ginternals.HeadFilePath(cfg)
	if err := afero.WriteFile(fs, headPath, []byte(headRefContent), 0o644); err != nil {
		return nil, xerrors.Errorf("could not create HEAD: %w", err)
	}

	return &Repository{cfg: cfg, backend: b, hash: hash}, nil
}

// validateCreateTarget enforces Create's preconditions
func validateCreateTarget(fs afero.Fs, path string) error {
	info, err := fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return xerrors.Errorf("could not stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return xerrors.Errorf("%s exists and is not a directory: %w", path, ErrNotADirectory)
	}

	gitDir := filepath.Join(path, gitpath.DotGitPath)
	dirInfo, err := fs.Stat(gitDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return xerrors.Errorf("could not stat %s: %w", gitDir, err)
	}
	if !dirInfo.IsDir() {
		return xerrors.Errorf("%s exists and is not a directory: %w", gitDir, ErrNotADirectory)
	}

	entries, err := afero.ReadDir(fs, gitDir)
	if err != nil {
		return xerrors.Errorf("could not read %s: %w", gitDir, err)
	}
	if len(entries) > 0 {
		return xerrors.Errorf("%s is not empty: %w", gitDir, ErrRepositoryExists)
	}
	return nil
}

// Open opens the repository rooted at path. It succeeds when
// <path>/.git is a directory, <path>/.git/config exists and parses,
// and core.repositoryformatversion is 0.
func Open(fs afero.Fs, path string) (*Repository, error) {
	gitDirPath := filepath.Join(path, gitpath.DotGitPath)
	info, err := fs.Stat(gitDirPath)
	if err != nil {
		return nil, xerrors.Errorf("%s: %w", path, ErrRepositoryNotExist)
	}
	if !info.IsDir() {
		return nil, xerrors.Errorf("%s: %w", gitDirPath, ErrNotADirectory)
	}

	cfg, err := config.LoadConfigSkipEnv(config.LoadConfigOptions{
		FS:               fs,
		WorkingDirectory: path,
		GitDirPath:       gitDirPath,
		SkipGitDirLookUp: true,
	})
	if err != nil {
		return nil, xerrors.Errorf("could not build repository config: %w", err)
	}

	if err := validateConfig(fs, cfg); err != nil {
		return nil, err
	}

	hash := githash.NewSHA1()
	return &Repository{
		cfg:     cfg,
		backend: fsbackend.New(cfg, hash),
		hash:    hash,
	}, nil
}

// validateConfig enforces Open's config preconditions
func validateConfig(fs afero.Fs, cfg *config.Config) error {
	f, err := fs.Open(ginternals.ConfigPath(cfg))
	if err != nil {
		return xerrors.Errorf("%s: %w", cfg.LocalConfig, ErrConfigMissing)
	}
	defer f.Close() //nolint:errcheck // read-only, nothing actionable on Close failure

	iniFile, err := ini.Load(f)
	if err != nil {
		return xerrors.Errorf("could not parse %s: %w", cfg.LocalConfig, ErrBadConfig)
	}

	if !iniFile.HasSection(backend.CfgCore) {
		return xerrors.Errorf("%s has no [core] section: %w", cfg.LocalConfig, ErrBadConfig)
	}
	core := iniFile.Section(backend.CfgCore)
	if !core.HasKey(backend.CfgCoreFormatVersion) {
		return xerrors.Errorf("%s has no %s: %w", cfg.LocalConfig, backend.CfgCoreFormatVersion, ErrBadConfig)
	}
	version, err := strconv.Atoi(core.Key(backend.CfgCoreFormatVersion).String())
	if err != nil {
		return xerrors.Errorf("invalid %s: %w", backend.CfgCoreFormatVersion, ErrBadConfig)
	}
	if version != 0 {
		return xerrors.Errorf("%s=%d: %w", backend.CfgCoreFormatVersion, version, ErrUnsupportedFormat)
	}
	return nil
}

// Discover canonicalizes start and walks up its parents looking for a
// directory containing a .git directory, opening the repository found
// there. It fails with ErrRepositoryNotExist once it reaches the
// filesystem root without a match.
func Discover(fs afero.Fs, start string) (*Repository, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return nil, xerrors.Errorf("could not canonicalize %s: %w", start, err)
	}

	p := abs
	prev := ""
	for p != prev {
		info, err := fs.Stat(filepath.Join(p, gitpath.DotGitPath))
		if err == nil && info.IsDir() {
			return Open(fs, p)
		}
		prev = p
		p = filepath.Dir(p)
	}
	return nil, xerrors.Errorf("%s: %w", start, ErrRepositoryNotExist)
}

// Path joins segments under the repository's git directory. If
// createParents is set, all parents of the final segment are created
// as directories.
func (r *Repository) Path(createParents bool, segments ...string) (string, error) {
	full := filepath.Join(append([]string{r.cfg.GitDirPath}, segments...)...)
	if createParents {
		dir := filepath.Dir(full)
		info, err := r.cfg.FS.Stat(dir)
		if err == nil && !info.IsDir() {
			return "", xerrors.Errorf("%s exists and is not a directory: %w", dir, ErrNotADirectory)
		}
		if err := r.cfg.FS.MkdirAll(dir, 0o750); err != nil {
			return "", xerrors.Errorf("could not create %s: %w", dir, err)
		}
	}
	return full, nil
}

// ReadObject reads and decodes the object with the given id
func (r *Repository) ReadObject(oid githash.Oid) (*object.Object, error) {
	o, err := r.backend.Object(oid)
	if err != nil {
		return nil, xerrors.Errorf("could not read object %s: %w", oid.String(), err)
	}
	return o, nil
}

// WriteObject persists obj to the object database, returning its id.
// Writing is idempotent: if the object already exists its id is
// returned without touching the filesystem again.
func (r *Repository) WriteObject(obj *object.Object) (githash.Oid, error) {
	oid, err := r.backend.WriteObject(obj)
	if err != nil {
		return r.hash.NullOid(), xerrors.Errorf("could not write object: %w", err)
	}
	return oid, nil
}

// HashFile reads the entire content of the file at path, frames it as
// an object of the given type, persists it to the repository, and
// returns its id.
func (r *Repository) HashFile(path string, typ object.Type) (githash.Oid, error) {
	content, err := afero.ReadFile(r.cfg.FS, path)
	if err != nil {
		return r.hash.NullOid(), xerrors.Errorf("could not read %s: %w", path, err)
	}
	o := object.New(r.hash, typ, content)
	return r.WriteObject(o)
}

// Close releases the resources held by the repository's backend
func (r *Repository) Close() error {
	return r.backend.Close()
}

// Hash returns the hash implementation used by this repository
func (r *Repository) Hash() githash.Hash {
	return r.hash
}

