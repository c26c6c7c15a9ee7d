package gitodb

import (
	"os"
	"path/filepath"

	"github.com/mwillard/gitodb/ginternals/githash"
	"github.com/mwillard/gitodb/ginternals/object"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// Checkout materializes the tree (or the tree referenced by a commit)
// identified by oid into destDir, which must be empty or nonexistent.
// Trees become directories, blobs become regular files; anything else
// reachable from the tree (tags, commit/submodule pointers) is skipped.
func (r *Repository) Checkout(oid githash.Oid, destDir string) error {
	o, err := r.ReadObject(oid)
	if err != nil {
		return xerrors.Errorf("could not read %s: %w", oid.String(), err)
	}

	if o.Type() == object.TypeCommit {
		c, err := o.AsCommit()
		if err != nil {
			return xerrors.Errorf("could not decode commit %s: %w", oid.String(), err)
		}
		o, err = r.ReadObject(c.TreeID())
		if err != nil {
			return xerrors.Errorf("could not read tree %s: %w", c.TreeID().String(), err)
		}
	}

	t, err := o.AsTree()
	if err != nil {
		return xerrors.Errorf("%s is not a tree: %w", oid.String(), err)
	}

	if err := r.cfg.FS.MkdirAll(destDir, 0o750); err != nil {
		return xerrors.Errorf("could not create %s: %w", destDir, err)
	}
	return r.materializeTree(t, destDir)
}

// materializeTree writes each entry of t under dir, recursing into
// sub-trees. One entry's failure is fatal for the whole operation.
func (r *Repository) materializeTree(t *object.Tree, dir string) error {
	for _, entry := range t.Entries() {
		dest := filepath.Join(dir, entry.Path)

		// Submodule (gitlink) entries point to a commit of another
		// repository and aren't materialized
		if entry.Mode == object.ModeGitLink {
			continue
		}

		o, err := r.ReadObject(entry.ID)
		if err != nil {
			return xerrors.Errorf("could not read %s (%s): %w", entry.Path, entry.ID.String(), err)
		}

		switch o.Type() {
		case object.TypeTree:
			sub, err := o.AsTree()
			if err != nil {
				return xerrors.Errorf("could not decode tree %s: %w", entry.Path, err)
			}
			if err := r.cfg.FS.MkdirAll(dest, 0o750); err != nil {
				return xerrors.Errorf("could not create %s: %w", dest, err)
			}
			if err := r.materializeTree(sub, dest); err != nil {
				return err
			}
		case object.TypeBlob:
			// Symlink mode is treated as a blob: content is written as a
			// regular file rather than a real symlink.
			if err := afero.WriteFile(r.cfg.FS, dest, o.AsBlob().Bytes(), blobFileMode(entry.Mode)); err != nil {
				return xerrors.Errorf("could not write %s: %w", dest, err)
			}
		default:
			// Tags and commit (submodule) pointers aren't materialized.
			continue
		}
	}
	return nil
}

// blobFileMode maps a tree entry's mode to the permission bits used
// when materializing it as a regular file
func blobFileMode(mode object.TreeObjectMode) os.FileMode {
	if mode == object.ModeExecutable {
		return 0o755
	}
	return 0o644
}
