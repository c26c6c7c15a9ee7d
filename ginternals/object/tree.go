package object

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"

	"github.com/mwillard/gitodb/ginternals/githash"
	"github.com/mwillard/gitodb/internal/readutil"
	"golang.org/x/xerrors"
)

// TreeObjectMode represents the mode of an object inside a tree
// Non-standard modes (like 0o100664) are not supported
type TreeObjectMode int32

const (
	// ModeFile represents the mode to use for a regular file
	ModeFile TreeObjectMode = 0o100644
	// ModeExecutable represents the mode to use for a executable file
	ModeExecutable TreeObjectMode = 0o100755
	// ModeDirectory represents the mode to use for a directory
	ModeDirectory TreeObjectMode = 0o040000
	// ModeSymLink represents the mode to use for a symbolic link
	ModeSymLink TreeObjectMode = 0o120000
	// ModeGitLink represents the mode to use for a gitlink (submodule)
	ModeGitLink TreeObjectMode = 0o160000
)

// IsValid returns whether the mode is a supported mode or not
func (m TreeObjectMode) IsValid() bool {
	// we use a switch because any missing value will be detected
	// by our linter
	switch m {
	case ModeFile, ModeExecutable, ModeDirectory, ModeSymLink, ModeGitLink:
		return true
	default:
		return false
	}
}

// ObjectType returns the object type associated to a mode
func (m TreeObjectMode) ObjectType() Type {
	switch m {
	case ModeDirectory:
		return TypeTree
	case ModeGitLink:
		return TypeCommit
	case ModeExecutable, ModeFile, ModeSymLink:
		return TypeBlob
	default:
		// We treat anything unexpected as blob
		return TypeBlob
	}
}

// Tree represents a git tree object
type Tree struct {
	rawObject *Object
	hash      githash.Hash
	// we don't use pointers to make sure entries are immutable
	entries []TreeEntry
}

// TreeEntry represents an entry inside a git tree
type TreeEntry struct {
	Path string
	ID   githash.Oid
	Mode TreeObjectMode
}

// sortKey returns the key used to order entries the way git does:
// regular files and executables (the modes whose octal representation
// starts with "10") sort on their bare path; everything else - trees,
// symlinks, gitlinks - sorts as if their name had a trailing slash, so
// that "foo.go" sorts before the directory "foo" would if it were
// named "foo/" (an entry named "foo" and a directory named "foo" can
// otherwise never collide, but their ordering relative to siblings
// like "foo.go" or "foo0" still depends on this rule).
func sortKey(e TreeEntry) string {
	if e.Mode == ModeFile || e.Mode == ModeExecutable {
		return e.Path
	}
	return e.Path + "/"
}

// NewTree returns a new tree with the given entries. Entries are
// reordered, if needed, to match git's canonical on-disk ordering.
func NewTree(hash githash.Hash, entries []TreeEntry) *Tree {
	sorted := make([]TreeEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sortKey(sorted[i]) < sortKey(sorted[j])
	})

	t := &Tree{
		hash:    hash,
		entries: sorted,
	}
	t.rawObject = t.toObject()
	return t
}

// NewTreeFromObject returns a new tree from an object
//
// A tree has following format:
//
// {octal_mode} {path_name}\0{encoded_sha}
//
// Note:
// - a Tree may have multiple entries
// - entries are expected to already be in canonical order; this is
//   validated, not re-sorted, so a malformed tree is reported rather
//   than silently repaired
func NewTreeFromObject(o *Object) (*Tree, error) {
	if o.Type() != TypeTree {
		return nil, xerrors.Errorf("type %s is not a tree: %w", o.typ, ErrObjectInvalid)
	}

	entries := []TreeEntry{}

	objData := o.Bytes()
	if len(objData) > 0 {
		offset := 0
		// the variable i is only use for logs and error messages, not for
		// actual processing
		for i := 1; ; i++ {
			entry := TreeEntry{}
			data := readutil.ReadTo(objData[offset:], ' ')
			if len(data) == 0 {
				return nil, xerrors.Errorf("could not retrieve the mode of entry %d: %w", i, ErrTreeInvalid)
			}
			offset += len(data) + 1 // +1 for the space
			mode, err := strconv.ParseInt(string(data), 8, 32)
			if err != nil {
				return nil, xerrors.Errorf("could not parse mode of entry %d: %s: %w", i, err.Error(), ErrTreeInvalid)
			}
			entry.Mode = TreeObjectMode(mode)

			data = readutil.ReadTo(objData[offset:], 0)
			if len(data) == 0 {
				return nil, xerrors.Errorf("could not retrieve the path of entry %d: %w", i, ErrTreeInvalid)
			}
			offset += len(data) + 1 // +1 for the \0
			entry.Path = string(data)

			oidSize := o.hash.OidSize()
			if offset+oidSize > len(objData) {
				return nil, xerrors.Errorf("not enough space to retrieve the ID of entry %d: %w", i, ErrTreeInvalid)
			}
			entry.ID, err = o.hash.ConvertFromBytes(objData[offset : offset+oidSize])
			if err != nil {
				// should never fail since any value is valid as long as it
				// is the right number of bytes
				return nil, xerrors.Errorf("invalid SHA for entry %d (%s): %w", i, err.Error(), ErrTreeInvalid)
			}
			offset += oidSize

			entries = append(entries, entry)
			if len(objData) == offset {
				break
			}
		}
	}

	for i := 1; i < len(entries); i++ {
		if sortKey(entries[i-1]) >= sortKey(entries[i]) {
			return nil, xerrors.Errorf("entries %d and %d are not in canonical order: %w", i-1, i, ErrTreeInvalid)
		}
	}

	return &Tree{
		rawObject: o,
		hash:      o.hash,
		entries:   entries,
	}, nil
}

// Entries returns a copy of tree entries, in canonical order
func (t *Tree) Entries() []TreeEntry {
	out := make([]TreeEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// ID returns the object's ID
func (t *Tree) ID() githash.Oid {
	return t.rawObject.ID()
}

// ToObject returns an Object representing the tree
func (t *Tree) ToObject() *Object {
	return t.rawObject
}

// toObject serializes the entries into their wire representation
func (t *Tree) toObject() *Object {
	// Quick reminder that the Write* methods on bytes.Buffer never fails,
	// the error returned is always nil
	buf := new(bytes.Buffer)

	// The format of an tree entry is:
	// {octal_mode} {path_name}\0{encoded_sha}
	// A tree object is only composed of a bunch of entries back to back
	for _, e := range t.entries {
		// Modes are normalized to 6 octal digits (e.g. "040000" rather
		// than "40000") so that two trees with the same logical content
		// always hash to the same object.
		fmt.Fprintf(buf, "%06o", uint32(e.Mode))
		buf.WriteByte(' ')
		buf.WriteString(e.Path)
		buf.WriteByte(0)
		buf.Write(e.ID.Bytes())
	}

	return New(t.hash, TypeTree, buf.Bytes())
}
