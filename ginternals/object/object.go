// Package object contains the git object model: the tagged blob/tree/
// commit/tag variant, its on-disk framing, and the codecs used to turn
// each variant's payload into structured data and back.
package object

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/mwillard/gitodb/ginternals/githash"
	"github.com/mwillard/gitodb/internal/errutil"
	"golang.org/x/xerrors"
)

var (
	// ErrObjectUnknown represents an error thrown when encoutering an
	// unknown object type tag
	ErrObjectUnknown = errors.New("invalid object type")

	// ErrObjectInvalid represents an error thrown when an object contains
	// unexpected data or when the wrong object is provided to a method.
	// Ex. Creating a tag using a commit with no ID (commit not persisted
	// to the odb)
	ErrObjectInvalid = errors.New("invalid object")

	// ErrObjectMalformed represents an error thrown when the framed bytes
	// of an object don't match their declared length
	ErrObjectMalformed = errors.New("malformed object")

	// ErrTreeInvalid represents an error thrown when parsing an invalid
	// tree object
	ErrTreeInvalid = errors.New("invalid tree")

	// ErrCommitInvalid represents an error thrown when parsing an invalid
	// commit object
	ErrCommitInvalid = errors.New("invalid commit")

	// ErrTagInvalid represents an error thrown when parsing an invalid
	// tag object
	ErrTagInvalid = errors.New("invalid tag")
)

// Type represents the type of an object, as stored in its ASCII header
type Type int8

// List of all the possible object types
const (
	TypeCommit Type = 1
	TypeTree   Type = 2
	TypeBlob   Type = 3
	TypeTag    Type = 4
)

func (t Type) String() string {
	switch t {
	case TypeCommit:
		return "commit"
	case TypeTree:
		return "tree"
	case TypeBlob:
		return "blob"
	case TypeTag:
		return "tag"
	default:
		panic(fmt.Sprintf("unknown object type %d", t))
	}
}

// IsValid check id the object type is an existing type
func (t Type) IsValid() bool {
	switch t {
	case TypeCommit, TypeTree, TypeBlob, TypeTag:
		return true
	default:
		return false
	}
}

// NewTypeFromString returns a Type from its string representation
func NewTypeFromString(t string) (Type, error) {
	switch t {
	case "commit":
		return TypeCommit, nil
	case "tree":
		return TypeTree, nil
	case "blob":
		return TypeBlob, nil
	case "tag":
		return TypeTag, nil
	default:
		return 0, ErrObjectUnknown
	}
}

// Object represents a git object. An object can be of multiple types
// but they all share the same storage: a type tag, an ASCII decimal
// length, and a payload, hashed together to produce the object's id.
// https://git-scm.com/book/en/v2/Git-Internals-Git-Objects
type Object struct {
	hash    githash.Hash
	id      githash.Oid
	typ     Type
	content []byte

	idOnce sync.Once
}

// New creates a new git object of the given type, hashed with the
// given Hash implementation
func New(hash githash.Hash, typ Type, content []byte) *Object {
	return &Object{
		hash:    hash,
		typ:     typ,
		content: content,
	}
}

// NewFromFrame decodes the inflated bytes of a loose object
// (`type SP length NUL payload`) into an Object. It is the inverse of
// Object.frame().
func NewFromFrame(hash githash.Hash, data []byte) (*Object, error) {
	sp := bytes.IndexByte(data, ' ')
	if sp < 0 {
		return nil, xerrors.Errorf("could not find type: %w", ErrObjectMalformed)
	}
	typ, err := NewTypeFromString(string(data[:sp]))
	if err != nil {
		return nil, xerrors.Errorf("unsupported type %s: %w", string(data[:sp]), ErrObjectUnknown)
	}

	nul := bytes.IndexByte(data[sp+1:], 0)
	if nul < 0 {
		return nil, xerrors.Errorf("could not find length: %w", ErrObjectMalformed)
	}
	nul += sp + 1

	size, err := strconv.Atoi(string(data[sp+1 : nul]))
	if err != nil {
		return nil, xerrors.Errorf("invalid length %s: %w", string(data[sp+1:nul]), ErrObjectMalformed)
	}

	payload := data[nul+1:]
	if len(payload) != size {
		return nil, xerrors.Errorf("declared size %d doesn't match payload size %d: %w", size, len(payload), ErrObjectMalformed)
	}

	return New(hash, typ, payload), nil
}

// ID returns the id of the object, computing it on first access
func (o *Object) ID() githash.Oid {
	o.idOnce.Do(func() {
		o.id = o.hash.Sum(o.frame())
	})
	return o.id
}

// Size returns the size of the object's payload
func (o *Object) Size() int {
	return len(o.content)
}

// Type returns the Type for this object
func (o *Object) Type() Type {
	return o.typ
}

// Bytes returns the object's payload
func (o *Object) Bytes() []byte {
	return o.content
}

// frame returns the bytes that get hashed and, once deflated, stored on
// disk: `type SP ascii_decimal_length NUL payload`
func (o *Object) frame() []byte {
	// Quick reminder that the Write* methods on bytes.Buffer never fail,
	// the error returned is always nil
	w := new(bytes.Buffer)
	w.WriteString(o.Type().String())
	w.WriteByte(' ')
	w.WriteString(strconv.Itoa(o.Size()))
	w.WriteByte(0)
	w.Write(o.Bytes())
	return w.Bytes()
}

// Compress returns the object framed and zlib-compressed, ready to be
// persisted as a loose object
func (o *Object) Compress() (data []byte, err error) {
	framed := o.frame()

	compressed := new(bytes.Buffer)
	zw := zlib.NewWriter(compressed)
	if _, err = zw.Write(framed); err != nil {
		errutil.Close(zw, &err)
		return nil, xerrors.Errorf("could not zlib the object: %w", err)
	}
	// The writer has to be closed before reading the buffer, otherwise
	// the end of the stream is still held by the writer
	if err = zw.Close(); err != nil {
		return nil, xerrors.Errorf("could not zlib the object: %w", err)
	}
	return compressed.Bytes(), nil
}

// AsBlob parses the object as a Blob
func (o *Object) AsBlob() *Blob {
	return NewBlob(o)
}

// AsTree parses the object as a Tree
func (o *Object) AsTree() (*Tree, error) {
	return NewTreeFromObject(o)
}

// AsCommit parses the object as a Commit
func (o *Object) AsCommit() (*Commit, error) {
	return NewCommitFromObject(o)
}

// AsTag parses the object as a Tag
func (o *Object) AsTag() (*Tag, error) {
	return NewTagFromObject(o)
}
