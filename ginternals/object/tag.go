package object

import (
	"fmt"

	"github.com/mwillard/gitodb/ginternals/githash"
)

// TagParams represents all the data needed to create a Tag
// Params starting by Opt are optionals
type TagParams struct {
	Target    *Object
	Name      string
	Tagger    Signature
	Message   string
	OptGPGSig string
}

// Tag represents a Tag object. Like Commit, it is a thin typed view
// over a KVLM.
type Tag struct {
	rawObject *Object
	kv        *KVLM

	tagger  Signature
	tag     string
	message string

	gpgSig string

	id     githash.Oid
	target githash.Oid

	typ Type

	hash githash.Hash
}

// NewTag creates a new Tag object
func NewTag(hash githash.Hash, p *TagParams) *Tag {
	t := &Tag{
		target:  p.Target.ID(),
		typ:     p.Target.Type(),
		tag:     p.Name,
		tagger:  p.Tagger,
		message: p.Message,
		gpgSig:  p.OptGPGSig,
		hash:    hash,
	}
	t.rawObject = t.toObject()
	return t
}

// NewTagFromObject creates a new Tag from a raw git object
//
// A tag has following format:
//
// object {sha}
// type {target_object_type}
// tag {tag_name}
// tagger {author_name} <{author_email}> {author_date_seconds} {author_date_timezone}
// gpgsig -----BEGIN PGP SIGNATURE-----
//  {gpg key over multiple lines}
//  -----END PGP SIGNATURE-----
// {a blank line}
// {tag message}
//
// Note:
// - The gpgsig is optional
func NewTagFromObject(o *Object) (*Tag, error) {
	if o.typ != TypeTag {
		return nil, fmt.Errorf("type %s is not a tag: %w", o.typ, ErrObjectInvalid)
	}

	kv, err := ParseKVLM(o.Bytes())
	if err != nil {
		return nil, fmt.Errorf("could not parse tag: %w", err)
	}

	tag := &Tag{
		id:        o.ID(),
		rawObject: o,
		hash:      o.hash,
		kv:        kv,
		message:   string(kv.Message()),
	}

	targetRaw, ok := kv.Value("object")
	if !ok {
		return nil, fmt.Errorf("tag has no target: %w", ErrTagInvalid)
	}
	tag.target, err = o.hash.ConvertFromChars(targetRaw)
	if err != nil {
		return nil, fmt.Errorf("could not parse target id %#v: %w", targetRaw, err)
	}

	typRaw, ok := kv.Value("type")
	if !ok {
		return nil, fmt.Errorf("tag has no type: %w", ErrTagInvalid)
	}
	tag.typ, err = NewTypeFromString(string(typRaw))
	if err != nil {
		return nil, fmt.Errorf("invalid object type %s: %w", string(typRaw), err)
	}

	if nameRaw, ok := kv.Value("tag"); ok {
		tag.tag = string(nameRaw)
	}

	taggerRaw, ok := kv.Value("tagger")
	if !ok {
		return nil, fmt.Errorf("tag has no tagger: %w", ErrTagInvalid)
	}
	tag.tagger, err = NewSignatureFromBytes(taggerRaw)
	if err != nil {
		return nil, fmt.Errorf("could not parse tagger [%s]: %w", string(taggerRaw), err)
	}

	if gpgSig, ok := kv.Value("gpgsig"); ok {
		tag.gpgSig = string(gpgSig)
	}

	// validate the tag
	if tag.tagger.IsZero() {
		return nil, fmt.Errorf("tag has no tagger: %w", ErrTagInvalid)
	}
	if tag.target.IsZero() {
		return nil, fmt.Errorf("tag has no target: %w", ErrTagInvalid)
	}
	if !tag.typ.IsValid() {
		return nil, fmt.Errorf("tag has no type: %w", ErrTagInvalid)
	}

	return tag, nil
}

// ID returns the SHA of the tag object
func (t *Tag) ID() githash.Oid {
	return t.id
}

// Target returns the ID of the object targeted by the tag
func (t *Tag) Target() githash.Oid {
	return t.target
}

// Type returns the type of the targeted object
func (t *Tag) Type() Type {
	return t.typ
}

// Name returns the tag's name
func (t *Tag) Name() string {
	return t.tag
}

// Tagger returns the Signature of the person that created the tag
func (t *Tag) Tagger() Signature {
	return t.tagger
}

// Message returns the tag's message
func (t *Tag) Message() string {
	return t.message
}

// GPGSig returns the GPG signature of the tag, if any
func (t *Tag) GPGSig() string {
	return t.gpgSig
}

// ToObject returns the underlying Object
func (t *Tag) ToObject() *Object {
	if t.rawObject != nil {
		return t.rawObject
	}
	return t.toObject()
}

// toObject serializes the tag into its KVLM wire representation
func (t *Tag) toObject() *Object {
	kv := NewKVLM()
	kv.Add("object", []byte(t.target.String()))
	kv.Add("type", []byte(t.Type().String()))
	kv.Add("tag", []byte(t.Name()))
	kv.Add("tagger", []byte(t.Tagger().String()))
	if t.gpgSig != "" {
		kv.Add("gpgsig", []byte(t.gpgSig))
	}
	kv.SetMessage([]byte(t.message))
	t.kv = kv
	t.rawObject = New(t.hash, TypeTag, kv.Serialize())
	t.id = t.rawObject.ID()
	return t.rawObject
}
