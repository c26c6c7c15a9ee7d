package object

import (
	"bytes"

	"github.com/mwillard/gitodb/internal/readutil"
	"golang.org/x/xerrors"
)

// ErrKVLMInvalid represents an error thrown when a key-value-list-with-
// message payload couldn't be parsed
var ErrKVLMInvalid = xerrors.New("invalid kvlm")

// kvlmEntry is a single key/value pair inside a KVLM. Order is
// significant and duplicate keys are allowed, so entries are kept in a
// slice rather than a map.
type kvlmEntry struct {
	key   string
	value []byte
}

// KVLM is a generic ordered key-value-list-with-message: the payload
// format shared by commit and tag objects. It is made of an ordered
// list of key/value pairs (some keys may repeat, like "parent" on a
// merge commit), followed by a blank line and a free-form message.
//
// A value that spans multiple lines is stored on disk with every line
// but the first prefixed by a single space; KVLM transparently strips
// that continuation marker on parse and re-adds it on serialization,
// so callers always see/provide the unescaped value.
type KVLM struct {
	entries []kvlmEntry
	message []byte
}

// NewKVLM returns an empty KVLM ready to be populated with Add
func NewKVLM() *KVLM {
	return &KVLM{}
}

// ParseKVLM parses the payload of a commit or tag object into a KVLM.
// A payload that ends right after a complete key/value line, with no
// blank line, parses with an empty message.
func ParseKVLM(data []byte) (*KVLM, error) {
	kv := &KVLM{}

	offset := 0
	for {
		if offset == len(data) {
			kv.message = data[offset:]
			return kv, nil
		}

		line := readutil.ReadTo(data[offset:], '\n')
		if line == nil {
			return nil, xerrors.Errorf("unterminated kvlm header: %w", ErrKVLMInvalid)
		}

		// A blank line marks the end of the headers; everything after
		// belongs to the message.
		if len(line) == 0 {
			offset++
			kv.message = data[offset:]
			return kv, nil
		}

		sp := bytes.IndexByte(line, ' ')
		if sp < 0 {
			return nil, xerrors.Errorf("malformed kvlm key/value line %q: %w", string(line), ErrKVLMInvalid)
		}
		key := string(line[:sp])
		value := append([]byte{}, line[sp+1:]...)
		offset += len(line) + 1 // +1 for the \n we just consumed

		// Continuation lines start with a single space; keep consuming
		// them (unescaping the leading space into a \n) until we hit a
		// line that doesn't continue this value.
		for offset < len(data) && data[offset] == ' ' {
			cont := readutil.ReadTo(data[offset+1:], '\n')
			if cont == nil {
				return nil, xerrors.Errorf("unterminated continuation line for key %s: %w", key, ErrKVLMInvalid)
			}
			value = append(value, '\n')
			value = append(value, cont...)
			offset += len(cont) + 2 // +1 for the leading space, +1 for the \n
		}

		kv.entries = append(kv.entries, kvlmEntry{key: key, value: value})
	}
}

// Add appends a new key/value pair at the end of the list. Existing
// pairs sharing the same key are left untouched, which is how
// repeatable keys (like "parent") are represented.
func (kv *KVLM) Add(key string, value []byte) {
	kv.entries = append(kv.entries, kvlmEntry{key: key, value: value})
}

// Value returns the value of the first entry matching key, and whether
// it was found
func (kv *KVLM) Value(key string) ([]byte, bool) {
	for _, e := range kv.entries {
		if e.key == key {
			return e.value, true
		}
	}
	return nil, false
}

// Values returns the value of every entry matching key, in the order
// they appear
func (kv *KVLM) Values(key string) [][]byte {
	var out [][]byte
	for _, e := range kv.entries {
		if e.key == key {
			out = append(out, e.value)
		}
	}
	return out
}

// Message returns the free-form message that follows the header block
func (kv *KVLM) Message() []byte {
	return kv.message
}

// SetMessage sets the free-form message that follows the header block
func (kv *KVLM) SetMessage(msg []byte) {
	kv.message = msg
}

// Serialize renders the KVLM back to its on-disk representation:
// key/value pairs in insertion order, a blank line, and the message.
func (kv *KVLM) Serialize() []byte {
	buf := new(bytes.Buffer)
	for _, e := range kv.entries {
		buf.WriteString(e.key)
		buf.WriteByte(' ')
		// Escape embedded newlines by prefixing every continuation line
		// with a single space.
		buf.Write(bytes.ReplaceAll(e.value, []byte{'\n'}, []byte{'\n', ' '}))
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')
	buf.Write(kv.message)
	return buf.Bytes()
}
