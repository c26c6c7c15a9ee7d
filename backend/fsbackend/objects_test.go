package fsbackend_test

import (
	"testing"

	"github.com/mwillard/gitodb/backend/fsbackend"
	"github.com/mwillard/gitodb/ginternals"
	"github.com/mwillard/gitodb/ginternals/githash"
	"github.com/mwillard/gitodb/ginternals/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

func newTestBackend(t *testing.T) *fsbackend.Backend {
	t.Helper()
	cfg := newTestConfig(t)
	b := fsbackend.New(cfg, githash.NewSHA1())
	require.NoError(t, b.Init())
	return b
}

func TestWriteObjectAndObject(t *testing.T) {
	t.Parallel()

	t.Run("a written object can be read back", func(t *testing.T) {
		t.Parallel()

		b := newTestBackend(t)
		hash := githash.NewSHA1()
		o := object.New(hash, object.TypeBlob, []byte("data"))

		oid, err := b.WriteObject(o)
		require.NoError(t, err)
		assert.False(t, oid.IsZero())
		assert.Equal(t, o.ID().String(), oid.String())

		storedO, err := b.Object(oid)
		require.NoError(t, err)
		assert.Equal(t, o.Type(), storedO.Type())
		assert.Equal(t, o.Size(), storedO.Size())
		assert.Equal(t, o.Bytes(), storedO.Bytes())
	})

	t.Run("writing the same object twice is idempotent", func(t *testing.T) {
		t.Parallel()

		b := newTestBackend(t)
		hash := githash.NewSHA1()
		o := object.New(hash, object.TypeBlob, []byte("data"))

		oid1, err := b.WriteObject(o)
		require.NoError(t, err)
		oid2, err := b.WriteObject(o)
		require.NoError(t, err)
		assert.Equal(t, oid1.String(), oid2.String())
	})

	t.Run("unknown object fails with ErrObjectNotFound", func(t *testing.T) {
		t.Parallel()

		b := newTestBackend(t)
		hash := githash.NewSHA1()
		oid, err := hash.ConvertFromString("2dcdadc2a420225783794fbffd51e2e137a69646")
		require.NoError(t, err)

		obj, err := b.Object(oid)
		require.Error(t, err)
		require.Nil(t, obj)
		assert.True(t, xerrors.Is(err, ginternals.ErrObjectNotFound))
	})
}

func TestHasObject(t *testing.T) {
	t.Parallel()

	t.Run("existing object should exist", func(t *testing.T) {
		t.Parallel()

		b := newTestBackend(t)
		hash := githash.NewSHA1()
		o := object.New(hash, object.TypeBlob, []byte("data"))
		oid, err := b.WriteObject(o)
		require.NoError(t, err)

		exists, err := b.HasObject(oid)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("non-existing object should not exist", func(t *testing.T) {
		t.Parallel()

		b := newTestBackend(t)
		hash := githash.NewSHA1()
		oid, err := hash.ConvertFromString("2dcdadc2a420225783794fbffd51e2e137a69646")
		require.NoError(t, err)

		exists, err := b.HasObject(oid)
		require.NoError(t, err)
		assert.False(t, exists)
	})
}
