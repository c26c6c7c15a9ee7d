package gitodb_test

import (
	"testing"

	gitodb "github.com/mwillard/gitodb"
	"github.com/mwillard/gitodb/ginternals/object"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate(t *testing.T) {
	t.Parallel()

	t.Run("creates the expected layout", func(t *testing.T) {
		t.Parallel()

		fs := afero.NewMemMapFs()
		repo, err := gitodb.Create(fs, "/tmp/r")
		require.NoError(t, err)
		require.NotNil(t, repo)

		for _, dir := range []string{
			"/tmp/r/.git/branches",
			"/tmp/r/.git/objects",
			"/tmp/r/.git/refs/tags",
			"/tmp/r/.git/refs/heads",
		} {
			info, err := fs.Stat(dir)
			require.NoError(t, err, dir)
			assert.True(t, info.IsDir(), dir)
		}

		head, err := afero.ReadFile(fs, "/tmp/r/.git/HEAD")
		require.NoError(t, err)
		assert.Equal(t, "ref: refs/heads/master\n", string(head))

		entries, err := afero.ReadDir(fs, "/tmp/r/.git/objects")
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("fails when .git already holds content", func(t *testing.T) {
		t.Parallel()

		fs := afero.NewMemMapFs()
		_, err := gitodb.Create(fs, "/tmp/r")
		require.NoError(t, err)

		_, err = gitodb.Create(fs, "/tmp/r")
		require.Error(t, err)
		assert.ErrorIs(t, err, gitodb.ErrRepositoryExists)
	})
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("opens a repository created with Create", func(t *testing.T) {
		t.Parallel()

		fs := afero.NewMemMapFs()
		_, err := gitodb.Create(fs, "/tmp/r")
		require.NoError(t, err)

		repo, err := gitodb.Open(fs, "/tmp/r")
		require.NoError(t, err)
		require.NotNil(t, repo)
	})

	t.Run("fails when .git is missing", func(t *testing.T) {
		t.Parallel()

		fs := afero.NewMemMapFs()
		require.NoError(t, fs.MkdirAll("/tmp/r", 0o750))

		_, err := gitodb.Open(fs, "/tmp/r")
		require.Error(t, err)
		assert.ErrorIs(t, err, gitodb.ErrRepositoryNotExist)
	})
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	_, err := gitodb.Create(fs, "/tmp/r")
	require.NoError(t, err)
	require.NoError(t, fs.MkdirAll("/tmp/r/sub/dir", 0o750))

	repo, err := gitodb.Discover(fs, "/tmp/r/sub/dir")
	require.NoError(t, err)
	require.NotNil(t, repo)
}

func TestWriteObjectAndReadObject(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	repo, err := gitodb.Create(fs, "/tmp/r")
	require.NoError(t, err)

	o := object.New(repo.Hash(), object.TypeBlob, []byte("hello\n"))
	oid, err := repo.WriteObject(o)
	require.NoError(t, err)
	assert.Equal(t, "ce013625030ba8dba906f756967f9e9ca394464a", oid.String())

	got, err := repo.ReadObject(oid)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello\n"), got.Bytes())
}

func TestHashFile(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	repo, err := gitodb.Create(fs, "/tmp/r")
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, "/tmp/r/hello.txt", []byte("hello\n"), 0o644))

	oid, err := repo.HashFile("/tmp/r/hello.txt", object.TypeBlob)
	require.NoError(t, err)
	assert.Equal(t, "ce013625030ba8dba906f756967f9e9ca394464a", oid.String())

	got, err := repo.ReadObject(oid)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello\n"), got.Bytes())
}
