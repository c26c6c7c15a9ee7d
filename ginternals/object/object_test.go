package object_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/mwillard/gitodb/ginternals/githash"
	"github.com/mwillard/gitodb/ginternals/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsCommit(t *testing.T) {
	t.Parallel()

	t.Run("regular commit with all the fields", func(t *testing.T) {
		t.Parallel()

		hash := githash.NewSHA1()
		treeID, err := hash.ConvertFromString("f0b577644139c6e04216d82f1dd4a5a63addeeca")
		require.NoError(t, err)
		parentID, err := hash.ConvertFromString("9785af758bcc96cd7237ba65eb2c9dd1ecaa3321")
		require.NoError(t, err)

		var b bytes.Buffer
		b.WriteString("tree ")
		b.WriteString(treeID.String())
		b.WriteString("\n")

		b.WriteString("parent ")
		b.WriteString(parentID.String())
		b.WriteString("\n")

		b.WriteString(`author Melvin Laplanche <melvin.wont.reply@gmail.com> 1566115917 -0700
committer Melvin Laplanche <melvin.wont.reply@gmail.com> 1566115917 -0700
gpgsig -----BEGIN PGP SIGNATURE-----
` + " \n" + ` iQIzBAABCAAdFiEE9vjmBp5ZMl+LWBekLDB+DQQTNEsFAl1ZCE0ACgkQLDB+DQQT
 NEuyIQ/+P14N/BK8dnqnLcMhjoGS86fy14MCqo3hPJxPWl0Qw0JQ5APDRNqnPiT6
 -----END PGP SIGNATURE-----

commit head

commit body

commit footer`)
		rawData := b.Bytes()

		o := object.New(hash, object.TypeCommit, rawData)
		expectedSigName := "Melvin Laplanche"
		expectedSigEmail := "melvin.wont.reply@gmail.com"
		expectedSigTimestamp := int64(1566115917)
		expectedSigOffset := 3600 * -7

		ci, err := o.AsCommit()
		require.NoError(t, err)

		assert.Equal(t, o.ID(), ci.ID())
		assert.Equal(t, "f0b577644139c6e04216d82f1dd4a5a63addeeca", ci.TreeID().String(), "invalid tree id")

		require.NotZero(t, ci.Author(), "author missing")
		assert.Equal(t, expectedSigName, ci.Author().Name, "invalid author name")
		assert.Equal(t, expectedSigEmail, ci.Author().Email, "invalid author email")
		assert.Equal(t, expectedSigTimestamp, ci.Author().Time.Unix(), "invalid author timestamp")
		_, tzOffset := ci.Author().Time.Zone()
		assert.Equal(t, expectedSigOffset, tzOffset, "invalid author timezone offset")

		require.NotZero(t, ci.Committer(), "committer missing")
		assert.Equal(t, expectedSigName, ci.Committer().Name, "invalid committer name")
		assert.Equal(t, expectedSigEmail, ci.Committer().Email, "invalid committer email")
		assert.Equal(t, expectedSigTimestamp, ci.Committer().Time.Unix(), "invalid committer timestamp")

		require.Len(t, ci.ParentIDs(), 1, "invalid amount of parent")
		assert.Equal(t, "9785af758bcc96cd7237ba65eb2c9dd1ecaa3321", ci.ParentIDs()[0].String(), "invalid parent id")

		assert.Contains(t, ci.GPGSig(), "BEGIN PGP SIGNATURE")

		expectedMessage := `commit head

commit body

commit footer`
		assert.Equal(t, expectedMessage, ci.Message(), "invalid Message")
	})
}

func TestAsTree(t *testing.T) {
	t.Parallel()

	t.Run("regular tree", func(t *testing.T) {
		t.Parallel()

		hash := githash.NewSHA1()
		blobOid := hash.Sum([]byte("blob 5\x00hello"))
		entries := make([]object.TreeEntry, 13)
		for i := range entries {
			entries[i] = object.TreeEntry{
				Path: fmt.Sprintf("file%02d", i),
				ID:   blobOid,
				Mode: object.ModeFile,
			}
		}
		tree := object.NewTree(hash, entries)

		o := tree.ToObject()
		parsed, err := o.AsTree()
		require.NoError(t, err)

		assert.Equal(t, o.ID(), parsed.ID())
		assert.Len(t, parsed.Entries(), 13)
	})
}

func TestAsBlob(t *testing.T) {
	t.Parallel()

	hash := githash.NewSHA1()
	o := object.New(hash, object.TypeBlob, []byte("some blob content"))
	blob := o.AsBlob()

	assert.Equal(t, o.ID(), blob.ID())
	assert.Equal(t, o.Size(), blob.Size())
	assert.Equal(t, o.Bytes(), blob.Bytes())
}

func TestType(t *testing.T) {
	t.Parallel()

	t.Run("type.String()", func(t *testing.T) {
		t.Parallel()

		testCases := []struct {
			desc           string
			typ            object.Type
			expected       string
			expectsFailure bool
		}{
			{
				desc:     "a commit should be displayed as commit",
				typ:      object.TypeCommit,
				expected: "commit",
			},
			{
				desc:     "a tree should be displayed as tree",
				typ:      object.TypeTree,
				expected: "tree",
			},
			{
				desc:     "a blob should be displayed as blob",
				typ:      object.TypeBlob,
				expected: "blob",
			},
			{
				desc:     "a tag should be displayed as tag",
				typ:      object.TypeTag,
				expected: "tag",
			},
			{
				desc:           "Invalid type should panic",
				typ:            object.Type(5),
				expectsFailure: true,
			},
		}
		for i, tc := range testCases {
			tc := tc
			t.Run(fmt.Sprintf("%d/%s", i, tc.desc), func(t *testing.T) {
				t.Parallel()

				if tc.expectsFailure {
					assert.Panics(t, func() {
						tc.typ.String() //nolint:govet // we just want a panic
					})
					return
				}
				assert.Equal(t, tc.expected, tc.typ.String())
			})
		}
	})

	t.Run("type.IsValid()", func(t *testing.T) {
		t.Parallel()

		valid := true
		invalid := false
		testCases := []struct {
			desc     string
			typ      object.Type
			expected bool
		}{
			{desc: "TypeCommit should be valid", typ: object.TypeCommit, expected: valid},
			{desc: "TypeTree should be valid", typ: object.TypeTree, expected: valid},
			{desc: "TypeBlob should be valid", typ: object.TypeBlob, expected: valid},
			{desc: "TypeTag should be valid", typ: object.TypeTag, expected: valid},
			{desc: "Invalid type should be invalid", typ: object.Type(5), expected: invalid},
		}
		for i, tc := range testCases {
			tc := tc
			t.Run(fmt.Sprintf("%d/%s", i, tc.desc), func(t *testing.T) {
				t.Parallel()

				assert.Equal(t, tc.expected, tc.typ.IsValid())
			})
		}
	})

	t.Run("NewTypeFromString", func(t *testing.T) {
		t.Parallel()

		testCases := []struct {
			desc           string
			typ            string
			expected       object.Type
			expectsFailure bool
		}{
			{desc: "TypeCommit should be valid", typ: "commit", expected: object.TypeCommit},
			{desc: "TypeTree should be valid", typ: "tree", expected: object.TypeTree},
			{desc: "TypeBlob should be valid", typ: "blob", expected: object.TypeBlob},
			{desc: "TypeTag should be valid", typ: "tag", expected: object.TypeTag},
			{desc: "Invalid type should be invalid", typ: "doesnt-exists", expectsFailure: true},
		}
		for i, tc := range testCases {
			tc := tc
			t.Run(fmt.Sprintf("%d/%s", i, tc.desc), func(t *testing.T) {
				t.Parallel()

				out, err := object.NewTypeFromString(tc.typ)
				if tc.expectsFailure {
					require.ErrorIs(t, err, object.ErrObjectUnknown)
					return
				}

				assert.Equal(t, tc.expected, out)
			})
		}
	})
}

func TestCompress(t *testing.T) {
	t.Parallel()

	t.Run("blob", func(t *testing.T) {
		t.Parallel()

		hash := githash.NewSHA1()
		o := object.New(hash, object.TypeBlob, []byte("hello\n"))
		_, err := o.Compress()
		require.NoError(t, err)
		assert.Equal(t, "ce013625030ba8dba906f756967f9e9ca394464a", o.ID().String())
	})
}

func TestAsTag(t *testing.T) {
	t.Parallel()

	t.Run("regular tag with all the fields", func(t *testing.T) {
		t.Parallel()

		hash := githash.NewSHA1()
		objID, err := hash.ConvertFromString("9785af758bcc96cd7237ba65eb2c9dd1ecaa3321")
		require.NoError(t, err)

		var b bytes.Buffer
		b.WriteString("object ")
		b.WriteString(objID.String())
		b.WriteString("\n")

		b.WriteString(`type commit
tag tag.name
tagger Melvin Laplanche <melvin.wont.reply@gmail.com> 1566115917 -0700

tag message`)
		rawData := b.Bytes()

		o := object.New(hash, object.TypeTag, rawData)
		expectedSigName := "Melvin Laplanche"
		expectedSigEmail := "melvin.wont.reply@gmail.com"
		expectedSigTimestamp := int64(1566115917)
		expectedSigOffset := 3600 * -7

		tag, err := o.AsTag()
		require.NoError(t, err)

		assert.Equal(t, o.ID(), tag.ID())
		assert.Equal(t, objID.String(), tag.Target().String())

		require.NotZero(t, tag.Tagger(), "tagger missing")
		assert.Equal(t, expectedSigName, tag.Tagger().Name, "invalid tagger name")
		assert.Equal(t, expectedSigEmail, tag.Tagger().Email, "invalid tagger email")
		assert.Equal(t, expectedSigTimestamp, tag.Tagger().Time.Unix(), "invalid tagger timestamp")
		_, tzOffset := tag.Tagger().Time.Zone()
		assert.Equal(t, expectedSigOffset, tzOffset, "invalid tagger timezone offset")

		assert.Equal(t, object.TypeCommit, tag.Type(), "invalid commit type")

		expectedMessage := `tag message`
		assert.Equal(t, expectedMessage, tag.Message(), "invalid Message")
	})
}
