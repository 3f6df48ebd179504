package filestore

import (
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"
)

func TestSaveOpenDelete(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	key := NewKey("user-1", "screenshot", "png")
	assert.True(t, strings.HasPrefix(key, "user-1/screenshot/"))
	assert.True(t, strings.HasSuffix(key, ".png"))

	n, digest, err := s.Save(key, strings.NewReader("hello"), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	sum := blake2b.Sum256([]byte("hello"))
	assert.Equal(t, hex.EncodeToString(sum[:]), digest)

	f, err := s.Open(key)
	require.NoError(t, err)
	data, err := io.ReadAll(f)
	f.Close()
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, s.Delete(key))
	require.NoError(t, s.Delete(key))
	_, err = s.Open(key)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSave_Limit(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	_, _, err = s.Save("u/text/a.txt", strings.NewReader("123456"), 5)
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = s.ReadAll("u/text/a.txt")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPath_StaysUnderRoot(t *testing.T) {
	root := t.TempDir()
	s, err := New(root)
	require.NoError(t, err)

	_, err = s.Path("u/../../etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidKey)

	p, err := s.Path("u/text/a.txt")
	require.NoError(t, err)
	rel, err := filepath.Rel(root, p)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("u", "text", "a.txt"), rel)

	_, err = s.Path("..")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestDeleteUser(t *testing.T) {
	root := t.TempDir()
	s, err := New(root)
	require.NoError(t, err)

	_, _, err = s.Save(NewKey("u", "voice", ".webm"), strings.NewReader("a"), 0)
	require.NoError(t, err)
	_, _, err = s.Save(NewKey("keep", "voice", ".webm"), strings.NewReader("b"), 0)
	require.NoError(t, err)

	require.NoError(t, s.DeleteUser("u"))
	_, err = os.Stat(filepath.Join(root, "u"))
	assert.ErrorIs(t, err, os.ErrNotExist)
	_, err = os.Stat(filepath.Join(root, "keep"))
	assert.NoError(t, err)
}

func TestNestedUserIDsRejected(t *testing.T) {
	root := t.TempDir()
	s, err := New(root)
	require.NoError(t, err)

	_, _, err = s.Save(NewKey("a/b", "voice", ".webm"), strings.NewReader("x"), 0)
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, _, err = s.Save(NewKey("a", "voice", ".webm"), strings.NewReader("keep"), 0)
	require.NoError(t, err)
	for _, id := range []string{"a/b", "", ".", "..", `a\b`} {
		assert.ErrorIs(t, s.DeleteUser(id), ErrInvalidKey, id)
	}
	_, err = os.Stat(filepath.Join(root, "a", "voice"))
	assert.NoError(t, err)
}
