package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSystemSaveAndOpen(t *testing.T) {
	s := NewFileSystem(t.TempDir(), "/media/")

	require.NoError(t, s.Save("img/a.jpg", strings.NewReader("first")))

	ok, err := s.Exists("img/a.jpg")
	require.NoError(t, err)
	assert.True(t, ok)

	rc, err := s.Open("img/a.jpg")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))

	require.NoError(t, s.Save("img/a.jpg", strings.NewReader("second")))
	data, err = os.ReadFile(s.Path("img/a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(filepath.Join(s.Root, "img"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileSystemSaveUpdatesModTime(t *testing.T) {
	s := NewFileSystem(t.TempDir(), "")
	require.NoError(t, s.Save("a.png", strings.NewReader("x")))

	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(s.Path("a.png"), old, old))

	before, err := s.ModTime("a.png")
	require.NoError(t, err)
	require.NoError(t, s.Save("a.png", strings.NewReader("x")))
	after, err := s.ModTime("a.png")
	require.NoError(t, err)

	assert.True(t, after.After(before))
}

func TestFileSystemExistsMissing(t *testing.T) {
	s := NewFileSystem(t.TempDir(), "")
	ok, err := s.Exists("nope.jpg")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Open("nope.jpg")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFileSystemRejectsEscapes(t *testing.T) {
	root := t.TempDir()
	s := NewFileSystem(root, "")

	assert.Equal(t, filepath.Join(root, "etc", "passwd"), s.Path("../../etc/passwd"))

	_, err := s.Exists("")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestFileSystemAvailableName(t *testing.T) {
	s := NewFileSystem(t.TempDir(), "")

	name, err := s.AvailableName("img/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "img/a.jpg", name)

	require.NoError(t, s.Save("img/a.jpg", strings.NewReader("x")))
	require.NoError(t, s.Save("img/a_1.jpg", strings.NewReader("x")))

	name, err = s.AvailableName("img/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "img/a_2.jpg", name)
}

func TestFileSystemDeleteAndURL(t *testing.T) {
	s := NewFileSystem(t.TempDir(), "/media/")
	require.NoError(t, s.Save("my pics/a.jpg", strings.NewReader("x")))
	require.NoError(t, s.Delete("my pics/a.jpg"))
	require.NoError(t, s.Delete("my pics/a.jpg"))

	assert.Equal(t, "/media/my%20pics/a.jpg", s.URL("my pics/a.jpg"))
}
