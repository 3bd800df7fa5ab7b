package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0o644))
	}
}

func TestListDirectoryImageFiles(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "frame_0010.jpg", "frame_0002.png", "frame-3.JPEG", "notes.txt")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "frame_0001.jpg"), 0o755))

	files, err := ListDirectoryImageFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 3)

	assert.Equal(t, []int{2, 3, 10}, []int{files[0].Frame, files[1].Frame, files[2].Frame})
	assert.Equal(t, filepath.Join(dir, "frame_0002.png"), files[0].Path)
	assert.Nil(t, files[0].Data)

	require.NoError(t, files[2].Read())
	assert.Equal(t, []byte("frame_0010.jpg"), files[2].Data)
}

func TestListDirectoryImageFiles_Errors(t *testing.T) {
	_, err := ListDirectoryImageFiles(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	dir := t.TempDir()
	writeFiles(t, dir, "cover.jpg")
	_, err = ListDirectoryImageFiles(dir)
	assert.ErrorContains(t, err, "no frame number")
}

func TestImageFile_ReadMissing(t *testing.T) {
	f := ImageFile{Path: filepath.Join(t.TempDir(), "frame_0001.jpg"), Frame: 1}
	assert.Error(t, f.Read())
}

func TestIsImageFile(t *testing.T) {
	assert.True(t, IsImageFile("a.BMP"))
	assert.True(t, IsImageFile("frame_0001.jpeg"))
	assert.False(t, IsImageFile("clip.mp4"))
	assert.False(t, IsImageFile("frame"))
}
