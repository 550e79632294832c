package filestorage

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/facilityhub/internal/pkg/apperrors"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("image", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["image"][0]
}

func TestSaveImageStoresUnderDir(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStorage(root, "/uploads/", 1<<20)
	require.NoError(t, err)

	url, err := store.SaveImage(fileHeader(t, "campus.txt", pngBytes), "facilities")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/facilities/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	saved, err := os.ReadFile(filepath.Join(root, "facilities", filepath.Base(url)))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, saved)

	require.NoError(t, store.DeleteImage(url))
	_, err = os.Stat(filepath.Join(root, "facilities", filepath.Base(url)))
	assert.True(t, os.IsNotExist(err))
}

func TestSaveImageRejectsNonImage(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), "/uploads", 1<<20)
	require.NoError(t, err)

	_, err = store.SaveImage(fileHeader(t, "notes.png", []byte("plain text, not an image")), "facilities")
	assert.ErrorIs(t, err, ErrUnsupportedType)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestSaveImageRejectsLargeFile(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), "/uploads", 16)
	require.NoError(t, err)

	_, err = store.SaveImage(fileHeader(t, "big.png", pngBytes), "")
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestSaveImageRequiresFile(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), "/uploads", 0)
	require.NoError(t, err)

	_, err = store.SaveImage(nil, "facilities")
	assert.ErrorIs(t, err, ErrNoFile)
}

func TestDeleteImageIgnoresForeignURLs(t *testing.T) {
	root := t.TempDir()
	outside := filepath.Join(root, "keep.txt")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o600))

	store, err := NewLocalStorage(filepath.Join(root, "uploads"), "/uploads", 0)
	require.NoError(t, err)

	assert.NoError(t, store.DeleteImage("https://cdn.example.com/a.png"))
	assert.NoError(t, store.DeleteImage("/uploads/../keep.txt"))
	assert.NoError(t, store.DeleteImage("/uploads/facilities/missing.png"))
	_, err = os.Stat(outside)
	assert.NoError(t, err)
}
