package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}

func newStorage(t *testing.T, maxMB int64) (*ImageStorage, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := NewImageStorage(dir, "/uploads/", maxMB)
	require.NoError(t, err)
	return s, dir
}

func TestImageStorage_SavePNG(t *testing.T) {
	s, dir := newStorage(t, 1)
	productID := uuid.New()

	body := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{1}, 2048)...)
	stored, err := s.Save(context.Background(), productID, "ring.PNG", bytes.NewReader(body))
	require.NoError(t, err)

	assert.Equal(t, "image/png", stored.MimeType)
	assert.Equal(t, int64(len(body)), stored.Size)

	onDisk, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(stored.Path)))
	require.NoError(t, err)
	assert.Equal(t, body, onDisk)
	assert.Equal(t, "/uploads/"+stored.Path, s.URL(stored.Path))
}

func TestImageStorage_RejectsUnknownExtension(t *testing.T) {
	s, _ := newStorage(t, 1)
	_, err := s.Save(context.Background(), uuid.New(), "ring.svg", bytes.NewReader(pngHeader))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestImageStorage_RejectsFakeImage(t *testing.T) {
	s, _ := newStorage(t, 1)
	_, err := s.Save(context.Background(), uuid.New(), "ring.png", bytes.NewReader([]byte("#!/bin/sh\necho hi")))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestImageStorage_RejectsExtensionMismatch(t *testing.T) {
	s, _ := newStorage(t, 1)
	_, err := s.Save(context.Background(), uuid.New(), "ring.jpg", bytes.NewReader(pngHeader))
	assert.ErrorIs(t, err, ErrExtensionMismatch)
}

func TestImageStorage_RejectsEmpty(t *testing.T) {
	s, _ := newStorage(t, 1)
	_, err := s.Save(context.Background(), uuid.New(), "ring.png", bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestImageStorage_RejectsTooLarge(t *testing.T) {
	s, dir := newStorage(t, 1)
	productID := uuid.New()

	body := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{1}, 1024*1024)...)
	_, err := s.Save(context.Background(), productID, "ring.png", bytes.NewReader(body))
	assert.ErrorIs(t, err, ErrTooLarge)

	entries, err := os.ReadDir(filepath.Join(dir, productID.String()))
	require.NoError(t, err)
	assert.Empty(t, entries, "временный файл должен быть удалён")
}

func TestImageStorage_DeleteRejectsTraversal(t *testing.T) {
	s, _ := newStorage(t, 1)
	assert.Error(t, s.Delete(context.Background(), "../../etc/passwd"))
	assert.NoError(t, s.Delete(context.Background(), "missing/file.png"))
}
