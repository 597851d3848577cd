package storage

import (
	"bytes"
	"errors"
	"io/fs"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"agency-cms/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 64)...)

// fileHeader builds a real multipart header the same way gin does.
func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("photo", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["photo"][0]
}

func TestSaveImage(t *testing.T) {
	d := NewDisk(t.TempDir(), 1<<20)

	name, err := d.SaveImage(FolderNewsletter, fileHeader(t, "my cover.png", pngBytes))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, "-my-cover.png"), name)

	stored, err := os.ReadFile(d.Path(FolderNewsletter, name))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, stored)

	require.NoError(t, d.Delete(FolderNewsletter, name))
	_, err = os.Stat(d.Path(FolderNewsletter, name))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestSaveImageRejectsNonImage(t *testing.T) {
	d := NewDisk(t.TempDir(), 1<<20)

	_, err := d.SaveImage(FolderNewsletter, fileHeader(t, "evil.png", []byte("#!/bin/sh\necho hi\n")))
	assert.ErrorIs(t, err, models.ErrInvalidImage)
}

func TestSaveImageRejectsLargeFile(t *testing.T) {
	d := NewDisk(t.TempDir(), 16)

	_, err := d.SaveImage(FolderNewsletter, fileHeader(t, "big.png", pngBytes))
	assert.ErrorIs(t, err, models.ErrFileTooLarge)
}

func TestSaveImageRequiresFile(t *testing.T) {
	d := NewDisk(t.TempDir(), 16)

	_, err := d.SaveImage(FolderNewsletter, nil)
	assert.ErrorIs(t, err, models.ErrFileRequired)
}

func TestDeleteKeepsDefaultPhoto(t *testing.T) {
	d := NewDisk(t.TempDir(), 16)

	assert.NoError(t, d.Delete(FolderUser, models.DefaultPhoto))
	assert.NoError(t, d.Delete(FolderUser, ""))
	assert.ErrorIs(t, d.Delete(FolderUser, "missing.png"), fs.ErrNotExist)
}

func TestCleanName(t *testing.T) {
	assert.Equal(t, "passwd", cleanName("../../etc/passwd"))
	assert.Equal(t, "a-b.jpg", cleanName("a b.jpg"))
	assert.Equal(t, "x.png", cleanName(`C:\tmp\x.png`))
}
