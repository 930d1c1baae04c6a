// internal/services/storage_service_test.go
package services

import (
	"bytes"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pocamarket/ceg-backend/internal/apperrors"
	"github.com/pocamarket/ceg-backend/internal/config"
)

func storageTestConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: "8080"},
	}
}

func multipartFixture(t *testing.T, filename string, content []byte) (multipart.File, *multipart.FileHeader) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })

	header := form.File["file"][0]
	file, err := header.Open()
	require.NoError(t, err)
	t.Cleanup(func() { file.Close() })

	return file, header
}

func TestNewStorageServiceWithoutCredentials(t *testing.T) {
	service, err := NewStorageService(storageTestConfig())
	require.NoError(t, err)
	require.NotNil(t, service)
}

func TestLocalStorageUpload(t *testing.T) {
	service := NewLocalStorageService(storageTestConfig())

	jpeg := append([]byte{0xFF, 0xD8, 0xFF}, bytes.Repeat([]byte{0x00}, 64)...)
	file, header := multipartFixture(t, "haerin.jpg", jpeg)

	result, err := service.UploadFile(file, header, service.GetDefaultUploadOptions("photocards"))
	require.NoError(t, err)
	assert.Contains(t, result.URL, "/uploads/photocards/")
	assert.Equal(t, int64(len(jpeg)), result.Size)
}

func TestLocalStorageUploadRejectsDisallowedExtension(t *testing.T) {
	service := NewLocalStorageService(storageTestConfig())

	file, header := multipartFixture(t, "malware.exe", []byte("not an image"))

	_, err := service.UploadFile(file, header, service.GetDefaultUploadOptions("photocards"))
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestLocalStorageUploadRejectsOversizedFile(t *testing.T) {
	service := NewLocalStorageService(storageTestConfig())

	file, header := multipartFixture(t, "big.jpg", bytes.Repeat([]byte{0x01}, 128))

	options := service.GetDefaultUploadOptions("photocards")
	options.MaxSize = 10

	_, err := service.UploadFile(file, header, options)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestValidateImage(t *testing.T) {
	service := NewLocalStorageService(storageTestConfig())

	valid, _ := multipartFixture(t, "card.png",
		append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, bytes.Repeat([]byte{0x00}, 16)...))
	assert.NoError(t, service.ValidateImage(valid))

	invalid, _ := multipartFixture(t, "card.png", []byte("plain text pretending to be an image"))
	err := service.ValidateImage(invalid)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}
