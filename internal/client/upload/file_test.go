package upload

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngBytes  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\x0dIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	jpegBytes = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")
)

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, data, 0o600))
	return p
}

func TestFromPath_SniffsContent(t *testing.T) {
	f, err := FromPath(writeTemp(t, "cat.png", pngBytes))
	require.NoError(t, err)
	assert.Equal(t, "cat.png", f.Name)
	assert.Equal(t, "image/png", f.MediaType)
	require.NoError(t, Validate(f))

	f, err = FromPath(writeTemp(t, "fake.jpg", []byte("just some text")))
	require.NoError(t, err)
	require.ErrorIs(t, Validate(f), ErrInvalidFileType)
}

func TestFromPath_Missing(t *testing.T) {
	_, err := FromPath(filepath.Join(t.TempDir(), "nope.png"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		mediaType string
		ok        bool
	}{
		{"image/png", true},
		{"IMAGE/JPEG", true},
		{"image/webp", true},
		{"text/plain; charset=utf-8", false},
		{"application/pdf", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.mediaType, func(t *testing.T) {
			err := Validate(File{Name: "x", MediaType: tt.mediaType})
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidFileType)
			}
		})
	}
}

func TestExtension(t *testing.T) {
	assert.Equal(t, ".png", File{MediaType: "image/png"}.Extension())
	assert.Equal(t, ".jpg", File{MediaType: "image/jpeg"}.Extension())
	assert.Equal(t, ".bin", File{MediaType: "application/x-unknown-thing"}.Extension())
}

func TestSlot(t *testing.T) {
	assert.Equal(t, "content_file", SlotContent.Field())
	assert.Equal(t, "style_file", SlotStyle.Field())
	assert.Equal(t, "content", SlotContent.String())
	assert.Equal(t, "style", SlotStyle.String())
}
